package workflows

import (
	"context"
	"fmt"
	"sync"

	"travel-bot/models"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
	"go.uber.org/zap"
)

// DurableDispatcher runs every event as a DBOS workflow so that events
// accepted before a crash are finished after restart.
type DurableDispatcher struct {
	dbosCtx   dbos.DBOSContext
	processor *Processor
	logger    *zap.Logger
}

// NewDurableDispatcher creates a dispatcher backed by DBOS workflows
func NewDurableDispatcher(dbosCtx dbos.DBOSContext, processor *Processor, logger *zap.Logger) *DurableDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DurableDispatcher{dbosCtx: dbosCtx, processor: processor, logger: logger}
}

// Register must be called before dbos.Launch.
func (d *DurableDispatcher) Register() {
	dbos.RegisterWorkflow(d.dbosCtx, d.ProcessEventWorkflow)
}

// Dispatch starts the workflow and returns without waiting for it.
func (d *DurableDispatcher) Dispatch(_ context.Context, event models.WebhookEvent) error {
	if _, err := dbos.RunWorkflow(d.dbosCtx, d.ProcessEventWorkflow, event); err != nil {
		return fmt.Errorf("start event workflow: %w", err)
	}
	return nil
}

// RoutedEvent is the recorded output of the route step.
type RoutedEvent struct {
	Reply string
	OK    bool
}

// ProcessEventWorkflow routes the event and delivers the reply as two
// durable steps. A recovered workflow does not call the model again once
// the reply has been computed. Both steps recover their own panics, so a
// replayed event cannot take the process down.
func (d *DurableDispatcher) ProcessEventWorkflow(ctx dbos.DBOSContext, event models.WebhookEvent) (string, error) {
	r, err := dbos.RunAsStep(ctx, func(stepCtx context.Context) (RoutedEvent, error) {
		reply, ok := d.processor.Route(stepCtx, event)
		return RoutedEvent{Reply: reply, OK: ok}, nil
	})
	if err != nil {
		return "", err
	}
	if !r.OK {
		return "", nil
	}

	_, err = dbos.RunAsStep(ctx, func(stepCtx context.Context) (bool, error) {
		if err := d.processor.Deliver(stepCtx, event.ReplyToken, r.Reply); err != nil {
			// Reply tokens are single use; retrying cannot help.
			d.logger.Error("reply delivery failed",
				zap.String("user_id", event.UserIDOrUnknown()),
				zap.Error(err))
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return r.Reply, nil
}

// AsyncDispatcher processes each event on its own goroutine.
type AsyncDispatcher struct {
	processor *Processor
	wg        sync.WaitGroup
}

// NewAsyncDispatcher creates a dispatcher without durability
func NewAsyncDispatcher(processor *Processor) *AsyncDispatcher {
	return &AsyncDispatcher{processor: processor}
}

// Dispatch detaches the event from the request context, which is cancelled
// as soon as the webhook has been answered.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, event models.WebhookEvent) error {
	bg := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.processor.Process(bg, event)
	}()
	return nil
}

// Wait blocks until every dispatched event has been processed.
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}
