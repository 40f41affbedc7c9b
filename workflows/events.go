// Package workflows processes webhook events after the HTTP request that
// delivered them has been answered.
package workflows

import (
	"context"
	"fmt"

	"travel-bot/bot"
	"travel-bot/models"

	"go.uber.org/zap"
)

// EventRouter produces the reply for a user's text or postback
type EventRouter interface {
	HandleText(ctx context.Context, userID, text string) (string, error)
	HandlePostback(ctx context.Context, userID, data string) (string, error)
}

// Replier delivers a reply through the messaging platform
type Replier interface {
	ReplyText(ctx context.Context, replyToken, text string) error
}

// Dispatcher hands events off for background processing.
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.WebhookEvent) error
}

// Processor turns one event into one reply.
type Processor struct {
	router  EventRouter
	replier Replier
	logger  *zap.Logger
}

// NewProcessor creates a new event processor
func NewProcessor(router EventRouter, replier Replier, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{router: router, replier: replier, logger: logger}
}

// Route computes the reply text for event. Failures and panics are converted
// into the message the user should see. ok is false when the event carries
// nothing to answer.
func (p *Processor) Route(ctx context.Context, event models.WebhookEvent) (reply string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("event routing panicked",
				zap.String("user_id", event.UserIDOrUnknown()),
				zap.Any("panic", rec))
			reply, ok = bot.GenericFailureMessage, true
		}
	}()
	return p.route(ctx, event)
}

func (p *Processor) route(ctx context.Context, event models.WebhookEvent) (string, bool) {
	userID := event.UserIDOrUnknown()

	switch {
	case event.IsText():
		reply, err := p.router.HandleText(ctx, userID, event.Message.Text)
		if err != nil {
			rule, msg := bot.ClassifyFailure(err)
			p.logger.Error("text event failed",
				zap.String("user_id", userID),
				zap.String("failure", rule),
				zap.Error(err))
			return msg, true
		}
		return reply, true
	case event.Type == models.EventTypePostback && event.Postback != nil:
		reply, err := p.router.HandlePostback(ctx, userID, event.Postback.Data)
		if err != nil {
			p.logger.Error("postback event failed",
				zap.String("user_id", userID),
				zap.String("data", event.Postback.Data),
				zap.Error(err))
			return bot.PostbackFailureMessage, true
		}
		return reply, true
	default:
		p.logger.Debug("event ignored", zap.String("type", event.Type), zap.String("user_id", userID))
		return "", false
	}
}

// Deliver sends text with the event's reply token. A panic in the replier is
// returned as an error.
func (p *Processor) Deliver(ctx context.Context, replyToken, text string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("reply panicked: %v", rec)
		}
	}()
	if replyToken == "" {
		return fmt.Errorf("event has no reply token")
	}
	return p.replier.ReplyText(ctx, replyToken, text)
}

// Process routes event and delivers the reply. Delivery failures are logged
// and never propagate.
func (p *Processor) Process(ctx context.Context, event models.WebhookEvent) {
	reply, ok := p.Route(ctx, event)
	if !ok {
		return
	}
	if err := p.Deliver(ctx, event.ReplyToken, reply); err != nil {
		p.logger.Error("reply delivery failed",
			zap.String("user_id", event.UserIDOrUnknown()),
			zap.Error(err))
	}
}
