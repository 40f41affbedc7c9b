package workflows

import (
	"context"
	"errors"
	"testing"

	"travel-bot/bot"
	"travel-bot/models"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inlineSteps runs workflow steps directly, without a DBOS system database.
type inlineSteps struct {
	dbos.DBOSContext
	steps int
}

func (c *inlineSteps) RunAsStep(_ dbos.DBOSContext, fn dbos.StepFunc, _ ...dbos.StepOption) (any, error) {
	c.steps++
	return fn(context.Background())
}

type nilMapRouter struct{}

func (nilMapRouter) HandleText(context.Context, string, string) (string, error) {
	var seen map[string]bool
	seen["x"] = true
	return "", nil
}

func (nilMapRouter) HandlePostback(context.Context, string, string) (string, error) {
	return "", nil
}

func TestProcessEventWorkflowRoutesThenDelivers(t *testing.T) {
	replier := &stubReplier{}
	d := NewDurableDispatcher(nil, NewProcessor(&stubRouter{reply: "你好！"}, replier, nil), nil)
	ctx := &inlineSteps{}

	out, err := d.ProcessEventWorkflow(ctx, textEvent("U1", "嗨"))
	require.NoError(t, err)

	assert.Equal(t, "你好！", out)
	assert.Equal(t, 2, ctx.steps)
	assert.Equal(t, []sentReply{{token: "token-U1", text: "你好！"}}, replier.sent)
}

func TestProcessEventWorkflowSkipsDeliveryForIgnoredEvents(t *testing.T) {
	replier := &stubReplier{}
	d := NewDurableDispatcher(nil, NewProcessor(&stubRouter{reply: "x"}, replier, nil), nil)
	ctx := &inlineSteps{}

	out, err := d.ProcessEventWorkflow(ctx, models.WebhookEvent{Type: "follow", ReplyToken: "rt"})
	require.NoError(t, err)

	assert.Empty(t, out)
	assert.Equal(t, 1, ctx.steps)
	assert.Empty(t, replier.sent)
}

func TestProcessEventWorkflowDeliveryFailureEndsCleanly(t *testing.T) {
	replier := &stubReplier{err: errors.New("invalid reply token")}
	d := NewDurableDispatcher(nil, NewProcessor(&stubRouter{reply: "ok"}, replier, nil), nil)
	ctx := &inlineSteps{}

	_, err := d.ProcessEventWorkflow(ctx, textEvent("U1", "hi"))
	assert.NoError(t, err)
	assert.Equal(t, 2, ctx.steps)
	assert.Len(t, replier.sent, 1)
}

func TestProcessEventWorkflowContainsRouterPanic(t *testing.T) {
	replier := &stubReplier{}
	d := NewDurableDispatcher(nil, NewProcessor(nilMapRouter{}, replier, nil), nil)

	var (
		out string
		err error
	)
	require.NotPanics(t, func() {
		out, err = d.ProcessEventWorkflow(&inlineSteps{}, textEvent("U1", "hi"))
	})
	require.NoError(t, err)
	assert.Equal(t, bot.GenericFailureMessage, out)
	require.Len(t, replier.sent, 1)
	assert.Equal(t, bot.GenericFailureMessage, replier.sent[0].text)
}

func TestProcessEventWorkflowContainsReplierPanic(t *testing.T) {
	d := NewDurableDispatcher(nil, NewProcessor(&stubRouter{reply: "ok"}, panickingReplier{}, nil), nil)

	require.NotPanics(t, func() {
		_, err := d.ProcessEventWorkflow(&inlineSteps{}, textEvent("U1", "hi"))
		assert.NoError(t, err)
	})
}
