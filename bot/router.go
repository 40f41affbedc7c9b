// Package bot decides how each inbound message is answered: mode triggers,
// feature handlers and general conversation.
package bot

import (
	"context"
	"fmt"

	"travel-bot/models"

	"go.uber.org/zap"
)

// OutcomeKind tells the router what a mode handler did with a message.
type OutcomeKind int

const (
	// OutcomeReplied means Text is the answer to send.
	OutcomeReplied OutcomeKind = iota
	// OutcomeRedirectToGeneral means the mode was left and Text must be
	// answered again as general conversation.
	OutcomeRedirectToGeneral
)

// Outcome is the result of a mode handler
type Outcome struct {
	Kind OutcomeKind
	Text string
}

// Replied answers with text.
func Replied(text string) Outcome {
	return Outcome{Kind: OutcomeReplied, Text: text}
}

// RedirectToGeneral hands text back to general conversation.
func RedirectToGeneral(text string) Outcome {
	return Outcome{Kind: OutcomeRedirectToGeneral, Text: text}
}

type modeHandler func(ctx context.Context, conv models.Conversation, text string) (Outcome, error)

// Router is the conversation-mode state machine
type Router struct {
	store    ConversationStore
	gateway  *Gateway
	logger   *zap.Logger
	handlers map[models.Mode]modeHandler
}

// NewRouter creates a new router
func NewRouter(store ConversationStore, gateway *Gateway, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{store: store, gateway: gateway, logger: logger}
	r.handlers = map[models.Mode]modeHandler{
		models.ModeDestinations: r.handleDestinations,
		models.ModePlanning:     r.promptHandler(planningPrompt),
		models.ModeFood:         r.promptHandler(foodPrompt),
	}
	return r
}

// HandleText answers a text message from userID.
func (r *Router) HandleText(ctx context.Context, userID, text string) (string, error) {
	conv, err := r.store.GetOrCreateConversation(ctx, userID)
	if err != nil {
		return "", err
	}

	if mode, ok := triggerPhrases[text]; ok {
		return r.enter(ctx, conv, mode)
	}

	if conv.CurrentMode == models.ModeGeneral {
		return r.gateway.Complete(ctx, conv, generalPrompt, text)
	}

	handler, ok := r.handlers[conv.CurrentMode]
	if !ok {
		return "", fmt.Errorf("unknown conversation mode %q", conv.CurrentMode)
	}
	outcome, err := handler(ctx, conv, text)
	if err != nil {
		return "", err
	}

	switch outcome.Kind {
	case OutcomeRedirectToGeneral:
		r.logger.Info("mode left for general conversation",
			zap.String("user_id", userID),
			zap.String("mode", string(conv.CurrentMode)))
		return r.gateway.Complete(ctx, conv, generalPrompt, outcome.Text)
	default:
		return outcome.Text, nil
	}
}

// HandlePostback answers a rich menu button press.
func (r *Router) HandlePostback(ctx context.Context, userID, data string) (string, error) {
	mode, ok := postbackModes[data]
	if !ok {
		r.logger.Warn("unknown postback", zap.String("user_id", userID), zap.String("data", data))
		return unknownPostbackReply, nil
	}
	conv, err := r.store.GetOrCreateConversation(ctx, userID)
	if err != nil {
		return "", err
	}
	return r.enter(ctx, conv, mode)
}

// enter switches the conversation into mode and returns its welcome text.
func (r *Router) enter(ctx context.Context, conv models.Conversation, mode models.Mode) (string, error) {
	if err := r.store.UpdateConversationMode(ctx, conv.ID, mode); err != nil {
		return "", fmt.Errorf("enter mode %s: %w", mode, err)
	}
	r.logger.Info("mode entered", zap.String("user_id", conv.UserID), zap.String("mode", string(mode)))
	return welcomeTexts[mode], nil
}

// promptHandler answers in a persistent mode: the mode stays until the user
// picks another feature.
func (r *Router) promptHandler(prompt string) modeHandler {
	return func(ctx context.Context, conv models.Conversation, text string) (Outcome, error) {
		reply, err := r.gateway.Complete(ctx, conv, prompt, text)
		if err != nil {
			return Outcome{}, err
		}
		return Replied(reply), nil
	}
}
