package bot

import (
	"context"
	"fmt"
	"strings"

	"travel-bot/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// HistoryLimit is the number of stored turns replayed to the model.
	HistoryLimit = 20

	temperature = 0.7
	maxTokens   = 300
)

// ConversationStore is the persistence the bot needs
type ConversationStore interface {
	GetOrCreateConversation(ctx context.Context, userID string) (models.Conversation, error)
	UpdateConversationMode(ctx context.Context, id uuid.UUID, mode models.Mode) error
	AppendMessage(ctx context.Context, conversationID uuid.UUID, userID string, role models.Role, content string) (models.Message, error)
	RecentMessages(ctx context.Context, conversationID uuid.UUID, limit, skip int) ([]models.Message, error)
}

// Completer is a text-completion provider
type Completer interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
}

// Gateway assembles the history window around a completion call and records
// both sides of the exchange.
type Gateway struct {
	store     ConversationStore
	completer Completer
	logger    *zap.Logger
}

// NewGateway creates a new completion gateway
func NewGateway(store ConversationStore, completer Completer, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{store: store, completer: completer, logger: logger}
}

// Complete stores the user's turn, asks the model for a reply under
// systemPrompt, stores the reply and returns it. Provider errors are returned
// unchanged.
func (g *Gateway) Complete(ctx context.Context, conv models.Conversation, systemPrompt, userText string) (string, error) {
	if _, err := g.store.AppendMessage(ctx, conv.ID, conv.UserID, models.RoleUser, userText); err != nil {
		return "", fmt.Errorf("save user message: %w", err)
	}

	history, err := g.store.RecentMessages(ctx, conv.ID, HistoryLimit+1, 0)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	reply, err := g.completer.Complete(ctx, models.CompletionRequest{
		Messages:    BuildWindow(systemPrompt, history, HistoryLimit),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		reply = emptyReplyFallback
	}

	if _, err := g.store.AppendMessage(ctx, conv.ID, conv.UserID, models.RoleAssistant, reply); err != nil {
		return "", fmt.Errorf("save assistant message: %w", err)
	}
	return reply, nil
}

// Recommend asks for ten popular sights in region. Nothing is stored.
func (g *Gateway) Recommend(ctx context.Context, region string) (string, error) {
	reply, err := g.completer.Complete(ctx, models.CompletionRequest{
		Messages: []models.ChatMessage{
			{Role: models.RoleSystem, Content: strings.Replace(recommendationPrompt, "{REGION}", region, 1)},
			{Role: models.RoleUser, Content: fmt.Sprintf("請推薦 %s 地區的 10 個熱門旅遊景點。", region)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return emptyRecommendationFallback, nil
	}
	return reply, nil
}

// BuildWindow puts the system prompt first, followed by the user and
// assistant turns of history in order, keeping only the newest limit turns.
func BuildWindow(systemPrompt string, history []models.Message, limit int) []models.ChatMessage {
	window := make([]models.ChatMessage, 0, len(history)+1)
	window = append(window, models.ChatMessage{Role: models.RoleSystem, Content: systemPrompt})
	for _, msg := range history {
		if msg.Role != models.RoleUser && msg.Role != models.RoleAssistant {
			continue
		}
		window = append(window, models.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	if len(window) > limit+1 {
		window = append(window[:1], window[len(window)-limit:]...)
	}
	return window
}
