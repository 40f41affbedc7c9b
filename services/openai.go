package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel-bot/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// APIError is an upstream failure carrying the provider's HTTP status and
// error code.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("openai API error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("openai API error (status %d): %s", e.StatusCode, e.Message)
}

// OpenAIConfig configures the completion client
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIService sends chat completion requests to an OpenAI-compatible API
type OpenAIService struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIService creates a new OpenAI service
func NewOpenAIService(cfg OpenAIConfig, logger *zap.Logger) *OpenAIService {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = string(openai.ChatModelGPT3_5Turbo)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIService{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		logger: logger,
	}
}

// Complete returns the first choice's text. An empty string means the
// provider answered without content.
func (s *OpenAIService) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case models.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(s.model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			s.logger.Error("openai chat completion failed",
				zap.Int("status", apiErr.StatusCode),
				zap.String("code", apiErr.Code),
				zap.String("type", apiErr.Type))
			return "", &APIError{StatusCode: apiErr.StatusCode, Code: apiErr.Code, Message: apiErr.Message}
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}
