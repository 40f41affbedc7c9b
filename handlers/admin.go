package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"travel-bot/models"
	"travel-bot/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultConversationLimit = 20
	defaultMessageLimit      = 50
	maxPageLimit             = 100
	defaultDestinationLimit  = 10

	scopeMessages      = "messages"
	scopeConversations = "conversations"

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// AdminStore is what the admin endpoints read and maintain
type AdminStore interface {
	ListConversations(ctx context.Context, f models.ConversationFilter) (models.Page[models.Conversation], error)
	SearchMessages(ctx context.Context, f models.ConversationFilter) (models.Page[models.Message], error)
	RecentMessages(ctx context.Context, conversationID uuid.UUID, limit, skip int) ([]models.Message, error)
	CountMessages(ctx context.Context, conversationID uuid.UUID) (int, error)
	ClearConversation(ctx context.Context, conversationID uuid.UUID) error
	UpdateConversationMode(ctx context.Context, id uuid.UUID, mode models.Mode) error
	ClearUserConversations(ctx context.Context, userID string) (int, error)
	CreateConversation(ctx context.Context, userID string) (models.Conversation, error)
	PopularDestinations(ctx context.Context, region string, limit int) ([]models.PopularDestination, error)
}

// AdminHandler serves the read and maintenance endpoints for operators
type AdminHandler struct {
	store  AdminStore
	logger *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store AdminStore, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{store: store, logger: logger}
}

// ListConversations lists conversations, or searches messages when a search
// term is given.
func (h *AdminHandler) ListConversations(c *gin.Context) {
	page, limit, ok := pagination(c, defaultConversationLimit)
	if !ok {
		return
	}
	filter := models.ConversationFilter{
		UserID: strings.TrimSpace(c.Query("userId")),
		Search: strings.TrimSpace(c.Query("search")),
		Page:   page,
		Limit:  limit,
	}
	var err error
	if filter.StartDate, err = parseDate(c.Query("startDate"), false); err != nil {
		badRequest(c, "Invalid startDate")
		return
	}
	if filter.EndDate, err = parseDate(c.Query("endDate"), true); err != nil {
		badRequest(c, "Invalid endDate")
		return
	}

	scope := c.DefaultQuery("scope", scopeMessages)
	if scope != scopeMessages && scope != scopeConversations {
		badRequest(c, "scope must be messages or conversations")
		return
	}

	ctx := c.Request.Context()
	if filter.Search != "" && scope == scopeMessages {
		result, err := h.store.SearchMessages(ctx, filter)
		if err != nil {
			h.logger.Error("search messages failed", zap.String("search", filter.Search), zap.Error(err))
			internalError(c, "Failed to search messages", err)
			return
		}
		c.JSON(http.StatusOK, models.MessagesResponse{
			Messages:   result.Items,
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
			IsSearch:   true,
		})
		return
	}

	result, err := h.store.ListConversations(ctx, filter)
	if err != nil {
		h.logger.Error("list conversations failed", zap.Error(err))
		internalError(c, "Failed to list conversations", err)
		return
	}
	c.JSON(http.StatusOK, models.ConversationsResponse{
		Conversations: result.Items,
		Total:         result.Total,
		Page:          result.Page,
		Limit:         result.Limit,
		TotalPages:    result.TotalPages,
		IsSearch:      filter.Search != "",
	})
}

// GetMessages returns one page of a conversation's messages in chronological
// order. Page 1 holds the newest messages.
func (h *AdminHandler) GetMessages(c *gin.Context) {
	raw := c.Query("conversationId")
	if raw == "" {
		badRequest(c, "conversationId is required")
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "Invalid conversation ID")
		return
	}
	page, limit, ok := pagination(c, defaultMessageLimit)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	total, err := h.store.CountMessages(ctx, id)
	if err != nil {
		h.logger.Error("count messages failed", zap.String("conversation_id", id.String()), zap.Error(err))
		internalError(c, "Failed to load messages", err)
		return
	}
	msgs, err := h.store.RecentMessages(ctx, id, limit, (page-1)*limit)
	if err != nil {
		h.logger.Error("load messages failed", zap.String("conversation_id", id.String()), zap.Error(err))
		internalError(c, "Failed to load messages", err)
		return
	}

	result := models.NewPage(msgs, total, page, limit)
	c.JSON(http.StatusOK, models.MessagesResponse{
		Messages:       result.Items,
		Total:          result.Total,
		Page:           result.Page,
		Limit:          result.Limit,
		TotalPages:     result.TotalPages,
		ConversationID: &id,
	})
}

// ClearMessages deletes the messages of one conversation.
func (h *AdminHandler) ClearMessages(c *gin.Context) {
	id, ok := conversationParam(c)
	if !ok {
		return
	}
	if err := h.store.ClearConversation(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, "Conversation not found")
			return
		}
		internalError(c, "Failed to clear conversation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetMode puts a conversation back into general mode.
func (h *AdminHandler) ResetMode(c *gin.Context) {
	id, ok := conversationParam(c)
	if !ok {
		return
	}
	if err := h.store.UpdateConversationMode(c.Request.Context(), id, models.ModeGeneral); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, "Conversation not found")
			return
		}
		internalError(c, "Failed to reset mode", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearUser deletes every conversation of a user.
func (h *AdminHandler) ClearUser(c *gin.Context) {
	userID := c.Param("userId")
	n, err := h.store.ClearUserConversations(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("clear user failed", zap.String("user_id", userID), zap.Error(err))
		internalError(c, "Failed to clear user conversations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": n})
}

// NewConversation starts a fresh conversation for a user. The previous ones
// are kept but no longer current.
func (h *AdminHandler) NewConversation(c *gin.Context) {
	userID := c.Param("userId")
	conv, err := h.store.CreateConversation(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("create conversation failed", zap.String("user_id", userID), zap.Error(err))
		internalError(c, "Failed to create conversation", err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// PopularDestinations reports how often users mentioned each destination.
func (h *AdminHandler) PopularDestinations(c *gin.Context) {
	limit := defaultDestinationLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageLimit {
			badRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	region := strings.TrimSpace(c.Query("region"))

	destinations, err := h.store.PopularDestinations(c.Request.Context(), region, limit)
	if err != nil {
		h.logger.Error("popular destinations failed", zap.String("region", region), zap.Error(err))
		internalError(c, "Failed to load popular destinations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"region": region, "destinations": destinations})
}

func pagination(c *gin.Context, defaultLimit int) (page, limit int, ok bool) {
	page, limit = 1, defaultLimit
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "page must be a positive integer")
			return 0, 0, false
		}
		page = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageLimit {
			badRequest(c, "limit must be between 1 and 100")
			return 0, 0, false
		}
		limit = n
	}
	return page, limit, true
}

// parseDate accepts RFC 3339 timestamps, timestamps without an offset (read
// as UTC) or plain dates. A plain end date covers the whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, dateTimeLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func conversationParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid conversation ID")
		return uuid.UUID{}, false
	}
	return id, true
}
