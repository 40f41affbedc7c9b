package handlers

import (
	"context"
	"net/http"

	"travel-bot/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RichMenuManager manages the bot's default rich menu
type RichMenuManager interface {
	CreateDefaultRichMenu(ctx context.Context) (string, error)
	ListRichMenus(ctx context.Context) ([]services.RichMenuSummary, error)
	DeleteAllRichMenus(ctx context.Context) (int, error)
}

// RichMenuHandler exposes rich menu setup over HTTP
type RichMenuHandler struct {
	menus  RichMenuManager
	logger *zap.Logger
}

// NewRichMenuHandler creates a new rich menu handler
func NewRichMenuHandler(menus RichMenuManager, logger *zap.Logger) *RichMenuHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RichMenuHandler{menus: menus, logger: logger}
}

// Create builds the travel menu and makes it the default for all users.
func (h *RichMenuHandler) Create(c *gin.Context) {
	id, err := h.menus.CreateDefaultRichMenu(c.Request.Context())
	if err != nil {
		h.logger.Error("create rich menu failed", zap.Error(err))
		internalError(c, "Failed to create rich menu", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "richMenuId": id})
}

// List returns the channel's rich menus.
func (h *RichMenuHandler) List(c *gin.Context) {
	menus, err := h.menus.ListRichMenus(c.Request.Context())
	if err != nil {
		h.logger.Error("list rich menus failed", zap.Error(err))
		internalError(c, "Failed to list rich menus", err)
		return
	}
	if menus == nil {
		menus = []services.RichMenuSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"richMenus": menus})
}

// DeleteAll removes every rich menu of the channel.
func (h *RichMenuHandler) DeleteAll(c *gin.Context) {
	n, err := h.menus.DeleteAllRichMenus(c.Request.Context())
	if err != nil {
		h.logger.Error("delete rich menus failed", zap.Error(err))
		internalError(c, "Failed to delete rich menus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": n})
}
