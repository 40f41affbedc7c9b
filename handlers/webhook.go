package handlers

import (
	"encoding/json"
	"net/http"

	"travel-bot/models"
	"travel-bot/services"
	"travel-bot/workflows"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const signatureHeader = "X-Line-Signature"

// WebhookHandler accepts platform events and answers them in the background
type WebhookHandler struct {
	verifier   services.SignatureVerifier
	dispatcher workflows.Dispatcher
	logger     *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(verifier services.SignatureVerifier, dispatcher workflows.Dispatcher, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{verifier: verifier, dispatcher: dispatcher, logger: logger}
}

// Receive verifies the signature over the raw body, hands every event to the
// dispatcher and acknowledges immediately.
func (h *WebhookHandler) Receive(c *gin.Context) {
	signature := c.GetHeader(signatureHeader)
	if signature == "" {
		badRequest(c, "Missing signature")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Unable to read request body")
		return
	}
	if !h.verifier.Valid(body, signature) {
		h.logger.Warn("webhook signature mismatch", zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var req models.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	for _, event := range req.Events {
		if err := h.dispatcher.Dispatch(c.Request.Context(), event); err != nil {
			h.logger.Error("dispatch event failed",
				zap.String("type", event.Type),
				zap.String("user_id", event.UserIDOrUnknown()),
				zap.Error(err))
		}
	}
	h.logger.Debug("webhook accepted", zap.Int("events", len(req.Events)))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Status answers GET and HEAD checks from the platform console.
func (h *WebhookHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
