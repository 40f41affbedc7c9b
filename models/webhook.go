package models

// Webhook event and message types delivered by the messaging platform.
const (
	EventTypeMessage  = "message"
	EventTypePostback = "postback"

	MessageTypeText = "text"
)

// WebhookRequest is the body posted to the webhook endpoint
type WebhookRequest struct {
	Destination string         `json:"destination"`
	Events      []WebhookEvent `json:"events"`
}

// WebhookEvent is a single platform event. Only the fields the bot needs
// are decoded.
type WebhookEvent struct {
	Type       string         `json:"type"`
	ReplyToken string         `json:"replyToken"`
	Timestamp  int64          `json:"timestamp"`
	Source     EventSource    `json:"source"`
	Message    *EventMessage  `json:"message,omitempty"`
	Postback   *EventPostback `json:"postback,omitempty"`
}

type EventSource struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

type EventPostback struct {
	Data string `json:"data"`
}

// UserIDOrUnknown returns the sender, or "unknown" for events without one.
func (e WebhookEvent) UserIDOrUnknown() string {
	if e.Source.UserID == "" {
		return "unknown"
	}
	return e.Source.UserID
}

// IsText reports whether the event is a text message.
func (e WebhookEvent) IsText() bool {
	return e.Type == EventTypeMessage && e.Message != nil && e.Message.Type == MessageTypeText
}
