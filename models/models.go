package models

import (
	"time"

	"github.com/google/uuid"
)

// Mode is the feature a conversation is currently in. The zero value is
// general conversation.
type Mode string

const (
	ModeGeneral      Mode = ""
	ModeDestinations Mode = "popular_destinations"
	ModePlanning     Mode = "travel_planning"
	ModeFood         Mode = "food_recommendation"
)

// Valid reports whether m is general or one of the named feature modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeGeneral, ModeDestinations, ModePlanning, ModeFood:
		return true
	}
	return false
}

// Role is the author of a stored turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the stored roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant || r == RoleSystem
}

// Conversation is one user's chat session record
type Conversation struct {
	ID           uuid.UUID `json:"_id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	CurrentMode  Mode      `json:"currentMode,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Message is one turn in a conversation
type Message struct {
	ID             uuid.UUID `json:"_id"`
	ConversationID uuid.UUID `json:"conversationId"`
	UserID         string    `json:"userId"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ChatMessage is a single entry of a completion request
type ChatMessage struct {
	Role    Role
	Content string
}

// CompletionRequest is what the gateway hands to a completion provider
type CompletionRequest struct {
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}
