package models

import (
	"time"

	"github.com/google/uuid"
)

// ConversationFilter selects conversations or messages for the admin surface.
// Zero values mean "no filter".
type ConversationFilter struct {
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Page      int
	Limit     int
}

// Offset is the number of rows skipped for the filter's page.
func (f ConversationFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Page is a single page of admin results
type Page[T any] struct {
	Items      []T
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// NewPage fills in TotalPages from total and limit.
func NewPage[T any](items []T, total, page, limit int) Page[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

// PopularDestination is a destination name with how often users mentioned it
type PopularDestination struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ConversationsResponse is the admin listing body
type ConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
	Total         int            `json:"total"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
	TotalPages    int            `json:"totalPages"`
	IsSearch      bool           `json:"isSearch"`
}

// MessagesResponse is the admin message listing / search body
type MessagesResponse struct {
	Messages       []Message  `json:"messages"`
	Total          int        `json:"total"`
	Page           int        `json:"page"`
	Limit          int        `json:"limit"`
	TotalPages     int        `json:"totalPages"`
	IsSearch       bool       `json:"isSearch,omitempty"`
	ConversationID *uuid.UUID `json:"conversationId,omitempty"`
}
