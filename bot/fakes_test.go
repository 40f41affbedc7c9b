package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"travel-bot/models"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*models.Conversation
	byUser        map[string]uuid.UUID
	messages      map[uuid.UUID][]models.Message
	created       int
	clock         time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		conversations: map[uuid.UUID]*models.Conversation{},
		byUser:        map[string]uuid.UUID{},
		messages:      map[uuid.UUID][]models.Message{},
		clock:         time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memoryStore) GetOrCreateConversation(_ context.Context, userID string) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byUser[userID]; ok {
		return *s.conversations[id], nil
	}
	now := s.tick()
	conv := &models.Conversation{ID: uuid.New(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	s.conversations[conv.ID] = conv
	s.byUser[userID] = conv.ID
	s.created++
	return *conv, nil
}

func (s *memoryStore) UpdateConversationMode(_ context.Context, id uuid.UUID, mode models.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return errors.New("no such conversation")
	}
	conv.CurrentMode = mode
	conv.UpdatedAt = s.tick()
	return nil
}

func (s *memoryStore) AppendMessage(_ context.Context, conversationID uuid.UUID, userID string, role models.Role, content string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return models.Message{}, errors.New("no such conversation")
	}
	now := s.tick()
	msg := models.Message{ID: uuid.New(), ConversationID: conversationID, UserID: userID, Role: role, Content: content, Timestamp: now}
	s.messages[conversationID] = append(s.messages[conversationID], msg)
	conv.MessageCount++
	conv.UpdatedAt = now
	return msg, nil
}

func (s *memoryStore) RecentMessages(_ context.Context, conversationID uuid.UUID, limit, skip int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.messages[conversationID]
	end := len(all) - skip
	if end < 0 {
		end = 0
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	return append([]models.Message(nil), all[start:end]...), nil
}

func (s *memoryStore) conversation(userID string) models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.conversations[s.byUser[userID]]
}

// recordingCompleter answers from a queue of scripted replies and keeps every
// request it received.
type recordingCompleter struct {
	mu       sync.Mutex
	requests []models.CompletionRequest
	replies  []string
	fallback string
	err      error
}

func (c *recordingCompleter) Complete(_ context.Context, req models.CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) > 0 {
		reply := c.replies[0]
		c.replies = c.replies[1:]
		return reply, nil
	}
	return c.fallback, nil
}

func (c *recordingCompleter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func (c *recordingCompleter) systemPrompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, req := range c.requests {
		out = append(out, req.Messages[0].Content)
	}
	return out
}

func newTestRouter() (*Router, *memoryStore, *recordingCompleter) {
	st := newMemoryStore()
	comp := &recordingCompleter{fallback: "好的！"}
	return NewRouter(st, NewGateway(st, comp, nil), nil), st, comp
}
