// Package store persists conversations and their messages in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"travel-bot/models"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var (
	// ErrStorage wraps every failure coming from the database.
	ErrStorage = errors.New("storage unavailable")
	// ErrNotFound is returned when a conversation does not exist.
	ErrNotFound = errors.New("conversation not found")
	// ErrInvalidMessage is returned for empty content or an unknown role.
	ErrInvalidMessage = errors.New("message rejected")
)

// Store owns the connection pool shared by every request.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", ErrStorage, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", ErrStorage, err)
	}
	return New(db, logger), nil
}

// New wraps an existing pool.
func New(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger, now: time.Now}
}

// Migrate creates the tables and indexes when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return wrap("migrate schema", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the pool for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

const conversationColumns = "id, user_id, title, message_count, current_mode, created_at, updated_at"

const messageColumns = "id, conversation_id, user_id, role, content, timestamp, created_at, updated_at"

// GetOrCreateConversation returns the user's most recently updated
// conversation, creating an empty one when the user has none. Concurrent
// first contacts may create two records.
func (s *Store) GetOrCreateConversation(ctx context.Context, userID string) (models.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC LIMIT 1",
		userID)
	conv, err := scanConversation(row)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, wrap("get conversation", err)
	}

	conv, err = s.CreateConversation(ctx, userID)
	if err != nil {
		return models.Conversation{}, err
	}
	s.logger.Info("created conversation", zap.String("user_id", userID), zap.String("conversation_id", conv.ID.String()))
	return conv, nil
}

// CreateConversation starts a new empty conversation for the user.
func (s *Store) CreateConversation(ctx context.Context, userID string) (models.Conversation, error) {
	now := s.now()
	conv := models.Conversation{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (id, user_id, title, message_count, current_mode, created_at, updated_at) VALUES ($1, $2, '', 0, NULL, $3, $3)",
		conv.ID, userID, now)
	if err != nil {
		return models.Conversation{}, wrap("create conversation", err)
	}
	return conv, nil
}

// GetConversation loads a conversation by id.
func (s *Store) GetConversation(ctx context.Context, id uuid.UUID) (models.Conversation, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+conversationColumns+" FROM conversations WHERE id = $1", id)
	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrNotFound
	}
	if err != nil {
		return models.Conversation{}, wrap("get conversation", err)
	}
	return conv, nil
}

// UpdateConversationMode sets the mode. The general mode is stored as NULL.
func (s *Store) UpdateConversationMode(ctx context.Context, id uuid.UUID, mode models.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE conversations SET current_mode = $2, updated_at = $3 WHERE id = $1",
		id, nullableMode(mode), s.now())
	if err != nil {
		return wrap("update conversation mode", err)
	}
	return requireRow(res)
}

// ListUserConversations returns every conversation of a user, newest update first.
func (s *Store) ListUserConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC",
		userID)
	if err != nil {
		return nil, wrap("list user conversations", err)
	}
	return collectConversations(rows)
}

// AppendMessage stores one turn and bumps the owning conversation's counter
// in the same transaction.
func (s *Store) AppendMessage(ctx context.Context, conversationID uuid.UUID, userID string, role models.Role, content string) (models.Message, error) {
	if !role.Valid() {
		return models.Message{}, fmt.Errorf("%w: role %q", ErrInvalidMessage, role)
	}
	if content == "" {
		return models.Message{}, fmt.Errorf("%w: empty content", ErrInvalidMessage)
	}

	now := s.now()
	msg := models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
		Content:        content,
		Timestamp:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Message{}, wrap("begin append", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO messages (id, conversation_id, user_id, role, content, timestamp, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $6, $6)",
		msg.ID, conversationID, userID, string(role), content, now)
	if err != nil {
		return models.Message{}, wrap("insert message", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE conversations SET message_count = message_count + 1, updated_at = $2 WHERE id = $1",
		conversationID, now)
	if err != nil {
		return models.Message{}, wrap("increment message count", err)
	}
	if err := requireRow(res); err != nil {
		return models.Message{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, wrap("commit append", err)
	}
	return msg, nil
}

// RecentMessages returns up to limit messages after skipping the newest
// skip, in chronological order.
func (s *Store) RecentMessages(ctx context.Context, conversationID uuid.UUID, limit, skip int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE conversation_id = $1 ORDER BY timestamp DESC, seq DESC LIMIT $2 OFFSET $3",
		conversationID, limit, skip)
	if err != nil {
		return nil, wrap("recent messages", err)
	}
	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// CountMessages returns the number of stored messages in a conversation.
func (s *Store) CountMessages(ctx context.Context, conversationID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages WHERE conversation_id = $1", conversationID).Scan(&n)
	if err != nil {
		return 0, wrap("count messages", err)
	}
	return n, nil
}

// ClearConversation deletes every message of a conversation and resets its
// counter. The conversation itself stays.
func (s *Store) ClearConversation(ctx context.Context, conversationID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin clear", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = $1", conversationID); err != nil {
		return wrap("delete messages", err)
	}
	res, err := tx.ExecContext(ctx, "UPDATE conversations SET message_count = 0 WHERE id = $1", conversationID)
	if err != nil {
		return wrap("reset message count", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrap("commit clear", err)
	}
	s.logger.Info("cleared conversation", zap.String("conversation_id", conversationID.String()))
	return nil
}

// ClearUserConversations deletes all conversations and messages of a user.
func (s *Store) ClearUserConversations(ctx context.Context, userID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrap("begin clear user", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM messages WHERE conversation_id IN (SELECT id FROM conversations WHERE user_id = $1)",
		userID); err != nil {
		return 0, wrap("delete user messages", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE user_id = $1", userID)
	if err != nil {
		return 0, wrap("delete user conversations", err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, wrap("commit clear user", err)
	}
	s.logger.Info("cleared user conversations", zap.String("user_id", userID), zap.Int64("conversations", n))
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(row scanner) (models.Conversation, error) {
	var (
		conv models.Conversation
		mode sql.NullString
	)
	if err := row.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.MessageCount, &mode, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return models.Conversation{}, err
	}
	if mode.Valid {
		conv.CurrentMode = models.Mode(mode.String)
	}
	return conv, nil
}

func scanMessage(row scanner) (models.Message, error) {
	var (
		msg  models.Message
		role string
	)
	if err := row.Scan(&msg.ID, &msg.ConversationID, &msg.UserID, &role, &msg.Content, &msg.Timestamp, &msg.CreatedAt, &msg.UpdatedAt); err != nil {
		return models.Message{}, err
	}
	msg.Role = models.Role(role)
	return msg, nil
}

func collectConversations(rows *sql.Rows) ([]models.Conversation, error) {
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, wrap("scan conversation", err)
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate conversations", err)
	}
	return conversations, nil
}

func collectMessages(rows *sql.Rows) ([]models.Message, error) {
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, wrap("scan message", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate messages", err)
	}
	return messages, nil
}

func nullableMode(mode models.Mode) sql.NullString {
	if mode == models.ModeGeneral {
		return sql.NullString{}
	}
	return sql.NullString{String: string(mode), Valid: true}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("rows affected", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

func wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, strings.TrimSpace(err.Error()))
}
