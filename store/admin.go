package store

import (
	"context"
	"fmt"
	"strings"

	"travel-bot/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// whereBuilder accumulates AND-ed conditions with numbered placeholders.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder the following argument will take.
func (w *whereBuilder) next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

func conversationScope(f models.ConversationFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}
	if f.StartDate != nil {
		w.add("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		w.add("created_at <= ?", *f.EndDate)
	}
	return w
}

// messageScope filters messages by content, sender and their own timestamp.
func messageScope(f models.ConversationFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("strpos(lower(content), lower(?)) > 0", f.Search)
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}
	if f.StartDate != nil {
		w.add("timestamp >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		w.add("timestamp <= ?", *f.EndDate)
	}
	return w
}

// ListConversations pages through conversations, newest update first. With a
// search term it returns the conversations owning a matching message or whose
// title matches; nothing is returned when no message matches at all.
func (s *Store) ListConversations(ctx context.Context, f models.ConversationFilter) (models.Page[models.Conversation], error) {
	if f.Search == "" {
		return s.pageConversations(ctx, f, conversationScope(f))
	}

	msgScope := messageScope(f)
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT conversation_id FROM messages"+msgScope.sql(), msgScope.args...)
	if err != nil {
		return models.Page[models.Conversation]{}, wrap("search message conversations", err)
	}
	var ids []string
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return models.Page[models.Conversation]{}, wrap("scan conversation id", err)
		}
		ids = append(ids, id.String())
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.Page[models.Conversation]{}, wrap("iterate conversation ids", err)
	}
	if len(ids) == 0 {
		return models.NewPage[models.Conversation](nil, 0, f.Page, f.Limit), nil
	}

	w := conversationScope(f)
	idsArg := w.next(pq.Array(ids))
	titleArg := w.next(f.Search)
	w.conds = append(w.conds, fmt.Sprintf("(id = ANY(%s::uuid[]) OR strpos(lower(title), lower(%s)) > 0)", idsArg, titleArg))
	return s.pageConversations(ctx, f, w)
}

func (s *Store) pageConversations(ctx context.Context, f models.ConversationFilter, w *whereBuilder) (models.Page[models.Conversation], error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversations"+w.sql(), w.args...).Scan(&total); err != nil {
		return models.Page[models.Conversation]{}, wrap("count conversations", err)
	}

	args := append([]any{}, w.args...)
	query := fmt.Sprintf("SELECT %s FROM conversations%s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d",
		conversationColumns, w.sql(), len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return models.Page[models.Conversation]{}, wrap("list conversations", err)
	}
	conversations, err := collectConversations(rows)
	if err != nil {
		return models.Page[models.Conversation]{}, err
	}
	return models.NewPage(conversations, total, f.Page, f.Limit), nil
}

// SearchMessages pages through messages whose content contains the search
// term, case-insensitively, newest first.
func (s *Store) SearchMessages(ctx context.Context, f models.ConversationFilter) (models.Page[models.Message], error) {
	w := messageScope(f)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages"+w.sql(), w.args...).Scan(&total); err != nil {
		return models.Page[models.Message]{}, wrap("count matching messages", err)
	}

	args := append([]any{}, w.args...)
	query := fmt.Sprintf("SELECT %s FROM messages%s ORDER BY timestamp DESC, seq DESC LIMIT $%d OFFSET $%d",
		messageColumns, w.sql(), len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return models.Page[models.Message]{}, wrap("search messages", err)
	}
	messages, err := collectMessages(rows)
	if err != nil {
		return models.Page[models.Message]{}, err
	}
	return models.NewPage(messages, total, f.Page, f.Limit), nil
}
