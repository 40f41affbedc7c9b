package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel-bot/models"
	"travel-bot/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminStore struct {
	lastFilter    models.ConversationFilter
	searched      bool
	listed        bool
	conversations []models.Conversation
	messages      []models.Message
	recentArgs    [2]int
	clearedUser   string
	modeReset     uuid.UUID
	region        string
	err           error
}

func (s *fakeAdminStore) ListConversations(_ context.Context, f models.ConversationFilter) (models.Page[models.Conversation], error) {
	s.listed, s.lastFilter = true, f
	return models.NewPage(s.conversations, len(s.conversations), f.Page, f.Limit), s.err
}

func (s *fakeAdminStore) SearchMessages(_ context.Context, f models.ConversationFilter) (models.Page[models.Message], error) {
	s.searched, s.lastFilter = true, f
	return models.NewPage(s.messages, len(s.messages), f.Page, f.Limit), s.err
}

func (s *fakeAdminStore) RecentMessages(_ context.Context, _ uuid.UUID, limit, skip int) ([]models.Message, error) {
	s.recentArgs = [2]int{limit, skip}
	return s.messages, s.err
}

func (s *fakeAdminStore) CountMessages(context.Context, uuid.UUID) (int, error) {
	return 120, s.err
}

func (s *fakeAdminStore) ClearConversation(context.Context, uuid.UUID) error {
	return s.err
}

func (s *fakeAdminStore) UpdateConversationMode(_ context.Context, id uuid.UUID, _ models.Mode) error {
	s.modeReset = id
	return s.err
}

func (s *fakeAdminStore) ClearUserConversations(_ context.Context, userID string) (int, error) {
	s.clearedUser = userID
	return 2, s.err
}

func (s *fakeAdminStore) CreateConversation(_ context.Context, userID string) (models.Conversation, error) {
	return models.Conversation{ID: uuid.New(), UserID: userID}, s.err
}

func (s *fakeAdminStore) PopularDestinations(_ context.Context, region string, limit int) ([]models.PopularDestination, error) {
	s.region = region
	return []models.PopularDestination{{Name: "墾丁", Count: 3}}, s.err
}

func newAdminRouter(s *fakeAdminStore) *gin.Engine {
	h := NewAdminHandler(s, nil)
	r := gin.New()
	admin := r.Group("/api/admin")
	admin.GET("/conversations", h.ListConversations)
	admin.GET("/messages", h.GetMessages)
	admin.DELETE("/conversations/:id/messages", h.ClearMessages)
	admin.DELETE("/conversations/:id/mode", h.ResetMode)
	admin.DELETE("/users/:userId/conversations", h.ClearUser)
	admin.POST("/users/:userId/conversations", h.NewConversation)
	admin.GET("/destinations/popular", h.PopularDestinations)
	return r
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestListConversationsDefaults(t *testing.T) {
	s := &fakeAdminStore{conversations: []models.Conversation{{ID: uuid.New(), UserID: "U1"}}}
	w := do(newAdminRouter(s), http.MethodGet, "/api/admin/conversations")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.listed)
	assert.Equal(t, 1, s.lastFilter.Page)
	assert.Equal(t, 20, s.lastFilter.Limit)

	var resp models.ConversationsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Conversations, 1)
	assert.False(t, resp.IsSearch)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestListConversationsSearchScopes(t *testing.T) {
	s := &fakeAdminStore{}
	w := do(newAdminRouter(s), http.MethodGet, "/api/admin/conversations?search=Kenting&userId=U1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.searched)
	assert.Equal(t, "Kenting", s.lastFilter.Search)
	assert.Equal(t, "U1", s.lastFilter.UserID)
	assert.JSONEq(t, `{"messages":[],"total":0,"page":1,"limit":20,"totalPages":0,"isSearch":true}`, w.Body.String())

	s = &fakeAdminStore{}
	w = do(newAdminRouter(s), http.MethodGet, "/api/admin/conversations?search=Kenting&scope=conversations")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.listed)
	assert.False(t, s.searched)
	assert.Contains(t, w.Body.String(), `"isSearch":true`)
}

func TestListConversationsDates(t *testing.T) {
	s := &fakeAdminStore{}
	w := do(newAdminRouter(s), http.MethodGet, "/api/admin/conversations?startDate=2024-01-01&endDate=2024-01-31")
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, s.lastFilter.StartDate)
	require.NotNil(t, s.lastFilter.EndDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *s.lastFilter.StartDate)
	assert.True(t, s.lastFilter.EndDate.After(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)))
}

func TestListConversationsDateTimeWithoutOffset(t *testing.T) {
	s := &fakeAdminStore{}
	w := do(newAdminRouter(s), http.MethodGet, "/api/admin/conversations?startDate=2024-05-01T10:00:00&endDate=2024-05-02T08:30:00Z")
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, s.lastFilter.StartDate)
	require.NotNil(t, s.lastFilter.EndDate)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), *s.lastFilter.StartDate)
	assert.True(t, s.lastFilter.EndDate.Equal(time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)))
}

func TestAdminRejectsBadQueries(t *testing.T) {
	cases := []string{
		"/api/admin/conversations?limit=0",
		"/api/admin/conversations?limit=101",
		"/api/admin/conversations?page=0",
		"/api/admin/conversations?page=abc",
		"/api/admin/conversations?startDate=yesterday",
		"/api/admin/conversations?scope=users",
		"/api/admin/messages",
		"/api/admin/messages?conversationId=not-a-uuid",
		"/api/admin/messages?conversationId=" + uuid.NewString() + "&limit=500",
		"/api/admin/destinations/popular?limit=0",
	}
	for _, target := range cases {
		s := &fakeAdminStore{}
		w := do(newAdminRouter(s), http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, w.Body.String(), `"error"`, target)
		assert.False(t, s.listed || s.searched, target)
	}
}

func TestGetMessagesPages(t *testing.T) {
	id := uuid.New()
	s := &fakeAdminStore{messages: []models.Message{{ID: uuid.New(), ConversationID: id, Role: models.RoleUser, Content: "hi"}}}
	w := do(newAdminRouter(s), http.MethodGet, "/api/admin/messages?conversationId="+id.String()+"&page=2")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [2]int{50, 50}, s.recentArgs)

	var resp models.MessagesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 120, resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
	require.NotNil(t, resp.ConversationID)
	assert.Equal(t, id, *resp.ConversationID)
}

func TestAdminStorageFailureIncludesDetails(t *testing.T) {
	s := &fakeAdminStore{err: errors.New("connection reset")}
	w := do(newAdminRouter(s), http.MethodGet, "/api/admin/conversations")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to list conversations","details":"connection reset"}`, w.Body.String())
}

func TestAdminMaintenance(t *testing.T) {
	id := uuid.New()

	s := &fakeAdminStore{}
	w := do(newAdminRouter(s), http.MethodDelete, "/api/admin/conversations/"+id.String()+"/mode")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, s.modeReset)

	s = &fakeAdminStore{err: store.ErrNotFound}
	w = do(newAdminRouter(s), http.MethodDelete, "/api/admin/conversations/"+id.String()+"/messages")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(newAdminRouter(&fakeAdminStore{}), http.MethodDelete, "/api/admin/conversations/nope/messages")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s = &fakeAdminStore{}
	w = do(newAdminRouter(s), http.MethodDelete, "/api/admin/users/U9/conversations")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "U9", s.clearedUser)
	assert.JSONEq(t, `{"success":true,"deleted":2}`, w.Body.String())

	w = do(newAdminRouter(&fakeAdminStore{}), http.MethodPost, "/api/admin/users/U9/conversations")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":"U9"`)
}

func TestPopularDestinations(t *testing.T) {
	s := &fakeAdminStore{}
	w := do(newAdminRouter(s), http.MethodGet, "/api/admin/destinations/popular?region=%E5%8F%B0%E7%81%A3")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "台灣", s.region)
	assert.JSONEq(t, `{"region":"台灣","destinations":[{"name":"墾丁","count":3}]}`, w.Body.String())
}
