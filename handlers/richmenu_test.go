package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"travel-bot/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeMenus struct {
	menus []services.RichMenuSummary
	err   error
}

func (f *fakeMenus) CreateDefaultRichMenu(context.Context) (string, error) {
	return "richmenu-1", f.err
}

func (f *fakeMenus) ListRichMenus(context.Context) ([]services.RichMenuSummary, error) {
	return f.menus, f.err
}

func (f *fakeMenus) DeleteAllRichMenus(context.Context) (int, error) {
	return len(f.menus), f.err
}

func newRichMenuRouter(m *fakeMenus) *gin.Engine {
	h := NewRichMenuHandler(m, nil)
	r := gin.New()
	r.POST("/api/rich-menu", h.Create)
	r.GET("/api/rich-menu", h.List)
	r.DELETE("/api/rich-menu", h.DeleteAll)
	return r
}

func TestRichMenuEndpoints(t *testing.T) {
	m := &fakeMenus{menus: []services.RichMenuSummary{{ID: "rm1", Name: "旅遊選單", ChatBarText: "選單"}}}
	r := newRichMenuRouter(m)

	w := do(r, http.MethodPost, "/api/rich-menu")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"richMenuId":"richmenu-1"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/rich-menu")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"richMenus":[{"richMenuId":"rm1","name":"旅遊選單","chatBarText":"選單"}]}`, w.Body.String())

	w = do(r, http.MethodDelete, "/api/rich-menu")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"deleted":1}`, w.Body.String())
}

func TestRichMenuListEmptyAndFailure(t *testing.T) {
	w := do(newRichMenuRouter(&fakeMenus{}), http.MethodGet, "/api/rich-menu")
	assert.JSONEq(t, `{"richMenus":[]}`, w.Body.String())

	w = do(newRichMenuRouter(&fakeMenus{err: errors.New("unauthorized")}), http.MethodPost, "/api/rich-menu")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"details":"unauthorized"`)
}
