package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teamchat-service/internal/services"
	"teamchat-service/internal/websocket"

	"github.com/stretchr/testify/assert"
)

func newTestRouter() *Router {
	hub := websocket.NewHub(nil, websocket.Options{})
	r := NewRouter(hub, services.NewRedisService(nil), nil, nil, "test-secret", time.Hour)
	r.SetupRoutes()
	return r
}

func serve(r *Router, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.Engine().ServeHTTP(w, req)
	return w
}

// Protected routes answer 401 without a token; an unknown path answers
// 404. The contrast pins each route's existence without needing live
// backing stores.
func TestProtectedRoutesAreRegistered(t *testing.T) {
	r := newTestRouter()

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/users/profile"},
		{http.MethodPut, "/api/v1/users/status"},
		{http.MethodGet, "/api/v1/emojis/search"},
		{http.MethodGet, "/api/v1/ws"},
		{http.MethodPost, "/api/v1/messages/"},
		{http.MethodPost, "/api/v1/messages/5/reactions"},
	}
	for _, route := range protected {
		w := serve(r, route.method, route.path)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}

	w := serve(r, http.MethodGet, "/api/v1/no-such-route")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthCheckIsPublic(t *testing.T) {
	r := newTestRouter()

	w := serve(r, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}
