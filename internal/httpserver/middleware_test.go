package httpserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def", "abc.def"},
		{"bearer abc.def", "abc.def"},
		{"BEARER   abc.def  ", "abc.def"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractBearerToken(tt.header), tt.header)
	}
}

func TestAuthMiddleware_RejectsBeforeHandler(t *testing.T) {
	env := newTestEnv(t)

	called := false
	guarded := env.server.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	for _, header := range []string{"", "Bearer", "Bearer not-a-token", "Token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/user", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.JSONEq(t, `{"message":"Unauthenticated."}`, rec.Body.String())
	}
	assert.False(t, called)
}

func TestAuthMiddleware_PlacesUserOnContext(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "a@x.io")
	tok := env.login(t, "a@x.io")

	var email string
	guarded := env.server.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUserFromContext(r.Context())
		require.True(t, ok)
		email = user.Email
	}))

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	guarded.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "a@x.io", email)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "https://admin.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://admin.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIsOriginAllowed(t *testing.T) {
	assert.True(t, isOriginAllowed("https://a.example", []string{"*"}))
	assert.True(t, isOriginAllowed("https://A.example", []string{"https://a.example"}))
	assert.False(t, isOriginAllowed("https://b.example", []string{"https://a.example"}))
	assert.False(t, isOriginAllowed("https://a.example", nil))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "a@x.io")
	env.do(t, http.MethodPost, "/login", "", map[string]any{"email": "a@x.io", "password": "nope-nope"})

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, `storeadmin_http_requests_total{method="POST",route="/signup",status="201"} 1`), text)
	assert.Contains(t, text, `storeadmin_auth_events_total{event="login",outcome="rejected"} 1`)
	assert.Contains(t, text, `storeadmin_auth_events_total{event="signup",outcome="success"} 1`)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServerAddr_FollowsConfig(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, ":0", env.server.Addr())
}
