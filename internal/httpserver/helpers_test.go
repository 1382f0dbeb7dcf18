package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storeadmin/backend/internal/config"
	authdomain "storeadmin/backend/internal/domain/auth"
	"storeadmin/backend/internal/infrastructure/memory"
	"storeadmin/backend/internal/infrastructure/token"
	addressusecase "storeadmin/backend/internal/usecase/address"
	authusecase "storeadmin/backend/internal/usecase/auth"
	userusecase "storeadmin/backend/internal/usecase/user"
)

type testEnv struct {
	server   *Server
	users    *memory.UserRepository
	registry *prometheus.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUserRepository()
	issuer := token.NewIssuer("http-test-secret-0123456789abcdef", 0, "storeadmin-test", memory.NewSessionStore())
	registry := prometheus.NewRegistry()

	cfg := config.Config{
		HTTPPort:        "0",
		AllowedOrigins:  []string{"https://admin.example"},
		ReadTimeoutSec:  5,
		WriteTimeoutSec: 5,
		IdleTimeoutSec:  5,
	}
	srv := NewServer(cfg, Services{
		Auth:      authusecase.NewService(users, issuer, authusecase.WithBcryptCost(bcrypt.MinCost)),
		Users:     userusecase.NewService(users),
		Addresses: addressusecase.NewService(memory.NewAddressRepository()),
	}, WithMetrics(registry))

	return &testEnv{server: srv, users: users, registry: registry}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signup(t *testing.T, email string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/signup", "", map[string]any{
		"name":                  "Test User",
		"email":                 email,
		"password":              "secret123",
		"password_confirmation": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/login", "", map[string]any{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (e *testEnv) seedAdmin(t *testing.T, email string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, e.users.Create(context.Background(), &authdomain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Admin",
		Role:         authdomain.RoleAdmin,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var out errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
