package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authdomain "storeadmin/backend/internal/domain/auth"
)

func (s *Server) registerRoutes() {
	r := s.router
	r.NotFound(writeNotFound)
	r.MethodNotAllowed(writeMethodNotAllowed)

	r.Get("/health", s.handleHealth)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler())
	}

	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	// Everything user-scoped lives in this group so it cannot skip the guard.
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/user", s.handleCurrentUser)

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", s.handleListAddresses)
			r.Post("/", s.handleCreateAddress)
			r.Get("/{id}", s.handleGetAddress)
			r.Put("/{id}", s.handleUpdateAddress)
			r.Patch("/{id}", s.handleUpdateAddress)
			r.Delete("/{id}", s.handleDeleteAddress)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireRole(authdomain.RoleAdmin))
			r.Get("/users", s.handleAdminUsers)
			r.Get("/users/{id}", s.handleAdminUserByID)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var payload authdomain.Registration
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := s.authService.Signup(r.Context(), payload)
	s.metrics.authEvent("signup", outcome(err))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully.",
		"user":    user,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload authdomain.Credentials
	if !decodeJSON(w, r, &payload) {
		return
	}

	token, user, err := s.authService.Login(r.Context(), payload)
	s.metrics.authEvent("login", outcome(err))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// handleLogout revokes the presented token. A token that is already revoked
// or unknown still logs out successfully; a missing token does not.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
		return
	}

	err := s.authService.Logout(r.Context(), token)
	s.metrics.authEvent("logout", outcome(err))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully."})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func outcome(err error) string {
	var vErr *authdomain.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &vErr):
		return "invalid"
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		return "rejected"
	default:
		return "error"
	}
}
