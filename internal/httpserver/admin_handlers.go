package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	userusecase "storeadmin/backend/internal/usecase/user"
)

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.List(r.Context(), userusecase.Filter{Role: r.URL.Query().Get("role")})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleAdminUserByID(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
