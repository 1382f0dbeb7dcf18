package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	addressusecase "storeadmin/backend/internal/usecase/address"
)

func (s *Server) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUserFromContext(r.Context())
	addresses, err := s.addressService.List(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"addresses": addresses})
}

func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUserFromContext(r.Context())

	var payload addressusecase.CreateInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	address, err := s.addressService.Create(r.Context(), user.ID, payload)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, address)
}

func (s *Server) handleGetAddress(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUserFromContext(r.Context())
	address, err := s.addressService.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, address)
}

func (s *Server) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUserFromContext(r.Context())

	var payload addressusecase.UpdateInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	address, err := s.addressService.Update(r.Context(), user.ID, chi.URLParam(r, "id"), payload)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, address)
}

func (s *Server) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUserFromContext(r.Context())
	if err := s.addressService.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
