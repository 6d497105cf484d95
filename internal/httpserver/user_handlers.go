package httpserver

import (
	"errors"
	"net/http"
	"strings"

	userusecase "todolist/backend/internal/usecase/user"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var errInvalidUserID = errors.New("invalid user id")

func userIDParam(r *http.Request) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		return "", errInvalidUserID
	}
	return id.String(), nil
}

type updateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	Name      *string `json:"name" validate:"omitempty,max=100"`
	Firstname *string `json:"firstname" validate:"omitempty,max=100"`
	Password  *string `json:"password"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	user, err := s.userService.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUserID(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := s.userService.IDByEmail(r.Context(), user.Email)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleUserTodos(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := s.todoService.ListByOwner(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := userIDParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var payload updateUserRequest
	if err := s.bind(w, r, &payload); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user, err := s.userService.Update(r.Context(), caller.ID, id, userusecase.UpdateInput{
		Email:     payload.Email,
		Name:      payload.Name,
		Firstname: payload.Firstname,
		Password:  payload.Password,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := userIDParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.userService.Delete(r.Context(), caller.ID, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
