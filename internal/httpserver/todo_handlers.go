package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	todousecase "todolist/backend/internal/usecase/todo"

	"github.com/go-chi/chi/v5"
)

var errInvalidDueTime = errors.New("due_time must be an RFC 3339 timestamp or a YYYY-MM-DD date")

// dueTimeLayouts lists accepted due_time formats, most specific first.
var dueTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type createTodoRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
	Status      string `json:"status"`
	DueTime     string `json:"due_time"`
}

// updateTodoRequest keeps due_time raw so an absent field can be told apart
// from null, which clears it.
type updateTodoRequest struct {
	Title       *string         `json:"title" validate:"omitempty,max=255"`
	Description *string         `json:"description" validate:"omitempty,max=4000"`
	Status      *string         `json:"status"`
	DueTime     json.RawMessage `json:"due_time"`
}

// parseDueTime returns nil for an empty value. Zone-less layouts are read as UTC.
func parseDueTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dueTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, errInvalidDueTime
}

// parseRawDueTime accepts a JSON string or null. Null and "" yield nil.
func parseRawDueTime(raw json.RawMessage) (*time.Time, error) {
	if string(raw) == "null" {
		return nil, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, errInvalidDueTime
	}
	return parseDueTime(value)
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	items, err := s.todoService.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload createTodoRequest
	if err := s.bind(w, r, &payload); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	due, err := parseDueTime(payload.DueTime)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	item, err := s.todoService.Create(r.Context(), user.ID, todousecase.CreateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
		DueTime:     due,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	item, err := s.todoService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload updateTodoRequest
	if err := s.bind(w, r, &payload); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	input := todousecase.UpdateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
	}
	if len(payload.DueTime) > 0 {
		due, err := parseRawDueTime(payload.DueTime)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		input.DueTime = due
		input.ClearDueTime = due == nil
	}

	item, err := s.todoService.Update(r.Context(), user.ID, chi.URLParam(r, "id"), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := s.todoService.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
