package todo

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates a todo could not be located.
	ErrNotFound = errors.New("todo not found")
	// ErrInvalidStatus is returned for a status outside the supported set.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidID is returned when an identifier is not a UUID.
	ErrInvalidID = errors.New("invalid id")
	// ErrForbidden is returned when a caller mutates a todo it does not own.
	ErrForbidden = errors.New("todo belongs to another user")
	// ErrEmptyTitle is returned when a title is blank.
	ErrEmptyTitle = errors.New("title is required")
)

// Status is the progress state of a todo.
type Status string

const (
	StatusNotStarted Status = "not started"
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in progress"
	StatusDone       Status = "done"
)

// ParseStatus normalises raw input, defaulting an empty value to StatusNotStarted.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "":
		return StatusNotStarted, nil
	case StatusNotStarted, StatusTodo, StatusInProgress, StatusDone:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Todo is a single task owned by a user.
type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	DueTime     *time.Time `json:"due_time"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Update applies the non-nil fields and bumps UpdatedAt.
func (t *Todo) Update(title, description *string, status *Status, dueTime *time.Time, now time.Time) {
	if title != nil {
		t.Title = *title
	}
	if description != nil {
		t.Description = *description
	}
	if status != nil {
		t.Status = *status
	}
	if dueTime != nil {
		due := *dueTime
		t.DueTime = &due
	}
	t.UpdatedAt = now
}

// OwnedBy reports whether userID owns the todo.
func (t *Todo) OwnedBy(userID string) bool {
	return t.UserID == userID
}
