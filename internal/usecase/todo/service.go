package todo

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "todolist/backend/internal/domain/todo"

	"github.com/google/uuid"
)

// Service encapsulates todo use cases.
type Service struct {
	repo    domain.Repository
	nowFunc func() time.Time
}

// NewService constructs a todo service.
func NewService(repo domain.Repository) *Service {
	return &Service{
		repo:    repo,
		nowFunc: time.Now,
	}
}

// CreateInput contains the payload required for todo creation.
type CreateInput struct {
	Title       string
	Description string
	Status      string
	DueTime     *time.Time
}

// UpdateInput encapsulates partial todo updates. ClearDueTime removes the
// due time and takes precedence over DueTime.
type UpdateInput struct {
	Title        *string
	Description  *string
	Status       *string
	DueTime      *time.Time
	ClearDueTime bool
}

// Create stores a new todo owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*domain.Todo, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if ownerID == "" {
		return nil, errors.New("owner is required")
	}
	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	item := &domain.Todo{
		ID:          uuid.NewString(),
		Title:       title,
		Description: input.Description,
		Status:      status,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.DueTime != nil {
		due := input.DueTime.UTC()
		item.DueTime = &due
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// List retrieves all todos.
func (s *Service) List(ctx context.Context) ([]*domain.Todo, error) {
	return s.repo.List(ctx)
}

// ListByOwner retrieves the todos owned by userID.
func (s *Service) ListByOwner(ctx context.Context, userID string) ([]*domain.Todo, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get fetches a todo by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Todo, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Update applies partial updates to a todo owned by callerID.
func (s *Service) Update(ctx context.Context, callerID, id string, input UpdateInput) (*domain.Todo, error) {
	item, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, domain.ErrEmptyTitle
		}
		input.Title = &title
	}

	var status *domain.Status
	if input.Status != nil {
		parsed, err := domain.ParseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}

	var due *time.Time
	if input.DueTime != nil {
		utc := input.DueTime.UTC()
		due = &utc
	}

	item.Update(input.Title, input.Description, status, due, s.nowFunc().UTC())
	if input.ClearDueTime {
		item.DueTime = nil
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a todo owned by callerID.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	item, err := s.owned(ctx, callerID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, item.ID)
}

func (s *Service) owned(ctx context.Context, callerID, id string) (*domain.Todo, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.OwnedBy(callerID) {
		return nil, domain.ErrForbidden
	}
	return item, nil
}

func parseID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", domain.ErrInvalidID
	}
	return id.String(), nil
}
