package user

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "todolist/backend/internal/domain/auth"
	authusecase "todolist/backend/internal/usecase/auth"
)

// Service provides account management use cases.
type Service struct {
	repo           domain.UserRepository
	minPasswordLen int
	nowFunc        func() time.Time
}

// NewService constructs a user service around the provided repository.
func NewService(repo domain.UserRepository, minPasswordLen int) *Service {
	if minPasswordLen <= 0 {
		minPasswordLen = authusecase.DefaultMinPasswordLength
	}
	return &Service{
		repo:           repo,
		minPasswordLen: minPasswordLen,
		nowFunc:        time.Now,
	}
}

// UpdateInput defines the payload to update a user. Nil fields are left untouched.
type UpdateInput struct {
	Email     *string
	Name      *string
	Firstname *string
	Password  *string
}

// List returns every user without password hashes.
func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return sanitizeUsers(users), nil
}

// Get retrieves a single user by its identifier.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("user id is required")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return authusecase.SanitizeUser(user), nil
}

// IDByEmail resolves the identifier of the account registered under email.
func (s *Service) IDByEmail(ctx context.Context, email string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// Update modifies the account identified by id on behalf of callerID.
// Users may only modify their own account.
func (s *Service) Update(ctx context.Context, callerID, id string, input UpdateInput) (*domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("user id is required")
	}
	if id != callerID {
		return nil, domain.ErrForbidden
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email == "" {
			return nil, domain.ErrEmailRequired
		}
		user.Email = email
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Firstname != nil {
		user.Firstname = strings.TrimSpace(*input.Firstname)
	}

	// Profile fields and password are persisted by a single Update.
	user.PasswordHash = ""
	if input.Password != nil {
		if err := authusecase.CheckPassword(*input.Password, s.minPasswordLen); err != nil {
			return nil, err
		}
		user.PasswordHash, err = authusecase.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
	}

	user.UpdatedAt = s.nowFunc().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return authusecase.SanitizeUser(user), nil
}

// Delete removes the account identified by id on behalf of callerID.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("user id is required")
	}
	if id != callerID {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func sanitizeUsers(items []*domain.User) []*domain.User {
	out := make([]*domain.User, 0, len(items))
	for _, item := range items {
		out = append(out, authusecase.SanitizeUser(item))
	}
	return out
}
