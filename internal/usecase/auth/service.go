package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "todolist/backend/internal/domain/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultMinPasswordLength is the shortest password accepted at registration.
	DefaultMinPasswordLength = 6
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

// Service coordinates authentication workflows between domain and infrastructure.
type Service struct {
	users          domain.UserRepository
	tokens         TokenManager
	minPasswordLen int
	nowFunc        func() time.Time
}

// NewService constructs an auth service.
func NewService(users domain.UserRepository, tokens TokenManager, minPasswordLen int) *Service {
	if minPasswordLen <= 0 {
		minPasswordLen = DefaultMinPasswordLength
	}
	return &Service{
		users:          users,
		tokens:         tokens,
		minPasswordLen: minPasswordLen,
		nowFunc:        time.Now,
	}
}

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	Firstname string
}

// Register creates a new user and returns a token for it along with the user
// stripped of its password hash.
func (s *Service) Register(ctx context.Context, input RegisterInput) (string, *domain.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return "", nil, domain.ErrEmailRequired
	}
	if err := CheckPassword(input.Password, s.minPasswordLen); err != nil {
		return "", nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, err
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return "", nil, err
	}

	now := s.nowFunc().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Firstname:    strings.TrimSpace(input.Firstname),
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, SanitizeUser(user), nil
}

// Login validates credentials and returns a token plus user.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (string, *domain.User, error) {
	email := normalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", nil, err
	}

	return token, SanitizeUser(user), nil
}

// VerifyToken validates a token and returns the user it identifies. A token
// for an account deleted since issuance is rejected.
func (s *Service) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	email, err := s.tokens.ExtractSubjectEmail(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: subject no longer exists", domain.ErrTokenInvalid)
		}
		return nil, err
	}

	return SanitizeUser(user), nil
}

// RenewToken exchanges a still valid token for a freshly issued one.
func (s *Service) RenewToken(ctx context.Context, token string) (string, error) {
	user, err := s.VerifyToken(ctx, token)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(user.Email)
}

// ChangePassword replaces the user's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" {
		return domain.ErrPasswordMismatch
	}
	if err := CheckPassword(next, s.minPasswordLen); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return domain.ErrPasswordMismatch
	}
	if current == next {
		return domain.ErrPasswordUnchanged
	}

	hashed, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hashed, s.nowFunc().UTC())
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword enforces the length bounds a password must meet before hashing.
func CheckPassword(password string, minLen int) error {
	if len(password) < minLen {
		return fmt.Errorf("%w: minimum %d characters required", domain.ErrPasswordTooShort, minLen)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: maximum %d bytes allowed", domain.ErrPasswordTooLong, MaxPasswordBytes)
	}
	return nil
}

// SanitizeUser returns a copy of u without its password hash.
func SanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
