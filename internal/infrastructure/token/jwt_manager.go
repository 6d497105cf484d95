package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domain "todolist/backend/internal/domain/auth"
	usecase "todolist/backend/internal/usecase/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrEmptySecret is returned when the manager is built without a signing secret.
	ErrEmptySecret = errors.New("token signing secret is empty")
	// ErrInvalidTTL is returned for a non-positive token lifetime.
	ErrInvalidTTL = errors.New("token lifetime must be positive")
)

// DefaultTTL is the lifetime applied to issued tokens unless configured otherwise.
const DefaultTTL = 600 * time.Second

// JWTManager issues and validates HS256 JWTs carrying the subject email.
// It holds no mutable state and is safe for concurrent use.
type JWTManager struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	nowFunc func() time.Time
}

// NewJWTManager constructs a manager with the provided secret, lifetime and issuer.
func NewJWTManager(secret string, ttl time.Duration, issuer string) (*JWTManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &JWTManager{
		secret:  []byte(secret),
		ttl:     ttl,
		issuer:  issuer,
		nowFunc: time.Now,
	}, nil
}

// Ensure JWTManager implements the TokenManager interface.
var _ usecase.TokenManager = (*JWTManager)(nil)

// Claims represents token claims.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issue creates a signed JWT for an already authenticated email.
func (m *JWTManager) Issue(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", domain.ErrTokenMissingClaim
	}

	now := m.nowFunc().UTC()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the decoded claim.
// A token is rejected from the instant its expiry is reached.
func (m *JWTManager) Verify(tokenString string) (*domain.Claim, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.nowFunc),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claim := &domain.Claim{SubjectEmail: claims.Email}
	if claims.IssuedAt != nil {
		claim.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		claim.ExpiresAt = claims.ExpiresAt.Time
	}
	return claim, nil
}

// ExtractSubjectEmail verifies the token and returns its non-empty email claim.
func (m *JWTManager) ExtractSubjectEmail(tokenString string) (string, error) {
	claim, err := m.Verify(tokenString)
	if err != nil {
		return "", err
	}
	email := strings.TrimSpace(claim.SubjectEmail)
	if email == "" {
		return "", domain.ErrTokenMissingClaim
	}
	return email, nil
}

// TTL returns the configured token lifetime.
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}
