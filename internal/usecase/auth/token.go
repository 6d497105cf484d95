package auth

import domain "todolist/backend/internal/domain/auth"

// TokenManager abstracts token issuance and verification.
type TokenManager interface {
	Issue(email string) (string, error)
	Verify(token string) (*domain.Claim, error)
	ExtractSubjectEmail(token string) (string, error)
}
