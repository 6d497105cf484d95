package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"max=5"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(signup{Email: "alice@example.com", Password: "secret1"}))

	err := v.Struct(signup{Email: "not-an-email", Password: "123", Name: "toolongname"})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "password must be at least 6 characters long", verr.Fields["password"])
	assert.Equal(t, "name must be at most 5 characters long", verr.Fields["name"])
	assert.Equal(t,
		"validation failed: email must be a valid email address; name must be at most 5 characters long; password must be at least 6 characters long",
		err.Error())
}

func TestValidator_Required(t *testing.T) {
	err := New().Struct(signup{})

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email is required", verr.Fields["email"])
	assert.Equal(t, "password is required", verr.Fields["password"])
}
