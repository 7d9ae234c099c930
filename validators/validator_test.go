package validators

import (
	"testing"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegister() models.RegisterRequest {
	return models.RegisterRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Nickname:  "alice",
		Email:     "alice@example.com",
		Phone:     "0501234567",
		Country:   "Israel",
		Birthdate: "1990-04-12",
		Password:  "Password1",
	}
}

func TestValidate_Register(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Validate(validRegister()))

	req := validRegister()
	req.Phone = "12345"
	req.Email = "not-an-email"
	err := v.Validate(req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "phone must be exactly 10 characters")
	assert.Contains(t, err.Error(), "email must be a valid email")
}

func TestValidate_Birthdate(t *testing.T) {
	v := NewValidator()
	for _, ok := range []string{"1990-04-12", "1990-04-12T00:00:00Z"} {
		req := validRegister()
		req.Birthdate = ok
		assert.NoError(t, v.Validate(req), ok)
	}

	req := validRegister()
	req.Birthdate = "12/04/1990"
	err := v.Validate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "birthdate must be a date")
}

func TestValidate_CardURLs(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Validate(models.CreateCardRequest{Link: "https://example.com/a"}))

	err := v.Validate(models.CreateCardRequest{Video: "not a url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "video must be a valid absolute URL")
}

func TestValidate_CommentLength(t *testing.T) {
	v := NewValidator()
	long := make([]byte, 301)
	for i := range long {
		long[i] = 'a'
	}
	err := v.Validate(models.CommentRequest{Text: string(long)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text must be at most 300 characters")

	assert.Error(t, v.Validate(models.CommentRequest{}))
}
