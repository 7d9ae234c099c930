package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/anonto42/publishare/backend/pkg/firebase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireKind(t *testing.T, err error, kind apperr.Kind, code string) {
	t.Helper()
	e, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %v", err)
	assert.Equal(t, kind, e.Kind)
	if code != "" {
		assert.Equal(t, code, e.Code)
	}
}

func TestRegisterLoginVerifyRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, registerRequest("alice", "Alice@Example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.Equal(t, models.DefaultProfileImage, reg.User.Image)
	assert.False(t, reg.User.IsAdmin)

	login, err := f.auth.Login(ctx, "alice@example.com", "Password1")
	require.NoError(t, err)

	actor, err := f.auth.VerifyToken("Bearer " + login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.Hex(), actor.ID)
	assert.False(t, actor.IsAdmin)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, registerRequest("alice", "alice@example.com"))
	require.NoError(t, err)
	_, err = f.auth.Register(ctx, registerRequest("alice2", "ALICE@example.com"))
	requireKind(t, err, apperr.KindConflict, apperr.CodeDuplicateEmail)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "alice@example.com")

	_, err := f.auth.Login(ctx, "nobody@example.com", "Password1")
	requireKind(t, err, apperr.KindNotFound, "")

	_, err2 := f.auth.Login(ctx, "alice@example.com", "wrong-password")
	requireKind(t, err2, apperr.KindValidation, apperr.CodeInvalidCredentials)

	e1, _ := apperr.As(err)
	e2, _ := apperr.As(err2)
	assert.Equal(t, e1.Message, e2.Message, "unknown email and bad password share a message")
}

func TestLoginLockout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "alice@example.com")

	for i := 0; i < 3; i++ {
		_, err := f.auth.Login(ctx, "alice@example.com", "wrong-password")
		requireKind(t, err, apperr.KindValidation, apperr.CodeInvalidCredentials)
	}

	_, err := f.auth.Login(ctx, "alice@example.com", "Password1")
	requireKind(t, err, apperr.KindLocked, apperr.CodeAccountLocked)

	// once the lock has passed the right password works again and clears the counter
	f.auth.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	_, err = f.auth.Login(ctx, "alice@example.com", "Password1")
	require.NoError(t, err)

	u, err := f.users.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Zero(t, u.FailedLoginAttempts)
	assert.Nil(t, u.LockUntil)
}

func TestVerifyTokenErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.VerifyToken("")
	requireKind(t, err, apperr.KindUnauthorized, apperr.CodeMissingToken)

	_, err = f.auth.VerifyToken("Bearer not-a-jwt")
	requireKind(t, err, apperr.KindUnauthorized, apperr.CodeInvalidToken)
	e, _ := apperr.As(err)
	assert.Equal(t, 403, e.Status())
}

type stubVerifier struct {
	identity *firebase.Identity
	err      error
}

func (s stubVerifier) VerifyIDToken(context.Context, string) (*firebase.Identity, error) {
	return s.identity, s.err
}

func TestFirebaseLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		_, err := newFixture(t).auth.FirebaseLogin(ctx, "token")
		requireKind(t, err, apperr.KindUnavailable, "")
	})

	t.Run("bad token", func(t *testing.T) {
		f := newFixtureWithVerifier(t, stubVerifier{err: errors.New("expired")})
		_, err := f.auth.FirebaseLogin(ctx, "token")
		requireKind(t, err, apperr.KindUnauthorized, apperr.CodeInvalidIDToken)
	})

	t.Run("creates then reuses user", func(t *testing.T) {
		f := newFixtureWithVerifier(t, stubVerifier{identity: &firebase.Identity{
			UID: "uid-1", Email: "Bob@Example.com", Name: "Bob Stone",
		}})

		first, err := f.auth.FirebaseLogin(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", first.User.Email)
		assert.Equal(t, "Bob", first.User.FirstName)
		assert.Equal(t, "Stone", first.User.LastName)
		assert.Equal(t, "bob", first.User.Nickname)

		second, err := f.auth.FirebaseLogin(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, first.User.ID, second.User.ID)
	})
}

func TestRegisterKeepsNameCharacters(t *testing.T) {
	f := newFixture(t)
	req := registerRequest("a<b and c>d", "angle@example.com")
	req.FirstName = "  Tom & <Jerry>  "

	reg, err := f.auth.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "a<b and c>d", reg.User.Nickname)
	assert.Equal(t, "Tom & <Jerry>", reg.User.FirstName, "only surrounding space is trimmed")
}
