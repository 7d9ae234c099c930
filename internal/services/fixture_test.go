package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/publishare/backend/internal/auth"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/anonto42/publishare/backend/internal/repositories"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	users  *repositories.MemoryUserRepository
	cards  *repositories.MemoryCardRepository
	tokens *auth.TokenManager
	auth   *AuthService
	user   *UserService
	card   *CardService
	search *SearchService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithVerifier(t, nil)
}

func newFixtureWithVerifier(t *testing.T, verifier IdentityVerifier) *fixture {
	t.Helper()
	users := repositories.NewMemoryUserRepository()
	cards := repositories.NewMemoryCardRepository(users)
	tokens := auth.NewTokenManager("test-secret", 4*time.Hour)
	return &fixture{
		users:  users,
		cards:  cards,
		tokens: tokens,
		auth: NewAuthService(users, tokens, verifier, AuthConfig{
			MaxFailedLogins: 3,
			LockDuration:    15 * time.Minute,
		}),
		user:   NewUserService(users, ""),
		card:   NewCardService(cards, users),
		search: NewSearchService(users, cards),
	}
}

func registerRequest(nickname, email string) models.RegisterRequest {
	return models.RegisterRequest{
		FirstName: "First",
		LastName:  "Last",
		Nickname:  nickname,
		Email:     email,
		Phone:     "0501234567",
		Country:   "Israel",
		Birthdate: "1990-04-12",
		Password:  "Password1",
	}
}

// register creates a user and returns the actor its token authenticates as.
func (f *fixture) register(t *testing.T, nickname, email string) auth.Actor {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), registerRequest(nickname, email))
	require.NoError(t, err)
	actor, err := f.auth.VerifyToken("Bearer " + resp.Token)
	require.NoError(t, err)
	return actor
}

// admin creates a user with the admin flag set.
func (f *fixture) admin(t *testing.T) auth.Actor {
	t.Helper()
	a := f.register(t, "admin", "admin@example.com")
	id, err := parseID(a.ID, "user")
	require.NoError(t, err)
	yes := true
	_, err = f.users.UpdateUser(context.Background(), id, models.UserUpdate{IsAdmin: &yes})
	require.NoError(t, err)
	return auth.Actor{ID: a.ID, IsAdmin: true}
}
