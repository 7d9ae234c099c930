package services

import (
	"context"
	"testing"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetUserSelfOrAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")
	admin := f.admin(t)

	p, err := f.user.GetUser(ctx, alice, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Nickname)
	assert.Equal(t, "Israel", p.Country)

	_, err = f.user.GetUser(ctx, bob, alice.ID)
	requireKind(t, err, apperr.KindForbidden, "")

	_, err = f.user.GetUser(ctx, admin, alice.ID)
	require.NoError(t, err)

	_, err = f.user.GetUser(ctx, admin, primitive.NewObjectID().Hex())
	requireKind(t, err, apperr.KindNotFound, "")

	_, err = f.user.GetUser(ctx, admin, "xyz")
	requireKind(t, err, apperr.KindValidation, apperr.CodeInvalidID)

	pub, err := f.user.GetPublicProfile(ctx, bob, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", pub.Nickname)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	p, err := f.user.UpdateProfile(ctx, alice, alice.ID, models.UpdateProfileRequest{Nickname: "ally", Birthdate: "1991-01-02"})
	require.NoError(t, err)
	assert.Equal(t, "ally", p.Nickname)
	assert.Equal(t, "First", p.FirstName, "empty fields keep their value")
	assert.Equal(t, 1991, p.Birthdate.Year())

	_, err = f.user.UpdateProfile(ctx, bob, alice.ID, models.UpdateProfileRequest{Nickname: "pwned"})
	requireKind(t, err, apperr.KindForbidden, "")
}

func TestAdminUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")
	admin := f.admin(t)

	req := models.AdminUpdateUserRequest{
		FirstName: "Alicia",
		LastName:  "Smith",
		Nickname:  "alicia",
		Email:     "alicia@example.com",
		Phone:     "0509999999",
		Country:   "Canada",
		Birthdate: "1990-04-12",
		IsAdmin:   true,
	}

	_, err := f.user.AdminUpdateUser(ctx, alice, alice.ID, req)
	requireKind(t, err, apperr.KindForbidden, "")

	u, err := f.user.AdminUpdateUser(ctx, admin, alice.ID, req)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.Equal(t, "alicia@example.com", u.Email)

	req.Email = "admin@example.com"
	_, err = f.user.AdminUpdateUser(ctx, admin, alice.ID, req)
	requireKind(t, err, apperr.KindConflict, apperr.CodeDuplicateEmail)
}

// An admin deletes a user; the user can no longer be fetched or log in.
func TestAdminDeleteScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")
	admin := f.admin(t)

	err := f.user.DeleteUser(ctx, bob, alice.ID)
	requireKind(t, err, apperr.KindForbidden, "")

	require.NoError(t, f.user.DeleteUser(ctx, admin, alice.ID))

	_, err = f.user.GetUser(ctx, admin, alice.ID)
	requireKind(t, err, apperr.KindNotFound, "")
	_, err = f.auth.Login(ctx, "alice@example.com", "Password1")
	requireKind(t, err, apperr.KindNotFound, "")

	err = f.user.DeleteUser(ctx, admin, alice.ID)
	requireKind(t, err, apperr.KindNotFound, "")
}

func TestProfileImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")

	p, err := f.user.SetProfileImage(ctx, alice, "https://example.com/me.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/me.png", p.Image)

	p, err = f.user.ResetProfileImage(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProfileImage, p.Image)
}
