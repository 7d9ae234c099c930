package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The contract tests run the same scenarios against every backend.

func newTestUser(nickname, email string) *models.User {
	return &models.User{
		FirstName: "Test",
		LastName:  "User",
		Nickname:  nickname,
		Email:     email,
		Phone:     "0501234567",
		Country:   "Israel",
		Birthdate: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		Password:  "hash",
		Image:     models.DefaultProfileImage,
	}
}

func runUserRepositoryContract(t *testing.T, repo UserRepository) {
	ctx := context.Background()

	alice := newTestUser("kobi42", "alice@example.com")
	require.NoError(t, repo.CreateUser(ctx, alice))
	require.False(t, alice.ID.IsZero())

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.CreateUser(ctx, newTestUser("other", "alice@example.com"))
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := repo.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "kobi42", got.Nickname)

		got, err = repo.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		_, err = repo.GetUserByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		country := "Canada"
		admin := true
		got, err := repo.UpdateUser(ctx, alice.ID, models.UserUpdate{Country: &country, IsAdmin: &admin})
		require.NoError(t, err)
		assert.Equal(t, "Canada", got.Country)
		assert.True(t, got.IsAdmin)
		assert.Equal(t, "kobi42", got.Nickname)

		_, err = repo.UpdateUser(ctx, primitive.NewObjectID(), models.UserUpdate{Country: &country})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("failed logins", func(t *testing.T) {
		n, err := repo.IncrementFailedLogins(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		n, err = repo.IncrementFailedLogins(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		until := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
		require.NoError(t, repo.LockUser(ctx, alice.ID, until))
		got, err := repo.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LockUntil)
		assert.WithinDuration(t, until, *got.LockUntil, time.Second)
		assert.Zero(t, got.FailedLoginAttempts)

		require.NoError(t, repo.ResetFailedLogins(ctx, alice.ID))
		got, err = repo.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Nil(t, got.LockUntil)
	})

	t.Run("search is literal and case-insensitive", func(t *testing.T) {
		meta := newTestUser("a.b*c", "meta@example.com")
		require.NoError(t, repo.CreateUser(ctx, meta))

		users, err := repo.SearchUsers(ctx, "KOBI")
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, alice.ID, users[0].ID)

		users, err = repo.SearchUsers(ctx, "a.b*")
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, meta.ID, users[0].ID)

		users, err = repo.SearchUsers(ctx, ".*")
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("batch lookup skips missing", func(t *testing.T) {
		users, err := repo.GetUsersByIDs(ctx, []primitive.ObjectID{alice.ID, primitive.NewObjectID()})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, alice.ID, users[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		tmp := newTestUser("tmp", "tmp@example.com")
		require.NoError(t, repo.CreateUser(ctx, tmp))
		require.NoError(t, repo.DeleteUser(ctx, tmp.ID))
		assert.ErrorIs(t, repo.DeleteUser(ctx, tmp.ID), ErrNotFound)
	})
}

func runCardRepositoryContract(t *testing.T, users UserRepository, cards CardRepository) {
	ctx := context.Background()

	author := newTestUser("author", "author@example.com")
	require.NoError(t, users.CreateUser(ctx, author))
	fan := newTestUser("fan", "fan@example.com")
	require.NoError(t, users.CreateUser(ctx, fan))

	card := &models.Card{UserID: author.ID, Text: "hello world"}
	require.NoError(t, cards.CreateCard(ctx, card))
	require.False(t, card.ID.IsZero())

	t.Run("get", func(t *testing.T) {
		got, err := cards.GetCardByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello world", got.Text)
		assert.Equal(t, author.ID, got.UserID)
		assert.Empty(t, got.Likes)
		assert.Empty(t, got.Comments)

		_, err = cards.GetCardByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("likes have set semantics", func(t *testing.T) {
		got, err := cards.AddLike(ctx, card.ID, fan.ID)
		require.NoError(t, err)
		assert.Len(t, got.Likes, 1)

		got, err = cards.AddLike(ctx, card.ID, fan.ID)
		require.NoError(t, err)
		assert.Len(t, got.Likes, 1)

		got, err = cards.RemoveLike(ctx, card.ID, fan.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Likes)

		_, err = cards.AddLike(ctx, primitive.NewObjectID(), fan.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	first := models.Comment{ID: primitive.NewObjectID(), UserID: fan.ID, Text: "great hello", CreatedAt: time.Now().UTC()}
	second := models.Comment{ID: primitive.NewObjectID(), UserID: author.ID, Text: "thanks", CreatedAt: time.Now().UTC()}

	t.Run("comments keep insertion order", func(t *testing.T) {
		_, err := cards.AddComment(ctx, card.ID, first)
		require.NoError(t, err)
		got, err := cards.AddComment(ctx, card.ID, second)
		require.NoError(t, err)
		require.Len(t, got.Comments, 2)
		assert.Equal(t, first.ID, got.Comments[0].ID)
		assert.Equal(t, second.ID, got.Comments[1].ID)
	})

	t.Run("edit comment changes only text", func(t *testing.T) {
		got, err := cards.UpdateCommentText(ctx, card.ID, first.ID, "edited hello")
		require.NoError(t, err)
		cm, ok := got.FindComment(first.ID)
		require.True(t, ok)
		assert.Equal(t, "edited hello", cm.Text)
		assert.Equal(t, fan.ID, cm.UserID)

		_, err = cards.UpdateCommentText(ctx, card.ID, primitive.NewObjectID(), "x")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("search comments joins author", func(t *testing.T) {
		matches, err := cards.SearchComments(ctx, "HELLO")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, first.ID, matches[0].ID)
		assert.Equal(t, card.ID, matches[0].CardID)
		assert.Equal(t, "fan", matches[0].User.Nickname)

		matches, err = cards.SearchComments(ctx, "(")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("search cards", func(t *testing.T) {
		found, err := cards.SearchCards(ctx, "Hello")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, card.ID, found[0].ID)
	})

	t.Run("delete comment removes exactly one", func(t *testing.T) {
		got, err := cards.DeleteComment(ctx, card.ID, first.ID)
		require.NoError(t, err)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, second.ID, got.Comments[0].ID)

		_, err = cards.DeleteComment(ctx, card.ID, first.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update and list", func(t *testing.T) {
		link := "https://example.com"
		got, err := cards.UpdateCard(ctx, card.ID, models.CardUpdate{Link: &link})
		require.NoError(t, err)
		assert.Equal(t, "hello world", got.Text)
		assert.Equal(t, link, got.Link)

		newer := &models.Card{UserID: fan.ID, Video: "https://example.com/v.mp4"}
		require.NoError(t, cards.CreateCard(ctx, newer))

		all, err := cards.ListCards(ctx, nil)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(all), 2)
		assert.Equal(t, newer.ID, all[0].ID, "newest first")

		mine, err := cards.ListCards(ctx, &author.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, card.ID, mine[0].ID)
	})

	t.Run("delete card", func(t *testing.T) {
		require.NoError(t, cards.DeleteCard(ctx, card.ID))
		_, err := cards.GetCardByID(ctx, card.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, cards.DeleteCard(ctx, card.ID), ErrNotFound)
	})
}
