package services

import (
	"context"
	"strings"
	"testing"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/auth"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

func TestCreateThenGetPreservesFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")

	created, err := f.card.CreatePost(ctx, alice, models.CreateCardRequest{
		Text:  "hello <b>world</b>",
		Image: &models.CardImageRequest{URL: "https://example.com/a.png", Alt: "a"},
		Link:  "https://example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello <b>world</b>", created.Text)
	assert.Equal(t, alice.ID, created.UserID.Hex())
	require.NotNil(t, created.Author)
	assert.Equal(t, "alice", created.Author.Nickname)

	got, err := f.card.GetPost(ctx, alice, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created.Text, got.Text)
	assert.Equal(t, created.Image, got.Image)
	assert.Equal(t, created.Link, got.Link)
	assert.Empty(t, got.Likes)
	assert.Empty(t, got.Comments)
}

func TestUserTextStoredAsSent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")

	texts := []string{
		"if a<b and c>d then swap",
		"tip: wrap code in <code>x</code>",
		"fish & chips",
		"  leading and trailing spaces  ",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			created, err := f.card.CreatePost(ctx, alice, models.CreateCardRequest{Text: text})
			require.NoError(t, err)

			got, err := f.card.GetPost(ctx, alice, created.ID.Hex())
			require.NoError(t, err)
			assert.Equal(t, text, got.Text)

			comments, err := f.card.AddComment(ctx, alice, created.ID.Hex(), text)
			require.NoError(t, err)
			require.Len(t, comments, 1)
			assert.Equal(t, text, comments[0].Text)

			edited, err := f.card.UpdateComment(ctx, alice, created.ID.Hex(), comments[0].ID.Hex(), text+"!")
			require.NoError(t, err)
			assert.Equal(t, text+"!", edited.Text)
		})
	}
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")

	_, err := f.card.CreatePost(ctx, alice, models.CreateCardRequest{})
	requireKind(t, err, apperr.KindValidation, "")

	_, err = f.card.CreatePost(ctx, alice, models.CreateCardRequest{Text: "   "})
	requireKind(t, err, apperr.KindValidation, "")

	_, err = f.card.CreatePost(ctx, auth.Actor{}, models.CreateCardRequest{Text: "hi"})
	requireKind(t, err, apperr.KindUnauthorized, apperr.CodeMissingToken)
}

func TestGetPostErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")

	_, err := f.card.GetPost(ctx, alice, "not-an-id")
	requireKind(t, err, apperr.KindValidation, apperr.CodeInvalidID)

	_, err = f.card.GetPost(ctx, alice, primitive.NewObjectID().Hex())
	requireKind(t, err, apperr.KindNotFound, "")

	_, err = f.card.ListPosts(ctx, alice, "bogus")
	requireKind(t, err, apperr.KindValidation, apperr.CodeInvalidID)
}

func TestToggleLikeTwiceReturnsToZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	post, err := f.card.CreatePost(ctx, alice, models.CreateCardRequest{Text: "like me"})
	require.NoError(t, err)

	res, err := f.card.ToggleLike(ctx, bob, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, res.LikesCount)
	assert.True(t, res.IsLikedByCurrentUser)

	res, err = f.card.ToggleLike(ctx, bob, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 0, res.LikesCount)
	assert.False(t, res.IsLikedByCurrentUser)
}

func TestUpdatePostOwnershipGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")
	admin := f.admin(t)

	post, err := f.card.CreatePost(ctx, alice, models.CreateCardRequest{Text: "original"})
	require.NoError(t, err)

	_, err = f.card.UpdatePost(ctx, bob, post.ID.Hex(), models.UpdateCardRequest{Text: strPtr("hijacked")})
	requireKind(t, err, apperr.KindForbidden, apperr.CodeForbidden)
	e, _ := apperr.As(err)
	assert.Equal(t, apperr.ForbiddenMessage, e.Message)

	updated, err := f.card.UpdatePost(ctx, admin, post.ID.Hex(), models.UpdateCardRequest{Text: strPtr("moderated")})
	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Text)

	updated, err = f.card.UpdatePost(ctx, alice, post.ID.Hex(), models.UpdateCardRequest{Link: strPtr("https://example.com")})
	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Text, "absent fields are untouched")
	assert.Equal(t, "https://example.com", updated.Link)
}

func TestUpdatePostKeepsContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")

	post, err := f.card.CreatePost(ctx, alice, models.CreateCardRequest{Text: "only text"})
	require.NoError(t, err)

	_, err = f.card.UpdatePost(ctx, alice, post.ID.Hex(), models.UpdateCardRequest{Text: strPtr("")})
	requireKind(t, err, apperr.KindValidation, "")

	updated, err := f.card.UpdatePost(ctx, alice, post.ID.Hex(), models.UpdateCardRequest{
		Text:  strPtr(""),
		Video: strPtr("https://example.com/v.mp4"),
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Text)
	assert.Equal(t, "https://example.com/v.mp4", updated.Video)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	post, err := f.card.CreatePost(ctx, alice, models.CreateCardRequest{Text: "bye"})
	require.NoError(t, err)
	_, err = f.card.AddComment(ctx, bob, post.ID.Hex(), "nice")
	require.NoError(t, err)

	_, err = f.card.DeletePost(ctx, bob, post.ID.Hex())
	requireKind(t, err, apperr.KindForbidden, "")

	deleted, err := f.card.DeletePost(ctx, alice, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, post.ID, deleted.ID)

	_, err = f.card.GetPost(ctx, alice, post.ID.Hex())
	requireKind(t, err, apperr.KindNotFound, "")
	_, err = f.card.DeletePost(ctx, alice, post.ID.Hex())
	requireKind(t, err, apperr.KindNotFound, "")
}

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")
	carol := f.register(t, "carol", "carol@example.com")
	admin := f.admin(t)

	post, err := f.card.CreatePost(ctx, alice, models.CreateCardRequest{Text: "discuss"})
	require.NoError(t, err)

	comments, err := f.card.AddComment(ctx, bob, post.ID.Hex(), "  first!  ")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first!", comments[0].Text)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "bob", comments[0].Author.Nickname)
	first := comments[0]

	comments, err = f.card.AddComment(ctx, carol, post.ID.Hex(), "second")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	second := comments[1]

	t.Run("validation", func(t *testing.T) {
		_, err := f.card.AddComment(ctx, bob, post.ID.Hex(), "   ")
		requireKind(t, err, apperr.KindValidation, "")
		_, err = f.card.AddComment(ctx, bob, post.ID.Hex(), strings.Repeat("x", 301))
		requireKind(t, err, apperr.KindValidation, "")
		_, err = f.card.AddComment(ctx, bob, primitive.NewObjectID().Hex(), "orphan")
		requireKind(t, err, apperr.KindNotFound, "")
	})

	t.Run("edit preserves id and author", func(t *testing.T) {
		edited, err := f.card.UpdateComment(ctx, bob, post.ID.Hex(), first.ID.Hex(), "first, edited")
		require.NoError(t, err)
		assert.Equal(t, first.ID, edited.ID)
		assert.Equal(t, first.UserID, edited.UserID)
		assert.Equal(t, first.CreatedAt, edited.CreatedAt)
		assert.Equal(t, "first, edited", edited.Text)
	})

	t.Run("edit by other is forbidden, by admin allowed", func(t *testing.T) {
		_, err := f.card.UpdateComment(ctx, alice, post.ID.Hex(), first.ID.Hex(), "post owner edit")
		requireKind(t, err, apperr.KindForbidden, "")

		_, err = f.card.UpdateComment(ctx, admin, post.ID.Hex(), first.ID.Hex(), "admin edit")
		require.NoError(t, err)
	})

	t.Run("missing comment", func(t *testing.T) {
		_, err := f.card.UpdateComment(ctx, bob, post.ID.Hex(), primitive.NewObjectID().Hex(), "x")
		requireKind(t, err, apperr.KindNotFound, "")
		_, err = f.card.DeleteComment(ctx, bob, post.ID.Hex(), "bad")
		requireKind(t, err, apperr.KindValidation, apperr.CodeInvalidID)
	})

	t.Run("delete is gated like edit", func(t *testing.T) {
		_, err := f.card.DeleteComment(ctx, carol, post.ID.Hex(), first.ID.Hex())
		requireKind(t, err, apperr.KindForbidden, "")
	})

	t.Run("delete removes exactly one", func(t *testing.T) {
		remaining, err := f.card.DeleteComment(ctx, bob, post.ID.Hex(), first.ID.Hex())
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, second.ID, remaining[0].ID)
	})
}

// Alice registers, posts, Bob comments, Alice edits her post, Bob likes it twice.
func TestAliceScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	post, err := f.card.CreatePost(ctx, alice, models.CreateCardRequest{Text: "hello"})
	require.NoError(t, err)

	_, err = f.card.AddComment(ctx, bob, post.ID.Hex(), "hi alice")
	require.NoError(t, err)

	_, err = f.card.UpdatePost(ctx, alice, post.ID.Hex(), models.UpdateCardRequest{Text: strPtr("hello again")})
	require.NoError(t, err)

	_, err = f.card.ToggleLike(ctx, bob, post.ID.Hex())
	require.NoError(t, err)
	_, err = f.card.ToggleLike(ctx, bob, post.ID.Hex())
	require.NoError(t, err)

	got, err := f.card.GetPost(ctx, alice, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "hello again", got.Text)
	assert.Empty(t, got.Likes)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "hi alice", got.Comments[0].Text)
	assert.Equal(t, bob.ID, got.Comments[0].UserID.Hex())
}

func TestListPostsNewestFirstAndFiltered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	p1, err := f.card.CreatePost(ctx, alice, models.CreateCardRequest{Text: "one"})
	require.NoError(t, err)
	p2, err := f.card.CreatePost(ctx, bob, models.CreateCardRequest{Text: "two"})
	require.NoError(t, err)

	all, err := f.card.ListPosts(ctx, alice, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, p2.ID, all[0].ID)

	mine, err := f.card.ListPosts(ctx, alice, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p1.ID, mine[0].ID)
}
