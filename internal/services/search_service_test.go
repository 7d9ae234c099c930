package services

import (
	"context"
	"testing"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kobi := f.register(t, "kobi42", "kobi@example.com")
	dana := f.register(t, "dana", "dana@example.com")

	post, err := f.card.CreatePost(ctx, kobi, models.CreateCardRequest{Text: "hello world"})
	require.NoError(t, err)
	_, err = f.card.AddComment(ctx, dana, post.ID.Hex(), "Hello back")
	require.NoError(t, err)

	t.Run("finds users posts and comments", func(t *testing.T) {
		res, err := f.search.Search(ctx, dana, "kobi")
		require.NoError(t, err)
		require.Len(t, res.Users, 1)
		assert.Equal(t, "kobi42", res.Users[0].Nickname)

		res, err = f.search.Search(ctx, dana, "hello")
		require.NoError(t, err)
		require.Len(t, res.Posts, 1)
		assert.Equal(t, "hello world", res.Posts[0].Text)
		require.NotNil(t, res.Posts[0].Author)
		assert.Equal(t, "kobi42", res.Posts[0].Author.Nickname)
		require.Len(t, res.Comments, 1)
		assert.Equal(t, post.ID, res.Comments[0].CardID)
		assert.Equal(t, "dana", res.Comments[0].User.Nickname)
	})

	t.Run("empty lists are never nil", func(t *testing.T) {
		res, err := f.search.Search(ctx, dana, "zzz-no-match")
		require.NoError(t, err)
		assert.NotNil(t, res.Users)
		assert.NotNil(t, res.Posts)
		assert.NotNil(t, res.Comments)
	})

	t.Run("metacharacters are literal", func(t *testing.T) {
		res, err := f.search.Search(ctx, dana, ".*")
		require.NoError(t, err)
		assert.Empty(t, res.Users)
		assert.Empty(t, res.Posts)
		assert.Empty(t, res.Comments)
	})

	t.Run("query is matched untrimmed", func(t *testing.T) {
		res, err := f.search.Search(ctx, dana, "world")
		require.NoError(t, err)
		assert.Len(t, res.Posts, 1)

		res, err = f.search.Search(ctx, dana, "world ")
		require.NoError(t, err)
		assert.Empty(t, res.Posts, "trailing space must match too")

		res, err = f.search.Search(ctx, dana, " world")
		require.NoError(t, err)
		assert.Len(t, res.Posts, 1)
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := f.search.Search(ctx, dana, "   ")
		requireKind(t, err, apperr.KindValidation, "")
	})
}
