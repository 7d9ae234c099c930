package services

import (
	"context"
	"strings"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/auth"
	"github.com/anonto42/publishare/backend/internal/metrics"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/anonto42/publishare/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SearchService struct {
	users repositories.UserRepository
	cards repositories.CardRepository
}

func NewSearchService(users repositories.UserRepository, cards repositories.CardRepository) *SearchService {
	return &SearchService{users: users, cards: cards}
}

// Search matches q as a literal, case-insensitive substring across users, post text and
// comment text. q is matched as sent, surrounding spaces included. All three result lists
// are always present.
func (s *SearchService) Search(ctx context.Context, actor auth.Actor, q string) (*models.SearchResult, error) {
	if _, err := actorID(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(q) == "" {
		return nil, apperr.Validation(msgEmptySearch)
	}

	users, err := s.users.SearchUsers(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	cards, err := s.cards.SearchCards(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	comments, err := s.cards.SearchComments(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	owners := make([]primitive.ObjectID, 0, len(cards))
	for _, c := range cards {
		owners = append(owners, c.UserID)
	}
	authors, err := resolveAuthors(ctx, s.users, owners)
	if err != nil {
		return nil, err
	}

	result := &models.SearchResult{
		Users:    make([]models.UserSummary, 0, len(users)),
		Posts:    make([]models.PostSummary, 0, len(cards)),
		Comments: comments,
	}
	if result.Comments == nil {
		result.Comments = []models.CommentMatch{}
	}
	for i := range users {
		result.Users = append(result.Users, users[i].ToSummary())
	}
	for _, c := range cards {
		result.Posts = append(result.Posts, models.PostSummary{
			ID:     c.ID,
			UserID: c.UserID,
			Author: authorOf(authors, c.UserID),
			Text:   c.Text,
			Image:  c.Image,
			Video:  c.Video,
			Link:   c.Link,
		})
	}

	metrics.SearchQueries.Inc()
	return result, nil
}
