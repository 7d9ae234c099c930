package services

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/auth"
	"github.com/anonto42/publishare/backend/internal/metrics"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/anonto42/publishare/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxCardText    = 500
	maxCommentText = 300
)

// CardService implements posts, their comments and likes. Every operation needs an
// authenticated actor; mutations of someone else's content need the admin flag.
type CardService struct {
	cards repositories.CardRepository
	users repositories.UserRepository
}

func NewCardService(cards repositories.CardRepository, users repositories.UserRepository) *CardService {
	return &CardService{cards: cards, users: users}
}

// ListPosts returns posts newest first, optionally only those of ownerID.
func (s *CardService) ListPosts(ctx context.Context, actor auth.Actor, ownerID string) ([]models.CardView, error) {
	if _, err := actorID(actor); err != nil {
		return nil, err
	}
	var owner *primitive.ObjectID
	if ownerID != "" {
		id, err := parseID(ownerID, "user")
		if err != nil {
			return nil, err
		}
		owner = &id
	}

	cards, err := s.cards.ListCards(ctx, owner)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.views(ctx, cards)
}

// GetPost returns one post with its author and comment authors resolved.
func (s *CardService) GetPost(ctx context.Context, actor auth.Actor, rawID string) (*models.CardView, error) {
	if _, err := actorID(actor); err != nil {
		return nil, err
	}
	card, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, card)
}

// CreatePost stores a post owned by the caller.
func (s *CardService) CreatePost(ctx context.Context, actor auth.Actor, req models.CreateCardRequest) (*models.CardView, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}

	card := &models.Card{
		UserID: uid,
		Text:   req.Text,
		Video:  strings.TrimSpace(req.Video),
		Link:   strings.TrimSpace(req.Link),
	}
	if req.Image != nil && strings.TrimSpace(req.Image.URL) != "" {
		card.Image = &models.CardImage{URL: strings.TrimSpace(req.Image.URL), Alt: req.Image.Alt}
	}
	if utf8.RuneCountInString(card.Text) > maxCardText {
		return nil, apperr.Validation("text must be at most 500 characters")
	}
	if !card.HasContent() {
		return nil, apperr.Validation(msgEmptyPost)
	}

	if err := s.cards.CreateCard(ctx, card); err != nil {
		return nil, apperr.Internal(err)
	}
	metrics.CardOps.WithLabelValues("create").Inc()
	return s.view(ctx, card)
}

// UpdatePost changes the fields present in req. The post must keep at least one content field.
func (s *CardService) UpdatePost(ctx context.Context, actor auth.Actor, rawID string, req models.UpdateCardRequest) (*models.CardView, error) {
	card, err := s.loadOwned(ctx, actor, rawID, http.MethodPatch)
	if err != nil {
		return nil, err
	}

	var upd models.CardUpdate
	if req.Text != nil {
		text := *req.Text
		if utf8.RuneCountInString(text) > maxCardText {
			return nil, apperr.Validation("text must be at most 500 characters")
		}
		upd.Text = &text
	}
	if req.Image != nil {
		upd.Image = &models.CardImage{URL: strings.TrimSpace(req.Image.URL), Alt: req.Image.Alt}
	}
	if req.Video != nil {
		v := strings.TrimSpace(*req.Video)
		upd.Video = &v
	}
	if req.Link != nil {
		l := strings.TrimSpace(*req.Link)
		upd.Link = &l
	}

	next := *card
	upd.Apply(&next)
	if !next.HasContent() {
		return nil, apperr.Validation(msgEmptyPost)
	}

	updated, err := s.cards.UpdateCard(ctx, card.ID, upd)
	if err != nil {
		return nil, repoErr(err, msgPostNotFound)
	}
	metrics.CardOps.WithLabelValues("update").Inc()
	return s.view(ctx, updated)
}

// DeletePost removes a post with its comments and returns it as it was.
func (s *CardService) DeletePost(ctx context.Context, actor auth.Actor, rawID string) (*models.CardView, error) {
	card, err := s.loadOwned(ctx, actor, rawID, http.MethodDelete)
	if err != nil {
		return nil, err
	}
	if err := s.cards.DeleteCard(ctx, card.ID); err != nil {
		return nil, repoErr(err, msgPostNotFound)
	}
	metrics.CardOps.WithLabelValues("delete").Inc()
	return s.view(ctx, card)
}

// ToggleLike likes the post for the caller, or removes the like when it is already there.
// Concurrent toggles by the same user race to the last write but never duplicate a like.
func (s *CardService) ToggleLike(ctx context.Context, actor auth.Actor, rawID string) (*models.LikeResult, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	card, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}

	var updated *models.Card
	if card.IsLikedBy(uid) {
		updated, err = s.cards.RemoveLike(ctx, card.ID, uid)
		metrics.LikeToggles.WithLabelValues("unlike").Inc()
	} else {
		updated, err = s.cards.AddLike(ctx, card.ID, uid)
		metrics.LikeToggles.WithLabelValues("like").Inc()
	}
	if err != nil {
		return nil, repoErr(err, msgPostNotFound)
	}

	return &models.LikeResult{
		CardID:               updated.ID,
		LikesCount:           len(updated.Likes),
		IsLikedByCurrentUser: updated.IsLikedBy(uid),
	}, nil
}

// AddComment appends a comment by the caller and returns the post's resolved comments.
func (s *CardService) AddComment(ctx context.Context, actor auth.Actor, rawPostID, text string) ([]models.CommentView, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	text, err = commentText(text)
	if err != nil {
		return nil, err
	}
	postID, err := parseID(rawPostID, "post")
	if err != nil {
		return nil, err
	}

	updated, err := s.cards.AddComment(ctx, postID, models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, repoErr(err, msgPostNotFound)
	}
	metrics.CommentOps.WithLabelValues("add").Inc()
	return s.commentViews(ctx, updated.Comments)
}

// UpdateComment changes the text of a comment. Only its author or an admin may do so.
func (s *CardService) UpdateComment(ctx context.Context, actor auth.Actor, rawPostID, rawCommentID, text string) (*models.CommentView, error) {
	text, err := commentText(text)
	if err != nil {
		return nil, err
	}
	card, comment, err := s.loadOwnedComment(ctx, actor, rawPostID, rawCommentID, http.MethodPatch)
	if err != nil {
		return nil, err
	}

	updated, err := s.cards.UpdateCommentText(ctx, card.ID, comment.ID, text)
	if err != nil {
		return nil, repoErr(err, msgCommentNotFound)
	}
	edited, ok := updated.FindComment(comment.ID)
	if !ok {
		return nil, apperr.NotFound(msgCommentNotFound)
	}
	metrics.CommentOps.WithLabelValues("edit").Inc()

	views, err := s.commentViews(ctx, []models.Comment{*edited})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeleteComment removes a comment and returns the remaining ones. Gated like UpdateComment.
func (s *CardService) DeleteComment(ctx context.Context, actor auth.Actor, rawPostID, rawCommentID string) ([]models.CommentView, error) {
	card, comment, err := s.loadOwnedComment(ctx, actor, rawPostID, rawCommentID, http.MethodDelete)
	if err != nil {
		return nil, err
	}

	updated, err := s.cards.DeleteComment(ctx, card.ID, comment.ID)
	if err != nil {
		return nil, repoErr(err, msgCommentNotFound)
	}
	metrics.CommentOps.WithLabelValues("delete").Inc()
	return s.commentViews(ctx, updated.Comments)
}

func commentText(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperr.Validation(msgEmptyComment)
	}
	if utf8.RuneCountInString(raw) > maxCommentText {
		return "", apperr.Validation("text must be at most 300 characters")
	}
	return raw, nil
}

func (s *CardService) load(ctx context.Context, rawID string) (*models.Card, error) {
	id, err := parseID(rawID, "post")
	if err != nil {
		return nil, err
	}
	card, err := s.cards.GetCardByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, msgPostNotFound)
	}
	return card, nil
}

// loadOwned loads a post and checks that the actor owns it or is an admin.
func (s *CardService) loadOwned(ctx context.Context, actor auth.Actor, rawID, method string) (*models.Card, error) {
	if _, err := actorID(actor); err != nil {
		return nil, err
	}
	card, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if !auth.CanMutate(actor, card.UserID.Hex(), auth.RoleOwner, method) {
		return nil, apperr.Forbidden()
	}
	return card, nil
}

// loadOwnedComment loads a post and one of its comments and checks that the actor wrote
// the comment or is an admin.
func (s *CardService) loadOwnedComment(ctx context.Context, actor auth.Actor, rawPostID, rawCommentID, method string) (*models.Card, *models.Comment, error) {
	if _, err := actorID(actor); err != nil {
		return nil, nil, err
	}
	commentID, err := parseID(rawCommentID, "comment")
	if err != nil {
		return nil, nil, err
	}
	card, err := s.load(ctx, rawPostID)
	if err != nil {
		return nil, nil, err
	}
	comment, ok := card.FindComment(commentID)
	if !ok {
		return nil, nil, apperr.NotFound(msgCommentNotFound)
	}
	if !auth.CanMutate(actor, comment.UserID.Hex(), auth.RoleOwner, method) {
		return nil, nil, apperr.Forbidden()
	}
	return card, comment, nil
}

// authors fetches the display fields of every referenced user in one query.
func (s *CardService) authors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserCompact, error) {
	return resolveAuthors(ctx, s.users, ids)
}

func resolveAuthors(ctx context.Context, users repositories.UserRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserCompact, error) {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	unique := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	found, err := users.GetUsersByIDs(ctx, unique)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make(map[primitive.ObjectID]models.UserCompact, len(found))
	for i := range found {
		out[found[i].ID] = found[i].ToCompact()
	}
	return out, nil
}

func authorOf(authors map[primitive.ObjectID]models.UserCompact, id primitive.ObjectID) *models.UserCompact {
	if a, ok := authors[id]; ok {
		return &a
	}
	return nil
}

func (s *CardService) view(ctx context.Context, card *models.Card) (*models.CardView, error) {
	views, err := s.views(ctx, []models.Card{*card})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *CardService) views(ctx context.Context, cards []models.Card) ([]models.CardView, error) {
	var ids []primitive.ObjectID
	for _, c := range cards {
		ids = append(ids, c.UserID)
		for _, cm := range c.Comments {
			ids = append(ids, cm.UserID)
		}
	}
	authors, err := s.authors(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.CardView, 0, len(cards))
	for _, c := range cards {
		likes := c.Likes
		if likes == nil {
			likes = []primitive.ObjectID{}
		}
		out = append(out, models.CardView{
			ID:        c.ID,
			UserID:    c.UserID,
			Author:    authorOf(authors, c.UserID),
			Text:      c.Text,
			Image:     c.Image,
			Video:     c.Video,
			Link:      c.Link,
			Likes:     likes,
			Comments:  buildCommentViews(c.Comments, authors),
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return out, nil
}

func (s *CardService) commentViews(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, cm := range comments {
		ids = append(ids, cm.UserID)
	}
	authors, err := s.authors(ctx, ids)
	if err != nil {
		return nil, err
	}
	return buildCommentViews(comments, authors), nil
}

func buildCommentViews(comments []models.Comment, authors map[primitive.ObjectID]models.UserCompact) []models.CommentView {
	out := make([]models.CommentView, 0, len(comments))
	for _, cm := range comments {
		out = append(out, models.CommentView{
			ID:        cm.ID,
			UserID:    cm.UserID,
			Author:    authorOf(authors, cm.UserID),
			Text:      cm.Text,
			CreatedAt: cm.CreatedAt,
		})
	}
	return out
}
