package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/publishare/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository implements UserRepository in process memory. It backs the
// memory store driver and the service and handler tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
	order []primitive.ObjectID
}

// NewMemoryUserRepository creates an empty MemoryUserRepository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *MemoryUserRepository) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range r.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// CreateUser stores a new user
func (r *MemoryUserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(user.Email, primitive.NilObjectID) {
		return ErrDuplicateEmail
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	r.order = append(r.order, user.ID)
	return nil
}

// GetUserByID returns a copy of the stored user
func (r *MemoryUserRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// GetUserByEmail returns a copy of the user with the given email
func (r *MemoryUserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if u := r.users[id]; u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// GetUsersByIDs returns the existing users among ids in insertion order
func (r *MemoryUserRepository) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	users := []models.User{}
	for _, id := range r.order {
		if want[id] {
			users = append(users, r.users[id])
		}
	}
	return users, nil
}

// UpdateUser applies the set fields of upd
func (r *MemoryUserRepository) UpdateUser(_ context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil && r.emailTaken(*upd.Email, id) {
		return nil, ErrDuplicateEmail
	}
	if !upd.Empty() {
		upd.Apply(&u)
		u.UpdatedAt = time.Now().UTC()
		r.users[id] = u
	}
	return &u, nil
}

// DeleteUser removes a user
func (r *MemoryUserRepository) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// IncrementFailedLogins bumps the failure counter
func (r *MemoryUserRepository) IncrementFailedLogins(_ context.Context, id primitive.ObjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return 0, ErrNotFound
	}
	u.FailedLoginAttempts++
	r.users[id] = u
	return u.FailedLoginAttempts, nil
}

// LockUser blocks logins until the given time
func (r *MemoryUserRepository) LockUser(_ context.Context, id primitive.ObjectID, until time.Time) error {
	return r.setLock(id, &until)
}

// ResetFailedLogins clears the counter and the lock
func (r *MemoryUserRepository) ResetFailedLogins(_ context.Context, id primitive.ObjectID) error {
	return r.setLock(id, nil)
}

func (r *MemoryUserRepository) setLock(id primitive.ObjectID, until *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockUntil = until
	r.users[id] = u
	return nil
}

// SearchUsers matches query as a case-insensitive substring of name, nickname or email
func (r *MemoryUserRepository) SearchUsers(_ context.Context, query string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []models.User{}
	for _, id := range r.order {
		u := r.users[id]
		if containsFold(u.FirstName, query) || containsFold(u.LastName, query) ||
			containsFold(u.Nickname, query) || containsFold(u.Email, query) {
			users = append(users, u)
		}
	}
	return users, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// MemoryCardRepository implements CardRepository in process memory. Comment search joins
// authors through the user repository it was built with.
type MemoryCardRepository struct {
	mu    sync.RWMutex
	cards map[primitive.ObjectID]*models.Card
	order []primitive.ObjectID
	users *MemoryUserRepository
}

// NewMemoryCardRepository creates an empty MemoryCardRepository
func NewMemoryCardRepository(users *MemoryUserRepository) *MemoryCardRepository {
	return &MemoryCardRepository{cards: make(map[primitive.ObjectID]*models.Card), users: users}
}

func cloneCard(c *models.Card) *models.Card {
	out := *c
	if c.Image != nil {
		img := *c.Image
		out.Image = &img
	}
	out.Likes = append([]primitive.ObjectID{}, c.Likes...)
	out.Comments = append([]models.Comment{}, c.Comments...)
	return &out
}

// CreateCard stores a new card
func (r *MemoryCardRepository) CreateCard(_ context.Context, card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if card.ID.IsZero() {
		card.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now
	if card.Likes == nil {
		card.Likes = []primitive.ObjectID{}
	}
	if card.Comments == nil {
		card.Comments = []models.Comment{}
	}
	r.cards[card.ID] = cloneCard(card)
	r.order = append(r.order, card.ID)
	return nil
}

// GetCardByID returns a copy of the stored card
func (r *MemoryCardRepository) GetCardByID(_ context.Context, id primitive.ObjectID) (*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneCard(c), nil
}

// ListCards returns cards newest first
func (r *MemoryCardRepository) ListCards(_ context.Context, owner *primitive.ObjectID) ([]models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cards := []models.Card{}
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.cards[r.order[i]]
		if owner != nil && c.UserID != *owner {
			continue
		}
		cards = append(cards, *cloneCard(c))
	}
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].CreatedAt.After(cards[j].CreatedAt) })
	return cards, nil
}

// UpdateCard applies the set fields of upd
func (r *MemoryCardRepository) UpdateCard(_ context.Context, id primitive.ObjectID, upd models.CardUpdate) (*models.Card, error) {
	return r.mutate(id, func(c *models.Card) error {
		if upd.Empty() {
			return nil
		}
		upd.Apply(c)
		if c.Image != nil && c.Image.URL == "" {
			c.Image = nil
		}
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// DeleteCard removes a card and its comments
func (r *MemoryCardRepository) DeleteCard(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[id]; !ok {
		return ErrNotFound
	}
	delete(r.cards, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryCardRepository) mutate(id primitive.ObjectID, fn func(c *models.Card) error) (*models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := cloneCard(c)
	if err := fn(next); err != nil {
		return nil, err
	}
	r.cards[id] = next
	return cloneCard(next), nil
}

// AddLike adds userID to the likes set
func (r *MemoryCardRepository) AddLike(_ context.Context, cardID, userID primitive.ObjectID) (*models.Card, error) {
	return r.mutate(cardID, func(c *models.Card) error {
		if !c.IsLikedBy(userID) {
			c.Likes = append(c.Likes, userID)
		}
		return nil
	})
}

// RemoveLike removes userID from the likes set
func (r *MemoryCardRepository) RemoveLike(_ context.Context, cardID, userID primitive.ObjectID) (*models.Card, error) {
	return r.mutate(cardID, func(c *models.Card) error {
		likes := c.Likes[:0]
		for _, id := range c.Likes {
			if id != userID {
				likes = append(likes, id)
			}
		}
		c.Likes = likes
		return nil
	})
}

// AddComment appends a comment
func (r *MemoryCardRepository) AddComment(_ context.Context, cardID primitive.ObjectID, comment models.Comment) (*models.Card, error) {
	return r.mutate(cardID, func(c *models.Card) error {
		c.Comments = append(c.Comments, comment)
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// UpdateCommentText replaces the text of one comment
func (r *MemoryCardRepository) UpdateCommentText(_ context.Context, cardID, commentID primitive.ObjectID, text string) (*models.Card, error) {
	return r.mutate(cardID, func(c *models.Card) error {
		cm, ok := c.FindComment(commentID)
		if !ok {
			return ErrNotFound
		}
		cm.Text = text
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// DeleteComment removes one comment
func (r *MemoryCardRepository) DeleteComment(_ context.Context, cardID, commentID primitive.ObjectID) (*models.Card, error) {
	return r.mutate(cardID, func(c *models.Card) error {
		for i := range c.Comments {
			if c.Comments[i].ID == commentID {
				c.Comments = append(c.Comments[:i], c.Comments[i+1:]...)
				c.UpdatedAt = time.Now().UTC()
				return nil
			}
		}
		return ErrNotFound
	})
}

// SearchCards matches query as a case-insensitive substring of the card text
func (r *MemoryCardRepository) SearchCards(_ context.Context, query string) ([]models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cards := []models.Card{}
	for _, id := range r.order {
		if c := r.cards[id]; containsFold(c.Text, query) {
			cards = append(cards, *cloneCard(c))
		}
	}
	return cards, nil
}

// SearchComments flattens matching comments across all cards and joins their authors
func (r *MemoryCardRepository) SearchComments(ctx context.Context, query string) ([]models.CommentMatch, error) {
	r.mu.RLock()
	matches := []models.CommentMatch{}
	for _, id := range r.order {
		c := r.cards[id]
		for _, cm := range c.Comments {
			if containsFold(cm.Text, query) {
				matches = append(matches, models.CommentMatch{
					ID:     cm.ID,
					CardID: c.ID,
					Text:   cm.Text,
					User:   models.CommentMatchUser{ID: cm.UserID},
				})
			}
		}
	}
	r.mu.RUnlock()

	for i := range matches {
		u, err := r.users.GetUserByID(ctx, matches[i].User.ID)
		if err != nil {
			// the join yields no author fields for deleted users
			matches[i].User = models.CommentMatchUser{}
			continue
		}
		matches[i].User.Nickname = u.Nickname
		matches[i].User.Image = u.Image
	}
	return matches, nil
}
