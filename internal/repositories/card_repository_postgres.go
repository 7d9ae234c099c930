package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/publishare/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresCardRepository implements CardRepository for PostgreSQL. Comments and likes live in
// their own tables and every multi-table mutation runs in a transaction.
type PostgresCardRepository struct {
	db *gorm.DB
}

// NewPostgresCardRepository creates a new PostgresCardRepository
func NewPostgresCardRepository(db *gorm.DB) *PostgresCardRepository {
	return &PostgresCardRepository{db: db}
}

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, user_id") })
}

// CreateCard creates a new card in PostgreSQL
func (r *PostgresCardRepository) CreateCard(ctx context.Context, card *models.Card) error {
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
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(newCardRow(card)).Error
}

// GetCardByID retrieves a card with its comments and likes
func (r *PostgresCardRepository) GetCardByID(ctx context.Context, id primitive.ObjectID) (*models.Card, error) {
	return loadCard(r.db.WithContext(ctx), id)
}

func loadCard(db *gorm.DB, id primitive.ObjectID) (*models.Card, error) {
	var row cardRow
	if err := withChildren(db).Where("id = ?", id.Hex()).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toModel()
}

// ListCards retrieves cards newest first
func (r *PostgresCardRepository) ListCards(ctx context.Context, owner *primitive.ObjectID) ([]models.Card, error) {
	q := r.db.WithContext(ctx)
	if owner != nil {
		q = q.Where("user_id = ?", owner.Hex())
	}
	return r.find(q.Order("created_at DESC, id DESC"))
}

func (r *PostgresCardRepository) find(q *gorm.DB) ([]models.Card, error) {
	var rows []cardRow
	if err := withChildren(q).Find(&rows).Error; err != nil {
		return nil, err
	}
	cards := make([]models.Card, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, nil
}

// UpdateCard updates the set content fields of a card
func (r *PostgresCardRepository) UpdateCard(ctx context.Context, id primitive.ObjectID, upd models.CardUpdate) (*models.Card, error) {
	if upd.Empty() {
		return r.GetCardByID(ctx, id)
	}

	cols := map[string]interface{}{"updated_at": time.Now().UTC()}
	if upd.Text != nil {
		cols["text"] = *upd.Text
	}
	if upd.Image != nil {
		cols["image_url"] = upd.Image.URL
		cols["image_alt"] = upd.Image.Alt
	}
	if upd.Video != nil {
		cols["video"] = *upd.Video
	}
	if upd.Link != nil {
		cols["link"] = *upd.Link
	}

	var card *models.Card
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&cardRow{}).Where("id = ?", id.Hex()).Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var err error
		card, err = loadCard(tx, id)
		return err
	})
	return card, err
}

// DeleteCard deletes a card together with its comments and likes
func (r *PostgresCardRepository) DeleteCard(ctx context.Context, id primitive.ObjectID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", id.Hex()).Delete(&commentRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id = ?", id.Hex()).Delete(&likeRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id.Hex()).Delete(&cardRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// mutate runs fn in a transaction after locking the card row, then returns the card as stored.
func (r *PostgresCardRepository) mutate(ctx context.Context, cardID primitive.ObjectID, fn func(tx *gorm.DB) error) (*models.Card, error) {
	var card *models.Card
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked cardRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", cardID.Hex()).First(&locked).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}
		card, err = loadCard(tx, cardID)
		return err
	})
	return card, err
}

func touchCard(tx *gorm.DB, cardID primitive.ObjectID) error {
	return tx.Model(&cardRow{}).Where("id = ?", cardID.Hex()).UpdateColumn("updated_at", time.Now().UTC()).Error
}

// AddLike inserts the like unless it already exists
func (r *PostgresCardRepository) AddLike(ctx context.Context, cardID, userID primitive.ObjectID) (*models.Card, error) {
	return r.mutate(ctx, cardID, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&likeRow{
			CardID:    cardID.Hex(),
			UserID:    userID.Hex(),
			CreatedAt: time.Now().UTC(),
		}).Error
	})
}

// RemoveLike deletes the like if present
func (r *PostgresCardRepository) RemoveLike(ctx context.Context, cardID, userID primitive.ObjectID) (*models.Card, error) {
	return r.mutate(ctx, cardID, func(tx *gorm.DB) error {
		return tx.Where("card_id = ? AND user_id = ?", cardID.Hex(), userID.Hex()).Delete(&likeRow{}).Error
	})
}

// AddComment appends a comment to the card
func (r *PostgresCardRepository) AddComment(ctx context.Context, cardID primitive.ObjectID, comment models.Comment) (*models.Card, error) {
	return r.mutate(ctx, cardID, func(tx *gorm.DB) error {
		err := tx.Create(&commentRow{
			ID:        comment.ID.Hex(),
			CardID:    cardID.Hex(),
			UserID:    comment.UserID.Hex(),
			Text:      comment.Text,
			CreatedAt: comment.CreatedAt,
		}).Error
		if err != nil {
			return err
		}
		return touchCard(tx, cardID)
	})
}

// UpdateCommentText replaces the text of one comment
func (r *PostgresCardRepository) UpdateCommentText(ctx context.Context, cardID, commentID primitive.ObjectID, text string) (*models.Card, error) {
	return r.mutate(ctx, cardID, func(tx *gorm.DB) error {
		res := tx.Model(&commentRow{}).
			Where("id = ? AND card_id = ?", commentID.Hex(), cardID.Hex()).
			UpdateColumn("text", text)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return touchCard(tx, cardID)
	})
}

// DeleteComment removes one comment
func (r *PostgresCardRepository) DeleteComment(ctx context.Context, cardID, commentID primitive.ObjectID) (*models.Card, error) {
	return r.mutate(ctx, cardID, func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND card_id = ?", commentID.Hex(), cardID.Hex()).Delete(&commentRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return touchCard(tx, cardID)
	})
}

// SearchCards finds cards whose text contains query, case-insensitively
func (r *PostgresCardRepository) SearchCards(ctx context.Context, query string) ([]models.Card, error) {
	q := r.db.WithContext(ctx).Where(`text ILIKE ? ESCAPE '\'`, likePattern(query)).Order("id")
	return r.find(q)
}

type commentMatchRow struct {
	CommentID string
	CardID    string
	Text      string
	UserID    *string
	Nickname  *string
	Image     *string
}

// SearchComments finds comments whose text contains query, joined to their authors
func (r *PostgresCardRepository) SearchComments(ctx context.Context, query string) ([]models.CommentMatch, error) {
	var rows []commentMatchRow
	err := r.db.WithContext(ctx).
		Table("card_comments AS c").
		Select("c.id AS comment_id, c.card_id, c.text, u.id AS user_id, u.nickname, u.image").
		Joins("LEFT JOIN users u ON u.id = c.user_id").
		Where(`c.text ILIKE ? ESCAPE '\'`, likePattern(query)).
		Order("c.card_id, c.created_at, c.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	matches := make([]models.CommentMatch, 0, len(rows))
	for _, row := range rows {
		cid, err := parseStoredID(row.CommentID)
		if err != nil {
			return nil, err
		}
		cardID, err := parseStoredID(row.CardID)
		if err != nil {
			return nil, err
		}
		m := models.CommentMatch{ID: cid, CardID: cardID, Text: row.Text}
		if row.UserID != nil {
			if uid, err := parseStoredID(*row.UserID); err == nil {
				m.User.ID = uid
			}
		}
		if row.Nickname != nil {
			m.User.Nickname = *row.Nickname
		}
		if row.Image != nil {
			m.User.Image = *row.Image
		}
		matches = append(matches, m)
	}
	return matches, nil
}
