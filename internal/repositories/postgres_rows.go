package repositories

import (
	"fmt"
	"time"

	"github.com/anonto42/publishare/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relational layout for the PostgreSQL backend. Ids keep the 24-hex ObjectID form so that
// ids are valid regardless of the configured store.

type userRow struct {
	ID                  string `gorm:"primaryKey;size:24"`
	FirstName           string `gorm:"size:50;not null"`
	LastName            string `gorm:"size:50;not null"`
	Nickname            string `gorm:"size:50;not null"`
	Email               string `gorm:"size:255;not null;uniqueIndex"`
	Phone               string `gorm:"size:10"`
	Country             string `gorm:"size:50"`
	Birthdate           time.Time
	Password            string `gorm:"not null"`
	IsAdmin             bool   `gorm:"not null;default:false"`
	Image               string
	FailedLoginAttempts int `gorm:"not null;default:0"`
	LockUntil           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (userRow) TableName() string { return "users" }

type cardRow struct {
	ID        string `gorm:"primaryKey;size:24"`
	UserID    string `gorm:"size:24;not null;index:idx_cards_user_recent,priority:1"`
	Text      string `gorm:"size:500"`
	ImageURL  string
	ImageAlt  string
	Video     string
	Link      string
	CreatedAt time.Time    `gorm:"index:idx_cards_user_recent,priority:2,sort:desc"`
	UpdatedAt time.Time
	Comments  []commentRow `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
	Likes     []likeRow    `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
}

func (cardRow) TableName() string { return "cards" }

type commentRow struct {
	ID        string `gorm:"primaryKey;size:24"`
	CardID    string `gorm:"size:24;not null;index"`
	UserID    string `gorm:"size:24;not null"`
	Text      string `gorm:"size:300;not null"`
	CreatedAt time.Time
}

func (commentRow) TableName() string { return "card_comments" }

type likeRow struct {
	CardID    string `gorm:"primaryKey;size:24"`
	UserID    string `gorm:"primaryKey;size:24"`
	CreatedAt time.Time
}

func (likeRow) TableName() string { return "card_likes" }

func newUserRow(u *models.User) *userRow {
	return &userRow{
		ID:                  u.ID.Hex(),
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Nickname:            u.Nickname,
		Email:               u.Email,
		Phone:               u.Phone,
		Country:             u.Country,
		Birthdate:           u.Birthdate,
		Password:            u.Password,
		IsAdmin:             u.IsAdmin,
		Image:               u.Image,
		FailedLoginAttempts: u.FailedLoginAttempts,
		LockUntil:           u.LockUntil,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func (r *userRow) toModel() (*models.User, error) {
	id, err := parseStoredID(r.ID)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:                  id,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		Nickname:            r.Nickname,
		Email:               r.Email,
		Phone:               r.Phone,
		Country:             r.Country,
		Birthdate:           r.Birthdate,
		Password:            r.Password,
		IsAdmin:             r.IsAdmin,
		Image:               r.Image,
		FailedLoginAttempts: r.FailedLoginAttempts,
		LockUntil:           r.LockUntil,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}, nil
}

func newCardRow(c *models.Card) *cardRow {
	row := &cardRow{
		ID:        c.ID.Hex(),
		UserID:    c.UserID.Hex(),
		Text:      c.Text,
		Video:     c.Video,
		Link:      c.Link,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Image != nil {
		row.ImageURL = c.Image.URL
		row.ImageAlt = c.Image.Alt
	}
	return row
}

func (r *cardRow) toModel() (*models.Card, error) {
	id, err := parseStoredID(r.ID)
	if err != nil {
		return nil, err
	}
	owner, err := parseStoredID(r.UserID)
	if err != nil {
		return nil, err
	}
	card := &models.Card{
		ID:        id,
		UserID:    owner,
		Text:      r.Text,
		Video:     r.Video,
		Link:      r.Link,
		Likes:     make([]primitive.ObjectID, 0, len(r.Likes)),
		Comments:  make([]models.Comment, 0, len(r.Comments)),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.ImageURL != "" {
		card.Image = &models.CardImage{URL: r.ImageURL, Alt: r.ImageAlt}
	}
	for _, l := range r.Likes {
		uid, err := parseStoredID(l.UserID)
		if err != nil {
			return nil, err
		}
		card.Likes = append(card.Likes, uid)
	}
	for _, cm := range r.Comments {
		cid, err := parseStoredID(cm.ID)
		if err != nil {
			return nil, err
		}
		uid, err := parseStoredID(cm.UserID)
		if err != nil {
			return nil, err
		}
		card.Comments = append(card.Comments, models.Comment{
			ID:        cid,
			UserID:    uid,
			Text:      cm.Text,
			CreatedAt: cm.CreatedAt,
		})
	}
	return card, nil
}

func parseStoredID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("corrupt stored id %q: %w", hex, err)
	}
	return id, nil
}
