package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Card is a user post stored in the cards collection. Comments are embedded so the
// document is the unit of atomicity for likes and comments.
type Card struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `json:"user_id" bson:"user_id"`
	Text      string               `json:"text,omitempty" bson:"text,omitempty"`
	Image     *CardImage           `json:"image,omitempty" bson:"image,omitempty"`
	Video     string               `json:"video,omitempty" bson:"video,omitempty"`
	Link      string               `json:"link,omitempty" bson:"link,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// CardImage is the optional image attached to a card
type CardImage struct {
	URL string `json:"url" bson:"url"`
	Alt string `json:"alt,omitempty" bson:"alt,omitempty"`
}

// HasContent reports whether at least one of text, image, video or link is set.
func (c *Card) HasContent() bool {
	return strings.TrimSpace(c.Text) != "" ||
		(c.Image != nil && c.Image.URL != "") ||
		c.Video != "" ||
		c.Link != ""
}

// IsLikedBy reports whether userID is in the likes set.
func (c *Card) IsLikedBy(userID primitive.ObjectID) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// FindComment returns the embedded comment with the given id.
func (c *Card) FindComment(commentID primitive.ObjectID) (*Comment, bool) {
	for i := range c.Comments {
		if c.Comments[i].ID == commentID {
			return &c.Comments[i], true
		}
	}
	return nil, false
}

// CardUpdate carries the fields to change on a card. Nil fields are left untouched.
type CardUpdate struct {
	Text  *string
	Image *CardImage
	Video *string
	Link  *string
}

// Empty reports whether the update changes nothing.
func (u CardUpdate) Empty() bool {
	return u.Text == nil && u.Image == nil && u.Video == nil && u.Link == nil
}

// Apply copies the set fields onto card.
func (u CardUpdate) Apply(card *Card) {
	if u.Text != nil {
		card.Text = *u.Text
	}
	if u.Image != nil {
		img := *u.Image
		card.Image = &img
	}
	if u.Video != nil {
		card.Video = *u.Video
	}
	if u.Link != nil {
		card.Link = *u.Link
	}
}

// CardImageRequest is the image part of a card request
type CardImageRequest struct {
	URL string `json:"url" validate:"omitempty,url"`
	Alt string `json:"alt" validate:"omitempty,max=200"`
}

// CreateCardRequest defines the request body for creating a card
type CreateCardRequest struct {
	Text  string            `json:"text" validate:"max=500"`
	Image *CardImageRequest `json:"image,omitempty"`
	Video string            `json:"video,omitempty" validate:"omitempty,url"`
	Link  string            `json:"link,omitempty" validate:"omitempty,url"`
}

// UpdateCardRequest defines the request body for a partial card update.
// Absent fields are not changed.
type UpdateCardRequest struct {
	Text  *string           `json:"text,omitempty" validate:"omitempty,max=500"`
	Image *CardImageRequest `json:"image,omitempty"`
	Video *string           `json:"video,omitempty" validate:"omitempty,url"`
	Link  *string           `json:"link,omitempty" validate:"omitempty,url"`
}

// CardView is a card with its author and comment authors resolved
type CardView struct {
	ID        primitive.ObjectID   `json:"_id"`
	UserID    primitive.ObjectID   `json:"user_id"`
	Author    *UserCompact         `json:"author,omitempty"`
	Text      string               `json:"text,omitempty"`
	Image     *CardImage           `json:"image,omitempty"`
	Video     string               `json:"video,omitempty"`
	Link      string               `json:"link,omitempty"`
	Likes     []primitive.ObjectID `json:"likes"`
	Comments  []CommentView        `json:"comments"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// LikeResult is returned by the like toggle
type LikeResult struct {
	CardID               primitive.ObjectID `json:"cardId"`
	LikesCount           int                `json:"likesCount"`
	IsLikedByCurrentUser bool               `json:"isLikedByCurrentUser"`
}
