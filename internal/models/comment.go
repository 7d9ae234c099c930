package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is embedded in Card.Comments. It has no updatedAt: edits only change Text.
type Comment struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// CommentRequest defines the request body for adding or editing a comment
type CommentRequest struct {
	Text string `json:"text" validate:"required,max=300"`
}

// CommentView is a comment with its author resolved
type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	UserID    primitive.ObjectID `json:"user_id"`
	Author    *UserCompact       `json:"author,omitempty"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"createdAt"`
}

// CommentsResponse wraps the resolved comment list of a card
type CommentsResponse struct {
	Message  string        `json:"message"`
	Comments []CommentView `json:"comments"`
}
