package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PostSummary is a card hit in search results
type PostSummary struct {
	ID     primitive.ObjectID `json:"_id"`
	UserID primitive.ObjectID `json:"user_id"`
	Author *UserCompact       `json:"author,omitempty"`
	Text   string             `json:"text"`
	Image  *CardImage         `json:"image,omitempty"`
	Video  string             `json:"video,omitempty"`
	Link   string             `json:"link,omitempty"`
}

// CommentMatch is one (card, comment) pair whose comment text matched a query,
// joined to the comment author.
type CommentMatch struct {
	ID     primitive.ObjectID `json:"_id" bson:"commentId"`
	CardID primitive.ObjectID `json:"cardId" bson:"cardId"`
	Text   string             `json:"text" bson:"commentText"`
	User   CommentMatchUser   `json:"user" bson:"commentUser"`
}

// CommentMatchUser is the author part of a comment search hit. Fields are empty when the
// author no longer exists.
type CommentMatchUser struct {
	ID       primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Nickname string             `json:"nickname,omitempty" bson:"nickname,omitempty"`
	Image    string             `json:"image,omitempty" bson:"image,omitempty"`
}

// SearchResult always carries all three arrays, possibly empty.
type SearchResult struct {
	Users    []UserSummary  `json:"users"`
	Posts    []PostSummary  `json:"posts"`
	Comments []CommentMatch `json:"comments"`
}
