package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/publishare/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CardRepository defines the interface for card data operations. Likes and comments are
// part of the card aggregate; mutations on them return the card as stored afterwards.
type CardRepository interface {
	CreateCard(ctx context.Context, card *models.Card) error
	GetCardByID(ctx context.Context, id primitive.ObjectID) (*models.Card, error)
	// ListCards returns cards newest first, restricted to owner when it is non-nil.
	ListCards(ctx context.Context, owner *primitive.ObjectID) ([]models.Card, error)
	UpdateCard(ctx context.Context, id primitive.ObjectID, upd models.CardUpdate) (*models.Card, error)
	DeleteCard(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, cardID, userID primitive.ObjectID) (*models.Card, error)
	RemoveLike(ctx context.Context, cardID, userID primitive.ObjectID) (*models.Card, error)
	AddComment(ctx context.Context, cardID primitive.ObjectID, comment models.Comment) (*models.Card, error)
	// UpdateCommentText returns ErrNotFound when the card or the comment does not exist.
	UpdateCommentText(ctx context.Context, cardID, commentID primitive.ObjectID, text string) (*models.Card, error)
	DeleteComment(ctx context.Context, cardID, commentID primitive.ObjectID) (*models.Card, error)
	SearchCards(ctx context.Context, query string) ([]models.Card, error)
	SearchComments(ctx context.Context, query string) ([]models.CommentMatch, error)
}

// MongoCardRepository implements CardRepository for MongoDB
type MongoCardRepository struct {
	collection *mongo.Collection
}

// NewMongoCardRepository creates a new MongoCardRepository
func NewMongoCardRepository(db *mongo.Database) *MongoCardRepository {
	return &MongoCardRepository{collection: db.Collection(cardsCollection)}
}

// CreateCard creates a new card in MongoDB
func (r *MongoCardRepository) CreateCard(ctx context.Context, card *models.Card) error {
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
	_, err := r.collection.InsertOne(ctx, card)
	return err
}

// GetCardByID retrieves a card by ID from MongoDB
func (r *MongoCardRepository) GetCardByID(ctx context.Context, id primitive.ObjectID) (*models.Card, error) {
	var card models.Card
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&card); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// ListCards retrieves cards from MongoDB, newest first
func (r *MongoCardRepository) ListCards(ctx context.Context, owner *primitive.ObjectID) ([]models.Card, error) {
	filter := bson.M{}
	if owner != nil {
		filter["user_id"] = *owner
	}
	return r.find(ctx, filter, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
}

func (r *MongoCardRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Card, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	cards := []models.Card{}
	if err = cursor.All(ctx, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// UpdateCard updates the set content fields of a card
func (r *MongoCardRepository) UpdateCard(ctx context.Context, id primitive.ObjectID, upd models.CardUpdate) (*models.Card, error) {
	if upd.Empty() {
		return r.GetCardByID(ctx, id)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	unset := bson.M{}
	setOrUnset := func(field, value string) {
		if value == "" {
			unset[field] = ""
		} else {
			set[field] = value
		}
	}
	if upd.Text != nil {
		setOrUnset("text", *upd.Text)
	}
	if upd.Video != nil {
		setOrUnset("video", *upd.Video)
	}
	if upd.Link != nil {
		setOrUnset("link", *upd.Link)
	}
	if upd.Image != nil {
		if upd.Image.URL == "" {
			unset["image"] = ""
		} else {
			set["image"] = upd.Image
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (r *MongoCardRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Card, error) {
	var card models.Card
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&card); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// DeleteCard deletes a card, and with it its comments, from MongoDB
func (r *MongoCardRepository) DeleteCard(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLike adds userID to the likes set
func (r *MongoCardRepository) AddLike(ctx context.Context, cardID, userID primitive.ObjectID) (*models.Card, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": cardID}, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveLike removes userID from the likes set
func (r *MongoCardRepository) RemoveLike(ctx context.Context, cardID, userID primitive.ObjectID) (*models.Card, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": cardID}, bson.M{"$pull": bson.M{"likes": userID}})
}

// AddComment appends a comment to the card
func (r *MongoCardRepository) AddComment(ctx context.Context, cardID primitive.ObjectID, comment models.Comment) (*models.Card, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": cardID}, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

// UpdateCommentText replaces the text of one embedded comment
func (r *MongoCardRepository) UpdateCommentText(ctx context.Context, cardID, commentID primitive.ObjectID, text string) (*models.Card, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": cardID, "comments._id": commentID},
		bson.M{"$set": bson.M{"comments.$.text": text, "updatedAt": time.Now().UTC()}},
	)
}

// DeleteComment removes one embedded comment
func (r *MongoCardRepository) DeleteComment(ctx context.Context, cardID, commentID primitive.ObjectID) (*models.Card, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": cardID, "comments._id": commentID},
		bson.M{
			"$pull": bson.M{"comments": bson.M{"_id": commentID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
}

// SearchCards finds cards whose text contains query, case-insensitively
func (r *MongoCardRepository) SearchCards(ctx context.Context, query string) ([]models.Card, error) {
	re := primitive.Regex{Pattern: literalPattern(query), Options: "i"}
	return r.find(ctx, bson.M{"text": re}, bson.D{{Key: "_id", Value: 1}})
}

// SearchComments flattens embedded comments whose text contains query and joins each
// to its author.
func (r *MongoCardRepository) SearchComments(ctx context.Context, query string) ([]models.CommentMatch, error) {
	re := primitive.Regex{Pattern: literalPattern(query), Options: "i"}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"comments.text": re}}},
		{{Key: "$unwind", Value: "$comments"}},
		{{Key: "$match", Value: bson.M{"comments.text": re}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "comments.user_id",
			"foreignField": "_id",
			"as":           "commentUser",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$commentUser", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"_id":                  0,
			"commentId":            "$comments._id",
			"cardId":               "$_id",
			"commentText":          "$comments.text",
			"commentUser._id":      "$commentUser._id",
			"commentUser.nickname": "$commentUser.nickname",
			"commentUser.image":    "$commentUser.image",
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	matches := []models.CommentMatch{}
	if err = cursor.All(ctx, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}
