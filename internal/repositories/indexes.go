package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

const (
	usersCollection = "users"
	cardsCollection = "cards"
)

// EnsureMongoIndexes creates the unique email index and the owner/recency index on cards.
// Creating an index that already exists with the same keys and options is a no-op.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	_, err = db.Collection(cardsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_recent"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("recent"),
		},
	})
	if err != nil {
		return fmt.Errorf("cards indexes: %w", err)
	}
	return nil
}

// MigratePostgres creates or updates the relational schema.
func MigratePostgres(db *gorm.DB) error {
	return db.AutoMigrate(&userRow{}, &cardRow{}, &commentRow{}, &likeRow{})
}
