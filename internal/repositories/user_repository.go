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

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	// IncrementFailedLogins bumps the failed login counter and returns its new value.
	IncrementFailedLogins(ctx context.Context, id primitive.ObjectID) (int, error)
	// LockUser blocks logins until the given time and clears the failure counter.
	LockUser(ctx context.Context, id primitive.ObjectID, until time.Time) error
	// ResetFailedLogins clears the failure counter and any lock.
	ResetFailedLogins(ctx context.Context, id primitive.ObjectID) error
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection(usersCollection)}
}

// CreateUser creates a new user in MongoDB
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

// GetUserByID retrieves a user by ID from MongoDB
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a user by email from MongoDB
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves every existing user among ids. Missing ids are skipped.
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoUserRepository) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser applies the set fields of upd and returns the stored result
func (r *MongoUserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	if upd.Empty() {
		return r.GetUserByID(ctx, id)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.FirstName != nil {
		set["firstName"] = *upd.FirstName
	}
	if upd.LastName != nil {
		set["lastName"] = *upd.LastName
	}
	if upd.Nickname != nil {
		set["nickname"] = *upd.Nickname
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Country != nil {
		set["country"] = *upd.Country
	}
	if upd.Birthdate != nil {
		set["birthdate"] = *upd.Birthdate
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}
	if upd.IsAdmin != nil {
		set["isAdmin"] = *upd.IsAdmin
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, ErrDuplicateEmail
	case err != nil:
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes a user by ID from MongoDB
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementFailedLogins atomically increments the failed login counter
func (r *MongoUserRepository) IncrementFailedLogins(ctx context.Context, id primitive.ObjectID) (int, error) {
	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"failedLoginAttempts": 1}}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return user.FailedLoginAttempts, nil
}

// LockUser sets lockUntil and clears the counter
func (r *MongoUserRepository) LockUser(ctx context.Context, id primitive.ObjectID, until time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"lockUntil": until.UTC(), "failedLoginAttempts": 0}})
}

// ResetFailedLogins clears the counter and the lock
func (r *MongoUserRepository) ResetFailedLogins(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"lockUntil": nil, "failedLoginAttempts": 0}})
}

func (r *MongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchUsers searches for users by name, nickname or email (case-insensitive substring)
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	re := primitive.Regex{Pattern: literalPattern(query), Options: "i"}
	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{"firstName": re},
		bson.M{"lastName": re},
		bson.M{"nickname": re},
		bson.M{"email": re},
	}})
}
