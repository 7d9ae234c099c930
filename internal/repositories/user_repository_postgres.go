package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/publishare/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	return translateUserErr(r.db.WithContext(ctx).Create(newUserRow(user)).Error)
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.first(ctx, "id = ?", id.Hex())
}

// GetUserByEmail retrieves a user by email from PostgreSQL
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *PostgresUserRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where(query, args...).First(&row).Error; err != nil {
		return nil, translateUserErr(err)
	}
	return row.toModel()
}

// GetUsersByIDs retrieves every existing user among ids
func (r *PostgresUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	hexes := make([]string, len(ids))
	for i, id := range ids {
		hexes[i] = id.Hex()
	}
	return r.find(r.db.WithContext(ctx).Where("id IN ?", hexes))
}

func (r *PostgresUserRepository) find(q *gorm.DB) ([]models.User, error) {
	var rows []userRow
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for i := range rows {
		u, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

// UpdateUser updates the set fields of a user in PostgreSQL
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	if upd.Empty() {
		return r.GetUserByID(ctx, id)
	}

	cols := map[string]interface{}{"updated_at": time.Now().UTC()}
	if upd.FirstName != nil {
		cols["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		cols["last_name"] = *upd.LastName
	}
	if upd.Nickname != nil {
		cols["nickname"] = *upd.Nickname
	}
	if upd.Email != nil {
		cols["email"] = *upd.Email
	}
	if upd.Phone != nil {
		cols["phone"] = *upd.Phone
	}
	if upd.Country != nil {
		cols["country"] = *upd.Country
	}
	if upd.Birthdate != nil {
		cols["birthdate"] = *upd.Birthdate
	}
	if upd.Image != nil {
		cols["image"] = *upd.Image
	}
	if upd.IsAdmin != nil {
		cols["is_admin"] = *upd.IsAdmin
	}

	if err := r.updateColumns(ctx, id, cols); err != nil {
		return nil, err
	}
	return r.GetUserByID(ctx, id)
}

func (r *PostgresUserRepository) updateColumns(ctx context.Context, id primitive.ObjectID, cols map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id.Hex()).Updates(cols)
	if res.Error != nil {
		return translateUserErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser deletes a user by ID from PostgreSQL
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id.Hex()).Delete(&userRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementFailedLogins atomically increments the failed login counter
func (r *PostgresUserRepository) IncrementFailedLogins(ctx context.Context, id primitive.ObjectID) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userRow{}).Where("id = ?", id.Hex()).
			UpdateColumn("failed_login_attempts", gorm.Expr("failed_login_attempts + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&userRow{}).Where("id = ?", id.Hex()).
			Pluck("failed_login_attempts", &attempts).Error
	})
	return attempts, err
}

// LockUser sets lock_until and clears the counter
func (r *PostgresUserRepository) LockUser(ctx context.Context, id primitive.ObjectID, until time.Time) error {
	u := until.UTC()
	return r.updateColumns(ctx, id, map[string]interface{}{"lock_until": &u, "failed_login_attempts": 0})
}

// ResetFailedLogins clears the counter and the lock
func (r *PostgresUserRepository) ResetFailedLogins(ctx context.Context, id primitive.ObjectID) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"lock_until": nil, "failed_login_attempts": 0})
}

// SearchUsers searches for users by name, nickname or email (case-insensitive substring)
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	p := likePattern(query)
	q := r.db.WithContext(ctx).Where(
		`first_name ILIKE ? ESCAPE '\' OR last_name ILIKE ? ESCAPE '\' OR nickname ILIKE ? ESCAPE '\' OR email ILIKE ? ESCAPE '\'`,
		p, p, p, p,
	)
	return r.find(q)
}

func translateUserErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateEmail
	}
	return err
}
