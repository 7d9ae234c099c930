package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultProfileImage is stored when a user registers without an image or resets it.
const DefaultProfileImage = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_960_720.png"

// User is a registered account stored in the users collection
type User struct {
	ID                  primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FirstName           string             `json:"firstName" bson:"firstName"`
	LastName            string             `json:"lastName" bson:"lastName"`
	Nickname            string             `json:"nickname" bson:"nickname"`
	Email               string             `json:"email" bson:"email"`
	Phone               string             `json:"phone" bson:"phone"`
	Country             string             `json:"country" bson:"country"`
	Birthdate           time.Time          `json:"birthdate" bson:"birthdate"`
	Password            string             `json:"-" bson:"password"` // bcrypt hash, never serialized
	IsAdmin             bool               `json:"isAdmin" bson:"isAdmin"`
	Image               string             `json:"image" bson:"image"`
	FailedLoginAttempts int                `json:"-" bson:"failedLoginAttempts"`
	LockUntil           *time.Time         `json:"-" bson:"lockUntil"`
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// UserCompact is the display subset attached to posts, comments and search hits
type UserCompact struct {
	ID        primitive.ObjectID `json:"_id"`
	FirstName string             `json:"firstName,omitempty"`
	LastName  string             `json:"lastName,omitempty"`
	Nickname  string             `json:"nickname,omitempty"`
	Image     string             `json:"image,omitempty"`
}

// ToCompact returns the display subset of the user
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Nickname:  u.Nickname,
		Image:     u.Image,
	}
}

// PublicUser is returned next to the token by register and login
type PublicUser struct {
	ID        primitive.ObjectID `json:"_id"`
	Email     string             `json:"email"`
	IsAdmin   bool               `json:"isAdmin"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Nickname  string             `json:"nickname"`
	Image     string             `json:"image"`
}

// ToPublic returns the public view of the user
func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Nickname:  u.Nickname,
		Image:     u.Image,
	}
}

// UserProfile is the projection served by the profile endpoints
type UserProfile struct {
	ID        primitive.ObjectID `json:"_id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Nickname  string             `json:"nickname"`
	Image     string             `json:"image"`
	Country   string             `json:"country"`
	Birthdate time.Time          `json:"birthdate"`
}

// ToProfile returns the profile projection of the user
func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Nickname:  u.Nickname,
		Image:     u.Image,
		Country:   u.Country,
		Birthdate: u.Birthdate,
	}
}

// UserSummary is a user hit in search results
type UserSummary struct {
	ID        primitive.ObjectID `json:"_id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Nickname  string             `json:"nickname"`
	Email     string             `json:"email"`
	Image     string             `json:"image"`
}

// ToSummary returns the search projection of the user
func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Nickname:  u.Nickname,
		Email:     u.Email,
		Image:     u.Image,
	}
}

// UserUpdate carries the fields to change on a user. Nil fields are left untouched.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Nickname  *string
	Email     *string
	Phone     *string
	Country   *string
	Birthdate *time.Time
	Image     *string
	IsAdmin   *bool
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Nickname == nil && u.Email == nil &&
		u.Phone == nil && u.Country == nil && u.Birthdate == nil && u.Image == nil && u.IsAdmin == nil
}

// Apply copies the set fields onto user.
func (u UserUpdate) Apply(user *User) {
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.LastName = *u.LastName
	}
	if u.Nickname != nil {
		user.Nickname = *u.Nickname
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
	if u.Country != nil {
		user.Country = *u.Country
	}
	if u.Birthdate != nil {
		user.Birthdate = *u.Birthdate
	}
	if u.Image != nil {
		user.Image = *u.Image
	}
	if u.IsAdmin != nil {
		user.IsAdmin = *u.IsAdmin
	}
}

// RegisterRequest defines the request body for registration
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Nickname  string `json:"nickname" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,len=10,numeric"`
	Country   string `json:"country" validate:"required,max=50"`
	Birthdate string `json:"birthdate" validate:"required,birthdate"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Image     string `json:"image,omitempty" validate:"omitempty,url"`
}

// LoginRequest defines the request body for email/password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateProfileRequest defines the body of a self-or-admin partial profile update.
// Empty fields keep their stored value.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName  string `json:"lastName,omitempty" validate:"omitempty,max=50"`
	Nickname  string `json:"nickname,omitempty" validate:"omitempty,max=50"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,len=10,numeric"`
	Country   string `json:"country,omitempty" validate:"omitempty,max=50"`
	Birthdate string `json:"birthdate,omitempty" validate:"omitempty,birthdate"`
	Image     string `json:"image,omitempty" validate:"omitempty,url"`
}

// AdminUpdateUserRequest defines the body of the admin-only full user update
type AdminUpdateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Nickname  string `json:"nickname" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,len=10,numeric"`
	Country   string `json:"country" validate:"required,max=50"`
	Birthdate string `json:"birthdate" validate:"required,birthdate"`
	Image     string `json:"image,omitempty" validate:"omitempty,url"`
	IsAdmin   bool   `json:"isAdmin"`
}

// ProfileImageRequest sets the caller's profile image URL
type ProfileImageRequest struct {
	Image string `json:"image" validate:"required,url"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// ParseBirthdate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseBirthdate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
