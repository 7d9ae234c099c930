package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/auth"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/anonto42/publishare/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	users        repositories.UserRepository
	defaultImage string
}

func NewUserService(users repositories.UserRepository, defaultImage string) *UserService {
	if defaultImage == "" {
		defaultImage = models.DefaultProfileImage
	}
	return &UserService{users: users, defaultImage: defaultImage}
}

// authorize parses the target id and applies the role gate before any lookup.
func (s *UserService) authorize(actor auth.Actor, rawID string, role auth.Role, method string) (primitive.ObjectID, error) {
	if _, err := actorID(actor); err != nil {
		return primitive.NilObjectID, err
	}
	id, err := parseID(rawID, "user")
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !auth.CanMutate(actor, id.Hex(), role, method) {
		return primitive.NilObjectID, apperr.Forbidden()
	}
	return id, nil
}

// GetUser returns the profile of the caller, or of anyone for an admin.
func (s *UserService) GetUser(ctx context.Context, actor auth.Actor, rawID string) (*models.UserProfile, error) {
	id, err := s.authorize(actor, rawID, auth.RoleOwner, http.MethodGet)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, id)
}

// GetPublicProfile returns any user's profile to an authenticated caller.
func (s *UserService) GetPublicProfile(ctx context.Context, actor auth.Actor, rawID string) (*models.UserProfile, error) {
	if _, err := actorID(actor); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "user")
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, id)
}

func (s *UserService) profile(ctx context.Context, id primitive.ObjectID) (*models.UserProfile, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, msgUserNotFound)
	}
	p := user.ToProfile()
	return &p, nil
}

// UpdateProfile replaces the non-empty fields of the request on the caller's own profile.
// Admins may update anyone.
func (s *UserService) UpdateProfile(ctx context.Context, actor auth.Actor, rawID string, req models.UpdateProfileRequest) (*models.UserProfile, error) {
	id, err := s.authorize(actor, rawID, auth.RoleOwner, http.MethodPatch)
	if err != nil {
		return nil, err
	}

	var upd models.UserUpdate
	setText := func(dst **string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = &v
		}
	}
	setText(&upd.FirstName, req.FirstName)
	setText(&upd.LastName, req.LastName)
	setText(&upd.Nickname, req.Nickname)
	setText(&upd.Country, req.Country)
	if req.Phone != "" {
		upd.Phone = &req.Phone
	}
	if req.Image != "" {
		upd.Image = &req.Image
	}
	if req.Birthdate != "" {
		bd, err := models.ParseBirthdate(req.Birthdate)
		if err != nil {
			return nil, apperr.Validation("birthdate must be a date (YYYY-MM-DD)")
		}
		upd.Birthdate = &bd
	}

	user, err := s.users.UpdateUser(ctx, id, upd)
	if err != nil {
		return nil, repoErr(err, msgUserNotFound)
	}
	p := user.ToProfile()
	return &p, nil
}

// AdminUpdateUser replaces every editable field of a user, including the admin flag.
func (s *UserService) AdminUpdateUser(ctx context.Context, actor auth.Actor, rawID string, req models.AdminUpdateUserRequest) (*models.User, error) {
	id, err := s.authorize(actor, rawID, auth.RoleAdmin, http.MethodPut)
	if err != nil {
		return nil, err
	}
	bd, err := models.ParseBirthdate(req.Birthdate)
	if err != nil {
		return nil, apperr.Validation("birthdate must be a date (YYYY-MM-DD)")
	}

	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	nickname := strings.TrimSpace(req.Nickname)
	country := strings.TrimSpace(req.Country)
	email := normalizeEmail(req.Email)
	isAdmin := req.IsAdmin
	upd := models.UserUpdate{
		FirstName: &first,
		LastName:  &last,
		Nickname:  &nickname,
		Email:     &email,
		Phone:     &req.Phone,
		Country:   &country,
		Birthdate: &bd,
		IsAdmin:   &isAdmin,
	}
	if req.Image != "" {
		upd.Image = &req.Image
	}

	user, err := s.users.UpdateUser(ctx, id, upd)
	if err != nil {
		return nil, repoErr(err, msgUserNotFound)
	}
	return user, nil
}

// DeleteUser removes a user. Admin only.
func (s *UserService) DeleteUser(ctx context.Context, actor auth.Actor, rawID string) error {
	id, err := s.authorize(actor, rawID, auth.RoleAdmin, http.MethodDelete)
	if err != nil {
		return err
	}
	return repoErr(s.users.DeleteUser(ctx, id), msgUserNotFound)
}

// SetProfileImage stores a new image URL on the caller's profile.
func (s *UserService) SetProfileImage(ctx context.Context, actor auth.Actor, url string) (*models.UserProfile, error) {
	return s.setImage(ctx, actor, url)
}

// ResetProfileImage restores the placeholder image on the caller's profile.
func (s *UserService) ResetProfileImage(ctx context.Context, actor auth.Actor) (*models.UserProfile, error) {
	return s.setImage(ctx, actor, s.defaultImage)
}

func (s *UserService) setImage(ctx context.Context, actor auth.Actor, url string) (*models.UserProfile, error) {
	id, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	user, err := s.users.UpdateUser(ctx, id, models.UserUpdate{Image: &url})
	if err != nil {
		return nil, repoErr(err, msgUserNotFound)
	}
	p := user.ToProfile()
	return &p, nil
}
