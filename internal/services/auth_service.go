package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/auth"
	"github.com/anonto42/publishare/backend/internal/metrics"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/anonto42/publishare/backend/internal/repositories"
	"github.com/anonto42/publishare/backend/pkg/firebase"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// IdentityVerifier checks third-party ID tokens. *firebase.App implements it.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebase.Identity, error)
}

// AuthConfig tunes registration defaults and login lockout.
type AuthConfig struct {
	// MaxFailedLogins is the number of consecutive failures that locks an account. Zero disables lockout.
	MaxFailedLogins int
	LockDuration    time.Duration
	DefaultImage    string
}

type AuthService struct {
	users    repositories.UserRepository
	tokens   *auth.TokenManager
	verifier IdentityVerifier
	cfg      AuthConfig
	now      func() time.Time
}

// NewAuthService builds the auth service. verifier may be nil, which disables Firebase login.
func NewAuthService(users repositories.UserRepository, tokens *auth.TokenManager, verifier IdentityVerifier, cfg AuthConfig) *AuthService {
	if cfg.DefaultImage == "" {
		cfg.DefaultImage = models.DefaultProfileImage
	}
	return &AuthService{users: users, tokens: tokens, verifier: verifier, cfg: cfg, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	birthdate, err := models.ParseBirthdate(req.Birthdate)
	if err != nil {
		return nil, apperr.Validation("birthdate must be a date (YYYY-MM-DD)")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Nickname:  strings.TrimSpace(req.Nickname),
		Email:     normalizeEmail(req.Email),
		Phone:     req.Phone,
		Country:   strings.TrimSpace(req.Country),
		Birthdate: birthdate,
		Password:  hash,
		Image:     s.cfg.DefaultImage,
	}
	if req.Image != "" {
		user.Image = req.Image
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		return nil, repoErr(err, msgUserNotFound)
	}
	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	return s.issue(user)
}

// Login checks email and password. Unknown emails and wrong passwords share one message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound(msgBadCredentials)
		}
		return nil, apperr.Internal(err)
	}

	now := s.now()
	if user.LockUntil != nil && now.Before(*user.LockUntil) {
		metrics.AuthAttempts.WithLabelValues("login", "locked").Inc()
		return nil, apperr.Locked(msgAccountLocked)
	}

	if err := auth.VerifyPassword(password, user.Password); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		if err := s.recordFailure(ctx, user.ID, now); err != nil {
			return nil, err
		}
		return nil, apperr.InvalidCredentials(msgBadCredentials)
	}

	if user.FailedLoginAttempts > 0 || user.LockUntil != nil {
		if err := s.users.ResetFailedLogins(ctx, user.ID); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	return s.issue(user)
}

func (s *AuthService) recordFailure(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	if s.cfg.MaxFailedLogins <= 0 {
		return nil
	}
	attempts, err := s.users.IncrementFailedLogins(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if attempts >= s.cfg.MaxFailedLogins {
		zap.L().Warn("locking account after failed logins",
			zap.String("user_id", id.Hex()), zap.Int("attempts", attempts))
		if err := s.users.LockUser(ctx, id, now.Add(s.cfg.LockDuration)); err != nil {
			return apperr.Internal(err)
		}
	}
	return nil
}

// FirebaseLogin exchanges a Firebase ID token for a local token, creating the user on first use.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	if s.verifier == nil {
		return nil, apperr.Unavailable(msgFirebaseDisabled)
	}

	identity, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("firebase", "failure").Inc()
		zap.L().Info("firebase token rejected", zap.Error(err))
		return nil, apperr.Unauthorized(apperr.CodeInvalidIDToken, msgFirebaseBadToken)
	}

	email := normalizeEmail(identity.Email)
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		user, err = s.createFirebaseUser(ctx, email, identity.Name)
	}
	if err != nil {
		return nil, repoErr(err, msgUserNotFound)
	}

	metrics.AuthAttempts.WithLabelValues("firebase", "success").Inc()
	return s.issue(user)
}

func (s *AuthService) createFirebaseUser(ctx context.Context, email, displayName string) (*models.User, error) {
	// The account can only be reached through Firebase until a password is set.
	hash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}

	first, last, _ := strings.Cut(strings.TrimSpace(displayName), " ")
	nickname, _, _ := strings.Cut(email, "@")
	user := &models.User{
		FirstName: first,
		LastName:  strings.TrimSpace(last),
		Nickname:  nickname,
		Email:     email,
		Password:  hash,
		Image:     s.cfg.DefaultImage,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyToken authenticates an Authorization header value.
func (s *AuthService) VerifyToken(header string) (auth.Actor, error) {
	claims, err := s.tokens.VerifyHeader(header)
	if err != nil {
		return auth.Actor{}, tokenErr(err)
	}
	return auth.ActorFromClaims(claims), nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, _, err := s.tokens.Issue(user.ID.Hex(), user.IsAdmin)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &models.AuthResponse{Token: token, User: user.ToPublic()}, nil
}
