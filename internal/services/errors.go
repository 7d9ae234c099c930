package services

import (
	"errors"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/auth"
	"github.com/anonto42/publishare/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgUserNotFound     = "User not found."
	msgPostNotFound     = "Post not found."
	msgCommentNotFound  = "Comment not found."
	msgDuplicateEmail   = "User already registered."
	msgBadCredentials   = "Invalid email or password."
	msgAccountLocked    = "Too many failed login attempts. Try again later."
	msgMissingToken     = "Access denied. No token provided."
	msgTokenExpired     = "Token expired."
	msgInvalidToken     = "Invalid token."
	msgEmptyPost        = "A post needs text, an image, a video or a link."
	msgEmptyComment     = "Comment text is required."
	msgEmptySearch      = "Search query is required."
	msgFirebaseDisabled = "Firebase login is not configured."
	msgFirebaseBadToken = "Invalid Firebase ID token."
)

// parseID converts a path or query id into an ObjectID.
func parseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidID("Invalid " + what + " id.")
	}
	return id, nil
}

// actorID checks that the request is authenticated and returns the caller's id.
func actorID(actor auth.Actor) (primitive.ObjectID, error) {
	if actor.ID == "" {
		return primitive.NilObjectID, apperr.Unauthorized(apperr.CodeMissingToken, msgMissingToken)
	}
	id, err := primitive.ObjectIDFromHex(actor.ID)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized(apperr.CodeInvalidToken, msgInvalidToken)
	}
	return id, nil
}

// repoErr converts a repository error into the service error taxonomy.
func repoErr(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound(notFoundMsg)
	case errors.Is(err, repositories.ErrDuplicateEmail):
		return apperr.Conflict(apperr.CodeDuplicateEmail, msgDuplicateEmail)
	}
	return apperr.Internal(err)
}

// tokenErr converts a token verification failure into the service error taxonomy.
func tokenErr(err error) error {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return apperr.Unauthorized(apperr.CodeMissingToken, msgMissingToken)
	case errors.Is(err, auth.ErrTokenExpired):
		return apperr.Unauthorized(apperr.CodeTokenExpired, msgTokenExpired)
	}
	return apperr.Unauthorized(apperr.CodeInvalidToken, msgInvalidToken)
}
