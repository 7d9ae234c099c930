package auth

import (
	"fmt"
	"net/http"
)

// Role is the access level an operation requires.
type Role int

const (
	// RoleOwner allows the resource owner and admins.
	RoleOwner Role = iota
	// RoleUser allows any authenticated actor on safe methods; mutations still need ownership or admin.
	RoleUser
	// RoleAdmin allows admins only.
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Actor is the authenticated identity behind a request
type Actor struct {
	ID      string
	IsAdmin bool
}

// ActorFromClaims builds the actor carried by verified token claims.
func ActorFromClaims(c *Claims) Actor {
	return Actor{ID: c.UserID, IsAdmin: c.IsAdmin}
}

// CanMutate decides whether actor may perform an operation requiring role on a resource
// owned by ownerID. ownerID may be empty when the resource has no owner.
func CanMutate(actor Actor, ownerID string, required Role, method string) bool {
	if actor.ID == "" {
		return false
	}
	switch required {
	case RoleOwner:
		if ownerID != "" && actor.ID == ownerID {
			return true
		}
		return actor.IsAdmin
	case RoleAdmin:
		return actor.IsAdmin
	case RoleUser:
		if actor.IsAdmin {
			return true
		}
		return isSafeMethod(method)
	}
	return false
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
