package handlers

import (
	"net/http"

	"github.com/anonto42/publishare/backend/internal/auth"
	"github.com/anonto42/publishare/backend/internal/middleware"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/anonto42/publishare/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterUserRoutes registers the user routes behind authn, which must authenticate the
// caller. Admin-only routes are rejected before the body is read.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, authn echo.MiddlewareFunc) {
	adminOnly := middleware.RequireRole(auth.RoleAdmin, "")

	g.POST("/profile-image", h.SetProfileImage, authn)
	g.DELETE("/profile-image", h.ResetProfileImage, authn)
	g.GET("/user-profile/:id", h.GetPublicProfile, authn)
	g.GET("/:id", h.GetUser, authn)
	g.PATCH("/:id", h.UpdateProfile, authn)
	g.PUT("/:id", h.AdminUpdateUser, authn, adminOnly)
	g.DELETE("/:id", h.DeleteUser, authn, adminOnly)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.userService.GetUser(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// GetPublicProfile returns the profile any signed-in user may see
func (h *UserHandler) GetPublicProfile(c echo.Context) error {
	profile, err := h.userService.GetPublicProfile(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies the non-empty fields of the request
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	profile, err := h.userService.UpdateProfile(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// AdminUpdateUser replaces a user's editable fields
func (h *UserHandler) AdminUpdateUser(c echo.Context) error {
	var req models.AdminUpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.userService.AdminUpdateUser(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.userService.DeleteUser(c.Request().Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully."})
}

// SetProfileImage stores an image URL on the caller's profile
func (h *UserHandler) SetProfileImage(c echo.Context) error {
	var req models.ProfileImageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	profile, err := h.userService.SetProfileImage(c.Request().Context(), middleware.ActorFrom(c), req.Image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile image updated successfully.", "user": profile})
}

// ResetProfileImage puts the placeholder image back
func (h *UserHandler) ResetProfileImage(c echo.Context) error {
	profile, err := h.userService.ResetProfileImage(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile image reset to default successfully.", "user": profile})
}
