package handlers

import (
	"net/http"

	"github.com/anonto42/publishare/backend/internal/middleware"
	"github.com/anonto42/publishare/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like toggles on posts
type LikeHandler struct {
	cardService *services.CardService
}

func NewLikeHandler(cardService *services.CardService) *LikeHandler {
	return &LikeHandler{cardService: cardService}
}

// RegisterLikeRoutes registers like routes on a group mounted at /cards
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.PATCH("/:id/like", h.ToggleLike, m...)
}

// ToggleLike likes the post, or unlikes it when the caller already did
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	result, err := h.cardService.ToggleLike(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
