package handlers

import (
	"net/http"

	"github.com/anonto42/publishare/backend/internal/middleware"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/anonto42/publishare/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CardHandler handles HTTP requests related to posts
type CardHandler struct {
	cardService *services.CardService
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardService *services.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// RegisterCardRoutes registers post routes on a group mounted at /cards
func (h *CardHandler) RegisterCardRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.GET("", h.ListPosts, m...) // all posts, or one author's with ?user_id=
	g.GET("/:id", h.GetPost, m...)
	g.POST("", h.CreatePost, m...)
	g.PATCH("/:id", h.UpdatePost, m...)
	g.DELETE("/:id", h.DeletePost, m...)
}

func (h *CardHandler) ListPosts(c echo.Context) error {
	posts, err := h.cardService.ListPosts(c.Request().Context(), middleware.ActorFrom(c), c.QueryParam("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *CardHandler) GetPost(c echo.Context) error {
	post, err := h.cardService.GetPost(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost creates a post owned by the caller
func (h *CardHandler) CreatePost(c echo.Context) error {
	var req models.CreateCardRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	post, err := h.cardService.CreatePost(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// UpdatePost changes the fields present in the request. Owner or admin only.
func (h *CardHandler) UpdatePost(c echo.Context) error {
	var req models.UpdateCardRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	post, err := h.cardService.UpdatePost(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost removes a post and returns it as it was
func (h *CardHandler) DeletePost(c echo.Context) error {
	post, err := h.cardService.DeletePost(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}
