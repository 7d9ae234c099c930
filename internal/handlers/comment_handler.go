package handlers

import (
	"net/http"

	"github.com/anonto42/publishare/backend/internal/middleware"
	"github.com/anonto42/publishare/backend/internal/models"
	"github.com/anonto42/publishare/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comments embedded in posts
type CommentHandler struct {
	cardService *services.CardService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(cardService *services.CardService) *CommentHandler {
	return &CommentHandler{cardService: cardService}
}

// RegisterCommentRoutes registers comment routes on a group mounted at /cards
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/:id/comments", h.AddComment, m...)
	g.PATCH("/:id/comments/:commentId", h.UpdateComment, m...)
	g.DELETE("/:id/comments/:commentId", h.DeleteComment, m...)
}

// AddComment appends a comment and returns the post's comments
func (h *CommentHandler) AddComment(c echo.Context) error {
	var req models.CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	comments, err := h.cardService.AddComment(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.CommentsResponse{
		Message:  "Comment added successfully",
		Comments: comments,
	})
}

// UpdateComment edits a comment's text. Author or admin only.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req models.CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	comment, err := h.cardService.UpdateComment(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), c.Param("commentId"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment and returns the ones left
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	comments, err := h.cardService.DeleteComment(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), c.Param("commentId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.CommentsResponse{
		Message:  "Comment deleted successfully",
		Comments: comments,
	})
}
