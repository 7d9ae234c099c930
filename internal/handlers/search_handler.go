package handlers

import (
	"net/http"

	"github.com/anonto42/publishare/backend/internal/middleware"
	"github.com/anonto42/publishare/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type SearchHandler struct {
	searchService *services.SearchService
}

func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// RegisterSearchRoutes registers GET /search on g
func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.GET("", h.Search, m...)
}

// Search matches users, posts and comments against ?q=
func (h *SearchHandler) Search(c echo.Context) error {
	result, err := h.searchService.Search(c.Request().Context(), middleware.ActorFrom(c), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
