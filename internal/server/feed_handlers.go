package server

import (
	"youbet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, err := s.feedService.Get(c.Context(), currentUserID(c), c.Query("cursor"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(page)
}
