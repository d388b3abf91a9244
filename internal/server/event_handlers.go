package server

import (
	"youbet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetUpcomingEvents handles GET /api/events/upcoming
func (s *Server) GetUpcomingEvents(c *fiber.Ctx) error {
	pagination := parsePagination(c, 50)
	events, err := s.pickService.UpcomingEvents(c.Context(),
		c.Query("sport"), c.Query("league"), pagination.Limit, pagination.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"events": events})
}

// GetEvent handles GET /api/events/:id
func (s *Server) GetEvent(c *fiber.Ctx) error {
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	event, err := s.eventRepo.GetByID(c.Context(), eventID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"event": event})
}
