package server

import (
	"youbet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	pagination := parsePagination(c, 50)
	items, total, err := s.notificationService.ListForUser(c.Context(), currentUserID(c), pagination.Limit, pagination.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"notifications": items,
		"total":         total,
	})
}
