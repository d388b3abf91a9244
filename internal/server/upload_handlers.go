package server

import (
	"youbet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// PresignSlipUpload handles POST /api/uploads/slips
func (s *Server) PresignSlipUpload(c *fiber.Ctx) error {
	if s.storage == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInvalidStateError("Slip uploads are not configured"))
	}

	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid request body"))
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	upload, err := s.storage.PresignUpload(c.Context(), req.Filename, req.ContentType)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(upload)
}
