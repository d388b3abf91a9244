package server

import (
	"youbet/internal/models"
	"youbet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePick handles POST /api/picks
func (s *Server) CreatePick(c *fiber.Ctx) error {
	var req struct {
		EventID   *uint   `json:"event_id"`
		Type      string  `json:"type"`
		Selection string  `json:"selection"`
		Odds      float64 `json:"odds"`
		Stake     float64 `json:"stake"`
		Caption   string  `json:"caption"`
		SlipKey   string  `json:"slip_key"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid request body"))
	}

	pick, err := s.pickService.Create(c.Context(), currentUserID(c), service.CreatePickInput{
		EventID:   req.EventID,
		Type:      models.PickType(req.Type),
		Selection: req.Selection,
		Odds:      req.Odds,
		Stake:     req.Stake,
		Caption:   req.Caption,
		SlipKey:   req.SlipKey,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"pick": pick})
}

// GetMyPicks handles GET /api/picks
func (s *Server) GetMyPicks(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)

	picks, err := s.pickService.ListByUser(c.Context(), currentUserID(c), pagination.Limit, pagination.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"picks": picks})
}

// GetPick handles GET /api/picks/:id
func (s *Server) GetPick(c *fiber.Ctx) error {
	pickID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	pick, err := s.pickService.Get(c.Context(), pickID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"pick": pick})
}

// SettlePick handles PUT /api/picks/:id/settle
func (s *Server) SettlePick(c *fiber.Ctx) error {
	pickID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid request body"))
	}

	pick, err := s.pickService.Settle(c.Context(), currentUserID(c), pickID, models.PickStatus(req.Status))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"pick": pick})
}

// DeletePick handles DELETE /api/picks/:id
func (s *Server) DeletePick(c *fiber.Ctx) error {
	pickID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.pickService.Delete(c.Context(), currentUserID(c), pickID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Pick deleted"})
}

// ReactToPick handles POST /api/picks/:id/reactions
func (s *Server) ReactToPick(c *fiber.Ctx) error {
	pickID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Kind string `json:"kind"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid request body"))
	}

	if err := s.pickService.React(c.Context(), currentUserID(c), pickID, req.Kind); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Reaction added"})
}

// UnreactToPick handles DELETE /api/picks/:id/reactions
func (s *Server) UnreactToPick(c *fiber.Ctx) error {
	pickID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.pickService.Unreact(c.Context(), currentUserID(c), pickID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reaction removed"})
}

// CommentOnPick handles POST /api/picks/:id/comments
func (s *Server) CommentOnPick(c *fiber.Ctx) error {
	pickID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid request body"))
	}

	comment, err := s.pickService.Comment(c.Context(), currentUserID(c), pickID, req.Body)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// GetPickComments handles GET /api/picks/:id/comments
func (s *Server) GetPickComments(c *fiber.Ctx) error {
	pickID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	pagination := parsePagination(c, 50)
	comments, err := s.pickService.Comments(c.Context(), pickID, pagination.Limit, pagination.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}
