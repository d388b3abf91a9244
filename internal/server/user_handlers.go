package server

import (
	"strings"

	"youbet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	contactsCount, err := s.userRepo.CountContacts(c.Context(), user.ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":          user,
		"stats":         user.StatsView(),
		"contactsCount": contactsCount,
	})
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Handle *string `json:"handle"`
		Name   *string `json:"name"`
		Email  *string `json:"email"`
		Bio    *string `json:"bio"`
		Avatar *string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if req.Handle != nil {
		handle := strings.TrimSpace(*req.Handle)
		if len(handle) < 3 || len(handle) > 30 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidRequestError("Handle must be between 3 and 30 characters"))
		}
		user.Handle = handle
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidRequestError("Name cannot be empty"))
		}
		user.Name = name
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Bio != nil {
		if len(*req.Bio) > 500 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidRequestError("Bio must be at most 500 characters"))
		}
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// GetUserProfile handles GET /api/users/:handle
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	handle := c.Params("handle")
	if handle == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Handle is required"))
	}

	user, err := s.userRepo.GetByHandle(c.Context(), handle)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	contactsCount, err := s.userRepo.CountContacts(c.Context(), user.ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	picks, err := s.pickService.ListByUser(c.Context(), user.ID, 10, 0)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":          user,
		"stats":         user.StatsView(),
		"contactsCount": contactsCount,
		"recentPicks":   picks,
	})
}
