package server

import (
	"youbet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendContactRequest handles POST /api/contacts/requests
func (s *Server) SendContactRequest(c *fiber.Ctx) error {
	var req struct {
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid request body"))
	}

	result, err := s.contactService.SendRequest(c.Context(), currentUserID(c), req.Phone, req.Message)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetSentRequests handles GET /api/contacts/requests/sent
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	requests, err := s.contactService.ListSent(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetReceivedRequests handles GET /api/contacts/requests/received
func (s *Server) GetReceivedRequests(c *fiber.Ctx) error {
	invitations, err := s.contactService.ListReceived(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"invitations": invitations})
}

// ApproveContactRequest handles POST /api/contacts/requests/:requestId/approve
func (s *Server) ApproveContactRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	contact, err := s.contactService.Approve(c.Context(), currentUserID(c), requestID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"contact": contact})
}

// DeclineContactRequest handles POST /api/contacts/requests/:requestId/decline
func (s *Server) DeclineContactRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	if err := s.contactService.Decline(c.Context(), currentUserID(c), requestID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Contact request declined"})
}

// CancelContactRequest handles DELETE /api/contacts/requests/:requestId
func (s *Server) CancelContactRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	if err := s.contactService.Cancel(c.Context(), currentUserID(c), requestID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Contact request cancelled"})
}

// GetContacts handles GET /api/contacts
func (s *Server) GetContacts(c *fiber.Ctx) error {
	pagination := parsePagination(c, 50)
	search := c.Query("search")

	contacts, err := s.contactService.ListContacts(c.Context(), currentUserID(c), search, pagination.Limit, pagination.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"contacts": contacts, "count": len(contacts)})
}

// RemoveContact handles DELETE /api/contacts/:contactId
func (s *Server) RemoveContact(c *fiber.Ctx) error {
	contactID, err := s.parseID(c, "contactId")
	if err != nil {
		return nil
	}

	if err := s.contactService.RemoveContact(c.Context(), currentUserID(c), contactID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Contact removed"})
}

// BlockContact handles PUT /api/contacts/:contactId/block
func (s *Server) BlockContact(c *fiber.Ctx) error {
	contactID, err := s.parseID(c, "contactId")
	if err != nil {
		return nil
	}

	var req struct {
		Blocked bool `json:"blocked"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid request body"))
	}

	if err := s.contactService.SetBlocked(c.Context(), currentUserID(c), contactID, req.Blocked); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Contact updated"})
}

// FavoriteContact handles PUT /api/contacts/:contactId/favorite
func (s *Server) FavoriteContact(c *fiber.Ctx) error {
	contactID, err := s.parseID(c, "contactId")
	if err != nil {
		return nil
	}

	var req struct {
		Favorite bool `json:"favorite"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidRequestError("Invalid request body"))
	}

	if err := s.contactService.SetFavorite(c.Context(), currentUserID(c), contactID, req.Favorite); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Contact updated"})
}
