package service

import (
	"context"
	"time"

	"youbet/internal/models"
	"youbet/internal/repository"
)

// PickService owns pick posting, settlement, and engagement.
type PickService struct {
	pickRepo  repository.PickRepository
	eventRepo repository.EventRepository
	userRepo  repository.UserRepository
}

// NewPickService returns a new PickService.
func NewPickService(pickRepo repository.PickRepository, eventRepo repository.EventRepository, userRepo repository.UserRepository) *PickService {
	return &PickService{
		pickRepo:  pickRepo,
		eventRepo: eventRepo,
		userRepo:  userRepo,
	}
}

// CreatePickInput is the payload for posting a pick.
type CreatePickInput struct {
	EventID   *uint
	Type      models.PickType
	Selection string
	Odds      float64
	Stake     float64
	Caption   string
	SlipKey   string
}

// Create posts a pick for userID.
func (s *PickService) Create(ctx context.Context, userID uint, in CreatePickInput) (*models.Pick, error) {
	if in.Selection == "" {
		return nil, models.NewInvalidRequestError("Selection is required")
	}
	if in.Stake < 0 || in.Odds < 0 {
		return nil, models.NewInvalidRequestError("Odds and stake must be non-negative")
	}
	if len(in.Caption) > 500 {
		return nil, models.NewInvalidRequestError("Caption must be at most 500 characters")
	}
	if in.Type == "" {
		in.Type = models.PickTypePrediction
	}

	if in.EventID != nil {
		if _, err := s.eventRepo.GetByID(ctx, *in.EventID); err != nil {
			return nil, err
		}
	}

	pick := &models.Pick{
		UserID:    userID,
		EventID:   in.EventID,
		Type:      in.Type,
		Status:    models.PickStatusPending,
		Selection: in.Selection,
		Odds:      in.Odds,
		Stake:     in.Stake,
		Caption:   in.Caption,
		SlipKey:   in.SlipKey,
	}
	if err := s.pickRepo.Create(ctx, pick); err != nil {
		return nil, err
	}
	return s.pickRepo.GetByID(ctx, pick.ID)
}

// Get returns a pick with its engagement loaded.
func (s *PickService) Get(ctx context.Context, id uint) (*models.Pick, error) {
	return s.pickRepo.GetByID(ctx, id)
}

// ListByUser returns a user's picks, newest first.
func (s *PickService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Pick, error) {
	return s.pickRepo.ListByUser(ctx, userID, limit, offset)
}

// Settle records the outcome of a pick and updates the owner's running
// record. Only the owner can settle, and only once.
func (s *PickService) Settle(ctx context.Context, userID, pickID uint, status models.PickStatus) (*models.Pick, error) {
	switch status {
	case models.PickStatusWon, models.PickStatusLost, models.PickStatusPush:
	default:
		return nil, models.NewInvalidRequestError("Settlement status must be WON, LOST, or PUSH")
	}

	pick, err := s.pickRepo.GetByID(ctx, pickID)
	if err != nil {
		return nil, err
	}
	if pick.UserID != userID {
		return nil, models.NewForbiddenError("You can only settle your own picks")
	}
	if pick.Status != models.PickStatusPending {
		return nil, models.NewInvalidStateError("Pick is already settled")
	}

	pick.Status = status
	switch status {
	case models.PickStatusWon:
		pick.Payout = pick.Stake * pick.Odds
	case models.PickStatusPush:
		pick.Payout = pick.Stake
	default:
		pick.Payout = 0
	}
	if err := s.pickRepo.Update(ctx, pick); err != nil {
		return nil, err
	}

	if err := s.updateOwnerStats(ctx, pick.UserID, status, pick.Payout-pick.Stake); err != nil {
		return nil, err
	}
	return pick, nil
}

func (s *PickService) updateOwnerStats(ctx context.Context, userID uint, status models.PickStatus, profit float64) error {
	owner, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	owner.TotalPicks++
	switch status {
	case models.PickStatusWon:
		owner.TotalWins++
	case models.PickStatusLost:
		owner.TotalLosses++
	}
	owner.TotalProfit += profit
	if settled := owner.TotalWins + owner.TotalLosses; settled > 0 {
		owner.WinRateLifetime = float64(owner.TotalWins) / float64(settled)
	}
	return s.userRepo.Update(ctx, owner)
}

// Delete removes a pick owned by userID.
func (s *PickService) Delete(ctx context.Context, userID, pickID uint) error {
	pick, err := s.pickRepo.GetByID(ctx, pickID)
	if err != nil {
		return err
	}
	if pick.UserID != userID {
		return models.NewForbiddenError("You can only delete your own picks")
	}
	return s.pickRepo.Delete(ctx, pick.ID)
}

// React records a reaction from userID on a pick.
func (s *PickService) React(ctx context.Context, userID, pickID uint, kind string) error {
	if kind == "" {
		kind = "fire"
	}
	if _, err := s.pickRepo.GetByID(ctx, pickID); err != nil {
		return err
	}
	return s.pickRepo.AddReaction(ctx, &models.Reaction{
		PickID: pickID,
		UserID: userID,
		Kind:   kind,
	})
}

// Unreact removes userID's reaction from a pick.
func (s *PickService) Unreact(ctx context.Context, userID, pickID uint) error {
	return s.pickRepo.RemoveReaction(ctx, pickID, userID)
}

// Comment adds a comment from userID on a pick.
func (s *PickService) Comment(ctx context.Context, userID, pickID uint, body string) (*models.Comment, error) {
	if body == "" {
		return nil, models.NewInvalidRequestError("Comment body is required")
	}
	if len(body) > 1000 {
		return nil, models.NewInvalidRequestError("Comment must be at most 1000 characters")
	}
	if _, err := s.pickRepo.GetByID(ctx, pickID); err != nil {
		return nil, err
	}
	comment := &models.Comment{
		PickID: pickID,
		UserID: userID,
		Body:   body,
	}
	if err := s.pickRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Comments returns a pick's comments, oldest first.
func (s *PickService) Comments(ctx context.Context, pickID uint, limit, offset int) ([]models.Comment, error) {
	if _, err := s.pickRepo.GetByID(ctx, pickID); err != nil {
		return nil, err
	}
	return s.pickRepo.ListComments(ctx, pickID, limit, offset)
}

// UpcomingEvents returns scheduled events starting after now.
func (s *PickService) UpcomingEvents(ctx context.Context, sport, league string, limit, offset int) ([]models.Event, error) {
	return s.eventRepo.ListUpcoming(ctx, sport, league, time.Now(), limit, offset)
}
