package service

import (
	"context"
	"strconv"
	"time"

	"youbet/internal/models"
	"youbet/internal/repository"
)

// FeedPageSize is the number of picks per feed page.
const FeedPageSize = 20

// FeedPage is one page of the contact feed plus the cursor for the next.
type FeedPage struct {
	Picks      []models.Pick `json:"picks"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// FeedService assembles the contact feed: picks posted by the caller's
// contacts plus the caller's own, newest first, cursor-paginated.
type FeedService struct {
	pickRepo    repository.PickRepository
	contactRepo repository.ContactRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(pickRepo repository.PickRepository, contactRepo repository.ContactRepository) *FeedService {
	return &FeedService{
		pickRepo:    pickRepo,
		contactRepo: contactRepo,
	}
}

// Get returns a feed page for userID. The cursor is the created_at of the
// last pick on the previous page, in unix nanoseconds; an empty cursor means
// the first page.
func (s *FeedService) Get(ctx context.Context, userID uint, cursor string) (*FeedPage, error) {
	before, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	contacts, err := s.contactRepo.List(ctx, userID, "", 1000, 0)
	if err != nil {
		return nil, err
	}
	authorIDs := make([]uint, 0, len(contacts)+1)
	authorIDs = append(authorIDs, userID)
	for _, c := range contacts {
		authorIDs = append(authorIDs, c.Counterpart(userID))
	}

	picks, err := s.pickRepo.ListFeed(ctx, authorIDs, before, FeedPageSize)
	if err != nil {
		return nil, err
	}

	page := &FeedPage{Picks: picks}
	if len(picks) == FeedPageSize {
		page.NextCursor = encodeCursor(picks[len(picks)-1].CreatedAt)
	}
	return page, nil
}

func decodeCursor(cursor string) (time.Time, error) {
	if cursor == "" {
		return time.Time{}, nil
	}
	nanos, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || nanos <= 0 {
		return time.Time{}, models.NewInvalidRequestError("Invalid feed cursor")
	}
	return time.Unix(0, nanos), nil
}

func encodeCursor(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}
