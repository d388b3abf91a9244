package repository

import (
	"context"
	"errors"
	"time"

	"youbet/internal/models"

	"gorm.io/gorm"
)

// EventRepository defines persistence operations for sporting events.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	ListUpcoming(ctx context.Context, sport, league string, after time.Time, limit, offset int) ([]models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Event", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &event, nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, sport, league string, after time.Time, limit, offset int) ([]models.Event, error) {
	var events []models.Event
	query := r.db.WithContext(ctx).
		Where("start_time > ? AND status = ?", after, models.EventStatusScheduled)
	if sport != "" {
		query = query.Where("sport = ?", sport)
	}
	if league != "" {
		query = query.Where("league = ?", league)
	}
	if err := query.
		Order("start_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}
