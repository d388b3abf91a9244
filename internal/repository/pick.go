package repository

import (
	"context"
	"errors"
	"time"

	"youbet/internal/models"

	"gorm.io/gorm"
)

// PickRepository defines persistence operations for picks and their
// reactions and comments.
type PickRepository interface {
	Create(ctx context.Context, pick *models.Pick) error
	GetByID(ctx context.Context, id uint) (*models.Pick, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Pick, error)
	ListFeed(ctx context.Context, userIDs []uint, before time.Time, limit int) ([]models.Pick, error)
	Update(ctx context.Context, pick *models.Pick) error
	Delete(ctx context.Context, id uint) error
	AddReaction(ctx context.Context, reaction *models.Reaction) error
	RemoveReaction(ctx context.Context, pickID, userID uint) error
	AddComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, pickID uint, limit, offset int) ([]models.Comment, error)
}

type pickRepository struct {
	db *gorm.DB
}

// NewPickRepository returns a new PickRepository implementation.
func NewPickRepository(db *gorm.DB) PickRepository {
	return &pickRepository{db: db}
}

func (r *pickRepository) Create(ctx context.Context, pick *models.Pick) error {
	if err := r.db.WithContext(ctx).Create(pick).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pickRepository) GetByID(ctx context.Context, id uint) (*models.Pick, error) {
	var pick models.Pick
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Event").
		Preload("Reactions").
		Preload("Comments.User").
		First(&pick, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Pick", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &pick, nil
}

func (r *pickRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Pick, error) {
	var picks []models.Pick
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Event").
		Preload("Reactions").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&picks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return picks, nil
}

// ListFeed pages by created_at keyset so a growing feed never repeats or
// skips rows between pages.
func (r *pickRepository) ListFeed(ctx context.Context, userIDs []uint, before time.Time, limit int) ([]models.Pick, error) {
	if len(userIDs) == 0 {
		return []models.Pick{}, nil
	}
	var picks []models.Pick
	query := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs)
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}
	if err := query.
		Preload("User").
		Preload("Event").
		Preload("Reactions").
		Order("created_at DESC").
		Limit(limit).
		Find(&picks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return picks, nil
}

func (r *pickRepository) Update(ctx context.Context, pick *models.Pick) error {
	if err := r.db.WithContext(ctx).Save(pick).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pickRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Pick{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pickRepository) AddReaction(ctx context.Context, reaction *models.Reaction) error {
	if err := r.db.WithContext(ctx).Create(reaction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewDuplicateRequestError("Already reacted to this pick")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pickRepository) RemoveReaction(ctx context.Context, pickID, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("pick_id = ? AND user_id = ?", pickID, userID).
		Delete(&models.Reaction{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pickRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pickRepository) ListComments(ctx context.Context, pickID uint, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("pick_id = ?", pickID).
		Preload("User").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
