package repository

import (
	"context"
	"errors"

	"youbet/internal/models"

	"gorm.io/gorm"
)

// ContactRepository defines persistence operations for the contact graph.
type ContactRepository interface {
	Create(ctx context.Context, userID, otherID uint) (*models.Contact, error)
	GetByID(ctx context.Context, id uint) (*models.Contact, error)
	GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Contact, error)
	List(ctx context.Context, userID uint, search string, limit, offset int) ([]models.Contact, error)
	Delete(ctx context.Context, id uint) error
	SetBlocked(ctx context.Context, id uint, blocked bool) error
	SetFavorite(ctx context.Context, id uint, favorite bool) error
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository returns a new ContactRepository implementation.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create inserts the edge for the pair in canonical order. The unique index
// on (user_id, contact_id) rejects a second edge for the same pair.
func (r *contactRepository) Create(ctx context.Context, userID, otherID uint) (*models.Contact, error) {
	lo, hi := models.OrderPair(userID, otherID)
	contact := &models.Contact{UserID: lo, ContactID: hi}
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewDuplicateRequestError("Contact already exists")
		}
		return nil, models.NewInternalError(err)
	}
	return contact, nil
}

func (r *contactRepository) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("ContactUser").
		First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Contact", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &contact, nil
}

// GetBetweenUsers returns (nil, nil) when the pair has no edge. Canonical
// ordering means only one column arrangement needs checking.
func (r *contactRepository) GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Contact, error) {
	lo, hi := models.OrderPair(userID1, userID2)
	var contact models.Contact
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND contact_id = ?", lo, hi).
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &contact, nil
}

// List returns unblocked edges where userID is either endpoint, optionally
// filtered by a case-insensitive substring match on the counterpart's name.
func (r *contactRepository) List(ctx context.Context, userID uint, search string, limit, offset int) ([]models.Contact, error) {
	var contacts []models.Contact

	query := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Joins("JOIN users counterpart ON counterpart.id = CASE WHEN contacts.user_id = ? THEN contacts.contact_id ELSE contacts.user_id END", userID).
		Where("(contacts.user_id = ? OR contacts.contact_id = ?) AND contacts.is_blocked = ?", userID, userID, false)

	if search != "" {
		query = query.Where("LOWER(counterpart.name) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := query.
		Preload("User").
		Preload("ContactUser").
		Order("contacts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&contacts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return contacts, nil
}

func (r *contactRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Contact{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contactRepository) SetBlocked(ctx context.Context, id uint, blocked bool) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ?", id).
		Update("is_blocked", blocked).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contactRepository) SetFavorite(ctx context.Context, id uint, favorite bool) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ?", id).
		Update("is_favorite", favorite).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
