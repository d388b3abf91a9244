package repository

import (
	"context"
	"errors"
	"time"

	"youbet/internal/models"

	"gorm.io/gorm"
)

// ContactRequestRepository defines persistence operations for the contact
// request ledger.
type ContactRequestRepository interface {
	Create(ctx context.Context, request *models.ContactRequest) error
	GetByID(ctx context.Context, id uint) (*models.ContactRequest, error)
	GetPendingBySenderAndPhone(ctx context.Context, fromID uint, toPhone string) (*models.ContactRequest, error)
	ListSent(ctx context.Context, userID uint, now time.Time) ([]models.ContactRequest, error)
	ListReceived(ctx context.Context, userID uint, phone string, now time.Time) ([]models.ContactRequest, error)
	Respond(ctx context.Context, id uint, status models.ContactRequestStatus, respondedAt time.Time) error
	ApproveAndLink(ctx context.Context, request *models.ContactRequest, respondedAt time.Time) (*models.Contact, error)
	Delete(ctx context.Context, id uint) error
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type contactRequestRepository struct {
	db *gorm.DB
}

// NewContactRequestRepository returns a new ContactRequestRepository implementation.
func NewContactRequestRepository(db *gorm.DB) ContactRequestRepository {
	return &contactRequestRepository{db: db}
}

func (r *contactRequestRepository) Create(ctx context.Context, request *models.ContactRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		// The partial unique index on (from_id, to_phone) WHERE status='PENDING'
		// fires when two submissions race past the pre-read.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewDuplicateRequestError("Contact request already sent")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contactRequestRepository) GetByID(ctx context.Context, id uint) (*models.ContactRequest, error) {
	var request models.ContactRequest
	if err := r.db.WithContext(ctx).Preload("From").Preload("ToUser").First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Contact request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *contactRequestRepository) GetPendingBySenderAndPhone(ctx context.Context, fromID uint, toPhone string) (*models.ContactRequest, error) {
	var request models.ContactRequest
	if err := r.db.WithContext(ctx).
		Where("from_id = ? AND to_phone = ? AND status = ?", fromID, toPhone, models.ContactRequestStatusPending).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *contactRequestRepository) ListSent(ctx context.Context, userID uint, now time.Time) ([]models.ContactRequest, error) {
	var requests []models.ContactRequest
	if err := r.db.WithContext(ctx).
		Where("from_id = ? AND status = ? AND expires_at > ?", userID, models.ContactRequestStatusPending, now).
		Preload("ToUser").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

// ListReceived includes requests sent to the caller's phone before they
// registered, which still carry a NULL to_user_id.
func (r *contactRequestRepository) ListReceived(ctx context.Context, userID uint, phone string, now time.Time) ([]models.ContactRequest, error) {
	var requests []models.ContactRequest
	if err := r.db.WithContext(ctx).
		Where("(to_user_id = ? OR (to_user_id IS NULL AND to_phone = ?)) AND status = ? AND expires_at > ?",
			userID, phone, models.ContactRequestStatusPending, now).
		Preload("From").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

// Respond transitions a PENDING request to a terminal status. The status
// predicate makes the transition first-wins under concurrent responses.
func (r *contactRequestRepository) Respond(ctx context.Context, id uint, status models.ContactRequestStatus, respondedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.ContactRequest{}).
		Where("id = ? AND status = ?", id, models.ContactRequestStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": respondedAt,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewInvalidStateError("Request is no longer pending")
	}
	return nil
}

// ApproveAndLink transitions the request to APPROVED and creates the contact
// edge in one transaction, so a crash cannot leave an approved request with
// no corresponding edge.
func (r *contactRequestRepository) ApproveAndLink(ctx context.Context, request *models.ContactRequest, respondedAt time.Time) (*models.Contact, error) {
	if request.ToUserID == nil {
		return nil, models.NewInvalidStateError("Request has no resolved target user")
	}

	lo, hi := models.OrderPair(request.FromID, *request.ToUserID)
	contact := &models.Contact{UserID: lo, ContactID: hi}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ContactRequest{}).
			Where("id = ? AND status = ?", request.ID, models.ContactRequestStatusPending).
			Updates(map[string]interface{}{
				"status":       models.ContactRequestStatusApproved,
				"responded_at": respondedAt,
				"to_user_id":   *request.ToUserID,
			})
		if result.Error != nil {
			return models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewInvalidStateError("Request is no longer pending")
		}

		if err := tx.Create(contact).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Pair already linked through an earlier request; reuse the edge.
				return tx.Where("user_id = ? AND contact_id = ?", lo, hi).First(contact).Error
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *contactRequestRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.ContactRequest{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ExpireBefore marks PENDING requests whose expiry has passed as EXPIRED and
// returns the number of rows transitioned.
func (r *contactRequestRepository) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ContactRequest{}).
		Where("status = ? AND expires_at <= ?", models.ContactRequestStatusPending, cutoff).
		Update("status", models.ContactRequestStatusExpired)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}
