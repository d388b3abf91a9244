package models

import "time"

// ContactRequestStatus represents the status of a contact request.
type ContactRequestStatus string

const (
	// ContactRequestStatusPending indicates the request is awaiting a response.
	ContactRequestStatusPending ContactRequestStatus = "PENDING"
	// ContactRequestStatusApproved indicates the target approved the request.
	ContactRequestStatusApproved ContactRequestStatus = "APPROVED"
	// ContactRequestStatusDeclined indicates the target declined the request.
	ContactRequestStatusDeclined ContactRequestStatus = "DECLINED"
	// ContactRequestStatusExpired indicates the request outlived its expiry
	// before anyone responded. Terminal; set by the sweeper.
	ContactRequestStatusExpired ContactRequestStatus = "EXPIRED"
)

// ContactRequest is a directed proposal from a user to a phone number.
// ToUserID is resolved at creation time when the phone already belongs to a
// registered user; it stays nil for SMS invites.
type ContactRequest struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	FromID      uint                 `gorm:"not null;index" json:"from_id"`
	ToPhone     string               `gorm:"not null;index" json:"to_phone"`
	ToUserID    *uint                `gorm:"index" json:"to_user_id"`
	Message     string               `gorm:"size:280" json:"message,omitempty"`
	Status      ContactRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	RespondedAt *time.Time           `json:"responded_at"`
	ExpiresAt   time.Time            `json:"expires_at"`

	From   User  `gorm:"foreignKey:FromID" json:"from,omitempty"`
	ToUser *User `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
}

// TableName specifies the table name for GORM
func (ContactRequest) TableName() string {
	return "contact_requests"
}

// Expired reports whether the request's expiry has passed at the given time.
func (r *ContactRequest) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// Contact is a single row representing the undirected relationship between
// two users. The pair is stored in canonical order (lower id in UserID), so
// the counterpart of a caller is always a pure function of the caller's id.
type Contact struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_contact_pair" json:"user_id"`
	ContactID  uint      `gorm:"not null;uniqueIndex:idx_contact_pair" json:"contact_id"`
	IsFavorite bool      `gorm:"default:false" json:"is_favorite"`
	IsBlocked  bool      `gorm:"default:false" json:"is_blocked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User        User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ContactUser User `gorm:"foreignKey:ContactID" json:"contact_user,omitempty"`
}

// TableName specifies the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// OrderPair returns the two user ids in canonical storage order.
func OrderPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// Counterpart returns the other endpoint of the edge relative to userID.
func (c *Contact) Counterpart(userID uint) uint {
	if c.UserID == userID {
		return c.ContactID
	}
	return c.UserID
}

// HasEndpoint reports whether userID is one of the edge's endpoints.
func (c *Contact) HasEndpoint(userID uint) bool {
	return c.UserID == userID || c.ContactID == userID
}
