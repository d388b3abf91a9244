package models

import "time"

// NotificationType classifies persisted notifications.
type NotificationType string

const (
	// NotificationTypeContactRequest is created when a contact request arrives.
	NotificationTypeContactRequest NotificationType = "CONTACT_REQUEST"
	// NotificationTypeContactApproved is created when a sent request is approved.
	NotificationTypeContactApproved NotificationType = "CONTACT_APPROVED"
	// NotificationTypeContactDeclined is created when a sent request is declined.
	NotificationTypeContactDeclined NotificationType = "CONTACT_DECLINED"
)

// Notification is the durable record of a state-change event delivered to a
// user. Rows are written once and never mutated; the ephemeral Redis publish
// that accompanies each write is best-effort only.
type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;index" json:"user_id"`
	Type       NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title      string           `gorm:"not null" json:"title"`
	Message    string           `gorm:"not null" json:"message"`
	RequestID  *uint            `json:"request_id"`
	FromUserID uint             `gorm:"not null" json:"from_user_id"`
	CreatedAt  time.Time        `json:"created_at"`

	FromUser User `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
