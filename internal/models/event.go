package models

import "time"

// EventStatus represents the lifecycle of a sporting event.
type EventStatus string

const (
	EventStatusScheduled EventStatus = "SCHEDULED"
	EventStatusLive      EventStatus = "LIVE"
	EventStatusFinished  EventStatus = "FINISHED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

// Event is a sporting event that picks reference.
type Event struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Sport     string      `gorm:"size:40;not null;index" json:"sport"`
	League    string      `gorm:"size:60;not null;index" json:"league"`
	HomeTeam  string      `gorm:"size:80;not null" json:"home_team"`
	AwayTeam  string      `gorm:"size:80;not null" json:"away_team"`
	StartTime time.Time   `gorm:"not null;index" json:"start_time"`
	Status    EventStatus `gorm:"type:varchar(16);not null;default:'SCHEDULED';index" json:"status"`
	HomeScore int         `gorm:"default:0" json:"home_score"`
	AwayScore int         `gorm:"default:0" json:"away_score"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}
