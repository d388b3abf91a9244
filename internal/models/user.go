// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a member of the YouBet community.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Phone         string         `gorm:"unique;not null" json:"phone"`
	Handle        string         `gorm:"unique;not null" json:"handle"`
	Name          string         `gorm:"not null" json:"name"`
	Email         string         `json:"email"`
	Bio           string         `json:"bio"`
	Avatar        string         `json:"avatar"`
	PhoneVerified bool           `gorm:"default:false" json:"phone_verified"`

	// Aggregated betting stats, recomputed when picks settle.
	TotalPicks      int     `gorm:"default:0" json:"total_picks"`
	TotalWins       int     `gorm:"default:0" json:"total_wins"`
	TotalLosses     int     `gorm:"default:0" json:"total_losses"`
	TotalProfit     float64 `gorm:"default:0" json:"total_profit"`
	ROI30d          float64 `gorm:"column:roi_30d;default:0" json:"roi_30d"`
	ROILifetime     float64 `gorm:"default:0" json:"roi_lifetime"`
	WinRate30d      float64 `gorm:"column:win_rate_30d;default:0" json:"win_rate_30d"`
	WinRateLifetime float64 `gorm:"default:0" json:"win_rate_lifetime"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// Stats is the projection returned by the stats endpoint.
type Stats struct {
	TotalPicks      int     `json:"total_picks"`
	TotalWins       int     `json:"total_wins"`
	TotalLosses     int     `json:"total_losses"`
	TotalProfit     float64 `json:"total_profit"`
	ROI30d          float64 `json:"roi_30d"`
	ROILifetime     float64 `json:"roi_lifetime"`
	WinRate30d      float64 `json:"win_rate_30d"`
	WinRateLifetime float64 `json:"win_rate_lifetime"`
}

// StatsView returns the user's stats projection.
func (u *User) StatsView() Stats {
	return Stats{
		TotalPicks:      u.TotalPicks,
		TotalWins:       u.TotalWins,
		TotalLosses:     u.TotalLosses,
		TotalProfit:     u.TotalProfit,
		ROI30d:          u.ROI30d,
		ROILifetime:     u.ROILifetime,
		WinRate30d:      u.WinRate30d,
		WinRateLifetime: u.WinRateLifetime,
	}
}
