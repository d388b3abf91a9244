package models

import "time"

// PickType distinguishes forward-looking predictions from posted results.
type PickType string

const (
	// PickTypePrediction is a pick posted before the event settles.
	PickTypePrediction PickType = "PREDICTION"
	// PickTypeResult is a pick posted with a settled outcome attached.
	PickTypeResult PickType = "RESULT"
)

// PickStatus represents the settlement state of a pick.
type PickStatus string

const (
	PickStatusPending PickStatus = "PENDING"
	PickStatusWon     PickStatus = "WON"
	PickStatusLost    PickStatus = "LOST"
	PickStatusPush    PickStatus = "PUSH"
)

// Pick is a posted prediction or result tied to a sporting event.
type Pick struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	EventID   *uint      `gorm:"index" json:"event_id"`
	Type      PickType   `gorm:"type:varchar(16);not null;default:'PREDICTION'" json:"type"`
	Status    PickStatus `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	Selection string     `gorm:"not null" json:"selection"`
	Odds      float64    `json:"odds"`
	Stake     float64    `json:"stake"`
	Payout    float64    `json:"payout"`
	Caption   string     `gorm:"size:500" json:"caption"`
	SlipKey   string     `json:"slip_key"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	User      User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event     *Event     `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Reactions []Reaction `gorm:"foreignKey:PickID" json:"reactions,omitempty"`
	Comments  []Comment  `gorm:"foreignKey:PickID" json:"comments,omitempty"`
}

// TableName specifies the table name for GORM
func (Pick) TableName() string {
	return "picks"
}

// Reaction is a user's reaction to a pick.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PickID    uint      `gorm:"not null;uniqueIndex:idx_reaction_user_pick" json:"pick_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reaction_user_pick" json:"user_id"`
	Kind      string    `gorm:"size:16;not null;default:'fire'" json:"kind"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM
func (Reaction) TableName() string {
	return "reactions"
}

// Comment is a user's comment on a pick.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PickID    uint      `gorm:"not null;index" json:"pick_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Body      string    `gorm:"size:1000;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}
