package model

import "time"

// ResetTicket authorizes exactly one password change. There's at most one
// live ticket per username.
type ResetTicket struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Username  string    `gorm:"uniqueIndex;not null"`
	Token     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}
