package model

import "time"

type Dashboard struct {
	ID     string  `gorm:"primaryKey;size:16" json:"id"`
	Owner  string  `gorm:"uniqueIndex:idx_dashboard_owner_name;not null" json:"-"`
	Name   string  `gorm:"uniqueIndex:idx_dashboard_owner_name;not null" json:"name"`
	Layout JSONDoc `gorm:"not null" json:"layout"`
	Items  JSONDoc `gorm:"not null" json:"items"`
	NextID int     `gorm:"not null;default:1" json:"nextId"`
	Shared bool    `gorm:"not null;default:false" json:"-"`
	Views  int     `gorm:"not null;default:0" json:"views"`
	// Argon2id hash. NULL means the dashboard isn't password protected. Never
	// selected by the public column list.
	Password  *string   `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// DashboardPublicColumns is every column except the password hash
var DashboardPublicColumns = []string{
	"id", "owner", "name", "layout", "items", "next_id", "shared", "views", "created_at", "updated_at",
}
