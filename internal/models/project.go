package models

import (
	"time"
)

// Project is the tenant unit. ClientID and ManagerID are weak references to
// users, consulted only for permission checks and display joins.
//
// Invariant: at most one project has IsDefault=true. The write path clears
// the flag on every other row inside the same transaction that sets it.
type Project struct {
	ProjectID   uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"size:255;not null" json:"name"`
	Description string        `gorm:"size:2048" json:"description,omitempty"`
	Status      ProjectStatus `gorm:"size:32;not null;default:'active'" json:"status"`
	Priority    Priority      `gorm:"size:32;not null;default:'medium'" json:"priority"`
	ClientID    uint64        `gorm:"index;not null" json:"clientId"`
	ManagerID   uint64        `gorm:"index;not null" json:"managerId"`
	// Progress is derived: round(mean(progress of main tasks)), 0 with no
	// main tasks. Persisted after every task mutation.
	Progress  int        `gorm:"not null;default:0" json:"progress"`
	IsDefault bool       `gorm:"not null;default:false" json:"isDefault"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}
