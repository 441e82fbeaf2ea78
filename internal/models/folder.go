package models

import (
	"time"
)

// Folder is a named container in a per-project tree. The folder created with
// the project has ParentFolderID=nil and is the protected root: it can never
// be deleted. Sibling folders (same parent, same project) have distinct
// names, compared case-sensitively.
type Folder struct {
	FolderID       uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID      uint64    `gorm:"index:idx_folders_project;not null" json:"projectId"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	ParentFolderID *uint64   `gorm:"index" json:"parentFolderId,omitempty"`
	Description    string    `gorm:"size:1024" json:"description,omitempty"`
	Color          string    `gorm:"size:32" json:"color,omitempty"`
	Icon           string    `gorm:"size:64" json:"icon,omitempty"`
	CreatedBy      uint64    `gorm:"not null" json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName overrides the table name for Folder
func (Folder) TableName() string {
	return "document_folders"
}
