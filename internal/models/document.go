package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document is uploaded file metadata tied to a project and optionally to a
// folder within that project. FolderID=nil means the project root level.
// The physical file lives with the storage collaborator; FilePath is its key.
type Document struct {
	DocumentID uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID  uint64         `gorm:"index:idx_documents_project;not null" json:"projectId"`
	FolderID   *uint64        `gorm:"index" json:"folderId,omitempty"`
	Title      string         `gorm:"size:255;not null" json:"title"`
	Content    string         `gorm:"size:2048" json:"content,omitempty"`
	FilePath   string         `gorm:"size:512;not null" json:"filePath"`
	FileType   string         `gorm:"size:128" json:"fileType,omitempty"`
	FileSize   int64          `gorm:"not null;default:0" json:"fileSize"`
	Category   string         `gorm:"size:64" json:"category,omitempty"`
	IsPublic   bool           `gorm:"not null;default:false" json:"isPublic"`
	UploadedBy uint64         `gorm:"not null" json:"uploadedBy"`
	Metadata   datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// TableName overrides the table name for Document
func (Document) TableName() string {
	return "documents"
}
