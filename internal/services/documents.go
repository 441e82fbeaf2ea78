package services

import (
	"errors"

	"github.com/teamdesk/teamdesk/internal/auth"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentInput carries upload metadata; the physical file is already with
// the storage collaborator by the time this runs.
type DocumentInput struct {
	FolderID *uint64
	Title    string
	Content  string
	FilePath string
	FileType string
	FileSize int64
	Category string
	IsPublic bool
	Metadata datatypes.JSON
}

// GetDocument fetches one document or a NotFound error.
func GetDocument(db *gorm.DB, id uint64) (*models.Document, error) {
	var doc models.Document
	if err := db.First(&doc, "document_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("document %d not found", id)
		}
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns the project's documents visible to the principal.
// Principals who can neither manage the project nor are its client see only
// public documents; the filter is applied here, server-side, on every read.
func ListDocuments(db *gorm.DB, p auth.Principal, projectID uint64) ([]models.Document, error) {
	project, err := GetProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if !CanViewProject(p, project) {
		return nil, types.PermissionDenied("no access to project %d", projectID)
	}

	q := db.Where("project_id = ?", projectID).Order("document_id DESC")
	if !CanManageProject(p, project) && project.ClientID != p.UserID {
		q = q.Where("is_public = ?", true)
	}

	var docs []models.Document
	if err := q.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// CreateDocument registers uploaded file metadata. A stated folder must
// belong to the same project.
func CreateDocument(db *gorm.DB, projectID, uploadedBy uint64, in DocumentInput) (*models.Document, error) {
	if in.Title == "" {
		return nil, types.Validation("document title is required")
	}
	if in.FilePath == "" {
		return nil, types.Validation("document file path is required")
	}
	if _, err := GetProject(db, projectID); err != nil {
		return nil, err
	}

	if in.FolderID != nil {
		folder, err := GetFolder(db, *in.FolderID)
		if err != nil {
			return nil, err
		}
		if folder.ProjectID != projectID {
			return nil, types.Validation("folder %d belongs to another project", *in.FolderID)
		}
	}

	doc := models.Document{
		ProjectID:  projectID,
		FolderID:   in.FolderID,
		Title:      in.Title,
		Content:    in.Content,
		FilePath:   in.FilePath,
		FileType:   in.FileType,
		FileSize:   in.FileSize,
		Category:   in.Category,
		IsPublic:   in.IsPublic,
		UploadedBy: uploadedBy,
		Metadata:   in.Metadata,
	}
	if err := db.Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// SetDocumentFolder moves a document between folders. The target folder must
// belong to the document's own project; nil means the project root level.
func SetDocumentFolder(db *gorm.DB, documentID uint64, folderID *uint64) (*models.Document, error) {
	doc, err := GetDocument(db, documentID)
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		folder, err := GetFolder(db, *folderID)
		if err != nil {
			return nil, err
		}
		if folder.ProjectID != doc.ProjectID {
			return nil, types.Validation("folder %d belongs to another project", *folderID)
		}
	}

	if err := db.Model(doc).Update("folder_id", folderID).Error; err != nil {
		return nil, err
	}
	return GetDocument(db, documentID)
}

// DeleteDocument removes the metadata record and returns it so the caller
// can attempt the physical file removal. Failure to unlink the file must not
// resurrect the record; the caller reports it as a warning.
func DeleteDocument(db *gorm.DB, id uint64) (*models.Document, error) {
	doc, err := GetDocument(db, id)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(&models.Document{}, "document_id = ?", id).Error; err != nil {
		return nil, err
	}
	return doc, nil
}
