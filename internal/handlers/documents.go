package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/teamdesk/teamdesk/internal/services"
	"github.com/teamdesk/teamdesk/internal/storage"
	"github.com/teamdesk/teamdesk/internal/types"
	"github.com/teamdesk/teamdesk/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentHandler handles document registry routes
type DocumentHandler struct {
	DB    *gorm.DB
	Files *storage.Store
}

type documentFolderRequest struct {
	FolderID *uint64 `json:"folderId"`
}

// List handles GET /api/documents/project/:projectId
// @Summary List project documents
// @Description Clients without management access see only public documents
// @Tags Documents
// @Produce json
// @Security Bearer
// @Param projectId path int true "Project ID"
// @Success 200 {array} models.Document
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /documents/project/{projectId} [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	docs, err := services.ListDocuments(h.DB, principal(c), projectID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, docs, fiber.StatusOK)
}

// Upload handles POST /api/documents/project/:projectId
// @Summary Upload a document
// @Description Multipart form with a file part plus metadata fields; the file is stored under a sanitized unique name
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param projectId path int true "Project ID"
// @Param file formData file true "document file"
// @Param title formData string false "title, defaults to the file name"
// @Param folderId formData int false "target folder"
// @Param category formData string false "category"
// @Param isPublic formData bool false "visible to non-managing clients"
// @Success 201 {object} models.Document
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /documents/project/{projectId} [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, projectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.FailResponse(c, "A file part is required", fiber.StatusBadRequest, "documents.upload")
	}

	var folderID *uint64
	if raw := c.FormValue("folderId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.FailResponse(c, "Invalid folderId", fiber.StatusBadRequest, "documents.upload")
		}
		folderID = &id
	}

	title := c.FormValue("title")
	if title == "" {
		title = storage.SanitizeFilename(fileHeader.Filename)
	}

	isPublic, _ := strconv.ParseBool(c.FormValue("isPublic"))

	src, err := fileHeader.Open()
	if err != nil {
		return utils.FailResponse(c, "Could not read the uploaded file", fiber.StatusBadRequest, "documents.upload")
	}
	defer src.Close()

	path, size, err := h.Files.Save(fileHeader.Filename, src)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	var metadata datatypes.JSON
	if raw := c.FormValue("metadata"); raw != "" {
		metadata = datatypes.JSON([]byte(raw))
	}

	doc, err := services.CreateDocument(h.DB, projectID, principal(c).UserID, services.DocumentInput{
		FolderID: folderID,
		Title:    title,
		Content:  c.FormValue("content"),
		FilePath: path,
		FileType: fileHeader.Header.Get("Content-Type"),
		FileSize: size,
		Category: c.FormValue("category"),
		IsPublic: isPublic,
		Metadata: metadata,
	})
	if err != nil {
		// The registry rejected the metadata; do not leave the file orphaned.
		if rmErr := h.Files.Remove(path); rmErr != nil {
			log.Printf("orphan cleanup failed for %s: %v", path, rmErr)
		}
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, doc, fiber.StatusCreated)
}

// Download handles GET /api/documents/:id/download
// @Summary Download a document's file
// @Description Streams the stored file; visibility follows the listing rule
// @Tags Documents
// @Produce octet-stream
// @Security Bearer
// @Param id path int true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	doc, err := services.GetDocument(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	project, err := viewableProject(h.DB, c, doc.ProjectID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	p := principal(c)
	if !doc.IsPublic && !services.CanManageProject(p, project) && project.ClientID != p.UserID {
		return utils.ErrorResponse(c, types.NotFound("document %d not found", id))
	}

	f, err := h.Files.Open(doc.FilePath)
	if err != nil {
		return utils.ErrorResponse(c, types.Dependency("stored file for document %d is unavailable", id))
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+storage.SanitizeFilename(doc.Title)+`"`)
	if doc.FileType != "" {
		c.Set(fiber.HeaderContentType, doc.FileType)
	}
	return c.SendStream(f)
}

// SetFolder handles PUT /api/documents/:id/folder
// @Summary Move a document into a folder
// @Description A null folderId places the document at the project's top level
// @Tags Documents
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Document ID"
// @Param data body documentFolderRequest true "destination folder"
// @Success 200 {object} models.Document
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /documents/{id}/folder [put]
func (h *DocumentHandler) SetFolder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	doc, err := services.GetDocument(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, doc.ProjectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	var req documentFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "documents.folder")
	}

	moved, err := services.SetDocumentFolder(h.DB, id, req.FolderID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, moved, fiber.StatusOK)
}

// Delete handles DELETE /api/documents/:id
// @Summary Delete a document
// @Description The registry row is removed first; a failed file unlink is reported as a warning, never resurrecting the record
// @Tags Documents
// @Produce json
// @Security Bearer
// @Param id path int true "Document ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	doc, err := services.GetDocument(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, doc.ProjectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	deleted, err := services.DeleteDocument(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	warning := ""
	if err := h.Files.Remove(deleted.FilePath); err != nil {
		log.Printf("file cleanup failed for %s: %v", deleted.FilePath, err)
		warning = "the stored file could not be removed"
	}
	return utils.MutationResponse(c, nil, warning)
}
