package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/teamdesk/teamdesk/internal/services"
	"github.com/teamdesk/teamdesk/internal/types"
	"github.com/teamdesk/teamdesk/internal/utils"
	"gorm.io/gorm"
)

// FolderHandler handles document-folder routes
type FolderHandler struct {
	DB *gorm.DB
}

type folderCreateRequest struct {
	Name           string            `json:"name"`
	ParentFolderID *types.FlexUint64 `json:"parentFolderId"`
	Description    string            `json:"description"`
	Color          string            `json:"color"`
	Icon           string            `json:"icon"`
}

type folderUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

type folderMoveRequest struct {
	ParentFolderID *types.FlexUint64 `json:"parentFolderId"`
}

// Tree handles GET /api/folders/project/:projectId
// @Summary Project folder tree
// @Description Nested folder hierarchy starting at the top level, siblings in creation order
// @Tags Folders
// @Produce json
// @Security Bearer
// @Param projectId path int true "Project ID"
// @Success 200 {array} services.FolderNode
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /folders/project/{projectId} [get]
func (h *FolderHandler) Tree(c *fiber.Ctx) error {
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := viewableProject(h.DB, c, projectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	tree, err := services.BuildFolderTree(h.DB, projectID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, tree, fiber.StatusOK)
}

// Create handles POST /api/folders/project/:projectId
// @Summary Create a folder
// @Description Duplicate names among siblings are rejected
// @Tags Folders
// @Accept json
// @Produce json
// @Security Bearer
// @Param projectId path int true "Project ID"
// @Param data body folderCreateRequest true "folder"
// @Success 201 {object} models.Folder
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /folders/project/{projectId} [post]
func (h *FolderHandler) Create(c *fiber.Ctx) error {
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, projectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	var req folderCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "folders.create")
	}

	in := services.FolderInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	}
	if req.ParentFolderID != nil {
		parentID := req.ParentFolderID.Uint64()
		in.ParentFolderID = &parentID
	}

	folder, err := services.CreateFolder(h.DB, projectID, principal(c).UserID, in)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, folder, fiber.StatusCreated)
}

// Update handles PUT /api/folders/:id
// @Summary Rename or edit a folder
// @Tags Folders
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Folder ID"
// @Param data body folderUpdateRequest true "patch"
// @Success 200 {object} models.Folder
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /folders/{id} [put]
func (h *FolderHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	folder, err := services.GetFolder(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, folder.ProjectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	var req folderUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "folders.update")
	}

	updated, err := services.UpdateFolder(h.DB, id, services.FolderPatch{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, updated, fiber.StatusOK)
}

// Move handles PUT /api/folders/:id/move
// @Summary Move a folder
// @Description The destination may not be the folder itself or any descendant; a nil parent moves to the top level
// @Tags Folders
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Folder ID"
// @Param data body folderMoveRequest true "destination"
// @Success 200 {object} models.Folder
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /folders/{id}/move [put]
func (h *FolderHandler) Move(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	folder, err := services.GetFolder(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, folder.ProjectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	var req folderMoveRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "folders.move")
	}

	var newParentID *uint64
	if req.ParentFolderID != nil {
		parentID := req.ParentFolderID.Uint64()
		newParentID = &parentID
	}

	if err := services.MoveFolder(h.DB, id, newParentID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	moved, err := services.GetFolder(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, moved, fiber.StatusOK)
}

// Delete handles DELETE /api/folders/:id
// @Summary Delete a folder
// @Description The project root is never deletable; deleting a non-empty folder requires force=true, which re-parents its contents up one level
// @Tags Folders
// @Produce json
// @Security Bearer
// @Param id path int true "Folder ID"
// @Param force query bool false "re-parent contents instead of refusing"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /folders/{id} [delete]
func (h *FolderHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	folder, err := services.GetFolder(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, folder.ProjectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	force := c.QueryBool("force", false)
	if err := services.DeleteFolder(h.DB, id, force); err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.MutationResponse(c, nil, "")
}
