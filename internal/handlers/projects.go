package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/realtime"
	"github.com/teamdesk/teamdesk/internal/services"
	"github.com/teamdesk/teamdesk/internal/storage"
	"github.com/teamdesk/teamdesk/internal/types"
	"github.com/teamdesk/teamdesk/internal/utils"
	"gorm.io/gorm"
)

// ProjectHandler handles project routes
type ProjectHandler struct {
	DB    *gorm.DB
	Files *storage.Store
	Hub   *realtime.Hub
}

type projectCreateRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Status      models.ProjectStatus  `json:"status"`
	Priority    models.Priority       `json:"priority"`
	ClientID    types.FlexUint64      `json:"clientId"`
	ManagerID   types.FlexUint64      `json:"managerId"`
	IsDefault   bool                  `json:"isDefault"`
	StartDate   *time.Time            `json:"startDate"`
	EndDate     *time.Time            `json:"endDate"`
}

type projectUpdateRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Status      *models.ProjectStatus `json:"status"`
	Priority    *models.Priority      `json:"priority"`
	ClientID    *types.FlexUint64     `json:"clientId"`
	ManagerID   *types.FlexUint64     `json:"managerId"`
	IsDefault   *bool                 `json:"isDefault"`
	StartDate   *time.Time            `json:"startDate"`
	EndDate     *time.Time            `json:"endDate"`
}

// List handles GET /api/projects
// @Summary List visible projects
// @Description Admins see all projects, managers their managed ones, clients their own
// @Tags Projects
// @Produce json
// @Security Bearer
// @Success 200 {array} models.Project
// @Router /projects [get]
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	projects, err := services.ListProjects(h.DB, principal(c))
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, projects, fiber.StatusOK)
}

// Get handles GET /api/projects/:id
// @Summary Get one project
// @Tags Projects
// @Produce json
// @Security Bearer
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	project, err := viewableProject(h.DB, c, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, project, fiber.StatusOK)
}

// Create handles POST /api/projects
// @Summary Create a project
// @Description Creates the project together with its root document folder
// @Tags Projects
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body projectCreateRequest true "project"
// @Success 201 {object} models.Project
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /projects [post]
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var req projectCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "projects.create")
	}

	p := principal(c)
	managerID := req.ManagerID.Uint64()
	// A manager creating a project manages it; admins may assign anyone.
	if p.Role == models.RoleProjectManager {
		managerID = p.UserID
	}

	project, err := services.CreateProject(h.DB, services.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		ClientID:    req.ClientID.Uint64(),
		ManagerID:   managerID,
		IsDefault:   req.IsDefault,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}, p.UserID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, project, fiber.StatusCreated)
}

// Update handles PUT /api/projects/:id
// @Summary Update a project
// @Description Partial update; only supplied fields are overwritten
// @Tags Projects
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Project ID"
// @Param data body projectUpdateRequest true "patch"
// @Success 200 {object} models.Project
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, id); err != nil {
		return utils.ErrorResponse(c, err)
	}

	var req projectUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "projects.update")
	}

	patch := services.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		IsDefault:   req.IsDefault,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.ClientID != nil {
		clientID := req.ClientID.Uint64()
		patch.ClientID = &clientID
	}
	if req.ManagerID != nil {
		managerID := req.ManagerID.Uint64()
		patch.ManagerID = &managerID
	}

	project, err := services.UpdateProject(h.DB, id, patch)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, project, fiber.StatusOK)
}

// Delete handles DELETE /api/projects/:id
// @Summary Delete a project
// @Description Cascades tasks, folders, documents and messages; stored files are removed best-effort
// @Tags Projects
// @Produce json
// @Security Bearer
// @Param id path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, id); err != nil {
		return utils.ErrorResponse(c, err)
	}

	paths, err := services.DeleteProject(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	warning := ""
	for _, path := range paths {
		if err := h.Files.Remove(path); err != nil {
			log.Printf("file cleanup failed for %s: %v", path, err)
			warning = "some stored files could not be removed"
		}
	}

	return utils.MutationResponse(c, nil, warning)
}

// Stats handles GET /api/stats/projects/:id
// @Summary Per-project statistics
// @Tags Stats
// @Produce json
// @Security Bearer
// @Param id path int true "Project ID"
// @Success 200 {object} services.ProjectStats
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /stats/projects/{id} [get]
func (h *ProjectHandler) Stats(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := viewableProject(h.DB, c, id); err != nil {
		return utils.ErrorResponse(c, err)
	}

	stats, err := services.ProjectStatistics(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, stats, fiber.StatusOK)
}
