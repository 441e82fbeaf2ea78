package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/realtime"
	"github.com/teamdesk/teamdesk/internal/services"
	"github.com/teamdesk/teamdesk/internal/types"
	"github.com/teamdesk/teamdesk/internal/utils"
	"gorm.io/gorm"
)

// TaskHandler handles task routes
type TaskHandler struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

type taskCreateRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	AssignedTo  *types.FlexUint64 `json:"assignedTo"`
	StartDate   *time.Time        `json:"startDate"`
	DueDate     *time.Time        `json:"dueDate"`
}

type taskUpdateRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
	Progress    *int               `json:"progress"`
	AssignedTo  *types.FlexUint64  `json:"assignedTo"`
	StartDate   *time.Time         `json:"startDate"`
	DueDate     *time.Time         `json:"dueDate"`
}

type progressRequest struct {
	Progress *int `json:"progress"`
}

func (req *taskCreateRequest) toInput() services.TaskInput {
	in := services.TaskInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	}
	if req.AssignedTo != nil {
		assignee := req.AssignedTo.Uint64()
		in.AssignedTo = &assignee
	}
	return in
}

// List handles GET /api/projects/:id/tasks
// @Summary List project tasks
// @Description Tasks ordered so each main task is followed by its own subtasks
// @Tags Tasks
// @Produce json
// @Security Bearer
// @Param id path int true "Project ID"
// @Success 200 {array} models.Task
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{id}/tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := viewableProject(h.DB, c, projectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	tasks, err := services.ListTasks(h.DB, projectID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, tasks, fiber.StatusOK)
}

// Create handles POST /api/projects/:id/tasks
// @Summary Create a main task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Project ID"
// @Param data body taskCreateRequest true "task"
// @Success 201 {object} models.Task
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /projects/{id}/tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, projectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	var req taskCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "tasks.create")
	}

	task, err := services.CreateMainTask(h.DB, projectID, req.toInput())
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	h.broadcastProgress(projectID)
	return utils.DataResponse(c, task, fiber.StatusCreated)
}

// CreateSubtask handles POST /api/projects/:id/tasks/:taskId/subtasks
// @Summary Create a subtask
// @Description The parent must be a main task of the same project; the tree is two levels deep
// @Tags Tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Project ID"
// @Param taskId path int true "Parent task ID"
// @Param data body taskCreateRequest true "subtask"
// @Success 201 {object} models.Task
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{id}/tasks/{taskId}/subtasks [post]
func (h *TaskHandler) CreateSubtask(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	parentID, err := paramID(c, "taskId")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, projectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	var req taskCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "tasks.subtask")
	}

	task, err := services.CreateSubtask(h.DB, projectID, parentID, req.toInput())
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	h.broadcastProgress(projectID)
	return utils.DataResponse(c, task, fiber.StatusCreated)
}

// Update handles PUT /api/tasks/:id
// @Summary Update a task (full edit)
// @Description Only supplied fields change; an explicit status wins over progress
// @Tags Tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Task ID"
// @Param data body taskUpdateRequest true "patch"
// @Success 200 {object} models.Task
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	task, err := services.GetTask(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, task.ProjectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	var req taskUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "tasks.update")
	}

	patch := services.TaskPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Progress:    req.Progress,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	}
	if req.AssignedTo != nil {
		assignee := req.AssignedTo.Uint64()
		patch.AssignedTo = &assignee
	}

	updated, err := services.UpdateTask(h.DB, id, patch)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	h.broadcastProgress(task.ProjectID)
	return utils.DataResponse(c, updated, fiber.StatusOK)
}

// UpdateProgress handles PATCH /api/tasks/:id/progress
// @Summary Quick progress update (slider path)
// @Description Status is derived: 0 todo, 100 completed, otherwise in_progress
// @Tags Tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Task ID"
// @Param data body progressRequest true "progress"
// @Success 200 {object} models.Task
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tasks/{id}/progress [patch]
func (h *TaskHandler) UpdateProgress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	task, err := services.GetTask(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, task.ProjectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	var req progressRequest
	if err := c.BodyParser(&req); err != nil || req.Progress == nil {
		return utils.FailResponse(c, "Progress value is required", fiber.StatusBadRequest, "tasks.progress")
	}

	updated, err := services.QuickUpdateProgress(h.DB, id, *req.Progress)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	h.broadcastProgress(task.ProjectID)
	return utils.DataResponse(c, updated, fiber.StatusOK)
}

// Delete handles DELETE /api/tasks/:id
// @Summary Delete a task and its subtasks
// @Tags Tasks
// @Produce json
// @Security Bearer
// @Param id path int true "Task ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	task, err := services.GetTask(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if _, err := manageableProject(h.DB, c, task.ProjectID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	if err := services.DeleteTask(h.DB, id); err != nil {
		return utils.ErrorResponse(c, err)
	}

	h.broadcastProgress(task.ProjectID)
	return utils.MutationResponse(c, nil, "")
}

// broadcastProgress notifies project subscribers after a task mutation.
// Best-effort: the database write already happened and stands either way.
func (h *TaskHandler) broadcastProgress(projectID uint64) {
	project, err := services.GetProject(h.DB, projectID)
	if err != nil {
		return
	}
	h.Hub.Broadcast(projectID, realtime.EventProgressUpdated, fiber.Map{
		"projectId": projectID,
		"progress":  project.Progress,
	})
}
