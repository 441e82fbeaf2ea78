package services

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/types"
	"gorm.io/gorm"
)

// TaskInput carries the fields accepted on task creation.
type TaskInput struct {
	Name        string
	Description string
	AssignedTo  *uint64
	StartDate   *time.Time
	DueDate     *time.Time
}

// TaskPatch carries the full-edit update. Explicitly supplied status wins
// over any progress-derived status; both are settable independently here.
type TaskPatch struct {
	Name        *string
	Description *string
	Status      *models.TaskStatus
	Progress    *int
	AssignedTo  *uint64
	StartDate   *time.Time
	DueDate     *time.Time
}

func (in *TaskInput) validate() error {
	if in.Name == "" {
		return types.Validation("task name is required")
	}
	if in.StartDate != nil && in.DueDate != nil && in.DueDate.Before(*in.StartDate) {
		return types.Validation("due date precedes start date")
	}
	return nil
}

// GetTask fetches one task or a NotFound error.
func GetTask(db *gorm.DB, id uint64) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, "task_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("task %d not found", id)
		}
		return nil, err
	}
	return &task, nil
}

// CreateMainTask inserts a top-level task: status todo, progress 0.
func CreateMainTask(db *gorm.DB, projectID uint64, in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := GetProject(db, projectID); err != nil {
		return nil, err
	}

	task := models.Task{
		ProjectID:   projectID,
		Name:        in.Name,
		Description: in.Description,
		Status:      models.TaskTodo,
		AssignedTo:  in.AssignedTo,
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}

	refreshProjectProgress(db, projectID)
	return &task, nil
}

// CreateSubtask inserts a task under a parent. The parent must exist, belong
// to the stated project, and itself be a main task: the tree is exactly two
// levels deep.
func CreateSubtask(db *gorm.DB, projectID, parentTaskID uint64, in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	parent, err := GetTask(db, parentTaskID)
	if err != nil {
		return nil, err
	}
	if parent.ProjectID != projectID {
		return nil, types.NotFound("task %d not found in project %d", parentTaskID, projectID)
	}
	if !parent.IsMain() {
		return nil, types.Validation("task %d is a subtask and cannot have subtasks of its own", parentTaskID)
	}

	task := models.Task{
		ProjectID:    projectID,
		Name:         in.Name,
		Description:  in.Description,
		Status:       models.TaskTodo,
		ParentTaskID: &parentTaskID,
		AssignedTo:   in.AssignedTo,
		StartDate:    in.StartDate,
		DueDate:      in.DueDate,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}

	refreshProjectProgress(db, projectID)
	return &task, nil
}

// UpdateTask applies a full-edit patch. Only supplied fields change. A
// resulting completed status stamps CompletedAt; leaving completed clears it.
func UpdateTask(db *gorm.DB, id uint64, patch TaskPatch) (*models.Task, error) {
	task, err := GetTask(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, types.Validation("task name cannot be empty")
		}
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Progress != nil {
		if *patch.Progress < 0 || *patch.Progress > 100 {
			return nil, types.Validation("progress must be between 0 and 100")
		}
		updates["progress"] = *patch.Progress
	}
	if patch.AssignedTo != nil {
		updates["assigned_to"] = *patch.AssignedTo
	}
	if patch.StartDate != nil {
		updates["start_date"] = *patch.StartDate
	}
	if patch.DueDate != nil {
		updates["due_date"] = *patch.DueDate
	}

	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, types.Validation("unknown task status %q", *patch.Status)
		}
		updates["status"] = *patch.Status
		if *patch.Status == models.TaskCompleted {
			if task.Status != models.TaskCompleted {
				updates["completed_at"] = time.Now()
			}
		} else {
			updates["completed_at"] = nil
		}
	}

	if len(updates) > 0 {
		if err := db.Model(task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	refreshProjectProgress(db, task.ProjectID)
	return GetTask(db, id)
}

// QuickUpdateProgress is the slider path: the status is derived from the new
// progress value. 0 means todo, 100 means completed, anything between means
// in_progress.
func QuickUpdateProgress(db *gorm.DB, id uint64, progress int) (*models.Task, error) {
	if progress < 0 || progress > 100 {
		return nil, types.Validation("progress must be between 0 and 100")
	}

	task, err := GetTask(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"progress": progress}
	switch {
	case progress == 0:
		updates["status"] = models.TaskTodo
		updates["completed_at"] = nil
	case progress == 100:
		updates["status"] = models.TaskCompleted
		if task.Status != models.TaskCompleted {
			updates["completed_at"] = time.Now()
		}
	default:
		updates["status"] = models.TaskInProgress
		updates["completed_at"] = nil
	}

	if err := db.Model(task).Updates(updates).Error; err != nil {
		return nil, err
	}

	refreshProjectProgress(db, task.ProjectID)
	return GetTask(db, id)
}

// DeleteTask removes a task, deleting its subtasks first so no orphan
// survives. A missing id is a NotFound error, not a silent success.
func DeleteTask(db *gorm.DB, id uint64) error {
	task, err := GetTask(db, id)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_task_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, "task_id = ?", id).Error
	})
	if err != nil {
		return err
	}

	refreshProjectProgress(db, task.ProjectID)
	return nil
}

// ListTasks returns all tasks of a project ordered so each main task is
// immediately followed by its own subtasks. Grouping key is
// parent_task_id ?? id, secondary order creation time.
func ListTasks(db *gorm.DB, projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := db.Where("project_id = ?", projectID).
		Order("task_id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	groupOf := func(t models.Task) uint64 {
		if t.ParentTaskID != nil {
			return *t.ParentTaskID
		}
		return t.TaskID
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		gi, gj := groupOf(tasks[i]), groupOf(tasks[j])
		if gi != gj {
			return gi < gj
		}
		// Main task leads its group; subtasks keep creation order after it.
		return tasks[i].IsMain() && !tasks[j].IsMain()
	})

	return tasks, nil
}

// CountTasksByStatus rolls up the project's tasks per status.
func CountTasksByStatus(db *gorm.DB, projectID uint64) (map[models.TaskStatus]int, error) {
	var tasks []models.Task
	if err := db.Select("status").
		Where("project_id = ?", projectID).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return lo.CountValuesBy(tasks, func(t models.Task) models.TaskStatus {
		return t.Status
	}), nil
}

// refreshProjectProgress recomputes the derived aggregate after a task
// mutation. Failures are logged, never propagated: the task write stands.
func refreshProjectProgress(db *gorm.DB, projectID uint64) {
	if _, err := RecomputeProjectProgress(db, projectID); err != nil {
		log.Printf("progress recompute failed for project %d: %v", projectID, err)
	}
}
