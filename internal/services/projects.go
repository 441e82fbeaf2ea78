package services

import (
	"errors"
	"math"
	"time"

	"github.com/teamdesk/teamdesk/internal/auth"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/types"
	"gorm.io/gorm"
)

// RootFolderName is the name given to the folder created with each project.
const RootFolderName = "Root"

// ProjectInput carries the fields accepted on project creation.
type ProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	Priority    models.Priority
	ClientID    uint64
	ManagerID   uint64
	IsDefault   bool
	StartDate   *time.Time
	EndDate     *time.Time
}

// ProjectPatch carries partial updates; nil fields are left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	Priority    *models.Priority
	ClientID    *uint64
	ManagerID   *uint64
	IsDefault   *bool
	StartDate   *time.Time
	EndDate     *time.Time
}

// ListProjects returns the projects visible to the principal: everything for
// admins, managed projects for managers, owned projects for clients.
func ListProjects(db *gorm.DB, p auth.Principal) ([]models.Project, error) {
	q := db.Order("project_id DESC")
	switch p.Role {
	case models.RoleProjectManager:
		q = q.Where("manager_id = ?", p.UserID)
	case models.RoleClient:
		q = q.Where("client_id = ?", p.UserID)
	}

	var projects []models.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches one project or a NotFound error.
func GetProject(db *gorm.DB, id uint64) (*models.Project, error) {
	var project models.Project
	if err := db.First(&project, "project_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("project %d not found", id)
		}
		return nil, err
	}
	return &project, nil
}

// CreateProject inserts a project together with its root folder. When the
// new project is flagged default, every other default flag is cleared in the
// same transaction.
func CreateProject(db *gorm.DB, in ProjectInput, createdBy uint64) (*models.Project, error) {
	if in.Name == "" {
		return nil, types.Validation("project name is required")
	}
	if in.Status == "" {
		in.Status = models.ProjectActive
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Status.Valid() {
		return nil, types.Validation("unknown project status %q", in.Status)
	}
	if !in.Priority.Valid() {
		return nil, types.Validation("unknown priority %q", in.Priority)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, types.Validation("end date precedes start date")
	}

	project := models.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		ClientID:    in.ClientID,
		ManagerID:   in.ManagerID,
		IsDefault:   in.IsDefault,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if in.IsDefault {
			if err := tx.Model(&models.Project{}).
				Where("is_default = ?", true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		root := models.Folder{
			ProjectID: project.ProjectID,
			Name:      RootFolderName,
			CreatedBy: createdBy,
		}
		return tx.Create(&root).Error
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// UpdateProject applies a partial patch. Setting IsDefault=true clears the
// flag on all other projects atomically (clear-then-set).
func UpdateProject(db *gorm.DB, id uint64, patch ProjectPatch) (*models.Project, error) {
	project, err := GetProject(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, types.Validation("project name cannot be empty")
		}
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, types.Validation("unknown project status %q", *patch.Status)
		}
		updates["status"] = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, types.Validation("unknown priority %q", *patch.Priority)
		}
		updates["priority"] = *patch.Priority
	}
	if patch.ClientID != nil {
		updates["client_id"] = *patch.ClientID
	}
	if patch.ManagerID != nil {
		updates["manager_id"] = *patch.ManagerID
	}
	if patch.StartDate != nil {
		updates["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		updates["end_date"] = *patch.EndDate
	}
	if patch.IsDefault != nil {
		updates["is_default"] = *patch.IsDefault
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if patch.IsDefault != nil && *patch.IsDefault {
			if err := tx.Model(&models.Project{}).
				Where("is_default = ? AND project_id <> ?", true, id).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(project).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return GetProject(db, id)
}

// DeleteProject removes the project and everything under it: tasks, folders,
// documents, messages. Returns the stored file paths of the project's
// documents so the caller can remove the physical files best-effort.
func DeleteProject(db *gorm.DB, id uint64) ([]string, error) {
	if _, err := GetProject(db, id); err != nil {
		return nil, err
	}

	var paths []string
	if err := db.Model(&models.Document{}).
		Where("project_id = ?", id).
		Pluck("file_path", &paths).Error; err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Folder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "project_id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// RecomputeProjectProgress recalculates and persists the derived progress:
// round(mean(progress of main tasks)), 0 when the project has no main tasks.
func RecomputeProjectProgress(db *gorm.DB, projectID uint64) (int, error) {
	var progresses []int
	if err := db.Model(&models.Task{}).
		Where("project_id = ? AND parent_task_id IS NULL", projectID).
		Pluck("progress", &progresses).Error; err != nil {
		return 0, err
	}

	progress := 0
	if len(progresses) > 0 {
		sum := 0
		for _, p := range progresses {
			sum += p
		}
		progress = int(math.Round(float64(sum) / float64(len(progresses))))
	}

	err := db.Model(&models.Project{}).
		Where("project_id = ?", projectID).
		Update("progress", progress).Error
	return progress, err
}
