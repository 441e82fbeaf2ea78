// Package services holds the domain logic. Functions take a *gorm.DB plus
// plain inputs and return values and domain errors; they never write HTTP.
package services

import (
	"github.com/teamdesk/teamdesk/internal/auth"
	"github.com/teamdesk/teamdesk/internal/models"
)

// CanManageProject reports whether the principal may mutate the project:
// admins always, a project_manager only when it is the project's assigned
// manager. Clients never manage.
func CanManageProject(p auth.Principal, project *models.Project) bool {
	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RoleProjectManager:
		return project.ManagerID == p.UserID
	case models.RoleClient:
		return false
	}
	return false
}

// CanViewProject reports whether the principal may read the project. A
// project_manager that is not the assigned manager has no access at all,
// including view.
func CanViewProject(p auth.Principal, project *models.Project) bool {
	if CanManageProject(p, project) {
		return true
	}
	return project.ClientID == p.UserID
}
