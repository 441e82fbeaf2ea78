package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/teamdesk/teamdesk/internal/auth"
	"github.com/teamdesk/teamdesk/internal/middleware"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/services"
	"github.com/teamdesk/teamdesk/internal/types"
	"gorm.io/gorm"
)

// paramID parses a numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, types.Validation("invalid %s parameter", name)
	}
	return id, nil
}

// queryID parses an optional numeric query parameter, nil when absent.
func queryID(c *fiber.Ctx, name string) (*uint64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, types.Validation("invalid %s parameter", name)
	}
	return &id, nil
}

// principal returns the request's authenticated actor.
func principal(c *fiber.Ctx) auth.Principal {
	return middleware.PrincipalFrom(c)
}

// viewableProject loads a project and checks view permission. Existence is
// checked first, so missing projects are 404 for everyone and
// existing-but-forbidden ones are 403.
func viewableProject(db *gorm.DB, c *fiber.Ctx, projectID uint64) (*models.Project, error) {
	project, err := services.GetProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if !services.CanViewProject(principal(c), project) {
		return nil, types.PermissionDenied("no access to project %d", projectID)
	}
	return project, nil
}

// manageableProject loads a project and checks management permission, same
// existence-first policy as viewableProject.
func manageableProject(db *gorm.DB, c *fiber.Ctx, projectID uint64) (*models.Project, error) {
	project, err := services.GetProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if !services.CanManageProject(principal(c), project) {
		return nil, types.PermissionDenied("no management access to project %d", projectID)
	}
	return project, nil
}
