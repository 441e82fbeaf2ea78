package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/services"
	"github.com/teamdesk/teamdesk/internal/types"
	"github.com/teamdesk/teamdesk/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserHandler handles user administration, the self-service profile and
// per-user settings.
type UserHandler struct {
	DB *gorm.DB
}

type userCreateRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	Phone    string      `json:"phone"`
	Company  string      `json:"company"`
}

type userUpdateRequest struct {
	Name     *string      `json:"name"`
	Email    *string      `json:"email"`
	Password *string      `json:"password"`
	Role     *models.Role `json:"role"`
	Phone    *string      `json:"phone"`
	Company  *string      `json:"company"`
	Active   *bool        `json:"active"`
}

func (req *userUpdateRequest) toPatch() services.UserPatch {
	return services.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
		Company:  req.Company,
		Active:   req.Active,
	}
}

// List handles GET /api/users
// @Summary List users (admin)
// @Tags Users
// @Produce json
// @Security Bearer
// @Success 200 {array} models.User
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := services.ListUsers(h.DB)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, users, fiber.StatusOK)
}

// Get handles GET /api/users/:id
// @Summary Get one user (admin)
// @Tags Users
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	user, err := services.GetUser(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, user, fiber.StatusOK)
}

// Create handles POST /api/users
// @Summary Create a user (admin)
// @Tags Users
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body userCreateRequest true "account"
// @Success 201 {object} models.User
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req userCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "users.create")
	}

	user, err := services.CreateUser(h.DB, services.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
		Company:  req.Company,
	})
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, user, fiber.StatusCreated)
}

// Update handles PUT /api/users/:id
// @Summary Update a user (admin)
// @Description The admin path may change roles and toggle active
// @Tags Users
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Param data body userUpdateRequest true "patch"
// @Success 200 {object} models.User
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	var req userUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "users.update")
	}

	user, err := services.UpdateUser(h.DB, id, req.toPatch())
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, user, fiber.StatusOK)
}

// Delete handles DELETE /api/users/:id
// @Summary Delete a user (admin)
// @Tags Users
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if id == principal(c).UserID {
		return utils.ErrorResponse(c, types.Conflict("you cannot delete your own account"))
	}
	if err := services.DeleteUser(h.DB, id); err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.MutationResponse(c, nil, "")
}

// Me handles GET /api/me
// @Summary My profile
// @Tags Users
// @Produce json
// @Security Bearer
// @Success 200 {object} models.User
// @Router /me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := services.GetUser(h.DB, principal(c).UserID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, user, fiber.StatusOK)
}

// UpdateMe handles PUT /api/me
// @Summary Update my profile
// @Description Role changes are rejected on the self-service path
// @Tags Users
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body userUpdateRequest true "patch"
// @Success 200 {object} models.User
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /me [put]
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var req userUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "users.me")
	}

	user, err := services.UpdateProfile(h.DB, principal(c).UserID, req.toPatch())
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, user, fiber.StatusOK)
}

// GetSettings handles GET /api/settings
// @Summary My settings
// @Description Opaque preferences blob, an empty object when nothing saved yet
// @Tags Users
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Router /settings [get]
func (h *UserHandler) GetSettings(c *fiber.Ctx) error {
	prefs, err := services.GetSettings(h.DB, principal(c).UserID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.DataResponse(c, prefs, fiber.StatusOK)
}

// SaveSettings handles PUT /api/settings
// @Summary Save my settings
// @Description Stores the request body verbatim as the preferences blob
// @Tags Users
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Router /settings [put]
func (h *UserHandler) SaveSettings(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return utils.FailResponse(c, "A JSON body is required", fiber.StatusBadRequest, "users.settings")
	}
	// Round-trip through the parser so invalid JSON never lands in the blob.
	var check interface{}
	if err := c.BodyParser(&check); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "users.settings")
	}

	prefs := datatypes.JSON(append([]byte(nil), body...))
	if err := services.SaveSettings(h.DB, principal(c).UserID, prefs); err != nil {
		return utils.ErrorResponse(c, err)
	}
	return utils.MutationResponse(c, prefs, "")
}
