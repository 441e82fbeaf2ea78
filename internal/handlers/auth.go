package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/teamdesk/teamdesk/internal/auth"
	"github.com/teamdesk/teamdesk/internal/mailer"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/services"
	"github.com/teamdesk/teamdesk/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles credential issuance routes
type AuthHandler struct {
	DB     *gorm.DB
	Tokens *auth.TokenManager
	Mail   *mailer.Mailer
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user"`
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Verify credentials and issue an access/refresh token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body loginRequest true "credentials"
// @Success 200 {object} tokenResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "auth.login")
	}

	user, err := services.Authenticate(h.DB, req.Email, req.Password)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	return h.issueTokens(c, user)
}

// Register handles POST /api/auth/register
// @Summary Register
// @Description Self-service registration; accounts start with the client role
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body registerRequest true "account"
// @Success 200 {object} tokenResponse
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "auth.register")
	}

	user, err := services.CreateUser(h.DB, services.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleClient,
		Phone:    req.Phone,
		Company:  req.Company,
	})
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	// Welcome mail is best-effort; the account exists either way.
	if h.Mail.IsConfigured() {
		go func(to, name string) {
			body := fmt.Sprintf("<p>Hi %s,</p><p>Your account is ready. You can log in with this email address.</p>", name)
			if err := h.Mail.Send(to, "Welcome to TeamDesk", body); err != nil {
				log.Printf("welcome mail to %s failed: %v", to, err)
			}
		}(user.Email, user.Name)
	}

	return h.issueTokens(c, user)
}

// Refresh handles POST /api/auth/refresh
// @Summary Refresh tokens
// @Description Exchange a valid refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body refreshRequest true "refresh token"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return utils.FailResponse(c, "Malformed request body", fiber.StatusBadRequest, "auth.refresh")
	}

	p, err := h.Tokens.CheckToken(req.RefreshToken)
	if err != nil {
		return utils.FailResponse(c, "Invalid or expired refresh token", fiber.StatusUnauthorized, "auth.refresh")
	}

	// Re-read the user: the role may have changed since the token was cut,
	// and a deactivated account must not mint fresh tokens.
	user, err := services.GetUser(h.DB, p.UserID)
	if err != nil {
		return utils.FailResponse(c, "Account no longer exists", fiber.StatusUnauthorized, "auth.refresh")
	}
	if !user.Active {
		return utils.FailResponse(c, "Account is deactivated", fiber.StatusUnauthorized, "auth.refresh")
	}

	return h.issueTokens(c, user)
}

func (h *AuthHandler) issueTokens(c *fiber.Ctx, user *models.User) error {
	access, refresh, err := h.Tokens.CreateTokens(auth.Principal{
		UserID: user.UserID,
		Role:   user.Role,
	})
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	return utils.DataResponse(c, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, fiber.StatusOK)
}
