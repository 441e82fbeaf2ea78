package services

import (
	"errors"
	"strings"

	"github.com/teamdesk/teamdesk/internal/auth"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserInput carries the fields accepted on user creation.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
	Phone    string
	Company  string
}

// UserPatch carries partial user edits. Role changes go through the admin
// path only; the self-service path ignores Role entirely.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *models.Role
	Phone    *string
	Company  *string
	Active   *bool
}

// GetUser fetches one user or a NotFound error.
func GetUser(db *gorm.DB, id uint64) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "user_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("user %d not found", id)
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users, newest first.
func ListUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.Order("user_id DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser inserts a user with a bcrypt-hashed password. Duplicate emails
// are a Conflict.
func CreateUser(db *gorm.DB, in UserInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, types.Validation("name, email and password are required")
	}
	if in.Role == "" {
		in.Role = models.RoleClient
	}
	if !in.Role.Valid() {
		return nil, types.Validation("unknown role %q", in.Role)
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("email = ?", in.Email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.Conflict("email %s is already registered", in.Email)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Phone:        in.Phone,
		Company:      in.Company,
		Active:       true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies an admin-initiated patch, including role changes.
func UpdateUser(db *gorm.DB, id uint64, patch UserPatch) (*models.User, error) {
	user, err := GetUser(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		var count int64
		if err := db.Model(&models.User{}).
			Where("email = ? AND user_id <> ?", email, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, types.Conflict("email %s is already registered", email)
		}
		updates["email"] = email
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, types.Validation("unknown role %q", *patch.Role)
		}
		updates["role"] = *patch.Role
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Company != nil {
		updates["company"] = *patch.Company
	}
	if patch.Active != nil {
		updates["active"] = *patch.Active
	}

	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return GetUser(db, id)
}

// UpdateProfile is the self-service path: same patch shape, but any role
// change is rejected rather than silently ignored.
func UpdateProfile(db *gorm.DB, id uint64, patch UserPatch) (*models.User, error) {
	if patch.Role != nil {
		return nil, types.PermissionDenied("only an admin can change roles")
	}
	patch.Active = nil
	return UpdateUser(db, id, patch)
}

// DeleteUser removes a user account.
func DeleteUser(db *gorm.DB, id uint64) error {
	if _, err := GetUser(db, id); err != nil {
		return err
	}
	return db.Delete(&models.User{}, "user_id = ?", id).Error
}

// SeedAdmin creates the bootstrap admin account when the users table is
// empty. With no password configured the seed is skipped; somebody has to
// be able to log in before anything else works, but not with a guessable
// default.
func SeedAdmin(db *gorm.DB, email, password string) (*models.User, error) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 || password == "" {
		return nil, nil
	}
	return CreateUser(db, UserInput{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
}

// Authenticate verifies credentials and returns the user. Inactive accounts
// and bad passwords both come back as the same PermissionDenied so the
// response does not reveal which half was wrong.
func Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.PermissionDenied("invalid credentials")
		}
		return nil, err
	}
	if !user.Active || !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, types.PermissionDenied("invalid credentials")
	}
	return &user, nil
}

// GetSettings returns the user's preferences blob, an empty object when none
// has been saved yet.
func GetSettings(db *gorm.DB, userID uint64) (datatypes.JSON, error) {
	var setting models.UserSetting
	err := db.First(&setting, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return datatypes.JSON([]byte(`{}`)), nil
		}
		return nil, err
	}
	return setting.Preferences, nil
}

// SaveSettings upserts the user's preferences blob.
func SaveSettings(db *gorm.DB, userID uint64, prefs datatypes.JSON) error {
	var setting models.UserSetting
	err := db.First(&setting, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.UserSetting{
			UserID:      userID,
			Preferences: prefs,
		}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&setting).Update("preferences", prefs).Error
}
