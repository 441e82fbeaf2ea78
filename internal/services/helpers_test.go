package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/teamdesk/teamdesk/internal/auth"
	"github.com/teamdesk/teamdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserSetting{},
		&models.Project{},
		&models.Task{},
		&models.Folder{},
		&models.Document{},
		&models.Message{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user, err := CreateUser(db, UserInput{
		Name:     "Test " + email,
		Email:    email,
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func seedProject(t *testing.T, db *gorm.DB, clientID, managerID uint64) *models.Project {
	t.Helper()
	project, err := CreateProject(db, ProjectInput{
		Name:      "Website relaunch",
		ClientID:  clientID,
		ManagerID: managerID,
	}, managerID)
	require.NoError(t, err)
	return project
}

func asAdmin(userID uint64) auth.Principal {
	return auth.Principal{UserID: userID, Role: models.RoleAdmin}
}

func asManager(userID uint64) auth.Principal {
	return auth.Principal{UserID: userID, Role: models.RoleProjectManager}
}

func asClient(userID uint64) auth.Principal {
	return auth.Principal{UserID: userID, Role: models.RoleClient}
}
