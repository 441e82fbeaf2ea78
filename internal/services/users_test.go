package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/types"
	"gorm.io/datatypes"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "dup@acme.test", models.RoleClient)

	_, err := CreateUser(db, UserInput{Name: "x", Email: "dup@acme.test", Password: "pw123456"})
	assert.True(t, types.IsKind(err, types.KindConflict))

	// Email comparison is case- and whitespace-insensitive.
	_, err = CreateUser(db, UserInput{Name: "x", Email: "  DUP@acme.test ", Password: "pw123456"})
	assert.True(t, types.IsKind(err, types.KindConflict))
}

func TestAuthenticateUniformFailure(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "login@acme.test", models.RoleClient)

	got, err := Authenticate(db, "login@acme.test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)

	_, badPassword := Authenticate(db, "login@acme.test", "wrong")
	_, unknownUser := Authenticate(db, "nobody@acme.test", "wrong")
	require.Error(t, badPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, badPassword.Error(), unknownUser.Error(),
		"the response must not reveal whether the account exists")

	// Deactivated accounts fail the same way.
	inactive := false
	_, err = UpdateUser(db, user.UserID, UserPatch{Active: &inactive})
	require.NoError(t, err)
	_, err = Authenticate(db, "login@acme.test", "secret123")
	assert.Equal(t, badPassword.Error(), err.Error())
}

func TestUpdateProfileRejectsRoleChange(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "self@acme.test", models.RoleClient)

	admin := models.RoleAdmin
	_, err := UpdateProfile(db, user.UserID, UserPatch{Role: &admin})
	assert.True(t, types.IsKind(err, types.KindPermission))

	// Active is silently dropped on the self-service path.
	inactive := false
	name := "Renamed"
	updated, err := UpdateProfile(db, user.UserID, UserPatch{Name: &name, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.Active)
}

func TestAdminUpdateChangesRole(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "promote@acme.test", models.RoleClient)

	pm := models.RoleProjectManager
	updated, err := UpdateUser(db, user.UserID, UserPatch{Role: &pm})
	require.NoError(t, err)
	assert.Equal(t, models.RoleProjectManager, updated.Role)

	bogus := models.Role("superuser")
	_, err = UpdateUser(db, user.UserID, UserPatch{Role: &bogus})
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestSettingsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "prefs@acme.test", models.RoleClient)

	prefs, err := GetSettings(db, user.UserID)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(prefs), "unset settings read as an empty object")

	require.NoError(t, SaveSettings(db, user.UserID, datatypes.JSON(`{"theme":"dark"}`)))
	prefs, err = GetSettings(db, user.UserID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(prefs))

	// Upsert overwrites.
	require.NoError(t, SaveSettings(db, user.UserID, datatypes.JSON(`{"theme":"light"}`)))
	prefs, err = GetSettings(db, user.UserID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light"}`, string(prefs))
}

func TestSeedAdmin(t *testing.T) {
	db := newTestDB(t)

	// No password configured: skip.
	admin, err := SeedAdmin(db, "root@acme.test", "")
	require.NoError(t, err)
	assert.Nil(t, admin)

	admin, err = SeedAdmin(db, "root@acme.test", "bootstrap-pw")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	// Non-empty table: never seed again.
	again, err := SeedAdmin(db, "root2@acme.test", "bootstrap-pw")
	require.NoError(t, err)
	assert.Nil(t, again)
}
