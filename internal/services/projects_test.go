package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/types"
)

func TestCreateProjectCreatesRootFolder(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)

	var folders []models.Folder
	require.NoError(t, db.Where("project_id = ?", project.ProjectID).Find(&folders).Error)
	require.Len(t, folders, 1)
	assert.Equal(t, RootFolderName, folders[0].Name)
	assert.Nil(t, folders[0].ParentFolderID)
}

func TestCreateProjectValidation(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateProject(db, ProjectInput{}, 1)
	assert.True(t, types.IsKind(err, types.KindValidation))

	_, err = CreateProject(db, ProjectInput{Name: "x", Status: "bogus"}, 1)
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestDefaultProjectIsUnique(t *testing.T) {
	db := newTestDB(t)

	first, err := CreateProject(db, ProjectInput{Name: "first", ClientID: 1, ManagerID: 2, IsDefault: true}, 2)
	require.NoError(t, err)

	second, err := CreateProject(db, ProjectInput{Name: "second", ClientID: 1, ManagerID: 2, IsDefault: true}, 2)
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	reloaded, err := GetProject(db, first.ProjectID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault, "creating a new default must clear the old one")

	// Same invariant through the update path.
	yes := true
	_, err = UpdateProject(db, first.ProjectID, ProjectPatch{IsDefault: &yes})
	require.NoError(t, err)

	var defaults int64
	require.NoError(t, db.Model(&models.Project{}).Where("is_default = ?", true).Count(&defaults).Error)
	assert.EqualValues(t, 1, defaults)
}

func TestListProjectsScopedByRole(t *testing.T) {
	db := newTestDB(t)
	client := seedUser(t, db, "client@acme.test", models.RoleClient)
	manager := seedUser(t, db, "pm@acme.test", models.RoleProjectManager)
	other := seedUser(t, db, "other@acme.test", models.RoleClient)

	mine := seedProject(t, db, client.UserID, manager.UserID)
	theirs, err := CreateProject(db, ProjectInput{Name: "other project", ClientID: other.UserID, ManagerID: 99}, 99)
	require.NoError(t, err)

	all, err := ListProjects(db, asAdmin(1))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	managed, err := ListProjects(db, asManager(manager.UserID))
	require.NoError(t, err)
	require.Len(t, managed, 1)
	assert.Equal(t, mine.ProjectID, managed[0].ProjectID)

	owned, err := ListProjects(db, asClient(other.UserID))
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, theirs.ProjectID, owned[0].ProjectID)
}

func TestRecomputeProjectProgress(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)

	// No main tasks yet.
	progress, err := RecomputeProjectProgress(db, project.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress)

	a, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "a"})
	require.NoError(t, err)
	b, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "b"})
	require.NoError(t, err)

	_, err = QuickUpdateProgress(db, a.TaskID, 50)
	require.NoError(t, err)
	_, err = QuickUpdateProgress(db, b.TaskID, 25)
	require.NoError(t, err)

	reloaded, err := GetProject(db, project.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, 38, reloaded.Progress, "mean of 50 and 25 rounds to 38")

	// Subtask progress never enters the aggregate.
	sub, err := CreateSubtask(db, project.ProjectID, a.TaskID, TaskInput{Name: "sub"})
	require.NoError(t, err)
	_, err = QuickUpdateProgress(db, sub.TaskID, 100)
	require.NoError(t, err)

	reloaded, err = GetProject(db, project.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, 38, reloaded.Progress)
}

func TestDeleteProjectCascades(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)

	task, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "t"})
	require.NoError(t, err)
	_, err = CreateSubtask(db, project.ProjectID, task.TaskID, TaskInput{Name: "s"})
	require.NoError(t, err)

	doc, err := CreateDocument(db, project.ProjectID, 2, DocumentInput{
		Title:    "plan",
		FilePath: "abc-plan.pdf",
	})
	require.NoError(t, err)

	_, err = SendMessage(db, 2, MessageInput{
		ProjectID:   &project.ProjectID,
		ReceiverIDs: []uint64{1},
		Body:        "hello",
	})
	require.NoError(t, err)

	paths, err := DeleteProject(db, project.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, []string{doc.FilePath}, paths)

	for table, model := range map[string]interface{}{
		"tasks":     &models.Task{},
		"folders":   &models.Folder{},
		"documents": &models.Document{},
		"messages":  &models.Message{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Where("project_id = ?", project.ProjectID).Count(&count).Error)
		assert.Zero(t, count, "leftover rows in %s", table)
	}

	_, err = GetProject(db, project.ProjectID)
	assert.True(t, types.IsKind(err, types.KindNotFound))
}

func TestDeleteProjectMissing(t *testing.T) {
	db := newTestDB(t)
	_, err := DeleteProject(db, 12345)
	assert.True(t, types.IsKind(err, types.KindNotFound))
}
