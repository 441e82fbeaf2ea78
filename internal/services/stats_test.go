package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamdesk/teamdesk/internal/models"
)

func TestOverview(t *testing.T) {
	db := newTestDB(t)
	client := seedUser(t, db, "c@acme.test", models.RoleClient)
	manager := seedUser(t, db, "m@acme.test", models.RoleProjectManager)
	project := seedProject(t, db, client.UserID, manager.UserID)

	task, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "t"})
	require.NoError(t, err)
	_, err = QuickUpdateProgress(db, task.TaskID, 100)
	require.NoError(t, err)

	_, err = SendMessage(db, manager.UserID, MessageInput{
		ReceiverIDs: []uint64{client.UserID}, Body: "hello",
	})
	require.NoError(t, err)

	stats, err := Overview(db)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Users)
	assert.EqualValues(t, 1, stats.Projects)
	assert.EqualValues(t, 1, stats.ActiveProjects)
	assert.EqualValues(t, 1, stats.Tasks)
	assert.EqualValues(t, 1, stats.CompletedTasks)
	assert.EqualValues(t, 1, stats.Messages)
	assert.EqualValues(t, 1, stats.UnreadMessages)
	assert.Equal(t, 1, stats.ProjectsByStatus[models.ProjectActive])
}

func TestProjectStatistics(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)

	main, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "main"})
	require.NoError(t, err)
	_, err = CreateSubtask(db, project.ProjectID, main.TaskID, TaskInput{Name: "sub"})
	require.NoError(t, err)
	_, err = QuickUpdateProgress(db, main.TaskID, 100)
	require.NoError(t, err)

	stats, err := ProjectStatistics(db, project.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, project.ProjectID, stats.ProjectID)
	assert.Equal(t, 1, stats.MainTasks)
	assert.Equal(t, 1, stats.Subtasks)
	assert.Equal(t, 100, stats.Progress, "single main task at 100")
	assert.Equal(t, 1, stats.TasksByStatus[models.TaskCompleted])
	assert.Equal(t, 1, stats.TasksByStatus[models.TaskTodo])
	assert.EqualValues(t, 1, stats.Folders, "the root folder counts")
}
