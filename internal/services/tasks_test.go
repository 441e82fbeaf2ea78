package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/types"
)

func TestTaskTreeIsTwoLevels(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)

	main, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "main"})
	require.NoError(t, err)

	sub, err := CreateSubtask(db, project.ProjectID, main.TaskID, TaskInput{Name: "sub"})
	require.NoError(t, err)

	_, err = CreateSubtask(db, project.ProjectID, sub.TaskID, TaskInput{Name: "grandchild"})
	assert.True(t, types.IsKind(err, types.KindValidation), "a subtask cannot parent another subtask")
}

func TestCreateSubtaskParentChecks(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)
	other, err := CreateProject(db, ProjectInput{Name: "other", ClientID: 1, ManagerID: 2}, 2)
	require.NoError(t, err)

	main, err := CreateMainTask(db, other.ProjectID, TaskInput{Name: "elsewhere"})
	require.NoError(t, err)

	_, err = CreateSubtask(db, project.ProjectID, 9999, TaskInput{Name: "s"})
	assert.True(t, types.IsKind(err, types.KindNotFound))

	// A parent from another project is reported as missing, not forbidden.
	_, err = CreateSubtask(db, project.ProjectID, main.TaskID, TaskInput{Name: "s"})
	assert.True(t, types.IsKind(err, types.KindNotFound))
}

func TestQuickUpdateProgressDerivesStatus(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)
	task, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "t"})
	require.NoError(t, err)

	updated, err := QuickUpdateProgress(db, task.TaskID, 40)
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, updated.Status)
	assert.Nil(t, updated.CompletedAt)

	updated, err = QuickUpdateProgress(db, task.TaskID, 100)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	firstCompletion := *updated.CompletedAt

	// Re-completing keeps the original timestamp.
	updated, err = QuickUpdateProgress(db, task.TaskID, 100)
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, firstCompletion.Unix(), updated.CompletedAt.Unix())

	updated, err = QuickUpdateProgress(db, task.TaskID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.TaskTodo, updated.Status)
	assert.Nil(t, updated.CompletedAt)

	_, err = QuickUpdateProgress(db, task.TaskID, 101)
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestUpdateTaskExplicitStatusWins(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)
	task, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "t"})
	require.NoError(t, err)

	// Progress 100 with an explicit non-completed status stays non-completed.
	progress := 100
	onHold := models.TaskOnHold
	updated, err := UpdateTask(db, task.TaskID, TaskPatch{Progress: &progress, Status: &onHold})
	require.NoError(t, err)
	assert.Equal(t, models.TaskOnHold, updated.Status)
	assert.Equal(t, 100, updated.Progress)
	assert.Nil(t, updated.CompletedAt)

	completed := models.TaskCompleted
	updated, err = UpdateTask(db, task.TaskID, TaskPatch{Status: &completed})
	require.NoError(t, err)
	assert.NotNil(t, updated.CompletedAt)

	// Leaving completed clears the stamp.
	inProgress := models.TaskInProgress
	updated, err = UpdateTask(db, task.TaskID, TaskPatch{Status: &inProgress})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)
}

func TestDeleteTaskCascadesSubtasks(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)

	main, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "main"})
	require.NoError(t, err)
	sub, err := CreateSubtask(db, project.ProjectID, main.TaskID, TaskInput{Name: "sub"})
	require.NoError(t, err)

	require.NoError(t, DeleteTask(db, main.TaskID))

	_, err = GetTask(db, sub.TaskID)
	assert.True(t, types.IsKind(err, types.KindNotFound), "subtasks go with their parent")

	err = DeleteTask(db, main.TaskID)
	assert.True(t, types.IsKind(err, types.KindNotFound), "double delete is an error, not a no-op")
}

func TestListTasksGroupsSubtasksUnderParent(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)

	first, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "first"})
	require.NoError(t, err)
	second, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "second"})
	require.NoError(t, err)

	// Subtasks created after the second main task still list with their parent.
	subA, err := CreateSubtask(db, project.ProjectID, first.TaskID, TaskInput{Name: "a"})
	require.NoError(t, err)
	subB, err := CreateSubtask(db, project.ProjectID, first.TaskID, TaskInput{Name: "b"})
	require.NoError(t, err)

	tasks, err := ListTasks(db, project.ProjectID)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	ids := []uint64{tasks[0].TaskID, tasks[1].TaskID, tasks[2].TaskID, tasks[3].TaskID}
	assert.Equal(t, []uint64{first.TaskID, subA.TaskID, subB.TaskID, second.TaskID}, ids)
}

func TestCountTasksByStatus(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)

	a, err := CreateMainTask(db, project.ProjectID, TaskInput{Name: "a"})
	require.NoError(t, err)
	_, err = CreateMainTask(db, project.ProjectID, TaskInput{Name: "b"})
	require.NoError(t, err)
	_, err = QuickUpdateProgress(db, a.TaskID, 100)
	require.NoError(t, err)

	counts, err := CountTasksByStatus(db, project.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.TaskCompleted])
	assert.Equal(t, 1, counts[models.TaskTodo])
}
