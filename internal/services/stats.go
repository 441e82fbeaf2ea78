package services

import (
	"github.com/samber/lo"
	"github.com/teamdesk/teamdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// OverviewStats is the admin dashboard rollup.
type OverviewStats struct {
	Users             int64 `json:"users"`
	Projects          int64 `json:"projects"`
	ActiveProjects    int64 `json:"activeProjects"`
	Tasks             int64 `json:"tasks"`
	CompletedTasks    int64 `json:"completedTasks"`
	Documents         int64 `json:"documents"`
	Messages          int64 `json:"messages"`
	UnreadMessages    int64 `json:"unreadMessages"`
	ProjectsByStatus  map[models.ProjectStatus]int `json:"projectsByStatus"`
}

// ProjectStats is the per-project rollup.
type ProjectStats struct {
	ProjectID     uint64                    `json:"projectId"`
	Progress      int                       `json:"progress"`
	MainTasks     int                       `json:"mainTasks"`
	Subtasks      int                       `json:"subtasks"`
	TasksByStatus map[models.TaskStatus]int `json:"tasksByStatus"`
	Documents     int64                     `json:"documents"`
	Folders       int64                     `json:"folders"`
	Messages      int64                     `json:"messages"`
}

// Overview computes the platform-wide counters.
func Overview(db *gorm.DB) (*OverviewStats, error) {
	stats := &OverviewStats{}

	counts := []struct {
		model interface{}
		where []interface{}
		dest  *int64
	}{
		{&models.User{}, nil, &stats.Users},
		{&models.Project{}, nil, &stats.Projects},
		{&models.Project{}, []interface{}{"status = ?", models.ProjectActive}, &stats.ActiveProjects},
		{&models.Task{}, nil, &stats.Tasks},
		{&models.Task{}, []interface{}{"status = ?", models.TaskCompleted}, &stats.CompletedTasks},
		{&models.Document{}, nil, &stats.Documents},
		{&models.Message{}, nil, &stats.Messages},
		{&models.Message{}, []interface{}{"is_read = ?", false}, &stats.UnreadMessages},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if len(c.where) > 0 {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var projects []models.Project
	if err := db.Select("status").Find(&projects).Error; err != nil {
		return nil, err
	}
	stats.ProjectsByStatus = lo.CountValuesBy(projects, func(p models.Project) models.ProjectStatus {
		return p.Status
	})

	return stats, nil
}

// ProjectStatistics computes the per-project rollup.
func ProjectStatistics(db *gorm.DB, projectID uint64) (*ProjectStats, error) {
	project, err := GetProject(db, projectID)
	if err != nil {
		return nil, err
	}

	taskQuery := db.Model(&models.Task{})
	// USE INDEX is MySQL syntax; the other dialects plan this fine unaided.
	if db.Dialector.Name() == "mysql" {
		taskQuery = taskQuery.Clauses(hints.UseIndex("idx_tasks_project"))
	}

	var tasks []models.Task
	if err := taskQuery.
		Select("status", "parent_task_id").
		Where("project_id = ?", projectID).
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	stats := &ProjectStats{
		ProjectID: projectID,
		Progress:  project.Progress,
		MainTasks: lo.CountBy(tasks, func(t models.Task) bool { return t.IsMain() }),
		Subtasks:  lo.CountBy(tasks, func(t models.Task) bool { return !t.IsMain() }),
		TasksByStatus: lo.CountValuesBy(tasks, func(t models.Task) models.TaskStatus {
			return t.Status
		}),
	}

	if err := db.Model(&models.Document{}).
		Where("project_id = ?", projectID).
		Count(&stats.Documents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Folder{}).
		Where("project_id = ?", projectID).
		Count(&stats.Folders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Message{}).
		Where("project_id = ?", projectID).
		Count(&stats.Messages).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
