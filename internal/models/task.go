package models

import (
	"time"
)

// Task is a two-level tree node: a main task has ParentTaskID=nil, a subtask
// references a main task. Creating a subtask under a subtask is rejected.
type Task struct {
	TaskID       uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID    uint64     `gorm:"index:idx_tasks_project;not null" json:"projectId"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Description  string     `gorm:"size:2048" json:"description,omitempty"`
	Status       TaskStatus `gorm:"size:32;not null;default:'todo'" json:"status"`
	Progress     int        `gorm:"not null;default:0" json:"progress"`
	ParentTaskID *uint64    `gorm:"index" json:"parentTaskId,omitempty"`
	AssignedTo   *uint64    `gorm:"index" json:"assignedTo,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsMain reports whether the task is a main (top-level) task.
func (t *Task) IsMain() bool {
	return t.ParentTaskID == nil
}

// TableName overrides the table name for Task
func (Task) TableName() string {
	return "tasks"
}
