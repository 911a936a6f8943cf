package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	DueDate     time.Time
	AssignedTo  uuid.UUID
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOverdue compares calendar dates only. Status is deliberately ignored:
// a done task past its due date still reports overdue.
func (t Task) IsOverdue(now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due := time.Date(t.DueDate.Year(), t.DueDate.Month(), t.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}

// TaskDetail is a task joined with the display names and role of the
// principals it references, as returned by list and single-task reads.
type TaskDetail struct {
	Task
	AssigneeName string
	AssigneeRole Role
	CreatorName  string
}

const (
	ActionCreateTask  = "create_task"
	ActionUpdateTask  = "update_task"
	ActionDeleteTask  = "delete_task"
	ActionCreateUser  = "create_user"
	ActionUpdateUser  = "update_user"
	ActionDeleteUser  = "delete_user"
	ActionUserLogin   = "user_login"
	ActionUserLogout  = "user_logout"
	ActionTaskOverdue = "task_overdue"
	ActionExportTasks = "export_tasks"
)

// ActivityLogEntry is append-only. UserID is nil for system-generated
// entries such as overdue sweeps.
type ActivityLogEntry struct {
	ID          uuid.UUID
	UserID      *uuid.UUID
	Action      string
	Description string
	LoggedAt    time.Time
	CreatedAt   time.Time
}
