package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MATTHEWPURBA/management-system/internal/authz"
	"github.com/MATTHEWPURBA/management-system/internal/model"
)

// Storage errors the services translate into the error taxonomy.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// LogFilter narrows an activity-log listing. Zero values mean "no filter".
type LogFilter struct {
	From   *time.Time
	To     *time.Time
	Action string
	UserID *uuid.UUID
}

// Repository is the persistence surface the services depend on. Every
// mutation method that takes an ActivityLogEntry must commit the entity
// change and the entry atomically: if the entry cannot be written the
// whole mutation fails.
type Repository interface {
	UserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	UserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, user model.User, entry model.ActivityLogEntry) error
	UpdateUser(ctx context.Context, user model.User, entry model.ActivityLogEntry) error
	DeleteUser(ctx context.Context, id uuid.UUID, entry model.ActivityLogEntry) error

	TaskByID(ctx context.Context, id uuid.UUID) (model.TaskDetail, error)
	ListTasks(ctx context.Context, scope authz.TaskScope) ([]model.TaskDetail, error)
	OverdueTasks(ctx context.Context, today time.Time) ([]model.Task, error)
	CreateTask(ctx context.Context, task model.Task, entry model.ActivityLogEntry) error
	UpdateTask(ctx context.Context, task model.Task, entry model.ActivityLogEntry) error
	DeleteTask(ctx context.Context, id uuid.UUID, entry model.ActivityLogEntry) error

	AppendLog(ctx context.Context, entry model.ActivityLogEntry) error
	ListLogs(ctx context.Context, filter LogFilter, limit, offset int) ([]model.ActivityLogEntry, int64, error)
}
