package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MATTHEWPURBA/management-system/internal/authz"
	"github.com/MATTHEWPURBA/management-system/internal/model"
)

type TaskService struct {
	repo   Repository
	logger *zap.Logger
}

func NewTaskService(repo Repository, logger *zap.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      model.TaskStatus
	DueDate     time.Time
	AssignedTo  uuid.UUID
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *model.TaskStatus
	DueDate     *time.Time
	AssignedTo  *uuid.UUID
}

func (s *TaskService) List(ctx context.Context, actor model.User) ([]model.TaskDetail, error) {
	tasks, err := s.repo.ListTasks(ctx, authz.ListScope(actorOf(actor)))
	if err != nil {
		return nil, NewPersistence(err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, actor model.User, id uuid.UUID) (model.TaskDetail, error) {
	detail, err := s.repo.TaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.TaskDetail{}, NewNotFound("task")
		}
		return model.TaskDetail{}, NewPersistence(err)
	}
	if decision := authz.CanViewTask(actorOf(actor), detail.Task, detail.AssigneeRole); !decision.Allowed {
		return model.TaskDetail{}, NewAuthorization(decision.Reason)
	}
	return detail, nil
}

func (s *TaskService) Create(ctx context.Context, actor model.User, in CreateTaskInput) (model.TaskDetail, error) {
	fields := map[string][]string{}
	if in.Title == "" {
		fields["title"] = append(fields["title"], "title is required")
	}
	if in.Status == "" {
		in.Status = model.StatusPending
	} else if !in.Status.Valid() {
		fields["status"] = append(fields["status"], "status must be one of pending, in_progress, done")
	}
	if in.DueDate.IsZero() {
		fields["due_date"] = append(fields["due_date"], "due_date is required")
	} else if (model.Task{DueDate: in.DueDate}).IsOverdue(time.Now()) {
		fields["due_date"] = append(fields["due_date"], "due_date must not be in the past")
	}
	if in.AssignedTo == uuid.Nil {
		fields["assigned_to"] = append(fields["assigned_to"], "assigned_to is required")
	}
	if len(fields) > 0 {
		return model.TaskDetail{}, NewValidation(fields)
	}

	// The assignee must resolve before the assignment rules run.
	assignee, err := s.repo.UserByID(ctx, in.AssignedTo)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.TaskDetail{}, NewIntegrity("assignee not found")
		}
		return model.TaskDetail{}, NewPersistence(err)
	}
	if !assignee.Active {
		return model.TaskDetail{}, NewIntegrity("assignee account is inactive")
	}
	if decision := authz.CanAssign(actorOf(actor), actorOf(assignee)); !decision.Allowed {
		return model.TaskDetail{}, NewAuthorization(decision.Reason)
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.DueDate,
		AssignedTo:  assignee.ID,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	entry := newLogEntry(actorRef(actor.ID), model.ActionCreateTask, describeTaskCreated(actor, task, assignee))
	if err := s.repo.CreateTask(ctx, task, entry); err != nil {
		return model.TaskDetail{}, NewPersistence(err)
	}

	s.logger.Info("task created",
		zap.String("task_id", task.ID.String()),
		zap.String("actor_id", actor.ID.String()),
		zap.String("assigned_to", assignee.ID.String()))

	return model.TaskDetail{
		Task:         task,
		AssigneeName: assignee.Name,
		AssigneeRole: assignee.Role,
		CreatorName:  actor.Name,
	}, nil
}

func (s *TaskService) Update(ctx context.Context, actor model.User, id uuid.UUID, in UpdateTaskInput) (model.TaskDetail, error) {
	detail, err := s.repo.TaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.TaskDetail{}, NewNotFound("task")
		}
		return model.TaskDetail{}, NewPersistence(err)
	}
	if decision := authz.CanUpdateTask(actorOf(actor), detail.Task, detail.AssigneeRole); !decision.Allowed {
		return model.TaskDetail{}, NewAuthorization(decision.Reason)
	}

	fields := map[string][]string{}
	task := detail.Task
	if in.Title != nil {
		if *in.Title == "" {
			fields["title"] = append(fields["title"], "title must not be empty")
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			fields["status"] = append(fields["status"], "status must be one of pending, in_progress, done")
		}
		task.Status = *in.Status
	}
	if in.DueDate != nil {
		if (model.Task{DueDate: *in.DueDate}).IsOverdue(time.Now()) {
			fields["due_date"] = append(fields["due_date"], "due_date must not be in the past")
		}
		task.DueDate = *in.DueDate
	}
	if len(fields) > 0 {
		return model.TaskDetail{}, NewValidation(fields)
	}

	assigneeName := detail.AssigneeName
	assigneeRole := detail.AssigneeRole
	if in.AssignedTo != nil && *in.AssignedTo != task.AssignedTo {
		// Reassignment re-runs the assignment check against the new
		// assignee, on top of the update authorization above.
		assignee, err := s.repo.UserByID(ctx, *in.AssignedTo)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return model.TaskDetail{}, NewIntegrity("assignee not found")
			}
			return model.TaskDetail{}, NewPersistence(err)
		}
		if !assignee.Active {
			return model.TaskDetail{}, NewIntegrity("assignee account is inactive")
		}
		if decision := authz.CanAssign(actorOf(actor), actorOf(assignee)); !decision.Allowed {
			return model.TaskDetail{}, NewAuthorization(decision.Reason)
		}
		task.AssignedTo = assignee.ID
		assigneeName = assignee.Name
		assigneeRole = assignee.Role
	}

	task.UpdatedAt = time.Now().UTC()
	entry := newLogEntry(actorRef(actor.ID), model.ActionUpdateTask, describeTaskUpdated(actor, task))
	if err := s.repo.UpdateTask(ctx, task, entry); err != nil {
		return model.TaskDetail{}, NewPersistence(err)
	}

	return model.TaskDetail{
		Task:         task,
		AssigneeName: assigneeName,
		AssigneeRole: assigneeRole,
		CreatorName:  detail.CreatorName,
	}, nil
}

func (s *TaskService) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	detail, err := s.repo.TaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewNotFound("task")
		}
		return NewPersistence(err)
	}
	if decision := authz.CanDeleteTask(actorOf(actor), detail.Task); !decision.Allowed {
		return NewAuthorization(decision.Reason)
	}

	entry := newLogEntry(actorRef(actor.ID), model.ActionDeleteTask, describeTaskDeleted(actor, detail.Task))
	if err := s.repo.DeleteTask(ctx, id, entry); err != nil {
		return NewPersistence(err)
	}

	s.logger.Info("task deleted",
		zap.String("task_id", id.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}

// Export returns every task for CSV rendering and records the export in
// the activity log.
func (s *TaskService) Export(ctx context.Context, actor model.User) ([]model.TaskDetail, error) {
	if decision := authz.CanExportTasks(actorOf(actor)); !decision.Allowed {
		return nil, NewAuthorization(decision.Reason)
	}
	tasks, err := s.repo.ListTasks(ctx, authz.TaskScope{All: true})
	if err != nil {
		return nil, NewPersistence(err)
	}
	entry := newLogEntry(actorRef(actor.ID), model.ActionExportTasks, describeExport(actor, len(tasks)))
	if err := s.repo.AppendLog(ctx, entry); err != nil {
		return nil, NewPersistence(err)
	}
	return tasks, nil
}

func actorOf(user model.User) authz.Actor {
	return authz.Actor{ID: user.ID, Role: user.Role}
}

func newLogEntry(userID *uuid.UUID, action, description string) model.ActivityLogEntry {
	return model.ActivityLogEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      action,
		Description: description,
		LoggedAt:    time.Now().UTC(),
	}
}
