// Package memory is a map-backed implementation of the service
// Repository, mirroring the SQL store's semantics including the
// user-delete task cascade and the nulled log references. It backs the
// unit tests and local runs without postgres.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MATTHEWPURBA/management-system/internal/authz"
	"github.com/MATTHEWPURBA/management-system/internal/model"
	"github.com/MATTHEWPURBA/management-system/internal/service"
)

type Store struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
	tasks map[uuid.UUID]model.Task
	logs  []model.ActivityLogEntry
}

func NewStore() *Store {
	return &Store{
		users: make(map[uuid.UUID]model.User),
		tasks: make(map[uuid.UUID]model.Task),
	}
}

func (s *Store) UserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return model.User{}, service.ErrNotFound
	}
	return user, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return model.User{}, service.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]model.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *Store) CreateUser(_ context.Context, user model.User, entry model.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return service.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	s.appendLogLocked(entry)
	return nil
}

func (s *Store) UpdateUser(_ context.Context, user model.User, entry model.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return service.ErrNotFound
	}
	for id, existing := range s.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return service.ErrDuplicateEmail
		}
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = user
	s.appendLogLocked(entry)
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id uuid.UUID, entry model.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return service.ErrNotFound
	}
	delete(s.users, id)
	// Tasks cascade with their user; log entries survive with a nulled actor.
	for taskID, task := range s.tasks {
		if task.AssignedTo == id || task.CreatedBy == id {
			delete(s.tasks, taskID)
		}
	}
	for i := range s.logs {
		if s.logs[i].UserID != nil && *s.logs[i].UserID == id {
			s.logs[i].UserID = nil
		}
	}
	s.appendLogLocked(entry)
	return nil
}

func (s *Store) TaskByID(_ context.Context, id uuid.UUID) (model.TaskDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return model.TaskDetail{}, service.ErrNotFound
	}
	return s.detailLocked(task), nil
}

func (s *Store) ListTasks(_ context.Context, scope authz.TaskScope) ([]model.TaskDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.TaskDetail
	for _, task := range s.tasks {
		detail := s.detailLocked(task)
		switch {
		case scope.All:
		case scope.CreatedBy != nil:
			if task.CreatedBy != *scope.CreatedBy && detail.AssigneeRole != model.RoleStaff {
				continue
			}
		case scope.AssignedTo != nil:
			if task.AssignedTo != *scope.AssignedTo {
				continue
			}
		default:
			continue
		}
		out = append(out, detail)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) OverdueTasks(_ context.Context, today time.Time) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Task
	for _, task := range s.tasks {
		if task.Status != model.StatusDone && task.IsOverdue(today) {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (s *Store) CreateTask(_ context.Context, task model.Task, entry model.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	s.appendLogLocked(entry)
	return nil
}

func (s *Store) UpdateTask(_ context.Context, task model.Task, entry model.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return service.ErrNotFound
	}
	s.tasks[task.ID] = task
	s.appendLogLocked(entry)
	return nil
}

func (s *Store) DeleteTask(_ context.Context, id uuid.UUID, entry model.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return service.ErrNotFound
	}
	delete(s.tasks, id)
	s.appendLogLocked(entry)
	return nil
}

func (s *Store) AppendLog(_ context.Context, entry model.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLogLocked(entry)
	return nil
}

func (s *Store) ListLogs(_ context.Context, filter service.LogFilter, limit, offset int) ([]model.ActivityLogEntry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []model.ActivityLogEntry
	for _, entry := range s.logs {
		if filter.From != nil && entry.LoggedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.LoggedAt.After(*filter.To) {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.UserID != nil && (entry.UserID == nil || *entry.UserID != *filter.UserID) {
			continue
		}
		matched = append(matched, entry)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].LoggedAt.After(matched[j].LoggedAt) })
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// Logs returns a copy of every entry, oldest first. Test helper.
func (s *Store) Logs() []model.ActivityLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ActivityLogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

func (s *Store) appendLogLocked(entry model.ActivityLogEntry) {
	entry.CreatedAt = time.Now().UTC()
	s.logs = append(s.logs, entry)
}

func (s *Store) detailLocked(task model.Task) model.TaskDetail {
	detail := model.TaskDetail{Task: task}
	if assignee, ok := s.users[task.AssignedTo]; ok {
		detail.AssigneeName = assignee.Name
		detail.AssigneeRole = assignee.Role
	}
	if creator, ok := s.users[task.CreatedBy]; ok {
		detail.CreatorName = creator.Name
	}
	return detail
}
