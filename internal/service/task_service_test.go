package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MATTHEWPURBA/management-system/internal/model"
	"github.com/MATTHEWPURBA/management-system/internal/repository/memory"
	"github.com/MATTHEWPURBA/management-system/internal/service"
)

type fixture struct {
	store   *memory.Store
	tasks   *service.TaskService
	users   *service.UserService
	admin   model.User
	manager model.User
	staff   model.User
	staff2  model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	logger := zap.NewNop()
	f := &fixture{
		store: store,
		tasks: service.NewTaskService(store, logger),
		users: service.NewUserService(store, logger),
	}
	f.admin = f.seedUser(t, "Alice Admin", "alice@example.com", model.RoleAdmin)
	f.manager = f.seedUser(t, "Mark Manager", "mark@example.com", model.RoleManager)
	f.staff = f.seedUser(t, "Sam Staff", "sam@example.com", model.RoleStaff)
	f.staff2 = f.seedUser(t, "Sue Staff", "sue@example.com", model.RoleStaff)
	return f
}

func (f *fixture) seedUser(t *testing.T, name, email string, role model.Role) model.User {
	t.Helper()
	user := model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: "irrelevant",
		Role:         role,
		Active:       true,
	}
	entry := model.ActivityLogEntry{ID: uuid.New(), Action: model.ActionCreateUser, Description: "seed", LoggedAt: time.Now()}
	require.NoError(t, f.store.CreateUser(context.Background(), user, entry))
	return user
}

func (f *fixture) createTask(t *testing.T, actor model.User, assignee model.User, title string) model.TaskDetail {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), actor, service.CreateTaskInput{
		Title:      title,
		DueDate:    time.Now().AddDate(0, 0, 7),
		AssignedTo: assignee.ID,
	})
	require.NoError(t, err)
	return task
}

func kindOf(t *testing.T, err error) service.Kind {
	t.Helper()
	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	return svcErr.Kind
}

func TestListVisibilityPerRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createTask(t, f.admin, f.manager, "Quarterly report")
	f.createTask(t, f.manager, f.staff, "Inventory count")
	f.createTask(t, f.manager, f.staff2, "Shelf restock")

	adminList, err := f.tasks.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, adminList, 3)

	// Manager sees what they created plus staff-assigned tasks; the
	// admin-created task assigned to the manager themselves is invisible.
	managerList, err := f.tasks.List(ctx, f.manager)
	require.NoError(t, err)
	assert.Len(t, managerList, 2)

	staffList, err := f.tasks.List(ctx, f.staff)
	require.NoError(t, err)
	require.Len(t, staffList, 1)
	assert.Equal(t, "Inventory count", staffList[0].Title)

	staff2List, err := f.tasks.List(ctx, f.staff2)
	require.NoError(t, err)
	require.Len(t, staff2List, 1)
	assert.Equal(t, "Shelf restock", staff2List[0].Title)
}

func TestGetMatchesListVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, f.admin, f.manager, "Admin-created task")

	// Assignee or not, a manager cannot see a task they did not create
	// unless the assignee is staff. Same answer the list filter gives.
	_, err := f.tasks.Get(ctx, f.manager, task.ID)
	assert.Equal(t, service.KindAuthorization, kindOf(t, err))

	_, err = f.tasks.Get(ctx, f.staff, task.ID)
	assert.Equal(t, service.KindAuthorization, kindOf(t, err))

	_, err = f.tasks.Get(ctx, f.admin, task.ID)
	require.NoError(t, err)
}

func TestCreateAssignmentRestrictions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tasks.Create(ctx, f.manager, service.CreateTaskInput{
		Title:      "Not allowed",
		DueDate:    time.Now().AddDate(0, 0, 1),
		AssignedTo: f.admin.ID,
	})
	assert.Equal(t, service.KindAuthorization, kindOf(t, err))

	_, err = f.tasks.Create(ctx, f.manager, service.CreateTaskInput{
		Title:      "Allowed",
		DueDate:    time.Now().AddDate(0, 0, 1),
		AssignedTo: f.staff.ID,
	})
	require.NoError(t, err)

	_, err = f.tasks.Create(ctx, f.staff, service.CreateTaskInput{
		Title:      "Not allowed",
		DueDate:    time.Now().AddDate(0, 0, 1),
		AssignedTo: f.staff2.ID,
	})
	assert.Equal(t, service.KindAuthorization, kindOf(t, err))

	_, err = f.tasks.Create(ctx, f.staff, service.CreateTaskInput{
		Title:      "Self-assigned",
		DueDate:    time.Now().AddDate(0, 0, 1),
		AssignedTo: f.staff.ID,
	})
	require.NoError(t, err)
}

func TestCreateAssigneeMustExist(t *testing.T) {
	f := newFixture(t)

	_, err := f.tasks.Create(context.Background(), f.admin, service.CreateTaskInput{
		Title:      "Dangling assignee",
		DueDate:    time.Now().AddDate(0, 0, 1),
		AssignedTo: uuid.New(),
	})
	assert.Equal(t, service.KindIntegrity, kindOf(t, err))
	assert.Contains(t, err.Error(), "assignee not found")
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.tasks.Create(context.Background(), f.admin, service.CreateTaskInput{
		Title:      "",
		Status:     model.TaskStatus("archived"),
		DueDate:    time.Now().AddDate(0, 0, -3),
		AssignedTo: f.staff.ID,
	})
	require.Equal(t, service.KindValidation, kindOf(t, err))

	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, svcErr.Fields, "title")
	assert.Contains(t, svcErr.Fields, "status")
	assert.Contains(t, svcErr.Fields, "due_date")
}

func TestUpdateReassignmentRechecksAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, f.manager, f.staff, "Reassign me")

	// Manager may update their own task, but not hand it to an admin.
	_, err := f.tasks.Update(ctx, f.manager, task.ID, service.UpdateTaskInput{AssignedTo: &f.admin.ID})
	assert.Equal(t, service.KindAuthorization, kindOf(t, err))

	updated, err := f.tasks.Update(ctx, f.manager, task.ID, service.UpdateTaskInput{AssignedTo: &f.staff2.ID})
	require.NoError(t, err)
	assert.Equal(t, f.staff2.ID, updated.AssignedTo)
	assert.Equal(t, f.staff2.Name, updated.AssigneeName)
}

func TestUpdateByAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, f.manager, f.staff, "Status change")

	status := model.StatusDone
	updated, err := f.tasks.Update(ctx, f.staff, task.ID, service.UpdateTaskInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, updated.Status)

	_, err = f.tasks.Update(ctx, f.staff2, task.ID, service.UpdateTaskInput{Status: &status})
	assert.Equal(t, service.KindAuthorization, kindOf(t, err))
}

func TestDeleteIsOwnershipOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assigned := f.createTask(t, f.manager, f.staff, "Assigned but not owned")
	err := f.tasks.Delete(ctx, f.staff, assigned.ID)
	assert.Equal(t, service.KindAuthorization, kindOf(t, err))

	owned := f.createTask(t, f.staff, f.staff, "Owned by staff")
	require.NoError(t, f.tasks.Delete(ctx, f.staff, owned.ID))

	other := f.createTask(t, f.manager, f.staff, "Admin removes this")
	require.NoError(t, f.tasks.Delete(ctx, f.admin, other.ID))
}

func TestAuditTrailPerMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := len(f.store.Logs())
	task := f.createTask(t, f.manager, f.staff, "Audited task")

	logs := f.store.Logs()
	require.Len(t, logs, before+1)
	created := logs[len(logs)-1]
	assert.Equal(t, model.ActionCreateTask, created.Action)
	require.NotNil(t, created.UserID)
	assert.Equal(t, f.manager.ID, *created.UserID)
	assert.Contains(t, created.Description, "Audited task")
	assert.Contains(t, created.Description, f.staff.Name)
	assert.Contains(t, created.Description, f.staff.ID.String())

	before = len(f.store.Logs())
	title := "Renamed task"
	_, err := f.tasks.Update(ctx, f.manager, task.ID, service.UpdateTaskInput{Title: &title})
	require.NoError(t, err)
	logs = f.store.Logs()
	require.Len(t, logs, before+1)
	assert.Equal(t, model.ActionUpdateTask, logs[len(logs)-1].Action)
	assert.Contains(t, logs[len(logs)-1].Description, "Renamed task")

	before = len(f.store.Logs())
	require.NoError(t, f.tasks.Delete(ctx, f.manager, task.ID))
	logs = f.store.Logs()
	require.Len(t, logs, before+1)
	assert.Equal(t, model.ActionDeleteTask, logs[len(logs)-1].Action)
	assert.Contains(t, logs[len(logs)-1].Description, "Renamed task")
}

func TestDeniedOperationsLeaveNoTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := len(f.store.Logs())
	_, err := f.tasks.Create(ctx, f.staff, service.CreateTaskInput{
		Title:      "Denied",
		DueDate:    time.Now().AddDate(0, 0, 1),
		AssignedTo: f.staff2.ID,
	})
	require.Error(t, err)

	assert.Len(t, f.store.Logs(), before, "denied mutation must not log or persist")
	list, err := f.tasks.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExportAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createTask(t, f.manager, f.staff, "Exported")

	_, err := f.tasks.Export(ctx, f.manager)
	assert.Equal(t, service.KindAuthorization, kindOf(t, err))

	before := len(f.store.Logs())
	tasks, err := f.tasks.Export(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	logs := f.store.Logs()
	require.Len(t, logs, before+1)
	assert.Equal(t, model.ActionExportTasks, logs[len(logs)-1].Action)
}
