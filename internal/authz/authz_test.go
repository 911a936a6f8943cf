package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MATTHEWPURBA/management-system/internal/model"
)

var (
	adminActor   = Actor{ID: uuid.New(), Role: model.RoleAdmin}
	managerActor = Actor{ID: uuid.New(), Role: model.RoleManager}
	staffActor   = Actor{ID: uuid.New(), Role: model.RoleStaff}
	otherStaff   = Actor{ID: uuid.New(), Role: model.RoleStaff}
)

func TestCanViewTask(t *testing.T) {
	tests := []struct {
		name         string
		actor        Actor
		task         model.Task
		assigneeRole model.Role
		want         bool
	}{
		{"admin sees anything", adminActor, model.Task{CreatedBy: managerActor.ID, AssignedTo: otherStaff.ID}, model.RoleStaff, true},
		{"manager sees own task", managerActor, model.Task{CreatedBy: managerActor.ID, AssignedTo: adminActor.ID}, model.RoleAdmin, true},
		{"manager sees staff-assigned task", managerActor, model.Task{CreatedBy: adminActor.ID, AssignedTo: staffActor.ID}, model.RoleStaff, true},
		{"manager denied admin-assigned foreign task", managerActor, model.Task{CreatedBy: adminActor.ID, AssignedTo: adminActor.ID}, model.RoleAdmin, false},
		{"staff sees own assignment", staffActor, model.Task{CreatedBy: managerActor.ID, AssignedTo: staffActor.ID}, model.RoleStaff, true},
		{"staff denied foreign assignment", staffActor, model.Task{CreatedBy: managerActor.ID, AssignedTo: otherStaff.ID}, model.RoleStaff, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanViewTask(tt.actor, tt.task, tt.assigneeRole)
			assert.Equal(t, tt.want, got.Allowed)
			if !tt.want {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestCanAssign(t *testing.T) {
	tests := []struct {
		name     string
		actor    Actor
		assignee Actor
		want     bool
	}{
		{"admin assigns to admin", adminActor, adminActor, true},
		{"admin assigns to staff", adminActor, staffActor, true},
		{"manager assigns to staff", managerActor, staffActor, true},
		{"manager assigns to admin", managerActor, adminActor, false},
		{"manager assigns to manager", managerActor, Actor{ID: uuid.New(), Role: model.RoleManager}, false},
		{"staff assigns to self", staffActor, staffActor, true},
		{"staff assigns to other staff", staffActor, otherStaff, false},
		{"staff assigns to manager", staffActor, managerActor, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAssign(tt.actor, tt.assignee).Allowed)
		})
	}
}

func TestCanUpdateTask(t *testing.T) {
	task := model.Task{CreatedBy: managerActor.ID, AssignedTo: staffActor.ID}

	assert.True(t, CanUpdateTask(adminActor, model.Task{}, "").Allowed)
	assert.True(t, CanUpdateTask(managerActor, task, model.RoleStaff).Allowed)
	assert.True(t, CanUpdateTask(staffActor, task, model.RoleStaff).Allowed)
	assert.False(t, CanUpdateTask(otherStaff, task, model.RoleStaff).Allowed)

	// Manager neither created the task nor is its assignee staff.
	foreign := model.Task{CreatedBy: adminActor.ID, AssignedTo: adminActor.ID}
	assert.False(t, CanUpdateTask(managerActor, foreign, model.RoleAdmin).Allowed)
}

func TestCanDeleteTaskIsOwnershipOnly(t *testing.T) {
	task := model.Task{CreatedBy: managerActor.ID, AssignedTo: staffActor.ID}

	assert.True(t, CanDeleteTask(adminActor, task).Allowed)
	assert.True(t, CanDeleteTask(managerActor, task).Allowed)
	// Assignee without ownership cannot delete, even though they can view and update.
	assert.False(t, CanDeleteTask(staffActor, task).Allowed)

	own := model.Task{CreatedBy: staffActor.ID, AssignedTo: staffActor.ID}
	assert.True(t, CanDeleteTask(staffActor, own).Allowed)
}

func TestUserRules(t *testing.T) {
	assert.True(t, CanViewUsers(adminActor).Allowed)
	assert.True(t, CanViewUsers(managerActor).Allowed)
	assert.False(t, CanViewUsers(staffActor).Allowed)

	assert.True(t, CanManageUsers(adminActor).Allowed)
	assert.False(t, CanManageUsers(managerActor).Allowed)
	assert.False(t, CanManageUsers(staffActor).Allowed)

	assert.True(t, CanExportTasks(adminActor).Allowed)
	assert.False(t, CanExportTasks(managerActor).Allowed)

	assert.True(t, CanViewLogs(adminActor).Allowed)
	assert.False(t, CanViewLogs(managerActor).Allowed)
}

func TestCanDeleteUserSelfGuard(t *testing.T) {
	assert.True(t, CanDeleteUser(adminActor, staffActor.ID).Allowed)
	assert.False(t, CanDeleteUser(managerActor, staffActor.ID).Allowed)

	decision := CanDeleteUser(adminActor, adminActor.ID)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "own account")
}

func TestListScope(t *testing.T) {
	assert.True(t, ListScope(adminActor).All)

	scope := ListScope(managerActor)
	assert.False(t, scope.All)
	assert.Equal(t, managerActor.ID, *scope.CreatedBy)
	assert.Nil(t, scope.AssignedTo)

	scope = ListScope(staffActor)
	assert.Nil(t, scope.CreatedBy)
	assert.Equal(t, staffActor.ID, *scope.AssignedTo)
}
