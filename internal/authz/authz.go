// Package authz holds the full role matrix as pure decision functions.
// Nothing here touches the store: callers resolve the roles a rule needs
// and pass them in, so every rule is testable in isolation.
package authz

import (
	"github.com/google/uuid"

	"github.com/MATTHEWPURBA/management-system/internal/model"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Actor is the minimal view of a principal the rules need.
type Actor struct {
	ID   uuid.UUID
	Role model.Role
}

// CanViewTask decides single-task visibility. assigneeRole is the role of
// the task's current assignee, resolved by the caller.
func CanViewTask(actor Actor, task model.Task, assigneeRole model.Role) Decision {
	switch actor.Role {
	case model.RoleAdmin:
		return Allow()
	case model.RoleManager:
		if task.CreatedBy == actor.ID || assigneeRole == model.RoleStaff {
			return Allow()
		}
		return Deny("managers can only view tasks they created or tasks assigned to staff")
	case model.RoleStaff:
		if task.AssignedTo == actor.ID {
			return Allow()
		}
		return Deny("staff can only view tasks assigned to them")
	}
	return Deny("unknown role")
}

// CanAssign is the assignment check shared by task creation and
// reassignment on update.
func CanAssign(actor Actor, assignee Actor) Decision {
	switch actor.Role {
	case model.RoleAdmin:
		return Allow()
	case model.RoleManager:
		if assignee.Role == model.RoleStaff {
			return Allow()
		}
		return Deny("managers can only assign tasks to staff members")
	case model.RoleStaff:
		if assignee.ID == actor.ID {
			return Allow()
		}
		return Deny("staff can only assign tasks to themselves")
	}
	return Deny("unknown role")
}

// CanUpdateTask covers every field except reassignment; a change of
// assignee must additionally pass CanAssign against the new assignee.
func CanUpdateTask(actor Actor, task model.Task, assigneeRole model.Role) Decision {
	switch actor.Role {
	case model.RoleAdmin:
		return Allow()
	case model.RoleManager:
		if task.CreatedBy == actor.ID || assigneeRole == model.RoleStaff {
			return Allow()
		}
		return Deny("managers can only update tasks they created or tasks assigned to staff")
	case model.RoleStaff:
		if task.AssignedTo == actor.ID {
			return Allow()
		}
		return Deny("staff can only update tasks assigned to them")
	}
	return Deny("unknown role")
}

// CanDeleteTask is ownership-only: being the assignee grants no delete
// rights, unlike view and update.
func CanDeleteTask(actor Actor, task model.Task) Decision {
	if actor.Role == model.RoleAdmin {
		return Allow()
	}
	if task.CreatedBy == actor.ID {
		return Allow()
	}
	return Deny("only admins or the task creator can delete a task")
}

func CanExportTasks(actor Actor) Decision {
	if actor.Role == model.RoleAdmin {
		return Allow()
	}
	return Deny("only admins can export tasks")
}

func CanViewUsers(actor Actor) Decision {
	if actor.Role == model.RoleAdmin || actor.Role == model.RoleManager {
		return Allow()
	}
	return Deny("staff cannot view user accounts")
}

func CanManageUsers(actor Actor) Decision {
	if actor.Role == model.RoleAdmin {
		return Allow()
	}
	return Deny("only admins can manage user accounts")
}

// CanDeleteUser layers the self-deletion guard on top of the admin check.
func CanDeleteUser(actor Actor, targetID uuid.UUID) Decision {
	if actor.Role != model.RoleAdmin {
		return Deny("only admins can delete user accounts")
	}
	if actor.ID == targetID {
		return Deny("you cannot delete your own account")
	}
	return Allow()
}

func CanViewLogs(actor Actor) Decision {
	if actor.Role == model.RoleAdmin {
		return Allow()
	}
	return Deny("only admins can view the activity log")
}

// TaskScope drives list filtering. It must agree with CanViewTask so the
// list and single-task paths never disagree about visibility.
type TaskScope struct {
	All bool
	// CreatedBy OR assigned-to-staff, the manager scope.
	CreatedBy *uuid.UUID
	// AssignedTo only, the staff scope.
	AssignedTo *uuid.UUID
}

func ListScope(actor Actor) TaskScope {
	switch actor.Role {
	case model.RoleAdmin:
		return TaskScope{All: true}
	case model.RoleManager:
		id := actor.ID
		return TaskScope{CreatedBy: &id}
	default:
		id := actor.ID
		return TaskScope{AssignedTo: &id}
	}
}
