package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/MATTHEWPURBA/management-system/internal/model"
)

// Activity descriptions name entities by their human-readable names, not
// just ids, so the log reads without cross-referencing.

func describeTaskCreated(actor model.User, task model.Task, assignee model.User) string {
	return fmt.Sprintf("%s created task %q assigned to %s (%s)", actor.Name, task.Title, assignee.Name, assignee.ID)
}

func describeTaskUpdated(actor model.User, task model.Task) string {
	return fmt.Sprintf("%s updated task %q (%s)", actor.Name, task.Title, task.ID)
}

func describeTaskDeleted(actor model.User, task model.Task) string {
	return fmt.Sprintf("%s deleted task %q (%s)", actor.Name, task.Title, task.ID)
}

func describeUserCreated(actor, user model.User) string {
	return fmt.Sprintf("%s created user %s (%s) with role %s", actor.Name, user.Name, user.Email, user.Role)
}

func describeUserUpdated(actor, user model.User) string {
	return fmt.Sprintf("%s updated user %s (%s)", actor.Name, user.Name, user.ID)
}

func describeUserDeleted(actor, user model.User) string {
	return fmt.Sprintf("%s deleted user %s (%s)", actor.Name, user.Name, user.ID)
}

func describeLogin(user model.User) string {
	return fmt.Sprintf("%s logged in", user.Name)
}

func describeLogout(user model.User) string {
	return fmt.Sprintf("%s logged out", user.Name)
}

func describeExport(actor model.User, count int) string {
	return fmt.Sprintf("%s exported %d tasks to CSV", actor.Name, count)
}

func actorRef(id uuid.UUID) *uuid.UUID {
	ref := id
	return &ref
}
