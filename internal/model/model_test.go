package model

import (
	"testing"
	"time"
)

func TestIsOverdueIgnoresStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	task := Task{Status: StatusDone, DueDate: now.AddDate(0, 0, -1)}
	if !task.IsOverdue(now) {
		t.Fatalf("expected done task with past due date to be overdue")
	}

	task = Task{Status: StatusPending, DueDate: now.AddDate(0, 0, 1)}
	if task.IsOverdue(now) {
		t.Fatalf("expected task due tomorrow to not be overdue")
	}
}

func TestIsOverdueSameDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	task := Task{Status: StatusInProgress, DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	if task.IsOverdue(now) {
		t.Fatalf("task due today is not overdue")
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleManager, RoleStaff} {
		if !role.Valid() {
			t.Fatalf("expected %s to be valid", role)
		}
	}
	if Role("superuser").Valid() {
		t.Fatalf("expected unknown role to be invalid")
	}
}

func TestTaskStatusValid(t *testing.T) {
	if !StatusInProgress.Valid() {
		t.Fatalf("expected in_progress to be valid")
	}
	if TaskStatus("archived").Valid() {
		t.Fatalf("expected unknown status to be invalid")
	}
}
