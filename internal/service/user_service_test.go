package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MATTHEWPURBA/management-system/internal/model"
	"github.com/MATTHEWPURBA/management-system/internal/service"
)

func TestUserWritesAreAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := service.CreateUserInput{
		Name:     "New Person",
		Email:    "new@example.com",
		Password: "longenough",
		Role:     model.RoleStaff,
	}

	_, err := f.users.Create(ctx, f.manager, input)
	assert.Equal(t, service.KindAuthorization, kindOf(t, err))

	_, err = f.users.Create(ctx, f.staff, input)
	assert.Equal(t, service.KindAuthorization, kindOf(t, err))

	created, err := f.users.Create(ctx, f.admin, input)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, created.Role)
	assert.True(t, created.Active)
}

func TestUserReadsAllowManagers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.List(ctx, f.staff)
	assert.Equal(t, service.KindAuthorization, kindOf(t, err))

	users, err := f.users.List(ctx, f.manager)
	require.NoError(t, err)
	assert.Len(t, users, 4)

	_, err = f.users.Get(ctx, f.manager, f.staff.ID)
	require.NoError(t, err)
}

func TestCreateUserValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Create(context.Background(), f.admin, service.CreateUserInput{
		Name:     "",
		Email:    "not-an-email",
		Password: "short",
		Role:     model.Role("owner"),
	})
	require.Equal(t, service.KindValidation, kindOf(t, err))

	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, svcErr.Fields, "name")
	assert.Contains(t, svcErr.Fields, "email")
	assert.Contains(t, svcErr.Fields, "password")
	assert.Contains(t, svcErr.Fields, "role")
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Create(context.Background(), f.admin, service.CreateUserInput{
		Name:     "Duplicate",
		Email:    "sam@example.com",
		Password: "longenough",
		Role:     model.RoleStaff,
	})
	assert.Equal(t, service.KindIntegrity, kindOf(t, err))
}

func TestAdminCannotDeleteThemselves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.users.Delete(ctx, f.admin, f.admin.ID)
	require.Equal(t, service.KindAuthorization, kindOf(t, err))
	assert.Contains(t, err.Error(), "own account")

	// Still an admin, still able to delete others.
	require.NoError(t, f.users.Delete(ctx, f.admin, f.staff2.ID))
}

func TestDeleteUserUnknownTarget(t *testing.T) {
	f := newFixture(t)
	err := f.users.Delete(context.Background(), f.admin, uuid.New())
	assert.Equal(t, service.KindNotFound, kindOf(t, err))
}

func TestUpdateUserDeactivates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active := false
	updated, err := f.users.Update(ctx, f.admin, f.staff.ID, service.UpdateUserInput{Active: &active})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	stored, err := f.store.UserByID(ctx, f.staff.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestUserMutationsAreAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := len(f.store.Logs())
	created, err := f.users.Create(ctx, f.admin, service.CreateUserInput{
		Name:     "Nina Newhire",
		Email:    "nina@example.com",
		Password: "longenough",
		Role:     model.RoleManager,
	})
	require.NoError(t, err)

	logs := f.store.Logs()
	require.Len(t, logs, before+1)
	entry := logs[len(logs)-1]
	assert.Equal(t, model.ActionCreateUser, entry.Action)
	assert.Contains(t, entry.Description, "Nina Newhire")
	assert.Contains(t, entry.Description, "manager")

	before = len(f.store.Logs())
	require.NoError(t, f.users.Delete(ctx, f.admin, created.ID))
	logs = f.store.Logs()
	require.Len(t, logs, before+1)
	assert.Equal(t, model.ActionDeleteUser, logs[len(logs)-1].Action)
	assert.Contains(t, logs[len(logs)-1].Description, "Nina Newhire")
}
