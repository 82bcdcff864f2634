package teachstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/teachstore/pkg/teachstore"
)

func createUser(t *testing.T, svc teachstore.Service, actor teachstore.Actor, username string, role teachstore.Role) *teachstore.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), actor, teachstore.CreateUserRequest{
		Username: username,
		Password: "s3cret-" + username,
		RoleID:   role,
	})
	require.NoError(t, err)
	return user
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	user := createUser(t, svc, adminActor(), "ms.rivera", teachstore.RoleTeacher)
	assert.Equal(t, teachstore.RoleTeacher, user.RoleID)
	assert.NotEqual(t, "s3cret-ms.rivera", user.PasswordHash)

	got, err := svc.Authenticate(ctx, "ms.rivera", "s3cret-ms.rivera")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ms.rivera", "wrong")
	assert.ErrorIs(t, err, teachstore.ErrInvalidCredentials)

	// An unknown username reads the same as a wrong password.
	_, err = svc.Authenticate(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, teachstore.ErrInvalidCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	admin := adminActor()

	_, err := svc.CreateUser(ctx, admin, teachstore.CreateUserRequest{Username: "x"})
	assert.ErrorIs(t, err, teachstore.ErrInvalidInput)

	_, err = svc.CreateUser(ctx, admin, teachstore.CreateUserRequest{
		Username: "x", Password: "y", RoleID: 9,
	})
	assert.ErrorIs(t, err, teachstore.ErrInvalidInput)

	createUser(t, svc, admin, "taken", teachstore.RoleStudent)
	_, err = svc.CreateUser(ctx, admin, teachstore.CreateUserRequest{
		Username: "taken", Password: "z", RoleID: teachstore.RoleStudent,
	})
	assert.ErrorIs(t, err, teachstore.ErrUsernameTaken)
}

func TestCreateUserRolePolicy(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	// Admins create any role.
	createUser(t, svc, adminActor(), "teacher.a", teachstore.RoleTeacher)
	createUser(t, svc, adminActor(), "admin.b", teachstore.RoleAdmin)

	// Teachers only create students.
	createUser(t, svc, teacherActor(), "student.c", teachstore.RoleStudent)
	_, err := svc.CreateUser(ctx, teacherActor(), teachstore.CreateUserRequest{
		Username: "teacher.d", Password: "p", RoleID: teachstore.RoleTeacher,
	})
	assert.ErrorIs(t, err, teachstore.ErrPermissionDenied)

	// Students create nobody.
	_, err = svc.CreateUser(ctx, studentActor(), teachstore.CreateUserRequest{
		Username: "student.e", Password: "p", RoleID: teachstore.RoleStudent,
	})
	assert.ErrorIs(t, err, teachstore.ErrPermissionDenied)
}

func TestDeleteUserRolePolicy(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	admin := adminActor()

	teacher := createUser(t, svc, admin, "t.one", teachstore.RoleTeacher)
	student := createUser(t, svc, admin, "s.one", teachstore.RoleStudent)
	student2 := createUser(t, svc, admin, "s.two", teachstore.RoleStudent)

	teacherAsActor := teachstore.Actor{UserID: teacher.ID, Role: teacher.RoleID}

	// A teacher deletes students but not peers, and never themselves.
	require.NoError(t, svc.DeleteUser(ctx, teacherAsActor, student.ID))
	assert.ErrorIs(t, svc.DeleteUser(ctx, teacherAsActor, teacher.ID), teachstore.ErrPermissionDenied)

	otherTeacher := createUser(t, svc, admin, "t.two", teachstore.RoleTeacher)
	assert.ErrorIs(t, svc.DeleteUser(ctx, teacherAsActor, otherTeacher.ID), teachstore.ErrPermissionDenied)

	// Students delete nobody.
	studentAsActor := teachstore.Actor{UserID: student2.ID, Role: teachstore.RoleStudent}
	assert.ErrorIs(t, svc.DeleteUser(ctx, studentAsActor, otherTeacher.ID), teachstore.ErrPermissionDenied)

	// Admins delete anyone but themselves.
	require.NoError(t, svc.DeleteUser(ctx, admin, otherTeacher.ID))
	assert.ErrorIs(t, svc.DeleteUser(ctx, teachstore.Actor{UserID: teacher.ID, Role: teachstore.RoleAdmin}, teacher.ID), teachstore.ErrPermissionDenied)

	err := svc.DeleteUser(ctx, admin, uuid.New())
	assert.ErrorIs(t, err, teachstore.ErrUserNotFound)
}

func TestListUsersAndRoles(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	createUser(t, svc, adminActor(), "first", teachstore.RoleStudent)
	createUser(t, svc, adminActor(), "second", teachstore.RoleStudent)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, teachstore.RoleAdmin, roles[0].ID)
	assert.Equal(t, "admin", roles[0].DisplayName)
}
