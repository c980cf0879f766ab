package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expentra/expentra/internal/auth"
	"github.com/expentra/expentra/internal/model"
	"github.com/expentra/expentra/internal/repository"
)

// fakeUserStore is an in-memory UserStore for service tests.
type fakeUserStore struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return repository.ErrEmailExists
	}
	clone := *user
	f.byID[user.ID] = &clone
	f.byEmail[user.Email] = &clone
	return nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]*model.User, error) {
	var out []*model.User
	for _, user := range f.byID {
		clone := *user
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeUserStore) DeleteUser(_ context.Context, id string) error {
	user, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	delete(f.byID, id)
	delete(f.byEmail, user.Email)
	return nil
}

func TestCreateUser(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:     "  Jane.Doe@EXAMPLE.com ",
		FirstName: "Jane",
		LastName:  "Doe",
		Password:  "hunter22",
		Actor:     "bootstrap",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane.Doe@example.com", user.Email, "only the domain part is lowercased")
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.True(t, user.IsActive)
	assert.Equal(t, "bootstrap", user.CreatedBy)

	assert.True(t, strings.HasPrefix(user.PasswordHash, "$argon2id$"))
	ok, err := auth.VerifyPassword("hunter22", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateUser_EmailRequired(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Password: "x"})
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.CreateUser(context.Background(), CreateUserInput{Email: "   ", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	input := CreateUserInput{Email: "jane@example.com", Password: "x"}
	_, err := svc.CreateUser(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), input)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestCreateSuperuser(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	user, err := svc.CreateSuperuser(context.Background(), CreateUserInput{
		Email:    "root@example.com",
		Password: "x",
	})
	require.NoError(t, err)

	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
}

func TestCreateSuperuser_RejectsExplicitFalseFlags(t *testing.T) {
	svc := NewUserService(newFakeUserStore())
	f := false

	_, err := svc.CreateSuperuser(context.Background(), CreateUserInput{
		Email:    "root@example.com",
		Password: "x",
		IsStaff:  &f,
	})
	assert.ErrorIs(t, err, ErrSuperuserStaff)

	_, err = svc.CreateSuperuser(context.Background(), CreateUserInput{
		Email:       "root@example.com",
		Password:    "x",
		IsSuperuser: &f,
	})
	assert.ErrorIs(t, err, ErrSuperuserSuperuser)
}

func TestGetUserByEmail_Normalizes(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "jane@Example.COM",
		Password: "x",
	})
	require.NoError(t, err)

	got, err := svc.GetUserByEmail(context.Background(), "jane@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestDeleteUser_NotFound(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	err := svc.DeleteUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
