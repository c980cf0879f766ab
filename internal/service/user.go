package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/expentra/expentra/internal/auth"
	"github.com/expentra/expentra/internal/model"
	"github.com/expentra/expentra/internal/repository"
)

// User service errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrEmailRequired      = errors.New("email address is required")
	ErrSuperuserStaff     = errors.New("Superuser must have is_staff=True.")
	ErrSuperuserSuperuser = errors.New("Superuser must have is_superuser=True.")
)

// UserStore is the persistence surface the user service needs.
// *repository.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserService handles account creation and lookup.
type UserService struct {
	store UserStore
	now   func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore) *UserService {
	return &UserService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateUserInput defines input for creating an account.
// IsStaff and IsSuperuser are tri-state so the superuser factory can
// tell "omitted" apart from "explicitly false".
type CreateUserInput struct {
	Email       string
	Username    string
	FirstName   string
	LastName    string
	Password    string
	IsStaff     *bool
	IsSuperuser *bool
	Actor       string
}

// CreateUser normalizes the email, hashes the password and persists
// the account. Staff flags default to false.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	email := model.NormalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		IsStaff:      input.IsStaff != nil && *input.IsStaff,
		IsSuperuser:  input.IsSuperuser != nil && *input.IsSuperuser,
		IsActive:     true,
	}
	user.Audit = user.Audit.StampCreate(input.Actor, s.now())

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// CreateSuperuser creates an account with staff and superuser flags
// forced on. Explicitly passing either flag as false is an error.
func (s *UserService) CreateSuperuser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if input.IsStaff != nil && !*input.IsStaff {
		return nil, ErrSuperuserStaff
	}
	if input.IsSuperuser != nil && !*input.IsSuperuser {
		return nil, ErrSuperuserSuperuser
	}

	t := true
	input.IsStaff = &t
	input.IsSuperuser = &t

	return s.CreateUser(ctx, input)
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by normalized email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves every account, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// DeleteUser removes an account. The expense FK cascades, so the
// user's expense records go with it.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
