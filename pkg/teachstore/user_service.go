package teachstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Authenticate checks a username/password pair and returns the matching
// user. Both a missing user and a wrong password report the same error, so
// callers cannot probe which usernames exist.
func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CreateUser creates an account. Admins create any role; teachers only
// student accounts.
func (s *service) CreateUser(ctx context.Context, actor Actor, req CreateUserRequest) (*User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, invalidInput("username and password are required")
	}
	if !req.RoleID.Valid() {
		return nil, invalidInput("unknown role %d", req.RoleID)
	}

	switch actor.Role {
	case RoleAdmin:
	case RoleTeacher:
		if req.RoleID != RoleStudent {
			return nil, ErrPermissionDenied
		}
	default:
		return nil, ErrPermissionDenied
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: string(hash),
		RoleID:       req.RoleID,
		Avatar:       req.Avatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account under the same role policy as CreateUser.
// Actors can never delete themselves.
func (s *service) DeleteUser(ctx context.Context, actor Actor, id uuid.UUID) error {
	target, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if actor.UserID == id {
		return ErrPermissionDenied
	}

	switch actor.Role {
	case RoleAdmin:
	case RoleTeacher:
		if target.RoleID != RoleStudent {
			return ErrPermissionDenied
		}
	default:
		return ErrPermissionDenied
	}

	return s.repo.DeleteUser(ctx, id)
}

// ListUsers returns all accounts.
func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.ListUsers(ctx)
}

// ListRoles returns the role table.
func (s *service) ListRoles(ctx context.Context) ([]*RoleInfo, error) {
	return s.repo.ListRoles(ctx)
}
