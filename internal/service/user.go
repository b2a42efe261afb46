package service

import (
	"context"
	"errors"

	"github.com/knowdistrict/knowdistrict/internal/auth"
	"github.com/knowdistrict/knowdistrict/internal/models"
	"github.com/knowdistrict/knowdistrict/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines the persistence operations needed by the
// UserService.
type UserRepository interface {
	// CreateUser inserts a user, or repository.ErrDuplicate when the
	// username is taken.
	CreateUser(ctx context.Context, username, passwordHash, role string) (*models.User, error)
	// GetUserByUsername fetches a user by login name.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUsers fetches all users.
	GetUsers(ctx context.Context) ([]models.User, error)
	// UpdateUserRole assigns a new role.
	UpdateUserRole(ctx context.Context, id int64, role string) (*models.User, error)
}

// UserService implements registration, login verification, and
// role management.
type UserService struct {
	repo UserRepository
	cost int
}

// NewUserService constructs a UserService hashing passwords at the
// default bcrypt cost.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

// Register creates a new user. Self-registration always produces a
// reader; anything else in the role field is rejected so nobody can
// provision an elevated account for themselves. Elevation happens
// afterwards through SetRole.
func (s *UserService) Register(ctx context.Context, username, password, role string) (*models.User, error) {
	if len(username) < 3 {
		return nil, validationError("username must be at least 3 characters")
	}
	if len(password) < 6 {
		return nil, validationError("password must be at least 6 characters")
	}
	if role != "" && role != models.RoleReader {
		return nil, validationError("new accounts start as reader")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, username, string(hash), models.RoleReader)
}

// Authenticate verifies a username/password pair. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// List returns all users. Requires ManageUsers.
func (s *UserService) List(ctx context.Context, role auth.Role) ([]models.User, error) {
	if err := authorize(role, auth.ManageUsers); err != nil {
		return nil, err
	}
	return s.repo.GetUsers(ctx)
}

// SetRole assigns a new role to a user. Requires ManageUsers; unknown
// role strings are rejected before touching storage.
func (s *UserService) SetRole(ctx context.Context, role auth.Role, id int64, newRole string) (*models.User, error) {
	if err := authorize(role, auth.ManageUsers); err != nil {
		return nil, err
	}
	if _, err := auth.ParseRole(newRole); err != nil {
		return nil, validationError("unknown role")
	}
	return s.repo.UpdateUserRole(ctx, id, newRole)
}
