package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// CreateUserInput is the data of a new console account
type CreateUserInput struct {
	EmpID    string         `json:"emp_id"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     types.UserRole `json:"role"`
	Location string         `json:"location"`
}

// UserUseCase manages console accounts
type UserUseCase struct {
	repo interfaces.Repository
	config
}

// NewUserUseCase creates a new user usecase
func NewUserUseCase(repo interfaces.Repository, opts ...Option) *UserUseCase {
	return &UserUseCase{
		repo:   repo,
		config: newConfig(opts),
	}
}

// CreateUser registers an account. E-mail and employee ID must be unique.
func (u *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	user, err := model.NewUser(input.EmpID, input.Name, input.Email, input.Role, input.Location, u.now())
	if err != nil {
		return nil, err
	}

	if _, err := u.repo.GetUserByEmail(ctx, user.Email); err == nil {
		return nil, goerr.New("email is already registered", goerr.V("email", user.Email), goerr.T(model.TagConflict))
	} else if !model.IsNotFound(err) {
		return nil, goerr.Wrap(err, "failed to check email")
	}
	if _, err := u.repo.GetUserByEmpID(ctx, user.EmpID); err == nil {
		return nil, goerr.New("employee ID is already registered", goerr.V("emp_id", user.EmpID), goerr.T(model.TagConflict))
	} else if !model.IsNotFound(err) {
		return nil, goerr.Wrap(err, "failed to check employee ID")
	}

	if user.PasswordHash, err = HashPassword(input.Password); err != nil {
		return nil, err
	}
	if err := u.repo.PutUser(ctx, user); err != nil {
		return nil, goerr.Wrap(err, "failed to save user", goerr.V("email", user.Email))
	}

	ctxlog.From(ctx).Info("Created user",
		"userID", user.ID,
		"role", user.Role,
	)
	return user, nil
}

// GetUser returns one account
func (u *UserUseCase) GetUser(ctx context.Context, id types.UserID) (*model.User, error) {
	user, err := u.repo.GetUser(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("user_id", id))
	}
	return user, nil
}

// ListUsers returns every account ordered by name
func (u *UserUseCase) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := u.repo.ListUsers(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	return users, nil
}

// ListUsersByRole returns the active accounts holding role
func (u *UserUseCase) ListUsersByRole(ctx context.Context, role types.UserRole) ([]*model.User, error) {
	users, err := u.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*model.User, 0, len(users))
	for _, user := range users {
		if user.Role == role && user.IsActive() {
			result = append(result, user)
		}
	}
	return result, nil
}

// UpdatePassword replaces the password after verifying the current one
func (u *UserUseCase) UpdatePassword(ctx context.Context, id types.UserID, current, next string) error {
	user, err := u.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !verifyPassword(user.PasswordHash, current) {
		return goerr.Wrap(model.ErrInvalidCredentials, "current password does not match", goerr.V("user_id", id))
	}

	if user.PasswordHash, err = HashPassword(next); err != nil {
		return err
	}
	user.UpdatedAt = u.now()
	if err := u.repo.PutUser(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to save user", goerr.V("user_id", id))
	}

	ctxlog.From(ctx).Info("Password updated", "userID", id)
	return nil
}

// SetStatus activates or deactivates an account
func (u *UserUseCase) SetStatus(ctx context.Context, id types.UserID, status types.UserStatus) (*model.User, error) {
	if status != types.UserStatusActive && status != types.UserStatusInactive {
		return nil, goerr.New("invalid user status", goerr.V("status", status), goerr.T(model.TagValidation))
	}

	user, err := u.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == status {
		return user, nil
	}

	user.Status = status
	user.UpdatedAt = u.now()
	if err := u.repo.PutUser(ctx, user); err != nil {
		return nil, goerr.Wrap(err, "failed to save user", goerr.V("user_id", id))
	}

	ctxlog.From(ctx).Info("User status changed",
		"userID", id,
		"status", status,
	)
	return user, nil
}
