package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// User is an account of the administrative console
type User struct {
	ID           types.UserID     `json:"id"`
	EmpID        string           `json:"emp_id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	PasswordHash string           `json:"-"`
	Role         types.UserRole   `json:"role"`
	Status       types.UserStatus `json:"status"`
	Location     string           `json:"location,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewUser creates an active User. The password hash is set by the caller.
func NewUser(empID, name, email string, role types.UserRole, location string, now time.Time) (*User, error) {
	user := &User{
		ID:        types.NewUserID(),
		EmpID:     strings.TrimSpace(empID),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Role:      role,
		Status:    types.UserStatusActive,
		Location:  strings.TrimSpace(location),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks required fields
func (u *User) Validate() error {
	if u.EmpID == "" {
		return validationError("employee ID is required")
	}
	if u.Name == "" {
		return validationError("name is required")
	}
	if !strings.Contains(u.Email, "@") {
		return validationError("invalid email", goerr.V("email", u.Email))
	}
	if !u.Role.IsValid() {
		return validationError("invalid user role", goerr.V("role", u.Role))
	}
	return nil
}

// IsActive reports whether the user may sign in
func (u *User) IsActive() bool {
	return u.Status == types.UserStatusActive
}

// NormalizeEmail lowercases and trims an e-mail address for lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
