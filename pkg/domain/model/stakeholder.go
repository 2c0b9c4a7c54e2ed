package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// Stakeholder is a trainer or mentor who delivers effort to cohorts
type Stakeholder struct {
	ID        types.StakeholderID   `json:"id"`
	EmpID     string                `json:"emp_id"`
	Name      string                `json:"name"`
	Email     string                `json:"email"`
	Phone     string                `json:"phone,omitempty"`
	Role      types.StakeholderRole `json:"role"`
	Skill     string                `json:"skill,omitempty"`
	Internal  bool                  `json:"internal"` // employee rather than external vendor
	Status    types.UserStatus      `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Validate checks required fields
func (s *Stakeholder) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return validationError("stakeholder name is required")
	}
	if strings.TrimSpace(s.EmpID) == "" {
		return validationError("stakeholder employee ID is required")
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return validationError("invalid email", goerr.V("email", s.Email))
	}
	if !s.Role.IsValid() {
		return validationError("invalid stakeholder role", goerr.V("role", s.Role))
	}
	return nil
}
