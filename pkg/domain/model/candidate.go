package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// Candidate is a trainee enrolled in a cohort
type Candidate struct {
	ID          types.CandidateID     `json:"id"`
	CandidateID string                `json:"candidate_id"` // external enrollment number, unique
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Skill       string                `json:"skill,omitempty"`
	Location    string                `json:"location,omitempty"`
	CohortID    types.CohortID        `json:"cohort_id"`
	Status      types.CandidateStatus `json:"status"`
	JoinDate    time.Time             `json:"join_date"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// Validate checks required fields
func (c *Candidate) Validate() error {
	if strings.TrimSpace(c.CandidateID) == "" {
		return validationError("candidate ID is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return validationError("candidate name is required", goerr.V("candidate_id", c.CandidateID))
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return validationError("invalid email", goerr.V("email", c.Email))
	}
	if c.CohortID == "" {
		return validationError("cohort ID is required", goerr.V("candidate_id", c.CandidateID))
	}
	if !c.Status.IsValid() {
		return validationError("invalid candidate status", goerr.V("status", c.Status))
	}
	return nil
}

// ImportError describes a rejected row of a bulk candidate import
type ImportError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult summarises a bulk candidate import
type ImportResult struct {
	Imported int           `json:"imported"`
	Errors   []ImportError `json:"errors"`
}
