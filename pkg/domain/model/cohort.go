package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// Assignment binds a stakeholder to a cohort in a given role
type Assignment struct {
	Role          types.StakeholderRole `json:"role"`
	StakeholderID types.StakeholderID   `json:"stakeholder_id"`
	AssignedAt    time.Time             `json:"assigned_at"`
}

// Cohort is a group of trainees going through a fixed-duration program
type Cohort struct {
	ID               types.CohortID `json:"id"`
	Code             string         `json:"code"`
	BU               string         `json:"bu,omitempty"`
	SBU              string         `json:"sbu,omitempty"`
	SL               string         `json:"sl,omitempty"`
	Skill            string         `json:"skill,omitempty"`
	ActiveGencCount  int            `json:"active_genc_count"`
	TrainingLocation string         `json:"training_location,omitempty"`
	StartDate        time.Time      `json:"start_date"`
	EndDate          time.Time      `json:"end_date"`
	CoachID          types.UserID   `json:"coach_id,omitempty"`
	Primary          []Assignment   `json:"primary"`    // at most one per role
	Additional       []Assignment   `json:"additional"` // extra stakeholders, unique per (role, stakeholder)
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Validate checks required fields and the date range
func (c *Cohort) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return validationError("cohort code is required")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return validationError("cohort start and end dates are required", goerr.V("code", c.Code))
	}
	if c.EndDate.Before(c.StartDate) {
		return validationError("cohort end date is before start date",
			goerr.V("start", FormatDate(c.StartDate)),
			goerr.V("end", FormatDate(c.EndDate)))
	}
	if c.ActiveGencCount < 0 {
		return validationError("active GenC count must not be negative", goerr.V("count", c.ActiveGencCount))
	}
	return nil
}

// Progress returns the elapsed share of the program as a percentage in [0, 100]
func (c *Cohort) Progress(now time.Time) int {
	today := DayOf(now)
	start, end := DayOf(c.StartDate), DayOf(c.EndDate)

	if today.Before(start) {
		return 0
	}
	if today.After(end) {
		return 100
	}

	total := end.Sub(start).Hours() / 24
	if total <= 0 {
		return 100
	}
	elapsed := today.Sub(start).Hours() / 24
	return int(elapsed * 100 / total)
}

// IsActive reports whether now falls within the program dates
func (c *Cohort) IsActive(now time.Time) bool {
	today := DayOf(now)
	return !today.Before(DayOf(c.StartDate)) && !today.After(DayOf(c.EndDate))
}

// Weeks returns the calendar weeks spanned by the program
func (c *Cohort) Weeks() []WeekRange {
	return GenerateWeeks(c.StartDate, c.EndDate)
}

// PrimaryFor returns the primary stakeholder for role
func (c *Cohort) PrimaryFor(role types.StakeholderRole) (types.StakeholderID, bool) {
	for _, a := range c.Primary {
		if a.Role == role {
			return a.StakeholderID, true
		}
	}
	return "", false
}

// SetPrimary replaces the primary stakeholder for role
func (c *Cohort) SetPrimary(role types.StakeholderRole, id types.StakeholderID, now time.Time) {
	for i, a := range c.Primary {
		if a.Role == role {
			c.Primary[i] = Assignment{Role: role, StakeholderID: id, AssignedAt: now}
			return
		}
	}
	c.Primary = append(c.Primary, Assignment{Role: role, StakeholderID: id, AssignedAt: now})
}

// AddAdditional assigns an extra stakeholder. Assigning the same stakeholder twice
// in the same role is a conflict.
func (c *Cohort) AddAdditional(role types.StakeholderRole, id types.StakeholderID, now time.Time) error {
	for _, a := range c.Additional {
		if a.Role == role && a.StakeholderID == id {
			return goerr.New("stakeholder already assigned to cohort",
				goerr.V("cohort_id", c.ID),
				goerr.V("stakeholder_id", id),
				goerr.V("role", role),
				goerr.T(TagConflict))
		}
	}
	c.Additional = append(c.Additional, Assignment{Role: role, StakeholderID: id, AssignedAt: now})
	return nil
}

// RemoveAdditional drops an extra stakeholder assignment
func (c *Cohort) RemoveAdditional(role types.StakeholderRole, id types.StakeholderID) error {
	for i, a := range c.Additional {
		if a.Role == role && a.StakeholderID == id {
			c.Additional = append(c.Additional[:i], c.Additional[i+1:]...)
			return nil
		}
	}
	return goerr.New("assignment not found",
		goerr.V("cohort_id", c.ID),
		goerr.V("stakeholder_id", id),
		goerr.V("role", role),
		goerr.T(TagNotFound))
}

// ResolveStakeholder picks who an effort of role is booked to: the first
// additional assignment for the role, falling back to the primary one.
func (c *Cohort) ResolveStakeholder(role types.StakeholderRole) (types.StakeholderID, bool) {
	for _, a := range c.Additional {
		if a.Role == role {
			return a.StakeholderID, true
		}
	}
	return c.PrimaryFor(role)
}

// StakeholderIDs returns every assigned stakeholder once, primaries first
func (c *Cohort) StakeholderIDs() []types.StakeholderID {
	seen := make(map[types.StakeholderID]bool)
	var ids []types.StakeholderID
	for _, list := range [][]Assignment{c.Primary, c.Additional} {
		for _, a := range list {
			if !seen[a.StakeholderID] {
				seen[a.StakeholderID] = true
				ids = append(ids, a.StakeholderID)
			}
		}
	}
	return ids
}
