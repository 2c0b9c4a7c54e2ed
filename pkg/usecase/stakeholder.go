package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// StakeholderInput is the editable data of a trainer or mentor
type StakeholderInput struct {
	EmpID    string                `json:"emp_id"`
	Name     string                `json:"name"`
	Email    string                `json:"email"`
	Phone    string                `json:"phone"`
	Role     types.StakeholderRole `json:"role"`
	Skill    string                `json:"skill"`
	Internal bool                  `json:"internal"`
}

func (in StakeholderInput) apply(s *model.Stakeholder) {
	s.EmpID = strings.TrimSpace(in.EmpID)
	s.Name = strings.TrimSpace(in.Name)
	s.Email = model.NormalizeEmail(in.Email)
	s.Phone = strings.TrimSpace(in.Phone)
	s.Role = in.Role
	s.Skill = strings.TrimSpace(in.Skill)
	s.Internal = in.Internal
}

// StakeholderUseCase manages trainers and mentors
type StakeholderUseCase struct {
	repo interfaces.Repository
	config
}

// NewStakeholderUseCase creates a new stakeholder usecase
func NewStakeholderUseCase(repo interfaces.Repository, opts ...Option) *StakeholderUseCase {
	return &StakeholderUseCase{
		repo:   repo,
		config: newConfig(opts),
	}
}

// CreateStakeholder registers a trainer or mentor
func (s *StakeholderUseCase) CreateStakeholder(ctx context.Context, input StakeholderInput) (*model.Stakeholder, error) {
	now := s.now()
	stakeholder := &model.Stakeholder{
		ID:        types.NewStakeholderID(),
		Status:    types.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.apply(stakeholder)
	if err := stakeholder.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.PutStakeholder(ctx, stakeholder); err != nil {
		return nil, goerr.Wrap(err, "failed to save stakeholder")
	}

	ctxlog.From(ctx).Info("Created stakeholder",
		"stakeholderID", stakeholder.ID,
		"role", stakeholder.Role,
	)
	return stakeholder, nil
}

// GetStakeholder returns one stakeholder
func (s *StakeholderUseCase) GetStakeholder(ctx context.Context, id types.StakeholderID) (*model.Stakeholder, error) {
	stakeholder, err := s.repo.GetStakeholder(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get stakeholder", goerr.V("stakeholder_id", id))
	}
	return stakeholder, nil
}

// ListStakeholders returns stakeholders with role, or all when role is empty
func (s *StakeholderUseCase) ListStakeholders(ctx context.Context, role types.StakeholderRole) ([]*model.Stakeholder, error) {
	if role != "" && !role.IsValid() {
		return nil, goerr.New("invalid stakeholder role", goerr.V("role", role), goerr.T(model.TagValidation))
	}
	stakeholders, err := s.repo.ListStakeholders(ctx, role)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stakeholders", goerr.V("role", role))
	}
	return stakeholders, nil
}

// UpdateStakeholder replaces the editable fields of a stakeholder
func (s *StakeholderUseCase) UpdateStakeholder(ctx context.Context, id types.StakeholderID, input StakeholderInput) (*model.Stakeholder, error) {
	stakeholder, err := s.GetStakeholder(ctx, id)
	if err != nil {
		return nil, err
	}

	input.apply(stakeholder)
	if err := stakeholder.Validate(); err != nil {
		return nil, err
	}
	stakeholder.UpdatedAt = s.now()

	if err := s.repo.PutStakeholder(ctx, stakeholder); err != nil {
		return nil, goerr.Wrap(err, "failed to save stakeholder", goerr.V("stakeholder_id", id))
	}
	return stakeholder, nil
}

// DeleteStakeholder removes a stakeholder
func (s *StakeholderUseCase) DeleteStakeholder(ctx context.Context, id types.StakeholderID) error {
	if _, err := s.GetStakeholder(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteStakeholder(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete stakeholder", goerr.V("stakeholder_id", id))
	}

	ctxlog.From(ctx).Info("Deleted stakeholder", "stakeholderID", id)
	return nil
}
