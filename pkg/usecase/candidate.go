package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// candidateColumns is the column order of the bulk import file. join_date is optional.
var candidateColumns = []string{"candidate_id", "name", "email", "skill", "location", "join_date"}

// CandidateInput is the data of a new trainee. JoinDate is YYYY-MM-DD and
// defaults to today.
type CandidateInput struct {
	CandidateID string         `json:"candidate_id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Skill       string         `json:"skill"`
	Location    string         `json:"location"`
	CohortID    types.CohortID `json:"cohort_id"`
	JoinDate    string         `json:"join_date"`
}

// CandidateUseCase manages trainees
type CandidateUseCase struct {
	repo interfaces.Repository
	config
}

// NewCandidateUseCase creates a new candidate usecase
func NewCandidateUseCase(repo interfaces.Repository, opts ...Option) *CandidateUseCase {
	return &CandidateUseCase{
		repo:   repo,
		config: newConfig(opts),
	}
}

func (c *CandidateUseCase) build(input CandidateInput) (*model.Candidate, error) {
	now := c.now()
	joinDate := model.DayOf(now)
	if s := strings.TrimSpace(input.JoinDate); s != "" {
		d, err := model.ParseDate(s)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid join date", goerr.T(model.TagValidation))
		}
		joinDate = d
	}

	candidate := &model.Candidate{
		ID:          types.NewCandidateID(),
		CandidateID: strings.TrimSpace(input.CandidateID),
		Name:        strings.TrimSpace(input.Name),
		Email:       model.NormalizeEmail(input.Email),
		Skill:       strings.TrimSpace(input.Skill),
		Location:    strings.TrimSpace(input.Location),
		CohortID:    input.CohortID,
		Status:      types.CandidateStatusActive,
		JoinDate:    joinDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	return candidate, nil
}

func (c *CandidateUseCase) save(ctx context.Context, candidate *model.Candidate) error {
	if _, err := c.repo.GetCandidateByCandidateID(ctx, candidate.CandidateID); err == nil {
		return goerr.New("candidate ID already exists", goerr.V("candidate_id", candidate.CandidateID), goerr.T(model.TagConflict))
	} else if !model.IsNotFound(err) {
		return goerr.Wrap(err, "failed to check candidate ID")
	}

	if err := c.repo.PutCandidate(ctx, candidate); err != nil {
		return goerr.Wrap(err, "failed to save candidate", goerr.V("candidate_id", candidate.CandidateID))
	}
	return nil
}

// CreateCandidate enrolls one trainee in an existing cohort
func (c *CandidateUseCase) CreateCandidate(ctx context.Context, input CandidateInput) (*model.Candidate, error) {
	candidate, err := c.build(input)
	if err != nil {
		return nil, err
	}
	if _, err := c.repo.GetCohort(ctx, candidate.CohortID); err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", candidate.CohortID))
	}
	if err := c.save(ctx, candidate); err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("Created candidate",
		"candidateID", candidate.CandidateID,
		"cohortID", candidate.CohortID,
	)
	return candidate, nil
}

// GetCandidate returns one trainee
func (c *CandidateUseCase) GetCandidate(ctx context.Context, id types.CandidateID) (*model.Candidate, error) {
	candidate, err := c.repo.GetCandidate(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get candidate", goerr.V("id", id))
	}
	return candidate, nil
}

// ListCandidates returns the trainees of cohortID, or all when empty
func (c *CandidateUseCase) ListCandidates(ctx context.Context, cohortID types.CohortID) ([]*model.Candidate, error) {
	candidates, err := c.repo.ListCandidates(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list candidates", goerr.V("cohort_id", cohortID))
	}
	return candidates, nil
}

// UpdateStatus changes the enrollment status of a trainee
func (c *CandidateUseCase) UpdateStatus(ctx context.Context, id types.CandidateID, status types.CandidateStatus) (*model.Candidate, error) {
	if !status.IsValid() {
		return nil, goerr.New("invalid candidate status", goerr.V("status", status), goerr.T(model.TagValidation))
	}
	candidate, err := c.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate.Status = status
	candidate.UpdatedAt = c.now()
	if err := c.repo.PutCandidate(ctx, candidate); err != nil {
		return nil, goerr.Wrap(err, "failed to save candidate", goerr.V("id", id))
	}
	return candidate, nil
}

// DeleteCandidate removes a trainee
func (c *CandidateUseCase) DeleteCandidate(ctx context.Context, id types.CandidateID) error {
	if _, err := c.GetCandidate(ctx, id); err != nil {
		return err
	}
	if err := c.repo.DeleteCandidate(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete candidate", goerr.V("id", id))
	}
	return nil
}

// ImportCandidates enrolls the trainees listed in a CSV file into cohortID.
// The first row must be the header. Rejected rows are reported in the result
// and do not stop the import.
func (c *CandidateUseCase) ImportCandidates(ctx context.Context, cohortID types.CohortID, r io.Reader) (*model.ImportResult, error) {
	if _, err := c.repo.GetCohort(ctx, cohortID); err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", cohortID))
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, goerr.New("import file is empty", goerr.T(model.TagValidation))
		}
		return nil, goerr.Wrap(err, "failed to read import header", goerr.T(model.TagValidation))
	}
	if len(header) < 5 || !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(header[0], "\ufeff")), candidateColumns[0]) {
		return nil, goerr.New("import file must start with a header row",
			goerr.V("expected", strings.Join(candidateColumns, ",")),
			goerr.T(model.TagValidation))
	}

	result := &model.ImportResult{Errors: []model.ImportError{}}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, goerr.Wrap(err, "failed to read import file")
			}
			result.Errors = append(result.Errors, model.ImportError{Line: parseErr.Line, Message: parseErr.Err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < 5 {
			result.Errors = append(result.Errors, model.ImportError{Line: line, Message: "expected at least 5 columns"})
			continue
		}

		input := CandidateInput{
			CandidateID: record[0],
			Name:        record[1],
			Email:       record[2],
			Skill:       record[3],
			Location:    record[4],
			CohortID:    cohortID,
		}
		if len(record) > 5 {
			input.JoinDate = record[5]
		}

		candidate, err := c.build(input)
		if err == nil {
			err = c.save(ctx, candidate)
		}
		if err != nil {
			result.Errors = append(result.Errors, model.ImportError{Line: line, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	ctxlog.From(ctx).Info("Imported candidates",
		"cohortID", cohortID,
		"imported", result.Imported,
		"rejected", len(result.Errors),
	)
	return result, nil
}
