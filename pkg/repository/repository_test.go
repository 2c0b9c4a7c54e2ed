package repository_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/repository"
)

func day(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func uniq(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func testRepository(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("User", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()
		ctx := context.Background()

		user := &model.User{
			ID:     types.NewUserID(),
			EmpID:  uniq("emp"),
			Name:   "Priya",
			Email:  uniq("priya") + "@example.com",
			Role:   types.UserRoleCoach,
			Status: types.UserStatusActive,
		}
		gt.NoError(t, repo.PutUser(ctx, user)).Required()

		got, err := repo.GetUser(ctx, user.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, user.Email, got.Email)
		gt.Equal(t, types.UserRoleCoach, got.Role)

		byEmail, err := repo.GetUserByEmail(ctx, " "+user.Email+" ")
		gt.NoError(t, err).Required()
		gt.Equal(t, user.ID, byEmail.ID)

		byEmp, err := repo.GetUserByEmpID(ctx, user.EmpID)
		gt.NoError(t, err).Required()
		gt.Equal(t, user.ID, byEmp.ID)

		_, err = repo.GetUser(ctx, types.NewUserID())
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrUserNotFound))

		_, err = repo.GetUserByEmail(ctx, uniq("nobody")+"@example.com")
		gt.True(t, model.IsNotFound(err))
	})

	t.Run("Stakeholder", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()
		ctx := context.Background()

		trainer := &model.Stakeholder{ID: types.NewStakeholderID(), EmpID: uniq("t"), Name: "Trainer", Role: types.RoleTrainer}
		mentor := &model.Stakeholder{ID: types.NewStakeholderID(), EmpID: uniq("m"), Name: "Mentor", Role: types.RoleMentor}
		gt.NoError(t, repo.PutStakeholder(ctx, trainer)).Required()
		gt.NoError(t, repo.PutStakeholder(ctx, mentor)).Required()

		mentors, err := repo.ListStakeholders(ctx, types.RoleMentor)
		gt.NoError(t, err).Required()
		found := false
		for _, s := range mentors {
			gt.Equal(t, types.RoleMentor, s.Role)
			if s.ID == mentor.ID {
				found = true
			}
		}
		gt.True(t, found)

		gt.NoError(t, repo.DeleteStakeholder(ctx, trainer.ID))
		_, err = repo.GetStakeholder(ctx, trainer.ID)
		gt.True(t, errors.Is(err, model.ErrStakeholderNotFound))
		gt.Error(t, repo.DeleteStakeholder(ctx, trainer.ID))
	})

	t.Run("Cohort", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()
		ctx := context.Background()

		cohort := &model.Cohort{
			ID:        types.NewCohortID(),
			Code:      uniq("JAVA"),
			StartDate: day("2024-01-15"),
			EndDate:   day("2024-03-15"),
			Primary: []model.Assignment{
				{Role: types.RoleTrainer, StakeholderID: types.NewStakeholderID()},
			},
		}
		gt.NoError(t, repo.PutCohort(ctx, cohort)).Required()

		got, err := repo.GetCohortByCode(ctx, cohort.Code)
		gt.NoError(t, err).Required()
		gt.Equal(t, cohort.ID, got.ID)
		gt.Equal(t, 1, len(got.Primary))
		gt.True(t, got.StartDate.Equal(cohort.StartDate))

		// Mutating the returned value must not change the stored one
		got.Primary[0].Role = types.RoleMentor
		again, err := repo.GetCohort(ctx, cohort.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, types.RoleTrainer, again.Primary[0].Role)

		gt.NoError(t, repo.DeleteCohort(ctx, cohort.ID))
		_, err = repo.GetCohort(ctx, cohort.ID)
		gt.True(t, errors.Is(err, model.ErrCohortNotFound))
	})

	t.Run("Candidate", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()
		ctx := context.Background()

		cohortID := types.NewCohortID()
		for i := 0; i < 3; i++ {
			c := &model.Candidate{
				ID:          types.NewCandidateID(),
				CandidateID: fmt.Sprintf("%s-%d", uniq("cand"), i),
				Name:        fmt.Sprintf("Candidate %d", i),
				CohortID:    cohortID,
				Status:      types.CandidateStatusActive,
			}
			gt.NoError(t, repo.PutCandidate(ctx, c)).Required()
		}
		other := &model.Candidate{ID: types.NewCandidateID(), CandidateID: uniq("other"), Name: "Other", CohortID: types.NewCohortID(), Status: types.CandidateStatusActive}
		gt.NoError(t, repo.PutCandidate(ctx, other)).Required()

		list, err := repo.ListCandidates(ctx, cohortID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 3, len(list))

		got, err := repo.GetCandidateByCandidateID(ctx, other.CandidateID)
		gt.NoError(t, err).Required()
		gt.Equal(t, other.ID, got.ID)

		gt.NoError(t, repo.DeleteCandidate(ctx, other.ID))
		_, err = repo.GetCandidate(ctx, other.ID)
		gt.True(t, errors.Is(err, model.ErrCandidateNotFound))
	})

	t.Run("Effort", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()
		ctx := context.Background()

		cohortID := types.NewCohortID()
		stakeholderID := types.NewStakeholderID()
		dates := []string{"2024-01-17", "2024-01-15", "2024-01-23", "2024-02-01"}
		for _, d := range dates {
			e := &model.Effort{
				ID:            types.NewEffortID(),
				CohortID:      cohortID,
				StakeholderID: stakeholderID,
				Role:          types.RoleTrainer,
				Hours:         2,
				Date:          day(d),
			}
			gt.NoError(t, repo.PutEffort(ctx, e)).Required()
		}

		all, err := repo.ListEfforts(ctx, interfaces.EffortFilter{CohortID: cohortID})
		gt.NoError(t, err).Required()
		gt.Equal(t, 4, len(all))
		gt.True(t, all[0].Date.Equal(day("2024-01-15")))
		gt.True(t, all[3].Date.Equal(day("2024-02-01")))

		week, err := repo.ListEfforts(ctx, interfaces.EffortFilter{
			CohortID: cohortID,
			From:     day("2024-01-15"),
			To:       day("2024-01-21"),
		})
		gt.NoError(t, err).Required()
		gt.Equal(t, 2, len(week))

		byStakeholder, err := repo.ListEfforts(ctx, interfaces.EffortFilter{StakeholderID: stakeholderID})
		gt.NoError(t, err).Required()
		gt.Equal(t, 4, len(byStakeholder))

		gt.NoError(t, repo.DeleteEffort(ctx, all[0].ID))
		_, err = repo.GetEffort(ctx, all[0].ID)
		gt.True(t, errors.Is(err, model.ErrEffortNotFound))
	})

	t.Run("WeeklySummary", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()
		ctx := context.Background()

		cohortID := types.NewCohortID()
		later := model.NewWeeklySummary(cohortID, day("2024-01-22"), time.Now())
		earlier := model.NewWeeklySummary(cohortID, day("2024-01-15"), time.Now())
		earlier.RoleHours[types.RoleTrainer] = 12
		earlier.TotalHours = 12
		gt.NoError(t, repo.PutWeeklySummary(ctx, later)).Required()
		gt.NoError(t, repo.PutWeeklySummary(ctx, earlier)).Required()

		// Same cohort week replaces the previous summary
		replaced := model.NewWeeklySummary(cohortID, day("2024-01-17"), time.Now())
		replaced.TotalHours = 20
		gt.NoError(t, repo.PutWeeklySummary(ctx, replaced)).Required()

		list, err := repo.ListWeeklySummaries(ctx, cohortID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 2, len(list))
		gt.True(t, list[0].WeekStart.Equal(day("2024-01-15")))
		gt.Equal(t, 20.0, list[0].TotalHours)

		got, err := repo.GetWeeklySummary(ctx, cohortID, day("2024-01-22"))
		gt.NoError(t, err).Required()
		gt.True(t, got.WeekEnd.Equal(day("2024-01-28")))

		_, err = repo.GetWeeklySummary(ctx, cohortID, day("2024-03-04"))
		gt.True(t, errors.Is(err, model.ErrWeeklySummaryNotFound))
	})

	t.Run("Feedback", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()
		ctx := context.Background()

		cohortID := types.NewCohortID()
		req, err := model.NewFeedbackRequest(cohortID, 1, 7, types.NewUserID(), time.Now())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.PutFeedbackRequest(ctx, req)).Required()

		byToken, err := repo.GetFeedbackRequestByToken(ctx, req.Token)
		gt.NoError(t, err).Required()
		gt.Equal(t, req.ID, byToken.ID)
		gt.V(t, byToken.ExpiresAt).NotNil()

		_, err = repo.GetFeedbackRequestByToken(ctx, types.NewFeedbackToken())
		gt.True(t, errors.Is(err, model.ErrFeedbackRequestNotFound))

		rating := 4
		fb := &model.Feedback{
			ID:                   types.NewFeedbackID(),
			CohortID:             cohortID,
			RequestID:            req.ID,
			WeekNumber:           1,
			MentorGuidanceRating: &rating,
			EmployeeID:           "2100001",
			CreatedAt:            time.Now(),
		}
		gt.NoError(t, repo.PutFeedback(ctx, fb)).Required()

		exists, err := repo.HasFeedback(ctx, req.ID, "2100001")
		gt.NoError(t, err).Required()
		gt.True(t, exists)

		exists, err = repo.HasFeedback(ctx, req.ID, "2100002")
		gt.NoError(t, err).Required()
		gt.False(t, exists)

		list, err := repo.ListFeedback(ctx, cohortID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 1, len(list))
		gt.V(t, list[0].MentorGuidanceRating).NotNil()
		gt.Equal(t, 4, *list[0].MentorGuidanceRating)
		gt.V(t, list[0].CoachEffectivenessRating).Nil()

		requests, err := repo.ListFeedbackRequests(ctx, cohortID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 1, len(requests))
	})

	t.Run("Notification", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()
		ctx := context.Background()

		recipient := types.NewUserID()
		base := time.Now()
		for i := 0; i < 3; i++ {
			n := model.NewNotification(recipient, "ADMIN", model.NotificationDraft{
				Type:  types.NotificationReportSubmitted,
				Title: fmt.Sprintf("n%d", i),
			}, base.Add(time.Duration(i)*time.Minute))
			gt.NoError(t, repo.PutNotification(ctx, n)).Required()
		}

		list, err := repo.ListNotifications(ctx, recipient)
		gt.NoError(t, err).Required()
		gt.Equal(t, 3, len(list))
		gt.Equal(t, "n2", list[0].Title)
		gt.Equal(t, "n0", list[2].Title)

		list[0].IsRead = true
		gt.NoError(t, repo.PutNotification(ctx, list[0])).Required()
		got, err := repo.GetNotification(ctx, list[0].ID)
		gt.NoError(t, err).Required()
		gt.True(t, got.IsRead)

		gt.NoError(t, repo.DeleteNotifications(ctx, recipient)).Required()
		list, err = repo.ListNotifications(ctx, recipient)
		gt.NoError(t, err).Required()
		gt.Equal(t, 0, len(list))
	})

	t.Run("Activity", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()
		ctx := context.Background()

		cohortID := types.CohortID(uniq("cohort"))
		now := time.Now().UTC()
		for i, date := range []string{"2024-01-22", "2024-01-29", "2024-01-15"} {
			gt.NoError(t, repo.PutActivity(ctx, &model.Activity{
				ID:        types.NewActivityID(),
				CohortID:  cohortID,
				Title:     fmt.Sprintf("a%d", i),
				Date:      day(date),
				CreatedAt: now,
			})).Required()
		}
		gt.NoError(t, repo.PutActivity(ctx, &model.Activity{
			ID:       types.NewActivityID(),
			CohortID: types.CohortID(uniq("other")),
			Title:    "other",
			Date:     day("2024-01-22"),
		})).Required()

		list, err := repo.ListActivities(ctx, cohortID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 3, len(list))
		gt.Equal(t, "a1", list[0].Title)
		gt.Equal(t, "a2", list[2].Title)
	})
}

func TestMemoryRepository(t *testing.T) {
	testRepository(t, func(t *testing.T) interfaces.Repository {
		return repository.NewMemory()
	})
}

func TestFirestoreRepository(t *testing.T) {
	// Skip test if Firestore test environment variables are not set
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE")

	if projectID == "" || databaseID == "" {
		t.Skip("Skipping Firestore test: TEST_FIRESTORE_PROJECT and TEST_FIRESTORE_DATABASE must be set")
	}

	testRepository(t, func(t *testing.T) interfaces.Repository {
		ctx := context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		ctx = ctxlog.With(ctx, logger)

		repo, err := repository.NewFirestore(ctx, projectID, databaseID)
		gt.NoError(t, err).Required()
		return repo
	})
}
