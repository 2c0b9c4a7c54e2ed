package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/domain/model"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	gt.NoError(t, err).Required()
	return d
}

func TestGenerateCalendarWeeks(t *testing.T) {
	t.Run("Range starting on Monday", func(t *testing.T) {
		weeks, err := model.GenerateCalendarWeeks("2024-01-15", "2024-01-29")
		gt.NoError(t, err).Required()
		gt.Equal(t, 3, len(weeks))

		gt.Equal(t, "week-1", weeks[0].ID)
		gt.Equal(t, "Week 1: Jan 15 - Jan 21, 2024", weeks[0].Label)
		gt.Equal(t, date(t, "2024-01-15"), weeks[0].StartDate)
		gt.Equal(t, "week-2", weeks[1].ID)
		gt.Equal(t, date(t, "2024-01-22"), weeks[1].StartDate)
		gt.Equal(t, "week-3", weeks[2].ID)
		gt.Equal(t, date(t, "2024-01-29"), weeks[2].StartDate)
		gt.Equal(t, "Week 3: Jan 29 - Feb 04, 2024", weeks[2].Label)
	})

	t.Run("Start in the middle of a week anchors to Monday", func(t *testing.T) {
		weeks, err := model.GenerateCalendarWeeks("2024-01-17", "2024-01-18")
		gt.NoError(t, err).Required()
		gt.Equal(t, 1, len(weeks))
		gt.Equal(t, date(t, "2024-01-15"), weeks[0].StartDate)
		gt.Equal(t, time.Monday, weeks[0].StartDate.Weekday())
	})

	t.Run("Start on Sunday anchors to previous Monday", func(t *testing.T) {
		weeks, err := model.GenerateCalendarWeeks("2024-01-21", "2024-01-21")
		gt.NoError(t, err).Required()
		gt.Equal(t, 1, len(weeks))
		gt.Equal(t, date(t, "2024-01-15"), weeks[0].StartDate)
	})

	t.Run("Same start and end yields one week", func(t *testing.T) {
		weeks, err := model.GenerateCalendarWeeks("2024-03-05", "2024-03-05")
		gt.NoError(t, err).Required()
		gt.Equal(t, 1, len(weeks))
		gt.Equal(t, 1, weeks[0].WeekNumber)
	})

	t.Run("Start after end yields empty sequence", func(t *testing.T) {
		weeks, err := model.GenerateCalendarWeeks("2024-02-10", "2024-01-01")
		gt.NoError(t, err)
		gt.Equal(t, 0, len(weeks))
	})

	t.Run("Malformed date is an error", func(t *testing.T) {
		_, err := model.GenerateCalendarWeeks("2024-13-45", "2024-01-29")
		gt.Error(t, err)

		_, err = model.GenerateCalendarWeeks("2024-01-15", "not-a-date")
		gt.Error(t, err)
	})

	t.Run("Weeks are contiguous seven day windows", func(t *testing.T) {
		weeks, err := model.GenerateCalendarWeeks("2023-12-20", "2024-03-10")
		gt.NoError(t, err).Required()
		gt.True(t, len(weeks) > 1)

		for i, w := range weeks {
			gt.Equal(t, i+1, w.WeekNumber)
			gt.Equal(t, time.Monday, w.StartDate.Weekday())
			gt.Equal(t, time.Sunday, w.EndDate.Weekday())
			gt.Equal(t, 7*24*time.Hour, w.EndDate.Sub(w.StartDate)+time.Nanosecond)
			if i > 0 {
				gt.True(t, weeks[i-1].EndDate.Add(time.Nanosecond).Equal(w.StartDate))
			}
		}

		last := weeks[len(weeks)-1]
		end := date(t, "2024-03-10")
		gt.True(t, last.Contains(end))
	})

	t.Run("Range spanning a year boundary", func(t *testing.T) {
		weeks, err := model.GenerateCalendarWeeks("2024-12-30", "2025-01-06")
		gt.NoError(t, err).Required()
		gt.Equal(t, 2, len(weeks))
		gt.Equal(t, "Week 1: Dec 30 - Jan 05, 2025", weeks[0].Label)
	})
}

func TestCurrentWeek(t *testing.T) {
	weeks, err := model.GenerateCalendarWeeks("2024-01-15", "2024-01-29")
	gt.NoError(t, err).Required()

	testCases := []struct {
		name   string
		now    time.Time
		found  bool
		weekID string
	}{
		{"First day of first week", date(t, "2024-01-15"), true, "week-1"},
		{"Middle of second week", date(t, "2024-01-24").Add(15 * time.Hour), true, "week-2"},
		{"Last instant of Sunday", time.Date(2024, 1, 21, 23, 59, 59, 0, time.UTC), true, "week-1"},
		{"Last week beyond range end", date(t, "2024-02-04"), true, "week-3"},
		{"Before first week", date(t, "2024-01-14"), false, ""},
		{"After last week", date(t, "2024-02-05"), false, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, ok := model.CurrentWeek(weeks, tc.now)
			gt.Equal(t, tc.found, ok)
			gt.Equal(t, tc.weekID, w.ID)
		})
	}

	t.Run("Empty weeks", func(t *testing.T) {
		_, ok := model.CurrentWeek(nil, date(t, "2024-01-15"))
		gt.False(t, ok)
	})
}

type record struct {
	name string
	date time.Time
}

func TestGroupByWeek(t *testing.T) {
	weeks, err := model.GenerateCalendarWeeks("2024-01-15", "2024-01-29")
	gt.NoError(t, err).Required()

	dateOf := func(r record) time.Time { return r.date }

	t.Run("Records outside all weeks are dropped", func(t *testing.T) {
		records := []record{
			{"a", date(t, "2024-01-16")},
			{"b", date(t, "2024-01-23")},
			{"c", date(t, "2024-02-10")},
		}
		grouped := model.GroupByWeek(records, weeks, dateOf)

		gt.Equal(t, 2, len(grouped))
		gt.Equal(t, 1, len(grouped["week-1"]))
		gt.Equal(t, "a", grouped["week-1"][0].name)
		gt.Equal(t, 1, len(grouped["week-2"]))
		gt.Equal(t, "b", grouped["week-2"][0].name)
		_, ok := grouped["week-3"]
		gt.False(t, ok)
	})

	t.Run("Order is preserved within a bucket", func(t *testing.T) {
		records := []record{
			{"late", date(t, "2024-01-20")},
			{"early", date(t, "2024-01-15")},
			{"other", date(t, "2024-01-30")},
			{"mid", date(t, "2024-01-17")},
		}
		grouped := model.GroupByWeek(records, weeks, dateOf)

		gt.Equal(t, 3, len(grouped["week-1"]))
		gt.Equal(t, "late", grouped["week-1"][0].name)
		gt.Equal(t, "early", grouped["week-1"][1].name)
		gt.Equal(t, "mid", grouped["week-1"][2].name)
		gt.Equal(t, 1, len(grouped["week-3"]))
	})

	t.Run("Boundaries are inclusive", func(t *testing.T) {
		records := []record{
			{"monday", date(t, "2024-01-22")},
			{"sunday-evening", time.Date(2024, 1, 28, 22, 0, 0, 0, time.UTC)},
		}
		grouped := model.GroupByWeek(records, weeks, dateOf)
		gt.Equal(t, 2, len(grouped["week-2"]))
	})

	t.Run("Every record appears at most once", func(t *testing.T) {
		var records []record
		for d := date(t, "2024-01-01"); d.Before(date(t, "2024-03-01")); d = d.AddDate(0, 0, 1) {
			records = append(records, record{model.FormatDate(d), d})
		}
		grouped := model.GroupByWeek(records, weeks, dateOf)

		total := 0
		for _, bucket := range grouped {
			total += len(bucket)
		}
		gt.Equal(t, 21, total)
	})

	t.Run("No records", func(t *testing.T) {
		grouped := model.GroupByWeek([]record{}, weeks, dateOf)
		gt.Equal(t, 0, len(grouped))
	})
}

func TestStartOfWeek(t *testing.T) {
	gt.Equal(t, date(t, "2024-01-15"), model.StartOfWeek(date(t, "2024-01-15")))
	gt.Equal(t, date(t, "2024-01-15"), model.StartOfWeek(date(t, "2024-01-21")))
	gt.Equal(t, date(t, "2024-01-22"), model.StartOfWeek(date(t, "2024-01-22").Add(23*time.Hour)))
	gt.Equal(t, date(t, "2024-01-21"), model.EndOfWeek(date(t, "2024-01-17")))
}
