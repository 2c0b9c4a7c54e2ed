package model

import (
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DateLayout is the ISO calendar date format used for every date exchanged with clients
const DateLayout = "2006-01-02"

// WeekRange is one Monday-to-Sunday calendar week of a date range.
// StartDate is Monday 00:00 and EndDate is the last instant of Sunday, both in UTC.
type WeekRange struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	WeekNumber int       `json:"week_number"`
}

// Contains reports whether t falls inside the week. Both ends are inclusive and
// the comparison is made on t's calendar day.
func (w WeekRange) Contains(t time.Time) bool {
	d := DayOf(t)
	return !d.Before(w.StartDate) && !d.After(w.EndDate)
}

// LastDay returns Sunday 00:00 of the week
func (w WeekRange) LastDay() time.Time {
	return w.StartDate.AddDate(0, 0, 6)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD) as midnight UTC
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "failed to parse ISO date", goerr.V("date", s))
	}
	return t, nil
}

// FormatDate formats t as an ISO calendar date
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DayOf returns the calendar day of t as midnight UTC
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the Monday on or before t's calendar day
func StartOfWeek(t time.Time) time.Time {
	d := DayOf(t)
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the ISO week
	}
	return d.AddDate(0, 0, -(weekday - 1))
}

// EndOfWeek returns the Sunday on or after t's calendar day
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 6)
}

// GenerateCalendarWeeks splits [startDate, endDate] into Monday-start calendar
// weeks. The first week begins on the Monday on or before startDate and weeks are
// emitted until a week would start after endDate. A startDate later than endDate
// yields no weeks.
func GenerateCalendarWeeks(startDate, endDate string) ([]WeekRange, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid start date")
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid end date")
	}
	return GenerateWeeks(start, end), nil
}

// GenerateWeeks is GenerateCalendarWeeks for already parsed dates
func GenerateWeeks(start, end time.Time) []WeekRange {
	end = DayOf(end)
	weeks := []WeekRange{}

	n := 1
	for cur := StartOfWeek(start); !cur.After(end); cur = cur.AddDate(0, 0, 7) {
		weeks = append(weeks, newWeekRange(n, cur))
		n++
	}
	return weeks
}

func newWeekRange(n int, monday time.Time) WeekRange {
	sunday := monday.AddDate(0, 0, 6)
	return WeekRange{
		ID:         fmt.Sprintf("week-%d", n),
		Label:      fmt.Sprintf("Week %d: %s - %s", n, monday.Format("Jan 02"), sunday.Format("Jan 02, 2006")),
		StartDate:  monday,
		EndDate:    monday.AddDate(0, 0, 7).Add(-time.Nanosecond),
		WeekNumber: n,
	}
}

// CurrentWeek returns the first week containing now
func CurrentWeek(weeks []WeekRange, now time.Time) (WeekRange, bool) {
	for _, w := range weeks {
		if w.Contains(now) {
			return w, true
		}
	}
	return WeekRange{}, false
}

// WeekByNumber returns the week with the given 1-based number
func WeekByNumber(weeks []WeekRange, n int) (WeekRange, bool) {
	for _, w := range weeks {
		if w.WeekNumber == n {
			return w, true
		}
	}
	return WeekRange{}, false
}

// GroupByWeek buckets records by the first week containing their date, keyed by
// week ID. Input order is kept within a bucket. Records outside every week are
// dropped and weeks without records have no key.
func GroupByWeek[T any](records []T, weeks []WeekRange, dateOf func(T) time.Time) map[string][]T {
	grouped := make(map[string][]T)
	for _, r := range records {
		d := dateOf(r)
		for _, w := range weeks {
			if w.Contains(d) {
				grouped[w.ID] = append(grouped[w.ID], r)
				break
			}
		}
	}
	return grouped
}
