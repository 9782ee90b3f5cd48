package planner

import (
	"math"
	"time"

	"alcyxob/run-plan/internal/domain"
)

const weekDuration = 7 * 24 * time.Hour

// GetWeekNumber maps currentDate to a 1-based plan week counted from startDate,
// clamped to [1, maxWeeks]. Both dates are taken at midday so that DST and
// timezone offsets cannot move a date across a week boundary.
// A maxWeeks below 1 means the standard plan length.
func GetWeekNumber(startDate, currentDate time.Time, maxWeeks int) int {
	if maxWeeks < 1 {
		maxWeeks = domain.PlanWeeks
	}
	start := midday(startDate)
	current := midday(currentDate)

	n := int(math.Floor(float64(current.Sub(start))/float64(weekDuration))) + 1
	return max(1, min(n, maxWeeks))
}

// WeekNumberFromDate is GetWeekNumber for an ISO plan start date.
func WeekNumberFromDate(startDate string, now time.Time, maxWeeks int) (int, error) {
	start, err := domain.ParseDate(startDate)
	if err != nil {
		return 0, err
	}
	return GetWeekNumber(start, now, maxWeeks), nil
}

func midday(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// EnsureStartDate fills an empty start date with today's date and reports whether it did.
func EnsureStartDate(p *domain.Plan, now time.Time) bool {
	if p.StartDate != "" {
		return false
	}
	p.StartDate = now.Format(domain.DateLayout)
	return true
}
