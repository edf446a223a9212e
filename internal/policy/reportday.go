// Package policy holds the pure decisions of the monthly reporting workflow.
package policy

import (
	"fmt"
	"time"
)

// MaxAdvanceDays bounds the configured offset from month end
const MaxAdvanceDays = 3650

// ReportDate returns the report day of today's month: the last calendar day
// minus advanceDays.
func ReportDate(today time.Time, advanceDays int) (time.Time, error) {
	if advanceDays < 0 {
		return time.Time{}, fmt.Errorf("advance days must not be negative, got %d", advanceDays)
	}
	if advanceDays > MaxAdvanceDays {
		return time.Time{}, fmt.Errorf("advance days %d exceeds limit of %d", advanceDays, MaxAdvanceDays)
	}

	y, m, _ := today.Date()
	lastDay := time.Date(y, m+1, 0, 0, 0, 0, 0, today.Location())
	target := lastDay.AddDate(0, 0, -advanceDays)
	if target.Year() < 1 || target.Year() > 9999 {
		return time.Time{}, fmt.Errorf("report date for offset %d falls outside the calendar range", advanceDays)
	}
	return target, nil
}

// IsReportDay reports whether today is the monthly report day.
func IsReportDay(today time.Time, advanceDays int) (bool, error) {
	target, err := ReportDate(today, advanceDays)
	if err != nil {
		return false, err
	}
	return SameDate(today, target), nil
}

// SameDate compares calendar dates, ignoring the clock.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// PreviousMonthRange returns the first and last day of the month before today.
func PreviousMonthRange(today time.Time) (time.Time, time.Time) {
	y, m, _ := today.Date()
	first := time.Date(y, m-1, 1, 0, 0, 0, 0, today.Location())
	last := time.Date(y, m, 0, 0, 0, 0, 0, today.Location())
	return first, last
}
