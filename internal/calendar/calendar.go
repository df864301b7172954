// Package calendar implements the working-day policy. Daily accrual,
// deposits and withdrawals are only available Monday through Friday.
package calendar

import "time"

// IsWorkingDay reports whether t falls on a weekday (Monday to Friday).
func IsWorkingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// DayOf truncates t to midnight UTC. Accrual runs are keyed by this value
// so that two sweeps on the same calendar day collide regardless of the
// wall-clock time they started at.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
