package services

import "time"

// PresentationDate computes the deadline for an item committed on
// dateCommitted with allocatedDays calendar days granted: the raw target is
// dateCommitted + allocatedDays, pushed forward to the next sitting day.
// allocatedDays of 0 yields dateCommitted itself, adjusted.
func PresentationDate(dateCommitted time.Time, allocatedDays int) time.Time {
	return NextSittingDay(dateCommitted.AddDate(0, 0, allocatedDays))
}

// Countdown returns the signed number of days between now and the
// presentation date. Both instants are normalized to the start of their day
// so that a deadline falling anywhere on today's date counts as day 0.
// Positive means days remaining; zero or negative means due or elapsed.
func Countdown(presentationDate, now time.Time) int {
	due := startOfDay(presentationDate)
	today := startOfDay(now)
	return int(due.Sub(today).Hours() / 24)
}

// PendingDaysFromNow is the non-negative remaining day count, used for
// display and derived-days bookkeeping only, never for status decisions.
func PendingDaysFromNow(presentationDate, now time.Time) int {
	if c := Countdown(presentationDate, now); c > 0 {
		return c
	}
	return 0
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
