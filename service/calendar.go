package services

import "time"

// House sittings run Monday through Wednesday only, so a deadline may never
// fall on a Thursday, Friday or weekend day.

// NextSittingDay returns the first sitting day on or after date. Monday,
// Tuesday and Wednesday pass through unchanged; every other weekday is pushed
// forward to the following Monday.
func NextSittingDay(date time.Time) time.Time {
	switch date.Weekday() {
	case time.Thursday:
		return date.AddDate(0, 0, 4)
	case time.Friday:
		return date.AddDate(0, 0, 3)
	case time.Saturday:
		return date.AddDate(0, 0, 2)
	case time.Sunday:
		return date.AddDate(0, 0, 1)
	default:
		return date
	}
}

// IsSittingDay reports whether date falls on a sitting day.
func IsSittingDay(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Monday || wd == time.Tuesday || wd == time.Wednesday
}
