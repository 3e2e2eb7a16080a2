package earnings

import "time"

const dayLayout = "2006-01-02"

// A calendar day is represented by noon of that day in the engine's
// location. Midnight does not exist on days where DST starts at 00:00, and
// time.Date would normalise it into the previous day; noon always exists.
const dayAnchorHour = 12

// dayOf returns the anchor of t's calendar day in loc.
func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return dateIn(t.Year(), t.Month(), t.Day(), loc)
}

// monthOf returns the anchor of the 1st of t's month in loc.
func monthOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return dateIn(t.Year(), t.Month(), 1, loc)
}

func dateIn(y int, m time.Month, d int, loc *time.Location) time.Time {
	return time.Date(y, m, d, dayAnchorHour, 0, 0, 0, loc)
}

func daysInMonth(month time.Time) int {
	return time.Date(month.Year(), month.Month()+1, 0, dayAnchorHour, 0, 0, 0, time.UTC).Day()
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func dayKey(t time.Time) string {
	return t.Format(dayLayout)
}
