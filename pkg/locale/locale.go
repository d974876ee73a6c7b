package locale

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	DefaultTimezone = "Africa/Casablanca"
	DateLayout      = "2006-01-02"
	ClockLayout     = "15:04"
)

// Market returns the timezone bookings are scheduled in. It falls back to
// a fixed UTC+1 zone if the tz database is unavailable.
func Market() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.FixedZone("WEST", 60*60)
	}
	return loc
}

// ScheduledAt combines a calendar date and a wall clock time in loc.
func ScheduledAt(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q %q: %w", date, clock, err)
	}
	return t, nil
}

// Weekday returns the lowercase English weekday name for t in loc, matching
// the keys of a craftsman's availability.
func Weekday(t time.Time, loc *time.Location) string {
	return lowerWeekdays[t.In(loc).Weekday()]
}

var lowerWeekdays = [...]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}
