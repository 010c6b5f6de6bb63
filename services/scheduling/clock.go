package scheduling

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// ParseClock converts "HH:MM" (24-hour) to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AppointmentMoment combines a "YYYY-MM-DD" date and "HH:MM" time into an instant in loc.
func AppointmentMoment(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid appointment date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}
