package contextutils

import (
	"time"
)

const (
	// CardDateLayout is the short de-CH layout used on list cards
	CardDateLayout = "02.01. 15:04"
	// DetailDateLayout is the full de-CH layout used in the detail view
	DetailDateLayout = "02.01.2006, 15:04:05"
	// DisplayTimezone is the zone feedback timestamps are shown in
	DisplayTimezone = "Europe/Zurich"
)

// DisplayLocation returns the location for DisplayTimezone, falling back to UTC
// when the zone database is unavailable.
func DisplayLocation() *time.Location {
	loc, err := time.LoadLocation(DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormatInLocation renders t with layout in loc. The zero time renders as "".
func FormatInLocation(t time.Time, layout string, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(layout)
}

// FormatCardDate renders t the way list cards show it.
func FormatCardDate(t time.Time) string {
	return FormatInLocation(t, CardDateLayout, DisplayLocation())
}

// FormatDetailDate renders t the way the detail view shows it.
func FormatDetailDate(t time.Time) string {
	return FormatInLocation(t, DetailDateLayout, DisplayLocation())
}
