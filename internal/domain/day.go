package domain

import "time"

// DayLayout is the calendar day key format.
const DayLayout = "2006-01-02"

// DayKey formats t as a local-calendar day key in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDayKey parses a day key into midnight UTC of that date.
func ParseDayKey(key string) (time.Time, error) {
	return time.Parse(DayLayout, key)
}

// AddDays shifts a day key by n calendar days. Invalid keys are returned unchanged.
func AddDays(key string, n int) string {
	t, err := ParseDayKey(key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, n).Format(DayLayout)
}
