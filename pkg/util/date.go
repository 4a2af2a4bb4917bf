package util

import "time"

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DayWindow returns [from, to] date strings for a lookback of days ending at now.
func DayWindow(now time.Time, days int) (string, string) {
	return FormatDate(now.AddDate(0, 0, -days)), FormatDate(now)
}
