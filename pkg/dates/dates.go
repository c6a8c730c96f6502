package dates

import "time"

// MonthKeyLayout is the canonical year-month key format used for grouping
// events and identifying ledger periods.
const MonthKeyLayout = "2006-01"

// MonthOf truncates a date to the first day of its calendar month (UTC).
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth returns the first day of the month following t.
func NextMonth(t time.Time) time.Time {
	return MonthOf(t).AddDate(0, 1, 0)
}

// MonthKey formats a date as its year-month grouping key.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// ParseMonthKey parses a year-month key back into the first day of that month.
func ParseMonthKey(key string) (time.Time, error) {
	return time.Parse(MonthKeyLayout, key)
}

// SameMonth reports whether two dates fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// MonthsBetween returns the number of whole calendar months from a to b.
// Returns a negative count when b is before a.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
