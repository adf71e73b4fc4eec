package shared

import "time"

// DateLayout is the wire format for accounting dates
const DateLayout = "2006-01-02"

// DateOnly truncates t to midnight UTC of the same calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD accounting date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewDomainError("INVALID_DATE", "Date must be formatted as YYYY-MM-DD")
	}
	return t, nil
}
