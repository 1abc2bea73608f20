package task

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the persisted and user-facing date format (DD/MM/YY).
const DateLayout = "02/01/06"

// shortDateLayout accepts unpadded day and month, e.g. 1/2/25.
const shortDateLayout = "2/1/06"

// ParseDate parses DD/MM/YY text into a local calendar date.
func ParseDate(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		t, err = time.ParseInLocation(shortDateLayout, s, time.Local)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders t as DD/MM/YY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf truncates t to midnight of its calendar day in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
