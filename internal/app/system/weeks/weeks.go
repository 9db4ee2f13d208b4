// Package weeks computes the week labels that call tasks are bucketed by.
//
// Labels have the form "YYYY-Www". The week number is a plain day count from
// January 1st with Sunday as the first day of the week:
//
//	week = ceil((dayOfYear0 + weekdayOfJan1 + 1) / 7)
//
// where dayOfYear0 is zero-based and weekdayOfJan1 uses Sunday = 0. This is
// not ISO-8601: the year is always the calendar year and week 1 is whatever
// week contains January 1st. Existing task data is keyed by these labels, so
// the numbering must not be "corrected" to time.ISOWeek.
package weeks

import (
	"fmt"
	"regexp"
	"time"
)

var labelRE = regexp.MustCompile(`^\d{4}-W\d{2}$`)

// Number returns the week number of t within its calendar year.
func Number(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	n := t.YearDay() - 1 + int(jan1.Weekday()) + 1
	return (n + 6) / 7
}

// Label formats the week label for t.
func Label(t time.Time) string {
	return fmt.Sprintf("%d-W%02d", t.Year(), Number(t))
}

// Current returns the label for now.
func Current(now time.Time) string {
	return Label(now)
}

// Valid reports whether s is a well-formed week label. Only the shape is
// checked; the week number is accepted as-is.
func Valid(s string) bool {
	return labelRE.MatchString(s)
}
