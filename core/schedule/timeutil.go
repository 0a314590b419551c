package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TimeOfDay is a local wall-clock time expressed as minutes since midnight.
type TimeOfDay int

const (
	DayStart TimeOfDay = 0
	DayEnd   TimeOfDay = 24 * 60
)

var (
	errBadTimeOfDay = errors.New("invalid time of day")
	errBadDate      = errors.New("invalid date")
)

// ParseTimeOfDay parses "H:MM" or "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, errors.Wrap(errBadTimeOfDay, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, errors.Wrap(errBadTimeOfDay, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, errors.Wrap(errBadTimeOfDay, s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// At anchors t on the given calendar date.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(t)/60, int(t)%60, 0, 0, date.Location())
}

// TimeOfDayAt extracts the wall-clock minutes of an instant.
func TimeOfDayAt(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

const (
	displayDateLayout = "2.1.2006"
	isoDateLayout     = "2006-01-02"
)

// ParseDate parses the display format (day.month.year) with an ISO fallback.
// The result is normalized to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range [...]string{displayDateLayout, isoDateLayout} {
		if d, err := time.Parse(layout, s); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.Wrap(errBadDate, s)
}

// FormatDate renders a date in the display format.
func FormatDate(d time.Time) string {
	return d.Format(displayDateLayout)
}

// SameDate reports whether two instants fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// WeekParityOf returns the parity of a date's ISO week number:
// ParityEven if the week number is even, ParityOdd otherwise.
func WeekParityOf(date time.Time) Parity {
	_, week := date.ISOWeek()
	if week%2 == 0 {
		return ParityEven
	}
	return ParityOdd
}
