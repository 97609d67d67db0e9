package reminder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadTime is returned by ParseWhen for input it does not understand
var ErrBadTime = errors.New("unrecognized reminder time")

// ParseWhen reads a reminder time typed by the user, relative to now:
//
//	15           minutes from now
//	1h30m        a duration from now
//	17:45        the next time the clock shows 17:45
//	2027-01-02 09:00
//
// Results are in now's location.
func ParseWhen(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadTime)
	}

	if minutes, err := strconv.Atoi(strings.TrimPrefix(input, "+")); err == nil {
		if minutes <= 0 {
			return time.Time{}, fmt.Errorf("%w: %q is not in the future", ErrBadTime, input)
		}
		return now.Add(time.Duration(minutes) * time.Minute), nil
	}

	if d, err := time.ParseDuration(strings.TrimPrefix(input, "+")); err == nil {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("%w: %q is not in the future", ErrBadTime, input)
		}
		return now.Add(d), nil
	}

	if clock, err := time.ParseInLocation("15:04", input, now.Location()); err == nil {
		at := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at, nil
	}

	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04"} {
		if at, err := time.ParseInLocation(layout, input, now.Location()); err == nil {
			return at, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTime, input)
}
