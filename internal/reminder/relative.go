package reminder

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/ncruces/go-strftime"
)

// Formats are strftime layouts used by RelativeText. Leading zeros of
// numeric fields are dropped after formatting.
type Formats struct {
	Clock   string
	Weekday string
	Date    string
}

// DefaultFormats renders "3:04 PM", "Monday, 3:04 PM" and "Jan 2, 2027 3:04 PM"
var DefaultFormats = Formats{
	Clock:   "%I:%M %p",
	Weekday: "%A, %I:%M %p",
	Date:    "%b %d, %Y %I:%M %p",
}

var leadingZero = regexp.MustCompile(`(^|[ ,])0([0-9])`)

func format(layout string, t time.Time) string {
	return leadingZero.ReplaceAllString(strftime.Format(layout, t), "${1}${2}")
}

// RelativeText labels a reminder relative to now: "in 5 minutes, 3:04 PM"
// today, "Tomorrow, 9:00 AM" within two days, "Monday, 9:00 AM" within a
// week and a full date beyond that.
func RelativeText(at, now time.Time, formats Formats) string {
	at = at.In(now.Location())
	clock := format(formats.Clock, at)

	if sameDay(at, now) {
		return fmt.Sprintf("%s, %s", FromNow(at, now), clock)
	}

	if at.After(now) && at.Before(now.AddDate(0, 0, 2)) {
		label := FromNow(at, now)
		if sameDay(at, now.AddDate(0, 0, 1)) {
			label = "Tomorrow"
		}
		return fmt.Sprintf("%s, %s", label, clock)
	}

	if at.After(now) && at.Before(now.AddDate(0, 0, 7)) {
		return format(formats.Weekday, at)
	}

	return format(formats.Date, at)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FromNow describes the distance between at and now in words, using the
// usual humanized thresholds ("a few seconds", "a minute", "5 hours").
func FromNow(at, now time.Time) string {
	diff := at.Sub(now)
	future := diff >= 0
	if !future {
		diff = -diff
	}

	text := humanize(diff)
	if future {
		return "in " + text
	}
	return text + " ago"
}

func humanize(d time.Duration) string {
	seconds := d.Seconds()
	minutes := math.Round(d.Minutes())
	hours := math.Round(d.Hours())
	days := math.Round(d.Hours() / 24)

	switch {
	case seconds < 45:
		return "a few seconds"
	case seconds < 90:
		return "a minute"
	case minutes < 45:
		return fmt.Sprintf("%d minutes", int(minutes))
	case minutes < 90:
		return "an hour"
	case hours < 22:
		return fmt.Sprintf("%d hours", int(hours))
	case hours < 36:
		return "a day"
	default:
		return fmt.Sprintf("%d days", int(days))
	}
}
