// Package reminder fires one-shot section reminders: it picks the sections
// whose reminder minute has come, notifies, rings the alarm and marks them
// expired.
package reminder

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pstuifzand/subtasks/internal/model"
	"github.com/pstuifzand/subtasks/internal/notify"
)

// DefaultTitle is used for sections without a header
const DefaultTitle = "Subtasks"

const previewLimit = 5

// Entry is a section waiting for its reminder
type Entry struct {
	SectionID string
	At        time.Time
	Section   model.Section
}

// Candidates returns the sections whose reminder can still fire, earliest
// first. Completed sections, expired reminders and the section being
// edited are skipped. Ties keep outline order.
func Candidates(sections []model.Section, activeID string) []Entry {
	var entries []Entry
	for _, section := range sections {
		if section.ReminderTimestamp == nil || section.IsReminderExpired || section.IsCompleted {
			continue
		}
		if activeID != "" && section.ID == activeID {
			continue
		}
		entries = append(entries, Entry{
			SectionID: section.ID,
			At:        *section.ReminderTimestamp,
			Section:   section,
		})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.At.Compare(b.At)
	})
	return entries
}

// Due reports whether the entry's reminder minute is now or already past.
// Minutes are compared in now's location.
func Due(entry Entry, now time.Time) bool {
	at := entry.At.In(now.Location()).Truncate(time.Minute)
	return !at.After(now.Truncate(time.Minute))
}

// Payload builds the notification for a section
func Payload(section model.Section) notify.Notification {
	title := section.Name
	if title == "" {
		title = DefaultTitle
	}

	incomplete := section.IncompleteItems()
	texts := make([]string, 0, previewLimit)
	for _, item := range incomplete[:min(len(incomplete), previewLimit)] {
		texts = append(texts, item.Text)
	}
	preview := strings.Join(texts, ", ")
	if len(incomplete) > previewLimit {
		preview += "..."
	}

	return notify.Notification{
		Title: title,
		Body:  fmt.Sprintf("%d of %d left to do: %s", len(incomplete), len(section.Items), preview),
		Tag:   section.ID,
	}
}
