package model

import (
	"fmt"
	"slices"
	"time"
)

// CompletionOutcome says what SettleItemCompletion did
type CompletionOutcome int

const (
	CompletionRepositioned CompletionOutcome = iota
	CompletionSectionRemoved
	CompletionMovedToTop
)

// SetItemCompleted flips the checkbox of one item without moving it
func (o *Outline) SetItemCompleted(sectionID, itemID string, completed bool) (*Outline, error) {
	clone, section, err := o.section(sectionID)
	if err != nil {
		return nil, err
	}
	idx := section.ItemIndex(itemID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	section.Items[idx].IsCompleted = completed
	return clone, nil
}

// SettleItemCompletion runs once the checkbox feedback delay has passed.
// An item that is still checked either finishes the whole section (it was
// the last incomplete one) or moves to the head of the completed block at
// the end of the list. An item that was unchecked moves to the top.
func (o *Outline) SettleItemCompletion(sectionID, itemID string) (*Outline, CompletionOutcome, error) {
	clone, section, err := o.section(sectionID)
	if err != nil {
		return nil, CompletionRepositioned, err
	}
	idx := section.ItemIndex(itemID)
	if idx < 0 {
		return nil, CompletionRepositioned, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	item := section.Items[idx]

	if !item.IsCompleted {
		section.Items = slices.Delete(section.Items, idx, idx+1)
		section.Items = slices.Insert(section.Items, 0, item)
		return clone, CompletionMovedToTop, nil
	}

	if len(section.IncompleteItems()) == 0 {
		sectionIdx := clone.SectionIndex(sectionID)
		clone.Sections = slices.Delete(clone.Sections, sectionIdx, sectionIdx+1)
		return clone, CompletionSectionRemoved, nil
	}

	section.Items = slices.Delete(section.Items, idx, idx+1)
	insertAt := slices.IndexFunc(section.Items, func(other Item) bool {
		return other.IsCompleted
	})
	if insertAt < 0 {
		insertAt = len(section.Items)
	}
	section.Items = slices.Insert(section.Items, insertAt, item)
	return clone, CompletionRepositioned, nil
}

// SetSectionCompleted flips the header checkbox of a section
func (o *Outline) SetSectionCompleted(sectionID string, completed bool) (*Outline, error) {
	clone, section, err := o.section(sectionID)
	if err != nil {
		return nil, err
	}
	section.IsCompleted = completed
	return clone, nil
}

// RemoveCompletedSections drops every section whose header is checked.
// Returns the number of sections removed.
func (o *Outline) RemoveCompletedSections() (*Outline, int) {
	clone := o.Clone()
	before := len(clone.Sections)
	clone.Sections = slices.DeleteFunc(clone.Sections, func(section Section) bool {
		return section.IsCompleted
	})
	return clone, before - len(clone.Sections)
}

// SetReminder sets or clears (nil) the reminder of a section. A new
// reminder is armed again even if the previous one already fired.
func (o *Outline) SetReminder(sectionID string, at *time.Time) (*Outline, error) {
	clone, section, err := o.section(sectionID)
	if err != nil {
		return nil, err
	}
	if at == nil {
		section.ReminderTimestamp = nil
	} else {
		ts := *at
		section.ReminderTimestamp = &ts
	}
	section.IsReminderExpired = false
	return clone, nil
}

// ExpireReminder marks the section's reminder as fired so it never fires again
func (o *Outline) ExpireReminder(sectionID string) (*Outline, error) {
	clone, section, err := o.section(sectionID)
	if err != nil {
		return nil, err
	}
	section.IsReminderExpired = true
	return clone, nil
}
