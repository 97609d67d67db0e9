// Package model contains the checklist outline: an ordered list of sections,
// each holding an ordered list of items.
package model

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	// ErrSectionNotFound is returned when a section id does not exist in the outline.
	ErrSectionNotFound = errors.New("section not found")
	// ErrItemOutOfRange is returned when an item index is outside the section's list.
	ErrItemOutOfRange = errors.New("item index out of range")
	// ErrItemNotFound is returned when an item id does not exist in the section.
	ErrItemNotFound = errors.New("item not found")
)

// Item is a single checklist line within a section
type Item struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
}

// Section is a named group of items, optionally carrying a reminder
type Section struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	IsCompleted       bool       `json:"isCompleted"`
	ReminderTimestamp *time.Time `json:"reminderTimestamp,omitempty"`
	IsReminderExpired bool       `json:"isReminderExpired"`
	Items             []Item     `json:"items"`
}

// Outline represents the entire checklist document
type Outline struct {
	Sections []Section `json:"sections"`
}

// NewItem creates a new incomplete item with a generated ID
func NewItem(text string) Item {
	return Item{
		ID:   generateID(),
		Text: text,
	}
}

// NewSection creates an empty singular task: no header and one empty item
func NewSection() Section {
	return Section{
		ID:    generateID(),
		Items: []Item{NewItem("")},
	}
}

// NewOutline creates an outline without sections
func NewOutline() *Outline {
	return &Outline{
		Sections: make([]Section, 0),
	}
}

// Clone returns a deep copy of the outline. Every operation in this
// package works on a clone so callers can keep the previous snapshot.
func (o *Outline) Clone() *Outline {
	if o == nil {
		return NewOutline()
	}
	clone := &Outline{Sections: make([]Section, len(o.Sections))}
	for i, section := range o.Sections {
		clone.Sections[i] = section.Clone()
	}
	return clone
}

// Clone returns a deep copy of the section
func (s Section) Clone() Section {
	clone := s
	if s.ReminderTimestamp != nil {
		ts := *s.ReminderTimestamp
		clone.ReminderTimestamp = &ts
	}
	clone.Items = make([]Item, len(s.Items))
	copy(clone.Items, s.Items)
	return clone
}

// IsSingular reports whether the section is the canonical singular task
// representation: no header text and exactly one item.
func (s Section) IsSingular() bool {
	return s.Name == "" && len(s.Items) == 1
}

// IncompleteItems returns the items not yet checked off, in list order
func (s Section) IncompleteItems() []Item {
	var items []Item
	for _, item := range s.Items {
		if !item.IsCompleted {
			items = append(items, item)
		}
	}
	return items
}

// SectionIndex returns the position of the section with the given id, or -1
func (o *Outline) SectionIndex(id string) int {
	for i, section := range o.Sections {
		if section.ID == id {
			return i
		}
	}
	return -1
}

// FindSection returns the section with the given id
func (o *Outline) FindSection(id string) (Section, bool) {
	idx := o.SectionIndex(id)
	if idx < 0 {
		return Section{}, false
	}
	return o.Sections[idx], true
}

// ItemIndex returns the position of the item with the given id, or -1
func (s Section) ItemIndex(id string) int {
	for i, item := range s.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// section resolves id on a fresh clone and returns the clone plus a pointer
// into it for in-place edits.
func (o *Outline) section(id string) (*Outline, *Section, error) {
	idx := o.SectionIndex(id)
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	clone := o.Clone()
	return clone, &clone.Sections[idx], nil
}

// TextLen returns the length of text in characters, the unit of every
// cursor offset in the editor.
func TextLen(text string) int {
	return utf8.RuneCountInString(text)
}

func generateID() string {
	return uuid.NewString()
}
