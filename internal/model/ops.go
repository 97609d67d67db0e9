package model

import (
	"fmt"
	"slices"
)

// OffsetEnd is the focus offset meaning "end of the field's text".
const OffsetEnd = -1

// MergeOutcome says which branch MergeOrDeleteAtItemStart took
type MergeOutcome int

const (
	MergeNoOp MergeOutcome = iota
	MergePromoted
	MergeDeleted
	MergeMerged
)

func (m MergeOutcome) String() string {
	switch m {
	case MergePromoted:
		return "promoted"
	case MergeDeleted:
		return "deleted"
	case MergeMerged:
		return "merged"
	default:
		return "noop"
	}
}

// MergeResult is the new outline plus the item that should receive focus.
// FocusOffset is a character offset or OffsetEnd.
type MergeResult struct {
	Outline     *Outline
	Outcome     MergeOutcome
	FocusIndex  int
	FocusOffset int
}

// SettleOutcome says what SettleSection did to the section
type SettleOutcome int

const (
	SettleKept SettleOutcome = iota
	SettleCollapsed
	SettleRemoved
)

// SplitItem cuts the item's text at cursor. The first half stays in place and
// the second half becomes a new incomplete item directly after it. The
// cursor is clamped to the text.
func (o *Outline) SplitItem(sectionID string, itemIndex, cursor int) (*Outline, error) {
	clone, section, err := o.section(sectionID)
	if err != nil {
		return nil, err
	}
	if itemIndex < 0 || itemIndex >= len(section.Items) {
		return nil, fmt.Errorf("%w: %d of %d", ErrItemOutOfRange, itemIndex, len(section.Items))
	}

	runes := []rune(section.Items[itemIndex].Text)
	cursor = max(0, min(cursor, len(runes)))

	section.Items[itemIndex].Text = string(runes[:cursor])
	section.Items = slices.Insert(section.Items, itemIndex+1, NewItem(string(runes[cursor:])))
	return clone, nil
}

// MergeOrDeleteAtItemStart handles backspace with the cursor at offset 0 of
// an item: header promotion, deleting an empty item, or merging the text
// onto the previous item.
func (o *Outline) MergeOrDeleteAtItemStart(sectionID string, itemIndex int) (MergeResult, error) {
	clone, section, err := o.section(sectionID)
	if err != nil {
		return MergeResult{}, err
	}
	if itemIndex < 0 || itemIndex >= len(section.Items) {
		return MergeResult{}, fmt.Errorf("%w: %d of %d", ErrItemOutOfRange, itemIndex, len(section.Items))
	}

	item := section.Items[itemIndex]
	isFirstItem := itemIndex == 0
	isOnlyItem := len(section.Items) == 1
	hasHeaderText := section.Name != ""
	isTextEmpty := item.Text == ""

	noop := MergeResult{Outline: o, Outcome: MergeNoOp, FocusIndex: itemIndex, FocusOffset: 0}

	switch {
	case isFirstItem && isOnlyItem && hasHeaderText:
		promoted := NewItem(section.Name + item.Text)
		offset := TextLen(section.Name)
		section.Name = ""
		section.Items = []Item{promoted}
		return MergeResult{Outline: clone, Outcome: MergePromoted, FocusIndex: 0, FocusOffset: offset}, nil

	case isTextEmpty:
		if isFirstItem && isOnlyItem {
			// the last item of a header-less section is never removed here
			return noop, nil
		}
		section.Items = slices.Delete(section.Items, itemIndex, itemIndex+1)
		focus := itemIndex - 1
		if isFirstItem {
			focus = 0
		}
		return MergeResult{Outline: clone, Outcome: MergeDeleted, FocusIndex: focus, FocusOffset: OffsetEnd}, nil

	case !isFirstItem:
		prev := &section.Items[itemIndex-1]
		boundary := TextLen(prev.Text)
		prev.Text += item.Text
		section.Items = slices.Delete(section.Items, itemIndex, itemIndex+1)
		return MergeResult{Outline: clone, Outcome: MergeMerged, FocusIndex: itemIndex - 1, FocusOffset: boundary}, nil
	}

	return noop, nil
}

// RemoveEmptyItems drops every item whose text is empty. Only used when a
// section stops being edited, so blank lines survive while composing.
func (o *Outline) RemoveEmptyItems(sectionID string) (*Outline, error) {
	clone, section, err := o.section(sectionID)
	if err != nil {
		return nil, err
	}
	section.Items = slices.DeleteFunc(section.Items, func(item Item) bool {
		return item.Text == ""
	})
	return clone, nil
}

// SettleSection applies the leave-editing policy: empty items are removed;
// a section left without items either collapses its header into a single
// item or, without a header, disappears.
func (o *Outline) SettleSection(sectionID string) (*Outline, SettleOutcome, error) {
	filtered, err := o.RemoveEmptyItems(sectionID)
	if err != nil {
		return nil, SettleKept, err
	}

	idx := filtered.SectionIndex(sectionID)
	section := &filtered.Sections[idx]
	if len(section.Items) > 0 {
		return filtered, SettleKept, nil
	}

	if section.Name != "" {
		section.Items = []Item{NewItem(section.Name)}
		section.Name = ""
		section.IsCompleted = false
		return filtered, SettleCollapsed, nil
	}

	filtered.Sections = slices.Delete(filtered.Sections, idx, idx+1)
	return filtered, SettleRemoved, nil
}

// PrependSection adds section at the top of the outline
func (o *Outline) PrependSection(section Section) *Outline {
	clone := o.Clone()
	clone.Sections = slices.Insert(clone.Sections, 0, section.Clone())
	return clone
}

// RemoveSection deletes the section with the given id
func (o *Outline) RemoveSection(sectionID string) (*Outline, error) {
	idx := o.SectionIndex(sectionID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}
	clone := o.Clone()
	clone.Sections = slices.Delete(clone.Sections, idx, idx+1)
	return clone, nil
}

// SetItemText replaces the text of one item, used for plain typing
func (o *Outline) SetItemText(sectionID string, itemIndex int, text string) (*Outline, error) {
	clone, section, err := o.section(sectionID)
	if err != nil {
		return nil, err
	}
	if itemIndex < 0 || itemIndex >= len(section.Items) {
		return nil, fmt.Errorf("%w: %d of %d", ErrItemOutOfRange, itemIndex, len(section.Items))
	}
	section.Items[itemIndex].Text = text
	return clone, nil
}

// SetSectionName replaces the header text of a section
func (o *Outline) SetSectionName(sectionID, name string) (*Outline, error) {
	clone, section, err := o.section(sectionID)
	if err != nil {
		return nil, err
	}
	section.Name = name
	return clone, nil
}
