// Package focus tracks which text field owns the keyboard and where its
// caret goes, and routes structural keys (Enter, Backspace, arrows, Tab)
// to outline edits.
package focus

import (
	"fmt"

	"github.com/pstuifzand/subtasks/internal/model"
)

// Kind is the type of text field
type Kind int

const (
	KindNone Kind = iota
	KindHeader
	KindItem
)

// Field identifies a single editable text field: a section header or one
// item of a section. The zero value means "no field".
type Field struct {
	SectionID string `json:"sectionId"`
	Kind      Kind   `json:"kind"`
	ItemIndex int    `json:"itemIndex"`
}

// Header returns the header field of a section
func Header(sectionID string) Field {
	return Field{SectionID: sectionID, Kind: KindHeader}
}

// ItemField returns the field of the item at index in a section
func ItemField(sectionID string, index int) Field {
	return Field{SectionID: sectionID, Kind: KindItem, ItemIndex: index}
}

// IsZero reports whether the field is empty
func (f Field) IsZero() bool {
	return f.Kind == KindNone
}

func (f Field) String() string {
	switch f.Kind {
	case KindHeader:
		return fmt.Sprintf("%s/header", f.SectionID)
	case KindItem:
		return fmt.Sprintf("%s/item[%d]", f.SectionID, f.ItemIndex)
	default:
		return "none"
	}
}

// Text returns the current text of the field in outline, and whether the
// field exists.
func (f Field) Text(outline *model.Outline) (string, bool) {
	section, ok := outline.FindSection(f.SectionID)
	if !ok {
		return "", false
	}
	switch f.Kind {
	case KindHeader:
		return section.Name, true
	case KindItem:
		if f.ItemIndex < 0 || f.ItemIndex >= len(section.Items) {
			return "", false
		}
		return section.Items[f.ItemIndex].Text, true
	}
	return "", false
}

// State is the single focused field plus the requested caret placement.
// SelectionStart is nil for native placement, model.OffsetEnd for end of
// text, or a character offset.
type State struct {
	Field          Field `json:"field"`
	SelectionStart *int  `json:"selectionStart,omitempty"`
}

// At focuses field with the caret at offset
func At(field Field, offset int) State {
	return State{Field: field, SelectionStart: &offset}
}

// End focuses field with the caret at the end of its text
func End(field Field) State {
	return At(field, model.OffsetEnd)
}

// Native focuses field and leaves caret placement to the view
func Native(field Field) State {
	return State{Field: field}
}

// IsZero reports whether nothing is focused
func (s State) IsZero() bool {
	return s.Field.IsZero()
}

func (s State) String() string {
	if s.SelectionStart == nil {
		return s.Field.String() + "@native"
	}
	return fmt.Sprintf("%s@%d", s.Field, *s.SelectionStart)
}
