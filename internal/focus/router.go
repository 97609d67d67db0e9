package focus

import (
	"fmt"

	"github.com/pstuifzand/subtasks/internal/model"
)

// Key is a structural key the router knows about
type Key int

const (
	KeyEnter Key = iota
	KeyBackspace
	KeyArrowUp
	KeyArrowDown
	KeyTab
)

func (k Key) String() string {
	switch k {
	case KeyEnter:
		return "enter"
	case KeyBackspace:
		return "backspace"
	case KeyArrowUp:
		return "up"
	case KeyArrowDown:
		return "down"
	case KeyTab:
		return "tab"
	default:
		return "unknown"
	}
}

// External names a control outside the text fields that should take focus
type External int

const (
	ExternalNone External = iota
	// ExternalSectionControls is the reminder / confirm row under the active section
	ExternalSectionControls
	// ExternalToolbar is the action toolbar
	ExternalToolbar
)

// Event is one key press in a field, with the caret offset (in characters)
// at the time of the press.
type Event struct {
	Field  Field
	Cursor int
	Key    Key
	Active bool
}

// Result is what the router decided. When Handled is false the caller lets
// the key fall through to plain text editing and Outline is the input.
// When External is set focus leaves the text fields and Focus is empty.
type Result struct {
	Handled  bool
	Outline  *model.Outline
	Focus    State
	External External
	// Err is the model error behind an unhandled structural key
	Err error
}

// Route applies a structural key to the outline and returns the next focus.
// A model error is reported as an unhandled event carrying Err.
func Route(outline *model.Outline, ev Event) Result {
	unhandled := Result{Outline: outline}

	if ev.Key == KeyTab {
		return Result{Handled: true, Outline: outline, External: ExternalToolbar}
	}

	text, ok := ev.Field.Text(outline)
	if !ok {
		return unhandled
	}
	section, _ := outline.FindSection(ev.Field.SectionID)
	atStart := ev.Cursor <= 0
	atEnd := ev.Cursor >= model.TextLen(text)

	switch ev.Field.Kind {
	case KindHeader:
		if ev.Key == KeyArrowDown && atEnd && len(section.Items) > 0 {
			return Result{Handled: true, Outline: outline, Focus: End(ItemField(section.ID, 0))}
		}
		return unhandled

	case KindItem:
		idx := ev.Field.ItemIndex
		switch ev.Key {
		case KeyEnter:
			next, err := outline.SplitItem(section.ID, idx, ev.Cursor)
			if err != nil {
				unhandled.Err = fmt.Errorf("failed to split item: %w", err)
				return unhandled
			}
			return Result{Handled: true, Outline: next, Focus: At(ItemField(section.ID, idx+1), 0)}

		case KeyBackspace:
			if !atStart {
				return unhandled
			}
			merged, err := outline.MergeOrDeleteAtItemStart(section.ID, idx)
			if err != nil {
				unhandled.Err = fmt.Errorf("failed to merge item: %w", err)
				return unhandled
			}
			if merged.Outcome == model.MergeNoOp {
				return unhandled
			}
			return Result{
				Handled: true,
				Outline: merged.Outline,
				Focus:   At(ItemField(section.ID, merged.FocusIndex), merged.FocusOffset),
			}

		case KeyArrowUp:
			if !atStart {
				return unhandled
			}
			if idx > 0 {
				return Result{Handled: true, Outline: outline, Focus: At(ItemField(section.ID, idx-1), 0)}
			}
			return Result{Handled: true, Outline: outline, Focus: At(Header(section.ID), 0)}

		case KeyArrowDown:
			if !atEnd {
				return unhandled
			}
			if idx < len(section.Items)-1 {
				return Result{Handled: true, Outline: outline, Focus: End(ItemField(section.ID, idx+1))}
			}
			if ev.Active {
				return Result{Handled: true, Outline: outline, External: ExternalSectionControls}
			}
		}
	}

	return unhandled
}
