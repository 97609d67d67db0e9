package ui

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pstuifzand/subtasks/internal/focus"
	"github.com/pstuifzand/subtasks/internal/model"
	"github.com/pstuifzand/subtasks/internal/reminder"
)

// RowKind is what a checklist line shows
type RowKind int

const (
	RowHeader RowKind = iota
	RowItem
	RowControls
	RowGap
)

// Row is one screen line of the checklist
type Row struct {
	Kind         RowKind
	SectionIndex int
	ItemIndex    int
}

// ViewState is everything the checklist needs to draw one frame
type ViewState struct {
	Outline  *model.Outline
	ActiveID string
	// Field is the field being edited, drawn with Editor
	Field  focus.Field
	Editor *Editor
	// Controls is set when the section controls row has focus
	Controls bool
	Now      time.Time
	Formats  reminder.Formats
}

// ChecklistView lays out sections and items and keeps the selected section
// in the viewport
type ChecklistView struct {
	selected       int
	viewportOffset int
}

// NewChecklistView creates a view with the first section selected
func NewChecklistView() *ChecklistView {
	return &ChecklistView{}
}

// Rows lays the outline out as screen lines. Headers are shown for named
// sections and for the section being edited.
func Rows(outline *model.Outline, activeID string) []Row {
	var rows []Row
	for si, section := range outline.Sections {
		if si > 0 {
			rows = append(rows, Row{Kind: RowGap, SectionIndex: si})
		}
		active := section.ID == activeID
		if section.Name != "" || active {
			rows = append(rows, Row{Kind: RowHeader, SectionIndex: si})
		}
		for ii := range section.Items {
			rows = append(rows, Row{Kind: RowItem, SectionIndex: si, ItemIndex: ii})
		}
		if active {
			rows = append(rows, Row{Kind: RowControls, SectionIndex: si})
		}
	}
	return rows
}

// Selected returns the index of the selected section, clamped to outline
func (v *ChecklistView) Selected(outline *model.Outline) int {
	v.clamp(outline)
	return v.selected
}

// SelectedID returns the id of the selected section, or ""
func (v *ChecklistView) SelectedID(outline *model.Outline) string {
	v.clamp(outline)
	if len(outline.Sections) == 0 {
		return ""
	}
	return outline.Sections[v.selected].ID
}

// Select selects the section with id, if present
func (v *ChecklistView) Select(outline *model.Outline, id string) {
	if idx := outline.SectionIndex(id); idx >= 0 {
		v.selected = idx
	}
}

// SelectNext moves selection down
func (v *ChecklistView) SelectNext(outline *model.Outline) {
	if v.selected < len(outline.Sections)-1 {
		v.selected++
	}
	v.clamp(outline)
}

// SelectPrev moves selection up
func (v *ChecklistView) SelectPrev(outline *model.Outline) {
	if v.selected > 0 {
		v.selected--
	}
	v.clamp(outline)
}

func (v *ChecklistView) clamp(outline *model.Outline) {
	if v.selected >= len(outline.Sections) {
		v.selected = len(outline.Sections) - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
}

// ensureVisible scrolls so that the rows of the selected section fit in
// height lines where possible
func (v *ChecklistView) ensureVisible(rows []Row, height int) {
	first, last := -1, -1
	for i, row := range rows {
		if row.SectionIndex != v.selected || row.Kind == RowGap {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 || height <= 0 {
		v.viewportOffset = 0
		return
	}
	if last >= v.viewportOffset+height {
		v.viewportOffset = last - height + 1
	}
	if first < v.viewportOffset {
		v.viewportOffset = first
	}
}

// Render draws the checklist between rows top and top+height
func (v *ChecklistView) Render(screen *Screen, state ViewState, top, height int) {
	width, _ := screen.Size()
	outline := state.Outline
	v.clamp(outline)

	if len(outline.Sections) == 0 {
		screen.DrawString(2, top, "Nothing to do. Press a to add a task.", screen.ToolbarStyle())
		return
	}

	rows := Rows(outline, state.ActiveID)
	v.ensureVisible(rows, height)

	for line := 0; line < height; line++ {
		idx := v.viewportOffset + line
		if idx >= len(rows) {
			break
		}
		v.renderRow(screen, state, rows[idx], top+line, width)
	}
}

func (v *ChecklistView) renderRow(screen *Screen, state ViewState, row Row, y, width int) {
	if row.Kind == RowGap {
		return
	}
	section := state.Outline.Sections[row.SectionIndex]
	active := section.ID == state.ActiveID
	first := row.Kind == RowHeader || (row.Kind == RowItem && row.ItemIndex == 0 && section.Name == "" && !active)

	// Column 0 marks the section being edited, or the selection
	if first {
		switch {
		case active:
			screen.SetCell(0, y, '●', screen.ActiveMarkerStyle())
		case row.SectionIndex == v.selected:
			screen.SetCell(0, y, '›', screen.SelectedStyle())
		}
	}

	x := 2
	switch row.Kind {
	case RowHeader:
		x = screen.DrawString(x, y, checkbox(section.IsCompleted), screen.CheckboxStyle())
		field := focus.Header(section.ID)
		if state.Editor != nil && state.Field == field {
			state.Editor.Render(screen, x, y, max(0, width-x))
			return
		}
		name := section.Name
		style := screen.SectionStyle()
		if name == "" {
			name = "Title"
			style = screen.ToolbarStyle()
		}
		x = screen.DrawStringLimited(x, y, name, width-x, style)
		v.renderReminder(screen, state, section, x+2, y, width)

	case RowItem:
		if section.Name != "" || active {
			x += 2
		}
		item := section.Items[row.ItemIndex]
		x = screen.DrawString(x, y, checkbox(item.IsCompleted || section.IsCompleted), screen.CheckboxStyle())
		field := focus.ItemField(section.ID, row.ItemIndex)
		if state.Editor != nil && state.Field == field {
			state.Editor.Render(screen, x, y, max(0, width-x))
			return
		}
		style := screen.ItemStyle()
		if item.IsCompleted || section.IsCompleted {
			style = screen.CompletedStyle()
		}
		x = screen.DrawStringLimited(x, y, item.Text, width-x, style)
		if row.ItemIndex == 0 && section.Name == "" && !active {
			v.renderReminder(screen, state, section, x+2, y, width)
		}

	case RowControls:
		style := screen.ToolbarStyle()
		if state.Controls {
			style = screen.SelectedStyle().Reverse(true)
		}
		label := "[r] remind  [x] clear  [Enter] done"
		if section.ReminderTimestamp != nil {
			label = "⏰ " + reminder.RelativeText(*section.ReminderTimestamp, state.Now, state.Formats) + "  " + label
		}
		screen.DrawStringLimited(4, y, label, width-4, style)
	}
}

func (v *ChecklistView) renderReminder(screen *Screen, state ViewState, section model.Section, x, y, width int) {
	if section.ReminderTimestamp == nil || x >= width {
		return
	}
	at := *section.ReminderTimestamp
	var style tcell.Style
	switch {
	case section.IsReminderExpired || !at.After(state.Now):
		style = screen.OverdueStyle()
	default:
		style = screen.ReminderStyle()
	}
	label := "⏰ " + reminder.RelativeText(at, state.Now, state.Formats)
	screen.DrawStringLimited(x, y, label, width-x, style)
}

func checkbox(done bool) string {
	if done {
		return "[x] "
	}
	return "[ ] "
}
