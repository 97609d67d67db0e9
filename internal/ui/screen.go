package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/pstuifzand/subtasks/internal/theme"
)

// Screen manages the tcell screen and rendering
type Screen struct {
	tcellScreen tcell.Screen
	Theme       *theme.Theme
}

// NewScreen creates and initializes a terminal screen with a theme
func NewScreen(t *theme.Theme) (*Screen, error) {
	tcellScreen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	return NewScreenFrom(tcellScreen, t)
}

// NewScreenFrom initializes an existing tcell screen, such as a simulation
// screen in tests
func NewScreenFrom(tcellScreen tcell.Screen, t *theme.Theme) (*Screen, error) {
	if err := tcellScreen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}
	if t == nil {
		t = theme.Default()
	}
	tcellScreen.SetStyle(tcell.StyleDefault.Background(t.Colors.Background))
	return &Screen{
		tcellScreen: tcellScreen,
		Theme:       t,
	}, nil
}

// Close closes the screen
func (s *Screen) Close() error {
	s.tcellScreen.Fini()
	return nil
}

// Clear clears the entire screen
func (s *Screen) Clear() {
	s.tcellScreen.Clear()
}

// SetCell sets a cell at the given position
func (s *Screen) SetCell(x, y int, r rune, style tcell.Style) {
	w, h := s.tcellScreen.Size()
	if x >= 0 && x < w && y >= 0 && y < h {
		s.tcellScreen.SetContent(x, y, r, nil, style)
	}
}

// DrawString draws text at the given position and returns the column after
// it. Wide runes take two columns.
func (s *Screen) DrawString(x, y int, text string, style tcell.Style) int {
	for _, r := range text {
		s.SetCell(x, y, r, style)
		x += RuneWidth(r)
	}
	return x
}

// DrawStringLimited draws text truncated to maxWidth columns
func (s *Screen) DrawStringLimited(x, y int, text string, maxWidth int, style tcell.Style) int {
	if maxWidth <= 0 {
		return x
	}
	return s.DrawString(x, y, TruncateWithEllipsis(text, maxWidth), style)
}

// FillLine paints the rest of row y from column x
func (s *Screen) FillLine(x, y int, style tcell.Style) {
	w, _ := s.tcellScreen.Size()
	for ; x < w; x++ {
		s.SetCell(x, y, ' ', style)
	}
}

// PollEvent polls for the next event (key press, mouse, etc.)
func (s *Screen) PollEvent() tcell.Event {
	return s.tcellScreen.PollEvent()
}

// Show shows the screen
func (s *Screen) Show() {
	s.tcellScreen.Show()
}

// Sync redraws the whole screen, used after a resize
func (s *Screen) Sync() {
	s.tcellScreen.Sync()
}

// Size returns the width and height of the screen
func (s *Screen) Size() (int, int) {
	return s.tcellScreen.Size()
}

// EnableMouse enables mouse support on the screen
func (s *Screen) EnableMouse() {
	s.tcellScreen.EnableMouse()
}

func (s *Screen) style(fg tcell.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(fg).Background(s.Theme.Colors.Background)
}

// BackgroundStyle returns the default background style for the application
func (s *Screen) BackgroundStyle() tcell.Style {
	return tcell.StyleDefault.Background(s.Theme.Colors.Background)
}

// SectionStyle returns the style for section headers
func (s *Screen) SectionStyle() tcell.Style {
	return s.style(s.Theme.Colors.SectionName).Bold(true)
}

// ItemStyle returns the style for open items
func (s *Screen) ItemStyle() tcell.Style {
	return s.style(s.Theme.Colors.ItemText)
}

// CompletedStyle returns the style for checked items
func (s *Screen) CompletedStyle() tcell.Style {
	return s.style(s.Theme.Colors.CompletedText).StrikeThrough(true)
}

// CheckboxStyle returns the style for checkboxes
func (s *Screen) CheckboxStyle() tcell.Style {
	return s.style(s.Theme.Colors.Checkbox)
}

// SelectedStyle returns the style for the selection marker
func (s *Screen) SelectedStyle() tcell.Style {
	return s.style(s.Theme.Colors.Selected).Bold(true)
}

// ActiveMarkerStyle returns the style for the marker of the section being edited
func (s *Screen) ActiveMarkerStyle() tcell.Style {
	return s.style(s.Theme.Colors.ActiveMarker).Bold(true)
}

// ReminderStyle returns the style for upcoming reminders
func (s *Screen) ReminderStyle() tcell.Style {
	return s.style(s.Theme.Colors.Reminder)
}

// OverdueStyle returns the style for reminders in the past
func (s *Screen) OverdueStyle() tcell.Style {
	return s.style(s.Theme.Colors.Overdue)
}

// EditorStyle returns the style for text being edited
func (s *Screen) EditorStyle() tcell.Style {
	return s.style(s.Theme.Colors.EditorText).Underline(true)
}

// EditorCursorStyle returns the style for the editor caret
func (s *Screen) EditorCursorStyle() tcell.Style {
	return tcell.StyleDefault.Foreground(s.Theme.Colors.Background).Background(s.Theme.Colors.EditorCursor).Reverse(s.Theme.Colors.EditorCursor == tcell.ColorDefault)
}

// StatusMessageStyle returns the style for status messages
func (s *Screen) StatusMessageStyle() tcell.Style {
	return s.style(s.Theme.Colors.StatusMessage)
}

// StatusDirtyStyle returns the style for the unsaved indicator
func (s *Screen) StatusDirtyStyle() tcell.Style {
	return s.style(s.Theme.Colors.StatusDirty).Bold(true)
}

// ToolbarStyle returns the style for the toolbar and key hints
func (s *Screen) ToolbarStyle() tcell.Style {
	return s.style(s.Theme.Colors.Toolbar)
}
