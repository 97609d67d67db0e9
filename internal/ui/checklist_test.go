package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pstuifzand/subtasks/internal/focus"
	"github.com/pstuifzand/subtasks/internal/model"
	"github.com/pstuifzand/subtasks/internal/reminder"
)

func testScreen(t *testing.T, width, height int) (*Screen, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	screen, err := NewScreenFrom(sim, nil)
	if err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	sim.SetSize(width, height)
	t.Cleanup(func() { screen.Close() })
	return screen, sim
}

// screenLines returns the visible text of every row, right-trimmed
func screenLines(sim tcell.SimulationScreen) []string {
	sim.Show()
	cells, width, height := sim.GetContents()
	lines := make([]string, height)
	for y := 0; y < height; y++ {
		var b strings.Builder
		for x := 0; x < width; x++ {
			runes := cells[y*width+x].Runes
			if len(runes) == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(string(runes))
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

func checklistOutline() *model.Outline {
	return &model.Outline{Sections: []model.Section{
		{ID: "a", Name: "Groceries", Items: []model.Item{
			{ID: "a1", Text: "Milk"},
			{ID: "a2", Text: "Eggs", IsCompleted: true},
		}},
		{ID: "b", Items: []model.Item{{ID: "b1", Text: "Call mom"}}},
	}}
}

func TestRowsShowHeadersForNamedAndActiveSections(t *testing.T) {
	outline := checklistOutline()

	rows := Rows(outline, "")
	kinds := make([]RowKind, len(rows))
	for i, row := range rows {
		kinds[i] = row.Kind
	}
	expected := []RowKind{RowHeader, RowItem, RowItem, RowGap, RowItem}
	if len(kinds) != len(expected) {
		t.Fatalf("Expected %d rows, got %d: %v", len(expected), len(kinds), kinds)
	}
	for i := range expected {
		if kinds[i] != expected[i] {
			t.Errorf("Row %d: expected kind %d, got %d", i, expected[i], kinds[i])
		}
	}

	rows = Rows(outline, "b")
	last := rows[len(rows)-3:]
	if last[0].Kind != RowHeader || last[1].Kind != RowItem || last[2].Kind != RowControls {
		t.Errorf("Expected header, item and controls for active section, got %+v", last)
	}
}

func TestChecklistRender(t *testing.T) {
	screen, sim := testScreen(t, 40, 8)
	view := NewChecklistView()

	view.Render(screen, ViewState{Outline: checklistOutline(), Now: time.Now(), Formats: reminder.DefaultFormats}, 0, 8)

	lines := screenLines(sim)
	expected := []string{
		"› [ ] Groceries",
		"    [ ] Milk",
		"    [x] Eggs",
		"",
		"  [ ] Call mom",
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("Line %d: expected %q, got %q", i, want, lines[i])
		}
	}
}

func TestChecklistRenderActiveSectionWithEditor(t *testing.T) {
	screen, sim := testScreen(t, 40, 8)
	view := NewChecklistView()
	outline := checklistOutline()

	view.Render(screen, ViewState{
		Outline:  outline,
		ActiveID: "b",
		Field:    focus.ItemField("b", 0),
		Editor:   NewEditor("Call dad", 8),
		Now:      time.Now(),
		Formats:  reminder.DefaultFormats,
	}, 0, 8)

	lines := screenLines(sim)
	if lines[4] != "● [ ] Title" {
		t.Errorf("Expected empty title placeholder on active header, got %q", lines[4])
	}
	if lines[5] != "    [ ] Call dad" {
		t.Errorf("Expected editor text on item row, got %q", lines[5])
	}
	if !strings.Contains(lines[6], "[r] remind") {
		t.Errorf("Expected controls row, got %q", lines[6])
	}
}

func TestChecklistRenderReminderLabel(t *testing.T) {
	screen, sim := testScreen(t, 60, 4)
	view := NewChecklistView()
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	at := now.Add(5 * time.Minute)
	outline := &model.Outline{Sections: []model.Section{
		{ID: "a", Name: "Standup", ReminderTimestamp: &at, Items: []model.Item{{ID: "a1", Text: "Notes"}}},
	}}

	view.Render(screen, ViewState{Outline: outline, Now: now, Formats: reminder.DefaultFormats}, 0, 4)

	lines := screenLines(sim)
	want := reminder.RelativeText(at, now, reminder.DefaultFormats)
	if !strings.Contains(lines[0], want) {
		t.Errorf("Expected header to contain %q, got %q", want, lines[0])
	}
}

func TestChecklistSelectionScrolls(t *testing.T) {
	outline := model.NewOutline()
	for i := 0; i < 10; i++ {
		section := model.NewSection()
		section.Items[0].Text = "task"
		outline.Sections = append(outline.Sections, section)
	}
	screen, _ := testScreen(t, 20, 4)
	view := NewChecklistView()

	for i := 0; i < 20; i++ {
		view.SelectNext(outline)
	}
	if view.Selected(outline) != 9 {
		t.Fatalf("Expected selection clamped to 9, got %d", view.Selected(outline))
	}
	if view.SelectedID(outline) != outline.Sections[9].ID {
		t.Errorf("Expected selected id of last section")
	}

	view.Render(screen, ViewState{Outline: outline, Now: time.Now()}, 0, 4)
	// Rows alternate item, gap; the last item is row 18
	if view.viewportOffset != 15 {
		t.Errorf("Expected viewport offset 15, got %d", view.viewportOffset)
	}

	for i := 0; i < 20; i++ {
		view.SelectPrev(outline)
	}
	view.Render(screen, ViewState{Outline: outline, Now: time.Now()}, 0, 4)
	if view.viewportOffset != 0 {
		t.Errorf("Expected viewport offset 0, got %d", view.viewportOffset)
	}
}

func TestChecklistEmptyOutline(t *testing.T) {
	screen, sim := testScreen(t, 50, 3)
	view := NewChecklistView()
	outline := model.NewOutline()

	if view.SelectedID(outline) != "" {
		t.Errorf("Expected no selection")
	}
	view.Render(screen, ViewState{Outline: outline}, 0, 3)
	if !strings.Contains(screenLines(sim)[0], "Nothing to do") {
		t.Errorf("Expected empty state message")
	}
}
