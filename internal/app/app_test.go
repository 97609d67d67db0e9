package app

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/subtasks/internal/draft"
	"github.com/pstuifzand/subtasks/internal/focus"
	"github.com/pstuifzand/subtasks/internal/history"
	"github.com/pstuifzand/subtasks/internal/model"
	"github.com/pstuifzand/subtasks/internal/notify"
	"github.com/pstuifzand/subtasks/internal/socket"
	"github.com/pstuifzand/subtasks/internal/ui"
)

type appFixture struct {
	*fixture
	app     *App
	sim     tcell.SimulationScreen
	player  *notify.RecordingPlayer
	clipped []string
}

func newAppFixture(t *testing.T, seed *model.Outline, seedDraft *draft.Draft) *appFixture {
	t.Helper()
	f := &appFixture{fixture: newFixture(t, seed, seedDraft), player: &notify.RecordingPlayer{}}

	f.sim = tcell.NewSimulationScreen("UTF-8")
	screen, err := ui.NewScreenFrom(f.sim, nil)
	require.NoError(t, err)
	f.sim.SetSize(60, 20)
	t.Cleanup(func() { screen.Close() })

	f.app = NewApp(Options{
		Screen: screen,
		Engine: f.engine,
		Player: f.player,
		Clock:  f.clk,
		Logger: f.logger,
		Clipboard: func(text string) error {
			f.clipped = append(f.clipped, text)
			return nil
		},
	})
	return f
}

func (f *appFixture) press(keys ...tcell.Key) {
	for _, k := range keys {
		f.app.handleEvent(tcell.NewEventKey(k, 0, tcell.ModNone))
	}
}

func (f *appFixture) typeText(text string) {
	for _, r := range text {
		f.app.handleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func (f *appFixture) lastLine() string {
	f.app.render()
	cells, width, height := f.sim.GetContents()
	var b strings.Builder
	for x := 0; x < width; x++ {
		b.WriteString(string(cells[(height-1)*width+x].Runes))
	}
	return b.String()
}

func TestAddTypeSplitAndConfirm(t *testing.T) {
	f := newAppFixture(t, nil, nil)

	f.typeText("a")
	require.Equal(t, ModeEdit, f.app.Mode())
	id := f.engine.ActiveSectionID()
	require.NotEmpty(t, id)

	f.typeText("milk")
	f.press(tcell.KeyEnter)
	f.typeText("eggs")
	assert.Equal(t, []string{"milk", "eggs"}, itemTexts(t, f.engine.Outline(), id))
	assert.Equal(t, focus.ItemField(id, 1), f.app.field)
	assert.True(t, f.engine.IsDirty())

	f.press(tcell.KeyEscape)
	assert.Equal(t, ModeBrowse, f.app.Mode())
	assert.Empty(t, f.engine.ActiveSectionID())
	assert.False(t, f.engine.IsDirty())
	assert.Equal(t, []string{"milk", "eggs"}, itemTexts(t, f.engine.Committed(), id))
}

func TestBackspaceMidTextEditsAndAtStartMerges(t *testing.T) {
	f := newAppFixture(t, outlineOf(section("s", "Errands", "buy", "milk")), nil)

	f.press(tcell.KeyEnter)
	require.Equal(t, focus.ItemField("s", 1), f.app.field)

	f.press(tcell.KeyBackspace2)
	assert.Equal(t, []string{"buy", "mil"}, itemTexts(t, f.engine.Outline(), "s"))

	f.press(tcell.KeyHome, tcell.KeyBackspace2)
	assert.Equal(t, []string{"buymil"}, itemTexts(t, f.engine.Outline(), "s"))
	assert.Equal(t, focus.ItemField("s", 0), f.app.field)
	assert.Equal(t, 3, f.app.editor.Caret())
}

func TestArrowDownReachesControlsAndSetsReminder(t *testing.T) {
	f := newAppFixture(t, outlineOf(section("s", "Errands", "post")), nil)

	f.press(tcell.KeyEnter, tcell.KeyDown)
	require.Equal(t, ModeControls, f.app.Mode())
	assert.Equal(t, "s", f.engine.ActiveSectionID())

	f.typeText("r")
	require.Equal(t, ModePrompt, f.app.Mode())
	f.typeText("15")
	f.press(tcell.KeyEnter)
	assert.Equal(t, ModeControls, f.app.Mode())

	s, ok := f.engine.Committed().FindSection("s")
	require.True(t, ok)
	require.NotNil(t, s.ReminderTimestamp)
	assert.True(t, s.ReminderTimestamp.Equal(start.Add(15*time.Minute)))

	f.press(tcell.KeyEnter)
	assert.Equal(t, ModeBrowse, f.app.Mode())
	assert.Empty(t, f.engine.ActiveSectionID())
}

func TestBadReminderInputAddsNotice(t *testing.T) {
	f := newAppFixture(t, outlineOf(section("s", "Errands", "post")), nil)

	f.typeText("r")
	f.typeText("soon")
	f.press(tcell.KeyEnter)

	assert.Equal(t, ModeBrowse, f.app.Mode())
	s, _ := f.engine.Committed().FindSection("s")
	assert.Nil(t, s.ReminderTimestamp)
	assert.Contains(t, f.lastLine(), "unrecognized")
}

func TestSpaceCompletesSingularTask(t *testing.T) {
	f := newAppFixture(t, outlineOf(section("one", "", "call mom"), section("two", "Errands", "post")), nil)

	f.typeText(" ")
	s, _ := f.engine.Outline().FindSection("one")
	assert.True(t, s.Items[0].IsCompleted)

	f.clk.Advance(DefaultCheckboxDelay)
	assert.Equal(t, -1, f.engine.Committed().SectionIndex("one"))
	assert.Contains(t, noticeTexts(f.engine), NoticeCompleted)
}

func TestNumberKeyTogglesItem(t *testing.T) {
	f := newAppFixture(t, outlineOf(section("s", "Errands", "post", "bank", "shop")), nil)

	f.typeText("1")
	f.clk.Advance(DefaultCheckboxDelay)

	assert.Equal(t, []string{"bank", "shop", "post"}, itemTexts(t, f.engine.Committed(), "s"))
}

func TestToggleWhileEditingIsRefused(t *testing.T) {
	f := newAppFixture(t, outlineOf(section("s", "Errands", "post")), nil)

	f.press(tcell.KeyEnter, tcell.KeyDown, tcell.KeyTab)
	require.Equal(t, ModeToolbar, f.app.Mode())
	f.press(tcell.KeyEscape)
	require.Equal(t, ModeControls, f.app.Mode())

	f.app.toggleSelected()
	assert.Contains(t, noticeTexts(f.engine), "Finish editing before checking off")
	s, _ := f.engine.Outline().FindSection("s")
	assert.False(t, s.Items[0].IsCompleted)
}

func TestYankCopiesSectionAsMarkdown(t *testing.T) {
	f := newAppFixture(t, outlineOf(section("s", "Errands", "post", "bank")), nil)

	f.typeText("y")

	require.Len(t, f.clipped, 1)
	assert.Equal(t, "- [ ] Errands\n  - [ ] post\n  - [ ] bank\n", f.clipped[0])
}

func TestSocketAddSectionAndList(t *testing.T) {
	f := newAppFixture(t, outlineOf(section("s", "Errands", "post")), nil)

	f.app.handleSocketMessage(socket.Message{Command: socket.CommandAddSection, Name: "Home", Text: "vacuum\n\ndishes"})
	committed := f.engine.Committed()
	require.Len(t, committed.Sections, 2)
	assert.Equal(t, "Home", committed.Sections[0].Name)

	resp := make(chan *socket.Response, 1)
	f.app.handleSocketMessage(socket.Message{Command: socket.CommandList, ResponseChan: resp})
	got := <-resp
	assert.True(t, got.Success)
	assert.Contains(t, got.Message, "- [ ] Home\n  - [ ] vacuum\n  - [ ] dishes\n")
	assert.Contains(t, got.Message, "- [ ] Errands\n")
}

func TestSocketSilenceStopsAlarm(t *testing.T) {
	f := newAppFixture(t, nil, nil)
	require.NoError(t, f.player.Play())

	resp := make(chan *socket.Response, 1)
	f.app.handleSocketMessage(socket.Message{Command: socket.CommandSilence, ResponseChan: resp})

	assert.True(t, (<-resp).Success)
	assert.False(t, f.player.IsPlaying())
}

func TestRestoredDraftResumesEditing(t *testing.T) {
	restored := outlineOf(section("s", "Errands", "buy milk"))
	f := newAppFixture(t, nil, &draft.Draft{
		IsDirty:         true,
		Focus:           focus.At(focus.ItemField("s", 0), 3),
		ActiveSectionID: "s",
		Snapshot:        restored.Sections,
	})

	assert.Equal(t, ModeEdit, f.app.Mode())
	assert.Equal(t, "buy milk", f.app.editor.Text())
	assert.Equal(t, 3, f.app.editor.Caret())
	assert.Contains(t, f.lastLine(), NoticeDraftRestored)
}

func TestStatusLineShowsModeAndDirty(t *testing.T) {
	f := newAppFixture(t, outlineOf(section("s", "Errands", "post")), nil)
	assert.Contains(t, f.lastLine(), "-- BROWSE --")

	f.press(tcell.KeyEnter)
	f.typeText("!")
	line := f.lastLine()
	assert.Contains(t, line, "-- EDIT --")
	assert.Contains(t, line, "(unsaved)")
}

func TestQuitCommitsActiveSection(t *testing.T) {
	f := newAppFixture(t, outlineOf(section("s", "Errands", "post")), nil)

	f.press(tcell.KeyEnter)
	f.typeText("s")
	f.typeText("q")
	assert.False(t, f.app.quit, "q is text while editing")

	require.NoError(t, f.app.shutdown())
	assert.Equal(t, []string{"postsq"}, itemTexts(t, f.engine.Committed(), "s"))
	assert.False(t, f.drafts.Pending())
}

func TestReminderPromptRemembersInput(t *testing.T) {
	f := newAppFixture(t, outlineOf(section("s", "Errands", "post")), nil)
	hist, err := history.NewManager(t.TempDir())
	require.NoError(t, err)
	f.app.history = hist

	f.typeText("r")
	f.typeText("45")
	f.press(tcell.KeyEnter)

	entries, err := hist.Load(reminderHistoryFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"45"}, entries)

	f.typeText("r")
	f.press(tcell.KeyUp, tcell.KeyEnter)
	s, _ := f.engine.Committed().FindSection("s")
	require.NotNil(t, s.ReminderTimestamp)
	assert.True(t, s.ReminderTimestamp.Equal(start.Add(45*time.Minute)))
}
