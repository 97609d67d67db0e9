package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"

	"github.com/pstuifzand/subtasks/internal/clock"
	"github.com/pstuifzand/subtasks/internal/export"
	"github.com/pstuifzand/subtasks/internal/focus"
	"github.com/pstuifzand/subtasks/internal/history"
	"github.com/pstuifzand/subtasks/internal/model"
	"github.com/pstuifzand/subtasks/internal/notify"
	"github.com/pstuifzand/subtasks/internal/reminder"
	"github.com/pstuifzand/subtasks/internal/socket"
	"github.com/pstuifzand/subtasks/internal/ui"
)

// Mode is what currently receives key presses
type Mode int

const (
	ModeBrowse Mode = iota
	ModeEdit
	ModeControls
	ModeToolbar
	ModePrompt
)

func (m Mode) String() string {
	switch m {
	case ModeEdit:
		return "EDIT"
	case ModeControls:
		return "CONTROLS"
	case ModeToolbar:
		return "TOOLBAR"
	case ModePrompt:
		return "PROMPT"
	default:
		return "BROWSE"
	}
}

// Options wires the terminal application
type Options struct {
	Screen    *ui.Screen
	Engine    *Engine
	Server    *socket.Server
	Scheduler *reminder.Scheduler
	Player    notify.Player
	Clock     clock.Clock
	Formats   reminder.Formats
	// NoticeDuration is how long a notice stays in the status line
	NoticeDuration time.Duration
	// Clipboard copies text to the system clipboard
	Clipboard func(text string) error
	// History keeps typed reminder times; nil disables recall
	History *history.Manager
	Logger  *slog.Logger
}

// reminderHistoryFile holds the reminder prompt history
const reminderHistoryFile = "reminder.toml"

// App is the main application controller
type App struct {
	screen    *ui.Screen
	engine    *Engine
	server    *socket.Server
	scheduler *reminder.Scheduler
	player    notify.Player
	clock     clock.Clock
	formats   reminder.Formats
	history   *history.Manager
	logger    *slog.Logger

	view     *ui.ChecklistView
	editor   *ui.Editor
	prompt   *ui.Prompt
	help     *ui.HelpScreen
	bindings []KeyBinding

	mode          Mode
	field         focus.Field
	promptSection string
	noticeAge     time.Duration
	clipboard     func(string) error
	quit          bool
}

// NewApp creates a new App instance. The engine must be loaded.
func NewApp(opts Options) *App {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NoticeDuration <= 0 {
		opts.NoticeDuration = 2 * time.Second
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Formats == (reminder.Formats{}) {
		opts.Formats = reminder.DefaultFormats
	}

	a := &App{
		screen:    opts.Screen,
		engine:    opts.Engine,
		server:    opts.Server,
		scheduler: opts.Scheduler,
		player:    opts.Player,
		clock:     opts.Clock,
		formats:   opts.Formats,
		history:   opts.History,
		logger:    opts.Logger.With("component", "app"),
		view:      ui.NewChecklistView(),
		editor:    ui.NewEditor("", 0),
		prompt:    ui.NewPrompt(),
		noticeAge: opts.NoticeDuration,
		clipboard: opts.Clipboard,
	}
	a.bindings = a.InitializeKeybindings()
	a.help = ui.NewHelpScreen(helpBindings(a.bindings))

	// A draft restored with focus puts the user back where they were
	if state := a.engine.Focus(); !state.IsZero() {
		a.startEdit(state.Field)
	} else if active := a.engine.ActiveSectionID(); active != "" {
		a.mode = ModeControls
		a.view.Select(a.engine.Outline(), active)
	}
	return a
}

// Run starts the main event loop. It returns when the user quits or ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			event := a.screen.PollEvent()
			if event == nil {
				close(eventChan)
				return
			}
			select {
			case eventChan <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	if a.scheduler != nil {
		go func() {
			if err := a.scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("reminder scheduler stopped", "error", err)
			}
		}()
	}

	var messages <-chan socket.Message
	if a.server != nil {
		a.server.Start()
		messages = a.server.Messages()
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	a.render()
	for !a.quit {
		select {
		case <-ctx.Done():
			a.quit = true
		case ev, ok := <-eventChan:
			if !ok {
				a.quit = true
				break
			}
			a.handleEvent(ev)
		case msg := <-messages:
			a.handleSocketMessage(msg)
		case <-ticker.C:
			a.render()
		}
	}

	return a.shutdown()
}

// shutdown leaves the active section so its edits are committed, then
// flushes the draft
func (a *App) shutdown() error {
	if err := a.engine.ClickAway(); err != nil {
		a.logger.Error("failed to save on quit", "error", err)
	}
	if a.player != nil {
		a.player.Stop()
	}
	if a.server != nil {
		a.server.Stop()
	}
	return a.engine.Close()
}

// render renders the current state to the screen
func (a *App) render() {
	a.screen.Clear()
	width, height := a.screen.Size()

	outline := a.engine.Outline()
	now := a.clock.Now()

	title := fmt.Sprintf(" Subtasks (%d) ", len(outline.Sections))
	a.screen.DrawString(0, 0, title, a.screen.SectionStyle())

	state := ui.ViewState{
		Outline:  outline,
		ActiveID: a.engine.ActiveSectionID(),
		Controls: a.mode == ModeControls,
		Now:      now,
		Formats:  a.formats,
	}
	if a.mode == ModeEdit {
		state.Field = a.field
		state.Editor = a.editor
	}
	a.view.Render(a.screen, state, 2, max(0, height-4))

	if a.prompt.IsActive() {
		a.prompt.Render(a.screen, height-2)
	} else {
		style := a.screen.ToolbarStyle()
		if a.mode == ModeToolbar {
			style = a.screen.SelectedStyle()
		}
		a.screen.DrawStringLimited(0, height-2, a.hints(), width, style)
	}

	status := "-- " + a.mode.String() + " --"
	if notice, ok := a.engine.Notices().Latest(a.noticeAge); ok {
		status += " " + notice.Text
	}
	x := a.screen.DrawStringLimited(0, height-1, status, width, a.screen.StatusMessageStyle())
	if a.engine.IsDirty() {
		a.screen.DrawStringLimited(x+1, height-1, "(unsaved)", width-x-1, a.screen.StatusDirtyStyle())
	}

	a.help.Render(a.screen)
	a.screen.Show()
}

func (a *App) hints() string {
	switch a.mode {
	case ModeEdit:
		return "Enter new item  Tab toolbar  Esc done"
	case ModeControls:
		return "r remind  x clear reminder  Enter done  ↑ back"
	case ModeToolbar:
		return "[a] add  [D] remove all  [s] silence  [q] quit  Esc back"
	default:
		return "a add  Enter edit  Space check  r remind  ? help  q quit"
	}
}

// handleEvent processes raw input events
func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		a.handleKey(ev)
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	if a.help.IsVisible() {
		if ev.Key() == tcell.KeyEscape || ev.Rune() == '?' {
			a.help.Toggle()
		}
		return
	}

	switch a.mode {
	case ModePrompt:
		a.handlePromptKey(ev)
	case ModeEdit:
		a.handleEditKey(ev)
	case ModeControls:
		a.handleControlsKey(ev)
	case ModeToolbar:
		a.handleToolbarKey(ev)
	default:
		a.handleBrowseKey(ev)
	}
}

// startEdit focuses field and loads its text into the editor, with the
// caret at the end unless the engine has a pending offset for it
func (a *App) startEdit(field focus.Field) {
	outline := a.engine.Outline()
	text, ok := field.Text(outline)
	if !ok {
		a.mode = ModeBrowse
		return
	}
	caret, err := a.engine.FocusField(field, model.TextLen(text))
	if err != nil {
		a.logger.Warn("focus failed", "field", field, "error", err)
		a.mode = ModeBrowse
		return
	}
	// Focusing may settle another section, so read the text again
	text, _ = field.Text(a.engine.Outline())
	a.field = field
	a.editor.Reset(text, caret)
	a.mode = ModeEdit
	a.view.Select(a.engine.Outline(), field.SectionID)
}

func (a *App) handleEditKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlS:
		a.confirm()
		return
	}

	if k, ok := ui.StructuralKey(ev); ok {
		res := a.engine.HandleKey(focus.Event{Field: a.field, Cursor: a.editor.Caret(), Key: k})
		if res.Handled {
			a.applyRoute(res)
			return
		}
		// A single line has nowhere to go, so up and down jump to its ends
		switch k {
		case focus.KeyArrowUp:
			a.editor.SetCaret(0)
			return
		case focus.KeyArrowDown:
			a.editor.SetCaret(len([]rune(a.editor.Text())))
			return
		case focus.KeyEnter, focus.KeyTab:
			return
		}
	}

	before := a.editor.Text()
	if !a.editor.HandleKey(ev) {
		return
	}
	if err := a.engine.EditText(a.field, a.editor.Text(), a.editor.Caret()); err != nil {
		a.logger.Warn("edit rejected", "field", a.field, "error", err)
		a.editor.Reset(before, a.editor.Caret())
	}
}

// applyRoute follows a handled structural key to its new focus
func (a *App) applyRoute(res focus.Result) {
	switch res.External {
	case focus.ExternalSectionControls:
		a.mode = ModeControls
		return
	case focus.ExternalToolbar:
		a.mode = ModeToolbar
		return
	}
	if res.Focus.IsZero() {
		a.mode = ModeBrowse
		return
	}
	a.startEdit(res.Focus.Field)
}

// confirm leaves the active section, settling and committing it
func (a *App) confirm() {
	if err := a.engine.Confirm(); err != nil {
		a.logger.Error("failed to save", "error", err)
	}
	a.mode = ModeBrowse
	a.field = focus.Field{}
}

func (a *App) handleControlsKey(ev *tcell.EventKey) {
	active := a.engine.ActiveSectionID()
	if active == "" {
		a.mode = ModeBrowse
		a.handleBrowseKey(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyEnter, tcell.KeyEscape, tcell.KeyCtrlS:
		a.confirm()
		return
	case tcell.KeyUp, tcell.KeyBacktab:
		if section, ok := a.engine.Outline().FindSection(active); ok && len(section.Items) > 0 {
			a.startEdit(focus.ItemField(active, len(section.Items)-1))
		}
		return
	case tcell.KeyTab:
		a.mode = ModeToolbar
		return
	}

	switch ev.Rune() {
	case 'r':
		a.startReminderPrompt(active)
	case 'x':
		a.clearReminder(active)
	}
}

func (a *App) handleToolbarKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyTab, tcell.KeyBacktab:
		if a.engine.ActiveSectionID() != "" {
			a.mode = ModeControls
		} else {
			a.mode = ModeBrowse
		}
		return
	}

	switch ev.Rune() {
	case 'a':
		a.addSection()
	case 'D':
		a.reset()
	case 's':
		a.silence()
	case 'q':
		a.quit = true
	}
}

func (a *App) handleBrowseKey(ev *tcell.EventKey) {
	outline := a.engine.Outline()

	switch ev.Key() {
	case tcell.KeyDown:
		a.view.SelectNext(outline)
		return
	case tcell.KeyUp:
		a.view.SelectPrev(outline)
		return
	case tcell.KeyEnter:
		a.editSelected()
		return
	case tcell.KeyTab:
		a.mode = ModeToolbar
		return
	case tcell.KeyCtrlS:
		a.confirm()
		return
	}

	r := ev.Rune()
	if r >= '1' && r <= '9' {
		a.toggleItem(int(r - '1'))
		return
	}
	for _, kb := range a.bindings {
		if kb.Key == r {
			kb.Handler(a)
			return
		}
	}
}

// selectedSection returns the selected section of the working outline
func (a *App) selectedSection() (model.Section, bool) {
	outline := a.engine.Outline()
	return outline.FindSection(a.view.SelectedID(outline))
}

func (a *App) editSelected() {
	section, ok := a.selectedSection()
	if !ok || len(section.Items) == 0 {
		return
	}
	a.startEdit(focus.ItemField(section.ID, len(section.Items)-1))
}

func (a *App) addSection() {
	id, err := a.engine.AddSection()
	if err != nil {
		a.logger.Error("failed to add section", "error", err)
		return
	}
	a.startEdit(focus.ItemField(id, 0))
}

func (a *App) reset() {
	if err := a.engine.Reset(); err != nil {
		a.logger.Error("failed to reset", "error", err)
	}
	a.mode = ModeBrowse
	a.field = focus.Field{}
}

func (a *App) silence() {
	if a.player != nil && a.player.IsPlaying() {
		a.player.Stop()
	}
}

// toggleSelected checks the selected section. A singular task has no
// header, so its item is toggled instead.
func (a *App) toggleSelected() {
	section, ok := a.selectedSection()
	if !ok {
		return
	}
	var err error
	if section.IsSingular() && len(section.Items) > 0 {
		err = a.engine.ToggleItem(section.ID, section.Items[0].ID)
	} else {
		err = a.engine.ToggleSection(section.ID)
	}
	a.reportToggle(err)
}

func (a *App) toggleItem(index int) {
	section, ok := a.selectedSection()
	if !ok || index >= len(section.Items) {
		return
	}
	a.reportToggle(a.engine.ToggleItem(section.ID, section.Items[index].ID))
}

func (a *App) reportToggle(err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrSectionActive):
		a.engine.Notices().Add("Finish editing before checking off")
	default:
		a.logger.Warn("toggle failed", "error", err)
	}
}

func (a *App) startReminderPrompt(sectionID string) {
	initial := ""
	if section, ok := a.engine.Outline().FindSection(sectionID); ok && section.ReminderTimestamp != nil && !section.IsReminderExpired {
		initial = section.ReminderTimestamp.In(a.clock.Now().Location()).Format("2006-01-02 15:04")
	}
	if a.history != nil {
		entries, err := a.history.Load(reminderHistoryFile)
		if err != nil {
			a.logger.Warn("failed to load reminder history", "error", err)
		}
		a.prompt.SetHistory(entries)
	}
	a.promptSection = sectionID
	a.prompt.Start("Remind at (minutes, 1h30m, 15:04):", initial)
	a.mode = ModePrompt
}

func (a *App) handlePromptKey(ev *tcell.EventKey) {
	input, done, ok := a.prompt.HandleKey(ev)
	if !done {
		return
	}
	a.mode = a.modeAfterPrompt()
	if !ok {
		return
	}

	at, err := reminder.ParseWhen(input, a.clock.Now())
	if err != nil {
		a.engine.Notices().Add(err.Error())
		return
	}
	if err := a.engine.SetReminder(a.promptSection, &at); err != nil {
		a.logger.Error("failed to set reminder", "section", a.promptSection, "error", err)
		return
	}
	if a.history != nil {
		if _, err := a.history.Add(reminderHistoryFile, input); err != nil {
			a.logger.Warn("failed to save reminder history", "error", err)
		}
	}
	a.engine.Notices().Add("Reminder set for " + reminder.RelativeText(at, a.clock.Now(), a.formats))
}

func (a *App) modeAfterPrompt() Mode {
	if a.engine.ActiveSectionID() == a.promptSection && a.promptSection != "" {
		return ModeControls
	}
	return ModeBrowse
}

func (a *App) clearReminder(sectionID string) {
	if err := a.engine.SetReminder(sectionID, nil); err != nil {
		a.logger.Error("failed to clear reminder", "section", sectionID, "error", err)
		return
	}
	a.engine.Notices().Add("Reminder cleared")
}

// yank copies the selected section to the clipboard as a markdown checklist
func (a *App) yank() {
	section, ok := a.selectedSection()
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteMarkdown(&buf, &model.Outline{Sections: []model.Section{section}}); err != nil {
		a.logger.Error("failed to format section", "error", err)
		return
	}
	if err := a.clipboard(buf.String()); err != nil {
		a.logger.Warn("clipboard unavailable", "error", err)
		a.engine.Notices().Add("Clipboard unavailable")
		return
	}
	a.engine.Notices().Add("Copied to clipboard")
}

// Mode returns the current input mode
func (a *App) Mode() Mode {
	return a.mode
}

// Quit signals the app to quit
func (a *App) Quit() {
	a.quit = true
}
