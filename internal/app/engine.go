package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pstuifzand/subtasks/internal/clock"
	"github.com/pstuifzand/subtasks/internal/draft"
	"github.com/pstuifzand/subtasks/internal/focus"
	"github.com/pstuifzand/subtasks/internal/gate"
	"github.com/pstuifzand/subtasks/internal/model"
	"github.com/pstuifzand/subtasks/internal/storage"
)

// DefaultCheckboxDelay is how long a checked box stays in place before the
// item moves or its section goes away
const DefaultCheckboxDelay = 500 * time.Millisecond

var (
	// ErrSectionActive is returned for checkbox toggles on the section being edited
	ErrSectionActive = errors.New("section is being edited")
	// ErrClosed is returned by operations after Close
	ErrClosed = errors.New("engine is closed")
)

// EngineOptions wires an Engine to its collaborators
type EngineOptions struct {
	Outlines      *storage.OutlineStore
	Drafts        *draft.Store
	Clock         clock.Clock
	CheckboxDelay time.Duration
	Notices       *NoticeLog
	Logger        *slog.Logger
}

// Engine owns the working outline, the focus, the active section and the
// pending draft. It is the single writer: every method and every timer
// callback runs under one mutex and works on the current outline.
type Engine struct {
	mu sync.Mutex

	outlines      *storage.OutlineStore
	drafts        *draft.Store
	clock         clock.Clock
	checkboxDelay time.Duration
	notices       *NoticeLog
	logger        *slog.Logger

	outline   *model.Outline
	committed *model.Outline
	focus     focus.State
	gate      gate.Gate
	dirty     bool

	loaded bool
	closed bool
	timers map[*clock.Timer]struct{}
}

// NewEngine creates an engine with an empty outline. Call Load before use.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.CheckboxDelay <= 0 {
		opts.CheckboxDelay = DefaultCheckboxDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notices == nil {
		opts.Notices = NewNoticeLog(50, opts.Clock.Now)
	}
	return &Engine{
		outlines:      opts.Outlines,
		drafts:        opts.Drafts,
		clock:         opts.Clock,
		checkboxDelay: opts.CheckboxDelay,
		notices:       opts.Notices,
		logger:        opts.Logger.With("component", "engine"),
		outline:       model.NewOutline(),
		committed:     model.NewOutline(),
		timers:        make(map[*clock.Timer]struct{}),
	}
}

// Load reads the committed outline and recovers an unsaved draft if one is
// present. A recovered draft replaces the committed outline, restores the
// focus and active section, and is committed right away. Only the first
// call does anything.
func (e *Engine) Load() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return nil
	}

	outline, err := e.outlines.Load()
	if err != nil {
		return fmt.Errorf("failed to load outline: %w", err)
	}
	e.loaded = true
	e.outline = outline
	e.committed = outline.Clone()

	d := e.drafts.Load()
	if !d.IsDirty {
		return nil
	}

	e.outline = d.Outline()
	if e.outline.SectionIndex(d.ActiveSectionID) >= 0 {
		e.gate.Restore(d.ActiveSectionID)
	}
	if _, ok := d.Focus.Field.Text(e.outline); ok {
		e.focus = d.Focus
	}
	e.dirty = true
	e.logger.Info("draft restored", "sections", len(e.outline.Sections), "active", e.gate.Active(), "focus", e.focus)
	e.notices.Add(NoticeDraftRestored)
	e.commitLocked()
	return nil
}

// Outline returns a copy of the working outline
func (e *Engine) Outline() *model.Outline {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outline.Clone()
}

// Committed returns a copy of the last committed outline
func (e *Engine) Committed() *model.Outline {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committed.Clone()
}

// Focus returns the focused field and requested caret placement
func (e *Engine) Focus() focus.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focus
}

// ActiveSectionID returns the section being edited, or ""
func (e *Engine) ActiveSectionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gate.Active()
}

// IsDirty reports whether the working outline differs from the committed one
func (e *Engine) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Notices returns the notice log
func (e *Engine) Notices() *NoticeLog {
	return e.notices
}

// FocusField moves the keyboard into field and returns the caret offset the
// view should use. nativeCaret is where the view would put the caret by
// itself. Focusing a field of another section first settles and commits
// the section that was active.
func (e *Engine) FocusField(field focus.Field, nativeCaret int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, ErrClosed
	}
	return e.focusLocked(field, nativeCaret)
}

func (e *Engine) focusLocked(field focus.Field, nativeCaret int) (int, error) {
	if _, ok := field.Text(e.outline); !ok {
		return 0, fmt.Errorf("%w: %s", model.ErrItemOutOfRange, field)
	}

	e.activateLocked(field.SectionID)

	// Settling the previous section may have removed it but never touches
	// the one being entered.
	text, ok := field.Text(e.outline)
	if !ok {
		return 0, fmt.Errorf("%w: %s", model.ErrItemOutOfRange, field)
	}
	caret := focus.ResolveCaret(e.focus, field, text, nativeCaret)
	e.focus = focus.At(field, caret)
	e.observeLocked()
	return caret, nil
}

// activateLocked makes id the active section, settling and committing the
// section that was active before.
func (e *Engine) activateLocked(id string) {
	t := e.gate.Enter(id)
	if t.Exited == "" {
		return
	}
	e.logger.Debug("section switch", "exited", t.Exited, "entered", t.Entered)
	e.settleLocked(t.Exited)
	e.focus = focus.State{}
	if e.commitLocked() == nil {
		e.notices.Add(NoticeSaved)
	}
}

func (e *Engine) settleLocked(id string) {
	outline, outcome, err := gate.Settle(e.outline, id)
	if err != nil {
		e.logger.Warn("settle failed", "section", id, "error", err)
		return
	}
	if outline != e.outline {
		e.outline = outline
		e.dirty = true
	}
	e.logger.Debug("section settled", "section", id, "outcome", outcome)
}

// Blur drops keyboard focus without leaving the active section, as when
// focus moves to the toolbar.
func (e *Engine) Blur() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focus = focus.State{}
	e.observeLocked()
}

// HandleKey routes a structural key. When the result is not handled the
// view applies the key as ordinary text editing.
func (e *Engine) HandleKey(ev focus.Event) focus.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return focus.Result{Outline: e.outline}
	}

	ev.Active = e.gate.IsActive(ev.Field.SectionID)
	res := focus.Route(e.outline, ev)
	if res.Err != nil {
		e.logger.Warn("structural edit refused", "field", ev.Field, "error", res.Err)
	}
	if !res.Handled {
		return res
	}

	if res.Outline != e.outline {
		e.outline = res.Outline
		e.dirty = true
	}
	e.focus = res.Focus
	e.observeLocked()

	res.Outline = e.outline.Clone()
	return res
}

// EditText stores the new text of field after ordinary typing. caret is
// the caret offset after the edit.
func (e *Engine) EditText(field focus.Field, text string, caret int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	current, ok := field.Text(e.outline)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrItemOutOfRange, field)
	}
	if !e.gate.IsActive(field.SectionID) {
		e.activateLocked(field.SectionID)
	}

	if text != current {
		var (
			outline *model.Outline
			err     error
		)
		switch field.Kind {
		case focus.KindHeader:
			outline, err = e.outline.SetSectionName(field.SectionID, text)
		default:
			outline, err = e.outline.SetItemText(field.SectionID, field.ItemIndex, text)
		}
		if err != nil {
			e.logger.Warn("edit failed", "field", field, "error", err)
			return err
		}
		e.outline = outline
		e.dirty = true
	}

	e.focus = focus.At(field, caret)
	e.observeLocked()
	return nil
}

// ClickAway leaves the active section: it is settled, focus is cleared and
// the outline is committed.
func (e *Engine) ClickAway() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deactivateLocked()
}

// Confirm is the explicit "done" of the section controls. It behaves like
// ClickAway and also commits when nothing was active.
func (e *Engine) Confirm() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gate.Active() == "" {
		if !e.dirty {
			return nil
		}
		if err := e.commitLocked(); err != nil {
			return err
		}
		e.notices.Add(NoticeSaved)
		return nil
	}
	return e.deactivateLocked()
}

func (e *Engine) deactivateLocked() error {
	id := e.gate.Exit()
	if id == "" {
		return nil
	}
	e.settleLocked(id)
	e.focus = focus.State{}
	if err := e.commitLocked(); err != nil {
		return err
	}
	e.notices.Add(NoticeSaved)
	return nil
}

// AddSection prepends an empty singular task, makes it active and focuses
// its item. Returns the new section id.
func (e *Engine) AddSection() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", ErrClosed
	}

	section := model.NewSection()
	e.outline = e.outline.PrependSection(section)
	e.dirty = true
	if _, err := e.focusLocked(focus.ItemField(section.ID, 0), 0); err != nil {
		return "", err
	}
	return section.ID, nil
}

// AddSectionWithText prepends a complete section and commits it without
// touching focus. Each non-blank line of text becomes an item; an empty
// name with one line is a singular task.
func (e *Engine) AddSectionWithText(name, text string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", ErrClosed
	}

	section := model.NewSection()
	section.Name = strings.TrimSpace(name)
	section.Items = section.Items[:0]
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			section.Items = append(section.Items, model.NewItem(line))
		}
	}
	if len(section.Items) == 0 {
		if section.Name == "" {
			return "", errors.New("section needs a name or text")
		}
		section.Items = append(section.Items, model.NewItem(""))
	}

	e.outline = e.outline.PrependSection(section)
	e.dirty = true
	if err := e.commitLocked(); err != nil {
		return "", err
	}
	e.logger.Info("section added", "section", section.ID, "items", len(section.Items))
	return section.ID, nil
}

// ImportSections prepends sections in their given order and commits.
// Returns how many were added.
func (e *Engine) ImportSections(sections []model.Section) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, ErrClosed
	}
	if len(sections) == 0 {
		return 0, nil
	}

	outline := e.outline
	for i := len(sections) - 1; i >= 0; i-- {
		outline = outline.PrependSection(sections[i].Clone())
	}
	e.outline = outline
	e.dirty = true
	if err := e.commitLocked(); err != nil {
		return 0, err
	}
	e.logger.Info("sections imported", "count", len(sections))
	return len(sections), nil
}

// Reset removes every section and commits the empty outline
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTimersLocked()
	e.gate.Exit()
	e.focus = focus.State{}
	e.outline = model.NewOutline()
	e.dirty = true
	if err := e.commitLocked(); err != nil {
		return err
	}
	e.notices.Add(NoticeReset)
	return nil
}

// ToggleItem flips an item checkbox. Sections being edited cannot be
// toggled. After the checkbox delay the item moves (down into the
// completed block when checked, to the top when unchecked) or, when it was
// the last open item, the whole section is removed.
func (e *Engine) ToggleItem(sectionID, itemID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.gate.IsActive(sectionID) {
		return ErrSectionActive
	}

	section, ok := e.outline.FindSection(sectionID)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrSectionNotFound, sectionID)
	}
	idx := section.ItemIndex(itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", model.ErrItemNotFound, itemID)
	}

	outline, err := e.outline.SetItemCompleted(sectionID, itemID, !section.Items[idx].IsCompleted)
	if err != nil {
		return err
	}
	e.outline = outline
	e.dirty = true
	e.observeLocked()

	e.afterLocked(e.checkboxDelay, func() {
		e.settleItemLocked(sectionID, itemID)
	})
	return nil
}

func (e *Engine) settleItemLocked(sectionID, itemID string) {
	outline, outcome, err := e.outline.SettleItemCompletion(sectionID, itemID)
	if err != nil {
		// Removed or reset in the meantime
		e.logger.Debug("checkbox settle skipped", "section", sectionID, "item", itemID, "error", err)
		return
	}
	e.outline = outline
	e.dirty = true
	if err := e.commitLocked(); err != nil {
		return
	}
	if outcome == model.CompletionSectionRemoved {
		e.notices.Add(NoticeCompleted)
	}
}

// ToggleSection flips a section checkbox. A checked section is removed
// after the checkbox delay, together with any other checked section.
func (e *Engine) ToggleSection(sectionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.gate.IsActive(sectionID) {
		return ErrSectionActive
	}

	section, ok := e.outline.FindSection(sectionID)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrSectionNotFound, sectionID)
	}
	outline, err := e.outline.SetSectionCompleted(sectionID, !section.IsCompleted)
	if err != nil {
		return err
	}
	e.outline = outline
	e.dirty = true

	if section.IsCompleted {
		return e.commitLocked()
	}

	e.observeLocked()
	e.afterLocked(e.checkboxDelay, func() {
		outline, removed := e.outline.RemoveCompletedSections()
		if removed == 0 {
			return
		}
		e.outline = outline
		e.dirty = true
		if e.commitLocked() == nil {
			e.notices.Add(NoticeCompleted)
		}
	})
	return nil
}

// SetReminder sets (or clears, with nil) a section reminder and commits
func (e *Engine) SetReminder(sectionID string, at *time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	outline, err := e.outline.SetReminder(sectionID, at)
	if err != nil {
		return err
	}
	e.outline = outline
	e.dirty = true
	return e.commitLocked()
}

// ReminderSnapshot returns the committed sections and the active section id
// for the reminder scheduler.
func (e *Engine) ReminderSnapshot() ([]model.Section, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committed.Clone().Sections, e.gate.Active()
}

// ExpireReminder marks a fired reminder in the committed outline and in the
// working copy. In-progress edits stay uncommitted.
func (e *Engine) ExpireReminder(sectionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	committed, err := e.committed.ExpireReminder(sectionID)
	if err != nil {
		return err
	}
	if err := e.outlines.Save(committed); err != nil {
		return err
	}
	e.committed = committed

	if working, err := e.outline.ExpireReminder(sectionID); err == nil {
		e.outline = working
	}
	e.observeLocked()
	return nil
}

// Commit writes the working outline
func (e *Engine) Commit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commitLocked()
}

// commitLocked saves the working outline and clears the draft. A failed
// save adds a notice and leaves the outline dirty with its draft pending.
func (e *Engine) commitLocked() error {
	if err := e.outlines.Save(e.outline); err != nil {
		e.logger.Error("commit failed", "error", err)
		e.notices.Add(noticeNotSaved + err.Error())
		e.dirty = true
		e.observeLocked()
		return err
	}
	e.committed = e.outline.Clone()
	e.dirty = false
	if err := e.drafts.Clear(); err != nil {
		e.logger.Warn("failed to clear draft", "error", err)
	}
	return nil
}

// observeLocked hands the current editing state to the draft store
func (e *Engine) observeLocked() {
	e.drafts.Observe(draft.Draft{
		IsDirty:         e.dirty,
		Focus:           e.focus,
		ActiveSectionID: e.gate.Active(),
		Snapshot:        e.outline.Sections,
	})
}

// afterLocked runs f under the engine lock once d has passed
func (e *Engine) afterLocked(d time.Duration, f func()) {
	var t *clock.Timer
	t = e.clock.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.timers, t)
		if e.closed {
			return
		}
		f()
	})
	e.timers[t] = struct{}{}
}

func (e *Engine) stopTimersLocked() {
	for t := range e.timers {
		t.Stop()
	}
	clear(e.timers)
}

// Close cancels pending checkbox timers and writes any pending draft
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.stopTimersLocked()
	if err := e.drafts.Flush(); err != nil {
		return fmt.Errorf("failed to flush draft: %w", err)
	}
	return nil
}
