package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/subtasks/internal/clock"
	"github.com/pstuifzand/subtasks/internal/draft"
	"github.com/pstuifzand/subtasks/internal/focus"
	"github.com/pstuifzand/subtasks/internal/model"
	"github.com/pstuifzand/subtasks/internal/storage"
)

var start = time.Date(2024, 6, 3, 15, 4, 0, 0, time.UTC)

type fixture struct {
	engine      *Engine
	clk         *clock.FakeClock
	outlineBlob *storage.MemoryStore
	draftBlob   *storage.MemoryStore
	drafts      *draft.Store
	logger      *slog.Logger
}

func newFixture(t *testing.T, seed *model.Outline, seedDraft *draft.Draft) *fixture {
	t.Helper()
	f := &fixture{
		clk:         clock.Fake(start),
		outlineBlob: storage.NewMemoryStore(),
		draftBlob:   storage.NewMemoryStore(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	outlines := storage.NewOutlineStore(f.outlineBlob, nil, f.logger)
	if seed != nil {
		require.NoError(t, outlines.Save(seed))
	}
	if seedDraft != nil {
		writer := draft.NewStore(f.draftBlob, f.clk, time.Millisecond, f.logger)
		writer.Observe(*seedDraft)
		require.NoError(t, writer.Flush())
	}

	f.drafts = draft.NewStore(f.draftBlob, f.clk, draft.DefaultDebounce, f.logger)
	f.engine = NewEngine(EngineOptions{
		Outlines: outlines,
		Drafts:   f.drafts,
		Clock:    f.clk,
		Logger:   f.logger,
	})
	require.NoError(t, f.engine.Load())
	return f
}

func section(id, name string, texts ...string) model.Section {
	s := model.Section{ID: id, Name: name}
	for i, text := range texts {
		s.Items = append(s.Items, model.Item{ID: fmt.Sprintf("%s-%d", id, i), Text: text})
	}
	return s
}

func outlineOf(sections ...model.Section) *model.Outline {
	return &model.Outline{Sections: sections}
}

func itemTexts(t *testing.T, o *model.Outline, id string) []string {
	t.Helper()
	s, ok := o.FindSection(id)
	require.True(t, ok, "section %s missing from %s", id, spew.Sdump(o))
	texts := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		texts = append(texts, item.Text)
	}
	return texts
}

func noticeTexts(e *Engine) []string {
	var texts []string
	for _, n := range e.Notices().All() {
		texts = append(texts, n.Text)
	}
	return texts
}

func TestLoadRestoresDirtyDraft(t *testing.T) {
	committed := outlineOf(section("old", "", "stale"))
	restored := outlineOf(section("s1", "Errands", "buy milk", "post"))
	caret := 3

	f := newFixture(t, committed, &draft.Draft{
		IsDirty:         true,
		Focus:           focus.At(focus.ItemField("s1", 0), caret),
		ActiveSectionID: "s1",
		Snapshot:        restored.Sections,
	})
	e := f.engine

	assert.Equal(t, restored, e.Outline())
	assert.Equal(t, restored, e.Committed())
	assert.False(t, e.IsDirty())
	assert.Equal(t, "s1", e.ActiveSectionID())
	assert.Equal(t, focus.At(focus.ItemField("s1", 0), caret), e.Focus())
	assert.Equal(t, []string{NoticeDraftRestored}, noticeTexts(e))
	assert.False(t, f.drafts.Load().IsDirty, "draft should be cleared after restoring")

	require.NoError(t, e.Load())
	assert.Len(t, noticeTexts(e), 1, "load runs once")
}

func TestLoadIgnoresCleanDraft(t *testing.T) {
	committed := outlineOf(section("s1", "", "water plants"))
	f := newFixture(t, committed, &draft.Draft{Snapshot: outlineOf(section("x", "", "nope")).Sections})

	assert.Equal(t, committed, f.engine.Outline())
	assert.Empty(t, noticeTexts(f.engine))
	assert.Equal(t, "", f.engine.ActiveSectionID())
}

func TestLoadDropsUnknownActiveSection(t *testing.T) {
	snapshot := outlineOf(section("s1", "", "a"))
	f := newFixture(t, nil, &draft.Draft{
		IsDirty:         true,
		Focus:           focus.End(focus.ItemField("gone", 4)),
		ActiveSectionID: "gone",
		Snapshot:        snapshot.Sections,
	})

	assert.Equal(t, "", f.engine.ActiveSectionID())
	assert.True(t, f.engine.Focus().IsZero())
}

func TestClickAwayRemovesEmptySection(t *testing.T) {
	f := newFixture(t, outlineOf(
		section("empty", "", "", ""),
		section("keep", "", "call mom"),
	), nil)
	e := f.engine

	_, err := e.FocusField(focus.ItemField("empty", 1), 0)
	require.NoError(t, err)
	assert.Equal(t, "empty", e.ActiveSectionID())

	require.NoError(t, e.ClickAway())

	assert.Equal(t, outlineOf(section("keep", "", "call mom")), e.Outline())
	assert.Equal(t, e.Outline(), e.Committed())
	assert.Equal(t, "", e.ActiveSectionID())
	assert.True(t, e.Focus().IsZero())
	assert.False(t, e.IsDirty())
	assert.Equal(t, []string{NoticeSaved}, noticeTexts(e))
}

func TestClickAwayWithoutActiveSection(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "", "a")), nil)
	writes := f.outlineBlob.Writes()

	require.NoError(t, f.engine.ClickAway())
	assert.Equal(t, writes, f.outlineBlob.Writes())
	assert.Empty(t, noticeTexts(f.engine))
}

func TestFocusOtherSectionSettlesPrevious(t *testing.T) {
	f := newFixture(t, outlineOf(
		section("s1", "Errands", "", ""),
		section("s2", "", "read"),
	), nil)
	e := f.engine

	_, err := e.FocusField(focus.Header("s1"), 7)
	require.NoError(t, err)
	_, err = e.FocusField(focus.ItemField("s2", 0), 2)
	require.NoError(t, err)

	outline := e.Committed()
	assert.Equal(t, []string{"Errands"}, itemTexts(t, outline, "s1"))
	s1, _ := outline.FindSection("s1")
	assert.Equal(t, "", s1.Name)
	assert.Equal(t, "s2", e.ActiveSectionID())
	assert.Equal(t, focus.At(focus.ItemField("s2", 0), 2), e.Focus())
}

func TestFocusFieldResolvesCaret(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "", "buy milk")), nil)
	e := f.engine

	caret, err := e.FocusField(focus.ItemField("s1", 0), 42)
	require.NoError(t, err)
	assert.Equal(t, 8, caret, "native caret is clamped")

	res := e.HandleKey(focus.Event{Field: focus.ItemField("s1", 0), Cursor: 3, Key: focus.KeyEnter})
	require.True(t, res.Handled)

	caret, err = e.FocusField(res.Focus.Field, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, caret, "router placement wins over the native caret")

	_, err = e.FocusField(focus.ItemField("s1", 9), 0)
	assert.ErrorIs(t, err, model.ErrItemOutOfRange)
}

func TestEnterSplitsAndWritesDraft(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "", "buy milk")), nil)
	e := f.engine

	_, err := e.FocusField(focus.ItemField("s1", 0), 3)
	require.NoError(t, err)

	res := e.HandleKey(focus.Event{Field: focus.ItemField("s1", 0), Cursor: 3, Key: focus.KeyEnter})
	require.True(t, res.Handled)
	assert.Equal(t, []string{"buy", " milk"}, itemTexts(t, e.Outline(), "s1"))
	assert.Equal(t, focus.At(focus.ItemField("s1", 1), 0), e.Focus())
	assert.True(t, e.IsDirty())
	assert.Equal(t, []string{"buy milk"}, itemTexts(t, e.Committed(), "s1"))

	assert.True(t, f.drafts.Pending())
	f.clk.Advance(draft.DefaultDebounce)
	assert.False(t, f.drafts.Pending())

	saved := f.drafts.Load()
	assert.True(t, saved.IsDirty)
	assert.Equal(t, "s1", saved.ActiveSectionID)
	assert.Equal(t, e.Focus(), saved.Focus)
	assert.Equal(t, []string{"buy", " milk"}, itemTexts(t, saved.Outline(), "s1"))
}

func TestUnhandledKeyChangesNothing(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "", "milk")), nil)
	e := f.engine

	_, err := e.FocusField(focus.ItemField("s1", 0), 2)
	require.NoError(t, err)
	before := e.Focus()

	res := e.HandleKey(focus.Event{Field: focus.ItemField("s1", 0), Cursor: 2, Key: focus.KeyBackspace})
	assert.False(t, res.Handled)
	assert.Equal(t, before, e.Focus())
	assert.False(t, e.IsDirty())
}

func TestArrowDownPastLastItemLeavesFields(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "", "a")), nil)
	e := f.engine

	_, err := e.FocusField(focus.ItemField("s1", 0), 1)
	require.NoError(t, err)

	res := e.HandleKey(focus.Event{Field: focus.ItemField("s1", 0), Cursor: 1, Key: focus.KeyArrowDown})
	assert.True(t, res.Handled)
	assert.Equal(t, focus.ExternalSectionControls, res.External)
	assert.True(t, e.Focus().IsZero())
	assert.Equal(t, "s1", e.ActiveSectionID())

	require.NoError(t, e.Confirm())
	assert.Equal(t, "", e.ActiveSectionID())
}

func TestEditTextActivatesAndMarksDirty(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "", "mil")), nil)
	e := f.engine

	require.NoError(t, e.EditText(focus.ItemField("s1", 0), "milk", 4))
	assert.Equal(t, "s1", e.ActiveSectionID())
	assert.True(t, e.IsDirty())
	assert.Equal(t, focus.At(focus.ItemField("s1", 0), 4), e.Focus())
	assert.Equal(t, []string{"milk"}, itemTexts(t, e.Outline(), "s1"))

	require.NoError(t, e.EditText(focus.Header("s1"), "Shop", 4))
	s1, _ := e.Outline().FindSection("s1")
	assert.Equal(t, "Shop", s1.Name)
}

func TestActiveSectionExclusivity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	f := newFixture(t, outlineOf(
		section("a", "A", "1", "2"),
		section("b", "", "3"),
		section("c", "C", "4", "5", "6"),
	), nil)
	e := f.engine

	for step := 0; step < 300; step++ {
		outline := e.Outline()
		if len(outline.Sections) == 0 {
			break
		}
		target := outline.Sections[rng.Intn(len(outline.Sections))]

		switch rng.Intn(5) {
		case 0:
			e.ClickAway()
		case 1:
			e.FocusField(focus.Header(target.ID), 0)
		case 2:
			e.EditText(focus.ItemField(target.ID, 0), "", 0)
		default:
			idx := rng.Intn(len(target.Items))
			e.FocusField(focus.ItemField(target.ID, idx), 0)
		}

		active := e.ActiveSectionID()
		if active != "" {
			assert.GreaterOrEqual(t, e.Outline().SectionIndex(active), 0, "step %d: active section %s missing", step, active)
		}
		if field := e.Focus().Field; !field.IsZero() {
			assert.Equal(t, active, field.SectionID, "step %d: focus outside active section", step)
		}
	}
}

func TestToggleItemMovesAfterDelay(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "List", "a", "b", "c")), nil)
	e := f.engine

	require.NoError(t, e.ToggleItem("s1", "s1-0"))
	s1, _ := e.Outline().FindSection("s1")
	assert.True(t, s1.Items[0].IsCompleted, "checked immediately")
	assert.Equal(t, []string{"a", "b", "c"}, itemTexts(t, e.Outline(), "s1"))

	f.clk.Advance(DefaultCheckboxDelay - time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, itemTexts(t, e.Outline(), "s1"))

	f.clk.Advance(time.Millisecond)
	assert.Equal(t, []string{"b", "c", "a"}, itemTexts(t, e.Outline(), "s1"))
	assert.Equal(t, e.Outline(), e.Committed())
	assert.False(t, e.IsDirty())

	// Unchecking moves the item back to the top
	require.NoError(t, e.ToggleItem("s1", "s1-0"))
	f.clk.Advance(DefaultCheckboxDelay)
	assert.Equal(t, []string{"a", "b", "c"}, itemTexts(t, e.Outline(), "s1"))
}

func TestToggleLastItemRemovesSection(t *testing.T) {
	f := newFixture(t, outlineOf(
		section("s1", "List", "a", "b"),
		section("s2", "", "other"),
	), nil)
	e := f.engine

	require.NoError(t, e.ToggleItem("s1", "s1-0"))
	require.NoError(t, e.ToggleItem("s1", "s1-1"))
	f.clk.Advance(DefaultCheckboxDelay)

	assert.Equal(t, outlineOf(section("s2", "", "other")), e.Committed())
	assert.Contains(t, noticeTexts(e), NoticeCompleted)
}

func TestToggleRejectedWhileActive(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "", "a")), nil)
	e := f.engine

	_, err := e.FocusField(focus.ItemField("s1", 0), 0)
	require.NoError(t, err)

	assert.ErrorIs(t, e.ToggleItem("s1", "s1-0"), ErrSectionActive)
	assert.ErrorIs(t, e.ToggleSection("s1"), ErrSectionActive)
	assert.ErrorIs(t, e.ToggleItem("s1", "nope"), ErrSectionActive)

	require.NoError(t, e.ClickAway())
	assert.ErrorIs(t, e.ToggleItem("s1", "nope"), model.ErrItemNotFound)
	assert.ErrorIs(t, e.ToggleSection("nope"), model.ErrSectionNotFound)
}

func TestToggleSectionRemovesAfterDelay(t *testing.T) {
	f := newFixture(t, outlineOf(
		section("s1", "Done", "a"),
		section("s2", "", "b"),
	), nil)
	e := f.engine

	require.NoError(t, e.ToggleSection("s1"))
	s1, ok := e.Outline().FindSection("s1")
	require.True(t, ok)
	assert.True(t, s1.IsCompleted)

	f.clk.Advance(DefaultCheckboxDelay)
	assert.Equal(t, outlineOf(section("s2", "", "b")), e.Committed())
}

func TestToggleSectionUncheckedBeforeDelay(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "Maybe", "a")), nil)
	e := f.engine

	require.NoError(t, e.ToggleSection("s1"))
	require.NoError(t, e.ToggleSection("s1"))
	f.clk.Advance(DefaultCheckboxDelay)

	assert.Equal(t, outlineOf(section("s1", "Maybe", "a")), e.Committed())
}

func TestCommitFailureKeepsDirty(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "", "a")), nil)
	e := f.engine

	require.NoError(t, e.EditText(focus.ItemField("s1", 0), "ab", 2))
	f.outlineBlob.SetErr(errors.New("disk full"))

	err := e.ClickAway()
	require.Error(t, err)
	assert.True(t, e.IsDirty())
	assert.Contains(t, noticeTexts(e), "Not saved: failed to write outline: disk full")
	assert.Equal(t, []string{"a"}, itemTexts(t, e.Committed(), "s1"))

	f.clk.Advance(draft.DefaultDebounce)
	saved := f.drafts.Load()
	assert.True(t, saved.IsDirty, "failed commit leaves a recoverable draft")
	assert.Equal(t, []string{"ab"}, itemTexts(t, saved.Outline(), "s1"))

	f.outlineBlob.SetErr(nil)
	require.NoError(t, e.Commit())
	assert.False(t, e.IsDirty())
	assert.False(t, f.drafts.Load().IsDirty)
}

func TestFailedDraftClearIsWrittenOnClose(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "Groceries", "buy milk")), nil)
	e := f.engine

	_, err := e.FocusField(focus.ItemField("s1", 0), 8)
	require.NoError(t, err)
	res := e.HandleKey(focus.Event{Field: focus.ItemField("s1", 0), Cursor: 8, Key: focus.KeyEnter})
	require.True(t, res.Handled)
	f.clk.Advance(draft.DefaultDebounce)
	require.True(t, f.drafts.Load().IsDirty)

	f.draftBlob.SetErr(errors.New("disk full"))
	require.NoError(t, e.ClickAway())
	assert.Equal(t, []string{"buy milk"}, itemTexts(t, e.Committed(), "s1"))
	f.draftBlob.SetErr(nil)
	require.NoError(t, e.Close())

	restarted := NewEngine(EngineOptions{
		Outlines: storage.NewOutlineStore(f.outlineBlob, nil, f.logger),
		Drafts:   draft.NewStore(f.draftBlob, f.clk, draft.DefaultDebounce, f.logger),
		Clock:    f.clk,
		Logger:   f.logger,
	})
	require.NoError(t, restarted.Load())
	assert.Equal(t, []string{"buy milk"}, itemTexts(t, restarted.Outline(), "s1"))
	assert.Empty(t, restarted.ActiveSectionID())
	assert.NotContains(t, noticeTexts(restarted), NoticeDraftRestored)
}

func TestAddSection(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "", "old")), nil)
	e := f.engine

	id, err := e.AddSection()
	require.NoError(t, err)
	outline := e.Outline()
	assert.Equal(t, id, outline.Sections[0].ID)
	assert.Equal(t, []string{""}, itemTexts(t, outline, id))
	assert.Equal(t, id, e.ActiveSectionID())
	assert.Equal(t, focus.At(focus.ItemField(id, 0), 0), e.Focus())

	// Leaving it untouched removes it again
	require.NoError(t, e.ClickAway())
	assert.Equal(t, outlineOf(section("s1", "", "old")), e.Committed())
}

func TestAddSectionWithText(t *testing.T) {
	f := newFixture(t, nil, nil)
	e := f.engine

	id, err := e.AddSectionWithText("Groceries", "eggs\n\n flour \n")
	require.NoError(t, err)
	assert.Equal(t, []string{"eggs", "flour"}, itemTexts(t, e.Committed(), id))

	single, err := e.AddSectionWithText("", "call mom")
	require.NoError(t, err)
	s, _ := e.Committed().FindSection(single)
	assert.True(t, s.IsSingular())
	assert.Equal(t, single, e.Committed().Sections[0].ID)

	_, err = e.AddSectionWithText("", "  ")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "", "a"), section("s2", "", "b")), nil)
	e := f.engine

	require.NoError(t, e.ToggleItem("s2", "s2-0"))
	_, err := e.FocusField(focus.ItemField("s1", 0), 0)
	require.NoError(t, err)

	require.NoError(t, e.Reset())
	assert.Empty(t, e.Committed().Sections)
	assert.Equal(t, "", e.ActiveSectionID())
	assert.Contains(t, noticeTexts(e), NoticeReset)

	f.clk.Advance(DefaultCheckboxDelay)
	assert.Empty(t, e.Committed().Sections)
}

func TestSetAndExpireReminder(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "Plants", "water"), section("s2", "", "x")), nil)
	e := f.engine
	at := start.Add(time.Hour)

	require.NoError(t, e.SetReminder("s1", &at))
	sections, active := e.ReminderSnapshot()
	require.NotNil(t, sections[0].ReminderTimestamp)
	assert.True(t, sections[0].ReminderTimestamp.Equal(at))
	assert.Equal(t, "", active)

	// An edit in progress elsewhere must not be committed by the expiry
	require.NoError(t, e.EditText(focus.ItemField("s2", 0), "xy", 2))
	require.NoError(t, e.ExpireReminder("s1"))

	committed := e.Committed()
	s1, _ := committed.FindSection("s1")
	assert.True(t, s1.IsReminderExpired)
	assert.Equal(t, []string{"x"}, itemTexts(t, committed, "s2"))

	working, _ := e.Outline().FindSection("s1")
	assert.True(t, working.IsReminderExpired)
	assert.True(t, e.IsDirty())

	_, active = e.ReminderSnapshot()
	assert.Equal(t, "s2", active)

	assert.ErrorIs(t, e.ExpireReminder("nope"), model.ErrSectionNotFound)
}

func TestCloseFlushesDraftAndStopsTimers(t *testing.T) {
	f := newFixture(t, outlineOf(section("s1", "", "a", "b")), nil)
	e := f.engine

	require.NoError(t, e.ToggleItem("s1", "s1-0"))
	require.NoError(t, e.Close())
	assert.False(t, f.drafts.Pending())
	assert.True(t, f.drafts.Load().IsDirty)

	f.clk.Advance(DefaultCheckboxDelay)
	assert.Equal(t, []string{"a", "b"}, itemTexts(t, e.Outline(), "s1"))
	assert.ErrorIs(t, e.ToggleItem("s1", "s1-1"), ErrClosed)
}

func TestNoticeLogIsBounded(t *testing.T) {
	clk := clock.Fake(start)
	log := NewNoticeLog(2, clk.Now)
	log.Add("one")
	log.Add("")
	log.Add("two")
	log.Add("three")

	all := log.All()
	require.Len(t, all, 2)
	assert.Equal(t, "two", all[0].Text)
	assert.Equal(t, "three", all[1].Text)

	latest, ok := log.Latest(time.Second)
	assert.True(t, ok)
	assert.Equal(t, "three", latest.Text)

	clk.Advance(2 * time.Second)
	_, ok = log.Latest(time.Second)
	assert.False(t, ok)
}

func TestImportSectionsKeepsOrder(t *testing.T) {
	f := newFixture(t, outlineOf(section("old", "", "existing")), nil)
	e := f.engine

	n, err := e.ImportSections([]model.Section{section("a", "First", "one"), section("b", "", "two")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	committed := e.Committed()
	require.Len(t, committed.Sections, 3)
	assert.Equal(t, "a", committed.Sections[0].ID)
	assert.Equal(t, "b", committed.Sections[1].ID)
	assert.Equal(t, "old", committed.Sections[2].ID)
	assert.False(t, e.IsDirty())
}
