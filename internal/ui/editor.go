package ui

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Editor edits a single line of text. The caret is a rune offset so it can
// be handed to the engine as is.
type Editor struct {
	text  []rune
	caret int
}

// NewEditor creates an editor holding text with the caret at offset
func NewEditor(text string, caret int) *Editor {
	e := &Editor{text: []rune(text)}
	e.SetCaret(caret)
	return e
}

// Text returns the current text
func (e *Editor) Text() string {
	return string(e.text)
}

// Caret returns the caret rune offset
func (e *Editor) Caret() int {
	return e.caret
}

// SetCaret moves the caret, clamped to the text
func (e *Editor) SetCaret(caret int) {
	e.caret = max(0, min(caret, len(e.text)))
}

// Reset replaces the text and caret, as when focus moves to another field
func (e *Editor) Reset(text string, caret int) {
	e.text = []rune(text)
	e.SetCaret(caret)
}

// HandleKey applies an editing key. It returns true when the key was used;
// structural keys (Enter, Tab, arrows up/down, Escape) are left to the
// caller. Backspace at offset 0 is not used either.
func (e *Editor) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if e.caret == 0 {
			return false
		}
		e.text = append(e.text[:e.caret-1], e.text[e.caret:]...)
		e.caret--
	case tcell.KeyDelete:
		if e.caret < len(e.text) {
			e.text = append(e.text[:e.caret], e.text[e.caret+1:]...)
		}
	case tcell.KeyLeft:
		if e.caret > 0 {
			e.caret--
		}
	case tcell.KeyRight:
		if e.caret < len(e.text) {
			e.caret++
		}
	case tcell.KeyHome, tcell.KeyCtrlA:
		e.caret = 0
	case tcell.KeyEnd, tcell.KeyCtrlE:
		e.caret = len(e.text)
	case tcell.KeyCtrlU:
		// Delete from start to cursor
		e.text = e.text[e.caret:]
		e.caret = 0
	case tcell.KeyCtrlK:
		// Delete from cursor to end
		e.text = e.text[:e.caret]
	case tcell.KeyCtrlW:
		e.deleteWordBackwards()
	case tcell.KeyRune:
		r := ev.Rune()
		if !unicode.IsPrint(r) {
			return false
		}
		e.text = append(e.text[:e.caret], append([]rune{r}, e.text[e.caret:]...)...)
		e.caret++
	default:
		return false
	}
	return true
}

func (e *Editor) deleteWordBackwards() {
	pos := e.caret
	for pos > 0 && unicode.IsSpace(e.text[pos-1]) {
		pos--
	}
	for pos > 0 && !unicode.IsSpace(e.text[pos-1]) {
		pos--
	}
	e.text = append(e.text[:pos], e.text[e.caret:]...)
	e.caret = pos
}

// Render draws the text at (x, y) within width columns, scrolled so the
// caret stays visible
func (e *Editor) Render(screen *Screen, x, y, width int) {
	style := screen.EditorStyle()
	cursorStyle := screen.EditorCursorStyle()

	text := string(e.text)
	startRune := ScrollStart(text, e.caret, width)
	col := x
	for i := startRune; i < len(e.text); i++ {
		r := e.text[i]
		rw := RuneWidth(r)
		if col+rw > x+width {
			break
		}
		charStyle := style
		if i == e.caret {
			charStyle = cursorStyle
		}
		screen.SetCell(col, y, r, charStyle)
		col += rw
	}

	if e.caret >= len(e.text) && col < x+width {
		screen.SetCell(col, y, ' ', cursorStyle)
		col++
	}
	for ; col < x+width; col++ {
		screen.SetCell(col, y, ' ', screen.BackgroundStyle())
	}
}
