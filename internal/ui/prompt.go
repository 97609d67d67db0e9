package ui

import (
	"github.com/gdamore/tcell/v2"
)

// Prompt reads one line of input on the bottom row, such as the time of a
// reminder
type Prompt struct {
	active  bool
	label   string
	editor  *Editor
	history []string
	// histIdx is len(history) while not browsing history
	histIdx int
}

// NewPrompt creates an inactive prompt
func NewPrompt() *Prompt {
	return &Prompt{editor: NewEditor("", 0)}
}

// Start shows the prompt with a label and initial input
func (p *Prompt) Start(label, initial string) {
	p.active = true
	p.label = label
	p.editor.Reset(initial, len([]rune(initial)))
	p.histIdx = len(p.history)
}

// SetHistory sets the previous inputs recalled with up and down, oldest
// first
func (p *Prompt) SetHistory(entries []string) {
	p.history = entries
	p.histIdx = len(entries)
}

// Stop hides the prompt
func (p *Prompt) Stop() {
	p.active = false
}

// IsActive returns whether the prompt is shown
func (p *Prompt) IsActive() bool {
	return p.active
}

// Label returns the prompt label
func (p *Prompt) Label() string {
	return p.label
}

// HandleKey processes a key. done is true once the user pressed Enter
// (ok true) or Escape (ok false); the prompt is then inactive.
func (p *Prompt) HandleKey(ev *tcell.EventKey) (input string, done, ok bool) {
	switch ev.Key() {
	case tcell.KeyEscape:
		p.Stop()
		return "", true, false
	case tcell.KeyEnter:
		p.Stop()
		return p.editor.Text(), true, true
	case tcell.KeyUp:
		if p.histIdx > 0 {
			p.histIdx--
			p.recall()
		}
		return "", false, false
	case tcell.KeyDown:
		if p.histIdx < len(p.history) {
			p.histIdx++
			p.recall()
		}
		return "", false, false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		// Backspace on an empty prompt cancels it
		if p.editor.Text() == "" {
			p.Stop()
			return "", true, false
		}
	}
	p.editor.HandleKey(ev)
	return "", false, false
}

func (p *Prompt) recall() {
	text := ""
	if p.histIdx < len(p.history) {
		text = p.history[p.histIdx]
	}
	p.editor.Reset(text, len([]rune(text)))
}

// Render renders the prompt on row y
func (p *Prompt) Render(screen *Screen, y int) {
	if !p.active {
		return
	}
	width, _ := screen.Size()
	x := screen.DrawString(0, y, p.label+" ", screen.SelectedStyle())
	p.editor.Render(screen, x, y, max(0, width-x))
}
