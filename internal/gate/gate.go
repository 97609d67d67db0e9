// Package gate keeps at most one section in editing mode at a time.
package gate

import "github.com/pstuifzand/subtasks/internal/model"

// Transition describes what Enter changed. Exited is the section that had to
// leave editing mode first, or "" when none did.
type Transition struct {
	Exited  string
	Entered string
}

// Changed reports whether the active section changed
func (t Transition) Changed() bool {
	return t.Exited != "" || t.Entered != ""
}

// Gate holds the active section id. The zero value is inactive.
type Gate struct {
	active string
}

// Active returns the id of the section being edited, or ""
func (g *Gate) Active() string {
	return g.active
}

// IsActive reports whether id is the section being edited
func (g *Gate) IsActive(id string) bool {
	return id != "" && g.active == id
}

// Enter makes id the active section. If a different section was active it
// is deactivated first and reported in Exited so the caller can settle it.
// Entering the already active section changes nothing.
func (g *Gate) Enter(id string) Transition {
	if id == "" || g.active == id {
		return Transition{}
	}
	t := Transition{Exited: g.Exit(), Entered: id}
	g.active = id
	return t
}

// Exit deactivates the current section and returns its id, or "" when
// nothing was active.
func (g *Gate) Exit() string {
	id := g.active
	g.active = ""
	return id
}

// Restore sets the active section without a transition, used when a draft
// is recovered at startup.
func (g *Gate) Restore(id string) {
	g.active = id
}

// Settle applies the leave-editing policy to the section that just exited.
// A section that no longer exists is left alone.
func Settle(outline *model.Outline, id string) (*model.Outline, model.SettleOutcome, error) {
	if outline.SectionIndex(id) < 0 {
		return outline, model.SettleKept, nil
	}
	return outline.SettleSection(id)
}
