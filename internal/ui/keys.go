package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pstuifzand/subtasks/internal/focus"
)

// StructuralKey maps a terminal key to the keys the focus router handles
func StructuralKey(ev *tcell.EventKey) (focus.Key, bool) {
	switch ev.Key() {
	case tcell.KeyEnter:
		return focus.KeyEnter, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return focus.KeyBackspace, true
	case tcell.KeyUp:
		return focus.KeyArrowUp, true
	case tcell.KeyDown:
		return focus.KeyArrowDown, true
	case tcell.KeyTab, tcell.KeyBacktab:
		return focus.KeyTab, true
	}
	return 0, false
}
