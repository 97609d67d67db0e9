package app

import (
	"github.com/pstuifzand/subtasks/internal/focus"
	"github.com/pstuifzand/subtasks/internal/ui"
)

// KeyBinding represents a key binding with its description and handler
type KeyBinding struct {
	Key         rune
	Description string
	Handler     func(*App)
}

// GetKey returns the key of this keybinding
func (kb *KeyBinding) GetKey() rune {
	return kb.Key
}

// GetDescription returns the description of this keybinding
func (kb *KeyBinding) GetDescription() string {
	return kb.Description
}

// InitializeKeybindings sets up the browse mode key bindings
func (a *App) InitializeKeybindings() []KeyBinding {
	return []KeyBinding{
		{
			Key:         'j',
			Description: "Select next task",
			Handler: func(app *App) {
				app.view.SelectNext(app.engine.Outline())
			},
		},
		{
			Key:         'k',
			Description: "Select previous task",
			Handler: func(app *App) {
				app.view.SelectPrev(app.engine.Outline())
			},
		},
		{
			Key:         'i',
			Description: "Edit task (cursor at end)",
			Handler: func(app *App) {
				app.editSelected()
			},
		},
		{
			Key:         'e',
			Description: "Edit task title",
			Handler: func(app *App) {
				outline := app.engine.Outline()
				if id := app.view.SelectedID(outline); id != "" {
					app.startEdit(focus.Header(id))
				}
			},
		},
		{
			Key:         'a',
			Description: "Add task",
			Handler: func(app *App) {
				app.addSection()
			},
		},
		{
			Key:         ' ',
			Description: "Check task",
			Handler: func(app *App) {
				app.toggleSelected()
			},
		},
		{
			Key:         'r',
			Description: "Set reminder",
			Handler: func(app *App) {
				if section, ok := app.selectedSection(); ok {
					app.startReminderPrompt(section.ID)
				}
			},
		},
		{
			Key:         'x',
			Description: "Clear reminder",
			Handler: func(app *App) {
				if section, ok := app.selectedSection(); ok && section.ReminderTimestamp != nil {
					app.clearReminder(section.ID)
				}
			},
		},
		{
			Key:         's',
			Description: "Silence alarm",
			Handler: func(app *App) {
				app.silence()
			},
		},
		{
			Key:         'y',
			Description: "Copy task as markdown",
			Handler: func(app *App) {
				app.yank()
			},
		},
		{
			Key:         'D',
			Description: "Remove all tasks",
			Handler: func(app *App) {
				app.reset()
			},
		},
		{
			Key:         '?',
			Description: "Toggle help",
			Handler: func(app *App) {
				app.help.Toggle()
			},
		},
		{
			Key:         'q',
			Description: "Quit",
			Handler: func(app *App) {
				app.quit = true
			},
		},
	}
}

func keyLabel(r rune) string {
	if r == ' ' {
		return "Space"
	}
	return string(r)
}

// helpBindings lists the browse bindings for the help overlay
func helpBindings(bindings []KeyBinding) []ui.Binding {
	result := []ui.Binding{
		{Keys: "↑ ↓", Description: "Select task"},
		{Keys: "Enter", Description: "Edit task"},
		{Keys: "1-9", Description: "Check item"},
	}
	for _, kb := range bindings {
		result = append(result, ui.Binding{Keys: keyLabel(kb.Key), Description: kb.Description})
	}
	return result
}
