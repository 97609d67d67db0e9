package theme

import (
	"github.com/gdamore/tcell/v2"
)

// Colors holds all the color definitions for the theme
type Colors struct {
	// Checklist colors
	SectionName   tcell.Color
	ItemText      tcell.Color
	CompletedText tcell.Color
	Checkbox      tcell.Color
	Selected      tcell.Color
	ActiveMarker  tcell.Color

	// Reminder colors
	Reminder tcell.Color
	Overdue  tcell.Color

	// Editor colors
	EditorText   tcell.Color
	EditorCursor tcell.Color

	// Status line and toolbar colors
	StatusMessage tcell.Color
	StatusDirty   tcell.Color
	Toolbar       tcell.Color
	Background    tcell.Color
}

// Theme represents a complete color theme
type Theme struct {
	Name   string
	Colors Colors
}

// Default returns a default theme using terminal defaults
func Default() *Theme {
	return &Theme{
		Name: "default",
		Colors: Colors{
			SectionName:   tcell.ColorDefault,
			ItemText:      tcell.ColorDefault,
			CompletedText: tcell.ColorGray,
			Checkbox:      tcell.ColorDefault,
			Selected:      tcell.ColorDefault,
			ActiveMarker:  tcell.ColorDefault,
			Reminder:      tcell.ColorDefault,
			Overdue:       tcell.ColorRed,
			EditorText:    tcell.ColorDefault,
			EditorCursor:  tcell.ColorDefault,
			StatusMessage: tcell.ColorDefault,
			StatusDirty:   tcell.ColorDefault,
			Toolbar:       tcell.ColorDefault,
			Background:    tcell.ColorDefault,
		},
	}
}

// TokyoNight returns the Tokyo Night theme
func TokyoNight() *Theme {
	background := HexToColor("#1a1b26")
	text := HexToColor("#c0caf5")
	return &Theme{
		Name: "tokyo-night",
		Colors: Colors{
			SectionName:   HexToColor("#bb9af7"), // Magenta
			ItemText:      text,
			CompletedText: Blend(text, background, 0.55),
			Checkbox:      HexToColor("#7dcfff"), // Cyan
			Selected:      HexToColor("#7aa2f7"), // Blue
			ActiveMarker:  HexToColor("#9ece6a"), // Green
			Reminder:      HexToColor("#e0af68"), // Yellow
			Overdue:       HexToColor("#f7768e"), // Red
			EditorText:    text,
			EditorCursor:  HexToColor("#7aa2f7"),
			StatusMessage: HexToColor("#9ece6a"),
			StatusDirty:   HexToColor("#f7768e"),
			Toolbar:       HexToColor("#565f89"), // Comment gray
			Background:    background,
		},
	}
}
