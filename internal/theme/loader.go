package theme

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/pelletier/go-toml/v2"
)

// ThemeConfig represents the raw TOML theme configuration
type ThemeConfig struct {
	Name   string            `toml:"name"`
	Colors map[string]string `toml:"colors"`
}

// colorFields maps TOML color keys onto the fields of Colors
func colorFields(c *Colors) map[string]*tcell.Color {
	return map[string]*tcell.Color{
		"section_name":   &c.SectionName,
		"item_text":      &c.ItemText,
		"completed_text": &c.CompletedText,
		"checkbox":       &c.Checkbox,
		"selected":       &c.Selected,
		"active_marker":  &c.ActiveMarker,
		"reminder":       &c.Reminder,
		"overdue":        &c.Overdue,
		"editor_text":    &c.EditorText,
		"editor_cursor":  &c.EditorCursor,
		"status_message": &c.StatusMessage,
		"status_dirty":   &c.StatusDirty,
		"toolbar":        &c.Toolbar,
		"background":     &c.Background,
	}
}

// LoadThemeFromFile loads a theme from a TOML file. Colors the file does
// not set come from Tokyo Night.
func LoadThemeFromFile(filePath string) (*Theme, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var config ThemeConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}

	return configToTheme(config)
}

func configToTheme(config ThemeConfig) (*Theme, error) {
	theme := TokyoNight()
	fields := colorFields(&theme.Colors)

	var errs []error
	for key, value := range config.Colors {
		field, ok := fields[key]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown color key %q", key))
			continue
		}
		color, err := ParseColor(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		*field = color
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if config.Name != "" {
		theme.Name = config.Name
	}
	return theme, nil
}

// LoadThemeOrDefault resolves a theme name: the built-in "default" and
// "tokyo-night", or <dir>/<name>.toml. Anything that fails to load falls
// back to Tokyo Night and is logged to logger.
func LoadThemeOrDefault(themeName, dir string, logger *slog.Logger) *Theme {
	switch themeName {
	case "default", "":
		return Default()
	case "tokyo-night":
		return TokyoNight()
	}

	theme, err := LoadThemeFromFile(filepath.Join(dir, themeName+".toml"))
	if err != nil {
		logger.Warn("theme not loaded, using tokyo-night", "theme", themeName, "error", err)
		return TokyoNight()
	}
	return theme
}
