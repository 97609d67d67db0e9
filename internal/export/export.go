// Package export renders the committed outline in formats meant for other
// tools.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pstuifzand/subtasks/internal/model"
)

// Format selects an export renderer
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts "markdown"/"md" and "yaml"/"yml"
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", name)
}

// Write renders the outline in the given format
func Write(w io.Writer, outline *model.Outline, format Format) error {
	switch format {
	case FormatMarkdown:
		return WriteMarkdown(w, outline)
	case FormatYAML:
		return WriteYAML(w, outline)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// ExportToFile renders the outline into filePath
func ExportToFile(outline *model.Outline, filePath string, format Format) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Write(f, outline, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
