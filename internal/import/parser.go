// Package import_parser reads checklists written elsewhere (markdown task
// lists, indented plain text) into outline sections.
package import_parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pstuifzand/subtasks/internal/model"
)

// ImportFormat represents different file formats that can be imported
type ImportFormat string

const (
	FormatMarkdown     ImportFormat = "markdown"
	FormatIndentedText ImportFormat = "indented"
	FormatAuto         ImportFormat = "auto" // Auto-detect from extension
)

// Parser interface for different import formats
type Parser interface {
	Parse(content string) ([]model.Section, error)
	Name() string
}

// ParseFormat parses a format name given on the command line
func ParseFormat(name string) (ImportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "indented", "text", "txt":
		return FormatIndentedText, nil
	default:
		return "", fmt.Errorf("unsupported import format: %s", name)
	}
}

// ImportFile parses content into sections. FormatAuto picks a parser from
// filename.
func ImportFile(filename, content string, format ImportFormat) ([]model.Section, error) {
	if format == FormatAuto {
		format = DetectFormat(filename)
	}

	var parser Parser
	switch format {
	case FormatMarkdown:
		parser = &MarkdownParser{}
	case FormatIndentedText:
		parser = &IndentedTextParser{}
	default:
		return nil, fmt.Errorf("unsupported import format: %s", format)
	}

	sections, err := parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse error (%s): %w", parser.Name(), err)
	}

	return sections, nil
}

// DetectFormat detects the file format from its extension
func DetectFormat(filename string) ImportFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return FormatMarkdown
	}
	// Default to indented text
	return FormatIndentedText
}

// indentLevel counts leading indentation in steps of two spaces; a tab
// counts as one step
func indentLevel(line string) int {
	indent := 0
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			indent++
		} else if line[i] == '\t' {
			indent += 2
		} else {
			break
		}
	}
	return indent / 2
}

// builder collects sections: a top-level line opens a section and deeper
// lines become its items
type builder struct {
	sections []model.Section
	current  *model.Section
}

// top starts a new section from a top-level line. Until an item follows,
// the line itself is the section's only item.
func (b *builder) top(text string, completed bool) {
	b.finish()
	section := model.NewSection()
	section.Items[0].Text = text
	section.Items[0].IsCompleted = completed
	b.current = &section
}

// heading starts a section that is named from the start
func (b *builder) heading(name string) {
	b.finish()
	section := model.NewSection()
	section.Name = name
	section.Items = section.Items[:0]
	b.current = &section
}

func (b *builder) item(text string, completed bool) {
	if b.current == nil {
		b.top(text, completed)
		return
	}
	// The first nested line turns the opening line into the header
	if b.current.Name == "" && len(b.current.Items) == 1 && b.current.Items[0].Text != "" {
		first := b.current.Items[0]
		b.current.Name = first.Text
		b.current.IsCompleted = first.IsCompleted
		b.current.Items = b.current.Items[:0]
	}
	item := model.NewItem(text)
	item.IsCompleted = completed
	b.current.Items = append(b.current.Items, item)
}

func (b *builder) finish() {
	if b.current == nil {
		return
	}
	if len(b.current.Items) == 0 {
		b.current.Items = []model.Item{model.NewItem("")}
	}
	b.sections = append(b.sections, *b.current)
	b.current = nil
}

func (b *builder) result() []model.Section {
	b.finish()
	if b.sections == nil {
		return []model.Section{}
	}
	return b.sections
}
