package import_parser

import (
	"bufio"
	"regexp"
	"strings"
	"time"

	"github.com/pstuifzand/subtasks/internal/model"
)

// reminderSuffix matches the reminder written after an exported header
var reminderSuffix = regexp.MustCompile(`\s+\(remind (\d{4}-\d{2}-\d{2} \d{2}:\d{2})\)$`)

// MarkdownParser imports markdown task lists. "# Heading" lines and
// top-level list entries with nested entries become named sections; a
// top-level entry on its own becomes a singular task.
type MarkdownParser struct {
	// Location is used for reminder times; nil means time.Local
	Location *time.Location
}

func (p *MarkdownParser) Name() string {
	return "Markdown"
}

// Parse converts markdown content to sections
func (p *MarkdownParser) Parse(content string) ([]model.Section, error) {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	var b builder
	underHeading := false

	for scanner.Scan() {
		line := scanner.Text()

		// Skip empty lines
		if strings.TrimSpace(line) == "" {
			continue
		}

		if name, ok := parseHeader(line); ok {
			b.heading(name)
			underHeading = true
			continue
		}

		level, text, completed, ok := parseListItem(line)
		if !ok {
			// Plain text belongs to the current section
			b.item(strings.TrimSpace(line), false)
			continue
		}

		switch {
		case level == 0 && !underHeading:
			text, at := splitReminder(text, loc)
			b.top(text, completed)
			if at != nil {
				b.current.ReminderTimestamp = at
			}
		default:
			b.item(text, completed)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return b.result(), nil
}

// parseHeader extracts the text of a markdown header
func parseHeader(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, "#")
	if len(trimmed) == len(line) || !strings.HasPrefix(trimmed, " ") {
		return "", false
	}
	return strings.TrimSpace(trimmed), true
}

// parseListItem extracts indentation level, text and checkbox state from a
// list entry
func parseListItem(line string) (level int, text string, completed bool, ok bool) {
	trimmed := strings.TrimSpace(line)

	// Check for list markers
	if len(trimmed) < 2 || !strings.ContainsRune("-*+", rune(trimmed[0])) || trimmed[1] != ' ' {
		return 0, "", false, false
	}
	text = strings.TrimSpace(trimmed[2:])

	switch {
	case strings.HasPrefix(text, "[ ] "), text == "[ ]":
		text = strings.TrimSpace(strings.TrimPrefix(text, "[ ]"))
	case strings.HasPrefix(strings.ToLower(text), "[x] "), strings.ToLower(text) == "[x]":
		text = strings.TrimSpace(text[3:])
		completed = true
	}
	return indentLevel(line), text, completed, true
}

func splitReminder(text string, loc *time.Location) (string, *time.Time) {
	m := reminderSuffix.FindStringSubmatchIndex(text)
	if m == nil {
		return text, nil
	}
	at, err := time.ParseInLocation("2006-01-02 15:04", text[m[2]:m[3]], loc)
	if err != nil {
		return text, nil
	}
	return text[:m[0]], &at
}
