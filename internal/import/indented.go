package import_parser

import (
	"bufio"
	"strings"

	"github.com/pstuifzand/subtasks/internal/model"
)

// IndentedTextParser imports plain text: an unindented line followed by
// indented lines is a named section, an unindented line on its own is a
// singular task.
type IndentedTextParser struct{}

func (p *IndentedTextParser) Name() string {
	return "Indented Text"
}

// Parse converts indented text to sections
func (p *IndentedTextParser) Parse(content string) ([]model.Section, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	var b builder

	for scanner.Scan() {
		line := scanner.Text()

		text := strings.TrimSpace(line)
		// Skip empty content after trimming
		if text == "" {
			continue
		}

		if indentLevel(line) == 0 {
			b.top(text, false)
		} else {
			b.item(text, false)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return b.result(), nil
}
