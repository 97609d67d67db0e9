package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pstuifzand/subtasks/internal/model"
)

// reminderLayout is how reminders are shown after a section header
const reminderLayout = "2006-01-02 15:04"

// WriteMarkdown writes the outline as a task list. Named sections become a
// checkbox line with their items indented below it; unnamed sections write
// their items at the top level. Empty items are skipped.
func WriteMarkdown(w io.Writer, outline *model.Outline) error {
	bw := bufio.NewWriter(w)
	for _, section := range outline.Sections {
		writeSectionAsMarkdown(bw, section)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}

func writeSectionAsMarkdown(w *bufio.Writer, section model.Section) {
	depth := 0
	if strings.TrimSpace(section.Name) != "" {
		w.WriteString(checkbox(section.IsCompleted))
		w.WriteString(section.Name)
		if section.ReminderTimestamp != nil && !section.IsReminderExpired {
			fmt.Fprintf(w, " (remind %s)", section.ReminderTimestamp.Format(reminderLayout))
		}
		w.WriteString("\n")
		depth = 1
	}

	for _, item := range section.Items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		// 2 spaces per level
		w.WriteString(strings.Repeat("  ", depth))
		w.WriteString(checkbox(item.IsCompleted || section.IsCompleted))
		w.WriteString(item.Text)
		w.WriteString("\n")
	}
}

func checkbox(done bool) string {
	if done {
		return "- [x] "
	}
	return "- [ ] "
}
