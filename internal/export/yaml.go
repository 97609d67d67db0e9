package export

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pstuifzand/subtasks/internal/model"
)

// Document is the YAML shape of an exported outline
type Document struct {
	Sections []SectionDoc `yaml:"sections"`
}

// SectionDoc is one exported section
type SectionDoc struct {
	ID              string     `yaml:"id"`
	Name            string     `yaml:"name,omitempty"`
	Completed       bool       `yaml:"completed,omitempty"`
	Reminder        *time.Time `yaml:"reminder,omitempty"`
	ReminderExpired bool       `yaml:"reminder_expired,omitempty"`
	Items           []ItemDoc  `yaml:"items"`
}

// ItemDoc is one exported item
type ItemDoc struct {
	Text string `yaml:"text"`
	Done bool   `yaml:"done,omitempty"`
}

// NewDocument converts an outline to its YAML document form
func NewDocument(outline *model.Outline) Document {
	doc := Document{Sections: make([]SectionDoc, 0, len(outline.Sections))}
	for _, section := range outline.Sections {
		sd := SectionDoc{
			ID:              section.ID,
			Name:            section.Name,
			Completed:       section.IsCompleted,
			Reminder:        section.ReminderTimestamp,
			ReminderExpired: section.IsReminderExpired,
			Items:           make([]ItemDoc, 0, len(section.Items)),
		}
		for _, item := range section.Items {
			sd.Items = append(sd.Items, ItemDoc{Text: item.Text, Done: item.IsCompleted})
		}
		doc.Sections = append(doc.Sections, sd)
	}
	return doc
}

// WriteYAML writes the outline as a YAML document
func WriteYAML(w io.Writer, outline *model.Outline) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(outline)); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return nil
}
