package model

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Filter returns the sections whose header or any item fuzzy-matches query
// (case-insensitive). An empty query matches everything.
func (o *Outline) Filter(query string) []Section {
	query = strings.TrimSpace(query)
	var matches []Section
	for _, section := range o.Sections {
		if query == "" || sectionMatches(section, query) {
			matches = append(matches, section.Clone())
		}
	}
	return matches
}

func sectionMatches(section Section, query string) bool {
	if fuzzy.MatchFold(query, section.Name) {
		return true
	}
	for _, item := range section.Items {
		if fuzzy.MatchFold(query, item.Text) {
			return true
		}
	}
	return false
}
