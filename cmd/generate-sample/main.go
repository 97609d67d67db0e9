package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pstuifzand/subtasks/internal/model"
	"github.com/pstuifzand/subtasks/internal/storage"
)

func main() {
	numSections := flag.Int("sections", 200, "Number of sections to generate")
	maxItems := flag.Int("items", 6, "Maximum items per section")
	dir := flag.String("dir", "sample-data", "Data directory to write")
	backend := flag.String("backend", "file", "Storage backend (file|sqlite)")
	compress := flag.String("compress", "none", "Compression (none|zstd|lz4)")
	flag.Parse()

	if *numSections < 1 || *maxItems < 1 {
		fmt.Fprintf(os.Stderr, "sections and items must be at least 1\n")
		os.Exit(1)
	}

	tag, err := storage.ParseCompressionTag(*compress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	blobs, closeFn, err := storage.Open(storage.Options{
		Backend:     storage.Backend(*backend),
		Dir:         *dir,
		Compression: tag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	outline := generateOutline(*numSections, *maxItems, time.Now())
	if err := storage.NewOutlineStore(blobs, nil, nil).Save(outline); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save outline: %v\n", err)
		os.Exit(1)
	}

	items, reminders := 0, 0
	for _, section := range outline.Sections {
		items += len(section.Items)
		if section.ReminderTimestamp != nil {
			reminders++
		}
	}
	fmt.Printf("Generated %d sections with %d items and %d reminders\n", len(outline.Sections), items, reminders)
	fmt.Printf("Saved to: %s (%s, %s)\n", *dir, *backend, tag)
}

func generateOutline(numSections, maxItems int, now time.Time) *model.Outline {
	outline := model.NewOutline()
	for i := 0; i < numSections; i++ {
		section := model.NewSection()
		count := 1 + i%maxItems
		section.Items = section.Items[:0]
		for j := 0; j < count; j++ {
			item := model.NewItem(generateUniqueText(i*maxItems + j))
			// Completed items sit after the open ones
			item.IsCompleted = j > 0 && j == count-1 && i%3 == 0
			section.Items = append(section.Items, item)
		}
		// Singular tasks have no header
		if count > 1 {
			section.Name = generateTitle(i)
		}
		if i%7 == 0 {
			at := now.Add(time.Duration(i+1) * 15 * time.Minute).Truncate(time.Minute)
			section.ReminderTimestamp = &at
		}
		outline.Sections = append(outline.Sections, section)
	}
	return outline
}

func generateTitle(index int) string {
	titles := []string{
		"Groceries", "Trip prep", "Release", "Garden", "Taxes",
		"Birthday party", "Car service", "Move house", "Weekly review",
	}
	return fmt.Sprintf("%s #%d", titles[index%len(titles)], index)
}

func generateUniqueText(index int) string {
	verbs := []string{
		"Buy", "Call", "Email", "Book", "Fix", "Check", "Pack",
		"Order", "Clean", "Renew", "Pay", "Plan",
	}
	objects := []string{
		"milk", "dentist", "landlord", "train tickets", "bike light",
		"passport", "suitcase", "printer ink", "windows", "insurance",
		"phone bill", "dinner",
	}
	return fmt.Sprintf("%s %s (%d)", verbs[index%len(verbs)], objects[(index/len(verbs))%len(objects)], index)
}
