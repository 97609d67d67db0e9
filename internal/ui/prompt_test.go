package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestPromptSubmit(t *testing.T) {
	p := NewPrompt()
	p.Start("Remind at:", "1")

	if _, done, _ := p.HandleKey(runeKey('5')); done {
		t.Fatalf("Expected prompt to stay open while typing")
	}
	input, done, ok := p.HandleKey(key(tcell.KeyEnter))
	if !done || !ok {
		t.Fatalf("Expected submit, got done=%v ok=%v", done, ok)
	}
	if input != "15" {
		t.Errorf("Expected input '15', got %q", input)
	}
	if p.IsActive() {
		t.Errorf("Expected prompt to be closed")
	}
}

func TestPromptCancel(t *testing.T) {
	p := NewPrompt()
	p.Start("Remind at:", "")

	_, done, ok := p.HandleKey(key(tcell.KeyBackspace2))
	if !done || ok {
		t.Errorf("Expected backspace on empty input to cancel")
	}

	p.Start("Remind at:", "10")
	_, done, ok = p.HandleKey(key(tcell.KeyEscape))
	if !done || ok {
		t.Errorf("Expected escape to cancel")
	}
}

func TestPromptHistory(t *testing.T) {
	p := NewPrompt()
	p.SetHistory([]string{"15", "1h"})
	p.Start("Remind at:", "")

	p.HandleKey(key(tcell.KeyUp))
	p.HandleKey(key(tcell.KeyUp))
	p.HandleKey(key(tcell.KeyUp))
	input, _, _ := p.HandleKey(key(tcell.KeyEnter))
	if input != "15" {
		t.Errorf("Expected oldest entry '15', got %q", input)
	}

	p.Start("Remind at:", "")
	p.HandleKey(key(tcell.KeyUp))
	p.HandleKey(key(tcell.KeyDown))
	input, _, _ = p.HandleKey(key(tcell.KeyEnter))
	if input != "" {
		t.Errorf("Expected down past newest entry to clear input, got %q", input)
	}
}
