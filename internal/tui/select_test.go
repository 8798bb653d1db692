package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/shelfscan/internal/provider"
)

func sampleResults() []provider.SearchResult {
	return []provider.SearchResult{
		{
			Title:       "Dune",
			Authors:     []string{"Frank Herbert"},
			PublishYear: 1965,
			Publisher:   "Chilton Books",
			ISBN:        "9780441013593",
		},
		{
			Title:       "Dune Messiah",
			Authors:     []string{"Frank Herbert"},
			PublishYear: 1969,
			Publisher:   "Putnam",
			ISBN:        "9780593098233",
		},
	}
}

// stubProgram drives the model with scripted key presses instead of a
// real terminal.
func stubProgram(keys ...string) func(tea.Model) (tea.Model, error) {
	return func(m tea.Model) (tea.Model, error) {
		current := m
		for _, key := range keys {
			var msg tea.Msg
			switch key {
			case "enter", "esc", "ctrl+c":
				msg = tea.KeyMsg{Type: keyType(key)}
			default:
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
			}
			next, _ := current.Update(msg)
			current = next
		}
		return current, nil
	}
}

func keyType(key string) tea.KeyType {
	switch key {
	case "enter":
		return tea.KeyEnter
	case "esc":
		return tea.KeyEsc
	case "ctrl+c":
		return tea.KeyCtrlC
	}
	return tea.KeyRunes
}

func withStubProgram(t *testing.T, keys ...string) {
	t.Helper()
	original := runProgram
	runProgram = stubProgram(keys...)
	t.Cleanup(func() { runProgram = original })
}

func TestSelectEnterPicksHighlighted(t *testing.T) {
	withStubProgram(t, "enter")

	result, err := Select("dune", sampleResults())
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if result.Action != ActionSelected {
		t.Fatalf("Expected ActionSelected, got %v", result.Action)
	}
	if result.Selection == nil || result.Selection.Title != "Dune" {
		t.Fatalf("Expected first result selected, got %+v", result.Selection)
	}
}

func TestSelectSkip(t *testing.T) {
	withStubProgram(t, "s")

	result, err := Select("dune", sampleResults())
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if result.Action != ActionSkipped {
		t.Fatalf("Expected ActionSkipped, got %v", result.Action)
	}
	if result.Selection != nil {
		t.Fatalf("Expected nil selection on skip, got %+v", result.Selection)
	}
}

func TestSelectStop(t *testing.T) {
	withStubProgram(t, "q")

	result, err := Select("dune", sampleResults())
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if result.Action != ActionStopped {
		t.Fatalf("Expected ActionStopped, got %v", result.Action)
	}
}

func TestSelectEmptyResults(t *testing.T) {
	// The UI never runs for an empty result set.
	original := runProgram
	runProgram = func(tea.Model) (tea.Model, error) {
		t.Fatal("runProgram called for empty results")
		return nil, nil
	}
	t.Cleanup(func() { runProgram = original })

	result, err := Select("dune", nil)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if result.Action != ActionSkipped {
		t.Fatalf("Expected ActionSkipped, got %v", result.Action)
	}
}

func TestBookItemRendering(t *testing.T) {
	item := bookItem{SearchResult: sampleResults()[0]}
	if got := item.Title(); got != "Dune (1965)" {
		t.Errorf("Expected title with year, got %q", got)
	}
	if got := item.Description(); got != "Frank Herbert" {
		t.Errorf("Expected author line, got %q", got)
	}

	noYear := bookItem{SearchResult: provider.SearchResult{Title: "Untitled"}}
	if got := noYear.Title(); got != "Untitled" {
		t.Errorf("Expected bare title without year, got %q", got)
	}
}

func TestFormatMetadata(t *testing.T) {
	got := formatMetadata(sampleResults()[0], 80)
	want := "Chilton Books | ISBN 9780441013593"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	if got := formatMetadata(provider.SearchResult{}, 80); got != "No metadata available" {
		t.Errorf("Expected placeholder for empty metadata, got %q", got)
	}
}
