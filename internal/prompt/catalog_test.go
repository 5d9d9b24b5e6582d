package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("move.request", map[string]any{
		"FEN":     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"History": "",
		"Turn":    "white",
		"Legal":   "e4, d4",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "white to move") || !strings.Contains(got, "e4, d4") {
		t.Fatalf("unexpected render: %q", got)
	}
	if strings.Contains(got, "Moves so far") {
		t.Fatalf("empty history should omit the history line: %q", got)
	}
}

func TestRenderMissingKey(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("move.nope", nil); err == nil {
		t.Fatalf("expected error for unknown template key")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "move:\n  instructions: \"Play aggressively.\"\n"
	if err := os.WriteFile(filepath.Join(dir, "override.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New with override: %v", err)
	}
	got, err := c.Render("move.instructions", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Play aggressively." {
		t.Fatalf("override not applied: %q", got)
	}
	// Defaults not named by the override survive.
	if _, err := c.Render("move.feedback.illegal", map[string]any{"Move": "Qq9"}); err != nil {
		t.Fatalf("default template lost after override: %v", err)
	}
}
