package ui

import (
	"strings"
	"testing"
)

func TestPalette(t *testing.T) {
	p := NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

	t.Run("markers", func(t *testing.T) {
		if !strings.Contains(p.OK("saved"), "saved") {
			t.Error("expected OK to keep the text")
		}
		if !strings.Contains(p.Err("failed"), "failed") {
			t.Error("expected Err to keep the text")
		}
	})

	t.Run("KeyValues", func(t *testing.T) {
		out := p.KeyValues("slug", "jane-doe", "reference", "/static/uploads/jane-doe.png")
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
		}
		if !strings.Contains(lines[1], "/static/uploads/jane-doe.png") {
			t.Errorf("unexpected line %q", lines[1])
		}
	})

	t.Run("Table", func(t *testing.T) {
		out := p.Table([]string{"NAME", "SIZE"}, [][]string{{"alice.png", "12"}, {"bob.jpg", "3"}})
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %q", out)
		}
		if !strings.HasPrefix(lines[1], "alice.png") || !strings.Contains(lines[2], "bob.jpg") {
			t.Errorf("unexpected rows %q", lines[1:])
		}
	})
}
