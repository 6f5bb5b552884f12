package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestColorConstants(t *testing.T) {
	tests := []struct {
		name  string
		color string
		value string
	}{
		{"ColorActive", ColorActive, "170"},
		{"ColorInactive", ColorInactive, "240"},
		{"ColorSelected", ColorSelected, "236"},
		{"ColorNormal", ColorNormal, "245"},
		{"ColorWarning", ColorWarning, "214"},
		{"ColorStatusBg", ColorStatusBg, "62"},
		{"ColorError", ColorError, "196"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != tt.color {
				t.Errorf("expected %s, got %s", tt.value, tt.color)
			}
		})
	}
}

func TestStaticStyles(t *testing.T) {
	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"NormalStyle", NormalStyle},
		{"SelectedStyle", SelectedStyle},
		{"CursorStyle", CursorStyle},
		{"HighlightStyle", HighlightStyle},
		{"PlaceholderStyle", PlaceholderStyle},
		{"HeaderStyle", HeaderStyle},
		{"DraggedHeaderStyle", DraggedHeaderStyle},
		{"DropTargetStyle", DropTargetStyle},
		{"SeparatorStyle", SeparatorStyle},
		{"StatusStyle", StatusStyle},
		{"DegradedStyle", DegradedStyle},
		{"ErrorStyle", ErrorStyle},
		{"DescriptionStyle", DescriptionStyle},
		{"EmptyStyle", EmptyStyle},
	}

	for _, tt := range styles {
		t.Run(tt.name, func(t *testing.T) {
			if output := tt.style.Render("test"); output == "" {
				t.Errorf("Style %s rendered empty output", tt.name)
			}
		})
	}
}

func TestGetTagEmblemStyle(t *testing.T) {
	for _, color := range []string{"#ff6666", "196", ""} {
		t.Run(color, func(t *testing.T) {
			out := GetTagEmblemStyle(color).Render(firstTagEmblem)
			if lipgloss.Width(out) != 1 {
				t.Errorf("emblem for %q is %d cells wide, want 1", color, lipgloss.Width(out))
			}
		})
	}
}

func TestGetSortIndicator(t *testing.T) {
	if got := GetSortIndicator(false); got != "↑" {
		t.Errorf("ascending indicator = %q, want ↑", got)
	}
	if got := GetSortIndicator(true); got != "↓" {
		t.Errorf("descending indicator = %q, want ↓", got)
	}
}
