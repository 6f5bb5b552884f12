package tui

import (
	"runtime"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestGetOS(t *testing.T) {
	os := GetOS()

	switch runtime.GOOS {
	case "darwin":
		if os != OSMac {
			t.Errorf("Expected OSMac for darwin, got %v", os)
		}
	case "linux":
		if os != OSLinux {
			t.Errorf("Expected OSLinux for linux, got %v", os)
		}
	case "windows":
		if os != OSWindows {
			t.Errorf("Expected OSWindows for windows, got %v", os)
		}
	}
}

func TestShortcutKey_For(t *testing.T) {
	tests := []struct {
		name     string
		shortcut ShortcutKey
		os       OSType
		want     string
	}{
		{
			name:     "Mac specific shortcut",
			shortcut: ShortcutKey{Mac: "alt", Default: "ctrl"},
			os:       OSMac,
			want:     "alt",
		},
		{
			name:     "Linux falls back to default",
			shortcut: ShortcutKey{Mac: "alt", Default: "ctrl"},
			os:       OSLinux,
			want:     "ctrl",
		},
		{
			name:     "Windows specific shortcut",
			shortcut: ShortcutKey{Windows: "f5", Default: "ctrl+r"},
			os:       OSWindows,
			want:     "f5",
		},
		{
			name:     "Unknown OS uses default",
			shortcut: ShortcutKey{Mac: "x", Linux: "y", Windows: "z", Default: "d"},
			os:       OSUnknown,
			want:     "d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shortcut.For(tt.os); got != tt.want {
				t.Errorf("For() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActualShortcuts(t *testing.T) {
	for _, os := range []OSType{OSMac, OSLinux, OSWindows, OSUnknown} {
		for name, s := range map[string]ShortcutKey{
			"MultiSelect": Shortcuts.MultiSelect,
			"Trash":       Shortcuts.Trash,
			"Reload":      Shortcuts.Reload,
		} {
			if s.For(os) == "" {
				t.Errorf("%s shortcut empty for OS %v", name, os)
			}
		}
	}
}

func TestFormatShortcut(t *testing.T) {
	tests := []struct {
		shortcut string
		os       OSType
		want     string
	}{
		{"ctrl+r", OSLinux, "^r"},
		{"alt+s", OSLinux, "M-s"},
		{"alt+s", OSMac, "⌥s"},
		{"shift+up", OSWindows, "⇧up"},
		{"delete", OSLinux, "del"},
		{"backspace", OSMac, "⌫"},
		{"esc", OSMac, "esc"},
	}

	for _, tt := range tests {
		t.Run(tt.shortcut, func(t *testing.T) {
			if got := formatShortcut(tt.shortcut, tt.os); got != tt.want {
				t.Errorf("formatShortcut(%q) = %q, want %q", tt.shortcut, got, tt.want)
			}
		})
	}
}

func TestMultiSelectHeld(t *testing.T) {
	if !multiSelectHeld(tea.MouseMsg{Ctrl: true}) {
		t.Error("ctrl+click should add to the selection")
	}
	if multiSelectHeld(tea.MouseMsg{}) {
		t.Error("plain click should not add to the selection")
	}
	wantAlt := GetOS() == OSMac
	if got := multiSelectHeld(tea.MouseMsg{Alt: true}); got != wantAlt {
		t.Errorf("alt+click = %v, want %v", got, wantAlt)
	}
}
