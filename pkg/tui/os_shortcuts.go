package tui

import (
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// OSType represents the operating system type
type OSType int

const (
	OSMac OSType = iota
	OSLinux
	OSWindows
	OSUnknown
)

// GetOS returns the current operating system type
func GetOS() OSType {
	switch runtime.GOOS {
	case "darwin":
		return OSMac
	case "linux":
		return OSLinux
	case "windows":
		return OSWindows
	default:
		return OSUnknown
	}
}

// ShortcutKey represents a keyboard shortcut with OS-specific variations
type ShortcutKey struct {
	Mac     string
	Linux   string
	Windows string
	Default string // Fallback if OS-specific not defined
}

// Get returns the appropriate shortcut for the current OS
func (s ShortcutKey) Get() string {
	return s.For(GetOS())
}

// For returns the shortcut used on os
func (s ShortcutKey) For(os OSType) string {
	switch os {
	case OSMac:
		if s.Mac != "" {
			return s.Mac
		}
	case OSLinux:
		if s.Linux != "" {
			return s.Linux
		}
	case OSWindows:
		if s.Windows != "" {
			return s.Windows
		}
	}
	return s.Default
}

// Shortcuts holds the grid bindings that differ between platforms
var Shortcuts = struct {
	// MultiSelect is the modifier held while clicking to add a row
	MultiSelect ShortcutKey
	Trash       ShortcutKey
	Reload      ShortcutKey
}{
	MultiSelect: ShortcutKey{
		Mac:     "alt", // ctrl+click is a right click on macOS
		Default: "ctrl",
	},
	Trash: ShortcutKey{
		Mac:     "backspace", // Mac keyboards label backspace "delete"
		Default: "delete",
	},
	Reload: ShortcutKey{
		Default: "ctrl+r",
	},
}

// multiSelectHeld reports whether a click adds to the selection. Ctrl
// works everywhere; alt also works where it is the platform modifier.
func multiSelectHeld(msg tea.MouseMsg) bool {
	if msg.Ctrl {
		return true
	}
	return msg.Alt && Shortcuts.MultiSelect.Get() == "alt"
}

// FormatShortcutForHelp formats a shortcut key for display in help text
func FormatShortcutForHelp(key ShortcutKey) string {
	return formatShortcut(key.Get(), GetOS())
}

func formatShortcut(shortcut string, os OSType) string {
	// Use M- prefix for Alt on Linux/Windows (common terminal convention)
	if os == OSMac {
		shortcut = strings.ReplaceAll(shortcut, "alt+", "⌥")
	} else {
		shortcut = strings.ReplaceAll(shortcut, "alt+", "M-")
	}
	shortcut = strings.ReplaceAll(shortcut, "ctrl+", "^")
	shortcut = strings.ReplaceAll(shortcut, "shift+", "⇧")

	switch shortcut {
	case "delete":
		return "del"
	case "backspace":
		return "⌫"
	}
	return shortcut
}
