package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SearchBar is the one-line query prompt shown in place of the info line
// while a search is being typed.
type SearchBar struct {
	input    textinput.Model
	isActive bool
	width    int
	// applied is the text of the query currently shown by the grid
	applied string
}

// NewSearchBar creates a new search bar component
func NewSearchBar() *SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search titles and creators..."
	ti.CharLimit = 100
	ti.Width = 50
	ti.Prompt = ""

	return &SearchBar{
		input: ti,
	}
}

// SetActive sets whether the search bar has the keyboard
func (s *SearchBar) SetActive(active bool) tea.Cmd {
	s.isActive = active
	if active {
		return s.input.Focus()
	}
	s.input.Blur()
	return nil
}

// Active reports whether a search is being typed
func (s *SearchBar) Active() bool {
	return s.isActive
}

// SetWidth sets the width for the search bar
func (s *SearchBar) SetWidth(width int) {
	s.width = width
	// icon, padding and the applied marker
	s.input.Width = max(width-6, 1)
}

// Value returns the current search text
func (s *SearchBar) Value() string {
	return s.input.Value()
}

// SetValue sets the search text
func (s *SearchBar) SetValue(value string) {
	s.input.SetValue(value)
}

// Commit records the current text as applied and returns it
func (s *SearchBar) Commit() string {
	s.applied = s.input.Value()
	return s.applied
}

// Revert restores the text of the applied query
func (s *SearchBar) Revert() {
	s.input.SetValue(s.applied)
}

// Applied returns the text of the applied query
func (s *SearchBar) Applied() string {
	return s.applied
}

// Update handles tea messages for the search bar
func (s *SearchBar) Update(msg tea.Msg) (*SearchBar, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// View renders the prompt
func (s *SearchBar) View() string {
	var icon string
	if s.isActive {
		icon = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorActive)).
			Foreground(lipgloss.Color(ColorWhite)).
			Bold(true).
			Padding(0, 1).
			Render("⌕")
	} else {
		icon = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorNormal)).
			Bold(true).
			Render(" ⌕ ")
	}
	return lipgloss.NewStyle().
		MaxWidth(max(s.width, 1)).
		Render(lipgloss.JoinHorizontal(lipgloss.Center, icon, " ", s.input.View()))
}

// Reset clears the search input
func (s *SearchBar) Reset() {
	s.input.SetValue("")
	s.applied = ""
}
