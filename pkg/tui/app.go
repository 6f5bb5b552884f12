package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusLines is the height of the status bar under the grid
const statusLines = 1

// statusDuration is how long a StatusMsg stays on screen
const statusDuration = 3 * time.Second

type App struct {
	grid         *GridModel
	width        int
	height       int
	statusMsg    string
	statusSeq    int
	highlighting bool
}

func NewApp(grid *GridModel) *App {
	return &App{
		grid: grid,
	}
}

func (a *App) Init() tea.Cmd {
	return a.grid.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// the grid gets everything above the status bar
		msg.Height = max(msg.Height-statusLines, 0)
		_, cmd := a.grid.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		// Global keybindings
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case StatusMsg:
		a.statusMsg = string(msg)
		a.statusSeq++
		seq := a.statusSeq
		return a, tea.Tick(statusDuration, func(time.Time) tea.Msg {
			return clearStatusMsg{seq: seq}
		})

	case PersistentStatusMsg:
		a.statusMsg = string(msg)
		a.statusSeq++
		return a, nil

	case clearStatusMsg:
		if msg.seq == a.statusSeq {
			a.statusMsg = ""
		}
		return a, nil

	case HighlightMsg:
		a.highlighting = msg.On
		return a, nil
	}

	_, cmd := a.grid.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}
	style := StatusStyle
	if strings.HasPrefix(a.statusMsg, "✗") {
		style = style.Foreground(ErrorStyle.GetForeground())
	}
	statusBar := style.Width(a.width).MaxWidth(a.width).Render(a.statusMsg)
	return a.grid.View() + "\n" + statusBar
}

// Messages for communication between views
type StatusMsg string

// PersistentStatusMsg stays until another status replaces it
type PersistentStatusMsg string

type clearStatusMsg struct {
	seq int
}
