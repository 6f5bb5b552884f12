package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	up         key.Binding
	down       key.Binding
	extendUp   key.Binding
	extendDown key.Binding
	pageUp     key.Binding
	pageDown   key.Binding
	home       key.Binding
	end        key.Binding
	trash      key.Binding
	newItem    key.Binding
	multiClick key.Binding
	toggleTag  key.Binding
	clearTags  key.Binding
	highlight  key.Binding
	search     key.Binding
	sort       key.Binding
	reverse    key.Binding
	yank       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	cancel     key.Binding
	quit       key.Binding
}

func newKeyMap(highlightKey string) keyMap {
	if highlightKey == "" {
		highlightKey = "h"
	}
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		extendUp: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("shift+↑", "extend up"),
		),
		extendDown: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("shift+↓", "extend down"),
		),
		pageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		pageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home", "first"),
		),
		end: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end", "last"),
		),
		trash: key.NewBinding(
			key.WithKeys("delete", "backspace"),
			key.WithHelp(FormatShortcutForHelp(Shortcuts.Trash), "trash"),
		),
		newItem: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new item"),
		),
		// mouse only; listed so the help shows the platform modifier
		multiClick: key.NewBinding(
			key.WithKeys(Shortcuts.MultiSelect.Get()+"+click"),
			key.WithHelp(Shortcuts.MultiSelect.Get()+"+click", "add to selection"),
		),
		toggleTag: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "toggle tag"),
		),
		clearTags: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "clear tags"),
		),
		highlight: key.NewBinding(
			key.WithKeys(highlightKey),
			key.WithHelp(highlightKey, "highlight"),
		),
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		reverse: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reverse"),
		),
		yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy keys"),
		),
		reload: key.NewBinding(
			key.WithKeys(Shortcuts.Reload.Get()),
			key.WithHelp(FormatShortcutForHelp(Shortcuts.Reload), "reload"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.up,
		k.down,
		k.toggleTag,
		k.search,
		k.sort,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.extendUp, k.extendDown},
		{k.pageUp, k.pageDown, k.home, k.end},
		{k.toggleTag, k.clearTags, k.highlight, k.trash, k.newItem},
		{k.search, k.sort, k.reverse, k.reload},
		{k.yank, k.multiClick, k.cancel, k.toggleHelp},
		{k.quit},
	}
}
