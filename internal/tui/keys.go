package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap 全部按键绑定
type keyMap struct {
	Send        key.Binding
	Newline     key.Binding
	Suggest     key.Binding
	ToggleTheme key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Quit        key.Binding
}

// 多数终端无法区分 shift+enter 和 enter，alt+enter、ctrl+j 作为替代
func defaultKeyMap() keyMap {
	return keyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("shift+enter", "alt+enter", "ctrl+j"),
			key.WithHelp("alt+enter", "newline"),
		),
		Suggest: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "suggest"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "theme"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "page down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k keyMap) shortHelp(sessionEmpty bool) []key.Binding {
	bindings := []key.Binding{k.Send, k.Newline}
	if sessionEmpty {
		bindings = append(bindings, k.Suggest)
	}
	return append(bindings, k.ToggleTheme, k.ScrollUp, k.Quit)
}
