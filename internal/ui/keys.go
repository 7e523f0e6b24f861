package ui

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Login    key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Continue key.Binding
	Pay      key.Binding
	Borrow   key.Binding
	Send     key.Binding
	Close    key.Binding
	ScrollUp key.Binding
	ScrollDn key.Binding
	Retry    key.Binding
	Quit     key.Binding

	mode helpMode
}

type helpMode int

const (
	helpLanding helpMode = iota
	helpArcade
	helpChat
	helpBot
	helpDone
)

func newKeyMap() keyMap {
	return keyMap{
		Login:    key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "Log in")),
		Up:       key.NewBinding(key.WithKeys("up", "w", "k"), key.WithHelp("↑/w", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "s", "j"), key.WithHelp("↓/s", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "a", "h"), key.WithHelp("←/a", "left")),
		Right:    key.NewBinding(key.WithKeys("right", "d"), key.WithHelp("→/d", "right")),
		Continue: key.NewBinding(key.WithKeys("enter", "c"), key.WithHelp("enter", "Continue")),
		Pay:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "Pay Now")),
		Borrow:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "Borrow Charger")),
		Send:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "Send")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "Close")),
		ScrollUp: key.NewBinding(key.WithKeys("pgup", "up"), key.WithHelp("pgup", "Scroll up")),
		ScrollDn: key.NewBinding(key.WithKeys("pgdown", "down"), key.WithHelp("pgdn", "Scroll down")),
		Retry:    key.NewBinding(key.WithKeys("enter", "t"), key.WithHelp("enter", "Try Again (Human)")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "Quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	switch k.mode {
	case helpArcade:
		return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Continue, k.Pay, k.Borrow, k.Close}
	case helpChat:
		return []key.Binding{k.Send, k.ScrollUp, k.ScrollDn, k.Close}
	case helpBot:
		return []key.Binding{k.Retry, k.Quit}
	case helpDone:
		return []key.Binding{k.Quit}
	default:
		return []key.Binding{k.Login, k.Quit}
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
