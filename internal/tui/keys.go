package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	sync  key.Binding
	clear key.Binding
	quit  key.Binding
}

var keys = keyMap{
	sync:  key.NewBinding(key.WithKeys("s")),
	clear: key.NewBinding(key.WithKeys("c")),
	quit:  key.NewBinding(key.WithKeys("q", "ctrl+c")),
}
