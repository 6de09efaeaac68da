package tui

import "github.com/charmbracelet/bubbles/key"

var (
	keyResume = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume last"))
	keyFree   = key.NewBinding(key.WithKeys("+", "_"), key.WithHelp("+/_", "free entry"))
	keyEdit   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit log"))
	keyActs   = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "edit activities"))
)

func helpKeys() []key.Binding {
	return []key.Binding{keyResume, keyFree, keyEdit, keyActs}
}
