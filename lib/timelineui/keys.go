// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the timeline viewer.
type KeyMap struct {
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ResetZoom key.Binding

	// Pan by a tenth of the plot width.
	PanLeft  key.Binding
	PanRight key.Binding

	// Vertical canvas scrolling when the rows do not fit.
	ScrollUp   key.Binding
	ScrollDown key.Binding

	// Keyboard focus across events (acts as hover).
	FocusNext     key.Binding
	FocusPrevious key.Binding

	Detail key.Binding // Open the event detail overlay.
	Find   key.Binding // Open the fuzzy event finder.
	Reload key.Binding
	Close  key.Binding // Close the open overlay or clear focus.

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	ResetZoom: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "reset"),
	),
	PanLeft: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "pan left"),
	),
	PanRight: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "pan right"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "scroll down"),
	),
	FocusNext: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next event"),
	),
	FocusPrevious: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-Tab", "previous event"),
	),
	Detail: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "details"),
	),
	Find: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "find"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "close"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
