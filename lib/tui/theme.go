// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for Changeline's terminal viewer.
// Chrome colors use ANSI 256-color codes for broad terminal
// compatibility. Colors that are blended at render time (the canvas
// background, tooltip, and reload glow) are hex so they can be mixed
// in a perceptual color space.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Focused marker and selected finder row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorForeground  lipgloss.Color
	WarnForeground   lipgloss.Color

	// Plot furniture.
	RuleColor    lipgloss.Color // Row separators and dashed grid lines.
	AxisColor    lipgloss.Color // Axis line, tick marks, and tick labels.
	RowLabel     lipgloss.Color // Category names left of each row.
	ControlColor lipgloss.Color // Zoom and reset buttons.

	// CanvasBackground is the assumed terminal background, used as the
	// "transparent" end of tooltip fades and marker glows.
	CanvasBackground string

	// Reload glow: markers for events that appeared in the latest
	// reload are tinted toward this color while their heat decays.
	HotAccent string

	// Search match highlighting in the finder.
	SearchHighlightBackground lipgloss.Color

	// Hover tooltips. Hex so the fade can blend them.
	TooltipForeground string
	TooltipBackground string
}

// CategoryColor converts a palette hex string (as produced by the
// timeline layout) into a lipgloss color. Empty input falls back to
// NormalText.
func (theme Theme) CategoryColor(hex string) lipgloss.Color {
	if hex == "" {
		return theme.NormalText
	}
	return lipgloss.Color(hex)
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	ErrorForeground:  lipgloss.Color("196"),
	WarnForeground:   lipgloss.Color("220"),

	RuleColor:    lipgloss.Color("238"),
	AxisColor:    lipgloss.Color("246"),
	RowLabel:     lipgloss.Color("250"),
	ControlColor: lipgloss.Color("75"),

	CanvasBackground: "#1c1c1c",
	HotAccent:        "#ffd75f",

	SearchHighlightBackground: lipgloss.Color("58"),

	TooltipForeground: "#d0d0d0",
	TooltipBackground: "#3a3a3a",
}
