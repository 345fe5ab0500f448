// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PickerItem is one row of a picker overlay.
type PickerItem struct {
	Label string // Display text.
	Value int    // Caller-defined identifier, e.g. an event index.

	// Positions are rune offsets in Label to highlight (fuzzy match
	// positions). May be nil.
	Positions []int
}

// PickerOverlay is a floating, scrollable list anchored at a screen
// position. The model owns the picker and routes navigation keys to
// it while it is open.
type PickerOverlay struct {
	Items   []PickerItem
	Cursor  int
	Offset  int // Index of the first visible item.
	MaxRows int // Visible rows; zero shows every item.
	AnchorX int
	AnchorY int
	// MinWidth keeps the panel from shrinking while the item set
	// changes under a live query.
	MinWidth int
}

// SetItems replaces the items and resets the cursor to the top.
func (picker *PickerOverlay) SetItems(items []PickerItem) {
	picker.Items = items
	picker.Cursor = 0
	picker.Offset = 0
}

// MoveUp moves the cursor up by one, wrapping to the bottom.
func (picker *PickerOverlay) MoveUp() {
	if len(picker.Items) == 0 {
		return
	}
	picker.Cursor--
	if picker.Cursor < 0 {
		picker.Cursor = len(picker.Items) - 1
	}
	picker.follow()
}

// MoveDown moves the cursor down by one, wrapping to the top.
func (picker *PickerOverlay) MoveDown() {
	if len(picker.Items) == 0 {
		return
	}
	picker.Cursor++
	if picker.Cursor >= len(picker.Items) {
		picker.Cursor = 0
	}
	picker.follow()
}

// follow scrolls so the cursor row is visible.
func (picker *PickerOverlay) follow() {
	rows := picker.visibleRows()
	if picker.Cursor < picker.Offset {
		picker.Offset = picker.Cursor
	}
	if picker.Cursor >= picker.Offset+rows {
		picker.Offset = picker.Cursor - rows + 1
	}
}

func (picker *PickerOverlay) visibleRows() int {
	if picker.MaxRows <= 0 || picker.MaxRows > len(picker.Items) {
		return len(picker.Items)
	}
	return picker.MaxRows
}

// Selected returns the highlighted item, or false when the picker is
// empty.
func (picker *PickerOverlay) Selected() (PickerItem, bool) {
	if picker.Cursor < 0 || picker.Cursor >= len(picker.Items) {
		return PickerItem{}, false
	}
	return picker.Items[picker.Cursor], true
}

// Width returns the rendered width in columns: a two-column cursor
// prefix, the widest label, and one column of padding on each side.
func (picker *PickerOverlay) Width() int {
	widest := 0
	for _, item := range picker.Items {
		if width := ansi.StringWidth(item.Label); width > widest {
			widest = width
		}
	}
	width := 2 + widest + 2
	if width < picker.MinWidth {
		width = picker.MinWidth
	}
	return width
}

// Contains reports whether the screen cell (x, y) is inside the
// picker's rectangle.
func (picker *PickerOverlay) Contains(x, y int) bool {
	if y < picker.AnchorY || y >= picker.AnchorY+picker.visibleRows() {
		return false
	}
	return x >= picker.AnchorX && x < picker.AnchorX+picker.Width()
}

// ItemAtY returns the item index rendered on screen row y, or -1.
func (picker *PickerOverlay) ItemAtY(y int) int {
	row := y - picker.AnchorY
	if row < 0 || row >= picker.visibleRows() {
		return -1
	}
	return picker.Offset + row
}

// Render produces the visible picker lines, each exactly Width()
// columns wide on a solid background. The cursor row uses the
// selection colors and matched runes use the search highlight.
func (picker *PickerOverlay) Render(theme Theme) []string {
	totalWidth := picker.Width()
	innerWidth := totalWidth - 2

	background := lipgloss.NewStyle().
		Background(lipgloss.Color(theme.TooltipBackground)).
		Foreground(lipgloss.Color(theme.TooltipForeground))
	selected := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	rows := picker.visibleRows()
	lines := make([]string, 0, rows)
	for index := picker.Offset; index < picker.Offset+rows && index < len(picker.Items); index++ {
		item := picker.Items[index]
		style := background
		marker := "  "
		if index == picker.Cursor {
			style = selected
			marker = "> "
		}
		highlight := style.Background(theme.SearchHighlightBackground)

		label := item.Label
		if ansi.StringWidth(label) > innerWidth-2 {
			label = ansi.Truncate(label, innerWidth-2, "…")
		}
		content := style.Render(marker) + highlightRunes(label, item.Positions, style, highlight)
		lines = append(lines, PadOverlayLine(content, innerWidth, style))
	}
	return lines
}

// highlightRunes styles the runes at positions with highlight and the
// rest with base.
func highlightRunes(text string, positions []int, base, highlight lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(text)
	}
	marked := make(map[int]bool, len(positions))
	for _, position := range positions {
		marked[position] = true
	}

	var result, run strings.Builder
	runMarked := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runMarked {
			result.WriteString(highlight.Render(run.String()))
		} else {
			result.WriteString(base.Render(run.String()))
		}
		run.Reset()
	}
	for index, r := range []rune(text) {
		if marked[index] != runMarked {
			flush()
			runMarked = marked[index]
		}
		run.WriteRune(r)
	}
	flush()
	return result.String()
}
