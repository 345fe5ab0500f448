// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar produces a single-column vertical scrollbar of the
// given height for a canvas of totalRows of which visibleRows are on
// screen starting at scrollOffset. When everything fits the thumb
// spans the full height.
func RenderScrollbar(theme Theme, height, totalRows, visibleRows, scrollOffset int) string {
	if height <= 0 {
		return ""
	}

	trackStyle := lipgloss.NewStyle().Foreground(theme.BorderColor)
	thumbStyle := lipgloss.NewStyle().Foreground(theme.ControlColor)

	lines := make([]string, height)
	if totalRows <= visibleRows || totalRows <= 0 {
		for index := range lines {
			lines[index] = thumbStyle.Render("┃")
		}
		return strings.Join(lines, "\n")
	}

	thumbStart, thumbSize := ScrollThumb(height, totalRows, visibleRows, scrollOffset)
	for index := range lines {
		if index >= thumbStart && index < thumbStart+thumbSize {
			lines[index] = thumbStyle.Render("┃")
		} else {
			lines[index] = trackStyle.Render("│")
		}
	}
	return strings.Join(lines, "\n")
}

// ScrollThumb returns the first row and size of the scrollbar thumb.
// The thumb is proportional to visibleRows/totalRows with a minimum
// of one row.
func ScrollThumb(height, totalRows, visibleRows, scrollOffset int) (int, int) {
	if totalRows <= visibleRows || totalRows <= 0 {
		return 0, height
	}
	size := height * visibleRows / totalRows
	if size < 1 {
		size = 1
	}
	scrollable := totalRows - visibleRows
	track := height - size
	start := 0
	if scrollable > 0 && track > 0 {
		if scrollOffset > scrollable {
			scrollOffset = scrollable
		}
		start = scrollOffset * track / scrollable
	}
	if start+size > height {
		start = height - size
	}
	return start, size
}
