// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay replaces a rectangular region of a rendered view with
// overlay lines placed at (anchorX, anchorY). Truncation is ANSI-aware
// so styling on either side of the overlay survives. Lines that fall
// outside the view are dropped.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for index, overlayLine := range overlayLines {
		row := anchorY + index
		if row < 0 || row >= len(viewLines) {
			continue
		}

		viewLine := viewLines[row]
		viewLineWidth := ansi.StringWidth(viewLine)

		var result strings.Builder
		if anchorX > 0 {
			prefix := ansi.Truncate(viewLine, anchorX, "")
			result.WriteString(prefix)
			// Short lines leave a gap before the anchor.
			if gap := anchorX - ansi.StringWidth(prefix); gap > 0 {
				result.WriteString(strings.Repeat(" ", gap))
			}
		}
		result.WriteString("\x1b[0m")
		result.WriteString(overlayLine)
		result.WriteString("\x1b[0m")

		if suffixStart := anchorX + overlayWidth; suffixStart < viewLineWidth {
			result.WriteString(ansi.TruncateLeft(viewLine, suffixStart, ""))
		}

		viewLines[row] = result.String()
	}

	return strings.Join(viewLines, "\n")
}

// PlaceOverlay picks the top-left cell for an overlay of the given
// size so that it sits offsetX columns right of and offsetY rows above
// the anchor, flipped or clamped to stay inside a screen of
// screenWidth by screenHeight cells.
func PlaceOverlay(anchorX, anchorY, width, height, offsetX, offsetY, screenWidth, screenHeight int) (int, int) {
	x := anchorX + offsetX
	if x+width > screenWidth {
		// Flip to the left of the anchor.
		x = anchorX - offsetX - width
	}
	if x < 0 {
		x = 0
	}

	y := anchorY - offsetY
	if y < 0 {
		y = anchorY + 1
	}
	if y+height > screenHeight {
		y = screenHeight - height
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

// OverlayBold applies bold to the columns [startX, endX) of one line
// of the view. Bold is re-asserted after every escape sequence inside
// the range because lipgloss ends each styled segment with a full SGR
// reset.
func OverlayBold(view string, screenY, startX, endX int) string {
	if startX >= endX {
		return view
	}

	viewLines := strings.Split(view, "\n")
	if screenY < 0 || screenY >= len(viewLines) {
		return view
	}

	line := viewLines[screenY]
	if startX >= ansi.StringWidth(line) {
		return view
	}

	var result strings.Builder
	result.Grow(len(line) + 40)

	column := 0
	inBold := false
	var state byte
	remaining := line
	for len(remaining) > 0 {
		sequence, displayWidth, byteCount, newState := ansi.DecodeSequence(remaining, state, nil)
		state = newState

		if displayWidth == 0 {
			result.WriteString(sequence)
			if inBold {
				result.WriteString("\x1b[1m")
			}
			remaining = remaining[byteCount:]
			continue
		}

		if inBold && column >= endX {
			result.WriteString("\x1b[22m")
			inBold = false
		}
		if !inBold && column >= startX && column < endX {
			result.WriteString("\x1b[1m")
			inBold = true
		}

		result.WriteString(sequence)
		column += displayWidth
		remaining = remaining[byteCount:]
	}

	if inBold {
		result.WriteString("\x1b[22m")
	}

	viewLines[screenY] = result.String()
	return strings.Join(viewLines, "\n")
}

// PadOverlayLine pads styled content to innerWidth and surrounds it
// with one background-colored column on each side, producing a line
// innerWidth+2 cells wide.
func PadOverlayLine(styledContent string, innerWidth int, backgroundStyle lipgloss.Style) string {
	rightPad := innerWidth - ansi.StringWidth(styledContent)
	if rightPad < 0 {
		rightPad = 0
	}
	return backgroundStyle.Render(" ") +
		styledContent +
		backgroundStyle.Render(strings.Repeat(" ", rightPad+1))
}

// Box renders lines as a solid-background panel: every line is
// truncated to maxWidth cells and padded to the widest line. The first
// line uses titleStyle and the rest bodyStyle. Both styles should carry
// the same background.
func Box(lines []string, maxWidth int, titleStyle, bodyStyle lipgloss.Style) []string {
	if len(lines) == 0 {
		return nil
	}
	innerWidth := 0
	clipped := make([]string, len(lines))
	for index, line := range lines {
		if maxWidth > 0 && ansi.StringWidth(line) > maxWidth {
			line = ansi.Truncate(line, maxWidth, "…")
		}
		clipped[index] = line
		if width := ansi.StringWidth(line); width > innerWidth {
			innerWidth = width
		}
	}

	panel := make([]string, len(clipped))
	for index, line := range clipped {
		style := bodyStyle
		if index == 0 {
			style = titleStyle
		}
		panel[index] = PadOverlayLine(style.Render(line), innerWidth, bodyStyle)
	}
	return panel
}
