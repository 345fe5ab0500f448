// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/changeline/changeline/lib/changefeed"
	"github.com/changeline/changeline/lib/timeline"
	"github.com/changeline/changeline/lib/tui"
)

// Tooltip placement relative to its anchor, in cells.
const (
	tooltipOffsetX = 2
	tooltipOffsetY = 1
)

// renderTooltip draws the tooltip box at opacity. Its colors are
// blended from the canvas background so the box fades in and out.
func renderTooltip(content timeline.TooltipContent, opacity float64, theme tui.Theme, renderer *lipgloss.Renderer, maxWidth int) []string {
	background := tui.Blend(theme.CanvasBackground, theme.TooltipBackground, opacity)
	foreground := tui.Blend(theme.CanvasBackground, theme.TooltipForeground, opacity)

	body := renderer.NewStyle().
		Background(lipgloss.Color(background)).
		Foreground(lipgloss.Color(foreground))
	title := body.Bold(true)

	lines := append([]string{content.Title}, content.Lines...)
	return tui.Box(lines, maxWidth, title, body)
}

// detailState is the event detail overlay: the full event as
// highlighted JSON with its parsed time and feed provenance.
type detailState struct {
	index int
	lines []string
}

func newDetail(index int, event changefeed.TimedEvent, feed *changefeed.Feed) *detailState {
	return &detailState{index: index, lines: detailLines(index, event, feed)}
}

// detailLines builds the overlay body. The JSON block is highlighted
// with chroma; when highlighting fails the plain JSON is used. The time
// is shown in the location the feed's dates were parsed in.
func detailLines(index int, event changefeed.TimedEvent, feed *changefeed.Feed) []string {
	encoded, err := json.MarshalIndent(event.Event, "", "  ")
	if err != nil {
		encoded = []byte(fmt.Sprintf("%+v", event.Event))
	}

	var highlighted bytes.Buffer
	code := string(encoded)
	if err := quick.Highlight(&highlighted, code, "json", "terminal256", "monokai"); err == nil {
		code = highlighted.String()
	}

	total := 0
	if feed != nil {
		total = len(feed.Events)
	}
	lines := []string{
		fmt.Sprintf("Event %d of %d", index+1, total),
		"",
	}
	lines = append(lines, strings.Split(strings.TrimRight(code, "\n"), "\n")...)
	lines = append(lines, "", "Time:   "+event.Time.Format(time.RFC3339))
	if feed != nil {
		lines = append(lines, "Source: "+feed.Source)
		if feed.Digest != "" {
			lines = append(lines, "Digest: "+feed.Digest)
		}
	}
	return lines
}

// render lays the detail lines out as a panel no wider than maxWidth
// and no taller than maxHeight.
func (detail *detailState) render(theme tui.Theme, renderer *lipgloss.Renderer, maxWidth, maxHeight int) []string {
	background := renderer.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.NormalText)
	title := background.Bold(true).Foreground(theme.HeaderForeground)
	faint := background.Foreground(theme.HelpText)

	lines := detail.lines
	footer := "Esc close"
	if maxHeight > 0 && len(lines)+1 > maxHeight {
		keep := maxHeight - 1
		if keep < 1 {
			keep = 1
		}
		lines = lines[:keep]
	}

	innerWidth := ansi.StringWidth(footer)
	clipped := make([]string, len(lines))
	for index, line := range lines {
		if maxWidth > 2 && ansi.StringWidth(line) > maxWidth-2 {
			line = ansi.Truncate(line, maxWidth-2, "…")
		}
		clipped[index] = line
		if width := ansi.StringWidth(line); width > innerWidth {
			innerWidth = width
		}
	}

	panel := make([]string, 0, len(clipped)+1)
	for index, line := range clipped {
		if index == 0 {
			line = title.Render(line)
		}
		panel = append(panel, tui.PadOverlayLine(line, innerWidth, background))
	}
	panel = append(panel, tui.PadOverlayLine(faint.Render(footer), innerWidth, background))
	return panel
}
