// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/changeline/changeline/lib/changefeed"
	"github.com/changeline/changeline/lib/timeline"
	"github.com/changeline/changeline/lib/tui"
)

func TestDetailLines(t *testing.T) {
	feed := scenarioFeed()
	event := feed.Events[1]
	detail := newDetail(1, event, feed)

	text := ansi.Strip(strings.Join(detail.lines, "\n"))
	for _, want := range []string{
		"Event 2 of 2",
		`"ID": "0123456789abcdef0123-NewSeries"`,
		`"ResourceType": "Series"`,
		`"Seq": 2`,
		"Time:   2024-01-01T09:00:00Z",
		"Source: changes.json",
		"Digest: " + feed.Digest,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("detail missing %q:\n%s", want, text)
		}
	}
}

func TestDetailLinesLocation(t *testing.T) {
	feed := scenarioFeed()
	event := feed.Events[0]
	parsed, err := time.ParseInLocation(changefeed.DateLayout, event.Date, time.FixedZone("UTC+2", 2*60*60))
	if err != nil {
		t.Fatal(err)
	}
	event.Time = parsed
	detail := newDetail(0, event, feed)

	text := ansi.Strip(strings.Join(detail.lines, "\n"))
	if !strings.Contains(text, "Time:   2024-01-01T08:00:00+02:00") {
		t.Errorf("detail time not in the feed location:\n%s", text)
	}
}

func TestDetailRenderBounds(t *testing.T) {
	feed := scenarioFeed()
	detail := newDetail(0, feed.Events[0], feed)

	panel := detail.render(tui.DefaultTheme, testRenderer(), 30, 6)
	if len(panel) != 6 {
		t.Fatalf("panel has %d lines, want 6", len(panel))
	}
	width := ansi.StringWidth(panel[0])
	if width > 30 {
		t.Errorf("panel width %d exceeds 30", width)
	}
	for index, line := range panel {
		if got := ansi.StringWidth(line); got != width {
			t.Errorf("line %d width %d, want %d", index, got, width)
		}
	}
	if footer := ansi.Strip(panel[len(panel)-1]); !strings.Contains(footer, "Esc close") {
		t.Errorf("footer = %q", footer)
	}
}

func TestRenderTooltip(t *testing.T) {
	content := timeline.DescribeEvent(scenarioFeed().Events[0])
	lines := renderTooltip(content, 0.9, tui.DefaultTheme, testRenderer(), 80)
	if len(lines) != 1+len(content.Lines) {
		t.Fatalf("tooltip has %d lines, want %d", len(lines), 1+len(content.Lines))
	}
	if title := ansi.Strip(lines[0]); strings.TrimSpace(title) != "NewPatient" {
		t.Errorf("title line = %q", title)
	}
	width := ansi.StringWidth(lines[0])
	for index, line := range lines {
		if got := ansi.StringWidth(line); got != width {
			t.Errorf("line %d width %d, want %d", index, got, width)
		}
	}

	narrow := renderTooltip(content, 0.9, tui.DefaultTheme, testRenderer(), 10)
	if got := ansi.StringWidth(narrow[1]); got != 12 {
		t.Errorf("narrow tooltip width = %d, want 12", got)
	}
}
