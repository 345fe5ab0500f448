// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"fmt"
	"time"

	"github.com/changeline/changeline/lib/changefeed"
)

// Tooltip timing and appearance defaults.
const (
	DefaultFadeIn         = 200 * time.Millisecond
	DefaultFadeOut        = 300 * time.Millisecond
	DefaultTooltipOpacity = 0.9
)

// TooltipDateLayout formats the event time in the tooltip.
const TooltipDateLayout = "2006-01-02 15:04:05"

// tooltipIDPrefix is how many characters of the event ID the tooltip
// shows.
const tooltipIDPrefix = 16

// TooltipContent is the summary shown for a hovered event.
type TooltipContent struct {
	Title string
	Lines []string
}

// DescribeEvent builds the tooltip content for an event: the category
// as the title, then date, resource type, an ID prefix, and sequence
// number.
func DescribeEvent(event changefeed.TimedEvent) TooltipContent {
	id := []rune(event.ID)
	if len(id) > tooltipIDPrefix {
		id = id[:tooltipIDPrefix]
	}
	return TooltipContent{
		Title: event.ChangeType,
		Lines: []string{
			"Date: " + event.Time.Format(TooltipDateLayout),
			"Resource: " + event.ResourceType,
			"ID: " + string(id) + "...",
			fmt.Sprintf("Seq: %d", event.Seq),
		},
	}
}

// Tooltip is the single floating event summary. Showing it fades it in
// toward its target opacity; hiding it fades it out, and once the fade
// completes the tooltip is gone. The zero value is a hidden tooltip.
type Tooltip struct {
	// Index is the marker the tooltip describes.
	Index   int
	Content TooltipContent

	// AnchorX and AnchorY are the pointer position the tooltip was
	// opened at, in the surface's coordinates.
	AnchorX float64
	AnchorY float64

	present bool
	fade    fade
}

type fade struct {
	from     float64
	to       float64
	start    time.Time
	duration time.Duration
}

func (f fade) at(now time.Time) float64 {
	if f.duration <= 0 || !now.Before(f.start.Add(f.duration)) {
		return f.to
	}
	elapsed := now.Sub(f.start)
	if elapsed <= 0 {
		return f.from
	}
	progress := float64(elapsed) / float64(f.duration)
	return f.from + (f.to-f.from)*progress
}

func (f fade) done(now time.Time) bool {
	return !now.Before(f.start.Add(f.duration))
}

// Show opens the tooltip for a marker, or retargets an open or fading
// tooltip, fading toward opacity from its current opacity.
func (tooltip *Tooltip) Show(index int, content TooltipContent, anchorX, anchorY float64, opacity float64, duration time.Duration, now time.Time) {
	current := tooltip.Opacity(now)
	tooltip.Index = index
	tooltip.Content = content
	tooltip.AnchorX = anchorX
	tooltip.AnchorY = anchorY
	tooltip.present = true
	tooltip.fade = fade{from: current, to: opacity, start: now, duration: duration}
}

// Hide starts fading the tooltip out. It stays present, with its
// content, until the fade completes.
func (tooltip *Tooltip) Hide(duration time.Duration, now time.Time) {
	if !tooltip.present || tooltip.fade.to == 0 {
		return
	}
	tooltip.fade = fade{from: tooltip.Opacity(now), to: 0, start: now, duration: duration}
}

// Remove takes the tooltip away immediately.
func (tooltip *Tooltip) Remove() {
	*tooltip = Tooltip{}
}

// Tick removes the tooltip once a fade-out has completed. It reports
// whether a fade is still running.
func (tooltip *Tooltip) Tick(now time.Time) bool {
	if !tooltip.present {
		return false
	}
	if tooltip.fade.done(now) {
		if tooltip.fade.to == 0 {
			tooltip.Remove()
		}
		return false
	}
	return true
}

// Visible reports whether the tooltip is present, including while it
// fades out.
func (tooltip *Tooltip) Visible() bool {
	return tooltip.present
}

// Leaving reports whether the tooltip is fading out.
func (tooltip *Tooltip) Leaving() bool {
	return tooltip.present && tooltip.fade.to == 0
}

// Opacity returns the tooltip's opacity at now.
func (tooltip *Tooltip) Opacity(now time.Time) float64 {
	if !tooltip.present {
		return 0
	}
	return tooltip.fade.at(now)
}
