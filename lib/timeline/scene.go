// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"math"

	"github.com/changeline/changeline/lib/changefeed"
)

// Instructions is the hint printed under the controls.
const Instructions = "Use mouse wheel to zoom, click and drag to pan."

// Anchor is the horizontal alignment of a text element relative to its
// X coordinate.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Line is a straight line in plot coordinates.
type Line struct {
	X1, Y1 float64
	X2, Y2 float64
	Dashed bool
}

// Text is a text element in plot coordinates.
type Text struct {
	X, Y   float64
	Text   string
	Anchor Anchor
	// Color is a "#rrggbb" string, or empty for the surface's default
	// text color.
	Color string
}

// Marker is the visual for one event.
type Marker struct {
	// Index is the event's position in the feed.
	Index int
	Event changefeed.TimedEvent

	X, Y    float64
	Radius  float64
	Opacity float64
	Color   string

	Emphasized bool
}

// LegendEntry pairs a category with its color at a position in plot
// coordinates.
type LegendEntry struct {
	Category string
	Color    string
	X, Y     float64
}

// ControlKind identifies an on-screen zoom control.
type ControlKind int

const (
	ControlZoomIn ControlKind = iota
	ControlZoomOut
	ControlReset
)

// String returns the control's label.
func (kind ControlKind) String() string {
	switch kind {
	case ControlZoomIn:
		return "+"
	case ControlZoomOut:
		return "-"
	default:
		return "Reset"
	}
}

// Control is a clickable zoom control. X and Y are its top-left corner
// in plot coordinates.
type Control struct {
	Kind          ControlKind
	X, Y          float64
	Width, Height float64
}

// Contains reports whether a point in plot coordinates is inside the
// control.
func (control Control) Contains(x, y float64) bool {
	return x >= control.X && x < control.X+control.Width &&
		y >= control.Y && y < control.Y+control.Height
}

// Center returns the control's center point.
func (control Control) Center() (float64, float64) {
	return control.X + control.Width/2, control.Y + control.Height/2
}

// Scene is the display list for one layout pass. Every coordinate is
// relative to the plot's top-left corner; surfaces add the margins.
//
// A scene has two update paths. BuildScene constructs everything from a
// layout. Reposition recomputes only what depends on the transform:
// axis ticks, grid lines, and the x positions of markers and their
// labels. Rows, row labels, the legend, and controls never move.
type Scene struct {
	Geometry Geometry
	Params   LayoutParams

	// AxisY is where the axis line is drawn.
	AxisY      float64
	Ticks      []Tick
	Grid       []Line
	Separators []Line
	RowLabels  []Text

	// Markers and Labels are parallel: Labels[i] is the resource type
	// label above Markers[i].
	Markers []Marker
	Labels  []Text

	Legend       []LegendEntry
	Controls     []Control
	Instructions Text

	emphasized int
}

// BuildScene constructs the full display list for a layout and events
// positioned with effective.
func BuildScene(layout Layout, events []changefeed.TimedEvent, effective EffectiveScale, params LayoutParams) *Scene {
	geometry := layout.Geometry
	scene := &Scene{
		Geometry:   geometry,
		Params:     params,
		AxisY:      geometry.PlotHeight,
		emphasized: -1,
	}

	for row := 0; row <= len(layout.Categories); row++ {
		y := float64(row) * geometry.RowHeight
		scene.Separators = append(scene.Separators, Line{X1: 0, Y1: y, X2: geometry.PlotWidth, Y2: y})
	}

	for row, category := range layout.Categories {
		scene.RowLabels = append(scene.RowLabels, Text{
			X:      -params.RowLabelGap,
			Y:      geometry.RowCenterY(row),
			Text:   category,
			Anchor: AnchorEnd,
			Color:  layout.Color(category),
		})
	}

	scene.Markers = make([]Marker, 0, len(events))
	scene.Labels = make([]Text, 0, len(events))
	for index, event := range events {
		row, _ := layout.Row(event.ChangeType)
		y := geometry.RowCenterY(row)
		scene.Markers = append(scene.Markers, Marker{
			Index:   index,
			Event:   event,
			Y:       y,
			Radius:  params.MarkerRadius,
			Opacity: params.MarkerOpacity,
			Color:   layout.Color(event.ChangeType),
		})
		scene.Labels = append(scene.Labels, Text{
			Y:      y - params.EventLabelOffset,
			Text:   event.ResourceType,
			Anchor: AnchorMiddle,
		})
	}

	legendX := 0.0
	legendY := geometry.PlotHeight + params.LegendOffset
	for _, category := range layout.Categories {
		scene.Legend = append(scene.Legend, LegendEntry{
			Category: category,
			Color:    layout.Color(category),
			X:        legendX,
			Y:        legendY,
		})
		legendX += params.LegendSwatch + params.CharWidth*float64(len(category)+1) + params.LegendSpacing
	}

	controlX := geometry.PlotWidth - params.ControlInset
	controlY := geometry.PlotHeight + params.ControlOffset
	controlHeight := params.ControlHeight
	if controlHeight <= 0 {
		controlHeight = params.ControlSize
	}
	for _, kind := range []ControlKind{ControlZoomIn, ControlZoomOut, ControlReset} {
		width := params.ControlSize
		if kind == ControlReset {
			width = params.ResetWidth
		}
		scene.Controls = append(scene.Controls, Control{
			Kind:   kind,
			X:      controlX,
			Y:      controlY,
			Width:  width,
			Height: controlHeight,
		})
		controlX += width + params.ControlGap
	}

	scene.Instructions = Text{
		X:    0,
		Y:    geometry.PlotHeight + params.InstructionsOffset,
		Text: Instructions,
	}

	scene.Reposition(effective)
	return scene
}

// Reposition moves markers, event labels, ticks, and grid lines to
// match a new effective scale.
func (scene *Scene) Reposition(effective EffectiveScale) {
	for index := range scene.Markers {
		x := effective.X(scene.Markers[index].Event.Time)
		scene.Markers[index].X = x
		scene.Labels[index].X = x
	}

	scene.Ticks = effective.Ticks()
	scene.Grid = scene.Grid[:0]
	for _, tick := range scene.Ticks {
		scene.Grid = append(scene.Grid, Line{
			X1: tick.X, Y1: 0,
			X2: tick.X, Y2: scene.Geometry.PlotHeight,
			Dashed: true,
		})
	}
}

// SetEmphasis emphasizes the marker at index and returns any previously
// emphasized marker to normal. A negative or out-of-range index clears
// emphasis.
func (scene *Scene) SetEmphasis(index int) {
	if scene.emphasized >= 0 && scene.emphasized < len(scene.Markers) {
		marker := &scene.Markers[scene.emphasized]
		marker.Emphasized = false
		marker.Radius = scene.Params.MarkerRadius
		marker.Opacity = scene.Params.MarkerOpacity
	}
	scene.emphasized = -1
	if index < 0 || index >= len(scene.Markers) {
		return
	}
	marker := &scene.Markers[index]
	marker.Emphasized = true
	marker.Radius = scene.Params.EmphasisRadius
	marker.Opacity = scene.Params.EmphasisOpacity
	scene.emphasized = index
}

// Emphasized returns the emphasized marker index, or -1.
func (scene *Scene) Emphasized() int {
	return scene.emphasized
}

// HitTest returns the index of the marker under a point in plot
// coordinates. A marker is hit when the point lies within its radius
// horizontally and vertically. When several markers are hit the
// closest wins, and among equally close markers the last drawn.
func (scene *Scene) HitTest(x, y float64) (int, bool) {
	best := -1
	bestDistance := math.Inf(1)
	for index, marker := range scene.Markers {
		if !scene.InPlot(marker.X, marker.Y) {
			continue
		}
		dx := math.Abs(x - marker.X)
		dy := math.Abs(y - marker.Y)
		if dx > marker.Radius || dy > marker.Radius {
			continue
		}
		distance := dx*dx + dy*dy
		if distance <= bestDistance {
			best = index
			bestDistance = distance
		}
	}
	return best, best >= 0
}

// ControlAt returns the control under a point in plot coordinates.
func (scene *Scene) ControlAt(x, y float64) (ControlKind, bool) {
	for _, control := range scene.Controls {
		if control.Contains(x, y) {
			return control.Kind, true
		}
	}
	return 0, false
}

// InPlot reports whether a point in plot coordinates lies inside the
// plot area.
func (scene *Scene) InPlot(x, y float64) bool {
	return x >= 0 && x <= scene.Geometry.PlotWidth && y >= 0 && y <= scene.Geometry.PlotHeight
}
