// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"github.com/changeline/changeline/lib/changefeed"
)

// LayoutParams are the fixed measurements a layout pass works from. All
// values are in surface units: pixels for the vector surface, cells for
// the terminal surface. The engine never assumes which.
type LayoutParams struct {
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// RowHeight is the height of one category row. The plot is one
	// row taller than the category count, leaving room under the last
	// row before the axis.
	RowHeight float64

	// ControlSpace is extra height below the bottom margin for the
	// legend, zoom controls, and instructions.
	ControlSpace float64

	// RowLabelGap is the distance between a right-aligned row label
	// and the left edge of the plot.
	RowLabelGap float64

	// EventLabelOffset is how far an event's label sits above its
	// marker center.
	EventLabelOffset float64

	// AxisLabelOffset is the distance from the plot bottom to the axis
	// tick labels.
	AxisLabelOffset float64

	// LegendOffset, ControlOffset, and InstructionsOffset place the
	// legend row, the zoom controls, and the instructions line below
	// the plot bottom.
	LegendOffset       float64
	ControlOffset      float64
	InstructionsOffset float64

	// ControlInset is the distance from the plot's right edge to the
	// left edge of the first zoom control.
	ControlInset float64

	// ControlSize is the width and height of the square zoom-in and
	// zoom-out controls; ResetWidth is the width of the reset control.
	// ControlHeight, when set, overrides the height of every control.
	ControlSize   float64
	ControlHeight float64
	ResetWidth    float64
	ControlGap    float64

	// LegendSwatch is the width of a legend color swatch and
	// LegendSpacing the gap after each legend entry.
	LegendSwatch  float64
	LegendSpacing float64

	// Marker appearance in the normal and emphasized states.
	MarkerRadius    float64
	MarkerOpacity   float64
	EmphasisRadius  float64
	EmphasisOpacity float64

	// CharWidth is the advance of one text character, used to measure
	// labels and legend entries.
	CharWidth float64

	// Palette overrides the category palette. Nil means Category10.
	Palette []string
}

// PixelParams returns the measurements of the vector surface: 100px
// margins, 60px rows, and 100px of control space below the plot.
func PixelParams() LayoutParams {
	return LayoutParams{
		MarginTop:          100,
		MarginRight:        100,
		MarginBottom:       100,
		MarginLeft:         100,
		RowHeight:          60,
		ControlSpace:       100,
		RowLabelGap:        10,
		EventLabelOffset:   15,
		AxisLabelOffset:    18,
		LegendOffset:       40,
		ControlOffset:      40,
		InstructionsOffset: 60,
		ControlInset:       72,
		ControlSize:        24,
		ResetWidth:         44,
		ControlGap:         4,
		LegendSwatch:       12,
		LegendSpacing:      16,
		MarkerRadius:       6,
		MarkerOpacity:      0.9,
		EmphasisRadius:     8,
		EmphasisOpacity:    1,
		CharWidth:          7,
	}
}

// Geometry is the size of the plot area and its surroundings for one
// layout pass.
type Geometry struct {
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// PlotWidth is the viewport width minus the horizontal margins,
	// never negative.
	PlotWidth float64

	RowHeight float64

	// PlotHeight is RowHeight times one more than the category count.
	PlotHeight float64

	ControlSpace float64
}

// TotalWidth is the width of the full surface.
func (geometry Geometry) TotalWidth() float64 {
	return geometry.PlotWidth + geometry.MarginLeft + geometry.MarginRight
}

// TotalHeight is the height of the full surface including the control
// space.
func (geometry Geometry) TotalHeight() float64 {
	return geometry.PlotHeight + geometry.MarginTop + geometry.MarginBottom + geometry.ControlSpace
}

// RowCenterY returns the vertical center of a row in plot coordinates.
func (geometry Geometry) RowCenterY(row int) float64 {
	return (float64(row) + 0.5) * geometry.RowHeight
}

// Layout is the result of one layout pass: the category rows, their
// colors, and the geometry.
type Layout struct {
	// Categories are the distinct change types in first-seen order.
	// Category i occupies row i.
	Categories []string

	// Colors maps each category to its "#rrggbb" color.
	Colors map[string]string

	Geometry Geometry

	rows map[string]int
}

// Row returns the row index assigned to a category.
func (layout Layout) Row(category string) (int, bool) {
	row, exists := layout.rows[category]
	return row, exists
}

// Color returns the color assigned to a category, or the first palette
// color for a category not in the layout.
func (layout Layout) Color(category string) string {
	if color, exists := layout.Colors[category]; exists {
		return color
	}
	return Category10[0]
}

// ComputeLayout derives categories, row assignment, colors, and
// geometry from an event list and a viewport width. It is a pure
// function: the same events, width, and params always produce the same
// layout.
func ComputeLayout(events []changefeed.TimedEvent, viewportWidth float64, params LayoutParams) Layout {
	layout := Layout{
		Colors: make(map[string]string),
		rows:   make(map[string]int),
	}

	colors := newPalette(params.Palette)
	for _, event := range events {
		if _, seen := layout.rows[event.ChangeType]; seen {
			continue
		}
		layout.rows[event.ChangeType] = len(layout.Categories)
		layout.Categories = append(layout.Categories, event.ChangeType)
	}
	for _, category := range layout.Categories {
		layout.Colors[category] = colors.color(category)
	}

	plotWidth := viewportWidth - params.MarginLeft - params.MarginRight
	if plotWidth < 0 {
		plotWidth = 0
	}
	layout.Geometry = Geometry{
		MarginTop:    params.MarginTop,
		MarginRight:  params.MarginRight,
		MarginBottom: params.MarginBottom,
		MarginLeft:   params.MarginLeft,
		PlotWidth:    plotWidth,
		RowHeight:    params.RowHeight,
		PlotHeight:   params.RowHeight * float64(len(layout.Categories)+1),
		ControlSpace: params.ControlSpace,
	}
	return layout
}
