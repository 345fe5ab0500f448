// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"math"

	"github.com/changeline/changeline/lib/timeline"
)

// Cell measurements. A row is four lines tall so that row centers fall
// on whole lines: separator, event label, marker, spacer.
const (
	marginLeft  = 16
	marginRight = 2
	marginTop   = 1
	rowHeight   = 4

	// Lines below the plot: axis, tick labels, blank, legend and
	// controls, instructions.
	marginBottom = 2
	controlSpace = 3
)

// TerminalParams returns the layout measurements for the terminal
// surface, in cells.
func TerminalParams() timeline.LayoutParams {
	return timeline.LayoutParams{
		MarginTop:          marginTop,
		MarginRight:        marginRight,
		MarginBottom:       marginBottom,
		MarginLeft:         marginLeft,
		RowHeight:          rowHeight,
		ControlSpace:       controlSpace,
		RowLabelGap:        1,
		EventLabelOffset:   1,
		AxisLabelOffset:    1,
		LegendOffset:       3,
		ControlOffset:      3,
		InstructionsOffset: 4,
		ControlInset:       15,
		ControlSize:        3,
		ControlHeight:      1,
		ResetWidth:         7,
		ControlGap:         1,
		LegendSwatch:       1,
		LegendSpacing:      2,
		MarkerRadius:       0.5,
		MarkerOpacity:      0.9,
		EmphasisRadius:     0.5,
		EmphasisOpacity:    1,
		CharWidth:          1,
	}
}

// cell rounds a scene coordinate to the cell that displays it.
func cell(value float64) int {
	return int(math.Floor(value + 0.5))
}
