// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/changeline/changeline/lib/changefeed"
	"github.com/changeline/changeline/lib/timeline"
	"github.com/changeline/changeline/lib/tui"
)

// Marker glyphs.
const (
	markerGlyph     = '●'
	emphasizedGlyph = '◉'
)

// cellStyle is the styling of one canvas cell. Colors are lipgloss
// color strings (ANSI codes or hex); empty means the terminal default.
type cellStyle struct {
	foreground string
	background string
	bold       bool
}

type canvasCell struct {
	char  rune
	style cellStyle
}

// canvas is a fixed-size grid of styled cells.
type canvas struct {
	width  int
	height int
	cells  []canvasCell
}

func newCanvas(width, height int) *canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	cells := make([]canvasCell, width*height)
	for index := range cells {
		cells[index].char = ' '
	}
	return &canvas{width: width, height: height, cells: cells}
}

func (grid *canvas) inside(x, y int) bool {
	return x >= 0 && x < grid.width && y >= 0 && y < grid.height
}

func (grid *canvas) set(x, y int, char rune, style cellStyle) {
	if !grid.inside(x, y) {
		return
	}
	grid.cells[y*grid.width+x] = canvasCell{char: char, style: style}
}

func (grid *canvas) at(x, y int) canvasCell {
	if !grid.inside(x, y) {
		return canvasCell{char: ' '}
	}
	return grid.cells[y*grid.width+x]
}

// text writes s starting at column x, clipped to [minX, maxX).
func (grid *canvas) text(x, y int, s string, style cellStyle, minX, maxX int) {
	for _, char := range s {
		if x >= minX && x < maxX {
			grid.set(x, y, char, style)
		}
		x++
	}
}

// lines renders the grid with the renderer, merging runs of equally
// styled cells into one styled segment.
func (grid *canvas) lines(renderer *lipgloss.Renderer) []string {
	result := make([]string, grid.height)
	var line, run strings.Builder
	for y := 0; y < grid.height; y++ {
		line.Reset()
		run.Reset()
		var current cellStyle
		flush := func() {
			if run.Len() == 0 {
				return
			}
			line.WriteString(styleFor(renderer, current).Render(run.String()))
			run.Reset()
		}
		for x := 0; x < grid.width; x++ {
			entry := grid.cells[y*grid.width+x]
			if entry.style != current {
				flush()
				current = entry.style
			}
			run.WriteRune(entry.char)
		}
		flush()
		result[y] = line.String()
	}
	return result
}

func styleFor(renderer *lipgloss.Renderer, style cellStyle) lipgloss.Style {
	rendered := renderer.NewStyle()
	if style.foreground != "" {
		rendered = rendered.Foreground(lipgloss.Color(style.foreground))
	}
	if style.background != "" {
		rendered = rendered.Background(lipgloss.Color(style.background))
	}
	if style.bold {
		rendered = rendered.Bold(true)
	}
	return rendered
}

// rasterOptions carries the per-frame state the raster needs beyond
// the scene itself.
type rasterOptions struct {
	theme   tui.Theme
	focused int
	heat    *tui.HeatTracker
	now     time.Time
}

// rasterize draws a scene onto a canvas covering the full surface:
// plot, margins, and control space.
func rasterize(scene *timeline.Scene, options rasterOptions) *canvas {
	geometry := scene.Geometry
	grid := newCanvas(cell(geometry.TotalWidth()), cell(geometry.TotalHeight()))

	originX := cell(geometry.MarginLeft)
	originY := cell(geometry.MarginTop)
	plotWidth := int(geometry.PlotWidth)
	plotHeight := cell(geometry.PlotHeight)
	plotLeft, plotRight := originX, originX+plotWidth+1

	theme := options.theme
	rule := cellStyle{foreground: string(theme.RuleColor)}
	axis := cellStyle{foreground: string(theme.AxisColor)}

	// Grid.
	for _, line := range scene.Grid {
		x := cell(line.X1)
		if x < 0 || x > plotWidth {
			continue
		}
		for y := 0; y < plotHeight; y++ {
			if y%2 == 0 {
				grid.set(originX+x, originY+y, '┆', rule)
			}
		}
	}

	// Row separators.
	for _, line := range scene.Separators {
		y := originY + cell(line.Y1)
		for x := 0; x <= plotWidth; x++ {
			grid.set(originX+x, y, '─', rule)
		}
	}

	// Row labels, right-aligned against the gap before the plot.
	for _, label := range scene.RowLabels {
		end := originX + cell(label.X)
		text := truncateRunes(label.Text, end)
		start := end - utf8.RuneCountInString(text)
		grid.text(start, originY+cell(label.Y), text,
			cellStyle{foreground: string(theme.CategoryColor(label.Color))}, 0, originX)
	}

	// Axis line, tick marks, and tick labels that do not collide.
	axisY := originY + cell(scene.AxisY)
	for x := 0; x <= plotWidth; x++ {
		grid.set(originX+x, axisY, '─', axis)
	}
	labelY := axisY + cell(scene.Params.AxisLabelOffset)
	lastLabelEnd := -1
	for _, tick := range scene.Ticks {
		x := cell(tick.X)
		if x < 0 || x > plotWidth {
			continue
		}
		grid.set(originX+x, axisY, '┬', axis)
		width := utf8.RuneCountInString(tick.Label)
		start := originX + x - width/2
		if start <= lastLabelEnd {
			continue
		}
		grid.text(start, labelY, tick.Label, axis, 0, grid.width)
		lastLabelEnd = start + width
	}

	// Event labels above markers, then the markers.
	labelStyle := cellStyle{foreground: string(theme.FaintText)}
	for index, label := range scene.Labels {
		x := cell(label.X)
		if x < 0 || x > plotWidth {
			continue
		}
		width := utf8.RuneCountInString(label.Text)
		style := labelStyle
		if scene.Markers[index].Emphasized {
			style = cellStyle{foreground: string(theme.NormalText), bold: true}
		}
		grid.text(originX+x-width/2, originY+cell(label.Y), label.Text, style, plotLeft, plotRight)
	}
	for _, marker := range scene.Markers {
		x := cell(marker.X)
		if x < 0 || x > plotWidth {
			continue
		}
		grid.set(originX+x, originY+cell(marker.Y), markerRune(marker), markerStyle(marker, options))
	}

	// Legend.
	swatch := cell(scene.Params.LegendSwatch)
	for _, entry := range scene.Legend {
		x := originX + cell(entry.X)
		y := originY + cell(entry.Y)
		grid.set(x, y, '■', cellStyle{foreground: string(theme.CategoryColor(entry.Color))})
		grid.text(x+swatch+cell(scene.Params.CharWidth), y, entry.Category,
			cellStyle{foreground: string(theme.NormalText)}, 0, grid.width)
	}

	// Controls, drawn over the legend if they collide.
	control := cellStyle{foreground: string(theme.ControlColor), bold: true}
	for _, button := range scene.Controls {
		grid.text(originX+cell(button.X), originY+cell(button.Y),
			controlLabel(button), control, 0, grid.width)
	}

	grid.text(originX+cell(scene.Instructions.X), originY+cell(scene.Instructions.Y),
		scene.Instructions.Text, cellStyle{foreground: string(theme.HelpText)}, 0, grid.width)

	return grid
}

// controlLabel renders a control as its label in brackets, padded to
// the control's width.
func controlLabel(control timeline.Control) string {
	label := "[" + control.Kind.String() + "]"
	width := cell(control.Width)
	if pad := width - utf8.RuneCountInString(label); pad > 0 {
		label = "[" + strings.Repeat(" ", pad/2) + control.Kind.String() + strings.Repeat(" ", pad-pad/2) + "]"
	}
	return label
}

func markerRune(marker timeline.Marker) rune {
	if marker.Emphasized {
		return emphasizedGlyph
	}
	return markerGlyph
}

// markerStyle blends the category color toward the canvas background
// by the marker's opacity, then toward the reload accent by the
// event's heat.
func markerStyle(marker timeline.Marker, options rasterOptions) cellStyle {
	theme := options.theme
	color := marker.Color
	if color == "" {
		color = timeline.Category10[0]
	}
	color = tui.Blend(theme.CanvasBackground, color, marker.Opacity)
	if options.heat != nil {
		if heat := options.heat.Heat(heatKey(marker.Event.Event), options.now); heat > 0 {
			color = tui.Blend(color, theme.HotAccent, heat*0.8)
		}
	}
	style := cellStyle{foreground: color, bold: marker.Emphasized}
	if marker.Index == options.focused {
		style.background = string(theme.SelectedBackground)
	}
	return style
}

// heatKey identifies an event across reloads.
func heatKey(event changefeed.Event) string {
	return event.ID + "\x00" + event.Date
}

func truncateRunes(text string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
