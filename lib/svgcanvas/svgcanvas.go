// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package svgcanvas renders a timeline scene as a standalone SVG
// document. The document is sized to the scene's full surface (plot,
// margins, and control space) and places the plot inside a group
// translated by the left and top margins, so scene coordinates are used
// unchanged.
package svgcanvas

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/changeline/changeline/lib/timeline"
)

// Style values shared by every document.
const (
	fontFamily      = "Arial, sans-serif"
	ruleColor       = "#e0e0e0"
	axisColor       = "#333"
	labelColor      = "#333"
	hintColor       = "#666"
	controlFill     = "#f0f0f0"
	controlStroke   = "#ccc"
	backgroundColor = "#f9fafb"
)

// Render writes the SVG document for scene to w.
func Render(w io.Writer, scene *timeline.Scene) error {
	if scene == nil {
		return errors.New("no scene to render")
	}

	out := bufio.NewWriter(w)
	geometry := scene.Geometry

	fmt.Fprintln(out, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintf(out, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		number(geometry.TotalWidth()), number(geometry.TotalHeight()),
		number(geometry.TotalWidth()), number(geometry.TotalHeight()))
	fmt.Fprintf(out, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", backgroundColor)
	fmt.Fprintf(out, `<defs><clipPath id="plot"><rect x="0" y="%s" width="%s" height="%s"/></clipPath></defs>`+"\n",
		number(-geometry.MarginTop), number(geometry.PlotWidth), number(geometry.PlotHeight+geometry.MarginTop))
	fmt.Fprintf(out, `<g transform="translate(%s,%s)">`+"\n", number(geometry.MarginLeft), number(geometry.MarginTop))

	writeGrid(out, scene)
	writeSeparators(out, scene)
	writeRowLabels(out, scene)
	writeAxis(out, scene)
	writeEvents(out, scene)
	writeLegend(out, scene)
	writeControls(out, scene)
	writeText(out, scene.Instructions, "14px", hintColor)

	fmt.Fprintln(out, "</g>")
	fmt.Fprintln(out, "</svg>")
	return out.Flush()
}

func writeGrid(out *bufio.Writer, scene *timeline.Scene) {
	fmt.Fprintln(out, `<g class="grid" clip-path="url(#plot)">`)
	for _, line := range scene.Grid {
		writeLine(out, line, ruleColor)
	}
	fmt.Fprintln(out, "</g>")
}

func writeSeparators(out *bufio.Writer, scene *timeline.Scene) {
	fmt.Fprintln(out, `<g class="rows">`)
	for _, line := range scene.Separators {
		writeLine(out, line, ruleColor)
	}
	fmt.Fprintln(out, "</g>")
}

func writeRowLabels(out *bufio.Writer, scene *timeline.Scene) {
	fmt.Fprintln(out, `<g class="row-labels">`)
	for _, label := range scene.RowLabels {
		writeText(out, label, "12px", labelColor)
	}
	fmt.Fprintln(out, "</g>")
}

func writeAxis(out *bufio.Writer, scene *timeline.Scene) {
	geometry := scene.Geometry
	fmt.Fprintln(out, `<g class="x-axis">`)
	fmt.Fprintf(out, `<line x1="0" y1="%s" x2="%s" y2="%s" stroke="%s"/>`+"\n",
		number(scene.AxisY), number(geometry.PlotWidth), number(scene.AxisY), axisColor)
	for _, tick := range scene.Ticks {
		if tick.X < 0 || tick.X > geometry.PlotWidth {
			continue
		}
		fmt.Fprintf(out, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`+"\n",
			number(tick.X), number(scene.AxisY), number(tick.X), number(scene.AxisY+6), axisColor)
		writeText(out, timeline.Text{
			X:      tick.X,
			Y:      scene.AxisY + scene.Params.AxisLabelOffset,
			Text:   tick.Label,
			Anchor: timeline.AnchorMiddle,
		}, "10px", axisColor)
	}
	fmt.Fprintln(out, "</g>")
}

func writeEvents(out *bufio.Writer, scene *timeline.Scene) {
	fmt.Fprintln(out, `<g class="events" clip-path="url(#plot)">`)
	for index, marker := range scene.Markers {
		content := timeline.DescribeEvent(marker.Event)
		title := content.Title + "\n" + strings.Join(content.Lines, "\n")

		fmt.Fprintln(out, `<g class="event-group">`)
		fmt.Fprintf(out, `<circle class="event-dot" cx="%s" cy="%s" r="%s" fill="%s" stroke="#fff" stroke-width="2" opacity="%s"><title>%s</title></circle>`+"\n",
			number(marker.X), number(marker.Y), number(marker.Radius), marker.Color,
			number(marker.Opacity), escapeXML(title))
		writeText(out, scene.Labels[index], "11px", labelColor)
		fmt.Fprintln(out, "</g>")
	}
	fmt.Fprintln(out, "</g>")
}

func writeLegend(out *bufio.Writer, scene *timeline.Scene) {
	size := scene.Params.LegendSwatch
	fmt.Fprintln(out, `<g class="legend">`)
	for _, entry := range scene.Legend {
		fmt.Fprintf(out, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			number(entry.X), number(entry.Y-size/2), number(size), number(size), entry.Color)
		writeText(out, timeline.Text{
			X:    entry.X + size + scene.Params.CharWidth,
			Y:    entry.Y,
			Text: entry.Category,
		}, "12px", labelColor)
	}
	fmt.Fprintln(out, "</g>")
}

func writeControls(out *bufio.Writer, scene *timeline.Scene) {
	fmt.Fprintln(out, `<g class="controls">`)
	for _, control := range scene.Controls {
		centerX, centerY := control.Center()
		switch control.Kind {
		case timeline.ControlReset:
			fmt.Fprintf(out, `<rect x="%s" y="%s" width="%s" height="%s" rx="3" ry="3" fill="%s" stroke="%s"/>`+"\n",
				number(control.X), number(control.Y), number(control.Width), number(control.Height),
				controlFill, controlStroke)
		default:
			fmt.Fprintf(out, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s"/>`+"\n",
				number(centerX), number(centerY), number(control.Height/2), controlFill, controlStroke)
		}
		fontSize := "18px"
		if control.Kind == timeline.ControlReset {
			fontSize = "12px"
		}
		writeText(out, timeline.Text{X: centerX, Y: centerY, Text: control.Kind.String(), Anchor: timeline.AnchorMiddle},
			fontSize, axisColor)
	}
	fmt.Fprintln(out, "</g>")
}

func writeLine(out *bufio.Writer, line timeline.Line, stroke string) {
	dash := ""
	if line.Dashed {
		dash = ` stroke-dasharray="5,5"`
	}
	fmt.Fprintf(out, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1"%s/>`+"\n",
		number(line.X1), number(line.Y1), number(line.X2), number(line.Y2), stroke, dash)
}

func writeText(out *bufio.Writer, text timeline.Text, fontSize, fallbackColor string) {
	color := text.Color
	if color == "" {
		color = fallbackColor
	}
	fmt.Fprintf(out, `<text x="%s" y="%s" text-anchor="%s" dominant-baseline="middle" font-family="%s" font-size="%s" fill="%s">%s</text>`+"\n",
		number(text.X), number(text.Y), anchor(text.Anchor), fontFamily, fontSize, color, escapeXML(text.Text))
}

func anchor(value timeline.Anchor) string {
	switch value {
	case timeline.AnchorMiddle:
		return "middle"
	case timeline.AnchorEnd:
		return "end"
	default:
		return "start"
	}
}

// number formats a coordinate with at most two decimals and no
// trailing zeros.
func number(value float64) string {
	rounded := math.Round(value*100) / 100
	if rounded == 0 {
		// Drop the sign of negative zero.
		rounded = 0
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeXML escapes text for use in element content and attribute
// values. Invalid UTF-8 and characters XML 1.0 forbids become U+FFFD.
func escapeXML(s string) string {
	return xmlEscaper.Replace(strings.Map(xmlChar, s))
}

// xmlChar maps a rune outside the XML 1.0 Char production to U+FFFD.
// strings.Map already decodes invalid UTF-8 as utf8.RuneError.
func xmlChar(r rune) rune {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return r
	case r < 0x20, r == 0xfffe, r == 0xffff:
		return utf8.RuneError
	}
	return r
}
