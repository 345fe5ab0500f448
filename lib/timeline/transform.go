// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"fmt"
	"math"
)

// ScaleExtent bounds the zoom factor of a Transform.
type ScaleExtent struct {
	Min float64
	Max float64
}

// DefaultScaleExtent allows zooming out to half size and in to ten
// times.
var DefaultScaleExtent = ScaleExtent{Min: 0.5, Max: 10}

// Clamp limits k to the extent. NaN clamps to 1 when 1 is inside the
// extent, otherwise to the minimum.
func (extent ScaleExtent) Clamp(k float64) float64 {
	if math.IsNaN(k) {
		if extent.Min <= 1 && 1 <= extent.Max {
			return 1
		}
		return extent.Min
	}
	return math.Max(extent.Min, math.Min(extent.Max, k))
}

// Validate reports whether the extent is usable.
func (extent ScaleExtent) Validate() error {
	if !(extent.Min > 0) {
		return fmt.Errorf("minimum scale must be positive, got %v", extent.Min)
	}
	if extent.Max < extent.Min {
		return fmt.Errorf("maximum scale %v is below minimum scale %v", extent.Max, extent.Min)
	}
	return nil
}

// Transform is a horizontal pan/zoom: a screen coordinate is
// TranslateX + Scale*base. Transform values are immutable; every
// operation returns a new one.
type Transform struct {
	TranslateX float64
	Scale      float64
}

// Identity is the transform that leaves base coordinates unchanged.
var Identity = Transform{TranslateX: 0, Scale: 1}

// Apply maps a base coordinate to a screen coordinate.
func (transform Transform) Apply(x float64) float64 {
	return transform.TranslateX + transform.Scale*x
}

// Invert maps a screen coordinate back to a base coordinate. A zero
// scale is treated as one.
func (transform Transform) Invert(x float64) float64 {
	scale := transform.Scale
	if scale == 0 {
		scale = 1
	}
	return (x - transform.TranslateX) / scale
}

// ScaleTo returns the transform with scale k (clamped to extent) that
// keeps the screen coordinate anchor over the same base coordinate.
func (transform Transform) ScaleTo(k, anchor float64, extent ScaleExtent) Transform {
	base := transform.Invert(anchor)
	k = extent.Clamp(k)
	return Transform{TranslateX: anchor - base*k, Scale: k}
}

// ScaleBy multiplies the scale by factor around anchor, clamping the
// result.
func (transform Transform) ScaleBy(factor, anchor float64, extent ScaleExtent) Transform {
	scale := transform.Scale
	if scale == 0 {
		scale = 1
	}
	return transform.ScaleTo(scale*factor, anchor, extent)
}

// TranslateBy pans by dx screen units.
func (transform Transform) TranslateBy(dx float64) Transform {
	return Transform{TranslateX: transform.TranslateX + dx, Scale: transform.Scale}
}

// CenterOn returns the transform with scale k (clamped) that puts base
// coordinate x at the middle of a plot of the given width.
func (transform Transform) CenterOn(x, k, width float64, extent ScaleExtent) Transform {
	k = extent.Clamp(k)
	return Transform{TranslateX: width/2 - x*k, Scale: k}
}

// Constrain adjusts the translation so the data extent [0, width]
// covers the viewport [0, width] as far as the scale allows. Zoomed in,
// no gap may open at either edge; zoomed out, the data is centered.
func (transform Transform) Constrain(width float64) Transform {
	scale := transform.Scale
	if scale == 0 {
		scale = 1
	}
	left := transform.Invert(0)
	right := transform.Invert(width) - width

	var shift float64
	if right > left {
		shift = (left + right) / 2
	} else {
		shift = math.Min(0, left)
		if shift == 0 {
			shift = math.Max(0, right)
		}
	}
	return Transform{TranslateX: transform.TranslateX + scale*shift, Scale: transform.Scale}
}

// String formats the transform for logs and test failures.
func (transform Transform) String() string {
	return fmt.Sprintf("translate(%.3f) scale(%.3f)", transform.TranslateX, transform.Scale)
}
