// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"math"
	"time"
)

// DefaultTransitionDuration is how long animated zooms take.
const DefaultTransitionDuration = 500 * time.Millisecond

// EaseCubicInOut is the cubic ease-in-out curve on [0, 1].
func EaseCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// Transition animates between two transforms over a plot of a given
// width. Rather than interpolating translation and scale directly, it
// interpolates the visible window: the window center moves linearly and
// the window width changes geometrically, so a zoom appears to keep a
// steady focus.
type Transition struct {
	From     Transform
	To       Transform
	Start    time.Time
	Duration time.Duration
	Width    float64
}

// Done reports whether the transition has finished at now.
func (transition Transition) Done(now time.Time) bool {
	return !now.Before(transition.Start.Add(transition.Duration))
}

// At returns the transform at time now. Before Start it is From; at or
// after Start+Duration it is exactly To.
func (transition Transition) At(now time.Time) Transform {
	if transition.Duration <= 0 || transition.Done(now) {
		return transition.To
	}
	elapsed := now.Sub(transition.Start)
	if elapsed <= 0 {
		return transition.From
	}
	progress := EaseCubicInOut(float64(elapsed) / float64(transition.Duration))
	return interpolateView(transition.From, transition.To, transition.Width, progress)
}

// interpolateView blends two transforms through their visible windows.
func interpolateView(from, to Transform, width, progress float64) Transform {
	if width <= 0 || from.Scale <= 0 || to.Scale <= 0 {
		return Transform{
			TranslateX: from.TranslateX + (to.TranslateX-from.TranslateX)*progress,
			Scale:      from.Scale + (to.Scale-from.Scale)*progress,
		}
	}

	fromCenter := from.Invert(width / 2)
	toCenter := to.Invert(width / 2)
	fromWindow := width / from.Scale
	toWindow := width / to.Scale

	center := fromCenter + (toCenter-fromCenter)*progress
	window := fromWindow * math.Pow(toWindow/fromWindow, progress)

	scale := width / window
	return Transform{TranslateX: width/2 - center*scale, Scale: scale}
}
