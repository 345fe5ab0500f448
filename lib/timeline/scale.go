// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"time"

	"github.com/changeline/changeline/lib/changefeed"
)

// DefaultEpsilon is the half-width a degenerate time domain is widened
// to when all events share one timestamp or there are none.
const DefaultEpsilon = time.Minute

// TimeScale is the linear map from the event time extent to
// [0, Width]. The domain always has positive duration.
type TimeScale struct {
	Start time.Time
	End   time.Time
	Width float64
}

// NewTimeScale builds the base scale for a set of events over a plot of
// the given width. A zero-length extent (one distinct timestamp) is
// widened to [t-epsilon, t+epsilon]; an empty event set is centered on
// the Unix epoch. A non-positive epsilon means DefaultEpsilon.
func NewTimeScale(events []changefeed.TimedEvent, width float64, epsilon time.Duration) TimeScale {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	if len(events) == 0 {
		epoch := time.Unix(0, 0).UTC()
		return TimeScale{Start: epoch.Add(-epsilon), End: epoch.Add(epsilon), Width: width}
	}

	start, end := events[0].Time, events[0].Time
	for _, event := range events[1:] {
		if event.Time.Before(start) {
			start = event.Time
		}
		if event.Time.After(end) {
			end = event.Time
		}
	}
	if !end.After(start) {
		return TimeScale{Start: start.Add(-epsilon), End: start.Add(epsilon), Width: width}
	}
	return TimeScale{Start: start, End: end, Width: width}
}

// X maps a time to a base coordinate.
func (scale TimeScale) X(t time.Time) float64 {
	span := scale.End.Sub(scale.Start)
	if span <= 0 {
		return 0
	}
	return float64(t.Sub(scale.Start)) / float64(span) * scale.Width
}

// Invert maps a base coordinate back to a time. With a zero-width range
// every coordinate maps to the domain start.
func (scale TimeScale) Invert(x float64) time.Time {
	if scale.Width == 0 {
		return scale.Start
	}
	span := scale.End.Sub(scale.Start)
	return scale.Start.Add(time.Duration(x / scale.Width * float64(span)))
}

// Location is the time zone ticks are generated in.
func (scale TimeScale) Location() *time.Location {
	return scale.Start.Location()
}

// EffectiveScale is a base scale viewed through a pan/zoom transform.
// Every render layer positions its elements with it.
type EffectiveScale struct {
	Base      TimeScale
	Transform Transform
}

// Effective composes a base scale with a transform.
func Effective(base TimeScale, transform Transform) EffectiveScale {
	return EffectiveScale{Base: base, Transform: transform}
}

// X maps a time to a screen coordinate in the plot.
func (effective EffectiveScale) X(t time.Time) float64 {
	return effective.Transform.Apply(effective.Base.X(t))
}

// Invert maps a screen coordinate in the plot back to a time.
func (effective EffectiveScale) Invert(x float64) time.Time {
	return effective.Base.Invert(effective.Transform.Invert(x))
}

// VisibleDomain returns the times at the left and right edges of the
// plot.
func (effective EffectiveScale) VisibleDomain() (time.Time, time.Time) {
	return effective.Invert(0), effective.Invert(effective.Base.Width)
}

// Ticks returns about DefaultTickCount axis ticks over the visible
// domain.
func (effective EffectiveScale) Ticks() []Tick {
	start, end := effective.VisibleDomain()
	times := TickTimes(start.In(effective.Base.Location()), end.In(effective.Base.Location()), DefaultTickCount)
	ticks := make([]Tick, 0, len(times))
	for _, t := range times {
		ticks = append(ticks, Tick{
			Time:  t,
			X:     effective.X(t),
			Label: t.Format(TickLayout),
		})
	}
	return ticks
}
