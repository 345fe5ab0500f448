// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// HeatDecayDuration is how long an event marker glows after it first
// appears in a reloaded feed. Heat starts at 1.0 and decays linearly
// to 0.0 over this duration.
const HeatDecayDuration = 5 * time.Second

// HeatTracker maps event IDs to the time they were first seen so the
// viewer can tint newly arrived markers.
type HeatTracker struct {
	ignitions map[string]time.Time
}

// NewHeatTracker creates an empty heat tracker.
func NewHeatTracker() *HeatTracker {
	return &HeatTracker{ignitions: make(map[string]time.Time)}
}

// Ignite records that an item appeared at now. Re-igniting an item
// restarts its decay.
func (tracker *HeatTracker) Ignite(itemID string, now time.Time) {
	tracker.ignitions[itemID] = now
}

// Heat returns the current intensity for an item: 1.0 at ignition,
// 0.0 once HeatDecayDuration has passed or if it was never ignited.
func (tracker *HeatTracker) Heat(itemID string, now time.Time) float64 {
	ignition, exists := tracker.ignitions[itemID]
	if !exists {
		return 0
	}
	elapsed := now.Sub(ignition)
	if elapsed < 0 {
		return 1
	}
	if elapsed >= HeatDecayDuration {
		return 0
	}
	return 1 - float64(elapsed)/float64(HeatDecayDuration)
}

// HasHot reports whether any item still glows, collecting fully
// decayed entries as it goes.
func (tracker *HeatTracker) HasHot(now time.Time) bool {
	hot := false
	for itemID, ignition := range tracker.ignitions {
		if now.Sub(ignition) < HeatDecayDuration {
			hot = true
			continue
		}
		delete(tracker.ignitions, itemID)
	}
	return hot
}

// Blend mixes two hex colors in CIE L*a*b* space: t=0 yields from,
// t=1 yields to. Unparseable input returns the other color unchanged
// (or from when both are bad).
func Blend(from, to string, t float64) string {
	fromColor, fromErr := colorful.Hex(from)
	toColor, toErr := colorful.Hex(to)
	switch {
	case fromErr != nil && toErr != nil:
		return from
	case fromErr != nil:
		return to
	case toErr != nil:
		return from
	}
	if t <= 0 {
		return fromColor.Hex()
	}
	if t >= 1 {
		return toColor.Hex()
	}
	return fromColor.BlendLab(toColor, t).Clamped().Hex()
}
