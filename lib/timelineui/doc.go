// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package timelineui is the interactive terminal surface for a change
// feed timeline. It drives a [timeline.Session] from a bubbletea event
// loop: window-size messages relayout the session, mouse and keyboard
// input become gestures, the feed is fetched in a tea.Cmd and applied
// through the session's load-token guard, and a frame tick runs while
// a zoom animation, tooltip fade, or reload glow is in progress.
//
// The scene is rasterized onto a cell grid using [TerminalParams]: one
// cell per unit, four lines per category row (separator, event label,
// marker, spacer). Overlays (tooltip, event detail, finder) are
// spliced over the rendered canvas with the lib/tui helpers.
package timelineui
