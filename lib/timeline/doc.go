// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package timeline is the visualization engine for change-event
// timelines. It knows nothing about terminals or SVG: it turns a list
// of timed events into a display list in abstract surface units, and
// turns pointer gestures into pan/zoom transforms.
//
// The pipeline, leaf first:
//
//	[]changefeed.TimedEvent
//	        | ComputeLayout
//	    Layout (categories -> rows, colors, Geometry)
//	        | NewTimeScale
//	    TimeScale (time extent -> [0, PlotWidth])
//	        | Effective(base, Transform)
//	    EffectiveScale
//	        | BuildScene / Scene.Reposition
//	    Scene (ticks, grid, separators, labels, markers, legend, controls)
//
// There are two update paths. A relayout (new feed or new viewport
// width) recomputes everything and resets the transform to identity. A
// reposition (new transform) only moves what depends on the time axis:
// ticks, grid lines, and the x positions of markers and their labels.
//
// [Transform] is an immutable {TranslateX, Scale} value. The
// [Controller] produces a new one for every gesture and animates
// discrete zoom requests with an eased [Transition]. [Session] ties the
// pipeline, controller, and the single [Tooltip] together and owns the
// mount, resize, reload, and unmount lifecycle, including the
// [LoadToken] guard that discards stale asynchronous loads.
package timeline
