// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/changeline/changeline/lib/changefeed"
)

// ErrUnmounted is returned by operations on a session after Unmount.
var ErrUnmounted = errors.New("timeline session is unmounted")

// FeedLoader supplies feeds to a session. *changefeed.Loader
// implements it.
type FeedLoader interface {
	Load(ctx context.Context, source string) (*changefeed.Feed, error)
}

// LoadToken identifies one ingestion attempt. Only the completion of
// the latest attempt is applied.
type LoadToken uint64

// SessionConfig configures a Session.
type SessionConfig struct {
	// Source is the feed location handed to Loader.
	Source string
	Loader FeedLoader

	Params LayoutParams
	View   ViewOptions

	// Epsilon widens degenerate time domains. Zero means
	// DefaultEpsilon.
	Epsilon time.Duration

	// ReloadOnResize makes Resize request a fresh ingestion in
	// addition to the relayout.
	ReloadOnResize bool

	Logger *slog.Logger
}

// Session owns one visualization: the current feed, its layout, scale,
// transform, scene, and tooltip. It runs the full pipeline on mount,
// relayouts on resize, repositions on gestures, and tears down on
// unmount.
//
// A Session is not safe for concurrent use. Feed fetches may run on
// other goroutines but must hand their result back through
// CompleteLoad on the owning goroutine.
type Session struct {
	config SessionConfig
	logger *slog.Logger

	viewportWidth float64
	mounted       bool
	unmounted     bool
	token         LoadToken
	loading       bool
	lastErr       error

	feed       *changefeed.Feed
	layout     Layout
	base       TimeScale
	scene      *Scene
	controller *Controller
	tooltip    Tooltip

	// shown is the transform the scene was last positioned with.
	shown Transform

	// Pointer position while hovering, for re-testing the hover after
	// the scene moves under a stationary pointer.
	pointerX, pointerY float64
	pointerInside      bool

	// focus is the keyboard-focused marker, or -1.
	focus int
}

// NewSession returns an unmounted session.
func NewSession(config SessionConfig) *Session {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		config:     config,
		logger:     logger,
		controller: NewController(config.View, 0),
		focus:      -1,
	}
}

// Mount runs ingestion, layout, scale, and scene construction once for
// a viewport of the given width. A load failure is returned and also
// recorded as LastError; the session stays mounted so a later Reload
// can recover.
func (session *Session) Mount(ctx context.Context, width float64) error {
	if session.unmounted {
		return ErrUnmounted
	}
	session.mounted = true
	session.viewportWidth = width
	return session.Reload(ctx)
}

// Attach marks the session mounted at a viewport width without loading.
// UI runtimes call it and then load asynchronously with BeginLoad and
// CompleteLoad.
func (session *Session) Attach(width float64) {
	if session.unmounted {
		return
	}
	session.mounted = true
	session.viewportWidth = width
}

// Reload runs ingestion synchronously and applies the result.
func (session *Session) Reload(ctx context.Context) error {
	if session.unmounted {
		return ErrUnmounted
	}
	token := session.BeginLoad()
	feed, err := session.Fetch(ctx)
	session.CompleteLoad(token, feed, err)
	return err
}

// Fetch performs the ingestion step alone. It touches no session state
// and may run on another goroutine.
func (session *Session) Fetch(ctx context.Context) (*changefeed.Feed, error) {
	if session.config.Loader == nil {
		return nil, errors.New("timeline session has no feed loader")
	}
	return session.config.Loader.Load(ctx, session.config.Source)
}

// BeginLoad starts a new ingestion attempt and supersedes any attempt
// still in flight.
func (session *Session) BeginLoad() LoadToken {
	session.token++
	session.loading = true
	return session.token
}

// CompleteLoad applies the outcome of the ingestion attempt identified
// by token. Stale completions, from a superseded attempt or arriving
// after Unmount, are discarded and CompleteLoad returns false.
//
// A failed load leaves the previous feed and scene in place and records
// the error.
func (session *Session) CompleteLoad(token LoadToken, feed *changefeed.Feed, err error) bool {
	if session.unmounted || token != session.token {
		session.logger.Debug("discarding stale feed load", "token", uint64(token), "current", uint64(session.token))
		return false
	}
	session.loading = false

	if err != nil {
		session.lastErr = err
		session.logger.Error("loading feed failed", "source", session.config.Source, "error", err)
		return true
	}
	if feed == nil {
		feed = &changefeed.Feed{}
	}

	session.lastErr = nil
	session.feed = feed
	session.relayout()
	return true
}

// Resize relayouts for a new viewport width. The transform returns to
// identity and any animation, drag, or tooltip is dropped. It reports
// whether the session is configured to reload the feed on resize; the
// caller then runs a load.
func (session *Session) Resize(width float64) bool {
	if session.unmounted {
		return false
	}
	session.viewportWidth = width
	session.relayout()
	return session.config.ReloadOnResize
}

// Unmount removes the tooltip, drops animations, and detaches the
// session. Later load completions are ignored.
func (session *Session) Unmount() {
	session.tooltip.Remove()
	session.controller.Reset(session.layout.Geometry.PlotWidth)
	session.pointerInside = false
	session.focus = -1
	session.unmounted = true
	session.mounted = false
	session.loading = false
}

// relayout runs the pipeline from layout onward.
func (session *Session) relayout() {
	var events []changefeed.TimedEvent
	if session.feed != nil {
		events = session.feed.Events
	}

	session.layout = ComputeLayout(events, session.viewportWidth, session.config.Params)
	plotWidth := session.layout.Geometry.PlotWidth
	session.base = NewTimeScale(events, plotWidth, session.config.Epsilon)
	session.controller.Reset(plotWidth)
	session.scene = BuildScene(session.layout, events, Effective(session.base, Identity), session.config.Params)
	session.shown = Identity

	session.tooltip.Remove()
	session.pointerInside = false
	session.focus = -1
}

// Mounted reports whether the session is mounted.
func (session *Session) Mounted() bool { return session.mounted }

// Loading reports whether an ingestion attempt is in flight.
func (session *Session) Loading() bool { return session.loading }

// LastError returns the error of the latest failed load, cleared by the
// next successful one.
func (session *Session) LastError() error { return session.lastErr }

// Feed returns the feed currently displayed, or nil before the first
// successful load.
func (session *Session) Feed() *changefeed.Feed { return session.feed }

// Layout returns the current layout.
func (session *Session) Layout() Layout { return session.layout }

// Scene returns the current scene, or nil before the first successful
// load.
func (session *Session) Scene() *Scene { return session.scene }

// Tooltip returns the tooltip state.
func (session *Session) Tooltip() *Tooltip { return &session.tooltip }

// Controller returns the gesture controller.
func (session *Session) Controller() *Controller { return session.controller }

// Options returns the interaction options.
func (session *Session) Options() ViewOptions { return session.config.View }

// Effective returns the effective scale at now. It reads the running
// animation without advancing it; Tick applies it to the scene.
func (session *Session) Effective(now time.Time) EffectiveScale {
	return Effective(session.base, session.controller.Transform(now))
}

// Transform returns the current transform at now.
func (session *Session) Transform(now time.Time) Transform {
	return session.controller.Transform(now)
}

// Tick advances animations and fades to now and repositions the scene.
// It reports whether anything is still animating.
func (session *Session) Tick(now time.Time) bool {
	animating := session.controller.Tick(now)
	if session.shown != session.controller.Current() {
		session.reposition()
		session.rehover(now)
	}
	fading := session.tooltip.Tick(now)
	return animating || fading
}

// Animating reports whether a transform animation or tooltip fade is
// running.
func (session *Session) Animating(now time.Time) bool {
	if session.controller.Animating() {
		return true
	}
	if !session.tooltip.Visible() {
		return false
	}
	return !session.tooltip.fade.done(now)
}

// reposition pushes the current transform into the scene and re-tests
// the hover, since markers may have moved under a still pointer.
func (session *Session) reposition() {
	if session.scene == nil {
		return
	}
	session.shown = session.controller.Current()
	session.scene.Reposition(Effective(session.base, session.shown))
	if session.focus >= 0 && session.focus < len(session.scene.Markers) {
		marker := session.scene.Markers[session.focus]
		session.tooltip.AnchorX = marker.X
		session.tooltip.AnchorY = marker.Y
	}
}

// Wheel zooms around the pointer.
func (session *Session) Wheel(x, y, notches float64, now time.Time) {
	if session.scene == nil {
		return
	}
	session.controller.Wheel(x, notches, now)
	session.reposition()
	session.rehover(now)
}

// Press starts a drag, or activates a zoom control under the pointer.
// It reports whether a control was activated.
func (session *Session) Press(x, y float64, now time.Time) bool {
	if session.scene == nil {
		return false
	}
	if kind, ok := session.scene.ControlAt(x, y); ok {
		session.Control(kind, now)
		return true
	}
	session.controller.Press(x, now)
	session.reposition()
	return false
}

// Drag moves an active drag.
func (session *Session) Drag(x, y float64, now time.Time) {
	if session.scene == nil || !session.controller.Dragging() {
		return
	}
	session.controller.Drag(x)
	session.reposition()
	session.pointerX, session.pointerY = x, y
}

// Release ends a drag.
func (session *Session) Release(x, y float64, now time.Time) {
	session.controller.Release()
	session.Hover(x, y, now)
}

// Pan shifts the view by dx immediately.
func (session *Session) Pan(dx float64, now time.Time) {
	if session.scene == nil {
		return
	}
	session.controller.Pan(dx, now)
	session.reposition()
	session.rehover(now)
}

// DoubleClick animates a zoom for a double-click at a point, per the
// configured DoubleClickMode.
func (session *Session) DoubleClick(x, y float64, now time.Time) {
	if session.scene == nil {
		return
	}
	if session.config.View.DoubleClick == DoubleClickCenterOnEvent {
		if index, hit := session.scene.HitTest(x, y); hit {
			session.controller.CenterOn(session.base.X(session.scene.Markers[index].Event.Time), now)
			session.reposition()
			return
		}
	}
	session.controller.ZoomAt(x, now)
	session.reposition()
}

// Control runs a zoom control.
func (session *Session) Control(kind ControlKind, now time.Time) {
	if session.scene == nil {
		return
	}
	switch kind {
	case ControlZoomIn:
		session.controller.ZoomIn(now)
	case ControlZoomOut:
		session.controller.ZoomOut(now)
	case ControlReset:
		session.controller.ResetZoom(now)
	}
	session.reposition()
	session.rehover(now)
}

// CenterOnEvent animates to the marker at index centered in the plot,
// zoomed by the double-click factor.
func (session *Session) CenterOnEvent(index int, now time.Time) {
	if session.scene == nil || index < 0 || index >= len(session.scene.Markers) {
		return
	}
	session.controller.CenterOn(session.base.X(session.scene.Markers[index].Event.Time), now)
	session.reposition()
}

// Hover updates the hover state for a pointer at a point in plot
// coordinates. Entering a marker shows the tooltip anchored at the
// pointer and emphasizes the marker; leaving it fades the tooltip out.
func (session *Session) Hover(x, y float64, now time.Time) {
	session.pointerX, session.pointerY = x, y
	session.pointerInside = true
	if session.focus >= 0 {
		session.focus = -1
	}
	session.rehover(now)
}

// Leave is a pointer leaving the surface.
func (session *Session) Leave(now time.Time) {
	session.pointerInside = false
	session.hoverMarker(-1, 0, 0, now)
}

func (session *Session) rehover(now time.Time) {
	if session.scene == nil || !session.pointerInside || session.controller.Dragging() {
		return
	}
	index, hit := session.scene.HitTest(session.pointerX, session.pointerY)
	if !hit {
		index = -1
	}
	session.hoverMarker(index, session.pointerX, session.pointerY, now)
}

// hoverMarker makes index the hovered marker, or clears the hover for a
// negative index.
func (session *Session) hoverMarker(index int, anchorX, anchorY float64, now time.Time) {
	if session.scene == nil {
		return
	}
	options := session.config.View
	if index < 0 {
		if session.scene.Emphasized() >= 0 {
			session.scene.SetEmphasis(-1)
		}
		session.tooltip.Hide(options.FadeOut, now)
		return
	}

	if session.scene.Emphasized() == index && session.tooltip.Visible() && !session.tooltip.Leaving() {
		return
	}
	session.scene.SetEmphasis(index)
	content := DescribeEvent(session.scene.Markers[index].Event)
	session.tooltip.Show(index, content, anchorX, anchorY, options.TooltipOpacity, options.FadeIn, now)
}

// FocusStep moves keyboard focus delta markers along the feed order,
// wrapping at either end, and hovers the focused marker.
func (session *Session) FocusStep(delta int, now time.Time) {
	if session.scene == nil || len(session.scene.Markers) == 0 {
		return
	}
	count := len(session.scene.Markers)
	next := session.focus
	if next < 0 {
		if delta >= 0 {
			next = 0
		} else {
			next = count - 1
		}
	} else {
		next = ((next+delta)%count + count) % count
	}
	session.Focus(next, now)
}

// Focus gives keyboard focus to the marker at index.
func (session *Session) Focus(index int, now time.Time) {
	if session.scene == nil || index < 0 || index >= len(session.scene.Markers) {
		return
	}
	session.pointerInside = false
	session.focus = index
	marker := session.scene.Markers[index]
	session.hoverMarker(index, marker.X, marker.Y, now)
}

// Blur clears keyboard focus.
func (session *Session) Blur(now time.Time) {
	if session.focus < 0 {
		return
	}
	session.focus = -1
	session.hoverMarker(-1, 0, 0, now)
}

// Focused returns the keyboard-focused marker index, or -1.
func (session *Session) Focused() int { return session.focus }
