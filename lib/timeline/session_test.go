// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/changeline/changeline/lib/changefeed"
)

// stubLoader returns canned feeds in order and counts calls.
type stubLoader struct {
	feeds []*changefeed.Feed
	err   error
	calls int
}

func (loader *stubLoader) Load(ctx context.Context, source string) (*changefeed.Feed, error) {
	loader.calls++
	if loader.err != nil {
		return nil, loader.err
	}
	index := loader.calls - 1
	if index >= len(loader.feeds) {
		index = len(loader.feeds) - 1
	}
	return loader.feeds[index], nil
}

func newTestSession(t *testing.T, loader FeedLoader, view ViewOptions) *Session {
	t.Helper()
	return NewSession(SessionConfig{
		Source: "changes.json",
		Loader: loader,
		Params: PixelParams(),
		View:   view,
	})
}

var sessionEpoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func TestSessionMount(t *testing.T) {
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, DefaultViewOptions())

	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if !session.Mounted() || loader.calls != 1 {
		t.Fatalf("mounted=%v calls=%d", session.Mounted(), loader.calls)
	}

	scene := session.Scene()
	if scene == nil {
		t.Fatal("no scene after mount")
	}
	if len(session.Layout().Categories) != 2 || len(scene.Markers) != 2 {
		t.Errorf("categories=%d markers=%d, want 2 and 2", len(session.Layout().Categories), len(scene.Markers))
	}
	if !(scene.Markers[0].X < scene.Markers[1].X) {
		t.Error("markers not ordered by time")
	}
}

func TestSessionMountFailureKeepsPreviousScene(t *testing.T) {
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, DefaultViewOptions())
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	before := session.Scene()

	loader.err = errors.New("connection refused")
	if err := session.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}
	if session.Scene() != before {
		t.Error("failed reload replaced the scene")
	}
	if session.LastError() == nil || !strings.Contains(session.LastError().Error(), "connection refused") {
		t.Errorf("LastError = %v", session.LastError())
	}

	loader.err = nil
	if err := session.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if session.LastError() != nil {
		t.Errorf("LastError not cleared: %v", session.LastError())
	}
}

func TestSessionFirstLoadFailure(t *testing.T) {
	session := newTestSession(t, &stubLoader{err: errors.New("404")}, DefaultViewOptions())
	if err := session.Mount(context.Background(), 1200); err == nil {
		t.Fatal("expected mount error")
	}
	if session.Scene() != nil {
		t.Error("scene built without a feed")
	}
	// Gestures on an empty session are no-ops.
	session.Wheel(10, 10, 1, sessionEpoch)
	session.DoubleClick(10, 10, sessionEpoch)
	session.Hover(10, 10, sessionEpoch)
}

func TestSessionStaleCompletionIgnored(t *testing.T) {
	session := newTestSession(t, nil, DefaultViewOptions())
	session.Attach(1200)

	first := session.BeginLoad()
	second := session.BeginLoad()

	stale := &changefeed.Feed{Events: mixedEvents()}
	if session.CompleteLoad(first, stale, nil) {
		t.Error("superseded completion was applied")
	}
	if session.Scene() != nil {
		t.Error("stale feed produced a scene")
	}

	current := &changefeed.Feed{Events: scenarioEvents()}
	if !session.CompleteLoad(second, current, nil) {
		t.Fatal("current completion was discarded")
	}
	if session.Feed() != current {
		t.Error("session shows the wrong feed")
	}
}

func TestSessionCompletionAfterUnmountIgnored(t *testing.T) {
	session := newTestSession(t, nil, DefaultViewOptions())
	session.Attach(1200)
	token := session.BeginLoad()
	session.Unmount()

	if session.CompleteLoad(token, &changefeed.Feed{Events: scenarioEvents()}, nil) {
		t.Error("completion applied after unmount")
	}
	if session.Scene() != nil {
		t.Error("scene built after unmount")
	}
	if err := session.Reload(context.Background()); !errors.Is(err, ErrUnmounted) {
		t.Errorf("Reload after unmount = %v, want ErrUnmounted", err)
	}
}

func TestSessionResizeResetsTransform(t *testing.T) {
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, DefaultViewOptions())
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	session.Wheel(300, 50, 3, sessionEpoch)
	session.Control(ControlZoomIn, sessionEpoch)
	if session.Transform(sessionEpoch) == Identity {
		t.Fatal("wheel did not change the transform")
	}

	if reload := session.Resize(800); reload {
		t.Error("Resize asked for a reload without ReloadOnResize")
	}
	if got := session.Transform(sessionEpoch); got != Identity {
		t.Errorf("transform after resize = %v, want identity", got)
	}
	if session.Controller().Animating() {
		t.Error("animation survived resize")
	}
	if width := session.Layout().Geometry.PlotWidth; width != 600 {
		t.Errorf("PlotWidth after resize = %v, want 600", width)
	}
	if last := session.Scene().Markers[1].X; last != 600 {
		t.Errorf("last marker at %v, want 600", last)
	}
	if loader.calls != 1 {
		t.Errorf("resize reloaded the feed (%d calls)", loader.calls)
	}
}

func TestSessionResizeRequestsReload(t *testing.T) {
	session := NewSession(SessionConfig{
		Loader:         &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}},
		Params:         PixelParams(),
		View:           DefaultViewOptions(),
		ReloadOnResize: true,
	})
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if !session.Resize(900) {
		t.Error("Resize should request a reload with ReloadOnResize")
	}
}

func TestSessionHoverShowsTooltip(t *testing.T) {
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, DefaultViewOptions())
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	marker := session.Scene().Markers[1]
	session.Hover(marker.X+2, marker.Y-1, sessionEpoch)

	tooltip := session.Tooltip()
	if !tooltip.Visible() {
		t.Fatal("tooltip not visible after hover-enter")
	}
	if tooltip.Content.Title != "NewSeries" {
		t.Errorf("tooltip title = %q, want NewSeries", tooltip.Content.Title)
	}
	text := strings.Join(tooltip.Content.Lines, "\n")
	if !strings.Contains(text, "ID: 0123456789abcdef...") || !strings.Contains(text, "Seq: 2") {
		t.Errorf("tooltip lines = %q", tooltip.Content.Lines)
	}
	if !session.Scene().Markers[1].Emphasized {
		t.Error("hovered marker not emphasized")
	}
	if !session.Animating(sessionEpoch) {
		t.Error("fade-in should be animating")
	}

	exit := sessionEpoch.Add(time.Second)
	session.Hover(500, 500, exit)
	if session.Scene().Markers[1].Emphasized {
		t.Error("emphasis not cleared on hover-exit")
	}
	if !tooltip.Visible() || !tooltip.Leaving() {
		t.Error("tooltip should be fading out")
	}
	session.Tick(exit.Add(DefaultFadeOut))
	if tooltip.Visible() {
		t.Error("tooltip not removed after fade-out")
	}
}

func TestSessionUnmountRemovesTooltip(t *testing.T) {
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, DefaultViewOptions())
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	marker := session.Scene().Markers[0]
	session.Hover(marker.X, marker.Y, sessionEpoch)
	session.Control(ControlZoomIn, sessionEpoch)

	session.Unmount()
	if session.Tooltip().Visible() {
		t.Error("tooltip survived unmount")
	}
	if session.Animating(sessionEpoch) {
		t.Error("animation survived unmount")
	}
	if session.Mounted() {
		t.Error("session still mounted")
	}
}

func TestSessionControlsThroughPress(t *testing.T) {
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, DefaultViewOptions())
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	var zoomIn Control
	for _, control := range session.Scene().Controls {
		if control.Kind == ControlZoomIn {
			zoomIn = control
		}
	}
	x, y := zoomIn.Center()
	if !session.Press(x, y, sessionEpoch) {
		t.Fatal("press on zoom-in control not recognized")
	}
	session.Tick(sessionEpoch.Add(DefaultTransitionDuration))
	if got := session.Transform(sessionEpoch.Add(DefaultTransitionDuration)); !approxEqual(got.Scale, 1.2) {
		t.Errorf("scale after zoom-in control = %v, want 1.2", got.Scale)
	}
}

func TestSessionDragRepositions(t *testing.T) {
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, DefaultViewOptions())
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	session.Press(400, 60, sessionEpoch)
	session.Drag(450, 60, sessionEpoch)
	if x := session.Scene().Markers[0].X; x != 50 {
		t.Errorf("first marker after drag at %v, want 50", x)
	}
	session.Release(450, 60, sessionEpoch)
	if session.Controller().Dragging() {
		t.Error("drag still active after release")
	}
}

func TestSessionDoubleClickCenterOnEvent(t *testing.T) {
	view := DefaultViewOptions()
	view.DoubleClick = DoubleClickCenterOnEvent
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, view)
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	marker := session.Scene().Markers[0]
	session.DoubleClick(marker.X, marker.Y, sessionEpoch)
	done := sessionEpoch.Add(DefaultTransitionDuration)
	session.Tick(done)
	if x := session.Scene().Markers[0].X; !approxEqual(x, 500) {
		t.Errorf("double-clicked event at %v, want centered at 500", x)
	}
	if got := session.Transform(done); !approxEqual(got.Scale, 2) {
		t.Errorf("scale = %v, want 2", got.Scale)
	}
}

func TestSessionDoubleClickZoomAtPoint(t *testing.T) {
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, DefaultViewOptions())
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	marker := session.Scene().Markers[0]
	session.DoubleClick(marker.X, marker.Y, sessionEpoch)
	session.Tick(sessionEpoch.Add(DefaultTransitionDuration))
	if x := session.Scene().Markers[0].X; !approxEqual(x, marker.X) {
		t.Errorf("clicked point moved from %v to %v", marker.X, x)
	}
}

func TestSessionFocusStep(t *testing.T) {
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, DefaultViewOptions())
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	session.FocusStep(1, sessionEpoch)
	if session.Focused() != 0 || session.Tooltip().Content.Title != "NewPatient" {
		t.Errorf("focus = %d (%q), want 0", session.Focused(), session.Tooltip().Content.Title)
	}
	session.FocusStep(1, sessionEpoch)
	session.FocusStep(1, sessionEpoch)
	if session.Focused() != 0 {
		t.Errorf("focus did not wrap: %d", session.Focused())
	}
	session.FocusStep(-1, sessionEpoch)
	if session.Focused() != 1 {
		t.Errorf("focus = %d, want 1", session.Focused())
	}

	session.Blur(sessionEpoch)
	if session.Focused() != -1 || !session.Tooltip().Leaving() {
		t.Error("blur should clear focus and fade the tooltip")
	}
}

func TestSessionEmptyFeed(t *testing.T) {
	session := newTestSession(t, &stubLoader{feeds: []*changefeed.Feed{{}}}, DefaultViewOptions())
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	scene := session.Scene()
	if len(scene.Markers) != 0 || len(scene.Separators) != 1 {
		t.Errorf("empty feed scene: %d markers, %d separators", len(scene.Markers), len(scene.Separators))
	}
	session.FocusStep(1, sessionEpoch)
	session.Wheel(100, 10, 2, sessionEpoch)
	session.Control(ControlReset, sessionEpoch)
	session.Tick(sessionEpoch.Add(time.Second))
}

// assertMarkersOnScale checks that every marker sits where the
// session's effective scale at now puts its event.
func assertMarkersOnScale(t *testing.T, session *Session, now time.Time) {
	t.Helper()
	effective := session.Effective(now)
	for _, marker := range session.Scene().Markers {
		if want := effective.X(marker.Event.Time); !approxEqual(marker.X, want) {
			t.Errorf("marker %d at x=%v, effective scale puts it at %v (transform %v)",
				marker.Index, marker.X, want, session.Transform(now))
		}
	}
}

func TestSessionImmediateZoomRepositions(t *testing.T) {
	view := DefaultViewOptions()
	view.Transition = 0
	view.DoubleClick = DoubleClickCenterOnEvent
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, view)
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	marker := session.Scene().Markers[1]
	session.DoubleClick(marker.X, marker.Y, sessionEpoch)
	assertMarkersOnScale(t, session, sessionEpoch)
	if x := session.Scene().Markers[1].X; !approxEqual(x, 500) {
		t.Errorf("double-clicked event at %v, want centered at 500", x)
	}

	session.Control(ControlZoomIn, sessionEpoch)
	if got := session.Transform(sessionEpoch); !approxEqual(got.Scale, 2.4) {
		t.Fatalf("scale after zoom-in = %v, want 2.4", got.Scale)
	}
	assertMarkersOnScale(t, session, sessionEpoch)

	session.DoubleClick(10, 10, sessionEpoch)
	assertMarkersOnScale(t, session, sessionEpoch)

	session.CenterOnEvent(0, sessionEpoch)
	assertMarkersOnScale(t, session, sessionEpoch)

	session.Control(ControlReset, sessionEpoch)
	assertMarkersOnScale(t, session, sessionEpoch)
	if got := session.Transform(sessionEpoch); got != Identity {
		t.Errorf("after reset = %v, want identity", got)
	}
	if session.Tick(sessionEpoch) {
		t.Error("Tick reported an animation with a zero transition")
	}
}

func TestSessionReadsDoNotAdvanceAnimation(t *testing.T) {
	loader := &stubLoader{feeds: []*changefeed.Feed{{Events: scenarioEvents()}}}
	session := newTestSession(t, loader, DefaultViewOptions())
	if err := session.Mount(context.Background(), 1200); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	session.Control(ControlZoomIn, sessionEpoch)

	middle := sessionEpoch.Add(250 * time.Millisecond)
	if !session.Tick(middle) {
		t.Fatal("animation finished early")
	}
	assertMarkersOnScale(t, session, middle)

	// A render between frames reads past the end of the animation.
	past := sessionEpoch.Add(DefaultTransitionDuration + 10*time.Millisecond)
	if got := session.Effective(past); !approxEqual(got.Transform.Scale, 1.2) {
		t.Errorf("effective scale past the end = %v, want 1.2", got.Transform.Scale)
	}
	if !session.Animating(middle) {
		t.Error("reading the effective scale finished the animation")
	}

	final := sessionEpoch.Add(DefaultTransitionDuration + 30*time.Millisecond)
	if session.Tick(final) {
		t.Error("still animating after the final frame")
	}
	assertMarkersOnScale(t, session, final)
	if got := session.Transform(final); !approxEqual(got.Scale, 1.2) {
		t.Errorf("final scale = %v, want 1.2", got.Scale)
	}
}
