// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/changeline/changeline/lib/changefeed"
	"github.com/changeline/changeline/lib/timeline"
)

func TestModelLoadsFeed(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := newTestModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	if !session.Mounted() {
		t.Fatal("session not attached by NewModel")
	}
	if view := strippedView(model); !strings.Contains(view, "Loading feed") {
		t.Errorf("expected loading text before the first load, got:\n%s", view)
	}

	model = update(t, model, model.Init()())
	view := strippedView(model)
	for _, want := range []string{"changeline", "changes.json", "2 events", "blake3:af1349b9f5f9", "NewPatient", "NewSeries", "[Reset]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if count := strings.Count(view, string(markerGlyph)); count != 2 {
		t.Errorf("view has %d markers, want 2", count)
	}
	if lines := strings.Split(model.View(), "\n"); len(lines) != 30 {
		t.Errorf("view has %d lines, want 30", len(lines))
	}
}

func TestModelLoadFailure(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	loader := &stubLoader{err: errors.New("connection refused")}
	model, session := newTestModel(t, loader, clock)

	model = update(t, model, model.Init()())
	if session.LastError() == nil {
		t.Fatal("expected load error on session")
	}
	view := strippedView(model)
	if !strings.Contains(view, "Failed to load feed: connection refused") {
		t.Errorf("view missing failure message:\n%s", view)
	}
	if !strings.Contains(view, "error: connection refused") {
		t.Errorf("header missing error:\n%s", view)
	}
}

func TestModelStaleLoadIgnored(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	third := testEvent("NewStudy", "Study", "20240101T083000", 3)
	loader := &stubLoader{feeds: []*changefeed.Feed{
		scenarioFeed(),
		testFeed(append(scenarioFeed().Events, third)...),
	}}
	model, session := newTestModel(t, loader, clock)

	firstMessage := model.Init()()
	updated, reload := model.Update(runes("r"))
	model = updated.(Model)

	var secondMessage tea.Msg
	for _, message := range collectMessages(reload) {
		if _, ok := message.(feedLoadedMsg); ok {
			secondMessage = message
		}
	}
	if secondMessage == nil {
		t.Fatal("reload did not produce a feed load")
	}

	model = update(t, model, firstMessage)
	if session.Feed() != nil {
		t.Fatal("superseded load was applied")
	}
	if !session.Loading() {
		t.Error("session stopped loading after a stale completion")
	}

	model = update(t, model, secondMessage)
	if session.Feed() == nil || len(session.Feed().Events) != 3 {
		t.Fatalf("latest load not applied: %+v", session.Feed())
	}
	if !strings.Contains(strippedView(model), "3 events") {
		t.Error("header does not show the reloaded feed")
	}
}

func TestModelReloadIgnitesNewEvents(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	third := testEvent("NewStudy", "Study", "20240101T083000", 3)
	loader := &stubLoader{feeds: []*changefeed.Feed{
		scenarioFeed(),
		testFeed(append(scenarioFeed().Events, third)...),
	}}
	model, _ := loadedModel(t, loader, clock)
	if model.heat.HasHot(clock.now) {
		t.Fatal("first load should not glow")
	}

	updated, reload := model.Update(runes("r"))
	model = updated.(Model)
	for _, message := range collectMessages(reload) {
		if _, ok := message.(feedLoadedMsg); ok {
			model = update(t, model, message)
		}
	}

	if heat := model.heat.Heat(heatKey(third.Event), clock.now); heat <= 0 {
		t.Errorf("new event heat = %v, want > 0", heat)
	}
	old := scenarioFeed().Events[0]
	if heat := model.heat.Heat(heatKey(old.Event), clock.now); heat != 0 {
		t.Errorf("existing event heat = %v, want 0", heat)
	}
	if !model.ticking {
		t.Error("expected a frame tick while events glow")
	}
}

func TestModelHoverShowsTooltip(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	marker := session.Scene().Markers[1]
	x, y := screenOf(model, marker.X, marker.Y)
	model = update(t, model, mouse(x, y, tea.MouseButtonNone, tea.MouseActionMotion))

	tooltip := session.Tooltip()
	if !tooltip.Visible() || tooltip.Index != 1 {
		t.Fatalf("tooltip visible=%v index=%d, want visible on marker 1", tooltip.Visible(), tooltip.Index)
	}
	if session.Scene().Emphasized() != 1 {
		t.Errorf("emphasized = %d, want 1", session.Scene().Emphasized())
	}

	clock.Advance(250 * time.Millisecond)
	view := strippedView(model)
	for _, want := range []string{"Resource: Series", "Seq: 2", "ID: 0123456789abcdef..."} {
		if !strings.Contains(view, want) {
			t.Errorf("tooltip missing %q:\n%s", want, view)
		}
	}
	if !strings.Contains(view, string(emphasizedGlyph)) {
		t.Error("hovered marker not drawn emphasized")
	}

	// Leaving the canvas fades the tooltip out.
	model = update(t, model, mouse(x, 0, tea.MouseButtonNone, tea.MouseActionMotion))
	if !tooltip.Leaving() {
		t.Error("tooltip not fading after the pointer left the canvas")
	}
	clock.Advance(time.Second)
	model = update(t, model, frameMsg{})
	if tooltip.Visible() {
		t.Error("tooltip still present after the fade completed")
	}
	if strings.Contains(strippedView(model), "Resource: Series") {
		t.Error("tooltip still drawn after the fade completed")
	}
}

func TestModelWheelZooms(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	x, y := screenOf(model, 40, 3)
	model = update(t, model, mouse(x, y, tea.MouseButtonWheelUp, tea.MouseActionPress))
	if scale := session.Transform(clock.now).Scale; scale <= 1 {
		t.Fatalf("scale after wheel up = %v, want > 1", scale)
	}
	zoomed := session.Transform(clock.now).Scale

	model = update(t, model, mouse(x, y, tea.MouseButtonWheelDown, tea.MouseActionPress))
	if scale := session.Transform(clock.now).Scale; scale >= zoomed {
		t.Errorf("scale after wheel down = %v, want < %v", scale, zoomed)
	}

	// Wheel outside the canvas is ignored.
	before := session.Transform(clock.now)
	update(t, model, mouse(x, 0, tea.MouseButtonWheelUp, tea.MouseActionPress))
	if session.Transform(clock.now) != before {
		t.Error("wheel over the header changed the transform")
	}
}

func TestModelControlClick(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	var zoomIn timeline.Control
	for _, control := range session.Scene().Controls {
		if control.Kind == timeline.ControlZoomIn {
			zoomIn = control
		}
	}
	x, y := screenOf(model, zoomIn.X, zoomIn.Y)
	model = update(t, model, mouse(x, y, tea.MouseButtonLeft, tea.MouseActionPress))
	if !session.Animating(clock.now) {
		t.Fatal("control click did not start a transition")
	}
	if !model.ticking {
		t.Error("no frame tick scheduled for the transition")
	}

	clock.Advance(time.Second)
	update(t, model, frameMsg{})
	if scale := session.Transform(clock.now).Scale; math.Abs(scale-1.2) > 1e-9 {
		t.Errorf("scale after zoom in control = %v, want 1.2", scale)
	}
}

func TestModelDoubleClickZooms(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	x, y := screenOf(model, 40, 3)
	model = update(t, model, mouse(x, y, tea.MouseButtonLeft, tea.MouseActionPress))
	model = update(t, model, mouse(x, y, tea.MouseButtonLeft, tea.MouseActionRelease))
	clock.Advance(100 * time.Millisecond)
	model = update(t, model, mouse(x, y, tea.MouseButtonLeft, tea.MouseActionPress))

	clock.Advance(time.Second)
	update(t, model, frameMsg{})
	if scale := session.Transform(clock.now).Scale; math.Abs(scale-2) > 1e-9 {
		t.Errorf("scale after double-click = %v, want 2", scale)
	}
}

func TestModelSlowClicksDoNotZoom(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	x, y := screenOf(model, 40, 3)
	model = update(t, model, mouse(x, y, tea.MouseButtonLeft, tea.MouseActionPress))
	model = update(t, model, mouse(x, y, tea.MouseButtonLeft, tea.MouseActionRelease))
	clock.Advance(doubleClickThreshold + time.Millisecond)
	model = update(t, model, mouse(x, y, tea.MouseButtonLeft, tea.MouseActionPress))
	update(t, model, mouse(x, y, tea.MouseButtonLeft, tea.MouseActionRelease))

	if scale := session.Transform(clock.now).Scale; scale != 1 {
		t.Errorf("scale after two slow clicks = %v, want 1", scale)
	}
}

func TestModelDragPans(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	x, y := screenOf(model, 40, 3)
	model = update(t, model, mouse(x, y, tea.MouseButtonLeft, tea.MouseActionPress))
	model = update(t, model, mouse(x+10, y, tea.MouseButtonLeft, tea.MouseActionMotion))
	update(t, model, mouse(x+10, y, tea.MouseButtonLeft, tea.MouseActionRelease))

	if translate := session.Transform(clock.now).TranslateX; math.Abs(translate-10) > 1e-9 {
		t.Errorf("translate after drag = %v, want 10", translate)
	}
}

func TestModelZoomKeys(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	model = update(t, model, runes("+"))
	clock.Advance(time.Second)
	model = update(t, model, frameMsg{})
	if scale := session.Transform(clock.now).Scale; math.Abs(scale-1.2) > 1e-9 {
		t.Fatalf("scale after + = %v, want 1.2", scale)
	}

	model = update(t, model, runes("0"))
	clock.Advance(time.Second)
	update(t, model, frameMsg{})
	if transform := session.Transform(clock.now); transform != timeline.Identity {
		t.Errorf("transform after reset = %+v, want identity", transform)
	}
}

func TestModelFinderJumpsToEvent(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	model = update(t, model, runes("/"))
	if model.finder == nil {
		t.Fatal("finder not opened")
	}
	model = typeText(t, model, "Series")
	view := strippedView(model)
	if !strings.Contains(view, "Find: Series") {
		t.Errorf("finder query line missing:\n%s", view)
	}
	if len(model.finder.picker.Items) != 1 {
		t.Fatalf("finder has %d results, want 1", len(model.finder.picker.Items))
	}

	model = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.finder != nil {
		t.Error("finder still open after choosing an event")
	}
	if session.Focused() != 1 {
		t.Errorf("focused = %d, want 1", session.Focused())
	}
	if !session.Animating(clock.now) {
		t.Error("choosing an event did not start a transition")
	}
}

func TestModelFinderEscape(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	model = update(t, model, runes("/"))
	model = typeText(t, model, "q")
	if model.finder == nil {
		t.Fatal("typing q in the finder closed it")
	}
	model = update(t, model, tea.KeyMsg{Type: tea.KeyEscape})
	if model.finder != nil {
		t.Error("finder still open after escape")
	}
	if !session.Mounted() {
		t.Error("escape from the finder unmounted the session")
	}
}

func TestModelDetailOverlay(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	model = update(t, model, tea.KeyMsg{Type: tea.KeyTab})
	if session.Focused() != 0 {
		t.Fatalf("focused = %d after tab, want 0", session.Focused())
	}
	model = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.detail == nil {
		t.Fatal("detail not opened")
	}

	view := strippedView(model)
	for _, want := range []string{"Event 1 of 2", `"ChangeType": "NewPatient"`, "Source: changes.json", "Esc close"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail missing %q:\n%s", want, view)
		}
	}

	model = update(t, model, tea.KeyMsg{Type: tea.KeyEscape})
	if model.detail != nil {
		t.Error("detail still open after escape")
	}
	if session.Focused() != 0 {
		t.Error("closing the detail dropped focus")
	}
}

func TestModelDetailWithoutTarget(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, _ := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	model = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.detail != nil {
		t.Error("detail opened with nothing focused or hovered")
	}
}

func TestModelFocusScrollsIntoView(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	feed := testFeed(
		testEvent("NewPatient", "Patient", "20240101T080000", 1),
		testEvent("NewStudy", "Study", "20240101T080500", 2),
		testEvent("NewSeries", "Series", "20240101T081000", 3),
		testEvent("NewInstance", "Instance", "20240101T081030", 4),
		testEvent("StableSeries", "Series", "20240101T083000", 5),
	)
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{feed}}, clock)
	model = update(t, model, tea.WindowSizeMsg{Width: 100, Height: 10})

	rows := model.canvasRows()
	if model.canvasHeight() <= rows {
		t.Fatalf("canvas height %d fits in %d rows; test needs scrolling", model.canvasHeight(), rows)
	}

	model = update(t, model, runes("j"))
	if model.scroll != 1 {
		t.Errorf("scroll after j = %d, want 1", model.scroll)
	}
	model = update(t, model, runes("k"))
	model = update(t, model, runes("k"))
	if model.scroll != 0 {
		t.Errorf("scroll after k past the top = %d, want 0", model.scroll)
	}

	model = update(t, model, tea.KeyMsg{Type: tea.KeyShiftTab})
	last := len(feed.Events) - 1
	if session.Focused() != last {
		t.Fatalf("focused = %d after shift+tab, want %d", session.Focused(), last)
	}
	line := marginTop + cell(session.Scene().Markers[last].Y)
	if line < model.scroll || line >= model.scroll+rows {
		t.Errorf("focused marker line %d outside window [%d, %d)", line, model.scroll, model.scroll+rows)
	}
	if !strings.Contains(model.View(), "┃") {
		t.Error("no scrollbar thumb for a canvas taller than the window")
	}
}

func TestModelResizeRelayouts(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	update(t, model, tea.WindowSizeMsg{Width: 61, Height: 30})
	if width := session.Layout().Geometry.PlotWidth; width != 60-marginLeft-marginRight {
		t.Errorf("plot width after resize = %v, want %d", width, 60-marginLeft-marginRight)
	}
}

func TestModelLogStatus(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, _ := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	model = update(t, model, logRecordMsg{Summary: "loading feed failed (error=boom)", Level: slog.LevelError})
	lines := strings.Split(strippedView(model), "\n")
	if help := lines[len(lines)-1]; !strings.Contains(help, "loading feed failed (error=boom)") {
		t.Errorf("status line = %q", help)
	}

	model = update(t, model, logRecordFadeMsg{sequence: model.statusSequence - 1})
	if model.status == "" {
		t.Error("stale fade cleared a newer message")
	}
	model = update(t, model, logRecordFadeMsg{sequence: model.statusSequence})
	if model.status != "" {
		t.Error("fade did not clear the message")
	}
	lines = strings.Split(strippedView(model), "\n")
	if help := lines[len(lines)-1]; !strings.Contains(help, "zoom in") {
		t.Errorf("help line not restored: %q", help)
	}
}

func TestModelQuit(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	model, session := loadedModel(t, &stubLoader{feeds: []*changefeed.Feed{scenarioFeed()}}, clock)

	_, command := model.Update(runes("q"))
	quit := false
	for _, message := range collectMessages(command) {
		if _, ok := message.(tea.QuitMsg); ok {
			quit = true
		}
	}
	if !quit {
		t.Error("q did not quit")
	}
	if session.Mounted() {
		t.Error("session still mounted after quit")
	}
}
