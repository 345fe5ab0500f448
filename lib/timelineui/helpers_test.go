// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/changeline/changeline/lib/changefeed"
	"github.com/changeline/changeline/lib/timeline"
)

var testEpoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// testEvent builds a timed event from a compact feed timestamp.
func testEvent(changeType, resourceType, date string, seq int64) changefeed.TimedEvent {
	parsed, err := time.ParseInLocation(changefeed.DateLayout, date, time.UTC)
	if err != nil {
		panic(err)
	}
	return changefeed.TimedEvent{
		Event: changefeed.Event{
			ID:           "0123456789abcdef0123-" + changeType,
			ChangeType:   changeType,
			ResourceType: resourceType,
			Path:         "/" + changeType,
			Seq:          seq,
			Date:         date,
		},
		Time: parsed,
	}
}

func testFeed(events ...changefeed.TimedEvent) *changefeed.Feed {
	return &changefeed.Feed{
		Events: events,
		Digest: "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		Source: "changes.json",
	}
}

func scenarioFeed() *changefeed.Feed {
	return testFeed(
		testEvent("NewPatient", "Patient", "20240101T080000", 1),
		testEvent("NewSeries", "Series", "20240101T090000", 2),
	)
}

// stubLoader returns canned feeds in order.
type stubLoader struct {
	mutex sync.Mutex
	feeds []*changefeed.Feed
	err   error
	calls int
}

func (loader *stubLoader) Load(ctx context.Context, source string) (*changefeed.Feed, error) {
	loader.mutex.Lock()
	defer loader.mutex.Unlock()
	loader.calls++
	if loader.err != nil {
		return nil, loader.err
	}
	index := min(loader.calls-1, len(loader.feeds)-1)
	return loader.feeds[index], nil
}

// fakeClock is a manually advanced clock for animations.
type fakeClock struct {
	now time.Time
}

func (clock *fakeClock) Now() time.Time { return clock.now }

func (clock *fakeClock) Advance(duration time.Duration) { clock.now = clock.now.Add(duration) }

func testRenderer() *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.Ascii))
	renderer.SetColorProfile(termenv.Ascii)
	return renderer
}

// newTestModel builds a sized model over loader's feeds. The first
// load has not run yet.
func newTestModel(t *testing.T, loader *stubLoader, clock *fakeClock) (Model, *timeline.Session) {
	t.Helper()
	session := timeline.NewSession(timeline.SessionConfig{
		Source: "changes.json",
		Loader: loader,
		Params: TerminalParams(),
		View:   timeline.DefaultViewOptions(),
	})
	model := NewModel(session, Options{
		Renderer: testRenderer(),
		Now:      clock.Now,
	})
	model = update(t, model, tea.WindowSizeMsg{Width: 100, Height: 30})
	return model, session
}

// loadedModel is newTestModel with the first load applied.
func loadedModel(t *testing.T, loader *stubLoader, clock *fakeClock) (Model, *timeline.Session) {
	t.Helper()
	model, session := newTestModel(t, loader, clock)
	model = update(t, model, model.Init()())
	if session.Feed() == nil {
		t.Fatal("feed not applied after first load")
	}
	return model, session
}

func update(t *testing.T, model Model, message tea.Msg) Model {
	t.Helper()
	updated, _ := model.Update(message)
	return updated.(Model)
}

func runes(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

func typeText(t *testing.T, model Model, text string) Model {
	t.Helper()
	for _, char := range text {
		model = update(t, model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{char}})
	}
	return model
}

// screenOf converts a point in plot coordinates to the screen cell the
// model draws it at.
func screenOf(model Model, x, y float64) (int, int) {
	return marginLeft + cell(x), headerHeight + marginTop + cell(y) - model.scroll
}

func mouse(x, y int, button tea.MouseButton, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: button, Action: action}
}

func strippedView(model Model) string {
	return ansi.Strip(model.View())
}

// collectMessages runs a command and flattens batches, returning every
// message produced by commands that complete immediately. Tick commands
// are skipped.
func collectMessages(command tea.Cmd) []tea.Msg {
	if command == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- command() }()
	select {
	case message := <-done:
		if batch, ok := message.(tea.BatchMsg); ok {
			var messages []tea.Msg
			for _, inner := range batch {
				messages = append(messages, collectMessages(inner)...)
			}
			return messages
		}
		return []tea.Msg{message}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}
