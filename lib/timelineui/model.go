// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/changeline/changeline/lib/changefeed"
	"github.com/changeline/changeline/lib/timeline"
	"github.com/changeline/changeline/lib/tui"
)

const (
	// frameInterval paces animation frames while a zoom transition,
	// tooltip fade, or reload glow is running.
	frameInterval = time.Second / 30

	// doubleClickThreshold is the maximum interval between two presses
	// on the same cell to count as a double-click.
	doubleClickThreshold = 400 * time.Millisecond

	// panFraction is the share of the plot width one pan key moves.
	panFraction = 0.1

	// Chrome lines above and below the canvas.
	headerHeight = 1
	helpHeight   = 1

	// finderMaxRows bounds the finder's visible result rows.
	finderMaxRows = 12
)

// feedLoadedMsg carries the result of a feed fetch back into the
// event loop, tagged with the load it belongs to.
type feedLoadedMsg struct {
	token timeline.LoadToken
	feed  *changefeed.Feed
	err   error
}

// frameMsg drives one animation frame.
type frameMsg struct{}

// Options configures a Model. Zero fields take defaults.
type Options struct {
	Theme *tui.Theme
	Keys  *KeyMap

	// Renderer styles all output. Nil means a renderer on stdout with
	// the color profile detected from the environment.
	Renderer *lipgloss.Renderer

	// Now is the clock used for animations. Nil means time.Now.
	Now func() time.Time

	// Context bounds feed fetches. Nil means context.Background.
	Context context.Context
}

// Model is the bubbletea model for the timeline viewer. It owns no
// visualization state of its own beyond scrolling and overlays: the
// session holds the feed, layout, transform, scene, and tooltip.
type Model struct {
	session  *timeline.Session
	theme    tui.Theme
	keys     KeyMap
	renderer *lipgloss.Renderer
	now      func() time.Time
	ctx      context.Context

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	// scroll is the first canvas line shown when the rows do not fit.
	scroll int

	// ticking is true while a frame tick is scheduled.
	ticking bool

	// Double-click detection.
	lastClick  time.Time
	lastClickX int
	lastClickY int

	// Overlays; nil when closed.
	detail *detailState
	finder *finderState

	// Reload glow for events that were not in the previous feed. seen
	// holds the previous feed's event keys; nil before the first load.
	heat *tui.HeatTracker
	seen map[string]bool

	// Status bar log message.
	status         string
	statusLevel    slog.Level
	statusSequence int
}

// NewModel creates a viewer for session. The session is attached at
// zero width; the first WindowSizeMsg lays it out and Init starts the
// first feed load.
func NewModel(session *timeline.Session, options Options) Model {
	model := Model{
		session:  session,
		theme:    tui.DefaultTheme,
		keys:     DefaultKeyMap,
		renderer: options.Renderer,
		now:      options.Now,
		ctx:      options.Context,
		heat:     tui.NewHeatTracker(),
	}
	if options.Theme != nil {
		model.theme = *options.Theme
	}
	if options.Keys != nil {
		model.keys = *options.Keys
	}
	if model.renderer == nil {
		model.renderer = lipgloss.NewRenderer(os.Stdout, termenv.WithColorCache(true))
	}
	if model.now == nil {
		model.now = time.Now
	}
	if model.ctx == nil {
		model.ctx = context.Background()
	}
	if !session.Mounted() {
		session.Attach(0)
	}
	return model
}

// Init implements tea.Model. Starts the first feed load.
func (model Model) Init() tea.Cmd {
	return model.load()
}

// load begins a new ingestion attempt and returns the command that
// performs the fetch off the event loop.
func (model Model) load() tea.Cmd {
	token := model.session.BeginLoad()
	session, ctx := model.session, model.ctx
	return func() tea.Msg {
		feed, err := session.Fetch(ctx)
		return feedLoadedMsg{token: token, feed: feed, err: err}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	var command tea.Cmd

	switch message := message.(type) {
	case tea.WindowSizeMsg:
		command = model.handleResize(message)

	case feedLoadedMsg:
		model.handleFeedLoaded(message)

	case frameMsg:
		model.ticking = false
		model.session.Tick(model.now())

	case logRecordMsg:
		model.statusSequence++
		model.status = message.Summary
		model.statusLevel = message.Level
		sequence := model.statusSequence
		command = tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{sequence: sequence}
		})

	case logRecordFadeMsg:
		if message.sequence == model.statusSequence {
			model.status = ""
		}

	case tea.KeyMsg:
		switch {
		case model.finder != nil:
			command = model.handleFinderKeys(message)
		case model.detail != nil:
			command = model.handleDetailKeys(message)
		default:
			command = model.handleKeys(message)
		}

	case tea.MouseMsg:
		model.handleMouse(message)
	}

	return model, tea.Batch(command, model.scheduleFrame())
}

// scheduleFrame starts the frame tick if something is animating and no
// tick is pending.
func (model *Model) scheduleFrame() tea.Cmd {
	if model.ticking || !model.animating(model.now()) {
		return nil
	}
	model.ticking = true
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func (model *Model) animating(now time.Time) bool {
	return model.session.Animating(now) ||
		model.session.Tooltip().Leaving() ||
		model.heat.HasHot(now)
}

func (model *Model) handleResize(message tea.WindowSizeMsg) tea.Cmd {
	first := !model.ready
	model.width = message.Width
	model.height = message.Height
	model.ready = true

	reload := model.session.Resize(float64(model.canvasWidth()))
	model.clampScroll()
	if reload && !first {
		return model.load()
	}
	return nil
}

func (model *Model) handleFeedLoaded(message feedLoadedMsg) {
	if !model.session.CompleteLoad(message.token, message.feed, message.err) {
		return
	}
	if message.err != nil {
		return
	}
	model.detail = nil
	model.finder = nil
	model.igniteNewEvents()
	model.clampScroll()
}

// igniteNewEvents starts the reload glow for events that were not in
// the previous feed. The first load glows nothing.
func (model *Model) igniteNewEvents() {
	feed := model.session.Feed()
	if feed == nil {
		return
	}
	now := model.now()
	current := make(map[string]bool, len(feed.Events))
	for _, event := range feed.Events {
		key := heatKey(event.Event)
		current[key] = true
		if model.seen != nil && !model.seen[key] {
			model.heat.Ignite(key, now)
		}
	}
	model.seen = current
}

func (model *Model) handleKeys(message tea.KeyMsg) tea.Cmd {
	now := model.now()
	session := model.session

	switch {
	case key.Matches(message, model.keys.Quit):
		session.Unmount()
		return tea.Quit

	case key.Matches(message, model.keys.ZoomIn):
		session.Control(timeline.ControlZoomIn, now)

	case key.Matches(message, model.keys.ZoomOut):
		session.Control(timeline.ControlZoomOut, now)

	case key.Matches(message, model.keys.ResetZoom):
		session.Control(timeline.ControlReset, now)

	case key.Matches(message, model.keys.PanLeft):
		session.Pan(model.panStep(), now)

	case key.Matches(message, model.keys.PanRight):
		session.Pan(-model.panStep(), now)

	case key.Matches(message, model.keys.ScrollUp):
		model.scroll--
		model.clampScroll()

	case key.Matches(message, model.keys.ScrollDown):
		model.scroll++
		model.clampScroll()

	case key.Matches(message, model.keys.FocusNext):
		session.FocusStep(1, now)
		model.revealFocused()

	case key.Matches(message, model.keys.FocusPrevious):
		session.FocusStep(-1, now)
		model.revealFocused()

	case key.Matches(message, model.keys.Detail):
		model.openDetail()

	case key.Matches(message, model.keys.Find):
		model.openFinder()

	case key.Matches(message, model.keys.Reload):
		return model.load()

	case key.Matches(message, model.keys.Close):
		session.Blur(now)
	}
	return nil
}

func (model *Model) handleDetailKeys(message tea.KeyMsg) tea.Cmd {
	switch {
	case message.Type == tea.KeyCtrlC:
		model.session.Unmount()
		return tea.Quit
	case key.Matches(message, model.keys.Close),
		key.Matches(message, model.keys.Detail),
		key.Matches(message, model.keys.Quit):
		model.detail = nil
	}
	return nil
}

func (model *Model) handleFinderKeys(message tea.KeyMsg) tea.Cmd {
	finder := model.finder
	switch {
	case message.Type == tea.KeyCtrlC:
		model.session.Unmount()
		return tea.Quit

	case message.Type == tea.KeyEsc:
		model.finder = nil

	case message.Type == tea.KeyEnter:
		if index, ok := finder.selected(); ok {
			model.jumpTo(index)
		}
		model.finder = nil

	case message.Type == tea.KeyUp || message.Type == tea.KeyCtrlP:
		finder.picker.MoveUp()

	case message.Type == tea.KeyDown || message.Type == tea.KeyCtrlN:
		finder.picker.MoveDown()

	case message.Type == tea.KeyBackspace:
		finder.backspace()

	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		finder.insert(message.Runes)
	}
	return nil
}

// jumpTo centers the view on an event and gives it keyboard focus.
func (model *Model) jumpTo(index int) {
	now := model.now()
	model.session.CenterOnEvent(index, now)
	model.session.Focus(index, now)
	model.revealFocused()
}

func (model *Model) openDetail() {
	scene := model.session.Scene()
	if scene == nil {
		return
	}
	index := model.session.Focused()
	if index < 0 {
		index = scene.Emphasized()
	}
	if index < 0 || index >= len(scene.Markers) {
		return
	}
	model.detail = newDetail(index, scene.Markers[index].Event, model.session.Feed())
}

func (model *Model) openFinder() {
	feed := model.session.Feed()
	if feed == nil || len(feed.Events) == 0 {
		return
	}
	finder := newFinder(feed.Events)
	finder.picker.AnchorX = 2
	finder.picker.AnchorY = headerHeight + 1
	finder.picker.MaxRows = max(1, min(finderMaxRows, model.height-headerHeight-helpHeight-2))
	finder.picker.MinWidth = min(60, max(20, model.width-4))
	model.finder = finder
}

// handleMouse turns mouse input into session gestures. Pointer cells
// are converted to plot coordinates by removing the chrome, scroll,
// and margins.
func (model *Model) handleMouse(message tea.MouseMsg) {
	now := model.now()
	leftPress := message.Action == tea.MouseActionPress && message.Button == tea.MouseButtonLeft

	if model.finder != nil {
		if leftPress {
			picker := &model.finder.picker
			if picker.Contains(message.X, message.Y) {
				if index := picker.ItemAtY(message.Y); index >= 0 && index < len(picker.Items) {
					model.jumpTo(picker.Items[index].Value)
				}
			}
			model.finder = nil
		}
		return
	}
	if model.detail != nil {
		if leftPress {
			model.detail = nil
		}
		return
	}

	x, y, inside := model.plotPoint(message.X, message.Y)
	session := model.session

	switch {
	case message.Button == tea.MouseButtonWheelUp:
		if inside {
			session.Wheel(x, y, 1, now)
		}

	case message.Button == tea.MouseButtonWheelDown:
		if inside {
			session.Wheel(x, y, -1, now)
		}

	case leftPress:
		if !inside {
			return
		}
		if !model.lastClick.IsZero() && now.Sub(model.lastClick) <= doubleClickThreshold &&
			message.X == model.lastClickX && message.Y == model.lastClickY {
			model.lastClick = time.Time{}
			session.DoubleClick(x, y, now)
			return
		}
		if session.Press(x, y, now) {
			model.lastClick = time.Time{}
			return
		}
		model.lastClick = now
		model.lastClickX, model.lastClickY = message.X, message.Y

	case message.Action == tea.MouseActionMotion && message.Button == tea.MouseButtonLeft:
		session.Drag(x, y, now)

	case message.Action == tea.MouseActionRelease:
		session.Release(x, y, now)
		if !inside {
			session.Leave(now)
		}

	case message.Action == tea.MouseActionMotion:
		if inside {
			session.Hover(x, y, now)
		} else {
			session.Leave(now)
		}
	}
}

// plotPoint converts a screen cell to plot coordinates. inside is
// false when the cell is outside the canvas area.
func (model *Model) plotPoint(screenX, screenY int) (float64, float64, bool) {
	canvasY := screenY - headerHeight + model.scroll
	inside := screenY >= headerHeight && screenY < headerHeight+model.canvasRows() &&
		screenX >= 0 && screenX < model.canvasWidth()
	return float64(screenX - marginLeft), float64(canvasY - marginTop), inside
}

// canvasWidth is the viewport width handed to the session: the
// terminal width minus the scrollbar column.
func (model *Model) canvasWidth() int {
	return max(0, model.width-1)
}

// canvasRows is the number of lines available to the canvas.
func (model *Model) canvasRows() int {
	return max(0, model.height-headerHeight-helpHeight)
}

// canvasHeight is the full height of the rasterized scene.
func (model *Model) canvasHeight() int {
	scene := model.session.Scene()
	if scene == nil {
		return 0
	}
	return cell(scene.Geometry.TotalHeight())
}

func (model *Model) clampScroll() {
	limit := max(0, model.canvasHeight()-model.canvasRows())
	model.scroll = max(0, min(model.scroll, limit))
}

// revealFocused scrolls vertically so the focused marker is on screen.
func (model *Model) revealFocused() {
	scene := model.session.Scene()
	index := model.session.Focused()
	if scene == nil || index < 0 || index >= len(scene.Markers) {
		return
	}
	line := marginTop + cell(scene.Markers[index].Y)
	rows := model.canvasRows()
	if line < model.scroll {
		model.scroll = line
	} else if rows > 0 && line >= model.scroll+rows {
		model.scroll = line - rows + 1
	}
	model.clampScroll()
}

func (model *Model) panStep() float64 {
	return panFraction * model.session.Layout().Geometry.PlotWidth
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return ""
	}
	now := model.now()

	lines := make([]string, 0, model.height)
	lines = append(lines, model.renderHeader(now))
	lines = append(lines, model.renderCanvas(now)...)
	lines = append(lines, model.renderHelp())
	view := strings.Join(lines, "\n")

	view = model.emphasizeRowLabel(view)
	view = model.spliceTooltip(view, now)
	if model.detail != nil {
		panel := model.detail.render(model.theme, model.renderer, model.width-4, model.height-headerHeight-helpHeight)
		if len(panel) > 0 {
			width := ansi.StringWidth(panel[0])
			x := max(0, (model.width-width)/2)
			y := max(headerHeight, (model.height-len(panel))/2)
			view = tui.SpliceOverlay(view, panel, x, y)
		}
	}
	if model.finder != nil {
		view = model.spliceFinder(view)
	}
	return view
}

// renderCanvas renders exactly canvasRows lines: the visible window of
// the rasterized scene plus the scrollbar column when the scene is
// taller than the window.
func (model Model) renderCanvas(now time.Time) []string {
	rows := model.canvasRows()
	lines := make([]string, rows)

	scene := model.session.Scene()
	if scene == nil || model.session.Feed() == nil {
		message := "Loading feed…"
		style := model.renderer.NewStyle().Foreground(model.theme.FaintText)
		if err := model.session.LastError(); err != nil {
			message = "Failed to load feed: " + err.Error()
			style = model.renderer.NewStyle().Foreground(model.theme.ErrorForeground)
		}
		if rows > 0 {
			lines[rows/2] = style.Render(ansi.Truncate(" "+message, model.width, "…"))
		}
		return lines
	}

	grid := rasterize(scene, rasterOptions{
		theme:   model.theme,
		focused: model.session.Focused(),
		heat:    model.heat,
		now:     now,
	})
	rendered := grid.lines(model.renderer)
	for row := 0; row < rows; row++ {
		if source := model.scroll + row; source < len(rendered) {
			lines[row] = rendered[source]
		}
	}

	if len(rendered) > rows {
		scrollbar := strings.Split(tui.RenderScrollbar(model.theme, rows, len(rendered), rows, model.scroll), "\n")
		for row := range lines {
			if pad := model.canvasWidth() - ansi.StringWidth(lines[row]); pad > 0 {
				lines[row] += strings.Repeat(" ", pad)
			}
			if row < len(scrollbar) {
				lines[row] += scrollbar[row]
			}
		}
	}
	return lines
}

// emphasizeRowLabel bolds the row label of the emphasized marker's
// category.
func (model Model) emphasizeRowLabel(view string) string {
	scene := model.session.Scene()
	if scene == nil {
		return view
	}
	index := scene.Emphasized()
	if index < 0 {
		return view
	}
	row, ok := model.session.Layout().Row(scene.Markers[index].Event.ChangeType)
	if !ok || row >= len(scene.RowLabels) {
		return view
	}
	label := scene.RowLabels[row]
	end := marginLeft + cell(label.X)
	start := max(0, end-len([]rune(label.Text)))
	y := headerHeight + marginTop + cell(label.Y) - model.scroll
	return tui.OverlayBold(view, y, start, end)
}

func (model Model) spliceTooltip(view string, now time.Time) string {
	tooltip := model.session.Tooltip()
	if !tooltip.Visible() {
		return view
	}
	opacity := tooltip.Opacity(now)
	if opacity <= 0 {
		return view
	}
	lines := renderTooltip(tooltip.Content, opacity, model.theme, model.renderer, model.width-2)
	if len(lines) == 0 {
		return view
	}
	anchorX := marginLeft + cell(tooltip.AnchorX)
	anchorY := headerHeight + marginTop + cell(tooltip.AnchorY) - model.scroll
	x, y := tui.PlaceOverlay(anchorX, anchorY, ansi.StringWidth(lines[0]), len(lines),
		tooltipOffsetX, tooltipOffsetY, model.width, model.height)
	return tui.SpliceOverlay(view, lines, x, y)
}

func (model Model) spliceFinder(view string) string {
	picker := &model.finder.picker
	width := picker.Width()
	style := model.renderer.NewStyle().
		Background(lipgloss.Color(model.theme.TooltipBackground)).
		Foreground(model.theme.HeaderForeground).
		Bold(true)

	query := "Find: " + string(model.finder.query) + "▏"
	if ansi.StringWidth(query) > width-2 {
		query = ansi.TruncateLeft(query, ansi.StringWidth(query)-(width-2), "")
	}
	lines := []string{tui.PadOverlayLine(style.Render(query), width-2, style)}

	items := picker.Render(model.theme)
	if len(items) == 0 {
		faint := style.Bold(false).Foreground(model.theme.FaintText)
		items = []string{tui.PadOverlayLine(faint.Render("no matching events"), width-2, faint)}
	}
	lines = append(lines, items...)
	return tui.SpliceOverlay(view, lines, picker.AnchorX, picker.AnchorY-1)
}

// renderHeader renders the top line: feed source, counts, digest, the
// visible time window, and the load state.
func (model Model) renderHeader(now time.Time) string {
	title := model.renderer.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	faint := model.renderer.NewStyle().Foreground(model.theme.FaintText)
	warn := model.renderer.NewStyle().Foreground(model.theme.WarnForeground)
	failure := model.renderer.NewStyle().Foreground(model.theme.ErrorForeground).Bold(true)

	parts := []string{title.Render("changeline")}
	if feed := model.session.Feed(); feed != nil {
		parts = append(parts, faint.Render(feed.Source))
		parts = append(parts, faint.Render(fmt.Sprintf("%d events", len(feed.Events))))
		if feed.Dropped > 0 {
			parts = append(parts, warn.Render(fmt.Sprintf("%d dropped", feed.Dropped)))
		}
		if len(feed.Digest) >= 12 {
			parts = append(parts, faint.Render("blake3:"+feed.Digest[:12]))
		}
		if model.session.Scene() != nil {
			effective := model.session.Effective(now)
			start, end := effective.VisibleDomain()
			parts = append(parts, faint.Render(fmt.Sprintf("%s – %s  ×%.2f",
				start.Format("Jan 2 15:04:05"), end.Format("Jan 2 15:04:05"), effective.Transform.Scale)))
		}
	}
	if model.session.Loading() {
		parts = append(parts, warn.Render("loading…"))
	}
	if err := model.session.LastError(); err != nil {
		parts = append(parts, failure.Render("error: "+err.Error()))
	}

	header := " " + strings.Join(parts, faint.Render("  "))
	return ansi.Truncate(header, model.width, "…")
}

// renderHelp renders the bottom line: the latest log message while it
// is fresh, otherwise key hints for the current mode.
func (model Model) renderHelp() string {
	if model.status != "" {
		style := model.renderer.NewStyle().Foreground(model.theme.WarnForeground)
		if model.statusLevel >= slog.LevelError {
			style = model.renderer.NewStyle().Foreground(model.theme.ErrorForeground).Bold(true)
		}
		return ansi.Truncate(style.Render(" "+model.status), model.width, "…")
	}

	var help string
	switch {
	case model.finder != nil:
		help = " type to search  ↑↓ select  Enter go  Esc cancel"
	case model.detail != nil:
		help = " Esc close"
	default:
		bindings := []key.Binding{
			model.keys.ZoomIn, model.keys.ZoomOut, model.keys.ResetZoom,
			model.keys.PanLeft, model.keys.PanRight, model.keys.FocusNext,
			model.keys.Detail, model.keys.Find, model.keys.Reload, model.keys.Quit,
		}
		parts := make([]string, 0, len(bindings))
		for _, binding := range bindings {
			parts = append(parts, binding.Help().Key+" "+binding.Help().Desc)
		}
		help = " " + strings.Join(parts, "  ")
	}
	style := model.renderer.NewStyle().Foreground(model.theme.HelpText)
	return style.Render(ansi.Truncate(help, model.width, "…"))
}
