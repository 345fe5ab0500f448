// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DoubleClickMode selects what a double-click does.
type DoubleClickMode int

const (
	// DoubleClickZoomAtPoint zooms in keeping the clicked point fixed.
	DoubleClickZoomAtPoint DoubleClickMode = iota
	// DoubleClickCenterOnEvent zooms in centered on the event under the
	// pointer, and behaves like DoubleClickZoomAtPoint elsewhere.
	DoubleClickCenterOnEvent
)

// String returns the configuration name of the mode.
func (mode DoubleClickMode) String() string {
	switch mode {
	case DoubleClickZoomAtPoint:
		return "zoom-at-point"
	case DoubleClickCenterOnEvent:
		return "center-on-event"
	default:
		return fmt.Sprintf("unknown(%d)", int(mode))
	}
}

// ParseDoubleClickMode parses a configuration name. The empty string is
// zoom-at-point.
func ParseDoubleClickMode(name string) (DoubleClickMode, error) {
	switch name {
	case "", "zoom-at-point":
		return DoubleClickZoomAtPoint, nil
	case "center-on-event":
		return DoubleClickCenterOnEvent, nil
	default:
		return 0, fmt.Errorf("unknown double-click mode %q (want zoom-at-point or center-on-event)", name)
	}
}

// ViewOptions tune interaction.
type ViewOptions struct {
	ScaleExtent ScaleExtent

	// ZoomInFactor and ZoomOutFactor are the control and keyboard zoom
	// multipliers.
	ZoomInFactor  float64
	ZoomOutFactor float64

	// WheelStep is the base-2 exponent of one wheel notch.
	WheelStep float64

	// DoubleClickFactor is the zoom multiplier of a double-click.
	DoubleClickFactor float64
	DoubleClick       DoubleClickMode

	// BoundPan keeps the data extent covering the plot.
	BoundPan bool

	// Transition is the duration of animated zooms.
	Transition time.Duration

	FadeIn         time.Duration
	FadeOut        time.Duration
	TooltipOpacity float64
}

// DefaultViewOptions returns the standard interaction settings.
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		ScaleExtent:       DefaultScaleExtent,
		ZoomInFactor:      1.2,
		ZoomOutFactor:     0.8,
		WheelStep:         0.2,
		DoubleClickFactor: 2,
		DoubleClick:       DoubleClickZoomAtPoint,
		Transition:        DefaultTransitionDuration,
		FadeIn:            DefaultFadeIn,
		FadeOut:           DefaultFadeOut,
		TooltipOpacity:    DefaultTooltipOpacity,
	}
}

// Validate checks the options for values that would make interaction
// meaningless.
func (options ViewOptions) Validate() error {
	var errs []error
	if err := options.ScaleExtent.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !(options.ZoomInFactor > 1) {
		errs = append(errs, fmt.Errorf("zoom-in factor must be greater than 1, got %v", options.ZoomInFactor))
	}
	if !(options.ZoomOutFactor > 0 && options.ZoomOutFactor < 1) {
		errs = append(errs, fmt.Errorf("zoom-out factor must be between 0 and 1, got %v", options.ZoomOutFactor))
	}
	if !(options.WheelStep > 0) {
		errs = append(errs, fmt.Errorf("wheel step must be positive, got %v", options.WheelStep))
	}
	if !(options.DoubleClickFactor > 0) {
		errs = append(errs, fmt.Errorf("double-click factor must be positive, got %v", options.DoubleClickFactor))
	}
	if options.Transition < 0 || options.FadeIn < 0 || options.FadeOut < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if options.TooltipOpacity < 0 || options.TooltipOpacity > 1 {
		errs = append(errs, fmt.Errorf("tooltip opacity must be within [0, 1], got %v", options.TooltipOpacity))
	}
	return errors.Join(errs...)
}

// Controller turns gestures into transforms. Continuous gestures (wheel
// and drag) replace the transform immediately; discrete requests
// (double-click and the zoom controls) animate toward a target. Any
// gesture cancels a running animation, and a new animation starts from
// wherever the running one has reached, so the last request wins.
//
// Coordinates are plot-relative screen coordinates.
type Controller struct {
	options ViewOptions
	width   float64

	current    Transform
	transition *Transition

	dragging        bool
	dragStartX      float64
	dragStartOffset float64
}

// NewController returns a controller at the identity transform for a
// plot of the given width.
func NewController(options ViewOptions, width float64) *Controller {
	return &Controller{options: options, width: width, current: Identity}
}

// Options returns the controller's options.
func (controller *Controller) Options() ViewOptions {
	return controller.options
}

// Reset jumps to the identity transform for a new plot width, dropping
// any animation and drag.
func (controller *Controller) Reset(width float64) {
	controller.width = width
	controller.current = Identity
	controller.transition = nil
	controller.dragging = false
}

// Transform returns the transform at now without advancing the
// animation. Only Tick and gestures move the controller forward.
func (controller *Controller) Transform(now time.Time) Transform {
	if controller.transition == nil {
		return controller.current
	}
	return controller.transition.At(now)
}

// Current returns the transform last applied by a gesture or Tick.
func (controller *Controller) Current() Transform {
	return controller.current
}

// Tick advances a running animation and reports whether it is still
// running.
func (controller *Controller) Tick(now time.Time) bool {
	if controller.transition == nil {
		return false
	}
	controller.current = controller.transition.At(now)
	if controller.transition.Done(now) {
		controller.transition = nil
		return false
	}
	return true
}

// Animating reports whether an animation is running.
func (controller *Controller) Animating() bool {
	return controller.transition != nil
}

// Dragging reports whether a drag is in progress.
func (controller *Controller) Dragging() bool {
	return controller.dragging
}

// Wheel zooms by notches wheel steps around the pointer at x. Positive
// notches zoom in.
func (controller *Controller) Wheel(x, notches float64, now time.Time) Transform {
	controller.interrupt(now)
	factor := math.Pow(2, notches*controller.options.WheelStep)
	controller.set(controller.current.ScaleBy(factor, x, controller.options.ScaleExtent))
	return controller.current
}

// Press starts a drag at x.
func (controller *Controller) Press(x float64, now time.Time) {
	controller.interrupt(now)
	controller.dragging = true
	controller.dragStartX = x
	controller.dragStartOffset = controller.current.TranslateX
}

// Drag moves an active drag to x. Without an active drag it returns the
// transform unchanged.
func (controller *Controller) Drag(x float64) Transform {
	if !controller.dragging {
		return controller.current
	}
	next := Transform{
		TranslateX: controller.dragStartOffset + (x - controller.dragStartX),
		Scale:      controller.current.Scale,
	}
	controller.set(next)
	return controller.current
}

// Release ends a drag.
func (controller *Controller) Release() {
	controller.dragging = false
}

// Pan shifts the view by dx immediately.
func (controller *Controller) Pan(dx float64, now time.Time) Transform {
	controller.interrupt(now)
	controller.set(controller.current.TranslateBy(dx))
	return controller.current
}

// ZoomAt animates a zoom by the double-click factor around x.
func (controller *Controller) ZoomAt(x float64, now time.Time) {
	controller.interrupt(now)
	from := controller.current
	controller.animate(from.ScaleBy(controller.options.DoubleClickFactor, x, controller.options.ScaleExtent), now)
}

// CenterOn animates to a zoom by the double-click factor with base
// coordinate baseX at the middle of the plot.
func (controller *Controller) CenterOn(baseX float64, now time.Time) {
	controller.interrupt(now)
	from := controller.current
	scale := from.Scale * controller.options.DoubleClickFactor
	controller.animate(from.CenterOn(baseX, scale, controller.width, controller.options.ScaleExtent), now)
}

// ZoomIn animates a zoom-in around the plot center.
func (controller *Controller) ZoomIn(now time.Time) {
	controller.interrupt(now)
	from := controller.current
	controller.animate(from.ScaleBy(controller.options.ZoomInFactor, controller.width/2, controller.options.ScaleExtent), now)
}

// ZoomOut animates a zoom-out around the plot center.
func (controller *Controller) ZoomOut(now time.Time) {
	controller.interrupt(now)
	from := controller.current
	controller.animate(from.ScaleBy(controller.options.ZoomOutFactor, controller.width/2, controller.options.ScaleExtent), now)
}

// ResetZoom animates back to the identity transform.
func (controller *Controller) ResetZoom(now time.Time) {
	controller.interrupt(now)
	controller.animate(Identity, now)
}

// interrupt freezes a running animation where it is.
func (controller *Controller) interrupt(now time.Time) {
	if controller.transition != nil {
		controller.current = controller.transition.At(now)
		controller.transition = nil
	}
}

func (controller *Controller) set(transform Transform) {
	controller.current = controller.constrain(transform)
}

func (controller *Controller) constrain(transform Transform) Transform {
	if controller.options.BoundPan {
		return transform.Constrain(controller.width)
	}
	return transform
}

func (controller *Controller) animate(target Transform, now time.Time) {
	target = controller.constrain(target)
	controller.dragging = false
	if controller.options.Transition <= 0 {
		controller.current = target
		controller.transition = nil
		return
	}
	controller.transition = &Transition{
		From:     controller.current,
		To:       target,
		Start:    now,
		Duration: controller.options.Transition,
		Width:    controller.width,
	}
}
