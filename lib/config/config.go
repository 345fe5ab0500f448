// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/changeline/changeline/lib/changefeed"
	"github.com/changeline/changeline/lib/timeline"
)

// Config is the configuration for the changeline viewer.
type Config struct {
	// Feed configures where events come from and how they are parsed.
	Feed FeedConfig `yaml:"feed"`

	// View configures zoom and pan behavior.
	View ViewConfig `yaml:"view"`

	// Log configures diagnostics.
	Log LogConfig `yaml:"log"`
}

// FeedConfig configures feed ingestion.
type FeedConfig struct {
	// Source is the feed path or URL. Relative sources resolve against
	// BasePath.
	// Default: changes.json
	Source string `yaml:"source"`

	// BasePath is the deployment base path: a URL or directory that
	// relative sources are joined onto. CHANGELINE_BASE_PATH overrides
	// it.
	BasePath string `yaml:"base_path"`

	// Field is the document field holding the event list.
	// Default: Changes
	Field string `yaml:"field"`

	// TimestampLayout is the Go time layout of event dates.
	// Default: 20060102T150405
	TimestampLayout string `yaml:"timestamp_layout"`

	// Location is the IANA time zone event dates are interpreted in.
	// Default: UTC
	Location string `yaml:"location"`

	// Timeout bounds HTTP fetches.
	// Default: 30s
	Timeout string `yaml:"timeout"`

	// ReloadOnResize re-runs ingestion whenever the viewport resizes.
	// Default: false
	ReloadOnResize bool `yaml:"reload_on_resize"`
}

// ViewConfig configures the zoom behavior.
type ViewConfig struct {
	// MinScale and MaxScale bound the zoom factor.
	// Default: 0.5 and 10
	MinScale float64 `yaml:"min_scale"`
	MaxScale float64 `yaml:"max_scale"`

	// ZoomStep is the relative change of one zoom control press: the
	// zoom-in control multiplies by 1+ZoomStep and zoom-out by
	// 1-ZoomStep.
	// Default: 0.2
	ZoomStep float64 `yaml:"zoom_step"`

	// WheelStep is the exponent step of one wheel notch: each notch
	// scales by 2^WheelStep.
	// Default: 0.2
	WheelStep float64 `yaml:"wheel_step"`

	// DoubleClick is "zoom-at-point" or "center-on-event".
	// Default: zoom-at-point
	DoubleClick string `yaml:"double_click"`

	// BoundPan keeps the data extent inside the plot while panning.
	// Default: false
	BoundPan bool `yaml:"bound_pan"`

	// Transition is the duration of animated zooms.
	// Default: 500ms
	Transition string `yaml:"transition"`

	// Epsilon pads the time domain when every event has the same time.
	// Default: 1m
	Epsilon string `yaml:"epsilon"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	// Level is the minimum slog level: debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`
}

// environment holds the variables that overlay the config file.
type environment struct {
	ConfigPath string `env:"CHANGELINE_CONFIG"`
	BasePath   string `env:"CHANGELINE_BASE_PATH"`
}

func parseEnvironment() (environment, error) {
	var values environment
	if err := env.Parse(&values); err != nil {
		return environment{}, fmt.Errorf("parse env: %w", err)
	}
	return values, nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			Source:          "changes.json",
			Field:           changefeed.DefaultField,
			TimestampLayout: changefeed.DateLayout,
			Location:        "UTC",
			Timeout:         "30s",
		},
		View: ViewConfig{
			MinScale:    timeline.DefaultScaleExtent.Min,
			MaxScale:    timeline.DefaultScaleExtent.Max,
			ZoomStep:    0.2,
			WheelStep:   0.2,
			DoubleClick: timeline.DoubleClickZoomAtPoint.String(),
			Transition:  timeline.DefaultTransitionDuration.String(),
			Epsilon:     timeline.DefaultEpsilon.String(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the file named by CHANGELINE_CONFIG.
// Without CHANGELINE_CONFIG it returns the defaults with the
// environment overlay applied.
func Load() (*Config, error) {
	values, err := parseEnvironment()
	if err != nil {
		return nil, err
	}
	if values.ConfigPath == "" {
		cfg := Default()
		cfg.applyEnvironment(values)
		return cfg, nil
	}
	return LoadFile(values.ConfigPath)
}

// LoadFile loads configuration from a specific file path. Values in the
// file replace the defaults; CHANGELINE_BASE_PATH then overrides the
// base path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	values, err := parseEnvironment()
	if err != nil {
		return nil, err
	}
	cfg.applyEnvironment(values)
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironment(values environment) {
	if values.BasePath != "" {
		c.Feed.BasePath = values.BasePath
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// feed location fields.
func (c *Config) expandVariables() {
	c.Feed.Source = expandVars(c.Feed.Source)
	c.Feed.BasePath = expandVars(c.Feed.BasePath)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Feed.Source == "" {
		errs = append(errs, errors.New("feed.source is required"))
	}
	if c.Feed.Field == "" {
		errs = append(errs, errors.New("feed.field is required"))
	}
	if c.Feed.TimestampLayout == "" {
		errs = append(errs, errors.New("feed.timestamp_layout is required"))
	}
	if _, err := c.location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseDuration("feed.timeout", c.Feed.Timeout); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseDuration("view.epsilon", c.View.Epsilon); err != nil {
		errs = append(errs, err)
	}
	if options, err := c.ViewOptions(); err != nil {
		errs = append(errs, err)
	} else if err := options.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("view: %w", err))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ViewOptions converts the view section to interaction options.
func (c *Config) ViewOptions() (timeline.ViewOptions, error) {
	options := timeline.DefaultViewOptions()
	options.ScaleExtent = timeline.ScaleExtent{Min: c.View.MinScale, Max: c.View.MaxScale}
	options.ZoomInFactor = 1 + c.View.ZoomStep
	options.ZoomOutFactor = 1 - c.View.ZoomStep
	options.WheelStep = c.View.WheelStep
	options.BoundPan = c.View.BoundPan

	mode, err := timeline.ParseDoubleClickMode(c.View.DoubleClick)
	if err != nil {
		return timeline.ViewOptions{}, fmt.Errorf("view.double_click: %w", err)
	}
	options.DoubleClick = mode

	transition, err := parseDuration("view.transition", c.View.Transition)
	if err != nil {
		return timeline.ViewOptions{}, err
	}
	options.Transition = transition
	return options, nil
}

// Loader builds the feed loader for the feed section.
func (c *Config) Loader(logger *slog.Logger) (*changefeed.Loader, error) {
	location, err := c.location()
	if err != nil {
		return nil, err
	}
	timeout, err := parseDuration("feed.timeout", c.Feed.Timeout)
	if err != nil {
		return nil, err
	}
	return &changefeed.Loader{
		BasePath:   c.Feed.BasePath,
		Field:      c.Feed.Field,
		DateLayout: c.Feed.TimestampLayout,
		Location:   location,
		Client:     &http.Client{Timeout: timeout},
		Logger:     logger,
	}, nil
}

// Session builds a session configuration for a surface with the given
// layout measurements.
func (c *Config) Session(params timeline.LayoutParams, logger *slog.Logger) (timeline.SessionConfig, error) {
	loader, err := c.Loader(logger)
	if err != nil {
		return timeline.SessionConfig{}, err
	}
	options, err := c.ViewOptions()
	if err != nil {
		return timeline.SessionConfig{}, err
	}
	epsilon, err := parseDuration("view.epsilon", c.View.Epsilon)
	if err != nil {
		return timeline.SessionConfig{}, err
	}
	return timeline.SessionConfig{
		Source:         c.Feed.Source,
		Loader:         loader,
		Params:         params,
		View:           options,
		Epsilon:        epsilon,
		ReloadOnResize: c.Feed.ReloadOnResize,
		Logger:         logger,
	}, nil
}

// LogLevel parses the log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func (c *Config) location() (*time.Location, error) {
	if c.Feed.Location == "" {
		return time.UTC, nil
	}
	location, err := time.LoadLocation(c.Feed.Location)
	if err != nil {
		return nil, fmt.Errorf("feed.location: %w", err)
	}
	return location, nil
}

// parseDuration parses a duration field. Empty means zero.
func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("%s: must not be negative, got %s", field, value)
	}
	return duration, nil
}
