// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers a slog record to the model for display in the
// status bar.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
	Time    time.Time
}

// logRecordFadeMsg clears a status bar log message. The sequence
// number matches the record it was scheduled for, so an older fade
// does not clear a newer message.
type logRecordFadeMsg struct {
	sequence int
}

// logRecordFadeDelay is how long a log message stays in the status bar.
const logRecordFadeDelay = 5 * time.Second

// TUILogHandler is a slog.Handler that routes records into a running
// bubbletea program as status bar messages. Records below the
// configured level are dropped, as are records that arrive before
// SetProgram is called.
//
// Handlers derived with WithAttrs and WithGroup share the program
// pointer, so one SetProgram call reaches all of them.
type TUILogHandler struct {
	level   slog.Leveler
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
	prefix  string
}

// NewTUILogHandler creates a handler that delivers records at or above
// level. Call SetProgram after creating the tea.Program.
func NewTUILogHandler(level slog.Leveler) *TUILogHandler {
	return &TUILogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram sets the program that receives log messages. Safe to call
// from any goroutine.
func (handler *TUILogHandler) SetProgram(program *tea.Program) {
	handler.program.Store(program)
}

// Enabled implements slog.Handler.
func (handler *TUILogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level.Level()
}

// Handle implements slog.Handler. Delivery is asynchronous: records
// are logged from inside Update, and Program.Send blocks until the
// event loop, which is running that Update, reads the message.
func (handler *TUILogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}
	message := logRecordMsg{
		Summary: handler.summarize(record),
		Level:   record.Level,
		Time:    record.Time,
	}
	go program.Send(message)
	return nil
}

// summarize formats a record as "message (key=value, ...)", handler
// attributes first.
func (handler *TUILogHandler) summarize(record slog.Record) string {
	var parts []string
	for _, attr := range handler.attrs {
		parts = append(parts, formatAttr("", attr))
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, formatAttr(handler.prefix, attr))
		return true
	})
	if len(parts) == 0 {
		return record.Message
	}
	return record.Message + " (" + strings.Join(parts, ", ") + ")"
}

func formatAttr(prefix string, attr slog.Attr) string {
	return fmt.Sprintf("%s%s=%s", prefix, attr.Key, attr.Value.Resolve())
}

// WithAttrs implements slog.Handler.
func (handler *TUILogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := handler.clone()
	for _, attr := range attrs {
		derived.attrs = append(derived.attrs, slog.Attr{Key: handler.prefix + attr.Key, Value: attr.Value})
	}
	return derived
}

// WithGroup implements slog.Handler.
func (handler *TUILogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	derived := handler.clone()
	derived.prefix = handler.prefix + name + "."
	return derived
}

func (handler *TUILogHandler) clone() *TUILogHandler {
	return &TUILogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   append([]slog.Attr(nil), handler.attrs...),
		prefix:  handler.prefix,
	}
}
