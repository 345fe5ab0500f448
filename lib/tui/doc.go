// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the terminal building blocks for Changeline's
// interactive viewer: the color theme, ANSI-aware overlay splicing,
// color blending for fades and glows, fuzzy matching, list pickers,
// and scrollbars. Built on lipgloss and the charmbracelet ansi
// helpers; the viewer itself lives in lib/timelineui and owns layout
// and event handling.
package tui
