// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the error taxonomy of the changeline command.
//
// Commands return [*ToolError] values built with [Validation],
// [NotFound], [Transient], or [Internal]. main prints the message (and
// hint) and exits with [ToolError.ExitCode].
package cli
