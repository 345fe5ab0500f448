// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports which build of changeline is running.
//
// Release builds stamp [GitCommit], [GitDirty], [BuildTime], and
// [Version] with -ldflags -X:
//
//	go build -ldflags "-X github.com/changeline/changeline/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Builds that were not stamped (go install, go run) fall back to the
// VCS settings the Go toolchain embeds in the binary.
package version
