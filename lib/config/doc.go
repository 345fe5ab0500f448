// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the changeline
// viewer.
//
// Configuration comes from a single file named by either the
// CHANGELINE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search. Without a file,
// [Load] returns [Default].
//
// The only environment override is CHANGELINE_BASE_PATH, the deployment
// base path relative feed sources resolve against. ${VAR} and
// ${VAR:-default} patterns in the feed source and base path are
// expanded after loading.
//
// Key exports:
//
//   - [Config] -- master struct with Feed, View, and Log sections
//   - [Default] -- returns a Config with the viewer's defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Session] -- converts a Config into a timeline session
//     configuration
package config
