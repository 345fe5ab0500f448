// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
)

const unknown = "unknown"

// Stamped via -ldflags -X.
var (
	GitCommit = unknown
	GitDirty  = "false"
	BuildTime = unknown
	Version   = "0.1.0-dev"
)

// shortCommitLength matches git rev-parse --short.
const shortCommitLength = 7

// Info returns "version (commit[-dirty], build time)".
func Info() string {
	commit, dirty, built := GitCommit, GitDirty == "true", BuildTime
	if commit == unknown {
		commit, dirty, built = fromBuildInfo(built)
	}
	suffix := ""
	if dirty {
		suffix = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, commit, suffix, built)
}

// fromBuildInfo reads the toolchain's vcs.* settings. Missing values
// stay unknown.
func fromBuildInfo(built string) (commit string, dirty bool, buildTime string) {
	commit, buildTime = unknown, built
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, false, buildTime
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			commit = setting.Value
			if len(commit) > shortCommitLength {
				commit = commit[:shortCommitLength]
			}
		case "vcs.modified":
			dirty = setting.Value == "true"
		case "vcs.time":
			if buildTime == unknown {
				buildTime = setting.Value
			}
		}
	}
	return commit, dirty, buildTime
}

// Full adds the Go toolchain and platform to Info.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Print writes the version line for binary to stdout.
func Print(binary string) {
	Fprint(os.Stdout, binary)
}

// Fprint writes "binary Full()" to w.
func Fprint(w io.Writer, binary string) {
	fmt.Fprintf(w, "%s %s\n", binary, Full())
}
