// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestScrollThumb(t *testing.T) {
	tests := []struct {
		name                           string
		height, total, visible, offset int
		wantStart, wantSize            int
	}{
		{"fits", 10, 5, 10, 0, 0, 10},
		{"top", 10, 100, 10, 0, 0, 1},
		{"bottom", 10, 100, 10, 90, 9, 1},
		{"half", 10, 20, 10, 5, 2, 5},
		{"offset past end", 10, 20, 10, 50, 5, 5},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			start, size := ScrollThumb(test.height, test.total, test.visible, test.offset)
			if start != test.wantStart || size != test.wantSize {
				t.Errorf("ScrollThumb = (%d, %d), want (%d, %d)", start, size, test.wantStart, test.wantSize)
			}
		})
	}
}

func TestRenderScrollbar(t *testing.T) {
	if RenderScrollbar(DefaultTheme, 0, 10, 5, 0) != "" {
		t.Error("zero height should render nothing")
	}
	bar := ansi.Strip(RenderScrollbar(DefaultTheme, 4, 8, 4, 4))
	if bar != "│\n│\n┃\n┃" {
		t.Errorf("scrollbar = %q", bar)
	}
	full := ansi.Strip(RenderScrollbar(DefaultTheme, 3, 2, 3, 0))
	if strings.Count(full, "┃") != 3 {
		t.Errorf("fitting content should fill the track: %q", full)
	}
}
