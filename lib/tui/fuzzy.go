// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"sort"
	"strings"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult is the outcome of matching one candidate against a
// pattern. Positions are rune offsets of the matched characters in
// ascending order.
type FuzzyResult struct {
	Matched   bool
	Score     int
	Positions []int
}

// NewFuzzySlab allocates the scratch space fzf reuses across matches.
// A slab is not safe for concurrent use.
func NewFuzzySlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyMatch matches text against pattern with fzf's V2 algorithm.
// Matching is case-insensitive unless the pattern contains an upper
// case rune (fzf's smart-case). An empty pattern matches everything
// with score zero.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}
	caseSensitive := false
	for _, r := range pattern {
		if unicode.IsUpper(r) {
			caseSensitive = true
			break
		}
	}
	if !caseSensitive {
		pattern = []rune(strings.ToLower(string(pattern)))
	}

	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(caseSensitive, true, true, &chars, pattern, true, slab)
	if result.Start < 0 {
		return FuzzyResult{}
	}

	match := FuzzyResult{Matched: true, Score: result.Score}
	if positions != nil {
		match.Positions = append([]int(nil), (*positions)...)
		sort.Ints(match.Positions)
	}
	return match
}
