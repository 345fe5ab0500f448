// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timelineui

import (
	"fmt"
	"sort"

	"github.com/junegunn/fzf/src/util"

	"github.com/changeline/changeline/lib/changefeed"
	"github.com/changeline/changeline/lib/tui"
)

// maxFinderResults bounds the candidate list shown under the query.
const maxFinderResults = 200

// finderState is the fuzzy event finder: a query line over a picker of
// matching events. Choosing an event centers the view on it.
type finderState struct {
	query  []rune
	picker tui.PickerOverlay
	slab   *util.Slab

	// candidates are the searchable labels, parallel to the feed's
	// events.
	candidates []string
}

func newFinder(events []changefeed.TimedEvent) *finderState {
	finder := &finderState{
		slab:       tui.NewFuzzySlab(),
		candidates: make([]string, len(events)),
	}
	for index, event := range events {
		finder.candidates[index] = finderLabel(event)
	}
	finder.refresh()
	return finder
}

// finderLabel is the text an event is matched and listed by.
func finderLabel(event changefeed.TimedEvent) string {
	return fmt.Sprintf("%s  %s  %s  %s  #%d",
		event.Time.Format("2006-01-02 15:04:05"), event.ChangeType, event.ResourceType, event.ID, event.Seq)
}

// refresh re-runs the match for the current query. Matches are ordered
// by descending score, ties in feed order.
func (finder *finderState) refresh() {
	type match struct {
		index int
		tui.FuzzyResult
	}
	var matches []match
	for index, candidate := range finder.candidates {
		result := tui.FuzzyMatch(candidate, finder.query, finder.slab)
		if result.Matched {
			matches = append(matches, match{index: index, FuzzyResult: result})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxFinderResults {
		matches = matches[:maxFinderResults]
	}

	items := make([]tui.PickerItem, len(matches))
	for position, match := range matches {
		items[position] = tui.PickerItem{
			Label:     finder.candidates[match.index],
			Value:     match.index,
			Positions: match.Positions,
		}
	}
	finder.picker.SetItems(items)
}

func (finder *finderState) insert(runes []rune) {
	finder.query = append(finder.query, runes...)
	finder.refresh()
}

// backspace removes the last query rune. It reports whether anything
// was removed.
func (finder *finderState) backspace() bool {
	if len(finder.query) == 0 {
		return false
	}
	finder.query = finder.query[:len(finder.query)-1]
	finder.refresh()
	return true
}

// selected returns the event index under the picker cursor.
func (finder *finderState) selected() (int, bool) {
	item, ok := finder.picker.Selected()
	if !ok {
		return -1, false
	}
	return item.Value, true
}
