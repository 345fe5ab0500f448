// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"time"
)

// DateLayout is the compact timestamp format used by change feeds
// (YYYYMMDDTHHMMSS).
const DateLayout = "20060102T150405"

// DefaultField is the name of the list field holding the events.
const DefaultField = "Changes"

// Event is one raw change record as it appears in the feed. The JSON
// tags name the fields in both JSON and CBOR documents.
type Event struct {
	ID           string `json:"ID"`
	ChangeType   string `json:"ChangeType"`
	ResourceType string `json:"ResourceType"`
	Path         string `json:"Path"`
	Seq          int64  `json:"Seq"`
	Date         string `json:"Date"`
}

// TimedEvent is an Event whose Date parsed successfully.
type TimedEvent struct {
	Event

	// Time is Date parsed with DateLayout in the loader's location.
	Time time.Time
}

// Feed is the result of one successful load.
type Feed struct {
	// Events are the parseable events in feed order.
	Events []TimedEvent

	// Dropped counts events excluded because their Date did not parse.
	Dropped int

	// Digest is the hex BLAKE3-256 digest of the decoded document.
	Digest string

	// Source is the resolved file path or URL the feed came from.
	Source string

	// LoadedAt is when the load completed.
	LoadedAt time.Time
}

// ParseEvents converts raw events into timed events, keeping feed order.
// Events whose Date does not match layout are skipped and counted.
func ParseEvents(raw []Event, layout string, location *time.Location) ([]TimedEvent, int) {
	if location == nil {
		location = time.UTC
	}
	if layout == "" {
		layout = DateLayout
	}

	events := make([]TimedEvent, 0, len(raw))
	dropped := 0
	for _, event := range raw {
		parsed, err := time.ParseInLocation(layout, event.Date, location)
		if err != nil {
			dropped++
			continue
		}
		events = append(events, TimedEvent{Event: event, Time: parsed})
	}
	return events, dropped
}
