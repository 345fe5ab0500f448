// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"math"
	"time"

	"github.com/changeline/changeline/lib/changefeed"
)

const tolerance = 1e-6

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// testEvent builds a timed event from a compact feed timestamp.
func testEvent(changeType, date string, seq int64) changefeed.TimedEvent {
	parsed, err := time.ParseInLocation(changefeed.DateLayout, date, time.UTC)
	if err != nil {
		panic(err)
	}
	return changefeed.TimedEvent{
		Event: changefeed.Event{
			ID:           "0123456789abcdef0123-" + changeType,
			ChangeType:   changeType,
			ResourceType: resourceFor(changeType),
			Path:         "/" + changeType,
			Seq:          seq,
			Date:         date,
		},
		Time: parsed,
	}
}

func resourceFor(changeType string) string {
	for _, suffix := range []string{"Patient", "Study", "Series", "Instance"} {
		if len(changeType) >= len(suffix) && changeType[len(changeType)-len(suffix):] == suffix {
			return suffix
		}
	}
	return "Resource"
}

// scenarioEvents is the two-event feed used across tests.
func scenarioEvents() []changefeed.TimedEvent {
	return []changefeed.TimedEvent{
		testEvent("NewPatient", "20240101T080000", 1),
		testEvent("NewSeries", "20240101T090000", 2),
	}
}

// mixedEvents spans several categories with repeats.
func mixedEvents() []changefeed.TimedEvent {
	return []changefeed.TimedEvent{
		testEvent("NewPatient", "20240101T080000", 1),
		testEvent("NewStudy", "20240101T080500", 2),
		testEvent("NewSeries", "20240101T081000", 3),
		testEvent("NewInstance", "20240101T081030", 4),
		testEvent("NewInstance", "20240101T081100", 5),
		testEvent("StableSeries", "20240101T083000", 6),
		testEvent("NewPatient", "20240101T090000", 7),
	}
}
