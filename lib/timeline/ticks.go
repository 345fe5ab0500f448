// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"math"
	"time"
)

// DefaultTickCount is the approximate number of axis ticks over the
// visible domain.
const DefaultTickCount = 10

// TickLayout formats axis tick labels as time of day.
const TickLayout = "15:04:05"

// maxTicks bounds TickTimes output whatever the domain.
const maxTicks = 1000

// Tick is one axis tick.
type Tick struct {
	Time  time.Time
	X     float64
	Label string
}

type tickUnit int

const (
	unitSecond tickUnit = iota
	unitMinute
	unitHour
	unitDay
	unitWeek
	unitMonth
	unitYear
)

type tickInterval struct {
	unit tickUnit
	step int
	// approximate duration, used only to choose an interval
	duration time.Duration
}

const (
	durationDay   = 24 * time.Hour
	durationWeek  = 7 * durationDay
	durationMonth = 30 * durationDay
	durationYear  = 365 * durationDay
)

var tickIntervals = []tickInterval{
	{unitSecond, 1, time.Second},
	{unitSecond, 5, 5 * time.Second},
	{unitSecond, 15, 15 * time.Second},
	{unitSecond, 30, 30 * time.Second},
	{unitMinute, 1, time.Minute},
	{unitMinute, 5, 5 * time.Minute},
	{unitMinute, 15, 15 * time.Minute},
	{unitMinute, 30, 30 * time.Minute},
	{unitHour, 1, time.Hour},
	{unitHour, 3, 3 * time.Hour},
	{unitHour, 6, 6 * time.Hour},
	{unitHour, 12, 12 * time.Hour},
	{unitDay, 1, durationDay},
	{unitDay, 2, 2 * durationDay},
	{unitWeek, 1, durationWeek},
	{unitMonth, 1, durationMonth},
	{unitMonth, 3, 3 * durationMonth},
	{unitYear, 1, durationYear},
}

// chooseInterval picks the interval whose duration is closest, by
// ratio, to span/count. Spans longer than the largest interval use a
// nice multiple of years.
func chooseInterval(span time.Duration, count int) tickInterval {
	if count < 1 {
		count = 1
	}
	target := float64(span) / float64(count)

	if target <= float64(tickIntervals[0].duration) {
		return tickIntervals[0]
	}
	for index := 1; index < len(tickIntervals); index++ {
		upper := tickIntervals[index]
		if target > float64(upper.duration) {
			continue
		}
		lower := tickIntervals[index-1]
		if target/float64(lower.duration) < float64(upper.duration)/target {
			return lower
		}
		return upper
	}

	years := target / float64(durationYear)
	step := niceStep(years)
	return tickInterval{unit: unitYear, step: step, duration: time.Duration(step) * durationYear}
}

// niceStep rounds a positive value up to 1, 2, or 5 times a power of ten.
func niceStep(value float64) int {
	if value <= 1 {
		return 1
	}
	power := math.Pow(10, math.Floor(math.Log10(value)))
	fraction := value / power
	var nice float64
	switch {
	case fraction <= 1:
		nice = 1
	case fraction <= 2:
		nice = 2
	case fraction <= 5:
		nice = 5
	default:
		nice = 10
	}
	return int(nice * power)
}

// floor returns the latest interval boundary at or before t, in t's
// location.
func (interval tickInterval) floor(t time.Time) time.Time {
	year, month, day := t.Date()
	location := t.Location()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, location)

	switch interval.unit {
	case unitSecond, unitMinute, unitHour:
		elapsed := t.Sub(midnight)
		return midnight.Add(elapsed - elapsed%interval.duration)
	case unitDay:
		return time.Date(year, month, day-(day-1)%interval.step, 0, 0, 0, 0, location)
	case unitWeek:
		return midnight.AddDate(0, 0, -int(midnight.Weekday()))
	case unitMonth:
		monthIndex := int(month) - 1
		return time.Date(year, time.Month(monthIndex-monthIndex%interval.step+1), 1, 0, 0, 0, 0, location)
	default:
		return time.Date(year-year%interval.step, time.January, 1, 0, 0, 0, 0, location)
	}
}

// next returns the boundary after a boundary t.
func (interval tickInterval) next(t time.Time) time.Time {
	switch interval.unit {
	case unitSecond, unitMinute, unitHour:
		return t.Add(interval.duration)
	case unitDay:
		following := t.AddDate(0, 0, interval.step)
		if following.Month() != t.Month() {
			year, month, _ := t.Date()
			return time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location())
		}
		return following
	case unitWeek:
		return t.AddDate(0, 0, 7)
	case unitMonth:
		return t.AddDate(0, interval.step, 0)
	default:
		return t.AddDate(interval.step, 0, 0)
	}
}

// TickTimes returns tick times at a nice interval inside [start, end],
// aiming for about count ticks. Ticks fall on calendar boundaries in
// start's location.
func TickTimes(start, end time.Time, count int) []time.Time {
	if end.Before(start) {
		start, end = end, start
	}
	interval := chooseInterval(end.Sub(start), count)

	var times []time.Time
	for t := interval.floor(start); !t.After(end) && len(times) < maxTicks; t = interval.next(t) {
		if t.Before(start) {
			continue
		}
		times = append(times, t)
	}
	return times
}
