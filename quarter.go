package main

import (
	"fmt"
	"time"
)

// ImportRange identifies an academic term on the portal calendar.
type ImportRange string

const (
	RangeQ1   ImportRange = "1q"
	RangeQ2   ImportRange = "2q"
	RangeQ3   ImportRange = "3q"
	RangeQ4   ImportRange = "4q"
	RangeQ1Q2 ImportRange = "1q_and_2q"
	RangeQ3Q4 ImportRange = "3q_and_4q"
)

// portalTZ is the campus time zone. The portal reports all schedule times in it.
var portalTZ = time.FixedZone("JST", 9*60*60)

type monthDay struct {
	month time.Month
	day   int
}

type rangeBounds struct {
	start monthDay
	end   monthDay
}

// Term boundaries on the academic calendar. The fourth quarter and the
// combined second-half range run past December into the next calendar year.
var quarterBounds = map[ImportRange]rangeBounds{
	RangeQ1:   {monthDay{time.April, 1}, monthDay{time.June, 4}},
	RangeQ2:   {monthDay{time.June, 1}, monthDay{time.August, 10}},
	RangeQ3:   {monthDay{time.September, 20}, monthDay{time.November, 30}},
	RangeQ4:   {monthDay{time.November, 20}, monthDay{time.March, 20}},
	RangeQ1Q2: {monthDay{time.April, 1}, monthDay{time.August, 10}},
	RangeQ3Q4: {monthDay{time.September, 20}, monthDay{time.March, 20}},
}

func ParseImportRange(s string) (ImportRange, error) {
	r := ImportRange(s)
	if _, ok := quarterBounds[r]; !ok {
		return "", fmt.Errorf("unknown import range %q", s)
	}
	return r, nil
}

// Months returns the calendar months the range spans, in fetch order,
// first and last month included. Ranges that wrap past December continue
// into the next calendar year.
func (r ImportRange) Months() []time.Month {
	b := quarterBounds[r]
	months := []time.Month{b.start.month}
	for m := b.start.month; m != b.end.month; {
		m = m%12 + 1
		months = append(months, m)
	}
	return months
}

// QuarterWindow bounds one term as two instants.
type QuarterWindow struct {
	Start time.Time
	End   time.Time
}

// Window resolves the range against an academic year. End lands in the
// following calendar year when the range wraps past December.
func (r ImportRange) Window(year int) QuarterWindow {
	b := quarterBounds[r]
	endYear := year
	if b.end.month < b.start.month {
		endYear++
	}
	return QuarterWindow{
		Start: time.Date(year, b.start.month, b.start.day, 0, 0, 0, 0, portalTZ),
		End:   time.Date(endYear, b.end.month, b.end.day, 0, 0, 0, 0, portalTZ),
	}
}

// FilterEvents keeps events whose start lies strictly inside the window.
// An event exactly on either boundary instant is excluded.
func FilterEvents(events []ClassEvent, w QuarterWindow) []ClassEvent {
	kept := make([]ClassEvent, 0, len(events))
	for _, ev := range events {
		if ev.Start.After(w.Start) && ev.Start.Before(w.End) {
			kept = append(kept, ev)
		}
	}
	return kept
}
