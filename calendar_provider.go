package main

import (
	"time"
)

// CalendarProvider abstracts the destination calendar service. Event listing
// is page-at-a-time so the engines own the pagination loop and can pace
// their requests.
type CalendarProvider interface {
	GetCalendar(calendarID string) error
	ListCalendars() ([]CalendarEntry, error)
	ListEvents(calendarID string, window EventWindow, pageToken string) ([]*RemoteEvent, string, error)
	AddEvent(calendarID string, event *RemoteEvent) (string, error)
	DeleteEvent(calendarID string, eventID string) error
}

// CalendarEntry is one calendar visible to the authenticated account.
type CalendarEntry struct {
	ID      string
	Summary string
}

// EventWindow restricts a listing to [Min, Max). Zero values mean unbounded.
type EventWindow struct {
	Min time.Time
	Max time.Time
}

// RemoteEvent is the provider's copy of an event. The provider owns it; the
// engines only ever read it or ask the provider to create/delete one.
// HasStart is false for entries without a concrete start instant, such as
// all-day events.
type RemoteEvent struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	HasStart    bool
}
