package main

import (
	"errors"
	"fmt"
	"time"
)

// fakeProvider scripts CalendarProvider behavior for engine tests. Event
// pages are keyed by calendar id; page tokens are "p1", "p2", ...
type fakeProvider struct {
	calendars    []CalendarEntry
	calendarsErr error

	pages   map[string][][]*RemoteEvent
	listErr map[string]error

	added        []*RemoteEvent
	failAddAfter int // AddEvent fails once this many succeeded; -1 disables

	deleted     []string
	deleteTimes []time.Time
	failDelete  map[string]bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		pages:        make(map[string][][]*RemoteEvent),
		listErr:      make(map[string]error),
		failAddAfter: -1,
		failDelete:   make(map[string]bool),
	}
}

func (f *fakeProvider) GetCalendar(string) error { return nil }

func (f *fakeProvider) ListCalendars() ([]CalendarEntry, error) {
	if f.calendarsErr != nil {
		return nil, f.calendarsErr
	}
	return f.calendars, nil
}

func (f *fakeProvider) ListEvents(calendarID string, _ EventWindow, pageToken string) ([]*RemoteEvent, string, error) {
	if err := f.listErr[calendarID]; err != nil {
		return nil, "", err
	}
	pages := f.pages[calendarID]
	idx := 0
	if pageToken != "" {
		fmt.Sscanf(pageToken, "p%d", &idx)
	}
	if idx >= len(pages) {
		return nil, "", nil
	}
	next := ""
	if idx+1 < len(pages) {
		next = fmt.Sprintf("p%d", idx+1)
	}
	return pages[idx], next, nil
}

func (f *fakeProvider) AddEvent(calendarID string, event *RemoteEvent) (string, error) {
	if f.failAddAfter >= 0 && len(f.added) >= f.failAddAfter {
		return "", errors.New("insert rejected")
	}
	f.added = append(f.added, event)
	return fmt.Sprintf("ev%d", len(f.added)), nil
}

func (f *fakeProvider) DeleteEvent(calendarID, eventID string) error {
	f.deleteTimes = append(f.deleteTimes, time.Now())
	if f.failDelete[eventID] {
		return errors.New("delete rejected")
	}
	f.deleted = append(f.deleted, eventID)
	return nil
}
