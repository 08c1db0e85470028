package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type GoogleCalendarProvider struct {
	service *calendar.Service
	ctx     context.Context
}

func NewGoogleCalendarProvider(ctx context.Context, client *http.Client) (*GoogleCalendarProvider, error) {
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleCalendarProvider{
		service: service,
		ctx:     ctx,
	}, nil
}

func (g *GoogleCalendarProvider) GetCalendar(calendarID string) error {
	_, err := g.service.CalendarList.Get(calendarID).Do()
	if err != nil {
		return &ProviderAPIError{Op: "get calendar " + calendarID, Err: err}
	}
	return nil
}

func (g *GoogleCalendarProvider) ListCalendars() ([]CalendarEntry, error) {
	var entries []CalendarEntry
	pageToken := ""
	for {
		call := g.service.CalendarList.List()
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, &ProviderAPIError{Op: "list calendars", Err: err}
		}
		for _, item := range list.Items {
			entries = append(entries, CalendarEntry{ID: item.Id, Summary: item.Summary})
		}
		pageToken = list.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return entries, nil
}

// ListEvents returns one page of events plus the token for the next page,
// empty when the listing is exhausted.
func (g *GoogleCalendarProvider) ListEvents(calendarID string, window EventWindow, pageToken string) ([]*RemoteEvent, string, error) {
	call := g.service.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(2000)
	if !window.Min.IsZero() {
		call = call.TimeMin(window.Min.Format(time.RFC3339))
	}
	if !window.Max.IsZero() {
		call = call.TimeMax(window.Max.Format(time.RFC3339))
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	events, err := call.Do()
	if err != nil {
		return nil, "", &ProviderAPIError{Op: "list events in " + calendarID, Err: err}
	}

	result := make([]*RemoteEvent, 0, len(events.Items))
	for _, item := range events.Items {
		result = append(result, remoteEventFromGoogle(item))
	}
	return result, events.NextPageToken, nil
}

func (g *GoogleCalendarProvider) AddEvent(calendarID string, event *RemoteEvent) (string, error) {
	googleEvent := &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &calendar.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
		},
	}

	createdEvent, err := g.service.Events.Insert(calendarID, googleEvent).Do()
	if err != nil {
		return "", &ProviderAPIError{Op: "insert event", Err: err}
	}

	return createdEvent.Id, nil
}

func (g *GoogleCalendarProvider) DeleteEvent(calendarID string, eventID string) error {
	err := g.service.Events.Delete(calendarID, eventID).Do()
	if err != nil {
		return &ProviderAPIError{Op: "delete event " + eventID, Err: err}
	}
	return nil
}

func remoteEventFromGoogle(item *calendar.Event) *RemoteEvent {
	ev := &RemoteEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
	}
	// All-day events carry a date, not a dateTime; they keep HasStart false
	// so duplicate detection never matches them.
	if item.Start != nil && item.Start.DateTime != "" {
		if start, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
			ev.Start = start
			ev.HasStart = true
		}
	}
	if item.End != nil && item.End.DateTime != "" {
		if end, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
			ev.End = end
		}
	}
	return ev
}
