package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
)

// CalDAVProvider lets the import and wipe flows target a CalDAV server
// instead of Google. Calendar ids are the calendar collection URLs.
type CalDAVProvider struct {
	client    *caldav.Client
	ctx       context.Context
	serverURL string
}

func NewCalDAVProvider(ctx context.Context, serverURL, username, password string) (*CalDAVProvider, error) {
	baseURL, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid CalDAV server URL: %w", err)
	}

	var httpClient webdav.HTTPClient = http.DefaultClient
	if username != "" && password != "" {
		httpClient = webdav.HTTPClientWithBasicAuth(httpClient, username, password)
	}

	c, err := caldav.NewClient(httpClient, baseURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create CalDAV client: %w", err)
	}

	// Test connection
	_, err = c.FindCalendars(ctx, "") // Empty path means server root
	if err != nil {
		return nil, fmt.Errorf("failed to connect to CalDAV server: %w", err)
	}

	return &CalDAVProvider{
		client:    c,
		ctx:       ctx,
		serverURL: serverURL,
	}, nil
}

func (c *CalDAVProvider) GetCalendar(calendarID string) error {
	calURL, err := url.Parse(calendarID)
	if err != nil {
		return fmt.Errorf("invalid calendar URL: %w", err)
	}

	// The calendar home set is usually the parent path
	homeSetPath := "/"
	if calURL.Path != "" {
		parts := strings.Split(strings.TrimRight(calURL.Path, "/"), "/")
		if len(parts) > 1 {
			homeSetPath = "/" + strings.Join(parts[:len(parts)-1], "/")
		}
	}

	calendars, err := c.client.FindCalendars(c.ctx, homeSetPath)
	if err != nil {
		return &ProviderAPIError{Op: "find calendars", Err: err}
	}

	for _, cal := range calendars {
		if cal.Path == calURL.Path {
			return nil
		}
	}

	return fmt.Errorf("calendar not found at path: %s", calURL.Path)
}

func (c *CalDAVProvider) ListCalendars() ([]CalendarEntry, error) {
	calendars, err := c.client.FindCalendars(c.ctx, "")
	if err != nil {
		return nil, &ProviderAPIError{Op: "find calendars", Err: err}
	}

	entries := make([]CalendarEntry, 0, len(calendars))
	for _, cal := range calendars {
		entries = append(entries, CalendarEntry{
			ID:      strings.TrimRight(c.serverURL, "/") + cal.Path,
			Summary: cal.Name,
		})
	}
	return entries, nil
}

// ListEvents queries the calendar collection in one shot; CalDAV has no
// continuation tokens, so the next-page token is always empty.
func (c *CalDAVProvider) ListEvents(calendarID string, window EventWindow, pageToken string) ([]*RemoteEvent, string, error) {
	calURL, err := url.Parse(calendarID)
	if err != nil {
		return nil, "", fmt.Errorf("invalid calendar URL: %w", err)
	}

	compFilter := caldav.CompFilter{Name: "VEVENT"}
	if !window.Min.IsZero() {
		compFilter.Start = window.Min
	}
	if !window.Max.IsZero() {
		compFilter.End = window.Max
	}
	query := &caldav.CalendarQuery{
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{compFilter},
		},
	}

	objects, err := c.client.QueryCalendar(c.ctx, calURL.Path, query)
	if err != nil {
		return nil, "", &ProviderAPIError{Op: "query calendar " + calURL.Path, Err: err}
	}

	var result []*RemoteEvent
	for _, obj := range objects {
		for _, comp := range obj.Data.Component.Children {
			if comp.Name != "VEVENT" {
				continue
			}

			ev := &RemoteEvent{
				ID:          getTextProp(comp.Props, "UID"),
				Summary:     getTextProp(comp.Props, "SUMMARY"),
				Description: getTextProp(comp.Props, "DESCRIPTION"),
			}
			if start, err := comp.Props.DateTime("DTSTART", time.UTC); err == nil && !start.IsZero() {
				ev.Start = start
				ev.HasStart = true
			}
			if end, err := comp.Props.DateTime("DTEND", time.UTC); err == nil {
				ev.End = end
			}
			result = append(result, ev)
		}
	}

	return result, "", nil
}

func (c *CalDAVProvider) AddEvent(calendarID string, event *RemoteEvent) (string, error) {
	calURL, err := url.Parse(calendarID)
	if err != nil {
		return "", fmt.Errorf("invalid calendar URL: %w", err)
	}

	eventUID := fmt.Sprintf("digisync-%d", time.Now().UnixNano())

	icalEvent := ical.NewEvent()
	icalEvent.Component.Props.SetText("UID", eventUID)
	icalEvent.Component.Props.SetText("SUMMARY", event.Summary)
	icalEvent.Component.Props.SetText("DESCRIPTION", event.Description)
	icalEvent.Component.Props.SetDateTime("DTSTART", event.Start)
	icalEvent.Component.Props.SetDateTime("DTEND", event.End)
	icalEvent.Component.Props.SetText("STATUS", "CONFIRMED")

	calendar := ical.NewCalendar()
	calendar.Component.Children = append(calendar.Component.Children, icalEvent.Component)

	path := strings.TrimRight(calURL.Path, "/") + "/" + eventUID + ".ics"

	_, err = c.client.PutCalendarObject(c.ctx, path, calendar)
	if err != nil {
		return "", &ProviderAPIError{Op: "put calendar object", Err: err}
	}

	return eventUID, nil
}

func (c *CalDAVProvider) DeleteEvent(calendarID string, eventID string) error {
	calURL, err := url.Parse(calendarID)
	if err != nil {
		return fmt.Errorf("invalid calendar URL: %w", err)
	}

	// Events are stored as <uid>.ics files inside the collection
	path := strings.TrimRight(calURL.Path, "/") + "/" + eventID + ".ics"

	err = c.client.Client.RemoveAll(c.ctx, path)
	if err != nil {
		return &ProviderAPIError{Op: "delete event " + eventID, Err: err}
	}

	return nil
}

// Helper function to get text property safely
func getTextProp(props ical.Props, name string) string {
	prop := props.Get(name)
	if prop == nil {
		return ""
	}
	return prop.Value
}
