package main

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ClassEvent is one schedule entry from the portal's month calendar,
// normalized from the raw record. Immutable after construction.
type ClassEvent struct {
	Title     string
	Start     time.Time
	ClassName string
	IsLecture bool
}

// lectureClassMarker is the CSS class the portal puts on regular lectures.
const lectureClassMarker = "eventJugyo"

// scheduleWidgetID is the JSF component id of the portal's schedule widget.
// The events endpoint only answers partial-ajax requests addressed to it.
const scheduleWidgetID = "funcForm:j_idt361:content"

const hintBadCredentials = "likely invalid credentials"

type rawClassEvent struct {
	ID        json.Number `json:"id"`
	Title     string      `json:"title"`
	Start     string      `json:"start"`
	ClassName string      `json:"className"`
}

// partialResponse is the XML envelope the portal wraps partial-ajax
// responses in. The events payload is JSON embedded in one of the update
// fragments.
type partialResponse struct {
	XMLName xml.Name        `xml:"partial-response"`
	Updates []partialUpdate `xml:"changes>update"`
}

type partialUpdate struct {
	ID   string `xml:"id,attr"`
	Data string `xml:",chardata"`
}

// FetchMonth retrieves the class events the portal shows for one calendar
// month. The query window is the first through the last day of the month,
// inclusive, encoded as millisecond epochs the way the schedule widget
// sends them.
func (p *PortalClient) FetchMonth(ctx context.Context, year, month int, session *PortalSession) ([]ClassEvent, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month: %d", month)
	}

	body := eventsRequestBody(year, month, session)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.eventsURL, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "application/xml, text/xml, */*; q=0.01")
	req.Header.Set("Faces-Request", "partial/ajax")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Cookie", "JSESSIONID="+session.SessionID)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: p.eventsURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: p.eventsURL, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: p.eventsURL, Err: err}
	}

	return parseClassEvents(raw)
}

func eventsRequestBody(year, month int, s *PortalSession) string {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, portalTZ)
	last := first.AddDate(0, 1, -1)

	form := url.Values{}
	form.Set("javax.faces.partial.ajax", "true")
	form.Set("javax.faces.source", scheduleWidgetID)
	form.Set("javax.faces.partial.execute", scheduleWidgetID)
	form.Set("javax.faces.partial.render", scheduleWidgetID)
	form.Set(scheduleWidgetID, scheduleWidgetID)
	form.Set(scheduleWidgetID+"_start", strconv.FormatInt(first.UnixMilli(), 10))
	form.Set(scheduleWidgetID+"_end", strconv.FormatInt(last.UnixMilli(), 10))
	form.Set(scheduleWidgetID+"_view", "month")
	form.Set("funcForm", "funcForm")
	form.Set("rx-token", s.Token)
	form.Set("rx-loginKey", s.LoginKey)
	form.Set("rx-deviceKbn", "1")
	form.Set("rx-loginType", "Gakuen")
	form.Set("javax.faces.ViewState", s.ViewState)
	return form.Encode()
}

// parseClassEvents unwraps the partial-response envelope, locates the update
// fragment carrying the events payload and decodes it. Any failure is a
// ParseError: the portal degrades to a garbled or missing payload instead of
// an auth-failure status when the session tokens are bad.
func parseClassEvents(body []byte) ([]ClassEvent, error) {
	var envelope partialResponse
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, &ParseError{What: "partial-response envelope", Hint: hintBadCredentials, Err: err}
	}

	var payload string
	for _, update := range envelope.Updates {
		if strings.Contains(update.Data, `"events"`) {
			payload = update.Data
			break
		}
	}
	if payload == "" {
		return nil, &ParseError{What: "events payload fragment", Hint: hintBadCredentials}
	}

	var wrapper struct {
		Events []rawClassEvent `json:"events"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
		return nil, &ParseError{What: "events payload", Hint: hintBadCredentials, Err: err}
	}

	events := make([]ClassEvent, 0, len(wrapper.Events))
	for _, r := range wrapper.Events {
		start, err := parsePortalTime(r.Start)
		if err != nil {
			// One malformed record fails the whole month; nothing is
			// silently dropped.
			return nil, &ParseError{What: fmt.Sprintf("event start %q", r.Start), Err: err}
		}
		events = append(events, ClassEvent{
			Title:     r.Title,
			Start:     start,
			ClassName: r.ClassName,
			IsLecture: strings.Contains(r.ClassName, lectureClassMarker),
		})
	}
	return events, nil
}

func parsePortalTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05-0700", s); err == nil {
		return t, nil
	}
	// Times without an offset are campus local time.
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, portalTZ); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
