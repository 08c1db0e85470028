package main

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateReportsEveryMissingField(t *testing.T) {
	query := ImportQuery{Year: 2024}
	err := query.Validate()
	if err == nil {
		t.Fatal("empty query must not validate")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"range", "calendar", "username", "password"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("error should mention %q: %v", field, err)
		}
	}
}

func TestValidateAcceptsCompleteQuery(t *testing.T) {
	query := ImportQuery{
		Year:       2024,
		Range:      RangeQ1,
		CalendarID: "primary",
		Username:   "student",
		Password:   "secret",
	}
	if err := query.Validate(); err != nil {
		t.Fatalf("complete query rejected: %v", err)
	}
}

func TestLectureEventsOnly(t *testing.T) {
	start := time.Date(2024, time.April, 8, 9, 0, 0, 0, portalTZ)
	events := []ClassEvent{
		{Title: "lecture", Start: start, ClassName: "eventJugyo", IsLecture: true},
		{Title: "club", Start: start, ClassName: "eventOther"},
		{Title: "lecture2", Start: start, ClassName: "eventJugyo fc-event", IsLecture: true},
	}

	kept := lectureEventsOnly(events)
	if len(kept) != 2 {
		t.Fatalf("expected 2 lecture events, got %d", len(kept))
	}
	for _, ev := range kept {
		if !ev.IsLecture {
			t.Fatalf("non-lecture event kept: %q", ev.Title)
		}
	}
}
