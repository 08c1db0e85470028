package main

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPlanWipeKeepsOnlyMarkedEvents(t *testing.T) {
	provider := newFakeProvider()
	provider.calendars = []CalendarEntry{
		{ID: "calA", Summary: "School"},
		{ID: "calB", Summary: "Broken"},
	}
	provider.pages["calA"] = [][]*RemoteEvent{
		{
			{ID: "e1", Summary: "数学", Description: eventMarker},
			{ID: "e2", Summary: "private", Description: "my own note"},
		},
		{
			{ID: "e3", Summary: "英語", Description: "imported " + eventMarker},
			{ID: "e4", Summary: "物理", Description: eventMarker},
		},
	}
	provider.listErr["calB"] = errors.New("listing broken")

	engine := NewWipeEngine(provider)
	plan, err := engine.PlanWipe()
	if err != nil {
		t.Fatalf("PlanWipe returned error: %v", err)
	}

	// calB fails but must not fail the whole plan.
	if plan.Count() != 3 {
		t.Fatalf("expected 3 targets, got %d", plan.Count())
	}
	for _, target := range plan.Targets {
		if target.EventID == "e2" {
			t.Fatal("unmarked event planned for deletion")
		}
	}
}

func TestPlanWipeSkipsProviderWithoutCalendarList(t *testing.T) {
	broken := newFakeProvider()
	broken.calendarsErr = errors.New("no calendar list")

	healthy := newFakeProvider()
	healthy.calendars = []CalendarEntry{{ID: "cal", Summary: "School"}}
	healthy.pages["cal"] = [][]*RemoteEvent{{
		{ID: "e1", Summary: "数学", Description: eventMarker},
	}}

	engine := NewWipeEngine(broken, healthy)
	plan, err := engine.PlanWipe()
	if err != nil {
		t.Fatalf("PlanWipe returned error: %v", err)
	}
	if plan.Count() != 1 {
		t.Fatalf("expected 1 target from the healthy provider, got %d", plan.Count())
	}
}

func TestExecuteWipePacing(t *testing.T) {
	provider := newFakeProvider()
	engine := &WipeEngine{pace: 20 * time.Millisecond}
	plan := &WipePlan{}
	for _, id := range []string{"e1", "e2", "e3", "e4"} {
		plan.Targets = append(plan.Targets, WipeTarget{provider: provider, CalendarID: "cal", EventID: id})
	}

	var lastDeleted, lastTotal int
	err := engine.ExecuteWipe(plan, func(deleted, total int) {
		lastDeleted, lastTotal = deleted, total
	})
	if err != nil {
		t.Fatalf("ExecuteWipe returned error: %v", err)
	}

	if len(provider.deleteTimes) != 4 {
		t.Fatalf("expected 4 delete calls, got %d", len(provider.deleteTimes))
	}
	for i := 1; i < len(provider.deleteTimes); i++ {
		if gap := provider.deleteTimes[i].Sub(provider.deleteTimes[i-1]); gap < engine.pace {
			t.Fatalf("delete %d followed after only %v", i, gap)
		}
	}
	if lastDeleted != 4 || lastTotal != 4 {
		t.Fatalf("unexpected final progress: %d/%d", lastDeleted, lastTotal)
	}
}

func TestExecuteWipeContinuesOnError(t *testing.T) {
	provider := newFakeProvider()
	provider.failDelete["e2"] = true

	engine := &WipeEngine{pace: time.Millisecond}
	plan := &WipePlan{}
	for _, id := range []string{"e1", "e2", "e3"} {
		plan.Targets = append(plan.Targets, WipeTarget{provider: provider, CalendarID: "cal", EventID: id})
	}

	var lastDeleted int
	err := engine.ExecuteWipe(plan, func(deleted, total int) {
		lastDeleted = deleted
	})
	if err == nil {
		t.Fatal("expected an error reporting the failed delete")
	}
	if !strings.Contains(err.Error(), "1 of 3") {
		t.Fatalf("error should summarize failures: %v", err)
	}

	// All three targets were attempted, only the successes counted.
	if len(provider.deleteTimes) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(provider.deleteTimes))
	}
	if len(provider.deleted) != 2 || lastDeleted != 2 {
		t.Fatalf("expected 2 successful deletes, got %d (progress %d)", len(provider.deleted), lastDeleted)
	}
}
