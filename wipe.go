// wipe.go
package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// wipePace is the delay between consecutive delete calls, to stay under the
// provider's per-second rate limit. It also runs after the last delete;
// that inefficiency is accepted.
const wipePace = 250 * time.Millisecond

// WipeEngine finds and removes every event this tool previously created.
// Planning and execution are separate so the operator always sees the exact
// count before anything is deleted.
type WipeEngine struct {
	providers []CalendarProvider
	pace      time.Duration
}

func NewWipeEngine(providers ...CalendarProvider) *WipeEngine {
	return &WipeEngine{providers: providers, pace: wipePace}
}

// WipeTarget identifies one event to delete.
type WipeTarget struct {
	provider   CalendarProvider
	CalendarID string
	EventID    string
	Summary    string
}

// WipePlan is the explicit result of the plan phase, threaded into
// ExecuteWipe by the caller.
type WipePlan struct {
	Targets []WipeTarget
}

func (p *WipePlan) Count() int { return len(p.Targets) }

// PlanWipe enumerates every event carrying eventMarker across all calendars
// of all providers. A calendar that cannot be listed is skipped, so one
// broken calendar does not block wiping the rest.
func (w *WipeEngine) PlanWipe() (*WipePlan, error) {
	plan := &WipePlan{}
	for _, provider := range w.providers {
		calendars, err := provider.ListCalendars()
		if err != nil {
			printVerbosely(1, "  ⚠️ Could not list calendars, skipping provider: %v\n", err)
			continue
		}
		for _, cal := range calendars {
			targets, err := w.collectTargets(provider, cal.ID)
			if err != nil {
				printVerbosely(1, "  ⚠️ Could not list events in %s, skipping: %v\n", cal.ID, err)
				continue
			}
			plan.Targets = append(plan.Targets, targets...)
		}
	}
	return plan, nil
}

func (w *WipeEngine) collectTargets(provider CalendarProvider, calendarID string) ([]WipeTarget, error) {
	var targets []WipeTarget
	pageToken := ""
	for {
		events, next, err := provider.ListEvents(calendarID, EventWindow{}, pageToken)
		if err != nil {
			return nil, err
		}
		for _, event := range events {
			if strings.Contains(event.Description, eventMarker) {
				targets = append(targets, WipeTarget{
					provider:   provider,
					CalendarID: calendarID,
					EventID:    event.ID,
					Summary:    event.Summary,
				})
			}
		}
		if next == "" {
			break
		}
		pageToken = next
	}
	return targets, nil
}

// ExecuteWipe deletes every planned target one at a time, pausing between
// deletes. A failed delete is recorded and the wipe keeps going; all
// failures are reported together at the end. onProgress counts successful
// deletes only.
func (w *WipeEngine) ExecuteWipe(plan *WipePlan, onProgress func(deleted, total int)) error {
	total := plan.Count()
	deleted := 0
	var failed []string
	for _, target := range plan.Targets {
		if err := target.provider.DeleteEvent(target.CalendarID, target.EventID); err != nil {
			printVerbosely(1, "  ❌ Could not delete %s (%s): %v\n", target.Summary, target.EventID, err)
			failed = append(failed, target.EventID)
		} else {
			deleted++
			if onProgress != nil {
				onProgress(deleted, total)
			}
		}
		time.Sleep(w.pace)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d events could not be deleted: %s", len(failed), total, strings.Join(failed, ", "))
	}
	return nil
}

func wipeCalendars() {
	config, err := readConfig(".digisync.toml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	db, err := openDB(".digisync.db")
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	factory := NewCalendarFactory(ctx, config, db)
	providers, err := factory.AllProviders()
	if err != nil {
		log.Fatalf("Error initializing calendar providers: %v", err)
	}

	fmt.Println("🔍 Searching all calendars for imported events (this can take a while)...")
	engine := NewWipeEngine(providers...)
	plan, err := engine.PlanWipe()
	if err != nil {
		log.Fatalf("Error planning wipe: %v", err)
	}

	if plan.Count() == 0 {
		fmt.Println("✨ No imported events found")
		return
	}

	fmt.Printf("⚠️  %d imported events will be deleted. Continue? (y/N): ", plan.Count())
	var confirmation string
	fmt.Scanln(&confirmation)
	if confirmation != "y" && confirmation != "Y" {
		fmt.Println("❌ Wipe cancelled")
		return
	}

	err = engine.ExecuteWipe(plan, func(deleted, total int) {
		fmt.Printf("  🗑 Deleted %d/%d\n", deleted, total)
	})
	if err != nil {
		log.Fatalf("Error wiping events: %v", err)
	}
	fmt.Println("✅ All imported events deleted")
}
