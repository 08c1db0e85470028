// sync.go
package main

import (
	"fmt"
	"time"
)

// eventMarker tags the description of every event this tool creates, so a
// later wipe can find exactly them and nothing else.
const eventMarker = "#created_by_dp2gc"

// classEventDuration is the slot length posted for each class; the portal
// only reports start instants.
const classEventDuration = time.Hour

// SyncEngine reconciles fetched class events against a destination calendar
// and posts whatever is not there yet. Posts go out one at a time: the
// provider rate limit does not tolerate bursts.
type SyncEngine struct {
	provider CalendarProvider
}

func NewSyncEngine(provider CalendarProvider) *SyncEngine {
	return &SyncEngine{provider: provider}
}

// Sync posts classEvents to calendarID, skipping events already present
// remotely. Events are posted in source order. onProgress is called after
// every successful post; the first failed post stops the loop and is
// returned, with everything already posted left in place.
func (s *SyncEngine) Sync(classEvents []ClassEvent, calendarID string, window QuarterWindow, onProgress func(posted, total int)) error {
	existing, err := s.listExisting(calendarID, window)
	if err != nil {
		// Duplicate detection is best effort: without the remote listing we
		// import everything rather than fail the run.
		printVerbosely(1, "  ⚠️ Could not list existing events, duplicates may be created: %v\n", err)
		existing = nil
	}

	toPost := make([]ClassEvent, 0, len(classEvents))
	for _, ev := range classEvents {
		if isDuplicate(existing, ev) {
			printVerbosely(2, "  ⏭ Already imported, skipping: %s\n", ev.Title)
			continue
		}
		toPost = append(toPost, ev)
	}

	total := len(toPost)
	for i, ev := range toPost {
		remote := &RemoteEvent{
			Summary:     ev.Title,
			Description: eventMarker,
			Start:       ev.Start,
			End:         ev.Start.Add(classEventDuration),
		}
		if _, err := s.provider.AddEvent(calendarID, remote); err != nil {
			return fmt.Errorf("posting event %q: %w", ev.Title, err)
		}
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}
	return nil
}

func (s *SyncEngine) listExisting(calendarID string, w QuarterWindow) ([]*RemoteEvent, error) {
	var all []*RemoteEvent
	pageToken := ""
	for {
		events, next, err := s.provider.ListEvents(calendarID, EventWindow{Min: w.Start, Max: w.End}, pageToken)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
		if next == "" {
			break
		}
		pageToken = next
	}
	return all, nil
}

// isDuplicate reports whether ev is already stored remotely. Matching is on
// title plus absolute start instant, so differing time zone spellings of the
// same moment still match. Remote entries without a concrete start instant
// (all-day events) never match.
func isDuplicate(existing []*RemoteEvent, ev ClassEvent) bool {
	for _, remote := range existing {
		if !remote.HasStart {
			continue
		}
		if remote.Summary == ev.Title && remote.Start.Equal(ev.Start) {
			return true
		}
	}
	return false
}
