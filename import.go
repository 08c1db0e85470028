// import.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/term"
)

// ImportQuery is everything the import command needs, validated before any
// network call is made.
type ImportQuery struct {
	Year       int
	Range      ImportRange
	CalendarID string
	Username   string
	Password   string
	IncludeAll bool // keep non-lecture portal events too
}

// Validate reports every missing required field. Nothing touches the
// network until this passes.
func (q *ImportQuery) Validate() error {
	var errs []error
	if q.Range == "" {
		errs = append(errs, &ValidationError{Field: "range", Message: "import range is not specified"})
	}
	if q.CalendarID == "" {
		errs = append(errs, &ValidationError{Field: "calendar", Message: "destination calendar is not specified"})
	}
	if q.Username == "" {
		errs = append(errs, &ValidationError{Field: "username", Message: "portal user ID is required"})
	}
	if q.Password == "" {
		errs = append(errs, &ValidationError{Field: "password", Message: "portal password is required"})
	}
	if q.Year <= 0 {
		errs = append(errs, &ValidationError{Field: "year", Message: "academic year must be positive"})
	}
	return errors.Join(errs...)
}

func importSchedule(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	year := fs.Int("year", time.Now().Year(), "academic year to import")
	rangeStr := fs.String("range", "", "import range (1q, 2q, 3q, 4q, 1q_and_2q, 3q_and_4q)")
	calendarID := fs.String("calendar", "", "destination calendar ID or CalDAV calendar URL")
	username := fs.String("username", "", "portal user ID")
	password := fs.String("password", "", "portal password (prompted when omitted)")
	includeAll := fs.Bool("all", false, "import non-lecture portal events too")
	fs.Parse(args)

	config, err := readConfig(".digisync.toml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	if *password == "" && *username != "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("🔑 Portal password: ")
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			log.Fatalf("Error reading password: %v", err)
		}
		*password = string(secret)
	}

	query := ImportQuery{
		Year:       *year,
		CalendarID: *calendarID,
		Username:   *username,
		Password:   *password,
		IncludeAll: *includeAll,
	}
	if *rangeStr != "" {
		importRange, err := ParseImportRange(*rangeStr)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		query.Range = importRange
	}
	if err := query.Validate(); err != nil {
		log.Fatalf("Error: invalid import parameters:\n%v", err)
	}

	db, err := openDB(".digisync.db")
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	factory := NewCalendarFactory(ctx, config, db)
	provider, err := factory.ProviderFor(query.CalendarID)
	if err != nil {
		log.Fatalf("Error initializing calendar provider: %v", err)
	}
	if err := provider.GetCalendar(query.CalendarID); err != nil {
		log.Fatalf("Error accessing destination calendar: %v", err)
	}

	portal := NewPortalClient(config.Portal)
	fmt.Println("🔐 Logging in to the portal...")
	session, err := portal.Login(ctx, query.Username, query.Password)
	if err != nil {
		log.Fatalf("Error logging in to portal: %v", err)
	}

	fmt.Println("📥 Fetching class schedule from the portal...")
	events, err := fetchQuarterEvents(ctx, portal, session, query.Year, query.Range)
	if err != nil {
		log.Fatalf("Error fetching class events: %v", err)
	}

	if !query.IncludeAll {
		events = lectureEventsOnly(events)
	}
	window := query.Range.Window(query.Year)
	events = FilterEvents(events, window)

	fmt.Printf("📚 %d class events to import\n", len(events))
	engine := NewSyncEngine(provider)
	err = engine.Sync(events, query.CalendarID, window, func(posted, total int) {
		fmt.Printf("  ➕ Imported %d/%d\n", posted, total)
	})
	if err != nil {
		log.Fatalf("Error importing events: %v", err)
	}
	fmt.Println("✅ Schedule imported successfully!")
}

// fetchQuarterEvents walks the range's months in order, rolling into the
// next calendar year when the term wraps past December. Months are fetched
// one at a time: the portal session is stateful and does not tolerate
// parallel requests. The first failing month aborts the whole import.
func fetchQuarterEvents(ctx context.Context, portal *PortalClient, session *PortalSession, year int, r ImportRange) ([]ClassEvent, error) {
	var all []ClassEvent
	fetchYear := year
	prev := time.Month(0)
	for _, month := range r.Months() {
		if month < prev {
			fetchYear++
		}
		events, err := portal.FetchMonth(ctx, fetchYear, int(month), session)
		if err != nil {
			return nil, fmt.Errorf("fetching %d-%02d: %w", fetchYear, int(month), err)
		}
		printVerbosely(2, "  📆 %d-%02d: %d events\n", fetchYear, int(month), len(events))
		all = append(all, events...)
		prev = month
	}
	return all, nil
}

func lectureEventsOnly(events []ClassEvent) []ClassEvent {
	kept := make([]ClassEvent, 0, len(events))
	for _, ev := range events {
		if ev.IsLecture {
			kept = append(kept, ev)
		}
	}
	return kept
}
