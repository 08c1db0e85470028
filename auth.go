package main

import (
	"context"
	"fmt"
	"log"
)

// authorizeAccount runs the out-of-band oauth flow for the Google account
// and stores the token, so import and wipe can run unattended afterwards.
func authorizeAccount() {
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
	client := getClient(ctx, oauthConfig, db, config.Google.Account)

	provider, err := NewGoogleCalendarProvider(ctx, client)
	if err != nil {
		log.Fatalf("Error creating calendar client: %v", err)
	}
	calendars, err := provider.ListCalendars()
	if err != nil {
		log.Fatalf("Error listing calendars: %v", err)
	}

	fmt.Printf("✅ Google account %s authorized, %d calendars visible\n", config.Google.Account, len(calendars))
}
