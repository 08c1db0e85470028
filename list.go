package main

import (
	"context"
	"fmt"
	"log"
)

func listCalendars() {
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

	fmt.Println("📋 Calendars available as import destinations:")
	for _, provider := range providers {
		calendars, err := provider.ListCalendars()
		if err != nil {
			log.Printf("❌ Error listing calendars: %v", err)
			continue
		}
		for _, cal := range calendars {
			fmt.Printf("  📅 %s (%s)\n", cal.Summary, cal.ID)
		}
	}
}
