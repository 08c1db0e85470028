package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// CalendarFactory resolves destination providers from the config. A
// destination whose id lies under a configured CalDAV server URL gets the
// CalDAV provider; everything else goes to Google.
type CalendarFactory struct {
	config *Config
	db     *sql.DB
	ctx    context.Context

	caldavs map[string]*CalDAVProvider
	google  *GoogleCalendarProvider
}

func NewCalendarFactory(ctx context.Context, config *Config, db *sql.DB) *CalendarFactory {
	return &CalendarFactory{
		config:  config,
		db:      db,
		ctx:     ctx,
		caldavs: make(map[string]*CalDAVProvider),
	}
}

// ProviderFor picks the provider responsible for calendarID.
func (cf *CalendarFactory) ProviderFor(calendarID string) (CalendarProvider, error) {
	for name, server := range cf.config.CalDAVs {
		if server.ServerURL != "" && strings.HasPrefix(calendarID, server.ServerURL) {
			return cf.caldavProvider(name, server)
		}
	}
	return cf.GoogleProvider()
}

// AllProviders returns the Google provider plus one provider per configured
// CalDAV server, for flows that span every known destination.
func (cf *CalendarFactory) AllProviders() ([]CalendarProvider, error) {
	google, err := cf.GoogleProvider()
	if err != nil {
		return nil, err
	}
	providers := []CalendarProvider{google}

	for name, server := range cf.config.CalDAVs {
		provider, err := cf.caldavProvider(name, server)
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}
	return providers, nil
}

func (cf *CalendarFactory) GoogleProvider() (*GoogleCalendarProvider, error) {
	if cf.google != nil {
		return cf.google, nil
	}
	client := getClient(cf.ctx, oauthConfig, cf.db, cf.config.Google.Account)
	provider, err := NewGoogleCalendarProvider(cf.ctx, client)
	if err != nil {
		return nil, fmt.Errorf("error creating Google calendar provider: %w", err)
	}
	cf.google = provider
	return provider, nil
}

func (cf *CalendarFactory) caldavProvider(name string, server CalDAVConfig) (*CalDAVProvider, error) {
	if provider, ok := cf.caldavs[name]; ok {
		return provider, nil
	}
	provider, err := NewCalDAVProvider(cf.ctx, server.ServerURL, server.Username, server.Password)
	if err != nil {
		return nil, fmt.Errorf("error connecting to CalDAV server %s: %w", name, err)
	}
	cf.caldavs[name] = provider
	return provider, nil
}
