package main

import "fmt"

// AuthError means the portal rejected the login request itself.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "portal login failed: " + e.Reason
}

// FetchError is a failed HTTP exchange: transport error or non-success status.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s returned status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means an expected payload or token was missing or undecodable.
// The portal signals bad credentials by serving a garbled or empty payload
// instead of an error status, so Hint usually points there.
type ParseError struct {
	What string
	Hint string
	Err  error
}

func (e *ParseError) Error() string {
	msg := "could not parse " + e.What
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProviderAPIError wraps an error envelope from the destination calendar service.
type ProviderAPIError struct {
	Op  string
	Err error
}

func (e *ProviderAPIError) Error() string {
	return fmt.Sprintf("calendar provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderAPIError) Unwrap() error { return e.Err }

// ValidationError is a missing or malformed required input, reported before
// any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
