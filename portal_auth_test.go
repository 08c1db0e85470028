package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const loginPageFixture = `<html><body><form id="loginForm">
<input type="hidden" name="rx-token" value="tok123"/>
<input type="hidden" name="rx-loginKey" value="key456"/>
<input type="text" name="loginForm:userId" value=""/>
<input type="hidden" name="javax.faces.ViewState" value="vs789"/>
</form></body></html>`

func TestLoginExtractsSessionTokens(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("server could not parse form: %v", err)
		}
		gotForm = r.PostForm
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123", Path: "/", HttpOnly: true})
		w.Write([]byte(loginPageFixture))
	}))
	defer srv.Close()

	portal := NewPortalClient(PortalConfig{LoginURL: srv.URL, EventsURL: srv.URL})
	session, err := portal.Login(context.Background(), "student", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if session.SessionID != "abc123" {
		t.Fatalf("unexpected session id: %q", session.SessionID)
	}
	if session.Token != "tok123" {
		t.Fatalf("unexpected rx-token: %q", session.Token)
	}
	if session.LoginKey != "key456" {
		t.Fatalf("unexpected rx-loginKey: %q", session.LoginKey)
	}
	if session.ViewState != "vs789" {
		t.Fatalf("unexpected view state: %q", session.ViewState)
	}

	if got := gotForm["loginForm:userId"]; len(got) != 1 || got[0] != "student" {
		t.Fatalf("unexpected userId field: %v", got)
	}
	if got := gotForm["javax.faces.ViewState"]; len(got) != 1 || got[0] != "stateless" {
		t.Fatalf("login must send the stateless view state, got %v", got)
	}
}

func TestLoginRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	portal := NewPortalClient(PortalConfig{LoginURL: srv.URL, EventsURL: srv.URL})
	_, err := portal.Login(context.Background(), "student", "secret")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestLoginMissingTokensDoesNotFailEagerly(t *testing.T) {
	// On bad credentials the portal serves the login page again with a 200
	// and no token fields; the failure only surfaces on the events request.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><form></form></body></html>"))
	}))
	defer srv.Close()

	portal := NewPortalClient(PortalConfig{LoginURL: srv.URL, EventsURL: srv.URL})
	session, err := portal.Login(context.Background(), "student", "wrong")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.Token != "" || session.LoginKey != "" || session.ViewState != "" || session.SessionID != "" {
		t.Fatalf("expected empty session fields, got %+v", session)
	}
}
