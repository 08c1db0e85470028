package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// PortalSession carries the identifiers the portal hands out at login.
// It is created once per run and reused by every events request; nothing
// here is persisted.
type PortalSession struct {
	SessionID string // JSESSIONID cookie value
	LoginKey  string // rx-loginKey hidden field
	Token     string // rx-token hidden field
	ViewState string // javax.faces.ViewState hidden field
}

// PortalClient talks to the university portal. The portal is a stateful
// JSF application: requests must be issued one at a time on a session.
type PortalClient struct {
	loginURL  string
	eventsURL string
	client    *http.Client
}

func NewPortalClient(cfg PortalConfig) *PortalClient {
	return &PortalClient{
		loginURL:  cfg.LoginURL,
		eventsURL: cfg.EventsURL,
		client:    http.DefaultClient,
	}
}

var jsessionIDRe = regexp.MustCompile(`JSESSIONID=([^;]+)`)

// Login submits the credential form and extracts the session cookie plus the
// anti-forgery tokens from the returned page. Missing tokens do not fail the
// login: on bad credentials the portal serves the login page again with a
// success status, and the garbled payload only shows up on the first events
// request, which reports it as a parse error.
func (p *PortalClient) Login(ctx context.Context, username, password string) (*PortalSession, error) {
	form := url.Values{}
	form.Set("loginForm", "loginForm")
	form.Set("loginForm:userId", username)
	form.Set("loginForm:password", password)
	form.Set("loginForm:loginButton", "")
	form.Set("javax.faces.ViewState", "stateless")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: p.loginURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{Reason: fmt.Sprintf("portal returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: p.loginURL, Err: err}
	}

	session := &PortalSession{}
	cookies := strings.Join(resp.Header.Values("Set-Cookie"), "; ")
	if m := jsessionIDRe.FindStringSubmatch(cookies); m != nil {
		session.SessionID = m[1]
	}
	fillHiddenFields(session, body)
	return session, nil
}

// fillHiddenFields scans every <input> element of the login response for the
// three token fields the events endpoint requires.
func fillHiddenFields(s *PortalSession, body []byte) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" {
			var name, value string
			for _, a := range n.Attr {
				switch a.Key {
				case "name":
					name = a.Val
				case "value":
					value = a.Val
				}
			}
			switch name {
			case "rx-token":
				s.Token = value
			case "rx-loginKey":
				s.LoginKey = value
			case "javax.faces.ViewState":
				s.ViewState = value
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}
