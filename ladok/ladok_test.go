// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// fakeClock is the injectable time source for session-ageing tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fixture is a scripted LADOK server plus a client wired to it. The
// login chain (loggain, shiblogin, discovery redirect) is pre-wired;
// the stub authenticator seeds the session cookies and counts SSO
// round-trips. Proxy endpoints are installed per test with handle.
type fixture struct {
	t        *testing.T
	mux      *http.ServeMux
	server   *httptest.Server
	client   *Client
	clock    *fakeClock
	ssoCount int
	requests int
	relaySeen string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:     t,
		mux:   http.NewServeMux(),
		clock: &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		f.requests++
		f.mux.ServeHTTP(writer, request)
	}))
	t.Cleanup(f.server.Close)

	f.mux.HandleFunc("/gui/loggain", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	f.mux.HandleFunc("/gui/shiblogin", func(writer http.ResponseWriter, request *http.Request) {
		relay := url.QueryEscape(f.server.URL + "/Shibboleth.sso/SAML2/POST")
		http.Redirect(writer, request, "/idp/profile/ds?return="+relay+"&entityID=ladok", http.StatusFound)
	})
	f.mux.HandleFunc("/idp/profile/ds", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	authenticator := AuthenticatorFunc(func(ctx context.Context, httpClient *http.Client, relayURL string) error {
		f.ssoCount++
		f.relaySeen = relayURL
		f.seedSession(httpClient)
		return nil
	})

	client, err := newClient(f.server.URL, Config{
		Authenticator: authenticator,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:           f.clock.Now,
	})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	f.client = client
	return f
}

// seedSession plants the cookies a successful SSO chain leaves behind.
func (f *fixture) seedSession(httpClient *http.Client) {
	base, err := url.Parse(f.server.URL)
	if err != nil {
		f.t.Fatalf("parsing server URL: %v", err)
	}
	httpClient.Jar.SetCookies(base, []*http.Cookie{
		{Name: "XSRF-TOKEN", Value: "xsrf-token-1"},
		{Name: "JSESSIONID", Value: "session-1"},
	})
}

// handle installs a proxy endpoint handler under the GUI-proxy prefix.
func (f *fixture) handle(path string, handler http.HandlerFunc) {
	f.mux.HandleFunc("/gui/proxy"+path, handler)
}

// handleJSON installs a handler answering every request with a fixed
// JSON body.
func (f *fixture) handleJSON(path, body string) {
	f.handle(path, func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		io.WriteString(writer, body)
	})
}

// Reference-data fixture: the AF and PF scales under their well-known
// codes. Numeric ids arrive as strings, as the live service sends them.
const gradeScalesBody = `{
  "Betygsskala": [
    {
      "ID": "1", "Kod": "AF", "Benamning": {"sv": "Sjugradig betygsskala", "en": "Seven grade scale"},
      "Betygsgrad": [
        {"ID": "10", "Kod": "A", "GiltigSomSlutbetyg": true},
        {"ID": "11", "Kod": "B", "GiltigSomSlutbetyg": true},
        {"ID": "12", "Kod": "C", "GiltigSomSlutbetyg": true},
        {"ID": "13", "Kod": "D", "GiltigSomSlutbetyg": true},
        {"ID": "14", "Kod": "E", "GiltigSomSlutbetyg": true},
        {"ID": "15", "Kod": "F", "GiltigSomSlutbetyg": false}
      ]
    },
    {
      "ID": "2", "Kod": "PF", "Benamning": {"sv": "Tvågradig betygsskala"},
      "Betygsgrad": [
        {"ID": "20", "Kod": "P", "GiltigSomSlutbetyg": true},
        {"ID": "21", "Kod": "F", "GiltigSomSlutbetyg": false}
      ]
    }
  ]
}`

func (f *fixture) serveGradeScales() {
	f.handleJSON("/resultat/grunddata/betygsskala", gradeScalesBody)
}
