// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"fmt"
	"net/http"
	"time"
)

// SessionState is an exportable snapshot of the authentication state:
// the cookies and the login timestamp. The CLI persists it between
// invocations so sessions outlive a single process within the
// fifteen-minute window. It contains live session credentials and
// must be stored with owner-only permissions.
type SessionState struct {
	// Environment is "production" or "test"; restoring into a client
	// for the other environment is refused.
	Environment string          `json:"environment" cbor:"environment"`
	LoginTime   time.Time       `json:"login_time" cbor:"login_time"`
	Cookies     []SessionCookie `json:"cookies" cbor:"cookies"`
}

// SessionCookie is one jar entry of a session snapshot.
type SessionCookie struct {
	Name  string `json:"name" cbor:"name"`
	Value string `json:"value" cbor:"value"`
}

// ExportSession snapshots the current session. Returns an error when
// the client has never authenticated.
func (c *Client) ExportSession() (*SessionState, error) {
	if c.loginTime.IsZero() {
		return nil, fmt.Errorf("ladok: nothing to export: %w", ErrSessionNotEstablished)
	}

	cookies := c.httpClient.Jar.Cookies(c.base)
	state := &SessionState{
		Environment: c.Environment(),
		LoginTime:   c.loginTime,
		Cookies:     make([]SessionCookie, 0, len(cookies)),
	}
	for _, cookie := range cookies {
		state.Cookies = append(state.Cookies, SessionCookie{Name: cookie.Name, Value: cookie.Value})
	}
	return state, nil
}

// RestoreSession loads a previously exported session into the client.
// The session may already have aged out; the next request then
// triggers a fresh SSO round-trip as usual.
func (c *Client) RestoreSession(state *SessionState) error {
	if state.Environment != c.Environment() {
		return fmt.Errorf("ladok: session state is for environment %q, client is %q",
			state.Environment, c.Environment())
	}

	cookies := make([]*http.Cookie, 0, len(state.Cookies))
	for _, cookie := range state.Cookies {
		cookies = append(cookies, &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	c.httpClient.Jar.SetCookies(c.base, cookies)
	c.loginTime = state.LoginTime
	return nil
}
