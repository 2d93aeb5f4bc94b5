// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		client, err := New(Config{})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if client.Environment() != "production" {
			t.Errorf("environment = %q, want production", client.Environment())
		}
		if client.proxyURL != "https://www.start.ladok.se/gui/proxy" {
			t.Errorf("proxy URL = %q", client.proxyURL)
		}
	})

	t.Run("test environment", func(t *testing.T) {
		client, err := New(Config{TestEnvironment: true})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if client.Environment() != "test" {
			t.Errorf("environment = %q, want test", client.Environment())
		}
	})
}

func TestLogin_PassesRelayToAuthenticator(t *testing.T) {
	f := newFixture(t)

	if err := f.client.Login(context.Background()); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// The relay is the URL-unescaped return parameter of the
	// discovery redirect.
	want := f.server.URL + "/Shibboleth.sso/SAML2/POST"
	if f.relaySeen != want {
		t.Errorf("relay URL = %q, want %q", f.relaySeen, want)
	}
	if !f.client.Active() {
		t.Error("client not active after login")
	}
}

func TestLogin_AdapterFailure(t *testing.T) {
	f := newFixture(t)
	f.client.authenticator = AuthenticatorFunc(func(ctx context.Context, httpClient *http.Client, relayURL string) error {
		return fmt.Errorf("wrong credentials: %w", ErrAuthenticationFailed)
	})

	err := f.client.Login(context.Background())
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if f.client.Active() {
		t.Error("client active after failed login")
	}
}

func TestLogin_NoSessionCookie(t *testing.T) {
	f := newFixture(t)
	// Adapter reports success without leaving any cookies behind.
	f.client.authenticator = AuthenticatorFunc(func(ctx context.Context, httpClient *http.Client, relayURL string) error {
		return nil
	})

	err := f.client.Login(context.Background())
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestXSRFToken_BeforeLogin(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.XSRFToken()
	if !errors.Is(err, ErrSessionNotEstablished) {
		t.Fatalf("expected ErrSessionNotEstablished, got %v", err)
	}
}

func TestRequestHeaders(t *testing.T) {
	f := newFixture(t)

	f.handle("/resultat/studieresultat/uppdatera", func(writer http.ResponseWriter, request *http.Request) {
		if got := request.Header.Get("X-XSRF-TOKEN"); got != "xsrf-token-1" {
			t.Errorf("X-XSRF-TOKEN = %q", got)
		}
		if got := request.Header.Get("Referer"); got != f.server.URL+"/gui" {
			t.Errorf("Referer = %q", got)
		}
		if got := request.Header.Get("Content-Type"); got != mediaResultat {
			t.Errorf("Content-Type = %q", got)
		}
		accept := request.Header.Get("Accept")
		for _, mediaType := range []string{mediaResultat, mediaKataloginformation, mediaStudentinformation, mediaStudiedeltagande, mediaUtbildningsinformation} {
			if !strings.Contains(accept, mediaType) {
				t.Errorf("Accept header missing %s", mediaType)
			}
		}
		io.WriteString(writer, `{"Resultat": []}`)
	})

	if _, err := f.client.put(context.Background(), "/resultat/studieresultat/uppdatera", map[string]any{}, mediaResultat); err != nil {
		t.Fatalf("put failed: %v", err)
	}
}

func TestServerError(t *testing.T) {
	f := newFixture(t)
	f.handle("/resultat/grunddata/betygsskala", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
		io.WriteString(writer, `{"Meddelande": "Behörighet saknas"}`)
	})

	_, err := f.client.get(context.Background(), "/resultat/grunddata/betygsskala", mediaResultat)
	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected *ServerError, got %v", err)
	}
	if serverErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", serverErr.StatusCode)
	}
	if serverErr.Message != "Behörighet saknas" {
		t.Errorf("message = %q", serverErr.Message)
	}
	if !IsServerStatus(err, http.StatusForbidden) {
		t.Error("IsServerStatus(403) = false")
	}
}

func TestSessionAgeing(t *testing.T) {
	f := newFixture(t)
	f.serveGradeScales()

	// First request logs in.
	if _, err := f.client.GradeScales(context.Background()); err != nil {
		t.Fatalf("GradeScales failed: %v", err)
	}
	if f.ssoCount != 1 {
		t.Fatalf("sso count = %d, want 1", f.ssoCount)
	}

	// Within the window no re-authentication happens.
	f.clock.Advance(10 * time.Minute)
	if _, err := f.client.get(context.Background(), "/resultat/grunddata/betygsskala", mediaResultat); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if f.ssoCount != 1 {
		t.Fatalf("sso count after active-window request = %d, want 1", f.ssoCount)
	}

	// Activity refreshed the timestamp: another 10 minutes is still
	// within the window.
	f.clock.Advance(10 * time.Minute)
	if _, err := f.client.get(context.Background(), "/resultat/grunddata/betygsskala", mediaResultat); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if f.ssoCount != 1 {
		t.Fatalf("sso count after refreshed window = %d, want 1", f.ssoCount)
	}

	// Sixteen idle minutes age the session out; the next request
	// triggers exactly one SSO round-trip.
	f.clock.Advance(16 * time.Minute)
	if _, err := f.client.get(context.Background(), "/resultat/grunddata/betygsskala", mediaResultat); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if f.ssoCount != 2 {
		t.Fatalf("sso count after aged session = %d, want 2", f.ssoCount)
	}
}

func TestAgedSessionWithoutAuthenticator(t *testing.T) {
	f := newFixture(t)
	f.client.authenticator = nil

	_, err := f.client.get(context.Background(), "/resultat/grunddata/betygsskala", mediaResultat)
	if !errors.Is(err, ErrSessionNotEstablished) {
		t.Fatalf("expected ErrSessionNotEstablished, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	logoutCalled := false
	f.handle("/logout", func(writer http.ResponseWriter, request *http.Request) {
		logoutCalled = true
		writer.WriteHeader(http.StatusOK)
	})

	if err := f.client.Login(context.Background()); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := f.client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if !logoutCalled {
		t.Error("logout endpoint not called")
	}
	if f.client.Active() {
		t.Error("client still active after logout")
	}
	if _, err := f.client.XSRFToken(); !errors.Is(err, ErrSessionNotEstablished) {
		t.Errorf("expected cleared cookies, got %v", err)
	}
}

func TestLogout_NeverLoggedIn(t *testing.T) {
	f := newFixture(t)
	if err := f.client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout on fresh client failed: %v", err)
	}
}

func TestUserInfo_Memoised(t *testing.T) {
	f := newFixture(t)
	calls := 0
	f.handle("/kataloginformation/anvandare/anvandarinformation", func(writer http.ResponseWriter, request *http.Request) {
		calls++
		if got := request.Header.Get("Content-Type"); got != mediaKataloginformation {
			t.Errorf("Content-Type = %q", got)
		}
		io.WriteString(writer, `{
			"AnvandareUID": "reporter-1",
			"Anvandarnamn": "dbosk@kth.se",
			"Fornamn": "Daniel",
			"Efternamn": "Bosk"
		}`)
	})

	first, err := f.client.UserInfo(context.Background())
	if err != nil {
		t.Fatalf("UserInfo failed: %v", err)
	}
	if first.ID != "reporter-1" || first.Username != "dbosk@kth.se" {
		t.Errorf("unexpected user info: %+v", first)
	}

	second, err := f.client.UserInfo(context.Background())
	if err != nil {
		t.Fatalf("second UserInfo failed: %v", err)
	}
	if first != second {
		t.Error("UserInfo not memoised")
	}
	if calls != 1 {
		t.Errorf("endpoint called %d times, want 1", calls)
	}
}

func TestSessionState_RoundTrip(t *testing.T) {
	f := newFixture(t)
	if err := f.client.Login(context.Background()); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	state, err := f.client.ExportSession()
	if err != nil {
		t.Fatalf("ExportSession failed: %v", err)
	}
	if len(state.Cookies) == 0 {
		t.Fatal("exported state carries no cookies")
	}

	// A fresh client with no authenticator can serve requests from
	// the restored session alone.
	restored, err := newClient(f.server.URL, Config{Now: f.clock.Now})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	if err := restored.RestoreSession(state); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}

	if !restored.Active() {
		t.Error("restored client not active")
	}
	token, err := restored.XSRFToken()
	if err != nil {
		t.Fatalf("XSRFToken after restore failed: %v", err)
	}
	if token != "xsrf-token-1" {
		t.Errorf("token = %q", token)
	}
}

func TestSessionState_ExportWithoutLogin(t *testing.T) {
	f := newFixture(t)
	if _, err := f.client.ExportSession(); !errors.Is(err, ErrSessionNotEstablished) {
		t.Fatalf("expected ErrSessionNotEstablished, got %v", err)
	}
}

func TestSessionState_EnvironmentMismatch(t *testing.T) {
	f := newFixture(t)
	if err := f.client.Login(context.Background()); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	state, err := f.client.ExportSession()
	if err != nil {
		t.Fatalf("ExportSession failed: %v", err)
	}
	state.Environment = "production"

	if err := f.client.RestoreSession(state); err == nil {
		t.Fatal("expected environment mismatch error")
	}
}
