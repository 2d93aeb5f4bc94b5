// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ladok-go/ladok/lib/netutil"
)

// Base hosts of the two fixed LADOK environments.
const (
	productionURL = "https://www.start.ladok.se"
	testURL       = "https://www.test.ladok.se"
)

// Institution-specific media types layered atop JSON. The Accept
// header on every request is the comma-joined union.
const (
	mediaResultat               = "application/vnd.ladok-resultat+json"
	mediaKataloginformation     = "application/vnd.ladok-kataloginformation+json"
	mediaStudentinformation     = "application/vnd.ladok-studentinformation+json"
	mediaStudiedeltagande       = "application/vnd.ladok-studiedeltagande+json"
	mediaUtbildningsinformation = "application/vnd.ladok-utbildningsinformation+json"
)

var acceptHeader = strings.Join([]string{
	mediaResultat,
	mediaKataloginformation,
	mediaStudentinformation,
	mediaStudiedeltagande,
	mediaUtbildningsinformation,
	"application/json",
	"text/plain",
}, ", ")

// sessionTimeout is the server-side inactivity window. A session older
// than this needs a fresh SSO round-trip.
const sessionTimeout = 15 * time.Minute

// xsrfCookieName is the cookie the server sets on login; its value is
// echoed back in the X-XSRF-TOKEN header on every mutating request.
const xsrfCookieName = "XSRF-TOKEN"

// Config holds configuration for creating a Client.
type Config struct {
	// TestEnvironment selects the test host instead of production.
	TestEnvironment bool
	// HTTPClient is used for all requests. If nil, a fresh client is
	// created. A cookie jar is installed if the client has none; the
	// jar holds the LADOK session cookies.
	HTTPClient *http.Client
	// Authenticator performs the institution's SSO flow. May be nil
	// when a session is restored with RestoreSession instead; then an
	// aged session fails with ErrSessionNotEstablished.
	Authenticator Authenticator
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
	// Now returns the current time. If nil, time.Now. Injectable for
	// session-ageing tests.
	Now func() time.Time
}

// Client is a LADOK session. It owns the authentication state (cookie
// jar, XSRF token, login timestamp) and the memoised reference data.
// Not safe for concurrent use.
type Client struct {
	baseURL       string
	guiURL        string
	proxyURL      string
	base          *url.URL
	httpClient    *http.Client
	authenticator Authenticator
	logger        *slog.Logger
	now           func() time.Time

	loginTime time.Time

	// Memoised per session; immutable once loaded.
	gradeScales []*GradeScale
	userInfo    *UserInfo
}

// New creates a Client for the production or test environment.
func New(config Config) (*Client, error) {
	baseURL := productionURL
	if config.TestEnvironment {
		baseURL = testURL
	}
	return newClient(baseURL, config)
}

// newClient is the test seam: httptest servers stand in for the fixed
// hosts.
func newClient(baseURL string, config Config) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ladok: invalid base URL %q: %w", baseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("ladok: creating cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		guiURL:        strings.TrimRight(baseURL, "/") + "/gui",
		proxyURL:      strings.TrimRight(baseURL, "/") + "/gui/proxy",
		base:          base,
		httpClient:    httpClient,
		authenticator: config.Authenticator,
		logger:        logger,
		now:           now,
	}, nil
}

// Active reports whether the session has authenticated and has not
// aged past the fifteen-minute inactivity window.
func (c *Client) Active() bool {
	return !c.loginTime.IsZero() && c.now().Sub(c.loginTime) < sessionTimeout
}

// ensureActive re-authenticates when the session is missing or aged.
// Called once per operation, before the request is sent.
func (c *Client) ensureActive(ctx context.Context) error {
	if c.Active() {
		return nil
	}
	if c.authenticator == nil {
		return fmt.Errorf("ladok: session aged out and no authenticator configured: %w", ErrSessionNotEstablished)
	}
	return c.Login(ctx)
}

// shibstatePattern extracts the SAML relay from the redirect URL the
// identity-provider discovery hop lands on.
var shibstatePattern = regexp.MustCompile(`return=(.*?)(&|$)`)

// Login performs the SSO flow: fetch the login pages to obtain the
// SAML relay URL, hand the HTTP client to the Authenticator to drive
// the institution's redirect chain, and verify that the jar came back
// with a LADOK session. On failure the client stays unauthenticated.
func (c *Client) Login(ctx context.Context) error {
	if c.authenticator == nil {
		return fmt.Errorf("ladok: no authenticator configured: %w", ErrSessionNotEstablished)
	}

	relayURL, err := c.fetchRelayURL(ctx)
	if err != nil {
		return err
	}

	if err := c.authenticator.Authenticate(ctx, c.httpClient, relayURL); err != nil {
		return fmt.Errorf("ladok: login: %w", err)
	}

	// The adapter reported success; the jar must now carry the XSRF
	// cookie or the chain silently ended somewhere else.
	if _, err := c.XSRFToken(); err != nil {
		return fmt.Errorf("ladok: login completed without a session cookie: %w", ErrAuthenticationFailed)
	}

	c.loginTime = c.now()
	c.logger.Info("logged in to ladok", "environment", c.Environment())
	return nil
}

// fetchRelayURL walks the login redirect chain far enough to read the
// SAML relay out of the discovery URL's return parameter.
func (c *Client) fetchRelayURL(ctx context.Context) (string, error) {
	if _, err := c.simpleGet(ctx, c.guiURL+"/loggain"); err != nil {
		return "", fmt.Errorf("ladok: fetching login page: %w", err)
	}

	response, err := c.simpleGet(ctx, c.guiURL+"/shiblogin")
	if err != nil {
		return "", fmt.Errorf("ladok: fetching shiblogin: %w", err)
	}

	finalURL := response.Request.URL.String()
	match := shibstatePattern.FindStringSubmatch(finalURL)
	if match == nil {
		return "", fmt.Errorf("ladok: no SAML relay in redirect URL %q: %w", finalURL, ErrAuthenticationFailed)
	}

	relayURL, err := url.QueryUnescape(match[1])
	if err != nil {
		return "", fmt.Errorf("ladok: malformed SAML relay %q: %w", match[1], err)
	}
	return relayURL, nil
}

// simpleGet issues a redirect-following GET outside the proxy-path
// machinery, draining and closing the body. Used by the login flow.
func (c *Client) simpleGet(ctx context.Context, rawURL string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if _, err := io.Copy(io.Discard, io.LimitReader(response.Body, netutil.MaxResponseSize)); err != nil {
		return nil, err
	}
	return response, nil
}

// XSRFToken returns the value of the XSRF-TOKEN cookie. Fails with
// ErrSessionNotEstablished when the cookie is absent, which means no
// login has happened on this client's jar.
func (c *Client) XSRFToken() (string, error) {
	for _, cookie := range c.httpClient.Jar.Cookies(c.base) {
		if cookie.Name == xsrfCookieName {
			return cookie.Value, nil
		}
	}
	return "", fmt.Errorf("ladok: no %s cookie: %w", xsrfCookieName, ErrSessionNotEstablished)
}

// Logout ends the server-side session and clears the local one. Safe
// to call on a client that never logged in.
func (c *Client) Logout(ctx context.Context) error {
	if !c.loginTime.IsZero() {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.proxyURL+"/logout", nil)
		if err != nil {
			return fmt.Errorf("ladok: logout: %w", err)
		}
		request.Header.Set("Accept", acceptHeader)

		response, err := c.httpClient.Do(request)
		if err != nil {
			return fmt.Errorf("ladok: logout: %w", err)
		}
		body, readErr := netutil.ReadResponse(response.Body)
		response.Body.Close()
		if readErr == nil && (response.StatusCode < 200 || response.StatusCode >= 300) {
			return serverError(response.StatusCode, body)
		}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("ladok: resetting cookie jar: %w", err)
	}
	c.httpClient.Jar = jar
	c.loginTime = time.Time{}
	c.userInfo = nil
	c.logger.Info("logged out of ladok")
	return nil
}

// Environment returns "production" or "test".
func (c *Client) Environment() string {
	if c.baseURL == testURL {
		return "test"
	}
	if c.baseURL == productionURL {
		return "production"
	}
	// Test servers stand in for either host.
	return c.baseURL
}

// UserInfo identifies the logged-in user. The id is the reporter id
// used when finalising results.
type UserInfo struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// UserInfo fetches the logged-in user's catalogue record, memoised for
// the session.
func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	if c.userInfo != nil {
		return c.userInfo, nil
	}

	body, err := c.get(ctx, "/kataloginformation/anvandare/anvandarinformation", mediaKataloginformation)
	if err != nil {
		return nil, fmt.Errorf("ladok: fetching user info: %w", err)
	}

	var record userInfoRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("ladok: parsing user info: %w", err)
	}

	c.userInfo = &UserInfo{
		ID:        record.AnvandareUID,
		Username:  record.Anvandarnamn,
		FirstName: record.Fornamn,
		LastName:  record.Efternamn,
		Email:     record.Email,
	}
	return c.userInfo, nil
}

// get performs a GET against the GUI proxy.
func (c *Client) get(ctx context.Context, path, contentType string) ([]byte, error) {
	return c.doRequest(ctx, http.MethodGet, path, contentType, nil)
}

// put performs a PUT against the GUI proxy. LADOK uses PUT both for
// updates and for batch reads with a request body.
func (c *Client) put(ctx context.Context, path string, requestBody any, contentType string) ([]byte, error) {
	return c.doRequest(ctx, http.MethodPut, path, contentType, requestBody)
}

// post performs a POST against the GUI proxy.
func (c *Client) post(ctx context.Context, path string, requestBody any, contentType string) ([]byte, error) {
	return c.doRequest(ctx, http.MethodPost, path, contentType, requestBody)
}

// doRequest sends one request to the GUI proxy. It ensures the session
// is active first (re-authenticating at most once), sets the protocol
// headers, and on success refreshes the login timestamp. Non-2xx
// responses decode into *ServerError.
func (c *Client) doRequest(ctx context.Context, method, path, contentType string, requestBody any) ([]byte, error) {
	if err := c.ensureActive(ctx); err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("ladok: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.proxyURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("ladok: creating request: %w", err)
	}

	request.Header.Set("Accept", acceptHeader)
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	if method == http.MethodPut || method == http.MethodPost {
		token, err := c.XSRFToken()
		if err != nil {
			return nil, err
		}
		request.Header.Set("X-XSRF-TOKEN", token)
		request.Header.Set("Referer", c.guiURL)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("ladok: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("ladok: reading response body: %w", err)
	}

	// Any round-trip counts as activity for the inactivity window.
	c.loginTime = c.now()

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}
	return nil, serverError(response.StatusCode, responseBody)
}

// serverError decodes the standard {"Meddelande": ...} error payload,
// falling back to the raw body.
func serverError(statusCode int, body []byte) *ServerError {
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Meddelande != "" {
		return &ServerError{StatusCode: statusCode, Message: payload.Meddelande}
	}
	return &ServerError{StatusCode: statusCode, Message: string(body)}
}
