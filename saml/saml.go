// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package saml authenticates against a Shibboleth identity provider
// fronted by CAS, the deployment shape Swedish universities use for
// LADOK. It implements ladok.Authenticator.
//
// The chain has four hops: the IdP discovery URL (the relay URL with
// the institution's entityID appended), the IdP's local-storage
// continuation form, the CAS credential form, and the SAMLResponse
// POST back to the service provider. Form actions are scraped from
// each page rather than hardcoded, so the institution's host layout
// stays out of the configuration.
package saml

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/ladok-go/ladok/ladok"
	"github.com/ladok-go/ladok/lib/netutil"
	"github.com/ladok-go/ladok/lib/secret"
)

// Config holds configuration for creating a Client.
type Config struct {
	// EntityID is the institution's Shibboleth IdP entity URL, e.g.
	// "https://saml.sys.kth.se/idp/shibboleth".
	EntityID string
	// Username is the institution account name.
	Username string
	// Password is borrowed, not owned: the caller closes it.
	Password *secret.Buffer
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
}

// Client drives the Shibboleth/CAS login chain. It satisfies
// ladok.Authenticator.
type Client struct {
	entityID string
	username string
	password *secret.Buffer
	logger   *slog.Logger
}

var _ ladok.Authenticator = (*Client)(nil)

// New creates a Client. EntityID, Username, and Password are required.
func New(config Config) (*Client, error) {
	if config.EntityID == "" {
		return nil, fmt.Errorf("saml: missing IdP entity id")
	}
	if config.Username == "" {
		return nil, fmt.Errorf("saml: missing username")
	}
	if config.Password == nil {
		return nil, fmt.Errorf("saml: missing password")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		entityID: config.EntityID,
		username: config.Username,
		password: config.Password,
		logger:   logger,
	}, nil
}

// Form-scraping patterns, matching the markup Shibboleth and CAS have
// shipped for years. A change in the markup surfaces as
// ErrAuthenticationFailed, not a silent mis-login.
var (
	formActionPattern     = regexp.MustCompile(`<form[^>]*\baction="(.*?)"[^>]*>`)
	credentialFormPattern = regexp.MustCompile(`<form[^>]*\bid="fm1"[^>]*\baction="(.*?)"[^>]*>`)
	hiddenInputPattern    = `<input[^>]*\bname="%s"[^>]*\bvalue="(.*?)"[^>]*/?>`
)

// localStorageForm is the IdP's client-storage continuation form,
// submitted as a browser without prior IdP state would.
var localStorageForm = url.Values{
	"shib_idp_ls_exception.shib_idp_session_ss":    {""},
	"shib_idp_ls_success.shib_idp_session_ss":      {"true"},
	"shib_idp_ls_value.shib_idp_session_ss":        {""},
	"shib_idp_ls_exception.shib_idp_persistent_ss": {""},
	"shib_idp_ls_success.shib_idp_persistent_ss":   {"true"},
	"shib_idp_ls_value.shib_idp_persistent_ss":     {""},
	"shib_idp_ls_supported":                        {"true"},
	"_eventId_proceed":                             {""},
}

// Authenticate walks the SSO chain on the given HTTP client. On
// success the client's jar holds the LADOK session cookies; on any
// failure the error wraps ladok.ErrAuthenticationFailed and the jar
// is in an undefined partial state.
func (c *Client) Authenticate(ctx context.Context, httpClient *http.Client, relayURL string) error {
	// Hop 1: IdP discovery. The relay URL already carries the query
	// delimiter state; append the entityID the way a discovery
	// service would.
	separator := "?"
	if strings.Contains(relayURL, "?") {
		separator = "&"
	}
	page, err := c.request(ctx, httpClient, http.MethodGet,
		relayURL+separator+"entityID="+url.QueryEscape(c.entityID), nil)
	if err != nil {
		return fmt.Errorf("saml: identity provider discovery: %w", err)
	}

	// Hop 2: local-storage continuation.
	action, ok := matchAction(formActionPattern, page)
	if !ok {
		return fmt.Errorf("saml: no continuation form on identity provider page: %w",
			ladok.ErrAuthenticationFailed)
	}
	c.logger.Debug("submitting idp continuation form", "action", action.String())
	page, err = c.request(ctx, httpClient, http.MethodPost, action.String(), localStorageForm)
	if err != nil {
		return fmt.Errorf("saml: identity provider continuation: %w", err)
	}

	// Hop 3: CAS credentials.
	page, err = c.submitCredentials(ctx, httpClient, page)
	if err != nil {
		return err
	}

	// Hop 4: SAMLResponse back to the service provider.
	return c.submitAssertion(ctx, httpClient, page)
}

// submitCredentials scrapes the CAS login form from page and posts
// the username and password to it.
func (c *Client) submitCredentials(ctx context.Context, httpClient *http.Client, page *fetchedPage) (*fetchedPage, error) {
	action, ok := matchAction(credentialFormPattern, page)
	if !ok {
		return nil, fmt.Errorf("saml: no credential form on CAS page: %w", ladok.ErrAuthenticationFailed)
	}

	form := url.Values{
		"username": {c.username},
		"password": {c.password.String()},
		"_eventId": {"submit"},
	}
	// CAS couples the submission to the rendered form via these
	// hidden fields; echo whichever are present.
	for _, field := range []string{"lt", "execution"} {
		if value, ok := page.hiddenInput(field); ok {
			form.Set(field, value)
		}
	}

	c.logger.Debug("submitting CAS credentials", "action", action.String(), "username", c.username)
	result, err := c.request(ctx, httpClient, http.MethodPost, action.String(), form)
	if err != nil {
		return nil, fmt.Errorf("saml: CAS login: %w", err)
	}
	return result, nil
}

// submitAssertion scrapes the SAMLResponse form the IdP renders after
// a successful CAS login and posts it to the service provider. A page
// without any form means the credentials were rejected; a form
// without a RelayState means the IdP is waiting for the user to
// approve data sharing in a browser.
func (c *Client) submitAssertion(ctx context.Context, httpClient *http.Client, page *fetchedPage) error {
	action, ok := matchAction(formActionPattern, page)
	if !ok {
		return fmt.Errorf("saml: CAS rejected the credentials (or the login form markup changed): %w",
			ladok.ErrAuthenticationFailed)
	}

	relayState, ok := page.hiddenInput("RelayState")
	if !ok {
		return fmt.Errorf("saml: no RelayState in the assertion form; log in with a browser once and approve data sharing: %w",
			ladok.ErrAuthenticationFailed)
	}
	samlResponse, ok := page.hiddenInput("SAMLResponse")
	if !ok {
		return fmt.Errorf("saml: no SAMLResponse in the assertion form: %w", ladok.ErrAuthenticationFailed)
	}

	c.logger.Debug("posting SAML assertion", "action", action.String())
	if _, err := c.request(ctx, httpClient, http.MethodPost, action.String(), url.Values{
		"RelayState":   {relayState},
		"SAMLResponse": {samlResponse},
	}); err != nil {
		return fmt.Errorf("saml: delivering SAML assertion: %w", err)
	}
	return nil
}

// fetchedPage is a response body together with the URL it was finally
// served from, for resolving relative form actions.
type fetchedPage struct {
	base *url.URL
	body string
}

// hiddenInput returns the unescaped value of the named hidden input.
func (p *fetchedPage) hiddenInput(name string) (string, bool) {
	pattern := regexp.MustCompile(fmt.Sprintf(hiddenInputPattern, regexp.QuoteMeta(name)))
	match := pattern.FindStringSubmatch(p.body)
	if match == nil {
		return "", false
	}
	return html.UnescapeString(match[1]), true
}

// matchAction scrapes a form action with the given pattern and
// resolves it against the page's URL.
func matchAction(pattern *regexp.Regexp, page *fetchedPage) (*url.URL, bool) {
	match := pattern.FindStringSubmatch(page.body)
	if match == nil {
		return nil, false
	}
	action, err := url.Parse(html.UnescapeString(match[1]))
	if err != nil {
		return nil, false
	}
	return page.base.ResolveReference(action), true
}

// request performs one hop of the chain, following redirects, and
// returns the final page.
func (c *Client) request(ctx context.Context, httpClient *http.Client, method, rawURL string, form url.Values) (*fetchedPage, error) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	request, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if form != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	response, err := httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	pageBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d", request.URL.Host, response.StatusCode)
	}
	return &fetchedPage{base: response.Request.URL, body: string(pageBody)}, nil
}
