// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"context"
	"net/http"
)

// Authenticator drives an institution's SSO redirect chain. The core
// does not know what protocol the institution speaks; it hands over
// the relay URL LADOK supplied and the HTTP client whose cookie jar
// must end up carrying the LADOK session cookies.
//
// Authenticate returns nil only when the chain completed. Wrong
// credentials, refused data-sharing consent, or changed IdP markup
// return an error wrapping ErrAuthenticationFailed. The adapter never
// retries; that is the caller's decision.
type Authenticator interface {
	Authenticate(ctx context.Context, client *http.Client, relayURL string) error
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
// Tests use it to seed the jar directly.
type AuthenticatorFunc func(ctx context.Context, client *http.Client, relayURL string) error

func (f AuthenticatorFunc) Authenticate(ctx context.Context, client *http.Client, relayURL string) error {
	return f(ctx, client, relayURL)
}
