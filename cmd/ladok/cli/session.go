// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/ladok-go/ladok/ladok"
	"github.com/ladok-go/ladok/lib/codec"
	"github.com/ladok-go/ladok/lib/config"
	"github.com/ladok-go/ladok/lib/sealed"
	"github.com/ladok-go/ladok/lib/secret"
	"github.com/ladok-go/ladok/saml"
)

// Session is an authenticated LADOK client plus the configuration it
// was built from. The session state (cookies, login time) is restored
// from disk on open and persisted on save, so consecutive CLI
// invocations inside the fifteen-minute window share one SSO login.
type Session struct {
	Client *ladok.Client
	Config *config.Config

	logger *slog.Logger
}

// SessionOptions configures OpenSession.
type SessionOptions struct {
	// ConfigPath overrides the configuration file location
	// (--config). Empty means LADOK_CONFIG or the default path.
	ConfigPath string
}

// OpenSession loads the configuration, builds a client with a
// Shibboleth/CAS authenticator, and restores any persisted session
// state. No network request is issued; authentication happens on the
// first operation that needs it.
//
// The password comes from the sealed credential file when it exists
// (prompting for its passphrase), otherwise from a direct prompt.
func OpenSession(ctx context.Context, logger *slog.Logger, options SessionOptions) (*Session, error) {
	cfg, err := LoadConfig(options.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}

	authenticator := ladok.AuthenticatorFunc(func(ctx context.Context, httpClient *http.Client, relayURL string) error {
		password, err := obtainPassword(cfg)
		if err != nil {
			return err
		}
		defer password.Close()

		adapter, err := saml.New(saml.Config{
			EntityID: cfg.Login.IdentityProvider,
			Username: cfg.Login.Username,
			Password: password,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		return adapter.Authenticate(ctx, httpClient, relayURL)
	})

	client, err := ladok.New(ladok.Config{
		TestEnvironment: cfg.Environment == config.Test,
		Authenticator:   authenticator,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	session := &Session{Client: client, Config: cfg, logger: logger}
	session.restore()
	return session, nil
}

// LoadConfig loads the configuration from the --config override, or
// from the usual locations when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// obtainPassword unseals the credential file when present, otherwise
// prompts directly.
func obtainPassword(cfg *config.Config) (*secret.Buffer, error) {
	if _, err := os.Stat(cfg.Paths.CredentialFile); err == nil {
		passphrase, err := PromptPassword(fmt.Sprintf("Passphrase for %s: ", cfg.Paths.CredentialFile))
		if err != nil {
			return nil, err
		}
		defer passphrase.Close()
		return sealed.UnsealFromFile(cfg.Paths.CredentialFile, passphrase)
	}
	return PromptPassword(fmt.Sprintf("LADOK password for %s: ", cfg.Login.Username))
}

// restore loads persisted session state, if any. A missing, stale, or
// mismatched state file is not an error; the client just starts
// unauthenticated.
func (s *Session) restore() {
	data, err := os.ReadFile(s.Config.Paths.SessionFile)
	if err != nil {
		return
	}

	var state ladok.SessionState
	if err := codec.Unmarshal(data, &state); err != nil {
		s.logger.Warn("discarding unreadable session state", "path", s.Config.Paths.SessionFile, "error", err)
		return
	}
	if err := s.Client.RestoreSession(&state); err != nil {
		s.logger.Warn("discarding session state", "error", err)
	}
}

// Save persists the current session state with owner-only
// permissions. A client that never authenticated saves nothing.
func (s *Session) Save() error {
	state, err := s.Client.ExportSession()
	if err != nil {
		if errors.Is(err, ladok.ErrSessionNotEstablished) {
			return nil
		}
		return err
	}

	data, err := codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding session state: %w", err)
	}
	if err := os.WriteFile(s.Config.Paths.SessionFile, data, 0o600); err != nil {
		return fmt.Errorf("writing session state: %w", err)
	}
	return nil
}

// DiscardState removes the persisted session state. Used by logout.
func (s *Session) DiscardState() error {
	err := os.Remove(s.Config.Paths.SessionFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session state: %w", err)
	}
	return nil
}
