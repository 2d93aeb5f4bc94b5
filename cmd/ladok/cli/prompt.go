// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/ladok-go/ladok/lib/secret"
)

// PromptPassword reads a password from the terminal with echo
// disabled and returns it in a locked buffer. Fails when stdin is not
// a terminal; scripted callers seal credentials with "ladok
// credential seal" instead of piping passwords.
func PromptPassword(prompt string) (*secret.Buffer, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal; use 'ladok credential seal' for unattended use")
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	// NewFromBytes zeroes raw.
	return secret.NewFromBytes(raw)
}

// PromptPasswordTwice prompts for a password and a confirmation and
// fails when they differ. Used when sealing new credentials.
func PromptPasswordTwice(prompt string) (*secret.Buffer, error) {
	first, err := PromptPassword(prompt)
	if err != nil {
		return nil, err
	}
	second, err := PromptPassword("Repeat: ")
	if err != nil {
		first.Close()
		return nil, err
	}
	defer second.Close()

	if first.String() != second.String() {
		first.Close()
		return nil, fmt.Errorf("passwords do not match")
	}
	return first, nil
}
