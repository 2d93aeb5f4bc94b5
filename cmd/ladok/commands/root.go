// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the ladok CLI command tree.
package commands

import (
	"context"
	"log/slog"

	"github.com/ladok-go/ladok/cmd/ladok/cli"
)

// Root builds and returns the complete ladok CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "ladok",
		Description: `ladok: report results to the LADOK student administration system.

Authenticates through the institution's Shibboleth/CAS single sign-on
and drives the LADOK GUI proxy API: look up students and course
rounds, inspect per-component results, set grades, and mark results
ready for attestation.`,
		Subcommands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			credentialCommand(),
			studentCommand(),
			roundsCommand(),
			resultsCommand(),
			reportCommand(),
			finalizeCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Authenticate and persist the session",
				Command:     "ladok login",
			},
			{
				Description: "Look up a student and their registrations",
				Command:     "ladok student 8101011234",
			},
			{
				Description: "Show a student's results on a course",
				Command:     "ladok results 8101011234 DD1321",
			},
			{
				Description: "Report a lab grade and mark it ready for attestation",
				Command:     "ladok report 8101011234 DD1321 LAB1 P 2024-06-01 --finalize",
			},
			{
				Description: "Batch-report from a JSONC file",
				Command:     "ladok report --file grades.jsonc 8101011234 DD1321",
			},
		},
	}
}

// sessionRunner wraps a command body with session open and save. The
// body runs with an authenticated-capable client; the session state
// is re-persisted afterwards so the next invocation reuses it.
func sessionRunner(configPath *string, body func(ctx context.Context, session *cli.Session, args []string, logger *slog.Logger) error) func(context.Context, []string, *slog.Logger) error {
	return func(ctx context.Context, args []string, logger *slog.Logger) error {
		session, err := cli.OpenSession(ctx, logger, cli.SessionOptions{ConfigPath: *configPath})
		if err != nil {
			return err
		}
		if err := body(ctx, session, args, logger); err != nil {
			return err
		}
		return session.Save()
	}
}
