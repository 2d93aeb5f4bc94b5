// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/ladok-go/ladok/cmd/ladok/cli"
	"github.com/ladok-go/ladok/lib/sealed"
)

func loginCommand() *cli.Command {
	var configPath string
	return &cli.Command{
		Name:    "login",
		Summary: "Authenticate and persist the session",
		Description: `Perform the single sign-on flow and persist the session state.

The password comes from the sealed credential file when one exists
(see 'ladok credential seal'), otherwise from a prompt. The persisted
session is reused by later commands until it ages out (15 minutes of
inactivity on the server side).`,
		Usage: "ladok login [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "configuration file path")
			return flags
		},
		Run: sessionRunner(&configPath, func(ctx context.Context, session *cli.Session, args []string, logger *slog.Logger) error {
			if err := session.Client.Login(ctx); err != nil {
				return err
			}
			user, err := session.Client.UserInfo(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("logged in to %s as %s %s (%s)\n",
				session.Client.Environment(), user.FirstName, user.LastName, user.Username)
			return nil
		}),
	}
}

func logoutCommand() *cli.Command {
	var configPath string
	return &cli.Command{
		Name:    "logout",
		Summary: "End the session and discard persisted state",
		Usage:   "ladok logout [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("logout", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "configuration file path")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			session, err := cli.OpenSession(ctx, logger, cli.SessionOptions{ConfigPath: configPath})
			if err != nil {
				return err
			}
			if err := session.Client.Logout(ctx); err != nil {
				return err
			}
			return session.DiscardState()
		},
	}
}

func whoamiCommand() *cli.Command {
	var configPath string
	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the logged-in user and environment",
		Usage:   "ladok whoami [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("whoami", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "configuration file path")
			return flags
		},
		Run: sessionRunner(&configPath, func(ctx context.Context, session *cli.Session, args []string, logger *slog.Logger) error {
			user, err := session.Client.UserInfo(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s (%s)\n", user.FirstName, user.LastName, user.Username)
			if user.Email != "" {
				fmt.Println(user.Email)
			}
			fmt.Printf("environment: %s\n", session.Client.Environment())
			return nil
		}),
	}
}

func credentialCommand() *cli.Command {
	return &cli.Command{
		Name:    "credential",
		Summary: "Manage sealed login credentials",
		Subcommands: []*cli.Command{
			credentialSealCommand(),
		},
	}
}

func credentialSealCommand() *cli.Command {
	var configPath string
	return &cli.Command{
		Name:    "seal",
		Summary: "Seal the LADOK password to the credential file",
		Description: `Encrypt the LADOK password to the configured credential file.

The password is sealed with a passphrase (age scrypt recipient). Later
logins unseal it after prompting for the passphrase, so the LADOK
password itself never has to be retyped.`,
		Usage: "ladok credential seal [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("seal", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "configuration file path")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			cfg, err := cli.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := cfg.EnsurePaths(); err != nil {
				return err
			}

			password, err := cli.PromptPasswordTwice(fmt.Sprintf("LADOK password for %s: ", cfg.Login.Username))
			if err != nil {
				return err
			}
			defer password.Close()

			passphrase, err := cli.PromptPasswordTwice("Sealing passphrase: ")
			if err != nil {
				return err
			}
			defer passphrase.Close()

			if err := sealed.SealToFile(cfg.Paths.CredentialFile, password.Bytes(), passphrase); err != nil {
				return err
			}
			fmt.Printf("sealed credentials to %s\n", cfg.Paths.CredentialFile)
			return nil
		},
	}
}
