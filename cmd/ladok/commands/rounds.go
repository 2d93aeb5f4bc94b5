// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/ladok-go/ladok/cmd/ladok/cli"
	"github.com/ladok-go/ladok/ladok"
)

func roundsCommand() *cli.Command {
	var configPath string
	var code, name, roundCode string
	var participants bool
	return &cli.Command{
		Name:    "rounds",
		Summary: "Search course rounds",
		Description: `Search course rounds by course code, name, or round code.

With --participants, the matched rounds' participant records are
dumped as scrubbed JSON (links removed, names and personnummer
pseudonymised), suitable for sharing and for test fixtures.`,
		Usage: "ladok rounds [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("rounds", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "configuration file path")
			flags.StringVar(&code, "code", "", "course code, e.g. DD1321")
			flags.StringVar(&name, "name", "", "course name substring")
			flags.StringVar(&roundCode, "round", "", "round code, e.g. 50287")
			flags.BoolVar(&participants, "participants", false, "dump scrubbed participant JSON")
			return flags
		},
		Examples: []cli.Example{
			{Command: "ladok rounds --code DD1321"},
			{Command: "ladok rounds --code DD1321 --round 50287 --participants"},
		},
		Run: sessionRunner(&configPath, func(ctx context.Context, session *cli.Session, args []string, logger *slog.Logger) error {
			if code == "" && name == "" && roundCode == "" {
				return fmt.Errorf("at least one of --code, --name, --round is required")
			}

			rounds, err := session.Client.SearchCourseRounds(ctx, ladok.RoundQuery{
				Code:      code,
				Name:      name,
				RoundCode: roundCode,
			})
			if err != nil {
				return err
			}

			if participants {
				return dumpParticipants(ctx, rounds)
			}

			rows := make([][]string, 0, len(rounds))
			for _, round := range rounds {
				courseCode, err := round.Code(ctx)
				if err != nil {
					return err
				}
				courseName, err := round.Name(ctx)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					round.RoundCode(),
					courseCode,
					courseName["sv"],
					round.Start().Format("2006-01-02"),
					round.End().Format("2006-01-02"),
				})
			}
			fmt.Println(renderTable([]string{"ROUND", "COURSE", "NAME", "START", "END"}, rows))
			return nil
		}),
	}
}

func dumpParticipants(ctx context.Context, rounds []*ladok.CourseRound) error {
	for _, round := range rounds {
		records, err := round.Participants(ctx, ladok.ParticipantFilter{})
		if err != nil {
			return err
		}
		for _, record := range records {
			scrubbed, err := ladok.Scrub(record)
			if err != nil {
				return err
			}
			os.Stdout.Write(scrubbed)
			fmt.Println()
		}
	}
	return nil
}
