// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/ladok-go/ladok/cmd/ladok/cli"
	"github.com/ladok-go/ladok/ladok"
)

func resultsCommand() *cli.Command {
	var configPath string
	return &cli.Command{
		Name:    "results",
		Summary: "Show a student's results on a course",
		Description: `Show the per-component results of a student's course registration:
grade, examination date, and reporting state (absent, draft,
finalized, attested).`,
		Usage: "ladok results <personnummer|ladok-id> <course-code> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("results", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "configuration file path")
			return flags
		},
		Examples: []cli.Example{
			{Command: "ladok results 8101011234 DD1321"},
		},
		Run: sessionRunner(&configPath, func(ctx context.Context, session *cli.Session, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: ladok results <student> <course-code>")
			}

			registration, err := lookupRegistration(ctx, session, args[0], args[1])
			if err != nil {
				return err
			}
			results, err := registration.Results(ctx)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(results))
			for _, result := range results {
				grade, date := "-", "-"
				if result.Grade() != nil {
					grade = result.Grade().Code
					date = result.Date().Format("2006-01-02")
				}
				rows = append(rows, []string{
					result.Component().Code(),
					result.Component().Description(),
					grade,
					date,
					renderState(result.State()),
				})
			}
			fmt.Println(renderTable([]string{"COMPONENT", "DESCRIPTION", "GRADE", "DATE", "STATE"}, rows))
			return nil
		}),
	}
}

// lookupRegistration resolves a student identifier and course code to
// the student's registration.
func lookupRegistration(ctx context.Context, session *cli.Session, studentID, courseCode string) (*ladok.CourseRegistration, error) {
	student := session.Client.Student(studentID)
	registration, err := student.CourseByCode(ctx, courseCode)
	if err != nil {
		return nil, fmt.Errorf("looking up %s for student: %w", courseCode, err)
	}
	return registration, nil
}
