// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/ladok-go/ladok/cmd/ladok/cli"
	"github.com/ladok-go/ladok/cmd/ladok/tui"
	"github.com/ladok-go/ladok/ladok"
)

// reportEntry is one grade in a batch report file.
type reportEntry struct {
	Component string `json:"component"`
	Grade     string `json:"grade"`
	Date      string `json:"date"`
}

func reportCommand() *cli.Command {
	var configPath, filePath string
	var finalize, notify, interactive bool
	return &cli.Command{
		Name:    "report",
		Summary: "Report a grade on a course component",
		Description: `Report a grade on a component of a student's course registration.

The grade must belong to the component's grade scale and the
examination date is "YYYY-MM-DD" (or compact "YYYYMMDD"). With
--finalize the result is also marked ready for attestation;
--notify additionally names the reporter as decision maker, which
makes LADOK notify the attestant.

With --file, grades are read from a JSONC file (an array of
{"component", "grade", "date"} objects; comments and trailing commas
allowed) instead of the command line. With -i, an interactive picker
lists the components and prompts for grade and date.`,
		Usage: "ladok report <student> <course-code> [<component> <grade> <date>] [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("report", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "configuration file path")
			flags.StringVar(&filePath, "file", "", "batch report JSONC file")
			flags.BoolVar(&finalize, "finalize", false, "mark the result ready for attestation")
			flags.BoolVar(&notify, "notify", false, "with --finalize: notify the attestant")
			flags.BoolVarP(&interactive, "interactive", "i", false, "pick component and grade interactively")
			return flags
		},
		Examples: []cli.Example{
			{Command: "ladok report 8101011234 DD1321 LAB1 P 2024-06-01"},
			{Command: "ladok report 8101011234 DD1321 TEN1 B 20240601 --finalize --notify"},
			{Command: "ladok report 8101011234 DD1321 --file grades.jsonc --finalize"},
			{Command: "ladok report 8101011234 DD1321 -i"},
		},
		Run: sessionRunner(&configPath, func(ctx context.Context, session *cli.Session, args []string, logger *slog.Logger) error {
			if notify && !finalize {
				return fmt.Errorf("--notify requires --finalize")
			}

			var entries []reportEntry
			switch {
			case filePath != "":
				if len(args) != 2 {
					return fmt.Errorf("usage: ladok report <student> <course-code> --file <path>")
				}
				var err error
				entries, err = readReportFile(filePath)
				if err != nil {
					return err
				}
			case interactive:
				if len(args) != 2 {
					return fmt.Errorf("usage: ladok report <student> <course-code> -i")
				}
			default:
				if len(args) != 5 {
					return fmt.Errorf("usage: ladok report <student> <course-code> <component> <grade> <date>")
				}
				entries = []reportEntry{{Component: args[2], Grade: args[3], Date: args[4]}}
			}

			registration, err := lookupRegistration(ctx, session, args[0], args[1])
			if err != nil {
				return err
			}

			if interactive {
				selection, err := pickInteractively(ctx, registration)
				if err != nil || selection == nil {
					return err
				}
				entries = []reportEntry{{Component: selection.Component, Grade: selection.Grade, Date: selection.Date}}
			}

			for _, entry := range entries {
				if err := applyEntry(ctx, registration, entry, finalize, notify, logger); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func finalizeCommand() *cli.Command {
	var configPath string
	var notify bool
	return &cli.Command{
		Name:    "finalize",
		Summary: "Mark an already reported result ready for attestation",
		Usage:   "ladok finalize <student> <course-code> <component> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("finalize", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "configuration file path")
			flags.BoolVar(&notify, "notify", false, "notify the attestant")
			return flags
		},
		Examples: []cli.Example{
			{Command: "ladok finalize 8101011234 DD1321 LAB1 --notify"},
		},
		Run: sessionRunner(&configPath, func(ctx context.Context, session *cli.Session, args []string, logger *slog.Logger) error {
			if len(args) != 3 {
				return fmt.Errorf("usage: ladok finalize <student> <course-code> <component>")
			}

			registration, err := lookupRegistration(ctx, session, args[0], args[1])
			if err != nil {
				return err
			}
			result, err := registration.ResultFor(ctx, args[2])
			if err != nil {
				return err
			}
			if err := result.Finalize(ctx, notify); err != nil {
				return err
			}
			fmt.Printf("%s %s finalized\n", args[1], args[2])
			return nil
		}),
	}
}

// readReportFile parses a JSONC batch report file.
func readReportFile(path string) ([]reportEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []reportEntry
	if err := json.Unmarshal(jsonc.ToJSON(data), &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for index, entry := range entries {
		if entry.Component == "" || entry.Grade == "" || entry.Date == "" {
			return nil, fmt.Errorf("%s: entry %d needs component, grade, and date", path, index)
		}
	}
	return entries, nil
}

// pickInteractively runs the TUI picker over the registration's
// results. Returns (nil, nil) when the user aborted.
func pickInteractively(ctx context.Context, registration *ladok.CourseRegistration) (*tui.Selection, error) {
	results, err := registration.Results(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]tui.Entry, 0, len(results))
	for _, result := range results {
		grades := make([]string, 0, len(result.GradeScale().Grades))
		for _, grade := range result.GradeScale().Grades {
			grades = append(grades, grade.Code)
		}
		gradeCode := ""
		if result.Grade() != nil {
			gradeCode = result.Grade().Code
		}
		entries = append(entries, tui.Entry{
			Component:   result.Component().Code(),
			Description: result.Component().Description(),
			Grade:       gradeCode,
			State:       result.State().String(),
			Grades:      grades,
			Locked:      result.Attested(),
		})
	}

	return tui.Pick(entries, time.Now().Format("2006-01-02"))
}

// applyEntry sets one grade and optionally finalizes it.
func applyEntry(ctx context.Context, registration *ladok.CourseRegistration, entry reportEntry, finalize, notify bool, logger *slog.Logger) error {
	result, err := registration.ResultFor(ctx, entry.Component)
	if err != nil {
		return err
	}
	if err := result.SetGrade(ctx, entry.Grade, entry.Date); err != nil {
		return fmt.Errorf("%s: %w", entry.Component, err)
	}
	logger.Info("grade reported",
		"component", entry.Component, "grade", entry.Grade, "date", entry.Date)

	if finalize {
		if err := result.Finalize(ctx, notify); err != nil {
			return fmt.Errorf("%s: %w", entry.Component, err)
		}
		logger.Info("result finalized", "component", entry.Component, "notify", notify)
	}

	fmt.Printf("%s %s = %s (%s)\n", entry.Component, result.State(), entry.Grade, entry.Date)
	return nil
}
