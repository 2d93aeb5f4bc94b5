// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/ladok-go/ladok/cmd/ladok/cli"
	"github.com/ladok-go/ladok/ladok"
)

func studentCommand() *cli.Command {
	var configPath string
	var asJSON bool
	return &cli.Command{
		Name:    "student",
		Summary: "Look up a student and their registrations",
		Description: `Look up a student by personnummer or LADOK id and print their
personal data and current course registrations.`,
		Usage: "ladok student <personnummer|ladok-id> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("student", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "configuration file path")
			flags.BoolVar(&asJSON, "json", false, "machine-readable JSON output")
			return flags
		},
		Examples: []cli.Example{
			{Command: "ladok student 8101011234"},
			{Command: "ladok student 0e1f2a3b-4c5d-6e7f-8091-a2b3c4d5e6f7 --json"},
		},
		Run: sessionRunner(&configPath, func(ctx context.Context, session *cli.Session, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: ladok student <personnummer|ladok-id>")
			}

			student := session.Client.Student(args[0])
			view, err := buildStudentView(ctx, student)
			if err != nil {
				return err
			}

			if asJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(view)
			}

			fmt.Printf("%s %s  %s  (%s)\n", view.FirstName, view.LastName, view.Personnummer, view.LadokID)
			if len(view.Registrations) == 0 {
				fmt.Println("no current registrations")
				return nil
			}

			rows := make([][]string, 0, len(view.Registrations))
			for _, registration := range view.Registrations {
				rows = append(rows, []string{
					registration.Code,
					registration.Name,
					fmt.Sprintf("%g %s", registration.Credits, registration.Unit),
					registration.Start,
					registration.End,
				})
			}
			fmt.Println(renderTable([]string{"COURSE", "NAME", "CREDITS", "START", "END"}, rows))
			return nil
		}),
	}
}

// studentView is the JSON output shape of the student command.
type studentView struct {
	LadokID       string             `json:"ladok_id"`
	Personnummer  string             `json:"personnummer"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	Alive         bool               `json:"alive"`
	Registrations []registrationView `json:"registrations"`
}

type registrationView struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Credits float64 `json:"credits"`
	Unit    string  `json:"unit"`
	RoundID string  `json:"round_id"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
}

func buildStudentView(ctx context.Context, student *ladok.Student) (*studentView, error) {
	view := &studentView{}

	var err error
	if view.LadokID, err = student.LadokID(ctx); err != nil {
		return nil, err
	}
	if view.Personnummer, err = student.Personnummer(ctx); err != nil {
		return nil, err
	}
	if view.FirstName, err = student.FirstName(ctx); err != nil {
		return nil, err
	}
	if view.LastName, err = student.LastName(ctx); err != nil {
		return nil, err
	}
	if view.Alive, err = student.Alive(ctx); err != nil {
		return nil, err
	}

	registrations, err := student.Courses(ctx)
	if err != nil {
		return nil, err
	}
	for _, registration := range registrations {
		name, err := registration.Name(ctx)
		if err != nil {
			return nil, err
		}
		credits, err := registration.Credits(ctx)
		if err != nil {
			return nil, err
		}
		unit, err := registration.Unit(ctx)
		if err != nil {
			return nil, err
		}
		view.Registrations = append(view.Registrations, registrationView{
			Code:    registration.Code(),
			Name:    name["sv"],
			Credits: credits,
			Unit:    unit,
			RoundID: registration.RoundID(),
			Start:   registration.Start().Format("2006-01-02"),
			End:     registration.End().Format("2006-01-02"),
		})
	}
	return view, nil
}
