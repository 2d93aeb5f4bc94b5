// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ladok-go/ladok/ladok"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	stateStyles = map[ladok.ResultState]lipgloss.Style{
		ladok.StateAbsent:    lipgloss.NewStyle().Faint(true),
		ladok.StateDraft:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		ladok.StateFinalized: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		ladok.StateAttested:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

// renderTable renders a bordered table for terminal output.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

// renderState renders a result state with its status color.
func renderState(state ladok.ResultState) string {
	if style, ok := stateStyles[state]; ok {
		return style.Render(state.String())
	}
	return state.String()
}
