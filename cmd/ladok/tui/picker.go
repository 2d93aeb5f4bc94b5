// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui implements the interactive grade picker for "ladok
// report -i": choose a component, type a grade and an examination
// date, confirm.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Entry is one selectable component result.
type Entry struct {
	// Component is the component code, e.g. "LAB1".
	Component string
	// Description is the component's label.
	Description string
	// Grade is the current grade code, empty when none.
	Grade string
	// State is the rendered result state.
	State string
	// Grades are the valid grade codes of the component's scale.
	Grades []string
	// Locked marks attested components, which cannot be selected.
	Locked bool
}

// Selection is the picker's outcome.
type Selection struct {
	Component string
	Grade     string
	Date      string
}

type phase int

const (
	phasePick phase = iota
	phaseGrade
	phaseDate
	phaseDone
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	lockedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle     = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Model is the picker's bubbletea model. Exported for tests; use Pick
// to run it on a terminal.
type Model struct {
	entries []Entry
	phase   phase
	cursor  int
	input   textinput.Model
	problem string
	aborted bool

	selection Selection
}

// NewModel builds a picker over the given entries. defaultDate
// pre-fills the examination date input.
func NewModel(entries []Entry, defaultDate string) Model {
	input := textinput.New()
	input.CharLimit = 10
	input.Width = 12

	model := Model{entries: entries, input: input, selection: Selection{Date: defaultDate}}
	// Start on the first selectable entry.
	for index, entry := range entries {
		if !entry.Locked {
			model.cursor = index
			break
		}
	}
	return model
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		m.phase = phaseDone
		return m, tea.Quit
	}

	switch m.phase {
	case phasePick:
		return m.updatePick(keyMsg)
	case phaseGrade, phaseDate:
		return m.updateInput(keyMsg)
	}
	return m, nil
}

func (m Model) updatePick(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMsg.String() {
	case "q":
		m.aborted = true
		m.phase = phaseDone
		return m, tea.Quit
	case "up", "k":
		m.cursor = m.step(-1)
	case "down", "j":
		m.cursor = m.step(1)
	case "enter":
		entry := m.entries[m.cursor]
		if entry.Locked {
			m.problem = fmt.Sprintf("%s is attested and cannot be changed", entry.Component)
			return m, nil
		}
		m.problem = ""
		m.selection.Component = entry.Component
		m.phase = phaseGrade
		m.input.Placeholder = strings.Join(entry.Grades, "/")
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// step moves the cursor over selectable entries, clamping at the ends.
func (m Model) step(direction int) int {
	cursor := m.cursor
	for {
		next := cursor + direction
		if next < 0 || next >= len(m.entries) {
			return cursor
		}
		cursor = next
		if !m.entries[cursor].Locked {
			return cursor
		}
	}
}

func (m Model) updateInput(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if keyMsg.String() == "enter" {
		value := strings.TrimSpace(m.input.Value())
		switch m.phase {
		case phaseGrade:
			entry := m.entries[m.cursor]
			if !validGrade(entry, value) {
				m.problem = fmt.Sprintf("%q is not a grade of this component's scale", value)
				return m, nil
			}
			m.problem = ""
			m.selection.Grade = value
			m.phase = phaseDate
			m.input.Placeholder = "YYYY-MM-DD"
			m.input.SetValue(m.selection.Date)
			return m, nil
		case phaseDate:
			if value == "" {
				m.problem = "an examination date is required"
				return m, nil
			}
			m.problem = ""
			m.selection.Date = value
			m.phase = phaseDone
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	return m, cmd
}

func validGrade(entry Entry, grade string) bool {
	for _, candidate := range entry.Grades {
		if candidate == grade {
			return true
		}
	}
	return false
}

func (m Model) View() string {
	var view strings.Builder

	switch m.phase {
	case phasePick:
		view.WriteString(titleStyle.Render("Select a component to report") + "\n\n")
		for index, entry := range m.entries {
			cursor := "  "
			if index == m.cursor {
				cursor = cursorStyle.Render("> ")
			}
			grade := entry.Grade
			if grade == "" {
				grade = "-"
			}
			line := fmt.Sprintf("%s%-8s %-24s %-4s %s", cursor, entry.Component, entry.Description, grade, entry.State)
			if entry.Locked {
				line = lockedStyle.Render(line)
			}
			view.WriteString(line + "\n")
		}
		view.WriteString("\n" + hintStyle.Render("enter select  j/k move  q quit") + "\n")

	case phaseGrade:
		view.WriteString(titleStyle.Render(fmt.Sprintf("Grade for %s", m.selection.Component)) + "\n\n")
		view.WriteString(m.input.View() + "\n")

	case phaseDate:
		view.WriteString(titleStyle.Render(fmt.Sprintf("Examination date for %s (%s)",
			m.selection.Component, selectedStyle.Render(m.selection.Grade))) + "\n\n")
		view.WriteString(m.input.View() + "\n")

	case phaseDone:
		return ""
	}

	if m.problem != "" {
		view.WriteString(errorStyle.Render(m.problem) + "\n")
	}
	return view.String()
}

// Selection returns the completed selection, or false when the picker
// was aborted or is still running.
func (m Model) Selection() (Selection, bool) {
	if m.aborted || m.phase != phaseDone || m.selection.Grade == "" {
		return Selection{}, false
	}
	return m.selection, true
}

// Pick runs the picker on the terminal and returns the selection, or
// (nil, nil) when the user aborted.
func Pick(entries []Entry, defaultDate string) (*Selection, error) {
	program := tea.NewProgram(NewModel(entries, defaultDate))
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("running picker: %w", err)
	}

	model, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("picker returned unexpected model %T", final)
	}
	selection, ok := model.Selection()
	if !ok {
		return nil, nil
	}
	return &selection, nil
}
