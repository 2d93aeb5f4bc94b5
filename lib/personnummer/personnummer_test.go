// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package personnummer

import (
	"errors"
	"testing"
	"time"
)

// reference is the fixed "current" date for century-inference tests.
var reference = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"full twelve digits", "198001011234", "198001011234"},
		{"ten digits no separator", "8001011234", "198001011234"},
		{"dash separator", "800101-1234", "198001011234"},
		{"nineteenth-century branch", "460101-1234", "194601011234"},
		{"below the five-year cutoff", "210101-1234", "192101011234"},
		{"exactly at the five-year cutoff", "190101-1234", "201901011234"},
		{"plus separator centenarian", "460101+1234", "184601011234"},
		{"plus separator on a 20YY inference", "100101+1234", "191001011234"},
		{"interim letter suffix", "800101-T234", "19800101T234"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := normalizeAt(test.input, reference)
			if err != nil {
				t.Fatalf("normalizeAt(%q) failed: %v", test.input, err)
			}
			if got != test.want {
				t.Errorf("normalizeAt(%q) = %q, want %q", test.input, got, test.want)
			}
			if len(got) != 12 {
				t.Errorf("normalizeAt(%q) returned %d characters, want 12", test.input, len(got))
			}
		})
	}
}

func TestNormalizeCenturyRule(t *testing.T) {
	// The five-year rule compares against the offset of the current year
	// from 2000, not the person's age: 20YY is inferred only when
	// currentYear - 2000 - YY >= 5. In 2024 a "21" year gives 3, below
	// the cutoff, so it resolves to 1921 rather than 2021.
	got, err := normalizeAt("210101-1234", reference)
	if err != nil {
		t.Fatalf("normalizeAt failed: %v", err)
	}
	if got != "192101011234" {
		t.Errorf("got %q, want 192101011234", got)
	}
}

func TestNormalizeRejects(t *testing.T) {
	inputs := []string{
		"",
		"80-01-01-1234",
		"8001011",
		"80010112345",
		"1980010112345",
		"800101*1234",
		"notanumber",
		"80 01 01 1234",
	}
	for _, input := range inputs {
		if _, err := normalizeAt(input, reference); !errors.Is(err, ErrInvalid) {
			t.Errorf("normalizeAt(%q) = %v, want ErrInvalid", input, err)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("198001011234") {
		t.Error("Valid rejected a canonical personnummer")
	}
	if Valid("garbage") {
		t.Error("Valid accepted garbage")
	}
}

func TestNormalizeDigitsOnly(t *testing.T) {
	accepted := []string{"198001011234", "800101-1234", "460101+1234", "2101011234"}
	for _, input := range accepted {
		got, err := normalizeAt(input, reference)
		if err != nil {
			t.Fatalf("normalizeAt(%q) failed: %v", input, err)
		}
		for index, character := range got {
			if character < '0' || character > '9' {
				t.Errorf("normalizeAt(%q)[%d] = %q, want an ASCII digit", input, index, character)
			}
		}
	}
}
