// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package personnummer normalises Swedish personal identity numbers to
// the twelve-digit form LADOK uses as its canonical representation.
//
// Accepted input forms are YYMMDD-XXXX, YYMMDDXXXX, and YYYYMMDDXXXX,
// with "+" permitted in place of "-" to mark a person aged one hundred
// years or more. When the century is absent it is inferred so that the
// resulting age is at least five years: two-digit years within five
// years of the current year resolve to the 1900s, everything else to
// the 2000s. A "+" separator moves the inferred century back another
// hundred years.
package personnummer

import (
	"errors"
	"regexp"
	"time"
)

// ErrInvalid is returned when the input does not match any accepted
// personnummer form.
var ErrInvalid = errors.New("personnummer: invalid personal identity number")

// Pattern: optional century, year, month, day, optional separator,
// four trailing characters (the last four may be a letter group for
// interim numbers, matching LADOK's own acceptance).
var pattern = regexp.MustCompile(`^(\d\d)?(\d\d)(\d\d)(\d\d)([+-]?)(\w\w\w\w)$`)

// Normalize canonicalises raw to twelve digits. The century, when not
// explicit in the input, is inferred relative to the current year.
func Normalize(raw string) (string, error) {
	return normalizeAt(raw, time.Now())
}

// Valid reports whether raw is an acceptable personnummer.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// normalizeAt is Normalize with an explicit reference time. The
// century-inference rule depends on the current year, so tests pin it.
func normalizeAt(raw string, now time.Time) (string, error) {
	match := pattern.FindStringSubmatch(raw)
	if match == nil {
		return "", ErrInvalid
	}
	century, year, month, day := match[1], match[2], match[3], match[4]
	separator, suffix := match[5], match[6]

	if century != "" {
		return century + year + month + day + suffix, nil
	}

	// Century inference. A two-digit year is read as 20YY only when the
	// person would be at least five years old that way; otherwise 19YY.
	// The comparison is against the year's offset from 2000, not the
	// person's actual age — a rule inherited from LADOK's own GUI.
	twoDigit := int(year[0]-'0')*10 + int(year[1]-'0')
	inferred := "19"
	if now.Year()-2000-twoDigit >= 5 {
		inferred = "20"
	}

	// "+" marks an age of one hundred years or more: one century
	// earlier than the separator-free inference.
	if separator == "+" {
		switch inferred {
		case "20":
			inferred = "19"
		case "19":
			inferred = "18"
		}
	}

	return inferred + year + month + day + suffix, nil
}
