// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeReportFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grades.jsonc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing report file: %v", err)
	}
	return path
}

func TestReadReportFile(t *testing.T) {
	path := writeReportFile(t, `// grades for DD1321, spring 2024
[
  {"component": "LAB1", "grade": "P", "date": "2024-03-15"},
  /* re-exam */
  {"component": "TEN1", "grade": "B", "date": "2024-06-01"}, // trailing comma ok
]
`)

	entries, err := readReportFile(path)
	if err != nil {
		t.Fatalf("readReportFile() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Component != "LAB1" || entries[0].Grade != "P" || entries[0].Date != "2024-03-15" {
		t.Errorf("entries[0] = %+v, want LAB1/P/2024-03-15", entries[0])
	}
	if entries[1].Component != "TEN1" || entries[1].Grade != "B" || entries[1].Date != "2024-06-01" {
		t.Errorf("entries[1] = %+v, want TEN1/B/2024-06-01", entries[1])
	}
}

func TestReadReportFile_MissingField(t *testing.T) {
	path := writeReportFile(t, `[{"component": "LAB1", "grade": "P"}]`)

	_, err := readReportFile(path)
	if err == nil {
		t.Fatal("readReportFile() = nil, want error for missing date")
	}
	if !strings.Contains(err.Error(), "entry 0") {
		t.Errorf("error = %q, should name the offending entry", err.Error())
	}
}

func TestReadReportFile_NotFound(t *testing.T) {
	if _, err := readReportFile(filepath.Join(t.TempDir(), "missing.jsonc")); err == nil {
		t.Fatal("readReportFile() = nil, want error for missing file")
	}
}

func TestReadReportFile_Malformed(t *testing.T) {
	path := writeReportFile(t, `{"component": "LAB1"}`)

	_, err := readReportFile(path)
	if err == nil {
		t.Fatal("readReportFile() = nil, want error for non-array input")
	}
	if !strings.Contains(err.Error(), "parsing") {
		t.Errorf("error = %q, should mention parsing", err.Error())
	}
}
