// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"strings"
	"testing"
)

func TestReadResponse(t *testing.T) {
	data, err := ReadResponse(strings.NewReader(`{"Betygsskala":[]}`))
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if string(data) != `{"Betygsskala":[]}` {
		t.Errorf("unexpected body: %s", data)
	}
}

func TestDecodeResponse(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		var decoded struct {
			Meddelande string `json:"Meddelande"`
		}
		err := DecodeResponse(strings.NewReader(`{"Meddelande":"Felaktig resultatversion"}`), &decoded)
		if err != nil {
			t.Fatalf("DecodeResponse failed: %v", err)
		}
		if decoded.Meddelande != "Felaktig resultatversion" {
			t.Errorf("unexpected Meddelande: %q", decoded.Meddelande)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		var decoded map[string]any
		if err := DecodeResponse(strings.NewReader("<html>"), &decoded); err == nil {
			t.Fatal("expected error for non-JSON body")
		}
	})
}

func TestErrorBody(t *testing.T) {
	if got := ErrorBody(strings.NewReader("forbidden")); got != "forbidden" {
		t.Errorf("ErrorBody = %q, want %q", got, "forbidden")
	}
}
