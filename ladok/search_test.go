// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"
)

func TestSearchCourseRounds(t *testing.T) {
	f := newFixture(t)
	f.serveGradeScales()

	var query url.Values
	f.handle("/resultat/kurstillfalle/filtrera", func(writer http.ResponseWriter, request *http.Request) {
		query = request.URL.Query()
		io.WriteString(writer, `{"Resultat": [
			{
				"Uid": "round-1",
				"TillfallesKod": "50287",
				"Startdatum": "2024-01-16",
				"Slutdatum": "2024-06-04",
				"Utbildningsinstans": `+instanceBody+`
			},
			{
				"Uid": "round-2",
				"TillfallesKod": "50411",
				"Startdatum": "2024-08-26",
				"Slutdatum": "2025-01-13",
				"Utbildningsinstans": `+instanceBody+`
			}
		]}`)
	})

	rounds, err := f.client.SearchCourseRounds(context.Background(), RoundQuery{
		Code:      "DD1321",
		RoundCode: "50287",
	})
	if err != nil {
		t.Fatalf("SearchCourseRounds failed: %v", err)
	}

	want := map[string]string{
		"kurskod":       "DD1321",
		"tillfalleskod": "50287",
		"page":          "1",
		"limit":         "100",
		"skipCount":     "false",
		"sprakkod":      "sv",
	}
	for key, value := range want {
		if got := query.Get(key); got != value {
			t.Errorf("query %s = %q, want %q", key, got, value)
		}
	}
	// Name was empty and must not appear.
	if query.Has("benamning") {
		t.Errorf("empty name sent as benamning=%q", query.Get("benamning"))
	}

	if len(rounds) != 2 {
		t.Fatalf("got %d rounds, want 2", len(rounds))
	}
	if rounds[0].RoundID() != "round-1" || rounds[0].RoundCode() != "50287" {
		t.Errorf("first round = %s/%s", rounds[0].RoundID(), rounds[0].RoundCode())
	}
	if !rounds[1].Start().Equal(time.Date(2024, 8, 26, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("second round start = %v, want 2024-08-26", rounds[1].Start())
	}

	// Rounds share the course instance data.
	code, err := rounds[1].Code(context.Background())
	if err != nil {
		t.Fatalf("Code failed: %v", err)
	}
	if code != "DD1321" {
		t.Errorf("code = %q, want DD1321", code)
	}
}

func TestSearchCourseRounds_ByName(t *testing.T) {
	f := newFixture(t)
	f.serveGradeScales()

	var query url.Values
	f.handle("/resultat/kurstillfalle/filtrera", func(writer http.ResponseWriter, request *http.Request) {
		query = request.URL.Query()
		io.WriteString(writer, `{"Resultat": []}`)
	})

	rounds, err := f.client.SearchCourseRounds(context.Background(), RoundQuery{Name: "programmering"})
	if err != nil {
		t.Fatalf("SearchCourseRounds failed: %v", err)
	}
	if len(rounds) != 0 {
		t.Errorf("got %d rounds, want 0", len(rounds))
	}
	if got := query.Get("benamning"); got != "programmering" {
		t.Errorf("benamning = %q, want programmering", got)
	}
	if query.Has("kurskod") || query.Has("tillfalleskod") {
		t.Error("empty code fields were sent")
	}
}
