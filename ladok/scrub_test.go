// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestScrub(t *testing.T) {
	payload := `{
		"Uid": "participation-1",
		"Fornamn": "Anna",
		"Efternamn": "Andersson",
		"Personnummer": "198101011234",
		"link": [{"rel": "self", "uri": "https://www.start.ladok.se/..."}],
		"Utbildningsinformation": {
			"Utbildningskod": "DD1321",
			"link": {"rel": "self"},
			"Moduler": [
				{"Utbildningskod": "LAB1", "link": []}
			]
		}
	}`

	scrubbed, err := Scrub([]byte(payload))
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}

	if strings.Contains(string(scrubbed), "link") {
		t.Errorf("link members survive:\n%s", scrubbed)
	}
	for _, leaked := range []string{"Anna", "Andersson", "198101011234"} {
		if strings.Contains(string(scrubbed), leaked) {
			t.Errorf("%q survives scrubbing:\n%s", leaked, scrubbed)
		}
	}

	var value map[string]any
	if err := json.Unmarshal(scrubbed, &value); err != nil {
		t.Fatalf("scrubbed payload is not JSON: %v", err)
	}
	if value["Fornamn"] != "Student" || value["Efternamn"] != "Studentsson" {
		t.Errorf("pseudonyms = %v/%v", value["Fornamn"], value["Efternamn"])
	}
	if value["Personnummer"] != "191234561234" {
		t.Errorf("personnummer = %v", value["Personnummer"])
	}
	// Non-personal structure is untouched.
	if value["Uid"] != "participation-1" {
		t.Errorf("uid = %v", value["Uid"])
	}
	education := value["Utbildningsinformation"].(map[string]any)
	if education["Utbildningskod"] != "DD1321" {
		t.Errorf("course code = %v", education["Utbildningskod"])
	}
}

func TestScrub_Arrays(t *testing.T) {
	payload := `[{"Fornamn": "Anna", "link": []}, {"Fornamn": "Bo"}]`

	scrubbed, err := Scrub([]byte(payload))
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}

	var values []map[string]any
	if err := json.Unmarshal(scrubbed, &values); err != nil {
		t.Fatalf("scrubbed payload is not JSON: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("got %d elements, want 2", len(values))
	}
	for index, value := range values {
		if value["Fornamn"] != "Student" {
			t.Errorf("element %d first name = %v, want Student", index, value["Fornamn"])
		}
	}
	if _, ok := values[0]["link"]; ok {
		t.Error("link member survives in array element")
	}
}

func TestScrub_NotJSON(t *testing.T) {
	if _, err := Scrub([]byte("<html>session expired</html>")); err == nil {
		t.Error("Scrub accepted a non-JSON payload")
	}
}
