// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"encoding/json"
	"fmt"
)

// Scrub makes a raw server payload shareable: it removes every "link"
// member and replaces names and personnummer with fixed placeholder
// values. Used for capturing test fixtures from live responses.
func Scrub(payload []byte) ([]byte, error) {
	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		return nil, fmt.Errorf("ladok: scrubbing non-JSON payload: %w", err)
	}

	scrubbed, err := json.MarshalIndent(scrubValue(value), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ladok: re-encoding scrubbed payload: %w", err)
	}
	return scrubbed, nil
}

var pseudonyms = map[string]string{
	"Fornamn":      "Student",
	"Efternamn":    "Studentsson",
	"Personnummer": "191234561234",
}

func scrubValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		delete(typed, "link")
		for key := range typed {
			if replacement, ok := pseudonyms[key]; ok {
				typed[key] = replacement
				continue
			}
			typed[key] = scrubValue(typed[key])
		}
		return typed
	case []any:
		for index := range typed {
			typed[index] = scrubValue(typed[index])
		}
		return typed
	default:
		return value
	}
}
