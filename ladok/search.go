// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// RoundQuery filters the course-round search. Empty fields are
// omitted from the query.
type RoundQuery struct {
	// Code is the course code, e.g. "DD1321".
	Code string
	// Name matches against the course name.
	Name string
	// RoundCode is the round code, e.g. "50287".
	RoundCode string
}

// SearchCourseRounds queries the server for course rounds. This is
// the entry point when the caller does not already hold a round's
// identifiers. The paging parameters are fixed: one page of at most a
// hundred rounds.
func (c *Client) SearchCourseRounds(ctx context.Context, query RoundQuery) ([]*CourseRound, error) {
	parameters := url.Values{}
	if query.Code != "" {
		parameters.Set("kurskod", query.Code)
	}
	if query.Name != "" {
		parameters.Set("benamning", query.Name)
	}
	if query.RoundCode != "" {
		parameters.Set("tillfalleskod", query.RoundCode)
	}
	parameters.Set("page", "1")
	parameters.Set("limit", "100")
	parameters.Set("skipCount", "false")
	parameters.Set("sprakkod", "sv")

	body, err := c.get(ctx, "/resultat/kurstillfalle/filtrera?"+parameters.Encode(), mediaResultat)
	if err != nil {
		return nil, fmt.Errorf("ladok: searching course rounds: %w", err)
	}

	var response roundSearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("ladok: parsing course round search: %w", err)
	}

	rounds := make([]*CourseRound, 0, len(response.Resultat))
	for index := range response.Resultat {
		round, err := newCourseRound(ctx, c, &response.Resultat[index])
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, nil
}
