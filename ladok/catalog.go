// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"context"
	"encoding/json"
	"fmt"
)

// GradeScale is a named set of grades. Immutable once loaded; within a
// session every lookup returns the same *GradeScale value, so pointer
// equality holds for scales and their grades.
type GradeScale struct {
	ID     int
	Code   string
	Name   string
	Grades []*Grade
}

// Grade is one entry of a grade scale. Accepted reports whether the
// grade counts as a pass.
type Grade struct {
	ID       int
	Code     string
	Accepted bool
}

func (g *Grade) String() string { return g.Code }

// GradeByCode returns the scale's grade with the given code, or
// ErrGradeNotInScale.
func (s *GradeScale) GradeByCode(code string) (*Grade, error) {
	for _, grade := range s.Grades {
		if grade.Code == code {
			return grade, nil
		}
	}
	return nil, fmt.Errorf("ladok: grade %q not in scale %s: %w", code, s.Code, ErrGradeNotInScale)
}

// gradeByID returns the scale's grade with the given server id.
func (s *GradeScale) gradeByID(id int) (*Grade, error) {
	for _, grade := range s.Grades {
		if grade.ID == id {
			return grade, nil
		}
	}
	return nil, fmt.Errorf("ladok: grade id %d not in scale %s: %w", id, s.Code, ErrGradeNotInScale)
}

// Contains reports whether the grade belongs to this scale.
func (s *GradeScale) Contains(grade *Grade) bool {
	for _, candidate := range s.Grades {
		if candidate == grade {
			return true
		}
	}
	return false
}

// GradeScales returns every grade scale the server knows. Fetched once
// per session and memoised; the registry is read-only.
func (c *Client) GradeScales(ctx context.Context) ([]*GradeScale, error) {
	if c.gradeScales != nil {
		return c.gradeScales, nil
	}

	body, err := c.get(ctx, "/resultat/grunddata/betygsskala", mediaResultat)
	if err != nil {
		return nil, fmt.Errorf("ladok: fetching grade scales: %w", err)
	}

	var response gradeScaleListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("ladok: parsing grade scales: %w", err)
	}

	scales := make([]*GradeScale, 0, len(response.Betygsskala))
	for _, record := range response.Betygsskala {
		scale, err := gradeScaleFromRecord(record)
		if err != nil {
			return nil, err
		}
		scales = append(scales, scale)
	}

	c.gradeScales = scales
	return scales, nil
}

// GradeScaleByID returns the scale with the given server id.
func (c *Client) GradeScaleByID(ctx context.Context, id int) (*GradeScale, error) {
	scales, err := c.GradeScales(ctx)
	if err != nil {
		return nil, err
	}
	for _, scale := range scales {
		if scale.ID == id {
			return scale, nil
		}
	}
	return nil, fmt.Errorf("ladok: grade scale id %d: %w", id, ErrGradeScaleNotFound)
}

// GradeScaleByCode returns the scale with the given code, e.g. "AF".
func (c *Client) GradeScaleByCode(ctx context.Context, code string) (*GradeScale, error) {
	scales, err := c.GradeScales(ctx)
	if err != nil {
		return nil, err
	}
	for _, scale := range scales {
		if scale.Code == code {
			return scale, nil
		}
	}
	return nil, fmt.Errorf("ladok: grade scale %q: %w", code, ErrGradeScaleNotFound)
}

// gradeScaleByNumber resolves the BetygsskalaID of a wire record.
func (c *Client) gradeScaleByNumber(ctx context.Context, id json.Number) (*GradeScale, error) {
	numericID, err := id.Int64()
	if err != nil {
		return nil, fmt.Errorf("ladok: non-numeric grade scale id %q: %w", id, err)
	}
	return c.GradeScaleByID(ctx, int(numericID))
}

func gradeScaleFromRecord(record gradeScaleRecord) (*GradeScale, error) {
	id, err := record.ID.Int64()
	if err != nil {
		return nil, fmt.Errorf("ladok: non-numeric grade scale id %q: %w", record.ID, err)
	}

	scale := &GradeScale{
		ID:     int(id),
		Code:   record.Kod,
		Name:   record.Benamning["sv"],
		Grades: make([]*Grade, 0, len(record.Betygsgrad)),
	}
	for _, gradeData := range record.Betygsgrad {
		gradeID, err := gradeData.ID.Int64()
		if err != nil {
			return nil, fmt.Errorf("ladok: non-numeric grade id %q: %w", gradeData.ID, err)
		}
		scale.Grades = append(scale.Grades, &Grade{
			ID:       int(gradeID),
			Code:     gradeData.Kod,
			Accepted: gradeData.GiltigSomSlutbetyg,
		})
	}
	return scale, nil
}
