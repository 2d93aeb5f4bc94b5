// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CourseInstance is a versioned course definition, the parent of one
// or more rounds. Constructed either lazily from an instance id or
// fully from a server record; equality is by instance id.
type CourseInstance struct {
	client *Client

	instanceID string
	hydrated   bool

	educationID string
	code        string
	name        map[string]string
	version     int
	credits     float64
	unit        string
	gradeScale  *GradeScale
	components  []*CourseComponent
}

// CourseInstance constructs a lazy handle from an instance id. The
// first accessor triggers the batch-read of the instance and its
// components.
func (c *Client) CourseInstance(instanceID string) *CourseInstance {
	return &CourseInstance{client: c, instanceID: instanceID}
}

// newCourseInstance builds a hydrated instance from a full record.
func newCourseInstance(ctx context.Context, client *Client, record *instanceRecord) (*CourseInstance, error) {
	instance := &CourseInstance{client: client, instanceID: record.instanceID()}
	if err := instance.assign(ctx, record); err != nil {
		return nil, err
	}
	return instance, nil
}

func (ci *CourseInstance) assign(ctx context.Context, record *instanceRecord) error {
	gradeScale, err := ci.client.gradeScaleByNumber(ctx, record.BetygsskalaID)
	if err != nil {
		return fmt.Errorf("ladok: course %s: %w", record.Utbildningskod, err)
	}

	components := make([]*CourseComponent, 0, len(record.Moduler))
	for index := range record.Moduler {
		component, err := newCourseComponent(ctx, ci.client, &record.Moduler[index])
		if err != nil {
			return err
		}
		components = append(components, component)
	}

	ci.educationID = record.UtbildningUID
	ci.code = record.Utbildningskod
	ci.name = record.Benamning.toMap()
	ci.version = record.Versionsnummer
	ci.credits = record.Omfattning
	ci.unit = record.Enhet
	ci.gradeScale = gradeScale
	ci.components = components
	ci.hydrated = true
	return nil
}

// Pull refetches the instance and its components from the server.
func (ci *CourseInstance) Pull(ctx context.Context) error {
	body, err := ci.client.put(ctx, "/resultat/utbildningsinstans/moduler",
		moduleBatchRequest{Identitet: []string{ci.instanceID}}, mediaResultat)
	if err != nil {
		return fmt.Errorf("ladok: fetching course instance %s: %w", ci.instanceID, err)
	}

	var response moduleBatchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("ladok: parsing course instance: %w", err)
	}
	if len(response.Utbildningsinstans) == 0 {
		return fmt.Errorf("ladok: course instance %s: %w", ci.instanceID, ErrCourseNotFound)
	}
	return ci.assign(ctx, &response.Utbildningsinstans[0])
}

func (ci *CourseInstance) ensure(ctx context.Context) error {
	if ci.hydrated {
		return nil
	}
	return ci.Pull(ctx)
}

// InstanceID returns the LADOK id of the instance. Always known.
func (ci *CourseInstance) InstanceID() string { return ci.instanceID }

// EducationID returns the LADOK id of the education the instance
// belongs to.
func (ci *CourseInstance) EducationID(ctx context.Context) (string, error) {
	if err := ci.ensure(ctx); err != nil {
		return "", err
	}
	return ci.educationID, nil
}

// Code returns the course code, e.g. "DD1321".
func (ci *CourseInstance) Code(ctx context.Context) (string, error) {
	if err := ci.ensure(ctx); err != nil {
		return "", err
	}
	return ci.code, nil
}

// Name returns the course name per language code.
func (ci *CourseInstance) Name(ctx context.Context) (map[string]string, error) {
	if err := ci.ensure(ctx); err != nil {
		return nil, err
	}
	name := make(map[string]string, len(ci.name))
	for lang, text := range ci.name {
		name[lang] = text
	}
	return name, nil
}

// Version returns the instance version number.
func (ci *CourseInstance) Version(ctx context.Context) (int, error) {
	if err := ci.ensure(ctx); err != nil {
		return 0, err
	}
	return ci.version, nil
}

// Credits returns the course's credits.
func (ci *CourseInstance) Credits(ctx context.Context) (float64, error) {
	if err := ci.ensure(ctx); err != nil {
		return 0, err
	}
	return ci.credits, nil
}

// Unit returns the unit of the credits.
func (ci *CourseInstance) Unit(ctx context.Context) (string, error) {
	if err := ci.ensure(ctx); err != nil {
		return "", err
	}
	return ci.unit, nil
}

// GradeScale returns the course-level grade scale. Components carry
// their own.
func (ci *CourseInstance) GradeScale(ctx context.Context) (*GradeScale, error) {
	if err := ci.ensure(ctx); err != nil {
		return nil, err
	}
	return ci.gradeScale, nil
}

// Components returns the course's gradable components in server order.
func (ci *CourseInstance) Components(ctx context.Context) ([]*CourseComponent, error) {
	if err := ci.ensure(ctx); err != nil {
		return nil, err
	}
	return ci.components, nil
}

// ComponentByCode returns the component with the given code, e.g.
// "LAB1", or ErrComponentNotFound.
func (ci *CourseInstance) ComponentByCode(ctx context.Context, code string) (*CourseComponent, error) {
	components, err := ci.Components(ctx)
	if err != nil {
		return nil, err
	}
	for _, component := range components {
		if component.Code() == code {
			return component, nil
		}
	}
	return nil, fmt.Errorf("ladok: component %q: %w", code, ErrComponentNotFound)
}

// CourseComponent is a gradable sub-unit of a course (exam, lab, ...).
// A static value: its grade scale is its own, not the course's.
type CourseComponent struct {
	instanceID  string
	educationID string
	code        string
	description string
	credits     float64
	unit        string
	gradeScale  *GradeScale
}

func newCourseComponent(ctx context.Context, client *Client, record *moduleRecord) (*CourseComponent, error) {
	gradeScale, err := client.gradeScaleByNumber(ctx, record.BetygsskalaID)
	if err != nil {
		return nil, fmt.Errorf("ladok: component %s: %w", record.Utbildningskod, err)
	}
	return &CourseComponent{
		instanceID:  record.instanceID(),
		educationID: record.UtbildningUID,
		code:        record.Utbildningskod,
		description: record.Benamning.text("sv"),
		credits:     record.Omfattning,
		unit:        record.Enhet,
		gradeScale:  gradeScale,
	}, nil
}

// InstanceID returns the component's own instance id (distinct from
// the course instance id).
func (cc *CourseComponent) InstanceID() string { return cc.instanceID }

// EducationID returns the component's education id.
func (cc *CourseComponent) EducationID() string { return cc.educationID }

// Code returns the component code as in the syllabus, e.g. "TEN1".
func (cc *CourseComponent) Code() string { return cc.code }

// Description returns the short textual label of the component.
func (cc *CourseComponent) Description() string { return cc.description }

// Credits returns the component's credits.
func (cc *CourseComponent) Credits() float64 { return cc.credits }

// Unit returns the unit of the credits.
func (cc *CourseComponent) Unit() string { return cc.unit }

// GradeScale returns the component's grade scale.
func (cc *CourseComponent) GradeScale() *GradeScale { return cc.gradeScale }

func (cc *CourseComponent) String() string { return cc.code }

// CourseRound is one scheduled offering of a course instance.
type CourseRound struct {
	*CourseInstance

	roundID   string
	roundCode string
	start     time.Time
	end       time.Time
}

func newCourseRound(ctx context.Context, client *Client, record *roundRecord) (*CourseRound, error) {
	instance, err := newCourseInstance(ctx, client, &record.Utbildningsinstans)
	if err != nil {
		return nil, err
	}

	start, err := parseServerDate(record.Startdatum)
	if err != nil {
		return nil, fmt.Errorf("ladok: round %s start date: %w", record.TillfallesKod, err)
	}
	end, err := parseServerDate(record.Slutdatum)
	if err != nil {
		return nil, fmt.Errorf("ladok: round %s end date: %w", record.TillfallesKod, err)
	}

	return &CourseRound{
		CourseInstance: instance,
		roundID:        record.Uid,
		roundCode:      record.TillfallesKod,
		start:          start,
		end:            end,
	}, nil
}

// RoundID returns the LADOK id of the round.
func (cr *CourseRound) RoundID() string { return cr.roundID }

// RoundCode returns the round code, e.g. "50287".
func (cr *CourseRound) RoundCode() string { return cr.roundCode }

// Start returns the round's start date.
func (cr *CourseRound) Start() time.Time { return cr.start }

// End returns the round's end date.
func (cr *CourseRound) End() time.Time { return cr.end }

// ParticipantFilter selects participation states for Participants.
// The zero value selects ongoing, registered, and finished.
type ParticipantFilter struct {
	NotStarted bool
	Ongoing    bool
	Registered bool
	Finished   bool
	Cancelled  bool
}

func (f ParticipantFilter) states() []string {
	var states []string
	if f.NotStarted {
		states = append(states, "EJ_PABORJAD")
	}
	if f.Ongoing {
		states = append(states, "PAGAENDE")
	}
	if f.Registered {
		states = append(states, "REGISTRERAD")
	}
	if f.Finished {
		states = append(states, "AVKLARAD")
	}
	if f.Cancelled {
		states = append(states, "AVBROTT")
	}
	if states == nil {
		states = []string{"PAGAENDE", "REGISTRERAD", "AVKLARAD"}
	}
	return states
}

// Participants returns the raw participation records of the round.
// The records keep the server's shape; Scrub strips links and
// pseudonymises them for fixture capture.
func (cr *CourseRound) Participants(ctx context.Context, filter ParticipantFilter) ([]json.RawMessage, error) {
	request := participantSearchRequest{
		Page:  1,
		Limit: 400,
		OrderBy: []string{
			"EFTERNAMN_ASC",
			"FORNAMN_ASC",
			"PERSONNUMMER_ASC",
			"KONTROLLERAD_KURS_ASC",
		},
		Deltagaretillstand:      filter.states(),
		UtbildningstillfalleUID: []string{cr.roundID},
	}

	body, err := cr.client.put(ctx, "/studiedeltagande/deltagare/kurstillfalle", request, mediaStudiedeltagande)
	if err != nil {
		return nil, fmt.Errorf("ladok: fetching participants: %w", err)
	}

	var response participantSearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("ladok: parsing participants: %w", err)
	}
	return response.Resultat, nil
}

// CourseRegistration is one student's participation in one course
// round. Always constructed from a full server record, via
// Student.Courses.
type CourseRegistration struct {
	*CourseInstance

	student *Student
	roundID string
	start   time.Time
	end     time.Time

	resultsLoaded  bool
	studyResultsID string
	results        []*CourseResult
}

func newCourseRegistration(ctx context.Context, client *Client, student *Student, record *instanceRecord) (*CourseRegistration, error) {
	instance, err := newCourseInstance(ctx, client, record)
	if err != nil {
		return nil, err
	}

	registration := &CourseRegistration{
		CourseInstance: instance,
		student:        student,
		roundID:        record.UtbildningstillfalleUID,
	}
	if record.Studieperiod != nil {
		registration.start, err = parseServerDate(record.Studieperiod.Startdatum)
		if err != nil {
			return nil, fmt.Errorf("ladok: registration %s start date: %w", record.Utbildningskod, err)
		}
		registration.end, err = parseServerDate(record.Studieperiod.Slutdatum)
		if err != nil {
			return nil, fmt.Errorf("ladok: registration %s end date: %w", record.Utbildningskod, err)
		}
	}
	return registration, nil
}

// Student returns the registered student.
func (r *CourseRegistration) Student() *Student { return r.student }

// Code returns the course code. Registrations are constructed from a
// full record, so the instance is always hydrated.
func (r *CourseRegistration) Code() string { return r.code }

// RoundID returns the LADOK id of the course round.
func (r *CourseRegistration) RoundID() string { return r.roundID }

// Start returns the study period's start date.
func (r *CourseRegistration) Start() time.Time { return r.start }

// End returns the study period's end date.
func (r *CourseRegistration) End() time.Time { return r.end }

// Results returns one CourseResult per component of the instance,
// fetched on first access. Components without a server row get a
// synthesised absent result whose first Push creates the row.
func (r *CourseRegistration) Results(ctx context.Context) ([]*CourseResult, error) {
	if r.resultsLoaded {
		return r.results, nil
	}

	studentID, err := r.student.LadokID(ctx)
	if err != nil {
		return nil, err
	}

	body, err := r.client.get(ctx,
		"/resultat/studieresultat/student/"+studentID+"/utbildningstillfalle/"+r.roundID,
		mediaResultat)
	if err != nil {
		return nil, fmt.Errorf("ladok: fetching results: %w", err)
	}

	var response studyResultsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("ladok: parsing results: %w", err)
	}

	components, err := r.Components(ctx)
	if err != nil {
		return nil, err
	}

	r.studyResultsID = response.Uid
	results := make([]*CourseResult, 0, len(components))
	for _, entry := range response.ResultatPaUtbildningar {
		// The draft is the editable record; prefer it over the
		// attested one when both exist.
		record := entry.Arbetsunderlag
		attested := false
		if record == nil {
			record = entry.SenastAttesteradeResultat
			attested = true
		}
		if record == nil {
			continue
		}

		component := componentByInstanceID(components, record.UtbildningsinstansUID)
		if component == nil {
			// Course-level rows and rows for components not in this
			// instance version carry no reportable component.
			continue
		}

		result, err := newCourseResult(ctx, r, component, record, attested)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	for _, component := range components {
		if resultByComponent(results, component) == nil {
			results = append(results, newAbsentResult(r, component, response.Uid))
		}
	}

	r.results = results
	r.resultsLoaded = true
	return results, nil
}

// ResultFor returns the result for the component with the given code.
func (r *CourseRegistration) ResultFor(ctx context.Context, componentCode string) (*CourseResult, error) {
	results, err := r.Results(ctx)
	if err != nil {
		return nil, err
	}
	for _, result := range results {
		if result.Component().Code() == componentCode {
			return result, nil
		}
	}
	return nil, fmt.Errorf("ladok: no result for component %q: %w", componentCode, ErrComponentNotFound)
}

// Push pushes every modified child result.
func (r *CourseRegistration) Push(ctx context.Context) error {
	results, err := r.Results(ctx)
	if err != nil {
		return err
	}
	for _, result := range results {
		if err := result.Push(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Pull discards the cached results and re-hydrates the instance. The
// next Results call refetches from the server.
func (r *CourseRegistration) Pull(ctx context.Context) error {
	r.resultsLoaded = false
	r.results = nil
	return r.CourseInstance.Pull(ctx)
}

func componentByInstanceID(components []*CourseComponent, instanceID string) *CourseComponent {
	for _, component := range components {
		if component.InstanceID() == instanceID {
			return component
		}
	}
	return nil
}

func resultByComponent(results []*CourseResult, component *CourseComponent) *CourseResult {
	for _, result := range results {
		if result.Component() == component {
			return result
		}
	}
	return nil
}

// parseServerDate parses the server's ISO date strings.
func parseServerDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", value, ErrInvalidDate)
	}
	return date, nil
}
