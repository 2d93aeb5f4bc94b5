// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ResultState is the lifecycle state of a component result.
type ResultState int

const (
	// StateAbsent means no server row exists yet.
	StateAbsent ResultState = iota
	// StateDraft is an editable server row awaiting finalisation.
	StateDraft
	// StateFinalized is a row marked ready for attestation. An
	// authorised reporter may still edit it.
	StateFinalized
	// StateAttested is a sealed row. Mutation is rejected.
	StateAttested
)

func (s ResultState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateDraft:
		return "draft"
	case StateFinalized:
		return "finalized"
	case StateAttested:
		return "attested"
	}
	return fmt.Sprintf("ResultState(%d)", int(s))
}

// CourseResult is one student's result on one course component. It
// advances absent -> draft -> finalized -> attested; writes carry the
// server's opaque concurrency token and never retry on conflict.
type CourseResult struct {
	client       *Client
	registration *CourseRegistration
	component    *CourseComponent
	gradeScale   *GradeScale

	state    ResultState
	grade    *Grade
	date     time.Time
	modified bool

	uid            string
	resultsID      string
	studyResultsID string
	// lastModified is the server's optimistic-concurrency token,
	// round-tripped verbatim. Nil for absent and attested results.
	lastModified json.RawMessage
}

// finalised rows carry this process status in the draft record.
const processStatusFinalized = 2

func newCourseResult(ctx context.Context, registration *CourseRegistration, component *CourseComponent, record *resultRecord, attested bool) (*CourseResult, error) {
	scale := component.GradeScale()
	grade, err := scale.gradeByID(record.Betygsgrad)
	if err != nil {
		return nil, fmt.Errorf("ladok: result for %s: %w", component.Code(), err)
	}

	// A draft saved without an examination date arrives with the field
	// empty. Keep the zero time; a date is still required to push.
	var date time.Time
	if record.Examinationsdatum != "" {
		date, err = parseServerDate(record.Examinationsdatum)
		if err != nil {
			return nil, fmt.Errorf("ladok: result for %s: %w", component.Code(), err)
		}
	}

	state := StateDraft
	switch {
	case attested:
		state = StateAttested
	case record.ProcessStatus == processStatusFinalized:
		state = StateFinalized
	}

	result := &CourseResult{
		client:         registration.client,
		registration:   registration,
		component:      component,
		gradeScale:     scale,
		state:          state,
		grade:          grade,
		date:           date,
		uid:            record.Uid,
		resultsID:      record.ResultatUID,
		studyResultsID: record.StudieresultatUID,
	}
	if state != StateAttested {
		result.lastModified = record.SenasteResultatandring
	}
	return result, nil
}

// newAbsentResult synthesises a result for a component the server has
// no row for. It carries the study-results container id so its first
// Push can create the row.
func newAbsentResult(registration *CourseRegistration, component *CourseComponent, studyResultsID string) *CourseResult {
	return &CourseResult{
		client:         registration.client,
		registration:   registration,
		component:      component,
		gradeScale:     component.GradeScale(),
		state:          StateAbsent,
		studyResultsID: studyResultsID,
	}
}

// Component returns the component the result is for.
func (r *CourseResult) Component() *CourseComponent { return r.component }

// GradeScale returns the component's grade scale.
func (r *CourseResult) GradeScale() *GradeScale { return r.gradeScale }

// Grade returns the grade, or nil when none is set.
func (r *CourseResult) Grade() *Grade { return r.grade }

// Date returns the examination date; zero when no grade is set.
func (r *CourseResult) Date() time.Time { return r.date }

// State returns the lifecycle state.
func (r *CourseResult) State() ResultState { return r.state }

// Attested reports whether the result is sealed.
func (r *CourseResult) Attested() bool { return r.state == StateAttested }

// Modified reports whether there are unpushed changes.
func (r *CourseResult) Modified() bool { return r.modified }

// SetGrade sets a grade by code and an examination date string
// ("2006-01-02" or "20060102"), then pushes. Attested results reject
// with ErrAlreadyAttested before anything else is checked, and no
// request is issued.
func (r *CourseResult) SetGrade(ctx context.Context, gradeCode, date string) error {
	if r.state == StateAttested {
		return fmt.Errorf("ladok: %s: %w", r.component.Code(), ErrAlreadyAttested)
	}

	grade, err := r.gradeScale.GradeByCode(gradeCode)
	if err != nil {
		return err
	}

	parsed, err := parseExaminationDate(date)
	if err != nil {
		return err
	}

	return r.SetGradeValue(ctx, grade, parsed)
}

// SetGradeValue sets a grade and date, then pushes. The grade must
// belong to the component's scale.
func (r *CourseResult) SetGradeValue(ctx context.Context, grade *Grade, date time.Time) error {
	if r.state == StateAttested {
		return fmt.Errorf("ladok: %s: %w", r.component.Code(), ErrAlreadyAttested)
	}
	if !r.gradeScale.Contains(grade) {
		return fmt.Errorf("ladok: grade %s not in scale %s: %w", grade, r.gradeScale.Code, ErrGradeNotInScale)
	}

	r.grade = grade
	r.date = date
	r.modified = true
	return r.Push(ctx)
}

// Push writes the result to the server. Absent results are created
// (POST), existing rows updated (PUT) with the cached concurrency
// token; a stale token surfaces as ErrConcurrentModification and the
// caller decides whether to Pull and re-apply. A no-op when nothing
// is modified.
func (r *CourseResult) Push(ctx context.Context) error {
	if !r.modified || r.state == StateAttested {
		return nil
	}
	if r.grade == nil {
		return fmt.Errorf("ladok: no grade to push for %s", r.component.Code())
	}

	var body []byte
	var err error

	if r.state == StateAbsent {
		body, err = r.client.post(ctx, "/resultat/studieresultat/skapa", createResultRequest{
			Resultat: []createResultEntry{{
				Betygsgrad:            r.grade.ID,
				BetygsskalaID:         r.gradeScale.ID,
				Examinationsdatum:     r.date.Format("2006-01-02"),
				Noteringar:            []string{},
				StudieresultatUID:     r.studyResultsID,
				UtbildningsinstansUID: r.component.InstanceID(),
			}},
		}, mediaResultat)
		if err != nil {
			return fmt.Errorf("ladok: creating result for %s: %w", r.component.Code(), err)
		}
	} else {
		body, err = r.client.put(ctx, "/resultat/studieresultat/uppdatera", updateResultRequest{
			Resultat: []updateResultEntry{{
				ResultatUID:            r.uid,
				Betygsgrad:             r.grade.ID,
				BetygsskalaID:          r.gradeScale.ID,
				Noteringar:             []string{},
				Examinationsdatum:      r.date.Format("2006-01-02"),
				SenasteResultatandring: r.lastModified,
			}},
		}, mediaResultat)
		if err != nil {
			if IsServerStatus(err, http.StatusConflict) {
				return fmt.Errorf("ladok: updating result for %s: %w", r.component.Code(), ErrConcurrentModification)
			}
			return fmt.Errorf("ladok: updating result for %s: %w", r.component.Code(), err)
		}
	}

	var response resultListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("ladok: parsing result response: %w", err)
	}
	if len(response.Resultat) == 0 {
		return fmt.Errorf("ladok: result response for %s carried no record", r.component.Code())
	}

	if err := r.applyRecord(&response.Resultat[0]); err != nil {
		return err
	}
	if r.state == StateAbsent {
		r.state = StateDraft
	}
	r.modified = false
	return nil
}

// Finalize marks a draft ready for attestation (klarmarkera). When
// notify is true the reporter is also named decision-maker, which the
// server interprets as "notify the attestant". Pushes first when
// modified.
func (r *CourseResult) Finalize(ctx context.Context, notify bool) error {
	switch r.state {
	case StateAttested:
		return fmt.Errorf("ladok: %s: %w", r.component.Code(), ErrAlreadyAttested)
	case StateFinalized:
		return fmt.Errorf("ladok: result for %s is already finalized", r.component.Code())
	case StateAbsent:
		return fmt.Errorf("ladok: no draft to finalize for %s", r.component.Code())
	}

	if r.modified {
		if err := r.Push(ctx); err != nil {
			return err
		}
	}

	userInfo, err := r.client.UserInfo(ctx)
	if err != nil {
		return err
	}

	request := finalizeResultRequest{
		Beslutsfattare:          []string{},
		RattadAv:                []string{userInfo.ID},
		ResultatetsSenastSparad: r.lastModified,
	}
	if notify {
		request.Beslutsfattare = []string{userInfo.ID}
	}

	body, err := r.client.put(ctx,
		"/resultat/studieresultat/resultat/"+r.resultsID+"/klarmarkera",
		request, mediaResultat)
	if err != nil {
		if IsServerStatus(err, http.StatusConflict) {
			return fmt.Errorf("ladok: finalizing result for %s: %w", r.component.Code(), ErrConcurrentModification)
		}
		return fmt.Errorf("ladok: finalizing result for %s: %w", r.component.Code(), err)
	}

	var record resultRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return fmt.Errorf("ladok: parsing finalize response: %w", err)
	}
	if err := r.applyRecord(&record); err != nil {
		return err
	}
	r.state = StateFinalized
	return nil
}

// applyRecord refreshes identity, grade, date, and the concurrency
// token from a server record.
func (r *CourseResult) applyRecord(record *resultRecord) error {
	grade, err := r.gradeScale.gradeByID(record.Betygsgrad)
	if err != nil {
		return fmt.Errorf("ladok: result response for %s: %w", r.component.Code(), err)
	}
	date, err := parseServerDate(record.Examinationsdatum)
	if err != nil {
		return fmt.Errorf("ladok: result response for %s: %w", r.component.Code(), err)
	}

	r.grade = grade
	r.date = date
	r.uid = record.Uid
	if record.ResultatUID != "" {
		r.resultsID = record.ResultatUID
	}
	if record.StudieresultatUID != "" {
		r.studyResultsID = record.StudieresultatUID
	}
	r.lastModified = record.SenasteResultatandring
	return nil
}

// parseExaminationDate accepts the ISO form and the compact form used
// in batch report files.
func parseExaminationDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "20060102"} {
		if date, err := time.Parse(layout, value); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("ladok: examination date %q: %w", value, ErrInvalidDate)
}
