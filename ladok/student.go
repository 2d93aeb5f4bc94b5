// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/ladok-go/ladok/lib/personnummer"
)

// Student is a student and their course registrations. Personal
// attributes and registrations are independent lazy groups: reading a
// name does not fetch courses, and reading courses does not refetch
// the name.
type Student struct {
	client *Client

	// Exactly one of these is set at construction; the other is
	// learned at first hydration and never changes after.
	ladokID      string
	personnummer string

	personalLoaded bool
	firstName      string
	lastName       string
	alive          bool

	courses []*CourseRegistration
}

// Student constructs a student handle from either a personnummer (any
// accepted input form) or a LADOK id. No request is issued until an
// attribute is read.
func (c *Client) Student(id string) *Student {
	if normalized, err := personnummer.Normalize(id); err == nil {
		return &Student{client: c, personnummer: normalized}
	}
	return &Student{client: c, ladokID: id}
}

// LadokID returns the student's LADOK id, hydrating if necessary.
func (s *Student) LadokID(ctx context.Context) (string, error) {
	if s.ladokID != "" {
		return s.ladokID, nil
	}
	if err := s.hydratePersonal(ctx); err != nil {
		return "", err
	}
	return s.ladokID, nil
}

// Personnummer returns the twelve-digit personnummer.
func (s *Student) Personnummer(ctx context.Context) (string, error) {
	if s.personnummer != "" {
		return s.personnummer, nil
	}
	if err := s.hydratePersonal(ctx); err != nil {
		return "", err
	}
	return s.personnummer, nil
}

// FirstName returns the student's first name.
func (s *Student) FirstName(ctx context.Context) (string, error) {
	if err := s.ensurePersonal(ctx); err != nil {
		return "", err
	}
	return s.firstName, nil
}

// LastName returns the student's last name.
func (s *Student) LastName(ctx context.Context) (string, error) {
	if err := s.ensurePersonal(ctx); err != nil {
		return "", err
	}
	return s.lastName, nil
}

// Alive reports whether the student is alive.
func (s *Student) Alive(ctx context.Context) (bool, error) {
	if err := s.ensurePersonal(ctx); err != nil {
		return false, err
	}
	return s.alive, nil
}

// Pull discards all cached data and re-hydrates the personal
// attributes. Registrations are refetched on next access.
func (s *Student) Pull(ctx context.Context) error {
	s.personalLoaded = false
	s.courses = nil
	return s.hydratePersonal(ctx)
}

func (s *Student) ensurePersonal(ctx context.Context) error {
	if s.personalLoaded {
		return nil
	}
	return s.hydratePersonal(ctx)
}

func (s *Student) hydratePersonal(ctx context.Context) error {
	var record studentRecord

	switch {
	case s.ladokID != "":
		body, err := s.client.get(ctx, "/studentinformation/student/"+s.ladokID, mediaStudentinformation)
		if err != nil {
			return fmt.Errorf("ladok: fetching student %s: %w", s.ladokID, err)
		}
		if err := json.Unmarshal(body, &record); err != nil {
			return fmt.Errorf("ladok: parsing student record: %w", err)
		}

	case s.personnummer != "":
		query := url.Values{}
		query.Set("limit", "2")
		query.Set("page", "1")
		query.Set("personnummer", s.personnummer)
		query.Set("skipCount", "false")
		query.Set("sprakkod", "sv")
		// Multiple orderby values; url.Values.Set would keep only one.
		path := "/studentinformation/student/filtrera?" +
			"orderby=EFTERNAMN_ASC&orderby=FORNAMN_ASC&orderby=PERSONNUMMER_ASC&" + query.Encode()

		body, err := s.client.get(ctx, path, mediaStudentinformation)
		if err != nil {
			return fmt.Errorf("ladok: searching student: %w", err)
		}
		var response studentFilterResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return fmt.Errorf("ladok: parsing student search: %w", err)
		}
		if len(response.Resultat) != 1 {
			return fmt.Errorf("ladok: personnummer search returned %d records: %w",
				len(response.Resultat), ErrStudentNotFound)
		}
		record = response.Resultat[0]

	default:
		return fmt.Errorf("ladok: student has neither personnummer nor LADOK id: %w", ErrStudentNotFound)
	}

	s.ladokID = record.Uid
	s.personnummer = record.Personnummer
	s.firstName = record.Fornamn
	s.lastName = record.Efternamn
	s.alive = !record.Avliden
	s.personalLoaded = true
	return nil
}

// Courses returns the student's current course registrations, fetched
// as a group on first access.
func (s *Student) Courses(ctx context.Context) ([]*CourseRegistration, error) {
	if s.courses != nil {
		return s.courses, nil
	}

	ladokID, err := s.LadokID(ctx)
	if err != nil {
		return nil, err
	}

	body, err := s.client.get(ctx,
		"/studiedeltagande/tillfallesdeltagande/kurstillfallesdeltagande/student/"+ladokID,
		mediaStudiedeltagande)
	if err != nil {
		return nil, fmt.Errorf("ladok: fetching registrations: %w", err)
	}

	var response participationResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("ladok: parsing registrations: %w", err)
	}

	registrations := make([]*CourseRegistration, 0, len(response.Tillfallesdeltaganden))
	for _, participation := range response.Tillfallesdeltaganden {
		// Non-current rows and rows without a course code are study
		// programmes or cancelled participations.
		if !participation.Nuvarande || participation.Utbildningsinformation.Utbildningskod == "" {
			continue
		}
		registration, err := newCourseRegistration(ctx, s.client, s, &participation.Utbildningsinformation)
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, registration)
	}

	s.courses = registrations
	return registrations, nil
}

// CourseByCode returns the registration whose course code matches, or
// ErrCourseNotFound.
func (s *Student) CourseByCode(ctx context.Context, code string) (*CourseRegistration, error) {
	registrations, err := s.Courses(ctx)
	if err != nil {
		return nil, err
	}
	for _, registration := range registrations {
		if registration.Code() == code {
			return registration, nil
		}
	}
	return nil, fmt.Errorf("ladok: no registration for course %q: %w", code, ErrCourseNotFound)
}
