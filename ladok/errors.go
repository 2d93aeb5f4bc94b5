// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import (
	"errors"
	"fmt"
)

// Sentinel errors for caller faults and protocol states. Test with
// errors.Is; they are wrapped with context at the call site.
var (
	// ErrInvalidDate reports a date string the result workflow could
	// not parse.
	ErrInvalidDate = errors.New("ladok: invalid date")

	// ErrGradeNotInScale reports a grade that does not belong to the
	// grade scale of the component being graded.
	ErrGradeNotInScale = errors.New("ladok: grade not in scale")

	// ErrGradeScaleNotFound reports a grade-scale lookup that matched
	// nothing in the server's catalogue.
	ErrGradeScaleNotFound = errors.New("ladok: grade scale not found")

	// ErrStudentNotFound reports a personnummer search that returned
	// zero or more than one student.
	ErrStudentNotFound = errors.New("ladok: student not found")

	// ErrCourseNotFound reports a course filter that matched no
	// registration.
	ErrCourseNotFound = errors.New("ladok: course not found")

	// ErrComponentNotFound reports a component code that matched no
	// component of the course instance.
	ErrComponentNotFound = errors.New("ladok: component not found")

	// ErrConcurrentModification reports a write rejected because its
	// concurrency token was stale. Pull the registration and re-apply.
	ErrConcurrentModification = errors.New("ladok: result changed on server")

	// ErrAlreadyAttested reports a mutation of an attested result.
	// Permanent for that result.
	ErrAlreadyAttested = errors.New("ladok: result already attested")

	// ErrAuthenticationFailed reports an SSO round-trip that did not
	// yield a LADOK session.
	ErrAuthenticationFailed = errors.New("ladok: authentication failed")

	// ErrSessionNotEstablished reports an operation that requires an
	// authenticated session when none exists and none can be created.
	ErrSessionNotEstablished = errors.New("ladok: session not established")
)

// ServerError is a non-2xx response from the LADOK server. The message
// is taken from the Meddelande field of the error payload when the
// server provides one. Callers can use errors.As to inspect the status:
//
//	var serverErr *ladok.ServerError
//	if errors.As(err, &serverErr) {
//	    if serverErr.StatusCode == http.StatusConflict { ... }
//	}
type ServerError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Message is the server's Meddelande text, or the raw body when
	// the payload was not the standard error shape.
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("ladok: server error (%d): %s", e.StatusCode, e.Message)
}

// IsServerStatus checks whether err is a *ServerError with the given
// HTTP status code.
func IsServerStatus(err error, statusCode int) bool {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.StatusCode == statusCode
	}
	return false
}
