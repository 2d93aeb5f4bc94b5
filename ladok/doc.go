// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package ladok is a client for the Swedish higher-education grading
// and registration service LADOK, as exposed through its GUI proxy.
//
// The package provides one core type. [Client] holds the authenticated
// HTTP session: the cookie jar with the session and XSRF cookies, the
// login timestamp, and the memoised reference data. Sessions age out
// after fifteen minutes of inactivity; the client re-authenticates
// transparently through its [Authenticator] at most once per
// operation. A Client is not safe for concurrent use — concurrent
// callers each hold their own.
//
// The domain model ([Student], [CourseInstance], [CourseRound],
// [CourseRegistration], [CourseComponent], [CourseResult]) hydrates
// lazily: an object constructed from an id alone defers its first
// request until an accessor needs the data, and an object constructed
// from a full server record never refetches. Accessors that may touch
// the network take a context. Pull discards the cached data and
// re-hydrates.
//
// Grade reporting is a state machine on [CourseResult]: absent (no
// server row) -> draft -> finalised -> attested. Writes carry the
// server's opaque concurrency token verbatim; a stale token surfaces
// as [ErrConcurrentModification] and the caller decides whether to
// pull and re-apply. Attested results reject mutation with
// [ErrAlreadyAttested] without issuing a request.
//
// Server failures are returned as [*ServerError] with the HTTP status
// and the server's Meddelande text. Caller faults are sentinel errors
// (ErrStudentNotFound, ErrGradeNotInScale, ...) usable with errors.Is.
package ladok
