// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP I/O helpers for the LADOK client.
//
// All response body reads are bounded at MaxResponseSize so that a
// misbehaving proxy or a captive portal answering with an HTML wall of
// text cannot exhaust memory. LADOK responses are JSON documents of a
// few hundred kilobytes at most (the largest is a participant listing
// at limit=400); the bound is generous enough to never interfere with
// normal operation.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxResponseSize bounds JSON response body reads: 64 MB.
const MaxResponseSize int64 = 64 << 20

// ReadResponse reads a JSON response body up to MaxResponseSize bytes.
// Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a JSON response body (up to MaxResponseSize
// bytes) and decodes it into v. Replaces the io.ReadAll plus
// json.Unmarshal pattern.
func DecodeResponse(body io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorBody reads an HTTP error response body as a string for
// diagnostic messages. Read errors are ignored — a partial or empty
// body is still useful in an error message.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	return string(data)
}
