// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"testing"
)

func TestNew_Allocates(t *testing.T) {
	buffer, err := New(48)
	if err != nil {
		t.Fatalf("New(48) failed: %v", err)
	}
	defer buffer.Close()

	if buffer.Len() != 48 {
		t.Errorf("expected length 48, got %d", buffer.Len())
	}

	// mmap hands back zero-initialized pages.
	for index, value := range buffer.Bytes() {
		if value != 0 {
			t.Fatalf("expected zero at index %d, got %d", index, value)
		}
	}
}

func TestNew_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Errorf("New(%d): expected error", size)
		}
	}
}

func TestNewFromBytes_ZeroesSource(t *testing.T) {
	source := []byte("idp-account-password")

	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "idp-account-password" {
		t.Errorf("expected stored copy, got %q", got)
	}
	for index, value := range source {
		if value != 0 {
			t.Fatalf("source byte %d was not zeroed: got %d", index, value)
		}
	}
}

func TestNewFromBytes_Empty(t *testing.T) {
	if _, err := NewFromBytes(nil); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestNewFromString(t *testing.T) {
	buffer, err := NewFromString("abc123")
	if err != nil {
		t.Fatalf("NewFromString failed: %v", err)
	}
	defer buffer.Close()

	if buffer.Len() != 6 {
		t.Errorf("expected length 6, got %d", buffer.Len())
	}
	if got := buffer.String(); got != "abc123" {
		t.Errorf("expected %q, got %q", "abc123", got)
	}
}

func TestBuffer_Close(t *testing.T) {
	buffer, err := NewFromString("to-be-wiped")
	if err != nil {
		t.Fatalf("NewFromString failed: %v", err)
	}

	if err := buffer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if buffer.data != nil {
		t.Error("expected data to be released after Close")
	}

	// Closing twice is a no-op.
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestBuffer_AccessAfterClose(t *testing.T) {
	accessors := map[string]func(*Buffer){
		"Bytes":  func(b *Buffer) { b.Bytes() },
		"String": func(b *Buffer) { _ = b.String() },
	}
	for name, access := range accessors {
		t.Run(name, func(t *testing.T) {
			buffer, err := New(8)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			buffer.Close()

			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic on %s after Close", name)
				}
			}()
			access(buffer)
		})
	}
}

func TestZero(t *testing.T) {
	data := []byte("wipe me")
	Zero(data)
	for index, value := range data {
		if value != 0 {
			t.Fatalf("byte %d not zeroed: got %d", index, value)
		}
	}
}
