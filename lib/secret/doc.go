// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides locked memory buffers for credential
// material such as SSO passwords and sealed-file passphrases.
//
// Buffers are allocated with mmap outside the Go heap, locked with
// mlock so they cannot be swapped to disk, and excluded from core
// dumps. Close zeroes the memory before returning it to the kernel.
// The garbage collector never copies or moves the contents.
package secret
