// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

// Ladok is the CLI for reporting results to the LADOK student
// administration system. It provides subcommands for authentication
// (login, logout, whoami, credential), lookups (student, rounds,
// results), and grade reporting (report, finalize).
package main
