// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability.
//
// Production code injects Real(); tests inject NewFake() and drive
// time with Advance. Any warden code that would call time.Now,
// time.After, time.NewTicker, or time.Sleep takes a Clock instead —
// the gateway heartbeat and the reconnect backoff are both tested
// without real waiting.
package clock
