// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated identifier types for the Discord
// entities warden works with: guilds, channels, messages, roles,
// users, and emoji reaction keys.
//
// Raw identifier strings arrive at process boundaries (gateway
// payloads, REST responses, command options, the binding snapshot)
// and are parsed into these types exactly once. Code inside warden
// never passes bare strings around — a ref type in a signature is a
// guarantee that the value was validated at the boundary.
//
// All types are immutable value types. The zero value is never valid;
// use IsZero to check. Every type implements encoding.TextMarshaler
// and encoding.TextUnmarshaler so it round-trips through JSON and
// CBOR as a plain string with validation on the way in.
package ref
