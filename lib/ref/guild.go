// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// GuildID is a validated Discord guild (server) snowflake.
//
// Guild IDs are server-assigned opaque identifiers. Warden never
// constructs them — they arrive in gateway payloads, REST responses,
// and command invocations, and are parsed into this type at the
// boundary.
type GuildID struct {
	id string
}

// ParseGuildID validates and wraps a raw guild ID string.
func ParseGuildID(raw string) (GuildID, error) {
	id, err := parseSnowflake("guild ID", raw)
	if err != nil {
		return GuildID{}, err
	}
	return GuildID{id: id}, nil
}

// String returns the decimal guild ID string.
func (g GuildID) String() string { return g.id }

// IsZero reports whether the GuildID is the zero value (uninitialized).
func (g GuildID) IsZero() bool { return g.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (g GuildID) MarshalText() ([]byte, error) {
	if g.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero guild ID")
	}
	return []byte(g.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (g *GuildID) UnmarshalText(text []byte) error {
	parsed, err := ParseGuildID(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
