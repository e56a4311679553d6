// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// ChannelID is a validated Discord channel snowflake.
type ChannelID struct {
	id string
}

// ParseChannelID validates and wraps a raw channel ID string.
func ParseChannelID(raw string) (ChannelID, error) {
	id, err := parseSnowflake("channel ID", raw)
	if err != nil {
		return ChannelID{}, err
	}
	return ChannelID{id: id}, nil
}

// String returns the decimal channel ID string.
func (c ChannelID) String() string { return c.id }

// IsZero reports whether the ChannelID is the zero value.
func (c ChannelID) IsZero() bool { return c.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (c ChannelID) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero channel ID")
	}
	return []byte(c.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (c *ChannelID) UnmarshalText(text []byte) error {
	parsed, err := ParseChannelID(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
