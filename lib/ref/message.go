// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// MessageID is a validated Discord message snowflake.
//
// Message IDs are half of the binding key (MessageID, EmojiKey) that
// identifies a reaction-role binding, so they appear both in live
// gateway traffic and in the persisted snapshot.
type MessageID struct {
	id string
}

// ParseMessageID validates and wraps a raw message ID string.
func ParseMessageID(raw string) (MessageID, error) {
	id, err := parseSnowflake("message ID", raw)
	if err != nil {
		return MessageID{}, err
	}
	return MessageID{id: id}, nil
}

// String returns the decimal message ID string.
func (m MessageID) String() string { return m.id }

// IsZero reports whether the MessageID is the zero value.
func (m MessageID) IsZero() bool { return m.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (m MessageID) MarshalText() ([]byte, error) {
	if m.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero message ID")
	}
	return []byte(m.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (m *MessageID) UnmarshalText(text []byte) error {
	parsed, err := ParseMessageID(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
