// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// UserID is a validated Discord user snowflake.
type UserID struct {
	id string
}

// ParseUserID validates and wraps a raw user ID string.
func ParseUserID(raw string) (UserID, error) {
	id, err := parseSnowflake("user ID", raw)
	if err != nil {
		return UserID{}, err
	}
	return UserID{id: id}, nil
}

// String returns the decimal user ID string.
func (u UserID) String() string { return u.id }

// IsZero reports whether the UserID is the zero value.
func (u UserID) IsZero() bool { return u.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (u UserID) MarshalText() ([]byte, error) {
	if u.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero user ID")
	}
	return []byte(u.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (u *UserID) UnmarshalText(text []byte) error {
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
