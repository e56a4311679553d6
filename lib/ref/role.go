// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// RoleID is a validated Discord role snowflake.
type RoleID struct {
	id string
}

// ParseRoleID validates and wraps a raw role ID string.
func ParseRoleID(raw string) (RoleID, error) {
	id, err := parseSnowflake("role ID", raw)
	if err != nil {
		return RoleID{}, err
	}
	return RoleID{id: id}, nil
}

// String returns the decimal role ID string.
func (r RoleID) String() string { return r.id }

// IsZero reports whether the RoleID is the zero value.
func (r RoleID) IsZero() bool { return r.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (r RoleID) MarshalText() ([]byte, error) {
	if r.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero role ID")
	}
	return []byte(r.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (r *RoleID) UnmarshalText(text []byte) error {
	parsed, err := ParseRoleID(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
