// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EmojiKey is the canonical string form of an emoji used in a
// reaction-role binding. Two shapes exist:
//
//   - Unicode emoji: the raw codepoint sequence ("✅", "👍🏽").
//   - Custom guild emoji: "name:id" where id is the emoji snowflake
//     ("partyparrot:207892023109218304").
//
// The canonical form is the binding key's emoji half. It deliberately
// contains no free-form separators beyond the single ':' of the
// custom shape, and the key is a struct field rather than part of a
// joined string, so a ':' in a name can never collide with another
// binding.
type EmojiKey struct {
	key string
}

// ParseEmojiKey validates a canonical emoji key string. A string
// containing ':' is treated as a custom emoji reference and both
// halves are validated; anything else must be a well-formed UTF-8
// sequence and is taken as a unicode emoji.
func ParseEmojiKey(raw string) (EmojiKey, error) {
	if raw == "" {
		return EmojiKey{}, fmt.Errorf("empty emoji key")
	}
	if name, id, ok := strings.Cut(raw, ":"); ok {
		return CustomEmojiKey(name, id)
	}
	if !utf8.ValidString(raw) {
		return EmojiKey{}, fmt.Errorf("emoji key is not valid UTF-8: %q", raw)
	}
	return EmojiKey{key: raw}, nil
}

// CustomEmojiKey builds the canonical key for a custom guild emoji
// from its name and snowflake ID.
func CustomEmojiKey(name, id string) (EmojiKey, error) {
	if name == "" {
		return EmojiKey{}, fmt.Errorf("custom emoji key has empty name")
	}
	if strings.Contains(name, ":") {
		return EmojiKey{}, fmt.Errorf("custom emoji name contains ':': %q", name)
	}
	parsedID, err := parseSnowflake("emoji ID", id)
	if err != nil {
		return EmojiKey{}, fmt.Errorf("custom emoji %q: %w", name, err)
	}
	return EmojiKey{key: name + ":" + parsedID}, nil
}

// String returns the canonical emoji key.
func (e EmojiKey) String() string { return e.key }

// IsZero reports whether the EmojiKey is the zero value.
func (e EmojiKey) IsZero() bool { return e.key == "" }

// IsCustom reports whether the key references a custom guild emoji.
func (e EmojiKey) IsCustom() bool { return strings.Contains(e.key, ":") }

// MarshalText implements encoding.TextMarshaler.
func (e EmojiKey) MarshalText() ([]byte, error) {
	if e.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero emoji key")
	}
	return []byte(e.key), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (e *EmojiKey) UnmarshalText(text []byte) error {
	parsed, err := ParseEmojiKey(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
