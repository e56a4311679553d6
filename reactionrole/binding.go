// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package reactionrole

import (
	"fmt"

	"github.com/warden-project/warden/lib/ref"
)

// Key identifies a binding: one emoji on one message. At most one
// binding exists per key; adding a second role for the same emoji on
// the same message replaces the first. The message and emoji are
// separate fields, never joined into a delimited string, so a ':' in
// a custom emoji name cannot collide with another key.
type Key struct {
	MessageID ref.MessageID
	Emoji     ref.EmojiKey
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.MessageID, k.Emoji)
}

// Binding maps an emoji on a message to the role granted to members
// who react with it. The channel ID is carried so the reconciler can
// fetch the message without a channel scan; the guild ID scopes every
// role operation the binding triggers.
type Binding struct {
	GuildID   ref.GuildID   `cbor:"guild"`
	ChannelID ref.ChannelID `cbor:"channel"`
	MessageID ref.MessageID `cbor:"message"`
	Emoji     ref.EmojiKey  `cbor:"emoji"`
	RoleID    ref.RoleID    `cbor:"role"`
}

// Key returns the binding's store key.
func (b Binding) Key() Key {
	return Key{MessageID: b.MessageID, Emoji: b.Emoji}
}

// Validate checks that every field is populated.
func (b Binding) Validate() error {
	if b.GuildID.IsZero() {
		return fmt.Errorf("binding has no guild ID")
	}
	if b.ChannelID.IsZero() {
		return fmt.Errorf("binding has no channel ID")
	}
	if b.MessageID.IsZero() {
		return fmt.Errorf("binding has no message ID")
	}
	if b.Emoji.IsZero() {
		return fmt.Errorf("binding has no emoji")
	}
	if b.RoleID.IsZero() {
		return fmt.Errorf("binding has no role ID")
	}
	return nil
}
