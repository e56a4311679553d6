// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package reactionrole

import "errors"

// Errors the command layer branches on to word its replies.
var (
	// ErrMessageNotFound means the target message does not exist or the
	// bot cannot see its channel.
	ErrMessageNotFound = errors.New("reactionrole: message not found")

	// ErrReactionFailed means the bot could not place its marker
	// reaction on the message, typically a missing-permissions or
	// unknown-emoji problem. The binding is not created.
	ErrReactionFailed = errors.New("reactionrole: failed to add reaction")
)
