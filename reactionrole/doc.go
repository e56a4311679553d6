// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package reactionrole implements self-service role assignment driven
// by message reactions. A binding maps (message, emoji) to a role; the
// store holds bindings in memory, the snapshot file persists them
// across restarts, the manager mutates them on behalf of moderators,
// and the reconciler applies reaction events to member role sets.
package reactionrole
