// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package platform is warden's Discord client: a hand-rolled REST
// client for the small API surface warden needs (messages, reactions,
// roles, members, moderation actions, slash commands) and a websocket
// gateway consumer that delivers reaction and interaction events.
//
// The Session interface is the seam between warden's logic and the
// wire: reactionrole, moderation, and command code accept a Session,
// production wires *DirectSession, tests wire in-memory fakes.
package platform
