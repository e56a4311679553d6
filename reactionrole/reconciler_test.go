// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package reactionrole

import (
	"context"
	"errors"
	"testing"

	"github.com/warden-project/warden/lib/ref"
	"github.com/warden-project/warden/platform"
)

const reconcilerSelfID = "1"

func newTestReconciler(t *testing.T) (*Reconciler, *Store, *fakeSession, *fakePersister) {
	t.Helper()
	store := NewStore()
	session := newFakeSession()
	persister := &fakePersister{}
	reconciler := NewReconciler(ReconcilerConfig{
		Store:     store,
		Persister: persister,
		Session:   session,
		Self:      mustUserID(t, reconcilerSelfID),
	})
	return reconciler, store, session, persister
}

// seedGuild installs a guild, its role set, and one member into the
// fake session.
func seedGuild(t *testing.T, session *fakeSession, memberRoles ...string) {
	t.Helper()
	guildID := mustGuildID(t, "500")
	session.guilds[guildID] = platform.Guild{
		ID:      guildID,
		Name:    "Test Guild",
		OwnerID: mustUserID(t, "900"),
	}
	session.roles[guildID] = []platform.Role{
		{ID: mustRoleID(t, "600"), Name: "Gamer", Position: 5},
	}
	roles := make([]ref.RoleID, 0, len(memberRoles))
	for _, role := range memberRoles {
		roles = append(roles, mustRoleID(t, role))
	}
	session.members[mustUserID(t, "111")] = &platform.Member{
		User:  platform.User{ID: mustUserID(t, "111"), Username: "alice"},
		Roles: roles,
	}
}

func addEvent(t *testing.T, kind platform.ReactionEventKind) platform.ReactionEvent {
	t.Helper()
	return platform.ReactionEvent{
		Kind:      kind,
		GuildID:   mustGuildID(t, "500"),
		ChannelID: mustChannelID(t, "200"),
		MessageID: mustMessageID(t, "300"),
		UserID:    mustUserID(t, "111"),
		Emoji:     platform.Emoji{Name: "🎮"},
	}
}

func TestReconcilerGrantsOnAdd(t *testing.T) {
	reconciler, store, session, _ := newTestReconciler(t)
	seedGuild(t, session)
	store.Put(testBinding(t, "300", "🎮", "600"))

	reconciler.HandleReaction(context.Background(), addEvent(t, platform.ReactionAdded))

	if len(session.grants) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(session.grants))
	}
	grant := session.grants[0]
	if grant.Role.String() != "600" || grant.User.String() != "111" {
		t.Errorf("unexpected grant: %+v", grant)
	}
	if grant.Reason == "" {
		t.Error("grant should carry an audit reason")
	}
	if len(session.revokes) != 0 {
		t.Errorf("unexpected revokes: %v", session.revokes)
	}
}

func TestReconcilerGrantIsIdempotent(t *testing.T) {
	reconciler, store, session, _ := newTestReconciler(t)
	seedGuild(t, session, "600")
	store.Put(testBinding(t, "300", "🎮", "600"))

	reconciler.HandleReaction(context.Background(), addEvent(t, platform.ReactionAdded))

	if len(session.grants) != 0 {
		t.Errorf("member already holds the role, expected no grant, got %v", session.grants)
	}
}

func TestReconcilerRevokesOnRemove(t *testing.T) {
	reconciler, store, session, _ := newTestReconciler(t)
	seedGuild(t, session, "600")
	store.Put(testBinding(t, "300", "🎮", "600"))

	reconciler.HandleReaction(context.Background(), addEvent(t, platform.ReactionRemoved))

	if len(session.revokes) != 1 {
		t.Fatalf("expected 1 revoke, got %d", len(session.revokes))
	}
	if len(session.grants) != 0 {
		t.Errorf("unexpected grants: %v", session.grants)
	}
}

func TestReconcilerRevokeIsIdempotent(t *testing.T) {
	reconciler, store, session, _ := newTestReconciler(t)
	seedGuild(t, session)
	store.Put(testBinding(t, "300", "🎮", "600"))

	reconciler.HandleReaction(context.Background(), addEvent(t, platform.ReactionRemoved))

	if len(session.revokes) != 0 {
		t.Errorf("member lacks the role, expected no revoke, got %v", session.revokes)
	}
}

func TestReconcilerIgnoresSelf(t *testing.T) {
	reconciler, store, session, _ := newTestReconciler(t)
	seedGuild(t, session)
	store.Put(testBinding(t, "300", "🎮", "600"))

	event := addEvent(t, platform.ReactionAdded)
	event.UserID = mustUserID(t, reconcilerSelfID)
	reconciler.HandleReaction(context.Background(), event)

	if session.guildFetches != 0 {
		t.Error("self reactions should short-circuit before any API call")
	}
	if len(session.grants) != 0 {
		t.Errorf("unexpected grants: %v", session.grants)
	}
}

func TestReconcilerUnboundReactionIsNoOp(t *testing.T) {
	reconciler, _, session, _ := newTestReconciler(t)
	seedGuild(t, session)

	reconciler.HandleReaction(context.Background(), addEvent(t, platform.ReactionAdded))

	if session.guildFetches != 0 {
		t.Error("unbound reaction should miss the table without API calls")
	}
	if len(session.grants)+len(session.revokes) != 0 {
		t.Error("unbound reaction must not change roles")
	}
}

func TestReconcilerHealsStaleBinding(t *testing.T) {
	reconciler, store, session, persister := newTestReconciler(t)
	seedGuild(t, session)
	// Role 601 does not exist in the guild.
	binding := testBinding(t, "300", "🎮", "601")
	store.Put(binding)

	reconciler.HandleReaction(context.Background(), addEvent(t, platform.ReactionAdded))

	if _, ok := store.Get(binding.Key()); ok {
		t.Error("binding for deleted role should be removed")
	}
	if persister.saves != 1 {
		t.Errorf("expected self-heal to persist, got %d saves", persister.saves)
	}
	if len(session.grants) != 0 {
		t.Errorf("unexpected grants: %v", session.grants)
	}
}

func TestReconcilerGuildGone(t *testing.T) {
	reconciler, store, session, _ := newTestReconciler(t)
	// Member and roles exist but the guild lookup fails.
	seedGuild(t, session)
	delete(session.guilds, mustGuildID(t, "500"))
	store.Put(testBinding(t, "300", "🎮", "600"))

	reconciler.HandleReaction(context.Background(), addEvent(t, platform.ReactionAdded))

	if len(session.grants) != 0 {
		t.Errorf("unexpected grants: %v", session.grants)
	}
}

func TestReconcilerNonMember(t *testing.T) {
	reconciler, store, session, _ := newTestReconciler(t)
	seedGuild(t, session)
	delete(session.members, mustUserID(t, "111"))
	store.Put(testBinding(t, "300", "🎮", "600"))

	reconciler.HandleReaction(context.Background(), addEvent(t, platform.ReactionAdded))

	if len(session.grants) != 0 {
		t.Errorf("unexpected grants: %v", session.grants)
	}
}

func TestReconcilerGrantFailureIsContained(t *testing.T) {
	reconciler, store, session, _ := newTestReconciler(t)
	seedGuild(t, session)
	session.grantErr = errors.New("missing permissions")
	store.Put(testBinding(t, "300", "🎮", "600"))

	// Must not panic or propagate; the failure affects only this event.
	reconciler.HandleReaction(context.Background(), addEvent(t, platform.ReactionAdded))

	if len(session.grants) != 0 {
		t.Errorf("unexpected grants: %v", session.grants)
	}
}

func TestReconcilerCompletesPartialEvent(t *testing.T) {
	reconciler, store, session, _ := newTestReconciler(t)
	seedGuild(t, session)

	binding := testBinding(t, "300", "party:207892023109218304", "600")
	store.Put(binding)

	session.messages[mustMessageID(t, "300")] = &platform.Message{
		ID:        mustMessageID(t, "300"),
		ChannelID: mustChannelID(t, "200"),
		Reactions: []platform.Reaction{
			{Count: 2, Emoji: platform.Emoji{ID: "207892023109218304", Name: "party"}},
		},
	}

	event := addEvent(t, platform.ReactionAdded)
	event.Emoji = platform.Emoji{ID: "207892023109218304"}
	event.Partial = true
	reconciler.HandleReaction(context.Background(), event)

	if len(session.grants) != 1 {
		t.Fatalf("expected 1 grant after completing partial event, got %d", len(session.grants))
	}
	if session.grants[0].Role.String() != "600" {
		t.Errorf("unexpected grant: %+v", session.grants[0])
	}
}

func TestReconcilerPartialEventMessageGone(t *testing.T) {
	reconciler, store, session, _ := newTestReconciler(t)
	seedGuild(t, session)
	store.Put(testBinding(t, "300", "party:207892023109218304", "600"))

	event := addEvent(t, platform.ReactionAdded)
	event.Emoji = platform.Emoji{ID: "207892023109218304"}
	event.Partial = true
	reconciler.HandleReaction(context.Background(), event)

	if len(session.grants) != 0 {
		t.Errorf("unexpected grants: %v", session.grants)
	}
}
