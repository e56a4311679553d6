// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package reactionrole

import (
	"testing"
)

func TestStorePutGetDelete(t *testing.T) {
	store := NewStore()
	binding := testBinding(t, "300", "🎮", "600")

	if _, replaced := store.Put(binding); replaced {
		t.Error("first put should not replace")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 binding, got %d", store.Len())
	}

	got, ok := store.Get(binding.Key())
	if !ok {
		t.Fatal("binding not found")
	}
	if got != binding {
		t.Errorf("got %+v, want %+v", got, binding)
	}

	removed, ok := store.Delete(binding.Key())
	if !ok {
		t.Fatal("delete should report existing binding")
	}
	if removed != binding {
		t.Errorf("deleted %+v, want %+v", removed, binding)
	}
	if _, ok := store.Get(binding.Key()); ok {
		t.Error("binding should be gone")
	}
	if _, ok := store.Delete(binding.Key()); ok {
		t.Error("second delete should report nothing removed")
	}
}

func TestStorePutReplaces(t *testing.T) {
	store := NewStore()
	first := testBinding(t, "300", "🎮", "600")
	second := testBinding(t, "300", "🎮", "601")

	store.Put(first)
	previous, replaced := store.Put(second)
	if !replaced {
		t.Fatal("second put should replace")
	}
	if previous.RoleID != first.RoleID {
		t.Errorf("replaced role %s, want %s", previous.RoleID, first.RoleID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 binding after replacement, got %d", store.Len())
	}

	got, _ := store.Get(first.Key())
	if got.RoleID != second.RoleID {
		t.Errorf("stored role %s, want %s", got.RoleID, second.RoleID)
	}
}

func TestStoreDistinctKeys(t *testing.T) {
	store := NewStore()

	// Same message, different emoji; same emoji, different message.
	store.Put(testBinding(t, "300", "🎮", "600"))
	store.Put(testBinding(t, "300", "🎵", "601"))
	store.Put(testBinding(t, "301", "🎮", "602"))

	if store.Len() != 3 {
		t.Fatalf("expected 3 bindings, got %d", store.Len())
	}

	got, ok := store.Get(Key{MessageID: mustMessageID(t, "300"), Emoji: mustEmojiKey(t, "🎵")})
	if !ok || got.RoleID.String() != "601" {
		t.Errorf("wrong binding for (300, 🎵): %+v", got)
	}
}

func TestStoreCustomEmojiNameWithColon(t *testing.T) {
	// A custom emoji key is "name:id". The struct key keeps it separate
	// from the message ID, so no joined-string ambiguity exists.
	store := NewStore()
	binding := testBinding(t, "300", "party:207892023109218304", "600")
	store.Put(binding)

	got, ok := store.Get(binding.Key())
	if !ok {
		t.Fatal("custom emoji binding not found")
	}
	if !got.Emoji.IsCustom() {
		t.Error("expected custom emoji")
	}
}

func TestStoreBindingsSorted(t *testing.T) {
	store := NewStore()
	store.Put(testBinding(t, "302", "🎮", "600"))
	store.Put(testBinding(t, "300", "🎵", "601"))
	store.Put(testBinding(t, "300", "🎮", "602"))

	all := store.Bindings()
	if len(all) != 3 {
		t.Fatalf("expected 3 bindings, got %d", len(all))
	}
	wantOrder := []string{"602", "601", "600"}
	for i, binding := range all {
		if binding.RoleID.String() != wantOrder[i] {
			t.Errorf("position %d: got role %s, want %s", i, binding.RoleID, wantOrder[i])
		}
	}
}

func TestStoreListByGuild(t *testing.T) {
	store := NewStore()
	inGuild := testBinding(t, "300", "🎮", "600")
	store.Put(inGuild)

	other := testBinding(t, "301", "🎵", "601")
	other.GuildID = mustGuildID(t, "999")
	store.Put(other)

	listed := store.ListByGuild(inGuild.GuildID)
	if len(listed) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(listed))
	}
	if listed[0].RoleID != inGuild.RoleID {
		t.Errorf("unexpected binding: %+v", listed[0])
	}
	if got := store.ListByGuild(mustGuildID(t, "12345")); got != nil {
		t.Errorf("expected nil for unknown guild, got %v", got)
	}
}

func TestStoreReplace(t *testing.T) {
	store := NewStore()
	store.Put(testBinding(t, "300", "🎮", "600"))

	replacement := []Binding{
		testBinding(t, "310", "🎵", "610"),
		testBinding(t, "311", "🎮", "611"),
	}
	store.Replace(replacement)

	if store.Len() != 2 {
		t.Fatalf("expected 2 bindings after replace, got %d", store.Len())
	}
	if _, ok := store.Get(Key{MessageID: mustMessageID(t, "300"), Emoji: mustEmojiKey(t, "🎮")}); ok {
		t.Error("old binding should be gone after replace")
	}
}
