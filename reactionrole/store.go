// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package reactionrole

import (
	"cmp"
	"slices"
	"sync"

	"github.com/warden-project/warden/lib/ref"
)

// Store is the in-memory binding table, safe for concurrent use. It
// is the source of truth while the process runs; the snapshot file
// only seeds it at startup and records it after mutations.
type Store struct {
	mu       sync.RWMutex
	bindings map[Key]Binding
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{bindings: make(map[Key]Binding)}
}

// Put inserts a binding, replacing any existing binding with the same
// key. Returns the replaced binding when one existed.
func (s *Store) Put(binding Binding) (previous Binding, replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := binding.Key()
	previous, replaced = s.bindings[key]
	s.bindings[key] = binding
	return previous, replaced
}

// Get looks up a binding by key.
func (s *Store) Get(key Key) (Binding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	binding, ok := s.bindings[key]
	return binding, ok
}

// Delete removes a binding. Returns the removed binding and whether
// one existed.
func (s *Store) Delete(key Key) (Binding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	binding, ok := s.bindings[key]
	if ok {
		delete(s.bindings, key)
	}
	return binding, ok
}

// Len returns the number of bindings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bindings)
}

// Bindings returns all bindings sorted by message ID then emoji, so
// snapshots and listings are deterministic.
func (s *Store) Bindings() []Binding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]Binding, 0, len(s.bindings))
	for _, binding := range s.bindings {
		all = append(all, binding)
	}
	sortBindings(all)
	return all
}

// ListByGuild returns the guild's bindings sorted by message ID then
// emoji.
func (s *Store) ListByGuild(guildID ref.GuildID) []Binding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []Binding
	for _, binding := range s.bindings {
		if binding.GuildID == guildID {
			matched = append(matched, binding)
		}
	}
	sortBindings(matched)
	return matched
}

// Replace swaps the entire binding table. Used when loading a
// snapshot at startup.
func (s *Store) Replace(bindings []Binding) {
	table := make(map[Key]Binding, len(bindings))
	for _, binding := range bindings {
		table[binding.Key()] = binding
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings = table
}

func sortBindings(bindings []Binding) {
	slices.SortFunc(bindings, func(a, b Binding) int {
		if c := cmp.Compare(a.MessageID.String(), b.MessageID.String()); c != 0 {
			return c
		}
		return cmp.Compare(a.Emoji.String(), b.Emoji.String())
	})
}
