// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package reactionrole

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/warden-project/warden/lib/ref"
	"github.com/warden-project/warden/platform"
)

// Manager mutates the binding table on behalf of moderators. Every
// mutation is validated against the live platform state before it
// commits: a binding is only created once the target message exists
// and the bot's marker reaction is placed on it.
type Manager struct {
	store     *Store
	persister Persister
	session   platform.Session
	logger    *slog.Logger
}

// ManagerConfig holds dependencies for NewManager.
type ManagerConfig struct {
	Store     *Store
	Persister Persister
	Session   platform.Session
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
}

// NewManager creates a binding manager.
func NewManager(config ManagerConfig) *Manager {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:     config.Store,
		persister: config.Persister,
		session:   config.Session,
		logger:    logger,
	}
}

// AddResult reports a completed AddBinding. Replaced is the binding
// the new one displaced, when the emoji was already bound on that
// message.
type AddResult struct {
	Binding  Binding
	Replaced *Binding
}

// AddBinding creates a binding after verifying the message exists and
// placing the bot's marker reaction on it. If either step fails, the
// store is untouched. An existing binding for the same (message,
// emoji) is silently replaced; the displaced binding is reported in
// the result so callers can mention it.
//
// The in-memory store commits before the snapshot write. A snapshot
// failure is returned, but the binding stays live: events reconcile
// against memory, and the next successful save captures it.
func (m *Manager) AddBinding(ctx context.Context, binding Binding) (AddResult, error) {
	if err := binding.Validate(); err != nil {
		return AddResult{}, fmt.Errorf("reactionrole: invalid binding: %w", err)
	}

	if _, err := m.session.FetchMessage(ctx, binding.ChannelID, binding.MessageID); err != nil {
		if platform.IsNotFound(err) {
			return AddResult{}, fmt.Errorf("%w: %s in channel %s",
				ErrMessageNotFound, binding.MessageID, binding.ChannelID)
		}
		return AddResult{}, fmt.Errorf("reactionrole: verifying message %s: %w", binding.MessageID, err)
	}

	if err := m.session.AddReaction(ctx, binding.ChannelID, binding.MessageID, binding.Emoji); err != nil {
		return AddResult{}, fmt.Errorf("%w: %s: %v", ErrReactionFailed, binding.Emoji, err)
	}

	previous, replaced := m.store.Put(binding)
	result := AddResult{Binding: binding}
	if replaced {
		result.Replaced = &previous
		m.logger.Info("replaced reaction role binding",
			"message", binding.MessageID,
			"emoji", binding.Emoji,
			"old_role", previous.RoleID,
			"new_role", binding.RoleID,
		)
	} else {
		m.logger.Info("added reaction role binding",
			"message", binding.MessageID,
			"emoji", binding.Emoji,
			"role", binding.RoleID,
		)
	}

	if err := m.persister.Save(m.store); err != nil {
		return result, fmt.Errorf("reactionrole: persisting bindings: %w", err)
	}
	return result, nil
}

// RemoveBinding deletes the binding for an emoji on a message. Returns
// false when no such binding existed; the snapshot is only rewritten
// when something was removed.
func (m *Manager) RemoveBinding(ctx context.Context, messageID ref.MessageID, emoji ref.EmojiKey) (bool, error) {
	binding, existed := m.store.Delete(Key{MessageID: messageID, Emoji: emoji})
	if !existed {
		return false, nil
	}
	m.logger.Info("removed reaction role binding",
		"message", messageID,
		"emoji", emoji,
		"role", binding.RoleID,
	)
	if err := m.persister.Save(m.store); err != nil {
		return true, fmt.Errorf("reactionrole: persisting bindings: %w", err)
	}
	return true, nil
}

// BindingStatus is one listed binding annotated with the role's
// current state.
type BindingStatus struct {
	Binding Binding
	// RoleName is the role's current name, empty when unknown.
	RoleName string
	// RoleDeleted marks a binding whose role no longer exists in the
	// guild.
	RoleDeleted bool
}

// ListBindings returns the guild's bindings with role names resolved
// through a single roles fetch. When the fetch fails the listing still
// succeeds with names unresolved, so a degraded API never hides the
// binding table from moderators.
func (m *Manager) ListBindings(ctx context.Context, guildID ref.GuildID) []BindingStatus {
	bindings := m.store.ListByGuild(guildID)
	if len(bindings) == 0 {
		return nil
	}

	names := make(map[ref.RoleID]string)
	rolesKnown := false
	if roles, err := m.session.GuildRoles(ctx, guildID); err != nil {
		m.logger.Warn("failed to fetch guild roles for listing",
			"guild", guildID, "error", err)
	} else {
		rolesKnown = true
		for _, role := range roles {
			names[role.ID] = role.Name
		}
	}

	statuses := make([]BindingStatus, 0, len(bindings))
	for _, binding := range bindings {
		status := BindingStatus{Binding: binding}
		if name, ok := names[binding.RoleID]; ok {
			status.RoleName = name
		} else if rolesKnown {
			status.RoleDeleted = true
		}
		statuses = append(statuses, status)
	}
	return statuses
}
