// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package reactionrole

import (
	"context"
	"log/slog"

	"github.com/warden-project/warden/lib/ref"
	"github.com/warden-project/warden/platform"
)

// auditReason is sent as the audit-log reason on role changes the
// reconciler performs.
const auditReason = "reaction role"

// Reconciler applies reaction events to member role sets. It is the
// hot path: every reaction in every guild the bot can see flows
// through HandleReaction, and almost all of them miss the binding
// table and return after one map lookup.
type Reconciler struct {
	store     *Store
	persister Persister
	session   platform.Session
	self      ref.UserID
	logger    *slog.Logger
}

// ReconcilerConfig holds dependencies for NewReconciler.
type ReconcilerConfig struct {
	Store     *Store
	Persister Persister
	Session   platform.Session
	// Self is the bot's own user ID. The bot's marker reactions must
	// not grant it roles.
	Self ref.UserID
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(config ReconcilerConfig) *Reconciler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:     config.Store,
		persister: config.Persister,
		session:   config.Session,
		self:      config.Self,
		logger:    logger,
	}
}

// HandleReaction reconciles one reaction event against the binding
// table. It never returns an error: a failure affects only the one
// member's role change, is logged, and must not disturb the event
// loop. Both directions are idempotent — granting a role the member
// holds and revoking one they lack are no-ops.
func (r *Reconciler) HandleReaction(ctx context.Context, event platform.ReactionEvent) {
	// The bot's own marker reactions are not membership signals.
	if event.UserID == r.self {
		return
	}

	emoji := event.Emoji
	if event.Partial {
		completed, ok := r.completeEmoji(ctx, event)
		if !ok {
			return
		}
		emoji = completed
	}

	emojiKey, err := emoji.Key()
	if err != nil {
		r.logger.Debug("reaction emoji cannot be canonicalized",
			"message", event.MessageID, "error", err)
		return
	}

	binding, ok := r.store.Get(Key{MessageID: event.MessageID, Emoji: emojiKey})
	if !ok {
		return
	}

	logger := r.logger.With(
		"guild", binding.GuildID,
		"message", binding.MessageID,
		"emoji", binding.Emoji,
		"role", binding.RoleID,
		"user", event.UserID,
		"kind", event.Kind,
	)

	// The binding's guild is authoritative, not the event's: events
	// reach us by message ID, and the binding records where that
	// message lives.
	if _, err := r.session.Guild(ctx, binding.GuildID); err != nil {
		if platform.IsNotFound(err) {
			logger.Debug("binding guild no longer accessible")
		} else {
			logger.Warn("failed to fetch binding guild", "error", err)
		}
		return
	}

	member, err := r.session.Member(ctx, binding.GuildID, event.UserID)
	if err != nil {
		if platform.IsNotFound(err) {
			logger.Debug("reacting user is not a guild member")
		} else {
			logger.Warn("failed to fetch member", "error", err)
		}
		return
	}

	if _, err := r.session.Role(ctx, binding.GuildID, binding.RoleID); err != nil {
		if platform.IsNotFound(err) {
			r.healStaleBinding(binding, logger)
		} else {
			logger.Warn("failed to fetch role", "error", err)
		}
		return
	}

	switch event.Kind {
	case platform.ReactionAdded:
		if member.HasRole(binding.RoleID) {
			return
		}
		if err := r.session.AddMemberRole(ctx, binding.GuildID, event.UserID, binding.RoleID, auditReason); err != nil {
			logger.Warn("failed to grant role", "error", err)
			return
		}
		logger.Info("granted reaction role", "member", member.DisplayName())

	case platform.ReactionRemoved:
		if !member.HasRole(binding.RoleID) {
			return
		}
		if err := r.session.RemoveMemberRole(ctx, binding.GuildID, event.UserID, binding.RoleID, auditReason); err != nil {
			logger.Warn("failed to revoke role", "error", err)
			return
		}
		logger.Info("revoked reaction role", "member", member.DisplayName())
	}
}

// completeEmoji resolves a partial event (custom emoji delivered
// without its name) by fetching the message and matching the reaction
// entry by emoji ID.
func (r *Reconciler) completeEmoji(ctx context.Context, event platform.ReactionEvent) (platform.Emoji, bool) {
	message, err := r.session.FetchMessage(ctx, event.ChannelID, event.MessageID)
	if err != nil {
		if platform.IsNotFound(err) {
			r.logger.Debug("message for partial reaction is gone",
				"message", event.MessageID)
		} else {
			r.logger.Warn("failed to complete partial reaction",
				"message", event.MessageID, "error", err)
		}
		return platform.Emoji{}, false
	}
	for _, reaction := range message.Reactions {
		if reaction.Emoji.ID == event.Emoji.ID && reaction.Emoji.Name != "" {
			return reaction.Emoji, true
		}
	}
	// The reaction entry vanished between the event and the fetch
	// (last reactor withdrew). Nothing to reconcile.
	r.logger.Debug("partial reaction no longer present on message",
		"message", event.MessageID, "emoji_id", event.Emoji.ID)
	return platform.Emoji{}, false
}

// healStaleBinding drops a binding whose role was deleted out from
// under it. Future reactions on that emoji become one-lookup misses
// instead of repeated failing role fetches.
func (r *Reconciler) healStaleBinding(binding Binding, logger *slog.Logger) {
	if _, existed := r.store.Delete(binding.Key()); !existed {
		return
	}
	logger.Info("removed binding for deleted role")
	if err := r.persister.Save(r.store); err != nil {
		logger.Warn("failed to persist after removing stale binding", "error", err)
	}
}
