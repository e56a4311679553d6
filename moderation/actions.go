// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package moderation implements the ban, kick, and timeout actions.
// Every action validates its arguments and checks role hierarchy
// before touching the platform, so a misconfigured bot refuses early
// instead of collecting API permission errors.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/warden-project/warden/lib/clock"
	"github.com/warden-project/warden/lib/ref"
	"github.com/warden-project/warden/platform"
)

// Timeout duration bounds, in minutes. The upper bound is the
// platform's 28-day maximum.
const (
	MinTimeoutMinutes = 1
	MaxTimeoutMinutes = 40320
)

// Errors the command layer branches on.
var (
	// ErrInvalidDeleteDays means the ban's message-deletion window is
	// not one of the allowed values (0, 1, or 7 days).
	ErrInvalidDeleteDays = errors.New("moderation: delete days must be 0, 1, or 7")

	// ErrInvalidTimeout means the timeout duration is outside
	// [MinTimeoutMinutes, MaxTimeoutMinutes].
	ErrInvalidTimeout = errors.New("moderation: timeout minutes out of range")

	// ErrTargetNotMember means the action requires the target to be a
	// guild member and they are not.
	ErrTargetNotMember = errors.New("moderation: target is not a guild member")

	// ErrHierarchy means the bot cannot act on the target: the target
	// is the guild owner, or holds a role at or above the bot's
	// highest role.
	ErrHierarchy = errors.New("moderation: target is not below the bot in the role hierarchy")
)

// Report describes a completed action for the reply to the moderator.
type Report struct {
	// Action is "ban", "kick", or "timeout".
	Action string
	// TargetName is the target's display name when known, otherwise
	// their user ID.
	TargetName string
	// Reason is the audit-log reason the action carried.
	Reason string
	// Until is the expiry of a timeout; zero for ban and kick.
	Until time.Time
	// DeletedDays is the message-deletion window of a ban.
	DeletedDays int
}

// Actions performs moderation against one session.
type Actions struct {
	session platform.Session
	clock   clock.Clock
	self    ref.UserID
	logger  *slog.Logger
}

// ActionsConfig holds dependencies for NewActions.
type ActionsConfig struct {
	Session platform.Session
	// Clock anchors timeout expiries. If nil, clock.Real().
	Clock clock.Clock
	// Self is the bot's own user ID, used to resolve its hierarchy
	// position.
	Self ref.UserID
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
}

// NewActions creates a moderation action handler.
func NewActions(config ActionsConfig) *Actions {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Actions{
		session: config.Session,
		clock:   clk,
		self:    config.Self,
		logger:  logger,
	}
}

// Ban bans the target, deleting their messages going back deleteDays
// days. Banning a user who is not a member works; the hierarchy check
// then has nothing to compare and passes.
func (a *Actions) Ban(ctx context.Context, guildID ref.GuildID, target ref.UserID, deleteDays int, reason string) (*Report, error) {
	switch deleteDays {
	case 0, 1, 7:
	default:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDeleteDays, deleteDays)
	}

	targetName, err := a.checkHierarchy(ctx, guildID, target, false)
	if err != nil {
		return nil, err
	}

	if err := a.session.CreateBan(ctx, guildID, target, deleteDays, reason); err != nil {
		return nil, fmt.Errorf("moderation: banning %s: %w", target, err)
	}
	a.logger.Info("banned user",
		"guild", guildID, "user", target, "delete_days", deleteDays, "reason", reason)
	return &Report{
		Action:      "ban",
		TargetName:  targetName,
		Reason:      reason,
		DeletedDays: deleteDays,
	}, nil
}

// Kick removes the target from the guild. The target must be a
// member.
func (a *Actions) Kick(ctx context.Context, guildID ref.GuildID, target ref.UserID, reason string) (*Report, error) {
	targetName, err := a.checkHierarchy(ctx, guildID, target, true)
	if err != nil {
		return nil, err
	}

	if err := a.session.RemoveMember(ctx, guildID, target, reason); err != nil {
		return nil, fmt.Errorf("moderation: kicking %s: %w", target, err)
	}
	a.logger.Info("kicked member",
		"guild", guildID, "user", target, "reason", reason)
	return &Report{
		Action:     "kick",
		TargetName: targetName,
		Reason:     reason,
	}, nil
}

// Timeout mutes the target for the given number of minutes. The
// target must be a member.
func (a *Actions) Timeout(ctx context.Context, guildID ref.GuildID, target ref.UserID, minutes int, reason string) (*Report, error) {
	if minutes < MinTimeoutMinutes || minutes > MaxTimeoutMinutes {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTimeout, minutes)
	}

	targetName, err := a.checkHierarchy(ctx, guildID, target, true)
	if err != nil {
		return nil, err
	}

	until := a.clock.Now().Add(time.Duration(minutes) * time.Minute)
	if err := a.session.TimeoutMember(ctx, guildID, target, until, reason); err != nil {
		return nil, fmt.Errorf("moderation: timing out %s: %w", target, err)
	}
	a.logger.Info("timed out member",
		"guild", guildID, "user", target, "until", until, "reason", reason)
	return &Report{
		Action:     "timeout",
		TargetName: targetName,
		Reason:     reason,
		Until:      until,
	}, nil
}

// checkHierarchy refuses actions against the guild owner and against
// targets whose highest role sits at or above the bot's. Returns the
// target's display name for the report. When requireMember is false a
// non-member target passes with their ID as the name.
func (a *Actions) checkHierarchy(ctx context.Context, guildID ref.GuildID, target ref.UserID, requireMember bool) (string, error) {
	guild, err := a.session.Guild(ctx, guildID)
	if err != nil {
		return "", fmt.Errorf("moderation: fetching guild %s: %w", guildID, err)
	}
	if guild.OwnerID == target {
		return "", fmt.Errorf("%w: target owns the guild", ErrHierarchy)
	}

	targetMember, err := a.session.Member(ctx, guildID, target)
	if err != nil {
		if platform.IsNotFound(err) {
			if requireMember {
				return "", fmt.Errorf("%w: %s", ErrTargetNotMember, target)
			}
			return target.String(), nil
		}
		return "", fmt.Errorf("moderation: fetching target member %s: %w", target, err)
	}

	botMember, err := a.session.Member(ctx, guildID, a.self)
	if err != nil {
		return "", fmt.Errorf("moderation: fetching own membership: %w", err)
	}

	roles, err := a.session.GuildRoles(ctx, guildID)
	if err != nil {
		return "", fmt.Errorf("moderation: fetching guild roles: %w", err)
	}
	positions := make(map[ref.RoleID]int, len(roles))
	for _, role := range roles {
		positions[role.ID] = role.Position
	}

	if highestPosition(targetMember.Roles, positions) >= highestPosition(botMember.Roles, positions) {
		return "", fmt.Errorf("%w: %s", ErrHierarchy, targetMember.DisplayName())
	}
	return targetMember.DisplayName(), nil
}

// highestPosition returns the highest role position held. Members with
// no roles sit at the @everyone position, below every real role.
func highestPosition(held []ref.RoleID, positions map[ref.RoleID]int) int {
	highest := 0
	for _, roleID := range held {
		if position, ok := positions[roleID]; ok && position > highest {
			highest = position
		}
	}
	return highest
}
