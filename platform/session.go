// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"time"

	"github.com/warden-project/warden/lib/ref"
)

// Session is the interface for Discord operations warden performs.
// *DirectSession implements it over REST; tests implement it with
// in-memory fakes.
type Session interface {
	// Close releases resources held by the session, including the
	// token buffer. Idempotent.
	Close() error

	// CurrentUser returns the authenticated bot user.
	CurrentUser(ctx context.Context) (*User, error)

	// FetchMessage fetches a message by channel and message ID.
	FetchMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID) (*Message, error)

	// AddReaction places the bot's own reaction on a message. This is
	// the visible marker users click to receive a reaction role.
	AddReaction(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID, emoji ref.EmojiKey) error

	// Guild fetches a guild the bot is a member of.
	Guild(ctx context.Context, guildID ref.GuildID) (*Guild, error)

	// GuildRoles lists all roles in a guild.
	GuildRoles(ctx context.Context, guildID ref.GuildID) ([]Role, error)

	// Role fetches a single guild role.
	Role(ctx context.Context, guildID ref.GuildID, roleID ref.RoleID) (*Role, error)

	// Member fetches a guild member.
	Member(ctx context.Context, guildID ref.GuildID, userID ref.UserID) (*Member, error)

	// AddMemberRole grants a role to a member.
	AddMemberRole(ctx context.Context, guildID ref.GuildID, userID ref.UserID, roleID ref.RoleID, reason string) error

	// RemoveMemberRole revokes a role from a member.
	RemoveMemberRole(ctx context.Context, guildID ref.GuildID, userID ref.UserID, roleID ref.RoleID, reason string) error

	// CreateBan bans a user from a guild, deleting their recent
	// messages going back deleteMessageDays days (0 to keep them).
	CreateBan(ctx context.Context, guildID ref.GuildID, userID ref.UserID, deleteMessageDays int, reason string) error

	// RemoveMember kicks a member from a guild.
	RemoveMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID, reason string) error

	// TimeoutMember mutes a member until the given time.
	TimeoutMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID, until time.Time, reason string) error

	// RegisterCommands replaces the application's global slash-command
	// set.
	RegisterCommands(ctx context.Context, applicationID string, commands []ApplicationCommand) error

	// CreateInteractionResponse replies to an interaction.
	CreateInteractionResponse(ctx context.Context, interactionID, interactionToken string, response InteractionResponse) error
}

// Compile-time check: *DirectSession implements Session.
var _ Session = (*DirectSession)(nil)
