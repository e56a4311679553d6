// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/warden-project/warden/lib/ref"
	"github.com/warden-project/warden/lib/secret"
)

// DirectSession is an authenticated REST session. Create one with
// Client.SessionFromToken. The bot token lives in an mmap-backed
// buffer and is converted to a string only at the Authorization
// header boundary.
type DirectSession struct {
	client *Client
	token  *secret.Buffer
}

// Close releases the token buffer. Idempotent.
func (s *DirectSession) Close() error {
	if s.token != nil {
		return s.token.Close()
	}
	return nil
}

// CurrentUser returns the authenticated bot user. Also serves as a
// token validity check at startup.
func (s *DirectSession) CurrentUser(ctx context.Context) (*User, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/users/@me", s.token, nil, "")
	if err != nil {
		return nil, fmt.Errorf("platform: fetching current user: %w", err)
	}
	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("platform: failed to parse current user: %w", err)
	}
	return &user, nil
}

// FetchMessage fetches a message by channel and message ID.
func (s *DirectSession) FetchMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID) (*Message, error) {
	path := fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID)
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.token, nil, "")
	if err != nil {
		return nil, fmt.Errorf("platform: fetching message %s: %w", messageID, err)
	}
	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("platform: failed to parse message: %w", err)
	}
	return &message, nil
}

// AddReaction places the bot's own reaction on a message.
func (s *DirectSession) AddReaction(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID, emoji ref.EmojiKey) error {
	path := fmt.Sprintf("/channels/%s/messages/%s/reactions/%s/@me",
		channelID, messageID, url.PathEscape(emoji.String()))
	if _, err := s.client.doRequest(ctx, http.MethodPut, path, s.token, nil, ""); err != nil {
		return fmt.Errorf("platform: adding reaction %s to message %s: %w", emoji, messageID, err)
	}
	return nil
}

// Guild fetches a guild the bot is a member of.
func (s *DirectSession) Guild(ctx context.Context, guildID ref.GuildID) (*Guild, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/guilds/"+guildID.String(), s.token, nil, "")
	if err != nil {
		return nil, fmt.Errorf("platform: fetching guild %s: %w", guildID, err)
	}
	var guild Guild
	if err := json.Unmarshal(body, &guild); err != nil {
		return nil, fmt.Errorf("platform: failed to parse guild: %w", err)
	}
	return &guild, nil
}

// GuildRoles lists all roles in a guild.
func (s *DirectSession) GuildRoles(ctx context.Context, guildID ref.GuildID) ([]Role, error) {
	path := fmt.Sprintf("/guilds/%s/roles", guildID)
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.token, nil, "")
	if err != nil {
		return nil, fmt.Errorf("platform: fetching roles for guild %s: %w", guildID, err)
	}
	var roles []Role
	if err := json.Unmarshal(body, &roles); err != nil {
		return nil, fmt.Errorf("platform: failed to parse roles: %w", err)
	}
	return roles, nil
}

// Role fetches a single guild role.
func (s *DirectSession) Role(ctx context.Context, guildID ref.GuildID, roleID ref.RoleID) (*Role, error) {
	path := fmt.Sprintf("/guilds/%s/roles/%s", guildID, roleID)
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.token, nil, "")
	if err != nil {
		return nil, fmt.Errorf("platform: fetching role %s: %w", roleID, err)
	}
	var role Role
	if err := json.Unmarshal(body, &role); err != nil {
		return nil, fmt.Errorf("platform: failed to parse role: %w", err)
	}
	return &role, nil
}

// Member fetches a guild member.
func (s *DirectSession) Member(ctx context.Context, guildID ref.GuildID, userID ref.UserID) (*Member, error) {
	path := fmt.Sprintf("/guilds/%s/members/%s", guildID, userID)
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.token, nil, "")
	if err != nil {
		return nil, fmt.Errorf("platform: fetching member %s: %w", userID, err)
	}
	var member Member
	if err := json.Unmarshal(body, &member); err != nil {
		return nil, fmt.Errorf("platform: failed to parse member: %w", err)
	}
	return &member, nil
}

// AddMemberRole grants a role to a member.
func (s *DirectSession) AddMemberRole(ctx context.Context, guildID ref.GuildID, userID ref.UserID, roleID ref.RoleID, reason string) error {
	path := fmt.Sprintf("/guilds/%s/members/%s/roles/%s", guildID, userID, roleID)
	if _, err := s.client.doRequest(ctx, http.MethodPut, path, s.token, nil, reason); err != nil {
		return fmt.Errorf("platform: granting role %s to %s: %w", roleID, userID, err)
	}
	return nil
}

// RemoveMemberRole revokes a role from a member.
func (s *DirectSession) RemoveMemberRole(ctx context.Context, guildID ref.GuildID, userID ref.UserID, roleID ref.RoleID, reason string) error {
	path := fmt.Sprintf("/guilds/%s/members/%s/roles/%s", guildID, userID, roleID)
	if _, err := s.client.doRequest(ctx, http.MethodDelete, path, s.token, nil, reason); err != nil {
		return fmt.Errorf("platform: revoking role %s from %s: %w", roleID, userID, err)
	}
	return nil
}

// CreateBan bans a user from a guild. deleteMessageDays is converted
// to the seconds field the current API expects.
func (s *DirectSession) CreateBan(ctx context.Context, guildID ref.GuildID, userID ref.UserID, deleteMessageDays int, reason string) error {
	path := fmt.Sprintf("/guilds/%s/bans/%s", guildID, userID)
	request := map[string]any{
		"delete_message_seconds": deleteMessageDays * 24 * 60 * 60,
	}
	if _, err := s.client.doRequest(ctx, http.MethodPut, path, s.token, request, reason); err != nil {
		return fmt.Errorf("platform: banning %s from guild %s: %w", userID, guildID, err)
	}
	return nil
}

// RemoveMember kicks a member from a guild.
func (s *DirectSession) RemoveMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID, reason string) error {
	path := fmt.Sprintf("/guilds/%s/members/%s", guildID, userID)
	if _, err := s.client.doRequest(ctx, http.MethodDelete, path, s.token, nil, reason); err != nil {
		return fmt.Errorf("platform: kicking %s from guild %s: %w", userID, guildID, err)
	}
	return nil
}

// TimeoutMember mutes a member until the given time.
func (s *DirectSession) TimeoutMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID, until time.Time, reason string) error {
	path := fmt.Sprintf("/guilds/%s/members/%s", guildID, userID)
	request := map[string]any{
		"communication_disabled_until": until.UTC().Format(time.RFC3339),
	}
	if _, err := s.client.doRequest(ctx, http.MethodPatch, path, s.token, request, reason); err != nil {
		return fmt.Errorf("platform: timing out %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}

// RegisterCommands replaces the application's global slash-command
// set with the given definitions.
func (s *DirectSession) RegisterCommands(ctx context.Context, applicationID string, commands []ApplicationCommand) error {
	path := fmt.Sprintf("/applications/%s/commands", url.PathEscape(applicationID))
	if _, err := s.client.doRequest(ctx, http.MethodPut, path, s.token, commands, ""); err != nil {
		return fmt.Errorf("platform: registering %d commands: %w", len(commands), err)
	}
	return nil
}

// CreateInteractionResponse replies to an interaction.
func (s *DirectSession) CreateInteractionResponse(ctx context.Context, interactionID, interactionToken string, response InteractionResponse) error {
	path := fmt.Sprintf("/interactions/%s/%s/callback",
		url.PathEscape(interactionID), url.PathEscape(interactionToken))
	if _, err := s.client.doRequest(ctx, http.MethodPost, path, s.token, response, ""); err != nil {
		return fmt.Errorf("platform: responding to interaction %s: %w", interactionID, err)
	}
	return nil
}
