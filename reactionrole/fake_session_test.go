// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package reactionrole

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/warden-project/warden/lib/ref"
	"github.com/warden-project/warden/platform"
)

// roleChange records one grant or revoke the fake session received.
type roleChange struct {
	Guild  ref.GuildID
	User   ref.UserID
	Role   ref.RoleID
	Reason string
}

// fakeSession is an in-memory platform.Session. Lookups hit the maps;
// mutations are recorded, not applied, so tests assert on exactly the
// calls made.
type fakeSession struct {
	mu sync.Mutex

	messages map[ref.MessageID]*platform.Message
	guilds   map[ref.GuildID]platform.Guild
	roles    map[ref.GuildID][]platform.Role
	members  map[ref.UserID]*platform.Member

	reactionErr error
	rolesErr    error
	grantErr    error
	revokeErr   error

	addedReactions []string
	grants         []roleChange
	revokes        []roleChange
	guildFetches   int
}

var _ platform.Session = (*fakeSession)(nil)

func newFakeSession() *fakeSession {
	return &fakeSession{
		messages: make(map[ref.MessageID]*platform.Message),
		guilds:   make(map[ref.GuildID]platform.Guild),
		roles:    make(map[ref.GuildID][]platform.Role),
		members:  make(map[ref.UserID]*platform.Member),
	}
}

func notFound(code int) error {
	return &platform.APIError{Code: code, Message: "not found", StatusCode: http.StatusNotFound}
}

func (s *fakeSession) Close() error { return nil }

func (s *fakeSession) CurrentUser(ctx context.Context) (*platform.User, error) {
	return &platform.User{Username: "warden", Bot: true}, nil
}

func (s *fakeSession) FetchMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID) (*platform.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if message, ok := s.messages[messageID]; ok {
		return message, nil
	}
	return nil, notFound(platform.CodeUnknownMessage)
}

func (s *fakeSession) AddReaction(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID, emoji ref.EmojiKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reactionErr != nil {
		return s.reactionErr
	}
	s.addedReactions = append(s.addedReactions, messageID.String()+"/"+emoji.String())
	return nil
}

func (s *fakeSession) Guild(ctx context.Context, guildID ref.GuildID) (*platform.Guild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guildFetches++
	if guild, ok := s.guilds[guildID]; ok {
		return &guild, nil
	}
	return nil, notFound(platform.CodeUnknownGuild)
}

func (s *fakeSession) GuildRoles(ctx context.Context, guildID ref.GuildID) ([]platform.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rolesErr != nil {
		return nil, s.rolesErr
	}
	return s.roles[guildID], nil
}

func (s *fakeSession) Role(ctx context.Context, guildID ref.GuildID, roleID ref.RoleID) (*platform.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, role := range s.roles[guildID] {
		if role.ID == roleID {
			return &role, nil
		}
	}
	return nil, notFound(platform.CodeUnknownRole)
}

func (s *fakeSession) Member(ctx context.Context, guildID ref.GuildID, userID ref.UserID) (*platform.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if member, ok := s.members[userID]; ok {
		return member, nil
	}
	return nil, notFound(platform.CodeUnknownMember)
}

func (s *fakeSession) AddMemberRole(ctx context.Context, guildID ref.GuildID, userID ref.UserID, roleID ref.RoleID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grantErr != nil {
		return s.grantErr
	}
	s.grants = append(s.grants, roleChange{Guild: guildID, User: userID, Role: roleID, Reason: reason})
	return nil
}

func (s *fakeSession) RemoveMemberRole(ctx context.Context, guildID ref.GuildID, userID ref.UserID, roleID ref.RoleID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revokeErr != nil {
		return s.revokeErr
	}
	s.revokes = append(s.revokes, roleChange{Guild: guildID, User: userID, Role: roleID, Reason: reason})
	return nil
}

func (s *fakeSession) CreateBan(ctx context.Context, guildID ref.GuildID, userID ref.UserID, deleteMessageDays int, reason string) error {
	return nil
}

func (s *fakeSession) RemoveMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID, reason string) error {
	return nil
}

func (s *fakeSession) TimeoutMember(ctx context.Context, guildID ref.GuildID, userID ref.UserID, until time.Time, reason string) error {
	return nil
}

func (s *fakeSession) RegisterCommands(ctx context.Context, applicationID string, commands []platform.ApplicationCommand) error {
	return nil
}

func (s *fakeSession) CreateInteractionResponse(ctx context.Context, interactionID, interactionToken string, response platform.InteractionResponse) error {
	return nil
}

// Test fixture helpers.

func mustGuildID(t *testing.T, raw string) ref.GuildID {
	t.Helper()
	id, err := ref.ParseGuildID(raw)
	if err != nil {
		t.Fatalf("ParseGuildID(%q) failed: %v", raw, err)
	}
	return id
}

func mustChannelID(t *testing.T, raw string) ref.ChannelID {
	t.Helper()
	id, err := ref.ParseChannelID(raw)
	if err != nil {
		t.Fatalf("ParseChannelID(%q) failed: %v", raw, err)
	}
	return id
}

func mustMessageID(t *testing.T, raw string) ref.MessageID {
	t.Helper()
	id, err := ref.ParseMessageID(raw)
	if err != nil {
		t.Fatalf("ParseMessageID(%q) failed: %v", raw, err)
	}
	return id
}

func mustRoleID(t *testing.T, raw string) ref.RoleID {
	t.Helper()
	id, err := ref.ParseRoleID(raw)
	if err != nil {
		t.Fatalf("ParseRoleID(%q) failed: %v", raw, err)
	}
	return id
}

func mustUserID(t *testing.T, raw string) ref.UserID {
	t.Helper()
	id, err := ref.ParseUserID(raw)
	if err != nil {
		t.Fatalf("ParseUserID(%q) failed: %v", raw, err)
	}
	return id
}

func mustEmojiKey(t *testing.T, raw string) ref.EmojiKey {
	t.Helper()
	key, err := ref.ParseEmojiKey(raw)
	if err != nil {
		t.Fatalf("ParseEmojiKey(%q) failed: %v", raw, err)
	}
	return key
}

// testBinding builds a valid binding with distinct IDs per field.
func testBinding(t *testing.T, message, emoji, role string) Binding {
	t.Helper()
	return Binding{
		GuildID:   mustGuildID(t, "500"),
		ChannelID: mustChannelID(t, "200"),
		MessageID: mustMessageID(t, message),
		Emoji:     mustEmojiKey(t, emoji),
		RoleID:    mustRoleID(t, role),
	}
}
