// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"fmt"

	"github.com/warden-project/warden/lib/ref"
)

// User is a Discord user.
type User struct {
	ID       ref.UserID `json:"id"`
	Username string     `json:"username"`
	Bot      bool       `json:"bot,omitempty"`
}

// Message is a Discord message, reduced to the fields warden reads.
type Message struct {
	ID        ref.MessageID `json:"id"`
	ChannelID ref.ChannelID `json:"channel_id"`
	Author    User          `json:"author"`
	Content   string        `json:"content"`
	Reactions []Reaction    `json:"reactions,omitempty"`
}

// Reaction is an aggregated reaction entry on a message.
type Reaction struct {
	Count int   `json:"count"`
	Emoji Emoji `json:"emoji"`
}

// Emoji is the wire form of an emoji in gateway payloads and message
// reactions. Unicode emoji have an empty ID and the codepoint
// sequence in Name; custom guild emoji have a snowflake ID, and Name
// may be empty in some gateway payloads (the event is then partial —
// see ReactionEvent.Partial).
type Emoji struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Key canonicalizes the emoji into its binding-key form. Fails when
// the payload carries too little to canonicalize (custom emoji with
// no name).
func (e Emoji) Key() (ref.EmojiKey, error) {
	if e.ID != "" {
		return ref.CustomEmojiKey(e.Name, e.ID)
	}
	return ref.ParseEmojiKey(e.Name)
}

// Role is a Discord guild role.
type Role struct {
	ID       ref.RoleID `json:"id"`
	Name     string     `json:"name"`
	Position int        `json:"position"`
	Managed  bool       `json:"managed,omitempty"`
}

// Member is a guild member.
type Member struct {
	User  User         `json:"user"`
	Nick  string       `json:"nick,omitempty"`
	Roles []ref.RoleID `json:"roles"`
}

// HasRole reports whether the member currently holds the role.
func (m *Member) HasRole(roleID ref.RoleID) bool {
	for _, held := range m.Roles {
		if held == roleID {
			return true
		}
	}
	return false
}

// DisplayName returns the member's nickname when set, otherwise the
// account username.
func (m *Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	return m.User.Username
}

// Guild is a Discord guild (server).
type Guild struct {
	ID      ref.GuildID `json:"id"`
	Name    string      `json:"name"`
	OwnerID ref.UserID  `json:"owner_id"`
}

// ReactionEventKind distinguishes reaction-add from reaction-remove.
type ReactionEventKind int

const (
	// ReactionAdded means a user placed a reaction.
	ReactionAdded ReactionEventKind = iota + 1
	// ReactionRemoved means a user withdrew a reaction.
	ReactionRemoved
)

// String returns the kind name for logging.
func (k ReactionEventKind) String() string {
	switch k {
	case ReactionAdded:
		return "added"
	case ReactionRemoved:
		return "removed"
	default:
		return fmt.Sprintf("ReactionEventKind(%d)", int(k))
	}
}

// ReactionEvent is a reaction-add or reaction-remove delivered by the
// gateway.
type ReactionEvent struct {
	Kind      ReactionEventKind
	GuildID   ref.GuildID
	ChannelID ref.ChannelID
	MessageID ref.MessageID
	UserID    ref.UserID
	Emoji     Emoji

	// Partial marks an event whose payload lacked the data needed to
	// canonicalize the emoji (a custom emoji delivered without its
	// name). The reconciler completes partial events by fetching the
	// message and matching the reaction by emoji ID.
	Partial bool
}

// ReadyEvent is the gateway READY dispatch, identifying the bot user.
type ReadyEvent struct {
	User      User   `json:"user"`
	SessionID string `json:"session_id"`
}

// Interaction is a slash-command invocation delivered by the gateway.
// By the time warden sees one, Discord has already enforced the
// default member permissions declared on the command — the dispatcher
// treats the invocation as authorized.
type Interaction struct {
	ID        string          `json:"id"`
	Token     string          `json:"token"`
	GuildID   ref.GuildID     `json:"guild_id"`
	ChannelID ref.ChannelID   `json:"channel_id"`
	Member    *Member         `json:"member,omitempty"`
	Data      InteractionData `json:"data"`
}

// InteractionData is the invoked command and its arguments.
type InteractionData struct {
	Name    string              `json:"name"`
	Options []InteractionOption `json:"options,omitempty"`
}

// InteractionOption is one command argument. Subcommands nest their
// arguments in Options.
type InteractionOption struct {
	Name    string              `json:"name"`
	Type    int                 `json:"type"`
	Value   any                 `json:"value,omitempty"`
	Options []InteractionOption `json:"options,omitempty"`
}

// Subcommand returns the invoked subcommand name and its options, or
// false when the command has no subcommand structure.
func (d InteractionData) Subcommand() (string, []InteractionOption, bool) {
	if len(d.Options) == 1 && d.Options[0].Type == OptionSubcommand {
		return d.Options[0].Name, d.Options[0].Options, true
	}
	return "", nil, false
}

// StringOption returns the named string option from a flat option
// list, or "" when absent.
func StringOption(options []InteractionOption, name string) string {
	for _, option := range options {
		if option.Name == name {
			if value, ok := option.Value.(string); ok {
				return value
			}
		}
	}
	return ""
}

// IntOption returns the named integer option, or (0, false) when
// absent. JSON numbers arrive as float64.
func IntOption(options []InteractionOption, name string) (int64, bool) {
	for _, option := range options {
		if option.Name == name {
			if value, ok := option.Value.(float64); ok {
				return int64(value), true
			}
		}
	}
	return 0, false
}

// InteractionResponse is the reply to an interaction.
type InteractionResponse struct {
	Type int               `json:"type"`
	Data *InteractionReply `json:"data,omitempty"`
}

// InteractionReply is the message body of an interaction response.
type InteractionReply struct {
	Content string `json:"content"`
	Flags   int    `json:"flags,omitempty"`
}

// Interaction response types and message flags warden uses.
const (
	// ResponseChannelMessage replies with a message in the channel.
	ResponseChannelMessage = 4

	// FlagEphemeral makes the reply visible only to the invoker.
	FlagEphemeral = 1 << 6
)

// ApplicationCommand is a slash-command definition for registration.
type ApplicationCommand struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// DefaultMemberPermissions is the permission bitset (as a decimal
	// string) a member needs before Discord shows and accepts the
	// command. Authorization is enforced by the platform; warden's
	// dispatcher trusts it.
	DefaultMemberPermissions string `json:"default_member_permissions,omitempty"`

	Options []CommandOption `json:"options,omitempty"`
}

// CommandOption is one declared command argument (or subcommand).
type CommandOption struct {
	Type        int                   `json:"type"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Required    bool                  `json:"required,omitempty"`
	MinValue    *int                  `json:"min_value,omitempty"`
	MaxValue    *int                  `json:"max_value,omitempty"`
	Choices     []CommandOptionChoice `json:"choices,omitempty"`
	Options     []CommandOption       `json:"options,omitempty"`
}

// CommandOptionChoice is one fixed choice for an option.
type CommandOptionChoice struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Command option types warden declares.
const (
	OptionSubcommand = 1
	OptionString     = 3
	OptionInteger    = 4
	OptionUser       = 6
	OptionRole       = 8
)
