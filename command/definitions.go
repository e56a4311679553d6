// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package command declares warden's slash commands and routes their
// invocations to the moderation and reaction-role layers.
package command

import "github.com/warden-project/warden/platform"

// Permission bitsets (decimal strings) gating each command. Discord
// enforces these before the interaction reaches warden.
const (
	permKickMembers     = "2"
	permBanMembers      = "4"
	permManageRoles     = "268435456"
	permModerateMembers = "1099511627776"
)

func intPointer(v int) *int { return &v }

// Definitions returns the slash commands warden registers at startup.
// Registration replaces the application's global command set, so a
// removed command here disappears from Discord too.
func Definitions() []platform.ApplicationCommand {
	return []platform.ApplicationCommand{
		{
			Name:                     "ban",
			Description:              "Ban a user from the server",
			DefaultMemberPermissions: permBanMembers,
			Options: []platform.CommandOption{
				{
					Type:        platform.OptionUser,
					Name:        "user",
					Description: "The user to ban",
					Required:    true,
				},
				{
					Type:        platform.OptionInteger,
					Name:        "delete_days",
					Description: "Days of messages to delete",
					Choices: []platform.CommandOptionChoice{
						{Name: "Don't delete any", Value: 0},
						{Name: "Previous 24 hours", Value: 1},
						{Name: "Previous 7 days", Value: 7},
					},
				},
				{
					Type:        platform.OptionString,
					Name:        "reason",
					Description: "Reason for the ban",
				},
			},
		},
		{
			Name:                     "kick",
			Description:              "Kick a member from the server",
			DefaultMemberPermissions: permKickMembers,
			Options: []platform.CommandOption{
				{
					Type:        platform.OptionUser,
					Name:        "user",
					Description: "The member to kick",
					Required:    true,
				},
				{
					Type:        platform.OptionString,
					Name:        "reason",
					Description: "Reason for the kick",
				},
			},
		},
		{
			Name:                     "timeout",
			Description:              "Time out a member",
			DefaultMemberPermissions: permModerateMembers,
			Options: []platform.CommandOption{
				{
					Type:        platform.OptionUser,
					Name:        "user",
					Description: "The member to time out",
					Required:    true,
				},
				{
					Type:        platform.OptionInteger,
					Name:        "minutes",
					Description: "Timeout duration in minutes",
					Required:    true,
					MinValue:    intPointer(1),
					MaxValue:    intPointer(40320),
				},
				{
					Type:        platform.OptionString,
					Name:        "reason",
					Description: "Reason for the timeout",
				},
			},
		},
		{
			Name:                     "reactionrole",
			Description:              "Manage reaction roles",
			DefaultMemberPermissions: permManageRoles,
			Options: []platform.CommandOption{
				{
					Type:        platform.OptionSubcommand,
					Name:        "add",
					Description: "Bind an emoji on a message to a role",
					Options: []platform.CommandOption{
						{
							Type:        platform.OptionString,
							Name:        "message_id",
							Description: "ID of the message to watch",
							Required:    true,
						},
						{
							Type:        platform.OptionString,
							Name:        "emoji",
							Description: "Emoji to react with",
							Required:    true,
						},
						{
							Type:        platform.OptionRole,
							Name:        "role",
							Description: "Role to grant",
							Required:    true,
						},
					},
				},
				{
					Type:        platform.OptionSubcommand,
					Name:        "remove",
					Description: "Remove a reaction role binding",
					Options: []platform.CommandOption{
						{
							Type:        platform.OptionString,
							Name:        "message_id",
							Description: "ID of the bound message",
							Required:    true,
						},
						{
							Type:        platform.OptionString,
							Name:        "emoji",
							Description: "Bound emoji",
							Required:    true,
						},
					},
				},
				{
					Type:        platform.OptionSubcommand,
					Name:        "list",
					Description: "List this server's reaction roles",
				},
			},
		},
		{
			Name:        "help",
			Description: "Show what warden can do",
		},
	}
}
