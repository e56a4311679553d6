// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/warden-project/warden/lib/ref"
	"github.com/warden-project/warden/moderation"
	"github.com/warden-project/warden/platform"
	"github.com/warden-project/warden/reactionrole"
)

// defaultReason is recorded in the audit log when the moderator gives
// none.
const defaultReason = "No reason provided"

// customEmojiPattern matches the chat syntax for a custom emoji,
// <:name:id> or <a:name:id> for animated ones.
var customEmojiPattern = regexp.MustCompile(`^<a?:([A-Za-z0-9_]+):([0-9]+)>$`)

// Dispatcher routes slash-command interactions. Discord has already
// enforced each command's member permissions before the interaction
// arrives, so the dispatcher treats invocations as authorized and
// focuses on argument validation and reply wording.
type Dispatcher struct {
	session platform.Session
	manager *reactionrole.Manager
	actions *moderation.Actions
	logger  *slog.Logger
}

// DispatcherConfig holds dependencies for NewDispatcher.
type DispatcherConfig struct {
	Session platform.Session
	Manager *reactionrole.Manager
	Actions *moderation.Actions
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
}

// NewDispatcher creates a command dispatcher.
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		session: config.Session,
		manager: config.Manager,
		actions: config.Actions,
		logger:  logger,
	}
}

// HandleInteraction executes one slash command and replies. It never
// returns an error: every failure becomes an ephemeral reply to the
// invoker, and a reply failure is logged.
func (d *Dispatcher) HandleInteraction(ctx context.Context, interaction platform.Interaction) {
	logger := d.logger.With(
		"command", interaction.Data.Name,
		"guild", interaction.GuildID,
	)

	var reply platform.InteractionReply
	switch interaction.Data.Name {
	case "ban":
		reply = d.handleBan(ctx, interaction)
	case "kick":
		reply = d.handleKick(ctx, interaction)
	case "timeout":
		reply = d.handleTimeout(ctx, interaction)
	case "reactionrole":
		reply = d.handleReactionRole(ctx, interaction)
	case "help":
		reply = helpReply()
	default:
		logger.Warn("unknown command")
		reply = errorReply("Unknown command.")
	}

	response := platform.InteractionResponse{
		Type: platform.ResponseChannelMessage,
		Data: &reply,
	}
	if err := d.session.CreateInteractionResponse(ctx, interaction.ID, interaction.Token, response); err != nil {
		logger.Error("failed to send interaction response", "error", err)
	}
}

func (d *Dispatcher) handleBan(ctx context.Context, interaction platform.Interaction) platform.InteractionReply {
	target, err := userOption(interaction.Data.Options, "user")
	if err != nil {
		return errorReply("Invalid user.")
	}
	days, ok := platform.IntOption(interaction.Data.Options, "delete_days")
	if !ok {
		days = 0
	}
	reason := reasonOption(interaction.Data.Options)

	report, err := d.actions.Ban(ctx, interaction.GuildID, target, int(days), reason)
	if err != nil {
		return moderationErrorReply(err)
	}
	return publicReply(fmt.Sprintf("🔨 Banned %s. Reason: %s", report.TargetName, report.Reason))
}

func (d *Dispatcher) handleKick(ctx context.Context, interaction platform.Interaction) platform.InteractionReply {
	target, err := userOption(interaction.Data.Options, "user")
	if err != nil {
		return errorReply("Invalid user.")
	}
	reason := reasonOption(interaction.Data.Options)

	report, err := d.actions.Kick(ctx, interaction.GuildID, target, reason)
	if err != nil {
		return moderationErrorReply(err)
	}
	return publicReply(fmt.Sprintf("👢 Kicked %s. Reason: %s", report.TargetName, report.Reason))
}

func (d *Dispatcher) handleTimeout(ctx context.Context, interaction platform.Interaction) platform.InteractionReply {
	target, err := userOption(interaction.Data.Options, "user")
	if err != nil {
		return errorReply("Invalid user.")
	}
	minutes, ok := platform.IntOption(interaction.Data.Options, "minutes")
	if !ok {
		return errorReply("Timeout duration is required.")
	}
	reason := reasonOption(interaction.Data.Options)

	report, err := d.actions.Timeout(ctx, interaction.GuildID, target, int(minutes), reason)
	if err != nil {
		return moderationErrorReply(err)
	}
	return publicReply(fmt.Sprintf("🔇 Timed out %s for %d minutes. Reason: %s",
		report.TargetName, minutes, report.Reason))
}

func (d *Dispatcher) handleReactionRole(ctx context.Context, interaction platform.Interaction) platform.InteractionReply {
	subcommand, options, ok := interaction.Data.Subcommand()
	if !ok {
		return errorReply("Unknown subcommand.")
	}
	switch subcommand {
	case "add":
		return d.handleReactionRoleAdd(ctx, interaction, options)
	case "remove":
		return d.handleReactionRoleRemove(ctx, options)
	case "list":
		return d.handleReactionRoleList(ctx, interaction)
	default:
		return errorReply("Unknown subcommand.")
	}
}

func (d *Dispatcher) handleReactionRoleAdd(ctx context.Context, interaction platform.Interaction, options []platform.InteractionOption) platform.InteractionReply {
	messageID, err := ref.ParseMessageID(platform.StringOption(options, "message_id"))
	if err != nil {
		return errorReply("That doesn't look like a message ID.")
	}
	emoji, err := parseEmojiInput(platform.StringOption(options, "emoji"))
	if err != nil {
		return errorReply("I don't recognize that emoji.")
	}
	roleID, err := ref.ParseRoleID(platform.StringOption(options, "role"))
	if err != nil {
		return errorReply("Invalid role.")
	}

	result, err := d.manager.AddBinding(ctx, reactionrole.Binding{
		GuildID:   interaction.GuildID,
		ChannelID: interaction.ChannelID,
		MessageID: messageID,
		Emoji:     emoji,
		RoleID:    roleID,
	})
	switch {
	case errors.Is(err, reactionrole.ErrMessageNotFound):
		return errorReply("I can't find that message in this channel.")
	case errors.Is(err, reactionrole.ErrReactionFailed):
		return errorReply("I couldn't react with that emoji. Do I have access to it?")
	case err != nil:
		d.logger.Error("reaction role add failed", "error", err)
		return errorReply("Something went wrong setting that up.")
	}

	content := fmt.Sprintf("✅ Reaction role set up! React with %s to get the %s role.",
		emojiDisplay(emoji), roleMention(roleID))
	if result.Replaced != nil {
		content += fmt.Sprintf(" (This replaces the previous binding to %s.)",
			roleMention(result.Replaced.RoleID))
	}
	return publicReply(content)
}

func (d *Dispatcher) handleReactionRoleRemove(ctx context.Context, options []platform.InteractionOption) platform.InteractionReply {
	messageID, err := ref.ParseMessageID(platform.StringOption(options, "message_id"))
	if err != nil {
		return errorReply("That doesn't look like a message ID.")
	}
	emoji, err := parseEmojiInput(platform.StringOption(options, "emoji"))
	if err != nil {
		return errorReply("I don't recognize that emoji.")
	}

	removed, err := d.manager.RemoveBinding(ctx, messageID, emoji)
	if err != nil {
		d.logger.Error("reaction role remove failed", "error", err)
		return errorReply("Something went wrong removing that binding.")
	}
	if !removed {
		return errorReply("No reaction role found for that emoji on that message.")
	}
	return publicReply("🗑️ Reaction role removed.")
}

func (d *Dispatcher) handleReactionRoleList(ctx context.Context, interaction platform.Interaction) platform.InteractionReply {
	statuses := d.manager.ListBindings(ctx, interaction.GuildID)
	if len(statuses) == 0 {
		return ephemeralReply("No reaction roles are set up in this server.")
	}

	var builder strings.Builder
	builder.WriteString("**Reaction roles:**\n")
	for _, status := range statuses {
		roleLabel := roleMention(status.Binding.RoleID)
		if status.RoleDeleted {
			roleLabel = "⚠️ Deleted Role"
		} else if status.RoleName != "" {
			roleLabel = status.RoleName
		}
		fmt.Fprintf(&builder, "• message `%s` — %s → %s\n",
			status.Binding.MessageID, emojiDisplay(status.Binding.Emoji), roleLabel)
	}
	return ephemeralReply(builder.String())
}

func helpReply() platform.InteractionReply {
	return ephemeralReply(strings.Join([]string{
		"**Warden commands**",
		"`/ban user [delete_days] [reason]` — ban a user",
		"`/kick user [reason]` — kick a member",
		"`/timeout user minutes [reason]` — time out a member (1 to 40320 minutes)",
		"`/reactionrole add message_id emoji role` — grant a role when members react",
		"`/reactionrole remove message_id emoji` — remove a binding",
		"`/reactionrole list` — list this server's bindings",
	}, "\n"))
}

// parseEmojiInput canonicalizes the emoji argument: either the
// <:name:id> chat syntax for a custom emoji, or a raw unicode emoji.
func parseEmojiInput(raw string) (ref.EmojiKey, error) {
	trimmed := strings.TrimSpace(raw)
	if match := customEmojiPattern.FindStringSubmatch(trimmed); match != nil {
		return ref.CustomEmojiKey(match[1], match[2])
	}
	return ref.ParseEmojiKey(trimmed)
}

// emojiDisplay renders a canonical emoji key back into chat syntax.
func emojiDisplay(emoji ref.EmojiKey) string {
	if emoji.IsCustom() {
		return "<:" + emoji.String() + ">"
	}
	return emoji.String()
}

func roleMention(roleID ref.RoleID) string {
	return "<@&" + roleID.String() + ">"
}

// userOption extracts a user-typed option, whose value is the user's
// snowflake.
func userOption(options []platform.InteractionOption, name string) (ref.UserID, error) {
	return ref.ParseUserID(platform.StringOption(options, name))
}

func reasonOption(options []platform.InteractionOption) string {
	if reason := platform.StringOption(options, "reason"); reason != "" {
		return reason
	}
	return defaultReason
}

// moderationErrorReply words the failure for the moderator, keeping
// API details out of chat.
func moderationErrorReply(err error) platform.InteractionReply {
	switch {
	case errors.Is(err, moderation.ErrHierarchy):
		return errorReply("I can't act on that user: they're not below me in the role hierarchy.")
	case errors.Is(err, moderation.ErrTargetNotMember):
		return errorReply("That user isn't a member of this server.")
	case errors.Is(err, moderation.ErrInvalidDeleteDays):
		return errorReply("Message deletion must cover 0, 1, or 7 days.")
	case errors.Is(err, moderation.ErrInvalidTimeout):
		return errorReply(fmt.Sprintf("Timeout must be between %d and %d minutes.",
			moderation.MinTimeoutMinutes, moderation.MaxTimeoutMinutes))
	case platform.IsAPICode(err, platform.CodeMissingPermissions):
		return errorReply("I don't have permission to do that.")
	default:
		return errorReply("Something went wrong running that command.")
	}
}

func publicReply(content string) platform.InteractionReply {
	return platform.InteractionReply{Content: content}
}

func ephemeralReply(content string) platform.InteractionReply {
	return platform.InteractionReply{Content: content, Flags: platform.FlagEphemeral}
}

func errorReply(content string) platform.InteractionReply {
	return ephemeralReply("❌ " + content)
}
