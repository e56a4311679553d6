// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/warden-project/warden/lib/clock"
	"github.com/warden-project/warden/lib/ref"
	"github.com/warden-project/warden/lib/secret"
)

// Gateway opcodes warden handles.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

// Gateway intents: the event categories warden subscribes to.
const (
	IntentGuilds                = 1 << 0
	IntentGuildMembers          = 1 << 1
	IntentGuildMessageReactions = 1 << 10
)

// ErrGatewayReconnect is returned by RunGateway when the server asks
// for a reconnect (opcode 7) or invalidates the session (opcode 9).
// The caller should re-dial; warden re-identifies rather than
// resuming, accepting a gap in delivered events.
var ErrGatewayReconnect = errors.New("platform: gateway requested reconnect")

// GatewayConfig holds configuration for a gateway connection.
type GatewayConfig struct {
	// URL is the websocket gateway URL.
	URL string
	// Token is the bot token. The gateway reads it at identify time
	// but does not take ownership.
	Token *secret.Buffer
	// Intents is the OR of the Intent* constants to subscribe to.
	Intents int
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
	// Clock drives the heartbeat ticker. If nil, clock.Real().
	Clock clock.Clock
	// Dialer is used to establish the websocket connection. If nil,
	// websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// GatewayCallbacks receives decoded gateway dispatches. Nil callbacks
// are skipped. Callbacks run on the gateway read goroutine and must
// not block; hand work off to other goroutines.
type GatewayCallbacks struct {
	Ready       func(ReadyEvent)
	Reaction    func(ReactionEvent)
	Interaction func(Interaction)
}

// gatewayPayload is the envelope of every gateway frame.
type gatewayPayload struct {
	Op   int             `json:"op"`
	Data json.RawMessage `json:"d"`
	Seq  *int64          `json:"s"`
	Type string          `json:"t"`
}

// helloData is the opcode 10 payload.
type helloData struct {
	HeartbeatInterval float64 `json:"heartbeat_interval"`
}

// reactionPayload is the MESSAGE_REACTION_ADD / _REMOVE dispatch body.
type reactionPayload struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	GuildID   string `json:"guild_id,omitempty"`
	Emoji     Emoji  `json:"emoji"`
}

// RunGateway connects to the gateway, identifies, and delivers
// dispatched events to callbacks until the connection drops or ctx is
// cancelled. Returns ctx.Err() on cancellation, ErrGatewayReconnect
// when the server asks for a fresh connection, and the transport
// error otherwise. The caller owns reconnect policy.
func RunGateway(ctx context.Context, config GatewayConfig, callbacks GatewayCallbacks) error {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	dialer := config.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, config.URL, nil)
	if err != nil {
		return fmt.Errorf("platform: dialing gateway: %w", err)
	}
	defer conn.Close()

	// Close the connection when ctx is cancelled so the blocking read
	// below unblocks.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchDone:
		}
	}()

	// Writes come from two goroutines (read loop and heartbeat);
	// gorilla allows one concurrent writer.
	var writeMu sync.Mutex
	writeJSON := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	var lastSeq atomic.Int64

	// The first frame must be hello, carrying the heartbeat interval.
	var hello gatewayPayload
	if err := conn.ReadJSON(&hello); err != nil {
		return wrapGatewayError(ctx, "reading hello", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("platform: expected hello opcode %d, got %d", opHello, hello.Op)
	}
	var helloBody helloData
	if err := json.Unmarshal(hello.Data, &helloBody); err != nil {
		return fmt.Errorf("platform: failed to parse hello: %w", err)
	}
	heartbeatInterval := time.Duration(helloBody.HeartbeatInterval) * time.Millisecond
	if heartbeatInterval <= 0 {
		return fmt.Errorf("platform: hello carried non-positive heartbeat interval %v", heartbeatInterval)
	}

	identify := map[string]any{
		"op": opIdentify,
		"d": map[string]any{
			"token":   config.Token.String(),
			"intents": config.Intents,
			"properties": map[string]string{
				"os":      runtime.GOOS,
				"browser": "warden",
				"device":  "warden",
			},
		},
	}
	if err := writeJSON(identify); err != nil {
		return wrapGatewayError(ctx, "sending identify", err)
	}

	logger.Debug("gateway identified", "heartbeat_interval", heartbeatInterval)

	// Heartbeat loop. A failed write closes the connection, which
	// surfaces as a read error in the main loop.
	heartbeatDone := make(chan struct{})
	defer close(heartbeatDone)
	go func() {
		ticker := clk.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-heartbeatDone:
				return
			case <-ticker.C:
				beat := map[string]any{"op": opHeartbeat, "d": lastSeq.Load()}
				if err := writeJSON(beat); err != nil {
					logger.Debug("heartbeat write failed", "error", err)
					conn.Close()
					return
				}
			}
		}
	}()

	for {
		var payload gatewayPayload
		if err := conn.ReadJSON(&payload); err != nil {
			return wrapGatewayError(ctx, "reading frame", err)
		}
		if payload.Seq != nil {
			lastSeq.Store(*payload.Seq)
		}

		switch payload.Op {
		case opDispatch:
			dispatchGatewayEvent(logger, payload, callbacks)
		case opHeartbeat:
			// The server may request an immediate heartbeat.
			beat := map[string]any{"op": opHeartbeat, "d": lastSeq.Load()}
			if err := writeJSON(beat); err != nil {
				return wrapGatewayError(ctx, "answering heartbeat request", err)
			}
		case opHeartbeatACK:
			// Nothing to do.
		case opReconnect, opInvalidSession:
			logger.Info("gateway requested reconnect", "op", payload.Op)
			return ErrGatewayReconnect
		default:
			logger.Debug("ignoring gateway opcode", "op", payload.Op)
		}
	}
}

// dispatchGatewayEvent decodes one opcode-0 dispatch and invokes the
// matching callback. Decode failures are logged and dropped — one
// malformed event must not take down the connection.
func dispatchGatewayEvent(logger *slog.Logger, payload gatewayPayload, callbacks GatewayCallbacks) {
	switch payload.Type {
	case "READY":
		if callbacks.Ready == nil {
			return
		}
		var ready ReadyEvent
		if err := json.Unmarshal(payload.Data, &ready); err != nil {
			logger.Error("failed to parse READY", "error", err)
			return
		}
		callbacks.Ready(ready)

	case "MESSAGE_REACTION_ADD", "MESSAGE_REACTION_REMOVE":
		if callbacks.Reaction == nil {
			return
		}
		event, err := decodeReactionEvent(payload)
		if err != nil {
			logger.Error("failed to parse reaction event", "type", payload.Type, "error", err)
			return
		}
		callbacks.Reaction(event)

	case "INTERACTION_CREATE":
		if callbacks.Interaction == nil {
			return
		}
		var interaction Interaction
		if err := json.Unmarshal(payload.Data, &interaction); err != nil {
			logger.Error("failed to parse interaction", "error", err)
			return
		}
		callbacks.Interaction(interaction)

	default:
		// Other dispatch types (GUILD_CREATE and friends) carry
		// nothing warden tracks.
	}
}

// decodeReactionEvent converts a raw reaction dispatch into a typed
// ReactionEvent, validating every identifier at this boundary.
func decodeReactionEvent(payload gatewayPayload) (ReactionEvent, error) {
	var raw reactionPayload
	if err := json.Unmarshal(payload.Data, &raw); err != nil {
		return ReactionEvent{}, err
	}

	kind := ReactionAdded
	if payload.Type == "MESSAGE_REACTION_REMOVE" {
		kind = ReactionRemoved
	}

	userID, err := ref.ParseUserID(raw.UserID)
	if err != nil {
		return ReactionEvent{}, fmt.Errorf("user: %w", err)
	}
	channelID, err := ref.ParseChannelID(raw.ChannelID)
	if err != nil {
		return ReactionEvent{}, fmt.Errorf("channel: %w", err)
	}
	messageID, err := ref.ParseMessageID(raw.MessageID)
	if err != nil {
		return ReactionEvent{}, fmt.Errorf("message: %w", err)
	}

	event := ReactionEvent{
		Kind:      kind,
		ChannelID: channelID,
		MessageID: messageID,
		UserID:    userID,
		Emoji:     raw.Emoji,
		// Custom emoji delivered without a name cannot be
		// canonicalized from the payload alone.
		Partial: raw.Emoji.ID != "" && raw.Emoji.Name == "",
	}
	if raw.GuildID != "" {
		guildID, err := ref.ParseGuildID(raw.GuildID)
		if err != nil {
			return ReactionEvent{}, fmt.Errorf("guild: %w", err)
		}
		event.GuildID = guildID
	}
	return event, nil
}

// wrapGatewayError maps a transport error to ctx.Err() when the
// context caused it (the watcher goroutine closes the connection on
// cancellation, so reads fail with a close error rather than
// context.Canceled).
func wrapGatewayError(ctx context.Context, operation string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("platform: %s: %w", operation, err)
}
