// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/warden-project/warden/lib/secret"
)

// fakeGateway runs a websocket server that speaks just enough of the
// gateway protocol for RunGateway: it sends hello, consumes identify,
// then plays the scripted frames.
type fakeGateway struct {
	t        *testing.T
	server   *httptest.Server
	script   func(conn *websocket.Conn)
	identify chan map[string]any
}

func newFakeGateway(t *testing.T, script func(conn *websocket.Conn)) *fakeGateway {
	t.Helper()
	gateway := &fakeGateway{
		t:        t,
		script:   script,
		identify: make(chan map[string]any, 1),
	}
	upgrader := websocket.Upgrader{}
	gateway.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		conn, err := upgrader.Upgrade(writer, request, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		// Hello with a heartbeat interval long enough that no
		// heartbeat fires during the test.
		hello := map[string]any{
			"op": opHello,
			"d":  map[string]any{"heartbeat_interval": 45000.0},
		}
		if err := conn.WriteJSON(hello); err != nil {
			t.Errorf("writing hello failed: %v", err)
			return
		}

		var identify map[string]any
		if err := conn.ReadJSON(&identify); err != nil {
			t.Errorf("reading identify failed: %v", err)
			return
		}
		gateway.identify <- identify

		script(conn)
	}))
	t.Cleanup(gateway.server.Close)
	return gateway
}

// URL rewrites the test server's http:// URL to ws://.
func (g *fakeGateway) URL() string {
	return "ws" + strings.TrimPrefix(g.server.URL, "http")
}

func newGatewayToken(t *testing.T) *secret.Buffer {
	t.Helper()
	token, err := secret.NewFromBytes([]byte("gateway-token"))
	if err != nil {
		t.Fatalf("creating token buffer failed: %v", err)
	}
	t.Cleanup(func() { token.Close() })
	return token
}

func writeDispatch(t *testing.T, conn *websocket.Conn, eventType string, seq int64, data any) {
	t.Helper()
	encoded, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("encoding dispatch failed: %v", err)
	}
	frame := map[string]any{
		"op": opDispatch,
		"t":  eventType,
		"s":  seq,
		"d":  json.RawMessage(encoded),
	}
	if err := conn.WriteJSON(frame); err != nil {
		t.Errorf("writing dispatch failed: %v", err)
	}
}

func TestRunGatewayDispatch(t *testing.T) {
	gateway := newFakeGateway(t, func(conn *websocket.Conn) {
		writeDispatch(t, conn, "READY", 1, map[string]any{
			"user":       map[string]any{"id": "100", "username": "warden", "bot": true},
			"session_id": "session-1",
		})
		writeDispatch(t, conn, "MESSAGE_REACTION_ADD", 2, map[string]any{
			"user_id":    "111",
			"channel_id": "200",
			"message_id": "300",
			"guild_id":   "500",
			"emoji":      map[string]any{"name": "🎮"},
		})
		writeDispatch(t, conn, "MESSAGE_REACTION_REMOVE", 3, map[string]any{
			"user_id":    "111",
			"channel_id": "200",
			"message_id": "300",
			"guild_id":   "500",
			"emoji":      map[string]any{"id": "400", "name": ""},
		})
		writeDispatch(t, conn, "INTERACTION_CREATE", 4, map[string]any{
			"id":    "int-1",
			"token": "int-token",
			"data":  map[string]any{"name": "help"},
		})
		conn.WriteJSON(map[string]any{"op": opReconnect})
	})

	var (
		mu           sync.Mutex
		ready        *ReadyEvent
		reactions    []ReactionEvent
		interactions []Interaction
	)
	callbacks := GatewayCallbacks{
		Ready: func(event ReadyEvent) {
			mu.Lock()
			defer mu.Unlock()
			ready = &event
		},
		Reaction: func(event ReactionEvent) {
			mu.Lock()
			defer mu.Unlock()
			reactions = append(reactions, event)
		},
		Interaction: func(interaction Interaction) {
			mu.Lock()
			defer mu.Unlock()
			interactions = append(interactions, interaction)
		},
	}

	err := RunGateway(context.Background(), GatewayConfig{
		URL:     gateway.URL(),
		Token:   newGatewayToken(t),
		Intents: IntentGuilds | IntentGuildMessageReactions,
	}, callbacks)
	if !errors.Is(err, ErrGatewayReconnect) {
		t.Fatalf("expected ErrGatewayReconnect, got %v", err)
	}

	identify := <-gateway.identify
	data, ok := identify["d"].(map[string]any)
	if !ok {
		t.Fatal("identify missing d")
	}
	if data["token"] != "gateway-token" {
		t.Errorf("unexpected identify token: %v", data["token"])
	}
	wantIntents := float64(IntentGuilds | IntentGuildMessageReactions)
	if data["intents"] != wantIntents {
		t.Errorf("unexpected intents: %v", data["intents"])
	}

	mu.Lock()
	defer mu.Unlock()
	if ready == nil {
		t.Fatal("READY not delivered")
	}
	if ready.User.ID.String() != "100" || ready.SessionID != "session-1" {
		t.Errorf("unexpected ready event: %+v", ready)
	}

	if len(reactions) != 2 {
		t.Fatalf("expected 2 reaction events, got %d", len(reactions))
	}
	added := reactions[0]
	if added.Kind != ReactionAdded {
		t.Errorf("unexpected kind: %v", added.Kind)
	}
	if added.GuildID.String() != "500" || added.MessageID.String() != "300" {
		t.Errorf("unexpected reaction identifiers: %+v", added)
	}
	if added.Partial {
		t.Error("unicode emoji event should not be partial")
	}
	removed := reactions[1]
	if removed.Kind != ReactionRemoved {
		t.Errorf("unexpected kind: %v", removed.Kind)
	}
	if !removed.Partial {
		t.Error("custom emoji without a name should be partial")
	}
	if removed.Emoji.ID != "400" {
		t.Errorf("unexpected emoji ID: %s", removed.Emoji.ID)
	}

	if len(interactions) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(interactions))
	}
	if interactions[0].Data.Name != "help" {
		t.Errorf("unexpected interaction command: %s", interactions[0].Data.Name)
	}
}

func TestRunGatewayMalformedDispatch(t *testing.T) {
	gateway := newFakeGateway(t, func(conn *websocket.Conn) {
		// An unparseable reaction must be dropped, not kill the
		// connection.
		writeDispatch(t, conn, "MESSAGE_REACTION_ADD", 1, map[string]any{
			"user_id":    "not-a-snowflake",
			"channel_id": "200",
			"message_id": "300",
			"emoji":      map[string]any{"name": "🎮"},
		})
		writeDispatch(t, conn, "MESSAGE_REACTION_ADD", 2, map[string]any{
			"user_id":    "111",
			"channel_id": "200",
			"message_id": "300",
			"guild_id":   "500",
			"emoji":      map[string]any{"name": "🎮"},
		})
		conn.WriteJSON(map[string]any{"op": opInvalidSession})
	})

	var (
		mu        sync.Mutex
		delivered []ReactionEvent
	)
	err := RunGateway(context.Background(), GatewayConfig{
		URL:   gateway.URL(),
		Token: newGatewayToken(t),
	}, GatewayCallbacks{
		Reaction: func(event ReactionEvent) {
			mu.Lock()
			defer mu.Unlock()
			delivered = append(delivered, event)
		},
	})
	if !errors.Is(err, ErrGatewayReconnect) {
		t.Fatalf("expected ErrGatewayReconnect, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 1 {
		t.Fatalf("expected 1 delivered event, got %d", len(delivered))
	}
	if delivered[0].UserID.String() != "111" {
		t.Errorf("unexpected user: %s", delivered[0].UserID)
	}
}

func TestRunGatewayContextCancel(t *testing.T) {
	blockForever := make(chan struct{})
	t.Cleanup(func() { close(blockForever) })
	gateway := newFakeGateway(t, func(conn *websocket.Conn) {
		<-blockForever
	})

	ctx, cancel := context.WithCancel(context.Background())
	token := newGatewayToken(t)
	result := make(chan error, 1)
	go func() {
		result <- RunGateway(ctx, GatewayConfig{
			URL:   gateway.URL(),
			Token: token,
		}, GatewayCallbacks{})
	}()

	cancel()
	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunGateway did not return after cancellation")
	}
}
