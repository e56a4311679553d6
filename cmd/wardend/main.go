// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// wardend is the warden daemon: it connects to the Discord gateway,
// registers the slash commands, and runs the reaction-role reconciler
// and moderation command dispatcher until stopped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/warden-project/warden/command"
	"github.com/warden-project/warden/lib/clock"
	"github.com/warden-project/warden/lib/config"
	"github.com/warden-project/warden/lib/secret"
	"github.com/warden-project/warden/lib/version"
	"github.com/warden-project/warden/moderation"
	"github.com/warden-project/warden/platform"
	"github.com/warden-project/warden/reactionrole"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "path to warden.yaml (default: $WARDEN_CONFIG)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("wardend %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	token, err := secret.ReadFile(cfg.Discord.TokenFile)
	if err != nil {
		return fmt.Errorf("reading bot token: %w", err)
	}

	client, err := platform.NewClient(platform.ClientConfig{
		APIBaseURL: cfg.Discord.APIBaseURL,
		Logger:     logger,
	})
	if err != nil {
		token.Close()
		return err
	}
	session := client.SessionFromToken(token)
	defer session.Close()

	// Validates the token and identifies the bot for the reconciler's
	// self-reaction filter.
	self, err := session.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("validating bot token: %w", err)
	}
	logger.Info("discord session valid",
		"user_id", self.ID,
		"username", self.Username,
	)

	snapshot := reactionrole.NewSnapshotFile(cfg.SnapshotPath(), logger)
	store := snapshot.Load()

	manager := reactionrole.NewManager(reactionrole.ManagerConfig{
		Store:     store,
		Persister: snapshot,
		Session:   session,
		Logger:    logger,
	})
	reconciler := reactionrole.NewReconciler(reactionrole.ReconcilerConfig{
		Store:     store,
		Persister: snapshot,
		Session:   session,
		Self:      self.ID,
		Logger:    logger,
	})
	actions := moderation.NewActions(moderation.ActionsConfig{
		Session: session,
		Clock:   clock.Real(),
		Self:    self.ID,
		Logger:  logger,
	})
	dispatcher := command.NewDispatcher(command.DispatcherConfig{
		Session: session,
		Manager: manager,
		Actions: actions,
		Logger:  logger,
	})

	definitions := command.Definitions()
	if err := session.RegisterCommands(ctx, cfg.Discord.ApplicationID, definitions); err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}
	logger.Info("slash commands registered", "count", len(definitions))

	// Gateway callbacks must not block the read loop. Each event is
	// handled on its own goroutine, bounded by the semaphore so a
	// reaction storm cannot spawn unbounded work.
	events := semaphore.NewWeighted(int64(cfg.Dispatch.MaxConcurrentEvents))
	dispatch := func(handle func()) {
		if err := events.Acquire(ctx, 1); err != nil {
			return
		}
		go func() {
			defer events.Release(1)
			handle()
		}()
	}
	callbacks := platform.GatewayCallbacks{
		Ready: func(event platform.ReadyEvent) {
			logger.Info("gateway ready", "session_id", event.SessionID)
		},
		Reaction: func(event platform.ReactionEvent) {
			dispatch(func() { reconciler.HandleReaction(ctx, event) })
		},
		Interaction: func(interaction platform.Interaction) {
			dispatch(func() { dispatcher.HandleInteraction(ctx, interaction) })
		},
	}

	return runGatewayLoop(ctx, cfg, token, logger, client, callbacks)
}

// runGatewayLoop re-dials the gateway until ctx is cancelled, backing
// off exponentially from one second up to the configured cap. A
// connection that survives past the cap resets the backoff.
func runGatewayLoop(ctx context.Context, cfg *config.Config, token *secret.Buffer, logger *slog.Logger, client *platform.Client, callbacks platform.GatewayCallbacks) error {
	maxBackoff := cfg.Dispatch.ReconnectBackoff()
	backoff := time.Second

	for {
		started := time.Now()
		err := platform.RunGateway(ctx, platform.GatewayConfig{
			URL:     cfg.Discord.GatewayURL,
			Token:   token,
			Intents: platform.IntentGuilds | platform.IntentGuildMembers | platform.IntentGuildMessageReactions,
			Logger:  logger,
			Clock:   clock.Real(),
		}, callbacks)

		if ctx.Err() != nil {
			logger.Info("shutting down")
			return nil
		}

		if time.Since(started) > maxBackoff {
			backoff = time.Second
		}
		switch {
		case errors.Is(err, platform.ErrGatewayReconnect):
			logger.Info("reconnecting to gateway", "backoff", backoff)
		default:
			logger.Warn("gateway connection failed", "error", err, "backoff", backoff)
		}

		// A failed connection may leave a poisoned pooled socket
		// behind; drop idle connections before re-dialing.
		client.CloseIdleConnections()

		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
