package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/gatehook/internal/bridge"
	"github.com/nextlevelbuilder/gatehook/internal/config"
	"github.com/nextlevelbuilder/gatehook/internal/discord"
	"github.com/nextlevelbuilder/gatehook/internal/sender"
	"github.com/nextlevelbuilder/gatehook/internal/tracing"
	"github.com/nextlevelbuilder/gatehook/internal/webhook"
)

const (
	shutdownTimeout    = 10 * time.Second
	latencyLogInterval = time.Minute
)

func runBridge() {
	setupLogging("info")

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		slog.Error("gatehook stopped with error", "error", err)
		os.Exit(1)
	}
}

var setupTracing = tracing.Setup

// serve runs the bridge until ctx is cancelled. Traces are flushed on every
// return path once tracing is up.
func serve(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := setupTracing(ctx, cfg.Telemetry, Version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if terr := shutdownTracing(flushCtx); terr != nil {
			slog.Warn("failed to flush traces", "error", terr)
		}
	}()

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	intents, err := discord.ParseIntents(cfg.Discord.Intents)
	if err != nil {
		return err
	}
	session.Identify.Intents = intents
	session.State.TrackChannels = true
	session.State.TrackThreads = true

	forwarder, err := webhook.NewForwarder(cfg.Webhook, Version)
	if err != nil {
		return err
	}
	svc := discord.NewService(session)
	resolver := discord.NewResolver(discord.NewStateCache(session.State), svc)

	b := bridge.New(sender.NewFilters(cfg.Filters), resolver, forwarder, svc, cfg.Actions.Limit())
	b.Register(ctx, session)

	requestTimeout, connectTimeout := cfg.Webhook.Timeouts()
	slog.Info("gatehook starting",
		"version", Version,
		"webhook", forwarder.Endpoint(),
		"request_timeout", requestTimeout,
		"connect_timeout", connectTimeout,
		"max_response_body_size", cfg.Webhook.BodyLimit(),
		"max_actions", cfg.Actions.Limit(),
		"insecure_mode", cfg.Webhook.InsecureMode,
	)
	if cfg.Webhook.InsecureMode {
		slog.Warn("insecure_mode is on: webhook TLS certificates are not verified")
	}

	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("graceful shutdown initiated")
		if err := session.Close(); err != nil {
			return fmt.Errorf("close discord session: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(latencyLogInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				slog.Debug("discord gateway heartbeat", "latency", session.HeartbeatLatency())
			}
		}
	})
	err = g.Wait()
	slog.Info("gatehook stopped")
	return err
}
