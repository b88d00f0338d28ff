package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/melvorminer/melvorminer/cmd/melvorminer/log"
	"github.com/melvorminer/melvorminer/internal/bot"
	"github.com/melvorminer/melvorminer/internal/browser"
	"github.com/melvorminer/melvorminer/internal/config"
	botCtx "github.com/melvorminer/melvorminer/internal/context"
	"github.com/melvorminer/melvorminer/internal/event"
	"github.com/melvorminer/melvorminer/internal/game"
	"github.com/melvorminer/melvorminer/internal/journal"
	"github.com/melvorminer/melvorminer/internal/remote/discord"
	"github.com/melvorminer/melvorminer/internal/remote/telegram"
)

func main() {
	configPath := flag.String("config", "config/miner.yaml", "path to the yaml or toml config file")
	envFile := flag.String("env", ".env", "optional .env file with credentials")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewLoggerWithLevel(cfg.Log.Level, cfg.Log.Debug, cfg.Log.Dir, cfg.CharacterName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	event.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()

	if err != nil {
		logger.Error("An error occurred", "error", err)
	}
	log.FlushAndClose()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	listener := event.NewListener(logger)
	if err := registerHandlers(cfg, listener, logger); err != nil {
		return err
	}

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer func() {
			logSummary(j, logger)
			j.Close()
		}()
		listener.Register(j.Handle)
	}

	userDataDir, err := config.PrepareBrowserProfile(cfg.Browser)
	if err != nil {
		return err
	}

	session, err := browser.Launch(ctx, cfg.Browser, userDataDir, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Bootstrap(ctx, cfg); err != nil {
		return err
	}

	bc := botCtx.NewContext(cfg.CharacterName, cfg, game.NewScriptHost(session), logger)
	err = bot.NewBot(bc).Run(ctx, listener)
	if bot.IsFatal(err) {
		return err
	}

	return nil
}

func registerHandlers(cfg *config.Config, listener *event.Listener, logger *slog.Logger) error {
	if cfg.Discord.Enabled {
		db, err := discord.NewBot(cfg.Discord.Token, cfg.Discord.ChannelID)
		if err != nil {
			return err
		}
		listener.Register(db.Handle)
		logger.Info("Discord notifications enabled")
	}

	if cfg.Telegram.Enabled {
		tb, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return err
		}
		listener.Register(tb.Handle)
		logger.Info("Telegram notifications enabled")
	}

	return nil
}

func logSummary(j *journal.Journal, logger *slog.Logger) {
	counts, err := j.CountByOre(context.Background())
	if err != nil {
		logger.Warn("Could not read mining journal", "error", err)
		return
	}
	for ore, n := range counts {
		logger.Info("Mining journal summary", "ore", ore, "started", n)
	}

	recent, err := j.Recent(context.Background(), 5)
	if err != nil {
		logger.Warn("Could not read mining journal", "error", err)
		return
	}
	for _, e := range recent {
		logger.Debug("Recent journal entry", "kind", e.Kind, "ore", e.OreID, "hp", e.HP, "at", e.OccurredAt.Format(time.TimeOnly))
	}
}
