package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tatianab/integrity-trail/internal/coach"
	"github.com/tatianab/integrity-trail/internal/config"
	"github.com/tatianab/integrity-trail/internal/content"
	"github.com/tatianab/integrity-trail/internal/engine"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/logging"
	"github.com/tatianab/integrity-trail/internal/session"
	"github.com/tatianab/integrity-trail/internal/store"
)

// app is everything a command needs to run a game.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	library *content.Library
	store   store.Store
	session *session.Session
	engine  *engine.Engine
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// openApp wires a game from configuration. st overrides the configured store when non-nil.
func openApp(ctx context.Context, st store.Store, opts ...engine.Option) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, closeLog)

	a.library, err = content.Load()
	if err != nil {
		a.Close()
		return nil, err
	}

	if st == nil {
		st, err = a.openStore(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	a.store = st

	if cfg.GeminiAPIKey != "" {
		c, err := coach.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, c.Close)
		opts = append([]engine.Option{engine.WithCoach(c)}, opts...)
	}

	a.session = session.New(ctx, a.library, a.library.Catalog(), st, logger)
	a.engine = engine.NewEngine(a.session, a.library, logger, opts...)
	logger.LogAttrs(ctx, slog.LevelInfo, "game opened",
		slog.String("store", cfg.Store),
		slog.String("slot", cfg.SaveSlot),
		slog.String("playthroughID", a.session.PlaythroughID()),
		slog.Bool("resumed", a.session.Resumed()),
		slog.Bool("coach", cfg.GeminiAPIKey != ""))
	return a, nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	switch a.cfg.Store {
	case config.StoreSQLite:
		if a.cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(a.cfg.SQLitePath), 0o755); err != nil {
				return nil, errors.Wrap(err, "create sqlite directory")
			}
		}
		s, err := store.NewSQLiteStore(ctx, a.cfg.SQLitePath, a.cfg.SaveSlot, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := s.Close(); err != nil {
				a.logger.LogAttrs(ctx, slog.LevelWarn, "close sqlite store", errors.SlogError(err))
			}
		})
		return s, nil
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	}
	return store.NewFileStore(a.cfg.SaveDir, a.cfg.SaveSlot)
}

// newLogger logs to the configured file so that log lines never draw over the terminal UI.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, errors.Wrap(err, "create log directory")
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file", slog.String("path", cfg.LogFile))
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{
		Level:     logging.ParseLevel(cfg.LogLevel),
		AddSource: true,
	})
	return slog.New(logging.NewContextHandler(handler)), func() { _ = f.Close() }, nil
}
