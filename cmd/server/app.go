package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jason-s-yu/monopoly/internal/auth"
	"github.com/jason-s-yu/monopoly/internal/board"
	"github.com/jason-s-yu/monopoly/internal/cache"
	"github.com/jason-s-yu/monopoly/internal/config"
	"github.com/jason-s-yu/monopoly/internal/database"
	"github.com/jason-s-yu/monopoly/internal/handlers"
	"github.com/sirupsen/logrus"
)

// app is everything a running server owns.
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	server *handlers.GameServer

	actionLog *cache.ActionLog
	store     database.Store
}

func newLogger(level string) (*logrus.Logger, error) {
	logger := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	return logger, nil
}

func newSessions(cfg config.Session) (*auth.Sessions, error) {
	expiry, err := auth.ParseExpiry(cfg.TokenExpireTime)
	if err != nil {
		return nil, err
	}
	if cfg.PrivateKeyPath != "" {
		return auth.NewSessionsFromPath(cfg.PrivateKeyPath, cfg.PublicKeyPath, expiry)
	}
	return auth.NewSessions(expiry)
}

// newApp loads the config and connects the optional Redis action log and result store.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	sessions, err := newSessions(cfg.Session)
	if err != nil {
		return nil, err
	}

	catalog := board.NewCatalog(os.DirFS(cfg.Game.BoardsDir), logrus.NewEntry(logger))
	gs := handlers.NewGameServer(catalog, sessions, cfg.Game.DefaultBoard, cfg.HouseRules(), logger)
	a := &app{cfg: cfg, logger: logger, server: gs}

	if cfg.Redis.Addr != "" {
		a.actionLog, err = cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.QueueName)
		if err != nil {
			return nil, err
		}
		gs.Recorder = a.actionLog
		logger.WithField("queue", a.actionLog.Queue()).Info("publishing actions to Redis")
	}

	a.store, err = database.Open(ctx, cfg.Store)
	if err != nil {
		a.Close()
		return nil, err
	}
	if a.store != nil {
		gs.Results = a.store
		logger.WithField("driver", cfg.Store.Driver).Info("saving game results")
	}
	return a, nil
}

func (a *app) Close() {
	if a.actionLog != nil {
		a.actionLog.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
