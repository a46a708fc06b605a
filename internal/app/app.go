// Package app wires configuration, storage and services together for the
// server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stridestreak/internal/clock"
	"stridestreak/internal/config"
	"stridestreak/internal/db"
	"stridestreak/internal/handlers"
	mw "stridestreak/internal/middleware"
	"stridestreak/internal/services"
	"stridestreak/internal/store"
)

type App struct {
	Config       config.Config
	Logger       *zap.Logger
	DB           *sqlx.DB
	Store        *store.Store
	Clock        clock.Clock
	Accounts     *services.AccountService
	Habits       *services.HabitService
	Notifier     *services.Notifier
	Reminders    *services.ReminderService
	Achievements *services.AchievementService
	Auth         *mw.AuthMiddleware
}

// New opens the database and builds every service. Migrations are not run.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	enc, err := services.NewEncryptionService(cfg.EncryptionKey, cfg.BlindIndexKey)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("encryption service: %w", err)
	}

	st := store.New(conn)
	clk := clock.System{}
	mailer := services.NewMailer(cfg.Mail, logger)
	notifier := services.NewNotifier(st, mailer, enc, clk, logger)
	logger.Info("mailer configured", zap.String("transport", mailer.Name()))

	return &App{
		Config:       cfg,
		Logger:       logger,
		DB:           conn,
		Store:        st,
		Clock:        clk,
		Accounts:     services.NewAccountService(st, enc, clk),
		Habits:       services.NewHabitService(st, clk, logger),
		Notifier:     notifier,
		Reminders:    services.NewReminderService(st, notifier, clk, logger),
		Achievements: services.NewAchievementService(st, notifier, logger),
		Auth:         mw.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTTTL),
	}, nil
}

func (a *App) Migrate() error {
	return db.RunMigrations(a.DB)
}

// Handler is the HTTP API.
func (a *App) Handler() http.Handler {
	return handlers.NewRouter(handlers.Deps{
		Store:          a.Store,
		Accounts:       a.Accounts,
		Habits:         a.Habits,
		Reminders:      a.Reminders,
		Achievements:   a.Achievements,
		Auth:           a.Auth,
		Clock:          a.Clock,
		Logger:         a.Logger,
		AllowedOrigins: a.Config.AllowedOrigins,
	})
}

func (a *App) Close() error {
	return a.DB.Close()
}
