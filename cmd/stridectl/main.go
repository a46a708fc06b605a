package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"stridestreak/internal/app"
	"stridestreak/internal/config"
	"stridestreak/internal/logging"
)

var CLI struct {
	Version kong.VersionFlag

	Migrate      MigrateCmd      `cmd:"" help:"Run database migrations."`
	Reminders    RemindersCmd    `cmd:"" help:"Send reminders for habits due today."`
	Achievements AchievementsCmd `cmd:"" help:"Check achievements and notify users."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("stridectl"),
		kong.Description("Operator commands for the StrideStreak backend. Meant to be run from cron."),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Options{Development: cfg.IsDevelopment(), File: cfg.LogFile})
	defer logger.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := kctx.Run(&runContext{ctx: ctx, app: a, logger: logger, out: os.Stdout}); err != nil {
		logger.Error("command failed", zap.String("command", kctx.Command()), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
