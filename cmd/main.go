package main

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/repositories"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	// filled in by Before once the flags are parsed; the actions hold this pointer
	runner := &Runner{}
	var db *sql.DB

	app := &cli.Command{
		Name:    "shelf",
		Usage:   "Favorites, follows and reviews for your movies, series and albums",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("SHELF_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output",
				Sources: cli.EnvVars("SHELF_VERBOSE"),
			},
		},
		Commands: runner.register(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			var err error
			db, err = build(ctx, runner, cmd.String("config"), logger)
			return ctx, err
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if runner.bus != nil {
				runner.Close()
			}
			if db != nil {
				return db.Close()
			}
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatal("application error", errorFields(err)...)
		}
	}
}

// build loads the configuration, opens the token and preference stores and fills runner.
//
// A missing database is not fatal: tokens then live in memory for this run.
func build(ctx context.Context, runner *Runner, configPath string, logger *log.Logger) (*sql.DB, error) {
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	var (
		db    *sql.DB
		store session.TokenStore
		prefs Preferences
	)
	if config.Session.Store != "memory" {
		opened, err := shared.OpenDatabase(ctx, config.Database)
		if err != nil {
			logger.Warn("database unavailable, the session will not be kept", "path", config.Database.Path, "error", err)
		} else {
			db = opened
			store = repositories.NewTokenRepository(db)
			prefs = repositories.NewPreferenceRepository(db)
		}
	}

	sess := session.New(session.Opts{Env: config.Env(), Store: store, Logger: logger})

	*runner = *NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Session:    sess,
		Prefs:      prefs,
		Logger:     logger,
	})
	return db, nil
}
