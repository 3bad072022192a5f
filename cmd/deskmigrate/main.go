// deskmigrate runs one help-desk migration: it pulls tickets from the
// configured provider and imports them into the local target store.
// Re-running is safe; already-imported records are skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/syncdesk/deskmigrate/internal/api"
	"github.com/syncdesk/deskmigrate/internal/migrate"
	"github.com/syncdesk/deskmigrate/internal/model"
	"github.com/syncdesk/deskmigrate/internal/observability"
	"github.com/syncdesk/deskmigrate/internal/store"
)

func main() {
	configPath := flag.String("config", "deskmigrate.yaml", "path to the YAML config file")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	if err := run(*configPath, *logLevel); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			fmt.Fprintln(os.Stderr, apiErr.UserMessage)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(configPath, logLevel string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(logLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	target, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer target.Close()

	runner, err := migrate.NewRunner(*cfg, target, logger)
	if err != nil {
		return err
	}

	stats, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("%s (%d received, %d tickets imported, %d replies imported)\n",
		stats.Message, stats.TicketsReceived, stats.TicketsImported, stats.RepliesImported)
	return nil
}
