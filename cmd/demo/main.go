/*
Demo runs the blog persistence scenario against the configured database and narrates every step on stdout.

Usage:

	demo [flags]

Flags and configurations are handled by the `config` package; run `demo --help` for the full list.

Return values (exit codes):

	0
		The scenario completed

	1
		The scenario or the database initialisation failed

The database connection is closed once, whatever the outcome.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf"
	"github.com/silktrader/blogstore/pkg/blog"
	"github.com/silktrader/blogstore/pkg/config"
	"github.com/silktrader/blogstore/pkg/scenario"
	"github.com/silktrader/blogstore/pkg/storage"
	"github.com/sirupsen/logrus"
)

// main is the program entry point. The only purpose of this function is to call run() and set the exit code if there is
// any error
func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error: ", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil
		}
		return err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	db, err := storage.New(logger, cfg.Storage())
	if err != nil {
		logger.WithError(err).Error("error initialising storage")
		return fmt.Errorf("initialising storage: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("error while closing the database")
		}
	}()

	if err = scenario.Run(context.Background(), blog.NewStore(db.DB, logger), logger); err != nil {
		logger.WithError(err).Error("scenario failed")
		return err
	}

	logger.Info("scenario completed")
	return nil
}
