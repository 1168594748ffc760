package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wolfeidau/devconfig/internal/assets"
	"github.com/wolfeidau/devconfig/internal/devserver"
	"github.com/wolfeidau/devconfig/internal/logger"
	"golang.org/x/sync/errgroup"
)

type ServeCmd struct {
	Project ProjectFlags `embed:""`

	Template string `help:"path to a custom index template" default:"" env:"DEVCONFIG_TEMPLATE"`
	NoWatch  bool   `help:"build once instead of rebuilding on change" default:"false" env:"DEVCONFIG_NO_WATCH"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting dev server")

	rc, err := c.Project.resolve(log)
	if err != nil {
		return err
	}

	pipeline, err := assets.New(rc, templateOptions(c.Template)...)
	if err != nil {
		return fmt.Errorf("failed to load assets pipeline: %w", err)
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to stop style compiler")
		}
	}()

	// Build once up front so the first page render has metadata
	if err := pipeline.Build(); err != nil {
		return fmt.Errorf("failed to build assets: %w", err)
	}

	return runDevServer(ctx, devserver.New(rc, pipeline, log), pipeline, !c.NoWatch)
}

type runner interface {
	Run(ctx context.Context) error
}

type watcher interface {
	Watch(ctx context.Context) error
}

// runDevServer serves until ctx is cancelled or either the server or the
// watcher fails, and returns only once both have stopped.
func runDevServer(ctx context.Context, server runner, builds watcher, watch bool) error {
	g, ctx := errgroup.WithContext(ctx)

	if watch {
		g.Go(func() error {
			if err := builds.Watch(ctx); err != nil {
				return fmt.Errorf("watch mode stopped: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return server.Run(ctx)
	})

	return g.Wait()
}
