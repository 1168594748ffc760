package commands

import (
	"fmt"

	"github.com/wolfeidau/devconfig/internal/assets"
	"github.com/wolfeidau/devconfig/internal/logger"
)

type BuildCmd struct {
	Project ProjectFlags `embed:""`

	Template string `help:"path to a custom index template" default:"" env:"DEVCONFIG_TEMPLATE"`
}

func (c *BuildCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)

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

	if err := pipeline.Build(); err != nil {
		return fmt.Errorf("failed to build assets: %w", err)
	}

	log.Info().Str("outdir", rc.Build.OutDir).Msg("Build complete")
	return nil
}

func templateOptions(path string) []assets.Option {
	if path == "" {
		return nil
	}
	return []assets.Option{assets.WithTemplate(path)}
}
