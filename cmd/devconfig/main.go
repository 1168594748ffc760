package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/devconfig/cmd/devconfig/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Version kong.VersionFlag
		Resolve commands.ResolveCmd `cmd:"" help:"Print the resolved configuration"`
		Build   commands.BuildCmd   `cmd:"" help:"Build the project assets once"`
		Serve   commands.ServeCmd   `cmd:"" help:"Build, watch and serve the project assets"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("devconfig"),
		kong.Description("Front-end dev server and build configuration."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
