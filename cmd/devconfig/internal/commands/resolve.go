package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/devconfig/internal/buildconfig"
	"github.com/wolfeidau/devconfig/internal/logger"
	"gopkg.in/yaml.v3"
)

type ResolveCmd struct {
	Project ProjectFlags `embed:""`

	Format string `help:"output format" default:"yaml" enum:"yaml,json" short:"f"`

	out io.Writer `kong:"-"`
}

func (c *ResolveCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)

	rc, err := c.Project.resolve(log)
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	return writeConfig(out, rc, c.Format)
}

func writeConfig(w io.Writer, rc *buildconfig.ResolvedConfig, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rc)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}
