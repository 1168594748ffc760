package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/devconfig/internal/buildconfig"
)

type Globals struct {
	Debug   bool
	Version string
}

// ProjectFlags are shared by every command that resolves a project.
type ProjectFlags struct {
	Config string `help:"path to the project configuration file" default:"devconfig.yaml" env:"DEVCONFIG_CONFIG" type:"path"`
	Port   int    `help:"dev server port, overrides server.port (0 keeps the configured value)" default:"0" env:"DEVCONFIG_PORT"`
}

// resolve loads the configuration file, applies the command line overrides and
// resolves the result. A missing file resolves to the defaults.
func (f ProjectFlags) resolve(log zerolog.Logger) (*buildconfig.ResolvedConfig, error) {
	user, err := buildconfig.LoadFile(f.Config)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Debug().Str("config", f.Config).Msg("No configuration file found, using defaults")
		user = buildconfig.PartialConfig{}
	case err != nil:
		return nil, err
	default:
		// a relative root is relative to the configuration file
		if !filepath.IsAbs(user.Root) {
			user.Root = filepath.Join(filepath.Dir(f.Config), user.Root)
		}
	}

	if f.Port != 0 {
		port := f.Port
		user.Server.Port = &port
	}

	rc, err := buildconfig.Resolve(user)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", f.Config, err)
	}

	log.Debug().
		Str("root", rc.Root).
		Strs("plugins", rc.PluginNames()).
		Int("port", rc.Server.Port).
		Msg("Resolved configuration")

	return rc, nil
}
