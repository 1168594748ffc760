package buildconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the project configuration file read by the CLI.
const DefaultConfigFile = "devconfig.yaml"

// LoadFile reads a YAML project configuration. A missing file is reported
// with an error wrapping os.ErrNotExist.
func LoadFile(path string) (PartialConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is supplied by the operator
	if err != nil {
		return PartialConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return PartialConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document into a PartialConfig, rejecting unknown keys.
// An empty document yields the zero PartialConfig.
func Parse(data []byte) (PartialConfig, error) {
	var cfg PartialConfig

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return PartialConfig{}, err
	}
	return cfg, nil
}
