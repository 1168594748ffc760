package buildconfig

import (
	"net"
	"strconv"
)

// PartialConfig is the user supplied configuration. Every field is optional.
type PartialConfig struct {
	Root    string             `yaml:"root,omitempty" json:"root,omitempty"`
	Plugins []PluginDescriptor `yaml:"plugins,omitempty" json:"plugins,omitempty"`
	Server  PartialServer      `yaml:"server,omitempty" json:"server,omitempty"`
	CSS     PartialCSS         `yaml:"css,omitempty" json:"css,omitempty"`
	Build   PartialBuild       `yaml:"build,omitempty" json:"build,omitempty"`
}

type PartialServer struct {
	// Port is nil when unset so an explicit 0 can be rejected
	Port *int     `yaml:"port,omitempty" json:"port,omitempty"`
	Host string   `yaml:"host,omitempty" json:"host,omitempty"`
	CORS []string `yaml:"cors,omitempty" json:"cors,omitempty"`
}

type PartialCSS struct {
	PreprocessorOptions map[string]PartialPreprocessor `yaml:"preprocessorOptions,omitempty" json:"preprocessorOptions,omitempty"`
}

type PartialPreprocessor struct {
	AdditionalData *string `yaml:"additionalData,omitempty" json:"additionalData,omitempty"`
}

type PartialBuild struct {
	EntryPoints []string `yaml:"entryPoints,omitempty" json:"entryPoints,omitempty"`
	OutDir      string   `yaml:"outDir,omitempty" json:"outDir,omitempty"`
	Minify      bool     `yaml:"minify,omitempty" json:"minify,omitempty"`
	Sourcemap   string   `yaml:"sourcemap,omitempty" json:"sourcemap,omitempty"`
}

// PluginDescriptor names a plugin and carries its options. Position in a
// plugin list is significant: earlier entries run first.
type PluginDescriptor struct {
	Name    string            `yaml:"name" json:"name"`
	Options map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
}

// ResolvedConfig is the fully resolved configuration handed to the build tool.
// It is built once per process and must be treated as read-only.
type ResolvedConfig struct {
	Root    string             `yaml:"root" json:"root"`
	Plugins []PluginDescriptor `yaml:"plugins" json:"plugins"`
	Server  ServerConfig       `yaml:"server" json:"server"`
	CSS     CSSConfig          `yaml:"css" json:"css"`
	Build   BuildConfig        `yaml:"build" json:"build"`
}

type ServerConfig struct {
	Port int      `yaml:"port" json:"port"`
	Host string   `yaml:"host" json:"host"`
	CORS []string `yaml:"cors,omitempty" json:"cors,omitempty"`
}

type CSSConfig struct {
	PreprocessorOptions map[string]PreprocessorOptions `yaml:"preprocessorOptions" json:"preprocessorOptions"`
}

type PreprocessorOptions struct {
	// AdditionalData is prepended verbatim to every stylesheet of this preprocessor
	AdditionalData string `yaml:"additionalData" json:"additionalData"`
}

type BuildConfig struct {
	EntryPoints []string `yaml:"entryPoints" json:"entryPoints"`
	OutDir      string   `yaml:"outDir" json:"outDir"`
	Minify      bool     `yaml:"minify" json:"minify"`
	Sourcemap   string   `yaml:"sourcemap" json:"sourcemap"`
}

// Addr returns the dev server bind address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// PluginNames returns the plugin names in pipeline order.
func (c *ResolvedConfig) PluginNames() []string {
	names := make([]string, 0, len(c.Plugins))
	for _, p := range c.Plugins {
		names = append(names, p.Name)
	}
	return names
}
