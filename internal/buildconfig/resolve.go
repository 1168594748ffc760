package buildconfig

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"dario.cat/mergo"
)

// Resolver combines user supplied options with built-in defaults.
type Resolver struct {
	registry *Registry
}

type Option func(*Resolver)

// WithRegistry replaces the default plugin registry.
func WithRegistry(registry *Registry) Option {
	return func(r *Resolver) {
		r.registry = registry
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{registry: DefaultRegistry()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves user with the default registry.
func Resolve(user PartialConfig) (*ResolvedConfig, error) {
	return NewResolver().Resolve(user)
}

// Resolve produces a fully resolved configuration or fails with the first
// ConfigValidationError found. It performs no I/O and has no side effects.
func (r *Resolver) Resolve(user PartialConfig) (*ResolvedConfig, error) {
	plugins, err := r.resolvePlugins(user.Plugins)
	if err != nil {
		return nil, err
	}

	server, err := resolveServer(user.Server)
	if err != nil {
		return nil, err
	}

	preprocessors, err := resolvePreprocessors(user.CSS.PreprocessorOptions)
	if err != nil {
		return nil, err
	}

	build, err := resolveBuild(user.Build)
	if err != nil {
		return nil, err
	}

	root := user.Root
	if root == "" {
		root = "."
	}

	return &ResolvedConfig{
		Root:    root,
		Plugins: plugins,
		Server:  server,
		CSS:     CSSConfig{PreprocessorOptions: preprocessors},
		Build:   build,
	}, nil
}

// resolvePlugins emits the built-ins in registry order, merging any user
// options for them in place, then appends the remaining user plugins in
// input order.
func (r *Resolver) resolvePlugins(user []PluginDescriptor) ([]PluginDescriptor, error) {
	builtins := r.registry.Builtins()

	plugins := make([]PluginDescriptor, 0, len(builtins)+len(user))
	for _, name := range builtins {
		plugins = append(plugins, PluginDescriptor{Name: name})
	}

	seen := make(map[string]bool, len(user))
	for i, p := range user {
		field := fmt.Sprintf("plugins[%d].name", i)
		switch {
		case p.Name == "":
			return nil, invalid(field, p.Name, "plugin name is required")
		case !r.registry.Known(p.Name):
			return nil, invalid(field, p.Name, "unknown plugin")
		case seen[p.Name]:
			return nil, invalid(field, p.Name, "plugin listed more than once")
		}
		seen[p.Name] = true

		if idx := slices.Index(builtins, p.Name); idx >= 0 {
			plugins[idx].Options = mergeOptions(plugins[idx].Options, p.Options)
			continue
		}

		plugins = append(plugins, PluginDescriptor{Name: p.Name, Options: maps.Clone(p.Options)})
	}

	return plugins, nil
}

func mergeOptions(base, override map[string]string) map[string]string {
	if len(override) == 0 {
		return base
	}
	merged := make(map[string]string, len(base)+len(override))
	maps.Copy(merged, base)
	maps.Copy(merged, override)
	return merged
}

func resolveServer(user PartialServer) (ServerConfig, error) {
	server := ServerConfig{
		Host: user.Host,
		CORS: slices.Clone(user.CORS),
	}

	if user.Port != nil {
		port := *user.Port
		if port < minPort || port > maxPort {
			return ServerConfig{}, invalid("server.port", port, fmt.Sprintf("must be between %d and %d", minPort, maxPort))
		}
		server.Port = port
	}

	for i, origin := range server.CORS {
		if strings.TrimSpace(origin) == "" {
			return ServerConfig{}, invalid(fmt.Sprintf("server.cors[%d]", i), origin, "origin must not be empty")
		}
	}

	if err := mergo.Merge(&server, defaultServer()); err != nil {
		return ServerConfig{}, fmt.Errorf("failed to apply server defaults: %w", err)
	}

	return server, nil
}

func resolvePreprocessors(user map[string]PartialPreprocessor) (map[string]PreprocessorOptions, error) {
	resolved := defaultPreprocessors()

	// sorted so the first reported error does not depend on map iteration
	for _, name := range slices.Sorted(maps.Keys(user)) {
		field := "css.preprocessorOptions." + name
		if PreprocessorExtension(name) == "" {
			return nil, invalid(field, name, "unsupported preprocessor")
		}

		opts := user[name]
		if opts.AdditionalData == nil {
			if _, ok := resolved[name]; !ok {
				return nil, invalid(field+".additionalData", nil, "additionalData is required")
			}
			continue
		}

		data := NormalizeAdditionalData(*opts.AdditionalData)
		if data == "" {
			return nil, invalid(field+".additionalData", *opts.AdditionalData, "additionalData must not be empty")
		}
		resolved[name] = PreprocessorOptions{AdditionalData: data}
	}

	return resolved, nil
}

func resolveBuild(user PartialBuild) (BuildConfig, error) {
	build := BuildConfig{
		EntryPoints: slices.Clone(user.EntryPoints),
		OutDir:      user.OutDir,
		Minify:      user.Minify,
		Sourcemap:   user.Sourcemap,
	}

	for i, entry := range build.EntryPoints {
		if strings.TrimSpace(entry) == "" {
			return BuildConfig{}, invalid(fmt.Sprintf("build.entryPoints[%d]", i), entry, "entry point must not be empty")
		}
	}

	switch build.Sourcemap {
	case "", SourcemapLinked, SourcemapInline, SourcemapExternal, SourcemapNone:
	default:
		return BuildConfig{}, invalid("build.sourcemap", build.Sourcemap, "must be one of linked, inline, external, none")
	}

	if err := mergo.Merge(&build, defaultBuild()); err != nil {
		return BuildConfig{}, fmt.Errorf("failed to apply build defaults: %w", err)
	}

	return build, nil
}
