package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BuildOptions returns the esbuild options for the configured project.
func (p *Pipeline) BuildOptions() (api.BuildOptions, error) {
	entryPoints, err := p.EntryPoints()
	if err != nil {
		return api.BuildOptions{}, err
	}

	return api.BuildOptions{
		EntryPoints:       entryPoints,
		AbsWorkingDir:     p.config.Root,
		Bundle:            true,
		Splitting:         true,
		Write:             true,
		Outdir:            filepath.Join(p.config.Root, p.config.OutputDir),
		Format:            api.FormatESModule,
		MinifyWhitespace:  p.config.Minify,
		MinifyIdentifiers: p.config.Minify,
		MinifySyntax:      p.config.Minify,
		TreeShaking:       api.TreeShakingTrue,
		Sourcemap:         p.config.SourceMap,
		Metafile:          true,
		LogLevel:          api.LogLevelSilent,
		Plugins:           slices.Clone(p.plugins),
	}, nil
}

// EntryPoints expands the configured entry points, which may be globs, into
// paths relative to the project root. These are the paths the build metadata
// is keyed by.
func (p *Pipeline) EntryPoints() ([]string, error) {
	var entryPoints []string
	for _, pattern := range p.config.EntryPoints {
		matches, err := filepath.Glob(filepath.Join(p.config.Root, pattern))
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			rel, err := filepath.Rel(p.config.Root, match)
			if err != nil {
				return nil, err
			}
			entryPoints = append(entryPoints, filepath.ToSlash(rel))
		}
	}

	if len(entryPoints) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEntryPoints, strings.Join(p.config.EntryPoints, ", "))
	}

	return entryPoints, nil
}

// Build runs esbuild with the configured settings and loads metadata
func (p *Pipeline) Build() error {
	opts, err := p.BuildOptions()
	if err != nil {
		return err
	}

	log.Info().Strs("entrypoints", opts.EntryPoints).Strs("plugins", p.resolved.PluginNames()).Msg("Building assets")

	result := api.Build(opts)
	return p.handleResult(&result)
}

// Watch builds once and then rebuilds on every change until ctx is cancelled.
func (p *Pipeline) Watch(ctx context.Context) error {
	opts, err := p.BuildOptions()
	if err != nil {
		return err
	}

	opts.Plugins = append(opts.Plugins, api.Plugin{
		Name: "devconfig-metadata",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if err := p.handleResult(result); err != nil {
					log.Warn().Err(err).Msg("Rebuild failed")
				}
				return api.OnEndResult{}, nil
			})
		},
	})

	buildCtx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		logMessages(zerolog.ErrorLevel, ctxErr.Errors, "Build error")
		return ErrBuildFailed
	}
	defer buildCtx.Dispose()

	if err := buildCtx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("failed to start watch mode: %w", err)
	}

	log.Info().Strs("entrypoints", opts.EntryPoints).Msg("Watching assets")

	<-ctx.Done()
	return nil
}

func (p *Pipeline) handleResult(result *api.BuildResult) error {
	logMessages(zerolog.WarnLevel, result.Warnings, "Build warning")

	if len(result.Errors) > 0 {
		logMessages(zerolog.ErrorLevel, result.Errors, "Build error")
		return ErrBuildFailed
	}

	// Parse and cache metadata
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return fmt.Errorf("failed to parse metafile: %w", err)
	}

	for _, file := range slices.Sorted(maps.Keys(metadata.Outputs)) {
		log.Debug().Str("file", file).Msg("Built file")
	}

	// Write metafile
	if err := os.WriteFile(filepath.Join(p.config.Root, p.config.MetafilePath), []byte(result.Metafile), 0600); err != nil {
		return err
	}

	p.mu.Lock()
	p.metadata = &metadata
	p.mu.Unlock()

	return nil
}

func logMessages(level zerolog.Level, msgs []api.Message, msg string) {
	for _, m := range msgs {
		event := log.WithLevel(level)
		if m.Location != nil {
			event = event.Str("file", m.Location.File).Int("line", m.Location.Line).Int("column", m.Location.Column)
		}
		if m.PluginName != "" {
			event = event.Str("plugin", m.PluginName)
		}
		event.Str("error", m.Text).Msg(msg)
	}
}

// LoadScripts returns the ordered list of script paths needed for the given entrypoint
// and the main entrypoint file path
func (p *Pipeline) LoadScripts(entryPointPath string) ([]string, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, "", ErrNotBuilt
	}

	entryPointPath = cleanEntryPoint(entryPointPath)
	scripts := []string{}
	visited := make(map[string]bool)

	// Find the script output for this entrypoint, a stylesheet output may share it
	for outputPath, info := range p.metadata.Outputs {
		if info.EntryPoint == entryPointPath && strings.HasSuffix(outputPath, ".js") {
			entrypoint := "/" + outputPath
			scripts = append(scripts, entrypoint)
			visited[outputPath] = true
			p.addDependencies(info, &scripts, visited)
			return scripts, entrypoint, nil
		}
	}

	return nil, "", fmt.Errorf("%w: %s", ErrEntryPointNotFound, entryPointPath)
}

// LoadStyles returns the stylesheet paths produced for the given entrypoint.
func (p *Pipeline) LoadStyles(entryPointPath string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, ErrNotBuilt
	}

	entryPointPath = cleanEntryPoint(entryPointPath)
	styles := []string{}
	found := false
	for _, outputPath := range slices.Sorted(maps.Keys(p.metadata.Outputs)) {
		info := p.metadata.Outputs[outputPath]
		if info.EntryPoint != entryPointPath {
			continue
		}
		found = true
		switch {
		case strings.HasSuffix(outputPath, ".css"):
			styles = append(styles, "/"+outputPath)
		case info.CSSBundle != "":
			styles = append(styles, "/"+info.CSSBundle)
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: %s", ErrEntryPointNotFound, entryPointPath)
	}

	slices.Sort(styles)
	return slices.Compact(styles), nil
}

func (p *Pipeline) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.External || visited[imp.Path] {
			continue
		}
		visited[imp.Path] = true
		*scripts = append(*scripts, "/"+imp.Path)

		if chunkInfo, exists := p.metadata.Outputs[imp.Path]; exists {
			p.addDependencies(chunkInfo, scripts, visited)
		}
	}
}

// Handler returns an http.HandlerFunc that renders the index template with the
// scripts and stylesheets of the given entrypoint
func (p *Pipeline) Handler(title, entryPointPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scripts, _, err := p.LoadScripts(entryPointPath)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load scripts")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		styles, err := p.LoadStyles(entryPointPath)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load styles")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		data := map[string]any{
			"Title":   title,
			"Scripts": scripts,
			"Styles":  styles,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := p.tmpl.Execute(w, data); err != nil {
			log.Error().Err(err).Msg("Failed to render template")
		}
	}
}

func cleanEntryPoint(entryPointPath string) string {
	return path.Clean(filepath.ToSlash(entryPointPath))
}
