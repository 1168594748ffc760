package assets

import (
	"fmt"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/devconfig/internal/buildconfig"
)

type Config struct {
	// Absolute project root, used as the esbuild working directory
	Root string
	// Entry points or glob patterns relative to Root (e.g. "src/pages/*.ts")
	EntryPoints []string
	// Output directory for built files, relative to Root
	OutputDir string
	// Path to metafile, relative to Root
	MetafilePath string
	// Whether to minify output
	Minify bool
	// Source map mode
	SourceMap api.SourceMap
}

// ConfigFrom derives the pipeline configuration from a resolved project configuration.
func ConfigFrom(rc *buildconfig.ResolvedConfig) (Config, error) {
	root, err := filepath.Abs(rc.Root)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve project root %s: %w", rc.Root, err)
	}

	return Config{
		Root:         root,
		EntryPoints:  rc.Build.EntryPoints,
		OutputDir:    rc.Build.OutDir,
		MetafilePath: filepath.Join(rc.Build.OutDir, "meta.json"),
		Minify:       rc.Build.Minify,
		SourceMap:    sourceMap(rc.Build.Sourcemap),
	}, nil
}

func sourceMap(mode string) api.SourceMap {
	switch mode {
	case buildconfig.SourcemapInline:
		return api.SourceMapInline
	case buildconfig.SourcemapExternal:
		return api.SourceMapExternal
	case buildconfig.SourcemapNone:
		return api.SourceMapNone
	default:
		return api.SourceMapLinked
	}
}
