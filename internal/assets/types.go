package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"maps"
	"path/filepath"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/devconfig/internal/buildconfig"
)

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	CSSBundle  string       `json:"cssBundle"`
	Imports    []ImportInfo `json:"imports"`
}

type ImportInfo struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external"`
}

const defaultTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ .Title }}</title>
{{- range .Styles }}
<link rel="stylesheet" href="{{ . }}">
{{- end }}
</head>
<body>
<div id="app"></div>
{{- range .Scripts }}
<script type="module" src="{{ . }}"></script>
{{- end }}
</body>
</html>
`

// Pipeline manages the asset build process and script loading
type Pipeline struct {
	config   Config
	resolved *buildconfig.ResolvedConfig
	plugins  []api.Plugin
	styles   StyleCompiler
	metadata *BuildMetadata
	tmpl     *template.Template
	funcs    template.FuncMap
	tmplPath string
	mu       sync.RWMutex
}

type Option func(*Pipeline)

// WithStyleCompiler replaces the Dart Sass compiler used for preprocessor stylesheets.
func WithStyleCompiler(compiler StyleCompiler) Option {
	return func(p *Pipeline) {
		p.styles = compiler
	}
}

// WithTemplate loads the index page template from a file instead of the built-in one.
func WithTemplate(templatePath string) Option {
	return func(p *Pipeline) {
		p.tmplPath = templatePath
	}
}

// WithTemplateFuncs adds custom functions available to the index page template.
func WithTemplateFuncs(customFuncs template.FuncMap) Option {
	return func(p *Pipeline) {
		maps.Copy(p.funcs, customFuncs)
	}
}

// New creates a new asset pipeline for the resolved configuration. The esbuild
// plugins follow the resolved plugin order, with the stylesheet plugin last.
func New(rc *buildconfig.ResolvedConfig, opts ...Option) (*Pipeline, error) {
	config, err := ConfigFrom(rc)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		config:   config,
		resolved: rc,
		funcs: template.FuncMap{
			"marshal": marshal,
			"safe": func(s string) template.HTML {
				return template.HTML(s) //nolint:gosec
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.styles == nil {
		p.styles = NewSassCompiler(SassOptions{Minify: config.Minify})
	}

	if err := p.loadTemplate(); err != nil {
		return nil, err
	}

	for _, desc := range rc.Plugins {
		plugin, err := esbuildPlugin(config.Root, desc)
		if err != nil {
			return nil, err
		}
		p.plugins = append(p.plugins, plugin)
	}
	p.plugins = append(p.plugins, stylePlugin(config.Root, rc.CSS.PreprocessorOptions, p.styles))

	return p, nil
}

func (p *Pipeline) loadTemplate() error {
	var (
		tmpl *template.Template
		err  error
	)
	if p.tmplPath != "" {
		// ParseFiles names the template after the file's base name
		tmpl, err = template.New(filepath.Base(p.tmplPath)).Funcs(p.funcs).ParseFiles(p.tmplPath)
	} else {
		tmpl, err = template.New("index").Funcs(p.funcs).Parse(defaultTemplate)
	}
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}
	p.tmpl = tmpl
	return nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Close releases the stylesheet compiler.
func (p *Pipeline) Close() error {
	if closer, ok := p.styles.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
