package assets

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/devconfig/internal/buildconfig"
)

// StyleInput is a preprocessor stylesheet with its shared styles already injected.
type StyleInput struct {
	Path         string
	Source       string
	Preprocessor string
	IncludePaths []string
}

// StyleCompiler turns a preprocessor stylesheet into plain CSS.
type StyleCompiler interface {
	Compile(input StyleInput) (string, error)
}

type SassOptions struct {
	// Dart Sass binary, "sass" on $PATH when empty
	Binary  string
	Timeout time.Duration
	Minify  bool
}

// SassCompiler compiles SCSS and indented Sass through the Dart Sass embedded
// protocol. The transpiler process is started on first use.
type SassCompiler struct {
	opts SassOptions

	once       sync.Once
	transpiler *godartsass.Transpiler
	startErr   error
}

func NewSassCompiler(opts SassOptions) *SassCompiler {
	return &SassCompiler{opts: opts}
}

func (c *SassCompiler) start() {
	c.transpiler, c.startErr = godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: c.opts.Binary,
		Timeout:                  c.opts.Timeout,
		LogEventHandler: func(event godartsass.LogEvent) {
			switch event.Type {
			case godartsass.LogEventTypeDebug:
				log.Debug().Str("source", "sass").Msg(event.Message)
			case godartsass.LogEventTypeDeprecated:
				log.Warn().Str("source", "sass").Str("deprecation", event.DeprecationType).Msg(event.Message)
			default:
				log.Warn().Str("source", "sass").Msg(event.Message)
			}
		},
	})
}

func (c *SassCompiler) Compile(input StyleInput) (string, error) {
	c.once.Do(c.start)
	if c.startErr != nil {
		return "", fmt.Errorf("failed to start dart sass: %w", c.startErr)
	}

	syntax := godartsass.SourceSyntaxSCSS
	if input.Preprocessor == buildconfig.PreprocessorSass {
		syntax = godartsass.SourceSyntaxSASS
	}

	style := godartsass.OutputStyleExpanded
	if c.opts.Minify {
		style = godartsass.OutputStyleCompressed
	}

	result, err := c.transpiler.Execute(godartsass.Args{
		Source:       input.Source,
		URL:          fileURL(input.Path),
		SourceSyntax: syntax,
		OutputStyle:  style,
		IncludePaths: input.IncludePaths,
	})
	if err != nil {
		return "", err
	}
	return result.CSS, nil
}

// Close stops the transpiler if it was started.
func (c *SassCompiler) Close() error {
	if c.transpiler == nil {
		return nil
	}
	// a clean shutdown of the sass process is reported as ErrShutdown
	if err := c.transpiler.Close(); err != nil && !errors.Is(err, godartsass.ErrShutdown) {
		return err
	}
	return nil
}

func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}
