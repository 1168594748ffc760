package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tailscale/hujson"
)

type tsconfigFile struct {
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// pathMapping is one compilerOptions.paths entry, split around its optional
// single "*" wildcard.
type pathMapping struct {
	prefix   string
	suffix   string
	wildcard bool
	targets  []string
}

type tsconfigPaths struct {
	baseDir  string
	mappings []pathMapping
}

// loadTsconfigPaths reads the path aliases of a tsconfig file. A missing file
// yields no aliases.
func loadTsconfigPaths(file string) (*tsconfigPaths, error) {
	data, err := os.ReadFile(file) // #nosec G304 - project file chosen by the operator
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("tsconfig", file).Msg("No tsconfig found, path aliases disabled")
		return &tsconfigPaths{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tsconfig %s: %w", file, err)
	}

	// tsconfig allows comments and trailing commas
	data, err = hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tsconfig %s: %w", file, err)
	}

	var cfg tsconfigFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tsconfig %s: %w", file, err)
	}

	return newTsconfigPaths(filepath.Join(filepath.Dir(file), cfg.CompilerOptions.BaseURL), cfg.CompilerOptions.Paths)
}

func newTsconfigPaths(baseDir string, paths map[string][]string) (*tsconfigPaths, error) {
	t := &tsconfigPaths{baseDir: baseDir}
	for pattern, targets := range paths {
		if strings.Count(pattern, "*") > 1 {
			return nil, fmt.Errorf("%w: paths pattern %q has more than one wildcard", ErrInvalidPluginOption, pattern)
		}
		prefix, suffix, wildcard := strings.Cut(pattern, "*")
		t.mappings = append(t.mappings, pathMapping{
			prefix:   prefix,
			suffix:   suffix,
			wildcard: wildcard,
			targets:  targets,
		})
	}

	// exact patterns first, then the longest prefix wins
	slices.SortFunc(t.mappings, func(a, b pathMapping) int {
		if a.wildcard != b.wildcard {
			if a.wildcard {
				return 1
			}
			return -1
		}
		if d := len(b.prefix) - len(a.prefix); d != 0 {
			return d
		}
		return strings.Compare(a.prefix+"*"+a.suffix, b.prefix+"*"+b.suffix)
	})

	return t, nil
}

// filter matches every specifier that could hit one of the mappings.
func (t *tsconfigPaths) filter() string {
	alternatives := make([]string, 0, len(t.mappings))
	for _, m := range t.mappings {
		if m.wildcard {
			alternatives = append(alternatives, regexp.QuoteMeta(m.prefix)+".*"+regexp.QuoteMeta(m.suffix)+"$")
		} else {
			alternatives = append(alternatives, regexp.QuoteMeta(m.prefix)+"$")
		}
	}
	return `^(?:` + strings.Join(alternatives, "|") + `)`
}

// candidates returns absolute paths to try for a specifier, from the best
// matching pattern only.
func (t *tsconfigPaths) candidates(specifier string) []string {
	for _, m := range t.mappings {
		var star string
		switch {
		case !m.wildcard:
			if specifier != m.prefix {
				continue
			}
		case len(specifier) >= len(m.prefix)+len(m.suffix) &&
			strings.HasPrefix(specifier, m.prefix) && strings.HasSuffix(specifier, m.suffix):
			star = specifier[len(m.prefix) : len(specifier)-len(m.suffix)]
		default:
			continue
		}

		out := make([]string, 0, len(m.targets))
		for _, target := range m.targets {
			out = append(out, filepath.Join(t.baseDir, strings.Replace(target, "*", star, 1)))
		}
		return out
	}
	return nil
}
