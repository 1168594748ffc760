package assets

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTsconfigPaths_candidates(t *testing.T) {
	paths, err := newTsconfigPaths("/app", map[string][]string{
		"@/*":            {"./src/*"},
		"@/components/*": {"./src/ui/components/*", "./legacy/components/*"},
		"config":         {"./config/index.ts"},
		"*.css":          {"./styles/*.css"},
	})
	require.NoError(t, err)

	tests := []struct {
		name      string
		specifier string
		expected  []string
	}{
		{
			name:      "wildcard",
			specifier: "@/lib/greet",
			expected:  []string{"/app/src/lib/greet"},
		},
		{
			name:      "longest prefix wins",
			specifier: "@/components/Button",
			expected:  []string{"/app/src/ui/components/Button", "/app/legacy/components/Button"},
		},
		{
			name:      "exact match",
			specifier: "config",
			expected:  []string{"/app/config/index.ts"},
		},
		{
			name:      "suffix pattern",
			specifier: "theme.css",
			expected:  []string{"/app/styles/theme.css"},
		},
		{
			name:      "exact pattern does not match longer specifier",
			specifier: "config/extra",
		},
		{
			name:      "no match",
			specifier: "vue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paths.candidates(tt.specifier)
			expected := make([]string, 0, len(tt.expected))
			for _, e := range tt.expected {
				expected = append(expected, filepath.FromSlash(e))
			}
			if len(tt.expected) == 0 {
				require.Empty(t, got)
				return
			}
			require.Equal(t, expected, got)
		})
	}
}

func TestTsconfigPaths_filter(t *testing.T) {
	paths, err := newTsconfigPaths("/app", map[string][]string{
		"@/*":    {"./src/*"},
		"config": {"./config/index.ts"},
	})
	require.NoError(t, err)

	filter := regexp.MustCompile(paths.filter())
	require.True(t, filter.MatchString("@/lib/greet"))
	require.True(t, filter.MatchString("config"))
	require.False(t, filter.MatchString("config/extra"))
	require.False(t, filter.MatchString("./local"))
	require.False(t, filter.MatchString("/abs/@/path"))
}

func TestNewTsconfigPaths_multipleWildcards(t *testing.T) {
	_, err := newTsconfigPaths("/app", map[string][]string{"@/*/*": {"./src/*/*"}})
	require.ErrorIs(t, err, ErrInvalidPluginOption)
}

func TestLoadTsconfigPaths(t *testing.T) {
	dir := t.TempDir()

	paths, err := loadTsconfigPaths(filepath.Join(dir, "tsconfig.json"))
	require.NoError(t, err)
	require.Empty(t, paths.mappings)

	file := filepath.Join(dir, "tsconfig.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"compilerOptions": {"baseUrl": "web", "paths": {"~/*": ["src/*"]}}}`), 0o600))

	paths, err = loadTsconfigPaths(file)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "web", "src", "x")}, paths.candidates("~/x"))

	require.NoError(t, os.WriteFile(file, []byte(`{"compilerOptions": `), 0o600))
	_, err = loadTsconfigPaths(file)
	require.Error(t, err)
}

func TestLoadTsconfigPaths_jsonc(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "comments",
			content: `{
  // aliases
  "compilerOptions": {
    /* resolved from the project root */
    "baseUrl": ".",
    "paths": { "@/*": ["./src/*"] }
  }
}`,
		},
		{
			name:    "trailing commas",
			content: `{"compilerOptions": {"baseUrl": ".", "paths": { "@/*": ["./src/*",], },},}`,
		},
		{
			name:    "comment markers inside strings",
			content: `{"compilerOptions": {"baseUrl": ".", "paths": { "@/*": ["./src/*"], "//*": ["./src/*/*x*/"] }}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			file := filepath.Join(dir, "tsconfig.json")
			require.NoError(t, os.WriteFile(file, []byte(tt.content), 0o600))

			paths, err := loadTsconfigPaths(file)
			require.NoError(t, err)
			require.Equal(t, []string{filepath.Join(dir, "src", "lib", "greet")}, paths.candidates("@/lib/greet"))
		})
	}
}
