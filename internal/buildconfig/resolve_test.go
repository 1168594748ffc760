package buildconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func portConfig(p int) PartialConfig {
	return PartialConfig{Server: PartialServer{Port: intPtr(p)}}
}

func TestResolve_defaults(t *testing.T) {
	rc, err := Resolve(PartialConfig{})
	require.NoError(t, err)

	require.Equal(t, 8080, rc.Server.Port)
	require.Equal(t, "localhost", rc.Server.Host)
	require.Empty(t, rc.Server.CORS)
	require.Equal(t, []string{PluginVue, PluginTsconfigPaths}, rc.PluginNames())
	require.Equal(t, ".", rc.Root)

	scss, ok := rc.CSS.PreprocessorOptions[PreprocessorSCSS]
	require.True(t, ok)
	require.Equal(t, "@use \"./src/design/styles/common.scss\" as *;\n", scss.AdditionalData)
	require.Len(t, rc.CSS.PreprocessorOptions, 1)

	require.Equal(t, BuildConfig{
		EntryPoints: []string{"src/main.ts"},
		OutDir:      "dist",
		Sourcemap:   SourcemapLinked,
	}, rc.Build)
}

func TestResolve_port(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{name: "lowest port", port: 1},
		{name: "default port", port: 8080},
		{name: "highest port", port: 65535},
		{name: "zero", port: 0, wantErr: true},
		{name: "negative", port: -1, wantErr: true},
		{name: "above range", port: 65536, wantErr: true},
		{name: "far above range", port: 70000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := Resolve(portConfig(tt.port))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrConfigValidation)
				require.Nil(t, rc)

				var cve *ConfigValidationError
				require.True(t, errors.As(err, &cve))
				require.Equal(t, "server.port", cve.Field)
				require.Equal(t, tt.port, cve.Value)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.port, rc.Server.Port)
		})
	}
}

func TestResolve_portProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(-100000, 200000).Draw(t, "port")

		rc, err := Resolve(portConfig(port))
		if port < 1 || port > 65535 {
			require.ErrorIs(t, err, ErrConfigValidation, "port %d should be rejected", port)
			return
		}
		require.NoError(t, err, "port %d should be accepted", port)
		require.Equal(t, port, rc.Server.Port)
	})
}

func TestResolve_deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		user := PartialConfig{
			Server: PartialServer{
				Port: intPtr(rapid.IntRange(1, 65535).Draw(t, "port")),
				Host: rapid.SampledFrom([]string{"", "0.0.0.0", "127.0.0.1"}).Draw(t, "host"),
			},
		}
		if rapid.Bool().Draw(t, "withData") {
			data := rapid.SampledFrom([]string{
				"@use 'tokens' as *;",
				"\n    @use \"./src/design/styles/common.scss\" as *;\n    ",
				"$primary: #333;\n\n@import 'mixins';",
			}).Draw(t, "data")
			user.CSS.PreprocessorOptions = map[string]PartialPreprocessor{
				PreprocessorSCSS: {AdditionalData: &data},
			}
		}

		first, err := Resolve(user)
		require.NoError(t, err)
		second, err := Resolve(user)
		require.NoError(t, err)

		require.Equal(t, first, second)
		require.NotEmpty(t, first.CSS.PreprocessorOptions[PreprocessorSCSS].AdditionalData)
	})
}

func TestResolve_resultsDoNotShareState(t *testing.T) {
	first, err := Resolve(PartialConfig{})
	require.NoError(t, err)

	first.Plugins[0].Name = "mutated"
	first.Build.EntryPoints[0] = "mutated.ts"
	first.CSS.PreprocessorOptions[PreprocessorSCSS] = PreprocessorOptions{AdditionalData: "mutated"}

	second, err := Resolve(PartialConfig{})
	require.NoError(t, err)
	require.Equal(t, []string{PluginVue, PluginTsconfigPaths}, second.PluginNames())
	require.Equal(t, []string{"src/main.ts"}, second.Build.EntryPoints)
	require.Equal(t, NormalizeAdditionalData(DefaultSharedStyles), second.CSS.PreprocessorOptions[PreprocessorSCSS].AdditionalData)
}

func TestResolve_plugins(t *testing.T) {
	tests := []struct {
		name      string
		plugins   []PluginDescriptor
		wantNames []string
		wantField string
	}{
		{
			name:      "no user plugins",
			wantNames: []string{PluginVue, PluginTsconfigPaths},
		},
		{
			name:      "reversed built-ins keep fixed order",
			plugins:   []PluginDescriptor{{Name: PluginTsconfigPaths}, {Name: PluginVue}},
			wantNames: []string{PluginVue, PluginTsconfigPaths},
		},
		{
			name:      "extra plugin before built-ins is appended",
			plugins:   []PluginDescriptor{{Name: PluginDefine}, {Name: PluginVue}},
			wantNames: []string{PluginVue, PluginTsconfigPaths, PluginDefine},
		},
		{
			name:      "unknown plugin",
			plugins:   []PluginDescriptor{{Name: "react"}},
			wantField: "plugins[0].name",
		},
		{
			name:      "empty name",
			plugins:   []PluginDescriptor{{Name: PluginDefine}, {Name: ""}},
			wantField: "plugins[1].name",
		},
		{
			name:      "duplicate plugin",
			plugins:   []PluginDescriptor{{Name: PluginDefine}, {Name: PluginDefine}},
			wantField: "plugins[1].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := Resolve(PartialConfig{Plugins: tt.plugins})
			if tt.wantField != "" {
				var cve *ConfigValidationError
				require.ErrorAs(t, err, &cve)
				require.Equal(t, tt.wantField, cve.Field)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantNames, rc.PluginNames())
		})
	}
}

func TestResolve_builtinOptionsMergedInPlace(t *testing.T) {
	user := PartialConfig{
		Plugins: []PluginDescriptor{
			{Name: PluginTsconfigPaths, Options: map[string]string{"tsconfig": "tsconfig.app.json"}},
			{Name: PluginDefine, Options: map[string]string{"__APP_VERSION__": `"1.0.0"`}},
		},
	}

	rc, err := Resolve(user)
	require.NoError(t, err)
	require.Equal(t, []PluginDescriptor{
		{Name: PluginVue},
		{Name: PluginTsconfigPaths, Options: map[string]string{"tsconfig": "tsconfig.app.json"}},
		{Name: PluginDefine, Options: map[string]string{"__APP_VERSION__": `"1.0.0"`}},
	}, rc.Plugins)

	// the resolved options are a copy of the input
	user.Plugins[1].Options["__APP_VERSION__"] = "changed"
	require.Equal(t, `"1.0.0"`, rc.Plugins[2].Options["__APP_VERSION__"])
}

func TestResolve_customRegistry(t *testing.T) {
	r := NewResolver(WithRegistry(NewRegistry([]string{"framework", "alias"}, "extra")))

	rc, err := r.Resolve(PartialConfig{Plugins: []PluginDescriptor{{Name: "extra"}, {Name: "alias"}}})
	require.NoError(t, err)
	require.Equal(t, []string{"framework", "alias", "extra"}, rc.PluginNames())

	_, err = r.Resolve(PartialConfig{Plugins: []PluginDescriptor{{Name: PluginVue}}})
	require.ErrorIs(t, err, ErrConfigValidation)
}

func TestResolve_preprocessors(t *testing.T) {
	tests := []struct {
		name      string
		options   map[string]PartialPreprocessor
		want      map[string]PreprocessorOptions
		wantField string
	}{
		{
			name:    "scss without override keeps default",
			options: map[string]PartialPreprocessor{PreprocessorSCSS: {}},
			want: map[string]PreprocessorOptions{
				PreprocessorSCSS: {AdditionalData: "@use \"./src/design/styles/common.scss\" as *;\n"},
			},
		},
		{
			name: "scss override is normalized",
			options: map[string]PartialPreprocessor{
				PreprocessorSCSS: {AdditionalData: strPtr("\n        @use \"tokens\" as *;\n        ")},
			},
			want: map[string]PreprocessorOptions{
				PreprocessorSCSS: {AdditionalData: "@use \"tokens\" as *;\n"},
			},
		},
		{
			name: "sass added alongside scss",
			options: map[string]PartialPreprocessor{
				PreprocessorSass: {AdditionalData: strPtr("@use 'tokens' as *")},
			},
			want: map[string]PreprocessorOptions{
				PreprocessorSCSS: {AdditionalData: "@use \"./src/design/styles/common.scss\" as *;\n"},
				PreprocessorSass: {AdditionalData: "@use 'tokens' as *\n"},
			},
		},
		{
			name: "indented sass data kept verbatim",
			options: map[string]PartialPreprocessor{
				PreprocessorSass: {AdditionalData: strPtr("=flex\n  display: flex\n  align-items: center\n")},
			},
			want: map[string]PreprocessorOptions{
				PreprocessorSCSS: {AdditionalData: "@use \"./src/design/styles/common.scss\" as *;\n"},
				PreprocessorSass: {AdditionalData: "=flex\n  display: flex\n  align-items: center\n"},
			},
		},
		{
			name:      "empty scss data",
			options:   map[string]PartialPreprocessor{PreprocessorSCSS: {AdditionalData: strPtr("  \n ")}},
			wantField: "css.preprocessorOptions.scss.additionalData",
		},
		{
			name:      "sass without data",
			options:   map[string]PartialPreprocessor{PreprocessorSass: {}},
			wantField: "css.preprocessorOptions.sass.additionalData",
		},
		{
			name:      "unsupported preprocessor",
			options:   map[string]PartialPreprocessor{"less": {AdditionalData: strPtr("@import 'x';")}},
			wantField: "css.preprocessorOptions.less",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := Resolve(PartialConfig{CSS: PartialCSS{PreprocessorOptions: tt.options}})
			if tt.wantField != "" {
				var cve *ConfigValidationError
				require.ErrorAs(t, err, &cve)
				require.Equal(t, tt.wantField, cve.Field)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, rc.CSS.PreprocessorOptions)
		})
	}
}

func TestResolve_server(t *testing.T) {
	rc, err := Resolve(PartialConfig{Server: PartialServer{Host: "0.0.0.0", CORS: []string{"http://localhost:3000"}}})
	require.NoError(t, err)
	require.Equal(t, ServerConfig{Port: 8080, Host: "0.0.0.0", CORS: []string{"http://localhost:3000"}}, rc.Server)
	require.Equal(t, "0.0.0.0:8080", rc.Server.Addr())

	_, err = Resolve(PartialConfig{Server: PartialServer{CORS: []string{" "}}})
	var cve *ConfigValidationError
	require.ErrorAs(t, err, &cve)
	require.Equal(t, "server.cors[0]", cve.Field)
}

func TestResolve_build(t *testing.T) {
	rc, err := Resolve(PartialConfig{
		Root: "web",
		Build: PartialBuild{
			EntryPoints: []string{"src/app.ts", "src/admin.ts"},
			Minify:      true,
			Sourcemap:   SourcemapNone,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "web", rc.Root)
	require.Equal(t, BuildConfig{
		EntryPoints: []string{"src/app.ts", "src/admin.ts"},
		OutDir:      "dist",
		Minify:      true,
		Sourcemap:   SourcemapNone,
	}, rc.Build)

	_, err = Resolve(PartialConfig{Build: PartialBuild{Sourcemap: "hidden"}})
	require.ErrorIs(t, err, ErrConfigValidation)

	_, err = Resolve(PartialConfig{Build: PartialBuild{EntryPoints: []string{""}}})
	require.ErrorIs(t, err, ErrConfigValidation)
}

func TestConfigValidationError_message(t *testing.T) {
	_, err := Resolve(portConfig(70000))
	require.EqualError(t, err, "invalid configuration: server.port: 70000 (must be between 1 and 65535)")
}
