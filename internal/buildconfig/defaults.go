package buildconfig

const (
	// DefaultPort is the dev server port used when none is configured
	DefaultPort = 8080
	DefaultHost = "localhost"

	// DefaultSharedStyles is injected ahead of every SCSS stylesheet so shared
	// design tokens and mixins are in scope without an explicit import.
	DefaultSharedStyles = `@use "./src/design/styles/common.scss" as *;`

	minPort = 1
	maxPort = 65535
)

// Plugin names known to the default registry.
const (
	PluginVue           = "vue"
	PluginTsconfigPaths = "tsconfig-paths"
	PluginDefine        = "define"
)

// Preprocessor names accepted under css.preprocessorOptions.
const (
	PreprocessorSCSS = "scss"
	PreprocessorSass = "sass"
)

// Sourcemap modes accepted under build.sourcemap.
const (
	SourcemapLinked   = "linked"
	SourcemapInline   = "inline"
	SourcemapExternal = "external"
	SourcemapNone     = "none"
)

var preprocessorExtensions = map[string]string{
	PreprocessorSCSS: ".scss",
	PreprocessorSass: ".sass",
}

// PreprocessorExtension returns the stylesheet file extension handled by the
// named preprocessor, or "" when the preprocessor is not supported.
func PreprocessorExtension(name string) string {
	return preprocessorExtensions[name]
}

func defaultServer() ServerConfig {
	return ServerConfig{
		Port: DefaultPort,
		Host: DefaultHost,
	}
}

func defaultBuild() BuildConfig {
	return BuildConfig{
		EntryPoints: []string{"src/main.ts"},
		OutDir:      "dist",
		Sourcemap:   SourcemapLinked,
	}
}

func defaultPreprocessors() map[string]PreprocessorOptions {
	return map[string]PreprocessorOptions{
		PreprocessorSCSS: {AdditionalData: NormalizeAdditionalData(DefaultSharedStyles)},
	}
}
