package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/devconfig/internal/buildconfig"
)

// vueRuntime is the ESM bundler build of the framework runtime, which reads
// the compile time feature flags below.
const vueRuntime = "vue/dist/vue.runtime.esm-bundler.js"

// resolvingMarker tags resolutions issued by our own plugins so they are not
// handled a second time.
type resolvingMarker struct{}

// esbuildPlugin maps a resolved plugin descriptor onto its esbuild implementation.
func esbuildPlugin(root string, desc buildconfig.PluginDescriptor) (api.Plugin, error) {
	switch desc.Name {
	case buildconfig.PluginVue:
		return vuePlugin(desc.Options)
	case buildconfig.PluginTsconfigPaths:
		return tsconfigPathsPlugin(root, desc.Options)
	case buildconfig.PluginDefine:
		return definePlugin(desc.Options), nil
	}
	return api.Plugin{}, fmt.Errorf("%w: %s", ErrUnknownPlugin, desc.Name)
}

func vuePlugin(options map[string]string) (api.Plugin, error) {
	flags := map[string]string{
		"__VUE_OPTIONS_API__":                     "true",
		"__VUE_PROD_DEVTOOLS__":                   "false",
		"__VUE_PROD_HYDRATION_MISMATCH_DETAILS__": "false",
	}

	for option, flag := range map[string]string{
		"optionsAPI":                   "__VUE_OPTIONS_API__",
		"prodDevtools":                 "__VUE_PROD_DEVTOOLS__",
		"prodHydrationMismatchDetails": "__VUE_PROD_HYDRATION_MISMATCH_DETAILS__",
	} {
		value, ok := options[option]
		if !ok {
			continue
		}
		if value != "true" && value != "false" {
			return api.Plugin{}, fmt.Errorf("%w: %s.%s must be true or false, got %q", ErrInvalidPluginOption, buildconfig.PluginVue, option, value)
		}
		flags[flag] = value
	}

	return api.Plugin{
		Name: buildconfig.PluginVue,
		Setup: func(build api.PluginBuild) {
			setDefines(build.InitialOptions, flags)

			build.OnResolve(api.OnResolveOptions{Filter: `^vue$`}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if _, ok := args.PluginData.(resolvingMarker); ok {
					return api.OnResolveResult{}, nil
				}
				res := build.Resolve(vueRuntime, api.ResolveOptions{
					Importer:   args.Importer,
					ResolveDir: args.ResolveDir,
					Kind:       args.Kind,
					PluginData: resolvingMarker{},
				})
				if len(res.Errors) > 0 {
					// fall back to the package's own entry point
					return api.OnResolveResult{}, nil
				}
				return api.OnResolveResult{Path: res.Path, Namespace: res.Namespace, SideEffects: sideEffects(res)}, nil
			})

			build.OnLoad(api.OnLoadOptions{Filter: `\.vue$`}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				return api.OnLoadResult{}, fmt.Errorf("%w: %s", ErrComponentCompilerUnavailable, args.Path)
			})
		},
	}, nil
}

// sideEffects carries a package's "sideEffects" annotation through a plugin
// resolution. api.SideEffectsTrue is the zero value.
func sideEffects(res api.ResolveResult) api.SideEffects {
	if !res.SideEffects {
		return api.SideEffectsFalse
	}
	return api.SideEffectsTrue
}

func definePlugin(options map[string]string) api.Plugin {
	return api.Plugin{
		Name: buildconfig.PluginDefine,
		Setup: func(build api.PluginBuild) {
			setDefines(build.InitialOptions, options)
		},
	}
}

func setDefines(opts *api.BuildOptions, defines map[string]string) {
	if len(defines) == 0 {
		return
	}
	if opts.Define == nil {
		opts.Define = make(map[string]string, len(defines))
	}
	for k, v := range defines {
		opts.Define[k] = v
	}
}

func tsconfigPathsPlugin(root string, options map[string]string) (api.Plugin, error) {
	file := options["tsconfig"]
	if file == "" {
		file = "tsconfig.json"
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(root, file)
	}

	paths, err := loadTsconfigPaths(file)
	if err != nil {
		return api.Plugin{}, err
	}

	return api.Plugin{
		Name: buildconfig.PluginTsconfigPaths,
		Setup: func(build api.PluginBuild) {
			if len(paths.mappings) == 0 {
				return
			}

			build.OnResolve(api.OnResolveOptions{Filter: paths.filter()}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if _, ok := args.PluginData.(resolvingMarker); ok {
					return api.OnResolveResult{}, nil
				}
				for _, candidate := range paths.candidates(args.Path) {
					res := build.Resolve(candidate, api.ResolveOptions{
						Importer:   args.Importer,
						ResolveDir: args.ResolveDir,
						Kind:       args.Kind,
						PluginData: resolvingMarker{},
					})
					if len(res.Errors) == 0 {
						return api.OnResolveResult{
							Path:        res.Path,
							Namespace:   res.Namespace,
							External:    res.External,
							SideEffects: sideEffects(res),
						}, nil
					}
				}
				// leave it to esbuild, which reports the unresolved import
				return api.OnResolveResult{}, nil
			})
		},
	}, nil
}

type preprocessorInjection struct {
	name string
	data string
}

// stylePlugin injects additionalData into every stylesheet of a configured
// preprocessor and compiles it to CSS before esbuild sees it.
func stylePlugin(root string, preprocessors map[string]buildconfig.PreprocessorOptions, compiler StyleCompiler) api.Plugin {
	byExt := make(map[string]preprocessorInjection, len(preprocessors))
	for name, opts := range preprocessors {
		byExt[buildconfig.PreprocessorExtension(name)] = preprocessorInjection{name: name, data: opts.AdditionalData}
	}

	return api.Plugin{
		Name: "devconfig-styles",
		Setup: func(build api.PluginBuild) {
			if len(byExt) == 0 {
				return
			}

			build.OnLoad(api.OnLoadOptions{Filter: extensionFilter(byExt), Namespace: "file"}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				pre, ok := byExt[filepath.Ext(args.Path)]
				if !ok {
					return api.OnLoadResult{}, nil
				}

				src, err := os.ReadFile(args.Path)
				if err != nil {
					return api.OnLoadResult{}, err
				}

				dir := filepath.Dir(args.Path)
				css, err := compiler.Compile(StyleInput{
					Path:         args.Path,
					Source:       buildconfig.Inject(string(src), pre.data),
					Preprocessor: pre.name,
					IncludePaths: []string{root, dir},
				})
				if err != nil {
					return api.OnLoadResult{}, fmt.Errorf("%w: %s: %w", ErrStyleCompile, args.Path, err)
				}

				log.Debug().Str("file", args.Path).Str("preprocessor", pre.name).Msg("Compiled stylesheet")

				return api.OnLoadResult{
					Contents:   &css,
					Loader:     api.LoaderCSS,
					ResolveDir: dir,
					WatchFiles: []string{args.Path},
				}, nil
			})
		},
	}
}

func extensionFilter(byExt map[string]preprocessorInjection) string {
	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, regexp.QuoteMeta(ext))
	}
	slices.Sort(exts)
	return `(` + strings.Join(exts, "|") + `)$`
}
