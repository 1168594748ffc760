package assets

import "errors"

var (
	// ErrNoEntryPoints indicates none of the configured entry points matched a file
	ErrNoEntryPoints = errors.New("no entry points found")
	// ErrBuildFailed indicates esbuild reported at least one error
	ErrBuildFailed = errors.New("esbuild failed with errors")
	// ErrNotBuilt indicates metadata was requested before a successful build
	ErrNotBuilt = errors.New("assets not built yet, call Build() first")
	// ErrEntryPointNotFound indicates the entry point is missing from the build metadata
	ErrEntryPointNotFound = errors.New("entrypoint not found in metadata")
	// ErrUnknownPlugin indicates a resolved plugin has no esbuild implementation
	ErrUnknownPlugin = errors.New("no esbuild implementation for plugin")
	// ErrInvalidPluginOption indicates a plugin option has an unusable value
	ErrInvalidPluginOption = errors.New("invalid plugin option")
	// ErrComponentCompilerUnavailable indicates a single-file component was imported
	ErrComponentCompilerUnavailable = errors.New("single-file components need the framework compiler, which is not available")
	// ErrStyleCompile indicates a preprocessor stylesheet failed to compile
	ErrStyleCompile = errors.New("stylesheet compilation failed")
)
