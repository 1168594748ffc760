package buildconfig

import "slices"

// Registry lists the plugin names the resolver accepts. Built-in plugins are
// always emitted first, in registration order.
type Registry struct {
	builtins []string
	known    map[string]struct{}
}

// NewRegistry creates a registry with the given built-in plugins followed by
// optional extra plugins a user may enable.
func NewRegistry(builtins []string, extra ...string) *Registry {
	r := &Registry{
		builtins: slices.Clone(builtins),
		known:    make(map[string]struct{}, len(builtins)+len(extra)),
	}
	for _, name := range builtins {
		r.known[name] = struct{}{}
	}
	for _, name := range extra {
		r.known[name] = struct{}{}
	}
	return r
}

// DefaultRegistry returns the framework plugin followed by the path alias
// plugin, with the define plugin available on request.
func DefaultRegistry() *Registry {
	return NewRegistry([]string{PluginVue, PluginTsconfigPaths}, PluginDefine)
}

func (r *Registry) Known(name string) bool {
	_, ok := r.known[name]
	return ok
}

func (r *Registry) IsBuiltin(name string) bool {
	return slices.Contains(r.builtins, name)
}

// Builtins returns a copy of the built-in plugin names in pipeline order.
func (r *Registry) Builtins() []string {
	return slices.Clone(r.builtins)
}
