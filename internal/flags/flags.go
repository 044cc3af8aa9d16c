// Package flags holds the feature flags coordsys understands and the values
// loaded for them from configuration.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/coordsys/internal/log"
)

const (
	FlagPathCache      = "path-cache"
	FlagStrictDefaults = "strict-defaults"
)

// Flag describes one known feature flag.
type Flag struct {
	Name        string
	Description string
	Default     bool
}

var known = []Flag{
	{
		Name:        FlagPathCache,
		Description: "serve repeated mapping path queries from the cache",
		Default:     true,
	},
	{
		Name:        FlagStrictDefaults,
		Description: "fail name lookups that fall back to a non-default version",
		Default:     false,
	},
}

// Known returns every flag ordered by name.
func Known() []Flag {
	out := slices.Clone(known)
	slices.SortFunc(out, func(a, b Flag) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out
}

func Lookup(name string) (Flag, bool) {
	i := slices.IndexFunc(known, func(f Flag) bool { return f.Name == name })
	if i < 0 {
		return Flag{}, false
	}
	return known[i], true
}

// Defaults returns a fresh map of every known flag to its default.
func Defaults() map[string]bool {
	out := make(map[string]bool, len(known))
	for _, f := range known {
		out[f.Name] = f.Default
	}
	return out
}

// Registry is a read-only set of flag values.
type Registry struct {
	flags map[string]bool
}

// New copies values into a Registry. Flags missing from values are off.
func New(values map[string]bool) *Registry {
	r := &Registry{flags: maps.Clone(values)}
	if r.flags == nil {
		r.flags = make(map[string]bool)
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.flags)
	return r
}

// Enabled is false for unknown flags and on a nil Registry.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, ok := r.flags[name]
	if !ok {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
	}
	return value
}

// All returns a copy of the values.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}
