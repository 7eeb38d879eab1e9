package registry

import (
	"slices"
	"sync"

	"github.com/vinayprograms/toolreg/backend"
	"github.com/vinayprograms/toolreg/settings"
)

// Filter narrows entry backends to the kinds permitted by a set of runtime
// settings. The allowed-kind set is computed on first use and never changes
// afterwards; a Filter is safe for concurrent use.
type Filter struct {
	settings settings.Settings

	once    sync.Once
	allowed map[backend.Kind]bool
}

// NewFilter creates a filter over a copy of s.
func NewFilter(s settings.Settings) *Filter {
	s.DisableBackends = slices.Clone(s.DisableBackends)
	return &Filter{settings: s}
}

var defaultFilter = sync.OnceValue(func() *Filter {
	return NewFilter(settings.FromEnv())
})

// DefaultFilter returns the process-wide filter built from environment
// settings on first call.
func DefaultFilter() *Filter {
	return defaultFilter()
}

// Settings returns the settings the filter was built from.
func (f *Filter) Settings() settings.Settings {
	s := f.settings
	s.DisableBackends = slices.Clone(s.DisableBackends)
	return s
}

func (f *Filter) allowedKinds() map[backend.Kind]bool {
	f.once.Do(func() {
		allowed := make(map[backend.Kind]bool)
		for _, k := range backend.Kinds() {
			allowed[k] = true
		}
		for _, disabled := range f.settings.DisableBackends {
			delete(allowed, backend.Kind(disabled))
		}
		family := f.settings.Family()
		if family == settings.FamilyWindows {
			delete(allowed, backend.Asdf)
		}
		if family == settings.FamilyUnix && !f.settings.Experimental {
			delete(allowed, backend.Aqua)
		}
		f.allowed = allowed
	})
	return f.allowed
}

// Allowed reports whether backends of kind survive filtering.
func (f *Filter) Allowed(kind backend.Kind) bool {
	return f.allowedKinds()[kind]
}

// AllowedKinds returns the permitted kinds in declaration order.
func (f *Filter) AllowedKinds() []backend.Kind {
	allowed := f.allowedKinds()
	var out []backend.Kind
	for _, k := range backend.Kinds() {
		if allowed[k] {
			out = append(out, k)
		}
	}
	return out
}

// Backends returns the entry's backends whose kind is allowed, in their
// declared order. An empty result means the tool has no usable backend under
// the current settings.
func (f *Filter) Backends(e Entry) []string {
	allowed := f.allowedKinds()
	var out []string
	for _, full := range e.Backends {
		kind, _ := backend.SplitFull(full)
		if allowed[backend.Kind(kind)] {
			out = append(out, full)
		}
	}
	return out
}

// BackendsOfKind is Backends further restricted to a single kind.
func (f *Filter) BackendsOfKind(e Entry, kind backend.Kind) []string {
	var out []string
	for _, full := range f.Backends(e) {
		if k, _ := backend.SplitFull(full); k == string(kind) {
			out = append(out, full)
		}
	}
	return out
}

// IsSupportedOS reports whether e applies to the settings' host OS.
func (f *Filter) IsSupportedOS(e Entry) bool {
	return e.SupportsOS(f.settings.OS)
}

// BA returns the entry's default backend: the first one surviving the filter.
func (f *Filter) BA(e Entry) (backend.Arg, bool) {
	backends := f.Backends(e)
	if len(backends) == 0 {
		return backend.Arg{}, false
	}
	return backend.NewArg(e.Short, backends[0]), true
}
