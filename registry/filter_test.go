package registry

import (
	"reflect"
	"sync"
	"testing"

	"github.com/vinayprograms/toolreg/backend"
	"github.com/vinayprograms/toolreg/settings"
)

var ripgrep = Entry{
	Short: "ripgrep",
	Backends: []string{
		"aqua:BurntSushi/ripgrep",
		"ubi:BurntSushi/ripgrep[exe=rg]",
		"cargo:ripgrep",
		"asdf:https://gitlab.com/wt0f/asdf-ripgrep",
	},
}

func TestFilter_Backends(t *testing.T) {
	tests := []struct {
		name     string
		settings settings.Settings
		want     []string
	}{
		{
			name:     "linux without experimental drops aqua",
			settings: settings.Settings{OS: "linux"},
			want:     []string{"ubi:BurntSushi/ripgrep[exe=rg]", "cargo:ripgrep", "asdf:https://gitlab.com/wt0f/asdf-ripgrep"},
		},
		{
			name:     "linux with experimental keeps everything",
			settings: settings.Settings{OS: "linux", Experimental: true},
			want:     ripgrep.Backends,
		},
		{
			name:     "windows drops asdf and keeps aqua",
			settings: settings.Settings{OS: "windows"},
			want:     []string{"aqua:BurntSushi/ripgrep", "ubi:BurntSushi/ripgrep[exe=rg]", "cargo:ripgrep"},
		},
		{
			name:     "disabled kinds are dropped",
			settings: settings.Settings{OS: "macos", Experimental: true, DisableBackends: []string{"ubi", "cargo"}},
			want:     []string{"aqua:BurntSushi/ripgrep", "asdf:https://gitlab.com/wt0f/asdf-ripgrep"},
		},
		{
			name:     "everything disabled",
			settings: settings.Settings{OS: "linux", Experimental: true, DisableBackends: []string{"aqua", "ubi", "cargo", "asdf"}},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFilter(tt.settings).Backends(ripgrep)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Backends() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_WindowsNeverAsdf(t *testing.T) {
	for _, s := range []settings.Settings{
		{OS: "windows"},
		{OS: "windows", Experimental: true},
		{OS: "windows", DisableBackends: []string{"aqua"}},
	} {
		f := NewFilter(s)
		if f.Allowed(backend.Asdf) {
			t.Errorf("asdf allowed on windows with %+v", s)
		}
		for _, e := range Default().All() {
			for _, full := range f.Backends(e) {
				if kind, _ := backend.SplitFull(full); kind == "asdf" {
					t.Errorf("%s: asdf backend %q survived on windows", e.Short, full)
				}
			}
		}
	}
}

func TestFilter_ExperimentalGatesAqua(t *testing.T) {
	off := NewFilter(settings.Settings{OS: "linux"})
	on := NewFilter(settings.Settings{OS: "linux", Experimental: true})

	if off.Allowed(backend.Aqua) {
		t.Error("aqua should be filtered on unix without experimental")
	}
	if !on.Allowed(backend.Aqua) {
		t.Error("aqua should be eligible with experimental")
	}

	disabled := NewFilter(settings.Settings{OS: "linux", Experimental: true, DisableBackends: []string{"aqua"}})
	if disabled.Allowed(backend.Aqua) {
		t.Error("disabling aqua wins over experimental")
	}
}

func TestFilter_IsSubsequence(t *testing.T) {
	filters := []*Filter{
		NewFilter(settings.Settings{OS: "linux"}),
		NewFilter(settings.Settings{OS: "windows"}),
		NewFilter(settings.Settings{OS: "macos", Experimental: true, DisableBackends: []string{"cargo"}}),
	}
	for _, f := range filters {
		for _, e := range Default().All() {
			got := f.Backends(e)
			j := 0
			for _, full := range e.Backends {
				if j < len(got) && got[j] == full {
					j++
				}
			}
			if j != len(got) {
				t.Errorf("%s: %v is not an ordered subsequence of %v", e.Short, got, e.Backends)
			}
		}
	}
}

func TestFilter_DisableAndReenable(t *testing.T) {
	disabled := NewFilter(settings.Settings{OS: "linux", Experimental: true, DisableBackends: []string{"cargo"}})
	enabled := NewFilter(settings.Settings{OS: "linux", Experimental: true})

	for _, e := range Default().All() {
		for _, full := range disabled.Backends(e) {
			if kind, _ := backend.SplitFull(full); kind == "cargo" {
				t.Errorf("%s: cargo backend survived while disabled", e.Short)
			}
		}
		if e.HasKind(backend.Cargo) && len(enabled.BackendsOfKind(e, backend.Cargo)) == 0 {
			t.Errorf("%s: cargo backend missing after re-enable", e.Short)
		}
	}
}

func TestFilter_BackendsOfKind(t *testing.T) {
	f := NewFilter(settings.Settings{OS: "linux"})

	if got := f.BackendsOfKind(ripgrep, backend.Cargo); !reflect.DeepEqual(got, []string{"cargo:ripgrep"}) {
		t.Errorf("BackendsOfKind(cargo) = %v", got)
	}
	// aqua is filtered out first, so asking for it yields nothing.
	if got := f.BackendsOfKind(ripgrep, backend.Aqua); len(got) != 0 {
		t.Errorf("BackendsOfKind(aqua) = %v, want empty", got)
	}
}

func TestFilter_BA(t *testing.T) {
	f := NewFilter(settings.Settings{OS: "linux"})

	ba, ok := f.BA(ripgrep)
	if !ok {
		t.Fatal("ripgrep should have a default backend")
	}
	if ba.Short != "ripgrep" || ba.Full != "ubi:BurntSushi/ripgrep[exe=rg]" || ba.Kind != backend.Ubi {
		t.Errorf("BA() = %+v", ba)
	}

	if _, ok := f.BA(Entry{Short: "aqua-only", Backends: []string{"aqua:a/b"}}); ok {
		t.Error("entry with no surviving backend has no BA")
	}
}

func TestFilter_IsSupportedOS(t *testing.T) {
	xcodes := Entry{Short: "xcodes", OS: []string{"macos"}}
	if !NewFilter(settings.Settings{OS: "macos"}).IsSupportedOS(xcodes) {
		t.Error("xcodes should be supported on macos")
	}
	if NewFilter(settings.Settings{OS: "linux"}).IsSupportedOS(xcodes) {
		t.Error("xcodes should not be supported on linux")
	}
}

func TestFilter_AllowedKinds(t *testing.T) {
	f := NewFilter(settings.Settings{OS: "windows", DisableBackends: []string{"vfox", "gem"}})
	want := []backend.Kind{
		backend.Aqua, backend.Cargo, backend.Core, backend.Go,
		backend.Npm, backend.Pipx, backend.Spm, backend.Ubi,
	}
	if got := f.AllowedKinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("AllowedKinds() = %v, want %v", got, want)
	}
}

func TestFilter_ConcurrentFirstUse(t *testing.T) {
	f := NewFilter(settings.Settings{OS: "linux"})

	var wg sync.WaitGroup
	results := make([][]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.Backends(ripgrep)
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if !reflect.DeepEqual(results[i], results[0]) {
			t.Fatalf("goroutine %d saw %v, goroutine 0 saw %v", i, results[i], results[0])
		}
	}
}

func TestDefaultFilter(t *testing.T) {
	if DefaultFilter() != DefaultFilter() {
		t.Error("DefaultFilter() should be built once")
	}
	if DefaultFilter().Settings().OS != settings.HostOS() {
		t.Error("DefaultFilter() should use the host OS")
	}
}

func TestFilter_CopiesSettings(t *testing.T) {
	disabled := []string{"cargo"}
	f := NewFilter(settings.Settings{OS: "linux", DisableBackends: disabled})

	// Mutating the caller's slice before first use must not change the filter.
	disabled[0] = "asdf"

	if f.Allowed(backend.Cargo) {
		t.Error("cargo should stay disabled")
	}
	if !f.Allowed(backend.Asdf) {
		t.Error("asdf should stay allowed")
	}
	if got := f.Settings().DisableBackends; !reflect.DeepEqual(got, []string{"cargo"}) {
		t.Errorf("Settings().DisableBackends = %v", got)
	}
}
