package registry

import "sort"

// CorePlugins are the tools built into the installer itself. They appear in
// listings as "core:<short>" but are not registry entries, so Lookup never
// returns them.
var CorePlugins = map[string]string{
	"bun":    "Bun JavaScript runtime",
	"deno":   "Deno JavaScript runtime",
	"erlang": "Erlang/OTP",
	"go":     "Go toolchain",
	"java":   "Java development kits",
	"node":   "Node.js",
	"python": "CPython",
	"ruby":   "Ruby",
	"rust":   "Rust toolchain via rustup",
	"swift":  "Swift toolchain",
	"zig":    "Zig compiler",
}

// CorePluginNames returns the core plugin names in lexicographic order.
func CorePluginNames() []string {
	names := make([]string, 0, len(CorePlugins))
	for name := range CorePlugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
