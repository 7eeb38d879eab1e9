// Package registry maps short tool names to fully-qualified backend references.
//
// # Overview
//
// A Store is an immutable table of Entry records, one per short name. Each
// entry lists its backends in preference order:
//
//	poetry   asdf:mise-plugins/mise-poetry
//	ripgrep  aqua:BurntSushi/ripgrep ubi:BurntSushi/ripgrep[exe=rg] cargo:ripgrep
//
// The table shipped with the module is embedded from data/registry.toml and
// parsed once on first use:
//
//	entry, ok := registry.Default().Lookup("poetry")
//
// # Filtering
//
// Not every backend is usable everywhere. A Filter narrows an entry's backends
// using runtime settings: disabled kinds are dropped, asdf is dropped on
// Windows, and aqua is dropped on unix unless experimental features are on.
// The first surviving backend is the tool's default:
//
//	f := registry.NewFilter(settings.FromEnv())
//	if ba, ok := f.BA(entry); ok {
//	    fmt.Println(ba.Full)
//	}
//
// The set of allowed kinds is computed once per Filter and then shared
// read-only, so a Filter may be used from many goroutines.
//
// # Search
//
// Index builds an in-memory bleve index over short names, aliases and backend
// locators for fuzzy discovery:
//
//	idx, _ := registry.NewIndex(registry.Default())
//	defer idx.Close()
//	hits, _ := idx.Search(ctx, "rg", 5)
package registry
