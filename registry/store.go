package registry

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/vinayprograms/toolreg/backend"
	"github.com/vinayprograms/toolreg/errors"
)

//go:embed data/registry.toml
var embeddedRegistry string

// Store is an immutable short-name table. It is never modified after Parse
// returns, so concurrent readers need no locking. Entries handed out are copies.
type Store struct {
	entries map[string]Entry
	aliases map[string]string // alias -> short
}

// tomlRegistry is the TOML representation.
type tomlRegistry struct {
	Tools map[string]tomlTool `toml:"tools"`
}

type tomlTool struct {
	Backends []string `toml:"backends"`
	Aliases  []string `toml:"aliases"`
	Test     []string `toml:"test"`
	OS       []string `toml:"os"`
}

var defaultStore = sync.OnceValue(func() *Store {
	s, err := Parse(embeddedRegistry)
	if err != nil {
		panic(fmt.Sprintf("registry: embedded data is invalid: %v", err))
	}
	return s
})

// Default returns the store built from the embedded registry data.
func Default() *Store {
	return defaultStore()
}

// LoadFile loads a registry table from a TOML file.
func LoadFile(path string) (*Store, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeInvalidInput,
			"failed to read registry file", errors.WithMetadata("path", path))
	}
	return Parse(string(content))
}

// Parse builds a Store from TOML content of the form:
//
//	[tools.poetry]
//	backends = ["asdf:mise-plugins/mise-poetry"]
//	aliases = []
//	test = ["poetry --version", "Poetry (version {{version}})"]
//	os = ["linux", "macos"]
func Parse(content string) (*Store, error) {
	var raw tomlRegistry
	md, err := toml.Decode(content, &raw)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "failed to parse registry")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.InvalidInput("unknown registry key: "+undecoded[0].String(),
			errors.WithMetadata("key", undecoded[0].String()))
	}

	entries := make([]Entry, 0, len(raw.Tools))
	for short, tool := range raw.Tools {
		e := Entry{
			Short:    short,
			Backends: tool.Backends,
			Aliases:  tool.Aliases,
			OS:       tool.OS,
		}
		switch len(tool.Test) {
		case 0:
		case 2:
			e.Test = &Test{Command: tool.Test[0], Expected: tool.Test[1]}
		default:
			return nil, invalidEntry(short, "test must be [command, expected]")
		}
		entries = append(entries, e)
	}
	return New(entries)
}

// New builds a Store from entries. Short names must be unique, every backend
// must be "<kind>:<locator>" with a known kind, and aliases may not collide
// with short names or with each other.
func New(entries []Entry) (*Store, error) {
	s := &Store{
		entries: make(map[string]Entry, len(entries)),
		aliases: make(map[string]string),
	}

	for _, e := range entries {
		if e.Short == "" {
			return nil, errors.InvalidInput("registry entry with empty short name")
		}
		if _, dup := s.entries[e.Short]; dup {
			return nil, invalidEntry(e.Short, "duplicate short name")
		}
		for _, full := range e.Backends {
			if err := validateBackend(full); err != nil {
				return nil, invalidEntry(e.Short, err.Error())
			}
		}
		s.entries[e.Short] = e.clone()
	}

	for _, e := range s.entries {
		for _, alias := range e.Aliases {
			if _, clash := s.entries[alias]; clash {
				return nil, invalidEntry(e.Short, fmt.Sprintf("alias %q shadows a short name", alias))
			}
			if owner, dup := s.aliases[alias]; dup {
				return nil, invalidEntry(e.Short, fmt.Sprintf("alias %q already used by %q", alias, owner))
			}
			s.aliases[alias] = e.Short
		}
	}

	return s, nil
}

func validateBackend(full string) error {
	kind, locator := backend.SplitFull(full)
	if kind == "" || locator == "" {
		return fmt.Errorf("backend %q is not <kind>:<locator>", full)
	}
	if _, err := backend.ParseKind(kind); err != nil {
		return fmt.Errorf("backend %q has unknown kind", full)
	}
	return nil
}

func invalidEntry(short, reason string) error {
	return errors.InvalidInput(fmt.Sprintf("registry entry %q: %s", short, reason),
		errors.WithMetadata("short", short))
}

// Lookup returns the entry whose short name is exactly short.
func (s *Store) Lookup(short string) (Entry, bool) {
	e, ok := s.entries[short]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Resolve looks name up as a short name first and then as an alias.
func (s *Store) Resolve(name string) (Entry, bool) {
	if e, ok := s.Lookup(name); ok {
		return e, true
	}
	if short, ok := s.aliases[name]; ok {
		return s.Lookup(short)
	}
	return Entry{}, false
}

// All returns every entry in unspecified order.
func (s *Store) All() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.clone())
	}
	return out
}

// Sorted returns every entry ordered by short name.
func (s *Store) Sorted() []Entry {
	out := s.All()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Short < out[j].Short
	})
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}
