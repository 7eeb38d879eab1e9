package registry

import (
	"slices"

	"github.com/vinayprograms/toolreg/backend"
)

// Test is a smoke-test command and a fragment expected in its output.
// The registry stores it without interpreting it.
type Test struct {
	Command  string
	Expected string
}

// Entry is the registry record for one short tool name.
type Entry struct {
	// Short is the unique, case-sensitive lookup key.
	Short string

	// Backends are "<kind>:<locator>" references in preference order.
	Backends []string

	// Aliases are alternate names that resolve to this entry.
	Aliases []string

	// Test is optional.
	Test *Test

	// OS restricts the entry to these operating systems. Empty means all.
	OS []string
}

// SupportsOS reports whether the entry applies on os.
func (e Entry) SupportsOS(os string) bool {
	return len(e.OS) == 0 || slices.Contains(e.OS, os)
}

// HasKind reports whether any declared backend is of kind.
func (e Entry) HasKind(kind backend.Kind) bool {
	for _, full := range e.Backends {
		if k, _ := backend.SplitFull(full); k == string(kind) {
			return true
		}
	}
	return false
}

func (e Entry) clone() Entry {
	c := Entry{
		Short:    e.Short,
		Backends: slices.Clone(e.Backends),
		Aliases:  slices.Clone(e.Aliases),
		OS:       slices.Clone(e.OS),
	}
	if e.Test != nil {
		t := *e.Test
		c.Test = &t
	}
	return c
}
