// Package backend defines the closed set of backend kinds and the
// "<kind>:<locator>" references that registry entries point at.
package backend

import (
	"fmt"
	"strings"

	"github.com/vinayprograms/toolreg/errors"
)

// Kind identifies the installation mechanism that handles a reference.
type Kind string

const (
	Aqua  Kind = "aqua"
	Asdf  Kind = "asdf"
	Cargo Kind = "cargo"
	Core  Kind = "core"
	Gem   Kind = "gem"
	Go    Kind = "go"
	Npm   Kind = "npm"
	Pipx  Kind = "pipx"
	Spm   Kind = "spm"
	Ubi   Kind = "ubi"
	Vfox  Kind = "vfox"
)

var kinds = []Kind{Aqua, Asdf, Cargo, Core, Gem, Go, Npm, Pipx, Spm, Ubi, Vfox}

// Kinds returns every known backend kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.Unsupported(fmt.Sprintf("unknown backend %q", s),
		errors.WithMetadata("backend", s))
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// SplitFull splits a full reference at its first colon. A reference without
// a colon has an empty kind and is all locator.
func SplitFull(full string) (kind, locator string) {
	kind, locator, ok := strings.Cut(full, ":")
	if !ok {
		return "", full
	}
	return kind, locator
}

// Arg is a resolved backend reference for a short tool name.
type Arg struct {
	// Short is the registry name the reference was resolved from.
	Short string

	// Full is the complete "<kind>:<locator>" string.
	Full string

	Kind    Kind
	Locator string
}

// NewArg builds an Arg for short from a full reference.
func NewArg(short, full string) Arg {
	kind, locator := SplitFull(full)
	return Arg{
		Short:   short,
		Full:    full,
		Kind:    Kind(kind),
		Locator: locator,
	}
}

// String returns the full reference.
func (a Arg) String() string {
	return a.Full
}

// FullToURL expands a full reference into the repository URL it stands for.
// Locators that are already https URLs are kept verbatim; anything else is
// treated as a GitHub "<owner>/<repo>" path.
func FullToURL(full string) string {
	_, locator := SplitFull(full)
	if strings.HasPrefix(locator, "https://") {
		return locator
	}
	return "https://github.com/" + locator + ".git"
}
