// Package listing turns registry entries into the rows shown by the CLI.
package listing

import (
	"context"
	"sort"
	"strings"

	"github.com/vinayprograms/toolreg/backend"
	"github.com/vinayprograms/toolreg/errors"
	"github.com/vinayprograms/toolreg/registry"
	"github.com/vinayprograms/toolreg/telemetry"
)

// Row is one line of registry output.
type Row struct {
	Short string `json:"short" yaml:"short"`
	Full  string `json:"full" yaml:"full"`
}

// Rows lists every entry with at least one backend surviving f, backends
// joined by spaces. A non-nil kind keeps only backends of that kind. Core
// plugins are added as "core:<name>" unless kind excludes them. Rows are
// sorted by short name.
func Rows(s *registry.Store, f *registry.Filter, kind *backend.Kind) []Row {
	var rows []Row
	for _, e := range s.All() {
		var backends []string
		if kind == nil {
			backends = f.Backends(e)
		} else {
			backends = f.BackendsOfKind(e, *kind)
		}
		if len(backends) == 0 {
			continue
		}
		rows = append(rows, Row{Short: e.Short, Full: strings.Join(backends, " ")})
	}

	if kind == nil || *kind == backend.Core {
		for _, name := range registry.CorePluginNames() {
			rows = append(rows, Row{Short: name, Full: string(backend.Core) + ":" + name})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Short < rows[j].Short
	})
	return rows
}

// Show returns the filtered backends of name joined by spaces. Aliases
// resolve to their entry.
func Show(ctx context.Context, s *registry.Store, f *registry.Filter, name string) (string, error) {
	tracer := telemetry.GetTracer()
	_, span := tracer.StartLookupSpan(ctx, name)

	e, ok := s.Resolve(name)
	if !ok {
		err := errors.NotFound("tool not found in registry: "+name,
			errors.WithMetadata("name", name))
		tracer.EndLookupSpan(span, telemetry.LookupSpanOptions{}, err)
		return "", err
	}

	backends := f.Backends(e)
	opts := telemetry.LookupSpanOptions{Found: true, Backends: backends}
	if len(backends) > 0 {
		opts.Default = backends[0]
	}
	tracer.EndLookupSpan(span, opts, nil)
	return strings.Join(backends, " "), nil
}
