// Package trust decides whether a plugin remote URL may be used without
// asking the user.
//
// A remote is untrusted only when it is exactly the repository the registry
// maps the plugin name to (a shorthand match) and that repository lives
// outside the vetted mise-plugins organization. Remotes that do not match the
// registry are left to the caller's unknown-source handling and are reported
// as trusted here.
package trust

import (
	"context"
	"strings"
	"sync"

	"github.com/vinayprograms/toolreg/backend"
	"github.com/vinayprograms/toolreg/logging"
	"github.com/vinayprograms/toolreg/registry"
	"github.com/vinayprograms/toolreg/telemetry"
)

// InvalidURL stands in for the normalized form of a candidate remote that
// failed to parse. Registry URLs are always https, whose hosts normalize to
// lowercase, so it never equals the registry side of a comparison.
const InvalidURL = "INVALID_URL"

// MisePluginsPrefix is the normalized prefix of the vetted plugin organization.
const MisePluginsPrefix = "github.com/mise-plugins/"

// Reasons reported in a Decision.
const (
	ReasonNotShorthand = "not_shorthand"
	ReasonMisePlugins  = "mise_plugins"
	ReasonOutsideMise  = "shorthand_outside_mise_plugins"
)

// CanonicalURL returns the URL the registry maps name to: the first backend
// surviving f, expanded with backend.FullToURL.
func CanonicalURL(s *registry.Store, f *registry.Filter, name string) (string, bool) {
	entry, ok := s.Lookup(name)
	if !ok {
		return "", false
	}
	arg, ok := f.BA(entry)
	if !ok {
		return "", false
	}
	return backend.FullToURL(arg.Full), true
}

// Decision is the full outcome of a trust evaluation.
type Decision struct {
	Name   string
	Remote string

	// Trusted is the verdict: !Shorthand || MiseURL.
	Trusted bool

	// Shorthand is set when the remote is the registry's canonical URL for Name.
	Shorthand bool

	// MiseURL is set when the remote lies under MisePluginsPrefix.
	MiseURL bool

	// Normalized is the normalized remote, or InvalidURL.
	Normalized string

	// Canonical is the registry URL Name expands to, empty when unknown.
	Canonical string

	Reason string
}

// Config configures an Evaluator. Zero fields take process defaults.
type Config struct {
	Store  *registry.Store
	Filter *registry.Filter
	Logger *logging.Logger
	Tracer *telemetry.Tracer

	// Audit, when set, receives a signed record of every Evaluate call.
	Audit *AuditTrail
}

// Evaluator applies the trust rule against one registry snapshot.
// It holds no mutable state of its own and is safe for concurrent use.
type Evaluator struct {
	store  *registry.Store
	filter *registry.Filter
	logger *logging.Logger
	tracer *telemetry.Tracer
	audit  *AuditTrail
}

// NewEvaluator creates an evaluator from cfg.
func NewEvaluator(cfg Config) *Evaluator {
	e := &Evaluator{
		store:  cfg.Store,
		filter: cfg.Filter,
		logger: cfg.Logger,
		tracer: cfg.Tracer,
		audit:  cfg.Audit,
	}
	if e.store == nil {
		e.store = registry.Default()
	}
	if e.filter == nil {
		e.filter = registry.DefaultFilter()
	}
	if e.logger == nil {
		e.logger = logging.New().WithComponent("trust")
	}
	if e.tracer == nil {
		e.tracer = telemetry.GetTracer()
	}
	return e
}

// IsTrusted reports whether remote may be used for plugin name without
// confirmation. Malformed remotes never match the registry.
func (e *Evaluator) IsTrusted(name, remote string) bool {
	return e.decide(name, remote).Trusted
}

// Evaluate is IsTrusted with the full decision, a trace span, a log line and
// an audit record.
func (e *Evaluator) Evaluate(ctx context.Context, name, remote string) Decision {
	_, span := e.tracer.StartTrustSpan(ctx, name)
	d := e.decide(name, remote)
	e.tracer.EndTrustSpan(span, telemetry.TrustSpanOptions{
		Trusted:    d.Trusted,
		Shorthand:  d.Shorthand,
		MiseURL:    d.MiseURL,
		Normalized: d.Normalized,
		Remote:     remote,
	}, nil)

	// Log the normalized form; raw remotes may carry credentials.
	e.logger.TrustDecision(name, d.Normalized, d.Trusted, d.Reason)

	if e.audit != nil {
		e.audit.Record(d)
	}
	return d
}

func (e *Evaluator) decide(name, remote string) Decision {
	d := Decision{Name: name, Remote: remote}

	normalized, err := NormalizeRemote(remote)
	if err != nil {
		normalized = InvalidURL
	}
	d.Normalized = normalized

	if canonical, ok := CanonicalURL(e.store, e.filter, name); ok {
		d.Canonical = canonical
		// A malformed canonical URL falls back to "", which no candidate equals.
		registryForm, _ := NormalizeRemote(canonical)
		d.Shorthand = registryForm == normalized
	}
	d.MiseURL = strings.HasPrefix(normalized, MisePluginsPrefix)
	d.Trusted = !d.Shorthand || d.MiseURL

	switch {
	case !d.Shorthand:
		d.Reason = ReasonNotShorthand
	case d.MiseURL:
		d.Reason = ReasonMisePlugins
	default:
		d.Reason = ReasonOutsideMise
	}
	return d
}

var defaultEvaluator = sync.OnceValue(func() *Evaluator {
	return NewEvaluator(Config{})
})

// IsTrusted applies the trust rule against the embedded registry and the
// environment-derived filter.
func IsTrusted(name, remote string) bool {
	return defaultEvaluator().IsTrusted(name, remote)
}
