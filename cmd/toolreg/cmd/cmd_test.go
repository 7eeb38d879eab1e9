package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vinayprograms/toolreg/errors"
	"github.com/vinayprograms/toolreg/listing"
	"github.com/vinayprograms/toolreg/trust"
)

const testRegistry = `
[tools.poetry]
backends = ["asdf:mise-plugins/mise-poetry"]

[tools.helm]
backends = ["aqua:helm/helm", "asdf:Antiarchitect/asdf-helm"]

[tools.ripgrep]
backends = ["aqua:BurntSushi/ripgrep", "cargo:ripgrep"]
aliases = ["rg"]
`

// run executes the root command with args against a fixture registry and an
// empty settings file, returning stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"MISE_DISABLE_BACKENDS", "MISE_EXPERIMENTAL", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	dir := t.TempDir()
	regPath := filepath.Join(dir, "registry.toml")
	if err := os.WriteFile(regPath, []byte(testRegistry), 0644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[settings]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// Flag variables outlive a single execution.
	registryBackend, registryOutput = "", "table"
	searchLimit, searchBackend, searchOutput = 10, "", "table"
	trustExplain, trustAudit, verbose = false, false, false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--registry", regPath, "--config", cfgPath}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRegistryShow(t *testing.T) {
	out, err := run(t, "registry", "poetry")
	if err != nil {
		t.Fatalf("registry poetry: %v", err)
	}
	if strings.TrimSpace(out) != "asdf:mise-plugins/mise-poetry" {
		t.Errorf("output = %q", out)
	}
}

func TestRegistryShow_Alias(t *testing.T) {
	out, err := run(t, "registry", "rg")
	if err != nil {
		t.Fatalf("registry rg: %v", err)
	}
	if strings.TrimSpace(out) != "cargo:ripgrep" {
		t.Errorf("output = %q", out)
	}
}

func TestRegistryShow_NotFound(t *testing.T) {
	_, err := run(t, "registry", "nope")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRegistryList(t *testing.T) {
	out, err := run(t, "registry")
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	for _, want := range []string{"poetry", "asdf:mise-plugins/mise-poetry", "node", "core:node"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRegistryList_BackendJSON(t *testing.T) {
	out, err := run(t, "registry", "--backend", "cargo", "--output", "json")
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	var rows []listing.Row
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(rows) != 1 || rows[0].Short != "ripgrep" || rows[0].Full != "cargo:ripgrep" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestRegistryList_UnknownBackend(t *testing.T) {
	_, err := run(t, "registry", "--backend", "brew")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Fatalf("expected UNSUPPORTED, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	out, err := run(t, "search", "--output", "json", "rg")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var rows []listing.Row
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(rows) == 0 || rows[0].Short != "ripgrep" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestTrust(t *testing.T) {
	tests := []struct {
		name, url string
		want      string
		untrusted bool
	}{
		{"poetry", "https://github.com/mise-plugins/mise-poetry", "trusted", false},
		{"helm", "https://github.com/Antiarchitect/asdf-helm.git", "untrusted", true},
		{"unknown", "https://example.com/x", "trusted", false},
		{"poetry", "not a url", "trusted", false},
	}
	for _, tt := range tests {
		t.Run(tt.name+" "+tt.url, func(t *testing.T) {
			out, err := run(t, "trust", tt.name, tt.url)
			if got := stderrors.Is(err, errUntrusted); got != tt.untrusted {
				t.Errorf("untrusted error = %v, want %v (err %v)", got, tt.untrusted, err)
			}
			if strings.TrimSpace(out) != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestTrust_Explain(t *testing.T) {
	out, err := run(t, "trust", "--explain", "poetry", "https://github.com/mise-plugins/mise-poetry.git")
	if err != nil {
		t.Fatalf("trust: %v", err)
	}
	for _, want := range []string{"trusted", "github.com/mise-plugins/mise-poetry", "mise_plugins"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTrust_Audit(t *testing.T) {
	out, err := run(t, "trust", "--audit", "helm", "https://github.com/Antiarchitect/asdf-helm")
	if !stderrors.Is(err, errUntrusted) {
		t.Fatalf("expected untrusted, got %v", err)
	}

	verdict, body, ok := strings.Cut(out, "\n")
	if !ok || verdict != "untrusted" {
		t.Fatalf("output = %q", out)
	}
	var got auditOutput
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, body)
	}
	if got.Record == nil || got.Record.Name != "helm" || got.Record.Trusted {
		t.Fatalf("record = %+v", got.Record)
	}

	valid, err := trust.Verify(got.Record, got.PublicKey)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !valid {
		t.Error("printed record should verify against the printed key")
	}
}
