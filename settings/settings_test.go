package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/vinayprograms/toolreg/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	// t.Setenv registers the restore; Unsetenv then removes the value.
	t.Setenv(EnvDisableBackends, "")
	os.Unsetenv(EnvDisableBackends)
	t.Setenv(EnvExperimental, "")
	os.Unsetenv(EnvExperimental)
}

func TestHostOS(t *testing.T) {
	got := HostOS()
	if runtime.GOOS == "darwin" {
		if got != "macos" {
			t.Errorf("HostOS() = %q, want macos", got)
		}
		return
	}
	if got != runtime.GOOS {
		t.Errorf("HostOS() = %q, want %q", got, runtime.GOOS)
	}
}

func TestFamily(t *testing.T) {
	tests := []struct {
		os   string
		want Family
	}{
		{"windows", FamilyWindows},
		{"linux", FamilyUnix},
		{"macos", FamilyUnix},
		{"freebsd", FamilyUnix},
	}
	for _, tt := range tests {
		if got := (Settings{OS: tt.os}).Family(); got != tt.want {
			t.Errorf("Family(%q) = %q, want %q", tt.os, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	content := `
[settings]
disable_backends = ["asdf", " vfox ", "asdf", ""]
experimental = true
`
	s, err := Parse(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(s.DisableBackends, []string{"asdf", "vfox"}) {
		t.Errorf("DisableBackends = %v, want [asdf vfox]", s.DisableBackends)
	}
	if !s.Experimental {
		t.Error("Experimental should be true")
	}
	if s.OS != HostOS() {
		t.Errorf("OS = %q, want host %q", s.OS, HostOS())
	}
	if !s.IsDisabled("asdf") || s.IsDisabled("cargo") {
		t.Error("IsDisabled mismatch")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"syntax":      "[settings\nexperimental = true",
		"unknown key": "[settings]\nexperimentl = true",
		"wrong type":  "[settings]\ndisable_backends = \"asdf\"",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(content)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	s := FromEnv()
	if len(s.DisableBackends) != 0 || s.Experimental {
		t.Errorf("FromEnv() with clean env = %+v", s)
	}

	t.Setenv(EnvDisableBackends, "asdf,ubi")
	t.Setenv(EnvExperimental, "yes")
	s = FromEnv()
	if !reflect.DeepEqual(s.DisableBackends, []string{"asdf", "ubi"}) {
		t.Errorf("DisableBackends = %v", s.DisableBackends)
	}
	if !s.Experimental {
		t.Error("Experimental should be true from env")
	}
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[settings]\ndisable_backends = [\"cargo\"]\nexperimental = true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if !s.IsDisabled("cargo") || !s.Experimental {
		t.Errorf("file values not applied: %+v", s)
	}

	t.Setenv(EnvExperimental, "0")
	t.Setenv(EnvDisableBackends, "")
	s, err = LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if s.Experimental {
		t.Error("env should override experimental")
	}
	if len(s.DisableBackends) != 0 {
		t.Errorf("empty env should clear disabled backends, got %v", s.DisableBackends)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestStandardPaths(t *testing.T) {
	paths := StandardPaths()
	if len(paths) == 0 || paths[0] != ".toolreg.toml" {
		t.Errorf("first path should be .toolreg.toml, got %v", paths)
	}
}

func TestLoad_CurrentDirectory(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if err := os.WriteFile(".toolreg.toml", []byte("[settings]\nexperimental = true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, path, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if path != ".toolreg.toml" {
		t.Errorf("path = %q, want .toolreg.toml", path)
	}
	if !s.Experimental {
		t.Error("Experimental should be loaded from file")
	}
}
