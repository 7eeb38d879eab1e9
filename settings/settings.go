// Package settings loads the runtime settings that shape backend filtering:
// disabled backend kinds, the experimental flag, and the host OS.
package settings

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vinayprograms/toolreg/errors"
)

// Environment variables that override file settings.
const (
	EnvDisableBackends = "MISE_DISABLE_BACKENDS"
	EnvExperimental    = "MISE_EXPERIMENTAL"
)

// Family groups operating systems by the backend restrictions they need.
type Family string

const (
	FamilyUnix    Family = "unix"
	FamilyWindows Family = "windows"
)

// Settings is read-only input to filtering. The zero value has nothing
// disabled, experimental features off and an empty OS.
type Settings struct {
	// DisableBackends lists backend kinds that must never be used.
	DisableBackends []string

	// Experimental enables backends that are still experimental on unix.
	Experimental bool

	// OS is the host identifier in registry vocabulary ("linux", "macos", "windows").
	OS string
}

// fileSettings is the TOML representation.
type fileSettings struct {
	Settings struct {
		DisableBackends []string `toml:"disable_backends"`
		Experimental    bool     `toml:"experimental"`
	} `toml:"settings"`
}

// HostOS returns the registry identifier for the running operating system.
func HostOS() string {
	return osName(runtime.GOOS)
}

func osName(goos string) string {
	if goos == "darwin" {
		return "macos"
	}
	return goos
}

// Default returns settings for the host with nothing disabled.
func Default() Settings {
	return Settings{OS: HostOS()}
}

// Family returns the OS family of s.OS.
func (s Settings) Family() Family {
	if s.OS == "windows" {
		return FamilyWindows
	}
	return FamilyUnix
}

// IsDisabled reports whether kind was disabled.
func (s Settings) IsDisabled(kind string) bool {
	return slices.Contains(s.DisableBackends, kind)
}

// StandardPaths returns the settings file locations in order of priority.
func StandardPaths() []string {
	paths := []string{".toolreg.toml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "toolreg", "config.toml"))
	}

	return paths
}

// Load reads the first settings file found in StandardPaths and applies
// environment overrides. A missing file is not an error; the returned path
// is empty in that case.
func Load() (Settings, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			s, err := LoadFile(path)
			if err != nil {
				return Settings{}, path, err
			}
			return s, path, nil
		}
	}
	return FromEnv(), "", nil
}

// LoadFile loads settings from a specific file and applies environment overrides.
func LoadFile(path string) (Settings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.WrapWithCode(err, errors.ErrCodeInvalidInput,
			"failed to read settings file", errors.WithMetadata("path", path))
	}
	s, err := Parse(string(content))
	if err != nil {
		return Settings{}, errors.Wrap(err, "failed to load "+path)
	}
	return applyEnv(s), nil
}

// Parse parses settings from TOML content. Environment overrides are not applied.
func Parse(content string) (Settings, error) {
	var raw fileSettings
	md, err := toml.Decode(content, &raw)
	if err != nil {
		return Settings{}, errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "failed to parse settings")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Settings{}, errors.InvalidInput("unknown settings key: "+undecoded[0].String(),
			errors.WithMetadata("key", undecoded[0].String()))
	}

	s := Default()
	s.Experimental = raw.Settings.Experimental
	s.DisableBackends = cleanList(raw.Settings.DisableBackends)
	return s, nil
}

// FromEnv returns default settings with environment overrides applied.
func FromEnv() Settings {
	return applyEnv(Default())
}

func applyEnv(s Settings) Settings {
	if v, ok := os.LookupEnv(EnvDisableBackends); ok {
		s.DisableBackends = cleanList(strings.Split(v, ","))
	}
	if v, ok := os.LookupEnv(EnvExperimental); ok {
		s.Experimental = truthy(v)
	}
	return s
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// cleanList trims entries and drops empties and duplicates, keeping order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		item = strings.TrimSpace(item)
		if item == "" || slices.Contains(out, item) {
			continue
		}
		out = append(out, item)
	}
	return out
}
