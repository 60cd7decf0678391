package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".linisreport"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .linisreport configuration file.
type File struct {
	// SearchDirs are additional live audit roots to scan, appended after
	// the built-in defaults.
	SearchDirs []string `yaml:"searchDirs,omitempty"`

	// ArchiveRoot overrides the default snapshot archive location.
	ArchiveRoot string `yaml:"archiveRoot,omitempty"`

	// LogTimeout overrides the default correlation time bound.
	LogTimeout time.Duration `yaml:"-"`
}

// UnmarshalYAML decodes the file, accepting the timeout in Go duration
// syntax ("5s", "1m30s") since YAML has no native duration type.
func (f *File) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		SearchDirs  []string `yaml:"searchDirs"`
		ArchiveRoot string   `yaml:"archiveRoot"`
		LogTimeout  string   `yaml:"logTimeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	f.SearchDirs = raw.SearchDirs
	f.ArchiveRoot = raw.ArchiveRoot
	if raw.LogTimeout != "" {
		d, err := time.ParseDuration(raw.LogTimeout)
		if err != nil {
			return fmt.Errorf("invalid logTimeout %q: %w", raw.LogTimeout, err)
		}
		f.LogTimeout = d
	}
	return nil
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; callers decide
// whether that matters based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file:
// 1. If configPath is specified, use it directly
// 2. Look for .linisreport in the current directory
// 3. Look for .linisreport in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
