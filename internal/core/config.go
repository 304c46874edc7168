package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the optional configuration file at the project root.
const ConfigFileName = "mdref.yaml"

// DataDirName holds generated artifacts (the snapshot DB). It is never walked.
const DataDirName = ".mdref"

// Config represents the mdref.yaml configuration file.
type Config struct {
	MetaFile          string        `yaml:"meta_file"`
	ContentExtensions []string      `yaml:"content_extensions"`
	ExternalSchemes   []string      `yaml:"external_schemes"`
	Exclude           ExcludeConfig `yaml:"exclude"`
}

// ExcludeConfig holds exclusion patterns from the config file.
type ExcludeConfig struct {
	Paths []string `yaml:"paths"`
}

// DefaultConfig returns the configuration used when mdref.yaml is absent.
func DefaultConfig() Config {
	return Config{
		MetaFile:          ".meta",
		ContentExtensions: []string{".md", ".txt"},
		ExternalSchemes:   []string{"http://", "https://", "file://", "mailto:"},
	}
}

// LoadConfig reads mdref.yaml from the project root.
// Returns DefaultConfig and nil error if the file does not exist.
// Fields omitted from the file keep their default values.
func LoadConfig(projectRoot string) (Config, error) {
	p := filepath.Join(projectRoot, ConfigFileName)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", ConfigFileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", ConfigFileName, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the walkers cannot use.
func (c Config) Validate() error {
	if c.MetaFile == "" || strings.ContainsAny(c.MetaFile, `/\`) {
		return fmt.Errorf("meta_file must be a plain file name: %q", c.MetaFile)
	}
	if len(c.ContentExtensions) == 0 {
		return fmt.Errorf("content_extensions must not be empty")
	}
	for _, ext := range c.ContentExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("content extension must start with '.': %q", ext)
		}
	}
	return validateGlobPatterns(c.Exclude.Paths)
}

// IsExcluded reports whether a project-relative path matches an exclude pattern.
func (c Config) IsExcluded(p string) bool {
	for _, g := range c.Exclude.Paths {
		if globMatch(g, p) {
			return true
		}
	}
	return false
}

// validateGlobPatterns checks that none of the patterns use unsupported character classes.
func validateGlobPatterns(patterns []string) error {
	for _, p := range patterns {
		if strings.Contains(p, "[") {
			return fmt.Errorf("unsupported glob pattern (character class): %s", p)
		}
	}
	return nil
}

// globMatch implements GLOB semantics without character classes.
// '*' matches any sequence of characters (including '/').
// '?' matches exactly one character.
func globMatch(pattern, s string) bool {
	return globMatchImpl([]rune(pattern), []rune(s))
}

func globMatchImpl(pattern, s []rune) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if globMatchImpl(pattern, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pattern = pattern[1:]
			s = s[1:]
		default:
			if len(s) == 0 || pattern[0] != s[0] {
				return false
			}
			pattern = pattern[1:]
			s = s[1:]
		}
	}
	return len(s) == 0
}
