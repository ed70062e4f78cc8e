package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

const configFileName = "mdrefs.yaml"

// Config represents the mdrefs.yaml configuration file.
type Config struct {
	Scan      ScanConfig      `yaml:"scan"`
	Grouping  GroupingConfig  `yaml:"grouping"`
	Stopwords StopwordsConfig `yaml:"stopwords"`
}

// ScanConfig controls which files are scanned.
type ScanConfig struct {
	Recursive bool     `yaml:"recursive"`
	Exclude   []string `yaml:"exclude"` // doublestar globs on the relative path
}

// GroupingConfig selects the grouping policy.
type GroupingConfig struct {
	Policy     string `yaml:"policy"`
	StemTokens bool   `yaml:"stem_tokens"`
}

// StopwordsConfig adjusts the stopword set used by the exact policy.
type StopwordsConfig struct {
	DisableBuiltin bool     `yaml:"disable_builtin"`
	Extra          []string `yaml:"extra"`
}

// LoadConfig reads mdrefs.yaml from dir.
// Returns zero Config and nil error if the file does not exist.
func LoadConfig(dir string) (Config, error) {
	p := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", configFileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", configFileName, err)
	}
	return cfg, nil
}

// Validate checks the policy name and exclude patterns.
func (c Config) Validate() error {
	if _, err := NewPolicy(c.Grouping.Policy, nil, false); err != nil {
		return err
	}
	return validateGlobPatterns(c.Scan.Exclude)
}

// StopwordSet builds the stopword set described by the config.
func (c Config) StopwordSet() Stopwords {
	var s Stopwords
	if c.Stopwords.DisableBuiltin {
		s = NewStopwords()
	} else {
		s = DefaultStopwords()
	}
	s.Add(c.Stopwords.Extra...)
	return s
}

// Policy builds the grouping policy described by the config.
func (c Config) Policy() (Policy, error) {
	return NewPolicy(c.Grouping.Policy, c.StopwordSet(), c.Grouping.StemTokens)
}

func validateGlobPatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern: %s", p)
		}
	}
	return nil
}

// filterExcludes removes files matching any of the given glob patterns.
func filterExcludes(files []string, patterns []string) []string {
	if len(patterns) == 0 {
		return files
	}
	result := make([]string, 0, len(files))
	for _, f := range files {
		excluded := false
		for _, p := range patterns {
			if doublestar.MatchUnvalidated(p, f) {
				excluded = true
				break
			}
		}
		if !excluded {
			result = append(result, f)
		}
	}
	return result
}
