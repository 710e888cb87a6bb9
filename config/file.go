package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by SetDefaults when the config file leaves a value unset.
const (
	DefaultTimeout          = 30 * time.Second
	DefaultDiscoveryTimeout = 60 * time.Second
	DefaultUserAgent        = "newscrape/1.0 (news extraction pipeline)"
	DefaultMaxConcurrency   = 16
	DefaultOutputPath       = "news"
	DefaultDSN              = "newspaper.db"
)

// ErrNoSites is returned when the file has no news_sites section.
var ErrNoSites = errors.New("config has no news_sites")

// SiteConfig is one entry under news_sites.
type SiteConfig struct {
	URL     string            `yaml:"url"`
	Parser  string            `yaml:"parser"`
	Queries map[string]string `yaml:"queries"`
}

// HTTPConfig controls the shared fetch session.
type HTTPConfig struct {
	// Timeout bounds every single request.
	Timeout time.Duration `yaml:"timeout"`
	// DiscoveryTimeout is the overall deadline for one homepage discovery.
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout"`
	UserAgent        string        `yaml:"user_agent"`
	// MaxConcurrency caps in-flight article fetches per site. Unset means
	// DefaultMaxConcurrency; a negative value removes the cap.
	MaxConcurrency int `yaml:"max_concurrency"`
}

// StorageConfig points the load stage at its database.
type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

// FileConfig is the structure of the pipeline's YAML configuration file.
type FileConfig struct {
	OutputPath string                `yaml:"output_path"`
	NewsSites  map[string]SiteConfig `yaml:"news_sites"`
	HTTP       HTTPConfig            `yaml:"http"`
	Storage    StorageConfig         `yaml:"storage"`
	// DedupeArticles drops repeated article URLs before they reach the sink.
	DedupeArticles bool `yaml:"dedupe_articles"`
	// WriteTextFiles additionally writes one text file per article.
	WriteTextFiles bool `yaml:"write_text_files"`
}

// SetDefaults fills zero values with the package defaults.
func (c *FileConfig) SetDefaults() {
	if c.OutputPath == "" {
		c.OutputPath = DefaultOutputPath
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = DefaultTimeout
	}
	if c.HTTP.DiscoveryTimeout <= 0 {
		c.HTTP.DiscoveryTimeout = DefaultDiscoveryTimeout
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = DefaultUserAgent
	}
	switch {
	case c.HTTP.MaxConcurrency == 0:
		c.HTTP.MaxConcurrency = DefaultMaxConcurrency
	case c.HTTP.MaxConcurrency < 0:
		c.HTTP.MaxConcurrency = 0
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = DefaultDSN
	}
}

// OutputFolder returns output_path resolved against the working directory.
func (c *FileConfig) OutputFolder() (string, error) {
	if filepath.IsAbs(c.OutputPath) {
		return c.OutputPath, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, c.OutputPath), nil
}

// LoadConfigFile reads and parses the YAML configuration at path. Unlike the
// storage settings, a pipeline cannot run without this file, so a missing
// file is an error.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes and applies defaults.
func ParseConfig(data []byte) (*FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(cfg.NewsSites) == 0 {
		return nil, ErrNoSites
	}

	cfg.SetDefaults()
	return &cfg, nil
}
