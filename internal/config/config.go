package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains the program configuration
type Config struct {
	ListenAddr      string `yaml:"listen_addr"`
	DataFile        string `yaml:"data_file"`
	ArtCacheDir     string `yaml:"art_cache_dir"`
	Contact         string `yaml:"contact"`
	AdminToken      string `yaml:"admin_token"`
	SearchLimit     int    `yaml:"search_limit"`
	SuggestLimit    int    `yaml:"suggest_limit"`
	SuggestWindowMS int    `yaml:"suggest_window_ms"`
	Verbose         bool   `yaml:"verbose"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":8080",
		DataFile:        filepath.Join("data", "songs.json"),
		ArtCacheDir:     filepath.Join("public", "image-cache"),
		SearchLimit:     25,
		SuggestLimit:    5,
		SuggestWindowMS: 300,
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.DataFile = ExpandHome(cfg.DataFile)
	cfg.ArtCacheDir = ExpandHome(cfg.ArtCacheDir)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./songlog.yaml",
		"./songlog.yml",
		filepath.Join(home, ".config", "songlog", "config.yaml"),
		filepath.Join(home, ".config", "songlog", "config.yml"),
		filepath.Join(home, ".songlog.yaml"),
		filepath.Join(home, ".songlog.yml"),
	}

	for _, path := range locations {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "songlog", "config.yaml")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// UserAgent builds the MusicBrainz client identification header. The
// contact address is included when configured, per the provider's
// identification policy.
func (c *Config) UserAgent() string {
	if c.Contact == "" {
		return "songlog/1.0"
	}
	return fmt.Sprintf("songlog/1.0 (%s)", c.Contact)
}

// SuggestWindow returns the suggestion debounce quiet window.
func (c *Config) SuggestWindow() time.Duration {
	return time.Duration(c.SuggestWindowMS) * time.Millisecond
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr cannot be empty")
	}
	if c.DataFile == "" {
		return fmt.Errorf("data_file cannot be empty")
	}

	if c.SearchLimit < 1 || c.SearchLimit > 100 {
		return fmt.Errorf("search_limit must be between 1 and 100, got %d", c.SearchLimit)
	}
	if c.SuggestLimit < 1 || c.SuggestLimit > 25 {
		return fmt.Errorf("suggest_limit must be between 1 and 25, got %d", c.SuggestLimit)
	}

	if c.SuggestWindowMS < 50 || c.SuggestWindowMS > 5000 {
		return fmt.Errorf("suggest_window_ms must be between 50 and 5000, got %d", c.SuggestWindowMS)
	}

	return nil
}
