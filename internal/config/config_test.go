package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(c *Config) {},
		},
		{
			name:    "empty listen addr",
			modify:  func(c *Config) { c.ListenAddr = "" },
			wantErr: true,
		},
		{
			name:    "empty data file",
			modify:  func(c *Config) { c.DataFile = "" },
			wantErr: true,
		},
		{
			name:    "search limit 0",
			modify:  func(c *Config) { c.SearchLimit = 0 },
			wantErr: true,
		},
		{
			name:    "search limit 101",
			modify:  func(c *Config) { c.SearchLimit = 101 },
			wantErr: true,
		},
		{
			name:   "search limit 100",
			modify: func(c *Config) { c.SearchLimit = 100 },
		},
		{
			name:    "suggest limit 0",
			modify:  func(c *Config) { c.SuggestLimit = 0 },
			wantErr: true,
		},
		{
			name:    "suggest limit 26",
			modify:  func(c *Config) { c.SuggestLimit = 26 },
			wantErr: true,
		},
		{
			name:    "suggest window too short",
			modify:  func(c *Config) { c.SuggestWindowMS = 10 },
			wantErr: true,
		},
		{
			name:    "suggest window too long",
			modify:  func(c *Config) { c.SuggestWindowMS = 10000 },
			wantErr: true,
		},
		{
			name:   "suggest window 50",
			modify: func(c *Config) { c.SuggestWindowMS = 50 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `listen_addr: ":9090"
data_file: /tmp/test-songs.json
contact: admin@example.com
admin_token: hunter2
suggest_window_ms: 500
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":9090")
	}
	if cfg.DataFile != "/tmp/test-songs.json" {
		t.Errorf("DataFile = %q, want %q", cfg.DataFile, "/tmp/test-songs.json")
	}
	if cfg.AdminToken != "hunter2" {
		t.Errorf("AdminToken = %q, want %q", cfg.AdminToken, "hunter2")
	}
	if cfg.SuggestWindowMS != 500 {
		t.Errorf("SuggestWindowMS = %d, want 500", cfg.SuggestWindowMS)
	}
	// Unset keys keep their defaults.
	if cfg.SearchLimit != 25 {
		t.Errorf("SearchLimit = %d, want default 25", cfg.SearchLimit)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	cfg, err := LoadConfigFile("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfigFile() should return defaults for missing file, got error: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default ListenAddr, got %q", cfg.ListenAddr)
	}
}

func TestUserAgent(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.UserAgent(); got != "songlog/1.0" {
		t.Errorf("UserAgent() = %q", got)
	}

	cfg.Contact = "admin@example.com"
	if got := cfg.UserAgent(); got != "songlog/1.0 (admin@example.com)" {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestSuggestWindow(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.SuggestWindow(); got != 300*time.Millisecond {
		t.Errorf("SuggestWindow() = %v, want 300ms", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got := ExpandHome("~/data/songs.json")
	if !strings.HasPrefix(got, home) {
		t.Errorf("ExpandHome() = %q, want prefix %q", got, home)
	}
	if got := ExpandHome("/absolute/path"); got != "/absolute/path" {
		t.Errorf("ExpandHome() = %q, want unchanged", got)
	}
}

func TestSaveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Contact = "admin@example.com"
	if err := SaveConfigFile(cfg, path); err != nil {
		t.Fatalf("SaveConfigFile() error: %v", err)
	}

	loaded, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error: %v", err)
	}
	if loaded.Contact != "admin@example.com" {
		t.Errorf("Contact = %q, want round-trip", loaded.Contact)
	}
}
