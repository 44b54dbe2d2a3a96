// Package config loads the server's own ambient settings, as distinct
// from anything embedded in an .ibt recording. Grounded on
// sagostin-goefidash/internal/server/config.go: a sync.RWMutex-guarded
// struct, a DefaultConfig constructor, and gopkg.in/yaml.v3 for the file
// format, with environment variables overriding individual fields the
// same way that repo's applyEnvOverrides does.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds the telemetry server's own settings.
type Config struct {
	mu sync.RWMutex

	Server  ServerConfig  `yaml:"server"`
	Upload  UploadConfig  `yaml:"upload"`
	Sources SourcesConfig `yaml:"sources"`
}

// ServerConfig is the HTTP listener configuration.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// UploadConfig governs where uploaded recordings are staged.
type UploadConfig struct {
	Dir        string `yaml:"dir"`
	MaxSizeMiB int64  `yaml:"max_size_mib"`
}

// SourcesConfig governs the live source manager.
type SourcesConfig struct {
	// Disabled lists adapter keys that must not auto-start until a
	// client explicitly enables them, e.g. "demo".
	Disabled []string `yaml:"disabled"`

	ACCAddress            string `yaml:"acc_address"`
	ACCDisplayName        string `yaml:"acc_display_name"`
	ACCConnectionPassword string `yaml:"acc_connection_password"`
	ACCCommandPassword    string `yaml:"acc_command_password"`
}

// Default returns a Config with sensible defaults, matching
// sagostin-goefidash's DefaultConfig shape.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8090",
		},
		Upload: UploadConfig{
			Dir:        os.TempDir(),
			MaxSizeMiB: 512,
		},
		Sources: SourcesConfig{
			Disabled:       []string{"demo"},
			ACCAddress:     "127.0.0.1:9000",
			ACCDisplayName: "ibtstream",
		},
	}
}

// Load reads path as YAML, falling back to Default() fields on any read
// or parse error, then applies environment variable overrides.
func Load(path string) *Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if uerr := yaml.Unmarshal(data, cfg); uerr != nil {
			cfg = Default()
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// applyEnvOverrides supports IBTSTREAM_LISTEN_ADDR, IBTSTREAM_UPLOAD_DIR,
// IBTSTREAM_UPLOAD_MAX_MIB, IBTSTREAM_ACC_ADDRESS, IBTSTREAM_SOURCES_DISABLED
// (comma-separated adapter keys).
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("IBTSTREAM_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("IBTSTREAM_UPLOAD_DIR"); v != "" {
		c.Upload.Dir = v
	}
	if v := os.Getenv("IBTSTREAM_UPLOAD_MAX_MIB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Upload.MaxSizeMiB = n
		}
	}
	if v := os.Getenv("IBTSTREAM_ACC_ADDRESS"); v != "" {
		c.Sources.ACCAddress = v
	}
	if v := os.Getenv("IBTSTREAM_SOURCES_DISABLED"); v != "" {
		c.Sources.Disabled = strings.Split(v, ",")
	}
}

// Snapshot returns a copy of the config safe to read without holding the
// caller's own lock.
func (c *Config) Snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Config{Server: c.Server, Upload: c.Upload, Sources: c.Sources}
}
