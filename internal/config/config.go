package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.hearth/config.toml.
type Config struct {
	DefaultProfile string `toml:"default_profile"`
	BindAddr       string `toml:"bind_addr"`
	APIPort        int    `toml:"api_port"`
	DebounceMS     int    `toml:"debounce_ms"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		BindAddr:   "127.0.0.1",
		APIPort:    8745,
		DebounceMS: 300,
	}
}

// Load reads config from the given path and fills unset fields with
// defaults. Returns an error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	def := Default()
	if cfg.BindAddr == "" {
		cfg.BindAddr = def.BindAddr
	}
	if cfg.APIPort == 0 {
		cfg.APIPort = def.APIPort
	}
	if cfg.DebounceMS == 0 {
		cfg.DebounceMS = def.DebounceMS
	}
	return &cfg, nil
}

// APIBaseURL returns the daemon HTTP base URL, e.g.
// "http://127.0.0.1:8745".
func (c *Config) APIBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.BindAddr, c.APIPort)
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
