package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration.
type Config struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	DBUrl    string `yaml:"db_url"`
	TLSCert  string `yaml:"tls_cert"`
	TLSKey   string `yaml:"tls_key"`
	APIToken string `yaml:"api_token"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port: 8412,
		Bind: "127.0.0.1",
	}
}

// DefaultConfigPath is ~/.ifsgen/server.yaml, or "" if the home directory
// cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ifsgen", "server.yaml")
}

// LoadConfig loads server config from path (DefaultConfigPath when empty),
// falling back to defaults if the file is missing. Environment variables
// override file values: IFSGEN_SERVER_PORT, IFSGEN_SERVER_BIND,
// IFSGEN_SERVER_DB_URL, IFSGEN_SERVER_TLS_CERT, IFSGEN_SERVER_TLS_KEY,
// IFSGEN_SERVER_API_TOKEN.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("invalid server config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("failed to read server config %s: %w", path, err)
		}
	}

	// Environment variables override file config
	if v := os.Getenv("IFSGEN_SERVER_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid IFSGEN_SERVER_PORT %q: %w", v, err)
		}
		cfg.Port = n
	}
	if v := os.Getenv("IFSGEN_SERVER_BIND"); v != "" {
		cfg.Bind = v
	}
	if v := os.Getenv("IFSGEN_SERVER_DB_URL"); v != "" {
		cfg.DBUrl = v
	}
	if v := os.Getenv("IFSGEN_SERVER_TLS_CERT"); v != "" {
		cfg.TLSCert = v
	}
	if v := os.Getenv("IFSGEN_SERVER_TLS_KEY"); v != "" {
		cfg.TLSKey = v
	}
	if v := os.Getenv("IFSGEN_SERVER_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}

	return cfg, nil
}

// Addr returns the listen address as "bind:port".
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// HasTLS returns true if both TLS cert and key are configured.
func (c Config) HasTLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
