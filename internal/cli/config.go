package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	CachePath string
	TokenFile string
	Bridged   bool
	Verbose   bool
}

// DefaultConfig returns CLI defaults, honoring environment overrides
func DefaultConfig() *Config {
	cfg := &Config{
		ServerURL: "http://localhost:8480",
		CachePath: "accountsync.json",
		TokenFile: defaultTokenFile(),
	}
	if v := os.Getenv("ACCOUNTSYNC_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("ACCOUNTSYNC_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("ACCOUNTSYNC_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}
	return cfg
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".accountsync-token"
	}
	return filepath.Join(home, ".accountsync-token")
}

// LoadToken reads the persisted access token, if any.
func (c *Config) LoadToken() (string, error) {
	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken persists the access token for later restore runs.
func (c *Config) SaveToken(token string) error {
	if err := os.WriteFile(c.TokenFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// ClearToken removes the persisted token.
func (c *Config) ClearToken() error {
	if err := os.Remove(c.TokenFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
