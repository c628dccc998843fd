// Package config handles the XDG configuration directory, its files and environment overrides.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"firelist/internal/service"
)

const (
	// AppName is the application directory name.
	AppName = "firelist"

	// SettingsFile holds project settings (JSON, comments allowed).
	SettingsFile = "config.json"

	// ServiceAccountFile is the default service-account credentials filename.
	ServiceAccountFile = "service_account.json"

	// OAuthClientFile is the OAuth client credentials filename used by connect.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored user OAuth token filename.
	TokenFile = "token.json"
)

// Environment variables that override config.json.
const (
	EnvProject     = "FIRELIST_PROJECT"
	EnvCredentials = "FIRELIST_CREDENTIALS"
)

// Settings is the content of config.json.
type Settings struct {
	ProjectID          string `json:"projectId,omitempty"`
	CredentialsFile    string `json:"credentialsFile,omitempty"`
	TasksCollection    string `json:"tasksCollection,omitempty"`
	ProductsCollection string `json:"productsCollection,omitempty"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Settings are loaded from config.json and the environment.
	Settings Settings

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config for the default or specified config directory without
// reading any file. If configDir is empty, uses XDG_CONFIG_HOME/firelist or
// $HOME/.config/firelist.
func New(configDir string) *Config {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Settings: defaults()}
}

// Load creates a Config and reads config.json (if present) and environment overrides.
func Load(configDir string) (*Config, error) {
	cfg := New(configDir)

	s, err := cfg.FileSettings()
	if err != nil {
		return nil, err
	}
	cfg.Settings = s

	if v := strings.TrimSpace(os.Getenv(EnvProject)); v != "" {
		cfg.Settings.ProjectID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCredentials)); v != "" {
		cfg.Settings.CredentialsFile = v
	}

	return cfg, nil
}

// FileSettings reads config.json without environment overrides.
// A missing file yields the defaults.
func (c *Config) FileSettings() (Settings, error) {
	data, err := os.ReadFile(c.SettingsPath())
	if errors.Is(err, fs.ErrNotExist) {
		return defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	}

	s, err := parseSettings(data)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	return s, nil
}

func defaults() Settings {
	return Settings{
		TasksCollection:    service.TasksCollection,
		ProductsCollection: service.ProductsCollection,
	}
}

// parseSettings parses config.json. Comments and trailing commas are accepted.
func parseSettings(data []byte) (Settings, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Settings{}, err
	}

	s := defaults()
	if err := json.Unmarshal(standardized, &s); err != nil {
		return Settings{}, err
	}
	if strings.TrimSpace(s.TasksCollection) == "" {
		s.TasksCollection = service.TasksCollection
	}
	if strings.TrimSpace(s.ProductsCollection) == "" {
		s.ProductsCollection = service.ProductsCollection
	}
	return s, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to config.json.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// CredentialsPath returns the service-account credentials path.
// Relative paths from config.json are resolved against the config directory.
func (c *Config) CredentialsPath() string {
	p := c.Settings.CredentialsFile
	if p == "" {
		return filepath.Join(c.Dir, ServiceAccountFile)
	}
	if !filepath.IsAbs(p) {
		return filepath.Join(c.Dir, p)
	}
	return p
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasCredentials checks if the service-account credentials file exists.
func (c *Config) HasCredentials() bool {
	return exists(c.CredentialsPath())
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	return exists(c.OAuthClientPath())
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	return exists(c.TokenPath())
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// SaveSettings writes config.json atomically and updates c.Settings.
func (c *Config) SaveSettings(s Settings) error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(c.SettingsPath(), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", SettingsFile, err)
	}
	c.Settings = s
	return nil
}

// WriteSecret atomically writes a credentials file with mode 0600.
func WriteSecret(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	return os.Chmod(path, 0600)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
