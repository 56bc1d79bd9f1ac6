// ABOUTME: Connection settings for the Charm KV backend
// ABOUTME: Persists host, device identity, and sync tuning as local JSON

package charm

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/charm/kv"
	"github.com/google/uuid"
)

const (
	// DefaultCharmHost is the self-hosted 2389 research server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName names the charm KV database and the local data directory.
	AppName = "orderdesk"

	// ConfigFileName is where the connection settings live on disk.
	ConfigFileName = "charm-config.json"

	// HostEnvVar overrides the configured charm host when set.
	HostEnvVar = "ORDERDESK_CHARM_HOST"
)

// Config holds charm connection settings.
type Config struct {
	// Host is the charm server hostname.
	Host string `json:"host,omitempty"`

	// DeviceID identifies this device; stamped onto payment records as the
	// creator identity. Generated on first load and persisted.
	DeviceID string `json:"device_id,omitempty"`

	// AutoSync syncs with the cloud after every write.
	AutoSync bool `json:"auto_sync"`

	// StaleThreshold is how old local data may get before a read syncs first.
	StaleThreshold time.Duration `json:"stale_threshold,omitempty"`

	// PollInterval is how often the watch loop polls the remote for changes.
	PollInterval time.Duration `json:"poll_interval,omitempty"`
}

// DefaultConfig returns settings for a fresh install, including a newly
// generated device identity.
func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultCharmHost,
		DeviceID:       uuid.NewString(),
		AutoSync:       true,
		StaleThreshold: kv.DefaultStaleThreshold,
		PollInterval:   2 * time.Second,
	}
}

// LoadConfig reads the config file, filling gaps with defaults. A missing or
// unreadable file yields defaults rather than an error; a freshly generated
// device ID is persisted immediately so the identity stays stable across
// runs. Environment overrides are layered on last.
func LoadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return DefaultConfig().applyEnv(), nil //nolint:nilerr // defaults on path error
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		_ = cfg.Save()
		return cfg.applyEnv(), nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig().applyEnv(), nil //nolint:nilerr // defaults on parse error
	}

	if cfg.Host == "" {
		cfg.Host = DefaultCharmHost
	}
	if cfg.StaleThreshold == 0 {
		cfg.StaleThreshold = kv.DefaultStaleThreshold
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.NewString()
		_ = cfg.Save()
	}
	return cfg.applyEnv(), nil
}

// Save writes the config to its well-known path.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) applyEnv() *Config {
	if host := os.Getenv(HostEnvVar); host != "" {
		c.Host = host
	}
	return c
}

func configPath() (string, error) {
	dataDir := filepath.Join(xdg.DataHome, AppName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dataDir, ConfigFileName), nil
}
