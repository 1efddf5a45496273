package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/riego/internal/model"
)

// ErrNotFound means no config file exists on the search path.
var ErrNotFound = errors.New("config file not found")

// Config represents the client configuration
type Config struct {
	Device  DeviceConfig `yaml:"device"`
	Logs    LogsConfig   `yaml:"logs"`
	Zones   []model.Zone `yaml:"zones"`
	Theme   string       `yaml:"theme"`
	LogFile string       `yaml:"log_file"`

	// ConfigPath is the path to the config file (not serialized)
	ConfigPath string `yaml:"-"`
}

// DeviceConfig locates the controller. Timeout 0 means requests never time out.
type DeviceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogsConfig drives the log viewer.
type LogsConfig struct {
	TailLines    int           `yaml:"tail_lines"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			BaseURL: "http://192.168.0.50",
		},
		Logs: LogsConfig{
			TailLines:    20,
			PollInterval: 30 * time.Second,
		},
		Zones: []model.Zone{
			{ID: "1", Name: "zona1"},
			{ID: "2", Name: "zona2"},
			{ID: "3", Name: "zona3"},
		},
		Theme:   "classic",
		LogFile: "riego.log",
	}
}

// SearchPaths lists where Load looks for a config file, in order.
func SearchPaths() []string {
	paths := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".riego", "config.yaml"))
	}
	return paths
}

// Load reads path (or the first file on the search path when empty), then
// applies .env and environment overrides. A missing file on the search path
// falls back to defaults; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	} else {
		for _, p := range SearchPaths() {
			err := cfg.readFile(p)
			if err == nil {
				break
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
	}

	// .env is optional; plain environment variables work without it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env: %v", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	c.ConfigPath = path
	return nil
}

func (c *Config) applyEnv() error {
	c.Device.BaseURL = getEnv("RIEGO_URL", c.Device.BaseURL)
	c.Theme = getEnv("RIEGO_THEME", c.Theme)
	c.LogFile = getEnv("RIEGO_LOG_FILE", c.LogFile)

	var err error
	if c.Device.Timeout, err = getEnvAsDuration("RIEGO_TIMEOUT", c.Device.Timeout); err != nil {
		return err
	}
	if c.Logs.PollInterval, err = getEnvAsDuration("RIEGO_POLL_INTERVAL", c.Logs.PollInterval); err != nil {
		return err
	}
	if c.Logs.TailLines, err = getEnvAsInt("RIEGO_TAIL_LINES", c.Logs.TailLines); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the widgets cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Device.BaseURL) == "" {
		return errors.New("config: device.base_url is empty")
	}
	if c.Logs.TailLines <= 0 {
		return fmt.Errorf("config: logs.tail_lines must be positive, got %d", c.Logs.TailLines)
	}
	if c.Logs.PollInterval <= 0 {
		return fmt.Errorf("config: logs.poll_interval must be positive, got %s", c.Logs.PollInterval)
	}
	if c.Device.Timeout < 0 {
		return fmt.Errorf("config: device.timeout must not be negative, got %s", c.Device.Timeout)
	}
	seen := map[string]bool{}
	for i, z := range c.Zones {
		if strings.TrimSpace(z.ID) == "" {
			return fmt.Errorf("config: zones[%d] has no id", i)
		}
		if seen[z.ID] {
			return fmt.Errorf("config: duplicate zone id %q", z.ID)
		}
		seen[z.ID] = true
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
