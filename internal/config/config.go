package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type DeviceStore string

const (
	DeviceStoreFile      DeviceStore = "file"
	DeviceStoreMemory    DeviceStore = "memory"
	DeviceStoreSQLite    DeviceStore = "sqlite"
	DeviceStoreRedis     DeviceStore = "redis"
	DeviceStoreFirestore DeviceStore = "firestore"
)

type Config struct {
	APIBaseURL string  `yaml:"api_url"`
	APIRPS     float64 `yaml:"api_rps"` // <= 0 disables client-side rate limiting

	ProbeInterval   time.Duration `yaml:"probe_interval"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout"` // 0 = no explicit bound

	DeviceStore   DeviceStore `yaml:"device_store"`
	DataDir       string      `yaml:"data_dir"`
	SQLitePath    string      `yaml:"sqlite_path"`
	RedisAddr     string      `yaml:"redis_addr"`
	RedisPassword string      `yaml:"redis_password"`
	RedisDB       int         `yaml:"redis_db"`
	GCPProjectID  string      `yaml:"gcp_project"`

	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	dataDir := ".goalforge"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".goalforge")
	}

	return &Config{
		APIBaseURL:      "http://localhost:8080",
		APIRPS:          10,
		ProbeInterval:   5 * time.Second,
		MonitorInterval: 14 * time.Minute,
		RequestTimeout:  3 * time.Second,
		DeviceStore:     DeviceStoreFile,
		DataDir:         dataDir,
		Port:            "8787",
		LogLevel:        "info",
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Load builds the config from defaults, then the YAML file named by
// GOALFORGE_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("GOALFORGE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error

	c.APIBaseURL = getEnv("GOALFORGE_API_URL", c.APIBaseURL)
	if c.APIRPS, err = getFloatEnv("GOALFORGE_API_RPS", c.APIRPS); err != nil {
		return err
	}

	if c.ProbeInterval, err = getDurationEnv("GOALFORGE_PROBE_INTERVAL", c.ProbeInterval); err != nil {
		return err
	}
	if c.MonitorInterval, err = getDurationEnv("GOALFORGE_MONITOR_INTERVAL", c.MonitorInterval); err != nil {
		return err
	}
	if c.RequestTimeout, err = getDurationEnv("GOALFORGE_REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}

	c.DeviceStore = DeviceStore(getEnv("GOALFORGE_DEVICE_STORE", string(c.DeviceStore)))
	c.DataDir = getEnv("GOALFORGE_DATA_DIR", c.DataDir)
	c.SQLitePath = getEnv("GOALFORGE_SQLITE_PATH", c.SQLitePath)
	c.RedisAddr = getEnv("GOALFORGE_REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("GOALFORGE_REDIS_PASSWORD", c.RedisPassword)
	if c.RedisDB, err = getIntEnv("GOALFORGE_REDIS_DB", c.RedisDB); err != nil {
		return err
	}
	c.GCPProjectID = getEnv("GOALFORGE_GCP_PROJECT", c.GCPProjectID)

	c.Port = getEnv("GOALFORGE_PORT", c.Port)
	c.LogLevel = getEnv("GOALFORGE_LOG_LEVEL", c.LogLevel)
	return nil
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("GOALFORGE_API_URL must be set")
	}
	if c.ProbeInterval <= 0 || c.MonitorInterval <= 0 {
		return fmt.Errorf("probe and monitor intervals must be positive")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}

	switch c.DeviceStore {
	case DeviceStoreFile, DeviceStoreMemory:
	case DeviceStoreSQLite:
		if c.SQLitePath == "" {
			c.SQLitePath = filepath.Join(c.DataDir, "goalforge.db")
		}
	case DeviceStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("GOALFORGE_REDIS_ADDR must be set for the redis device store")
		}
	case DeviceStoreFirestore:
		if c.GCPProjectID == "" {
			return fmt.Errorf("GOALFORGE_GCP_PROJECT must be set for the firestore device store")
		}
	default:
		return fmt.Errorf("unknown device store %q", c.DeviceStore)
	}
	return nil
}
