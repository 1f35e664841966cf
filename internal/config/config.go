// Package config loads the console configuration from YAML, a .env file and
// ASR_CONSOLE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "ASR_CONSOLE_"

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Backend struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"backend"`

	Poll struct {
		IntervalSeconds int  `yaml:"interval_seconds"`
		StopOnTerminal  bool `yaml:"stop_on_terminal"`
	} `yaml:"poll"`

	Workers struct {
		Count     int `yaml:"count"`
		QueueSize int `yaml:"queue_size"`
	} `yaml:"workers"`

	Storage struct {
		TempDir   string `yaml:"temp_dir"`
		OutputDir string `yaml:"output_dir"`
		Database  string `yaml:"database"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	GoogleDrive struct {
		Enabled         bool   `yaml:"enabled"`
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`

	Minio struct {
		Enabled         bool   `yaml:"enabled"`
		Endpoint        string `yaml:"endpoint"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
		BucketName      string `yaml:"bucket_name"`
		Prefix          string `yaml:"prefix"`
	} `yaml:"minio"`

	Watch struct {
		Dir           string `yaml:"dir"`
		SettleSeconds int    `yaml:"settle_seconds"`
	} `yaml:"watch"`

	Proxy struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"proxy"`

	Limits struct {
		MaxFileSizeMB int `yaml:"max_file_size_mb"`
	} `yaml:"limits"`

	Notifications struct {
		TTLSeconds int `yaml:"ttl_seconds"`
		Keep       int `yaml:"keep"`
	} `yaml:"notifications"`
}

// Default returns the configuration used for anything the file leaves out
func Default() *Config {
	c := &Config{}
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 3000
	c.Backend.BaseURL = "http://localhost:8000"
	c.Backend.TimeoutSeconds = 60
	c.Poll.IntervalSeconds = 2
	c.Poll.StopOnTerminal = true
	c.Workers.Count = 2
	c.Workers.QueueSize = 100
	c.Storage.TempDir = "temp"
	c.Storage.OutputDir = "exports"
	c.Storage.Database = "data/console.db"
	c.Cleanup.IntervalMinutes = 60
	c.Cleanup.MaxAgeHours = 24
	c.GoogleDrive.CredentialsFile = "config/credentials.json"
	c.GoogleDrive.TokenFile = "config/token.json"
	c.GoogleDrive.FolderName = "ASR Exports"
	c.Minio.Endpoint = "http://localhost:9000"
	c.Minio.BucketName = "asr-exports"
	c.Watch.SettleSeconds = 2
	c.Limits.MaxFileSizeMB = 500
	c.Notifications.TTLSeconds = 3
	c.Notifications.Keep = 200
	return c
}

// Load reads path (missing files fall back to defaults), then the .env
// file and environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("Config file %s not found, using defaults", path)
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %v", err)
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %v", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: unable to load .env file: %v", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.fillZeroes()
	return cfg, nil
}

// fillZeroes restores defaults for values a file explicitly zeroed
func (c *Config) fillZeroes() {
	d := Default()
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = d.Backend.BaseURL
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = d.Backend.TimeoutSeconds
	}
	if c.Poll.IntervalSeconds <= 0 {
		c.Poll.IntervalSeconds = d.Poll.IntervalSeconds
	}
	if c.Workers.Count <= 0 {
		c.Workers.Count = d.Workers.Count
	}
	if c.Notifications.TTLSeconds <= 0 {
		c.Notifications.TTLSeconds = d.Notifications.TTLSeconds
	}
	if c.Limits.MaxFileSizeMB <= 0 {
		c.Limits.MaxFileSizeMB = d.Limits.MaxFileSizeMB
	}
}

func applyEnv(c *Config) error {
	strs := map[string]*string{
		"HOST":                    &c.Server.Host,
		"BACKEND_URL":             &c.Backend.BaseURL,
		"TEMP_DIR":                &c.Storage.TempDir,
		"OUTPUT_DIR":              &c.Storage.OutputDir,
		"DATABASE":                &c.Storage.Database,
		"GDRIVE_CREDENTIALS_FILE": &c.GoogleDrive.CredentialsFile,
		"GDRIVE_TOKEN_FILE":       &c.GoogleDrive.TokenFile,
		"GDRIVE_FOLDER":           &c.GoogleDrive.FolderName,
		"MINIO_ENDPOINT":          &c.Minio.Endpoint,
		"MINIO_ACCESS_KEY":        &c.Minio.AccessKeyID,
		"MINIO_SECRET_KEY":        &c.Minio.SecretAccessKey,
		"MINIO_BUCKET":            &c.Minio.BucketName,
		"WATCH_DIR":               &c.Watch.Dir,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"PORT":             &c.Server.Port,
		"BACKEND_TIMEOUT":  &c.Backend.TimeoutSeconds,
		"POLL_INTERVAL":    &c.Poll.IntervalSeconds,
		"WORKERS":          &c.Workers.Count,
		"MAX_FILE_SIZE_MB": &c.Limits.MaxFileSizeMB,
		"NOTIFICATION_TTL": &c.Notifications.TTLSeconds,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %v", EnvPrefix, key, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"POLL_STOP_ON_TERMINAL": &c.Poll.StopOnTerminal,
		"GDRIVE_ENABLED":        &c.GoogleDrive.Enabled,
		"MINIO_ENABLED":         &c.Minio.Enabled,
		"PROXY_ENABLED":         &c.Proxy.Enabled,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %v", EnvPrefix, key, err)
		}
		*dst = b
	}
	return nil
}

// Addr is the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// BackendTimeout is the per-request timeout for backend calls
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// PollInterval is the progress polling period
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// NotificationTTL is how long a notification stays visible
func (c *Config) NotificationTTL() time.Duration {
	return time.Duration(c.Notifications.TTLSeconds) * time.Second
}

// WatchSettle is how long a dropped file must stay unchanged
func (c *Config) WatchSettle() time.Duration {
	return time.Duration(c.Watch.SettleSeconds) * time.Second
}
