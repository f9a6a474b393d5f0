// Package config loads the flycloud configuration from a yaml file and
// environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the flycloud server and its dependencies.
type Config struct {
	// Listen is the address the flycloud server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// LogLevel is the log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// SessionKey is the key used to encrypt session data.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// UploadDir is the root directory of the local upload tree. One
	// subdirectory per category is created below it at startup.
	UploadDir string `yaml:"upload_dir" mapstructure:"upload_dir"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Storage holds the remote object storage configuration. It is only
	// used when a remote database URL is configured.
	Storage *StorageConfig `yaml:"storage" mapstructure:"storage"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// URL is the connection string of the remote database. When set,
	// flycloud runs against Postgres and stores uploads in the remote
	// object store. When empty, it runs against a local sqlite file and
	// stores uploads on disk.
	URL string `yaml:"url" mapstructure:"url"`
	// Path is the path to the sqlite database file used when URL is empty.
	Path string `yaml:"path" mapstructure:"path"`
}

// StorageConfig holds the remote object storage configuration.
type StorageConfig struct {
	// Endpoint is the S3-compatible endpoint, host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// AccessKeyID is the access key for the object store.
	AccessKeyID string `yaml:"access_key_id" mapstructure:"access_key_id"`
	// SecretAccessKey is the secret key for the object store.
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`
	// UseSSL indicates whether to use TLS when talking to the endpoint.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// Bucket is the bucket uploads are stored in.
	Bucket string `yaml:"bucket" mapstructure:"bucket"`
	// Region is the bucket region.
	Region string `yaml:"region" mapstructure:"region"`
	// PublicURL is the base URL files are served from. Defaults to the
	// endpoint plus bucket when empty.
	PublicURL string `yaml:"public_url" mapstructure:"public_url"`
}

// RemoteEnabled reports whether the remote backend is active. The
// switch is the presence of the remote database URL, nothing else.
func (c *Config) RemoteEnabled() bool {
	return c.Database != nil && c.Database.URL != ""
}

// PublicBaseURL returns the base URL stored files are reachable under.
func (s *StorageConfig) PublicBaseURL() string {
	if s.PublicURL != "" {
		return strings.TrimRight(s.PublicURL, "/")
	}
	scheme := "http"
	if s.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, s.Endpoint, s.Bucket)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("session_max_age", 3600)
	v.SetDefault("upload_dir", "./uploads")
	v.SetDefault("database.url", "")
	v.SetDefault("database.path", "./data/flycloud.db")
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.access_key_id", "minioadmin")
	v.SetDefault("storage.secret_access_key", "minioadmin")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "flycloud")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.public_url", "")
}

// Load reads the configuration from the given file path, falling back
// to defaults and FLYCLOUD_ environment variables when no file is found.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("FLYCLOUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.flycloud")
		v.AddConfigPath("/etc/flycloud")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

func validate(c *Config) error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.SessionKey == "" {
		log.Warn("no session_key configured, sessions will not survive restarts")
	}
	if c.RemoteEnabled() && c.Storage.Endpoint == "" {
		return fmt.Errorf("storage endpoint is required when a remote database is configured")
	}
	if !c.RemoteEnabled() && c.Database.Path == "" {
		return fmt.Errorf("database path is required when no remote database is configured")
	}
	return nil
}
