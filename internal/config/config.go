package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. RESUME_MAILER_RELAY_HOST
const EnvPrefix = "RESUME_MAILER"

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance. An empty configFile searches
// the default locations for config.yaml.
func New(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resume-mailer/")
		v.AddConfigPath("$HOME/.resume-mailer")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("drafting.api_key", EnvPrefix+"_DRAFTING_API_KEY", "GROQ_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind API key variable: %w", err)
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Drafting defaults
	v.SetDefault("drafting.api_key", "")
	v.SetDefault("drafting.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("drafting.model", "llama3-8b-8192")
	v.SetDefault("drafting.max_tokens", 1000)
	v.SetDefault("drafting.temperature", 0.7)
	v.SetDefault("drafting.timeout", "30s")
	v.SetDefault("drafting.resume_char_budget", 4000)

	// Relay defaults
	v.SetDefault("relay.host", "smtp.gmail.com")
	v.SetDefault("relay.port", 465)
	v.SetDefault("relay.tls_mode", "implicit")
	v.SetDefault("relay.helo_name", "")
	v.SetDefault("relay.timeout", "30s")
	v.SetDefault("relay.attachment_name", "resume.pdf")

	// Dispatch defaults
	v.SetDefault("dispatch.delay", "2s")

	// Send log defaults
	v.SetDefault("sendlog.path", "sent_email_log.json")

	// Extraction defaults
	v.SetDefault("extraction.scratch_dir", "")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "./data/extract_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/resume_mailer")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// Set overrides a value, used for command line flags
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
