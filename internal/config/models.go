package config

import (
	"fmt"
	"time"
)

// DraftingConfig represents the configuration for the generation service
type DraftingConfig struct {
	APIKey           string
	BaseURL          string
	Model            string
	MaxTokens        int
	Temperature      float32
	Timeout          time.Duration
	ResumeCharBudget int
}

// RelayConfig represents the configuration for the outbound mail relay
type RelayConfig struct {
	Host           string
	Port           int
	TLSMode        string
	HeloName       string
	Timeout        time.Duration
	AttachmentName string
}

// Address returns host:port
func (r RelayConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig represents the configuration for the extraction cache
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// GetDrafting returns the drafting configuration
func (c *Config) GetDrafting() DraftingConfig {
	timeout, err := c.GetDuration("drafting.timeout")
	if err != nil {
		timeout = 30 * time.Second
	}
	return DraftingConfig{
		APIKey:           c.GetString("drafting.api_key"),
		BaseURL:          c.GetString("drafting.base_url"),
		Model:            c.GetString("drafting.model"),
		MaxTokens:        c.GetInt("drafting.max_tokens"),
		Temperature:      float32(c.GetFloat64("drafting.temperature")),
		Timeout:          timeout,
		ResumeCharBudget: c.GetInt("drafting.resume_char_budget"),
	}
}

// GetRelay returns the relay configuration
func (c *Config) GetRelay() RelayConfig {
	timeout, err := c.GetDuration("relay.timeout")
	if err != nil {
		timeout = 30 * time.Second
	}
	return RelayConfig{
		Host:           c.GetString("relay.host"),
		Port:           c.GetInt("relay.port"),
		TLSMode:        c.GetString("relay.tls_mode"),
		HeloName:       c.GetString("relay.helo_name"),
		Timeout:        timeout,
		AttachmentName: c.GetString("relay.attachment_name"),
	}
}

// GetDispatchDelay returns the pause between two sends of a batch
func (c *Config) GetDispatchDelay() time.Duration {
	delay, err := c.GetDuration("dispatch.delay")
	if err != nil {
		return 2 * time.Second
	}
	return delay
}

// GetCache returns the cache configuration
func (c *Config) GetCache() CacheConfig {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		ttl = 24 * time.Hour
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		cleanup = time.Hour
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}
}
