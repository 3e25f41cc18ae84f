package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/resume-mailer/internal/adapters/cache"
	"github.com/mikey/resume-mailer/internal/config"
	"github.com/mikey/resume-mailer/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates cache repositories based on configuration
type CacheFactory struct {
	cfg    config.CacheConfig
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg.GetCache(),
		logger: logger,
	}
}

// CreateCacheRepository creates a cache repository based on the configuration.
// A disabled cache yields a nil repository.
func (f *CacheFactory) CreateCacheRepository() (core.CacheRepository, error) {
	if !f.cfg.Enabled {
		f.logger.Debug("Extraction cache disabled")
		return nil, nil
	}

	switch f.cfg.Type {
	case "memory":
		return cache.NewMemoryCache(f.logger, f.cfg.CleanupFrequency), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(f.cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(f.cfg.SQLitePath, f.logger, f.cfg.CleanupFrequency)
	case "mysql":
		return cache.NewMySQLCache(f.cfg.MySQLDSN, f.logger, f.cfg.CleanupFrequency)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", f.cfg.Type)
	}
}

// GetCacheTTL returns the configured cache TTL
func (f *CacheFactory) GetCacheTTL() time.Duration {
	return f.cfg.TTL
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.Enabled
}
