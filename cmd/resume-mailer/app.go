package main

import (
	"fmt"

	"github.com/mikey/resume-mailer/internal/config"
	"github.com/mikey/resume-mailer/internal/core"
	"github.com/mikey/resume-mailer/internal/di"
	"github.com/mikey/resume-mailer/internal/logging"
	"go.uber.org/zap"
)

// app holds the resolved components shared by every command
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ApplicationService
	sendLog core.SendLog
	cache   core.CacheRepository
}

func newApp() (*app, error) {
	cfg, err := config.New(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var logger *zap.Logger
	if verbose || jsonLog {
		logger, err = logging.InitConsoleLogger(verbose, jsonLog)
	} else {
		logger, err = logging.InitLogger(cfg)
	}
	if err != nil {
		return nil, err
	}

	if used := cfg.GetViper().ConfigFileUsed(); used != "" {
		logger.Debug("Loaded configuration from file", zap.String("file", used))
	}

	container, err := di.BuildContainer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	err = container.Invoke(func(svc *core.ApplicationService, log core.SendLog, cache core.CacheRepository) {
		a.service = svc
		a.sendLog = log
		a.cache = cache
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return a, nil
}

// close stops background cache tasks and flushes the logger
func (a *app) close() {
	if stopper, ok := a.cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	_ = a.logger.Sync()
}
