package di

import (
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/resume-mailer/internal/adapters/extractor"
	"github.com/mikey/resume-mailer/internal/adapters/sendlog"
	"github.com/mikey/resume-mailer/internal/config"
	"github.com/mikey/resume-mailer/internal/core"
	"github.com/mikey/resume-mailer/internal/factory"
	"github.com/mikey/resume-mailer/internal/recipients"
	"github.com/mikey/resume-mailer/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// around an already loaded configuration and logger
func BuildContainer(cfg *config.Config, logger *zap.Logger) (*dig.Container, error) {
	container := dig.New()

	// Register configuration and logger
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *zap.Logger { return logger }); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewDrafterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewRelayFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register text extractor
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger, tp *utils.TextProcessor) core.TextExtractor {
		scratch := cfg.GetString("extraction.scratch_dir")
		if scratch == "" {
			scratch = os.TempDir()
		}
		return extractor.NewPDFExtractor(scratch, logger, tp)
	}); err != nil {
		return nil, err
	}

	// Register drafter
	if err := container.Provide(func(f *factory.DrafterFactory) core.Drafter {
		return f.CreateDrafter()
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register relay
	if err := container.Provide(func(f *factory.RelayFactory) (core.Relay, error) {
		return f.CreateRelay()
	}); err != nil {
		return nil, err
	}

	// Register send log
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.SendLog {
		return sendlog.NewJSONLinesLog(cfg.GetString("sendlog.path"), logger)
	}); err != nil {
		return nil, err
	}

	// Register validator
	if err := container.Provide(func(logger *zap.Logger) core.RequestValidator {
		return recipients.NewValidator(logger)
	}); err != nil {
		return nil, err
	}

	// Register dispatcher
	if err := container.Provide(func(relay core.Relay, log core.SendLog, logger *zap.Logger, cfg *config.Config) *core.Dispatcher {
		return core.NewDispatcher(relay, log, logger, cfg.GetDispatchDelay())
	}); err != nil {
		return nil, err
	}

	// Register application service
	if err := container.Provide(func(
		validator core.RequestValidator,
		textExtractor core.TextExtractor,
		cacheRepo core.CacheRepository,
		drafter core.Drafter,
		relay core.Relay,
		dispatcher *core.Dispatcher,
		logger *zap.Logger,
		cacheFactory *factory.CacheFactory,
		relayFactory *factory.RelayFactory,
	) *core.ApplicationService {
		return core.NewApplicationService(
			validator,
			textExtractor,
			cacheRepo,
			drafter,
			relay,
			dispatcher,
			logger,
			cacheFactory.IsCacheEnabled(),
			cacheFactory.GetCacheTTL(),
			relayFactory.AttachmentName(),
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
