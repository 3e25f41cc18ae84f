package factory

import (
	"github.com/mikey/resume-mailer/internal/adapters/groq"
	"github.com/mikey/resume-mailer/internal/config"
	"github.com/mikey/resume-mailer/internal/core"
	"github.com/mikey/resume-mailer/internal/utils"
	"go.uber.org/zap"
)

// DrafterFactory creates drafting clients
type DrafterFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewDrafterFactory creates a new drafter factory
func NewDrafterFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *DrafterFactory {
	return &DrafterFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateDrafter creates a drafting client for the configured endpoint
func (f *DrafterFactory) CreateDrafter() core.Drafter {
	d := f.cfg.GetDrafting()

	return groq.NewClient(
		d.BaseURL,
		d.Model,
		d.MaxTokens,
		d.Temperature,
		d.Timeout,
		d.ResumeCharBudget,
		f.logger,
		f.textProcessor,
	)
}
