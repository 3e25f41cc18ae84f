package factory

import (
	"github.com/mikey/resume-mailer/internal/adapters/relay"
	"github.com/mikey/resume-mailer/internal/config"
	"github.com/mikey/resume-mailer/internal/core"
	"go.uber.org/zap"
)

// RelayFactory creates mail relay clients
type RelayFactory struct {
	cfg    config.RelayConfig
	logger *zap.Logger
}

// NewRelayFactory creates a new relay factory
func NewRelayFactory(cfg *config.Config, logger *zap.Logger) *RelayFactory {
	return &RelayFactory{
		cfg:    cfg.GetRelay(),
		logger: logger,
	}
}

// CreateRelay creates an SMTP relay client
func (f *RelayFactory) CreateRelay() (core.Relay, error) {
	f.logger.Debug("Configuring mail relay",
		zap.String("address", f.cfg.Address()),
		zap.String("tls_mode", f.cfg.TLSMode))

	return relay.NewSMTPRelay(
		f.cfg.Host,
		f.cfg.Port,
		f.cfg.TLSMode,
		f.cfg.HeloName,
		f.cfg.Timeout,
		f.logger,
	)
}

// AttachmentName returns the file name used for the resume attachment
func (f *RelayFactory) AttachmentName() string {
	return f.cfg.AttachmentName
}
