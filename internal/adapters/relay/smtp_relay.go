package relay

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/resume-mailer/internal/core"
	"go.uber.org/zap"
)

// TLS modes supported by the relay
const (
	TLSImplicit = "implicit"
	TLSStartTLS = "starttls"
	TLSNone     = "none"
)

var (
	// ErrStartTLSUnsupported is returned when starttls is configured but not offered
	ErrStartTLSUnsupported = errors.New("relay does not support STARTTLS")
	// ErrAuthNotOffered is returned when a TLS relay does not advertise AUTH
	ErrAuthNotOffered = errors.New("relay does not offer authentication")
)

type stage int

const (
	stageConnect stage = iota
	stageHello
	stageAuth
	stageMail
	stageRcpt
	stageData
)

// SMTPRelay delivers envelopes through an authenticated SMTP relay, one
// session per envelope
type SMTPRelay struct {
	host     string
	port     int
	tlsMode  string
	heloName string
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
	// tlsConfig overrides the client TLS settings; ServerName defaults to host
	tlsConfig *tls.Config
}

// NewSMTPRelay creates a new SMTP relay client
func NewSMTPRelay(host string, port int, tlsMode, heloName string, timeout time.Duration, logger *zap.Logger) (*SMTPRelay, error) {
	switch tlsMode {
	case TLSImplicit, TLSStartTLS, TLSNone:
	default:
		return nil, fmt.Errorf("unsupported relay TLS mode: %s", tlsMode)
	}

	if heloName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "localhost"
		}
		heloName = hostname
	}

	return &SMTPRelay{
		host:     host,
		port:     port,
		tlsMode:  tlsMode,
		heloName: heloName,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Send transmits one envelope. Failures are returned as *core.DeliveryError.
func (r *SMTPRelay) Send(ctx context.Context, env *core.Envelope) error {
	msg, err := BuildMessage(env, r.now())
	if err != nil {
		return &core.DeliveryError{Outcome: core.OutcomeUnexpected, Recipient: env.To, Err: err}
	}

	c, st, err := r.dial(ctx)
	if err != nil {
		return classify(st, env.To, err)
	}
	defer c.Close()
	if r.timeout > 0 {
		c.CommandTimeout = r.timeout
		c.SubmissionTimeout = r.timeout
	}

	if err := c.Hello(r.heloName); err != nil {
		return classify(stageHello, env.To, err)
	}

	if ok, _ := c.Extension("AUTH"); ok {
		auth := sasl.NewPlainClient("", env.Sender.Address, env.Sender.Password)
		if err := c.Auth(auth); err != nil {
			return classify(stageAuth, env.To, err)
		}
	} else if r.tlsMode != TLSNone {
		return classify(stageAuth, env.To, ErrAuthNotOffered)
	} else {
		r.logger.Warn("Relay does not advertise AUTH, sending unauthenticated",
			zap.String("relay", r.address()))
	}

	if err := c.Mail(env.Sender.Address, nil); err != nil {
		return classify(stageMail, env.To, err)
	}

	if err := c.Rcpt(env.To, nil); err != nil {
		return classify(stageRcpt, env.To, err)
	}
	for _, extra := range append(append([]string{}, env.CC...), env.BCC...) {
		if err := c.Rcpt(extra, nil); err != nil {
			r.logger.Warn("Copy recipient refused",
				zap.String("recipient", extra),
				zap.Error(err))
		}
	}

	wc, err := c.Data()
	if err != nil {
		return classify(stageData, env.To, err)
	}
	if _, err := wc.Write(msg); err != nil {
		wc.Close()
		return classify(stageData, env.To, err)
	}
	if err := wc.Close(); err != nil {
		return classify(stageData, env.To, err)
	}

	if err := c.Quit(); err != nil {
		r.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

func (r *SMTPRelay) address() string {
	return net.JoinHostPort(r.host, strconv.Itoa(r.port))
}

func (r *SMTPRelay) clientTLSConfig() *tls.Config {
	cfg := &tls.Config{}
	if r.tlsConfig != nil {
		cfg = r.tlsConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = r.host
	}
	return cfg
}

// dial connects to the relay and, in starttls mode, upgrades the session.
// The returned stage tells which step failed.
func (r *SMTPRelay) dial(ctx context.Context) (*smtp.Client, stage, error) {
	dialer := &net.Dialer{Timeout: r.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", r.address())
	if err != nil {
		return nil, stageConnect, fmt.Errorf("failed to connect to relay: %w", err)
	}

	if r.timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(r.timeout)); err != nil {
			conn.Close()
			return nil, stageConnect, err
		}
	}

	switch r.tlsMode {
	case TLSImplicit:
		return smtp.NewClient(tls.Client(conn, r.clientTLSConfig())), stageConnect, nil
	case TLSStartTLS:
		c, err := smtp.NewClientStartTLS(conn, r.clientTLSConfig())
		if err != nil {
			return nil, stageHello, startTLSError(err)
		}
		return c, stageConnect, nil
	default:
		return smtp.NewClient(conn), stageConnect, nil
	}
}

// startTLSError marks the missing STARTTLS extension, which go-smtp reports
// as a plain error, with ErrStartTLSUnsupported. Server replies and network
// failures pass through unchanged.
func startTLSError(err error) error {
	var smtpErr *smtp.SMTPError
	var netErr net.Error
	switch {
	case errors.As(err, &smtpErr), errors.As(err, &netErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return err
	}
	return fmt.Errorf("%w: %v", ErrStartTLSUnsupported, err)
}

// classify maps a failure at a protocol stage onto a delivery outcome
func classify(st stage, to string, err error) error {
	var smtpErr *smtp.SMTPError
	isSMTP := errors.As(err, &smtpErr)

	outcome := core.OutcomeUnexpected
	switch {
	case errors.Is(err, ErrStartTLSUnsupported):
		outcome = core.OutcomeProtocolFailure
	case errors.Is(err, ErrAuthNotOffered):
		outcome = core.OutcomeAuthFailure
	case !isSMTP:
	case st == stageAuth:
		outcome = core.OutcomeAuthFailure
	case st == stageRcpt:
		outcome = core.OutcomeRecipientRefused
	default:
		outcome = core.OutcomeProtocolFailure
	}

	return &core.DeliveryError{Outcome: outcome, Recipient: to, Err: err}
}

var _ core.Relay = (*SMTPRelay)(nil)
