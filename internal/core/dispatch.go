package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const messageSent = "Email sent successfully"

// Dispatcher sends a finalized batch one recipient at a time
type Dispatcher struct {
	relay  Relay
	log    SendLog
	logger *zap.Logger
	delay  time.Duration
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	newID  func() string
}

// NewDispatcher creates a dispatcher that waits delay between sends
func NewDispatcher(relay Relay, log SendLog, logger *zap.Logger, delay time.Duration) *Dispatcher {
	return &Dispatcher{
		relay:  relay,
		log:    log,
		logger: logger,
		delay:  delay,
		now:    time.Now,
		sleep:  sleepContext,
		newID:  uuid.NewString,
	}
}

// Dispatch performs one delivery attempt per recipient, strictly in order.
// A failed recipient never stops the batch. Each attempt is appended to the
// send log as soon as it is recorded. The returned report is non-nil whenever
// at least the batch was started; the error carries log-store failures or an
// interruption of the pacing wait.
func (d *Dispatcher) Dispatch(ctx context.Context, batch Batch) (*BatchReport, error) {
	report := &BatchReport{
		BatchID:  d.newID(),
		Attempts: make([]DeliveryAttempt, 0, len(batch.Recipients.To)),
	}

	d.logger.Info("Starting batch",
		zap.String("batch_id", report.BatchID),
		zap.Int("recipients", len(batch.Recipients.To)),
		zap.Int("cc", len(batch.Recipients.CC)),
		zap.Int("bcc", len(batch.Recipients.BCC)))

	var errs []error
	for i, to := range batch.Recipients.To {
		if i > 0 && d.delay > 0 {
			if err := d.sleep(ctx, d.delay); err != nil {
				d.logger.Warn("Batch interrupted",
					zap.String("batch_id", report.BatchID),
					zap.Int("sent", len(report.Attempts)),
					zap.Error(err))
				errs = append(errs, fmt.Errorf("batch interrupted after %d attempts: %w", len(report.Attempts), err))
				break
			}
		}

		attempt := d.attempt(ctx, report.BatchID, batch, to)
		report.Attempts = append(report.Attempts, attempt)

		if err := d.log.Append(ctx, attempt); err != nil {
			d.logger.Error("Failed to append delivery attempt to send log",
				zap.String("recipient", to),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("append attempt for %s: %w", to, err))
		}
	}

	summary := Summarize(report.Attempts)
	report.Total = summary.Total
	report.Succeeded = summary.Succeeded
	report.Failed = summary.Failed

	d.logger.Info("Batch complete",
		zap.String("batch_id", report.BatchID),
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))

	return report, errors.Join(errs...)
}

func (d *Dispatcher) attempt(ctx context.Context, batchID string, batch Batch, to string) DeliveryAttempt {
	attempt := DeliveryAttempt{
		BatchID:    batchID,
		To:         to,
		Subject:    batch.Subject,
		BodyLength: utf8.RuneCountInString(batch.Body),
	}

	err := func() error {
		payload, err := readAttachment(batch.Attachment.Source)
		if err != nil {
			return fmt.Errorf("failed to read attachment: %w", err)
		}
		attempt.AttachmentSize = int64(len(payload))

		d.logger.Debug("Sending email",
			zap.String("from", batch.Sender.Address),
			zap.String("to", to),
			zap.String("subject", batch.Subject),
			zap.Int("body_length", attempt.BodyLength),
			zap.Int64("attachment_size", attempt.AttachmentSize))

		return d.relay.Send(ctx, &Envelope{
			Sender:         batch.Sender,
			To:             to,
			CC:             batch.Recipients.CC,
			BCC:            batch.Recipients.BCC,
			Subject:        batch.Subject,
			Body:           batch.Body,
			AttachmentName: batch.Attachment.Name,
			AttachmentType: batch.Attachment.ContentType,
			Attachment:     payload,
		})
	}()

	attempt.Outcome, attempt.Message = classifyDelivery(err, to)
	attempt.Success = attempt.Outcome == OutcomeSuccess
	attempt.Timestamp = d.now().Format(TimestampLayout)

	if attempt.Success {
		d.logger.Info("Email sent", zap.String("to", to))
	} else {
		d.logger.Error("Email failed",
			zap.String("to", to),
			zap.String("outcome", string(attempt.Outcome)),
			zap.Error(err))
	}
	return attempt
}

// classifyDelivery maps a relay error onto an outcome and its log message
func classifyDelivery(err error, to string) (Outcome, string) {
	if err == nil {
		return OutcomeSuccess, messageSent
	}
	var derr *DeliveryError
	if errors.As(err, &derr) {
		return derr.Outcome, derr.Error()
	}
	unexpected := &DeliveryError{Outcome: OutcomeUnexpected, Recipient: to, Err: err}
	return unexpected.Outcome, unexpected.Error()
}

func readAttachment(src AttachmentSource) ([]byte, error) {
	if src == nil {
		return nil, nil
	}
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
