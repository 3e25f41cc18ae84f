package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// TestEmailSubject is the subject of the relay configuration check
	TestEmailSubject = "Test Email from Resume Mailer App"
	// TestEmailBody is the body of the relay configuration check
	TestEmailBody = "This is a test email to verify your email configuration is working correctly. If you received this, your setup is correct!"

	attachmentContentType = "application/pdf"
)

// ErrNoText is wrapped by ExtractionError when a document has no extractable text
var ErrNoText = errors.New("document contains no extractable text")

// ErrEmptyBody is returned when a send is requested with a blank body
var ErrEmptyBody = errors.New("email body is empty")

// RequestValidator gates requests before any side effect
type RequestValidator interface {
	// Validate checks every field and returns a *ValidationError listing all problems
	Validate(req ApplicationRequest) (*Application, error)

	// ValidateTestEmail checks the inputs of a relay test message
	ValidateTestEmail(sender Credentials, to string) error
}

// Prepared is the outcome of the generation stage, ready for editing
type Prepared struct {
	Application *Application
	ResumeText  string
	Draft       DraftResult
}

// ApplicationService is the core generation-and-delivery pipeline
type ApplicationService struct {
	validator      RequestValidator
	extractor      TextExtractor
	cache          CacheRepository
	drafter        Drafter
	relay          Relay
	dispatcher     *Dispatcher
	logger         *zap.Logger
	cacheEnabled   bool
	cacheTTL       time.Duration
	attachmentName string
}

// NewApplicationService creates a new application service
func NewApplicationService(
	validator RequestValidator,
	extractor TextExtractor,
	cache CacheRepository,
	drafter Drafter,
	relay Relay,
	dispatcher *Dispatcher,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	attachmentName string,
) *ApplicationService {
	return &ApplicationService{
		validator:      validator,
		extractor:      extractor,
		cache:          cache,
		drafter:        drafter,
		relay:          relay,
		dispatcher:     dispatcher,
		logger:         logger,
		cacheEnabled:   cacheEnabled,
		cacheTTL:       cacheTTL,
		attachmentName: attachmentName,
	}
}

// Validate checks the request without side effects
func (s *ApplicationService) Validate(req ApplicationRequest) (*Application, error) {
	app, err := s.validator.Validate(req)
	if err != nil {
		s.logger.Warn("Request rejected", zap.Error(err))
		return nil, err
	}
	return app, nil
}

// ExtractResume returns the text of a document, reusing earlier results
// for byte-identical content
func (s *ApplicationService) ExtractResume(ctx context.Context, doc Document) (string, error) {
	digest := doc.Digest()

	if s.cacheEnabled && s.cache != nil {
		if entry, err := s.cache.Get(ctx, digest); err == nil {
			s.logger.Debug("Extraction cache hit", zap.String("digest", digest))
			return entry.Text, nil
		}
	}

	text, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		var extractErr *ExtractionError
		if !errors.As(err, &extractErr) {
			extractErr = &ExtractionError{Document: doc.Name, Err: err}
		}
		s.logger.Error("Failed to extract resume text", zap.String("document", doc.Name), zap.Error(err))
		return "", extractErr
	}
	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Document: doc.Name, Err: ErrNoText}
	}

	if s.cacheEnabled && s.cache != nil {
		now := time.Now()
		entry := &CacheEntry{
			Digest:    digest,
			Text:      text,
			CreatedAt: now,
			ExpiresAt: now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update extraction cache", zap.Error(err))
		}
	}

	return text, nil
}

// Draft asks the drafting service for a body. A *GenerationError means the
// send stage must not run.
func (s *ApplicationService) Draft(ctx context.Context, app *Application, resumeText string) (DraftResult, error) {
	result, err := s.drafter.Draft(ctx, DraftRequest{
		ResumeText:     resumeText,
		JobDescription: app.JobDescription,
		Subject:        app.Subject,
		APIKey:         app.APIKey,
	})
	if err != nil {
		s.logger.Error("Failed to generate email", zap.Error(err))
		return DraftResult{}, err
	}
	if result.Source == DraftFallback {
		s.logger.Warn("Generation credential rejected, using fallback email template")
	}
	return result, nil
}

// Prepare runs validation, extraction and drafting. Nothing is sent.
func (s *ApplicationService) Prepare(ctx context.Context, req ApplicationRequest) (*Prepared, error) {
	app, err := s.Validate(req)
	if err != nil {
		return nil, err
	}

	text, err := s.ExtractResume(ctx, app.Resume)
	if err != nil {
		return nil, err
	}

	draft, err := s.Draft(ctx, app, text)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Email drafted",
		zap.String("source", string(draft.Source)),
		zap.Int("recipients", len(app.Recipients.To)))

	return &Prepared{
		Application: app,
		ResumeText:  text,
		Draft:       draft,
	}, nil
}

// Send dispatches the (possibly edited) body with the resume attached.
// A nil report means nothing was sent.
func (s *ApplicationService) Send(ctx context.Context, app *Application, body string) (*BatchReport, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &ValidationError{Issues: []FieldIssue{{Field: "body", Reason: ErrEmptyBody.Error()}}}
	}

	return s.dispatcher.Dispatch(ctx, Batch{
		Sender:     app.Sender,
		Recipients: app.Recipients,
		Subject:    app.Subject,
		Body:       body,
		Attachment: Attachment{
			Name:        s.attachmentName,
			ContentType: attachmentContentType,
			Source:      BytesAttachment(app.Resume.Content),
		},
	})
}

// SendTestEmail sends a short message without attachment to check the relay
// credentials. It is not recorded in the send log.
func (s *ApplicationService) SendTestEmail(ctx context.Context, sender Credentials, to string) error {
	if err := s.validator.ValidateTestEmail(sender, to); err != nil {
		return err
	}

	err := s.relay.Send(ctx, &Envelope{
		Sender:  sender,
		To:      to,
		Subject: TestEmailSubject,
		Body:    TestEmailBody,
	})
	if err != nil {
		s.logger.Error("Test email failed", zap.String("to", to), zap.Error(err))
		return err
	}

	s.logger.Info("Test email sent", zap.String("to", to))
	return nil
}
