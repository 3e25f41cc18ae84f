package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serviceFixture struct {
	validator *stubValidator
	extractor *fakeExtractor
	cache     *fakeCache
	drafter   *fakeDrafter
	relay     *fakeRelay
	log       *fakeLog
	service   *ApplicationService
}

func newServiceFixture() *serviceFixture {
	app := &Application{
		Resume:         Document{Name: "cv.pdf", Content: []byte("%PDF-1.4 resume")},
		Sender:         Credentials{Address: "jane@example.com", Password: "secret"},
		Recipients:     RecipientList{To: []string{"a@acme.com", "b@acme.com"}},
		Subject:        "Job Application: Resume Attached",
		JobDescription: "Backend engineer",
		APIKey:         "gsk_abcdefghij0123456789XYZ",
	}

	f := &serviceFixture{
		validator: &stubValidator{app: app},
		extractor: &fakeExtractor{text: "Jane Doe\nGo engineer"},
		cache:     &fakeCache{entries: map[string]CacheEntry{}},
		drafter:   &fakeDrafter{result: DraftResult{Body: "Dear Hiring Manager,", Source: DraftGenerated}},
		relay:     &fakeRelay{},
		log:       &fakeLog{},
	}

	dispatcher := NewDispatcher(f.relay, f.log, zap.NewNop(), 0)
	f.service = NewApplicationService(
		f.validator, f.extractor, f.cache, f.drafter, f.relay, dispatcher,
		zap.NewNop(), true, time.Hour, "resume.pdf",
	)
	return f
}

func TestPrepare_DraftsFromExtractedText(t *testing.T) {
	f := newServiceFixture()

	prepared, err := f.service.Prepare(context.Background(), ApplicationRequest{})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe\nGo engineer", prepared.ResumeText)
	assert.Equal(t, "Dear Hiring Manager,", prepared.Draft.Body)
	assert.Equal(t, "Jane Doe\nGo engineer", f.drafter.last.ResumeText)
	assert.Equal(t, "Backend engineer", f.drafter.last.JobDescription)
	assert.Equal(t, "gsk_abcdefghij0123456789XYZ", f.drafter.last.APIKey)
	assert.Empty(t, f.relay.sent, "drafting must not send")
}

func TestPrepare_ValidationFailureHasNoSideEffects(t *testing.T) {
	f := newServiceFixture()
	f.validator.err = &ValidationError{Issues: []FieldIssue{{Field: "to", Reason: "invalid", Entries: []string{"bad"}}}}

	_, err := f.service.Prepare(context.Background(), ApplicationRequest{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"bad"}, verr.Invalid("to"))
	assert.Zero(t, f.extractor.calls)
	assert.Zero(t, f.drafter.calls)
	assert.Empty(t, f.relay.sent)
}

func TestExtractResume_CachedByContent(t *testing.T) {
	f := newServiceFixture()
	doc := Document{Name: "cv.pdf", Content: []byte("%PDF-1.4 resume")}

	first, err := f.service.ExtractResume(context.Background(), doc)
	require.NoError(t, err)
	second, err := f.service.ExtractResume(context.Background(), Document{Name: "renamed.pdf", Content: doc.Content})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.extractor.calls)

	_, err = f.service.ExtractResume(context.Background(), Document{Name: "cv.pdf", Content: []byte("other")})
	require.NoError(t, err)
	assert.Equal(t, 2, f.extractor.calls)
}

func TestExtractResume_NoTextIsExtractionError(t *testing.T) {
	f := newServiceFixture()
	f.extractor.text = "  \n "

	_, err := f.service.ExtractResume(context.Background(), Document{Name: "scan.pdf", Content: []byte("x")})

	var xerr *ExtractionError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "scan.pdf", xerr.Document)
	assert.ErrorIs(t, err, ErrNoText)
	assert.Empty(t, f.cache.entries)
}

func TestExtractResume_WrapsExtractorErrors(t *testing.T) {
	f := newServiceFixture()
	f.extractor.err = errors.New("corrupt xref")

	_, err := f.service.ExtractResume(context.Background(), Document{Name: "cv.pdf", Content: []byte("x")})

	var xerr *ExtractionError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "cv.pdf", xerr.Document)
}

func TestPrepare_GenerationFailureStopsPipeline(t *testing.T) {
	f := newServiceFixture()
	f.drafter.err = &GenerationError{Kind: GenerationTimeout, Err: context.DeadlineExceeded}

	prepared, err := f.service.Prepare(context.Background(), ApplicationRequest{})

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Nil(t, prepared)
	assert.Empty(t, f.relay.sent)
	assert.Empty(t, f.log.entries)
}

func TestPrepare_FallbackDraftIsUsable(t *testing.T) {
	f := newServiceFixture()
	f.drafter.result = DraftResult{Body: "Hello,\n\nBest regards,\nApplicant", Source: DraftFallback}

	prepared, err := f.service.Prepare(context.Background(), ApplicationRequest{})
	require.NoError(t, err)
	assert.Equal(t, DraftFallback, prepared.Draft.Source)
}

func TestSend_EditedBodyGoesToEveryRecipient(t *testing.T) {
	f := newServiceFixture()
	prepared, err := f.service.Prepare(context.Background(), ApplicationRequest{})
	require.NoError(t, err)

	report, err := f.service.Send(context.Background(), prepared.Application, "Edited body")
	require.NoError(t, err)

	assert.True(t, report.AllSucceeded())
	require.Len(t, f.relay.sent, 2)
	for _, env := range f.relay.sent {
		assert.Equal(t, "Edited body", env.Body)
		assert.Equal(t, "resume.pdf", env.AttachmentName)
		assert.Equal(t, "application/pdf", env.AttachmentType)
		assert.Equal(t, []byte("%PDF-1.4 resume"), env.Attachment)
	}
	assert.Len(t, f.log.entries, 2)
}

func TestSend_BlankBodyRejected(t *testing.T) {
	f := newServiceFixture()

	report, err := f.service.Send(context.Background(), f.validator.app, " \n\t")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, report)
	assert.Empty(t, f.relay.sent)
}

func TestSendTestEmail(t *testing.T) {
	f := newServiceFixture()
	sender := Credentials{Address: "jane@example.com", Password: "secret"}

	require.NoError(t, f.service.SendTestEmail(context.Background(), sender, "jane@example.com"))

	require.Len(t, f.relay.sent, 1)
	env := f.relay.sent[0]
	assert.Equal(t, TestEmailSubject, env.Subject)
	assert.Equal(t, TestEmailBody, env.Body)
	assert.Empty(t, env.AttachmentName)
	assert.Empty(t, f.log.entries, "test messages are not logged")
}

func TestSendTestEmail_InvalidInput(t *testing.T) {
	f := newServiceFixture()
	f.validator.err = &ValidationError{Issues: []FieldIssue{{Field: "to", Reason: "invalid"}}}

	err := f.service.SendTestEmail(context.Background(), Credentials{}, "nope")
	require.Error(t, err)
	assert.Empty(t, f.relay.sent)
}

func TestSendTestEmail_RelayFailure(t *testing.T) {
	f := newServiceFixture()
	f.relay.failFor = map[string]error{"jane@example.com": &DeliveryError{Outcome: OutcomeAuthFailure, Err: errors.New("535")}}

	err := f.service.SendTestEmail(context.Background(), Credentials{Address: "jane@example.com", Password: "x"}, "jane@example.com")

	var derr *DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, OutcomeAuthFailure, derr.Outcome)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]DeliveryAttempt{{Success: true}, {Success: false}, {Success: true}})
	assert.Equal(t, Summary{Total: 3, Succeeded: 2, Failed: 1}, s)
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestDocumentDigest(t *testing.T) {
	a := Document{Name: "a.pdf", Content: []byte("same")}
	b := Document{Name: "b.pdf", Content: []byte("same")}
	c := Document{Name: "a.pdf", Content: []byte("different")}

	assert.Equal(t, a.Digest(), b.Digest())
	assert.NotEqual(t, a.Digest(), c.Digest())
	assert.Len(t, a.Digest(), 64)
}
