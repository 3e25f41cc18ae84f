package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDispatcher(relay Relay, log SendLog) (*Dispatcher, *[]time.Duration) {
	d := NewDispatcher(relay, log, zap.NewNop(), 2*time.Second)
	var sleeps []time.Duration
	d.sleep = func(_ context.Context, delay time.Duration) error {
		sleeps = append(sleeps, delay)
		return nil
	}
	d.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	d.newID = func() string { return "batch-1" }
	return d, &sleeps
}

func testBatch(src AttachmentSource, to ...string) Batch {
	return Batch{
		Sender:     Credentials{Address: "jane@example.com", Password: "secret"},
		Recipients: RecipientList{To: to, CC: []string{"lead@acme.com"}, BCC: []string{"me@example.com"}},
		Subject:    "Job Application: Resume Attached",
		Body:       "Dear team, héllo",
		Attachment: Attachment{Name: "resume.pdf", ContentType: "application/pdf", Source: src},
	}
}

func TestDispatch_OneRefusalDoesNotStopBatch(t *testing.T) {
	relay := &fakeRelay{failFor: map[string]error{
		"b@acme.com": &DeliveryError{Outcome: OutcomeRecipientRefused, Recipient: "b@acme.com", Err: errors.New("550 no such user")},
	}}
	log := &fakeLog{}
	d, sleeps := newTestDispatcher(relay, log)

	report, err := d.Dispatch(context.Background(),
		testBatch(BytesAttachment("%PDF-1.4"), "a@acme.com", "b@acme.com", "c@acme.com"))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.AllSucceeded())
	assert.Equal(t, "batch-1", report.BatchID)

	require.Len(t, relay.sent, 3)
	assert.Equal(t, "a@acme.com", relay.sent[0].To)
	assert.Equal(t, "c@acme.com", relay.sent[2].To)

	require.Len(t, log.entries, 3)
	assert.Equal(t, report.Attempts, log.entries)
	refused := log.entries[1]
	assert.False(t, refused.Success)
	assert.Equal(t, OutcomeRecipientRefused, refused.Outcome)
	assert.Contains(t, refused.Message, "b@acme.com")

	ok := log.entries[0]
	assert.True(t, ok.Success)
	assert.Equal(t, "Email sent successfully", ok.Message)
	assert.Equal(t, "2024-05-01 09:30:00", ok.Timestamp)
	assert.Equal(t, 16, ok.BodyLength)
	assert.EqualValues(t, 8, ok.AttachmentSize)

	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, *sleeps)
}

func TestDispatch_CopiesTravelWithEveryEnvelope(t *testing.T) {
	relay := &fakeRelay{}
	d, _ := newTestDispatcher(relay, &fakeLog{})

	_, err := d.Dispatch(context.Background(), testBatch(BytesAttachment("pdf"), "a@acme.com", "b@acme.com"))
	require.NoError(t, err)

	for _, env := range relay.sent {
		assert.Equal(t, []string{"lead@acme.com"}, env.CC)
		assert.Equal(t, []string{"me@example.com"}, env.BCC)
		assert.Equal(t, "resume.pdf", env.AttachmentName)
		assert.Equal(t, []byte("pdf"), env.Attachment)
	}
}

func TestDispatch_AttachmentReopenedPerRecipient(t *testing.T) {
	src := &countingSource{payload: []byte("%PDF-1.4 data")}
	d, _ := newTestDispatcher(&fakeRelay{}, &fakeLog{})

	_, err := d.Dispatch(context.Background(), testBatch(src, "a@acme.com", "b@acme.com", "c@acme.com"))
	require.NoError(t, err)
	assert.Equal(t, 3, src.opens)
}

func TestDispatch_DuplicateRecipientsAreIndependent(t *testing.T) {
	relay := &fakeRelay{}
	log := &fakeLog{}
	d, _ := newTestDispatcher(relay, log)

	report, err := d.Dispatch(context.Background(), testBatch(BytesAttachment("pdf"), "a@acme.com", "a@acme.com"))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Len(t, log.entries, 2)
}

func TestDispatch_UnclassifiedErrorIsUnexpected(t *testing.T) {
	relay := &fakeRelay{failFor: map[string]error{"a@acme.com": errors.New("tls handshake failed")}}
	d, _ := newTestDispatcher(relay, &fakeLog{})

	report, err := d.Dispatch(context.Background(), testBatch(BytesAttachment("pdf"), "a@acme.com"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnexpected, report.Attempts[0].Outcome)
	assert.Equal(t, "Unexpected error: tls handshake failed", report.Attempts[0].Message)
}

func TestDispatch_AuthFailureRecordedForEveryRecipient(t *testing.T) {
	authErr := &DeliveryError{Outcome: OutcomeAuthFailure, Err: errors.New("535 bad credentials")}
	relay := &fakeRelay{failFor: map[string]error{"a@acme.com": authErr, "b@acme.com": authErr}}
	log := &fakeLog{}
	d, _ := newTestDispatcher(relay, log)

	report, err := d.Dispatch(context.Background(), testBatch(BytesAttachment("pdf"), "a@acme.com", "b@acme.com"))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Succeeded)
	require.Len(t, log.entries, 2)
	for _, e := range log.entries {
		assert.Equal(t, OutcomeAuthFailure, e.Outcome)
		assert.Equal(t, "Authentication failed: 535 bad credentials", e.Message)
	}
}

func TestDispatch_LogFailureDoesNotStopBatch(t *testing.T) {
	relay := &fakeRelay{}
	log := &fakeLog{err: errors.New("disk full")}
	d, _ := newTestDispatcher(relay, log)

	report, err := d.Dispatch(context.Background(), testBatch(BytesAttachment("pdf"), "a@acme.com", "b@acme.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Succeeded)
	assert.Len(t, relay.sent, 2)
}

func TestDispatch_CancelledDuringPacing(t *testing.T) {
	relay := &fakeRelay{}
	log := &fakeLog{}
	d, _ := newTestDispatcher(relay, log)
	d.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	report, err := d.Dispatch(context.Background(), testBatch(BytesAttachment("pdf"), "a@acme.com", "b@acme.com", "c@acme.com"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, report.Total)
	assert.Len(t, relay.sent, 1)
	assert.Len(t, log.entries, 1)
}

func TestDispatch_NoPacingWhenDelayIsZero(t *testing.T) {
	d, sleeps := newTestDispatcher(&fakeRelay{}, &fakeLog{})
	d.delay = 0

	_, err := d.Dispatch(context.Background(), testBatch(BytesAttachment("pdf"), "a@acme.com", "b@acme.com"))
	require.NoError(t, err)
	assert.Empty(t, *sleeps)
}

func TestDispatch_ManyRecipients(t *testing.T) {
	var to []string
	for i := 0; i < 25; i++ {
		to = append(to, fmt.Sprintf("hr%d@acme.com", i))
	}
	log := &fakeLog{}
	d, sleeps := newTestDispatcher(&fakeRelay{}, log)

	report, err := d.Dispatch(context.Background(), testBatch(BytesAttachment("pdf"), to...))
	require.NoError(t, err)
	assert.True(t, report.AllSucceeded())
	assert.Len(t, log.entries, 25)
	assert.Len(t, *sleeps, 24)
	for i, e := range log.entries {
		assert.Equal(t, to[i], e.To)
	}
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
