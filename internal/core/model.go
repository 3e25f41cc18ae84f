package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"
)

// TimestampLayout is the layout used for delivery attempt timestamps
const TimestampLayout = "2006-01-02 15:04:05"

// Document represents an uploaded resume
type Document struct {
	Name    string
	Content []byte
}

// Digest returns the content identity used to memoize extraction
func (d Document) Digest() string {
	sum := sha256.Sum256(d.Content)
	return hex.EncodeToString(sum[:])
}

// Credentials identify the sender on the mail relay
type Credentials struct {
	Address  string
	Password string
}

// RecipientList holds validated recipients in input order.
// Duplicates are kept: each occurrence is an independent delivery.
type RecipientList struct {
	To  []string
	CC  []string
	BCC []string
}

// ApplicationRequest is the raw input for one generation-and-delivery cycle.
// It is built once by the caller and passed by value.
type ApplicationRequest struct {
	Resume         Document
	Sender         Credentials
	Recipients     string
	CC             string
	BCC            string
	Subject        string
	JobDescription string
	APIKey         string
}

// Application is a request that passed validation
type Application struct {
	Resume         Document
	Sender         Credentials
	Recipients     RecipientList
	Subject        string
	JobDescription string
	APIKey         string
}

// DraftRequest is the input to the drafting service
type DraftRequest struct {
	ResumeText     string
	JobDescription string
	Subject        string
	APIKey         string
}

// DraftSource tells where a draft body came from
type DraftSource string

const (
	// DraftGenerated is a body produced by the generation service
	DraftGenerated DraftSource = "generated"
	// DraftFallback is the fixed template used when the credential is rejected
	DraftFallback DraftSource = "fallback"
)

// DraftResult is a usable email body
type DraftResult struct {
	Body   string
	Source DraftSource
}

// Outcome classifies a single delivery attempt
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeAuthFailure      Outcome = "authentication_failure"
	OutcomeRecipientRefused Outcome = "recipient_refused"
	OutcomeProtocolFailure  Outcome = "protocol_failure"
	OutcomeUnexpected       Outcome = "unexpected_failure"
)

// DeliveryAttempt records one recipient-scoped send.
// The JSON form is the send log line format.
type DeliveryAttempt struct {
	BatchID        string  `json:"batch_id,omitempty"`
	To             string  `json:"to"`
	Subject        string  `json:"subject"`
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	Timestamp      string  `json:"timestamp"`
	Outcome        Outcome `json:"outcome,omitempty"`
	BodyLength     int     `json:"body_length"`
	AttachmentSize int64   `json:"attachment_size"`
}

// AttachmentSource opens a fresh reader over the attachment payload
type AttachmentSource interface {
	Open() (io.ReadCloser, error)
}

// BytesAttachment serves an in-memory payload
type BytesAttachment []byte

// Open returns a new reader over the payload
func (b BytesAttachment) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// Attachment is a named binary part
type Attachment struct {
	Name        string
	ContentType string
	Source      AttachmentSource
}

// Envelope is everything the relay needs for one transmission.
// An empty AttachmentName sends a plain text message.
type Envelope struct {
	Sender         Credentials
	To             string
	CC             []string
	BCC            []string
	Subject        string
	Body           string
	AttachmentName string
	AttachmentType string
	Attachment     []byte
}

// Batch is a finalized send operation
type Batch struct {
	Sender     Credentials
	Recipients RecipientList
	Subject    string
	Body       string
	Attachment Attachment
}

// BatchReport is returned to the caller once a batch completes
type BatchReport struct {
	BatchID   string
	Total     int
	Succeeded int
	Failed    int
	Attempts  []DeliveryAttempt
}

// AllSucceeded reports whether every attempt succeeded
func (r *BatchReport) AllSucceeded() bool {
	return r.Total > 0 && r.Succeeded == r.Total
}

// Summary aggregates a sequence of attempts
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Summarize counts successes and failures
func Summarize(attempts []DeliveryAttempt) Summary {
	s := Summary{Total: len(attempts)}
	for _, a := range attempts {
		if a.Success {
			s.Succeeded++
		}
	}
	s.Failed = s.Total - s.Succeeded
	return s
}

// CacheEntry represents memoized extraction output
type CacheEntry struct {
	Digest    string
	Text      string
	CreatedAt time.Time
	ExpiresAt time.Time
}
