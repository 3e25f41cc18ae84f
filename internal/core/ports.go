package core

import (
	"context"
)

// TextExtractor converts a binary document into plain text
type TextExtractor interface {
	// Extract returns the page-ordered text of the document
	Extract(ctx context.Context, doc Document) (string, error)
}

// Drafter produces an email body from a draft request
type Drafter interface {
	// Draft returns a usable body or a *GenerationError
	Draft(ctx context.Context, req DraftRequest) (DraftResult, error)
}

// Relay transmits a single message to the outbound mail relay
type Relay interface {
	// Send delivers the envelope, returning a *DeliveryError on classified failures
	Send(ctx context.Context, env *Envelope) error
}

// SendLog is the durable, append-only history of delivery attempts
type SendLog interface {
	// Append adds attempts after the existing ones
	Append(ctx context.Context, attempts ...DeliveryAttempt) error

	// Load returns every recorded attempt, oldest first
	Load(ctx context.Context) ([]DeliveryAttempt, error)
}

// CacheRepository defines the interface for memoizing extracted text
type CacheRepository interface {
	// Get retrieves a cached entry for a content digest
	Get(ctx context.Context, digest string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, digest string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
