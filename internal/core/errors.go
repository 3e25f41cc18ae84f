package core

import (
	"fmt"
	"strings"
)

// FieldIssue describes everything wrong with one input field
type FieldIssue struct {
	Field   string
	Reason  string
	Entries []string
}

func (i FieldIssue) String() string {
	if len(i.Entries) == 0 {
		return fmt.Sprintf("%s: %s", i.Field, i.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", i.Field, i.Reason, strings.Join(i.Entries, ", "))
}

// ValidationError is returned when a request is rejected before any side effect
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid returns the rejected entries for a field
func (e *ValidationError) Invalid(field string) []string {
	var out []string
	for _, issue := range e.Issues {
		if issue.Field == field {
			out = append(out, issue.Entries...)
		}
	}
	return out
}

// ExtractionError is returned when a document yields no usable text
type ExtractionError struct {
	Document string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %q: %v", e.Document, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// GenerationKind classifies drafting failures
type GenerationKind string

const (
	GenerationStatus     GenerationKind = "status"
	GenerationTimeout    GenerationKind = "timeout"
	GenerationUnexpected GenerationKind = "unexpected"
)

// GenerationError means no usable draft was produced and nothing may be sent
type GenerationError struct {
	Kind       GenerationKind
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case GenerationStatus:
		return fmt.Sprintf("generation service returned status %d: %v", e.StatusCode, e.Err)
	case GenerationTimeout:
		return fmt.Sprintf("generation request timed out: %v", e.Err)
	default:
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// DeliveryError is a classified relay failure for one recipient
type DeliveryError struct {
	Outcome   Outcome
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	switch e.Outcome {
	case OutcomeAuthFailure:
		return fmt.Sprintf("Authentication failed: %v", e.Err)
	case OutcomeRecipientRefused:
		return fmt.Sprintf("Recipient %s refused: %v", e.Recipient, e.Err)
	case OutcomeProtocolFailure:
		return fmt.Sprintf("SMTP error: %v", e.Err)
	default:
		return fmt.Sprintf("Unexpected error: %v", e.Err)
	}
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
