// Package recipients parses and validates comma-separated address lists
// and the other user-supplied identifiers of an application request.
package recipients

import (
	"regexp"
	"strings"

	"github.com/mikey/resume-mailer/internal/core"
	"go.uber.org/zap"
)

// Field names used in validation issues
const (
	FieldRequired = "required"
	FieldSender   = "sender"
	FieldTo       = "to"
	FieldCC       = "cc"
	FieldBCC      = "bcc"
	FieldAPIKey   = "api_key"
)

var (
	addressPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	apiKeyPattern  = regexp.MustCompile(`^gsk_[A-Za-z0-9]{20,}$`)
)

// ParseList splits a comma-separated list, trims every entry and drops
// the empty ones. Order and duplicates are preserved.
func ParseList(raw string) []string {
	var entries []string
	for _, part := range strings.Split(raw, ",") {
		if entry := strings.TrimSpace(part); entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Partition splits entries into valid and invalid addresses, keeping order
func Partition(entries []string) (valid, invalid []string) {
	for _, entry := range entries {
		if IsValidAddress(entry) {
			valid = append(valid, entry)
		} else {
			invalid = append(invalid, entry)
		}
	}
	return valid, invalid
}

// IsValidAddress checks the localpart@domain.tld grammar
func IsValidAddress(addr string) bool {
	return addressPattern.MatchString(addr)
}

// IsValidAPIKey checks the generation service credential format
func IsValidAPIKey(key string) bool {
	return apiKeyPattern.MatchString(key)
}

// Validator checks application requests before anything is sent
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a new request validator
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate checks every field of the request and reports all problems at once
func (v *Validator) Validate(req core.ApplicationRequest) (*core.Application, error) {
	var issues []core.FieldIssue

	sender := strings.TrimSpace(req.Sender.Address)
	to := ParseList(req.Recipients)
	subject := strings.TrimSpace(req.Subject)

	var missing []string
	if len(req.Resume.Content) == 0 {
		missing = append(missing, "Resume file")
	}
	if sender == "" {
		missing = append(missing, "Sender email")
	}
	if req.Sender.Password == "" {
		missing = append(missing, "App password")
	}
	if len(to) == 0 {
		missing = append(missing, "HR email(s)")
	}
	if subject == "" {
		missing = append(missing, "Email subject")
	}
	if len(missing) > 0 {
		issues = append(issues, core.FieldIssue{
			Field:   FieldRequired,
			Reason:  "missing required fields",
			Entries: missing,
		})
	}

	if sender != "" && !IsValidAddress(sender) {
		issues = append(issues, core.FieldIssue{
			Field:   FieldSender,
			Reason:  "invalid sender email format",
			Entries: []string{sender},
		})
	}

	validTo, issue := checkList(FieldTo, "invalid HR email format", to)
	issues = appendIssue(issues, issue)
	validCC, issue := checkList(FieldCC, "invalid CC email format", ParseList(req.CC))
	issues = appendIssue(issues, issue)
	validBCC, issue := checkList(FieldBCC, "invalid BCC email format", ParseList(req.BCC))
	issues = appendIssue(issues, issue)

	if issue := checkAPIKey(req.APIKey); issue != nil {
		issues = append(issues, *issue)
	}

	if len(issues) > 0 {
		return nil, &core.ValidationError{Issues: issues}
	}

	if v.logger != nil {
		v.logger.Debug("Request validated",
			zap.String("sender", sender),
			zap.Strings("to", validTo),
			zap.Int("cc", len(validCC)),
			zap.Int("bcc", len(validBCC)))
	}

	return &core.Application{
		Resume: req.Resume,
		Sender: core.Credentials{
			Address:  sender,
			Password: req.Sender.Password,
		},
		Recipients: core.RecipientList{
			To:  validTo,
			CC:  validCC,
			BCC: validBCC,
		},
		Subject:        subject,
		JobDescription: strings.TrimSpace(req.JobDescription),
		APIKey:         strings.TrimSpace(req.APIKey),
	}, nil
}

// ValidateTestEmail checks the inputs of a relay test message
func (v *Validator) ValidateTestEmail(sender core.Credentials, to string) error {
	var issues []core.FieldIssue

	address := strings.TrimSpace(sender.Address)
	if address == "" || sender.Password == "" {
		issues = append(issues, core.FieldIssue{
			Field:  FieldRequired,
			Reason: "sender email and app password are required",
		})
	} else if !IsValidAddress(address) {
		issues = append(issues, core.FieldIssue{
			Field:   FieldSender,
			Reason:  "invalid sender email format",
			Entries: []string{address},
		})
	}

	to = strings.TrimSpace(to)
	if !IsValidAddress(to) {
		issues = append(issues, core.FieldIssue{
			Field:   FieldTo,
			Reason:  "invalid test recipient email format",
			Entries: []string{to},
		})
	}

	if len(issues) > 0 {
		return &core.ValidationError{Issues: issues}
	}
	return nil
}

func checkList(field, reason string, entries []string) ([]string, *core.FieldIssue) {
	valid, invalid := Partition(entries)
	if len(invalid) == 0 {
		return valid, nil
	}
	return nil, &core.FieldIssue{Field: field, Reason: reason, Entries: invalid}
}

func appendIssue(issues []core.FieldIssue, issue *core.FieldIssue) []core.FieldIssue {
	if issue == nil {
		return issues
	}
	return append(issues, *issue)
}

// checkAPIKey never echoes the key itself
func checkAPIKey(raw string) *core.FieldIssue {
	key := strings.TrimSpace(raw)
	switch {
	case key == "":
		return &core.FieldIssue{Field: FieldAPIKey, Reason: "no API key provided"}
	case !IsValidAPIKey(key):
		return &core.FieldIssue{
			Field:  FieldAPIKey,
			Reason: "API key format looks invalid: it must start with 'gsk_' followed by at least 20 letters or digits",
		}
	}
	return nil
}
