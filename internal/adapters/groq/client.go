package groq

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mikey/resume-mailer/internal/core"
	"github.com/mikey/resume-mailer/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// FallbackBody is returned when the generation service rejects the API key
const FallbackBody = "Hello,\n\n" +
	"I am writing to apply for the position. Please find my resume attached.\n\n" +
	"Thank you for your time and consideration.\n\n" +
	"Best regards,\nApplicant"

const defaultJobDescription = "General position application"

const promptFormat = `
You are a career assistant. Draft a professional job application email.
Use the following RESUME and JOB DESCRIPTION:

RESUME:
%s

JOB DESCRIPTION:
%s

EMAIL SUBJECT:
%s

Requirements:
- Keep the email professional and concise
- Highlight relevant skills from the resume
- Mention that the resume is attached
- Include a proper greeting and closing
- Make it personalized but not overly casual
`

// Client drafts application emails through an OpenAI-compatible chat endpoint
type Client struct {
	baseURL       string
	modelName     string
	maxTokens     int
	temperature   float32
	timeout       time.Duration
	resumeBudget  int
	httpClient    openai.HTTPDoer
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClient creates a new drafting client
func NewClient(
	baseURL string,
	modelName string,
	maxTokens int,
	temperature float32,
	timeout time.Duration,
	resumeBudget int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Client {
	return &Client{
		baseURL:       baseURL,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		timeout:       timeout,
		resumeBudget:  resumeBudget,
		httpClient:    okOnly{&http.Client{Timeout: timeout}},
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// BuildPrompt renders the instruction sent to the model
func (c *Client) BuildPrompt(req core.DraftRequest) string {
	jobDesc := strings.TrimSpace(req.JobDescription)
	if jobDesc == "" {
		jobDesc = defaultJobDescription
	}
	resume := c.textProcessor.TruncateRunes(req.ResumeText, c.resumeBudget)
	return fmt.Sprintf(promptFormat, resume, jobDesc, req.Subject)
}

// Draft asks the model for an application email
func (c *Client) Draft(ctx context.Context, req core.DraftRequest) (core.DraftResult, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return core.DraftResult{}, &core.GenerationError{
			Kind: core.GenerationUnexpected,
			Err:  errors.New("no API key provided"),
		}
	}

	cfg := openai.DefaultConfig(req.APIKey)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(cfg)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("Requesting email draft",
		zap.String("model", c.modelName),
		zap.Int("resume_length", len(req.ResumeText)))

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: c.BuildPrompt(req),
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		status := statusCode(err)
		if status == http.StatusUnauthorized {
			c.logger.Warn("Generation service rejected the API key, using fallback template")
			return core.DraftResult{Body: FallbackBody, Source: core.DraftFallback}, nil
		}
		return core.DraftResult{}, classify(err, status)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return core.DraftResult{}, &core.GenerationError{
			Kind: core.GenerationUnexpected,
			Err:  errors.New("empty response from generation service"),
		}
	}

	return core.DraftResult{
		Body:   resp.Choices[0].Message.Content,
		Source: core.DraftGenerated,
	}, nil
}

// StatusError reports a response status other than 200 that the
// OpenAI client would otherwise accept
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status from generation service: %d", e.StatusCode)
}

// okOnly treats every 2xx status except 200 as a failure
type okOnly struct {
	doer openai.HTTPDoer
}

func (d okOnly) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.doer.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode > http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func classify(err error, status int) *core.GenerationError {
	if status != 0 {
		return &core.GenerationError{Kind: core.GenerationStatus, StatusCode: status, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &core.GenerationError{Kind: core.GenerationTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &core.GenerationError{Kind: core.GenerationTimeout, Err: err}
	}
	return &core.GenerationError{Kind: core.GenerationUnexpected, Err: err}
}

var _ core.Drafter = (*Client)(nil)
