package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	perrors "github.com/matzehuels/pipegraph/pkg/errors"
)

// Defaults for [AnthropicOptions].
const (
	DefaultModel     = "claude-sonnet-4-5"
	DefaultMaxTokens = 1024
)

// AnthropicOptions configures the Messages API client.
type AnthropicOptions struct {
	APIKey    string // falls back to ANTHROPIC_API_KEY
	Model     string
	MaxTokens int64
	System    string
}

// Anthropic completes prompts with the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	system    string
}

var _ Completer = (*Anthropic)(nil)

// NewAnthropic creates a client. Extra request options (base URL, retries,
// HTTP client) are passed through to the SDK.
func NewAnthropic(opts AnthropicOptions, reqOpts ...option.RequestOption) *Anthropic {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	var all []option.RequestOption
	if opts.APIKey != "" {
		all = append(all, option.WithAPIKey(opts.APIKey))
	}
	all = append(all, reqOpts...)
	return &Anthropic{
		client:    anthropic.NewClient(all...),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		system:    opts.System,
	}
}

// Model returns the model name requests are sent to.
func (a *Anthropic) Model() string { return a.model }

// Complete sends prompt as a single user message and returns the text of
// the reply. API failures are returned as coded errors.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if a.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: a.system}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", mapError(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

func mapError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return perrors.Wrap(perrors.ErrCodeTimeout, err, "completion timed out")
		}
		return perrors.Wrap(perrors.ErrCodeNetwork, err, "completion request failed")
	}
	switch code := apiErr.StatusCode; {
	case code == http.StatusTooManyRequests:
		rl := &perrors.RateLimitedError{Message: apiErr.Error()}
		if apiErr.Response != nil {
			rl.RetryAfter, _ = strconv.Atoi(apiErr.Response.Header.Get("Retry-After"))
		}
		return perrors.Wrap(perrors.ErrCodeRateLimited, rl, "completion rate limited")
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "completion rejected credentials (status %d)", code)
	case code >= 500:
		return perrors.Wrap(perrors.ErrCodeNetwork, err, "completion service error (status %d)", code)
	default:
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "completion request rejected (status %d)", code)
	}
}

// Describe formats err for display after a failed run, as "Error: <message>".
func Describe(err error) string {
	return fmt.Sprintf("Error: %s", perrors.UserMessage(err))
}
