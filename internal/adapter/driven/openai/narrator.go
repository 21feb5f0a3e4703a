// Package openai implements the Narrator port on top of an OpenAI-compatible
// chat completion API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
	"github.com/ericfisherdev/repoanalyzer/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Narrator = (*Narrator)(nil)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = goopenai.GPT4oMini

	// DefaultTimeout bounds a single completion call.
	DefaultTimeout = 60 * time.Second

	systemRole = "You are an AI assistant that analyzes GitHub repository metrics and provides insights."
)

// errEmptyCompletion is returned when the provider answers without any choice.
var errEmptyCompletion = errors.New("completion returned no choices")

// Narrator implements driven.Narrator with a chat completion call per metric record.
type Narrator struct {
	client  *goopenai.Client
	model   string
	timeout time.Duration
}

// Option configures optional Narrator behavior.
type Option func(*narratorOptions)

type narratorOptions struct {
	model   string
	baseURL string
	timeout time.Duration
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(o *narratorOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL points the client at another OpenAI-compatible endpoint. The URL
// must include the API version path, e.g. "https://api.openai.com/v1".
func WithBaseURL(baseURL string) Option {
	return func(o *narratorOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithTimeout bounds each completion call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *narratorOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// NewNarrator creates a Narrator authenticated with apiKey.
func NewNarrator(apiKey string, opts ...Option) *Narrator {
	o := narratorOptions{model: DefaultModel, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.baseURL, "/")
	}

	return &Narrator{
		client:  goopenai.NewClientWithConfig(cfg),
		model:   o.model,
		timeout: o.timeout,
	}
}

// Summarize asks the model for a short health narrative of m.
func (n *Narrator) Summarize(ctx context.Context, m model.MetricRecord) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	resp, err := n.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: n.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemRole},
			{Role: goopenai.ChatMessageRoleUser, Content: RenderPrompt(m)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// RenderPrompt renders the user prompt for m. The output depends only on m.
func RenderPrompt(m model.MetricRecord) string {
	var b strings.Builder
	b.WriteString("Analyze the following repository metrics and provide insights:\n")
	fmt.Fprintf(&b, "Repository: %s\n", m.RepoName)
	fmt.Fprintf(&b, "Stars: %d\n", m.Stars)
	fmt.Fprintf(&b, "Forks: %d\n", m.Forks)
	fmt.Fprintf(&b, "Open Issues: %d\n", m.OpenIssues)
	fmt.Fprintf(&b, "Closed Issues: %d\n", m.ClosedIssues)
	fmt.Fprintf(&b, "Watchers: %d\n", m.Watchers)
	fmt.Fprintf(&b, "Forks to Stars Ratio: %.2f\n", m.ForksToStarsRatio)
	fmt.Fprintf(&b, "Issues Resolution Rate: %.2f\n", m.IssuesResolutionRate)
	fmt.Fprintf(&b, "Engagement Score: %.2f\n", m.EngagementScore)
	b.WriteString("\nWrite exactly four sentences with a positive, encouraging tone. Cover, in order:\n")
	b.WriteString("1. Overall repository health and popularity\n")
	b.WriteString("2. Community engagement and interest\n")
	b.WriteString("3. Project maintenance and issue management\n")
	b.WriteString("4. Potential areas for improvement\n")
	return b.String()
}
