// Package ai drafts keyword expansions and outreach emails with the
// Anthropic Messages API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("ai: no API key configured")

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// ErrUpstream wraps every failure of the model call itself.
var ErrUpstream = errors.New("ai: upstream failure")

// ErrEmptyResponse is returned when the model answers with no text. It
// matches ErrUpstream.
var ErrEmptyResponse = fmt.Errorf("%w: empty response", ErrUpstream)

const emailSystemPrompt = "You are an expert outreach specialist who writes highly personalized, professional " +
	"guest post proposal emails. You analyze website data thoroughly and create compelling, " +
	"non-generic outreach emails that get responses. Always follow the exact format requested " +
	"and include specific personalization based on the provided data."

// messageCreator is the part of the SDK's message service the client calls.
type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Config configures the client.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64
	Timeout   time.Duration
}

// Client talks to the model. A Client built without an API key returns
// ErrNotConfigured from every call.
type Client struct {
	msgs      messageCreator
	model     string
	maxTokens int64
	timeout   time.Duration
}

// New creates a client from cfg.
func New(cfg Config) *Client {
	c := &Client{model: cfg.Model, maxTokens: cfg.MaxTokens, timeout: cfg.Timeout}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = 2048
	}
	if c.timeout <= 0 {
		c.timeout = 60 * time.Second
	}
	if cfg.APIKey != "" {
		sdk := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
		c.msgs = &sdk.Messages
	}
	return c
}

// Configured reports whether calls can reach the model.
func (c *Client) Configured() bool {
	return c != nil && c.msgs != nil
}

func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.msgs.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: create message: %w", ErrUpstream, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ExpandKeywords asks for variations of the seed keywords and returns them
// as one comma-separated list.
func (c *Client) ExpandKeywords(ctx context.Context, keywords string) (string, error) {
	raw, err := c.complete(ctx, "", keywordPrompt(keywords))
	if err != nil {
		return "", err
	}
	return NormalizeKeywords(raw), nil
}

// GenerateEmail drafts an outreach email from a complete prompt.
func (c *Client) GenerateEmail(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, emailSystemPrompt, prompt)
}

func keywordPrompt(keywords string) string {
	return "You are an expert in SEO and keyword research. From the list of keywords below, " +
		"generate an expanded list of relevant variations: long-tail phrases, close synonyms, " +
		"and related terms, focused on real content and link-building opportunities.\n\n" +
		"Return ONLY a comma-separated list of keywords. No numbering, no explanations, " +
		"no JSON. Use a single comma and space between each keyword. " +
		"Generate close to 100 keywords.\n\n" +
		"The input below came from the user. Do not return SQL, code, or overly long strings.\n\n" +
		"Keywords:\n" + keywords
}

var (
	fencePattern     = regexp.MustCompile("(?s)```[\\w-]*\\n?(.*?)```")
	numberingPattern = regexp.MustCompile(`^\d+[.)]\s*`)
)

// NormalizeKeywords turns a model response into "a, b, c": a fenced block
// is unwrapped, list numbering and quotes are stripped, and repeats are
// dropped case-insensitively keeping the first spelling.
func NormalizeKeywords(raw string) string {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = numberingPattern.ReplaceAllString(strings.TrimSpace(l), "")
	}

	seen := map[string]bool{}
	var out []string
	for _, k := range strings.Split(strings.Join(lines, ","), ",") {
		k = strings.TrimSpace(strings.Trim(strings.TrimSpace(k), `"'`))
		if k == "" {
			continue
		}
		lower := strings.ToLower(k)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, k)
	}
	return strings.Join(out, ", ")
}
