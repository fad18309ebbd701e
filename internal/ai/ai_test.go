package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessages struct {
	reply  string
	err    error
	params anthropic.MessageNewParams
}

func (f *fakeMessages) New(_ context.Context, body anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.params = body
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.Message{Content: []anthropic.ContentBlockUnion{{Type: "text", Text: f.reply}}}, nil
}

func newTestClient(f *fakeMessages) *Client {
	c := New(Config{Model: "test-model", MaxTokens: 100})
	c.msgs = f
	return c
}

func TestNotConfigured(t *testing.T) {
	c := New(Config{})
	assert.False(t, c.Configured())

	_, err := c.ExpandKeywords(context.Background(), "seo")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.GenerateEmail(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestExpandKeywords(t *testing.T) {
	f := &fakeMessages{reply: "```\n1. link building, SEO tools\n2. Link Building\n\"guest posts\"\n```"}
	c := newTestClient(f)

	got, err := c.ExpandKeywords(context.Background(), "seo, links")
	require.NoError(t, err)
	assert.Equal(t, "link building, SEO tools, guest posts", got)

	assert.Equal(t, anthropic.Model("test-model"), f.params.Model)
	assert.Equal(t, int64(100), f.params.MaxTokens)
	assert.Empty(t, f.params.System)
	require.Len(t, f.params.Messages, 1)
}

func TestGenerateEmail(t *testing.T) {
	f := &fakeMessages{reply: "  SUBJECT: Hello\nBODY: Hi there  "}
	c := newTestClient(f)

	got, err := c.GenerateEmail(context.Background(), "write it")
	require.NoError(t, err)
	assert.Equal(t, "SUBJECT: Hello\nBODY: Hi there", got)
	require.Len(t, f.params.System, 1)
	assert.Equal(t, emailSystemPrompt, f.params.System[0].Text)
}

func TestCompleteErrors(t *testing.T) {
	c := newTestClient(&fakeMessages{reply: "   "})
	_, err := c.GenerateEmail(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.ErrorIs(t, err, ErrUpstream)

	upstream := errors.New("overloaded")
	c = newTestClient(&fakeMessages{err: upstream})
	_, err = c.ExpandKeywords(context.Background(), "p")
	assert.ErrorIs(t, err, upstream)
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = New(Config{}).GenerateEmail(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NotErrorIs(t, err, ErrUpstream)
}

func TestNormalizeKeywords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain list", "a, b, c", "a, b, c"},
		{"fenced with language", "Here you go:\n```text\nx, y\n```", "x, y"},
		{"numbered lines", "1. alpha\n2) beta\n3. gamma", "alpha, beta, gamma"},
		{"quotes and blanks", `"one", , 'two',`, "one, two"},
		{"case-insensitive dedupe keeps first", "SEO, seo, Seo tips", "SEO, Seo tips"},
		{"nothing usable", " , ,\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKeywords(tt.raw))
		})
	}
}
