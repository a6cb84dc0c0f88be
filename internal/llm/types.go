package llm

import (
	"context"
	"errors"
)

var (
	errModelRequired  = errors.New("model is required")
	errPromptRequired = errors.New("user prompt is required")
)

// Provider generates plain text from a hosted language model.
type Provider interface {
	// Name is the provider family, "openai" or "gemini".
	Name() string

	// GenerateText sends one system/user exchange and returns the generated text.
	// An empty system prompt is left out of the request. A successful call may
	// return an empty string; callers decide whether that is a failure.
	GenerateText(ctx context.Context, systemPrompt, userPrompt string, opts ...Option) (string, error)
}

type Option func(*Options)

// Options holds the sampling parameters for a single call. Nil fields are
// omitted from the request rather than sent as zero values.
type Options struct {
	Model       string
	MaxTokens   *int64
	Temperature *float64
}

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = &t }
}

func WithMaxTokens(n int64) Option {
	return func(o *Options) { o.MaxTokens = &n }
}

func applyOptions(userPrompt string, opts []Option) (Options, error) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	if options.Model == "" {
		return options, errModelRequired
	}
	if userPrompt == "" {
		return options, errPromptRequired
	}
	return options, nil
}
