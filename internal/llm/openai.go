package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/oceanair/partner-report/internal/config"
)

// OpenAI client implementation
type OpenAI struct {
	client *openai.Client
}

func NewOpenAI(cfg config.ProviderConfig, opts ...option.RequestOption) *OpenAI {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retries belong to RetryPolicy; the SDK's own would multiply them.
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.Endpoint != "" {
		// The SDK resolves paths relative to the base URL, so without the
		// trailing slash "/v1" would be dropped.
		base = append(base, option.WithBaseURL(strings.TrimRight(cfg.Endpoint, "/")+"/"))
	}
	return &OpenAI{client: openai.NewClient(append(base, opts...)...)}
}

func (o *OpenAI) Name() string { return config.ProviderOpenAI }

func (o *OpenAI) GenerateText(ctx context.Context, systemPrompt, userPrompt string, opts ...Option) (string, error) {
	options, err := applyOptions(userPrompt, opts)
	if err != nil {
		return "", err
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.F(options.Model),
		Messages: openai.F(messages),
	}
	if options.Temperature != nil {
		params.Temperature = openai.F(*options.Temperature)
	}
	if options.MaxTokens != nil {
		params.MaxTokens = openai.F(*options.MaxTokens)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fromOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// fromOpenAIError converts SDK errors into *APIError; transport errors pass through.
func fromOpenAIError(err error) error {
	var sdkErr *openai.Error
	if !errors.As(err, &sdkErr) {
		return err
	}
	apiErr := &APIError{
		Provider: config.ProviderOpenAI,
		Status:   sdkErr.StatusCode,
		Code:     sdkErr.Code,
		Message:  sdkErr.Message,
	}
	if sdkErr.Response != nil {
		apiErr.RetryAfter = parseRetryAfter(sdkErr.Response.Header)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(sdkErr.StatusCode)
	}
	return apiErr
}
