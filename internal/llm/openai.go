package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
)

const (
	DefaultModel            = "gpt-4o"
	DefaultTemperature      = 0.7
	DefaultSummaryMaxTokens = 1000
)

// OpenAIClient implements Generator with OpenAI chat completions.
type OpenAIClient struct {
	client           *openai.Client
	model            string
	temperature      float32
	summaryMaxTokens int
	summaryMaxChars  int
	timeout          time.Duration
	logger           *zap.Logger
}

// Option configures an OpenAIClient.
type Option func(*openaiOptions)

type openaiOptions struct {
	logger     *zap.Logger
	httpClient *http.Client
}

// WithLogger sets a logger for request logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *openaiOptions) { o.logger = l }
}

// WithHTTPClient overrides the HTTP client used to reach the provider.
func WithHTTPClient(c *http.Client) Option {
	return func(o *openaiOptions) { o.httpClient = c }
}

// NewOpenAIClient creates a client from cfg. Without an API key the client is returned
// unconfigured and every call fails with ErrNotConfigured.
func NewOpenAIClient(cfg config.LLMConfig, opts ...Option) *OpenAIClient {
	o := openaiOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &OpenAIClient{
		model:            cfg.Model,
		temperature:      cfg.Temperature,
		summaryMaxTokens: cfg.SummaryMaxTokens,
		summaryMaxChars:  cfg.SummaryMaxChars,
		timeout:          cfg.Timeout,
		logger:           o.logger,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.temperature == 0 {
		c.temperature = DefaultTemperature
	}
	if c.summaryMaxTokens <= 0 {
		c.summaryMaxTokens = DefaultSummaryMaxTokens
	}
	if c.summaryMaxChars <= 0 {
		c.summaryMaxChars = DefaultSummaryMaxChars
	}
	if !cfg.Configured() {
		return c
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if o.httpClient != nil {
		clientCfg.HTTPClient = o.httpClient
	}
	c.client = openai.NewClientWithConfig(clientCfg)
	return c
}

// Configured reports whether an API key was provided.
func (c *OpenAIClient) Configured() bool {
	return c.client != nil
}

// Answer sends the system prompt and the context-bearing user message.
func (c *OpenAIClient) Answer(ctx context.Context, contextText, query, language string) (string, error) {
	return c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(language)},
			{Role: openai.ChatMessageRoleUser, Content: UserMessage(contextText, query)},
		},
		Temperature: c.temperature,
	})
}

// Summarize sends a single user message holding the head of content.
func (c *OpenAIClient) Summarize(ctx context.Context, content string) (string, error) {
	return c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: SummaryPrompt(content, c.summaryMaxChars)},
		},
		MaxTokens: c.summaryMaxTokens,
	})
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if c.client == nil {
		return "", ErrNotConfigured
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Warn("chat completion failed", zap.String("model", req.Model), zap.Error(err))
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrProvider)
	}
	c.logger.Debug("chat completion",
		zap.String("model", req.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}
