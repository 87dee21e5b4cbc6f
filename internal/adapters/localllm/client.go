// Package localllm adapts any OpenAI-chat-completions-compatible
// endpoint (LM Studio, Ollama's compatibility layer, llama.cpp server)
// as a directive model. Local models cannot be trusted to honor a JSON
// schema, so the response is parsed permissively: markdown fences are
// stripped and the outermost brace pair is extracted before decoding.
package localllm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/finchley-labs/autodj/internal/core/domain"
	"github.com/finchley-labs/autodj/internal/core/ports"
)

// Client is a directive model backed by a local OpenAI-compatible server.
type Client struct {
	api   openai.Client
	model string
}

var _ ports.DirectiveModel = (*Client)(nil)

// NewClient builds a client for the endpoint at baseURL (e.g.
// "http://localhost:1234/v1"). apiKey may be empty for servers that do
// not check it.
func NewClient(baseURL, apiKey, model string) *Client {
	opts := []option.RequestOption{option.WithBaseURL(baseURL)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &Client{
		api:   openai.NewClient(opts...),
		model: model,
	}
}

func (c *Client) Name() string {
	return "local:" + c.model
}

// GenerateDirectives sends the prompt as a plain chat completion and
// extracts a directives object from whatever came back.
func (c *Client) GenerateDirectives(ctx context.Context, prompt string) (domain.Directives, error) {
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return domain.Directives{}, fmt.Errorf("localllm: %s: %w", c.model, err)
	}

	if len(completion.Choices) == 0 {
		return domain.Directives{}, fmt.Errorf("localllm: %s: empty response", c.model)
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return domain.Directives{}, fmt.Errorf("localllm: %s: empty completion", c.model)
	}

	d, err := ParseDirectives(content)
	if err != nil {
		return domain.Directives{}, fmt.Errorf("localllm: %s: %w", c.model, err)
	}
	return d, nil
}
