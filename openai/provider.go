// Package openai implements structured data extraction against the OpenAI
// chat completions API. A custom BaseURL makes it work with local
// OpenAI-compatible servers such as LM Studio and Ollama.
package openai

import (
	"context"
	"strings"

	"github.com/fwojciec/pagemine"
	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4o-mini"

var _ pagemine.Provider = (*Provider)(nil)

// Config holds explicit provider configuration.
type Config struct {
	// Model names the chat model. Empty selects a sensible default.
	Model string

	// Temperature controls sampling; zero selects the default of 0.1.
	Temperature float32

	// local marks an OpenAI-compatible bridge rather than the hosted API.
	// Local bridges often reject the json_object response format, so we
	// rely on the instruction alone there.
	local bool
}

// Provider implements pagemine.Provider using the OpenAI chat API.
type Provider struct {
	client *openai.Client
	config Config
}

// NewProvider creates a Provider backed by the hosted OpenAI API.
func NewProvider(apiKey string, config Config) *Provider {
	return newProvider(openai.NewClient(apiKey), config)
}

// NewLocalProvider creates a Provider backed by an OpenAI-compatible server
// at baseURL, e.g. "http://localhost:1234/v1" for LM Studio.
func NewLocalProvider(baseURL string, config Config) *Provider {
	cc := openai.DefaultConfig("not-needed")
	cc.BaseURL = baseURL
	config.local = true
	return newProvider(openai.NewClientWithConfig(cc), config)
}

func newProvider(client *openai.Client, config Config) *Provider {
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Temperature == 0 {
		config.Temperature = 0.1
	}
	return &Provider{client: client, config: config}
}

// Extract sends content to the chat API and recovers structured items from
// the response.
func (p *Provider) Extract(ctx context.Context, content, instruction string, schema map[string]any) ([]pagemine.Item, error) {
	if strings.TrimSpace(content) == "" {
		return nil, pagemine.Errorf(pagemine.EINVALID, "content required")
	}
	if instruction == "" {
		return nil, pagemine.Errorf(pagemine.EINVALID, "instruction required")
	}

	req := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Temperature: p.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: pagemine.BuildInstruction(instruction, schema),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: content,
			},
		},
	}
	if !p.config.local {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, pagemine.Errorf(pagemine.EINTERNAL, "openai returned no choices")
	}

	v, err := pagemine.ExtractJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return pagemine.Normalize(v), nil
}
