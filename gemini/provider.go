// Package gemini implements structured data extraction using Google Gemini.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/pagemine"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Ensure Provider implements pagemine.Provider at compile time.
var _ pagemine.Provider = (*Provider)(nil)

// Config holds explicit provider configuration, passed once at construction.
type Config struct {
	// Model names the Gemini model. Empty selects a sensible default.
	Model string

	// Temperature controls sampling. Extraction wants it low; zero selects
	// the default of 0.1.
	Temperature float32
}

// Provider implements pagemine.Provider using Google Gemini.
type Provider struct {
	client *genai.Client
	config Config
}

// NewProvider creates a new Provider.
func NewProvider(client *genai.Client, config Config) *Provider {
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Temperature == 0 {
		config.Temperature = 0.1
	}
	return &Provider{client: client, config: config}
}

// Extract sends content to Gemini and recovers structured items from the
// response. Transport and model failures are returned as errors; the
// pipeline decides what to do with them.
func (p *Provider) Extract(ctx context.Context, content, instruction string, schema map[string]any) ([]pagemine.Item, error) {
	if strings.TrimSpace(content) == "" {
		return nil, pagemine.Errorf(pagemine.EINVALID, "content required")
	}
	if instruction == "" {
		return nil, pagemine.Errorf(pagemine.EINVALID, "instruction required")
	}

	result, err := p.client.Models.GenerateContent(ctx, p.config.Model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: content}},
		}},
		p.buildConfig(instruction, schema),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, pagemine.Errorf(pagemine.EINTERNAL, "gemini returned nil result")
	}

	v, err := pagemine.ExtractJSON(result.Text())
	if err != nil {
		return nil, err
	}
	return pagemine.Normalize(v), nil
}

// buildConfig returns the GenerateContentConfig for extraction calls.
func (p *Provider) buildConfig(instruction string, schema map[string]any) *genai.GenerateContentConfig {
	temp := p.config.Temperature
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: pagemine.BuildInstruction(instruction, schema),
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}
