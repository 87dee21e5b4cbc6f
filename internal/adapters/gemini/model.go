// Package gemini adapts Google's Gemini API as a directive model. The
// response is constrained to the directives JSON schema, so parsing is
// strict: anything that does not decode into at least one non-empty
// query is an error and the planner moves on.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/finchley-labs/autodj/internal/core/domain"
	"github.com/finchley-labs/autodj/internal/core/ports"
)

// CandidateModels are tried top to bottom. Lite models have higher
// free-tier quotas so they are listed first to reduce the chance of
// hitting rate limits.
var CandidateModels = []string{
	"gemini-2.0-flash-lite",
	"gemini-2.0-flash-lite-001",
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash",
	"gemma-3-4b-it",
}

// NewClient builds a Gemini API client for the given key.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return client, nil
}

// Models wraps every candidate model name into a DirectiveModel, in
// priority order.
func Models(client *genai.Client, names []string) []ports.DirectiveModel {
	models := make([]ports.DirectiveModel, 0, len(names))
	for _, name := range names {
		models = append(models, &Model{client: client, name: name})
	}
	return models
}

// Model is one named Gemini model in the fallback chain.
type Model struct {
	client *genai.Client
	name   string
}

var _ ports.DirectiveModel = (*Model)(nil)

func (m *Model) Name() string { return m.name }

// directivesSchema constrains the completion to the directives contract.
var directivesSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"reasoning":  {Type: genai.TypeString},
		"queries":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"queue_size": {Type: genai.TypeInteger},
		"search_mode": {
			Type: genai.TypeString,
			Enum: []string{string(domain.SearchTracks), string(domain.SearchAlbums)},
		},
	},
	Required: []string{"reasoning", "queries", "queue_size"},
}

type wireDirectives struct {
	Reasoning  string   `json:"reasoning"`
	Queries    []string `json:"queries"`
	QueueSize  int      `json:"queue_size"`
	SearchMode string   `json:"search_mode"`
}

// GenerateDirectives asks the model for a schema-constrained completion
// and decodes it.
func (m *Model) GenerateDirectives(ctx context.Context, prompt string) (domain.Directives, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   directivesSchema,
	}

	result, err := m.client.Models.GenerateContent(ctx, m.name, genai.Text(prompt), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 429 || apiErr.Code == 404) {
			return domain.Directives{}, ports.ModelUnavailableError{Model: m.name, Status: apiErr.Code}
		}
		return domain.Directives{}, fmt.Errorf("gemini: %s: %w", m.name, err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return domain.Directives{}, fmt.Errorf("gemini: %s: empty response", m.name)
	}

	text := result.Candidates[0].Content.Parts[0].Text
	var wire wireDirectives
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return domain.Directives{}, fmt.Errorf("gemini: %s: decode directives: %w", m.name, err)
	}

	d := domain.Directives{
		Reasoning: wire.Reasoning,
		Queries:   wire.Queries,
		QueueSize: wire.QueueSize,
		Mode:      domain.SearchMode(wire.SearchMode),
	}
	if !d.Valid() {
		return domain.Directives{}, fmt.Errorf("gemini: %s: no queries in response", m.name)
	}
	return d, nil
}
