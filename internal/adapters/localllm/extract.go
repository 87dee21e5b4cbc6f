package localllm

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/finchley-labs/autodj/internal/core/domain"
)

var errNoObject = errors.New("no JSON object in response")

// extractObject pulls the outermost {...} from free text: markdown code
// fences are stripped, then everything between the first '{' and the
// last '}' is returned. This is a deliberate recoverable-parsing
// strategy for chatty local models, kept behind this one function.
func extractObject(text string) (string, error) {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return "", errNoObject
	}
	return cleaned[start : end+1], nil
}

// wireDirectives accepts both the multi-query contract and the legacy
// single-query shape ({reasoning, search_query}); the legacy form is
// normalized away here so no consumer ever probes for field presence.
type wireDirectives struct {
	Reasoning   string   `json:"reasoning"`
	Queries     []string `json:"queries"`
	QueueSize   int      `json:"queue_size"`
	SearchMode  string   `json:"search_mode"`
	SearchQuery string   `json:"search_query"`
}

// ParseDirectives runs the best-effort structured parse over a model
// response: extract the outermost object, decode, validate that at
// least one non-empty query came out.
func ParseDirectives(text string) (domain.Directives, error) {
	object, err := extractObject(text)
	if err != nil {
		return domain.Directives{}, err
	}

	var wire wireDirectives
	if err := json.Unmarshal([]byte(object), &wire); err != nil {
		return domain.Directives{}, err
	}

	queries := make([]string, 0, len(wire.Queries))
	for _, q := range wire.Queries {
		if strings.TrimSpace(q) != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 && strings.TrimSpace(wire.SearchQuery) != "" {
		queries = append(queries, wire.SearchQuery)
	}

	d := domain.Directives{
		Reasoning: wire.Reasoning,
		Queries:   queries,
		QueueSize: wire.QueueSize,
		Mode:      domain.SearchMode(wire.SearchMode),
	}
	if !d.Valid() {
		return domain.Directives{}, errors.New("response contained no usable query")
	}
	return d, nil
}
