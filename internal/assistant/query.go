package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/citysafe/safewatch/internal/logging"
)

// QueryParams holds the parameters extracted from a natural language
// prediction query. Absent parameters stay empty.
type QueryParams struct {
	Date         string `json:"date,omitempty"`
	Location     string `json:"location,omitempty"`
	IncidentType string `json:"incidentType,omitempty"`
}

// ParseQueryResult wraps the extracted parameters. Parameters is nil when
// the model response could not be parsed.
type ParseQueryResult struct {
	Parameters *QueryParams `json:"parameters"`
}

// QueryParser extracts prediction parameters from free-form questions.
type QueryParser struct {
	completer Completer
	logger    logging.Logger
}

// NewQueryParser creates a query parser.
func NewQueryParser(completer Completer, log logging.Logger) *QueryParser {
	return &QueryParser{completer: completer, logger: log}
}

const parseQueryPrompt = `You are an AI assistant that extracts parameters from natural language queries about safety predictions in Toronto.

Extract the following information from this query (if present):
1. Date (in YYYY-MM-DD format)
2. Location (specific neighborhood or division in Toronto)
3. Incident type (fatal accident, shooting, homicide, break and enter, pedestrian injury)

Current query: %q

Respond with a JSON object containing only these extracted parameters. If a parameter is not found, omit it from the response:
{
  "parameters": {
    "date": "YYYY-MM-DD",
    "location": "neighborhood name",
    "incidentType": "type of incident"
  }
}`

// Parse extracts prediction parameters from the query. An unparseable model
// response yields nil Parameters, not an error; only transport failures are
// errors.
func (p *QueryParser) Parse(ctx context.Context, query string) (*ParseQueryResult, error) {
	if p.completer == nil {
		return nil, fmt.Errorf("query parser is not configured")
	}

	text, err := p.completer.Complete(ctx, "", fmt.Sprintf(parseQueryPrompt, query))
	if err != nil {
		return nil, err
	}

	result := parseQueryResponse(text)
	if result.Parameters == nil {
		p.logger.Warn("Query parse response was not valid JSON",
			logging.String("query", query),
		)
	}
	return result, nil
}

// parseQueryResponse decodes the model's JSON reply, tolerating markdown
// code fences around the object.
func parseQueryResponse(text string) *ParseQueryResult {
	var result ParseQueryResult
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &result); err != nil {
		return &ParseQueryResult{Parameters: nil}
	}
	return &result
}

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
