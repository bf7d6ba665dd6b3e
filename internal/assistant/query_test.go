package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citysafe/safewatch/internal/logging"
)

func TestParseQueryResponse(t *testing.T) {
	result := parseQueryResponse(`{"parameters": {"date": "2024-06-15", "location": "Downsview", "incidentType": "shootingIncidents"}}`)
	require.NotNil(t, result.Parameters)
	assert.Equal(t, "2024-06-15", result.Parameters.Date)
	assert.Equal(t, "Downsview", result.Parameters.Location)
	assert.Equal(t, "shootingIncidents", result.Parameters.IncidentType)
}

func TestParseQueryResponseFenced(t *testing.T) {
	result := parseQueryResponse("```json\n{\"parameters\": {\"location\": \"Rexdale\"}}\n```")
	require.NotNil(t, result.Parameters)
	assert.Equal(t, "Rexdale", result.Parameters.Location)
	assert.Empty(t, result.Parameters.Date)
}

func TestParseQueryResponseInvalid(t *testing.T) {
	result := parseQueryResponse("I could not find any parameters in that question.")
	assert.Nil(t, result.Parameters)
}

func TestQueryParserParse(t *testing.T) {
	completer := &stubCompleter{reply: `{"parameters": {"date": "2024-01-01"}}`}
	parser := NewQueryParser(completer, logging.Nop())

	result, err := parser.Parse(context.Background(), "what happens on new year's day?")
	require.NoError(t, err)
	require.NotNil(t, result.Parameters)
	assert.Equal(t, "2024-01-01", result.Parameters.Date)
	assert.Contains(t, completer.prompt, "what happens on new year's day?")
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFence(tt.in))
	}
}
