// File: internal/llmutil/parser_test.go
package llmutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	Coherence  int    `json:"coherence"`
	Factuality int    `json:"factuality"`
	Reason     string `json:"explanation"`
}

// TestExtractJSON covers the shapes LLMs actually emit: clean JSON, fenced
// JSON, and JSON buried in conversational filler.
func TestExtractJSON(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"coherence": 7}`,
			want:  `{"coherence": 7}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"coherence\": 7}\n```",
			want:  `{"coherence": 7}`,
		},
		{
			name:  "anonymous fence",
			input: "```\n{\"coherence\": 7}\n```",
			want:  `{"coherence": 7}`,
		},
		{
			name:  "surrounding prose",
			input: "Sure! Here is the evaluation:\n{\"coherence\": 7}\nHope that helps.",
			want:  `{"coherence": 7}`,
		},
		{
			name:    "no object at all",
			input:   "I cannot evaluate this conversation.",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestParseJSONResponse verifies typed extraction end to end.
func TestParseJSONResponse(t *testing.T) {
	t.Run("fenced response parses into struct", func(t *testing.T) {
		raw := "```json\n{\"coherence\": 8, \"factuality\": 6, \"explanation\": \"good\"}\n```"
		got, err := ParseJSONResponse[verdict](raw)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Coherence)
		assert.Equal(t, 6, got.Factuality)
		assert.Equal(t, "good", got.Reason)
	})

	t.Run("invalid JSON surfaces an error with context", func(t *testing.T) {
		_, err := ParseJSONResponse[verdict](`{"coherence": definitely}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshal")
	})
}

// TestTruncate checks the log-safety helper.
func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "", Truncate("abc", 0))
}
