package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"fenced", "结果如下:\n```json\n{\"a\": 1}\n```\n", `{"a": 1}`},
		{"trailing comma", `prefix {"tags": ["x", "y",],} suffix`, `{"tags": ["x", "y"]}`},
		{"none", "no json here", ""},
		{"comma inside string", `{"text":"Options: (a, b, ]) and {x, }"}`, `{"text":"Options: (a, b, ]) and {x, }"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.input))
		})
	}
}

func TestDecodeModelJSON(t *testing.T) {
	var out severityResponse
	require.NoError(t, decodeModelJSON("```json\n{\"severity\":\"HIGH\"}\n```", &out))
	assert.Equal(t, "HIGH", out.Severity)

	var rewrite rewriteBody
	require.NoError(t, decodeModelJSON(`{"text":"Options: (a, b, ]) and {x, }"}`, &rewrite))
	assert.Equal(t, "Options: (a, b, ]) and {x, }", rewrite.Text)

	err := decodeModelJSON("抱歉", &out)
	assert.True(t, IsFatal(err))
}
