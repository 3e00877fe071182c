package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONObject(t *testing.T) {
	type payload struct {
		Kind       string  `json:"kind"`
		Confidence float64 `json:"confidence"`
	}

	tests := []struct {
		name    string
		raw     string
		wantErr bool
		want    payload
	}{
		{
			name: "plain object",
			raw:  `{"kind":"risk_analysis","confidence":0.9}`,
			want: payload{Kind: "risk_analysis", Confidence: 0.9},
		},
		{
			name: "fenced json block",
			raw:  "```json\n{\"kind\":\"reporting\",\"confidence\":0.8}\n```",
			want: payload{Kind: "reporting", Confidence: 0.8},
		},
		{
			name: "surrounding prose",
			raw:  `Here is the classification: {"kind":"general","confidence":0.5} hope that helps!`,
			want: payload{Kind: "general", Confidence: 0.5},
		},
		{
			name:    "no object",
			raw:     "I could not classify that.",
			wantErr: true,
		},
		{
			name:    "malformed object",
			raw:     `{"kind": "general", "confidence": }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := DecodeJSONObject(tt.raw, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
