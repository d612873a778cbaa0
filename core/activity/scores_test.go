package activity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeScores(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ScoreMap
		wantErr bool
	}{
		{name: "empty", raw: "", want: ScoreMap{}},
		{name: "null", raw: "null", want: ScoreMap{}},
		{name: "empty object", raw: "{}", want: ScoreMap{}},
		{name: "empty string payload", raw: `""`, want: ScoreMap{}},
		{
			name: "plain object",
			raw:  `{"Bob": {"Alice": [5, 4, 3, 2]}}`,
			want: ScoreMap{"Bob": {"Alice": {5, 4, 3, 2}}},
		},
		{
			// the mobile client stores the whole map JSON-encoded as a string
			name: "string wrapped object",
			raw:  `"{\"Bob\": {\"Alice\": [5, 4, 3, 2]}}"`,
			want: ScoreMap{"Bob": {"Alice": {5, 4, 3, 2}}},
		},
		{
			// and the inner tuples JSON-encoded as strings again
			name: "string wrapped tuples",
			raw:  `"{\"Bob\": {\"Alice\": \"[5,4,3,2]\", \"Carol\": \"[2,2,2,2]\"}}"`,
			want: ScoreMap{"Bob": {"Alice": {5, 4, 3, 2}, "Carol": {2, 2, 2, 2}}},
		},
		{
			name: "malformed tuple dropped",
			raw:  `{"Bob": {"Alice": [5, 4, 3], "Carol": [2, 2, 2, 2]}}`,
			want: ScoreMap{"Bob": {"Carol": {2, 2, 2, 2}}},
		},
		{
			name: "non-numeric tuple dropped",
			raw:  `{"Bob": {"Alice": "oops"}}`,
			want: ScoreMap{"Bob": {}},
		},
		{name: "malformed outer map", raw: `{"Bob": 42}`, wantErr: true},
		{name: "not a map", raw: `[1, 2, 3]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeScores(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			if err != nil {
				t.Fatalf("DecodeScores() failed: %v", err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeDecodeScores(t *testing.T) {
	scores := ScoreMap{
		"Bob":   {"Alice": {5, 4, 3, 2}},
		"Carol": {"Alice": {2, 2, 2, 2}, "Bob": {3, 3, 3, 3}},
	}

	raw, err := EncodeScores(scores)
	if err != nil {
		t.Fatalf("EncodeScores() failed: %v", err)
	}
	got, err := DecodeScores(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("DecodeScores() failed: %v", err)
	}
	assert.Equal(t, scores, got)
}
