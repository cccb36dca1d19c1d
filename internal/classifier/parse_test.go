package classifier

import (
	"testing"

	"github.com/moodmeter/moodmeter/internal/mood"
)

func TestParseResult(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    Result
		wantErr bool
	}{
		{
			name:  "plain json",
			input: `{"label": "POSITIVE", "confidence": 0.95}`,
			want:  Result{Label: mood.Positive, Confidence: 0.95},
		},
		{
			name:  "fenced json",
			input: "```json\n{\"label\": \"NEGATIVE\", \"confidence\": 0.7}\n```",
			want:  Result{Label: mood.Negative, Confidence: 0.7},
		},
		{
			name:  "bare fence",
			input: "```\n{\"label\": \"NEUTRAL\", \"confidence\": 0.5}\n```",
			want:  Result{Label: mood.Neutral, Confidence: 0.5},
		},
		{
			name:  "surrounding whitespace",
			input: "  {\"label\": \"POSITIVE\", \"confidence\": 1}\n",
			want:  Result{Label: mood.Positive, Confidence: 1},
		},
		{
			name:    "invalid label",
			input:   `{"label": "MIXED", "confidence": 0.5}`,
			wantErr: true,
		},
		{
			name:    "confidence above one",
			input:   `{"label": "POSITIVE", "confidence": 1.2}`,
			wantErr: true,
		},
		{
			name:    "negative confidence",
			input:   `{"label": "POSITIVE", "confidence": -0.1}`,
			wantErr: true,
		},
		{
			name:    "not json",
			input:   "the message is positive",
			wantErr: true,
		},
		{
			name:    "empty response",
			input:   "",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseResult(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseResult(%q) expected error, got %+v", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseResult(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("parseResult(%q) = %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}
