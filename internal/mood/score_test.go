package mood_test

import (
	"math"
	"testing"

	"github.com/moodmeter/moodmeter/internal/mood"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestParseLabel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    mood.Label
		wantErr bool
	}{
		{name: "positive", input: "POSITIVE", want: mood.Positive},
		{name: "negative", input: "NEGATIVE", want: mood.Negative},
		{name: "neutral", input: "NEUTRAL", want: mood.Neutral},
		{name: "lowercase rejected", input: "positive", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "unknown rejected", input: "MIXED", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := mood.ParseLabel(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseLabel(%q) expected error, got %v", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLabel(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseLabel(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		label      mood.Label
		confidence float64
		want       float64
	}{
		{name: "positive full confidence", label: mood.Positive, confidence: 1.0, want: 1.0},
		{name: "positive at floor", label: mood.Positive, confidence: 0.333, want: 0.0},
		{name: "positive mid confidence", label: mood.Positive, confidence: 0.5, want: (0.5 - 0.333) / (1 - 0.333)},
		{name: "negative full confidence", label: mood.Negative, confidence: 1.0, want: -1.0},
		{name: "negative at floor", label: mood.Negative, confidence: 0.333, want: 0.0},
		{name: "neutral high confidence", label: mood.Neutral, confidence: 0.8, want: 0.0},
		{name: "neutral full confidence", label: mood.Neutral, confidence: 1.0, want: 0.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := mood.Normalize(tc.label, tc.confidence)
			if !almostEqual(got, tc.want) {
				t.Errorf("Normalize(%v, %v) = %v, want %v", tc.label, tc.confidence, got, tc.want)
			}
		})
	}
}

func TestWeightedChatMood(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		label      mood.Label
		confidence float64
		want       float64
	}{
		{name: "positive full confidence", label: mood.Positive, confidence: 1.0, want: 5.0},
		{name: "positive half confidence", label: mood.Positive, confidence: 0.5, want: 3.75},
		{name: "neutral full confidence", label: mood.Neutral, confidence: 1.0, want: 3.75},
		{name: "neutral half confidence", label: mood.Neutral, confidence: 0.5, want: 3.125},
		{name: "negative full confidence", label: mood.Negative, confidence: 1.0, want: 0.0},
		{name: "negative half confidence", label: mood.Negative, confidence: 0.5, want: 1.25},
		{name: "negative strong confidence", label: mood.Negative, confidence: 0.9, want: 0.25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := mood.WeightedChatMood(tc.label, tc.confidence)
			if !almostEqual(got, tc.want) {
				t.Errorf("WeightedChatMood(%v, %v) = %v, want %v", tc.label, tc.confidence, got, tc.want)
			}
		})
	}
}

func TestLabelValue(t *testing.T) {
	t.Parallel()

	if got := mood.LabelValue(mood.Positive); got != 1 {
		t.Errorf("LabelValue(Positive) = %v, want 1", got)
	}
	if got := mood.LabelValue(mood.Negative); got != -1 {
		t.Errorf("LabelValue(Negative) = %v, want -1", got)
	}
	if got := mood.LabelValue(mood.Neutral); got != 0 {
		t.Errorf("LabelValue(Neutral) = %v, want 0", got)
	}
}

func TestLabelSQLRoundTrip(t *testing.T) {
	t.Parallel()

	for _, label := range []mood.Label{mood.Positive, mood.Negative, mood.Neutral} {
		v, err := label.Value()
		if err != nil {
			t.Fatalf("Value(%v) unexpected error: %v", label, err)
		}

		var scanned mood.Label
		if err := scanned.Scan(v); err != nil {
			t.Fatalf("Scan(%v) unexpected error: %v", v, err)
		}
		if scanned != label {
			t.Errorf("round trip changed label: got %v, want %v", scanned, label)
		}
	}

	var l mood.Label
	if err := l.Scan("MIXED"); err == nil {
		t.Error("Scan accepted unknown label")
	}
	if _, err := mood.Label(42).Value(); err == nil {
		t.Error("Value accepted out-of-range label")
	}
}
