package handlers

import (
	"testing"
)

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  []string
	}{
		{input: "/add_chat -100123 Team Chat", want: []string{"-100123", "Team", "Chat"}},
		{input: "/deactivate_chat   -5", want: []string{"-5"}},
		{input: "/register", want: []string{}},
		{input: "", want: nil},
	}

	for _, tc := range testCases {
		got := commandArgs(tc.input)
		if len(got) != len(tc.want) {
			t.Errorf("commandArgs(%q) = %v, want %v", tc.input, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("commandArgs(%q)[%d] = %q, want %q", tc.input, i, got[i], tc.want[i])
			}
		}
	}
}

func TestParseChatID(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "-1001234567890", want: -1001234567890},
		{input: "42", want: 42},
		{input: "0", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "12.5", wantErr: true},
	}

	for _, tc := range testCases {
		got, err := parseChatID(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseChatID(%q) expected error, got %d", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseChatID(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseChatID(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}
