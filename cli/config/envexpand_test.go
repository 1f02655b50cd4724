package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("DECKHAND_TEST_TOKEN", "secret-token")
	t.Setenv("DECKHAND_TEST_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable", "token: ${DECKHAND_TEST_TOKEN}", "token: secret-token"},
		{"unset variable", "url: ${DECKHAND_TEST_UNSET}", "url: "},
		{"unset with default", "url: ${DECKHAND_TEST_UNSET:-http://localhost}", "url: http://localhost"},
		{"empty with default", "v: ${DECKHAND_TEST_EMPTY:-fallback}", "v: fallback"},
		{"set ignores default", "t: ${DECKHAND_TEST_TOKEN:-other}", "t: secret-token"},
		{"no pattern untouched", "plain: value", "plain: value"},
		{"multiple patterns", "${DECKHAND_TEST_TOKEN}/${DECKHAND_TEST_UNSET:-x}", "secret-token/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
