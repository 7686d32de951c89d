package chat

import "testing"

func TestTruncateNotification(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 100, "short"},
		{"hello\nworld", 100, "hello world"},
		{"  multiple   spaces  ", 100, "multiple spaces"},
		{"this is a long message that needs truncation", 20, "this is a long mess…"},
		{"café crème brûlée", 8, "café cr…"},
		{"", 100, ""},
	}

	for _, tt := range tests {
		got := truncateNotification(tt.input, tt.maxLen)
		if got != tt.want {
			t.Errorf("truncateNotification(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
