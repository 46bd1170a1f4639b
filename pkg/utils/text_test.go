package utils

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"ascii truncated", "hello world", 5, "hello..."},
		{"maxLen 0 returns as-is", "x", 0, "x"},
		{"multi-byte fits in rune count", "ééé", 3, "ééé"},
		{"multi-byte truncated on rune boundary", "café crème", 4, "café..."},
		{"cjk truncated", "検索語句", 2, "検索..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Truncate(%q, %d) produced invalid UTF-8", tt.s, tt.maxLen)
			}
		})
	}
}
