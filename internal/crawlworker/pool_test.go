package crawlworker_test

import (
	"testing"

	"github.com/ogsearch/ogsearch/internal/crawlworker"
)

func TestShouldCrawl(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://example.com/page", true},
		{"https://example.com/page", true},
		{"ftp://example.com/page", false},
		{"http://example.com/style.css", false},
		{"http://example.com/script.js?x=1", false},
		{"http://example.com/image.jpg", false},
		{"http://example.com/path.css.html", false}, // substring check, intentional
		{"http://" + stringOfLength(600), false},
	}

	for _, tc := range tests {
		if got := crawlworker.ShouldCrawl(tc.url); got != tc.want {
			t.Errorf("ShouldCrawl(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func stringOfLength(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
