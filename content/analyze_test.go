package content

import (
	"strings"
	"testing"
)

func TestEstimateReadTime(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{"empty", 0, 1},
		{"one word", 1, 1},
		{"exactly 200", 200, 1},
		{"201 words", 201, 2},
		{"400 words", 400, 2},
		{"1000 words", 1000, 5},
	}
	for _, tt := range tests {
		body := strings.TrimSpace(strings.Repeat("word ", tt.words))
		if got := EstimateReadTime(body); got != tt.want {
			t.Errorf("%s: EstimateReadTime = %d, want %d", tt.name, got, tt.want)
		}
	}
	if got := EstimateReadTime(" \n\t "); got != 1 {
		t.Errorf("EstimateReadTime(whitespace) = %d, want 1", got)
	}
}

func TestExtractThumbnail(t *testing.T) {
	tests := []struct {
		body     string
		explicit string
		want     string
		ok       bool
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "https://x/img.png", "https://x/img.png", true},
		{"watch this https://youtu.be/dQw4w9WgXcQ today", "", "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg", true},
		{"first https://www.youtube.com/watch?v=abcdefghijk then https://youtu.be/dQw4w9WgXcQ", "", "https://img.youtube.com/vi/abcdefghijk/hqdefault.jpg", true},
		{"http://youtube.com/watch?v=A_b-C_d-E_f", "", "https://img.youtube.com/vi/A_b-C_d-E_f/hqdefault.jpg", true},
		{"too short https://youtu.be/abc", "", "", false},
		{"https://vimeo.com/123456789", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractThumbnail(tt.body, tt.explicit)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractThumbnail(%q, %q) = (%q, %v), want (%q, %v)", tt.body, tt.explicit, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVideoIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		id   string
		ok   bool
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", true},
		{"see https://youtu.be/dQw4w9WgXcQ", "", false},
		{"HTTPS://youtu.be/dQw4w9WgXcQ", "", false},
		{"https://example.com/", "", false},
	}
	for _, tt := range tests {
		id, ok := VideoIDFromURL(tt.url)
		if id != tt.id || ok != tt.ok {
			t.Errorf("VideoIDFromURL(%q) = (%q, %v), want (%q, %v)", tt.url, id, ok, tt.id, tt.ok)
		}
	}
}

func TestIsVideoID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"dQw4w9WgXcQ", true},
		{"A_b-C_d-E_f", true},
		{"short", false},
		{"dQw4w9WgXc!", false},
		{"dQw4w9WgXcQQ", false},
	}
	for _, tt := range tests {
		if got := IsVideoID(tt.id); got != tt.want {
			t.Errorf("IsVideoID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
