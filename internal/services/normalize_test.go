package services

import "testing"

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello   world  ", "hello world"},
		{"line\none\n\ttwo", "line one two"},
		{"", ""},
		{"single", "single"},
	}

	for _, tt := range tests {
		if got := CollapseWhitespace(tt.input); got != tt.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFixBrokenCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"latin-1 round trip", "cafÃ©", "café"},
		{"smart apostrophe mojibake", "Kidâ€™s Club", "Kid's Club"},
		{"en dash mojibake", "10am â€“ 6pm", "10am - 6pm"},
		{"clean text unchanged", "Sentosa Island", "Sentosa Island"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FixBrokenCharacters(tt.input); got != tt.want {
				t.Errorf("FixBrokenCharacters(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		base string
		want string
	}{
		{"relative path", "/img/a.jpg", "https://example.com/page", "https://example.com/img/a.jpg"},
		{"absolute untouched", "https://cdn.example.com/b.jpg", "https://example.com/page", "https://cdn.example.com/b.jpg"},
		{"empty input", "", "https://example.com", ""},
		{"no host", "mailto:hi@example.com", "", ""},
		{"relative without base", "/img/a.jpg", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveURL(tt.raw, tt.base); got != tt.want {
				t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.raw, tt.base, got, tt.want)
			}
		})
	}
}
