package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

// stubGenerator returns a canned response keyed on prompt content
type stubGenerator struct {
	responses map[string]string
	err       error
	calls     int
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	for key, resp := range g.responses {
		if strings.Contains(prompt, key) {
			return resp, nil
		}
	}
	return "[]", nil
}

func TestBuildBlockPrompt(t *testing.T) {
	s := NewSynthesizer(&stubGenerator{})

	prompt := s.BuildBlockPrompt(
		"Splash Park admission $15 per child",
		"https://example.com/venues",
		[]string{"https://example.com/splash.jpg"},
	)

	for _, want := range []string{
		"SOURCE_URL:\nhttps://example.com/venues",
		"Splash Park admission $15 per child",
		"https://example.com/splash.jpg",
		"EXTRACTED_PRICE_INFO:",
		`"price":15`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildBlockPromptNoPriceHint(t *testing.T) {
	s := NewSynthesizer(&stubGenerator{})

	prompt := s.BuildBlockPrompt("A lovely playground", "https://example.com", nil)
	if strings.Contains(prompt, "EXTRACTED_PRICE_INFO") {
		t.Error("prompt should not carry a price hint when extraction found nothing")
	}
	if !strings.Contains(prompt, "BLOCK_IMAGES:\n[]") {
		t.Error("prompt should carry an empty images list")
	}
}

func TestSynthesizeBlock(t *testing.T) {
	gen := &stubGenerator{responses: map[string]string{
		"Splash Park": `[{"title":"Splash Park","venue_name":"Splash Park Sentosa"}]`,
	}}
	s := NewSynthesizer(gen)

	listings, err := s.SynthesizeBlock(context.Background(), "Splash Park fun", "https://example.com", nil)
	if err != nil {
		t.Fatalf("SynthesizeBlock: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}
	if listings[0].Title != "Splash Park" {
		t.Errorf("Title = %q, want %q", listings[0].Title, "Splash Park")
	}
}

func TestSynthesizeBlockGeneratorError(t *testing.T) {
	s := NewSynthesizer(&stubGenerator{err: errors.New("model unavailable")})

	if _, err := s.SynthesizeBlock(context.Background(), "text", "https://example.com", nil); err == nil {
		t.Fatal("expected an error from the failing generator")
	}
}

func TestParseListings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"json array", `[{"title":"A"},{"title":"B"}]`, 2},
		{"fenced array", "```json\n[{\"title\":\"A\"}]\n```", 1},
		{"single object", `{"title":"A"}`, 1},
		{"malformed element dropped, siblings kept", `["not an object", {"title":"Real Venue Listing"}, 42, {"title":"Another Venue"}]`, 2},
		{"garbage", "sorry, I cannot help with that", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseListings(tt.raw); len(got) != tt.want {
				t.Errorf("ParseListings returned %d listings, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseListingsKeepsValidSiblings(t *testing.T) {
	got := ParseListings(`["not an object", {"title":"Real Venue Listing"}]`)

	if len(got) != 1 {
		t.Fatalf("got %d listings, want 1", len(got))
	}
	if got[0].Title != "Real Venue Listing" {
		t.Errorf("Title = %q, want the surviving record", got[0].Title)
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	s := "caf" + strings.Repeat("é", 10) // é is two bytes

	for limit := 1; limit <= len(s); limit++ {
		got := truncate(s, limit)
		if !utf8.ValidString(got) {
			t.Fatalf("truncate(%q, %d) = %q is not valid UTF-8", s, limit, got)
		}
		if len(got) > limit {
			t.Fatalf("truncate(%q, %d) returned %d bytes", s, limit, len(got))
		}
	}

	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate below limit = %q, want input unchanged", got)
	}
}
