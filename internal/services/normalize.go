package services

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CollapseWhitespace folds all runs of whitespace into single spaces
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// mojibakeReplacements fixes common UTF-8-decoded-as-latin-1 artifacts.
// Ordered: longer sequences must be replaced before their prefixes.
var mojibakeReplacements = []struct {
	bad, good string
}{
	{"â€™", "'"},
	{"â€˜", "'"},
	{"â€œ", "\""},
	{"â€“", "-"},
	{"â€”", "-"},
	{"â€¢", "•"},
	{"â€¦", "..."},
	{"â€", "\""},
	{"Ã©", "é"},
	{"Ã", "à"},
	{"‚Äô", "'"},
	{"‚Äì", "-"},
	{"Â", ""},
}

// FixBrokenCharacters repairs mojibake and normalizes Unicode forms.
// It first tries to reverse a latin-1 round trip, then patches well-known
// broken sequences, then applies NFKC normalization. Replacements must run
// before NFKC: the trademark sign inside "â€™" would otherwise expand to
// "TM" and the sequence would never match.
func FixBrokenCharacters(text string) string {
	if repaired, ok := reverseLatin1(text); ok {
		text = repaired
	}

	for _, r := range mojibakeReplacements {
		text = strings.ReplaceAll(text, r.bad, r.good)
	}

	return norm.NFKC.String(text)
}

// reverseLatin1 undoes UTF-8 bytes that were decoded as latin-1. Each rune
// must fit a single latin-1 byte and the recovered bytes must form valid
// UTF-8, otherwise the input is returned unchanged.
func reverseLatin1(text string) (string, bool) {
	buf := make([]byte, 0, len(text))
	for _, r := range text {
		if r > 0xFF {
			return text, false
		}
		buf = append(buf, byte(r))
	}
	if !utf8.Valid(buf) {
		return text, false
	}
	recovered := string(buf)
	if recovered == text {
		return text, false
	}
	return recovered, true
}

// ResolveURL resolves a possibly-relative URL against a base and validates
// that the result has both a scheme and a host. Anything else resolves to
// the empty string.
func ResolveURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if base != "" {
		baseURL, err := url.Parse(base)
		if err == nil {
			ref, err := url.Parse(raw)
			if err != nil {
				return ""
			}
			raw = baseURL.ResolveReference(ref).String()
		}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return raw
}
