package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// addressTextPatterns match Singapore postal addresses in free text, in
// decreasing order of specificity. Each pattern captures the whole address.
var addressTextPatterns = []*regexp.Regexp{
	// Complete address with postal code
	regexp.MustCompile(`(?im)([^.\n]*?Singapore\s+\d{6}[^.\n]*)`),
	// Address ending with Singapore + postal
	regexp.MustCompile(`(?im)([^.\n]*?\d{6}\s+Singapore[^.\n]*)`),
	// Street address with Singapore
	regexp.MustCompile(`(?im)([^.\n]*?(?:Street|Road|Avenue|Drive|Lane|Walk|Park|Plaza|Centre|Building)[^.\n]*?Singapore[^.\n]*)`),
	// Any line containing Singapore and a likely postal code
	regexp.MustCompile(`(?im)([^.\n]*?Singapore[^.\n]*?\d{6}[^.\n]*)`),
}

var (
	addressClassRe   = regexp.MustCompile(`(?i)address|contact|location`)
	addressWindowRe  = regexp.MustCompile(`(?i).{0,100}(Singapore\s*\d{6}).{0,100}`)
	addressStripEdge = regexp.MustCompile(`^\W+|\W+$`)
)

// ExtractAddressFromText finds a Singapore address in free text. Returns ""
// when nothing substantial matches.
func ExtractAddressFromText(text string) string {
	if text == "" {
		return ""
	}

	for _, pattern := range addressTextPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			addr := CollapseWhitespace(m[1])
			addr = addressStripEdge.ReplaceAllString(addr, "")
			if len(addr) > 10 {
				return addr
			}
		}
	}
	return ""
}

// ExtractAddress runs the full address priority chain over markup (or plain
// text): structured JSON-LD address property, class-hinted sections, then
// the whole text.
func ExtractAddress(htmlOrText string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlOrText))
	if err != nil {
		return ExtractAddressFromText(htmlOrText)
	}

	// Structured data first
	var structured string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data map[string]json.RawMessage
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		raw, ok := data["address"]
		if !ok {
			return true
		}
		var asString string
		if err := json.Unmarshal(raw, &asString); err == nil {
			structured = asString
		} else {
			structured = string(raw)
		}
		return structured == ""
	})
	if structured != "" {
		return structured
	}

	// Class-hinted contact/address/location sections
	var fromSection string
	doc.Find("div, section, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if !addressClassRe.MatchString(class) {
			return true
		}
		fromSection = ExtractAddressFromText(selectionText(s, "\n"))
		return fromSection == ""
	})
	if fromSection != "" {
		return fromSection
	}

	// Whole-text scan
	return ExtractAddressFromText(selectionText(doc.Selection, "\n"))
}

// GlobalAddress is the last-resort page-wide scan: any 200-character window
// around "Singapore NNNNNN".
func GlobalAddress(pageHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}
	text := selectionText(doc.Selection, "\n")

	if m := addressWindowRe.FindString(text); m != "" {
		return CollapseWhitespace(m)
	}
	return ""
}

var (
	operatingHoursRe = regexp.MustCompile(`(?i)Operating Hours[:\s]*[^.;\n]+`)
	dayClauseRe      = regexp.MustCompile(`(?i)(?:Open|Daily|Mon|Tue|Wed|Thu|Fri|Sat|Sun)[^.;\n]+`)
)

// ExtractOperatingHours pulls an operating-hours clause from free text:
// an explicit "Operating Hours:" label first, else a day-of-week or
// Open/Daily led clause up to the next sentence boundary. Returns "" when
// neither matches.
func ExtractOperatingHours(text string) string {
	if text == "" {
		return ""
	}
	if m := operatingHoursRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	if m := dayClauseRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}
