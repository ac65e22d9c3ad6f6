package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"singapore-family-venues-scraper/internal/models"
)

// listingSchemaJSON is the output schema embedded in every prompt
const listingSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "title": {"type": "string", "description": "Name of the activity, event or venue listing"},
      "venue_name": {"type": "string", "description": "Name of the venue hosting it"},
      "organiser": {"type": "string", "description": "Organisation running the venue or event"},
      "description": {"type": "string", "description": "Short family-facing description"},
      "address_display": {"type": "string", "description": "Full street address with Singapore postal code"},
      "datetime_display": {"type": "string", "description": "Operating hours or event dates as shown"},
      "price": {"type": "number", "description": "Lowest price in SGD, 0 for free"},
      "price_display": {"type": "string", "description": "Price as shown, e.g. S$15.00"},
      "price_display_teaser": {"type": "string", "description": "Short price summary"},
      "images": {"type": "array", "items": {"type": "object", "properties": {"url": {"type": "string"}, "source_credit": {"type": "string"}}}},
      "guid": {"type": "string"},
      "url": {"type": "string"}
    },
    "required": ["title"]
  }
}`

// synthesizerInstructions are the standing domain instructions for the model
const synthesizerInstructions = `You are an expert at extracting structured data about Singapore family venues, attractions, playgrounds and events from web content.

Analyze the provided block and extract every family-friendly venue, attraction, playground, activity or event it describes, as JSON conforming to this schema:

SCHEMA:
%s

GUIDELINES:
1. Only extract venues and events located in Singapore.
2. Focus on listings suitable for families with children.
3. Include both free and paid listings.
4. If fields are missing, leave them null. Never invent details not present in the block.
`

// venueFocusInstructions bias extraction toward venue records over one-off events
const venueFocusInstructions = `
VENUE FOCUS: Treat each distinct physical venue (playground, indoor play centre, attraction, park) as its own listing even when several share one page. Prefer the venue's own name for venue_name and the operating organisation for organiser.
`

const (
	blockPromptBudget  = 4000
	imagesPromptBudget = 2000
)

// Synthesizer turns raw block content into schema-shaped listings via the
// external model.
type Synthesizer struct {
	generator Generator
}

// NewSynthesizer creates a Synthesizer on top of a Generator
func NewSynthesizer(generator Generator) *Synthesizer {
	return &Synthesizer{generator: generator}
}

// BuildBlockPrompt constructs the per-block prompt: schema, instructions,
// pinned source URL, truncated block content and images, plus a precomputed
// price hint when heuristic extraction found one.
func (s *Synthesizer) BuildBlockPrompt(blockText, pageURL string, blockImages []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, synthesizerInstructions, listingSchemaJSON)
	b.WriteString(venueFocusInstructions)

	b.WriteString("\nSOURCE_URL:\n" + pageURL)
	b.WriteString("\nIMPORTANT: Extract ALL separate venues or events from this block. " +
		"Do not merge events. Return one JSON object per event. " +
		"If multiple venues are shown, extract each separately.\n")
	b.WriteString("\nNOTE: Do NOT replace the URL with links found in the block. " +
		"Use the SOURCE_URL for both 'guid' and 'url'.\n")

	b.WriteString("\nBLOCK:\n" + truncate(blockText, blockPromptBudget))

	imagesJSON, _ := json.Marshal(blockImages)
	if blockImages == nil {
		imagesJSON = []byte("[]")
	}
	b.WriteString("\nBLOCK_IMAGES:\n" + truncate(string(imagesJSON), imagesPromptBudget))
	b.WriteString("\nIMPORTANT: You must include these BLOCK_IMAGES in the 'images' field of each output object. " +
		"Each image must be an object with {url, source_credit}, where source_credit = organiser name.\n")

	if info := ExtractPrice(blockText); info.Price != nil {
		hint, err := json.Marshal(info)
		if err == nil {
			b.WriteString("\nEXTRACTED_PRICE_INFO:\n" + string(hint))
		}
	}

	b.WriteString("\nOUTPUT:\nReturn only the JSON array. " +
		"RULES: Extract any activities, attractions, playgrounds, or events that families, kids, or parents might attend. " +
		"Never invent festivals, runs, or other events unless shown verbatim. " +
		"If fields are missing, leave them null.")

	return b.String()
}

// SynthesizeBlock runs one block through the model and returns zero or more
// listings. Model or parse failures surface as an error the caller logs and
// skips; they never abort the run.
func (s *Synthesizer) SynthesizeBlock(ctx context.Context, blockText, pageURL string, blockImages []string) ([]models.Listing, error) {
	prompt := s.BuildBlockPrompt(blockText, pageURL, blockImages)

	extractionID := models.NewExtractionID()
	log.Printf("[debug] %s: calling model, prompt %d chars", extractionID, len(prompt))

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", extractionID, err)
	}

	listings := ParseListings(raw)
	log.Printf("[debug] %s: model returned %d listings", extractionID, len(listings))
	return listings, nil
}

// ParseListings decodes model output, tolerating either a JSON array or a
// single object. Array elements are decoded one by one so a malformed
// element drops only itself, never its valid siblings. Anything wholly
// unparseable collapses to zero listings.
func ParseListings(raw string) []models.Listing {
	cleaned := cleanJSONResponse(raw)
	if cleaned == "" {
		return nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &elements); err == nil {
		var listings []models.Listing
		for i, element := range elements {
			var listing models.Listing
			if err := json.Unmarshal(element, &listing); err != nil {
				log.Printf("[debug] skipping malformed item %d in model output: %v", i+1, err)
				continue
			}
			listings = append(listings, listing)
		}
		return listings
	}

	var single models.Listing
	if err := json.Unmarshal([]byte(cleaned), &single); err == nil {
		return []models.Listing{single}
	}

	log.Printf("[debug] model output was not valid JSON (%d chars), treating as zero listings", len(cleaned))
	return nil
}

// truncate caps a string at limit bytes without splitting a UTF-8 rune
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
