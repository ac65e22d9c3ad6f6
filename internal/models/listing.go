package models

import (
	"encoding/json"
	"time"
)

// ListingsOutput represents the complete JSON structure for scraped listings
type ListingsOutput struct {
	Metadata ListingsMetadata `json:"metadata"`
	Listings []Listing        `json:"listings"`
}

// ListingsMetadata contains metadata about the listings dataset
type ListingsMetadata struct {
	LastUpdated   time.Time `json:"lastUpdated"`
	TotalListings int       `json:"totalListings"`
	Sources       []string  `json:"sources"`
	Version       string    `json:"version"`
	Region        string    `json:"region"`
	Coverage      string    `json:"coverage"`
}

// Listing represents a single venue/event record extracted from a page.
//
// The model is allowed to emit schema fields beyond the ones declared here;
// those round-trip through Extra so nothing the synthesizer produced is lost.
type Listing struct {
	ID    int    `json:"id"`
	Title string `json:"title"`

	// Descriptive
	VenueName      string `json:"venue_name"`
	Organiser      string `json:"organiser"`
	AddressDisplay string `json:"address_display"`

	// Scheduling
	DatetimeDisplay string `json:"datetime_display"`

	// Pricing
	Price              *float64 `json:"price"`
	PriceDisplay       string   `json:"price_display"`
	PriceDisplayTeaser string   `json:"price_display_teaser"`
	IsFree             bool     `json:"is_free"`
	MinPrice           *float64 `json:"min_price"`
	MaxPrice           *float64 `json:"max_price"`

	// Media
	Images []Image `json:"images"`

	// Provenance: both always equal the source page URL
	GUID string `json:"guid"`
	URL  string `json:"url"`

	// Schema-defined fields passed through from the synthesizer
	Extra map[string]json.RawMessage `json:"-"`

	// Source tracks which block produced this listing within one run.
	// It is scratch state for the post-processor, never serialized.
	Source SourceRef `json:"-"`
}

// SourceRef identifies the content block a listing was synthesized from
type SourceRef struct {
	Type   string   // heading_group|block|jsonld
	Index  int      // position within the discovered set
	Images []string // block-local image URLs
	Text   string   // normalized block text
}

// Image represents one listing image with attribution
type Image struct {
	URL          string `json:"url"`
	SourceCredit string `json:"source_credit"`
	Filename     string `json:"filename,omitempty"`
	LocalPath    string `json:"local_path,omitempty"`
}

// UnmarshalJSON accepts either a bare URL string or the full object form.
// Models sometimes echo image lists back as plain strings; the post-processor
// normalizes credit afterwards.
func (img *Image) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		img.URL = s
		return nil
	}

	type imageAlias Image
	var a imageAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*img = Image(a)
	return nil
}

// listingAlias breaks the MarshalJSON/UnmarshalJSON recursion
type listingAlias Listing

// listingKnownKeys are the JSON keys owned by the declared struct fields
var listingKnownKeys = map[string]bool{
	"id": true, "title": true, "venue_name": true, "organiser": true,
	"address_display": true, "datetime_display": true,
	"price": true, "price_display": true, "price_display_teaser": true,
	"is_free": true, "min_price": true, "max_price": true,
	"images": true, "guid": true, "url": true,
}

// UnmarshalJSON decodes the declared fields and stashes everything else in Extra
func (l *Listing) UnmarshalJSON(data []byte) error {
	var a listingAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if listingKnownKeys[key] {
			delete(raw, key)
		}
	}
	if len(raw) > 0 {
		a.Extra = raw
	}

	*l = Listing(a)
	return nil
}

// MarshalJSON re-emits declared fields plus any passed-through schema fields.
// Declared fields win on key collision.
func (l Listing) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(listingAlias(l))
	if err != nil {
		return nil, err
	}
	if len(l.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, val := range l.Extra {
		if _, owned := merged[key]; !owned {
			merged[key] = val
		}
	}
	return json.Marshal(merged)
}

// NewListingsMetadata creates metadata for a listings output artifact
func NewListingsMetadata(totalListings int, sources []string) ListingsMetadata {
	return ListingsMetadata{
		LastUpdated:   time.Now(),
		TotalListings: totalListings,
		Sources:       sources,
		Version:       "1.0.0",
		Region:        "Singapore",
		Coverage:      "Singapore family venues and activities",
	}
}
