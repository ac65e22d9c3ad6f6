package models

// CandidateBlock is a DOM subtree judged likely to describe one listing.
// Immutable once discovered; consumed by the synthesizer and discarded.
type CandidateBlock struct {
	HTML   string   `json:"html"`
	Text   string   `json:"text"`
	Images []string `json:"images"`
	Score  int      `json:"score"`
}

// HeadingGroup is a heading plus its trailing descriptive text, treated as
// one listing unit. HeadingIndex records which page heading produced the
// group; it is provenance only, never a reference into the parsed DOM.
type HeadingGroup struct {
	Text         string   `json:"text"`
	Images       []string `json:"images"`
	HeadingIndex int      `json:"heading_index"`
}

// PageContent is everything the block discoverer produces for one page
type PageContent struct {
	Title         string           `json:"title"`
	JSONLDRaw     []string         `json:"jsonld_raw"`
	Blocks        []CandidateBlock `json:"blocks"`
	HeadingGroups []HeadingGroup   `json:"heading_groups"`
}

// SourceRef type constants
const (
	SourceTypeHeadingGroup = "heading_group"
	SourceTypeBlock        = "block"
	SourceTypeJSONLD       = "jsonld"
)
