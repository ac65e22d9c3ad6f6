package services

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"singapore-family-venues-scraper/internal/models"
)

// KeywordRule awards a score weight when any of its keywords appears in a
// block's lowercased markup.
type KeywordRule struct {
	Keywords []string `toml:"keywords"`
	Weight   int      `toml:"weight"`
}

// ScoringConfig holds the additive block-relevance scoring heuristics
type ScoringConfig struct {
	KeywordRules     []KeywordRule `toml:"keyword_rules"`
	HeadingWeight    int           `toml:"heading_weight"`
	BodyLengthMin    int           `toml:"body_length_min"`
	BodyLengthMax    int           `toml:"body_length_max"`
	BodyLengthWeight int           `toml:"body_length_weight"`
}

// DiscoveryConfig is the full heuristic configuration for block discovery.
// Keyword tables, selector lists and weights live here rather than in the
// logic so they can be tuned and tested independently.
type DiscoveryConfig struct {
	Selectors            []string      `toml:"selectors"`
	ExcludeClassPattern  string        `toml:"exclude_class_pattern"`
	RelevanceKeywords    []string      `toml:"relevance_keywords"`
	SectionSplitKeywords []string      `toml:"section_split_keywords"`
	MinBlockTextLen      int           `toml:"min_block_text_len"`
	MinSectionTextLen    int           `toml:"min_section_text_len"`
	MaxSectionsPerGroup  int           `toml:"max_sections_per_group"`
	HeadingSiblingRadius int           `toml:"heading_sibling_radius"`
	MaxBlocks            int           `toml:"max_blocks"`
	MaxGroups            int           `toml:"max_groups"`
	Scoring              ScoringConfig `toml:"scoring"`
}

// DefaultDiscoveryConfig returns the tuned heuristics for family-activity
// venue pages.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		Selectors: []string{
			".card", ".listing", "article", ".event", ".tile", ".result",
			"ul li", "ol li", ".grid > div", ".row > .col",

			// Venue focused selectors
			".venue", ".location", ".facility", ".center", ".club",
			".playground", ".attraction", "[class*=venue]", "[class*=location]",
			".about", ".overview", ".facility-info", ".venue-details",
			"main", ".main-content", "#main", ".content",

			"a.project",
		},
		ExcludeClassPattern: `(?i)(footer|header|nav|subscribe|breadcrumb|cookie|newsletter|promo|share)`,
		RelevanceKeywords: []string{
			"dining", "restaurant", "menu", "activity", "event", "playground",
			"indoor playground", "outdoor playground", "attractions", "mall related",
			"kids", "children", "family", "babies", "trip", "party", "shopping",
			"play", "learn", "explore", "educational",
		},
		SectionSplitKeywords: []string{
			"public admission", "hotel", "membership", "package", "price", "timings",
		},
		MinBlockTextLen:      10,
		MinSectionTextLen:    40,
		MaxSectionsPerGroup:  4,
		HeadingSiblingRadius: 8,
		MaxBlocks:            40,
		MaxGroups:            40,
		Scoring: ScoringConfig{
			KeywordRules: []KeywordRule{
				{Keywords: []string{"playground", "facility", "venue", "location", "attraction"}, Weight: 5},
				{Keywords: []string{"about", "overview", "features", "amenities"}, Weight: 4},
				{Keywords: []string{"operating hours", "contact", "address"}, Weight: 3},
				{Keywords: []string{"book now", "sgd", "$", "buy now", "add to cart"}, Weight: 2},
				{Keywords: []string{"single admission", "package"}, Weight: 2},
			},
			HeadingWeight:    4,
			BodyLengthMin:    200,
			BodyLengthMax:    2000,
			BodyLengthWeight: 2,
		},
	}
}

// Discoverer locates candidate listing blocks and heading-anchored content
// groups in rendered HTML.
type Discoverer struct {
	cfg          DiscoveryConfig
	excludeClass *regexp.Regexp
}

// NewDiscoverer creates a Discoverer with the given heuristics
func NewDiscoverer(cfg DiscoveryConfig) *Discoverer {
	return &Discoverer{
		cfg:          cfg,
		excludeClass: regexp.MustCompile(cfg.ExcludeClassPattern),
	}
}

// Discover parses rendered HTML and produces the page's candidate blocks,
// heading groups and raw JSON-LD event payloads.
func (d *Discoverer) Discover(pageHTML, baseURL string) (models.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return models.PageContent{}, err
	}

	content := models.PageContent{
		Title:         strings.TrimSpace(doc.Find("title").First().Text()),
		JSONLDRaw:     d.jsonldEvents(doc),
		Blocks:        d.candidateBlocks(doc, baseURL),
		HeadingGroups: d.headingGroups(doc, baseURL),
	}

	log.Printf("[debug] discovered %d candidate blocks, %d heading groups, %d jsonld payloads",
		len(content.Blocks), len(content.HeadingGroups), len(content.JSONLDRaw))
	return content, nil
}

// IsRelevant is the cheap recall-oriented gate: the lowercased text must
// contain at least one family/activity keyword. False positives are fine;
// the model corrects them later.
func (d *Discoverer) IsRelevant(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range d.cfg.RelevanceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Score ranks a block's markup by listing-likeness. Higher is better.
func (d *Discoverer) Score(blockHTML string) int {
	score := 0
	lower := strings.ToLower(blockHTML)

	for _, rule := range d.cfg.Scoring.KeywordRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				score += rule.Weight
				break
			}
		}
	}

	if strings.Contains(lower, "<h1") || strings.Contains(lower, "<h2") ||
		strings.Contains(lower, "<h3") || strings.Contains(lower, "<h4") {
		score += d.cfg.Scoring.HeadingWeight
	}

	// Visible text length as a proxy for "one listing, not a whole page"
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(blockHTML)); err == nil {
		textLen := len(normalizedText(doc.Selection))
		if textLen >= d.cfg.Scoring.BodyLengthMin && textLen <= d.cfg.Scoring.BodyLengthMax {
			score += d.cfg.Scoring.BodyLengthWeight
		}
	}

	return score
}

// candidateBlocks selects card/list/grid style containers, filters them
// through the relevance gate and ranks them by score.
func (d *Discoverer) candidateBlocks(doc *goquery.Document, baseURL string) []models.CandidateBlock {
	seen := make(map[*html.Node]bool)
	var nodes []*goquery.Selection

	for _, selector := range d.cfg.Selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			n := s.Nodes[0]
			if d.excludeClass.MatchString(nodeClass(n)) {
				return
			}
			if seen[n] {
				return
			}
			seen[n] = true
			nodes = append(nodes, s)
		})
	}

	var blocks []models.CandidateBlock
	for _, s := range nodes {
		text := normalizedText(s)
		if len(text) < d.cfg.MinBlockTextLen || !d.IsRelevant(text) {
			continue
		}
		markup, err := goquery.OuterHtml(s)
		if err != nil {
			continue
		}
		blocks = append(blocks, models.CandidateBlock{
			HTML:   markup,
			Text:   text,
			Images: ImagesFromSelection(s, baseURL),
			Score:  d.Score(markup),
		})
	}

	// Stable sort keeps discovery order on ties
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Score > blocks[j].Score
	})

	if len(blocks) > d.cfg.MaxBlocks {
		blocks = blocks[:d.cfg.MaxBlocks]
	}
	return blocks
}

// headingGroups pairs each h1-h4 with up to MaxSectionsPerGroup substantial
// text blocks that follow it in document order, stopping at the next
// heading, then splits the combined text into logical subsections.
func (d *Discoverer) headingGroups(doc *goquery.Document, baseURL string) []models.HeadingGroup {
	var groups []models.HeadingGroup
	root := doc.Get(0)

	doc.Find("h1, h2, h3, h4").Each(func(headingIndex int, heading *goquery.Selection) {
		title := normalizedText(heading)
		if title == "" {
			return
		}

		var parts []string
		for n := nextSkippingChildren(heading.Nodes[0], root); n != nil; n = nextInDocument(n, root) {
			if isHeading(n) {
				break
			}
			if n.Type != html.ElementNode {
				continue
			}
			switch n.Data {
			case "p", "div", "section", "article", "li":
				t := CollapseWhitespace(FixBrokenCharacters(strings.Join(textLines(n), " ")))
				if len(t) >= d.cfg.MinSectionTextLen {
					parts = append(parts, t)
				}
			}
			if len(parts) >= d.cfg.MaxSectionsPerGroup {
				break
			}
		}

		if len(parts) == 0 {
			return
		}

		fullText := title + "\n" + strings.Join(parts, "\n")
		images := ImagesNearHeading(heading, baseURL, d.cfg.HeadingSiblingRadius)

		for _, section := range d.splitSections(fullText) {
			groups = append(groups, models.HeadingGroup{
				Text:         section,
				Images:       images,
				HeadingIndex: headingIndex,
			})
		}
	})

	if len(groups) > d.cfg.MaxGroups {
		groups = groups[:d.cfg.MaxGroups]
	}
	return groups
}

// splitSections breaks combined heading text into logical subsections: every
// line carrying a pricing/scheduling keyword starts a new section.
func (d *Discoverer) splitSections(text string) []string {
	var sections []string
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		if s := strings.TrimSpace(strings.Join(current, "\n")); s != "" {
			sections = append(sections, s)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, kw := range d.cfg.SectionSplitKeywords {
			if strings.Contains(lower, kw) {
				flush()
				break
			}
		}
		current = append(current, line)
	}
	flush()

	return sections
}

// jsonldEvents harvests raw JSON-LD payloads that mention events
func (d *Discoverer) jsonldEvents(doc *goquery.Document) []string {
	var payloads []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw != "" && strings.Contains(raw, "Event") {
			payloads = append(payloads, raw)
		}
	})
	return payloads
}

// nextSkippingChildren advances past n's entire subtree in document order
func nextSkippingChildren(n, stop *html.Node) *html.Node {
	for n != nil && n != stop {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}
