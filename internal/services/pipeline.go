package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"singapore-family-venues-scraper/internal/models"
)

// minHeadingListings is the threshold below which candidate blocks are
// tried after heading groups.
const minHeadingListings = 3

// Pipeline wires the discovery, synthesis and post-processing stages for
// one page. Blocks are processed sequentially; all cross-block state (the
// accumulated listings and the fallback image pool) is owned by the loop.
type Pipeline struct {
	fetcher     Renderer
	discoverer  *Discoverer
	synthesizer *Synthesizer
	post        *PostProcessor
}

// NewPipeline assembles a pipeline from its stages
func NewPipeline(fetcher Renderer, discoverer *Discoverer, synthesizer *Synthesizer, post *PostProcessor) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		discoverer:  discoverer,
		synthesizer: synthesizer,
		post:        post,
	}
}

// ScrapePage runs the full pipeline for one URL. Page-level fetch failures
// and per-block synthesis failures degrade to fewer (possibly zero)
// listings; they are never returned as errors. The caller seals the
// returned metrics with Finish once token usage is known.
func (p *Pipeline) ScrapePage(ctx context.Context, pageURL string) ([]models.Listing, *RunMetrics) {
	metrics := NewRunMetrics(models.NewRunID(), pageURL)

	if strings.TrimSpace(pageURL) == "" {
		log.Printf("[debug] no source URL to process")
		return []models.Listing{}, metrics
	}

	pageHTML, err := p.fetcher.Render(ctx, pageURL)
	if err != nil {
		log.Printf("[debug] fetch failed for %s: %v", pageURL, err)
		return []models.Listing{}, metrics
	}
	log.Printf("[debug] fetched %s, %d chars", pageURL, len(pageHTML))

	content, err := p.discoverer.Discover(pageHTML, pageURL)
	if err != nil {
		log.Printf("[debug] discovery failed for %s: %v", pageURL, err)
		return []models.Listing{}, metrics
	}
	metrics.BlocksDiscovered = len(content.Blocks)
	metrics.GroupsDiscovered = len(content.HeadingGroups)

	fallbackPool := p.fallbackPool(pageHTML, pageURL)
	log.Printf("[debug] found %d fallback images", len(fallbackPool))

	var raw []models.Listing

	// Heading groups first: venue-first extraction
	for i, group := range content.HeadingGroups {
		raw = p.synthesize(ctx, raw, metrics, group.Text, pageURL, group.Images,
			models.SourceRef{Type: models.SourceTypeHeadingGroup, Index: i, Images: group.Images, Text: group.Text})
	}

	// Candidate blocks when headings yielded little
	if len(raw) < minHeadingListings {
		log.Printf("[debug] few listings from headings (%d), trying candidate blocks", len(raw))
		for i, block := range content.Blocks {
			raw = p.synthesize(ctx, raw, metrics, block.Text, pageURL, block.Images,
				models.SourceRef{Type: models.SourceTypeBlock, Index: i, Images: block.Images, Text: block.Text})
		}
	}

	// JSON-LD as last resort
	if len(raw) == 0 {
		log.Printf("[debug] no listings from headings or blocks, trying JSON-LD")
		for i, payload := range content.JSONLDRaw {
			raw = p.synthesize(ctx, raw, metrics, payload, pageURL, nil,
				models.SourceRef{Type: models.SourceTypeJSONLD, Index: i, Text: payload})
		}
	}

	metrics.RawListings = len(raw)

	final := p.post.Process(raw, pageHTML, pageURL, fallbackPool)
	metrics.FinalListings = len(final)

	return final, metrics
}

// synthesize runs one block through the model, tagging results with their
// source. A failure is logged and skipped so remaining blocks still run.
func (p *Pipeline) synthesize(ctx context.Context, acc []models.Listing, metrics *RunMetrics, text, pageURL string, images []string, source models.SourceRef) []models.Listing {
	listings, err := p.synthesizer.SynthesizeBlock(ctx, text, pageURL, images)
	if err != nil {
		metrics.SynthesisFailures++
		log.Printf("[debug] error processing %s %d: %v", source.Type, source.Index+1, err)
		return acc
	}
	metrics.BlocksSynthesized++

	for i := range listings {
		listings[i].Source = source
	}
	return append(acc, listings...)
}

// fallbackPool builds the page-level image pool once per page
func (p *Pipeline) fallbackPool(pageHTML, pageURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil
	}
	return FallbackImages(doc, pageURL)
}

// WriteListingsFile writes the final artifact as formatted JSON
func WriteListingsFile(path string, output models.ListingsOutput) error {
	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling listings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, jsonData, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	log.Printf("[debug] wrote %d listings (%d bytes) to %s", len(output.Listings), len(jsonData), path)
	return nil
}
