package services

import (
	"log"
	"time"
)

// RunMetrics accumulates pipeline counters for one scraping run. The
// pipeline loop is single-threaded, so plain fields are safe.
type RunMetrics struct {
	RunID             string    `json:"run_id"`
	SourceURL         string    `json:"source_url"`
	StartedAt         time.Time `json:"started_at"`
	BlocksDiscovered  int       `json:"blocks_discovered"`
	GroupsDiscovered  int       `json:"groups_discovered"`
	BlocksSynthesized int       `json:"blocks_synthesized"`
	SynthesisFailures int       `json:"synthesis_failures"`
	RawListings       int       `json:"raw_listings"`
	FinalListings     int       `json:"final_listings"`
	TokensUsed        int       `json:"tokens_used"`
	EstimatedCost     float64   `json:"estimated_cost"`
	DurationMS        int64     `json:"duration_ms"`
}

// NewRunMetrics starts metrics collection for one source URL
func NewRunMetrics(runID, sourceURL string) *RunMetrics {
	return &RunMetrics{
		RunID:     runID,
		SourceURL: sourceURL,
		StartedAt: time.Now(),
	}
}

// Finish seals the metrics and logs a one-line summary
func (m *RunMetrics) Finish(tokensUsed int) {
	m.TokensUsed = tokensUsed
	m.EstimatedCost = EstimateCost(tokensUsed)
	m.DurationMS = time.Since(m.StartedAt).Milliseconds()

	log.Printf("[debug] %s: %d blocks + %d groups discovered, %d synthesized (%d failures), %d raw -> %d final listings, %d tokens (~$%.4f), %dms",
		m.RunID, m.BlocksDiscovered, m.GroupsDiscovered, m.BlocksSynthesized,
		m.SynthesisFailures, m.RawListings, m.FinalListings,
		m.TokensUsed, m.EstimatedCost, m.DurationMS)
}
