package models

import "time"

// CompetitorEntry is one externally fetched market fact.
type CompetitorEntry struct {
	// Name is the competitor or product name.
	Name string `json:"name"`
	// PricingModel describes how the competitor charges
	// (e.g. "per-seat, $29/mo").
	PricingModel string `json:"pricing_model"`
	// Positioning is the competitor's one-line market positioning.
	Positioning string `json:"positioning"`
	// SourceURL points at the evidence for this entry.
	SourceURL string `json:"source_url"`
}

// ProofPack is the market-grounding data attached to a run.
// It is optional: a run proceeds without one when grounding is disabled
// or the fetch failed.
type ProofPack struct {
	// Entries are the fetched competitor facts, in source order.
	Entries []CompetitorEntry `json:"entries"`
	// FetchedAt is when the fetch completed.
	FetchedAt time.Time `json:"fetched_at"`
	// Fresh is true when the source data is within the configured
	// freshness window.
	Fresh bool `json:"fresh"`
}
