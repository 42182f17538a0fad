// Package grounding fetches best-effort market context for a founder's idea.
// Grounding never blocks or fails a run: any error, timeout, or empty
// result degrades the plan to ungrounded and is only logged.
package grounding

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mentorra/mentorra/pkg/models"
)

// DefaultEndpoint is the hosted market scan service.
const DefaultEndpoint = "https://scan.mentorra.dev/v1/competitors"

// maxCompetitors caps how many scan entries a proof pack carries.
const maxCompetitors = 8

// Config configures the market scan fetch.
type Config struct {
	// Endpoint is the market scan service URL.
	Endpoint string
	// Timeout bounds the whole fetch.
	Timeout time.Duration
	// FreshnessWindow is how old scan data may be and still count as fresh.
	FreshnessWindow time.Duration
	// HTTPClient is the client used for the request. Nil uses
	// http.DefaultClient.
	HTTPClient *http.Client
}

// Fetcher retrieves competitor scans from the market scan service.
type Fetcher struct {
	cfg Config
}

// NewFetcher builds a fetcher, filling config gaps with defaults.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FreshnessWindow <= 0 {
		cfg.FreshnessWindow = 168 * time.Hour
	}
	return &Fetcher{cfg: cfg}
}

// scanResponse is the wire shape of a market scan reply.
type scanResponse struct {
	AsOf        string `json:"as_of"`
	Competitors []struct {
		Name         string `json:"name"`
		PricingModel string `json:"pricing_model"`
		Positioning  string `json:"positioning"`
		SourceURL    string `json:"source_url"`
	} `json:"competitors"`
}

// Fetch queries the market scan service for the founder's idea.
// It returns nil when anything goes wrong or the scan comes back empty;
// the caller treats nil as "no grounding available".
func (f *Fetcher) Fetch(ctx context.Context, fc models.FounderContext) *models.ProofPack {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	u, err := url.Parse(f.cfg.Endpoint)
	if err != nil {
		log.Printf("[grounding] bad endpoint %q: %v", f.cfg.Endpoint, err)
		return nil
	}
	q := u.Query()
	q.Set("q", buildQuery(fc))
	if fc.Stage != "" {
		q.Set("stage", string(fc.Stage))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		log.Printf("[grounding] build request: %v", err)
		return nil
	}
	req.Header.Set("Accept", "application/json")

	res, err := f.cfg.HTTPClient.Do(req)
	if err != nil {
		log.Printf("[grounding] market scan unavailable: %v", err)
		return nil
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		log.Printf("[grounding] market scan status %d", res.StatusCode)
		return nil
	}

	var payload scanResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		log.Printf("[grounding] decode scan response: %v", err)
		return nil
	}

	pack := &models.ProofPack{FetchedAt: time.Now()}
	for _, c := range payload.Competitors {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		pack.Entries = append(pack.Entries, models.CompetitorEntry{
			Name:         c.Name,
			PricingModel: c.PricingModel,
			Positioning:  c.Positioning,
			SourceURL:    c.SourceURL,
		})
		if len(pack.Entries) == maxCompetitors {
			break
		}
	}

	if len(pack.Entries) == 0 {
		log.Printf("[grounding] market scan returned no competitors")
		return nil
	}

	pack.Fresh = f.isFresh(payload.AsOf)

	return pack
}

// buildQuery condenses the founder context into a scan query string.
func buildQuery(fc models.FounderContext) string {
	parts := []string{fc.Idea}
	if fc.Industry != "" {
		parts = append(parts, fc.Industry)
	}
	return strings.Join(parts, " ")
}

// isFresh reports whether the scan timestamp falls inside the freshness
// window. A missing or unparseable timestamp counts as stale.
func (f *Fetcher) isFresh(asOf string) bool {
	if asOf == "" {
		return false
	}
	t, err := time.Parse(time.RFC3339, asOf)
	if err != nil {
		log.Printf("[grounding] bad as_of timestamp %q: %v", asOf, err)
		return false
	}
	return time.Since(t) <= f.cfg.FreshnessWindow
}
