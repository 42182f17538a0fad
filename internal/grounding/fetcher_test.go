package grounding

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mentorra/mentorra/pkg/models"
)

func founderContext() models.FounderContext {
	return models.FounderContext{
		Idea:     "B2B SaaS for dental clinics",
		Industry: "healthcare",
		Stage:    models.StagePreRevenue,
	}
}

func TestFetchSuccess(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprintf(w, `{
			"as_of": %q,
			"competitors": [
				{"name": "RivalCo", "pricing_model": "per-seat, $29/mo", "positioning": "all-in-one", "source_url": "https://rivalco.example"},
				{"name": "OtherCo", "pricing_model": "freemium", "positioning": "entry-level", "source_url": "https://otherco.example"},
				{"name": "ThirdCo", "pricing_model": "usage-based", "positioning": "enterprise", "source_url": "https://thirdco.example"}
			]
		}`, time.Now().Add(-time.Hour).Format(time.RFC3339))
	}))
	defer srv.Close()

	f := NewFetcher(Config{Endpoint: srv.URL, Timeout: time.Second, FreshnessWindow: 24 * time.Hour})
	pack := f.Fetch(context.Background(), founderContext())
	if pack == nil {
		t.Fatal("Fetch() = nil, want a proof pack")
	}
	if len(pack.Entries) != 3 {
		t.Errorf("got %d entries, want 3", len(pack.Entries))
	}
	if pack.Entries[0].Name != "RivalCo" {
		t.Errorf("first entry = %q, want source order preserved", pack.Entries[0].Name)
	}
	if !pack.Fresh {
		t.Error("Fresh = false for hour-old data inside a 24h window")
	}
	if gotQuery != "B2B SaaS for dental clinics healthcare" {
		t.Errorf("scan query = %q, want idea plus industry", gotQuery)
	}
}

func TestFetchFailuresYieldNil(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "not json")
		}},
		{"empty scan", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"as_of": "", "competitors": []}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			f := NewFetcher(Config{Endpoint: srv.URL, Timeout: time.Second})
			if pack := f.Fetch(context.Background(), founderContext()); pack != nil {
				t.Errorf("Fetch() = %+v, want nil", pack)
			}
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	f := NewFetcher(Config{Endpoint: srv.URL, Timeout: 30 * time.Millisecond})

	start := time.Now()
	pack := f.Fetch(context.Background(), founderContext())
	if pack != nil {
		t.Errorf("Fetch() = %+v, want nil on timeout", pack)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Fetch() blocked %v past its timeout", elapsed)
	}
}

func TestFetchStaleData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"as_of": %q, "competitors": [{"name": "RivalCo"}]}`,
			time.Now().Add(-30*24*time.Hour).Format(time.RFC3339))
	}))
	defer srv.Close()

	f := NewFetcher(Config{Endpoint: srv.URL, Timeout: time.Second, FreshnessWindow: 168 * time.Hour})
	pack := f.Fetch(context.Background(), founderContext())
	if pack == nil {
		t.Fatal("Fetch() = nil, want a stale but present pack")
	}
	if pack.Fresh {
		t.Error("Fresh = true for month-old data")
	}
}

func TestFetchEntryCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"as_of": "", "competitors": [`)
		for i := 0; i < 20; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"name": "Competitor %d"}`, i)
		}
		fmt.Fprint(w, `]}`)
	}))
	defer srv.Close()

	f := NewFetcher(Config{Endpoint: srv.URL, Timeout: time.Second})
	pack := f.Fetch(context.Background(), founderContext())
	if pack == nil {
		t.Fatal("Fetch() = nil, want a pack")
	}
	if len(pack.Entries) != maxCompetitors {
		t.Errorf("got %d entries, want capped at %d", len(pack.Entries), maxCompetitors)
	}
}
