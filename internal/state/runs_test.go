package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mentorra/mentorra/pkg/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "mentorra.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	return db
}

func sampleRun(id string, startedAt time.Time) *models.PipelineRun {
	return &models.PipelineRun{
		ID: id,
		Context: models.FounderContext{
			Idea:        "B2B SaaS for dental clinics",
			Stage:       models.StagePreRevenue,
			Constraints: []string{"solo founder"},
		},
		Decision: &models.RouterDecision{Selected: []models.Selection{
			{PersonaID: "product", Score: 2, Rationale: "matched 2 tag(s): saas, b2b"},
			{PersonaID: "sales", Score: 1, Rationale: "matched 1 tag(s): b2b"},
		}},
		Briefs: []*models.AgentBrief{
			{
				PersonaID: "product",
				Sections: []models.BriefSection{
					{Name: models.SectionDiagnosis, Body: "too broad"},
					{Name: models.SectionKeyInsight, Body: "niche down"},
					{Name: models.SectionLikelyMistake, Body: "building too much"},
					{Name: models.SectionRecommendedAction, Body: "cut scope"},
					{Name: models.SectionImmediateAction, Body: "talk to users"},
				},
				Status:     models.BriefValid,
				ReceivedAt: startedAt.Add(2 * time.Second),
			},
		},
		Failures: []*models.AgentError{
			{PersonaID: "sales", Kind: models.AgentTimeout, Detail: "still pending at the fan-in deadline"},
		},
		Plan: &models.SynthesisPlan{
			Items: []models.PlanItem{
				{Days: models.DayRange{Start: 1, End: 30}, Action: "talk to users", PersonaIDs: []string{"product"}},
			},
			Grounded:    false,
			GeneratedAt: startedAt.Add(3 * time.Second),
		},
		Phase:      models.PhaseDone,
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(3 * time.Second),
	}
}

func TestRecordAndGetRun(t *testing.T) {
	db := newTestDB(t)
	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)

	if err := db.RecordRun(sampleRun("run1", started)); err != nil {
		t.Fatalf("RecordRun() error: %v", err)
	}

	got, err := db.GetRun("run1")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if got.Context.Idea != "B2B SaaS for dental clinics" {
		t.Errorf("Idea = %q, want the stored idea", got.Context.Idea)
	}
	if got.Phase != models.PhaseDone {
		t.Errorf("Phase = %q, want %q", got.Phase, models.PhaseDone)
	}
	if got.Decision == nil || len(got.Decision.Selected) != 2 {
		t.Errorf("Decision = %+v, want 2 selections", got.Decision)
	}
	if len(got.Briefs) != 1 || got.Briefs[0].PersonaID != "product" {
		t.Fatalf("Briefs = %+v, want the product brief", got.Briefs)
	}
	if got.Briefs[0].Section(models.SectionImmediateAction) != "talk to users" {
		t.Errorf("brief sections did not round-trip: %+v", got.Briefs[0].Sections)
	}
	if len(got.Failures) != 1 || got.Failures[0].Kind != models.AgentTimeout {
		t.Errorf("Failures = %+v, want the sales timeout", got.Failures)
	}
	if got.Plan == nil || len(got.Plan.Items) != 1 {
		t.Errorf("Plan = %+v, want one item", got.Plan)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
}

func TestRecordFailedRun(t *testing.T) {
	db := newTestDB(t)

	run := &models.PipelineRun{
		ID:      "run2",
		Context: models.FounderContext{Idea: "x", Stage: models.StageIdea},
		Failures: []*models.AgentError{
			{PersonaID: "product", Kind: models.AgentTransport, Detail: "connection reset"},
		},
		Err:        &models.PipelineError{Kind: models.PipelineAllAgentsFailed},
		Phase:      models.PhaseFailed,
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
	}
	if err := db.RecordRun(run); err != nil {
		t.Fatalf("RecordRun() error: %v", err)
	}

	got, err := db.GetRun("run2")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if got.Err == nil || got.Err.Kind != models.PipelineAllAgentsFailed {
		t.Errorf("Err = %+v, want all_agents_failed", got.Err)
	}
	if got.Plan != nil {
		t.Errorf("Plan = %+v, want nil for a failed run", got.Plan)
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.GetRun("missing"); err == nil {
		t.Fatal("GetRun() on a missing id returned nil error")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	base := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)

	for i, id := range []string{"old", "mid", "new"} {
		if err := db.RecordRun(sampleRun(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("RecordRun(%s) error: %v", id, err)
		}
	}

	summaries, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].ID != "new" || summaries[1].ID != "mid" {
		t.Errorf("order = [%s, %s], want [new, mid]", summaries[0].ID, summaries[1].ID)
	}
}

func TestPurgeOldRuns(t *testing.T) {
	db := newTestDB(t)

	if err := db.RecordRun(sampleRun("ancient", time.Now().Add(-40*24*time.Hour))); err != nil {
		t.Fatalf("RecordRun() error: %v", err)
	}
	if err := db.RecordRun(sampleRun("recent", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("RecordRun() error: %v", err)
	}

	purged, err := db.PurgeOldRuns(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeOldRuns() error: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged %d runs, want 1", purged)
	}

	summaries, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != "recent" {
		t.Errorf("remaining = %+v, want only the recent run", summaries)
	}
}
