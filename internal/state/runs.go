package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mentorra/mentorra/pkg/models"
)

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID         string    `json:"id"`
	Idea       string    `json:"idea"`
	Stage      string    `json:"stage"`
	Phase      string    `json:"phase"`
	Grounded   bool      `json:"grounded"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// RecordRun stores a finished run and its briefs in one transaction.
// Recording the same run id twice replaces the previous record.
func (db *DB) RecordRun(run *models.PipelineRun) error {
	contextJSON, err := json.Marshal(run.Context)
	if err != nil {
		return fmt.Errorf("marshal run context: %w", err)
	}
	decisionJSON, err := marshalNullable(run.Decision)
	if err != nil {
		return fmt.Errorf("marshal run decision: %w", err)
	}
	proofJSON, err := marshalNullable(run.Proof)
	if err != nil {
		return fmt.Errorf("marshal run proof: %w", err)
	}
	planJSON, err := marshalNullable(run.Plan)
	if err != nil {
		return fmt.Errorf("marshal run plan: %w", err)
	}
	var failuresJSON any
	if len(run.Failures) > 0 {
		data, err := json.Marshal(run.Failures)
		if err != nil {
			return fmt.Errorf("marshal run failures: %w", err)
		}
		failuresJSON = string(data)
	}

	grounded := 0
	if run.Plan != nil && run.Plan.Grounded {
		grounded = 1
	}
	var errorKind any
	if run.Err != nil {
		errorKind = string(run.Err.Kind)
	}
	var finishedAt any
	if !run.FinishedAt.IsZero() {
		finishedAt = formatTime(run.FinishedAt)
	}

	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO runs
			(id, idea, stage, phase, grounded, error_kind, context_json,
			 decision_json, proof_json, plan_json, failures_json, started_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, run.Context.Idea, string(run.Context.Stage), string(run.Phase),
			grounded, errorKind, string(contextJSON),
			decisionJSON, proofJSON, planJSON, failuresJSON,
			formatTime(run.StartedAt), finishedAt)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		if _, err := tx.Exec("DELETE FROM run_briefs WHERE run_id = ?", run.ID); err != nil {
			return fmt.Errorf("clear run briefs: %w", err)
		}
		for _, b := range run.Briefs {
			sectionsJSON, err := json.Marshal(b.Sections)
			if err != nil {
				return fmt.Errorf("marshal brief sections: %w", err)
			}
			repaired := 0
			if b.Repaired {
				repaired = 1
			}
			_, err = tx.Exec(`
				INSERT INTO run_briefs (run_id, persona_id, status, repaired, sections_json, received_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, run.ID, b.PersonaID, string(b.Status), repaired, string(sectionsJSON), formatTime(b.ReceivedAt))
			if err != nil {
				return fmt.Errorf("insert brief for %s: %w", b.PersonaID, err)
			}
		}
		return nil
	})
}

// GetRun retrieves one stored run, briefs included.
func (db *DB) GetRun(id string) (*models.PipelineRun, error) {
	row := db.QueryRow(`
		SELECT id, phase, error_kind, context_json, decision_json,
		       proof_json, plan_json, failures_json, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)

	run := &models.PipelineRun{}
	var errorKind, decisionJSON, proofJSON, planJSON, failuresJSON, finishedAt sql.NullString
	var phase, contextJSON, startedAt string

	err := row.Scan(&run.ID, &phase, &errorKind, &contextJSON, &decisionJSON,
		&proofJSON, &planJSON, &failuresJSON, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	run.Phase = models.RunPhase(phase)
	if err := json.Unmarshal([]byte(contextJSON), &run.Context); err != nil {
		return nil, fmt.Errorf("unmarshal run context: %w", err)
	}
	if err := unmarshalNullable(decisionJSON, &run.Decision); err != nil {
		return nil, fmt.Errorf("unmarshal run decision: %w", err)
	}
	if err := unmarshalNullable(proofJSON, &run.Proof); err != nil {
		return nil, fmt.Errorf("unmarshal run proof: %w", err)
	}
	if err := unmarshalNullable(planJSON, &run.Plan); err != nil {
		return nil, fmt.Errorf("unmarshal run plan: %w", err)
	}
	if err := unmarshalNullable(failuresJSON, &run.Failures); err != nil {
		return nil, fmt.Errorf("unmarshal run failures: %w", err)
	}
	if errorKind.Valid {
		run.Err = &models.PipelineError{Kind: models.PipelineErrorKind(errorKind.String), Failures: run.Failures}
	}
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finishedAt.Valid {
		if run.FinishedAt, err = parseTime(finishedAt.String); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
	}

	rows, err := db.Query(`
		SELECT persona_id, status, repaired, sections_json, received_at
		FROM run_briefs WHERE run_id = ? ORDER BY persona_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get run briefs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b := &models.AgentBrief{}
		var status, sectionsJSON, receivedAt string
		var repaired int
		if err := rows.Scan(&b.PersonaID, &status, &repaired, &sectionsJSON, &receivedAt); err != nil {
			return nil, fmt.Errorf("scan brief: %w", err)
		}
		b.Status = models.BriefStatus(status)
		b.Repaired = repaired != 0
		if err := json.Unmarshal([]byte(sectionsJSON), &b.Sections); err != nil {
			return nil, fmt.Errorf("unmarshal brief sections: %w", err)
		}
		if b.ReceivedAt, err = parseTime(receivedAt); err != nil {
			return nil, fmt.Errorf("parse brief received_at: %w", err)
		}
		run.Briefs = append(run.Briefs, b)
	}
	return run, rows.Err()
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT id, idea, stage, phase, grounded, error_kind, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		var grounded int
		var errorKind, finishedAt sql.NullString
		var startedAt string
		if err := rows.Scan(&s.ID, &s.Idea, &s.Stage, &s.Phase, &grounded, &errorKind, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		s.Grounded = grounded != 0
		s.ErrorKind = errorKind.String
		if s.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if finishedAt.Valid {
			if s.FinishedAt, err = parseTime(finishedAt.String); err != nil {
				return nil, fmt.Errorf("parse finished_at: %w", err)
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// PurgeOldRuns deletes runs older than the retention window and returns
// how many were removed.
func (db *DB) PurgeOldRuns(retention time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-retention))
	result, err := db.Exec("DELETE FROM runs WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge runs: %w", err)
	}
	return result.RowsAffected()
}

// marshalNullable JSON-encodes v, mapping a nil pointer to SQL NULL.
func marshalNullable(v any) (any, error) {
	switch val := v.(type) {
	case *models.RouterDecision:
		if val == nil {
			return nil, nil
		}
	case *models.ProofPack:
		if val == nil {
			return nil, nil
		}
	case *models.SynthesisPlan:
		if val == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// unmarshalNullable decodes a nullable JSON column into out, leaving out
// untouched for NULL.
func unmarshalNullable(col sql.NullString, out any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), out)
}
