// Package tracker persists scored audits in SQLite for historical
// comparison. The scoring core is stateless; only the orchestration layer
// talks to the tracker.
package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/candelahq/candela/internal/interfaces"
	"github.com/candelahq/candela/internal/logging"
	"github.com/candelahq/candela/internal/model"
	_ "modernc.org/sqlite" // SQLite driver
)

// ErrAuditNotFound is returned when no audit matches the requested id.
var ErrAuditNotFound = errors.New("tracker: audit not found")

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS audits (
	id           TEXT PRIMARY KEY,
	url          TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	summary_json TEXT NOT NULL
);

-- One row per (audit, rule, node occurrence). node_index 0 carries the
-- full scored violation document; higher indexes exist so selector-level
-- history can be queried across audits.
CREATE TABLE IF NOT EXISTS scored_violations (
	audit_id       TEXT NOT NULL REFERENCES audits(id) ON DELETE CASCADE,
	rule_id        TEXT NOT NULL,
	node_index     INTEGER NOT NULL,
	selector       TEXT NOT NULL DEFAULT '',
	impact         TEXT NOT NULL DEFAULT '',
	confidence     REAL NOT NULL,
	severity       TEXT NOT NULL,
	flagged        INTEGER NOT NULL,
	violation_json TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (audit_id, rule_id, node_index)
);

CREATE INDEX IF NOT EXISTS idx_scored_violations_audit
	ON scored_violations(audit_id);
CREATE INDEX IF NOT EXISTS idx_scored_violations_selector
	ON scored_violations(rule_id, selector);
`

// SQLiteTracker implements interfaces.Tracker on a local SQLite database.
type SQLiteTracker struct {
	db     *sql.DB
	logger logging.Logger
	cfg    *Config
}

// NewSQLiteTracker opens (or creates) the audit database.
func NewSQLiteTracker(cfg *Config, logger logging.Logger) (*SQLiteTracker, error) {
	if logger == nil {
		return nil, errors.New("tracker: nil logger provided")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	dir := filepath.Join(cfg.StoragePath, ".candela")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "audits.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("SQLiteTracker initialized", logging.Field{Key: "storage_path", Value: cfg.StoragePath})
	return &SQLiteTracker{db: db, logger: logger, cfg: cfg}, nil
}

// SaveAudit stores the audit envelope and every scored violation in one
// transaction.
func (t *SQLiteTracker) SaveAudit(ctx context.Context, rec *model.AuditRecord, scored []model.ScoredViolation) error {
	if rec == nil || rec.ID == "" {
		return errors.New("tracker: audit record must have an id")
	}

	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO audits (id, url, created_at, summary_json) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.URL, rec.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"), string(summaryJSON))
	if err != nil {
		return fmt.Errorf("inserting audit %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scored_violations
		(audit_id, rule_id, node_index, selector, impact, confidence, severity, flagged, violation_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, sv := range scored {
		violationJSON, err := json.Marshal(sv)
		if err != nil {
			return fmt.Errorf("marshaling scored violation %s: %w", sv.ID, err)
		}
		flagged := 0
		if sv.FlaggedForReview {
			flagged = 1
		}

		if len(sv.Nodes) == 0 {
			if _, err := stmt.ExecContext(ctx, rec.ID, sv.ID, 0, "", string(sv.Impact),
				sv.Confidence, string(sv.Severity), flagged, string(violationJSON)); err != nil {
				return fmt.Errorf("inserting scored violation %s: %w", sv.ID, err)
			}
			continue
		}

		for i, n := range sv.Nodes {
			doc := ""
			if i == 0 {
				doc = string(violationJSON)
			}
			if _, err := stmt.ExecContext(ctx, rec.ID, sv.ID, i, n.Selector(), string(sv.Impact),
				sv.Confidence, string(sv.Severity), flagged, doc); err != nil {
				return fmt.Errorf("inserting scored violation %s node %d: %w", sv.ID, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing audit %s: %w", rec.ID, err)
	}

	t.logger.Info("audit saved",
		logging.Field{Key: "audit_id", Value: rec.ID},
		logging.Field{Key: "violations", Value: len(scored)})
	return nil
}

// GetAudit returns the stored audit envelope or ErrAuditNotFound.
func (t *SQLiteTracker) GetAudit(ctx context.Context, auditID string) (*model.AuditRecord, error) {
	row := t.db.QueryRowContext(ctx,
		`SELECT id, url, created_at, summary_json FROM audits WHERE id = ?`, auditID)
	rec, err := scanAudit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuditNotFound
	}
	return rec, err
}

// ListAudits returns audit envelopes, newest first. limit <= 0 means all.
func (t *SQLiteTracker) ListAudits(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	q := `SELECT id, url, created_at, summary_json FROM audits ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audits: %w", err)
	}
	defer rows.Close()

	var out []model.AuditRecord
	for rows.Next() {
		rec, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// GetScoredViolations reconstructs the scored batch for an audit in stored
// order.
func (t *SQLiteTracker) GetScoredViolations(ctx context.Context, auditID string) ([]model.ScoredViolation, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT violation_json FROM scored_violations
		 WHERE audit_id = ? AND node_index = 0 ORDER BY rowid`, auditID)
	if err != nil {
		return nil, fmt.Errorf("querying scored violations: %w", err)
	}
	defer rows.Close()

	var out []model.ScoredViolation
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning scored violation: %w", err)
		}
		var sv model.ScoredViolation
		if err := json.Unmarshal([]byte(doc), &sv); err != nil {
			return nil, fmt.Errorf("decoding scored violation: %w", err)
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

// Close closes the database.
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(row rowScanner) (*model.AuditRecord, error) {
	var rec model.AuditRecord
	var createdAt, summaryJSON string
	if err := row.Scan(&rec.ID, &rec.URL, &createdAt, &summaryJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summaryJSON), &rec.Summary); err != nil {
		return nil, fmt.Errorf("decoding audit summary: %w", err)
	}
	if ts, err := parseTimestamp(createdAt); err == nil {
		rec.CreatedAt = ts
	}
	return &rec, nil
}

var _ interfaces.Tracker = (*SQLiteTracker)(nil)
