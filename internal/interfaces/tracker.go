package interfaces

import (
	"context"

	"github.com/candelahq/candela/internal/model"
)

// Tracker is the persistence contract for scored audits. The scoring core
// is stateless; only the orchestration layer reads and writes storage.
type Tracker interface {
	// SaveAudit stores the audit envelope plus every scored violation,
	// keyed by (audit id, rule id, node index).
	SaveAudit(ctx context.Context, rec *model.AuditRecord, scored []model.ScoredViolation) error

	// GetAudit returns a stored audit envelope or ErrAuditNotFound.
	GetAudit(ctx context.Context, auditID string) (*model.AuditRecord, error)

	// ListAudits returns stored audit envelopes, newest first.
	ListAudits(ctx context.Context, limit int) ([]model.AuditRecord, error)

	// GetScoredViolations returns the scored violations for an audit in
	// stored order.
	GetScoredViolations(ctx context.Context, auditID string) ([]model.ScoredViolation, error)

	// Close releases the underlying store.
	Close() error
}
