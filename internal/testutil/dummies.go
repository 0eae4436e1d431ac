// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"sync"

	"github.com/candelahq/candela/internal/interfaces"
	"github.com/candelahq/candela/internal/logging"
	"github.com/candelahq/candela/internal/model"
	"github.com/candelahq/candela/internal/tracker"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── ContextProvider ───────────────────────────────────────────────────

// DummyContextProvider implements interfaces.ContextProvider from a
// preconfigured selector -> context map. Selectors absent from the map
// resolve to (nil, nil), i.e. "no context available". Set Err to force
// an error for every lookup.
type DummyContextProvider struct {
	Contexts       map[string]*model.ElementContext
	ScreenshotPath string
	Err            error

	mu       sync.Mutex
	Requests []string
}

func (d *DummyContextProvider) GetElementContext(_ context.Context, selector string) (*model.ElementContext, error) {
	d.mu.Lock()
	d.Requests = append(d.Requests, selector)
	d.mu.Unlock()

	if d.Err != nil {
		return nil, d.Err
	}
	return d.Contexts[selector], nil
}

func (d *DummyContextProvider) CaptureScreenshot(_ context.Context, _, _ string) (string, error) {
	return d.ScreenshotPath, nil
}

func (d *DummyContextProvider) Close() error { return nil }

// RequestedSelectors returns a copy of the selectors looked up so far.
func (d *DummyContextProvider) RequestedSelectors() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.Requests...)
}

// ─── Tracker ───────────────────────────────────────────────────────────

// DummyTracker implements interfaces.Tracker with in-memory recording.
type DummyTracker struct {
	mu      sync.Mutex
	Records []*model.AuditRecord
	Scored  map[string][]model.ScoredViolation

	SaveErr error
}

func (t *DummyTracker) SaveAudit(_ context.Context, record *model.AuditRecord, scored []model.ScoredViolation) error {
	if t.SaveErr != nil {
		return t.SaveErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Records = append(t.Records, record)
	if t.Scored == nil {
		t.Scored = make(map[string][]model.ScoredViolation)
	}
	t.Scored[record.ID] = append([]model.ScoredViolation(nil), scored...)
	return nil
}

func (t *DummyTracker) GetAudit(_ context.Context, auditID string) (*model.AuditRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.Records {
		if r.ID == auditID {
			return r, nil
		}
	}
	return nil, tracker.ErrAuditNotFound
}

func (t *DummyTracker) ListAudits(_ context.Context, limit int) ([]model.AuditRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.AuditRecord, 0, len(t.Records))
	for _, r := range t.Records {
		out = append(out, *r)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *DummyTracker) GetScoredViolations(_ context.Context, auditID string) ([]model.ScoredViolation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.ScoredViolation(nil), t.Scored[auditID]...), nil
}

func (t *DummyTracker) Close() error { return nil }

var (
	_ interfaces.ContextProvider = (*DummyContextProvider)(nil)
	_ interfaces.Tracker         = (*DummyTracker)(nil)
	_ logging.Logger             = (*DummyLogger)(nil)
)
