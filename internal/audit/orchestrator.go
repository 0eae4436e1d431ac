// Package audit orchestrates the scoring pipeline: ingested report →
// context resolution → scoring → aggregation → persistence. Long-running
// audits run as jobs with progress events, mirroring how clients consume
// them over the API.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/candelahq/candela/internal/aggregate"
	"github.com/candelahq/candela/internal/engine"
	"github.com/candelahq/candela/internal/interfaces"
	"github.com/candelahq/candela/internal/logging"
	"github.com/candelahq/candela/internal/model"
	"github.com/candelahq/candela/internal/pagecontext"
)

type JobEventType string

const (
	JobEventStatus JobEventType = "status"
	JobEventResult JobEventType = "result"
)

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

type JobEvent struct {
	JobID  string       `json:"job_id"`
	Type   JobEventType `json:"type"`
	Status JobStatus    `json:"status,omitempty"`
	Error  string       `json:"error,omitempty"`

	// AuditID accompanies the result event.
	AuditID string `json:"audit_id,omitempty"`
}

type Job struct {
	ID        string        `json:"id"`
	URL       string        `json:"url,omitempty"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Events    chan JobEvent `json:"-"`

	// AuditID is set once the job completes.
	AuditID string `json:"audit_id,omitempty"`
}

// Options select the context source for one audit run.
type Options struct {
	// ContextBackend is "", "chromedp" or "snippet". Empty scores every
	// violation through the no-context path.
	ContextBackend string

	// TargetURL overrides the report's URL for live-page inspection.
	TargetURL string
}

// Result is one completed audit.
type Result struct {
	Record *model.AuditRecord      `json:"record"`
	Scored []model.ScoredViolation `json:"scored"`
}

// Orchestrator wires the engine, context providers and tracker together.
type Orchestrator struct {
	cfg     *Config
	engine  *engine.Engine
	tracker interfaces.Tracker
	logger  logging.Logger

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
}

// NewOrchestrator builds the engine from cfg and ties in the tracker. The
// tracker may be nil for score-only (non-persisting) use.
func NewOrchestrator(cfg *Config, tr interfaces.Tracker, logger logging.Logger) (*Orchestrator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		return nil, errors.New("audit: nil logger")
	}

	eng, err := engine.New(cfg.Engine, logger)
	if err != nil {
		return nil, fmt.Errorf("constructing engine: %w", err)
	}

	return &Orchestrator{
		cfg:        cfg,
		engine:     eng,
		tracker:    tr,
		logger:     logger.With(logging.Field{Key: "component", Value: "audit-orchestrator"}),
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}, nil
}

// RunAudit scores one ingested report synchronously, aggregates and, when a
// tracker is configured, persists the result. Partial results are the rule:
// provider construction failure degrades to no-context scoring rather than
// failing the audit.
func (o *Orchestrator) RunAudit(ctx context.Context, report *model.ScanReport, opts Options) (*Result, error) {
	if report == nil {
		return nil, errors.New("audit: nil report")
	}

	provider := o.buildProvider(report, opts)
	if provider != nil {
		defer provider.Close()
	}

	scored := o.engine.ScoreAll(ctx, report.Violations, provider)
	summary := aggregate.Summarize(scored)

	rec := &model.AuditRecord{
		ID:        uuid.New().String(),
		URL:       report.URL,
		CreatedAt: time.Now().UTC(),
		Summary:   summary,
	}

	if o.tracker != nil {
		if err := o.tracker.SaveAudit(ctx, rec, scored); err != nil {
			return nil, fmt.Errorf("persisting audit: %w", err)
		}
	}

	o.logger.Info("audit complete",
		logging.Field{Key: "audit_id", Value: rec.ID},
		logging.Field{Key: "total", Value: summary.Total},
		logging.Field{Key: "flagged", Value: summary.FlaggedForReview},
		logging.Field{Key: "avg_confidence", Value: summary.AverageConfidence})

	return &Result{Record: rec, Scored: scored}, nil
}

// buildProvider resolves the configured context backend. Failure to build
// one is a degraded-mode condition, not an audit failure.
func (o *Orchestrator) buildProvider(report *model.ScanReport, opts Options) interfaces.ContextProvider {
	if opts.ContextBackend == "" {
		return nil
	}

	target := opts.TargetURL
	if target == "" {
		target = report.URL
	}

	provider, err := pagecontext.New(&pagecontext.Config{
		Backend:       pagecontext.Backend(opts.ContextBackend),
		TargetURL:     target,
		EvidenceDir:   o.cfg.EvidenceDir,
		SettleTimeout: 10 * time.Second,
		Headless:      o.cfg.Headless,
		Violations:    report.Violations,
	}, o.logger)
	if err != nil {
		o.logger.Warn("context provider unavailable, scoring without context",
			logging.Field{Key: "backend", Value: opts.ContextBackend},
			logging.Field{Key: "error", Value: err.Error()})
		return nil
	}
	return provider
}

// StartAuditJob runs RunAudit in the background, reporting progress on the
// job's event channel.
func (o *Orchestrator) StartAuditJob(ctx context.Context, report *model.ScanReport, opts Options) (*Job, error) {
	if report == nil {
		return nil, errors.New("audit: nil report")
	}

	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		URL:       report.URL,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
	}

	jobCtx, cancel := context.WithCancel(ctx)

	o.jobsMu.Lock()
	o.jobs[jobID] = job
	o.jobCancels[jobID] = cancel
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	go func() {
		defer func() {
			o.jobsMu.Lock()
			job.EndedAt = time.Now().UTC()
			delete(o.jobCancels, jobID)
			o.jobsMu.Unlock()

			// Close events so websocket consumers terminate cleanly.
			close(job.Events)
		}()

		o.setJobStatus(jobID, JobRunning, "")
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobRunning})

		result, err := o.RunAudit(jobCtx, report, opts)
		if err != nil {
			status := JobFailed
			msg := err.Error()
			if jobCtx.Err() != nil {
				status = JobCanceled
				msg = jobCtx.Err().Error()
			}
			o.setJobStatus(jobID, status, msg)
			o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: status, Error: msg})
			return
		}

		o.jobsMu.Lock()
		job.Status = JobDone
		job.AuditID = result.Record.ID
		o.jobsMu.Unlock()
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventResult, Status: JobDone, AuditID: result.Record.ID})
	}()

	return job, nil
}

func (o *Orchestrator) setJobStatus(jobID string, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if j, ok := o.jobs[jobID]; ok {
		j.Status = status
		j.Error = errMsg
	}
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if the buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

// GetJob returns a job by id, or nil.
func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	return o.jobs[jobID]
}

// ListJobs returns all known jobs in unspecified order.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	out := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		out = append(out, j)
	}
	return out
}

// CancelJob cancels a running job. Unknown ids are ignored.
func (o *Orchestrator) CancelJob(jobID string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Tracker exposes the configured tracker for read paths (API handlers).
func (o *Orchestrator) Tracker() interfaces.Tracker {
	return o.tracker
}

// Engine exposes the underlying scoring engine.
func (o *Orchestrator) Engine() *engine.Engine {
	return o.engine
}

// Close releases held resources.
func (o *Orchestrator) Close() {
	if o.tracker != nil {
		_ = o.tracker.Close()
	}
}
