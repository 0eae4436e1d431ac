package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/candelahq/candela/internal/audit"
	"github.com/candelahq/candela/internal/model"
	"github.com/candelahq/candela/internal/pagecontext"
	"github.com/candelahq/candela/internal/testutil"
)

func reportFixture() *model.ScanReport {
	return &model.ScanReport{
		URL: "https://example.com",
		Violations: []model.RawViolation{
			{
				ID:     "image-alt",
				Impact: model.ImpactCritical,
				Nodes: []model.ViolationNode{
					{HTML: `<img src="a.png">`, Target: []string{"#a"}, FailureSummary: "Element does not have an alt attribute"},
				},
			},
			{
				ID:     "region",
				Impact: model.ImpactMinor,
				Nodes:  []model.ViolationNode{{}},
			},
		},
	}
}

func newTestOrchestrator(t *testing.T, trk *testutil.DummyTracker) *audit.Orchestrator {
	t.Helper()
	pagecontext.RegisterDefaultBackends()

	orch, err := audit.NewOrchestrator(audit.DefaultConfig(), trk, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return orch
}

func TestRunAudit_ScoresAndPersists(t *testing.T) {
	t.Parallel()
	trk := &testutil.DummyTracker{}
	orch := newTestOrchestrator(t, trk)

	result, err := orch.RunAudit(context.Background(), reportFixture(), audit.Options{})
	if err != nil {
		t.Fatalf("RunAudit: %v", err)
	}

	if len(result.Scored) != 2 {
		t.Fatalf("expected 2 scored violations, got %d", len(result.Scored))
	}
	if result.Record.ID == "" {
		t.Error("audit record must have an id")
	}
	if result.Record.URL != "https://example.com" {
		t.Errorf("unexpected record url %q", result.Record.URL)
	}
	if result.Record.Summary.Total != 2 {
		t.Errorf("unexpected summary: %+v", result.Record.Summary)
	}

	if len(trk.Records) != 1 || trk.Records[0].ID != result.Record.ID {
		t.Errorf("audit not persisted: %+v", trk.Records)
	}
	if len(trk.Scored[result.Record.ID]) != 2 {
		t.Errorf("scored violations not persisted: %+v", trk.Scored)
	}
}

func TestRunAudit_NilTrackerScoresOnly(t *testing.T) {
	t.Parallel()
	pagecontext.RegisterDefaultBackends()
	orch, err := audit.NewOrchestrator(audit.DefaultConfig(), nil, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}

	result, err := orch.RunAudit(context.Background(), reportFixture(), audit.Options{})
	if err != nil {
		t.Fatalf("RunAudit: %v", err)
	}
	if len(result.Scored) != 2 {
		t.Errorf("expected 2 scored violations, got %d", len(result.Scored))
	}
}

func TestRunAudit_SnippetBackendAppliesContext(t *testing.T) {
	t.Parallel()
	orch := newTestOrchestrator(t, &testutil.DummyTracker{})

	result, err := orch.RunAudit(context.Background(), reportFixture(), audit.Options{
		ContextBackend: "snippet",
	})
	if err != nil {
		t.Fatalf("RunAudit: %v", err)
	}

	// The image-alt node carries markup the snippet backend can resolve;
	// the bare region node does not.
	var imageAlt, region *model.ScoredViolation
	for i := range result.Scored {
		switch result.Scored[i].ID {
		case "image-alt":
			imageAlt = &result.Scored[i]
		case "region":
			region = &result.Scored[i]
		}
	}
	if imageAlt == nil || region == nil {
		t.Fatalf("missing scored violations: %+v", result.Scored)
	}
	if !imageAlt.Factors.ContextApplied {
		t.Error("snippet context should apply to the node with markup")
	}
	if region.Factors.ContextApplied {
		t.Error("bare node must score through the no-context path")
	}
}

func TestRunAudit_NilReportRejected(t *testing.T) {
	t.Parallel()
	orch := newTestOrchestrator(t, &testutil.DummyTracker{})

	if _, err := orch.RunAudit(context.Background(), nil, audit.Options{}); err == nil {
		t.Fatal("expected error for nil report")
	}
}

func TestStartAuditJob_CompletesWithEvents(t *testing.T) {
	t.Parallel()
	trk := &testutil.DummyTracker{}
	orch := newTestOrchestrator(t, trk)

	job, err := orch.StartAuditJob(context.Background(), reportFixture(), audit.Options{})
	if err != nil {
		t.Fatalf("StartAuditJob: %v", err)
	}
	if orch.GetJob(job.ID) == nil {
		t.Fatal("job should be registered")
	}

	var last audit.JobEvent
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-job.Events:
			if !ok {
				goto done
			}
			last = ev
		case <-deadline:
			t.Fatal("timed out waiting for job events")
		}
	}
done:
	if last.Type != audit.JobEventResult || last.Status != audit.JobDone {
		t.Errorf("expected terminal result event, got %+v", last)
	}
	if last.AuditID == "" {
		t.Error("result event must carry the audit id")
	}

	final := orch.GetJob(job.ID)
	if final.Status != audit.JobDone || final.AuditID != last.AuditID {
		t.Errorf("job not finalized: %+v", final)
	}
	if len(trk.Records) != 1 {
		t.Errorf("job should persist its audit, got %+v", trk.Records)
	}
}

func TestCancelJob_UnknownIDIgnored(t *testing.T) {
	t.Parallel()
	orch := newTestOrchestrator(t, &testutil.DummyTracker{})

	orch.CancelJob("not-a-job") // must not panic
	if jobs := orch.ListJobs(); len(jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(jobs))
	}
}
