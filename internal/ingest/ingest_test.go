package ingest_test

import (
	"strings"
	"testing"

	"github.com/candelahq/candela/internal/ingest"
	"github.com/candelahq/candela/internal/model"
)

const sampleResults = `{
	"url": "https://example.com/checkout",
	"violations": [
		{
			"id": "image-alt",
			"impact": "critical",
			"tags": ["cat.text-alternatives", "wcag2a"],
			"description": "Ensures <img> elements have alternate text",
			"help": "Images must have alternate text",
			"helpUrl": "https://dequeuniversity.com/rules/axe/4.4/image-alt",
			"nodes": [
				{
					"html": "<img src=\"hero.png\">",
					"target": ["#hero > img"],
					"failureSummary": "Fix any of the following: Element does not have an alt attribute"
				}
			]
		}
	],
	"passes": [{}, {}, {}],
	"incomplete": [{}],
	"inapplicable": [{}, {}]
}`

func TestParseReport(t *testing.T) {
	t.Parallel()

	report, err := ingest.ParseReport(strings.NewReader(sampleResults))
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}

	if report.URL != "https://example.com/checkout" {
		t.Errorf("unexpected URL %q", report.URL)
	}
	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(report.Violations))
	}

	v := report.Violations[0]
	if v.ID != "image-alt" || v.Impact != model.ImpactCritical {
		t.Errorf("unexpected violation: %+v", v)
	}
	if len(v.Nodes) != 1 || v.Nodes[0].Selector() != "#hero > img" {
		t.Errorf("unexpected nodes: %+v", v.Nodes)
	}
	if v.Nodes[0].FailureSummary == "" {
		t.Error("failure summary lost in parsing")
	}

	if report.Passes != 3 || report.Incomplete != 1 || report.Inapplicable != 2 {
		t.Errorf("unexpected bucket counts: %+v", report)
	}
	// round(3/(1+3+1)*100) = 60
	if report.ComplianceScore != 60 {
		t.Errorf("expected compliance 60, got %d", report.ComplianceScore)
	}
}

func TestParseReport_MissingViolations(t *testing.T) {
	t.Parallel()

	report, err := ingest.ParseReport(strings.NewReader(`{"url":"https://example.com"}`))
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if report.Violations == nil || len(report.Violations) != 0 {
		t.Errorf("absent violations should parse to an empty slice, got %v", report.Violations)
	}
	if report.ComplianceScore != 0 {
		t.Errorf("no evaluated checks should yield compliance 0, got %d", report.ComplianceScore)
	}
}

func TestParseReport_InvalidDocument(t *testing.T) {
	t.Parallel()

	if _, err := ingest.ParseReport(strings.NewReader(`[not json`)); err == nil {
		t.Fatal("expected error for invalid document")
	}
}

func TestParseReportBytes(t *testing.T) {
	t.Parallel()

	report, err := ingest.ParseReportBytes([]byte(sampleResults))
	if err != nil {
		t.Fatalf("ParseReportBytes: %v", err)
	}
	if len(report.Violations) != 1 {
		t.Errorf("expected 1 violation, got %d", len(report.Violations))
	}
}
