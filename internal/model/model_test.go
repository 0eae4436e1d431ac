package model_test

import (
	"encoding/json"
	"testing"

	"github.com/candelahq/candela/internal/model"
)

func TestImpact_Known(t *testing.T) {
	t.Parallel()
	for _, i := range []model.Impact{model.ImpactMinor, model.ImpactModerate, model.ImpactSerious, model.ImpactCritical} {
		if !i.Known() {
			t.Errorf("impact %q should be known", i)
		}
	}
	for _, i := range []model.Impact{"", "catastrophic", "CRITICAL"} {
		if i.Known() {
			t.Errorf("impact %q should not be known", i)
		}
	}
}

func TestViolationNode_Selector(t *testing.T) {
	t.Parallel()
	n := model.ViolationNode{Target: []string{"#outer", "#inner"}}
	if got := n.Selector(); got != "#outer" {
		t.Errorf("Selector() = %q, want #outer", got)
	}
	if got := (model.ViolationNode{}).Selector(); got != "" {
		t.Errorf("Selector() on empty node = %q, want empty", got)
	}
}

func TestRawViolation_ScannerFieldNames(t *testing.T) {
	t.Parallel()

	// Field names must match the scanner's own document shape.
	doc := `{
		"id": "image-alt",
		"impact": "critical",
		"helpUrl": "https://example.com/rules/image-alt",
		"nodes": [{"html": "<img>", "target": ["#a"], "failureSummary": "missing alt"}]
	}`
	var v model.RawViolation
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.HelpURL != "https://example.com/rules/image-alt" {
		t.Errorf("helpUrl not decoded: %+v", v)
	}
	if len(v.Nodes) != 1 || v.Nodes[0].FailureSummary != "missing alt" {
		t.Errorf("failureSummary not decoded: %+v", v.Nodes)
	}
}
