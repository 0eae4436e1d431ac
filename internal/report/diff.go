package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/candelahq/candela/internal/model"
)

// Comparison is the line-level difference between two audit summaries,
// oldest first.
type Comparison struct {
	BaseAuditID string `json:"baseAuditId"`
	HeadAuditID string `json:"headAuditId"`

	// Unchanged is true when the two summaries render identically.
	Unchanged bool `json:"unchanged"`

	// Diff is a unified-style listing; lines prefixed "-" only appear in
	// the base audit, "+" only in the head audit.
	Diff string `json:"diff"`
}

// Compare diffs the deterministic summary renderings of two audits line by
// line. The envelope (id, url, timestamps) is excluded so identical results
// from different runs compare as unchanged.
func Compare(base, head model.AuditRecord) Comparison {
	baseText := RenderSummary(base.Summary)
	headText := RenderSummary(head.Summary)

	if baseText == headText {
		return Comparison{BaseAuditID: base.ID, HeadAuditID: head.ID, Unchanged: true}
	}

	dmp := diffmatchpatch.New()
	baseLines, headLines, lineArray := dmp.DiffLinesToChars(baseText, headText)
	diffs := dmp.DiffMain(baseLines, headLines, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var b strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.Split(strings.TrimRight(d.Text, "\n"), "\n") {
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return Comparison{
		BaseAuditID: base.ID,
		HeadAuditID: head.ID,
		Diff:        b.String(),
	}
}
