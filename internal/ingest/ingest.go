// Package ingest parses raw scanner output documents (axe-core JSON result
// shape) into the model types the scoring pipeline consumes. Per-item data
// problems are tolerated; only a structurally invalid document is an error
// at this boundary.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/candelahq/candela/internal/model"
)

// rawResults mirrors the scanner's document shape. Only violations carry
// full detail; the other buckets are counted for the compliance figure.
type rawResults struct {
	URL          string               `json:"url"`
	Violations   []model.RawViolation `json:"violations"`
	Passes       []json.RawMessage    `json:"passes"`
	Incomplete   []json.RawMessage    `json:"incomplete"`
	Inapplicable []json.RawMessage    `json:"inapplicable"`
}

// ParseReport decodes one scanner results document. A document whose
// violations field is absent yields an empty violation list, not an error;
// a document that is not a JSON object at all is rejected loudly.
func ParseReport(r io.Reader) (*model.ScanReport, error) {
	var raw rawResults
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("ingest: decoding scanner results: %w", err)
	}

	report := &model.ScanReport{
		URL:          raw.URL,
		Violations:   raw.Violations,
		Passes:       len(raw.Passes),
		Incomplete:   len(raw.Incomplete),
		Inapplicable: len(raw.Inapplicable),
	}
	if report.Violations == nil {
		report.Violations = []model.RawViolation{}
	}
	report.ComplianceScore = complianceScore(len(report.Violations), report.Passes, report.Incomplete)
	return report, nil
}

// ParseReportBytes is ParseReport over an in-memory document.
func ParseReportBytes(data []byte) (*model.ScanReport, error) {
	return ParseReport(bytes.NewReader(data))
}

// complianceScore is the page-level pass rate on a 0-100 scale: passes over
// all evaluated checks, rounded. 0 when nothing was evaluated.
func complianceScore(violations, passes, incomplete int) int {
	total := violations + passes + incomplete
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(passes) / float64(total) * 100))
}
