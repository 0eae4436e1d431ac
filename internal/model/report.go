package model

import "time"

// ScanReport is the ingested form of one raw scanner results document for
// a single page. Only the fields the scoring pipeline consumes are kept;
// passes/incomplete/inapplicable are carried as counts for the page-level
// compliance figure.
type ScanReport struct {
	URL          string         `json:"url,omitempty"`
	Violations   []RawViolation `json:"violations"`
	Passes       int            `json:"passes"`
	Incomplete   int            `json:"incomplete"`
	Inapplicable int            `json:"inapplicable"`

	// ComplianceScore is round(passes/totalTests*100), 0 when no tests ran.
	// It describes the page, not any single violation, and is independent
	// of confidence scoring.
	ComplianceScore int `json:"complianceScore"`
}

// AuditRecord is the persisted envelope for one scored batch.
type AuditRecord struct {
	ID        string           `json:"id"`
	URL       string           `json:"url,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	Summary   AggregateSummary `json:"summary"`
}
