package engine

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Weights are the fixed blend coefficients for the four confidence
// sub-scores. They must sum to exactly 1.0 (within float tolerance) so the
// combined confidence stays on [0,1] without renormalization.
//
// FalsePositiveRisk is a risk, not a trust score; its weight applies to
// (1 - risk) during combination.
type Weights struct {
	SeverityWeight       float64
	DetectionReliability float64
	ContextClarity       float64
	FalsePositiveRisk    float64
}

func (w Weights) sum() float64 {
	return w.SeverityWeight + w.DetectionReliability + w.ContextClarity + w.FalsePositiveRisk
}

// Config controls scoring thresholds and batch behavior.
type Config struct {
	// ScoringVersion identifies the ruleset/weights revision, recorded for
	// auditability.
	ScoringVersion string

	// ReviewThreshold: confidence below this is always flagged for review.
	ReviewThreshold float64

	// CriticalReviewThreshold: critical-impact violations below this are
	// flagged even when ReviewThreshold did not catch them.
	CriticalReviewThreshold float64

	// FalsePositiveThreshold and LowThreshold / MediumThreshold bound the
	// severity bands derived from confidence (see mapSeverity).
	FalsePositiveThreshold float64
	LowThreshold           float64
	MediumThreshold        float64

	// DefaultConfidence is the conservative fallback applied when a single
	// batch item cannot be scored at all.
	DefaultConfidence float64

	Weights Weights

	// MaxConcurrentContext bounds simultaneous context lookups during
	// batch scoring. Context acquisition is the expensive, failure-prone
	// step, not the scoring arithmetic.
	MaxConcurrentContext int

	// ContextTimeout is the per-item budget for resolving element context;
	// on expiry the item is scored through the no-context path.
	ContextTimeout time.Duration
}

// DefaultConfig returns the canonical v1 thresholds and weights.
func DefaultConfig() *Config {
	return &Config{
		ScoringVersion:          "confidence-v1",
		ReviewThreshold:         0.85,
		CriticalReviewThreshold: 0.95,
		FalsePositiveThreshold:  0.60,
		LowThreshold:            0.75,
		MediumThreshold:         0.85,
		DefaultConfidence:       0.50,
		Weights: Weights{
			SeverityWeight:       0.35,
			DetectionReliability: 0.25,
			ContextClarity:       0.25,
			FalsePositiveRisk:    0.15,
		},
		MaxConcurrentContext: 8,
		ContextTimeout:       10 * time.Second,
	}
}

// Validate rejects configs that would break scoring invariants.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("engine: nil config")
	}
	if math.Abs(c.Weights.sum()-1.0) > 1e-9 {
		return fmt.Errorf("engine: weights must sum to 1.0, got %v", c.Weights.sum())
	}
	for _, t := range []struct {
		name string
		v    float64
	}{
		{"ReviewThreshold", c.ReviewThreshold},
		{"CriticalReviewThreshold", c.CriticalReviewThreshold},
		{"FalsePositiveThreshold", c.FalsePositiveThreshold},
		{"LowThreshold", c.LowThreshold},
		{"MediumThreshold", c.MediumThreshold},
		{"DefaultConfidence", c.DefaultConfidence},
	} {
		if t.v < 0 || t.v > 1 {
			return fmt.Errorf("engine: %s must be on [0,1], got %v", t.name, t.v)
		}
	}
	if c.FalsePositiveThreshold > c.LowThreshold || c.LowThreshold > c.MediumThreshold {
		return errors.New("engine: severity thresholds must be ordered false_positive <= low <= medium")
	}
	if c.MaxConcurrentContext <= 0 {
		return errors.New("engine: MaxConcurrentContext must be positive")
	}
	return nil
}
