// Package engine converts raw accessibility-rule violations into calibrated
// confidence scores with full attribution. Scoring is pure with respect to
// its logical inputs: any I/O needed to obtain element context happens in a
// ContextProvider before scoring, so the engine is testable without a
// browser and trivially parallelizable.
package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/candelahq/candela/internal/interfaces"
	"github.com/candelahq/candela/internal/logging"
	"github.com/candelahq/candela/internal/model"
	"github.com/candelahq/candela/internal/utils"
)

// Engine scores violations against the curated rule tables. It holds no
// mutable state after construction; a single Engine is safe for concurrent
// use.
type Engine struct {
	cfg    *Config
	logger logging.Logger
}

// New validates the config and constructs an Engine. A nil config gets
// DefaultConfig; a nil logger is rejected.
func New(cfg *Config, logger logging.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, fmt.Errorf("engine: nil logger")
	}
	l := logger.With(logging.Field{Key: "component", Value: "scoring-engine"})
	l.Info("scoring engine constructed", logging.Field{Key: "scoring_version", Value: cfg.ScoringVersion})
	return &Engine{cfg: cfg, logger: l}, nil
}

// Score produces a ScoredViolation for one violation plus optional element
// context. Deterministic and side-effect free: the same inputs always yield
// an identical result.
func (e *Engine) Score(v model.RawViolation, elCtx *model.ElementContext) model.ScoredViolation {
	if v.ID == "" {
		return e.conservativeDefault(v, "malformed violation: missing rule id")
	}

	reasoning := make([]string, 0, 8)

	sev := severityWeight(v, &reasoning)

	// Contextual adjustment supersedes the plain reliability term when
	// context is available; they are never blended.
	var rel float64
	contextApplied := elCtx != nil
	if contextApplied {
		rel = contextualScore(v, elCtx, &reasoning)
	} else {
		rel = detectionReliability(v, &reasoning)
	}

	clarity := contextClarity(v, &reasoning)
	risk := falsePositiveRisk(v, &reasoning)

	w := e.cfg.Weights
	confidence := w.SeverityWeight*sev +
		w.DetectionReliability*rel +
		w.ContextClarity*clarity +
		w.FalsePositiveRisk*(1-risk)
	confidence = utils.Round2(utils.Clamp01(confidence))

	flagged := e.shouldFlag(v, confidence, &reasoning)
	severity := e.mapSeverity(v, confidence, &reasoning)

	return model.ScoredViolation{
		RawViolation:     v,
		Confidence:       confidence,
		Severity:         severity,
		FlaggedForReview: flagged,
		Factors: model.Factors{
			SeverityWeight:       sev,
			DetectionReliability: rel,
			ContextClarity:       clarity,
			FalsePositiveRisk:    risk,
			ContextApplied:       contextApplied,
		},
		Reasoning: reasoning,
	}
}

// shouldFlag applies the review rules in priority order. The first match
// decides, but every matching reason is still recorded for the audit trail.
func (e *Engine) shouldFlag(v model.RawViolation, confidence float64, reasoning *[]string) bool {
	flagged := false

	if confidence < e.cfg.ReviewThreshold {
		flagged = true
		*reasoning = append(*reasoning, fmt.Sprintf("confidence %.2f < %.2f → flagged for review", confidence, e.cfg.ReviewThreshold))
	}
	if v.Impact == model.ImpactCritical && confidence < e.cfg.CriticalReviewThreshold {
		flagged = true
		*reasoning = append(*reasoning, fmt.Sprintf("critical impact with confidence %.2f < %.2f → flagged for review", confidence, e.cfg.CriticalReviewThreshold))
	}
	if isSubjectiveRule(v.ID) {
		flagged = true
		*reasoning = append(*reasoning, fmt.Sprintf("subjective rule %s → flagged for review", v.ID))
	}

	return flagged
}

// mapSeverity derives the displayed band. Low confidence downgrades the
// band regardless of impact; only above MediumThreshold does impact map
// through directly.
func (e *Engine) mapSeverity(v model.RawViolation, confidence float64, reasoning *[]string) model.Severity {
	switch {
	case confidence < e.cfg.FalsePositiveThreshold:
		*reasoning = append(*reasoning, fmt.Sprintf("confidence %.2f < %.2f → severity false_positive", confidence, e.cfg.FalsePositiveThreshold))
		return model.SeverityFalsePositive
	case confidence < e.cfg.LowThreshold:
		return model.SeverityLow
	case confidence < e.cfg.MediumThreshold:
		return model.SeverityMedium
	}

	switch v.Impact {
	case model.ImpactCritical:
		return model.SeverityCritical
	case model.ImpactSerious:
		return model.SeverityHigh
	case model.ImpactModerate:
		return model.SeverityMedium
	case model.ImpactMinor:
		return model.SeverityLow
	default:
		return model.SeverityMedium
	}
}

// conservativeDefault is the batch-safe substitute for an item that cannot
// be scored: mid confidence, flagged for review, reasoning explaining why.
func (e *Engine) conservativeDefault(v model.RawViolation, reason string) model.ScoredViolation {
	c := e.cfg.DefaultConfidence
	return model.ScoredViolation{
		RawViolation:     v,
		Confidence:       c,
		Severity:         model.SeverityMedium,
		FlaggedForReview: true,
		Factors: model.Factors{
			SeverityWeight:       c,
			DetectionReliability: c,
			ContextClarity:       c,
			FalsePositiveRisk:    c,
		},
		Reasoning: []string{fmt.Sprintf("%s → conservative default %.2f, flagged for review", reason, c)},
	}
}

// ScoreAll scores a batch. Items are independent: one failing item is
// replaced by the conservative default and the rest proceed; partial
// results are always returned, never an all-or-nothing failure.
//
// When a provider is supplied, context acquisition (the expensive step)
// runs under a semaphore bounded by MaxConcurrentContext with a per-item
// timeout; lookup failure or expiry falls back to the no-context path.
func (e *Engine) ScoreAll(ctx context.Context, violations []model.RawViolation, provider interfaces.ContextProvider) []model.ScoredViolation {
	scored := make([]model.ScoredViolation, len(violations))

	if provider == nil {
		for i, v := range violations {
			scored[i] = e.Score(v, nil)
		}
		return scored
	}

	sem := semaphore.NewWeighted(int64(e.cfg.MaxConcurrentContext))
	var wg sync.WaitGroup
	for i, v := range violations {
		wg.Add(1)
		go func(i int, v model.RawViolation) {
			defer wg.Done()
			scored[i] = e.scoreWithProvider(ctx, v, provider, sem)
		}(i, v)
	}
	wg.Wait()

	e.logger.Info("batch scored",
		logging.Field{Key: "total", Value: len(scored)},
		logging.Field{Key: "scoring_version", Value: e.cfg.ScoringVersion})
	return scored
}

func (e *Engine) scoreWithProvider(ctx context.Context, v model.RawViolation, provider interfaces.ContextProvider, sem *semaphore.Weighted) model.ScoredViolation {
	selector := ""
	if len(v.Nodes) > 0 {
		selector = v.Nodes[0].Selector()
	}
	if selector == "" {
		return e.Score(v, nil)
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		// Batch canceled while waiting; abandon the lookup, not the item.
		return e.Score(v, nil)
	}
	lookupCtx, cancel := context.WithTimeout(ctx, e.cfg.ContextTimeout)
	elCtx, err := provider.GetElementContext(lookupCtx, selector)
	var shot string
	if err == nil && elCtx != nil {
		// Best-effort visual evidence while we still hold the slot.
		shot, _ = provider.CaptureScreenshot(lookupCtx, selector, v.ID)
	}
	cancel()
	sem.Release(1)

	if err != nil {
		e.logger.Warn("context lookup failed, scoring without context",
			logging.Field{Key: "rule", Value: v.ID},
			logging.Field{Key: "selector", Value: selector},
			logging.Field{Key: "error", Value: err.Error()})
		elCtx = nil
	}

	sv := e.Score(v, elCtx)
	if elCtx != nil {
		sv.Evidence = &model.Evidence{ScreenshotPath: shot, Context: elCtx}
	}
	return sv
}
