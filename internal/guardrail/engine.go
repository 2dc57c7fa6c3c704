package guardrail

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mdliss/finsight/internal/common"
	"github.com/mdliss/finsight/internal/model"
)

// EligibilityConfig holds the minimum bar for receiving recommendations.
type EligibilityConfig struct {
	MinAge                int
	MinTransactionHistory int
	MinSignals            int
}

// DefaultEligibilityConfig returns the standard eligibility thresholds.
func DefaultEligibilityConfig() EligibilityConfig {
	return EligibilityConfig{
		MinAge:                18,
		MinTransactionHistory: 10,
		MinSignals:            1,
	}
}

// Engine runs all four guardrail checks over candidate recommendations.
// Check order matters: consent is evaluated first and short-circuits
// everything else.
type Engine struct {
	tone   *ToneValidator
	safety *SafetyValidator
	config EligibilityConfig
}

// NewEngine creates a guardrail engine with the given eligibility config.
func NewEngine(config EligibilityConfig) *Engine {
	return &Engine{
		tone:   NewToneValidator(),
		safety: NewSafetyValidator(),
		config: config,
	}
}

// Tone exposes the tone validator for standalone text checks.
func (e *Engine) Tone() *ToneValidator {
	return e.tone
}

// Review applies the guardrail checks to every candidate and returns the
// reviewed set. Consent fails closed: a non-consenting user gets zero
// deliverable recommendations and ErrConsentRequired, no matter how
// favorable their signals are. Every other failure keeps the candidate
// but sets its status to review with machine-readable reasons; nothing is
// silently dropped.
func (e *Engine) Review(profile *model.UserProfile, historyCount int, signals []model.Signal, candidates []model.Recommendation, at time.Time) ([]model.Recommendation, error) {
	if profile == nil || !profile.ConsentGranted {
		return nil, common.ErrConsentRequired
	}

	ineligible := e.eligibilityReasons(profile, historyCount, signals, at)

	reviewed := make([]model.Recommendation, 0, len(candidates))
	for _, rec := range candidates {
		reasons := make([]string, 0, len(ineligible))
		reasons = append(reasons, ineligible...)
		if len(ineligible) > 0 {
			rec.EligibilityMet = false
		}

		text := rec.Title + " " + rec.Rationale
		if tone := e.tone.Validate(text); !tone.Valid {
			for _, v := range tone.Violations {
				for _, m := range v.Matches {
					reasons = append(reasons, fmt.Sprintf("tone:%s:%s", v.Category, m))
				}
			}
			if len(tone.Violations) == 0 {
				reasons = append(reasons, "tone:missing_empowering_framing")
			}
		}
		for _, product := range e.safety.Check(text) {
			reasons = append(reasons, fmt.Sprintf("content_safety:prohibited_product:%s", product))
		}

		if rec.Rationale == "" || !rec.CitesValue() {
			reasons = append(reasons, "citation:rationale_missing_numeric_value")
		}
		if rec.Disclaimer == "" {
			reasons = append(reasons, "citation:missing_disclaimer")
		}

		if len(reasons) > 0 {
			rec.Status = model.StatusReview
			rec.ReviewReasons = reasons
			slog.Info("Guardrail flagged recommendation",
				"recommendation", rec.ID, "user", rec.UserID, "reasons", reasons)
		}
		reviewed = append(reviewed, rec)
	}

	return reviewed, nil
}

// eligibilityReasons returns the machine-readable eligibility failures,
// empty when the user clears the bar.
func (e *Engine) eligibilityReasons(profile *model.UserProfile, historyCount int, signals []model.Signal, at time.Time) []string {
	var reasons []string
	if age := profile.Age(at); age < e.config.MinAge {
		reasons = append(reasons, fmt.Sprintf("eligibility:minimum_age:%d", age))
	}
	if historyCount < e.config.MinTransactionHistory {
		reasons = append(reasons, fmt.Sprintf("eligibility:transaction_history:%d", historyCount))
	}
	if len(signals) < e.config.MinSignals {
		reasons = append(reasons, fmt.Sprintf("eligibility:detected_signals:%d", len(signals)))
	}
	return reasons
}
