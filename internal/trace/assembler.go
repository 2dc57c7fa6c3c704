// Package trace reconstructs the auditable decision record behind a
// recommendation.
package trace

import (
	"context"
	"fmt"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/service"
)

// DecisionTrace joins a recommendation to the signals and persona
// decision that produced it, plus the guardrail outcome. It is a derived,
// read-only view.
type DecisionTrace struct {
	Recommendation model.Recommendation      `json:"recommendation"`
	Persona        *model.PersonaAssignment  `json:"persona"` // The decision behind the recommendation
	AllMatches     []model.PersonaAssignment `json:"all_matches"`
	Signals        []model.Signal            `json:"signals"` // Frozen at recommendation creation
	GuardrailClean bool                      `json:"guardrail_clean"`
	ReviewReasons  []string                  `json:"review_reasons,omitempty"`
}

// Assembler reconstructs decision traces from persisted rows.
type Assembler struct {
	store service.Storage
}

// NewAssembler creates a trace assembler over the given store.
func NewAssembler(store service.Storage) *Assembler {
	return &Assembler{store: store}
}

// Assemble rebuilds the trace for one recommendation. The signal context
// and persona decision come from the recommendation's frozen snapshots,
// not from live rows, so a later pipeline run cannot change what the
// trace shows. Rows written before persona snapshots existed fall back to
// the live assignment rows for their window.
func (a *Assembler) Assemble(ctx context.Context, recommendationID string) (*DecisionTrace, error) {
	rec, err := a.store.GetRecommendation(ctx, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendation: %w", err)
	}

	assignments := rec.PersonaSnapshot
	if len(assignments) == 0 {
		assignments, err = a.store.GetPersonaAssignments(ctx, rec.UserID, rec.WindowDays)
		if err != nil {
			return nil, fmt.Errorf("failed to load persona assignments: %w", err)
		}
	}

	trace := &DecisionTrace{
		Recommendation: *rec,
		AllMatches:     assignments,
		Signals:        rec.SignalSnapshot,
		GuardrailClean: len(rec.ReviewReasons) == 0,
		ReviewReasons:  rec.ReviewReasons,
	}
	for i := range assignments {
		if assignments[i].Type == rec.Persona {
			trace.Persona = &assignments[i]
			break
		}
	}
	return trace, nil
}
