package persona

import (
	"time"

	"github.com/mdliss/finsight/internal/model"
)

// Set indexes one (user, window) signal set by type for rule evaluation.
type Set struct {
	byType map[model.SignalType]*model.Signal
}

// NewSet builds a Set from a detector run's output.
func NewSet(signals []model.Signal) Set {
	byType := make(map[model.SignalType]*model.Signal, len(signals))
	for i := range signals {
		byType[signals[i].Type] = &signals[i]
	}
	return Set{byType: byType}
}

// Get returns the signal of the given type, or nil when absent.
func (s Set) Get(t model.SignalType) *model.Signal {
	return s.byType[t]
}

// Len returns the number of signals in the set.
func (s Set) Len() int {
	return len(s.byType)
}

// Classifier evaluates the persona rule table against signal sets.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over the fixed rule table.
func NewClassifier() *Classifier {
	return &Classifier{rules: Rules()}
}

// Classify evaluates every rule in priority order and returns all matches.
// The first match is marked primary; classification never stops early, so
// the full match set is always recorded for transparency. No match returns
// an empty slice, which downstream treats as "uncategorized", not an error.
// Given identical signal sets the result is always identical: the rule
// table is fixed and evaluation order is its slice order.
func (c *Classifier) Classify(userID string, windowDays int, signals []model.Signal, at time.Time) []model.PersonaAssignment {
	set := NewSet(signals)

	var assignments []model.PersonaAssignment
	for _, rule := range c.rules {
		matched, criteria := rule.Evaluate(set)
		if !matched {
			continue
		}
		assignments = append(assignments, model.PersonaAssignment{
			UserID:       userID,
			WindowDays:   windowDays,
			Type:         rule.Type,
			PriorityRank: rule.PriorityRank,
			CriteriaMet:  criteria,
			Primary:      len(assignments) == 0,
			AssignedAt:   at,
		})
	}
	return assignments
}

// Primary returns the primary assignment from a match set, or nil.
func Primary(assignments []model.PersonaAssignment) *model.PersonaAssignment {
	for i := range assignments {
		if assignments[i].Primary {
			return &assignments[i]
		}
	}
	return nil
}
