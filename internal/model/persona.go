package model

import "time"

// PersonaType names a behavioral archetype assigned by the classifier.
type PersonaType string

const (
	// PersonaHighUtilization flags heavy credit line usage or payment distress.
	PersonaHighUtilization PersonaType = "high_utilization"
	// PersonaVariableIncome flags a thin buffer with irregular pay gaps.
	PersonaVariableIncome PersonaType = "variable_income"
	// PersonaPaycheckToPaycheck flags a very thin buffer with a low checking balance.
	PersonaPaycheckToPaycheck PersonaType = "paycheck_to_paycheck"
	// PersonaSubscriptionHeavy flags significant recurring merchant spend.
	PersonaSubscriptionHeavy PersonaType = "subscription_heavy"
	// PersonaSavingsBuilder flags consistent savings growth with low card usage.
	PersonaSavingsBuilder PersonaType = "savings_builder"
)

// PersonaAssignment records one persona rule match for a (user, window) pair.
// All matches are retained for transparency; the match with the lowest
// PriorityRank is the primary persona. A classification run supersedes all
// prior assignments for the same pair.
type PersonaAssignment struct {
	UserID       string      `json:"user_id"`
	WindowDays   int         `json:"window_days"`
	Type         PersonaType `json:"type"`
	PriorityRank int         `json:"priority_rank"`
	CriteriaMet  string      `json:"criteria_met"` // Plain-language criteria citing actual signal values
	Primary      bool        `json:"primary"`
	AssignedAt   time.Time   `json:"assigned_at"`
}
