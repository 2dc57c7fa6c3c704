package model

import (
	"strings"
	"time"
	"unicode"
)

// ContentType distinguishes educational content from partner offers.
type ContentType string

const (
	// ContentEducation is explanatory guidance tied to a signal.
	ContentEducation ContentType = "education"
	// ContentPartnerOffer is a product suggestion with stricter eligibility.
	ContentPartnerOffer ContentType = "partner_offer"
)

// ApprovalStatus is the operator-facing lifecycle state of a recommendation.
// The core only ever creates pending candidates or flags them for review;
// approve/reject transitions belong to the operator workflow.
type ApprovalStatus string

const (
	// StatusPending awaits operator action.
	StatusPending ApprovalStatus = "pending"
	// StatusApproved was accepted by an operator.
	StatusApproved ApprovalStatus = "approved"
	// StatusRejected was declined by an operator.
	StatusRejected ApprovalStatus = "rejected"
	// StatusReview was auto-flagged by a guardrail and needs operator attention.
	StatusReview ApprovalStatus = "review"
)

// Recommendation is one guardrail-checked candidate produced for a user.
// SignalSnapshot and PersonaSnapshot freeze the signals and persona
// decision that produced it, so the decision trace survives later
// recomputation; live signal and persona rows are superseded on every run.
type Recommendation struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	Persona         PersonaType         `json:"persona"`
	ContentType     ContentType         `json:"content_type"`
	TemplateID      string              `json:"template_id"`
	WindowDays      int                 `json:"window_days"`
	Title           string              `json:"title"`
	Rationale       string              `json:"rationale"` // Must cite at least one concrete signal value
	Disclaimer      string              `json:"disclaimer"`
	EligibilityMet  bool                `json:"eligibility_met"`
	Status          ApprovalStatus      `json:"status"`
	ReviewReasons   []string            `json:"review_reasons,omitempty"` // Machine-readable guardrail findings, empty when clean
	OperatorNotes   string              `json:"operator_notes,omitempty"`
	SignalSnapshot  []Signal            `json:"signal_snapshot,omitempty"`
	PersonaSnapshot []PersonaAssignment `json:"persona_snapshot,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// CitesValue reports whether the rationale contains at least one digit,
// the minimal form of the mandatory numeric citation.
func (r *Recommendation) CitesValue() bool {
	return strings.IndexFunc(r.Rationale, unicode.IsDigit) >= 0
}
