package recommend

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/mdliss/finsight/internal/common"
	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/persona"
)

// maxOffersPerUser caps partner offers per user per window.
const maxOffersPerUser = 3

// predatoryProductRegex classifies products that may never be offered,
// regardless of eligibility. Mirrors the content-safety prohibited list.
var predatoryProductRegex = regexp.MustCompile(`(?i)\b(payday\s*loan|title\s*loan|rent.to.own|pawn|cash\s*advance)\b`)

// OfferTemplate is a partner-offer entry. Offers follow the same
// template-selection contract as education content but with stricter
// eligibility: an income floor, existing-account deduplication, and no
// predatory product classification.
type OfferTemplate struct {
	ID             string
	Product        string // Product classification checked against the predatory list
	Title          string
	Rationale      string
	IncomeFloor    float64 // Minimum estimated monthly income, 0 disables
	Eligible       func(f Facts) bool
	TargetPersonas []model.PersonaType // empty means any persona
}

// OfferCatalog returns the fixed partner-offer table.
func OfferCatalog() []OfferTemplate {
	return []OfferTemplate{
		{
			ID:          "offer_hysa",
			Product:     "high_yield_savings",
			Title:       "High-yield savings account",
			IncomeFloor: 2000,
			Rationale: "With about ${monthly_income} in monthly income, a high-yield " +
				"savings account is an option for your first cushion.",
			Eligible: func(f Facts) bool { return f.Has("monthly_income") && !f.HasSavingsAccount },
		},
		{
			ID:          "offer_balance_transfer",
			Product:     "balance_transfer_card",
			Title:       "Lower-interest balance transfer",
			IncomeFloor: 1500,
			Rationale: "Your card utilization is {max_utilization}%. A balance-transfer " +
				"card with a lower rate is one option to reduce interest while you " +
				"pay the balance down.",
			Eligible:       func(f Facts) bool { return f.HasUtilization && f.MaxUtilization >= 50 },
			TargetPersonas: []model.PersonaType{model.PersonaHighUtilization},
		},
		{
			ID:      "offer_spend_tracker",
			Product: "budgeting_tool",
			Title:   "Subscription tracking tool",
			Rationale: "You have {recurring_merchant_count} recurring merchants at about " +
				"${monthly_recurring_spend} per month. A tracking tool can surface " +
				"renewals before they bill.",
			Eligible:       func(f Facts) bool { return f.HasSubscriptions },
			TargetPersonas: []model.PersonaType{model.PersonaSubscriptionHeavy},
		},
		{
			ID:          "offer_cd",
			Product:     "certificate_of_deposit",
			Title:       "Certificate of deposit",
			IncomeFloor: 2500,
			Rationale: "Your emergency fund covers {emergency_fund_months} months. A CD " +
				"is an option for savings beyond that cushion.",
			Eligible:       func(f Facts) bool { return f.HasEmergencyFund && f.EmergencyMonths >= 3 },
			TargetPersonas: []model.PersonaType{model.PersonaSavingsBuilder},
		},
	}
}

// ValidateOffers rejects a catalog containing predatory products or
// citation-free rationales. Fatal at load time.
func ValidateOffers(offers []OfferTemplate) error {
	for _, o := range offers {
		if predatoryProductRegex.MatchString(o.Product) || predatoryProductRegex.MatchString(o.Title) {
			return fmt.Errorf("%w: offer %q is a prohibited product class", common.ErrInvalidConfig, o.ID)
		}
		if !placeholderRegex.MatchString(o.Rationale) {
			return fmt.Errorf("%w: offer %q cites no signal value", common.ErrInvalidConfig, o.ID)
		}
	}
	return nil
}

// GenerateOffers produces up to three partner-offer candidates for the
// user, honoring income floors and persona targeting.
func (g *Generator) GenerateOffers(userID string, primary model.PersonaType, set persona.Set, accounts []model.Account, windowDays int, at time.Time) []model.Recommendation {
	facts := BuildFacts(set, accounts)

	var out []model.Recommendation
	for _, o := range g.offers {
		if len(out) >= maxOffersPerUser {
			break
		}
		if len(o.TargetPersonas) > 0 && !containsPersona(o.TargetPersonas, primary) {
			continue
		}
		if o.IncomeFloor > 0 && (!facts.HasIncome || facts.MonthlyIncome < o.IncomeFloor) {
			continue
		}
		if o.Eligible != nil && !o.Eligible(facts) {
			continue
		}
		rationale, ok := facts.Fill(o.Rationale)
		if !ok {
			slog.Warn("Skipping offer with unresolved citation", "offer", o.ID, "user", userID)
			continue
		}
		out = append(out, model.Recommendation{
			ID:             recommendationID(userID, o.ID, windowDays),
			UserID:         userID,
			Persona:        primary,
			ContentType:    model.ContentPartnerOffer,
			TemplateID:     o.ID,
			WindowDays:     windowDays,
			Title:          o.Title,
			Rationale:      rationale,
			Disclaimer:     Disclaimer,
			EligibilityMet: true,
			Status:         model.StatusPending,
			CreatedAt:      at,
		})
	}
	return out
}

func containsPersona(personas []model.PersonaType, p model.PersonaType) bool {
	for _, candidate := range personas {
		if candidate == p {
			return true
		}
	}
	return false
}
