package recommend

import (
	"fmt"
	"regexp"

	"github.com/mdliss/finsight/internal/common"
	"github.com/mdliss/finsight/internal/model"
)

// Disclaimer is attached verbatim to every recommendation.
const Disclaimer = "This is educational information, not financial advice. " +
	"Consider your full situation before making changes."

// Template is one fill-in-the-blank recommendation entry. Rationale text
// uses {placeholder} tokens resolved from Facts; every template cites at
// least one numeric signal value once filled.
type Template struct {
	ID          string
	Persona     model.PersonaType
	ContentType model.ContentType
	Title       string
	Rationale   string
	Eligible    func(f Facts) bool // nil means always eligible
}

var placeholderRegex = regexp.MustCompile(`\{[a-z_]+\}`)

// Catalog returns the fixed education template table, grouped by persona
// in catalog order. Selection order within a persona follows this order.
func Catalog() []Template {
	return []Template{
		// High utilization.
		{
			ID:          "hu_util_overview",
			Persona:     model.PersonaHighUtilization,
			ContentType: model.ContentEducation,
			Title:       "Understanding your credit utilization",
			Rationale: "We noticed your card is at {max_utilization}% utilization " +
				"(${card_balance} of ${card_limit} limit). Bringing it under 30% is " +
				"an option that can support your credit score.",
			Eligible: func(f Facts) bool { return f.HasUtilization && f.Has("card_balance") && f.Has("card_limit") },
		},
		{
			ID:          "hu_paydown_plan",
			Persona:     model.PersonaHighUtilization,
			ContentType: model.ContentEducation,
			Title:       "A gradual paydown plan",
			Rationale: "Your highest card utilization is {max_utilization}%. You can " +
				"chip away at the balance with small extra payments; each one adds " +
				"breathing room.",
			Eligible: func(f Facts) bool { return f.HasUtilization && f.MaxUtilization >= 30 },
		},
		{
			ID:          "hu_min_payment",
			Persona:     model.PersonaHighUtilization,
			ContentType: model.ContentEducation,
			Title:       "Moving past minimum payments",
			Rationale: "We noticed recent payments near the minimum while utilization " +
				"sits at {max_utilization}%. When you're ready, even a little above " +
				"the minimum can shorten the payoff timeline.",
			Eligible: func(f Facts) bool { return f.MinPaymentOnly },
		},
		{
			ID:          "hu_autopay",
			Persona:     model.PersonaHighUtilization,
			ContentType: model.ContentEducation,
			Title:       "Autopay as a safety net",
			Rationale: "With utilization at {max_utilization}%, setting up autopay is " +
				"one option to keep due dates from sneaking up on you.",
			Eligible: func(f Facts) bool { return f.HasUtilization },
		},
		{
			ID:          "hu_interest_cost",
			Persona:     model.PersonaHighUtilization,
			ContentType: model.ContentEducation,
			Title:       "What interest is costing",
			Rationale: "At {max_utilization}% utilization, interest can add up quietly. " +
				"Consider reviewing the interest line on your statement; knowing the " +
				"number is a great first step.",
			Eligible: func(f Facts) bool { return f.HasUtilization && f.MaxUtilization >= 50 },
		},

		// Variable income.
		{
			ID:          "vi_buffer",
			Persona:     model.PersonaVariableIncome,
			ContentType: model.ContentEducation,
			Title:       "Building a buffer for uneven pay",
			Rationale: "Your deposits arrive about every {median_pay_gap} days and your " +
				"cash-flow buffer is {buffer_months} months. You can smooth the gaps " +
				"by setting aside a little from larger deposits.",
			Eligible: func(f Facts) bool { return f.HasBuffer },
		},
		{
			ID:          "vi_baseline_budget",
			Persona:     model.PersonaVariableIncome,
			ContentType: model.ContentEducation,
			Title:       "Budgeting on your lowest month",
			Rationale: "We noticed your pay gap runs around {median_pay_gap} days. " +
				"Consider planning around your smaller months, so anything above " +
				"that becomes a bonus.",
			Eligible: func(f Facts) bool { return f.HasIncome },
		},
		{
			ID:          "vi_income_calendar",
			Persona:     model.PersonaVariableIncome,
			ContentType: model.ContentEducation,
			Title:       "Mapping your income calendar",
			Rationale: "With deposits about every {median_pay_gap} days and an estimated " +
				"${monthly_income} per month, you can line up bill due dates right " +
				"after paydays.",
			Eligible: func(f Facts) bool { return f.HasIncome && f.Has("monthly_income") },
		},
		{
			ID:          "vi_emergency_start",
			Persona:     model.PersonaVariableIncome,
			ContentType: model.ContentEducation,
			Title:       "A starter emergency cushion",
			Rationale: "Your buffer is {buffer_months} months today. A small automatic " +
				"transfer is an option for growing it steadily.",
			Eligible: func(f Facts) bool { return f.HasBuffer },
		},

		// Paycheck to paycheck.
		{
			ID:          "pp_breathing_room",
			Persona:     model.PersonaPaycheckToPaycheck,
			ContentType: model.ContentEducation,
			Title:       "Finding breathing room",
			Rationale: "We noticed your checking balance of ${checking_balance} covers " +
				"about {buffer_months} months of spending. Small changes can free up " +
				"cash flow faster than you'd expect.",
			Eligible: func(f Facts) bool { return f.HasBuffer && f.Has("checking_balance") },
		},
		{
			ID:          "pp_bill_timing",
			Persona:     model.PersonaPaycheckToPaycheck,
			ContentType: model.ContentEducation,
			Title:       "Aligning bills with paydays",
			Rationale: "With a {buffer_months}-month buffer, you can ask billers to move " +
				"due dates to just after your deposits land.",
			Eligible: func(f Facts) bool { return f.HasBuffer },
		},
		{
			ID:          "pp_micro_saving",
			Persona:     model.PersonaPaycheckToPaycheck,
			ContentType: model.ContentEducation,
			Title:       "Micro-saving on tight months",
			Rationale: "Your buffer is {buffer_months} months. Even $5 a week is a great " +
				"start; consistency matters more than size.",
			Eligible: func(f Facts) bool { return f.HasBuffer },
		},
		{
			ID:          "pp_outflow_review",
			Persona:     model.PersonaPaycheckToPaycheck,
			ContentType: model.ContentEducation,
			Title:       "A quick outflow review",
			Rationale: "Spending runs about ${monthly_outflow} per month. A short review " +
				"of the biggest line items is an opportunity to find one easy win.",
			Eligible: func(f Facts) bool { return f.Has("monthly_outflow") },
		},

		// Subscription heavy.
		{
			ID:          "sh_inventory",
			Persona:     model.PersonaSubscriptionHeavy,
			ContentType: model.ContentEducation,
			Title:       "Your subscription inventory",
			Rationale: "We noticed {recurring_merchant_count} recurring merchants totaling " +
				"about ${monthly_recurring_spend} per month. A quick review is an " +
				"opportunity to keep only the ones you love.",
			Eligible: func(f Facts) bool { return f.HasSubscriptions },
		},
		{
			ID:          "sh_share",
			Persona:     model.PersonaSubscriptionHeavy,
			ContentType: model.ContentEducation,
			Title:       "Subscriptions as a share of spending",
			Rationale: "Recurring charges make up {subscription_share}% of your monthly " +
				"outflow. You can decide whether that matches your priorities.",
			Eligible: func(f Facts) bool { return f.Has("subscription_share") },
		},
		{
			ID:          "sh_rotation",
			Persona:     model.PersonaSubscriptionHeavy,
			ContentType: model.ContentEducation,
			Title:       "Rotating services",
			Rationale: "With ${monthly_recurring_spend} in monthly subscriptions, consider " +
				"rotating services: pause one while you enjoy another.",
			Eligible: func(f Facts) bool { return f.HasSubscriptions && f.MonthlyRecurring >= 20 },
		},
		{
			ID:          "sh_annual_check",
			Persona:     model.PersonaSubscriptionHeavy,
			ContentType: model.ContentEducation,
			Title:       "The annual-plan check",
			Rationale: "Across {recurring_merchant_count} recurring merchants you spend " +
				"about ${monthly_recurring_spend} monthly. Annual plans for the " +
				"keepers are an option worth pricing.",
			Eligible: func(f Facts) bool { return f.HasSubscriptions },
		},

		// Savings builder.
		{
			ID:          "sb_momentum",
			Persona:     model.PersonaSavingsBuilder,
			ContentType: model.ContentEducation,
			Title:       "Keeping your savings momentum",
			Rationale: "You're building savings at about ${monthly_net_savings} per month. " +
				"Great progress! Consider an automatic transfer to lock the habit in.",
			Eligible: func(f Facts) bool { return f.Has("monthly_net_savings") },
		},
		{
			ID:          "sb_emergency_target",
			Persona:     model.PersonaSavingsBuilder,
			ContentType: model.ContentEducation,
			Title:       "Sizing your emergency fund",
			Rationale: "Your savings cover {emergency_fund_months} months of expenses. " +
				"Three to six months is a common target, and you're on track.",
			Eligible: func(f Facts) bool { return f.HasEmergencyFund },
		},
		{
			ID:          "sb_growth",
			Persona:     model.PersonaSavingsBuilder,
			ContentType: model.ContentEducation,
			Title:       "Your growth rate",
			Rationale: "Savings are growing {growth_rate}% per month. You can keep the " +
				"pace by treating the transfer like any other bill.",
			Eligible: func(f Facts) bool { return f.HasGrowthRate },
		},
		{
			ID:          "sb_hysa",
			Persona:     model.PersonaSavingsBuilder,
			ContentType: model.ContentEducation,
			Title:       "Making your balance work harder",
			Rationale: "With ${savings_balance} saved and ${monthly_net_savings} added " +
				"monthly, a higher-yield account is an option to consider.",
			Eligible: func(f Facts) bool { return f.Has("savings_balance") && f.Has("monthly_net_savings") },
		},
	}
}

// ValidateCatalog enforces the rule-table invariants at startup: every
// persona has at least three templates, every template carries a
// placeholder (the numeric citation source) and a title. Failures are
// fatal configuration errors, not conditions to degrade through.
func ValidateCatalog(templates []Template) error {
	perPersona := make(map[model.PersonaType]int)
	for _, t := range templates {
		if t.ID == "" || t.Title == "" {
			return fmt.Errorf("%w: template %q missing id or title", common.ErrInvalidConfig, t.ID)
		}
		if !placeholderRegex.MatchString(t.Rationale) {
			return fmt.Errorf("%w: template %q cites no signal value", common.ErrInvalidConfig, t.ID)
		}
		perPersona[t.Persona]++
	}
	for _, p := range []model.PersonaType{
		model.PersonaHighUtilization,
		model.PersonaVariableIncome,
		model.PersonaPaycheckToPaycheck,
		model.PersonaSubscriptionHeavy,
		model.PersonaSavingsBuilder,
	} {
		if perPersona[p] < 3 {
			return fmt.Errorf("%w: persona %s has %d templates, need at least 3", common.ErrInvalidConfig, p, perPersona[p])
		}
	}
	return nil
}
