// Package persona assigns behavioral archetypes from a user's signal set.
package persona

import (
	"fmt"

	"github.com/mdliss/finsight/internal/model"
)

// Rule thresholds. The cash-flow personas use the 45-day pay gap and the
// 1 / 0.5 month buffer cutoffs; "low checking balance" means less than half
// of one month's outflow.
const (
	highUtilizationPct    = 50.0
	variableBufferMonths  = 1.0
	variablePayGapDays    = 45.0
	paycheckBufferMonths  = 0.5
	lowCheckingShare      = 0.5
	minRecurringMerchants = 3
	recurringSpendFloor   = 50.0
	subscriptionSharePct  = 10.0
	builderGrowthPct      = 2.0
	builderInflowFloor    = 200.0
	builderMaxCardPct     = 30.0
)

// Rule is one persona predicate. Evaluate returns whether the rule fires
// and, when it does, criteria text citing the signal values that fired it.
type Rule struct {
	Type         model.PersonaType
	PriorityRank int
	Evaluate     func(set Set) (bool, string)
}

// Rules returns the persona rule table in fixed priority order
// (lowest rank first). The order is part of the contract: the first
// matching rule becomes the primary persona.
func Rules() []Rule {
	return []Rule{
		{
			Type:         model.PersonaHighUtilization,
			PriorityRank: 1,
			Evaluate:     evaluateHighUtilization,
		},
		{
			Type:         model.PersonaVariableIncome,
			PriorityRank: 2,
			Evaluate:     evaluateVariableIncome,
		},
		{
			Type:         model.PersonaPaycheckToPaycheck,
			PriorityRank: 3,
			Evaluate:     evaluatePaycheckToPaycheck,
		},
		{
			Type:         model.PersonaSubscriptionHeavy,
			PriorityRank: 4,
			Evaluate:     evaluateSubscriptionHeavy,
		},
		{
			Type:         model.PersonaSavingsBuilder,
			PriorityRank: 5,
			Evaluate:     evaluateSavingsBuilder,
		},
	}
}

func evaluateHighUtilization(set Set) (bool, string) {
	util := set.Get(model.SignalCreditUtilization)
	if util == nil {
		return false, ""
	}
	maxPct, _ := util.DetailFloat("max_utilization_pct")
	switch {
	case maxPct >= highUtilizationPct:
		return true, fmt.Sprintf("max card utilization %.1f%% is at or above %.0f%%", maxPct, highUtilizationPct)
	case util.DetailBool("overdue"):
		return true, fmt.Sprintf("a credit account is overdue (max utilization %.1f%%)", maxPct)
	case util.DetailBool("min_payment_only"):
		return true, fmt.Sprintf("only minimum payments detected (max utilization %.1f%%)", maxPct)
	case util.DetailBool("interest_charged"):
		return true, fmt.Sprintf("interest charges detected (max utilization %.1f%%)", maxPct)
	}
	return false, ""
}

func evaluateVariableIncome(set Set) (bool, string) {
	income := set.Get(model.SignalIncomeStability)
	if income == nil {
		return false, ""
	}
	buffer, ok := income.DetailFloat("cash_flow_buffer_months")
	if !ok {
		return false, ""
	}
	gap, _ := income.DetailFloat("median_pay_gap_days")
	if buffer < variableBufferMonths && gap > variablePayGapDays {
		return true, fmt.Sprintf("cash-flow buffer %.2f months is under %.0f month with a %.0f-day median pay gap",
			buffer, variableBufferMonths, gap)
	}
	return false, ""
}

func evaluatePaycheckToPaycheck(set Set) (bool, string) {
	income := set.Get(model.SignalIncomeStability)
	if income == nil {
		return false, ""
	}
	buffer, ok := income.DetailFloat("cash_flow_buffer_months")
	if !ok {
		return false, ""
	}
	checking, hasChecking := income.DetailFloat("checking_balance")
	outflow, hasOutflow := income.DetailFloat("monthly_outflow")
	if !hasChecking || !hasOutflow {
		return false, ""
	}
	if buffer < paycheckBufferMonths && checking < outflow*lowCheckingShare {
		return true, fmt.Sprintf("cash-flow buffer %.2f months is under %.1f with checking balance $%.2f below half of monthly outflow $%.2f",
			buffer, paycheckBufferMonths, checking, outflow)
	}
	return false, ""
}

func evaluateSubscriptionHeavy(set Set) (bool, string) {
	sub := set.Get(model.SignalSubscription)
	if sub == nil {
		return false, ""
	}
	count, _ := sub.DetailFloat("recurring_merchant_count")
	spend, _ := sub.DetailFloat("monthly_recurring_spend")
	share, _ := sub.DetailFloat("subscription_share_pct")
	if count >= minRecurringMerchants && (spend >= recurringSpendFloor || share >= subscriptionSharePct) {
		return true, fmt.Sprintf("%.0f recurring merchants with $%.2f monthly recurring spend (%.1f%% of outflow)",
			count, spend, share)
	}
	return false, ""
}

func evaluateSavingsBuilder(set Set) (bool, string) {
	savings := set.Get(model.SignalSavingsGrowth)
	if savings == nil {
		return false, ""
	}
	growth, hasGrowth := savings.DetailFloat("monthly_growth_rate_pct")
	inflow, _ := savings.DetailFloat("monthly_net_inflow")
	growing := (hasGrowth && growth >= builderGrowthPct) || inflow >= builderInflowFloor
	if !growing {
		return false, ""
	}

	// All card utilizations must be under the builder ceiling. No cards at
	// all satisfies the condition vacuously.
	if util := set.Get(model.SignalCreditUtilization); util != nil {
		maxPct, _ := util.DetailFloat("max_utilization_pct")
		if maxPct >= builderMaxCardPct {
			return false, ""
		}
	}

	if hasGrowth {
		return true, fmt.Sprintf("savings growing %.1f%% monthly with $%.2f net monthly inflow", growth, inflow)
	}
	return true, fmt.Sprintf("$%.2f net monthly inflow into savings", inflow)
}
