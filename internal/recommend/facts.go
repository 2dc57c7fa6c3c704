// Package recommend generates template-bound, rationale-citing
// recommendations for a user's primary persona.
package recommend

import (
	"fmt"
	"strings"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/persona"
)

// Facts is the typed substitution source for rationale templates. Every
// placeholder a template may use maps to one formatted entry here, which
// keeps the "must cite a concrete number" invariant mechanically checkable.
type Facts struct {
	values map[string]string

	MaxUtilization     float64
	HasUtilization     bool
	MinPaymentOnly     bool
	Overdue            bool
	RecurringMerchants float64
	MonthlyRecurring   float64
	HasSubscriptions   bool
	BufferMonths       float64
	HasBuffer          bool
	MedianPayGap       float64
	MonthlyIncome      float64
	HasIncome          bool
	MonthlyNetSavings  float64
	GrowthRatePct      float64
	HasGrowthRate      bool
	EmergencyMonths    float64
	HasEmergencyFund   bool
	HasSavingsAccount  bool
	HasCheckingAccount bool
}

// BuildFacts flattens a signal set into formatted template facts.
func BuildFacts(set persona.Set, accounts []model.Account) Facts {
	f := Facts{values: make(map[string]string)}

	if util := set.Get(model.SignalCreditUtilization); util != nil {
		f.HasUtilization = true
		f.MaxUtilization, _ = util.DetailFloat("max_utilization_pct")
		f.MinPaymentOnly = util.DetailBool("min_payment_only")
		f.Overdue = util.DetailBool("overdue")
		f.set("max_utilization", "%.1f", f.MaxUtilization)
		if cards := cardDetails(util.Detail("cards")); len(cards) > 0 {
			if bal, ok := cards[0]["balance"].(float64); ok {
				f.set("card_balance", "%.2f", bal)
			}
			if limit, ok := cards[0]["limit"].(float64); ok {
				f.set("card_limit", "%.2f", limit)
			}
		}
	}

	if sub := set.Get(model.SignalSubscription); sub != nil {
		f.HasSubscriptions = true
		f.RecurringMerchants, _ = sub.DetailFloat("recurring_merchant_count")
		f.MonthlyRecurring, _ = sub.DetailFloat("monthly_recurring_spend")
		f.set("recurring_merchant_count", "%.0f", f.RecurringMerchants)
		f.set("monthly_recurring_spend", "%.2f", f.MonthlyRecurring)
		if share, ok := sub.DetailFloat("subscription_share_pct"); ok {
			f.set("subscription_share", "%.1f", share)
		}
	}

	if income := set.Get(model.SignalIncomeStability); income != nil {
		f.HasIncome = true
		f.MedianPayGap, _ = income.DetailFloat("median_pay_gap_days")
		f.MonthlyIncome, _ = income.DetailFloat("monthly_income")
		f.set("median_pay_gap", "%.0f", f.MedianPayGap)
		f.set("monthly_income", "%.2f", f.MonthlyIncome)
		if score, ok := income.DetailFloat("stability_score"); ok {
			f.set("stability_score", "%.1f", score)
		}
		if buffer, ok := income.DetailFloat("cash_flow_buffer_months"); ok {
			f.HasBuffer = true
			f.BufferMonths = buffer
			f.set("buffer_months", "%.2f", buffer)
		}
		if checking, ok := income.DetailFloat("checking_balance"); ok {
			f.set("checking_balance", "%.2f", checking)
		}
		if outflow, ok := income.DetailFloat("monthly_outflow"); ok {
			f.set("monthly_outflow", "%.2f", outflow)
		}
	}

	if savings := set.Get(model.SignalSavingsGrowth); savings != nil {
		f.MonthlyNetSavings, _ = savings.DetailFloat("monthly_net_inflow")
		f.set("monthly_net_savings", "%.2f", f.MonthlyNetSavings)
		if bal, ok := savings.DetailFloat("savings_balance"); ok {
			f.set("savings_balance", "%.2f", bal)
		}
		if growth, ok := savings.DetailFloat("monthly_growth_rate_pct"); ok {
			f.HasGrowthRate = true
			f.GrowthRatePct = growth
			f.set("growth_rate", "%.1f", growth)
		}
		if months, ok := savings.DetailFloat("emergency_fund_months"); ok {
			f.HasEmergencyFund = true
			f.EmergencyMonths = months
			f.set("emergency_fund_months", "%.1f", months)
		}
	}

	for i := range accounts {
		if accounts[i].IsSavingsLike() {
			f.HasSavingsAccount = true
		}
		if accounts[i].IsChecking() {
			f.HasCheckingAccount = true
		}
	}

	return f
}

// cardDetails normalizes the cards detail. Freshly computed signals carry
// []map[string]any; signals decoded from a stored snapshot carry []any.
func cardDetails(v any) []map[string]any {
	switch cards := v.(type) {
	case []map[string]any:
		return cards
	case []any:
		out := make([]map[string]any, 0, len(cards))
		for _, c := range cards {
			if m, ok := c.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func (f *Facts) set(key, format string, v float64) {
	f.values[key] = fmt.Sprintf(format, v)
}

// Has reports whether a placeholder can be resolved from these facts.
func (f *Facts) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Fill substitutes {placeholder} tokens in a template string. The second
// return value is false when any token could not be resolved.
func (f *Facts) Fill(text string) (string, bool) {
	for key, value := range f.values {
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}
	return text, !strings.ContainsRune(text, '{')
}
