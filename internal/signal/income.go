package signal

import (
	"context"
	"regexp"
	"sort"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/window"
)

// payrollRegex spots deposits whose description marks them as pay.
var payrollRegex = regexp.MustCompile(`(?i)\b(PAYROLL|DIRECT\s*DEP|DIRECTDEP|SALARY|WAGES|DIR\s*DEP)\b`)

const (
	// minIncomeDeposits is the minimum deposits for a payroll-like stream.
	minIncomeDeposits = 3

	// incomeAmountCV and incomeGapCV bound how much a deposit stream may
	// wobble in amount and timing before it stops looking like payroll.
	incomeAmountCV = 0.25
	incomeGapCV    = 0.40
)

// IncomeDetector identifies payroll-like deposit streams and derives a
// stability score plus the user's cash-flow buffer.
type IncomeDetector struct{}

// NewIncomeDetector creates an income stability detector.
func NewIncomeDetector() *IncomeDetector {
	return &IncomeDetector{}
}

// Type returns the signal type this detector produces.
func (d *IncomeDetector) Type() model.SignalType {
	return model.SignalIncomeStability
}

// Detect returns a stability signal, or nil when no payroll-like deposit
// stream exists. The "no income detected" case never divides by zero.
func (d *IncomeDetector) Detect(_ context.Context, w window.Window) (*model.Signal, error) {
	byMerchant := make(map[string][]model.Transaction)
	for _, t := range w.Transactions {
		if t.Amount <= 0 || t.Pending {
			continue
		}
		m := t.Merchant()
		if m == "" {
			continue
		}
		byMerchant[m] = append(byMerchant[m], t)
	}

	names := make([]string, 0, len(byMerchant))
	for name := range byMerchant {
		names = append(names, name)
	}
	sort.Strings(names)

	// Primary income stream = the qualifying stream with the largest total.
	var primary []model.Transaction
	var primaryTotal float64
	for _, name := range names {
		deposits := byMerchant[name]
		if !payrollLike(name, deposits) {
			continue
		}
		var total float64
		for _, t := range deposits {
			total += t.Amount
		}
		if total > primaryTotal {
			primary = deposits
			primaryTotal = total
		}
	}

	if len(primary) == 0 {
		return nil, nil
	}

	sort.Slice(primary, func(i, j int) bool { return primary[i].Date.Before(primary[j].Date) })

	gaps := gapsInDays(primary)
	medianGap := median(gaps)
	gapCV := coefficientOfVariation(gaps)

	stability := (1 - gapCV) * 100
	if stability < 0 {
		stability = 0
	}

	amounts := make([]float64, len(primary))
	for i, t := range primary {
		amounts[i] = t.Amount
	}
	monthlyIncome := 0.0
	if medianGap > 0 {
		monthlyIncome = mean(amounts) * window.Short / medianGap
	}

	details := map[string]any{
		"median_pay_gap_days": round2(medianGap),
		"pay_gap_cv":          round2(gapCV),
		"deposit_count":       float64(len(primary)),
		"monthly_income":      round2(monthlyIncome),
		"stability_score":     round2(stability),
	}

	var checkingBalance float64
	hasChecking := false
	for i := range w.Accounts {
		if w.Accounts[i].IsChecking() {
			checkingBalance += w.Accounts[i].CurrentBalance
			hasChecking = true
		}
	}
	if hasChecking {
		details["checking_balance"] = round2(checkingBalance)
	}

	// Buffer is undefined (key absent) when there is no outflow to average.
	if monthlyOutflow := w.TotalOutflow(w.Days) * window.Short / float64(w.Days); monthlyOutflow > 0 && hasChecking {
		details["monthly_outflow"] = round2(monthlyOutflow)
		details["cash_flow_buffer_months"] = round2(checkingBalance / monthlyOutflow)
	}

	return &model.Signal{
		UserID:     userIDFrom(w),
		WindowDays: w.Days,
		Type:       model.SignalIncomeStability,
		Value:      round2(stability),
		Details:    details,
		ComputedAt: w.Reference,
	}, nil
}

// payrollLike decides whether one merchant's deposits form an income
// stream: either explicitly labeled as pay, or at least three deposits
// with stable amounts at regular intervals.
func payrollLike(name string, deposits []model.Transaction) bool {
	if len(deposits) < minIncomeDeposits {
		return false
	}
	if payrollRegex.MatchString(name) {
		return true
	}
	for _, t := range deposits {
		if payrollRegex.MatchString(t.Name) {
			return true
		}
	}

	amounts := make([]float64, len(deposits))
	for i, t := range deposits {
		amounts[i] = t.Amount
	}
	if coefficientOfVariation(amounts) > incomeAmountCV {
		return false
	}

	sorted := make([]model.Transaction, len(deposits))
	copy(sorted, deposits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return coefficientOfVariation(gapsInDays(sorted)) <= incomeGapCV
}
