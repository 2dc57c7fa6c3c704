package signal

import (
	"context"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/window"
)

// SavingsDetector sums net transfers into savings-like accounts and
// estimates emergency-fund coverage.
type SavingsDetector struct{}

// NewSavingsDetector creates a savings growth detector.
func NewSavingsDetector() *SavingsDetector {
	return &SavingsDetector{}
}

// Type returns the signal type this detector produces.
func (d *SavingsDetector) Type() model.SignalType {
	return model.SignalSavingsGrowth
}

// Detect reports monthly net savings inflow, a growth rate relative to the
// window's starting balance, and emergency-fund coverage. Growth rate and
// coverage stay undefined (keys absent) when their denominators are zero.
// No savings-like account means no signal.
func (d *SavingsDetector) Detect(_ context.Context, w window.Window) (*model.Signal, error) {
	savingsAccounts := make(map[string]bool)
	var savingsBalance float64
	for i := range w.Accounts {
		if w.Accounts[i].IsSavingsLike() {
			savingsAccounts[w.Accounts[i].ID] = true
			savingsBalance += w.Accounts[i].CurrentBalance
		}
	}
	if len(savingsAccounts) == 0 {
		return nil, nil
	}

	var netInflow float64
	var otherOutflow float64
	for _, t := range w.Transactions {
		if t.Pending {
			continue
		}
		if savingsAccounts[t.AccountID] {
			netInflow += t.Amount
		} else if t.Outflow() {
			otherOutflow += -t.Amount
		}
	}

	monthlyNetInflow := netInflow * window.Short / float64(w.Days)

	details := map[string]any{
		"savings_balance":    round2(savingsBalance),
		"net_inflow":         round2(netInflow),
		"monthly_net_inflow": round2(monthlyNetInflow),
	}

	// Growth is measured against the balance at the start of the window.
	if startBalance := savingsBalance - netInflow; startBalance > 0 {
		details["monthly_growth_rate_pct"] = round2(monthlyNetInflow / startBalance * 100)
	}

	if monthlyExpense := otherOutflow * window.Short / float64(w.Days); monthlyExpense > 0 {
		details["monthly_expense"] = round2(monthlyExpense)
		details["emergency_fund_months"] = round2(savingsBalance / monthlyExpense)
	}

	return &model.Signal{
		UserID:     userIDFrom(w),
		WindowDays: w.Days,
		Type:       model.SignalSavingsGrowth,
		Value:      round2(monthlyNetInflow),
		Details:    details,
		ComputedAt: w.Reference,
	}, nil
}
