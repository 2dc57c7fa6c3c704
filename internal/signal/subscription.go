package signal

import (
	"context"
	"sort"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/window"
)

// Recurrence bands in days. A merchant's charge cadence must land in one
// of these for the merchant to count as recurring.
const (
	monthlyBandLow  = 28.0
	monthlyBandHigh = 32.0
	weeklyBandLow   = 6.0
	weeklyBandHigh  = 8.0

	// subscriptionLookbackDays bounds how far back recurrence is evaluated,
	// regardless of window length.
	subscriptionLookbackDays = 90

	// minRecurringCharges is the minimum charge count per merchant.
	minRecurringCharges = 3

	// amountTolerance is the allowed deviation around the mean charge amount.
	amountTolerance = 0.10

	// weeksPerMonth converts a weekly cadence to monthly spend.
	weeksPerMonth = 4.33
)

// SubscriptionDetector finds merchants charged on a regular cadence with
// stable amounts and aggregates them into monthly recurring spend.
type SubscriptionDetector struct{}

// NewSubscriptionDetector creates a subscription detector.
func NewSubscriptionDetector() *SubscriptionDetector {
	return &SubscriptionDetector{}
}

// Type returns the signal type this detector produces.
func (d *SubscriptionDetector) Type() model.SignalType {
	return model.SignalSubscription
}

type recurringMerchant struct {
	name          string
	cadence       string
	averageAmount float64
	monthlySpend  float64
	chargeCount   int
}

// Detect groups outflows by merchant over a 90-day lookback and reports
// recurring spend. No recurring merchant means no signal.
func (d *SubscriptionDetector) Detect(_ context.Context, w window.Window) (*model.Signal, error) {
	lookback := subscriptionLookbackDays
	if lookback > w.Days {
		lookback = w.Days
	}
	cutoff := w.Reference.AddDate(0, 0, -lookback)

	byMerchant := make(map[string][]model.Transaction)
	for _, t := range w.Transactions {
		if !t.Outflow() || t.Pending || t.Date.Before(cutoff) {
			continue
		}
		m := t.Merchant()
		if m == "" {
			continue
		}
		byMerchant[m] = append(byMerchant[m], t)
	}

	// Deterministic merchant order.
	names := make([]string, 0, len(byMerchant))
	for name := range byMerchant {
		names = append(names, name)
	}
	sort.Strings(names)

	var recurring []recurringMerchant
	for _, name := range names {
		if rm, ok := classifyMerchant(name, byMerchant[name]); ok {
			recurring = append(recurring, rm)
		}
	}

	if len(recurring) == 0 {
		return nil, nil
	}

	var monthlySpend float64
	merchants := make([]map[string]any, 0, len(recurring))
	for _, rm := range recurring {
		monthlySpend += rm.monthlySpend
		merchants = append(merchants, map[string]any{
			"name":           rm.name,
			"cadence":        rm.cadence,
			"average_amount": round2(rm.averageAmount),
			"charge_count":   float64(rm.chargeCount),
		})
	}

	details := map[string]any{
		"recurring_merchant_count": float64(len(recurring)),
		"monthly_recurring_spend":  round2(monthlySpend),
		"merchants":                merchants,
	}

	// Share of 30-day outflow, left undefined when there is no outflow.
	if outflow := w.TotalOutflow(window.Short); outflow > 0 {
		details["subscription_share_pct"] = round2(monthlySpend / outflow * 100)
	}

	return &model.Signal{
		UserID:     userIDFrom(w),
		WindowDays: w.Days,
		Type:       model.SignalSubscription,
		Value:      round2(monthlySpend),
		Details:    details,
		ComputedAt: w.Reference,
	}, nil
}

// classifyMerchant decides whether one merchant's charges form a
// subscription: at least three charges, inter-charge gaps with a median in
// the monthly or weekly band, and amounts within ±10% of their mean.
func classifyMerchant(name string, txns []model.Transaction) (recurringMerchant, bool) {
	if len(txns) < minRecurringCharges {
		return recurringMerchant{}, false
	}

	sort.Slice(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })

	amounts := make([]float64, len(txns))
	for i, t := range txns {
		amounts[i] = -t.Amount
	}
	avg := mean(amounts)
	if avg <= 0 {
		return recurringMerchant{}, false
	}
	for _, a := range amounts {
		if a < avg*(1-amountTolerance) || a > avg*(1+amountTolerance) {
			return recurringMerchant{}, false
		}
	}

	gap := median(gapsInDays(txns))
	var cadence string
	var monthly float64
	switch {
	case gap >= monthlyBandLow && gap <= monthlyBandHigh:
		cadence = "monthly"
		monthly = avg
	case gap >= weeklyBandLow && gap <= weeklyBandHigh:
		cadence = "weekly"
		monthly = avg * weeksPerMonth
	default:
		return recurringMerchant{}, false
	}

	return recurringMerchant{
		name:          name,
		cadence:       cadence,
		averageAmount: avg,
		monthlySpend:  monthly,
		chargeCount:   len(txns),
	}, true
}

// userIDFrom pulls the owning user from the window's data.
func userIDFrom(w window.Window) string {
	if len(w.Accounts) > 0 {
		return w.Accounts[0].UserID
	}
	if len(w.Transactions) > 0 {
		return w.Transactions[0].UserID
	}
	return ""
}
