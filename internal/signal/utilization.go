package signal

import (
	"context"
	"regexp"
	"sort"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/window"
)

// interestChargeRegex spots interest or finance charges posted to a card.
var interestChargeRegex = regexp.MustCompile(`(?i)\b(INTEREST\s*CHARGE|FINANCE\s*CHARGE|PURCHASE\s*INTEREST)\b`)

// UtilizationDetector computes credit utilization per card and the
// distress flags sourced from liability records.
type UtilizationDetector struct{}

// NewUtilizationDetector creates a credit utilization detector.
func NewUtilizationDetector() *UtilizationDetector {
	return &UtilizationDetector{}
}

// Type returns the signal type this detector produces.
func (d *UtilizationDetector) Type() model.SignalType {
	return model.SignalCreditUtilization
}

// Detect reports the maximum utilization across the user's cards plus
// per-card detail. Cards with a zero or missing limit are excluded from
// the maximum rather than dividing. No usable card means no signal.
func (d *UtilizationDetector) Detect(_ context.Context, w window.Window) (*model.Signal, error) {
	liabilityByAccount := make(map[string]model.Liability, len(w.Liabilities))
	for _, l := range w.Liabilities {
		liabilityByAccount[l.AccountID] = l
	}

	accounts := make([]model.Account, len(w.Accounts))
	copy(accounts, w.Accounts)
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })

	var cards []map[string]any
	var maxUtilization float64
	var minPaymentOnly, overdue bool

	for i := range accounts {
		a := accounts[i]
		if !a.IsCredit() || a.CreditLimit == nil || *a.CreditLimit <= 0 {
			continue
		}
		pct := a.CurrentBalance / *a.CreditLimit * 100
		if pct > maxUtilization {
			maxUtilization = pct
		}
		cards = append(cards, map[string]any{
			"account_id":      a.ID,
			"name":            a.Name,
			"balance":         round2(a.CurrentBalance),
			"limit":           round2(*a.CreditLimit),
			"utilization_pct": round2(pct),
		})

		if l, ok := liabilityByAccount[a.ID]; ok {
			if l.MinimumPaymentOnly() {
				minPaymentOnly = true
			}
			if l.IsOverdue {
				overdue = true
			}
		}
	}

	if len(cards) == 0 {
		return nil, nil
	}

	interestCharged := false
	for _, t := range w.Transactions {
		if t.Outflow() && interestChargeRegex.MatchString(t.Name) {
			interestCharged = true
			break
		}
	}

	return &model.Signal{
		UserID:     userIDFrom(w),
		WindowDays: w.Days,
		Type:       model.SignalCreditUtilization,
		Value:      round2(maxUtilization),
		Details: map[string]any{
			"max_utilization_pct": round2(maxUtilization),
			"cards":               cards,
			"min_payment_only":    minPaymentOnly,
			"overdue":             overdue,
			"interest_charged":    interestCharged,
		},
		ComputedAt: w.Reference,
	}, nil
}
