// Package window slices a user's data into fixed analysis windows.
package window

import (
	"sort"
	"time"

	"github.com/mdliss/finsight/internal/model"
)

// Supported analysis window lengths in days.
const (
	Short = 30
	Long  = 180
)

// Window is the fixed-length slice of a user's data that the signal
// detectors consume. Accounts and liabilities pass through unfiltered;
// their balances are point-in-time, not historized.
type Window struct {
	Reference    time.Time
	Start        time.Time
	Days         int
	Transactions []model.Transaction
	Accounts     []model.Account
	Liabilities  []model.Liability
}

// Extract returns the transactions dated within [reference-days, reference]
// plus the accounts and liabilities as-is. An empty window is a valid
// result, not an error; downstream detectors treat it as "no signal".
// Input slices are never mutated.
func Extract(txns []model.Transaction, accounts []model.Account, liabilities []model.Liability, reference time.Time, days int) Window {
	start := reference.AddDate(0, 0, -days)

	selected := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Date.Before(start) || t.Date.After(reference) {
			continue
		}
		selected = append(selected, t)
	}

	// Stable order so every downstream computation is deterministic.
	sort.Slice(selected, func(i, j int) bool {
		if !selected[i].Date.Equal(selected[j].Date) {
			return selected[i].Date.Before(selected[j].Date)
		}
		return selected[i].ID < selected[j].ID
	})

	return Window{
		Reference:    reference,
		Start:        start,
		Days:         days,
		Transactions: selected,
		Accounts:     accounts,
		Liabilities:  liabilities,
	}
}

// TotalOutflow sums the absolute value of all outflows dated within the
// last `days` days of the window (capped at the window length).
func (w *Window) TotalOutflow(days int) float64 {
	if days > w.Days {
		days = w.Days
	}
	cutoff := w.Reference.AddDate(0, 0, -days)

	var total float64
	for _, t := range w.Transactions {
		if t.Outflow() && !t.Date.Before(cutoff) {
			total += -t.Amount
		}
	}
	return total
}
