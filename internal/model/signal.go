package model

import "time"

// SignalType identifies one behavioral metric bundle. The set is closed;
// adding a type requires a matching detector.
type SignalType string

const (
	// SignalSubscription reports recurring merchant spend.
	SignalSubscription SignalType = "subscription_detected"
	// SignalCreditUtilization reports credit line usage.
	SignalCreditUtilization SignalType = "credit_utilization"
	// SignalIncomeStability reports payroll regularity and cash-flow buffer.
	SignalIncomeStability SignalType = "income_stability"
	// SignalSavingsGrowth reports net savings inflow and emergency coverage.
	SignalSavingsGrowth SignalType = "savings_growth"
)

// Signal is one computed behavioral metric for a (user, window, type) key.
// Recomputation replaces prior values for the same key; signals are never
// updated in place.
type Signal struct {
	UserID     string         `json:"user_id"`
	WindowDays int            `json:"window_days"`
	Type       SignalType     `json:"type"`
	Value      float64        `json:"value"`
	Details    map[string]any `json:"details,omitempty"`
	ComputedAt time.Time      `json:"computed_at"`
}

// Detail returns a detail value by key, or nil when absent.
func (s *Signal) Detail(key string) any {
	if s.Details == nil {
		return nil
	}
	return s.Details[key]
}

// DetailFloat returns a numeric detail and whether it was present.
func (s *Signal) DetailFloat(key string) (float64, bool) {
	v, ok := s.Details[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// DetailBool returns a boolean detail, defaulting to false when absent.
func (s *Signal) DetailBool(key string) bool {
	v, ok := s.Details[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
