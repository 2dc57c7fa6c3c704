package model

import "time"

// Liability holds credit-card or loan metadata tied to one account.
// It feeds the credit-utilization detector's overdue and minimum-payment flags.
type Liability struct {
	AccountID         string    `json:"account_id"`
	UserID            string    `json:"user_id"`
	APR               float64   `json:"apr"`
	MinimumPayment    float64   `json:"minimum_payment"`
	LastPaymentAmount float64   `json:"last_payment_amount"`
	LastPaymentDate   time.Time `json:"last_payment_date"`
	NextPaymentDue    time.Time `json:"next_payment_due"`
	StatementBalance  float64   `json:"statement_balance"`
	IsOverdue         bool      `json:"is_overdue"`
}

// MinimumPaymentOnly reports whether the last payment covered little more
// than the minimum due. A 10% tolerance absorbs rounding on autopay amounts.
func (l *Liability) MinimumPaymentOnly() bool {
	if l.MinimumPayment <= 0 || l.LastPaymentAmount <= 0 {
		return false
	}
	return l.LastPaymentAmount <= l.MinimumPayment*1.1
}
