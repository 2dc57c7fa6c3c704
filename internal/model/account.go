package model

import "strings"

// Account types and subtypes used by the signal detectors.
const (
	AccountTypeDepository = "depository"
	AccountTypeCredit     = "credit"

	AccountSubtypeChecking    = "checking"
	AccountSubtypeSavings     = "savings"
	AccountSubtypeMoneyMarket = "money_market"
	AccountSubtypeHSA         = "hsa"
	AccountSubtypeCreditCard  = "credit_card"
)

// Account is a point-in-time view of one of the user's accounts.
// Balances are not historized; detectors treat them as current state.
type Account struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Subtype          string   `json:"subtype"`
	AvailableBalance float64  `json:"available_balance"`
	CurrentBalance   float64  `json:"current_balance"`
	CreditLimit      *float64 `json:"credit_limit,omitempty"` // nil when the account has no credit line
}

// IsCredit reports whether the account is a credit line (card or otherwise).
func (a *Account) IsCredit() bool {
	return a.Type == AccountTypeCredit || a.Subtype == AccountSubtypeCreditCard
}

// IsChecking reports whether the account is a checking account.
func (a *Account) IsChecking() bool {
	return a.Subtype == AccountSubtypeChecking
}

// IsSavingsLike reports whether the account counts toward savings growth:
// savings, money market, and HSA accounts.
func (a *Account) IsSavingsLike() bool {
	switch strings.ToLower(a.Subtype) {
	case AccountSubtypeSavings, AccountSubtypeMoneyMarket, AccountSubtypeHSA:
		return true
	}
	return false
}
