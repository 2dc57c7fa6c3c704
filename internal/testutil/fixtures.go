package testutil

import (
	"fmt"
	"time"

	"github.com/mdliss/finsight/internal/model"
)

// UserFixture accumulates one synthetic user's data.
type UserFixture struct {
	Profile      model.UserProfile
	Accounts     []model.Account
	Liabilities  []model.Liability
	Transactions []model.Transaction

	nextTxn int
}

// NewUser starts a fixture for a consenting adult user.
func NewUser(id string) *UserFixture {
	return &UserFixture{
		Profile: model.UserProfile{
			ID:             id,
			Name:           "Test User " + id,
			BirthDate:      time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
			ConsentGranted: true,
		},
	}
}

// WithoutConsent revokes the fixture user's consent.
func (f *UserFixture) WithoutConsent() *UserFixture {
	f.Profile.ConsentGranted = false
	return f
}

// WithBirthDate overrides the default birth date.
func (f *UserFixture) WithBirthDate(d time.Time) *UserFixture {
	f.Profile.BirthDate = d
	return f
}

// WithChecking adds a checking account with the given balance.
func (f *UserFixture) WithChecking(id string, balance float64) *UserFixture {
	f.Accounts = append(f.Accounts, model.Account{
		ID:               id,
		UserID:           f.Profile.ID,
		Name:             "Everyday Checking",
		Type:             model.AccountTypeDepository,
		Subtype:          model.AccountSubtypeChecking,
		AvailableBalance: balance,
		CurrentBalance:   balance,
	})
	return f
}

// WithSavings adds a savings account with the given balance.
func (f *UserFixture) WithSavings(id string, balance float64) *UserFixture {
	f.Accounts = append(f.Accounts, model.Account{
		ID:               id,
		UserID:           f.Profile.ID,
		Name:             "Savings",
		Type:             model.AccountTypeDepository,
		Subtype:          model.AccountSubtypeSavings,
		AvailableBalance: balance,
		CurrentBalance:   balance,
	})
	return f
}

// WithCreditCard adds a credit card carrying the given balance and limit.
func (f *UserFixture) WithCreditCard(id string, balance, limit float64) *UserFixture {
	f.Accounts = append(f.Accounts, model.Account{
		ID:             id,
		UserID:         f.Profile.ID,
		Name:           "Rewards Card",
		Type:           model.AccountTypeCredit,
		Subtype:        model.AccountSubtypeCreditCard,
		CurrentBalance: balance,
		CreditLimit:    &limit,
	})
	return f
}

// WithLiability attaches liability metadata to a previously added card.
func (f *UserFixture) WithLiability(l model.Liability) *UserFixture {
	l.UserID = f.Profile.ID
	f.Liabilities = append(f.Liabilities, l)
	return f
}

// Txn adds one transaction. Negative amounts are outflows.
func (f *UserFixture) Txn(accountID string, date time.Time, merchant string, amount float64) *UserFixture {
	f.nextTxn++
	tx := model.Transaction{
		ID:           fmt.Sprintf("%s-tx-%03d", f.Profile.ID, f.nextTxn),
		UserID:       f.Profile.ID,
		AccountID:    accountID,
		Date:         date,
		Name:         merchant,
		MerchantName: merchant,
		Amount:       amount,
	}
	tx.Hash = tx.GenerateHash()
	f.Transactions = append(f.Transactions, tx)
	return f
}

// RecurringCharges adds count charges of the same amount to the same
// merchant at a fixed day interval, ending at the last date.
func (f *UserFixture) RecurringCharges(accountID, merchant string, amount float64, count, intervalDays int, last time.Time) *UserFixture {
	for i := count - 1; i >= 0; i-- {
		f.Txn(accountID, last.AddDate(0, 0, -i*intervalDays), merchant, amount)
	}
	return f
}

// PayrollDeposits adds count equal payroll deposits at a fixed interval,
// ending at the last date. The merchant name matches payroll detection.
func (f *UserFixture) PayrollDeposits(accountID string, amount float64, count, intervalDays int, last time.Time) *UserFixture {
	for i := count - 1; i >= 0; i-- {
		f.Txn(accountID, last.AddDate(0, 0, -i*intervalDays), "ACME CORP PAYROLL", amount)
	}
	return f
}

// Window bundles the fixture into a detector input without storage.
func (f *UserFixture) Window() ([]model.Transaction, []model.Account, []model.Liability) {
	return f.Transactions, f.Accounts, f.Liabilities
}
