package signal

import (
	"context"
	"testing"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savingsAccount(id string, balance float64) model.Account {
	return model.Account{
		ID:             id,
		UserID:         "u1",
		Name:           "Savings",
		Type:           model.AccountTypeDepository,
		Subtype:        model.AccountSubtypeSavings,
		CurrentBalance: balance,
	}
}

func TestSavingsDetectorGrowthAndCoverage(t *testing.T) {
	reference := date(2026, 6, 30)
	accounts := []model.Account{
		savingsAccount("sav", 5000),
		{ID: "chk", UserID: "u1", Type: model.AccountTypeDepository, Subtype: model.AccountSubtypeChecking},
	}
	txns := []model.Transaction{
		{ID: "s1", UserID: "u1", AccountID: "sav", Date: reference.AddDate(0, 0, -20), Amount: 500},
		{ID: "s2", UserID: "u1", AccountID: "sav", Date: reference.AddDate(0, 0, -5), Amount: 500},
		{ID: "o1", UserID: "u1", AccountID: "chk", Date: reference.AddDate(0, 0, -10), Name: "Rent Co", Amount: -2000},
	}
	w := window.Extract(txns, accounts, nil, reference, window.Short)

	sig, err := NewSavingsDetector().Detect(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, sig)

	assert.Equal(t, model.SignalSavingsGrowth, sig.Type)
	assert.Equal(t, 5000.0, sig.Detail("savings_balance"))
	assert.Equal(t, 1000.0, sig.Detail("net_inflow"))
	assert.InDelta(t, 1000.0, sig.Value, 0.001)

	// 1000 gained on a 4000 starting balance in one month.
	growth, ok := sig.DetailFloat("monthly_growth_rate_pct")
	require.True(t, ok)
	assert.InDelta(t, 25.0, growth, 0.001)

	// 5000 banked against 2000 of monthly spend elsewhere.
	months, ok := sig.DetailFloat("emergency_fund_months")
	require.True(t, ok)
	assert.InDelta(t, 2.5, months, 0.001)
}

func TestSavingsDetectorWithdrawalsProduceNegativeInflow(t *testing.T) {
	reference := date(2026, 6, 30)
	accounts := []model.Account{savingsAccount("sav", 1000)}
	txns := []model.Transaction{
		{ID: "s1", UserID: "u1", AccountID: "sav", Date: reference.AddDate(0, 0, -10), Amount: -400},
	}
	w := window.Extract(txns, accounts, nil, reference, window.Short)

	sig, err := NewSavingsDetector().Detect(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, sig)

	assert.Equal(t, -400.0, sig.Detail("net_inflow"))
	assert.InDelta(t, -400.0, sig.Value, 0.001)

	// Start balance was 1400, so the negative growth rate is still defined.
	growth, ok := sig.DetailFloat("monthly_growth_rate_pct")
	require.True(t, ok)
	assert.InDelta(t, -28.57, growth, 0.01)
}

func TestSavingsDetectorGrowthUndefinedFromZeroStart(t *testing.T) {
	reference := date(2026, 6, 30)
	// All of the current balance arrived inside the window, so the starting
	// balance is zero and the growth rate has no denominator.
	accounts := []model.Account{savingsAccount("sav", 600)}
	txns := []model.Transaction{
		{ID: "s1", UserID: "u1", AccountID: "sav", Date: reference.AddDate(0, 0, -10), Amount: 600},
	}
	w := window.Extract(txns, accounts, nil, reference, window.Short)

	sig, err := NewSavingsDetector().Detect(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, sig)

	_, present := sig.Details["monthly_growth_rate_pct"]
	assert.False(t, present)
}

func TestSavingsDetectorCoverageUndefinedWithoutExpenses(t *testing.T) {
	reference := date(2026, 6, 30)
	accounts := []model.Account{savingsAccount("sav", 5000)}
	txns := []model.Transaction{
		{ID: "s1", UserID: "u1", AccountID: "sav", Date: reference.AddDate(0, 0, -10), Amount: 100},
	}
	w := window.Extract(txns, accounts, nil, reference, window.Short)

	sig, err := NewSavingsDetector().Detect(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, sig)

	_, present := sig.Details["emergency_fund_months"]
	assert.False(t, present)
}

func TestSavingsDetectorNoSavingsAccount(t *testing.T) {
	reference := date(2026, 6, 30)
	accounts := []model.Account{
		{ID: "chk", UserID: "u1", Type: model.AccountTypeDepository, Subtype: model.AccountSubtypeChecking, CurrentBalance: 3000},
	}
	w := window.Extract(nil, accounts, nil, reference, window.Short)

	sig, err := NewSavingsDetector().Detect(context.Background(), w)
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestSavingsDetectorLongWindowScalesMonthly(t *testing.T) {
	reference := date(2026, 6, 30)
	accounts := []model.Account{savingsAccount("sav", 10000)}
	txns := []model.Transaction{
		{ID: "s1", UserID: "u1", AccountID: "sav", Date: reference.AddDate(0, 0, -150), Amount: 3000},
	}
	w := window.Extract(txns, accounts, nil, reference, window.Long)

	sig, err := NewSavingsDetector().Detect(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, sig)

	// 3000 over 180 days is 500 per 30 day month.
	assert.InDelta(t, 500.0, sig.Value, 0.001)
}
