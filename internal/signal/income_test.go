package signal

import (
	"context"
	"testing"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeDetectorBiweeklyPayroll(t *testing.T) {
	reference := date(2026, 6, 30)
	var txns []model.Transaction
	for i := 0; i < 6; i++ {
		txns = append(txns, charge("pay"+string(rune('a'+i)), "ACME CORP PAYROLL", reference.AddDate(0, 0, -14*i), 2000))
	}
	accounts := []model.Account{
		{ID: "chk", UserID: "u1", Type: model.AccountTypeDepository, Subtype: model.AccountSubtypeChecking, CurrentBalance: 4200},
	}
	w := window.Extract(txns, accounts, nil, reference, window.Long)

	sig, err := NewIncomeDetector().Detect(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, sig)

	assert.Equal(t, model.SignalIncomeStability, sig.Type)
	assert.Equal(t, 14.0, sig.Detail("median_pay_gap_days"))
	assert.Equal(t, 0.0, sig.Detail("pay_gap_cv"))
	assert.Equal(t, 6.0, sig.Detail("deposit_count"))
	assert.InDelta(t, 100.0, sig.Value, 0.001)

	// 2000 per deposit scaled to a 30 day month over a 14 day gap.
	income, ok := sig.DetailFloat("monthly_income")
	require.True(t, ok)
	assert.InDelta(t, 4285.71, income, 0.01)

	assert.Equal(t, 4200.0, sig.Detail("checking_balance"))
}

func TestIncomeDetectorCashFlowBuffer(t *testing.T) {
	reference := date(2026, 6, 30)
	txns := []model.Transaction{
		charge("p1", "ACME CORP PAYROLL", reference.AddDate(0, 0, -28), 2000),
		charge("p2", "ACME CORP PAYROLL", reference.AddDate(0, 0, -14), 2000),
		charge("p3", "ACME CORP PAYROLL", reference, 2000),
		// 3000 spent over the 30 day window.
		charge("o1", "Rent Co", reference.AddDate(0, 0, -10), -3000),
	}
	accounts := []model.Account{
		{ID: "chk", UserID: "u1", Type: model.AccountTypeDepository, Subtype: model.AccountSubtypeChecking, CurrentBalance: 1500},
	}
	w := window.Extract(txns, accounts, nil, reference, window.Short)

	sig, err := NewIncomeDetector().Detect(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, sig)

	assert.Equal(t, 3000.0, sig.Detail("monthly_outflow"))
	buffer, ok := sig.DetailFloat("cash_flow_buffer_months")
	require.True(t, ok)
	assert.InDelta(t, 0.5, buffer, 0.001)
}

func TestIncomeDetectorBufferUndefinedWithoutOutflow(t *testing.T) {
	reference := date(2026, 6, 30)
	txns := []model.Transaction{
		charge("p1", "ACME CORP PAYROLL", reference.AddDate(0, 0, -28), 2000),
		charge("p2", "ACME CORP PAYROLL", reference.AddDate(0, 0, -14), 2000),
		charge("p3", "ACME CORP PAYROLL", reference, 2000),
	}
	accounts := []model.Account{
		{ID: "chk", UserID: "u1", Type: model.AccountTypeDepository, Subtype: model.AccountSubtypeChecking, CurrentBalance: 1500},
	}
	w := window.Extract(txns, accounts, nil, reference, window.Short)

	sig, err := NewIncomeDetector().Detect(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, sig)

	_, present := sig.Details["cash_flow_buffer_months"]
	assert.False(t, present)
}

func TestIncomeDetectorUnlabeledButRegularDeposits(t *testing.T) {
	reference := date(2026, 6, 30)
	// No payroll keyword, but stable amounts on a stable cadence.
	txns := []model.Transaction{
		charge("d1", "Freelance Client LLC", reference.AddDate(0, 0, -28), 1500),
		charge("d2", "Freelance Client LLC", reference.AddDate(0, 0, -14), 1520),
		charge("d3", "Freelance Client LLC", reference, 1480),
	}
	w := window.Extract(txns, nil, nil, reference, window.Short)

	sig, err := NewIncomeDetector().Detect(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, 3.0, sig.Detail("deposit_count"))
}

func TestIncomeDetectorNoQualifyingStream(t *testing.T) {
	reference := date(2026, 6, 30)

	tests := []struct {
		name string
		txns []model.Transaction
	}{
		{
			name: "no deposits at all",
			txns: []model.Transaction{
				charge("t1", "Grocer", reference.AddDate(0, 0, -5), -80),
			},
		},
		{
			name: "too few deposits",
			txns: []model.Transaction{
				charge("d1", "ACME CORP PAYROLL", reference.AddDate(0, 0, -14), 2000),
				charge("d2", "ACME CORP PAYROLL", reference, 2000),
			},
		},
		{
			name: "unlabeled deposits with erratic amounts",
			txns: []model.Transaction{
				charge("d1", "Venmo", reference.AddDate(0, 0, -28), 50),
				charge("d2", "Venmo", reference.AddDate(0, 0, -14), 900),
				charge("d3", "Venmo", reference, 120),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := window.Extract(tt.txns, nil, nil, reference, window.Short)
			sig, err := NewIncomeDetector().Detect(context.Background(), w)
			require.NoError(t, err)
			assert.Nil(t, sig)
		})
	}
}

func TestIncomeDetectorPicksLargestStream(t *testing.T) {
	reference := date(2026, 6, 30)
	var txns []model.Transaction
	for i := 0; i < 3; i++ {
		txns = append(txns, charge("m"+string(rune('a'+i)), "MAIN JOB PAYROLL", reference.AddDate(0, 0, -14*i), 2500))
		txns = append(txns, charge("s"+string(rune('a'+i)), "SIDE GIG PAYROLL", reference.AddDate(0, 0, -14*i), 300))
	}
	w := window.Extract(txns, nil, nil, reference, window.Long)

	sig, err := NewIncomeDetector().Detect(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, sig)

	income, ok := sig.DetailFloat("monthly_income")
	require.True(t, ok)
	assert.InDelta(t, 2500.0*30/14, income, 0.01)
}
