package signal

import (
	"context"
	"errors"
	"testing"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	typ model.SignalType
	sig *model.Signal
	err error
}

func (d *stubDetector) Type() model.SignalType { return d.typ }
func (d *stubDetector) Detect(_ context.Context, _ window.Window) (*model.Signal, error) {
	return d.sig, d.err
}

func TestRunAllSortsAndDropsNilSignals(t *testing.T) {
	detectors := []Detector{
		&stubDetector{typ: "zz_last", sig: &model.Signal{Type: "zz_last"}},
		&stubDetector{typ: "missing", sig: nil},
		&stubDetector{typ: "aa_first", sig: &model.Signal{Type: "aa_first"}},
	}

	signals, err := RunAll(context.Background(), detectors, window.Window{})
	require.NoError(t, err)

	require.Len(t, signals, 2)
	assert.Equal(t, model.SignalType("aa_first"), signals[0].Type)
	assert.Equal(t, model.SignalType("zz_last"), signals[1].Type)
}

func TestRunAllPropagatesDetectorError(t *testing.T) {
	boom := errors.New("boom")
	detectors := []Detector{
		&stubDetector{typ: "ok", sig: &model.Signal{Type: "ok"}},
		&stubDetector{typ: "broken", err: boom},
	}

	signals, err := RunAll(context.Background(), detectors, window.Window{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, signals)
}

func TestDefaultDetectorsOnFullWindow(t *testing.T) {
	reference := date(2026, 6, 30)

	limit := 5000.0
	accounts := []model.Account{
		{ID: "chk", UserID: "u1", Type: model.AccountTypeDepository, Subtype: model.AccountSubtypeChecking, CurrentBalance: 2500},
		{ID: "sav", UserID: "u1", Type: model.AccountTypeDepository, Subtype: model.AccountSubtypeSavings, CurrentBalance: 8000},
		{ID: "card", UserID: "u1", Type: model.AccountTypeCredit, Subtype: model.AccountSubtypeCreditCard, CurrentBalance: 900, CreditLimit: &limit},
	}

	var txns []model.Transaction
	for i := 0; i < 4; i++ {
		txns = append(txns, charge("pay"+string(rune('a'+i)), "ACME CORP PAYROLL", reference.AddDate(0, 0, -14*i), 2200))
	}
	for i := 0; i < 3; i++ {
		txns = append(txns, charge("sub"+string(rune('a'+i)), "Netflix", reference.AddDate(0, 0, -30*i), -15.99))
	}
	txns = append(txns, model.Transaction{
		ID: "sv1", UserID: "u1", AccountID: "sav", Date: reference.AddDate(0, 0, -15), Amount: 400,
	})

	w := window.Extract(txns, accounts, nil, reference, window.Long)

	signals, err := RunAll(context.Background(), DefaultDetectors(), w)
	require.NoError(t, err)
	require.Len(t, signals, 4)

	types := make([]model.SignalType, len(signals))
	for i, s := range signals {
		types[i] = s.Type
		assert.Equal(t, "u1", s.UserID)
		assert.Equal(t, window.Long, s.WindowDays)
		assert.Equal(t, reference, s.ComputedAt)
	}
	assert.Equal(t, []model.SignalType{
		model.SignalCreditUtilization,
		model.SignalIncomeStability,
		model.SignalSavingsGrowth,
		model.SignalSubscription,
	}, types)
}
