package window

import (
	"testing"
	"time"

	"github.com/mdliss/finsight/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtract(t *testing.T) {
	reference := date(2026, 6, 30)

	txns := []model.Transaction{
		{ID: "tx-future", UserID: "u1", Date: date(2026, 7, 1), Amount: -10},
		{ID: "tx-b", UserID: "u1", Date: date(2026, 6, 15), Amount: -20},
		{ID: "tx-a", UserID: "u1", Date: date(2026, 6, 15), Amount: -30},
		{ID: "tx-edge", UserID: "u1", Date: date(2026, 5, 31), Amount: -40},
		{ID: "tx-old", UserID: "u1", Date: date(2026, 5, 30), Amount: -50},
	}

	tests := []struct {
		name    string
		days    int
		wantIDs []string
	}{
		{
			name:    "30 day window keeps boundary date and drops future",
			days:    30,
			wantIDs: []string{"tx-edge", "tx-a", "tx-b"},
		},
		{
			name:    "180 day window keeps everything except future",
			days:    180,
			wantIDs: []string{"tx-old", "tx-edge", "tx-a", "tx-b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Extract(txns, nil, nil, reference, tt.days)

			require.Len(t, w.Transactions, len(tt.wantIDs))
			for i, id := range tt.wantIDs {
				assert.Equal(t, id, w.Transactions[i].ID)
			}
			assert.Equal(t, tt.days, w.Days)
			assert.Equal(t, reference, w.Reference)
		})
	}
}

func TestExtractSameDayOrderedByID(t *testing.T) {
	reference := date(2026, 6, 30)
	txns := []model.Transaction{
		{ID: "z", Date: date(2026, 6, 20), Amount: -1},
		{ID: "a", Date: date(2026, 6, 20), Amount: -2},
	}

	w := Extract(txns, nil, nil, reference, 30)

	require.Len(t, w.Transactions, 2)
	assert.Equal(t, "a", w.Transactions[0].ID)
	assert.Equal(t, "z", w.Transactions[1].ID)
}

func TestExtractEmptyWindowIsValid(t *testing.T) {
	w := Extract(nil, nil, nil, date(2026, 6, 30), 30)

	assert.Empty(t, w.Transactions)
	assert.Equal(t, 30, w.Days)
}

func TestTotalOutflow(t *testing.T) {
	reference := date(2026, 6, 30)
	txns := []model.Transaction{
		{ID: "recent-out", Date: date(2026, 6, 20), Amount: -100},
		{ID: "recent-in", Date: date(2026, 6, 21), Amount: 500},
		{ID: "old-out", Date: date(2026, 2, 1), Amount: -250},
	}
	w := Extract(txns, nil, nil, reference, 180)

	assert.InDelta(t, 100.0, w.TotalOutflow(30), 0.001)
	assert.InDelta(t, 350.0, w.TotalOutflow(180), 0.001)

	// Requested range is capped at the window length.
	assert.InDelta(t, 350.0, w.TotalOutflow(365), 0.001)
}
