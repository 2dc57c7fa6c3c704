package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/mdliss/finsight/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBundle = `{
  "users": [
    {"id": "u1", "name": "Ada", "birth_date": "1990-06-15T00:00:00Z", "consent_granted": true}
  ],
  "accounts": [
    {"id": "chk", "user_id": "u1", "name": "Checking", "type": "depository", "subtype": "checking", "current_balance": 1200}
  ],
  "liabilities": [],
  "transactions": [
    {"id": "tx1", "user_id": "u1", "account_id": "chk", "date": "2026-06-01T00:00:00Z", "name": "ACME CORP PAYROLL", "amount": 2000},
    {"id": "tx2", "user_id": "u1", "account_id": "chk", "date": "2026-06-03T00:00:00Z", "name": "Grocer", "amount": -84.12}
  ]
}`

func TestReadBundle(t *testing.T) {
	bundle, err := ReadBundle(strings.NewReader(validBundle))
	require.NoError(t, err)

	require.Len(t, bundle.Users, 1)
	assert.Equal(t, "u1", bundle.Users[0].ID)
	assert.True(t, bundle.Users[0].ConsentGranted)
	require.Len(t, bundle.Accounts, 1)
	require.Len(t, bundle.Transactions, 2)
	assert.Equal(t, -84.12, bundle.Transactions[1].Amount)
}

func TestReadBundleRejectsUnknownFields(t *testing.T) {
	_, err := ReadBundle(strings.NewReader(`{"users": [], "surprise": true}`))
	assert.Error(t, err)
}

func TestValidateReferentialIntegrity(t *testing.T) {
	user := func(id string) string {
		return `{"id": "` + id + `", "name": "X", "birth_date": "1990-01-01T00:00:00Z", "consent_granted": true}`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "duplicate user id",
			body:    `{"users": [` + user("u1") + `,` + user("u1") + `]}`,
			wantErr: "duplicate user id",
		},
		{
			name:    "account referencing unknown user",
			body:    `{"users": [], "accounts": [{"id": "a", "user_id": "ghost", "type": "depository", "subtype": "checking"}]}`,
			wantErr: "unknown user",
		},
		{
			name: "transaction referencing unknown account",
			body: `{"users": [` + user("u1") + `],
				"transactions": [{"id": "t", "user_id": "u1", "account_id": "ghost", "date": "2026-06-01T00:00:00Z", "name": "x", "amount": -1}]}`,
			wantErr: "unknown account",
		},
		{
			name: "liability referencing unknown account",
			body: `{"users": [` + user("u1") + `],
				"liabilities": [{"account_id": "ghost", "user_id": "u1"}]}`,
			wantErr: "unknown account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBundle(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadPersistsBundle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	bundle, err := ReadBundle(strings.NewReader(validBundle))
	require.NoError(t, err)
	require.NoError(t, Load(ctx, db.Storage, bundle))

	profile, err := db.Storage.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, profile.ConsentGranted)

	count, err := db.Storage.GetTransactionCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Hashes were backfilled, so reloading the same bundle dedupes.
	fresh, err := ReadBundle(strings.NewReader(validBundle))
	require.NoError(t, err)
	require.NoError(t, Load(ctx, db.Storage, fresh))

	count, err = db.Storage.GetTransactionCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
