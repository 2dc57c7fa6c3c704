// Package ingest loads synthetic data bundles into storage.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/service"
)

// Bundle is the on-disk JSON format for a synthetic dataset: users with
// their accounts, liabilities, and transaction history, all in one file.
type Bundle struct {
	Users        []model.UserProfile `json:"users"`
	Accounts     []model.Account     `json:"accounts"`
	Liabilities  []model.Liability   `json:"liabilities"`
	Transactions []model.Transaction `json:"transactions"`
}

// ReadBundle parses a bundle from a reader.
func ReadBundle(r io.Reader) (*Bundle, error) {
	var bundle Bundle
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// ReadBundleFile parses a bundle from a file path.
func ReadBundleFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadBundle(f)
}

// Validate checks referential integrity: every account, liability, and
// transaction must belong to a user declared in the bundle, and every
// liability must reference a declared account.
func (b *Bundle) Validate() error {
	users := make(map[string]bool, len(b.Users))
	for i := range b.Users {
		if b.Users[i].ID == "" {
			return fmt.Errorf("user %d: missing id", i)
		}
		if users[b.Users[i].ID] {
			return fmt.Errorf("duplicate user id %q", b.Users[i].ID)
		}
		users[b.Users[i].ID] = true
	}

	accounts := make(map[string]bool, len(b.Accounts))
	for i := range b.Accounts {
		a := &b.Accounts[i]
		if a.ID == "" {
			return fmt.Errorf("account %d: missing id", i)
		}
		if !users[a.UserID] {
			return fmt.Errorf("account %s: unknown user %q", a.ID, a.UserID)
		}
		accounts[a.ID] = true
	}

	for i := range b.Liabilities {
		l := &b.Liabilities[i]
		if !users[l.UserID] {
			return fmt.Errorf("liability %d: unknown user %q", i, l.UserID)
		}
		if !accounts[l.AccountID] {
			return fmt.Errorf("liability %d: unknown account %q", i, l.AccountID)
		}
	}

	for i := range b.Transactions {
		tx := &b.Transactions[i]
		if !users[tx.UserID] {
			return fmt.Errorf("transaction %d: unknown user %q", i, tx.UserID)
		}
		if !accounts[tx.AccountID] {
			return fmt.Errorf("transaction %d: unknown account %q", i, tx.AccountID)
		}
	}

	return nil
}

// Load persists a bundle into storage. Transactions missing a hash get
// one computed here, so dedup works the same for bundles and OFX imports.
func Load(ctx context.Context, store service.Storage, bundle *Bundle) error {
	for i := range bundle.Users {
		if err := store.SaveUserProfile(ctx, &bundle.Users[i]); err != nil {
			return fmt.Errorf("failed to save user %s: %w", bundle.Users[i].ID, err)
		}
	}
	if err := store.SaveAccounts(ctx, bundle.Accounts); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	if err := store.SaveLiabilities(ctx, bundle.Liabilities); err != nil {
		return fmt.Errorf("failed to save liabilities: %w", err)
	}

	for i := range bundle.Transactions {
		if bundle.Transactions[i].Hash == "" {
			bundle.Transactions[i].Hash = bundle.Transactions[i].GenerateHash()
		}
	}
	if err := store.SaveTransactions(ctx, bundle.Transactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info("Bundle loaded",
		"users", len(bundle.Users),
		"accounts", len(bundle.Accounts),
		"liabilities", len(bundle.Liabilities),
		"transactions", len(bundle.Transactions))
	return nil
}
