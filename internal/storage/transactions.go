package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/mdliss/finsight/internal/model"
)

// SaveAccounts upserts a batch of accounts in one transaction.
func (s *SQLiteStorage) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range accounts {
		if err := validateString(a.ID, "account.ID"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, user_id, name, type, subtype, available_balance, current_balance, credit_limit)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				type = excluded.type,
				subtype = excluded.subtype,
				available_balance = excluded.available_balance,
				current_balance = excluded.current_balance,
				credit_limit = excluded.credit_limit`,
			a.ID, a.UserID, a.Name, a.Type, a.Subtype, a.AvailableBalance, a.CurrentBalance, a.CreditLimit); err != nil {
			return fmt.Errorf("failed to save account %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// GetAccounts returns a user's accounts ordered by ID.
func (s *SQLiteStorage) GetAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, subtype, available_balance, current_balance, credit_limit
		FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts for %s: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Subtype,
			&a.AvailableBalance, &a.CurrentBalance, &a.CreditLimit); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SaveLiabilities upserts a batch of liabilities.
func (s *SQLiteStorage) SaveLiabilities(ctx context.Context, liabilities []model.Liability) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range liabilities {
		if err := validateString(l.AccountID, "liability.AccountID"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO liabilities (account_id, user_id, apr, minimum_payment, last_payment_amount,
				last_payment_date, next_payment_due, statement_balance, is_overdue)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(account_id) DO UPDATE SET
				apr = excluded.apr,
				minimum_payment = excluded.minimum_payment,
				last_payment_amount = excluded.last_payment_amount,
				last_payment_date = excluded.last_payment_date,
				next_payment_due = excluded.next_payment_due,
				statement_balance = excluded.statement_balance,
				is_overdue = excluded.is_overdue`,
			l.AccountID, l.UserID, l.APR, l.MinimumPayment, l.LastPaymentAmount,
			l.LastPaymentDate, l.NextPaymentDue, l.StatementBalance, l.IsOverdue); err != nil {
			return fmt.Errorf("failed to save liability %s: %w", l.AccountID, err)
		}
	}
	return tx.Commit()
}

// GetLiabilities returns a user's liabilities ordered by account ID.
func (s *SQLiteStorage) GetLiabilities(ctx context.Context, userID string) ([]model.Liability, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, user_id, apr, minimum_payment, last_payment_amount,
			last_payment_date, next_payment_due, statement_balance, is_overdue
		FROM liabilities WHERE user_id = ? ORDER BY account_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load liabilities for %s: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	var liabilities []model.Liability
	for rows.Next() {
		var l model.Liability
		if err := rows.Scan(&l.AccountID, &l.UserID, &l.APR, &l.MinimumPayment, &l.LastPaymentAmount,
			&l.LastPaymentDate, &l.NextPaymentDue, &l.StatementBalance, &l.IsOverdue); err != nil {
			return nil, fmt.Errorf("failed to scan liability: %w", err)
		}
		liabilities = append(liabilities, l)
	}
	return liabilities, rows.Err()
}

// SaveTransactions inserts transactions, skipping duplicates by hash.
// Source transactions are immutable, so existing rows are never updated.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, txns []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range txns {
		if err := validateString(t.ID, "transaction.ID"); err != nil {
			return err
		}
		hash := t.Hash
		if hash == "" {
			hash = t.GenerateHash()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO transactions
				(id, hash, user_id, account_id, date, name, merchant_name, channel,
				 category_primary, category_detailed, amount, pending)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, hash, t.UserID, t.AccountID, t.Date, t.Name, t.MerchantName, t.Channel,
			t.CategoryPrimary, t.CategoryDetailed, t.Amount, t.Pending); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// GetTransactions returns a user's transactions within [from, to],
// ordered by date then ID for deterministic downstream computation.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("invalid date range: %v is before %v", to, from)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hash, user_id, account_id, date, name, merchant_name, channel,
			category_primary, category_detailed, amount, pending
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date, id`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for %s: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.Hash, &t.UserID, &t.AccountID, &t.Date, &t.Name, &t.MerchantName,
			&t.Channel, &t.CategoryPrimary, &t.CategoryDetailed, &t.Amount, &t.Pending); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// GetTransactionCount returns a user's total transaction history size.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context, userID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions for %s: %w", userID, err)
	}
	return count, nil
}
