// Package model defines the core domain types for the behavioral inference pipeline.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// Transaction is a single immutable bank transaction. Amounts are signed:
// negative values are outflows, positive values are inflows.
type Transaction struct {
	Date             time.Time `json:"date"`
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	AccountID        string    `json:"account_id"`
	Name             string    `json:"name"` // Raw transaction description
	MerchantName     string    `json:"merchant_name,omitempty"` // Cleaned merchant name
	Hash             string    `json:"hash,omitempty"`
	Channel          string    `json:"channel,omitempty"` // Payment channel (e.g., online, in_store, ach)
	CategoryPrimary  string    `json:"category_primary,omitempty"`
	CategoryDetailed string    `json:"category_detailed,omitempty"`
	Amount           float64   `json:"amount"`
	Pending          bool      `json:"pending,omitempty"`
}

// Merchant returns the best available merchant identity for grouping.
func (t *Transaction) Merchant() string {
	if t.MerchantName != "" {
		return t.MerchantName
	}
	return strings.TrimSpace(t.Name)
}

// Outflow reports whether the transaction moves money out of the account.
func (t *Transaction) Outflow() bool {
	return t.Amount < 0
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Merchant(),
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
