// Package service defines the boundary contracts between the inference
// core and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/mdliss/finsight/internal/model"
)

// Storage is the persistence collaborator for pipeline inputs and outputs.
// The core only requires read access to user data; signals, personas, and
// recommendations are write-mostly pipeline outputs.
type Storage interface {
	Migrate(ctx context.Context) error
	Close() error

	// User data (pipeline input, read side).
	SaveUserProfile(ctx context.Context, profile *model.UserProfile) error
	GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	ListUserIDs(ctx context.Context) ([]string, error)

	SaveAccounts(ctx context.Context, accounts []model.Account) error
	GetAccounts(ctx context.Context, userID string) ([]model.Account, error)
	SaveLiabilities(ctx context.Context, liabilities []model.Liability) error
	GetLiabilities(ctx context.Context, userID string) ([]model.Liability, error)
	SaveTransactions(ctx context.Context, txns []model.Transaction) error
	GetTransactions(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error)
	GetTransactionCount(ctx context.Context, userID string) (int, error)

	// Pipeline outputs. Replace semantics: a new run supersedes prior rows
	// for the same (user, window) key.
	ReplaceSignals(ctx context.Context, userID string, windowDays int, signals []model.Signal) error
	GetSignals(ctx context.Context, userID string, windowDays int) ([]model.Signal, error)
	ReplacePersonaAssignments(ctx context.Context, userID string, windowDays int, assignments []model.PersonaAssignment) error
	GetPersonaAssignments(ctx context.Context, userID string, windowDays int) ([]model.PersonaAssignment, error)
	SaveRecommendations(ctx context.Context, recs []model.Recommendation) error
	GetRecommendation(ctx context.Context, id string) (*model.Recommendation, error)
	GetRecommendationsByUser(ctx context.Context, userID string) ([]model.Recommendation, error)
}
