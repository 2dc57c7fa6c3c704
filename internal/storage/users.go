package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mdliss/finsight/internal/common"
	"github.com/mdliss/finsight/internal/model"
)

// SaveUserProfile inserts or updates a user profile.
func (s *SQLiteStorage) SaveUserProfile(ctx context.Context, profile *model.UserProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilValue)
	}
	if err := validateString(profile.ID, "profile.ID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, birth_date, consent_granted)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			birth_date = excluded.birth_date,
			consent_granted = excluded.consent_granted`,
		profile.ID, profile.Name, profile.BirthDate, profile.ConsentGranted)
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", profile.ID, err)
	}
	return nil
}

// GetUserProfile loads one user profile.
func (s *SQLiteStorage) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var profile model.UserProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, birth_date, consent_granted, created_at
		FROM users WHERE id = ?`, userID).
		Scan(&profile.ID, &profile.Name, &profile.BirthDate, &profile.ConsentGranted, &profile.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return &profile, nil
}

// ListUserIDs returns all user IDs in deterministic order.
func (s *SQLiteStorage) ListUserIDs(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
