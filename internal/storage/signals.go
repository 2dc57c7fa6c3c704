package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mdliss/finsight/internal/model"
)

// ReplaceSignals replaces the stored signal set for a (user, window) pair
// in one transaction. Recomputation supersedes, never merges.
func (s *SQLiteStorage) ReplaceSignals(ctx context.Context, userID string, windowDays int, signals []model.Signal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateWindowDays(windowDays); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM signals WHERE user_id = ? AND window_days = ?`, userID, windowDays); err != nil {
		return fmt.Errorf("failed to clear signals for %s/%d: %w", userID, windowDays, err)
	}

	for _, sig := range signals {
		details, err := json.Marshal(sig.Details)
		if err != nil {
			return fmt.Errorf("failed to encode details for %s: %w", sig.Type, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO signals (user_id, window_days, signal_type, value, details, computed_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sig.UserID, sig.WindowDays, sig.Type, sig.Value, string(details), sig.ComputedAt); err != nil {
			return fmt.Errorf("failed to save signal %s: %w", sig.Type, err)
		}
	}
	return tx.Commit()
}

// GetSignals returns the stored signal set for a (user, window) pair,
// ordered by type.
func (s *SQLiteStorage) GetSignals(ctx context.Context, userID string, windowDays int) ([]model.Signal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, window_days, signal_type, value, details, computed_at
		FROM signals WHERE user_id = ? AND window_days = ?
		ORDER BY signal_type`, userID, windowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load signals for %s/%d: %w", userID, windowDays, err)
	}
	defer func() { _ = rows.Close() }()

	var signals []model.Signal
	for rows.Next() {
		var sig model.Signal
		var details string
		if err := rows.Scan(&sig.UserID, &sig.WindowDays, &sig.Type, &sig.Value, &details, &sig.ComputedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		if err := json.Unmarshal([]byte(details), &sig.Details); err != nil {
			return nil, fmt.Errorf("failed to decode details for %s: %w", sig.Type, err)
		}
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}

// ReplacePersonaAssignments supersedes the stored assignments for a
// (user, window) pair with the given match set.
func (s *SQLiteStorage) ReplacePersonaAssignments(ctx context.Context, userID string, windowDays int, assignments []model.PersonaAssignment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateWindowDays(windowDays); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM persona_assignments WHERE user_id = ? AND window_days = ?`, userID, windowDays); err != nil {
		return fmt.Errorf("failed to clear personas for %s/%d: %w", userID, windowDays, err)
	}

	for _, a := range assignments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO persona_assignments
				(user_id, window_days, persona_type, priority_rank, criteria_met, is_primary, assigned_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.UserID, a.WindowDays, a.Type, a.PriorityRank, a.CriteriaMet, a.Primary, a.AssignedAt); err != nil {
			return fmt.Errorf("failed to save persona %s: %w", a.Type, err)
		}
	}
	return tx.Commit()
}

// GetPersonaAssignments returns the stored assignments for a
// (user, window) pair, ordered by priority rank.
func (s *SQLiteStorage) GetPersonaAssignments(ctx context.Context, userID string, windowDays int) ([]model.PersonaAssignment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, window_days, persona_type, priority_rank, criteria_met, is_primary, assigned_at
		FROM persona_assignments WHERE user_id = ? AND window_days = ?
		ORDER BY priority_rank`, userID, windowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load personas for %s/%d: %w", userID, windowDays, err)
	}
	defer func() { _ = rows.Close() }()

	var assignments []model.PersonaAssignment
	for rows.Next() {
		var a model.PersonaAssignment
		if err := rows.Scan(&a.UserID, &a.WindowDays, &a.Type, &a.PriorityRank,
			&a.CriteriaMet, &a.Primary, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan persona: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
