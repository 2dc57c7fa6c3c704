package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mdliss/finsight/internal/common"
	"github.com/mdliss/finsight/internal/model"
)

// SaveRecommendations upserts a batch of recommendations. The signal and
// persona snapshots are frozen at creation so later runs can't change
// what a trace reconstructs.
func (s *SQLiteStorage) SaveRecommendations(ctx context.Context, recs []model.Recommendation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range recs {
		if err := validateString(r.ID, "recommendation.ID"); err != nil {
			return err
		}
		snapshot, err := json.Marshal(r.SignalSnapshot)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot for %s: %w", r.ID, err)
		}
		personas, err := json.Marshal(r.PersonaSnapshot)
		if err != nil {
			return fmt.Errorf("failed to encode persona snapshot for %s: %w", r.ID, err)
		}
		reasons, err := json.Marshal(r.ReviewReasons)
		if err != nil {
			return fmt.Errorf("failed to encode review reasons for %s: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recommendations
				(id, user_id, persona_type, content_type, template_id, window_days, title,
				 rationale, disclaimer, eligibility_met, status, review_reasons,
				 operator_notes, signal_snapshot, persona_snapshot, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				rationale = excluded.rationale,
				eligibility_met = excluded.eligibility_met,
				status = excluded.status,
				review_reasons = excluded.review_reasons,
				signal_snapshot = excluded.signal_snapshot,
				persona_snapshot = excluded.persona_snapshot`,
			r.ID, r.UserID, r.Persona, r.ContentType, r.TemplateID, r.WindowDays, r.Title,
			r.Rationale, r.Disclaimer, r.EligibilityMet, r.Status, string(reasons),
			r.OperatorNotes, string(snapshot), string(personas), r.CreatedAt); err != nil {
			return fmt.Errorf("failed to save recommendation %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// GetRecommendation loads one recommendation with its frozen snapshots.
func (s *SQLiteStorage) GetRecommendation(ctx context.Context, id string) (*model.Recommendation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, persona_type, content_type, template_id, window_days, title,
			rationale, disclaimer, eligibility_met, status, review_reasons,
			operator_notes, signal_snapshot, persona_snapshot, created_at
		FROM recommendations WHERE id = ?`, id)

	rec, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recommendation %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendation %s: %w", id, err)
	}
	return rec, nil
}

// GetRecommendationsByUser returns a user's recommendations ordered by
// creation time then ID.
func (s *SQLiteStorage) GetRecommendationsByUser(ctx context.Context, userID string) ([]model.Recommendation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, persona_type, content_type, template_id, window_days, title,
			rationale, disclaimer, eligibility_met, status, review_reasons,
			operator_notes, signal_snapshot, persona_snapshot, created_at
		FROM recommendations WHERE user_id = ?
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations for %s: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	var recs []model.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecommendation(row rowScanner) (*model.Recommendation, error) {
	var rec model.Recommendation
	var reasons, snapshot, personas string
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Persona, &rec.ContentType, &rec.TemplateID,
		&rec.WindowDays, &rec.Title, &rec.Rationale, &rec.Disclaimer, &rec.EligibilityMet,
		&rec.Status, &reasons, &rec.OperatorNotes, &snapshot, &personas, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if reasons != "" {
		if err := json.Unmarshal([]byte(reasons), &rec.ReviewReasons); err != nil {
			return nil, fmt.Errorf("failed to decode review reasons: %w", err)
		}
	}
	if snapshot != "" {
		if err := json.Unmarshal([]byte(snapshot), &rec.SignalSnapshot); err != nil {
			return nil, fmt.Errorf("failed to decode signal snapshot: %w", err)
		}
	}
	if personas != "" {
		if err := json.Unmarshal([]byte(personas), &rec.PersonaSnapshot); err != nil {
			return nil, fmt.Errorf("failed to decode persona snapshot: %w", err)
		}
	}
	return &rec, nil
}
