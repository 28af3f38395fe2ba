package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vaishrk/pcos-care/internal/common"
	"github.com/vaishrk/pcos-care/internal/model"
)

// SavePrediction appends a prediction record. Records are append-only:
// there is no update or delete path.
func (s *SQLiteStorage) SavePrediction(ctx context.Context, record *model.PredictionRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePrediction(record); err != nil {
		return err
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO user_predictions (
			user_id, age, bmi, amh, fsh_lh,
			irregular_periods, acne, hair_loss, weight_gain, darkening,
			pcos_risk, confidence, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.UserID,
		record.Input.Age,
		record.Input.BMI,
		record.Input.AMH,
		record.Input.FSHLH,
		record.Input.IrregularPeriods,
		record.Input.Acne,
		record.Input.HairLoss,
		record.Input.WeightGain,
		record.Input.Darkening,
		string(record.PCOSRisk),
		record.Confidence,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		record.ID = id
	}

	slog.Debug("saved prediction", "user_id", record.UserID, "risk", record.PCOSRisk)
	return nil
}

// LatestPredictionByUser returns the most recent prediction for a user,
// ordered by creation time descending, or ErrNotFound when none exists.
func (s *SQLiteStorage) LatestPredictionByUser(ctx context.Context, userID int64) (*model.PredictionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	var record model.PredictionRecord
	var risk string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, age, bmi, amh, fsh_lh,
		       irregular_periods, acne, hair_loss, weight_gain, darkening,
		       pcos_risk, confidence, created_at
		FROM user_predictions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, userID).Scan(
		&record.ID,
		&record.UserID,
		&record.Input.Age,
		&record.Input.BMI,
		&record.Input.AMH,
		&record.Input.FSHLH,
		&record.Input.IrregularPeriods,
		&record.Input.Acne,
		&record.Input.HairLoss,
		&record.Input.WeightGain,
		&record.Input.Darkening,
		&risk,
		&record.Confidence,
		&record.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no predictions for user %d", common.ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest prediction: %w", err)
	}

	record.PCOSRisk = model.RiskLevel(risk)
	return &record, nil
}
