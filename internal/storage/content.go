package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vaishrk/pcos-care/internal/model"
)

// ListDietRecommendations returns every diet recommendation.
func (s *SQLiteStorage) ListDietRecommendations(ctx context.Context) ([]model.DietRecommendation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description
		FROM diet_recommendations
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query diet recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var diets []model.DietRecommendation
	for rows.Next() {
		var d model.DietRecommendation
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, fmt.Errorf("failed to scan diet recommendation: %w", err)
		}
		diets = append(diets, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diet recommendations: %w", err)
	}
	return diets, nil
}

// ListWellnessTips returns every wellness tip.
func (s *SQLiteStorage) ListWellnessTips(ctx context.Context) ([]model.WellnessTip, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text
		FROM wellness_tips
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query wellness tips: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tips []model.WellnessTip
	for rows.Next() {
		var t model.WellnessTip
		if err := rows.Scan(&t.ID, &t.Text); err != nil {
			return nil, fmt.Errorf("failed to scan wellness tip: %w", err)
		}
		tips = append(tips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wellness tips: %w", err)
	}
	return tips, nil
}

// ListHealthRecords returns all self-tracked health records, newest first.
func (s *SQLiteStorage) ListHealthRecords(ctx context.Context) ([]model.HealthRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, weight, cycle_length, notes
		FROM health_records
		ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query health records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.HealthRecord
	for rows.Next() {
		var r model.HealthRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.Weight, &r.CycleLength, &r.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan health record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating health records: %w", err)
	}
	return records, nil
}

// SaveHealthRecord appends a self-tracked health entry.
func (s *SQLiteStorage) SaveHealthRecord(ctx context.Context, record *model.HealthRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUserID(record.UserID); err != nil {
		return err
	}
	if err := validateString(record.Date, "date"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO health_records (user_id, date, weight, cycle_length, notes)
		VALUES (?, ?, ?, ?, ?)`,
		record.UserID, record.Date, record.Weight, record.CycleLength, record.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to save health record: %w", err)
	}
	if id, idErr := result.LastInsertId(); idErr == nil {
		record.ID = id
	}
	return nil
}

// Seed inserts the starter diet and wellness content. It is idempotent:
// tables that already have rows are left alone.
func (s *SQLiteStorage) Seed(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var dietCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM diet_recommendations`).Scan(&dietCount); err != nil {
		return fmt.Errorf("failed to count diet recommendations: %w", err)
	}
	if dietCount == 0 {
		for _, d := range seedDiets {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO diet_recommendations (name, description) VALUES (?, ?)`,
				d.Name, d.Description); err != nil {
				return fmt.Errorf("failed to seed diet recommendations: %w", err)
			}
		}
		slog.Info("seeded diet recommendations", "count", len(seedDiets))
	}

	var tipCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wellness_tips`).Scan(&tipCount); err != nil {
		return fmt.Errorf("failed to count wellness tips: %w", err)
	}
	if tipCount == 0 {
		for _, tip := range seedTips {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO wellness_tips (text) VALUES (?)`, tip.Text); err != nil {
				return fmt.Errorf("failed to seed wellness tips: %w", err)
			}
		}
		slog.Info("seeded wellness tips", "count", len(seedTips))
	}

	return nil
}

var seedDiets = []model.DietRecommendation{
	{Name: "Low-GI breakfast", Description: "Oats with nuts and berries to keep insulin steady through the morning."},
	{Name: "Leafy green lunch", Description: "Spinach or kale salads with lentils for iron and slow carbohydrates."},
	{Name: "Lean protein dinner", Description: "Grilled fish or paneer with vegetables; skip refined flour and sugar."},
	{Name: "Spearmint tea", Description: "Two cups a day may help lower androgen levels."},
}

var seedTips = []model.WellnessTip{
	{Text: "Aim for 30 minutes of moderate exercise at least five days a week."},
	{Text: "Keep a consistent sleep schedule; poor sleep worsens insulin resistance."},
	{Text: "Track your cycle regularly so changes are caught early."},
	{Text: "Short daily walks after meals help regulate blood sugar."},
}
