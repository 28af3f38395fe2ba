// Package inference serves predictions from a trained model bundle loaded
// once at startup.
package inference

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vaishrk/pcos-care/internal/artifact"
	"github.com/vaishrk/pcos-care/internal/common"
	"github.com/vaishrk/pcos-care/internal/feature"
	"github.com/vaishrk/pcos-care/internal/ml"
	"github.com/vaishrk/pcos-care/internal/model"
)

// Store is the persistence the service needs: appending prediction records.
type Store interface {
	SavePrediction(ctx context.Context, record *model.PredictionRecord) error
}

// Service answers prediction requests against an immutable loaded model.
// It is constructed once at startup and safe for concurrent use.
type Service struct {
	forest   *ml.Forest
	encoder  *feature.Encoder
	store    Store
	bundleID string
}

// NewService loads the model bundle from disk and fails fast when either
// artifact is missing or the pair is inconsistent. There is no fallback
// model: a health-risk endpoint with no trained model must not start.
func NewService(modelPath, schemaPath string, store Store) (*Service, error) {
	bundle, err := artifact.Load(modelPath, schemaPath)
	if err != nil {
		return nil, err
	}
	return NewServiceFromBundle(bundle, store), nil
}

// NewServiceFromBundle builds a service around an already-loaded bundle.
func NewServiceFromBundle(bundle *artifact.Bundle, store Store) *Service {
	return &Service{
		forest:   bundle.Model.Forest,
		encoder:  feature.NewEncoder(bundle.Schema),
		store:    store,
		bundleID: bundle.Model.BundleID,
	}
}

// BundleID identifies the loaded model bundle.
func (s *Service) BundleID() string {
	return s.bundleID
}

// Prediction is the outcome of a single inference call.
type Prediction struct {
	Risk       model.RiskLevel
	Confidence float64
	Record     *model.PredictionRecord
}

// Predict encodes the raw input strictly, runs the forest, derives the risk
// label and confidence, and persists the resulting record. Input failures
// wrap ErrInvalidInput; persistence failures wrap ErrStorage. The two are
// kept distinct because their remediation differs.
func (s *Service) Predict(ctx context.Context, userID int64, raw map[string]string) (*Prediction, error) {
	vec, err := s.encoder.EncodeStrict(raw)
	if err != nil {
		return nil, err
	}

	p0, p1, err := s.forest.PredictProba(vec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSchemaMismatch, err)
	}

	risk := model.RiskLow
	if p1 > p0 {
		risk = model.RiskHigh
	}
	confidence := round2(math.Max(p0, p1) * 100)

	record := &model.PredictionRecord{
		UserID:     userID,
		Input:      inputFromVector(s.encoder.Schema(), vec),
		PCOSRisk:   risk,
		Confidence: confidence,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.SavePrediction(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: failed to save prediction: %w", common.ErrStorage, err)
	}

	return &Prediction{Risk: risk, Confidence: confidence, Record: record}, nil
}

// DetectSymptoms answers the lightweight symptom-only screen. Missing
// measurements fall back to the training-time medians, so the same loaded
// model serves both endpoints.
func (s *Service) DetectSymptoms(raw map[string]string) (string, error) {
	vec, err := s.encoder.Encode(raw)
	if err != nil {
		return "", err
	}
	pred, err := s.forest.Predict(vec)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrSchemaMismatch, err)
	}
	if pred == 1 {
		return "Positive", nil
	}
	return "Negative", nil
}

// inputFromVector maps an encoded vector back onto the typed input record
// by schema position, so what gets stored is exactly what the model saw.
func inputFromVector(schema feature.Schema, vec []float64) model.PredictionInput {
	var in model.PredictionInput
	for i, col := range schema.Columns {
		switch col.Name {
		case "age":
			in.Age = vec[i]
		case "bmi":
			in.BMI = vec[i]
		case "amh":
			in.AMH = vec[i]
		case "fshLh":
			in.FSHLH = vec[i]
		case "irregularPeriods":
			in.IrregularPeriods = int(vec[i])
		case "acne":
			in.Acne = int(vec[i])
		case "hairLoss":
			in.HairLoss = int(vec[i])
		case "weightGain":
			in.WeightGain = int(vec[i])
		case "darkening":
			in.Darkening = int(vec[i])
		}
	}
	return in
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
