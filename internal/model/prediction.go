// Package model defines the core domain models used throughout the application.
package model

import (
	"math"
	"time"
)

// RiskLevel labels the outcome of a PCOS risk prediction.
type RiskLevel string

// Risk level constants.
const (
	RiskHigh RiskLevel = "High"
	RiskLow  RiskLevel = "Low"
)

// PredictionInput is the raw feature payload submitted for a prediction.
// Symptom flags are 0/1 integers; the remaining fields are measurements.
type PredictionInput struct {
	Age              float64 `json:"age"`
	BMI              float64 `json:"bmi"`
	AMH              float64 `json:"amh"`
	FSHLH            float64 `json:"fshLh"`
	IrregularPeriods int     `json:"irregularPeriods"`
	Acne             int     `json:"acne"`
	HairLoss         int     `json:"hairLoss"`
	WeightGain       int     `json:"weightGain"`
	Darkening        int     `json:"darkening"`
}

// PredictionRecord is a persisted prediction: the inputs used, the outcome,
// and when it happened. Records are append-only and never mutated.
type PredictionRecord struct {
	CreatedAt  time.Time
	PCOSRisk   RiskLevel
	ID         int64
	UserID     int64
	Input      PredictionInput
	Confidence float64
}

// Testosterone derives a secondary hormone estimate from the stored AMH
// value. It is presentation-only and recomputed on every read.
func (r *PredictionRecord) Testosterone() float64 {
	return math.Round(r.Input.AMH*12.5*100) / 100
}

// CycleDays derives an expected cycle length from the risk label.
func (r *PredictionRecord) CycleDays() int {
	if r.PCOSRisk == RiskHigh {
		return 32
	}
	return 28
}

// Progress derives a wellness progress heuristic from the risk label.
func (r *PredictionRecord) Progress() int {
	if r.PCOSRisk == RiskHigh {
		return 65
	}
	return 85
}
