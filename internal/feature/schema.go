// Package feature defines the feature schema shared by training and
// inference, and the encoder that turns raw records into model vectors.
package feature

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Kind describes how a raw column value is interpreted.
type Kind string

// Column kinds.
const (
	KindNumeric Kind = "numeric"
	KindYesNo   Kind = "yesno"
)

// Column is a single feature in the schema. Name is the request/JSON key,
// Header is the raw dataset column it is read from, and Median holds the
// training-time imputation constant for numeric columns (nil until fitted).
type Column struct {
	Median *float64 `json:"median,omitempty"`
	Name   string   `json:"name"`
	Header string   `json:"header"`
	Kind   Kind     `json:"kind"`
}

// Schema is an ordered list of feature columns. The order is fixed at
// training time and must be identical at inference time.
type Schema struct {
	Columns []Column `json:"columns"`
}

// DefaultPCOS returns the feature schema the PCOS classifier is trained on.
// Order matters: it defines the model's input vector layout.
func DefaultPCOS() Schema {
	return Schema{Columns: []Column{
		{Name: "age", Header: "Age (yrs)", Kind: KindNumeric},
		{Name: "bmi", Header: "BMI", Kind: KindNumeric},
		{Name: "amh", Header: "AMH(ng/mL)", Kind: KindNumeric},
		{Name: "fshLh", Header: "FSH/LH", Kind: KindNumeric},
		{Name: "irregularPeriods", Header: "Irregular Periods(Y/N)", Kind: KindYesNo},
		{Name: "acne", Header: "Pimples(Y/N)", Kind: KindYesNo},
		{Name: "hairLoss", Header: "Hair loss(Y/N)", Kind: KindYesNo},
		{Name: "weightGain", Header: "Weight gain(Y/N)", Kind: KindYesNo},
		{Name: "darkening", Header: "Skin darkening (Y/N)", Kind: KindYesNo},
	}}
}

// LabelHeader is the raw dataset column holding the binary training label.
const LabelHeader = "PCOS (Y/N)"

// Len returns the number of features.
func (s Schema) Len() int {
	return len(s.Columns)
}

// Names returns the feature names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Fingerprint identifies the schema's shape: ordered names and kinds, not
// the imputation constants. A model artifact records the fingerprint of the
// schema it was trained with so the pair cannot drift apart unnoticed.
func (s Schema) Fingerprint() string {
	var b strings.Builder
	for _, c := range s.Columns {
		b.WriteString(c.Name)
		b.WriteByte(':')
		b.WriteString(string(c.Kind))
		b.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
