package feature

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaishrk/pcos-care/internal/common"
)

func fittedSchema() Schema {
	s := DefaultPCOS()
	medians := map[string]float64{
		"age":   31,
		"bmi":   24.3,
		"amh":   2.1,
		"fshLh": 1.4,
	}
	for i, c := range s.Columns {
		if m, ok := medians[c.Name]; ok {
			v := m
			s.Columns[i].Median = &v
		}
	}
	return s
}

func TestEncodeOrderAndMapping(t *testing.T) {
	enc := NewEncoder(fittedSchema())

	raw := map[string]string{
		"age":              "28",
		"bmi":              "24.5",
		"amh":              "3.1",
		"fshLh":            "1.2",
		"irregularPeriods": "Y",
		"acne":             "N",
		"hairLoss":         "1",
		"weightGain":       "yes",
		"darkening":        "0",
	}

	vec, err := enc.Encode(raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{28, 24.5, 3.1, 1.2, 1, 0, 1, 1, 0}, vec)
}

func TestEncodeIsIdempotent(t *testing.T) {
	enc := NewEncoder(fittedSchema())
	raw := map[string]string{
		"age": "30", "bmi": "22", "amh": "1.9", "fshLh": "0.8",
		"irregularPeriods": "N", "acne": "Y", "hairLoss": "N",
		"weightGain": "N", "darkening": "Y",
	}

	first, err := enc.Encode(raw)
	require.NoError(t, err)
	second, err := enc.Encode(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncodeAcceptsRawDatasetHeaders(t *testing.T) {
	enc := NewEncoder(fittedSchema())
	raw := map[string]string{
		"Age (yrs)":              "25",
		"BMI":                    "21.0",
		"AMH(ng/mL)":             "4.2",
		"FSH/LH":                 "1.1",
		"Irregular Periods(Y/N)": "Y",
		"Pimples(Y/N)":           "Y",
		"Hair loss(Y/N)":         "N",
		"Weight gain(Y/N)":       "Y",
		"Skin darkening (Y/N)":   "N",
	}

	vec, err := enc.Encode(raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 21, 4.2, 1.1, 1, 1, 0, 1, 0}, vec)
}

func TestEncodeImputesMissingNumerics(t *testing.T) {
	enc := NewEncoder(fittedSchema())
	raw := map[string]string{
		"age": "28", "amh": "not-a-number", "fshLh": "1.2",
		"irregularPeriods": "Y", "acne": "N", "hairLoss": "N",
		"weightGain": "N", "darkening": "N",
	}

	vec, err := enc.Encode(raw)
	require.NoError(t, err)
	assert.InDelta(t, 24.3, vec[1], 1e-9, "missing bmi takes the stored median")
	assert.InDelta(t, 2.1, vec[2], 1e-9, "unparseable amh takes the stored median")
}

func TestEncodeUnrecognizedYesNoDefaultsToZero(t *testing.T) {
	enc := NewEncoder(fittedSchema())
	raw := map[string]string{
		"age": "28", "bmi": "24", "amh": "2", "fshLh": "1",
		"irregularPeriods": "maybe", "acne": "Y", "hairLoss": "Y",
		"weightGain": "Y", "darkening": "Y",
	}

	vec, err := enc.Encode(raw)
	require.NoError(t, err)
	assert.Equal(t, 0.0, vec[4])
}

func TestEncodeFailsWithoutDefault(t *testing.T) {
	enc := NewEncoder(DefaultPCOS()) // no medians fitted yet
	raw := map[string]string{
		"bmi": "24", "amh": "2", "fshLh": "1",
		"irregularPeriods": "Y", "acne": "Y", "hairLoss": "Y",
		"weightGain": "Y", "darkening": "Y",
	}

	_, err := enc.Encode(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrSchemaMismatch))
	assert.Contains(t, err.Error(), "age")
}

func TestEncodeStrict(t *testing.T) {
	enc := NewEncoder(fittedSchema())

	tests := []struct {
		raw       map[string]string
		name      string
		wantField string
		wantErr   bool
	}{
		{
			name: "valid payload",
			raw: map[string]string{
				"age": "28", "bmi": "24.5", "amh": "3.1", "fshLh": "1.2",
				"irregularPeriods": "1", "acne": "0", "hairLoss": "1",
				"weightGain": "1", "darkening": "0",
			},
		},
		{
			name: "missing field",
			raw: map[string]string{
				"age": "28", "bmi": "24.5", "amh": "3.1",
				"irregularPeriods": "1", "acne": "0", "hairLoss": "1",
				"weightGain": "1", "darkening": "0",
			},
			wantErr:   true,
			wantField: "fshLh",
		},
		{
			name: "non-numeric measurement",
			raw: map[string]string{
				"age": "twenty", "bmi": "24.5", "amh": "3.1", "fshLh": "1.2",
				"irregularPeriods": "1", "acne": "0", "hairLoss": "1",
				"weightGain": "1", "darkening": "0",
			},
			wantErr:   true,
			wantField: "age",
		},
		{
			name: "yes/no spellings accepted",
			raw: map[string]string{
				"age": "28", "bmi": "24.5", "amh": "3.1", "fshLh": "1.2",
				"irregularPeriods": "Y", "acne": "no", "hairLoss": "yes",
				"weightGain": "N", "darkening": "0",
			},
		},
		{
			name: "malformed symptom flag",
			raw: map[string]string{
				"age": "28", "bmi": "24.5", "amh": "3.1", "fshLh": "1.2",
				"irregularPeriods": "garbage", "acne": "0", "hairLoss": "1",
				"weightGain": "1", "darkening": "0",
			},
			wantErr:   true,
			wantField: "irregularPeriods",
		},
		{
			name: "numeric flag outside 0/1",
			raw: map[string]string{
				"age": "28", "bmi": "24.5", "amh": "3.1", "fshLh": "1.2",
				"irregularPeriods": "2", "acne": "0", "hairLoss": "1",
				"weightGain": "1", "darkening": "0",
			},
			wantErr:   true,
			wantField: "irregularPeriods",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec, err := enc.EncodeStrict(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrInvalidInput))
				assert.Contains(t, err.Error(), tt.wantField)
				return
			}
			require.NoError(t, err)
			assert.Len(t, vec, enc.Schema().Len())
		})
	}
}

func TestFingerprintIgnoresMedians(t *testing.T) {
	assert.Equal(t, DefaultPCOS().Fingerprint(), fittedSchema().Fingerprint())
	assert.NotEmpty(t, DefaultPCOS().Fingerprint())
}
