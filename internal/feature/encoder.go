package feature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vaishrk/pcos-care/internal/common"
)

// Encoder maps raw records into fixed-order numeric vectors matching a
// schema. It is stateless beyond the schema and safe for concurrent use.
type Encoder struct {
	schema Schema
}

// NewEncoder creates an encoder for the given schema.
func NewEncoder(schema Schema) *Encoder {
	return &Encoder{schema: schema}
}

// Schema returns the schema the encoder was built with.
func (e *Encoder) Schema() Schema {
	return e.schema
}

// Encode converts a raw record into a vector of length Schema().Len() in
// schema order, applying the lossy defaults used at training time:
// unrecognized or missing Y/N values become 0, and missing or unparseable
// numeric values take the column's stored median. It fails only when a
// numeric value is absent and the column has no imputation constant yet.
func (e *Encoder) Encode(raw map[string]string) ([]float64, error) {
	vec := make([]float64, len(e.schema.Columns))
	for i, col := range e.schema.Columns {
		val, ok := lookup(raw, col)
		switch col.Kind {
		case KindYesNo:
			if !ok {
				vec[i] = 0
				continue
			}
			vec[i] = parseYesNo(val)
		case KindNumeric:
			f, err := parseNumeric(val)
			if ok && err == nil {
				vec[i] = f
				continue
			}
			if col.Median == nil {
				return nil, fmt.Errorf("%w: no value or default for %q", common.ErrSchemaMismatch, col.Name)
			}
			vec[i] = *col.Median
		default:
			return nil, fmt.Errorf("%w: unknown column kind %q", common.ErrSchemaMismatch, col.Kind)
		}
	}
	return vec, nil
}

// EncodeStrict converts a raw record requiring every schema field to be
// present and coercible. It is used on the request path, where a silently
// imputed value would hide a malformed payload. The returned error names
// the offending field.
func (e *Encoder) EncodeStrict(raw map[string]string) ([]float64, error) {
	vec := make([]float64, len(e.schema.Columns))
	for i, col := range e.schema.Columns {
		val, ok := lookup(raw, col)
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", common.ErrInvalidInput, col.Name)
		}
		switch col.Kind {
		case KindYesNo:
			f, err := parseYesNoStrict(val)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q: %v", common.ErrInvalidInput, col.Name, err)
			}
			vec[i] = f
		case KindNumeric:
			f, err := parseNumeric(val)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q: %v", common.ErrInvalidInput, col.Name, err)
			}
			vec[i] = f
		default:
			return nil, fmt.Errorf("%w: unknown column kind %q", common.ErrSchemaMismatch, col.Kind)
		}
	}
	return vec, nil
}

// lookup finds a column's raw value by request name first, then by the raw
// dataset header, so the same encoder serves both CSV rows and JSON bodies.
func lookup(raw map[string]string, col Column) (string, bool) {
	if v, ok := raw[col.Name]; ok {
		return v, true
	}
	v, ok := raw[col.Header]
	return v, ok
}

func parseYesNo(val string) float64 {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "y", "yes":
		return 1
	case "n", "no":
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || f == 0 {
		return 0
	}
	return 1
}

// parseYesNoStrict accepts only Y/N spellings and the numeric flags 0 and 1.
func parseYesNoStrict(val string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "y", "yes":
		return 1, nil
	case "n", "no":
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || (f != 0 && f != 1) {
		return 0, fmt.Errorf("cannot parse %q as a yes/no flag", val)
	}
	return f, nil
}

func parseNumeric(val string) (float64, error) {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return 0, fmt.Errorf("empty value")
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as number", val)
	}
	return f, nil
}
