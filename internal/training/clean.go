package training

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/vaishrk/pcos-care/internal/feature"
)

// clean turns raw dataset rows into a numeric matrix and label vector.
// Rows whose label cannot be coerced to {0,1} are dropped. Per-column
// medians are computed over the parseable numeric values and stored into
// the returned schema, so inference imputes with the same constants.
func clean(rows []map[string]string, schema feature.Schema) ([][]float64, []int, feature.Schema, error) {
	kept := make([]map[string]string, 0, len(rows))
	labels := make([]int, 0, len(rows))
	for _, row := range rows {
		label, ok := parseLabel(row[feature.LabelHeader])
		if !ok {
			continue
		}
		kept = append(kept, row)
		labels = append(labels, label)
	}
	if len(kept) == 0 {
		return nil, nil, schema, fmt.Errorf("no rows with a usable %q label", feature.LabelHeader)
	}

	fitted := schema
	fitted.Columns = make([]feature.Column, len(schema.Columns))
	copy(fitted.Columns, schema.Columns)

	for i, col := range fitted.Columns {
		if col.Kind != feature.KindNumeric {
			continue
		}
		values := make([]float64, 0, len(kept))
		for _, row := range kept {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[col.Header]), 64); err == nil {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil, nil, schema, fmt.Errorf("column %q has no parseable numeric values", col.Header)
		}
		sort.Float64s(values)
		median := stat.Quantile(0.5, stat.LinInterp, values, nil)
		fitted.Columns[i].Median = &median
	}

	enc := feature.NewEncoder(fitted)
	x := make([][]float64, 0, len(kept))
	for i, row := range kept {
		vec, err := enc.Encode(row)
		if err != nil {
			return nil, nil, schema, fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		x = append(x, vec)
	}

	return x, labels, fitted, nil
}

// parseLabel coerces a raw label value to a binary class. Y/N and numeric
// encodings are accepted; anything else drops the row.
func parseLabel(raw string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "y", "yes", "1", "1.0":
		return 1, true
	case "n", "no", "0", "0.0":
		return 0, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	switch f {
	case 0:
		return 0, true
	case 1:
		return 1, true
	}
	return 0, false
}
