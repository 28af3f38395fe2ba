package training

import (
	"fmt"
	"strings"

	"github.com/vaishrk/pcos-care/internal/ml"
)

// ClassMetrics holds per-class evaluation figures.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a full classification report over the held-out partition.
type Report struct {
	Negative ClassMetrics
	Positive ClassMetrics
	Accuracy float64
	Total    int
}

// evaluate scores a fitted forest on a labeled set.
func evaluate(forest *ml.Forest, x [][]float64, y []int) (Report, error) {
	var report Report
	report.Total = len(y)
	if len(y) == 0 {
		return report, nil
	}

	// Confusion counts: [actual][predicted].
	var counts [2][2]int
	correct := 0
	for i := range x {
		pred, err := forest.Predict(x[i])
		if err != nil {
			return report, fmt.Errorf("failed to score test row %d: %w", i, err)
		}
		counts[y[i]][pred]++
		if pred == y[i] {
			correct++
		}
	}

	report.Accuracy = float64(correct) / float64(len(y))
	report.Negative = classMetrics(counts, 0)
	report.Positive = classMetrics(counts, 1)
	return report, nil
}

func classMetrics(counts [2][2]int, class int) ClassMetrics {
	tp := counts[class][class]
	fp := counts[1-class][class]
	fn := counts[class][1-class]

	m := ClassMetrics{Support: counts[class][0] + counts[class][1]}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// String renders the report in the familiar per-class table layout.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", "0", r.Negative.Precision, r.Negative.Recall, r.Negative.F1, r.Negative.Support)
	fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", "1", r.Positive.Precision, r.Positive.Recall, r.Positive.F1, r.Positive.Support)
	fmt.Fprintf(&b, "%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.Total)
	return b.String()
}
