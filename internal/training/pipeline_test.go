package training

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaishrk/pcos-care/internal/artifact"
	"github.com/vaishrk/pcos-care/internal/common"
	"github.com/vaishrk/pcos-care/internal/feature"
	"github.com/vaishrk/pcos-care/internal/ml"
)

// writeDataset produces a small separable PCOS-style CSV: positive rows
// carry high AMH/BMI and all symptom flags.
func writeDataset(t *testing.T, rows int) string {
	t.Helper()
	var b strings.Builder
	// Headers deliberately carry the stray whitespace found in the raw
	// export; cleaning must cope with it.
	b.WriteString(" Age (yrs),BMI,AMH(ng/mL),FSH/LH,Irregular Periods(Y/N),Pimples(Y/N),Hair loss(Y/N),Weight gain(Y/N),Skin darkening (Y/N),PCOS (Y/N)\n")
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < rows; i++ {
		if i%2 == 0 {
			fmt.Fprintf(&b, "%.1f,%.1f,%.2f,%.2f,N,N,N,N,N,N\n",
				20+rng.Float64()*5, 19+rng.Float64()*3, 0.5+rng.Float64(), 0.5+rng.Float64()*0.5)
		} else {
			fmt.Fprintf(&b, "%.1f,%.1f,%.2f,%.2f,Y,Y,Y,Y,Y,Y\n",
				28+rng.Float64()*8, 28+rng.Float64()*6, 4+rng.Float64()*3, 1.8+rng.Float64())
		}
	}
	path := filepath.Join(t.TempDir(), "pcos_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0600))
	return path
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := loadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDatasetNotFound))
}

func TestCleanDropsBadLabelsAndStoresMedians(t *testing.T) {
	csv := "Age (yrs),BMI,AMH(ng/mL),FSH/LH,Irregular Periods(Y/N),Pimples(Y/N),Hair loss(Y/N),Weight gain(Y/N),Skin darkening (Y/N),PCOS (Y/N)\n" +
		"20,19,1,0.5,N,N,N,N,N,N\n" +
		"30,,3,1.5,Y,Y,Y,Y,Y,Y\n" + // missing BMI, imputed
		"40,29,5,2.5,Y,Y,Y,Y,Y,maybe\n" + // unusable label, dropped
		"25,24,2,1.0,N,Y,N,N,N,0\n"
	path := filepath.Join(t.TempDir(), "d.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0600))

	rows, err := loadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	x, y, fitted, err := clean(rows, feature.DefaultPCOS())
	require.NoError(t, err)
	assert.Len(t, x, 3, "row with unusable label is dropped")
	assert.Equal(t, []int{0, 1, 0}, y)

	// BMI median over {19, 24} (parseable values) = 21.5; the missing
	// value in row 2 takes it.
	assert.InDelta(t, 21.5, x[1][1], 1e-9)
	require.NotNil(t, fitted.Columns[1].Median)
	assert.InDelta(t, 21.5, *fitted.Columns[1].Median, 1e-9)
}

func TestSplitDeterminism(t *testing.T) {
	x := make([][]float64, 50)
	y := make([]int, 50)
	for i := range x {
		x[i] = []float64{float64(i)}
		y[i] = i % 2
	}

	xTrainA, xTestA, _, _, err := split(x, y, 0.2, 42)
	require.NoError(t, err)
	xTrainB, xTestB, _, _, err := split(x, y, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, xTrainA, xTrainB, "same seed must give the same split")
	assert.Equal(t, xTestA, xTestB)
	assert.Len(t, xTestA, 10)
	assert.Len(t, xTrainA, 40)

	_, xTestC, _, _, err := split(x, y, 0.2, 7)
	require.NoError(t, err)
	assert.NotEqual(t, xTestA, xTestC, "a different seed should move the partition")
}

func TestSplitRejectsBadRatio(t *testing.T) {
	x := [][]float64{{1}, {2}}
	y := []int{0, 1}
	for _, size := range []float64{0, 1, -0.5, 1.5} {
		_, _, _, _, err := split(x, y, size, 42)
		assert.Error(t, err, "testSize %v", size)
	}
}

func TestGridSearchDeterministicAcrossWorkers(t *testing.T) {
	x, y := syntheticMatrix(60)
	grid := Grid{NumTrees: []int{5, 10}, MaxDepth: []int{2, 3}, MinSamplesSplit: []int{2}}
	base := ml.Params{Seed: 42, MinSamplesLeaf: 1}

	one, err := gridSearch(context.Background(), x, y, grid, base, 3, 1, nil)
	require.NoError(t, err)
	four, err := gridSearch(context.Background(), x, y, grid, base, 3, 4, nil)
	require.NoError(t, err)

	assert.Equal(t, one.best, four.best)
	assert.Equal(t, one.bestScore, four.bestScore)
	assert.Equal(t, 4, one.evaluated)
}

func TestGridSearchTieKeepsFirstCandidate(t *testing.T) {
	// Perfectly separable data scores 1.0 for every candidate, so the
	// declared enumeration order decides.
	x, y := syntheticMatrix(30)
	grid := Grid{NumTrees: []int{5, 50}, MaxDepth: []int{0}, MinSamplesSplit: []int{2}}
	base := ml.Params{Seed: 42, MinSamplesLeaf: 1}

	res, err := gridSearch(context.Background(), x, y, grid, base, 3, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, res.best.NumTrees, "first candidate wins the tie")
}

func TestGridSearchEmptyGrid(t *testing.T) {
	x, y := syntheticMatrix(10)
	_, err := gridSearch(context.Background(), x, y, Grid{}, ml.DefaultParams(), 3, 1, nil)
	assert.Error(t, err)
}

func TestRunEndToEnd(t *testing.T) {
	dataset := writeDataset(t, 60)
	dir := t.TempDir()
	opts := DefaultOptions(dataset, filepath.Join(dir, "model.json"), filepath.Join(dir, "features.json"))
	opts.Params.NumTrees = 20

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.NotEmpty(t, result.BundleID)
	assert.Equal(t, 60, result.Rows)
	assert.Greater(t, result.Accuracy, 0.9, "separable data should score high")

	bundle, err := artifact.Load(opts.ModelPath, opts.SchemaPath)
	require.NoError(t, err)
	assert.Equal(t, result.BundleID, bundle.Model.BundleID)
	for _, col := range bundle.Schema.Columns {
		if col.Kind == "numeric" {
			assert.NotNil(t, col.Median, "medians must be persisted for %s", col.Name)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	dataset := writeDataset(t, 40)
	dirA := t.TempDir()
	dirB := t.TempDir()

	optsA := DefaultOptions(dataset, filepath.Join(dirA, "m.json"), filepath.Join(dirA, "s.json"))
	optsA.Params.NumTrees = 15
	optsB := DefaultOptions(dataset, filepath.Join(dirB, "m.json"), filepath.Join(dirB, "s.json"))
	optsB.Params.NumTrees = 15

	a, err := Run(context.Background(), optsA)
	require.NoError(t, err)
	b, err := Run(context.Background(), optsB)
	require.NoError(t, err)

	assert.Equal(t, a.TrainRows, b.TrainRows)
	assert.Equal(t, a.Accuracy, b.Accuracy, "same dataset and seed must evaluate identically")
}

func TestRunWithTuning(t *testing.T) {
	dataset := writeDataset(t, 40)
	dir := t.TempDir()
	opts := DefaultOptions(dataset, filepath.Join(dir, "m.json"), filepath.Join(dir, "s.json"))
	opts.Tune = true
	opts.Workers = 2
	opts.Grid = Grid{NumTrees: []int{5, 10}, MaxDepth: []int{3}, MinSamplesSplit: []int{2}}

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, result.TunedParams)
	assert.Contains(t, []int{5, 10}, result.TunedParams.NumTrees)
}

func TestRunWritesNothingOnMissingDataset(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(filepath.Join(dir, "absent.csv"), filepath.Join(dir, "m.json"), filepath.Join(dir, "s.json"))

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDatasetNotFound))

	_, statErr := os.Stat(opts.ModelPath)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(opts.SchemaPath)
	assert.True(t, os.IsNotExist(statErr))
}

func syntheticMatrix(n int) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(5))
	x := make([][]float64, 0, n)
	y := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			x = append(x, []float64{rng.Float64(), rng.Float64()})
			y = append(y, 0)
		} else {
			x = append(x, []float64{rng.Float64() + 4, rng.Float64() + 4})
			y = append(y, 1)
		}
	}
	return x, y
}
