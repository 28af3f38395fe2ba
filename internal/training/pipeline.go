package training

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vaishrk/pcos-care/internal/artifact"
	"github.com/vaishrk/pcos-care/internal/feature"
	"github.com/vaishrk/pcos-care/internal/ml"
)

// Options configure a pipeline run.
type Options struct {
	OnTuneProgress func(total int) func()
	DatasetPath    string
	ModelPath      string
	SchemaPath     string
	Grid           Grid
	Params         ml.Params
	TestSize       float64
	CVFolds        int
	Workers        int
	Tune           bool
}

// DefaultOptions returns the standard pipeline configuration: 80/20 split,
// seed 42, 3-fold cross-validation when tuning.
func DefaultOptions(datasetPath, modelPath, schemaPath string) Options {
	return Options{
		DatasetPath: datasetPath,
		ModelPath:   modelPath,
		SchemaPath:  schemaPath,
		TestSize:    0.2,
		Params:      ml.DefaultParams(),
		Grid:        DefaultGrid(),
		CVFolds:     3,
		Workers:     1,
	}
}

// Result summarizes a completed pipeline run.
type Result struct {
	TunedParams *ml.Params
	BundleID    string
	Report      Report
	Rows        int
	TrainRows   int
	TestRows    int
	Accuracy    float64
}

// Run executes the pipeline: load, clean, split, fit, optional grid
// search, evaluate, serialize. Any failure before serialization aborts the
// run with no artifact written. A grid search that produces no valid
// candidate falls back to the base fit and logs the fallback.
func Run(ctx context.Context, opts Options) (*Result, error) {
	rows, err := loadCSV(opts.DatasetPath)
	if err != nil {
		return nil, err
	}
	slog.Info("dataset loaded", "path", opts.DatasetPath, "rows", len(rows))

	x, y, fitted, err := clean(rows, feature.DefaultPCOS())
	if err != nil {
		return nil, fmt.Errorf("failed to clean dataset: %w", err)
	}
	slog.Info("dataset cleaned", "rows", len(x), "dropped", len(rows)-len(x))

	xTrain, xTest, yTrain, yTest, err := split(x, y, opts.TestSize, opts.Params.Seed)
	if err != nil {
		return nil, err
	}
	slog.Info("dataset split", "train", len(xTrain), "test", len(xTest), "seed", opts.Params.Seed)

	forest, err := ml.Train(xTrain, yTrain, opts.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to fit base model: %w", err)
	}

	result := &Result{Rows: len(x), TrainRows: len(xTrain), TestRows: len(xTest)}

	if opts.Tune {
		var onCandidate func()
		if opts.OnTuneProgress != nil {
			onCandidate = opts.OnTuneProgress(len(opts.Grid.candidates(opts.Params)))
		}
		search, searchErr := gridSearch(ctx, xTrain, yTrain, opts.Grid, opts.Params, opts.CVFolds, opts.Workers, onCandidate)
		switch {
		case searchErr != nil && ctx.Err() != nil:
			return nil, searchErr
		case searchErr != nil:
			slog.Warn("grid search produced no usable candidate, keeping base fit", "error", searchErr)
		default:
			tuned, fitErr := ml.Train(xTrain, yTrain, search.best)
			if fitErr != nil {
				return nil, fmt.Errorf("failed to fit tuned model: %w", fitErr)
			}
			forest = tuned
			best := search.best
			result.TunedParams = &best
			slog.Info("grid search complete",
				"candidates", search.evaluated,
				"cv_accuracy", search.bestScore,
				"num_trees", best.NumTrees,
				"max_depth", best.MaxDepth,
				"min_samples_split", best.MinSamplesSplit)
		}
	}

	report, err := evaluate(forest, xTest, yTest)
	if err != nil {
		slog.Warn("evaluation failed, continuing without a report", "error", err)
	} else {
		result.Report = report
		result.Accuracy = report.Accuracy
		slog.Info("model evaluated", "accuracy", report.Accuracy, "test_rows", report.Total)
	}

	bundleID, err := artifact.Write(opts.ModelPath, opts.SchemaPath, forest, fitted, result.Accuracy)
	if err != nil {
		return nil, err
	}
	result.BundleID = bundleID
	slog.Info("model bundle published", "bundle_id", bundleID, "model", opts.ModelPath, "schema", opts.SchemaPath)

	return result, nil
}
