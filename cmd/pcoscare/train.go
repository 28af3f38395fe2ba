package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vaishrk/pcos-care/internal/config"
	"github.com/vaishrk/pcos-care/internal/training"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model from the labeled dataset",
		Long: `Run the offline training pipeline: load and clean the dataset, fit a
random forest, evaluate it on a held-back split, and publish the model
and schema artifacts as a pair. With --tune a cross-validated grid
search picks the forest hyperparameters first.`,
		RunE: runTrain,
	}

	cmd.Flags().String("dataset", "", "labeled CSV dataset (overrides config)")
	cmd.Flags().String("model", "", "output path for the model artifact")
	cmd.Flags().String("schema", "", "output path for the feature schema artifact")
	cmd.Flags().Int64("seed", 42, "random seed for splitting and fitting")
	cmd.Flags().Float64("test-size", 0.2, "fraction of rows held back for evaluation")
	cmd.Flags().Bool("tune", false, "run a cross-validated hyperparameter grid search")
	cmd.Flags().Int("cv-folds", 3, "folds for cross-validation during tuning")
	cmd.Flags().Int("workers", 1, "parallel workers for the grid search")
	_ = viper.BindPFlag("training.dataset", cmd.Flags().Lookup("dataset"))
	_ = viper.BindPFlag("model.path", cmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("model.schema_path", cmd.Flags().Lookup("schema"))

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	settings := config.LoadSettings()

	opts := training.DefaultOptions(settings.DatasetPath, settings.ModelPath, settings.SchemaPath)
	opts.Params.Seed, _ = cmd.Flags().GetInt64("seed")
	opts.TestSize, _ = cmd.Flags().GetFloat64("test-size")
	opts.Tune, _ = cmd.Flags().GetBool("tune")
	opts.CVFolds, _ = cmd.Flags().GetInt("cv-folds")
	opts.Workers, _ = cmd.Flags().GetInt("workers")

	if opts.Tune {
		opts.OnTuneProgress = tuneProgressBar
	}

	slog.Info("starting training run",
		"dataset", opts.DatasetPath,
		"seed", opts.Params.Seed,
		"test_size", opts.TestSize,
		"tune", opts.Tune)

	result, err := training.Run(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	slog.Info("training complete",
		"bundle_id", result.BundleID,
		"rows", result.Rows,
		"accuracy", result.Accuracy)
	if result.Report.Total > 0 {
		fmt.Println(result.Report.String())
	}
	return nil
}

// tuneProgressBar renders one tick per evaluated grid candidate.
func tuneProgressBar(total int) func() {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Evaluating candidates..."),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
	return func() {
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}
