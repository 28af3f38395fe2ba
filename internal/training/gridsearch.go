package training

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/vaishrk/pcos-care/internal/ml"
)

// Grid declares the hyperparameter axes for exhaustive search. Candidates
// are enumerated in the order the axes are declared (NumTrees outermost),
// which fixes the tie-break: the first candidate reaching the best score
// wins.
type Grid struct {
	NumTrees        []int
	MaxDepth        []int
	MinSamplesSplit []int
}

// DefaultGrid mirrors the hyperparameter ranges the production model was
// tuned over.
func DefaultGrid() Grid {
	return Grid{
		NumTrees:        []int{100, 200, 300},
		MaxDepth:        []int{3, 5, 7},
		MinSamplesSplit: []int{2, 4},
	}
}

func (g Grid) candidates(base ml.Params) []ml.Params {
	var out []ml.Params
	for _, trees := range g.NumTrees {
		for _, depth := range g.MaxDepth {
			for _, minSplit := range g.MinSamplesSplit {
				p := base
				p.NumTrees = trees
				p.MaxDepth = depth
				p.MinSamplesSplit = minSplit
				out = append(out, p)
			}
		}
	}
	return out
}

// searchResult is the outcome of a grid search.
type searchResult struct {
	best      ml.Params
	bestScore float64
	evaluated int
}

// gridSearch scores every candidate by k-fold cross-validated accuracy on
// the training partition. Candidates are scored concurrently by up to
// `workers` goroutines; because each score is a pure function of the
// candidate and the fixed seed, the outcome is identical at any worker
// count. Returns an error when no candidate produces a valid score.
func gridSearch(ctx context.Context, x [][]float64, y []int, grid Grid, base ml.Params, folds, workers int, onCandidate func()) (*searchResult, error) {
	cands := grid.candidates(base)
	if len(cands) == 0 {
		return nil, fmt.Errorf("hyperparameter grid is empty")
	}
	if folds < 2 {
		folds = 3
	}
	if folds > len(x) {
		return nil, fmt.Errorf("cannot run %d-fold cross-validation on %d rows", folds, len(x))
	}
	if workers < 1 {
		workers = 1
	}

	scores := make([]float64, len(cands))
	errs := make([]error, len(cands))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				scores[i], errs[i] = crossValidate(ctx, x, y, cands[i], folds)
				if onCandidate != nil {
					onCandidate()
				}
			}
		}()
	}

dispatch:
	for i := range cands {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("grid search interrupted: %w", err)
	}

	result := &searchResult{bestScore: -1}
	for i := range cands {
		if errs[i] != nil {
			continue
		}
		result.evaluated++
		// Strictly greater keeps the first candidate on ties.
		if scores[i] > result.bestScore {
			result.bestScore = scores[i]
			result.best = cands[i]
		}
	}
	if result.evaluated == 0 {
		return nil, fmt.Errorf("no grid candidate produced a valid score")
	}
	return result, nil
}

// crossValidate computes mean accuracy over k contiguous folds. Fold
// boundaries depend only on the row count, so the same inputs always score
// identically.
func crossValidate(ctx context.Context, x [][]float64, y []int, p ml.Params, folds int) (float64, error) {
	n := len(x)
	foldScores := make([]float64, 0, folds)

	for f := 0; f < folds; f++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		lo := f * n / folds
		hi := (f + 1) * n / folds
		if hi <= lo {
			continue
		}

		xTrain := make([][]float64, 0, n-(hi-lo))
		yTrain := make([]int, 0, n-(hi-lo))
		xTrain = append(xTrain, x[:lo]...)
		xTrain = append(xTrain, x[hi:]...)
		yTrain = append(yTrain, y[:lo]...)
		yTrain = append(yTrain, y[hi:]...)

		forest, err := ml.Train(xTrain, yTrain, p)
		if err != nil {
			return 0, fmt.Errorf("fold %d: %w", f, err)
		}

		correct := 0
		for i := lo; i < hi; i++ {
			pred, err := forest.Predict(x[i])
			if err != nil {
				return 0, fmt.Errorf("fold %d: %w", f, err)
			}
			if pred == y[i] {
				correct++
			}
		}
		foldScores = append(foldScores, float64(correct)/float64(hi-lo))
	}

	if len(foldScores) == 0 {
		return 0, fmt.Errorf("no non-empty folds")
	}
	return floats.Sum(foldScores) / float64(len(foldScores)), nil
}
