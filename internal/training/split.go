package training

import (
	"fmt"
	"math"
	"math/rand"
)

// split partitions the dataset into train and test sets by a seeded
// shuffle. The same seed always yields the same partition.
func split(x [][]float64, y []int, testSize float64, seed int64) (xTrain, xTest [][]float64, yTrain, yTest []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}
	n := len(x)
	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest >= n {
		return nil, nil, nil, nil, fmt.Errorf("test size %v leaves no training rows for %d samples", testSize, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	for i, idx := range perm {
		if i < nTest {
			xTest = append(xTest, x[idx])
			yTest = append(yTest, y[idx])
		} else {
			xTrain = append(xTrain, x[idx])
			yTrain = append(yTrain, y[idx])
		}
	}
	return xTrain, xTest, yTrain, yTest, nil
}
