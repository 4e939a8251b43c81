// Package model trains a gradient-boosted tree ensemble on engineered
// feature rows and scores the single inference row.
package model

import (
	"fmt"
	"math"
)

// Config controls the boosted ensemble. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	Trees        int     // fixed ensemble size
	LearningRate float64 // shrinkage applied to every tree's contribution
	MaxDepth     int
	MinLeaf      int
}

// DefaultConfig mirrors the reference estimator: 100 trees with a
// squared-error objective.
func DefaultConfig() Config {
	return Config{
		Trees:        100,
		LearningRate: 0.3,
		MaxDepth:     6,
		MinLeaf:      1,
	}
}

// GBT is a gradient-boosted regression tree ensemble with a squared-error
// objective. Fitting is deterministic: no row or column subsampling, so
// repeated fits over the same data produce the same model.
type GBT struct {
	cfg   Config
	base  float64
	trees []*regressionTree
}

// NewGBT creates an unfit ensemble.
func NewGBT(cfg Config) *GBT {
	return &GBT{cfg: cfg}
}

// Fit trains the ensemble on the given rows. Every row must have
// len(x[i]) equal across rows; NaN or infinite values in features or
// targets fail with ErrInvalidTrainingData.
func (m *GBT) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("%w: %d feature rows, %d targets", ErrInvalidTrainingData, len(x), len(y))
	}
	for i, row := range x {
		for _, v := range row {
			if !isFinite(v) {
				return fmt.Errorf("%w: feature row %d", ErrInvalidTrainingData, i)
			}
		}
		if !isFinite(y[i]) {
			return fmt.Errorf("%w: target row %d", ErrInvalidTrainingData, i)
		}
	}

	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}

	// Squared-error objective: the optimal constant is the mean, and each
	// stage fits the current residuals.
	m.base = meanAt(y, idx)
	preds := make([]float64, len(y))
	for i := range preds {
		preds[i] = m.base
	}

	residuals := make([]float64, len(y))
	m.trees = make([]*regressionTree, 0, m.cfg.Trees)
	for t := 0; t < m.cfg.Trees; t++ {
		for i := range y {
			residuals[i] = y[i] - preds[i]
		}
		tree := fitTree(x, residuals, idx, treeConfig{maxDepth: m.cfg.MaxDepth, minLeaf: m.cfg.MinLeaf})
		m.trees = append(m.trees, tree)
		for i := range preds {
			preds[i] += m.cfg.LearningRate * tree.predict(x[i])
		}
	}

	return nil
}

// Predict scores one feature vector.
func (m *GBT) Predict(row []float64) float64 {
	out := m.base
	for _, tree := range m.trees {
		out += m.cfg.LearningRate * tree.predict(row)
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
