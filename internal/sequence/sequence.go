// Package sequence converts the encoded feature table into the fixed-length
// windows the regressor trains on, and synthesizes the single-observation
// sequence used at inference.
package sequence

import (
	"errors"
	"fmt"
)

// DefaultLength is the window width used throughout the system unless a
// caller overrides it.
const DefaultLength = 10

// ErrInsufficientData indicates the corpus is too small to produce even one
// training window. Training must abort on it rather than proceed with an
// empty dataset.
var ErrInsufficientData = errors.New("sequence: not enough records to build training sequences")

// Build slides a window of the given length over the chronologically sorted
// feature table. It produces exactly len(features)-length sequences; sequence
// i covers rows [i, i+length) and its target is the unit rate at row
// i+length.
func Build(features [][]float64, targets []float64, length int) ([][][]float64, []float64, error) {
	if length < 1 {
		return nil, nil, fmt.Errorf("sequence: window length %d, want >= 1", length)
	}
	if len(features) != len(targets) {
		return nil, nil, fmt.Errorf("sequence: %d feature rows but %d targets", len(features), len(targets))
	}
	n := len(features) - length
	if n <= 0 {
		return nil, nil, fmt.Errorf("sequence: %d records with window %d: %w", len(features), length, ErrInsufficientData)
	}

	seqs := make([][][]float64, n)
	outTargets := make([]float64, n)
	for i := 0; i < n; i++ {
		seqs[i] = features[i : i+length : i+length]
		outTargets[i] = targets[i+length]
	}
	return seqs, outTargets, nil
}

// ForInference synthesizes a sequence from a single encoded vector by
// repeating it length times. The regressor therefore sees a degenerate
// constant sequence rather than genuine temporal context; this mirrors the
// training-time windowing contract and must not be replaced with a real
// history window unless the serving layer also starts fetching the
// location's recent transactions.
func ForInference(vec []float64, length int) [][]float64 {
	seq := make([][]float64, length)
	for i := range seq {
		seq[i] = vec
	}
	return seq
}
