// Package regressor implements the trainable sequence-to-rate function at the
// centre of the prediction pipeline. Sequences are mean-pooled over their
// timesteps and passed through a single-hidden-layer network; targets are
// standardized for training and predictions are mapped back to rate units.
package regressor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrModelNotReady indicates Predict was called before any successful Train
// or snapshot restore. The prediction service catches it and falls back to
// reference statistics; it must never surface to an API caller.
var ErrModelNotReady = errors.New("regressor: model not trained or loaded")

// Config carries the training hyperparameters.
type Config struct {
	HiddenUnits  int
	LearningRate float64
	BatchSize    int
	MaxEpochs    int

	// Patience is the number of consecutive epochs without validation-loss
	// improvement tolerated before training stops early.
	Patience int

	// ValidationFraction of the training split is held out for early
	// stopping; TestFraction of the total is held out first and evaluated
	// exactly once after training.
	ValidationFraction float64
	TestFraction       float64

	Seed int64
}

// DefaultConfig returns the standard training setup.
func DefaultConfig() Config {
	return Config{
		HiddenUnits:        32,
		LearningRate:       0.01,
		BatchSize:          32,
		MaxEpochs:          100,
		Patience:           10,
		ValidationFraction: 0.2,
		TestFraction:       0.2,
		Seed:               42,
	}
}

// History records one training run: per-epoch losses (mean squared error in
// rate units), the epoch whose weights were kept, and the held-out test
// metrics evaluated after training.
type History struct {
	TrainLoss []float64
	ValLoss   []float64
	BestEpoch int
	TestMSE   float64
	TestMAE   float64
}

// Regressor is the sequence regressor. Zero value is untrained; it becomes
// trained through Train or FromSnapshot and never transitions back. Once
// trained it is read-only and safe for concurrent Predict calls.
type Regressor struct {
	inputDim int
	hidden   int

	w1 *mat.Dense    // inputDim x hidden
	b1 *mat.VecDense // hidden
	w2 *mat.VecDense // hidden
	b2 float64

	targetMean float64
	targetStd  float64

	trained bool
}

// Trained reports whether the regressor can serve predictions.
func (r *Regressor) Trained() bool { return r.trained }

// Predict returns the predicted unit rate for one sequence. It fails with
// ErrModelNotReady before a successful Train or snapshot restore.
func (r *Regressor) Predict(seq [][]float64) (float64, error) {
	if !r.trained {
		return 0, ErrModelNotReady
	}
	pooled, err := meanPool(seq, r.inputDim)
	if err != nil {
		return 0, err
	}
	return r.forwardOne(pooled)*r.targetStd + r.targetMean, nil
}

// forwardOne runs a single pooled vector through the network in standardized
// target space.
func (r *Regressor) forwardOne(x []float64) float64 {
	out := r.b2
	for j := 0; j < r.hidden; j++ {
		h := r.b1.AtVec(j)
		for i := 0; i < r.inputDim; i++ {
			h += x[i] * r.w1.At(i, j)
		}
		if h > 0 {
			out += h * r.w2.AtVec(j)
		}
	}
	return out
}

// forwardBatch runs X (n x inputDim) through the network, returning the
// post-activation hidden matrix and the standardized outputs.
func (r *Regressor) forwardBatch(x *mat.Dense) (*mat.Dense, *mat.VecDense) {
	n, _ := x.Dims()

	var h mat.Dense
	h.Mul(x, r.w1)
	h.Apply(func(_, j int, v float64) float64 {
		v += r.b1.AtVec(j)
		if v < 0 {
			return 0
		}
		return v
	}, &h)

	y := mat.NewVecDense(n, nil)
	y.MulVec(&h, r.w2)
	for i := 0; i < n; i++ {
		y.SetVec(i, y.AtVec(i)+r.b2)
	}
	return &h, y
}

// meanPool collapses a sequence to one vector by averaging each column over
// the timesteps.
func meanPool(seq [][]float64, width int) ([]float64, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("regressor: empty sequence")
	}
	out := make([]float64, width)
	for _, step := range seq {
		if len(step) != width {
			return nil, fmt.Errorf("regressor: sequence step width %d, want %d", len(step), width)
		}
		for j, v := range step {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(len(seq))
	}
	return out, nil
}
