package regressor

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/keystone-data/landrate/internal/monitoring"
)

// ErrTooFewSequences indicates the sequence set cannot support the configured
// train/validation/test splits.
var ErrTooFewSequences = errors.New("regressor: too few sequences to train")

// Train fits the regressor on the given sequences. The total set is split
// into held-out test (TestFraction, evaluated once after training), held-out
// validation (ValidationFraction of the remainder, watched for early
// stopping) and the training split proper. When validation loss fails to
// improve for Patience consecutive epochs training stops and the
// best-validation weights are restored, not the last epoch's.
func (r *Regressor) Train(seqs [][][]float64, targets []float64, cfg Config) (History, error) {
	if len(seqs) != len(targets) {
		return History{}, fmt.Errorf("regressor: %d sequences but %d targets", len(seqs), len(targets))
	}
	if len(seqs) == 0 {
		return History{}, ErrTooFewSequences
	}

	r.inputDim = len(seqs[0][0])
	r.hidden = cfg.HiddenUnits

	pooled := make([][]float64, len(seqs))
	for i, s := range seqs {
		p, err := meanPool(s, r.inputDim)
		if err != nil {
			return History{}, err
		}
		pooled[i] = p
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	idx := rng.Perm(len(pooled))

	nTest := int(float64(len(idx)) * cfg.TestFraction)
	rest := idx[nTest:]
	testIdx := idx[:nTest]
	nVal := int(float64(len(rest)) * cfg.ValidationFraction)
	valIdx := rest[:nVal]
	trainIdx := rest[nVal:]
	if len(trainIdx) == 0 {
		return History{}, ErrTooFewSequences
	}

	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = len(trainIdx)
	}

	r.fitTargetScale(targets, trainIdx)
	r.initWeights(rng)

	trainX, trainY := r.subset(pooled, targets, trainIdx)
	valX, valY := r.subset(pooled, targets, valIdx)

	hist := History{BestEpoch: -1}
	bestVal := math.Inf(1)
	var bestW1 *mat.Dense
	var bestB1, bestW2 *mat.VecDense
	var bestB2 float64
	badEpochs := 0

	order := make([]int, len(trainIdx))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < cfg.MaxEpochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for start := 0; start < len(order); start += batchSize {
			end := start + batchSize
			if end > len(order) {
				end = len(order)
			}
			r.step(trainX, trainY, order[start:end], cfg.LearningRate)
		}

		trainLoss, _ := r.evaluate(trainX, trainY)
		hist.TrainLoss = append(hist.TrainLoss, trainLoss)

		// With no validation samples the training loss drives early stopping.
		watched := trainLoss
		if len(valX) > 0 {
			valLoss, _ := r.evaluate(valX, valY)
			hist.ValLoss = append(hist.ValLoss, valLoss)
			watched = valLoss
		}

		if watched < bestVal {
			bestVal = watched
			hist.BestEpoch = epoch
			bestW1 = mat.DenseCopyOf(r.w1)
			bestB1 = mat.VecDenseCopyOf(r.b1)
			bestW2 = mat.VecDenseCopyOf(r.w2)
			bestB2 = r.b2
			badEpochs = 0
		} else {
			badEpochs++
			if badEpochs >= cfg.Patience {
				monitoring.Logf("regressor: early stop at epoch %d (best %d, val loss %.2f)", epoch, hist.BestEpoch, bestVal)
				break
			}
		}
	}

	if bestW1 != nil {
		r.w1, r.b1, r.w2, r.b2 = bestW1, bestB1, bestW2, bestB2
	}
	r.trained = true

	if len(testIdx) > 0 {
		testX, testY := r.subset(pooled, targets, testIdx)
		hist.TestMSE, hist.TestMAE = r.evaluate(testX, testY)
		monitoring.Logf("regressor: test MSE %.2f, MAE %.2f over %d held-out sequences", hist.TestMSE, hist.TestMAE, len(testIdx))
	}
	return hist, nil
}

// fitTargetScale standardizes targets using training-split statistics only.
func (r *Regressor) fitTargetScale(targets []float64, trainIdx []int) {
	var sum float64
	for _, i := range trainIdx {
		sum += targets[i]
	}
	r.targetMean = sum / float64(len(trainIdx))

	var variance float64
	for _, i := range trainIdx {
		d := targets[i] - r.targetMean
		variance += d * d
	}
	r.targetStd = math.Sqrt(variance / float64(len(trainIdx)))
	if r.targetStd < 1e-10 {
		r.targetStd = 1
	}
}

func (r *Regressor) initWeights(rng *rand.Rand) {
	w1 := make([]float64, r.inputDim*r.hidden)
	scale := math.Sqrt(2 / float64(r.inputDim))
	for i := range w1 {
		w1[i] = rng.NormFloat64() * scale
	}
	r.w1 = mat.NewDense(r.inputDim, r.hidden, w1)

	w2 := make([]float64, r.hidden)
	scale = math.Sqrt(2 / float64(r.hidden))
	for i := range w2 {
		w2[i] = rng.NormFloat64() * scale
	}
	r.w2 = mat.NewVecDense(r.hidden, w2)

	r.b1 = mat.NewVecDense(r.hidden, nil)
	r.b2 = 0
}

func (r *Regressor) subset(pooled [][]float64, targets []float64, idx []int) ([][]float64, []float64) {
	x := make([][]float64, len(idx))
	y := make([]float64, len(idx))
	for i, j := range idx {
		x[i] = pooled[j]
		y[i] = targets[j]
	}
	return x, y
}

func (r *Regressor) batchMatrix(rows [][]float64, idx []int) *mat.Dense {
	data := make([]float64, len(idx)*r.inputDim)
	for i, j := range idx {
		copy(data[i*r.inputDim:], rows[j])
	}
	return mat.NewDense(len(idx), r.inputDim, data)
}

// step runs one minibatch of gradient descent on the mean-squared error in
// standardized target space.
func (r *Regressor) step(rows [][]float64, targets []float64, batch []int, lr float64) {
	n := len(batch)
	x := r.batchMatrix(rows, batch)
	h, yhat := r.forwardBatch(x)

	// g = dL/dyhat = 2*(yhat - t)/n
	g := mat.NewVecDense(n, nil)
	for i, j := range batch {
		t := (targets[j] - r.targetMean) / r.targetStd
		g.SetVec(i, 2*(yhat.AtVec(i)-t)/float64(n))
	}

	var dw2 mat.VecDense
	dw2.MulVec(h.T(), g)
	db2 := mat.Sum(g)

	var dh mat.Dense
	dh.Outer(1, g, r.w2)
	dh.Apply(func(i, j int, v float64) float64 {
		if h.At(i, j) <= 0 {
			return 0
		}
		return v
	}, &dh)

	var dw1 mat.Dense
	dw1.Mul(x.T(), &dh)

	db1 := mat.NewVecDense(r.hidden, nil)
	for j := 0; j < r.hidden; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += dh.At(i, j)
		}
		db1.SetVec(j, sum)
	}

	var scaled mat.Dense
	scaled.Scale(lr, &dw1)
	r.w1.Sub(r.w1, &scaled)
	r.w2.AddScaledVec(r.w2, -lr, &dw2)
	r.b1.AddScaledVec(r.b1, -lr, db1)
	r.b2 -= lr * db2
}

// evaluate computes mean squared error and mean absolute error in rate units.
func (r *Regressor) evaluate(rows [][]float64, targets []float64) (mse, mae float64) {
	if len(rows) == 0 {
		return 0, 0
	}
	for i, row := range rows {
		pred := r.forwardOne(row)*r.targetStd + r.targetMean
		d := pred - targets[i]
		mse += d * d
		mae += math.Abs(d)
	}
	n := float64(len(rows))
	return mse / n, mae / n
}
