package regressor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keystone-data/landrate/internal/monitoring"
	"github.com/keystone-data/landrate/internal/sequence"
)

func init() {
	monitoring.SetLogger(nil)
}

// linearFixture builds windows over a feature table whose target is a linear
// function of the first feature column, a pattern gradient descent picks up
// within a few epochs.
func linearFixture(t *testing.T, n, window int) ([][][]float64, []float64) {
	t.Helper()
	features := make([][]float64, n)
	targets := make([]float64, n)
	for i := range features {
		x := float64(i) / float64(n)
		features[i] = []float64{x, 1 - x, 0.5, x * x}
		targets[i] = 20000 + 30000*x
	}
	seqs, seqTargets, err := sequence.Build(features, targets, window)
	require.NoError(t, err)
	return seqs, seqTargets
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.HiddenUnits = 16
	cfg.MaxEpochs = 80
	cfg.Seed = 1
	return cfg
}

func TestPredictBeforeTrain(t *testing.T) {
	var r Regressor
	_, err := r.Predict(sequence.ForInference([]float64{0.1, 0.2, 0.3, 0.4}, 10))
	require.ErrorIs(t, err, ErrModelNotReady)
	require.False(t, r.Trained())
}

func TestTrain(t *testing.T) {
	seqs, targets := linearFixture(t, 300, 5)

	var r Regressor
	hist, err := r.Train(seqs, targets, smallConfig())
	require.NoError(t, err)
	require.True(t, r.Trained())

	t.Run("loss_decreases", func(t *testing.T) {
		require.NotEmpty(t, hist.TrainLoss)
		first := hist.TrainLoss[0]
		last := hist.TrainLoss[len(hist.TrainLoss)-1]
		require.Less(t, last, first, "training loss should decrease")
	})

	t.Run("history_is_consistent", func(t *testing.T) {
		require.LessOrEqual(t, len(hist.TrainLoss), smallConfig().MaxEpochs)
		require.Equal(t, len(hist.TrainLoss), len(hist.ValLoss))
		require.GreaterOrEqual(t, hist.BestEpoch, 0)
		require.Less(t, hist.BestEpoch, len(hist.TrainLoss))
	})

	t.Run("test_split_evaluated", func(t *testing.T) {
		require.Greater(t, hist.TestMSE, 0.0)
		require.Greater(t, hist.TestMAE, 0.0)
	})

	t.Run("predictions_are_in_target_range", func(t *testing.T) {
		pred, err := r.Predict(seqs[len(seqs)/2])
		require.NoError(t, err)
		// Targets span 20000..50000; a trained model should land well inside
		// an order of magnitude of that band.
		require.Greater(t, pred, 0.0)
		require.Less(t, pred, 500000.0)
	})
}

func TestTrainRejectsBadInput(t *testing.T) {
	t.Run("mismatched_lengths", func(t *testing.T) {
		seqs, _ := linearFixture(t, 50, 5)
		var r Regressor
		_, err := r.Train(seqs, []float64{1}, smallConfig())
		require.Error(t, err)
	})

	t.Run("no_sequences", func(t *testing.T) {
		var r Regressor
		_, err := r.Train(nil, nil, smallConfig())
		require.ErrorIs(t, err, ErrTooFewSequences)
	})
}

func TestDeterministicTraining(t *testing.T) {
	seqs, targets := linearFixture(t, 200, 5)

	var a, b Regressor
	_, err := a.Train(seqs, targets, smallConfig())
	require.NoError(t, err)
	_, err = b.Train(seqs, targets, smallConfig())
	require.NoError(t, err)

	predA, err := a.Predict(seqs[7])
	require.NoError(t, err)
	predB, err := b.Predict(seqs[7])
	require.NoError(t, err)
	require.Equal(t, predA, predB, "same seed must reproduce the same model")
}

func TestSnapshotRoundTrip(t *testing.T) {
	seqs, targets := linearFixture(t, 200, 5)

	var r Regressor
	_, err := r.Train(seqs, targets, smallConfig())
	require.NoError(t, err)

	snap, err := r.Snapshot()
	require.NoError(t, err)

	restored, err := FromSnapshot(snap)
	require.NoError(t, err)
	require.True(t, restored.Trained())

	for _, i := range []int{0, 42, len(seqs) - 1} {
		want, err := r.Predict(seqs[i])
		require.NoError(t, err)
		got, err := restored.Predict(seqs[i])
		require.NoError(t, err)
		require.Equal(t, want, got, "restored model must predict byte-identically")
	}
}

func TestSnapshotValidation(t *testing.T) {
	t.Run("untrained_cannot_snapshot", func(t *testing.T) {
		var r Regressor
		_, err := r.Snapshot()
		require.ErrorIs(t, err, ErrModelNotReady)
	})

	seqs, targets := linearFixture(t, 100, 5)
	var r Regressor
	_, err := r.Train(seqs, targets, smallConfig())
	require.NoError(t, err)
	good, err := r.Snapshot()
	require.NoError(t, err)

	corruptions := map[string]func(Snapshot) Snapshot{
		"zero_dims":      func(s Snapshot) Snapshot { s.InputDim = 0; return s },
		"truncated_w1":   func(s Snapshot) Snapshot { s.W1 = s.W1[:1]; return s },
		"truncated_b1":   func(s Snapshot) Snapshot { s.B1 = s.B1[:2]; return s },
		"ragged_w1_row":  func(s Snapshot) Snapshot { s.W1 = append([][]float64{{1}}, s.W1[1:]...); return s },
		"bad_target_std": func(s Snapshot) Snapshot { s.TargetStd = 0; return s },
	}
	for name, corrupt := range corruptions {
		t.Run(name, func(t *testing.T) {
			_, err := FromSnapshot(corrupt(good))
			require.Error(t, err)
		})
	}
}
