package model

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keystone-data/landrate/internal/features"
	"github.com/keystone-data/landrate/internal/monitoring"
	"github.com/keystone-data/landrate/internal/regressor"
	"github.com/keystone-data/landrate/internal/sequence"
	"github.com/keystone-data/landrate/internal/testutil"
)

func init() {
	monitoring.SetLogger(nil)
}

// trainedBundle fits an encoder and regressor on a small synthetic corpus and
// wraps them in a bundle.
func trainedBundle(t *testing.T) (*Bundle, [][]float64) {
	t.Helper()

	records := testutil.TrendCorpus(60, 30000, 200)
	var enc features.Encoder
	matrix, targets, err := enc.Fit(records)
	require.NoError(t, err)

	seqs, seqTargets, err := sequence.Build(matrix, targets, 5)
	require.NoError(t, err)

	cfg := regressor.DefaultConfig()
	cfg.HiddenUnits = 8
	cfg.MaxEpochs = 20
	cfg.Seed = 7
	var reg regressor.Regressor
	_, err = reg.Train(seqs, seqTargets, cfg)
	require.NoError(t, err)

	snap, err := reg.Snapshot()
	require.NoError(t, err)

	probes := make([][]float64, 3)
	for i := range probes {
		vec, err := enc.Transform(features.FromRecord(records[i*10]))
		require.NoError(t, err)
		probes[i] = vec
	}

	return &Bundle{
		SequenceLength: 5,
		Regressor:      snap,
		Encoder:        enc,
		TrainedAt:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}, probes
}

func TestStoreRoundTrip(t *testing.T) {
	bundle, probes := trainedBundle(t)
	path := filepath.Join(t.TempDir(), "model.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(bundle))
	require.NoError(t, store.Close())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, bundle.SequenceLength, loaded.SequenceLength)
	require.True(t, bundle.TrainedAt.Equal(loaded.TrainedAt))

	// The loaded bundle must predict byte-identically to the pre-save one.
	origReg, _, err := bundle.Materialize()
	require.NoError(t, err)
	loadedReg, loadedEnc, err := loaded.Materialize()
	require.NoError(t, err)
	require.True(t, loadedEnc.Fitted())

	for _, vec := range probes {
		seq := sequence.ForInference(vec, bundle.SequenceLength)
		want, err := origReg.Predict(seq)
		require.NoError(t, err)
		got, err := loadedReg.Predict(seq)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestSaveReplacesPreviousBundle(t *testing.T) {
	bundle, _ := trainedBundle(t)
	path := filepath.Join(t.TempDir(), "model.db")

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(bundle))

	second := *bundle
	second.SequenceLength = 9
	require.NoError(t, store.Save(&second))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 9, loaded.SequenceLength)
}

func TestLoadDistinguishesNotFoundFromCorrupt(t *testing.T) {
	t.Run("missing_file_is_not_found", func(t *testing.T) {
		_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.db"))
		require.ErrorIs(t, err, ErrStoreNotFound)
	})

	t.Run("empty_store_is_not_found", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.db")
		store, err := Open(path)
		require.NoError(t, err)
		defer store.Close()

		_, err = store.Load()
		require.ErrorIs(t, err, ErrStoreNotFound)
	})

	t.Run("garbage_payload_is_corrupt", func(t *testing.T) {
		bundle, _ := trainedBundle(t)
		path := filepath.Join(t.TempDir(), "corrupt.db")
		store, err := Open(path)
		require.NoError(t, err)
		defer store.Close()
		require.NoError(t, store.Save(bundle))

		_, err = store.db.Exec(`UPDATE model_bundle SET payload = 'not json'`)
		require.NoError(t, err)

		_, err = store.Load()
		require.ErrorIs(t, err, ErrStoreCorrupt)
	})

	t.Run("schema_version_mismatch_is_corrupt", func(t *testing.T) {
		bundle, _ := trainedBundle(t)
		path := filepath.Join(t.TempDir(), "versioned.db")
		store, err := Open(path)
		require.NoError(t, err)
		defer store.Close()
		require.NoError(t, store.Save(bundle))

		_, err = store.db.Exec(`UPDATE model_bundle SET schema_version = 99`)
		require.NoError(t, err)

		_, err = store.Load()
		require.ErrorIs(t, err, ErrStoreCorrupt)
	})
}

func TestMaterializeValidatesBundle(t *testing.T) {
	bundle, _ := trainedBundle(t)

	t.Run("valid_bundle", func(t *testing.T) {
		reg, enc, err := bundle.Materialize()
		require.NoError(t, err)
		require.True(t, reg.Trained())
		require.True(t, enc.Fitted())
	})

	t.Run("bad_sequence_length", func(t *testing.T) {
		broken := *bundle
		broken.SequenceLength = 0
		_, _, err := broken.Materialize()
		require.ErrorIs(t, err, ErrStoreCorrupt)
	})

	t.Run("inconsistent_regressor", func(t *testing.T) {
		broken := *bundle
		broken.Regressor.TargetStd = 0
		_, _, err := broken.Materialize()
		require.ErrorIs(t, err, ErrStoreCorrupt)
	})

	t.Run("unfitted_encoder", func(t *testing.T) {
		broken := *bundle
		broken.Encoder = features.Encoder{}
		_, _, err := broken.Materialize()
		require.ErrorIs(t, err, ErrStoreCorrupt)
	})
}
