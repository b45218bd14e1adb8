// Package model defines the trained-model bundle and its SQLite-backed store.
// The bundle couples the regressor parameters with the exact feature-encoder
// state they were trained under; the two are persisted and restored as one
// atomic unit because predictions are only valid for that pairing.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/keystone-data/landrate/internal/features"
	"github.com/keystone-data/landrate/internal/regressor"
)

var (
	// ErrStoreNotFound means no stored model exists. The service runs in
	// fallback-only mode.
	ErrStoreNotFound = errors.New("model: no stored model")

	// ErrStoreCorrupt means a stored model exists but cannot be restored
	// consistently. This is a hard startup failure needing operator action.
	ErrStoreCorrupt = errors.New("model: stored model is corrupt")
)

// Bundle is the immutable snapshot of one training run.
type Bundle struct {
	SequenceLength int                `json:"sequence_length"`
	Regressor      regressor.Snapshot `json:"regressor"`
	Encoder        features.Encoder   `json:"encoder"`
	TrainedAt      time.Time          `json:"trained_at"`
}

// Materialize restores the runtime regressor and encoder from the bundle.
// Any inconsistency is reported as ErrStoreCorrupt; a bundle is never
// partially usable.
func (b *Bundle) Materialize() (*regressor.Regressor, *features.Encoder, error) {
	if b.SequenceLength < 1 {
		return nil, nil, fmt.Errorf("%w: sequence length %d", ErrStoreCorrupt, b.SequenceLength)
	}
	reg, err := regressor.FromSnapshot(b.Regressor)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreCorrupt, err)
	}
	enc := b.Encoder
	if !enc.Fitted() {
		return nil, nil, fmt.Errorf("%w: encoder state incomplete", ErrStoreCorrupt)
	}
	return reg, &enc, nil
}
