package regressor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Snapshot is the JSON-serializable form of a trained regressor. It is only
// ever persisted inside a model bundle alongside the feature encoder state,
// never on its own.
type Snapshot struct {
	InputDim    int         `json:"input_dim"`
	HiddenUnits int         `json:"hidden_units"`
	W1          [][]float64 `json:"w1"`
	B1          []float64   `json:"b1"`
	W2          []float64   `json:"w2"`
	B2          float64     `json:"b2"`
	TargetMean  float64     `json:"target_mean"`
	TargetStd   float64     `json:"target_std"`
}

// Snapshot captures the trained parameters. It fails on an untrained
// regressor so partial state can never be persisted.
func (r *Regressor) Snapshot() (Snapshot, error) {
	if !r.trained {
		return Snapshot{}, ErrModelNotReady
	}
	s := Snapshot{
		InputDim:    r.inputDim,
		HiddenUnits: r.hidden,
		B2:          r.b2,
		TargetMean:  r.targetMean,
		TargetStd:   r.targetStd,
	}
	s.W1 = make([][]float64, r.inputDim)
	for i := range s.W1 {
		s.W1[i] = make([]float64, r.hidden)
		for j := 0; j < r.hidden; j++ {
			s.W1[i][j] = r.w1.At(i, j)
		}
	}
	s.B1 = make([]float64, r.hidden)
	s.W2 = make([]float64, r.hidden)
	for j := 0; j < r.hidden; j++ {
		s.B1[j] = r.b1.AtVec(j)
		s.W2[j] = r.w2.AtVec(j)
	}
	return s, nil
}

// FromSnapshot restores a trained regressor. Dimension mismatches mean the
// stored payload is corrupt and are reported as errors rather than repaired.
func FromSnapshot(s Snapshot) (*Regressor, error) {
	if s.InputDim < 1 || s.HiddenUnits < 1 {
		return nil, fmt.Errorf("regressor: snapshot has invalid dimensions %dx%d", s.InputDim, s.HiddenUnits)
	}
	if len(s.W1) != s.InputDim {
		return nil, fmt.Errorf("regressor: snapshot w1 has %d rows, want %d", len(s.W1), s.InputDim)
	}
	if len(s.B1) != s.HiddenUnits || len(s.W2) != s.HiddenUnits {
		return nil, fmt.Errorf("regressor: snapshot bias/output width %d/%d, want %d", len(s.B1), len(s.W2), s.HiddenUnits)
	}
	if s.TargetStd <= 0 {
		return nil, fmt.Errorf("regressor: snapshot target std %v, want > 0", s.TargetStd)
	}

	r := &Regressor{
		inputDim:   s.InputDim,
		hidden:     s.HiddenUnits,
		targetMean: s.TargetMean,
		targetStd:  s.TargetStd,
		b2:         s.B2,
	}
	w1 := make([]float64, s.InputDim*s.HiddenUnits)
	for i, row := range s.W1 {
		if len(row) != s.HiddenUnits {
			return nil, fmt.Errorf("regressor: snapshot w1 row %d has width %d, want %d", i, len(row), s.HiddenUnits)
		}
		copy(w1[i*s.HiddenUnits:], row)
	}
	r.w1 = mat.NewDense(s.InputDim, s.HiddenUnits, w1)
	r.b1 = mat.NewVecDense(s.HiddenUnits, append([]float64(nil), s.B1...))
	r.w2 = mat.NewVecDense(s.HiddenUnits, append([]float64(nil), s.W2...))
	r.trained = true
	return r, nil
}
