// Package features turns transaction records into the fixed-width numeric
// vectors the sequence regressor consumes: categorical fields become stable
// integer codes and every column is min-max scaled against the training
// corpus.
package features

import (
	"fmt"

	"github.com/keystone-data/landrate/internal/dataset"
)

// Width is the number of columns in an encoded feature vector: mandal code,
// village code, ward, block, door, commercial rate, floor-1 rate, other-floor
// rate, pre-revision rate.
const Width = 9

// Observation is one property observation in raw (unencoded, unscaled) form.
// It is the inference-time input to Transform; at training time observations
// are derived from corpus records.
type Observation struct {
	Mandal          string
	Village         string
	Ward            int
	Block           int
	Door            int
	CommercialRate  float64
	Floor1Rate      float64
	OtherFloorRate  float64
	PreRevisionRate float64
}

// FromRecord builds the training observation for a corpus record,
// substituting the register defaults for absent rate fields.
func FromRecord(r dataset.Record) Observation {
	return Observation{
		Mandal:          r.Mandal,
		Village:         r.Village,
		Ward:            r.WardNo,
		Block:           r.BlockNo,
		Door:            r.DoorNo,
		CommercialRate:  r.CommercialRateValue(),
		Floor1Rate:      r.Floor1RateValue(),
		OtherFloorRate:  r.OtherFloorRateValue(),
		PreRevisionRate: r.PreRevisionRateValue(),
	}
}

// Encoder is the fit-once feature encoder: one CategoryEncoder per
// categorical field plus the scaler learned over the encoded training matrix.
// Its exported state is the JSON snapshot persisted inside the model bundle,
// so encoders and model weights can never go out of sync.
type Encoder struct {
	Mandal  CategoryEncoder `json:"mandal"`
	Village CategoryEncoder `json:"village"`
	Scaler  MinMaxScaler    `json:"scaler"`
}

// Fitted reports whether Fit (or a snapshot restore) has populated the encoder.
func (e *Encoder) Fitted() bool {
	return len(e.Scaler.Min) == Width && e.Mandal.Codes != nil && e.Village.Codes != nil
}

// Fit builds the category encoders and scaler from the chronologically
// sorted corpus and returns the scaled feature matrix plus the unit-rate
// targets, row-aligned with the input.
func (e *Encoder) Fit(records []dataset.Record) ([][]float64, []float64, error) {
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("features: %w", dataset.ErrEmptyCorpus)
	}

	mandals := make([]string, len(records))
	villages := make([]string, len(records))
	for i, r := range records {
		mandals[i] = r.Mandal
		villages[i] = r.Village
	}
	e.Mandal.Fit(mandals)
	e.Village.Fit(villages)

	matrix := make([][]float64, len(records))
	targets := make([]float64, len(records))
	for i, r := range records {
		matrix[i] = e.vector(FromRecord(r))
		targets[i] = r.UnitRate
	}
	if err := e.Scaler.Fit(matrix); err != nil {
		return nil, nil, fmt.Errorf("features: %w", err)
	}

	for i, row := range matrix {
		scaled, err := e.Scaler.Transform(row)
		if err != nil {
			return nil, nil, fmt.Errorf("features: %w", err)
		}
		matrix[i] = scaled
	}
	return matrix, targets, nil
}

// Transform encodes and scales one observation with the fitted state. Unseen
// mandal or village values map to code 0; numeric values outside the fitted
// range extrapolate linearly.
func (e *Encoder) Transform(o Observation) ([]float64, error) {
	if !e.Fitted() {
		return nil, fmt.Errorf("features: encoder not fitted")
	}
	return e.Scaler.Transform(e.vector(o))
}

func (e *Encoder) vector(o Observation) []float64 {
	return []float64{
		float64(e.Mandal.Code(o.Mandal)),
		float64(e.Village.Code(o.Village)),
		float64(o.Ward),
		float64(o.Block),
		float64(o.Door),
		o.CommercialRate,
		o.Floor1Rate,
		o.OtherFloorRate,
		o.PreRevisionRate,
	}
}
