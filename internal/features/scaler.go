package features

import "fmt"

// MinMaxScaler holds per-column minima and maxima learned once at fit time
// and applied identically at training and inference. It is never refit at
// inference; values outside the fitted range extrapolate linearly rather than
// being clamped.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// Fit learns column bounds from the matrix. All rows must share a width.
func (s *MinMaxScaler) Fit(matrix [][]float64) error {
	if len(matrix) == 0 {
		return fmt.Errorf("scaler: cannot fit on an empty matrix")
	}
	width := len(matrix[0])
	s.Min = make([]float64, width)
	s.Max = make([]float64, width)
	copy(s.Min, matrix[0])
	copy(s.Max, matrix[0])

	for _, row := range matrix {
		if len(row) != width {
			return fmt.Errorf("scaler: ragged matrix: row width %d, want %d", len(row), width)
		}
		for j, v := range row {
			if v < s.Min[j] {
				s.Min[j] = v
			}
			if v > s.Max[j] {
				s.Max[j] = v
			}
		}
	}
	return nil
}

// Transform scales vec into the fitted [0,1] range column-wise. Columns that
// were constant at fit time scale to 0.
func (s *MinMaxScaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.Min) {
		return nil, fmt.Errorf("scaler: vector width %d, want %d", len(vec), len(s.Min))
	}
	out := make([]float64, len(vec))
	for j, v := range vec {
		span := s.Max[j] - s.Min[j]
		if span == 0 {
			out[j] = 0
			continue
		}
		out[j] = (v - s.Min[j]) / span
	}
	return out, nil
}
