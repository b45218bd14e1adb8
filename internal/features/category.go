package features

import "sort"

// CategoryEncoder maps category strings to stable small integer codes. It is
// fit once over the training corpus and read-only afterwards; the code
// assignment is the sorted order of the distinct labels so refitting the same
// corpus always yields the same codes.
type CategoryEncoder struct {
	Codes map[string]int `json:"codes"`
}

// Fit assigns codes 0..n-1 to the distinct values in sorted order.
func (e *CategoryEncoder) Fit(values []string) {
	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	labels := make([]string, 0, len(distinct))
	for v := range distinct {
		labels = append(labels, v)
	}
	sort.Strings(labels)

	e.Codes = make(map[string]int, len(labels))
	for i, v := range labels {
		e.Codes[v] = i
	}
}

// Code returns the fitted code for v. A category never seen during Fit maps
// to 0 rather than failing: prediction degrades gracefully for unknown
// locations instead of rejecting the request.
func (e *CategoryEncoder) Code(v string) int {
	if code, ok := e.Codes[v]; ok {
		return code
	}
	return 0
}

// Len reports the number of fitted categories.
func (e *CategoryEncoder) Len() int { return len(e.Codes) }
