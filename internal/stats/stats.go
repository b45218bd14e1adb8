// Package stats computes the deterministic fallback statistics the prediction
// service leans on: averaged rates over comparable historical records, a
// confidence tier from how many comparables matched, and the bounded price
// range that tier implies.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keystone-data/landrate/internal/dataset"
)

// Confidence tiers reported with every prediction.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// MatchLevel records which relaxation step produced the matched subset.
type MatchLevel string

const (
	MatchExact  MatchLevel = "exact"  // mandal and village both matched
	MatchMandal MatchLevel = "mandal" // mandal matched, village relaxed
	MatchGlobal MatchLevel = "global" // leading slice of the whole corpus
)

// Config carries the tunable constants of the lookup. GlobalFallbackLimit is
// deliberately configurable so corpora smaller than the production default
// remain deterministic under test.
type Config struct {
	GlobalFallbackLimit int

	HighThreshold   int
	MediumThreshold int

	HighVariance   float64
	MediumVariance float64
	LowVariance    float64
}

// DefaultConfig returns the production constants: first-100 global fallback,
// HIGH above 50 matches, MEDIUM above 10, and ±8/10/12% price bands.
func DefaultConfig() Config {
	return Config{
		GlobalFallbackLimit: 100,
		HighThreshold:       50,
		MediumThreshold:     10,
		HighVariance:        0.08,
		MediumVariance:      0.10,
		LowVariance:         0.12,
	}
}

// Reference is the result of one lookup: arithmetic means over the matched
// subset plus the subset itself for comparable listings.
type Reference struct {
	AvgCommercialRate  float64
	AvgFloor1Rate      float64
	AvgOtherFloorRate  float64
	AvgPreRevisionRate float64
	AvgUnitRate        float64

	Matches []dataset.Record
	Level   MatchLevel
}

// MatchCount is the size of the matched subset, used as the confidence signal.
func (r Reference) MatchCount() int { return len(r.Matches) }

// Index answers reference lookups over the immutable loaded corpus.
type Index struct {
	records []dataset.Record
	cfg     Config
}

// NewIndex wraps the chronologically sorted corpus. The records slice is
// shared, not copied; it must not be mutated after construction.
func NewIndex(records []dataset.Record, cfg Config) *Index {
	return &Index{records: records, cfg: cfg}
}

// Lookup finds comparable records for a location. Relaxation order, first
// non-empty subset wins: exact mandal+village match, then mandal-only, then
// the leading GlobalFallbackLimit records of the corpus so a non-empty corpus
// always yields a result.
func (ix *Index) Lookup(mandal, village string) (Reference, error) {
	if len(ix.records) == 0 {
		return Reference{}, fmt.Errorf("stats: %w", dataset.ErrEmptyCorpus)
	}

	matches, level := ix.match(mandal, village)
	ref := Reference{Matches: matches, Level: level}

	n := float64(len(matches))
	for _, r := range matches {
		ref.AvgCommercialRate += r.CommercialRateValue()
		ref.AvgFloor1Rate += r.Floor1RateValue()
		ref.AvgOtherFloorRate += r.OtherFloorRateValue()
		ref.AvgPreRevisionRate += r.PreRevisionRateValue()
		ref.AvgUnitRate += r.UnitRate
	}
	ref.AvgCommercialRate /= n
	ref.AvgFloor1Rate /= n
	ref.AvgOtherFloorRate /= n
	ref.AvgPreRevisionRate /= n
	ref.AvgUnitRate /= n

	return ref, nil
}

func (ix *Index) match(mandal, village string) ([]dataset.Record, MatchLevel) {
	var exact, mandalOnly []dataset.Record
	for _, r := range ix.records {
		if r.Mandal != mandal {
			continue
		}
		mandalOnly = append(mandalOnly, r)
		if r.Village == village {
			exact = append(exact, r)
		}
	}
	if len(exact) > 0 {
		return exact, MatchExact
	}
	if len(mandalOnly) > 0 {
		return mandalOnly, MatchMandal
	}
	limit := ix.cfg.GlobalFallbackLimit
	if limit > len(ix.records) {
		limit = len(ix.records)
	}
	return ix.records[:limit], MatchGlobal
}

// Confidence maps a matched-subset size onto a tier.
func (ix *Index) Confidence(matchCount int) string {
	switch {
	case matchCount > ix.cfg.HighThreshold:
		return ConfidenceHigh
	case matchCount > ix.cfg.MediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Variance returns the price-range half-width for a tier.
func (ix *Index) Variance(confidence string) float64 {
	switch confidence {
	case ConfidenceHigh:
		return ix.cfg.HighVariance
	case ConfidenceMedium:
		return ix.cfg.MediumVariance
	default:
		return ix.cfg.LowVariance
	}
}

// Range bounds a total price as [total*(1-v), total*(1+v)] for the tier's
// variance v.
func (ix *Index) Range(total float64, confidence string) (min, max float64) {
	v := ix.Variance(confidence)
	return total * (1 - v), total * (1 + v)
}

// RecordCount reports the corpus size.
func (ix *Index) RecordCount() int { return len(ix.records) }

// SearchLocations returns up to limit distinct mandals and villages whose
// names contain the query, case-insensitively, each sorted ascending. An
// empty query matches everything.
func (ix *Index) SearchLocations(query string, limit int) (mandals, villages []string) {
	query = strings.ToLower(query)
	seenMandal := make(map[string]struct{})
	seenVillage := make(map[string]struct{})
	for _, r := range ix.records {
		if _, ok := seenMandal[r.Mandal]; !ok && strings.Contains(strings.ToLower(r.Mandal), query) {
			seenMandal[r.Mandal] = struct{}{}
			mandals = append(mandals, r.Mandal)
		}
		if _, ok := seenVillage[r.Village]; !ok && strings.Contains(strings.ToLower(r.Village), query) {
			seenVillage[r.Village] = struct{}{}
			villages = append(villages, r.Village)
		}
	}
	sort.Strings(mandals)
	sort.Strings(villages)
	if len(mandals) > limit {
		mandals = mandals[:limit]
	}
	if len(villages) > limit {
		villages = villages[:limit]
	}
	return mandals, villages
}
