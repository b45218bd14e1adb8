// Package testutil provides shared corpus fixtures and assertion helpers for
// the prediction pipeline tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/keystone-data/landrate/internal/dataset"
)

// Rate returns a pointer to v, for populating optional record fields.
func Rate(v float64) *float64 { return &v }

// Records builds a chronological run of records for one location. Unit rates
// come from rates in order; effective dates advance one day per record.
func Records(mandal, village string, rates []float64) []dataset.Record {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]dataset.Record, len(rates))
	for i, rate := range rates {
		out[i] = dataset.Record{
			District:        "Tirupati",
			Mandal:          mandal,
			Village:         village,
			WardNo:          1 + i%10,
			BlockNo:         1 + i%5,
			DoorNo:          100 + i,
			DoorID:          fmt.Sprintf("%d-%d-%d", 1+i%10, 1+i%5, 100+i),
			CommercialRate:  Rate(rate * 0.1),
			Floor1Rate:      Rate(rate * 0.09),
			OtherFloorRate:  Rate(rate * 0.08),
			PreRevisionRate: Rate(rate * 0.9),
			UnitRate:        rate,
			EffectiveDate:   base.AddDate(0, 0, i).Format("2006-01-02"),
		}
	}
	return out
}

// TrendCorpus builds n records whose unit rate rises linearly from base, a
// pattern the regressor can learn in a handful of epochs.
func TrendCorpus(n int, base, step float64) []dataset.Record {
	rates := make([]float64, n)
	for i := range rates {
		rates[i] = base + step*float64(i)
	}
	return Records("Tirupati Urban", "Tirupathi", rates)
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
