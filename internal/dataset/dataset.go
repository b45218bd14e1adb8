// Package dataset loads the registered-transaction corpus that both the
// training pipeline and the reference-statistics lookup consume.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/keystone-data/landrate/internal/monitoring"
)

// ErrEmptyCorpus indicates the corpus contained no usable records after
// filtering. Callers treat this as a request-level failure, never a crash.
var ErrEmptyCorpus = errors.New("dataset: corpus has no usable records")

// Record is one historical registered transaction. Optional rate fields are
// pointers so an absent field is distinguishable from a zero; the per-record
// defaults live with the statistics layer, not here. Records are immutable
// once loaded and shared read-only across requests.
type Record struct {
	District        string   `json:"DISTRICT"`
	Mandal          string   `json:"MANDAL"`
	Village         string   `json:"VILLAGE"`
	WardNo          int      `json:"WARD_NO"`
	BlockNo         int      `json:"BLOCK_NO"`
	DoorNo          int      `json:"DOOR_NO"`
	DoorID          string   `json:"TR_DOOR_NO"`
	CommercialRate  *float64 `json:"COMM_RATE"`
	Floor1Rate      *float64 `json:"COMP_FLOOR1"`
	OtherFloorRate  *float64 `json:"COMP_FLOOR_OTH"`
	PreRevisionRate *float64 `json:"PRE_REV_UNIT_RATE"`
	UnitRate        float64  `json:"UNIT_RATE"`
	EffectiveDate   string   `json:"EFFECTIVE_DATE"`
}

// corpusFile matches the on-disk layout: a single object with a "data" array.
type corpusFile struct {
	Data []Record `json:"data"`
}

// dateLayouts are tried in order when parsing EFFECTIVE_DATE. The corpus mixes
// ISO dates with and without a time component.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
}

// EffectiveTime parses the record's effective date. Unparseable dates sort to
// the zero time, which keeps them at the front of the corpus rather than
// dropping the record.
func (r Record) EffectiveTime() time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, r.EffectiveDate); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Load reads a corpus file, drops records with non-positive unit rates and
// sorts the remainder by effective date ascending. The returned slice is the
// canonical chronological table every downstream component consumes.
func Load(path string) ([]Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}

	var file corpusFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
	}

	records := Clean(file.Data)
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: %s: %w", path, ErrEmptyCorpus)
	}

	monitoring.Logf("dataset: loaded %d records (%d dropped)", len(records), len(file.Data)-len(records))
	return records, nil
}

// Clean filters out records with non-positive unit rates and sorts the rest
// chronologically. It is exposed separately so tests and alternative loaders
// can reuse the corpus invariants without a file on disk.
func Clean(in []Record) []Record {
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if r.UnitRate > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveTime().Before(out[j].EffectiveTime())
	})
	return out
}
