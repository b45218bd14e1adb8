// Package predictor orchestrates one price prediction: reference statistics
// for the location, the trained regressor when one is loaded (or the average
// unit rate when not), and the confidence tier and price range over the
// resulting total.
package predictor

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/keystone-data/landrate/internal/features"
	"github.com/keystone-data/landrate/internal/regressor"
	"github.com/keystone-data/landrate/internal/sequence"
	"github.com/keystone-data/landrate/internal/stats"
)

// Model identifiers reported in responses so callers can tell a learned
// prediction from the statistical fallback.
const (
	ModelNeural  = "NEURAL"
	ModelAverage = "AVERAGE"
)

const maxComparables = 5

// defaultArea is substituted when the request omits the area or supplies a
// non-positive one.
const defaultArea = 1000

// Request is one prediction request. District is informational only; the
// door identifier uses the WARD-BLOCK-DOOR[/building] register format.
type Request struct {
	District     string  `json:"district"`
	Mandal       string  `json:"mandal"`
	Village      string  `json:"village"`
	DoorID       string  `json:"tr_door_no"`
	Area         float64 `json:"area"`
	PropertyType string  `json:"propertyType"`
}

// PriceRange bounds the predicted total price.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Factors echoes the inputs and derived averages a prediction was based on.
type Factors struct {
	District        string  `json:"district"`
	Mandal          string  `json:"mandal"`
	Village         string  `json:"village"`
	DoorID          string  `json:"tr_door_no"`
	Area            float64 `json:"area"`
	PropertyType    string  `json:"propertyType"`
	Ward            int     `json:"ward_no"`
	Block           int     `json:"block_no"`
	Door            int     `json:"door_no"`
	AvgCommRate     int64   `json:"avgCommRate"`
	AvgFloor1       int64   `json:"avgFloor1"`
	AvgFloorOther   int64   `json:"avgFloorOth"`
	LocationMatches int     `json:"locationMatches"`
}

// Comparable is one matched historical property, reduced for listing.
type Comparable struct {
	PropertyID     string  `json:"propertyId"`
	Location       string  `json:"location"`
	District       string  `json:"district"`
	Mandal         string  `json:"mandal"`
	DoorID         string  `json:"tr_door_no"`
	UnitRate       float64 `json:"unit_rate"`
	CommercialRate float64 `json:"comm_rate"`
}

// Result is a completed prediction. All derived prices are rounded to
// integers here, at the response boundary, and nowhere upstream.
type Result struct {
	PredictionID   string       `json:"predictionId"`
	PredictedPrice int64        `json:"predictedPrice"`
	PriceRange     PriceRange   `json:"priceRange"`
	PricePerSqft   int64        `json:"pricePerSqFt"`
	Confidence     string       `json:"confidence"`
	DataPoints     int          `json:"dataPoints"`
	ModelUsed      string       `json:"modelUsed"`
	Factors        Factors      `json:"factors"`
	Comparables    []Comparable `json:"comparableProperties"`
}

// Service serves predictions over an immutable corpus index and, when
// available, a trained model. With a nil regressor it runs in fallback-only
// mode. All fields are read-only after construction, so one Service is safe
// for concurrent requests.
type Service struct {
	index  *stats.Index
	reg    *regressor.Regressor
	enc    *features.Encoder
	seqLen int
}

// New builds a service. reg and enc may both be nil for fallback-only mode;
// they must otherwise come from the same trained bundle.
func New(index *stats.Index, reg *regressor.Regressor, enc *features.Encoder, seqLen int) *Service {
	if seqLen < 1 {
		seqLen = sequence.DefaultLength
	}
	return &Service{index: index, reg: reg, enc: enc, seqLen: seqLen}
}

// ModelLoaded reports whether a trained regressor is serving predictions.
func (s *Service) ModelLoaded() bool {
	return s.reg != nil && s.reg.Trained() && s.enc != nil && s.enc.Fitted()
}

// DatasetRecords reports the corpus size backing reference statistics.
func (s *Service) DatasetRecords() int { return s.index.RecordCount() }

// SearchLocations proxies the corpus location search.
func (s *Service) SearchLocations(query string, limit int) (mandals, villages []string) {
	return s.index.SearchLocations(query, limit)
}

// Predict runs the full prediction pipeline for one request.
func (s *Service) Predict(req Request) (*Result, error) {
	ref, err := s.index.Lookup(req.Mandal, req.Village)
	if err != nil {
		return nil, fmt.Errorf("predictor: no reference data for %q/%q: %w", req.Mandal, req.Village, err)
	}

	ward, block, door := ParseDoorID(req.DoorID)
	area := req.Area
	if area <= 0 {
		area = defaultArea
	}

	unitRate := ref.AvgUnitRate
	modelUsed := ModelAverage
	if s.ModelLoaded() {
		predicted, err := s.predictUnitRate(req, ref, ward, block, door)
		switch {
		case err == nil:
			unitRate = predicted
			modelUsed = ModelNeural
		case err == regressor.ErrModelNotReady:
			// Keep the statistical fallback; never surface this to callers.
		default:
			return nil, fmt.Errorf("predictor: %w", err)
		}
	}

	// Commercial property pricing uses the commercial reference rate rather
	// than the learned residential unit rate.
	perArea := unitRate
	if req.PropertyType == "COMMERCIAL" {
		perArea = ref.AvgCommercialRate
	}
	total := perArea * area

	confidence := s.index.Confidence(ref.MatchCount())
	lo, hi := s.index.Range(total, confidence)

	return &Result{
		PredictionID:   uuid.NewString(),
		PredictedPrice: round(total),
		PriceRange:     PriceRange{Min: round(lo), Max: round(hi)},
		PricePerSqft:   round(perArea),
		Confidence:     confidence,
		DataPoints:     ref.MatchCount(),
		ModelUsed:      modelUsed,
		Factors: Factors{
			District:        req.District,
			Mandal:          req.Mandal,
			Village:         req.Village,
			DoorID:          req.DoorID,
			Area:            area,
			PropertyType:    req.PropertyType,
			Ward:            ward,
			Block:           block,
			Door:            door,
			AvgCommRate:     round(ref.AvgCommercialRate),
			AvgFloor1:       round(ref.AvgFloor1Rate),
			AvgFloorOther:   round(ref.AvgOtherFloorRate),
			LocationMatches: ref.MatchCount(),
		},
		Comparables: comparables(ref),
	}, nil
}

func (s *Service) predictUnitRate(req Request, ref stats.Reference, ward, block, door int) (float64, error) {
	vec, err := s.enc.Transform(features.Observation{
		Mandal:          req.Mandal,
		Village:         req.Village,
		Ward:            ward,
		Block:           block,
		Door:            door,
		CommercialRate:  ref.AvgCommercialRate,
		Floor1Rate:      ref.AvgFloor1Rate,
		OtherFloorRate:  ref.AvgOtherFloorRate,
		PreRevisionRate: ref.AvgPreRevisionRate,
	})
	if err != nil {
		return 0, err
	}
	return s.reg.Predict(sequence.ForInference(vec, s.seqLen))
}

func comparables(ref stats.Reference) []Comparable {
	n := len(ref.Matches)
	if n > maxComparables {
		n = maxComparables
	}
	out := make([]Comparable, 0, n)
	for _, r := range ref.Matches[:n] {
		var comm float64
		if r.CommercialRate != nil {
			comm = *r.CommercialRate
		}
		out = append(out, Comparable{
			PropertyID:     r.DoorID,
			Location:       fmt.Sprintf("%s, %s", r.Village, r.Mandal),
			District:       r.District,
			Mandal:         r.Mandal,
			DoorID:         r.DoorID,
			UnitRate:       r.UnitRate,
			CommercialRate: comm,
		})
	}
	return out
}

func round(v float64) int64 { return int64(math.Round(v)) }
