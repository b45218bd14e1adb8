package dataset

// Default rates substituted when a record omits a field. These mirror the
// revision-register conventions the corpus was exported under.
const (
	DefaultCommercialRate  = 3000
	DefaultFloor1Rate      = 3500
	DefaultOtherFloorRate  = 3200
	DefaultPreRevisionRate = 40000
	DefaultUnitRate        = 40000
)

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// CommercialRateValue returns the commercial rate, defaulted when absent.
func (r Record) CommercialRateValue() float64 {
	return orDefault(r.CommercialRate, DefaultCommercialRate)
}

// Floor1RateValue returns the floor-1 completion rate, defaulted when absent.
func (r Record) Floor1RateValue() float64 {
	return orDefault(r.Floor1Rate, DefaultFloor1Rate)
}

// OtherFloorRateValue returns the other-floor completion rate, defaulted when absent.
func (r Record) OtherFloorRateValue() float64 {
	return orDefault(r.OtherFloorRate, DefaultOtherFloorRate)
}

// PreRevisionRateValue returns the pre-revision unit rate, defaulted when absent.
func (r Record) PreRevisionRateValue() float64 {
	return orDefault(r.PreRevisionRate, DefaultPreRevisionRate)
}
