package insight

// Thresholds are the tunable cutoffs behind the conflict heuristics and the
// resolver. They live in one struct so deployments can adjust them through
// config without touching control flow.
type Thresholds struct {
	// SmartMoneyLow / SmartMoneyHigh bound the smart-money score band used by
	// the regime mismatch heuristic.
	SmartMoneyLow  float64
	SmartMoneyHigh float64

	// PropNoiseRatio is the share of total absolute flow above which prop
	// desk activity drowns out the other signals.
	PropNoiseRatio float64

	// RegimeConfidenceFloor is the regime confidence below which bank-led
	// sector leadership is treated as defensive rather than bullish.
	RegimeConfidenceFloor float64

	// DivergenceScore is the strength score magnitude (see Strength.Score)
	// beyond which an investor class counts as strongly committed.
	DivergenceScore int

	// ConfidencePenaltyHigh / ConfidencePenaltyMedium are subtracted from the
	// mean input confidence when conflicts of that level are present.
	ConfidencePenaltyHigh   float64
	ConfidencePenaltyMedium float64

	// ConvictionHigh / ConvictionMedium bucket confidence into conviction.
	ConvictionHigh   float64
	ConvictionMedium float64

	// DriverFloor is the minimum deviation-from-neutral (0-100 scale) an axis
	// needs to qualify as primary driver.
	DriverFloor float64
}

// DefaultThresholds returns the production tuning. The penalty magnitudes and
// tally weights are deliberately conservative; they are meant to be revisited
// against recorded verdict history.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SmartMoneyLow:           40,
		SmartMoneyHigh:          60,
		PropNoiseRatio:          0.40,
		RegimeConfidenceFloor:   60,
		DivergenceScore:         2,
		ConfidencePenaltyHigh:   25,
		ConfidencePenaltyMedium: 10,
		ConvictionHigh:          70,
		ConvictionMedium:        40,
		DriverFloor:             10,
	}
}
