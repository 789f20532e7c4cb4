package insight

import (
	"fmt"
	"math"
	"strings"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

// Resolver turns the three raw signals plus the detector's output into one
// DataInsight. Like the detector it is pure and stateless; identical inputs
// yield byte-identical output.
type Resolver struct {
	th       Thresholds
	detector *Detector
}

func NewResolver(th Thresholds) *Resolver {
	return &Resolver{th: th, detector: NewDetector(th)}
}

// Resolve runs detection and resolution in one call. It returns nil only when
// all three inputs are absent; partial absence degrades toward a NEUTRAL,
// low-conviction insight whose explanation names the missing inputs.
func (r *Resolver) Resolve(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal) *domain.DataInsight {
	detection := r.detector.Detect(regime, smart, sector)
	return r.ResolveDetected(regime, smart, sector, detection)
}

// ResolveDetected resolves against a precomputed detection result.
func (r *Resolver) ResolveDetected(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal, detection domain.ConflictDetectionResult) *domain.DataInsight {
	if regime == nil && smart == nil && sector == nil {
		return nil
	}

	missing := missingInputs(regime, smart, sector)
	verdict := r.selectVerdict(regime, smart, sector, detection, len(missing) > 0)
	confidence := r.scoreConfidence(regime, smart, sector, detection.ConflictLevel, len(missing) > 0)
	driver := r.primaryDriver(regime, smart, sector)

	insight := &domain.DataInsight{
		Verdict:       verdict,
		Confidence:    confidence,
		Conviction:    r.bucketConviction(confidence),
		PrimaryDriver: driver,
		ConflictLevel: detection.ConflictLevel,
	}
	if top, ok := topConflict(detection); ok {
		insight.KeyConflictAlert = top.Description
	}
	insight.ConflictingSignals = conflictingAxes(regime, smart, sector, detection)
	insight.Explanation = r.composeExplanation(regime, smart, sector, detection, missing)
	insight.ActionableTakeaway = r.composeTakeaway(verdict, driver, smart, sector)
	return insight
}

// selectVerdict applies the precedence contract: a high-severity conflict
// always overrides the directional tally, resolving to WAIT when the conflict
// is noise (prop desks) and CAUTION when the signals are directionally
// opposed. Without a high conflict the three axes vote.
func (r *Resolver) selectVerdict(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal, detection domain.ConflictDetectionResult, degraded bool) domain.Verdict {
	if detection.HasCriticalConflict {
		for _, c := range detection.Conflicts {
			if c.Severity != domain.SeverityHigh {
				continue
			}
			if c.Type == domain.ConflictPropNoise {
				return domain.VerdictWait
			}
			return domain.VerdictCaution
		}
	}

	if degraded {
		return domain.VerdictNeutral
	}

	rv := regimeVote(regime)
	sv := smartVote(smart)
	cv := sectorVote(sector)

	switch {
	case rv > 0 && sv > 0 && cv > 0:
		return domain.VerdictProceed
	case rv < 0 && sv < 0 && cv < 0:
		return domain.VerdictCaution
	case rv == 0 && sv == 0 && cv == 0:
		return domain.VerdictNeutral
	default:
		return domain.VerdictWait
	}
}

func regimeVote(regime *domain.RegimeSignal) int {
	if regime == nil {
		return 0
	}
	switch regime.Type {
	case domain.RegimeRiskOn:
		return 1
	case domain.RegimeRiskOff:
		return -1
	}
	return 0
}

func smartVote(smart *domain.SmartMoneySignal) int {
	if smart == nil {
		return 0
	}
	score := smart.CombinedSignal.Score()
	switch {
	case score > 0:
		return 1
	case score < 0:
		return -1
	}
	return 0
}

// sectorVote reads rotation direction from who leads: non-defensive leaders
// outperforming the market is a risk-appetite vote, defensive-dominated
// leadership a retreat.
func sectorVote(sector *domain.SectorRotationSignal) int {
	if sector == nil || len(sector.Leadership.Leaders) == 0 {
		return 0
	}
	defensive := 0
	var sum float64
	for _, leader := range sector.Leadership.Leaders {
		if leader.Sector.Category() == domain.SectorDefensive {
			defensive++
		}
		sum += leader.VsMarket
	}
	if defensive*2 >= len(sector.Leadership.Leaders) {
		return -1
	}
	if sum > 0 {
		return 1
	}
	if sum < 0 {
		return -1
	}
	return 0
}

// scoreConfidence averages the three input confidences (sector confidence is
// its concentration reading), subtracts a penalty scaled by the aggregate
// conflict level and clamps to [0,100]. A degraded resolution is additionally
// capped below the medium-conviction cutoff so missing inputs can never
// present as a confident call.
func (r *Resolver) scoreConfidence(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal, level domain.Severity, degraded bool) float64 {
	var sum float64
	if regime != nil {
		sum += regime.Confidence
	}
	if smart != nil {
		sum += smart.Confidence
	}
	if sector != nil {
		sum += sector.Concentration
	}
	confidence := sum / 3

	switch level {
	case domain.SeverityHigh:
		confidence -= r.th.ConfidencePenaltyHigh
	case domain.SeverityMedium:
		confidence -= r.th.ConfidencePenaltyMedium
	}

	if degraded && confidence >= r.th.ConvictionMedium {
		confidence = r.th.ConvictionMedium - 1
	}
	return math.Max(0, math.Min(100, confidence))
}

func (r *Resolver) bucketConviction(confidence float64) domain.Conviction {
	switch {
	case confidence >= r.th.ConvictionHigh:
		return domain.ConvictionHigh
	case confidence >= r.th.ConvictionMedium:
		return domain.ConvictionMedium
	}
	return domain.ConvictionLow
}

// primaryDriver picks the axis deviating furthest from neutral on a common
// 0-100 scale. Ties resolve in lead-indicator order: foreign flow first, then
// smart money, regime, sector strength. Everything under the floor means no
// single axis is driving the read.
func (r *Resolver) primaryDriver(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal) domain.PrimaryDriver {
	type candidate struct {
		driver    domain.PrimaryDriver
		deviation float64
	}
	candidates := []candidate{
		{domain.DriverForeignFlow, foreignDeviation(smart)},
		{domain.DriverSmartMoney, smartDeviation(smart)},
		{domain.DriverMarketRegime, regimeDeviation(regime)},
		{domain.DriverSectorStrength, sectorDeviation(sector)},
	}

	best := candidate{driver: domain.DriverNone}
	for _, c := range candidates {
		if c.deviation > best.deviation {
			best = c
		}
	}
	if best.deviation < r.th.DriverFloor {
		return domain.DriverNone
	}
	return best.driver
}

func foreignDeviation(smart *domain.SmartMoneySignal) float64 {
	foreign, ok := smart.Investor(domain.InvestorForeign)
	if !ok {
		return 0
	}
	return math.Abs(float64(foreign.Strength.Score())) / 3 * 100
}

func smartDeviation(smart *domain.SmartMoneySignal) float64 {
	if smart == nil {
		return 0
	}
	return math.Abs(smart.Score-50) * 2
}

func regimeDeviation(regime *domain.RegimeSignal) float64 {
	if regime == nil || regime.Type == domain.RegimeNeutral {
		return 0
	}
	return regime.Confidence
}

func sectorDeviation(sector *domain.SectorRotationSignal) float64 {
	if sector == nil || len(sector.Leadership.Leaders) == 0 {
		return 0
	}
	var sum float64
	for _, leader := range sector.Leadership.Leaders {
		sum += leader.VsMarket
	}
	avg := sum / float64(len(sector.Leadership.Leaders))
	return math.Min(100, math.Abs(avg)*10)
}

// topConflict returns the first conflict carrying the maximum severity.
// Detector emission order breaks ties, so the result is stable.
func topConflict(detection domain.ConflictDetectionResult) (domain.Conflict, bool) {
	for _, c := range detection.Conflicts {
		if c.Severity == detection.ConflictLevel {
			return c, true
		}
	}
	return domain.Conflict{}, false
}

// conflictingAxes snapshots the headline value and confidence of every input
// axis touched by at least one conflict.
func conflictingAxes(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal, detection domain.ConflictDetectionResult) map[string]domain.AxisSnapshot {
	touched := map[domain.SignalName]bool{}
	for _, c := range detection.Conflicts {
		for _, s := range c.Signals {
			touched[s] = true
		}
	}
	if len(touched) == 0 {
		return nil
	}

	axes := make(map[string]domain.AxisSnapshot)
	if touched[domain.SignalRegime] && regime != nil {
		axes[string(domain.SignalRegime)] = domain.AxisSnapshot{
			Value:      string(regime.Type),
			Confidence: regime.Confidence,
		}
	}
	if (touched[domain.SignalSmartMoney] || touched[domain.SignalProp] || touched[domain.SignalInstitution] || touched[domain.SignalRetail]) && smart != nil {
		axes[string(domain.SignalSmartMoney)] = domain.AxisSnapshot{
			Value:      string(smart.CombinedSignal),
			Confidence: smart.Confidence,
		}
	}
	if touched[domain.SignalForeign] && smart != nil {
		if foreign, ok := smart.Investor(domain.InvestorForeign); ok {
			axes[string(domain.SignalForeign)] = domain.AxisSnapshot{
				Value:      string(foreign.Strength),
				Confidence: smart.Confidence,
			}
		}
	}
	if touched[domain.SignalSector] && sector != nil {
		axes[string(domain.SignalSector)] = domain.AxisSnapshot{
			Value:      sector.Pattern,
			Confidence: sector.Concentration,
		}
	}
	if len(axes) == 0 {
		return nil
	}
	return axes
}

// composeExplanation concatenates the per-axis context sentences in a fixed
// order, then the most severe conflict, then any missing inputs.
func (r *Resolver) composeExplanation(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal, detection domain.ConflictDetectionResult, missing []string) string {
	var parts []string
	if regime != nil {
		parts = append(parts, fmt.Sprintf("Market regime is %s at %.0f%% confidence.", regime.Type, regime.Confidence))
	}
	if smart != nil {
		parts = append(parts, fmt.Sprintf("Smart money scores %.0f (%s).", smart.Score, smart.CombinedSignal))
	}
	if sector != nil && sector.Pattern != "" {
		parts = append(parts, fmt.Sprintf("Sector rotation shows %s.", sector.Pattern))
	}
	if top, ok := topConflict(detection); ok {
		parts = append(parts, top.Description+".")
	}
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("Unavailable inputs: %s.", strings.Join(missing, ", ")))
	}
	return strings.Join(parts, " ")
}

// composeTakeaway is templated per verdict so presentation stays deterministic.
func (r *Resolver) composeTakeaway(verdict domain.Verdict, driver domain.PrimaryDriver, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal) string {
	switch verdict {
	case domain.VerdictProceed:
		if driver != domain.DriverNone {
			return fmt.Sprintf("Signals align. Continue with standard position sizing; %s is the primary driver.", driver)
		}
		return "Signals align. Continue with standard position sizing."
	case domain.VerdictCaution:
		var notes []string
		if sector != nil && len(sector.AvoidSectors) > 0 {
			notes = append(notes, fmt.Sprintf("avoid %s", strings.Join(sector.AvoidSectors, ", ")))
		}
		if weak := weakestClasses(smart); len(weak) > 0 {
			notes = append(notes, fmt.Sprintf("%s flow is selling", strings.Join(weak, " and ")))
		}
		if len(notes) > 0 {
			return fmt.Sprintf("Reduce exposure: %s.", strings.Join(notes, "; "))
		}
		return "Reduce exposure until the signals stop contradicting each other."
	case domain.VerdictWait:
		return "Signals are too ambiguous to act on. Wait for the next analysis cycle."
	default:
		return "No directional edge. Hold existing positions."
	}
}

// weakestClasses lists investor classes currently selling hard, in reporting
// order for determinism.
func weakestClasses(smart *domain.SmartMoneySignal) []string {
	var weak []string
	for _, class := range domain.InvestorClasses {
		flow, ok := smart.Investor(class)
		if !ok {
			continue
		}
		if flow.Strength.Score() <= domain.StrengthSell.Score() {
			weak = append(weak, string(class))
		}
	}
	return weak
}

func missingInputs(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal) []string {
	var missing []string
	if regime == nil {
		missing = append(missing, "market regime")
	}
	if smart == nil {
		missing = append(missing, "smart money")
	}
	if sector == nil {
		missing = append(missing, "sector rotation")
	}
	return missing
}
