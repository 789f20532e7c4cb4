package insight

import (
	"fmt"
	"math"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

// Detector evaluates six fixed heuristics against one cycle's three signals.
// Every heuristic that fires is reported; none suppresses another. Detection
// is pure: identical inputs produce identical conflicts in identical order.
type Detector struct {
	th Thresholds
}

func NewDetector(th Thresholds) *Detector {
	return &Detector{th: th}
}

// Detect runs all heuristics and aggregates the result. Each check is
// null-safe: missing investor entries, empty leader lists, or an absent
// signal skip that single heuristic instead of firing on partial data.
func (d *Detector) Detect(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal) domain.ConflictDetectionResult {
	result := domain.ConflictDetectionResult{
		Conflicts:     []domain.Conflict{},
		ConflictLevel: domain.SeverityNone,
	}

	if c, ok := d.checkRegimeSmartMoney(regime, smart); ok {
		result.Conflicts = append(result.Conflicts, c)
	}
	if c, ok := d.checkRegimeSector(regime, sector); ok {
		result.Conflicts = append(result.Conflicts, c)
	}
	if c, ok := d.checkForeignDomestic(smart); ok {
		result.Conflicts = append(result.Conflicts, c)
	}
	if c, ok := d.checkPropNoise(smart); ok {
		result.Conflicts = append(result.Conflicts, c)
	}
	if c, ok := d.checkBankDefensive(regime, sector); ok {
		result.Conflicts = append(result.Conflicts, c)
	}
	if c, ok := d.checkSmartMoneyInternal(smart); ok {
		result.Conflicts = append(result.Conflicts, c)
	}

	for _, c := range result.Conflicts {
		result.ConflictLevel = domain.MaxSeverity(result.ConflictLevel, c.Severity)
		if c.Severity == domain.SeverityHigh {
			result.HasCriticalConflict = true
		}
	}
	return result
}

// checkRegimeSmartMoney flags a regime that institutional flow refuses to
// confirm. Risk-On against a weak smart-money score is the most dangerous
// disagreement; the inverse reads as a possible early bottom.
func (d *Detector) checkRegimeSmartMoney(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal) (domain.Conflict, bool) {
	if regime == nil || smart == nil {
		return domain.Conflict{}, false
	}

	score := smart.Score
	detail := domain.ConflictDetail{
		RegimeType:      regime.Type,
		SmartMoneyScore: &score,
	}

	if regime.Type == domain.RegimeRiskOn && smart.Score < d.th.SmartMoneyLow {
		return domain.Conflict{
			Type:     domain.ConflictRegimeSmartMoney,
			Severity: domain.SeverityHigh,
			Description: fmt.Sprintf("Market regime is Risk-On but the smart money score is %.0f, below the %.0f confirmation level",
				smart.Score, d.th.SmartMoneyLow),
			Signals: []domain.SignalName{domain.SignalRegime, domain.SignalSmartMoney},
			Impact:  "Institutional flow is not confirming the regime. Upside calls built on regime alone are unreliable until flow turns.",
			Detail:  detail,
		}, true
	}

	if regime.Type == domain.RegimeRiskOff && smart.Score > d.th.SmartMoneyHigh {
		return domain.Conflict{
			Type:     domain.ConflictRegimeSmartMoney,
			Severity: domain.SeverityMedium,
			Description: fmt.Sprintf("Market regime is Risk-Off but the smart money score is %.0f, above the %.0f level",
				smart.Score, d.th.SmartMoneyHigh),
			Signals: []domain.SignalName{domain.SignalRegime, domain.SignalSmartMoney},
			Impact:  "Institutions are accumulating into a defensive regime. Possible early-bottom signal rather than a risk warning.",
			Detail:  detail,
		}, true
	}

	return domain.Conflict{}, false
}

// checkRegimeSector flags defensive sector leadership that contradicts (or
// merely restates) the regime call.
func (d *Detector) checkRegimeSector(regime *domain.RegimeSignal, sector *domain.SectorRotationSignal) (domain.Conflict, bool) {
	if regime == nil || sector == nil || len(sector.Leadership.Leaders) == 0 {
		return domain.Conflict{}, false
	}

	var defensive []string
	for _, leader := range sector.Leadership.Leaders {
		if leader.Sector.Category() == domain.SectorDefensive {
			defensive = append(defensive, leader.Sector.Name)
		}
	}
	// Defensive names must hold the majority of leader slots to count.
	if len(defensive)*2 < len(sector.Leadership.Leaders) {
		return domain.Conflict{}, false
	}

	detail := domain.ConflictDetail{RegimeType: regime.Type, Sectors: defensive}

	switch regime.Type {
	case domain.RegimeRiskOff:
		return domain.Conflict{
			Type:     domain.ConflictRegimeSector,
			Severity: domain.SeverityMedium,
			Description: fmt.Sprintf("Defensive sectors lead (%d of %d leaders) while the regime is Risk-Off",
				len(defensive), len(sector.Leadership.Leaders)),
			Signals: []domain.SignalName{domain.SignalRegime, domain.SignalSector},
			Impact:  "Leadership confirms defensive positioning, not a bullish rotation. Treat sector strength as shelter-seeking.",
			Detail:  detail,
		}, true
	case domain.RegimeRiskOn:
		return domain.Conflict{
			Type:     domain.ConflictRegimeSector,
			Severity: domain.SeverityMedium,
			Description: fmt.Sprintf("Defensive sectors lead (%d of %d leaders) despite a Risk-On regime",
				len(defensive), len(sector.Leadership.Leaders)),
			Signals: []domain.SignalName{domain.SignalRegime, domain.SignalSector},
			Impact:  "Rotation into risk may be premature. Defensive leadership under Risk-On suggests conviction has not broadened.",
			Detail:  detail,
		}, true
	}

	return domain.Conflict{}, false
}

// checkForeignDomestic flags strongly opposed foreign and domestic flow.
// Foreign flow leads this market by one to three sessions, so foreign buying
// against domestic selling is the most actionable divergence; the mirror
// reads as contrarian retail positioning and rates lower.
func (d *Detector) checkForeignDomestic(smart *domain.SmartMoneySignal) (domain.Conflict, bool) {
	foreign, ok := smart.Investor(domain.InvestorForeign)
	if !ok {
		return domain.Conflict{}, false
	}
	fScore := foreign.Strength.Score()
	fNet := foreign.TodayNet

	for _, class := range []domain.InvestorClass{domain.InvestorRetail, domain.InvestorProp} {
		dom, ok := smart.Investor(class)
		if !ok {
			continue
		}
		dScore := dom.Strength.Score()
		dNet := dom.TodayNet
		detail := domain.ConflictDetail{
			ForeignStrength:  foreign.Strength,
			ForeignNet:       &fNet,
			DomesticClass:    class,
			DomesticStrength: dom.Strength,
			DomesticNet:      &dNet,
		}

		if fScore > d.th.DivergenceScore && dScore < -d.th.DivergenceScore {
			return domain.Conflict{
				Type:     domain.ConflictForeignDomestic,
				Severity: domain.SeverityHigh,
				Description: fmt.Sprintf("Foreign investors are %s (%+.0fM THB) while %s is %s (%+.0fM THB)",
					foreign.Strength, fNet, class, dom.Strength, dNet),
				Signals: []domain.SignalName{domain.SignalForeign, domain.SignalName(class)},
				Impact:  "Foreign flow leads by 1-3 sessions. Strong foreign buying against domestic selling usually resolves in the foreign direction.",
				Detail:  detail,
			}, true
		}

		if fScore < -d.th.DivergenceScore && dScore > d.th.DivergenceScore {
			return domain.Conflict{
				Type:     domain.ConflictForeignDomestic,
				Severity: domain.SeverityMedium,
				Description: fmt.Sprintf("Foreign investors are %s (%+.0fM THB) while %s is %s (%+.0fM THB)",
					foreign.Strength, fNet, class, dom.Strength, dNet),
				Signals: []domain.SignalName{domain.SignalForeign, domain.SignalName(class)},
				Impact:  "Domestic buying against foreign selling. Retail tends to act contrarian here; weight the foreign side.",
				Detail:  detail,
			}, true
		}
	}

	return domain.Conflict{}, false
}

// checkPropNoise flags sessions where proprietary desks account for an
// outsized share of total flow, which makes every directional signal suspect
// regardless of its sign.
func (d *Detector) checkPropNoise(smart *domain.SmartMoneySignal) (domain.Conflict, bool) {
	var total float64
	for _, class := range domain.InvestorClasses {
		flow, ok := smart.Investor(class)
		if !ok {
			return domain.Conflict{}, false
		}
		total += math.Abs(flow.TodayNet)
	}
	if total == 0 {
		return domain.Conflict{}, false
	}

	prop, _ := smart.Investor(domain.InvestorProp)
	share := math.Abs(prop.TodayNet) / total
	if share <= d.th.PropNoiseRatio {
		return domain.Conflict{}, false
	}

	return domain.Conflict{
		Type:     domain.ConflictPropNoise,
		Severity: domain.SeverityHigh,
		Description: fmt.Sprintf("Prop trading accounts for %.0f%% of total flow, above the %.0f%% noise threshold",
			share*100, d.th.PropNoiseRatio*100),
		Signals: []domain.SignalName{domain.SignalProp},
		Impact:  "Desk activity this large distorts every flow-derived signal. Wait for clearer positioning.",
		Detail:  domain.ConflictDetail{PropShare: &share},
	}, true
}

// checkBankDefensive flags bank-led leadership when the regime is defensive
// or weakly held. Banks carry a large index weight, so their leadership alone
// does not imply broad risk appetite.
func (d *Detector) checkBankDefensive(regime *domain.RegimeSignal, sector *domain.SectorRotationSignal) (domain.Conflict, bool) {
	if regime == nil || sector == nil {
		return domain.Conflict{}, false
	}

	var bank string
	for _, leader := range sector.Leadership.Leaders {
		if leader.Sector.IsFinancial() {
			bank = leader.Sector.Name
			break
		}
	}
	if bank == "" {
		return domain.Conflict{}, false
	}
	if regime.Type != domain.RegimeRiskOff && regime.Confidence >= d.th.RegimeConfidenceFloor {
		return domain.Conflict{}, false
	}

	confidence := regime.Confidence
	return domain.Conflict{
		Type:     domain.ConflictBankDefensive,
		Severity: domain.SeverityMedium,
		Description: fmt.Sprintf("%s leads the market while the regime is %s at %.0f%% confidence",
			bank, regime.Type, regime.Confidence),
		Signals: []domain.SignalName{domain.SignalRegime, domain.SignalSector},
		Impact:  "Bank leadership under a weak or defensive regime reflects index weight, not broad risk appetite.",
		Detail: domain.ConflictDetail{
			RegimeType:       regime.Type,
			RegimeConfidence: &confidence,
			Sectors:          []string{bank},
		},
	}, true
}

// checkSmartMoneyInternal flags foreign and institution flow pointing hard in
// opposite directions. Foreign leads institutions by a session or two here,
// so a persistent contradiction means one of the reads is stale.
func (d *Detector) checkSmartMoneyInternal(smart *domain.SmartMoneySignal) (domain.Conflict, bool) {
	foreign, okF := smart.Investor(domain.InvestorForeign)
	institution, okI := smart.Investor(domain.InvestorInstitution)
	if !okF || !okI {
		return domain.Conflict{}, false
	}

	fScore := foreign.Strength.Score()
	iScore := institution.Strength.Score()
	opposed := (fScore > d.th.DivergenceScore && iScore < -d.th.DivergenceScore) ||
		(fScore < -d.th.DivergenceScore && iScore > d.th.DivergenceScore)
	if !opposed {
		return domain.Conflict{}, false
	}

	fNet := foreign.TodayNet
	iNet := institution.TodayNet
	return domain.Conflict{
		Type:     domain.ConflictSmartMoneyInternal,
		Severity: domain.SeverityMedium,
		Description: fmt.Sprintf("Foreign investors are %s while local institutions are %s",
			foreign.Strength, institution.Strength),
		Signals: []domain.SignalName{domain.SignalForeign, domain.SignalInstitution},
		Impact:  "Foreign flow leads institutions by 1-2 sessions. A hard split between them flags staleness in one of the reads.",
		Detail: domain.ConflictDetail{
			ForeignStrength:  foreign.Strength,
			ForeignNet:       &fNet,
			DomesticClass:    domain.InvestorInstitution,
			DomesticStrength: institution.Strength,
			DomesticNet:      &iNet,
		},
	}, true
}
