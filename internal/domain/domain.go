package domain

import (
	"strings"
	"time"
)

// SupportedMarkets lists the market indices the service resolves insights for.
var SupportedMarkets = []string{"SET", "SET50", "SET100", "MAI"}

// MarketName maps a market code to its display name.
var MarketName = map[string]string{
	"SET":    "Stock Exchange of Thailand",
	"SET50":  "SET50 Index",
	"SET100": "SET100 Index",
	"MAI":    "Market for Alternative Investment",
}

// IsSupportedMarket reports whether the given market code is known.
func IsSupportedMarket(market string) bool {
	_, ok := MarketName[strings.ToUpper(strings.TrimSpace(market))]
	return ok
}

// RegimeType is the overall market risk posture.
type RegimeType string

const (
	RegimeRiskOn  RegimeType = "Risk-On"
	RegimeNeutral RegimeType = "Neutral"
	RegimeRiskOff RegimeType = "Risk-Off"
)

func (r RegimeType) IsValid() bool {
	switch r {
	case RegimeRiskOn, RegimeNeutral, RegimeRiskOff:
		return true
	}
	return false
}

// Strength is a flow conviction label attached to an investor class or to the
// combined smart-money read.
type Strength string

const (
	StrengthStrongBuy  Strength = "Strong Buy"
	StrengthBuy        Strength = "Buy"
	StrengthNeutral    Strength = "Neutral"
	StrengthSell       Strength = "Sell"
	StrengthStrongSell Strength = "Strong Sell"
)

// Score maps a strength label to a signed conviction score. This is the only
// strength-to-score mapping in the codebase; every heuristic goes through it.
// Unknown or empty labels score zero.
func (s Strength) Score() int {
	switch s {
	case StrengthStrongBuy:
		return 3
	case StrengthBuy:
		return 1
	case StrengthSell:
		return -1
	case StrengthStrongSell:
		return -3
	default:
		return 0
	}
}

func (s Strength) IsValid() bool {
	switch s {
	case StrengthStrongBuy, StrengthBuy, StrengthNeutral, StrengthSell, StrengthStrongSell:
		return true
	}
	return false
}

// RiskSignal is the smart-money view of risk appetite.
type RiskSignal string

const (
	RiskSignalOn      RiskSignal = "Risk-On"
	RiskSignalOnMild  RiskSignal = "Risk-On Mild"
	RiskSignalNeutral RiskSignal = "Neutral"
	RiskSignalOffMild RiskSignal = "Risk-Off Mild"
	RiskSignalOff     RiskSignal = "Risk-Off"
)

// InvestorClass identifies one of the four SET investor types reported daily.
type InvestorClass string

const (
	InvestorForeign     InvestorClass = "foreign"
	InvestorInstitution InvestorClass = "institution"
	InvestorRetail      InvestorClass = "retail"
	InvestorProp        InvestorClass = "prop"
)

// InvestorClasses lists all four classes in reporting order.
var InvestorClasses = []InvestorClass{InvestorForeign, InvestorInstitution, InvestorRetail, InvestorProp}

// InvestorFlow is one investor class's net flow for the day, in million THB
// (positive = net buying), plus its conviction label.
type InvestorFlow struct {
	TodayNet float64  `json:"today_net"`
	Strength Strength `json:"strength"`
}

// RegimeSignal is the snapshot produced by the upstream regime classifier.
type RegimeSignal struct {
	Type       RegimeType `json:"type"`
	Confidence float64    `json:"confidence"`
	Focus      string     `json:"focus,omitempty"`
	Caution    string     `json:"caution,omitempty"`
}

// SmartMoneySignal is the snapshot produced by the upstream institutional
// flow scorer. Investors carries all four classes; a missing entry means the
// upstream feed was incomplete and heuristics must skip checks that need it.
type SmartMoneySignal struct {
	Score          float64                        `json:"score"`
	CombinedSignal Strength                       `json:"combined_signal"`
	RiskSignal     RiskSignal                     `json:"risk_signal"`
	Confidence     float64                        `json:"confidence"`
	Investors      map[InvestorClass]InvestorFlow `json:"investors"`
	PrimaryDriver  string                         `json:"primary_driver,omitempty"`
}

// Investor returns the flow entry for a class, with ok=false when absent.
func (s *SmartMoneySignal) Investor(class InvestorClass) (InvestorFlow, bool) {
	if s == nil || s.Investors == nil {
		return InvestorFlow{}, false
	}
	flow, ok := s.Investors[class]
	return flow, ok
}

// SectorCategory buckets sectors by how they behave across regimes.
type SectorCategory string

const (
	SectorDefensive SectorCategory = "defensive"
	SectorCyclical  SectorCategory = "cyclical"
	SectorGrowth    SectorCategory = "growth"
	SectorUnknown   SectorCategory = "unknown"
)

// sectorCategoryByID keys on stable SET sector index codes rather than
// display names, which vary by locale.
var sectorCategoryByID = map[string]SectorCategory{
	"BANK":    SectorDefensive,
	"FIN":     SectorDefensive,
	"ENERG":   SectorDefensive,
	"FOOD":    SectorDefensive,
	"HELTH":   SectorDefensive,
	"UTIL":    SectorDefensive,
	"CONMAT":  SectorCyclical,
	"PROP":    SectorCyclical,
	"TRANS":   SectorCyclical,
	"AUTO":    SectorCyclical,
	"STEEL":   SectorCyclical,
	"PETRO":   SectorCyclical,
	"TOURISM": SectorCyclical,
	"ICT":     SectorGrowth,
	"ETRON":   SectorGrowth,
	"COMM":    SectorGrowth,
}

// sectorIDByKeyword resolves legacy feeds that only carry display names.
var sectorIDByKeyword = map[string]string{
	"bank":       "BANK",
	"financial":  "FIN",
	"finance":    "FIN",
	"energy":     "ENERG",
	"food":       "FOOD",
	"health":     "HELTH",
	"healthcare": "HELTH",
	"utilit":     "UTIL",
}

// SectorRef identifies a sector by stable index code plus display name.
type SectorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category resolves the sector's behavioural bucket. Lookup is by ID first;
// name keywords are a fallback for feeds that omit the code.
func (s SectorRef) Category() SectorCategory {
	if cat, ok := sectorCategoryByID[strings.ToUpper(strings.TrimSpace(s.ID))]; ok {
		return cat
	}
	name := strings.ToLower(s.Name)
	for keyword, id := range sectorIDByKeyword {
		if strings.Contains(name, keyword) {
			return sectorCategoryByID[id]
		}
	}
	return SectorUnknown
}

// IsFinancial reports whether the sector is a bank or finance index.
func (s SectorRef) IsFinancial() bool {
	switch strings.ToUpper(strings.TrimSpace(s.ID)) {
	case "BANK", "FIN":
		return true
	}
	name := strings.ToLower(s.Name)
	return strings.Contains(name, "bank") || strings.Contains(name, "financ")
}

// SectorPerformance is one sector's relative strength versus the market.
type SectorPerformance struct {
	Sector   SectorRef `json:"sector"`
	VsMarket float64   `json:"vs_market"`
}

// SectorLeadership splits sectors into current leaders and laggards.
type SectorLeadership struct {
	Leaders  []SectorPerformance `json:"leaders"`
	Laggards []SectorPerformance `json:"laggards"`
}

// SectorRotationSignal is the snapshot produced by the upstream sector
// rotation analyzer.
type SectorRotationSignal struct {
	Pattern       string           `json:"pattern"`
	Concentration float64          `json:"concentration"`
	FocusSectors  []string         `json:"focus_sectors,omitempty"`
	AvoidSectors  []string         `json:"avoid_sectors,omitempty"`
	Leadership    SectorLeadership `json:"leadership"`
}

// SignalSnapshot bundles one analysis cycle's three upstream signals for a
// market. Any pointer may be nil when the upstream feed was unavailable.
type SignalSnapshot struct {
	ID         int64                 `json:"id,omitempty"`
	Market     string                `json:"market"`
	Regime     *RegimeSignal         `json:"regime,omitempty"`
	SmartMoney *SmartMoneySignal     `json:"smart_money,omitempty"`
	Sector     *SectorRotationSignal `json:"sector_rotation,omitempty"`
	CapturedAt time.Time             `json:"captured_at"`
}

// Severity ranks how badly a conflict undermines the combined read.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Weight orders severities for max aggregation.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MaxSeverity returns the higher of two severities.
func MaxSeverity(a, b Severity) Severity {
	if b.Weight() > a.Weight() {
		return b
	}
	return a
}

// ConflictType is the fixed taxonomy of cross-signal disagreements.
type ConflictType string

const (
	ConflictRegimeSmartMoney   ConflictType = "regime_smart_money"
	ConflictRegimeSector       ConflictType = "regime_sector"
	ConflictForeignDomestic    ConflictType = "foreign_domestic"
	ConflictPropNoise          ConflictType = "prop_noise"
	ConflictBankDefensive      ConflictType = "bank_defensive"
	ConflictSmartMoneyInternal ConflictType = "smart_money_internal"
)

// SignalName identifies an input axis or investor class involved in a conflict.
type SignalName string

const (
	SignalRegime      SignalName = "regime"
	SignalSmartMoney  SignalName = "smartMoney"
	SignalSector      SignalName = "sector"
	SignalForeign     SignalName = "foreign"
	SignalDomestic    SignalName = "domestic"
	SignalInstitution SignalName = "institution"
	SignalRetail      SignalName = "retail"
	SignalProp        SignalName = "prop"
)

// ConflictDetail carries the structured values that triggered a conflict so
// the presentation layer can rebuild the message without parsing text.
type ConflictDetail struct {
	RegimeType       RegimeType    `json:"regime_type,omitempty"`
	RegimeConfidence *float64      `json:"regime_confidence,omitempty"`
	SmartMoneyScore  *float64      `json:"smart_money_score,omitempty"`
	ForeignStrength  Strength      `json:"foreign_strength,omitempty"`
	ForeignNet       *float64      `json:"foreign_net,omitempty"`
	DomesticClass    InvestorClass `json:"domestic_class,omitempty"`
	DomesticStrength Strength      `json:"domestic_strength,omitempty"`
	DomesticNet      *float64      `json:"domestic_net,omitempty"`
	PropShare        *float64      `json:"prop_share,omitempty"`
	Sectors          []string      `json:"sectors,omitempty"`
}

// Conflict is one detected disagreement between independently derived signals.
type Conflict struct {
	Type        ConflictType   `json:"type"`
	Severity    Severity       `json:"severity"`
	Description string         `json:"description"`
	Signals     []SignalName   `json:"signals"`
	Impact      string         `json:"impact"`
	Detail      ConflictDetail `json:"detail"`
}

// ConflictDetectionResult is the detector's aggregate output. Conflicts keep
// detector emission order; ConflictLevel is the max severity present.
type ConflictDetectionResult struct {
	Conflicts           []Conflict `json:"conflicts"`
	ConflictLevel       Severity   `json:"conflict_level"`
	HasCriticalConflict bool       `json:"has_critical_conflict"`
}

// Verdict is the single actionable call resolved from the three signals.
type Verdict string

const (
	VerdictProceed Verdict = "PROCEED"
	VerdictCaution Verdict = "CAUTION"
	VerdictWait    Verdict = "WAIT"
	VerdictNeutral Verdict = "NEUTRAL"
)

func (v Verdict) IsValid() bool {
	switch v {
	case VerdictProceed, VerdictCaution, VerdictWait, VerdictNeutral:
		return true
	}
	return false
}

// Conviction is confidence bucketed for display.
type Conviction string

const (
	ConvictionHigh   Conviction = "high"
	ConvictionMedium Conviction = "medium"
	ConvictionLow    Conviction = "low"
)

// PrimaryDriver names the signal most responsible for the verdict.
type PrimaryDriver string

const (
	DriverForeignFlow    PrimaryDriver = "Foreign Flow"
	DriverSmartMoney     PrimaryDriver = "Smart Money"
	DriverMarketRegime   PrimaryDriver = "Market Regime"
	DriverSectorStrength PrimaryDriver = "Sector Strength"
	DriverNone           PrimaryDriver = "None"
)

// AxisSnapshot captures one conflicting axis's headline value and confidence.
type AxisSnapshot struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// DataInsight is the resolved verdict handed to the presentation layer. It is
// computed fresh per invocation and carries no timestamps so identical inputs
// serialize to identical bytes.
type DataInsight struct {
	Verdict            Verdict                 `json:"verdict"`
	Confidence         float64                 `json:"confidence"`
	Conviction         Conviction              `json:"conviction"`
	Explanation        string                  `json:"explanation"`
	PrimaryDriver      PrimaryDriver           `json:"primary_driver"`
	ConflictLevel      Severity                `json:"conflict_level"`
	KeyConflictAlert   string                  `json:"key_conflict_alert,omitempty"`
	ConflictingSignals map[string]AxisSnapshot `json:"conflicting_signals,omitempty"`
	ActionableTakeaway string                  `json:"actionable_takeaway,omitempty"`
}

// InsightRecord is a persisted insight with its provenance.
type InsightRecord struct {
	ID         int64                   `json:"id"`
	SnapshotID int64                   `json:"snapshot_id"`
	Market     string                  `json:"market"`
	Insight    DataInsight             `json:"insight"`
	Detection  ConflictDetectionResult `json:"detection"`
	CreatedAt  time.Time               `json:"created_at"`
}

// InsightFilter narrows insight history queries.
type InsightFilter struct {
	Market  string
	Verdict Verdict
	Limit   int
}
