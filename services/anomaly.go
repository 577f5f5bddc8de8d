package services

// AnomalyReason classifies why a line's realized coefficient diverged
// from the expected one.
type AnomalyReason string

const (
	ReasonExcludedByPolicy   AnomalyReason = "excluded-by-policy"
	ReasonZeroCommercial     AnomalyReason = "zero-commercial"
	ReasonCoefficientTooLow  AnomalyReason = "coefficient-too-low"
	ReasonCoefficientTooHigh AnomalyReason = "coefficient-too-high"
	ReasonUnknown            AnomalyReason = "unknown"
)

// DefaultAnomalyTolerance is the ratio tolerance beyond which a
// divergence is recorded.
const DefaultAnomalyTolerance = 0.001

// Anomaly is one recorded divergence. Purely observational: it never
// alters a computed result.
type Anomaly struct {
	LineID              string        `json:"lineId"`
	LineName            string        `json:"lineName"`
	Category            Category      `json:"category"`
	CostCategory        string        `json:"costCategory"`
	BaseAmount          float64       `json:"baseAmount"`
	CommercialAmount    float64       `json:"commercialAmount"`
	RealizedCoefficient float64       `json:"realizedCoefficient"`
	ExpectedCoefficient float64       `json:"expectedCoefficient"`
	Excluded            bool          `json:"excluded"`
	TaxPercent          float64       `json:"taxPercent"`
	Reason              AnomalyReason `json:"reason"`
}

// AnomalyCollector gathers coefficient divergences for subcontracted
// lines during one batch run. One instance per run.
type AnomalyCollector struct {
	tolerance float64
	anomalies []Anomaly
}

// NewAnomalyCollector returns a collector with the given ratio tolerance;
// zero or negative means DefaultAnomalyTolerance.
func NewAnomalyCollector(tolerance float64) *AnomalyCollector {
	if tolerance <= 0 {
		tolerance = DefaultAnomalyTolerance
	}
	return &AnomalyCollector{tolerance: tolerance}
}

// Observation carries everything the collector needs about one line.
// Realized is the coefficient the line currently shows (its stored,
// pre-run value); Expected is the freshly computed coefficient for the
// line's signature, exclusion state and tax included.
type Observation struct {
	LineID           string
	LineName         string
	Category         Category
	CostCategory     string
	BaseAmount       float64
	CommercialAmount float64
	Realized         float64
	Expected         float64
	Excluded         bool
	TaxPercent       float64
}

// Observe records a diagnostic when a subcontracted line's realized
// coefficient diverges from the expected one beyond the tolerance.
// Non-subcontract categories and zero-base lines are ignored. A
// correctly excluded line realizes exactly its excluded expectation and
// is therefore never flagged.
func (c *AnomalyCollector) Observe(obs Observation) {
	if !IsSubcontract(obs.Category) || obs.BaseAmount <= 0 {
		return
	}

	diff := obs.Realized - obs.Expected
	if diff >= -c.tolerance && diff <= c.tolerance {
		return
	}

	c.anomalies = append(c.anomalies, Anomaly{
		LineID:              obs.LineID,
		LineName:            obs.LineName,
		Category:            obs.Category,
		CostCategory:        obs.CostCategory,
		BaseAmount:          obs.BaseAmount,
		CommercialAmount:    obs.CommercialAmount,
		RealizedCoefficient: obs.Realized,
		ExpectedCoefficient: obs.Expected,
		Excluded:            obs.Excluded,
		TaxPercent:          obs.TaxPercent,
		Reason:              classifyAnomaly(obs, diff),
	})
}

func classifyAnomaly(obs Observation, diff float64) AnomalyReason {
	switch {
	case obs.CommercialAmount == 0 && obs.Realized == 0:
		return ReasonZeroCommercial
	case obs.Excluded:
		return ReasonExcludedByPolicy
	case diff < 0:
		return ReasonCoefficientTooLow
	case diff > 0:
		return ReasonCoefficientTooHigh
	default:
		return ReasonUnknown
	}
}

// Anomalies returns everything recorded so far.
func (c *AnomalyCollector) Anomalies() []Anomaly {
	return c.anomalies
}
