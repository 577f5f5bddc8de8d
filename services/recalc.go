package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Tactic is a named set of markup sequences, one per category, immutable
// at evaluation time. BaseCostOverride optionally carries a per-category
// expected base cost used for diagnostics only.
type Tactic struct {
	ID               string
	Name             string
	Sequences        map[Category][]Step
	BaseCostOverride map[Category]float64
}

// Line is one cost line of a tender as the engine sees it. The three
// Commercial*/Coefficient fields hold the stored pre-run values; the
// batch run overwrites them through the line store.
type Line struct {
	ID                 string
	Name               string
	Category           Category
	MaterialSubtype    MaterialSubtype
	BaseAmount         float64
	CostCategory       string
	CommercialMaterial float64
	CommercialWork     float64
	Coefficient        float64
}

// LineResult is what the engine writes back for one line.
type LineResult struct {
	Material    float64
	Work        float64
	Coefficient float64
}

// Collaborator contracts. A single PocketBase-backed Store implements all
// of them; tests substitute in-memory fakes.
type (
	// TacticSource loads a tactic by id. A missing tactic is an error
	// and fatal for the whole run.
	TacticSource interface {
		LoadTactic(tacticID string) (*Tactic, error)
	}

	// ParameterSource returns the merged parameter map for a tender.
	// Implementations must fall back to the well-known defaults, never
	// return an empty map.
	ParameterSource interface {
		LoadParameters(tenderID string) (map[string]float64, error)
	}

	// PolicySource returns the tender's distribution policy, or nil when
	// none is configured.
	PolicySource interface {
		LoadPolicy(tenderID string) (DistributionPolicy, error)
	}

	// ExclusionSource returns the tender's growth exclusions; the zero
	// value means nothing is excluded.
	ExclusionSource interface {
		LoadExclusions(tenderID string) (Exclusions, error)
	}

	// LineStore loads the tender's full line set (exhausting any store
	// pagination) and persists per-line results.
	LineStore interface {
		LoadLines(tenderID string) ([]Line, error)
		WriteResult(lineID string, res LineResult) error
	}
)

// LineError records a single line's failure without aborting the batch.
type LineError struct {
	LineID  string `json:"lineId"`
	Message string `json:"message"`
}

// RecalcReport summarizes one batch run.
type RecalcReport struct {
	TotalLines     int         `json:"totalLines"`
	Succeeded      int         `json:"succeeded"`
	Failed         int         `json:"failed"`
	Errors         []LineError `json:"errors"`
	ErrorsOmitted  int         `json:"errorsOmitted"`
	Anomalies      []Anomaly   `json:"anomalies"`
	DistinctCoeffs int         `json:"distinctCoefficients"`
}

// RecalcOptions tunes a Recalculator. Zero values select the defaults.
type RecalcOptions struct {
	// PersistBatchSize is the number of line writes dispatched per
	// persistence batch. Default 200.
	PersistBatchSize int
	// PersistConcurrency bounds concurrent writes within one batch.
	// Default 8.
	PersistConcurrency int
	// MaxSurfacedErrors caps the per-line errors carried in the report;
	// the failure count stays exact. Default 25.
	MaxSurfacedErrors int
	// AnomalyTolerance is the coefficient ratio tolerance.
	// Default 0.001.
	AnomalyTolerance float64
}

const (
	defaultPersistBatchSize   = 200
	defaultPersistConcurrency = 8
	defaultMaxSurfacedErrors  = 25
)

// Recalculator drives the markup engine across an entire tender. Each
// Run constructs a fresh coefficient cache and anomaly collector, so
// concurrent runs for different tenders never share state.
type Recalculator struct {
	tactics    TacticSource
	params     ParameterSource
	policies   PolicySource
	exclusions ExclusionSource
	lines      LineStore
	opts       RecalcOptions
}

// NewRecalculator wires the orchestrator to its collaborators.
func NewRecalculator(tactics TacticSource, params ParameterSource, policies PolicySource, exclusions ExclusionSource, lines LineStore, opts RecalcOptions) *Recalculator {
	if opts.PersistBatchSize <= 0 {
		opts.PersistBatchSize = defaultPersistBatchSize
	}
	if opts.PersistConcurrency <= 0 {
		opts.PersistConcurrency = defaultPersistConcurrency
	}
	if opts.MaxSurfacedErrors <= 0 {
		opts.MaxSurfacedErrors = defaultMaxSurfacedErrors
	}
	return &Recalculator{
		tactics:    tactics,
		params:     params,
		policies:   policies,
		exclusions: exclusions,
		lines:      lines,
		opts:       opts,
	}
}

type pendingWrite struct {
	lineID string
	result LineResult
}

// Run recalculates every line of the tender with the given tactic.
// Context loading failures are fatal and return an error; per-line
// evaluation and persistence failures are collected in the report and
// never abort the batch. Cancelling ctx stops new persistence batches
// from being issued; the in-flight batch completes.
func (r *Recalculator) Run(ctx context.Context, tenderID, tacticID string) (*RecalcReport, error) {
	// LoadingContext: everything is loaded exactly once per run.
	tactic, err := r.tactics.LoadTactic(tacticID)
	if err != nil {
		return nil, fmt.Errorf("load tactic %q: %w", tacticID, err)
	}

	params, err := r.params.LoadParameters(tenderID)
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}

	policy, err := r.policies.LoadPolicy(tenderID)
	if err != nil {
		return nil, fmt.Errorf("load distribution policy: %w", err)
	}

	exclusions, err := r.exclusions.LoadExclusions(tenderID)
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}

	lines, err := r.lines.LoadLines(tenderID)
	if err != nil {
		return nil, fmt.Errorf("load lines: %w", err)
	}

	report := &RecalcReport{TotalLines: len(lines)}
	cache := NewCoefficientCache()
	collector := NewAnomalyCollector(r.opts.AnomalyTolerance)

	recordError := func(lineID string, err error) {
		report.Failed++
		if len(report.Errors) < r.opts.MaxSurfacedErrors {
			report.Errors = append(report.Errors, LineError{LineID: lineID, Message: err.Error()})
			return
		}
		report.ErrorsOmitted++
	}

	// Evaluating: per-line isolation, shared per-run cache.
	var writes []pendingWrite
	for _, line := range lines {
		res, obs, err := r.computeLine(line, tactic, params, policy, exclusions, cache)
		if err != nil {
			recordError(line.ID, err)
			continue
		}
		collector.Observe(obs)
		writes = append(writes, pendingWrite{lineID: line.ID, result: res})
	}

	// Persisting: bounded-size batches, concurrent within a batch, the
	// batch boundary is the synchronization point.
	r.persist(ctx, writes, report, recordError)

	report.Anomalies = collector.Anomalies()
	report.DistinctCoeffs = cache.Len()
	return report, nil
}

// computeLine runs the per-line pipeline: exclusion filter, tax
// extraction, cached unit-coefficient evaluation, distribution and tax
// re-application.
func (r *Recalculator) computeLine(line Line, tactic *Tactic, params map[string]float64, policy DistributionPolicy, exclusions Exclusions, cache *CoefficientCache) (LineResult, Observation, error) {
	seq, ok := tactic.Sequences[line.Category]
	if !ok {
		return LineResult{}, Observation{}, fmt.Errorf("%w: %s", ErrNoSequence, line.Category)
	}

	excluded := exclusions.IsExcluded(line.Category, line.CostCategory)
	filtered := FilterExcluded(seq, excluded, GrowthKeyFor(line.Category))
	taxFree, taxPercent := ExtractTax(filtered, params, KeyVAT)

	coeff, err := cache.GetOrCompute(
		Signature{Category: line.Category, Excluded: excluded, TaxPercent: taxPercent},
		func() (float64, error) {
			return EvaluateSequence(1, taxFree, params)
		},
	)
	if err != nil {
		return LineResult{}, Observation{}, err
	}

	commercial := coeff * line.BaseAmount
	split := Distribute(line.BaseAmount, commercial, ResolveVariant(line.Category, line.MaterialSubtype), policy)
	split.Material = ApplyTax(split.Material, taxPercent)
	split.Work = ApplyTax(split.Work, taxPercent)
	finalCoeff := ApplyTax(coeff, taxPercent)

	obs := Observation{
		LineID:           line.ID,
		LineName:         line.Name,
		Category:         line.Category,
		CostCategory:     line.CostCategory,
		BaseAmount:       line.BaseAmount,
		CommercialAmount: line.CommercialMaterial + line.CommercialWork,
		Realized:         line.Coefficient,
		Expected:         finalCoeff,
		Excluded:         excluded,
		TaxPercent:       taxPercent,
	}

	return LineResult{Material: split.Material, Work: split.Work, Coefficient: finalCoeff}, obs, nil
}

// persist writes results in fixed-size batches. Individual write
// failures are recorded and the run continues; ctx cancellation stops
// issuing new batches while the in-flight one completes.
func (r *Recalculator) persist(ctx context.Context, writes []pendingWrite, report *RecalcReport, recordError func(string, error)) {
	var mu sync.Mutex

	for start := 0; start < len(writes); start += r.opts.PersistBatchSize {
		if ctx.Err() != nil {
			for _, w := range writes[start:] {
				recordError(w.lineID, ctx.Err())
			}
			return
		}

		end := start + r.opts.PersistBatchSize
		if end > len(writes) {
			end = len(writes)
		}

		var g errgroup.Group
		g.SetLimit(r.opts.PersistConcurrency)
		for _, w := range writes[start:end] {
			g.Go(func() error {
				err := r.lines.WriteResult(w.lineID, w.result)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					recordError(w.lineID, err)
				} else {
					report.Succeeded++
				}
				return nil
			})
		}
		g.Wait()
	}
}
