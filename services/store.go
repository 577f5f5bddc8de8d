package services

import (
	"fmt"
	"log"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// loadPageSize is the page size used when exhausting the line store.
const loadPageSize = 500

// Store implements every collaborator contract of the Recalculator on
// top of the PocketBase record store.
type Store struct {
	app core.App
}

// NewStore returns a record-store adapter for the given app.
func NewStore(app core.App) *Store {
	return &Store{app: app}
}

// NewRecalculatorForApp is the common wiring: one Store serving all five
// collaborator roles.
func NewRecalculatorForApp(app core.App, opts RecalcOptions) *Recalculator {
	s := NewStore(app)
	return NewRecalculator(s, s, s, s, s, opts)
}

// LoadTactic loads a tactic and its per-category sequences. A missing or
// undecodable tactic is an error; the caller treats it as fatal.
func (s *Store) LoadTactic(tacticID string) (*Tactic, error) {
	rec, err := s.app.FindRecordById("markup_tactics", tacticID)
	if err != nil {
		return nil, fmt.Errorf("tactic not found: %w", err)
	}

	tactic := &Tactic{
		ID:               rec.Id,
		Name:             rec.GetString("name"),
		Sequences:        make(map[Category][]Step),
		BaseCostOverride: make(map[Category]float64),
	}

	seqRecords, err := s.app.FindAllRecords("markup_sequences", dbx.HashExp{"tactic": tacticID})
	if err != nil {
		return nil, fmt.Errorf("load sequences: %w", err)
	}

	for _, sr := range seqRecords {
		cat := Category(sr.GetString("category"))
		steps, err := DecodeSteps([]byte(sr.GetString("steps")))
		if err != nil {
			return nil, fmt.Errorf("sequence for %s: %w", cat, err)
		}
		tactic.Sequences[cat] = steps
		if v := sr.GetFloat("base_cost_override"); v != 0 {
			tactic.BaseCostOverride[cat] = v
		}
	}

	return tactic, nil
}

// LoadParameters merges the tender's overrides onto the well-known
// defaults. A tender with no overrides gets the full default map.
func (s *Store) LoadParameters(tenderID string) (map[string]float64, error) {
	records, err := s.app.FindAllRecords("markup_parameters", dbx.HashExp{"tender": tenderID})
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}

	overrides := make(map[string]float64, len(records))
	for _, rec := range records {
		key := rec.GetString("key")
		if key == "" {
			continue
		}
		overrides[key] = rec.GetFloat("value")
	}
	return MergeParameters(overrides), nil
}

// LoadPolicy returns the tender's distribution policy, or nil when no
// rule is configured at all.
func (s *Store) LoadPolicy(tenderID string) (DistributionPolicy, error) {
	records, err := s.app.FindAllRecords("distribution_rules", dbx.HashExp{"tender": tenderID})
	if err != nil {
		return nil, fmt.Errorf("load distribution rules: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	policy := make(DistributionPolicy, len(records))
	for _, rec := range records {
		policy[Variant(rec.GetString("variant"))] = DistributionTargets{
			Base:   Bucket(rec.GetString("base_target")),
			Markup: Bucket(rec.GetString("markup_target")),
		}
	}
	return policy, nil
}

// LoadExclusions returns the tender's growth exclusion sets; a tender
// without exclusions yields empty sets.
func (s *Store) LoadExclusions(tenderID string) (Exclusions, error) {
	records, err := s.app.FindAllRecords("growth_exclusions", dbx.HashExp{"tender": tenderID})
	if err != nil {
		return Exclusions{}, fmt.Errorf("load exclusions: %w", err)
	}

	out := Exclusions{
		Works:     make(map[string]struct{}),
		Materials: make(map[string]struct{}),
	}
	for _, rec := range records {
		ref := rec.GetString("cost_category")
		if ref == "" {
			continue
		}
		switch rec.GetString("kind") {
		case "works":
			out.Works[ref] = struct{}{}
		case "materials":
			out.Materials[ref] = struct{}{}
		default:
			log.Printf("store: unknown exclusion kind %q for %q, skipping", rec.GetString("kind"), ref)
		}
	}
	return out, nil
}

// LoadLines retrieves the tender's full line set, paging through the
// store so no page-size ceiling truncates the batch.
func (s *Store) LoadLines(tenderID string) ([]Line, error) {
	col, err := s.app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		return nil, fmt.Errorf("boq_items collection: %w", err)
	}

	var lines []Line
	for offset := 0; ; offset += loadPageSize {
		records, err := s.app.FindRecordsByFilter(col, "tender = {:tender}", "id", loadPageSize, offset,
			dbx.Params{"tender": tenderID})
		if err != nil {
			return nil, fmt.Errorf("load lines at offset %d: %w", offset, err)
		}
		for _, rec := range records {
			lines = append(lines, recordToLine(rec))
		}
		if len(records) < loadPageSize {
			return lines, nil
		}
	}
}

func recordToLine(rec *core.Record) Line {
	return Line{
		ID:                 rec.Id,
		Name:               rec.GetString("name"),
		Category:           Category(rec.GetString("category")),
		MaterialSubtype:    MaterialSubtype(rec.GetString("material_subtype")),
		BaseAmount:         rec.GetFloat("base_amount"),
		CostCategory:       rec.GetString("cost_category"),
		CommercialMaterial: rec.GetFloat("commercial_material"),
		CommercialWork:     rec.GetFloat("commercial_work"),
		Coefficient:        rec.GetFloat("markup_coefficient"),
	}
}

// WriteResult overwrites the three output fields of one line.
func (s *Store) WriteResult(lineID string, res LineResult) error {
	rec, err := s.app.FindRecordById("boq_items", lineID)
	if err != nil {
		return fmt.Errorf("line not found: %w", err)
	}

	rec.Set("commercial_material", res.Material)
	rec.Set("commercial_work", res.Work)
	rec.Set("markup_coefficient", res.Coefficient)

	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("save line %s: %w", lineID, err)
	}
	return nil
}
