package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendercost/services"
)

// ── Definition structs ───────────────────────────────────────────────────

type sequenceDef struct {
	category string
	steps    []services.Step
}

type itemDef struct {
	name         string
	category     string
	subtype      string
	baseAmount   float64
	costCategory string
}

type ruleDef struct {
	variant      string
	baseTarget   string
	markupTarget string
}

const seedTacticName = "Standard markup tactic"

func paramStep(op services.StepOp, key string, base int) services.Step {
	return services.Step{
		Op:   op,
		Base: base,
		Operands: []services.Operand{
			{Kind: services.OperandParameter, Key: key},
		},
	}
}

var seedSequences = []sequenceDef{
	{"material", []services.Step{
		paramStep(services.OpMultiply, services.KeyGrowthMaterial, -1),
		paramStep(services.OpMultiply, services.KeyOverhead, 0),
		paramStep(services.OpMultiply, services.KeyProfit, 1),
		paramStep(services.OpMultiply, services.KeyVAT, 2),
	}},
	{"work", []services.Step{
		paramStep(services.OpMultiply, services.KeyGrowthWork, -1),
		paramStep(services.OpMultiply, services.KeyOverhead, 0),
		paramStep(services.OpMultiply, services.KeyProfit, 1),
		paramStep(services.OpMultiply, services.KeyVAT, 2),
	}},
	{"sub_material", []services.Step{
		paramStep(services.OpMultiply, services.KeyGrowthSubMaterial, -1),
		paramStep(services.OpMultiply, services.KeyOverheadSub, 0),
		paramStep(services.OpMultiply, services.KeyProfitSub, 1),
		paramStep(services.OpMultiply, services.KeyVAT, 2),
	}},
	{"sub_work", []services.Step{
		paramStep(services.OpMultiply, services.KeyGrowthSubWork, -1),
		paramStep(services.OpMultiply, services.KeyOverheadSub, 0),
		paramStep(services.OpMultiply, services.KeyProfitSub, 1),
		paramStep(services.OpMultiply, services.KeyVAT, 2),
	}},
	{"component_material", []services.Step{
		paramStep(services.OpMultiply, services.KeyGrowthMaterial, -1),
		paramStep(services.OpMultiply, services.KeyTransport, 0),
		paramStep(services.OpMultiply, services.KeyProfit, 1),
	}},
	{"component_work", []services.Step{
		paramStep(services.OpMultiply, services.KeyGrowthWork, -1),
		paramStep(services.OpMultiply, services.KeyProfit, 0),
	}},
}

var seedItems = []itemDef{
	{"Reinforced concrete, foundation", "material", "basic", 1250000, "concrete"},
	{"Formwork consumables", "material", "auxiliary", 84000, "consumables"},
	{"Foundation works", "work", "", 640000, "groundworks"},
	{"Facade panels (subcontract)", "sub_material", "basic", 2100000, "facade"},
	{"Facade installation (subcontract)", "sub_work", "", 930000, "facade"},
	{"Ventilation unit VU-12", "component_material", "", 415000, "hvac"},
	{"Ventilation unit commissioning", "component_work", "", 98000, "hvac"},
}

var seedRules = []ruleDef{
	{"basic_material", "material", "material"},
	{"auxiliary_material", "material", "work"},
	{"work", "work", "work"},
	{"subcontract_basic", "material", "work"},
}

// Seed creates a demo tender with the standard tactic, its per-category
// sequences, a handful of BOQ items and distribution rules. It is a
// no-op when the standard tactic already exists.
func Seed(app *pocketbase.PocketBase) error {
	existing, _ := app.FindRecordsByFilter("markup_tactics", "name = {:name}", "", 1, 0,
		map[string]any{"name": seedTacticName})
	if len(existing) > 0 {
		return nil
	}

	tacticsCol, err := app.FindCollectionByNameOrId("markup_tactics")
	if err != nil {
		return fmt.Errorf("markup_tactics collection: %w", err)
	}

	tactic := core.NewRecord(tacticsCol)
	tactic.Set("name", seedTacticName)
	if err := app.Save(tactic); err != nil {
		return fmt.Errorf("save tactic: %w", err)
	}

	seqCol, err := app.FindCollectionByNameOrId("markup_sequences")
	if err != nil {
		return fmt.Errorf("markup_sequences collection: %w", err)
	}

	for _, def := range seedSequences {
		raw, err := services.EncodeSteps(def.steps)
		if err != nil {
			return fmt.Errorf("encode %s steps: %w", def.category, err)
		}
		rec := core.NewRecord(seqCol)
		rec.Set("tactic", tactic.Id)
		rec.Set("category", def.category)
		rec.Set("steps", string(raw))
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("save %s sequence: %w", def.category, err)
		}
	}

	tendersCol, err := app.FindCollectionByNameOrId("tenders")
	if err != nil {
		return fmt.Errorf("tenders collection: %w", err)
	}

	tender := core.NewRecord(tendersCol)
	tender.Set("title", "Demo Tender — Office Building")
	tender.Set("reference_number", "TND-0001")
	tender.Set("tactic", tactic.Id)
	if err := app.Save(tender); err != nil {
		return fmt.Errorf("save tender: %w", err)
	}

	itemsCol, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		return fmt.Errorf("boq_items collection: %w", err)
	}

	for _, def := range seedItems {
		rec := core.NewRecord(itemsCol)
		rec.Set("tender", tender.Id)
		rec.Set("name", def.name)
		rec.Set("category", def.category)
		if def.subtype != "" {
			rec.Set("material_subtype", def.subtype)
		}
		rec.Set("base_amount", def.baseAmount)
		rec.Set("cost_category", def.costCategory)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("save item %q: %w", def.name, err)
		}
	}

	rulesCol, err := app.FindCollectionByNameOrId("distribution_rules")
	if err != nil {
		return fmt.Errorf("distribution_rules collection: %w", err)
	}

	for _, def := range seedRules {
		rec := core.NewRecord(rulesCol)
		rec.Set("tender", tender.Id)
		rec.Set("variant", def.variant)
		rec.Set("base_target", def.baseTarget)
		rec.Set("markup_target", def.markupTarget)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("save rule %q: %w", def.variant, err)
		}
	}

	return nil
}
