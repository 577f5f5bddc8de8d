// Package collections creates the PocketBase collections and seed data
// for the tender cost-management tool.
package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

var categoryValues = []string{
	"material",
	"work",
	"sub_material",
	"sub_work",
	"component_material",
	"component_work",
}

var variantValues = []string{
	"basic_material",
	"auxiliary_material",
	"component_material",
	"subcontract_basic",
	"subcontract_auxiliary",
	"work",
	"component_work",
}

var bucketValues = []string{"material", "work"}

// Setup programmatically creates/ensures the tenders, markup_tactics,
// markup_sequences, boq_items, markup_parameters, distribution_rules and
// growth_exclusions collections exist.
func Setup(app *pocketbase.PocketBase) {
	tactics := ensureCollection(app, "markup_tactics", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "markup_sequences", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "tactic",
			Required:      true,
			CollectionId:  tactics.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "category",
			Required:  true,
			Values:    categoryValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.JSONField{Name: "steps", Required: true})
		c.Fields.Add(&core.NumberField{Name: "base_cost_override", Required: false})
	})

	tenders := ensureCollection(app, "tenders", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: false})
		c.Fields.Add(&core.RelationField{
			Name:         "tactic",
			Required:     false,
			CollectionId: tactics.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "boq_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "tender",
			Required:      true,
			CollectionId:  tenders.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "category",
			Required:  true,
			Values:    categoryValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "material_subtype",
			Required:  false,
			Values:    []string{"basic", "auxiliary"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "base_amount", Required: false, Min: float64Ptr(0)})
		c.Fields.Add(&core.TextField{Name: "cost_category", Required: false})
		// Output fields, overwritten only by the batch recalculation.
		c.Fields.Add(&core.NumberField{Name: "commercial_material", Required: false})
		c.Fields.Add(&core.NumberField{Name: "commercial_work", Required: false})
		c.Fields.Add(&core.NumberField{Name: "markup_coefficient", Required: false})
	})

	ensureCollection(app, "markup_parameters", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "tender",
			Required:      true,
			CollectionId:  tenders.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "key", Required: true})
		c.Fields.Add(&core.TextField{Name: "label", Required: false})
		c.Fields.Add(&core.NumberField{Name: "value", Required: false})
	})

	ensureCollection(app, "distribution_rules", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "tender",
			Required:      true,
			CollectionId:  tenders.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "variant",
			Required:  true,
			Values:    variantValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "base_target",
			Required:  true,
			Values:    bucketValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "markup_target",
			Required:  true,
			Values:    bucketValues,
			MaxSelect: 1,
		})
	})

	ensureCollection(app, "growth_exclusions", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "tender",
			Required:      true,
			CollectionId:  tenders.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "cost_category", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    []string{"works", "materials"},
			MaxSelect: 1,
		})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}

func float64Ptr(v float64) *float64 { return &v }
