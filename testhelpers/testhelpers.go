// Package testhelpers provides utilities for testing PocketBase-based
// applications.
package testhelpers

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendercost/collections"
	"tendercost/services"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestTactic creates a markup tactic record and returns it.
func CreateTestTactic(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("markup_tactics")
	if err != nil {
		t.Fatalf("failed to find markup_tactics collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test tactic: %v", err)
	}

	return record
}

// CreateTestSequence stores a validated step sequence for one category of
// a tactic.
func CreateTestSequence(t *testing.T, app *pocketbase.PocketBase, tacticID string, category services.Category, steps []services.Step) *core.Record {
	t.Helper()

	raw, err := services.EncodeSteps(steps)
	if err != nil {
		t.Fatalf("failed to encode steps: %v", err)
	}

	col, err := app.FindCollectionByNameOrId("markup_sequences")
	if err != nil {
		t.Fatalf("failed to find markup_sequences collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("tactic", tacticID)
	record.Set("category", string(category))
	record.Set("steps", string(raw))

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test sequence: %v", err)
	}

	return record
}

// CreateTestTender creates a tender record, optionally linked to a tactic.
func CreateTestTender(t *testing.T, app *pocketbase.PocketBase, title, tacticID string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("tenders")
	if err != nil {
		t.Fatalf("failed to find tenders collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("title", title)
	if tacticID != "" {
		record.Set("tactic", tacticID)
	}

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test tender: %v", err)
	}

	return record
}

// CreateTestItem creates a BOQ item for a tender and returns it.
func CreateTestItem(t *testing.T, app *pocketbase.PocketBase, tenderID, name string, category services.Category, baseAmount float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		t.Fatalf("failed to find boq_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("tender", tenderID)
	record.Set("name", name)
	record.Set("category", string(category))
	record.Set("base_amount", baseAmount)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test item: %v", err)
	}

	return record
}

// CreateTestParameter creates a tender parameter override.
func CreateTestParameter(t *testing.T, app *pocketbase.PocketBase, tenderID, key string, value float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("markup_parameters")
	if err != nil {
		t.Fatalf("failed to find markup_parameters collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("tender", tenderID)
	record.Set("key", key)
	record.Set("value", value)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test parameter: %v", err)
	}

	return record
}

// CreateTestExclusion adds a growth exclusion for a cost category.
func CreateTestExclusion(t *testing.T, app *pocketbase.PocketBase, tenderID, costCategory, kind string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("growth_exclusions")
	if err != nil {
		t.Fatalf("failed to find growth_exclusions collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("tender", tenderID)
	record.Set("cost_category", costCategory)
	record.Set("kind", kind)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test exclusion: %v", err)
	}

	return record
}

// CreateTestDistributionRule adds a distribution rule for a variant.
func CreateTestDistributionRule(t *testing.T, app *pocketbase.PocketBase, tenderID string, variant services.Variant, baseTarget, markupTarget services.Bucket) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("distribution_rules")
	if err != nil {
		t.Fatalf("failed to find distribution_rules collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("tender", tenderID)
	record.Set("variant", string(variant))
	record.Set("base_target", string(baseTarget))
	record.Set("markup_target", string(markupTarget))

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test distribution rule: %v", err)
	}

	return record
}
