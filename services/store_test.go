package services_test

import (
	"context"
	"math"
	"testing"

	"tendercost/services"
	"tendercost/testhelpers"
)

func materialSteps() []services.Step {
	return []services.Step{
		{Op: services.OpMultiply, Base: -1, Operands: []services.Operand{{Kind: services.OperandParameter, Key: services.KeyGrowthMaterial}}},
		{Op: services.OpMultiply, Base: 0, Operands: []services.Operand{{Kind: services.OperandParameter, Key: services.KeyOverhead}}},
		{Op: services.OpMultiply, Base: 1, Operands: []services.Operand{{Kind: services.OperandParameter, Key: services.KeyVAT}}},
	}
}

func TestStore_LoadTactic(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tactic := testhelpers.CreateTestTactic(t, app, "Standard")
	testhelpers.CreateTestSequence(t, app, tactic.Id, services.CategoryMaterial, materialSteps())

	store := services.NewStore(app)
	got, err := store.LoadTactic(tactic.Id)
	if err != nil {
		t.Fatalf("LoadTactic() error: %v", err)
	}
	if got.Name != "Standard" {
		t.Errorf("name = %q, want Standard", got.Name)
	}
	seq, ok := got.Sequences[services.CategoryMaterial]
	if !ok {
		t.Fatal("material sequence missing")
	}
	if len(seq) != 3 {
		t.Errorf("sequence has %d steps, want 3", len(seq))
	}
}

func TestStore_LoadTacticMissing(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if _, err := services.NewStore(app).LoadTactic("nonexistent"); err == nil {
		t.Fatal("expected error for missing tactic")
	}
}

func TestStore_LoadParametersDefaults(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tender := testhelpers.CreateTestTender(t, app, "Tender A", "")

	params, err := services.NewStore(app).LoadParameters(tender.Id)
	if err != nil {
		t.Fatalf("LoadParameters() error: %v", err)
	}
	if params[services.KeyVAT] != 20 {
		t.Errorf("vat = %v, want default 20", params[services.KeyVAT])
	}
	if len(params) != len(services.WellKnownParameters) {
		t.Errorf("got %d parameters, want %d defaults", len(params), len(services.WellKnownParameters))
	}
}

func TestStore_LoadParametersOverrides(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tender := testhelpers.CreateTestTender(t, app, "Tender A", "")
	testhelpers.CreateTestParameter(t, app, tender.Id, services.KeyOverhead, 9.5)
	testhelpers.CreateTestParameter(t, app, tender.Id, "regional", 2)

	// Another tender's overrides must not leak.
	other := testhelpers.CreateTestTender(t, app, "Tender B", "")
	testhelpers.CreateTestParameter(t, app, other.Id, services.KeyOverhead, 50)

	params, err := services.NewStore(app).LoadParameters(tender.Id)
	if err != nil {
		t.Fatalf("LoadParameters() error: %v", err)
	}
	if params[services.KeyOverhead] != 9.5 {
		t.Errorf("overhead = %v, want 9.5", params[services.KeyOverhead])
	}
	if params["regional"] != 2 {
		t.Errorf("regional = %v, want 2", params["regional"])
	}
	if params[services.KeyProfit] != 12 {
		t.Errorf("profit = %v, want default 12", params[services.KeyProfit])
	}
}

func TestStore_LoadPolicy(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tender := testhelpers.CreateTestTender(t, app, "Tender A", "")

	store := services.NewStore(app)

	policy, err := store.LoadPolicy(tender.Id)
	if err != nil {
		t.Fatalf("LoadPolicy() error: %v", err)
	}
	if policy != nil {
		t.Fatal("tender without rules must yield a nil policy")
	}

	testhelpers.CreateTestDistributionRule(t, app, tender.Id,
		services.VariantAuxiliaryMaterial, services.BucketMaterial, services.BucketWork)

	policy, err = store.LoadPolicy(tender.Id)
	if err != nil {
		t.Fatalf("LoadPolicy() error: %v", err)
	}
	targets, ok := policy[services.VariantAuxiliaryMaterial]
	if !ok {
		t.Fatal("configured variant missing from policy")
	}
	if targets.Base != services.BucketMaterial || targets.Markup != services.BucketWork {
		t.Errorf("targets = %+v", targets)
	}
}

func TestStore_LoadExclusions(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tender := testhelpers.CreateTestTender(t, app, "Tender A", "")
	testhelpers.CreateTestExclusion(t, app, tender.Id, "facade", "works")
	testhelpers.CreateTestExclusion(t, app, tender.Id, "concrete", "materials")

	exclusions, err := services.NewStore(app).LoadExclusions(tender.Id)
	if err != nil {
		t.Fatalf("LoadExclusions() error: %v", err)
	}
	if !exclusions.IsExcluded(services.CategorySubWork, "facade") {
		t.Error("facade works should be excluded")
	}
	if !exclusions.IsExcluded(services.CategorySubMaterial, "concrete") {
		t.Error("concrete materials should be excluded")
	}
	if exclusions.IsExcluded(services.CategorySubWork, "concrete") {
		t.Error("kinds must not cross over")
	}
}

func TestStore_LoadLines(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tender := testhelpers.CreateTestTender(t, app, "Tender A", "")
	testhelpers.CreateTestItem(t, app, tender.Id, "Concrete", services.CategoryMaterial, 1000)
	testhelpers.CreateTestItem(t, app, tender.Id, "Erection", services.CategoryWork, 2000)

	other := testhelpers.CreateTestTender(t, app, "Tender B", "")
	testhelpers.CreateTestItem(t, app, other.Id, "Unrelated", services.CategoryWork, 5)

	lines, err := services.NewStore(app).LoadLines(tender.Id)
	if err != nil {
		t.Fatalf("LoadLines() error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		if line.Name == "Unrelated" {
			t.Error("line from another tender leaked in")
		}
	}
}

func TestStore_WriteResult(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tender := testhelpers.CreateTestTender(t, app, "Tender A", "")
	item := testhelpers.CreateTestItem(t, app, tender.Id, "Concrete", services.CategoryMaterial, 1000)

	store := services.NewStore(app)
	err := store.WriteResult(item.Id, services.LineResult{Material: 1360.8, Work: 0, Coefficient: 1.3608})
	if err != nil {
		t.Fatalf("WriteResult() error: %v", err)
	}

	lines, err := store.LoadLines(tender.Id)
	if err != nil {
		t.Fatalf("LoadLines() error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if math.Abs(lines[0].CommercialMaterial-1360.8) > 1e-9 || lines[0].Coefficient != 1.3608 {
		t.Errorf("stored line = %+v", lines[0])
	}
}

func TestStore_WriteResultMissingLine(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	err := services.NewStore(app).WriteResult("nonexistent", services.LineResult{})
	if err == nil {
		t.Fatal("expected error for missing line")
	}
}

// End to end against the real record store: seed a tender, run, read
// the written amounts back.
func TestRecalculatorForApp_EndToEnd(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tactic := testhelpers.CreateTestTactic(t, app, "Standard")
	testhelpers.CreateTestSequence(t, app, tactic.Id, services.CategoryMaterial, materialSteps())

	tender := testhelpers.CreateTestTender(t, app, "Tender A", tactic.Id)
	item := testhelpers.CreateTestItem(t, app, tender.Id, "Concrete", services.CategoryMaterial, 1000)

	r := services.NewRecalculatorForApp(app, services.RecalcOptions{})
	report, err := r.Run(context.Background(), tender.Id, tactic.Id)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}

	lines, err := services.NewStore(app).LoadLines(tender.Id)
	if err != nil {
		t.Fatalf("LoadLines() error: %v", err)
	}
	if len(lines) != 1 || lines[0].ID != item.Id {
		t.Fatalf("unexpected lines: %+v", lines)
	}

	// 1.05 * 1.08 tax-free, VAT re-applied on top.
	wantCoeff := 1.05 * 1.08 * 1.2
	if math.Abs(lines[0].Coefficient-wantCoeff) > 1e-9 {
		t.Errorf("coefficient = %v, want %v", lines[0].Coefficient, wantCoeff)
	}
	if math.Abs(lines[0].CommercialMaterial-1000*wantCoeff) > 1e-6 {
		t.Errorf("commercial material = %v, want %v", lines[0].CommercialMaterial, 1000*wantCoeff)
	}
}

func TestRecalculatorForApp_MissingSequenceIsLineError(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tactic := testhelpers.CreateTestTactic(t, app, "Sparse")
	testhelpers.CreateTestSequence(t, app, tactic.Id, services.CategoryMaterial, materialSteps())

	tender := testhelpers.CreateTestTender(t, app, "Tender A", tactic.Id)
	testhelpers.CreateTestItem(t, app, tender.Id, "Covered", services.CategoryMaterial, 1000)
	testhelpers.CreateTestItem(t, app, tender.Id, "Uncovered", services.CategoryWork, 1000)

	r := services.NewRecalculatorForApp(app, services.RecalcOptions{})
	report, err := r.Run(context.Background(), tender.Id, tactic.Id)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 1 {
		t.Errorf("report = %d ok / %d failed, want 1/1", report.Succeeded, report.Failed)
	}
	if len(report.Errors) != 1 || report.Errors[0].Message == "" {
		t.Fatalf("errors = %+v", report.Errors)
	}
}
