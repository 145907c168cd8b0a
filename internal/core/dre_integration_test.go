package core_test

import (
	"context"
	"testing"

	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

func TestStatement_BuildOverDatabase(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	rawData := core.NewRawDataService(pool)
	indicators := core.NewIndicatorService(pool)
	resolver := core.NewResolver(indicators, rawData, testLogger())
	dre := core.NewDREService(pool, rawData, resolver, testLogger())

	plus := "+"
	minus := "-"
	revenue, err := dre.CreatePrincipal(ctx, core.PrincipalAccount{
		Name: "Receita Bruta", Kind: core.AccountComposite, Symbol: &plus, DefaultOrder: 1, Visible: true,
	})
	if err != nil {
		t.Fatalf("Failed to create revenue principal: %v", err)
	}
	costs, err := dre.CreatePrincipal(ctx, core.PrincipalAccount{
		Name: "Custos", Kind: core.AccountComposite, Symbol: &minus, DefaultOrder: 2, Visible: true,
	})
	if err != nil {
		t.Fatalf("Failed to create costs principal: %v", err)
	}

	revComp, err := dre.CreateComponent(ctx, core.StatementComponent{
		PrincipalID: revenue.ID, RefKind: core.RefCategory, RefID: testRevenueCatID,
		Weight: decimal.NewFromInt(1), Order: 1,
	})
	if err != nil {
		t.Fatalf("Failed to create revenue component: %v", err)
	}
	expComp, err := dre.CreateComponent(ctx, core.StatementComponent{
		PrincipalID: costs.ID, RefKind: core.RefCategory, RefID: testExpenseCatID,
		Weight: decimal.NewFromInt(1), Order: 1,
	})
	if err != nil {
		t.Fatalf("Failed to create expense component: %v", err)
	}

	if err := dre.SetSelection(ctx, testCompanyID, revComp.ID, true); err != nil {
		t.Fatalf("Failed to select revenue component: %v", err)
	}
	if err := dre.SetSelection(ctx, testCompanyID, expComp.ID, true); err != nil {
		t.Fatalf("Failed to select expense component: %v", err)
	}

	revID := testRevenueCatID
	expID := testExpenseCatID
	mustCreatePoint(t, rawData, &revID, nil, "Dezembro", 2023, "80.00")
	mustCreatePoint(t, rawData, &revID, nil, "Janeiro", 2024, "100.00")
	mustCreatePoint(t, rawData, &revID, nil, "Janeiro", 2024, "50.00")
	mustCreatePoint(t, rawData, &expID, nil, "Janeiro", 2024, "40.00")

	stmt, err := dre.BuildStatement(ctx, testCompanyID, "Janeiro", 2024)
	if err != nil {
		t.Fatalf("BuildStatement failed: %v", err)
	}

	if len(stmt.Periods) != 12 {
		t.Fatalf("Statement has %d periods, want 12", len(stmt.Periods))
	}
	first := stmt.Periods[0]
	last := stmt.Periods[11]
	if first.Month != "Fevereiro" || first.Year != 2023 {
		t.Errorf("First period = %s/%d, want Fevereiro/2023", first.Month, first.Year)
	}
	if last.Month != "Janeiro" || last.Year != 2024 {
		t.Errorf("Last period = %s/%d, want Janeiro/2024", last.Month, last.Year)
	}

	if len(stmt.Lines) != 2 {
		t.Fatalf("Statement has %d lines, want 2", len(stmt.Lines))
	}
	revLine := stmt.Lines[0]
	costLine := stmt.Lines[1]
	if revLine.Name != "Receita Bruta" || costLine.Name != "Custos" {
		t.Fatalf("Line order = [%s, %s], want [Receita Bruta, Custos]", revLine.Name, costLine.Name)
	}

	// Last period is Janeiro/2024: 100 + 50 of revenue, 40 of expense (negated).
	revJan := revLine.Values[11].Amount
	if !revJan.Equal(decimal.RequireFromString("150")) {
		t.Errorf("Revenue Janeiro = %s, want 150", revJan)
	}
	costJan := costLine.Values[11].Amount
	if !costJan.Equal(decimal.RequireFromString("-40")) {
		t.Errorf("Costs Janeiro = %s, want -40", costJan)
	}
	if !costLine.Values[11].Favorable {
		t.Errorf("Costs Janeiro favorable = false, want true for negative value under '-' symbol")
	}

	// Dezembro/2023 sits at index 10.
	revDez := revLine.Values[10].Amount
	if !revDez.Equal(decimal.RequireFromString("80")) {
		t.Errorf("Revenue Dezembro = %s, want 80", revDez)
	}

	if !revLine.Total.Amount.Equal(decimal.RequireFromString("230")) {
		t.Errorf("Revenue total = %s, want 230", revLine.Total.Amount)
	}
}

func TestStatement_InactiveSelectionExcluded(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	rawData := core.NewRawDataService(pool)
	indicators := core.NewIndicatorService(pool)
	resolver := core.NewResolver(indicators, rawData, testLogger())
	dre := core.NewDREService(pool, rawData, resolver, testLogger())

	plus := "+"
	principal, err := dre.CreatePrincipal(ctx, core.PrincipalAccount{
		Name: "Receita", Kind: core.AccountSimple, Symbol: &plus, DefaultOrder: 1, Visible: true,
	})
	if err != nil {
		t.Fatalf("Failed to create principal: %v", err)
	}
	comp, err := dre.CreateComponent(ctx, core.StatementComponent{
		PrincipalID: principal.ID, RefKind: core.RefCategory, RefID: testRevenueCatID,
		Weight: decimal.NewFromInt(1), Order: 1,
	})
	if err != nil {
		t.Fatalf("Failed to create component: %v", err)
	}

	if err := dre.SetSelection(ctx, testCompanyID, comp.ID, true); err != nil {
		t.Fatalf("Failed to select component: %v", err)
	}
	// Deactivating drops the line from the company's statement entirely.
	if err := dre.SetSelection(ctx, testCompanyID, comp.ID, false); err != nil {
		t.Fatalf("Failed to deselect component: %v", err)
	}

	stmt, err := dre.BuildStatement(ctx, testCompanyID, "Janeiro", 2024)
	if err != nil {
		t.Fatalf("BuildStatement failed: %v", err)
	}
	if len(stmt.Lines) != 0 {
		t.Errorf("Statement has %d lines, want 0 after deselection", len(stmt.Lines))
	}
}

func TestPrincipalValue_SinglePeriod(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	rawData := core.NewRawDataService(pool)
	indicators := core.NewIndicatorService(pool)
	resolver := core.NewResolver(indicators, rawData, testLogger())
	dre := core.NewDREService(pool, rawData, resolver, testLogger())

	plus := "+"
	principal, err := dre.CreatePrincipal(ctx, core.PrincipalAccount{
		Name: "Receita", Kind: core.AccountSimple, Symbol: &plus, DefaultOrder: 1, Visible: true,
	})
	if err != nil {
		t.Fatalf("Failed to create principal: %v", err)
	}
	comp, err := dre.CreateComponent(ctx, core.StatementComponent{
		PrincipalID: principal.ID, RefKind: core.RefCategory, RefID: testRevenueCatID,
		Weight: decimal.NewFromInt(2), Order: 1,
	})
	if err != nil {
		t.Fatalf("Failed to create component: %v", err)
	}
	if err := dre.SetSelection(ctx, testCompanyID, comp.ID, true); err != nil {
		t.Fatalf("Failed to select component: %v", err)
	}

	revID := testRevenueCatID
	mustCreatePoint(t, rawData, &revID, nil, "Janeiro", 2024, "100.00")

	got, err := dre.PrincipalValue(ctx, testCompanyID, principal.ID, core.Period{Month: "Janeiro", Year: 2024})
	if err != nil {
		t.Fatalf("PrincipalValue failed: %v", err)
	}
	// Weight 2 doubles the category sum.
	if !got.Equal(decimal.RequireFromString("200")) {
		t.Errorf("PrincipalValue = %s, want 200", got)
	}
}
