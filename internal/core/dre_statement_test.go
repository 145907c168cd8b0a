package core_test

import (
	"testing"

	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func strPtr(s string) *string { return &s }

func singlePeriod() []core.Period {
	return []core.Period{{Month: "Maio", Year: 2024}}
}

func TestAssembleStatement_GroupsAndSums(t *testing.T) {
	periods := singlePeriod()
	principal := core.PrincipalAccount{ID: "p1", Name: "Receita Líquida", Kind: core.AccountComposite, Symbol: strPtr("+"), DefaultOrder: 1}
	secondary := &core.SecondaryAccount{ID: "s1", PrincipalID: "p1", Name: "Deduções", Order: 1}

	comps := []core.ComponentValues{
		{
			Component: core.StatementComponent{ID: "c1", PrincipalID: "p1", RefKind: core.RefCategory, RefID: "cat-1", Weight: dec(2), Order: 1},
			RefName:   "Vendas",
			Principal: principal,
			Values:    []decimal.Decimal{dec(20)}, // 10 × weight 2
		},
		{
			Component: core.StatementComponent{ID: "c2", PrincipalID: "p1", SecondaryID: strPtr("s1"), RefKind: core.RefIndicator, RefID: "ind-1", Weight: dec(1), Order: 1},
			RefName:   "Impostos",
			Principal: principal,
			Secondary: secondary,
			Values:    []decimal.Decimal{dec(5)},
		},
	}

	lines := core.AssembleStatement(periods, comps)
	if len(lines) != 1 {
		t.Fatalf("expected 1 principal line, got %d", len(lines))
	}
	line := lines[0]
	if !line.Values[0].Amount.Equal(dec(25)) {
		t.Errorf("principal period value: want 25, got %s", line.Values[0].Amount)
	}
	if !line.Total.Amount.Equal(dec(25)) {
		t.Errorf("principal total: want 25, got %s", line.Total.Amount)
	}
	if len(line.Components) != 1 || line.Components[0].Name != "Vendas" {
		t.Fatalf("expected one direct component Vendas, got %+v", line.Components)
	}
	if len(line.Secondaries) != 1 || line.Secondaries[0].Name != "Deduções" {
		t.Fatalf("expected one secondary Deduções, got %+v", line.Secondaries)
	}
	if !line.Secondaries[0].Values[0].Amount.Equal(dec(5)) {
		t.Errorf("secondary period value: want 5, got %s", line.Secondaries[0].Values[0].Amount)
	}
}

func TestAssembleStatement_OrderFollowsConfiguredOrder(t *testing.T) {
	periods := singlePeriod()
	first := core.PrincipalAccount{ID: "p1", Name: "Receita", DefaultOrder: 1}
	second := core.PrincipalAccount{ID: "p2", Name: "Custos", Symbol: strPtr("-"), DefaultOrder: 2}

	// Input deliberately out of order.
	comps := []core.ComponentValues{
		{
			Component: core.StatementComponent{ID: "c2", PrincipalID: "p2", RefKind: core.RefCategory, RefID: "cat-2", Weight: dec(1), Order: 1},
			RefName:   "CMV",
			Principal: second,
			Values:    []decimal.Decimal{dec(-30)},
		},
		{
			Component: core.StatementComponent{ID: "c1", PrincipalID: "p1", RefKind: core.RefCategory, RefID: "cat-1", Weight: dec(1), Order: 1},
			RefName:   "Vendas",
			Principal: first,
			Values:    []decimal.Decimal{dec(100)},
		},
	}

	lines := core.AssembleStatement(periods, comps)
	if len(lines) != 2 {
		t.Fatalf("expected 2 principal lines, got %d", len(lines))
	}
	if lines[0].Name != "Receita" || lines[1].Name != "Custos" {
		t.Errorf("lines out of order: %s, %s", lines[0].Name, lines[1].Name)
	}
}

func TestAssembleStatement_FavorableBySymbol(t *testing.T) {
	periods := singlePeriod()
	tests := []struct {
		name   string
		symbol *string
		amount int64
		want   bool
	}{
		{"plus positive", strPtr("+"), 100, true},
		{"plus negative", strPtr("+"), -100, false},
		{"minus negative", strPtr("-"), -100, true},
		{"minus positive", strPtr("-"), 100, false},
		{"equals zero", strPtr("="), 0, true},
		{"nil symbol positive", nil, 100, true},
		{"nil symbol negative", nil, -100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comps := []core.ComponentValues{{
				Component: core.StatementComponent{ID: "c1", PrincipalID: "p1", RefKind: core.RefCategory, RefID: "cat-1", Weight: dec(1), Order: 1},
				RefName:   "Linha",
				Principal: core.PrincipalAccount{ID: "p1", Name: "Linha", Symbol: tt.symbol, DefaultOrder: 1},
				Values:    []decimal.Decimal{dec(tt.amount)},
			}}
			lines := core.AssembleStatement(periods, comps)
			if got := lines[0].Values[0].Favorable; got != tt.want {
				t.Errorf("favorable: want %v, got %v", tt.want, got)
			}
			if got := lines[0].Total.Favorable; got != tt.want {
				t.Errorf("total favorable: want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAssembleStatement_TotalSpansPeriods(t *testing.T) {
	periods := []core.Period{
		{Month: "Abril", Year: 2024},
		{Month: "Maio", Year: 2024},
		{Month: "Junho", Year: 2024},
	}
	comps := []core.ComponentValues{{
		Component: core.StatementComponent{ID: "c1", PrincipalID: "p1", RefKind: core.RefCategory, RefID: "cat-1", Weight: dec(1), Order: 1},
		RefName:   "Vendas",
		Principal: core.PrincipalAccount{ID: "p1", Name: "Receita", DefaultOrder: 1},
		Values:    []decimal.Decimal{dec(10), dec(20), dec(30)},
	}}

	lines := core.AssembleStatement(periods, comps)
	if !lines[0].Total.Amount.Equal(dec(60)) {
		t.Errorf("total: want 60, got %s", lines[0].Total.Amount)
	}
	if len(lines[0].Values) != 3 {
		t.Errorf("expected 3 period values, got %d", len(lines[0].Values))
	}
}

func TestAssembleStatement_Idempotent(t *testing.T) {
	periods := singlePeriod()
	comps := []core.ComponentValues{{
		Component: core.StatementComponent{ID: "c1", PrincipalID: "p1", RefKind: core.RefCategory, RefID: "cat-1", Weight: dec(1), Order: 1},
		RefName:   "Vendas",
		Principal: core.PrincipalAccount{ID: "p1", Name: "Receita", DefaultOrder: 1},
		Values:    []decimal.Decimal{dec(42)},
	}}

	a := core.AssembleStatement(periods, comps)
	b := core.AssembleStatement(periods, comps)
	if len(a) != len(b) || !a[0].Total.Amount.Equal(b[0].Total.Amount) {
		t.Error("repeated assembly produced different results")
	}
}
