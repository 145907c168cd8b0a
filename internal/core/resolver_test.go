package core_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"finboard/internal/core"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// fakeIndicators is an in-memory IndicatorGetter.
type fakeIndicators map[string]*core.Indicator

func (f fakeIndicators) Get(_ context.Context, id string) (*core.Indicator, error) {
	ind, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("indicator %s: %w", id, core.ErrNotFound)
	}
	return ind, nil
}

// fakeValues is an in-memory PeriodValuer keyed by "<refID>|<periodKey>".
// It also counts calls so tests can bound the resolver's work.
type fakeValues struct {
	categories map[string]decimal.Decimal
	manuals    map[string]decimal.Decimal
	calls      int
}

func key(refID string, p core.Period) string { return refID + "|" + p.Key() }

func (f *fakeValues) CategoryPeriodValue(_ context.Context, _, categoryID string, p core.Period) (decimal.Decimal, error) {
	f.calls++
	return f.categories[key(categoryID, p)], nil
}

func (f *fakeValues) IndicatorPeriodValue(_ context.Context, _, indicatorID string, p core.Period) (decimal.Decimal, error) {
	f.calls++
	return f.manuals[key(indicatorID, p)], nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newResolver(inds fakeIndicators, vals *fakeValues) *core.Resolver {
	return core.NewResolver(inds, vals, quietLogger())
}

var maio2024 = core.Period{Month: "Maio", Year: 2024}

func TestResolver_ManualIndicator(t *testing.T) {
	inds := fakeIndicators{
		"ind-m": {ID: "ind-m", Kind: core.IndicatorManual},
	}
	vals := &fakeValues{manuals: map[string]decimal.Decimal{
		key("ind-m", maio2024): decimal.NewFromInt(200),
	}}
	r := newResolver(inds, vals)

	got, err := r.Resolve(context.Background(), "co-1", "ind-m", maio2024, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Maio/2024: want 200, got %s", got)
	}

	other := core.Period{Month: "Junho", Year: 2024}
	got, err = r.Resolve(context.Background(), "co-1", "ind-m", other, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("Junho/2024: want 0, got %s", got)
	}
}

func TestResolver_CalculatedOverCategories(t *testing.T) {
	vals := &fakeValues{categories: map[string]decimal.Decimal{
		key("cat-a", maio2024): decimal.NewFromInt(100),
		key("cat-b", maio2024): decimal.NewFromInt(50),
	}}

	tests := []struct {
		name string
		op   core.Operation
		want int64
	}{
		{"sum", core.OpSum, 150},
		{"subtract", core.OpSubtract, 50},
		{"multiply", core.OpMultiply, 5000},
		{"divide", core.OpDivide, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inds := fakeIndicators{
				"ind-c": {
					ID:        "ind-c",
					Kind:      core.IndicatorCalculated,
					CalcType:  core.CalcFromCategories,
					Operation: tt.op,
					SourceIDs: []string{"cat-a", "cat-b"},
				},
			}
			got, err := newResolver(inds, vals).Resolve(context.Background(), "co-1", "ind-c", maio2024, nil)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if !got.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("want %d, got %s", tt.want, got)
			}
		})
	}
}

func TestResolver_DivideByZeroYieldsZero(t *testing.T) {
	inds := fakeIndicators{
		"ind-d": {
			ID:        "ind-d",
			Kind:      core.IndicatorCalculated,
			CalcType:  core.CalcFromCategories,
			Operation: core.OpDivide,
			SourceIDs: []string{"cat-a", "cat-zero"},
		},
	}
	vals := &fakeValues{categories: map[string]decimal.Decimal{
		key("cat-a", maio2024): decimal.NewFromInt(100),
	}}

	got, err := newResolver(inds, vals).Resolve(context.Background(), "co-1", "ind-d", maio2024, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("want 0 for division by zero, got %s", got)
	}
}

func TestResolver_ZeroFromEarlySourceStillSeeds(t *testing.T) {
	// First source legitimately evaluates to 0; the second must fold against
	// that zero, not re-seed the accumulator.
	inds := fakeIndicators{
		"ind-s": {
			ID:        "ind-s",
			Kind:      core.IndicatorCalculated,
			CalcType:  core.CalcFromCategories,
			Operation: core.OpSubtract,
			SourceIDs: []string{"cat-zero", "cat-b"},
		},
	}
	vals := &fakeValues{categories: map[string]decimal.Decimal{
		key("cat-b", maio2024): decimal.NewFromInt(50),
	}}

	got, err := newResolver(inds, vals).Resolve(context.Background(), "co-1", "ind-s", maio2024, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("want -50 (0 seeded, then 0-50), got %s", got)
	}
}

func TestResolver_IndicatorOfIndicator(t *testing.T) {
	inds := fakeIndicators{
		"ind-top": {
			ID:        "ind-top",
			Kind:      core.IndicatorCalculated,
			CalcType:  core.CalcFromIndicators,
			Operation: core.OpSum,
			SourceIDs: []string{"ind-m1", "ind-m2"},
		},
		"ind-m1": {ID: "ind-m1", Kind: core.IndicatorManual},
		"ind-m2": {ID: "ind-m2", Kind: core.IndicatorManual},
	}
	vals := &fakeValues{manuals: map[string]decimal.Decimal{
		key("ind-m1", maio2024): decimal.NewFromInt(30),
		key("ind-m2", maio2024): decimal.NewFromInt(12),
	}}

	got, err := newResolver(inds, vals).Resolve(context.Background(), "co-1", "ind-top", maio2024, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(42)) {
		t.Errorf("want 42, got %s", got)
	}
}

func TestResolver_CycleTerminatesAndYieldsZero(t *testing.T) {
	inds := fakeIndicators{
		"ind-a": {
			ID: "ind-a", Kind: core.IndicatorCalculated,
			CalcType: core.CalcFromIndicators, Operation: core.OpSum,
			SourceIDs: []string{"ind-b"},
		},
		"ind-b": {
			ID: "ind-b", Kind: core.IndicatorCalculated,
			CalcType: core.CalcFromIndicators, Operation: core.OpSum,
			SourceIDs: []string{"ind-a"},
		},
	}
	vals := &fakeValues{}
	r := newResolver(inds, vals)

	for _, id := range []string{"ind-a", "ind-b"} {
		got, err := r.Resolve(context.Background(), "co-1", id, maio2024, nil)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", id, err)
		}
		if !got.IsZero() {
			t.Errorf("Resolve(%s): want 0 for cycle, got %s", id, got)
		}
	}
	// Cycle breaking means no value fetch ever happens and the walk stays
	// bounded by the number of distinct indicators.
	if vals.calls != 0 {
		t.Errorf("expected no period value fetches for a pure cycle, got %d", vals.calls)
	}
}

func TestResolver_MissingIndicatorYieldsZero(t *testing.T) {
	got, err := newResolver(fakeIndicators{}, &fakeValues{}).
		Resolve(context.Background(), "co-1", "ghost", maio2024, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("want 0 for missing indicator, got %s", got)
	}
}

func TestResolver_RepeatedSiblingSourceIsNotACycle(t *testing.T) {
	// The same indicator referenced twice at the same level is just used
	// twice; only a reference back along the current path is a cycle.
	inds := fakeIndicators{
		"ind-top": {
			ID: "ind-top", Kind: core.IndicatorCalculated,
			CalcType: core.CalcFromIndicators, Operation: core.OpSum,
			SourceIDs: []string{"ind-m", "ind-m"},
		},
		"ind-m": {ID: "ind-m", Kind: core.IndicatorManual},
	}
	vals := &fakeValues{manuals: map[string]decimal.Decimal{
		key("ind-m", maio2024): decimal.NewFromInt(10),
	}}

	got, err := newResolver(inds, vals).Resolve(context.Background(), "co-1", "ind-top", maio2024, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("want 20, got %s", got)
	}
}
