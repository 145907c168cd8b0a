package core_test

import (
	"testing"

	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

func TestVariation(t *testing.T) {
	tests := []struct {
		name         string
		current      int64
		previous     int64
		want         string
		wantPositive bool
	}{
		{"growth", 120, 100, "20.0", true},
		{"decline", 80, 100, "20.0", false},
		{"flat", 100, 100, "0.0", true},
		{"zero baseline", 80, 0, "0", true},
		{"zero baseline zero current", 0, 0, "0", true},
		{"halved", 50, 100, "50.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, positive := core.Variation(decimal.NewFromInt(tt.current), decimal.NewFromInt(tt.previous))
			if got != tt.want {
				t.Errorf("variation: want %q, got %q", tt.want, got)
			}
			if positive != tt.wantPositive {
				t.Errorf("positive: want %v, got %v", tt.wantPositive, positive)
			}
		})
	}
}

func TestVariation_FractionalPercentage(t *testing.T) {
	got, positive := core.Variation(decimal.NewFromInt(101), decimal.NewFromInt(300))
	// |101-300|/300*100 = 66.333…, rendered to one decimal.
	if got != "66.3" {
		t.Errorf("variation: want 66.3, got %s", got)
	}
	if positive {
		t.Error("expected negative variation")
	}
}

func TestRankEntries(t *testing.T) {
	entries := []core.TopEntry{
		{Name: "b", Value: decimal.NewFromInt(20)},
		{Name: "a", Value: decimal.NewFromInt(50)},
		{Name: "d", Value: decimal.NewFromInt(20)},
		{Name: "c", Value: decimal.NewFromInt(-5)},
	}

	ranked := core.RankEntries(entries, 3)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ranked))
	}
	if ranked[0].Name != "a" {
		t.Errorf("first: want a, got %s", ranked[0].Name)
	}
	// Stable sort keeps b ahead of the tied d.
	if ranked[1].Name != "b" || ranked[2].Name != "d" {
		t.Errorf("tied entries out of order: %s, %s", ranked[1].Name, ranked[2].Name)
	}

	// Input slice stays untouched.
	if entries[0].Name != "b" {
		t.Error("RankEntries mutated its input")
	}
}

func TestRankEntries_LimitLargerThanInput(t *testing.T) {
	entries := []core.TopEntry{{Name: "a", Value: decimal.NewFromInt(1)}}
	if got := core.RankEntries(entries, 5); len(got) != 1 {
		t.Errorf("expected 1 entry, got %d", len(got))
	}
}
