package core_test

import (
	"testing"

	"finboard/internal/core"
)

func TestLastTwelveMonths_ReferenceMarch2024(t *testing.T) {
	periods, err := core.LastTwelveMonths("Março", 2024)
	if err != nil {
		t.Fatalf("LastTwelveMonths failed: %v", err)
	}
	if len(periods) != 12 {
		t.Fatalf("Expected 12 periods, got %d", len(periods))
	}

	// Window runs from Abril/2023 through Março/2024.
	if periods[0].Month != "Abril" || periods[0].Year != 2023 {
		t.Errorf("First period: want Abril/2023, got %s/%d", periods[0].Month, periods[0].Year)
	}
	if periods[11].Month != "Março" || periods[11].Year != 2024 {
		t.Errorf("Last period: want Março/2024, got %s/%d", periods[11].Month, periods[11].Year)
	}

	// Abril through Dezembro carry 2023; Janeiro through Março carry 2024.
	for i, p := range periods {
		wantYear := 2023
		if i >= 9 {
			wantYear = 2024
		}
		if p.Year != wantYear {
			t.Errorf("Period %d (%s): want year %d, got %d", i, p.Month, wantYear, p.Year)
		}
	}
}

func TestLastTwelveMonths_ChronologicalOrder(t *testing.T) {
	for _, month := range core.Months {
		periods, err := core.LastTwelveMonths(month, 2025)
		if err != nil {
			t.Fatalf("LastTwelveMonths(%s) failed: %v", month, err)
		}
		for i := 1; i < len(periods); i++ {
			prevIdx, _ := core.MonthIndex(periods[i-1].Month)
			curIdx, _ := core.MonthIndex(periods[i].Month)
			prevOrd := periods[i-1].Year*12 + prevIdx
			curOrd := periods[i].Year*12 + curIdx
			if curOrd != prevOrd+1 {
				t.Errorf("ref %s: periods %d→%d not consecutive: %v %v",
					month, i-1, i, periods[i-1], periods[i])
			}
		}
	}
}

func TestLastTwelveMonths_NoWrapForDezembro(t *testing.T) {
	periods, err := core.LastTwelveMonths("Dezembro", 2024)
	if err != nil {
		t.Fatalf("LastTwelveMonths failed: %v", err)
	}
	// Full calendar year, no wrap.
	for _, p := range periods {
		if p.Year != 2024 {
			t.Errorf("Period %s: want year 2024, got %d", p.Month, p.Year)
		}
	}
	if periods[0].Month != "Janeiro" {
		t.Errorf("First period: want Janeiro, got %s", periods[0].Month)
	}
}

func TestLastTwelveMonths_UnknownMonth(t *testing.T) {
	if _, err := core.LastTwelveMonths("March", 2024); err == nil {
		t.Fatal("expected error for non-Portuguese month name, got nil")
	}
}

func TestPreviousPeriod(t *testing.T) {
	tests := []struct {
		month     string
		year      int
		wantMonth string
		wantYear  int
	}{
		{"Fevereiro", 2024, "Janeiro", 2024},
		{"Janeiro", 2024, "Dezembro", 2023},
		{"Dezembro", 2024, "Novembro", 2024},
	}
	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			got, err := core.PreviousPeriod(tt.month, tt.year)
			if err != nil {
				t.Fatalf("PreviousPeriod failed: %v", err)
			}
			if got.Month != tt.wantMonth || got.Year != tt.wantYear {
				t.Errorf("want %s/%d, got %s/%d", tt.wantMonth, tt.wantYear, got.Month, got.Year)
			}
		})
	}
}
