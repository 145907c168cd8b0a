package core_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

type fakeCategories map[string]*core.Category

func (f fakeCategories) Get(_ context.Context, id string) (*core.Category, error) {
	c, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	return c, nil
}

type fakeRawDataStore struct {
	points []core.RawDataPoint
	failOn func(core.RawDataPoint) bool
}

func (f *fakeRawDataStore) Create(_ context.Context, point core.RawDataPoint) (*core.RawDataPoint, error) {
	if f.failOn != nil && f.failOn(point) {
		return nil, fmt.Errorf("insert rejected")
	}
	f.points = append(f.points, point)
	return &point, nil
}

func newUploadFixture(store *fakeRawDataStore) core.UploadService {
	cats := fakeCategories{
		"cat-1": {ID: "cat-1", Code: "REC", Name: "Vendas", Kind: core.CategoryRevenue},
	}
	inds := fakeIndicators{
		"ind-1": {ID: "ind-1", Code: "TIC", Name: "Ticket Médio", Kind: core.IndicatorManual},
	}
	return core.NewUploadService(store, cats, inds, quietLogger())
}

func TestUpload_ProcessCSV(t *testing.T) {
	store := &fakeRawDataStore{}
	svc := newUploadFixture(store)

	file := strings.NewReader(strings.Join([]string{
		"categoria_id,indicador_id,valor",
		"cat-1,,1500.50",
		",ind-1,200",
		"cat-missing,,100",   // unknown category
		"cat-1,ind-1,100",    // both references
		"cat-1,,-10",         // negative amount
		"cat-1,,abc",         // unparseable amount
		",,",                 // blank line, skipped
	}, "\n"))

	summary, err := svc.Process(context.Background(), "co-1", 2024, "Maio", "dados.csv", file)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if summary.Inserted != 2 {
		t.Errorf("inserted: want 2, got %d", summary.Inserted)
	}
	if summary.Failed != 4 {
		t.Errorf("failed: want 4, got %d", summary.Failed)
	}
	if len(store.points) != 2 {
		t.Fatalf("expected 2 stored points, got %d", len(store.points))
	}

	first := store.points[0]
	if first.CategoryID == nil || *first.CategoryID != "cat-1" {
		t.Errorf("first point category: got %v", first.CategoryID)
	}
	if !first.Amount.Equal(decimal.RequireFromString("1500.50")) {
		t.Errorf("first point amount: want 1500.50, got %s", first.Amount)
	}
	if first.Month != "Maio" || first.Year != 2024 {
		t.Errorf("first point period: got %s/%d", first.Month, first.Year)
	}

	// Resolved rows report the entity name, failed lookups keep the raw id.
	if summary.Rows[0].Name != "Vendas" {
		t.Errorf("row 1 name: want Vendas, got %s", summary.Rows[0].Name)
	}
	if summary.Rows[2].Name != "cat-missing" {
		t.Errorf("row 3 name: want cat-missing, got %s", summary.Rows[2].Name)
	}
}

func TestUpload_RowFailureDoesNotAbortBatch(t *testing.T) {
	store := &fakeRawDataStore{failOn: func(p core.RawDataPoint) bool {
		return p.CategoryID != nil
	}}
	svc := newUploadFixture(store)

	file := strings.NewReader("categoria_id,indicador_id,valor\ncat-1,,10\n,ind-1,20\n")
	summary, err := svc.Process(context.Background(), "co-1", 2024, "Maio", "dados.csv", file)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if summary.Failed != 1 || summary.Inserted != 1 {
		t.Errorf("want 1 failed and 1 inserted, got %d/%d", summary.Failed, summary.Inserted)
	}
}

func TestUpload_CommaDecimalSeparator(t *testing.T) {
	store := &fakeRawDataStore{}
	svc := newUploadFixture(store)

	quoted := strings.NewReader("categoria_id,valor\ncat-1,\"1234,56\"\n")
	summary, err := svc.Process(context.Background(), "co-1", 2024, "Maio", "dados.csv", quoted)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if summary.Inserted != 1 {
		t.Fatalf("want 1 inserted, got %d (rows: %+v)", summary.Inserted, summary.Rows)
	}
	if !store.points[0].Amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("amount: want 1234.56, got %s", store.points[0].Amount)
	}
}

func TestUpload_MissingHeaderColumns(t *testing.T) {
	svc := newUploadFixture(&fakeRawDataStore{})
	file := strings.NewReader("foo,bar\n1,2\n")
	if _, err := svc.Process(context.Background(), "co-1", 2024, "Maio", "dados.csv", file); err == nil {
		t.Fatal("expected error for missing header columns, got nil")
	}
}

func TestUpload_UnknownMonthRejected(t *testing.T) {
	svc := newUploadFixture(&fakeRawDataStore{})
	file := strings.NewReader("categoria_id,valor\ncat-1,10\n")
	if _, err := svc.Process(context.Background(), "co-1", 2024, "May", "dados.csv", file); err == nil {
		t.Fatal("expected error for unknown month, got nil")
	}
}
