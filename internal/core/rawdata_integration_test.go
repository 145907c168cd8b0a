package core_test

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"finboard/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	testCompanyID    = "00000000-0000-0000-0000-000000000001"
	testRevenueCatID = "00000000-0000-0000-0000-000000000101"
	testExpenseCatID = "00000000-0000-0000-0000-000000000102"
	testManualIndID  = "00000000-0000-0000-0000-000000000201"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE dashboard_visual_config, dre_empresa_componentes, contas_dre_componentes,
			dre_contas_secundarias, contas_dre_modelo, dados_brutos,
			company_indicators, indicators, company_categories, categories, category_groups,
			user_permissions, system_users, companies CASCADE;

		INSERT INTO companies (id, legal_name, trading_name)
		VALUES ('00000000-0000-0000-0000-000000000001', 'Test Company Ltda', 'Test Company');

		INSERT INTO categories (id, code, name, type) VALUES
		('00000000-0000-0000-0000-000000000101', 'REV-T01', 'Test Revenue', 'revenue'),
		('00000000-0000-0000-0000-000000000102', 'EXP-T01', 'Test Expense', 'expense');

		INSERT INTO indicators (id, code, name, type) VALUES
		('00000000-0000-0000-0000-000000000201', 'IND-T01', 'Test Manual', 'manual');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func mustCreatePoint(t *testing.T, svc core.RawDataService, categoryID, indicatorID *string, month string, year int, amount string) *core.RawDataPoint {
	t.Helper()
	point, err := svc.Create(context.Background(), core.RawDataPoint{
		CompanyID:   testCompanyID,
		Year:        year,
		Month:       month,
		CategoryID:  categoryID,
		IndicatorID: indicatorID,
		Amount:      decimal.RequireFromString(amount),
	})
	if err != nil {
		t.Fatalf("Failed to create raw data point: %v", err)
	}
	return point
}

func TestRawData_ExpenseSignAppliedAtRead(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewRawDataService(pool)
	ctx := context.Background()

	revID := testRevenueCatID
	expID := testExpenseCatID
	mustCreatePoint(t, svc, &revID, nil, "Janeiro", 2024, "100.00")
	mustCreatePoint(t, svc, &revID, nil, "Janeiro", 2024, "50.00")
	mustCreatePoint(t, svc, &expID, nil, "Janeiro", 2024, "100.00")
	mustCreatePoint(t, svc, &expID, nil, "Janeiro", 2024, "50.00")

	p := core.Period{Month: "Janeiro", Year: 2024}

	revenue, err := svc.CategoryPeriodValue(ctx, testCompanyID, testRevenueCatID, p)
	if err != nil {
		t.Fatalf("CategoryPeriodValue(revenue) failed: %v", err)
	}
	if !revenue.Equal(decimal.RequireFromString("150")) {
		t.Errorf("Revenue sum = %s, want 150", revenue)
	}

	expense, err := svc.CategoryPeriodValue(ctx, testCompanyID, testExpenseCatID, p)
	if err != nil {
		t.Fatalf("CategoryPeriodValue(expense) failed: %v", err)
	}
	if !expense.Equal(decimal.RequireFromString("-150")) {
		t.Errorf("Expense sum = %s, want -150", expense)
	}

	// A period with no rows sums to zero, not an error.
	empty, err := svc.CategoryPeriodValue(ctx, testCompanyID, testRevenueCatID, core.Period{Month: "Fevereiro", Year: 2024})
	if err != nil {
		t.Fatalf("CategoryPeriodValue(empty period) failed: %v", err)
	}
	if !empty.IsZero() {
		t.Errorf("Empty period sum = %s, want 0", empty)
	}
}

func TestRawData_IndicatorValueHasNoSignLogic(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewRawDataService(pool)
	ctx := context.Background()

	indID := testManualIndID
	mustCreatePoint(t, svc, nil, &indID, "Maio", 2024, "200.00")
	mustCreatePoint(t, svc, nil, &indID, "Maio", 2024, "50.00")

	got, err := svc.IndicatorPeriodValue(ctx, testCompanyID, testManualIndID, core.Period{Month: "Maio", Year: 2024})
	if err != nil {
		t.Fatalf("IndicatorPeriodValue failed: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("250")) {
		t.Errorf("Indicator sum = %s, want 250", got)
	}
}

func TestRawData_UpdateAndDelete(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewRawDataService(pool)
	ctx := context.Background()

	revID := testRevenueCatID
	point := mustCreatePoint(t, svc, &revID, nil, "Janeiro", 2024, "100.00")

	updated, err := svc.Update(ctx, point.ID, decimal.RequireFromString("175.50"))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.Amount.Equal(decimal.RequireFromString("175.50")) {
		t.Errorf("Updated amount = %s, want 175.50", updated.Amount)
	}

	rows, err := svc.List(ctx, testCompanyID, 2024, "Janeiro")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("List returned %d rows, want 1", len(rows))
	}

	if err := svc.Delete(ctx, point.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(ctx, point.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Second delete error = %v, want ErrNotFound", err)
	}
}

func TestResolver_CalculatedIndicatorOverDatabase(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	rawData := core.NewRawDataService(pool)
	indicators := core.NewIndicatorService(pool)
	resolver := core.NewResolver(indicators, rawData, testLogger())

	revID := testRevenueCatID
	mustCreatePoint(t, rawData, &revID, nil, "Janeiro", 2024, "100.00")
	mustCreatePoint(t, rawData, &revID, nil, "Janeiro", 2024, "50.00")

	calc, err := indicators.Create(ctx, core.Indicator{
		Code:      "IND-T02",
		Name:      "Test Gross Revenue",
		Kind:      core.IndicatorCalculated,
		CalcType:  core.CalcFromCategories,
		Operation: core.OpSum,
		SourceIDs: []string{testRevenueCatID},
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Failed to create calculated indicator: %v", err)
	}

	got, err := resolver.Resolve(ctx, testCompanyID, calc.ID, core.Period{Month: "Janeiro", Year: 2024}, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("150")) {
		t.Errorf("Resolved value = %s, want 150", got)
	}
}
