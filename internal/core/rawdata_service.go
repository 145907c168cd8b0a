package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PeriodRow is one raw data row with the referenced category's kind joined in,
// so callers can apply the expense sign without further lookups.
type PeriodRow struct {
	ID           string
	CategoryID   *string
	IndicatorID  *string
	Amount       decimal.Decimal
	CategoryKind *CategoryKind
}

// SignedAmount applies the expense sign convention: category rows of expense
// kind contribute their negated amount, everything else passes through.
func (r PeriodRow) SignedAmount() decimal.Decimal {
	if r.CategoryID != nil && r.CategoryKind != nil && *r.CategoryKind == CategoryExpense {
		return r.Amount.Neg()
	}
	return r.Amount
}

// RawDataService reads and writes dados_brutos rows and computes the
// per-period signed sums the aggregation engine is built on.
type RawDataService interface {
	// CategoryPeriodValue returns the signed sum of all rows for one category
	// in one period. Expense rows are negated; absence of rows yields zero.
	CategoryPeriodValue(ctx context.Context, companyID, categoryID string, p Period) (decimal.Decimal, error)

	// IndicatorPeriodValue returns the plain sum of an indicator's manual rows
	// for one period. No sign logic applies.
	IndicatorPeriodValue(ctx context.Context, companyID, indicatorID string, p Period) (decimal.Decimal, error)

	// PeriodRows returns every row for one company and period, with the
	// category kind joined in. Used by the statement aggregator to fetch each
	// period once and fan out in memory.
	PeriodRows(ctx context.Context, companyID string, p Period) ([]PeriodRow, error)

	List(ctx context.Context, companyID string, year int, month string) ([]RawDataPoint, error)
	Create(ctx context.Context, point RawDataPoint) (*RawDataPoint, error)
	Update(ctx context.Context, id string, amount decimal.Decimal) (*RawDataPoint, error)
	Delete(ctx context.Context, id string) error
}

type rawDataService struct {
	pool *pgxpool.Pool
}

// NewRawDataService constructs a RawDataService backed by the given pool.
func NewRawDataService(pool *pgxpool.Pool) RawDataService {
	return &rawDataService{pool: pool}
}

func (s *rawDataService) CategoryPeriodValue(ctx context.Context, companyID, categoryID string, p Period) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN c.type = 'expense' THEN -d.valor ELSE d.valor END), 0)
		FROM dados_brutos d
		JOIN categories c ON c.id = d.categoria_id
		WHERE d.empresa_id = $1 AND d.ano = $2 AND d.mes = $3 AND d.categoria_id = $4
	`, companyID, p.Year, p.Month, categoryID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum category %s for %s: %w", categoryID, p.Key(), err)
	}
	return total, nil
}

func (s *rawDataService) IndicatorPeriodValue(ctx context.Context, companyID, indicatorID string, p Period) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(valor), 0)
		FROM dados_brutos
		WHERE empresa_id = $1 AND ano = $2 AND mes = $3 AND indicador_id = $4
	`, companyID, p.Year, p.Month, indicatorID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum indicator %s for %s: %w", indicatorID, p.Key(), err)
	}
	return total, nil
}

func (s *rawDataService) PeriodRows(ctx context.Context, companyID string, p Period) ([]PeriodRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.id, d.categoria_id, d.indicador_id, d.valor, c.type
		FROM dados_brutos d
		LEFT JOIN categories c ON c.id = d.categoria_id
		WHERE d.empresa_id = $1 AND d.ano = $2 AND d.mes = $3
	`, companyID, p.Year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw rows for %s: %w", p.Key(), err)
	}
	defer rows.Close()

	var out []PeriodRow
	for rows.Next() {
		var r PeriodRow
		if err := rows.Scan(&r.ID, &r.CategoryID, &r.IndicatorID, &r.Amount, &r.CategoryKind); err != nil {
			return nil, fmt.Errorf("failed to scan raw row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("raw row iteration error: %w", err)
	}
	return out, nil
}

func (s *rawDataService) List(ctx context.Context, companyID string, year int, month string) ([]RawDataPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, empresa_id, ano, mes, categoria_id, indicador_id, valor, created_at
		FROM dados_brutos
		WHERE empresa_id = $1 AND ano = $2 AND mes = $3
		ORDER BY created_at
	`, companyID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw data: %w", err)
	}
	defer rows.Close()

	var points []RawDataPoint
	for rows.Next() {
		var d RawDataPoint
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Year, &d.Month, &d.CategoryID, &d.IndicatorID, &d.Amount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan raw data point: %w", err)
		}
		points = append(points, d)
	}
	return points, rows.Err()
}

// Create validates the exactly-one-reference rule and the positive magnitude
// convention before inserting.
func (s *rawDataService) Create(ctx context.Context, point RawDataPoint) (*RawDataPoint, error) {
	if err := validateRawDataPoint(point); err != nil {
		return nil, err
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO dados_brutos (empresa_id, ano, mes, categoria_id, indicador_id, valor)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, point.CompanyID, point.Year, point.Month, point.CategoryID, point.IndicatorID, point.Amount).
		Scan(&point.ID, &point.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert raw data point: %w", err)
	}
	return &point, nil
}

func (s *rawDataService) Update(ctx context.Context, id string, amount decimal.Decimal) (*RawDataPoint, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}

	var d RawDataPoint
	err := s.pool.QueryRow(ctx, `
		UPDATE dados_brutos SET valor = $2 WHERE id = $1
		RETURNING id, empresa_id, ano, mes, categoria_id, indicador_id, valor, created_at
	`, id, amount).Scan(&d.ID, &d.CompanyID, &d.Year, &d.Month, &d.CategoryID, &d.IndicatorID, &d.Amount, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("raw data point %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update raw data point: %w", err)
	}
	return &d, nil
}

func (s *rawDataService) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM dados_brutos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete raw data point: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("raw data point %s: %w", id, ErrNotFound)
	}
	return nil
}

func validateRawDataPoint(point RawDataPoint) error {
	hasCategory := point.CategoryID != nil && *point.CategoryID != ""
	hasIndicator := point.IndicatorID != nil && *point.IndicatorID != ""
	if hasCategory == hasIndicator {
		return fmt.Errorf("%w: exactly one of category_id or indicator_id is required", ErrInvalidArgument)
	}
	if !point.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}
	if _, err := MonthIndex(point.Month); err != nil {
		return err
	}
	return nil
}
