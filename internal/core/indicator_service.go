package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IndicatorService manages indicator definitions and their per-company
// activation.
type IndicatorService interface {
	IndicatorGetter
	List(ctx context.Context) ([]Indicator, error)
	ListForCompany(ctx context.Context, companyID string) ([]Indicator, error)
	Create(ctx context.Context, ind Indicator) (*Indicator, error)
	Update(ctx context.Context, ind Indicator) (*Indicator, error)
	Delete(ctx context.Context, id string) error
	SetCompanyActivation(ctx context.Context, companyID, indicatorID string, active bool) error
}

type indicatorService struct {
	pool *pgxpool.Pool
}

// NewIndicatorService constructs an IndicatorService backed by PostgreSQL.
func NewIndicatorService(pool *pgxpool.Pool) IndicatorService {
	return &indicatorService{pool: pool}
}

const indicatorColumns = "id, code, name, type, COALESCE(calculation_type, ''), COALESCE(operation, ''), COALESCE(source_ids, '{}'), is_active"

func scanIndicator(row pgx.Row) (*Indicator, error) {
	var ind Indicator
	var calcType, operation string
	if err := row.Scan(&ind.ID, &ind.Code, &ind.Name, &ind.Kind, &calcType, &operation, &ind.SourceIDs, &ind.IsActive); err != nil {
		return nil, err
	}
	ind.CalcType = CalculationType(calcType)
	ind.Operation = Operation(operation)
	return &ind, nil
}

func (s *indicatorService) Get(ctx context.Context, id string) (*Indicator, error) {
	ind, err := scanIndicator(s.pool.QueryRow(ctx,
		"SELECT "+indicatorColumns+" FROM indicators WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("indicator %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch indicator %s: %w", id, err)
	}
	return ind, nil
}

func (s *indicatorService) List(ctx context.Context) ([]Indicator, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+indicatorColumns+" FROM indicators ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("failed to list indicators: %w", err)
	}
	defer rows.Close()
	return collectIndicators(rows)
}

func (s *indicatorService) ListForCompany(ctx context.Context, companyID string) ([]Indicator, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.code, i.name, i.type, COALESCE(i.calculation_type, ''),
		       COALESCE(i.operation, ''), COALESCE(i.source_ids, '{}'), i.is_active
		FROM indicators i
		JOIN company_indicators ci ON ci.indicator_id = i.id
		WHERE ci.company_id = $1 AND ci.is_active = true
		ORDER BY i.code
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company indicators: %w", err)
	}
	defer rows.Close()
	return collectIndicators(rows)
}

func collectIndicators(rows pgx.Rows) ([]Indicator, error) {
	var out []Indicator
	for rows.Next() {
		ind, err := scanIndicator(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan indicator: %w", err)
		}
		out = append(out, *ind)
	}
	return out, rows.Err()
}

func (s *indicatorService) Create(ctx context.Context, ind Indicator) (*Indicator, error) {
	if err := s.validateDefinition(ctx, &ind, ""); err != nil {
		return nil, err
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO indicators (code, name, type, calculation_type, operation, source_ids, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		RETURNING id
	`, ind.Code, ind.Name, ind.Kind, string(ind.CalcType), string(ind.Operation), ind.SourceIDs, ind.IsActive).
		Scan(&ind.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert indicator: %w", err)
	}
	return &ind, nil
}

func (s *indicatorService) Update(ctx context.Context, ind Indicator) (*Indicator, error) {
	if err := s.validateDefinition(ctx, &ind, ind.ID); err != nil {
		return nil, err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE indicators
		SET code = $2, name = $3, type = $4, calculation_type = NULLIF($5, ''),
		    operation = NULLIF($6, ''), source_ids = $7, is_active = $8
		WHERE id = $1
	`, ind.ID, ind.Code, ind.Name, ind.Kind, string(ind.CalcType), string(ind.Operation), ind.SourceIDs, ind.IsActive)
	if err != nil {
		return nil, fmt.Errorf("failed to update indicator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("indicator %s: %w", ind.ID, ErrNotFound)
	}
	return &ind, nil
}

func (s *indicatorService) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM indicators WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete indicator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("indicator %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *indicatorService) SetCompanyActivation(ctx context.Context, companyID, indicatorID string, active bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO company_indicators (company_id, indicator_id, is_active)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, indicator_id) DO UPDATE SET is_active = EXCLUDED.is_active
	`, companyID, indicatorID, active)
	if err != nil {
		return fmt.Errorf("failed to set indicator activation: %w", err)
	}
	return nil
}

// validateDefinition checks structural rules and, for calculated indicators
// over other indicators, rejects definitions whose source graph reaches back
// to the indicator being saved. The runtime visited-set guard in the resolver
// still applies for definitions that predate this check.
func (s *indicatorService) validateDefinition(ctx context.Context, ind *Indicator, selfID string) error {
	switch ind.Kind {
	case IndicatorManual:
		return nil
	case IndicatorCalculated:
	default:
		return fmt.Errorf("%w: unknown indicator kind %q", ErrInvalidArgument, ind.Kind)
	}

	if ind.CalcType != CalcFromCategories && ind.CalcType != CalcFromIndicators {
		return fmt.Errorf("%w: calculated indicator requires calculation_type", ErrInvalidArgument)
	}
	switch ind.Operation {
	case OpSum, OpSubtract, OpMultiply, OpDivide:
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, ind.Operation)
	}
	if len(ind.SourceIDs) == 0 {
		return fmt.Errorf("%w: calculated indicator requires at least one source", ErrInvalidArgument)
	}

	if ind.CalcType == CalcFromIndicators && selfID != "" {
		visited := map[string]bool{selfID: true}
		for _, src := range ind.SourceIDs {
			if err := s.checkNoCycle(ctx, src, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *indicatorService) checkNoCycle(ctx context.Context, id string, visited map[string]bool) error {
	if visited[id] {
		return fmt.Errorf("%w: indicator sources form a cycle through %s", ErrInvalidArgument, id)
	}
	visited[id] = true
	defer delete(visited, id)

	ind, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Dangling sources degrade to zero at evaluation time; they are
			// not a save-time error.
			return nil
		}
		return err
	}
	if ind.Kind != IndicatorCalculated || ind.CalcType != CalcFromIndicators {
		return nil
	}
	for _, src := range ind.SourceIDs {
		if err := s.checkNoCycle(ctx, src, visited); err != nil {
			return err
		}
	}
	return nil
}
