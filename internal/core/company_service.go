package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CompanyService manages the tenant companies.
type CompanyService interface {
	Get(ctx context.Context, id string) (*Company, error)
	List(ctx context.Context) ([]Company, error)
	ListActive(ctx context.Context) ([]Company, error)
	Create(ctx context.Context, c Company) (*Company, error)
	Update(ctx context.Context, c Company) (*Company, error)
	Delete(ctx context.Context, id string) error
}

type companyService struct {
	pool *pgxpool.Pool
}

// NewCompanyService constructs a CompanyService backed by PostgreSQL.
func NewCompanyService(pool *pgxpool.Pool) CompanyService {
	return &companyService{pool: pool}
}

const companyColumns = "id, legal_name, trading_name, tax_id, is_active, created_at, updated_at"

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	if err := row.Scan(&c.ID, &c.LegalName, &c.TradingName, &c.TaxID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *companyService) Get(ctx context.Context, id string) (*Company, error) {
	c, err := scanCompany(s.pool.QueryRow(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch company %s: %w", id, err)
	}
	return c, nil
}

func (s *companyService) List(ctx context.Context) ([]Company, error) {
	return s.queryCompanies(ctx, "SELECT "+companyColumns+" FROM companies ORDER BY trading_name")
}

// ListActive returns the companies selectable in reports, ordered by trading
// name.
func (s *companyService) ListActive(ctx context.Context) ([]Company, error) {
	return s.queryCompanies(ctx, "SELECT "+companyColumns+" FROM companies WHERE is_active = true ORDER BY trading_name")
}

func (s *companyService) queryCompanies(ctx context.Context, sql string) ([]Company, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *companyService) Create(ctx context.Context, c Company) (*Company, error) {
	if c.LegalName == "" || c.TradingName == "" {
		return nil, fmt.Errorf("%w: legal_name and trading_name are required", ErrInvalidArgument)
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO companies (legal_name, trading_name, tax_id, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, c.LegalName, c.TradingName, c.TaxID, c.IsActive).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert company: %w", err)
	}
	return &c, nil
}

func (s *companyService) Update(ctx context.Context, c Company) (*Company, error) {
	err := s.pool.QueryRow(ctx, `
		UPDATE companies
		SET legal_name = $2, trading_name = $3, tax_id = $4, is_active = $5, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, c.ID, c.LegalName, c.TradingName, c.TaxID, c.IsActive).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", c.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return &c, nil
}

func (s *companyService) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM companies WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %s: %w", id, ErrNotFound)
	}
	return nil
}
